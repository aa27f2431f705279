// Package static implements the seed-list discovery provider: a preloaded
// target list ranked against the query, used for deterministic runs and as
// the fallback when no live provider is usable.
package static

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ScoutProvider = (*Provider)(nil)

// ProviderName identifies this provider in chains and diagnostics.
const ProviderName = "static_seed"

// defaultSeedConfidence applies to seeds that carry no confidence of their
// own.
const defaultSeedConfidence = 0.65

// Provider serves a fixed target list. It is configured iff the list is
// non-empty.
type Provider struct {
	name    string
	targets []domain.DiscoveredTarget
}

// New creates a provider over the given targets. An empty name falls back
// to ProviderName.
func New(name string, targets []domain.DiscoveredTarget) *Provider {
	if strings.TrimSpace(name) == "" {
		name = ProviderName
	}
	return &Provider{name: name, targets: normalizeSeeds(targets)}
}

// NewFromJSON creates a provider from a JSON target list. Malformed input
// yields an unconfigured provider rather than an error.
func NewFromJSON(raw string) *Provider {
	return New(ProviderName, ParseTargetsJSON(raw))
}

// Name implements driven.ScoutProvider.
func (p *Provider) Name() string { return p.name }

// IsConfigured implements driven.ScoutProvider.
func (p *Provider) IsConfigured() bool { return len(p.targets) > 0 }

// Search implements driven.ScoutProvider. Targets are ranked against the
// query and only positive-scoring ones are returned.
func (p *Provider) Search(_ context.Context, input driven.SearchInput) ([]domain.DiscoveredTarget, error) {
	if !p.IsConfigured() {
		return nil, nil
	}

	companyNeedle := strings.ToLower(input.TargetCompany)
	functionNeedle := strings.ToLower(strings.TrimSpace(input.TargetFunction))
	titleNeedle := strings.ToLower(strings.TrimSpace(input.TargetTitle))

	type ranked struct {
		target domain.DiscoveredTarget
		score  int
	}

	var candidates []ranked
	for _, target := range p.targets {
		title := strings.ToLower(target.CurrentTitle + " " + target.Headline)
		company := strings.ToLower(target.CurrentCompany)

		score := 0
		if strings.Contains(company, companyNeedle) {
			score += 3
		}
		if functionNeedle != "" && strings.Contains(title, functionNeedle) {
			score += 2
		}
		if titleNeedle != "" {
			matches := 0
			for _, token := range strings.Fields(titleNeedle) {
				if len(token) > 2 && strings.Contains(title, token) {
					matches++
				}
			}
			if matches > 2 {
				matches = 2
			}
			score += matches
		}

		if score > 0 {
			candidates = append(candidates, ranked{target: target, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].target.Confidence > candidates[j].target.Confidence
	})
	if input.Limit > 0 && len(candidates) > input.Limit {
		candidates = candidates[:input.Limit]
	}

	results := make([]domain.DiscoveredTarget, len(candidates))
	for i, candidate := range candidates {
		target := candidate.target
		if target.MatchReason == "" {
			target.MatchReason = "static_seed_match"
		}
		results[i] = target
	}
	return results, nil
}

// seedTargetJSON mirrors the wire shape of a configured seed list.
type seedTargetJSON struct {
	FullName       string   `json:"full_name"`
	Headline       string   `json:"headline"`
	CurrentTitle   string   `json:"current_title"`
	CurrentCompany string   `json:"current_company"`
	LinkedInURL    string   `json:"linkedin_url"`
	Confidence     *float64 `json:"confidence"`
	MatchReason    string   `json:"match_reason"`
}

// ParseTargetsJSON parses a JSON seed list tolerantly: malformed JSON, a
// non-list value, or unusable entries all collapse to an empty slice.
func ParseTargetsJSON(raw string) []domain.DiscoveredTarget {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []seedTargetJSON
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}

	targets := make([]domain.DiscoveredTarget, 0, len(entries))
	for _, entry := range entries {
		confidence := defaultSeedConfidence
		if entry.Confidence != nil {
			confidence = domain.Clamp01(*entry.Confidence)
		}
		targets = append(targets, domain.DiscoveredTarget{
			FullName:       strings.TrimSpace(entry.FullName),
			Headline:       strings.TrimSpace(entry.Headline),
			CurrentTitle:   strings.TrimSpace(entry.CurrentTitle),
			CurrentCompany: strings.TrimSpace(entry.CurrentCompany),
			ProfileURL:     strings.TrimSpace(entry.LinkedInURL),
			Confidence:     confidence,
			MatchReason:    strings.TrimSpace(entry.MatchReason),
		})
	}
	return normalizeSeeds(targets)
}

// normalizeSeeds drops entries without a usable name.
func normalizeSeeds(targets []domain.DiscoveredTarget) []domain.DiscoveredTarget {
	var kept []domain.DiscoveredTarget
	for _, target := range targets {
		target.FullName = strings.TrimSpace(target.FullName)
		if len(target.FullName) > 1 {
			kept = append(kept, target)
		}
	}
	return kept
}
