package domain

import (
	"math"
	"sort"
	"strings"
)

// legalSuffixes are stripped from company names before comparison.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "incorporated": {}, "corp": {}, "corporation": {},
	"llc": {}, "ltd": {}, "limited": {}, "plc": {}, "co": {},
	"company": {}, "group": {}, "holdings": {},
}

// punctReplacer maps punctuation to spaces for name/title normalisation.
var punctReplacer = strings.NewReplacer(
	".", " ", ",", " ", "/", " ", "#", " ", "!", " ", "$", " ", "%", " ",
	"^", " ", "&", " ", "*", " ", ";", " ", ":", " ", "{", " ", "}", " ",
	"=", " ", "-", " ", "_", " ", "`", " ", "~", " ", "(", " ", ")", " ",
)

// CleanName trims a person's name and collapses internal whitespace.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeCompanyName lowercases a company name, drops punctuation and
// common legal suffixes, and collapses whitespace.
func NormalizeCompanyName(name string) string {
	lowered := punctReplacer.Replace(strings.ToLower(name))
	fields := strings.Fields(lowered)
	kept := fields[:0]
	for _, field := range fields {
		if _, ok := legalSuffixes[field]; ok {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// NormalizeTitle lowercases a title, drops punctuation and collapses
// whitespace.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(punctReplacer.Replace(strings.ToLower(title))), " ")
}

// TitleTokens splits a normalised title into comparison tokens. Tokens of
// three or more characters carry signal; shorter ones are noise.
func TitleTokens(title string) []string {
	fields := strings.Fields(NormalizeTitle(title))
	tokens := fields[:0]
	for _, field := range fields {
		if len(field) > 2 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// Clamp01 clamps a value into [0,1]. Non-finite values collapse to 0.
func Clamp01(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, value))
}

// ClampConfidence clamps a confidence value into [0,1], substituting
// DefaultConfidence for NaN.
func ClampConfidence(value float64) float64 {
	if math.IsNaN(value) {
		return DefaultConfidence
	}
	return math.Max(0, math.Min(1, value))
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// NormalizeTargets is the confidence normaliser: it cleans names, clamps
// confidence, drops targets below the floor, de-duplicates by identity key
// keeping the higher-confidence copy, sorts by confidence descending and
// truncates to maxResults. Pure and deterministic; running it on its own
// output is a no-op.
func NormalizeTargets(targets []DiscoveredTarget, minConfidence float64, maxResults int) []DiscoveredTarget {
	type entry struct {
		target DiscoveredTarget
		order  int
	}
	deduped := make(map[string]entry, len(targets))
	order := 0

	for _, target := range targets {
		fullName := CleanName(target.FullName)
		if fullName == "" {
			continue
		}

		confidence := ClampConfidence(target.Confidence)
		if confidence < minConfidence {
			continue
		}

		normalized := target
		normalized.FullName = fullName
		normalized.Confidence = confidence
		normalized.Headline = strings.TrimSpace(target.Headline)
		normalized.CurrentTitle = strings.TrimSpace(target.CurrentTitle)
		normalized.CurrentCompany = strings.TrimSpace(target.CurrentCompany)
		normalized.ProfileURL = strings.TrimSpace(target.ProfileURL)

		key := normalized.IdentityKey()
		existing, ok := deduped[key]
		if !ok {
			deduped[key] = entry{target: normalized, order: order}
			order++
			continue
		}
		if existing.target.Confidence < confidence {
			deduped[key] = entry{target: normalized, order: existing.order}
		}
	}

	entries := make([]entry, 0, len(deduped))
	for _, e := range deduped {
		entries = append(entries, e)
	}
	// Stable outcome across map iteration: confidence descending, then first
	// appearance.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].target.Confidence != entries[j].target.Confidence {
			return entries[i].target.Confidence > entries[j].target.Confidence
		}
		return entries[i].order < entries[j].order
	})

	if maxResults >= 0 && len(entries) > maxResults {
		entries = entries[:maxResults]
	}

	result := make([]DiscoveredTarget, len(entries))
	for i, e := range entries {
		result[i] = e.target
	}
	return result
}
