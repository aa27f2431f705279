// Package linkedin implements the live second-degree discovery provider.
// It drives authenticated people-search over a session cookie and parses
// the returned HTML with layered fallbacks, since the markup differs
// between accounts and rollouts.
package linkedin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
	"github.com/warmpath/scout-cli/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.ScoutProvider = (*Provider)(nil)

const (
	// ProviderName identifies this provider in chains and diagnostics.
	ProviderName = "linkedin_li_at"

	// DefaultTimeout bounds each outbound request.
	DefaultTimeout = 15 * time.Second

	// DefaultMinDelay spaces consecutive outbound requests.
	DefaultMinDelay = 1200 * time.Millisecond

	defaultBaseURL = "https://www.linkedin.com"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Options configures a Provider.
type Options struct {
	// Cookie is the li_at session cookie. Empty means not configured.
	Cookie string

	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration

	// Pacer spaces outbound requests. Nil means no pacing; share one pacer
	// across provider instances to keep the delay process-wide.
	Pacer *Pacer

	// BaseURL overrides the endpoint, for tests.
	BaseURL string
}

// Provider is the live search adapter. Session validity is probed once per
// search; an unusable session yields an empty result, not an error, so the
// chain can fall through to the next provider.
type Provider struct {
	cookie  string
	baseURL string
	client  *http.Client
	pacer   *Pacer
}

// New creates a provider from options.
func New(opts Options) *Provider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		cookie:  strings.TrimSpace(opts.Cookie),
		baseURL: baseURL,
		pacer:   opts.Pacer,
		client: &http.Client{
			Timeout: timeout,
			// Redirects signal an expired session, keep them visible.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Name implements driven.ScoutProvider.
func (p *Provider) Name() string { return ProviderName }

// IsConfigured implements driven.ScoutProvider.
func (p *Provider) IsConfigured() bool { return p.cookie != "" }

// Search implements driven.ScoutProvider. It probes the session, then runs
// up to two query candidates and merges their parsed results.
func (p *Provider) Search(ctx context.Context, input driven.SearchInput) ([]domain.DiscoveredTarget, error) {
	if !p.IsConfigured() || input.Limit <= 0 {
		return nil, nil
	}

	if !p.sessionValid(ctx) {
		logger.Debug("Session probe rejected, skipping live search")
		return nil, nil
	}

	queries := buildQueryCandidates(input)
	seen := make(map[string]struct{})
	var results []domain.DiscoveredTarget

	for _, query := range queries {
		if len(results) >= input.Limit {
			break
		}

		if err := p.pacer.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := p.fetchSearchPage(ctx, query)
		if err != nil {
			return nil, err
		}

		parsed := ParseSearchHTML(page, ParseInput{
			TargetCompany:  input.TargetCompany,
			TargetFunction: input.TargetFunction,
			TargetTitle:    input.TargetTitle,
			Limit:          input.Limit - len(results),
		})
		for _, candidate := range parsed {
			if candidate.MatchReason == "" {
				candidate.MatchReason = "linkedin_search:" + query
			}

			key := candidate.ProfileURL
			if key == "" {
				key = strings.ToLower(candidate.FullName)
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, candidate)
			if len(results) >= input.Limit {
				break
			}
		}
	}

	return results, nil
}

// sessionValid probes an authenticated endpoint. Anything other than a
// plain 200, redirects to login included, means the cookie is not usable
// this run.
func (p *Provider) sessionValid(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/feed/", nil)
	if err != nil {
		return false
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	return resp.StatusCode == http.StatusOK
}

// fetchSearchPage runs one people-search query and returns the raw HTML.
// Non-200 responses and login redirects produce an empty page.
func (p *Provider) fetchSearchPage(ctx context.Context, query string) (string, error) {
	searchURL := fmt.Sprintf("%s/search/results/people/?%s", p.baseURL, url.Values{
		"keywords": {query},
		"network":  {`["S"]`},
		"origin":   {"GLOBAL_SEARCH_HEADER"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", err
	}
	p.setHeaders(req)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", p.baseURL+"/feed/")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching search page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || strings.Contains(resp.Request.URL.Path, "/login") {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return "", nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading search page: %w", err)
	}
	return string(body), nil
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Cookie", "li_at="+p.cookie)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
}

// buildQueryCandidates produces up to two deduped keyword queries: the full
// company+function+title phrase, then company alone as the broad fallback.
func buildQueryCandidates(input driven.SearchInput) []string {
	var parts []string
	for _, part := range []string{input.TargetCompany, input.TargetFunction, input.TargetTitle} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	var candidates []string
	seen := make(map[string]struct{})
	for _, candidate := range []string{strings.Join(parts, " "), strings.TrimSpace(input.TargetCompany)} {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		candidates = append(candidates, candidate)
	}
	return candidates
}
