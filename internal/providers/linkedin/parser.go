package linkedin

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/warmpath/scout-cli/internal/core/domain"
)

// ParseInput carries the query context the parser scores candidates
// against.
type ParseInput struct {
	TargetCompany  string
	TargetFunction string
	TargetTitle    string
	Limit          int
}

// Search result pages vary a lot between sessions, so extraction is
// layered: structured result blocks first, then the embedded JSON blob the
// SPA ships, then a generic profile-anchor scan. Each tier only fills the
// quota the previous tiers left open.
func ParseSearchHTML(page string, input ParseInput) []domain.DiscoveredTarget {
	if page == "" || input.Limit <= 0 {
		return nil
	}

	var output []domain.DiscoveredTarget
	seen := make(map[string]struct{})

	for _, candidate := range parseResultBlocks(page, input) {
		if len(output) >= input.Limit {
			return output
		}
		if _, ok := seen[candidate.ProfileURL]; ok {
			continue
		}
		seen[candidate.ProfileURL] = struct{}{}
		output = append(output, candidate)
	}
	if len(output) >= input.Limit {
		return output
	}

	for _, candidate := range parseJSONBlob(page, input) {
		if len(output) >= input.Limit {
			return output
		}
		key := candidate.ProfileURL
		if key == "" {
			key = strings.ToLower(candidate.FullName)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		output = append(output, candidate)
	}
	if len(output) >= input.Limit {
		return output
	}

	for _, candidate := range parseProfileAnchors(page, input, seen) {
		if len(output) >= input.Limit {
			break
		}
		output = append(output, candidate)
	}

	return output
}

// parseResultBlocks extracts structured result blocks with goquery.
func parseResultBlocks(page string, input ParseInput) []domain.DiscoveredTarget {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var results []domain.DiscoveredTarget
	doc.Find("li[class*='reusable-search__result-container']").Each(func(_ int, block *goquery.Selection) {
		href, ok := block.Find("a[href*='/in/']").First().Attr("href")
		if !ok {
			return
		}
		profileURL := normalizeProfileURL(href)
		if profileURL == "" {
			return
		}

		name := selectionText(block.Find("[class*='entity-result__title-text'] span[aria-hidden='true']"))
		if name == "" {
			name = selectionText(block.Find("[class*='entity-result__title-text']"))
		}
		if name == "" {
			name = selectionText(block.Find("a[href*='/in/']"))
		}
		if name == "" {
			name = nameFromProfileURL(profileURL)
		}
		if name == "" || isLikelyNavigationName(name) {
			return
		}

		subtitle := selectionText(block.Find("[class*='entity-result__primary-subtitle']"))
		companyLine := selectionText(block.Find("[class*='entity-result__secondary-subtitle']"))
		if companyLine == "" {
			companyLine = selectionText(block.Find("[class*='entity-result__summary']"))
		}

		results = append(results, domain.DiscoveredTarget{
			FullName:       name,
			Headline:       subtitle,
			CurrentTitle:   subtitle,
			CurrentCompany: companyLine,
			ProfileURL:     profileURL,
			Confidence:     estimateConfidence(subtitle, companyLine, input),
			MatchReason:    "linkedin_search_html",
		})
	})
	return results
}

var jsonBlobRe = regexp.MustCompile(`(?is)"firstName"\s*:\s*"([^"]+)".{0,700}?"lastName"\s*:\s*"([^"]+)".{0,700}?"publicIdentifier"\s*:\s*"([^"]+)".{0,600}?.{0,600}?(?:"occupation"\s*:\s*"([^"]+)")?`)

// parseJSONBlob scavenges profile records from the page's embedded JSON.
func parseJSONBlob(page string, input ParseInput) []domain.DiscoveredTarget {
	matches := jsonBlobRe.FindAllStringSubmatch(page, -1)
	if len(matches) == 0 {
		return nil
	}

	var results []domain.DiscoveredTarget
	for _, match := range matches {
		if len(results) >= input.Limit {
			break
		}

		firstName := normalizeWhitespace(match[1])
		lastName := normalizeWhitespace(match[2])
		publicIdentifier := normalizeWhitespace(match[3])
		occupation := normalizeWhitespace(html.UnescapeString(match[4]))

		fullName := normalizeWhitespace(firstName + " " + lastName)
		if fullName == "" || publicIdentifier == "" {
			continue
		}
		profileURL := normalizeProfileURL("/in/" + publicIdentifier)
		if profileURL == "" {
			continue
		}

		results = append(results, domain.DiscoveredTarget{
			FullName:       fullName,
			Headline:       occupation,
			CurrentTitle:   occupation,
			CurrentCompany: occupation,
			ProfileURL:     profileURL,
			Confidence:     estimateConfidence(occupation, occupation, input),
			MatchReason:    "linkedin_json_blob",
		})
	}
	return results
}

var (
	profileAnchorRe     = regexp.MustCompile(`(?is)<a[^>]*href="([^"]*/in/[^"]+)"[^>]*>(.{0,500}?)</a>`)
	resultContextRe     = regexp.MustCompile(`(?i)entity-result|search-result|reusable-search`)
	primarySubtitleRe   = regexp.MustCompile(`(?is)entity-result__primary-subtitle[^>]*>(.*?)</`)
	secondarySubtitleRe = regexp.MustCompile(`(?is)entity-result__secondary-subtitle[^>]*>(.*?)</`)
	tagRe               = regexp.MustCompile(`<[^>]+>`)
)

// parseProfileAnchors is the last-resort tier: any profile anchor whose
// surrounding markup still looks like a search result.
func parseProfileAnchors(page string, input ParseInput, seen map[string]struct{}) []domain.DiscoveredTarget {
	var results []domain.DiscoveredTarget
	for _, loc := range profileAnchorRe.FindAllStringSubmatchIndex(page, -1) {
		href := page[loc[2]:loc[3]]
		inner := page[loc[4]:loc[5]]

		name := normalizeWhitespace(stripTags(inner))
		if name == "" {
			name = nameFromProfileURL(href)
		}
		if name == "" || isLikelyNavigationName(name) {
			continue
		}

		profileURL := normalizeProfileURL(href)
		if profileURL == "" {
			continue
		}
		if _, ok := seen[profileURL]; ok {
			continue
		}

		windowStart := loc[0] - 800
		if windowStart < 0 {
			windowStart = 0
		}
		windowEnd := loc[1] + 1200
		if windowEnd > len(page) {
			windowEnd = len(page)
		}
		contextWindow := page[windowStart:windowEnd]
		if !resultContextRe.MatchString(contextWindow) {
			continue
		}

		subtitle := normalizeWhitespace(stripTags(captureGroup(primarySubtitleRe, contextWindow)))
		companyLine := normalizeWhitespace(stripTags(captureGroup(secondarySubtitleRe, contextWindow)))

		seen[profileURL] = struct{}{}
		results = append(results, domain.DiscoveredTarget{
			FullName:       name,
			Headline:       subtitle,
			CurrentTitle:   subtitle,
			CurrentCompany: companyLine,
			ProfileURL:     profileURL,
			Confidence:     estimateConfidence(subtitle, companyLine, input),
			MatchReason:    "linkedin_search_html_fallback",
		})
	}
	return results
}

// estimateConfidence scores a candidate heuristically from the little
// context a search page exposes.
func estimateConfidence(subtitle, companyLine string, input ParseInput) float64 {
	score := 0.4
	title := strings.ToLower(subtitle)
	company := strings.ToLower(companyLine)

	if targetCompany := strings.ToLower(strings.TrimSpace(input.TargetCompany)); targetCompany != "" && strings.Contains(company, targetCompany) {
		score += 0.3
	}
	if fn := strings.ToLower(strings.TrimSpace(input.TargetFunction)); fn != "" && strings.Contains(title, fn) {
		score += 0.15
	}
	if input.TargetTitle != "" {
		matches := 0
		for _, token := range strings.Fields(strings.ToLower(input.TargetTitle)) {
			if len(token) > 2 && strings.Contains(title, token) {
				matches++
			}
		}
		if matches > 0 {
			score += math.Min(0.2, float64(matches)*0.06)
		}
	}

	return math.Max(0.2, math.Min(0.95, domain.Round2(score)))
}

// normalizeProfileURL canonicalises a profile href: absolute URL, no query
// or fragment, no trailing slash. Returns "" for anything that is not a
// profile link.
func normalizeProfileURL(href string) string {
	trimmed := strings.TrimSpace(href)
	if !strings.Contains(trimmed, "/in/") {
		return ""
	}

	absolute := trimmed
	if !strings.HasPrefix(trimmed, "http") {
		if !strings.HasPrefix(trimmed, "/") {
			absolute = "/" + trimmed
		}
		absolute = "https://www.linkedin.com" + absolute
	}

	parsed, err := url.Parse(absolute)
	if err != nil {
		return ""
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	return parsed.String()
}

var slugJunkRe = regexp.MustCompile(`[0-9]+|[-_]+`)

// nameFromProfileURL reconstructs a display name from the profile slug when
// the anchor text was useless.
func nameFromProfileURL(href string) string {
	absolute := normalizeProfileURL(href)
	if absolute == "" {
		return ""
	}
	parsed, err := url.Parse(absolute)
	if err != nil {
		return ""
	}

	var slug string
	parts := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(parts) > 1 {
		slug = parts[1]
	}
	if slug == "" {
		return ""
	}
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}

	cleaned := strings.TrimSpace(slugJunkRe.ReplaceAllString(slug, " "))
	if cleaned == "" {
		return ""
	}

	var tokens []string
	for _, token := range strings.Fields(cleaned) {
		if len(token) > 1 {
			tokens = append(tokens, strings.ToUpper(token[:1])+token[1:])
		}
	}
	return strings.Join(tokens, " ")
}

// isLikelyNavigationName filters anchor text that belongs to site chrome
// rather than a person.
func isLikelyNavigationName(name string) bool {
	if len(name) < 3 || len(name) > 80 {
		return true
	}
	lower := strings.ToLower(name)
	for _, marker := range []string{
		"linkedin", "search", "learning", "advertising",
		"try premium", "view profile", "message", "connect",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func captureGroup(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

func stripTags(value string) string {
	return html.UnescapeString(tagRe.ReplaceAllString(value, " "))
}

func normalizeWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func selectionText(sel *goquery.Selection) string {
	return normalizeWhitespace(sel.First().Text())
}
