package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScoringVersion tags score breakdowns produced by this scorer.
const ScoringVersion = "v2"

// DefaultGuardrailPenalty is the flat deduction per fired guardrail. The
// magnitude is configurable but deliberately unchanged from the documented
// behaviour.
const DefaultGuardrailPenalty = 4

// PathInput carries everything needed to score one (target, connector) pair.
type PathInput struct {
	Connector     Contact
	Target        Target
	TargetCompany string

	// FunctionToken is the lowercased target function, empty when unset.
	FunctionToken string

	// ConnectorStrength is the precomputed relationship estimate in [0,1].
	ConnectorStrength float64

	// Weights must already be normalised to sum to 100.
	Weights ScoringWeights

	// GuardrailPenalty of zero falls back to DefaultGuardrailPenalty.
	GuardrailPenalty float64
}

// PathResult is the scored outcome for one (target, connector) pair.
type PathResult struct {
	ConnectorStrength float64
	PathScore         float64
	Ask               AskType
	Rationale         string
	Breakdown         ScoreBreakdown
}

// EstimateConnectorStrength maps connected-since recency onto a relationship
// strength estimate. Unknown dates sit just above the floor: an unknown
// vintage is more likely a stale import than a fresh connection.
func EstimateConnectorStrength(connectedOn *time.Time, now time.Time) float64 {
	if connectedOn == nil || connectedOn.IsZero() {
		return 0.55
	}

	ageDays := now.Sub(*connectedOn).Hours() / 24
	switch {
	case ageDays <= 365:
		return 0.85
	case ageDays <= 365*3:
		return 0.75
	case ageDays <= 365*7:
		return 0.65
	default:
		return 0.5
	}
}

var execTitleKeywords = []string{"chief", "vp", "vice president", "head", "director", "founder", "partner"}

var recruitingTitleKeywords = []string{"recruiter", "talent", "hiring", "people", "staffing"}

var managerTitleKeywords = []string{"manager", "lead"}

func containsAny(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

// EstimateConnectorInfluence scores how much pull a connector's role carries
// for getting a candidate in front of the right people.
func EstimateConnectorInfluence(title string) float64 {
	normalized := strings.ToLower(title)
	influence := 0.3

	if containsAny(normalized, execTitleKeywords) {
		influence += 0.35
	}
	if containsAny(normalized, recruitingTitleKeywords) {
		influence += 0.35
	}
	if containsAny(normalized, managerTitleKeywords) {
		influence += 0.15
	}

	return Round2(Clamp01(influence))
}

// seniorityUnknown marks titles the level scale cannot place.
const seniorityUnknown = -1

// inferSeniorityLevel maps a title onto a five-level scale:
// 0 junior/associate, 1 individual contributor, 2 senior/staff/principal,
// 3 manager/lead, 4 exec/director/founder.
func inferSeniorityLevel(title string) int {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return seniorityUnknown
	}

	switch {
	case containsAny(normalized, execTitleKeywords):
		return 4
	case containsAny(normalized, managerTitleKeywords):
		return 3
	case containsAny(normalized, []string{"senior", "staff", "principal"}):
		return 2
	case containsAny(normalized, []string{"associate", "assistant", "coordinator", "intern", "junior"}):
		return 0
	default:
		return 1
	}
}

// estimateSeniorityAlignment compares two titles on the seniority scale.
// Exact level match scores 1.0, adjacent 0.7, distant 0.25; either side
// unknown lands on a neutral 0.4.
func estimateSeniorityAlignment(connectorTitle, targetTitle string) float64 {
	connectorLevel := inferSeniorityLevel(connectorTitle)
	targetLevel := inferSeniorityLevel(targetTitle)

	if connectorLevel == seniorityUnknown || targetLevel == seniorityUnknown {
		return 0.4
	}
	if connectorLevel == targetLevel {
		return 1
	}
	distance := connectorLevel - targetLevel
	if distance < 0 {
		distance = -distance
	}
	if distance == 1 {
		return 0.7
	}
	return 0.25
}

// estimateAskFit scores how well the base ask matches the supporting
// signals. Referrals need real confidence behind them; context chats are
// cheap to grant.
func estimateAskFit(ask AskType, influence, relationship, targetConfidence float64, hasCompanyContext bool) float64 {
	confidenceBlend := influence*0.4 + relationship*0.35 + targetConfidence*0.25

	switch ask {
	case AskReferral:
		bonus := -0.05
		if hasCompanyContext {
			bonus = 0.1
		}
		return Clamp01(confidenceBlend + bonus)
	case AskIntro:
		bonus := 0.0
		if hasCompanyContext {
			bonus = 0.05
		}
		return Clamp01(0.65 + confidenceBlend*0.25 + bonus)
	default:
		bonus := 0.0
		if hasCompanyContext {
			bonus = 0.08
		}
		return Clamp01(0.6 + relationship*0.2 + bonus)
	}
}

// estimateSafety scores how appropriate the outreach is: strong
// relationships and company context make an approach safe, blind reaches do
// not.
func estimateSafety(connectorStrength, targetConfidence, influence float64, hasCompanyContext bool) float64 {
	safety := 0.35
	if hasCompanyContext {
		safety += 0.2
	} else {
		safety -= 0.1
	}
	safety += connectorStrength * 0.25
	safety += targetConfidence * 0.15
	safety += influence * 0.05

	return Clamp01(safety)
}

// applyAskGuardrails downgrades the ask when supporting signals are too
// weak. Guardrails run in order against the possibly already-downgraded ask;
// each fired rule appends its own adjustment.
func applyAskGuardrails(ask AskType, connectorStrength, targetConfidence, safety float64, hasCompanyContext bool) (AskType, []string) {
	var adjustments []string

	if ask == AskReferral && (!hasCompanyContext || safety < 0.62) {
		ask = AskIntro
		adjustments = append(adjustments, "downgraded referral to intro due to weak company context/safety")
	}

	if ask == AskReferral && (connectorStrength < 0.7 || targetConfidence < 0.65) {
		ask = AskIntro
		adjustments = append(adjustments, "downgraded referral to intro due to low connector strength/target confidence")
	}

	if ask == AskIntro && (connectorStrength < 0.45 || targetConfidence < 0.5) {
		ask = AskContext
		adjustments = append(adjustments, "downgraded intro to context due to low confidence")
	}

	return ask, adjustments
}

// ClassifyQualityTier buckets a guardrail-adjusted score, gated by safety.
func ClassifyQualityTier(pathScore, safety float64) QualityTier {
	if pathScore >= 80 && safety >= 0.65 {
		return TierHigh
	}
	if pathScore >= 65 && safety >= 0.45 {
		return TierMedium
	}
	return TierLow
}

// weightedPoints converts a [0,1] signal into weighted score points.
func weightedPoints(signal, weight float64) float64 {
	return Round2(Clamp01(signal) * weight)
}

// ScoreConnectorPath computes the seven-dimension weighted score for one
// (target, connector) pair, applies ask guardrails and assembles the
// rationale. Pure; everything it needs arrives in the input.
func ScoreConnectorPath(input PathInput) PathResult {
	connectorTitle := strings.ToLower(input.Connector.CurrentTitle)
	targetTitle := strings.ToLower(input.Target.CurrentTitle)
	connectorCompany := strings.ToLower(input.Connector.CurrentCompany)
	companyNeedle := strings.ToLower(strings.TrimSpace(input.TargetCompany))
	targetCompany := strings.ToLower(strings.TrimSpace(input.Target.CurrentCompany))

	companyMatch := companyNeedle != "" && strings.Contains(connectorCompany, companyNeedle)
	sharedTargetCompany := targetCompany != "" && strings.Contains(connectorCompany, targetCompany)
	hasCompanyContext := companyMatch || sharedTargetCompany
	baseAsk := ClassifyAskType(input.Connector.CurrentTitle)

	titleOverlap := 0
	for _, token := range TitleTokens(targetTitle) {
		if strings.Contains(connectorTitle, token) {
			titleOverlap++
		}
	}
	functionMatch := 0.0
	if input.FunctionToken != "" && strings.Contains(connectorTitle, input.FunctionToken) {
		functionMatch = 1
	}
	seniorityAlignment := estimateSeniorityAlignment(connectorTitle, targetTitle)
	influence := EstimateConnectorInfluence(input.Connector.CurrentTitle)

	companySignal := 0.35
	if companyMatch {
		companySignal = 1
	} else if sharedTargetCompany {
		companySignal = 0.72
	}
	roleSignal := Clamp01(float64(titleOverlap)*0.24 + functionMatch*0.34 + seniorityAlignment*0.42)
	relationshipSignal := Clamp01(input.ConnectorStrength)
	confidenceSignal := Clamp01(input.Target.Confidence)
	askFitSignal := estimateAskFit(baseAsk, influence, relationshipSignal, confidenceSignal, hasCompanyContext)
	safetySignal := estimateSafety(relationshipSignal, confidenceSignal, influence, hasCompanyContext)

	weights := input.Weights
	breakdown := ScoreBreakdown{
		ScoringVersion:     ScoringVersion,
		CompanyAlignment:   weightedPoints(companySignal, weights.CompanyAlignment),
		RoleAlignment:      weightedPoints(roleSignal, weights.RoleAlignment),
		Relationship:       weightedPoints(relationshipSignal, weights.Relationship),
		ConnectorInfluence: weightedPoints(influence, weights.ConnectorInfluence),
		TargetConfidence:   weightedPoints(confidenceSignal, weights.TargetConfidence),
		AskFit:             weightedPoints(askFitSignal, weights.AskFit),
		Safety:             weightedPoints(safetySignal, weights.Safety),
	}
	totalBeforeGuardrails := breakdown.CompanyAlignment + breakdown.RoleAlignment +
		breakdown.Relationship + breakdown.ConnectorInfluence +
		breakdown.TargetConfidence + breakdown.AskFit + breakdown.Safety
	breakdown.TotalBeforeGuardrails = Round2(totalBeforeGuardrails)

	ask, adjustments := applyAskGuardrails(baseAsk, relationshipSignal, confidenceSignal, safetySignal, hasCompanyContext)

	penaltyPerAdjustment := input.GuardrailPenalty
	if penaltyPerAdjustment <= 0 {
		penaltyPerAdjustment = DefaultGuardrailPenalty
	}
	penalty := float64(len(adjustments)) * penaltyPerAdjustment
	breakdown.GuardrailPenalty = penalty
	breakdown.GuardrailAdjustments = adjustments

	pathScore := Round2(clampScore(totalBeforeGuardrails - penalty))
	breakdown.QualityTier = ClassifyQualityTier(pathScore, safetySignal)

	rationale := buildRationale(rationaleInput{
		companyMatch:        companyMatch,
		sharedTargetCompany: sharedTargetCompany,
		roleSignal:          roleSignal,
		seniorityAlignment:  seniorityAlignment,
		influence:           influence,
		relationship:        relationshipSignal,
		targetConfidence:    confidenceSignal,
		safety:              safetySignal,
		adjustments:         adjustments,
	})

	return PathResult{
		ConnectorStrength: input.ConnectorStrength,
		PathScore:         pathScore,
		Ask:               ask,
		Rationale:         rationale,
		Breakdown:         breakdown,
	}
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

type rationaleInput struct {
	companyMatch        bool
	sharedTargetCompany bool
	roleSignal          float64
	seniorityAlignment  float64
	influence           float64
	relationship        float64
	targetConfidence    float64
	safety              float64
	adjustments         []string
}

// buildRationale assembles the human-readable explanation from the signals
// that crossed their notable thresholds.
func buildRationale(input rationaleInput) string {
	var parts []string
	if input.companyMatch {
		parts = append(parts, "direct company match")
	} else if input.sharedTargetCompany {
		parts = append(parts, "shared target-company context")
	}
	if input.roleSignal >= 0.62 {
		parts = append(parts, "strong function/title alignment")
	}
	if input.seniorityAlignment >= 0.7 {
		parts = append(parts, "good seniority alignment")
	}
	if input.influence >= 0.65 {
		parts = append(parts, "high-influence connector role")
	}
	if input.relationship >= 0.72 {
		parts = append(parts, "high connector strength")
	}
	if input.targetConfidence >= 0.7 {
		parts = append(parts, "high target confidence")
	}
	if input.safety < 0.6 {
		parts = append(parts, "safety constraints applied")
	}

	prefix := "Path is viable but lower-confidence than other options."
	if len(parts) > 0 {
		prefix = fmt.Sprintf("Path ranks well due to %s.", strings.Join(parts, ", "))
	}

	if len(input.adjustments) > 0 {
		return fmt.Sprintf("%s Ask guardrails: %s.", prefix, strings.Join(input.adjustments, ", "))
	}
	return prefix
}
