package domain

import "strings"

// AskType is the kind of favour requested along a connector path.
type AskType string

// Ask types, ordered from lightest to heaviest ask.
const (
	// AskContext is an informational chat about the company or team.
	AskContext AskType = "context"

	// AskIntro is a direct introduction to the target.
	AskIntro AskType = "intro"

	// AskReferral is a formal referral into a hiring process.
	AskReferral AskType = "referral"
)

// IsValid returns true if the ask type is recognised.
func (a AskType) IsValid() bool {
	switch a {
	case AskContext, AskIntro, AskReferral:
		return true
	default:
		return false
	}
}

// Risk orders ask types by how much they presume on the relationship.
// Guardrails only ever move asks toward lower risk.
func (a AskType) Risk() int {
	switch a {
	case AskReferral:
		return 2
	case AskIntro:
		return 1
	default:
		return 0
	}
}

var referralTitleKeywords = []string{"recruiter", "recruiting", "talent", "people partner"}

var contextTitleKeywords = []string{"manager", "director", "lead", "head of", "vp"}

// ClassifyAskType derives the base ask for a connector from their title
// alone. Recruiting roles can carry a referral; management roles are best for
// context; everyone else starts at an intro.
func ClassifyAskType(title string) AskType {
	normalized := strings.ToLower(title)

	for _, keyword := range referralTitleKeywords {
		if strings.Contains(normalized, keyword) {
			return AskReferral
		}
	}

	for _, keyword := range contextTitleKeywords {
		if strings.Contains(normalized, keyword) {
			return AskContext
		}
	}

	return AskIntro
}
