package domain

import (
	"math"
	"time"
)

// ScoringWeights is the versioned weight configuration behind connector-path
// scoring. A weight set is a value: the learning subsystem produces new sets,
// it never edits one in place. Weights are expressed in points and normalise
// to a total of 100.
type ScoringWeights struct {
	CompanyAlignment   float64
	RoleAlignment      float64
	Relationship       float64
	ConnectorInfluence float64
	TargetConfidence   float64
	AskFit             float64
	Safety             float64
}

// DefaultWeights returns the documented default weight set.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		CompanyAlignment:   24,
		RoleAlignment:      18,
		Relationship:       18,
		ConnectorInfluence: 14,
		TargetConfidence:   12,
		AskFit:             8,
		Safety:             6,
	}
}

// Sum returns the total of all seven weights.
func (w ScoringWeights) Sum() float64 {
	return w.CompanyAlignment + w.RoleAlignment + w.Relationship +
		w.ConnectorInfluence + w.TargetConfidence + w.AskFit + w.Safety
}

// Normalize returns a copy scaled so the weights sum to 100. A non-positive
// sum falls back to the defaults.
func (w ScoringWeights) Normalize() ScoringWeights {
	total := w.Sum()
	if total <= 0 || math.IsNaN(total) {
		return DefaultWeights()
	}

	scale := func(v float64) float64 {
		return math.Round(v/total*10000) / 100
	}
	return ScoringWeights{
		CompanyAlignment:   scale(w.CompanyAlignment),
		RoleAlignment:      scale(w.RoleAlignment),
		Relationship:       scale(w.Relationship),
		ConnectorInfluence: scale(w.ConnectorInfluence),
		TargetConfidence:   scale(w.TargetConfidence),
		AskFit:             scale(w.AskFit),
		Safety:             scale(w.Safety),
	}
}

// clampWeight bounds a single weight to [0,100], substituting a fallback for
// non-finite values.
func clampWeight(value, fallback float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return math.Max(0, math.Min(100, value))
}

// Merge overlays non-negative overrides onto the receiver and normalises the
// result. Negative or non-finite overrides keep the base value.
func (w ScoringWeights) Merge(overrides ScoringWeights) ScoringWeights {
	pick := func(override, base float64) float64 {
		if override <= 0 {
			return base
		}
		return clampWeight(override, base)
	}
	merged := ScoringWeights{
		CompanyAlignment:   pick(overrides.CompanyAlignment, w.CompanyAlignment),
		RoleAlignment:      pick(overrides.RoleAlignment, w.RoleAlignment),
		Relationship:       pick(overrides.Relationship, w.Relationship),
		ConnectorInfluence: pick(overrides.ConnectorInfluence, w.ConnectorInfluence),
		TargetConfidence:   pick(overrides.TargetConfidence, w.TargetConfidence),
		AskFit:             pick(overrides.AskFit, w.AskFit),
		Safety:             pick(overrides.Safety, w.Safety),
	}
	return merged.Normalize()
}

// ProfileSource records where a weight profile came from.
type ProfileSource string

// Weight profile sources.
const (
	ProfileSourceDefault   ProfileSource = "default"
	ProfileSourceAutoTuned ProfileSource = "auto_tuned"
	ProfileSourceManual    ProfileSource = "manual"
)

// WeightProfile is a versioned, persisted weight set. Exactly one profile is
// active at a time.
type WeightProfile struct {
	ID          string
	Label       string
	Source      ProfileSource
	Weights     ScoringWeights
	SampleSize  int
	ActivatedAt time.Time
}

// FeedbackOutcome is the recorded result of one outreach along a connector
// path.
type FeedbackOutcome string

// Outreach outcomes, best to worst.
const (
	OutcomeIntroAccepted FeedbackOutcome = "intro_accepted"
	OutcomeReplied       FeedbackOutcome = "replied"
	OutcomeSent          FeedbackOutcome = "sent"
	OutcomeFollowUpSent  FeedbackOutcome = "follow_up_sent"
	OutcomeNoResponse    FeedbackOutcome = "no_response"
	OutcomeNotInterested FeedbackOutcome = "not_interested"
)

// IsValid returns true if the outcome is recognised.
func (o FeedbackOutcome) IsValid() bool {
	switch o {
	case OutcomeIntroAccepted, OutcomeReplied, OutcomeSent,
		OutcomeFollowUpSent, OutcomeNoResponse, OutcomeNotInterested:
		return true
	default:
		return false
	}
}

// Scalar maps an outcome onto [-0.6, 1] for weight tuning.
func (o FeedbackOutcome) Scalar() float64 {
	switch o {
	case OutcomeIntroAccepted:
		return 1
	case OutcomeReplied:
		return 0.7
	case OutcomeSent:
		return 0.35
	case OutcomeFollowUpSent:
		return 0.2
	case OutcomeNoResponse:
		return -0.25
	case OutcomeNotInterested:
		return -0.6
	default:
		return 0
	}
}

// Feedback records one outreach outcome against a connector path.
type Feedback struct {
	ID        string
	RunID     string
	PathID    string
	Outcome   FeedbackOutcome
	Note      string
	Source    string
	CreatedAt time.Time
}

// TrainingSample pairs a path's score breakdown with its recorded outcome.
type TrainingSample struct {
	Breakdown ScoreBreakdown
	Outcome   FeedbackOutcome
}

// minTunedWeight keeps every dimension represented after auto-tuning so a
// sparse sample set cannot zero a signal out entirely.
const minTunedWeight = 5

// AutoTuneWeights produces a NEW weight set from historical score/outcome
// pairs: each dimension's weighted score is converted back to a signal
// fraction against the reference weights, averaged with outcome-derived
// sample weights, floored and normalised. The reference set is typically the
// currently active profile's weights.
//
// Returns false when the samples carry no usable signal.
func AutoTuneWeights(samples []TrainingSample, reference ScoringWeights) (ScoringWeights, bool) {
	ref := reference.Normalize()
	var totals [7]float64
	var accumulated float64

	for _, sample := range samples {
		// Shift outcome scalars from [-0.6, 1] into a positive sample weight.
		sampleWeight := (sample.Outcome.Scalar() + 1.2) / 2.2
		b := sample.Breakdown

		totals[0] += fraction(b.CompanyAlignment, ref.CompanyAlignment) * sampleWeight
		totals[1] += fraction(b.RoleAlignment, ref.RoleAlignment) * sampleWeight
		totals[2] += fraction(b.Relationship, ref.Relationship) * sampleWeight
		totals[3] += fraction(b.ConnectorInfluence, ref.ConnectorInfluence) * sampleWeight
		totals[4] += fraction(b.TargetConfidence, ref.TargetConfidence) * sampleWeight
		totals[5] += fraction(b.AskFit, ref.AskFit) * sampleWeight
		totals[6] += fraction(b.Safety, ref.Safety) * sampleWeight
		accumulated += sampleWeight
	}

	if accumulated <= 0 {
		return ScoringWeights{}, false
	}

	floor := func(i int) float64 {
		return math.Max(minTunedWeight, totals[i]/accumulated*100)
	}
	tuned := ScoringWeights{
		CompanyAlignment:   floor(0),
		RoleAlignment:      floor(1),
		Relationship:       floor(2),
		ConnectorInfluence: floor(3),
		TargetConfidence:   floor(4),
		AskFit:             floor(5),
		Safety:             floor(6),
	}
	return tuned.Normalize(), true
}

// fraction recovers the [0,1] signal behind a weighted dimension score.
func fraction(points, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return Clamp01(points / weight)
}
