package sweep

import (
	"slices"
	"time"
)

// Reason explains an eligibility verdict. Exactly one reason is reported per
// season; the evaluation order below is the precedence.
type Reason string

const (
	ReasonIncomplete  Reason = "incomplete"
	ReasonUnwatched   Reason = "unwatched"
	ReasonRetained    Reason = "retained-by-tag"
	ReasonWithinGrace Reason = "within-grace-period"
	ReasonEligible    Reason = "eligible"
)

type Verdict struct {
	Eligible bool
	Reason   Reason
}

// Evaluation pairs a matched season with its verdict.
type Evaluation struct {
	MatchedSeason
	Verdict
}

// Evaluate decides whether one matched season may be deleted under the
// policy. Rules run in a fixed order and the first failing rule names the
// reason, so the output is deterministic and debuggable:
//
//  1. every episode the catalog lists must be downloaded
//  2. every episode must have a watched record; no record means unwatched
//  3. the retain tag blocks deletion unconditionally
//  4. the season must be older than the retain duration
func Evaluate(m MatchedSeason, policy RetentionPolicy, now time.Time) Verdict {
	if len(m.Season.Episodes) == 0 {
		// an empty season is incomplete, not vacuously complete
		return Verdict{Reason: ReasonIncomplete}
	}
	for _, ep := range m.Season.Episodes {
		if !ep.Downloaded {
			return Verdict{Reason: ReasonIncomplete}
		}
	}

	for _, ep := range m.Season.Episodes {
		record, ok := m.Records[ep.Number]
		if !ok || !record.Watched {
			return Verdict{Reason: ReasonUnwatched}
		}
	}

	if policy.Tag != "" && slices.Contains(m.Series.Tags, policy.Tag) {
		return Verdict{Reason: ReasonRetained}
	}

	// a season with no known air date can't be proven old enough
	if m.Season.LastAirDate.IsZero() || now.Sub(m.Season.LastAirDate) < policy.Duration {
		return Verdict{Reason: ReasonWithinGrace}
	}

	return Verdict{Eligible: true, Reason: ReasonEligible}
}
