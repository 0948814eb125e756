package sweep

import (
	"context"
	"fmt"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"github.com/sweeparr/sweeparr/pkg/machine"
	"go.uber.org/zap"
)

// CandidateState tracks one candidate through execution.
type CandidateState string

const (
	CandidatePlanned      CandidateState = "planned"
	CandidateUnmonitoring CandidateState = "unmonitoring"
	CandidateDeleting     CandidateState = "deleting"
	CandidateDone         CandidateState = "done"
	CandidateFailed       CandidateState = "failed"
)

func newCandidateMachine() *machine.StateMachine[CandidateState] {
	return machine.New(CandidatePlanned,
		machine.From(CandidatePlanned).To(CandidateUnmonitoring),
		machine.From(CandidateUnmonitoring).To(CandidateDeleting, CandidateFailed),
		machine.From(CandidateDeleting).To(CandidateDone, CandidateFailed),
	)
}

// Result records how far one candidate got.
type Result struct {
	Candidate Candidate
	State     CandidateState
	Err       error
}

type Results []Result

// Failed reports whether any candidate did not finish.
func (rs Results) Failed() bool {
	for _, r := range rs {
		if r.State != CandidateDone {
			return true
		}
	}
	return false
}

// Execute runs the plan against the catalog, one candidate at a time. Each
// candidate is unmonitored before its files are deleted so the download
// manager doesn't re-grab episodes mid-sweep. A failed candidate is recorded
// and the sweep moves on; candidates are independent. Cancellation is only
// honored between candidates so a started candidate is never left with its
// season unmonitored but its files intact for an avoidable reason.
func Execute(ctx context.Context, catalog SeriesCatalog, plan Plan) Results {
	log := logger.FromCtx(ctx)

	results := make(Results, 0, len(plan.Candidates))
	for _, c := range plan.Candidates {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Candidate: c, State: CandidatePlanned, Err: err})
			continue
		}
		results = append(results, executeCandidate(ctx, catalog, c))
	}

	for _, r := range results {
		if r.Err != nil {
			log.Errorw("candidate failed",
				zap.String("series", r.Candidate.SeriesTitle),
				zap.Int("season", r.Candidate.SeasonNumber),
				zap.String("state", string(r.State)),
				zap.Error(r.Err))
		}
	}

	return results
}

func executeCandidate(ctx context.Context, catalog SeriesCatalog, c Candidate) Result {
	log := logger.FromCtx(ctx)
	sm := newCandidateMachine()

	fail := func(err error) Result {
		_ = sm.Transition(CandidateFailed)
		return Result{Candidate: c, State: sm.Current(), Err: err}
	}

	if err := sm.Transition(CandidateUnmonitoring); err != nil {
		return fail(err)
	}
	if err := catalog.UnmonitorSeason(ctx, c.SeriesID, c.SeasonNumber); err != nil {
		return fail(fmt.Errorf("unmonitoring %s S%02d: %w", c.SeriesTitle, c.SeasonNumber, err))
	}

	if err := sm.Transition(CandidateDeleting); err != nil {
		return fail(err)
	}
	for _, f := range c.Files {
		if err := catalog.DeleteEpisodeFile(ctx, f.ID); err != nil {
			return fail(fmt.Errorf("deleting %s: %w", f.Path, err))
		}
		log.Debugw("deleted episode file",
			zap.String("series", c.SeriesTitle),
			zap.Int("season", c.SeasonNumber),
			zap.String("path", f.Path))
	}

	if err := sm.Transition(CandidateDone); err != nil {
		return fail(err)
	}
	return Result{Candidate: c, State: sm.Current()}
}
