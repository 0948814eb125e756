package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"go.uber.org/zap"
)

// Sweeper wires the two catalogs to the decision pipeline.
type Sweeper struct {
	catalog SeriesCatalog
	source  WatchSource
	policy  RetentionPolicy
	workers int

	now func() time.Time
}

func New(catalog SeriesCatalog, source WatchSource, policy RetentionPolicy, workers int) *Sweeper {
	return &Sweeper{
		catalog: catalog,
		source:  source,
		policy:  policy,
		workers: workers,
		now:     time.Now,
	}
}

// Run performs one sweep: snapshot both catalogs, match, evaluate, plan, and
// report to out. With deleteFiles false nothing is mutated; the plan is only
// printed. The returned results are empty on a dry run.
func (s *Sweeper) Run(ctx context.Context, out io.Writer, deleteFiles bool) (Plan, Results, error) {
	log := logger.FromCtx(ctx)

	series, records, err := FetchSnapshots(ctx, s.catalog, s.source, s.workers)
	if err != nil {
		return Plan{}, nil, err
	}
	log.Infow("fetched snapshots",
		zap.Int("series", len(series)),
		zap.Int("watch_records", len(records)))

	matched := BuildMatchIndex(ctx, series, records)

	now := s.now()
	evals := make([]Evaluation, 0, len(matched))
	for _, m := range matched {
		verdict := Evaluate(m, s.policy, now)
		if !verdict.Eligible {
			log.Debugw("season not eligible",
				zap.String("series", m.Series.Title),
				zap.Int("season", m.Season.Number),
				zap.String("reason", string(verdict.Reason)))
		}
		evals = append(evals, Evaluation{MatchedSeason: m, Verdict: verdict})
	}

	plan := BuildPlan(evals)
	if len(plan.Candidates) == 0 {
		fmt.Fprintln(out, "nothing to delete")
		return plan, nil, nil
	}

	for _, line := range plan.Lines() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, plan.Table())

	if !deleteFiles {
		log.Infow("dry run, not deleting", zap.Int("candidates", len(plan.Candidates)))
		return plan, nil, nil
	}

	results := Execute(ctx, s.catalog, plan)
	return plan, results, nil
}
