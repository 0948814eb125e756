package sweep

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eligibleEvaluation(id int64, title string, season int, files ...Episode) Evaluation {
	return Evaluation{
		MatchedSeason: MatchedSeason{
			Series: Series{ID: id, Title: title},
			Season: Season{Number: season, Episodes: files},
		},
		Verdict: Verdict{Eligible: true, Reason: ReasonEligible},
	}
}

func TestBuildPlan(t *testing.T) {
	t.Run("orders by title then season", func(t *testing.T) {
		evals := []Evaluation{
			eligibleEvaluation(2, "The Wire", 2,
				Episode{Number: 1, Size: 100, File: FileRef{ID: 21, Path: "/tv/wire/s02e01.mkv"}}),
			eligibleEvaluation(1, "Fargo", 1,
				Episode{Number: 1, Size: 200, File: FileRef{ID: 11, Path: "/tv/fargo/s01e01.mkv"}}),
			eligibleEvaluation(2, "The Wire", 1,
				Episode{Number: 1, Size: 300, File: FileRef{ID: 20, Path: "/tv/wire/s01e01.mkv"}}),
		}

		plan := BuildPlan(evals)
		require.Len(t, plan.Candidates, 3)
		assert.Equal(t, "Fargo", plan.Candidates[0].SeriesTitle)
		assert.Equal(t, 1, plan.Candidates[1].SeasonNumber)
		assert.Equal(t, 2, plan.Candidates[2].SeasonNumber)
		assert.Equal(t, int64(600), plan.TotalSize)
	})

	t.Run("skips ineligible evaluations", func(t *testing.T) {
		evals := []Evaluation{
			{
				MatchedSeason: MatchedSeason{
					Series: Series{ID: 1, Title: "Fargo"},
					Season: Season{Number: 1, Episodes: []Episode{
						{Number: 1, Size: 100, File: FileRef{ID: 1, Path: "/tv/fargo/s01e01.mkv"}},
					}},
				},
				Verdict: Verdict{Reason: ReasonUnwatched},
			},
		}

		plan := BuildPlan(evals)
		assert.Empty(t, plan.Candidates)
		assert.Zero(t, plan.TotalSize)
	})

	t.Run("skips seasons with no files", func(t *testing.T) {
		evals := []Evaluation{
			eligibleEvaluation(1, "Fargo", 1, Episode{Number: 1}),
		}

		plan := BuildPlan(evals)
		assert.Empty(t, plan.Candidates)
	})

	t.Run("multi-episode files counted once", func(t *testing.T) {
		shared := FileRef{ID: 7, Path: "/tv/fargo/s01e01e02.mkv"}
		evals := []Evaluation{
			eligibleEvaluation(1, "Fargo", 1,
				Episode{Number: 1, Size: 500, File: shared},
				Episode{Number: 2, Size: 500, File: shared}),
		}

		plan := BuildPlan(evals)
		require.Len(t, plan.Candidates, 1)
		assert.Len(t, plan.Candidates[0].Files, 1)
		assert.Equal(t, int64(500), plan.Candidates[0].TotalSize)
	})
}

func TestPlan_Report(t *testing.T) {
	evals := []Evaluation{
		eligibleEvaluation(1, "Fargo", 1,
			Episode{Number: 1, Size: 1536 * 1024 * 1024, File: FileRef{ID: 11, Path: "/tv/fargo/s01e01.mkv"}},
			Episode{Number: 2, Size: 1536 * 1024 * 1024, File: FileRef{ID: 12, Path: "/tv/fargo/s01e02.mkv"}}),
		eligibleEvaluation(2, "The Wire", 3,
			Episode{Number: 1, Size: 700 * 1024 * 1024, File: FileRef{ID: 21, Path: "/tv/wire/s03e01.mkv"}}),
	}

	plan := BuildPlan(evals)

	lines := plan.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "delete 2 files: Fargo S01: 3.0 GiB", lines[0])
	assert.Equal(t, "delete 1 files: The Wire S03: 700 MiB", lines[1])

	snaps.MatchSnapshot(t, plan.Table())
}
