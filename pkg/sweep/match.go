package sweep

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sweeparr/sweeparr/pkg/logger"
	"github.com/sweeparr/sweeparr/pkg/watched"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// near-miss titles within this edit distance are logged for the operator
const nearMissDistance = 2

// NormalizeTitle prepares a title for cross-system comparison: Unicode case
// fold and whitespace trim, nothing more. Any further normalization would
// only widen the join, and the join must stay fail-closed.
func NormalizeTitle(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// BuildMatchIndex joins catalog seasons with watch records by title and
// season number. A title must appear exactly once in each source to match;
// anything absent, duplicated, or conflicting yields no MatchedSeason for
// that title. Guessing wrong here deletes the wrong show's data, so the
// default is always exclusion.
func BuildMatchIndex(ctx context.Context, series []Series, records []watched.WatchRecord) []MatchedSeason {
	log := logger.FromCtx(ctx)

	catalogByTitle := make(map[string][]Series)
	for _, s := range series {
		key := NormalizeTitle(s.Title)
		catalogByTitle[key] = append(catalogByTitle[key], s)
	}

	// season number -> episode number -> record
	watchByTitle := make(map[string]map[int]map[int]watched.WatchRecord)
	ambiguousWatch := make(map[string]bool)
	for _, r := range records {
		key := NormalizeTitle(r.SeriesTitle)
		seasons, ok := watchByTitle[key]
		if !ok {
			seasons = make(map[int]map[int]watched.WatchRecord)
			watchByTitle[key] = seasons
		}
		episodes, ok := seasons[r.SeasonNumber]
		if !ok {
			episodes = make(map[int]watched.WatchRecord)
			seasons[r.SeasonNumber] = episodes
		}

		if _, exists := episodes[r.EpisodeNumber]; exists {
			// two records for one episode position means two same-titled
			// shows on the watch server; the title can't be trusted
			ambiguousWatch[key] = true
			continue
		}
		episodes[r.EpisodeNumber] = r
	}

	var matched []MatchedSeason
	for key, group := range catalogByTitle {
		if len(group) > 1 {
			log.Infow("excluding duplicated title in series catalog", zap.String("title", group[0].Title))
			continue
		}
		if ambiguousWatch[key] {
			log.Infow("excluding title with conflicting watch records", zap.String("title", group[0].Title))
			continue
		}

		s := group[0]
		seasons, ok := watchByTitle[key]
		if !ok {
			logNearMisses(log, s.Title, key, watchByTitle)
			continue
		}

		for _, season := range s.Seasons {
			episodes, ok := seasons[season.Number]
			if !ok {
				// the watch server doesn't list this season number
				continue
			}

			matched = append(matched, MatchedSeason{
				Series:  s,
				Season:  season,
				Records: episodes,
			})
		}
	}

	return matched
}

// logNearMisses points the operator at watch-side titles that almost match an
// unmatched catalog title. Diagnostics only: a near miss is never matched.
func logNearMisses(log *zap.SugaredLogger, title, key string, watchByTitle map[string]map[int]map[int]watched.WatchRecord) {
	for other := range watchByTitle {
		if levenshtein.ComputeDistance(key, other) <= nearMissDistance {
			log.Infow("title not found on watch server, but a similar one exists",
				zap.String("title", title),
				zap.String("similar", other))
			return
		}
	}

	log.Debugw("title not found on watch server", zap.String("title", title))
}
