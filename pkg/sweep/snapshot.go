package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"github.com/sweeparr/sweeparr/pkg/sonarr"
	"github.com/sweeparr/sweeparr/pkg/watched"
	"go.uber.org/zap"
)

type SeriesCatalog sonarr.ClientInterface

type WatchSource watched.Client

const DefaultFetchWorkers = 4

// FetchSnapshots reads both catalogs once. The two sources are independent
// reads so they are fetched concurrently; per-series episode listings go
// through a small worker pool to keep pressure on rate-limited APIs bounded.
// Any fetch error aborts the run: decisions over a partial catalog are not
// safe.
func FetchSnapshots(ctx context.Context, catalog SeriesCatalog, source WatchSource, workers int) ([]Series, []watched.WatchRecord, error) {
	if workers < 1 {
		workers = DefaultFetchWorkers
	}

	var (
		wg       sync.WaitGroup
		series   []Series
		records  []watched.WatchRecord
		catErr   error
		watchErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		series, catErr = fetchCatalog(ctx, catalog, workers)
	}()
	go func() {
		defer wg.Done()
		records, watchErr = source.ListWatchState(ctx)
	}()
	wg.Wait()

	if catErr != nil {
		return nil, nil, fmt.Errorf("fetching series catalog: %w", catErr)
	}
	if watchErr != nil {
		return nil, nil, fmt.Errorf("fetching watch state: %w", watchErr)
	}

	return series, records, nil
}

func fetchCatalog(ctx context.Context, catalog SeriesCatalog, workers int) ([]Series, error) {
	listed, err := catalog.ListSeries(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := catalog.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	tagLabels := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagLabels[t.ID] = t.Label
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]Series, len(listed))
	errs := make([]error, len(listed))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := fetchSeries(ctx, catalog, listed[i], tagLabels)
				if err != nil {
					errs[i] = err
					cancel()
					continue
				}
				out[i] = s
			}
		}()
	}

	for i := range listed {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", listed[i].Title, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func fetchSeries(ctx context.Context, catalog SeriesCatalog, s sonarr.Series, tagLabels map[int64]string) (Series, error) {
	log := logger.FromCtx(ctx)

	episodes, err := catalog.ListEpisodes(ctx, s.ID)
	if err != nil {
		return Series{}, err
	}

	files, err := catalog.ListEpisodeFiles(ctx, s.ID)
	if err != nil {
		return Series{}, err
	}

	filesByID := make(map[int64]sonarr.EpisodeFile, len(files))
	for _, f := range files {
		filesByID[f.ID] = f
	}

	bySeason := make(map[int][]Episode)
	lastAired := make(map[int]time.Time)
	for _, ep := range episodes {
		e := Episode{
			Number:     ep.EpisodeNumber,
			Downloaded: ep.HasFile,
		}
		if ep.HasFile {
			f, ok := filesByID[ep.EpisodeFileID]
			if !ok {
				// catalog told us there is a file but didn't list it; treat
				// the episode as not safely deletable
				log.Warnw("episode file missing from listing, treating episode as undownloaded",
					zap.String("series", s.Title),
					zap.Int("season", ep.SeasonNumber),
					zap.Int("episode", ep.EpisodeNumber))
				e.Downloaded = false
			} else {
				e.Size = f.Size
				e.File = FileRef{ID: f.ID, Path: f.Path}
			}
		}
		bySeason[ep.SeasonNumber] = append(bySeason[ep.SeasonNumber], e)

		if ep.AirDateUTC != nil && ep.AirDateUTC.After(lastAired[ep.SeasonNumber]) {
			lastAired[ep.SeasonNumber] = *ep.AirDateUTC
		}
	}

	out := Series{
		ID:    s.ID,
		Title: s.Title,
	}
	for _, id := range s.Tags {
		if label, ok := tagLabels[id]; ok {
			out.Tags = append(out.Tags, label)
		}
	}

	for _, season := range s.Seasons {
		eps := bySeason[season.SeasonNumber]

		last := lastAired[season.SeasonNumber]
		if season.Statistics.PreviousAiring != nil && season.Statistics.PreviousAiring.After(last) {
			last = *season.Statistics.PreviousAiring
		}

		out.Seasons = append(out.Seasons, Season{
			Number:      season.SeasonNumber,
			LastAirDate: last,
			Episodes:    eps,
		})
	}

	return out, nil
}
