package sweep

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweeparr/sweeparr/pkg/sonarr"
	sonarrMocks "github.com/sweeparr/sweeparr/pkg/sonarr/mocks"
	"github.com/sweeparr/sweeparr/pkg/watched"
	watchedMocks "github.com/sweeparr/sweeparr/pkg/watched/mocks"
	"go.uber.org/mock/gomock"
)

// one eligible series and one too-recent series, fully downloaded and watched
func sweepFixtures(t *testing.T, ctrl *gomock.Controller, now time.Time) (*sonarrMocks.MockClientInterface, *watchedMocks.MockClient) {
	t.Helper()

	old := now.Add(-60 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	catalog := sonarrMocks.NewMockClientInterface(ctrl)
	catalog.EXPECT().ListSeries(gomock.Any()).Return([]sonarr.Series{
		{ID: 1, Title: "Fargo", Seasons: []sonarr.Season{{SeasonNumber: 1}}},
		{ID: 2, Title: "The Wire", Seasons: []sonarr.Season{{SeasonNumber: 1}}},
	}, nil)
	catalog.EXPECT().ListTags(gomock.Any()).Return(nil, nil)
	catalog.EXPECT().ListEpisodes(gomock.Any(), int64(1)).Return([]sonarr.Episode{
		{ID: 10, SeasonNumber: 1, EpisodeNumber: 1, HasFile: true, EpisodeFileID: 100, AirDateUTC: &old},
	}, nil)
	catalog.EXPECT().ListEpisodeFiles(gomock.Any(), int64(1)).Return([]sonarr.EpisodeFile{
		{ID: 100, SeasonNumber: 1, Path: "/tv/fargo/s01e01.mkv", Size: 1024},
	}, nil)
	catalog.EXPECT().ListEpisodes(gomock.Any(), int64(2)).Return([]sonarr.Episode{
		{ID: 20, SeasonNumber: 1, EpisodeNumber: 1, HasFile: true, EpisodeFileID: 200, AirDateUTC: &recent},
	}, nil)
	catalog.EXPECT().ListEpisodeFiles(gomock.Any(), int64(2)).Return([]sonarr.EpisodeFile{
		{ID: 200, SeasonNumber: 1, Path: "/tv/wire/s01e01.mkv", Size: 2048},
	}, nil)

	source := watchedMocks.NewMockClient(ctrl)
	source.EXPECT().ListWatchState(gomock.Any()).Return([]watched.WatchRecord{
		{SeriesTitle: "Fargo", SeasonNumber: 1, EpisodeNumber: 1, Watched: true},
		{SeriesTitle: "The Wire", SeasonNumber: 1, EpisodeNumber: 1, Watched: true},
	}, nil)

	return catalog, source
}

func TestSweeper_Run(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := RetentionPolicy{Tag: "retain", Duration: 14 * 24 * time.Hour}

	t.Run("dry run plans without deleting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		catalog, source := sweepFixtures(t, ctrl, now)

		s := New(catalog, source, policy, 2)
		s.now = func() time.Time { return now }

		var out bytes.Buffer
		plan, results, err := s.Run(context.Background(), &out, false)
		require.NoError(t, err)
		assert.Empty(t, results)

		require.Len(t, plan.Candidates, 1)
		assert.Equal(t, "Fargo", plan.Candidates[0].SeriesTitle)
		assert.Contains(t, out.String(), "delete 1 files: Fargo S01:")
		assert.NotContains(t, out.String(), "The Wire")
	})

	t.Run("delete run executes the plan", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		catalog, source := sweepFixtures(t, ctrl, now)

		catalog.EXPECT().UnmonitorSeason(gomock.Any(), int64(1), 1).Return(nil)
		catalog.EXPECT().DeleteEpisodeFile(gomock.Any(), int64(100)).Return(nil)

		s := New(catalog, source, policy, 2)
		s.now = func() time.Time { return now }

		var out bytes.Buffer
		_, results, err := s.Run(context.Background(), &out, true)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.False(t, results.Failed())
	})

	t.Run("empty plan reports nothing to delete", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		catalog := sonarrMocks.NewMockClientInterface(ctrl)
		source := watchedMocks.NewMockClient(ctrl)

		catalog.EXPECT().ListSeries(gomock.Any()).Return(nil, nil)
		catalog.EXPECT().ListTags(gomock.Any()).Return(nil, nil)
		source.EXPECT().ListWatchState(gomock.Any()).Return(nil, nil)

		s := New(catalog, source, policy, 2)
		s.now = func() time.Time { return now }

		var out bytes.Buffer
		plan, results, err := s.Run(context.Background(), &out, true)
		require.NoError(t, err)
		assert.Empty(t, plan.Candidates)
		assert.Empty(t, results)
		assert.Contains(t, out.String(), "nothing to delete")
	})
}
