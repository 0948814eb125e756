// Package watched reads per-episode watch state from a media server. Plex and
// Jellyfin are variants of the same capability; callers only see Client.
package watched

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sweeparr/sweeparr/config"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// WatchRecord is one episode's playback state, keyed the only way the two
// catalogs can be joined: by series title and episode position.
type WatchRecord struct {
	SeriesTitle   string
	SeasonNumber  int
	EpisodeNumber int
	Watched       bool
	LastWatched   *time.Time
}

type Client interface {
	ListWatchState(ctx context.Context) ([]WatchRecord, error)
}

// ErrUnauthorized is returned for 401/403 responses from the watch server.
var ErrUnauthorized = errors.New("watched: unauthorized")

// NewWatchClient returns the watch-state client the configuration selects.
func NewWatchClient(httpClient HTTPClient, cfg config.Config) (Client, error) {
	switch {
	case cfg.Plex.Configured():
		return NewPlexClient(httpClient, cfg.Plex.URL, cfg.Plex.APIKey.Reveal())
	case cfg.Jellyfin.Configured():
		return NewJellyfinClient(httpClient, cfg.Jellyfin.URL, cfg.Jellyfin.APIKey.Reveal(), cfg.Jellyfin.User)
	default:
		return nil, config.ErrNoWatchServer
	}
}
