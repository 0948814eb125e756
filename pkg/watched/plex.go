package watched

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"go.uber.org/zap"
)

// PlexClient walks the Plex library tree down to episodes. Plex speaks XML.
type PlexClient struct {
	http    HTTPClient
	baseURL *url.URL
	token   string
}

func NewPlexClient(httpClient HTTPClient, rawURL, token string) (*PlexClient, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing plex url: %w", err)
	}

	return &PlexClient{
		http:    httpClient,
		baseURL: base,
		token:   token,
	}, nil
}

type plexContainer struct {
	XMLName     xml.Name        `xml:"MediaContainer"`
	Directories []plexDirectory `xml:"Directory"`
	Videos      []plexVideo     `xml:"Video"`
}

type plexDirectory struct {
	Key   string `xml:"key,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type plexVideo struct {
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	ParentIndex      *int   `xml:"parentIndex,attr"`
	Index            *int   `xml:"index,attr"`
	ViewCount        int    `xml:"viewCount,attr"`
	LastViewedAt     int64  `xml:"lastViewedAt,attr"`
}

// ListWatchState returns a record per episode across every TV library section.
func (c *PlexClient) ListWatchState(ctx context.Context) ([]WatchRecord, error) {
	log := logger.FromCtx(ctx)

	sections, err := c.fetch(ctx, "/library/sections")
	if err != nil {
		return nil, fmt.Errorf("listing plex sections: %w", err)
	}

	var records []WatchRecord
	for _, section := range sections.Directories {
		if section.Type != "show" {
			continue
		}

		shows, err := c.fetch(ctx, "/library/sections/"+section.Key+"/all")
		if err != nil {
			return nil, fmt.Errorf("listing section %q: %w", section.Title, err)
		}

		for _, show := range shows.Directories {
			seasons, err := c.fetch(ctx, show.Key)
			if err != nil {
				return nil, fmt.Errorf("listing seasons of %q: %w", show.Title, err)
			}

			for _, season := range seasons.Directories {
				// the "All episodes" pseudo-season duplicates every leaf
				if season.Type != "season" || strings.HasSuffix(season.Key, "allLeaves") {
					continue
				}

				episodes, err := c.fetch(ctx, season.Key)
				if err != nil {
					return nil, fmt.Errorf("listing episodes of %q %q: %w", show.Title, season.Title, err)
				}

				for _, ep := range episodes.Videos {
					if ep.Index == nil || ep.ParentIndex == nil {
						log.Warnw("skipping plex episode without index",
							zap.String("show", show.Title), zap.String("season", season.Title))
						continue
					}

					title := ep.GrandparentTitle
					if title == "" {
						title = show.Title
					}

					record := WatchRecord{
						SeriesTitle:   title,
						SeasonNumber:  *ep.ParentIndex,
						EpisodeNumber: *ep.Index,
						Watched:       ep.ViewCount > 0,
					}
					if ep.LastViewedAt > 0 {
						at := time.Unix(ep.LastViewedAt, 0).UTC()
						record.LastWatched = &at
					}
					records = append(records, record)
				}
			}
		}
	}

	return records, nil
}

func (c *PlexClient) fetch(ctx context.Context, path string) (*plexContainer, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("plex: unexpected status %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var container plexContainer
	if err := xml.Unmarshal(b, &container); err != nil {
		return nil, fmt.Errorf("decoding plex response: %w", err)
	}

	return &container, nil
}
