// Package sonarr is a client for the slice of the Sonarr v3 API that sweeping
// needs: listing the library, and unmonitoring/deleting what has been watched.
package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientInterface is what consumers depend on; *Client implements it.
type ClientInterface interface {
	ListSeries(ctx context.Context) ([]Series, error)
	ListEpisodes(ctx context.Context, seriesID int64) ([]Episode, error)
	ListEpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error)
	ListTags(ctx context.Context) ([]Tag, error)
	UnmonitorSeason(ctx context.Context, seriesID int64, seasonNumber int) error
	DeleteEpisodeFile(ctx context.Context, fileID int64) error
}

// ErrUnauthorized is returned for 401/403 responses. Never retried; a partial
// or unauthorized view of the library must abort the run.
var ErrUnauthorized = errors.New("sonarr: unauthorized")

type Client struct {
	http    HTTPClient
	baseURL *url.URL
	apiKey  string
}

func New(httpClient HTTPClient, rawURL, apiKey string) (*Client, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing sonarr url: %w", err)
	}

	return &Client{
		http:    httpClient,
		baseURL: base,
		apiKey:  apiKey,
	}, nil
}

// Series is a TV show as Sonarr sees it.
type Series struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Tags    []int64  `json:"tags"`
	Seasons []Season `json:"seasons"`
}

type Season struct {
	SeasonNumber int              `json:"seasonNumber"`
	Monitored    bool             `json:"monitored"`
	Statistics   SeasonStatistics `json:"statistics"`
}

type SeasonStatistics struct {
	EpisodeFileCount  int        `json:"episodeFileCount"`
	EpisodeCount      int        `json:"episodeCount"`
	TotalEpisodeCount int        `json:"totalEpisodeCount"`
	NextAiring        *time.Time `json:"nextAiring,omitempty"`
	PreviousAiring    *time.Time `json:"previousAiring,omitempty"`
	SizeOnDisk        int64      `json:"sizeOnDisk"`
}

type Episode struct {
	ID            int64      `json:"id"`
	SeriesID      int64      `json:"seriesId"`
	SeasonNumber  int        `json:"seasonNumber"`
	EpisodeNumber int        `json:"episodeNumber"`
	Title         string     `json:"title"`
	HasFile       bool       `json:"hasFile"`
	EpisodeFileID int64      `json:"episodeFileId"`
	AirDateUTC    *time.Time `json:"airDateUtc,omitempty"`
	Monitored     bool       `json:"monitored"`
}

type EpisodeFile struct {
	ID           int64  `json:"id"`
	SeriesID     int64  `json:"seriesId"`
	SeasonNumber int    `json:"seasonNumber"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
}

type Tag struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// ListSeries returns every series Sonarr manages.
func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	var series []Series
	err := c.get(ctx, "/api/v3/series", nil, &series)
	return series, err
}

// ListEpisodes returns all episodes of a series, downloaded or not.
func (c *Client) ListEpisodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	q := url.Values{}
	q.Set("seriesId", strconv.FormatInt(seriesID, 10))

	var episodes []Episode
	err := c.get(ctx, "/api/v3/episode", q, &episodes)
	return episodes, err
}

// ListEpisodeFiles returns the files on disk for a series.
func (c *Client) ListEpisodeFiles(ctx context.Context, seriesID int64) ([]EpisodeFile, error) {
	q := url.Values{}
	q.Set("seriesId", strconv.FormatInt(seriesID, 10))

	var files []EpisodeFile
	err := c.get(ctx, "/api/v3/episodefile", q, &files)
	return files, err
}

// ListTags returns all tags known to Sonarr.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	err := c.get(ctx, "/api/v3/tag", nil, &tags)
	return tags, err
}

// UnmonitorSeason flips monitored off for one season so Sonarr stops
// re-fetching episodes once their files are deleted. The series document is
// round-tripped as raw JSON so fields this client does not model survive the
// update.
func (c *Client) UnmonitorSeason(ctx context.Context, seriesID int64, seasonNumber int) error {
	log := logger.FromCtx(ctx)

	path := fmt.Sprintf("/api/v3/series/%d", seriesID)

	var doc map[string]any
	if err := c.get(ctx, path, nil, &doc); err != nil {
		return fmt.Errorf("fetching series %d: %w", seriesID, err)
	}

	seasons, ok := doc["seasons"].([]any)
	if !ok {
		return fmt.Errorf("series %d document has no seasons", seriesID)
	}

	found := false
	for _, s := range seasons {
		season, ok := s.(map[string]any)
		if !ok {
			continue
		}
		num, ok := season["seasonNumber"].(float64)
		if !ok || int(num) != seasonNumber {
			continue
		}
		season["monitored"] = false
		found = true
	}

	if !found {
		log.Debugw("season not present in series document, nothing to unmonitor",
			zap.Int64("series_id", seriesID), zap.Int("season", seasonNumber))
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, path, nil, bytes.NewReader(body))
	return err
}

// DeleteEpisodeFile asks Sonarr to remove a file from disk. A 404 means the
// file is already gone and counts as success.
func (c *Client) DeleteEpisodeFile(ctx context.Context, fileID int64) error {
	path := fmt.Sprintf("/api/v3/episodefile/%d", fileID)

	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		logger.FromCtx(ctx).Debugw("episode file already gone", zap.Int64("file_id", fileID))
		return nil
	}
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	b, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// StatusError is a non-2xx response from Sonarr.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sonarr: unexpected status %s", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return b, nil
}
