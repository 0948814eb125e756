package watched

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sweeparr/sweeparr/pkg/logger"
	"go.uber.org/zap"
)

// JellyfinClient reads played state for one configured user. Works against
// Emby as well; the endpoints predate the fork.
type JellyfinClient struct {
	http    HTTPClient
	baseURL *url.URL
	token   string
	user    string
}

func NewJellyfinClient(httpClient HTTPClient, rawURL, token, user string) (*JellyfinClient, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing jellyfin url: %w", err)
	}

	return &JellyfinClient{
		http:    httpClient,
		baseURL: base,
		token:   token,
		user:    user,
	}, nil
}

type jellyfinUser struct {
	Name string `json:"Name"`
	ID   string `json:"Id"`
}

type jellyfinItems struct {
	Items []jellyfinEpisode `json:"Items"`
}

type jellyfinEpisode struct {
	Name              string           `json:"Name"`
	SeriesName        string           `json:"SeriesName"`
	ParentIndexNumber *int             `json:"ParentIndexNumber"`
	IndexNumber       *int             `json:"IndexNumber"`
	UserData          jellyfinUserData `json:"UserData"`
}

type jellyfinUserData struct {
	Played         bool       `json:"Played"`
	LastPlayedDate *time.Time `json:"LastPlayedDate"`
}

// ListWatchState returns a record per episode visible to the configured user.
func (c *JellyfinClient) ListWatchState(ctx context.Context) ([]WatchRecord, error) {
	log := logger.FromCtx(ctx)

	userID, err := c.resolveUser(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Episode")
	q.Set("Fields", "SeriesName")

	b, err := c.get(ctx, "/Users/"+userID+"/Items", q)
	if err != nil {
		return nil, fmt.Errorf("listing jellyfin episodes: %w", err)
	}

	var items jellyfinItems
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decoding jellyfin episodes: %w", err)
	}

	records := make([]WatchRecord, 0, len(items.Items))
	for _, ep := range items.Items {
		if ep.SeriesName == "" || ep.ParentIndexNumber == nil || ep.IndexNumber == nil {
			log.Warnw("skipping jellyfin episode without series or index", zap.String("name", ep.Name))
			continue
		}

		records = append(records, WatchRecord{
			SeriesTitle:   ep.SeriesName,
			SeasonNumber:  *ep.ParentIndexNumber,
			EpisodeNumber: *ep.IndexNumber,
			Watched:       ep.UserData.Played,
			LastWatched:   ep.UserData.LastPlayedDate,
		})
	}

	return records, nil
}

// resolveUser maps the configured username to its server-side ID.
func (c *JellyfinClient) resolveUser(ctx context.Context) (string, error) {
	b, err := c.get(ctx, "/Users", nil)
	if err != nil {
		return "", fmt.Errorf("listing jellyfin users: %w", err)
	}

	var users []jellyfinUser
	if err := json.Unmarshal(b, &users); err != nil {
		return "", fmt.Errorf("decoding jellyfin users: %w", err)
	}

	for _, u := range users {
		if u.Name == c.user {
			return u.ID, nil
		}
	}

	return "", fmt.Errorf("jellyfin user %q not found", c.user)
}

func (c *JellyfinClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Emby-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("jellyfin: unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
