// Package sitemap builds the static sitemap.xml of the SPA from the anime
// catalogue published by the AniList GraphQL API.
package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aniwatch-api/internal/logging"

	"github.com/goccy/go-json"
)

const pageQuery = `query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { hasNextPage }
    media(type: ANIME, sort: POPULARITY_DESC, isAdult: false) { id }
  }
}`

// StatusError is a non-2xx answer from the catalogue API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalogue api: status %d: %s", e.Code, e.Body)
}

// Retryable reports whether the request may succeed when repeated.
func (e *StatusError) Retryable() bool {
	return e.Code >= http.StatusInternalServerError
}

type ClientConfig struct {
	Endpoint string
	PerPage  int
	// MaxPages bounds FetchAll; 0 means no bound.
	MaxPages int
	// Attempts is the total tries per page, BaseDelay the first backoff.
	// Backoff is linear: attempt n waits n*BaseDelay.
	Attempts  int
	BaseDelay time.Duration
	HTTP      *http.Client
}

type Client struct {
	cfg  ClientConfig
	wait func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.PerPage <= 0 || cfg.PerPage > 50 {
		cfg.PerPage = 50
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.HTTP == nil {
		cfg.HTTP = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, wait: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type pageResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []struct {
				ID int `json:"id"`
			} `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchPage returns the anime ids of one page and whether more pages follow.
func (c *Client) FetchPage(ctx context.Context, page int) ([]int, bool, error) {
	body, err := json.Marshal(map[string]any{
		"query":     pageQuery,
		"variables": map[string]int{"page": page, "perPage": c.cfg.PerPage},
	})
	if err != nil {
		return nil, false, err
	}

	var raw []byte
	for attempt := 1; ; attempt++ {
		raw, err = c.post(ctx, body)
		if err == nil {
			break
		}
		var se *StatusError
		if !errors.As(err, &se) || !se.Retryable() || attempt >= c.cfg.Attempts {
			return nil, false, fmt.Errorf("fetch page %d: %w", page, err)
		}
		delay := time.Duration(attempt) * c.cfg.BaseDelay
		logging.Warn().Int("page", page).Int("attempt", attempt).Dur("delay", delay).Int("status", se.Code).
			Msg("[sitemap] catalogue api error, retrying")
		if err := c.wait(ctx, delay); err != nil {
			return nil, false, err
		}
	}

	var resp pageResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decode page %d: %w", page, err)
	}
	if len(resp.Errors) > 0 {
		return nil, false, fmt.Errorf("page %d: graphql: %s", page, resp.Errors[0].Message)
	}
	ids := make([]int, 0, len(resp.Data.Page.Media))
	for _, m := range resp.Data.Page.Media {
		ids = append(ids, m.ID)
	}
	return ids, resp.Data.Page.PageInfo.HasNextPage, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := raw
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}
	return raw, nil
}

// FetchAll walks the pages until the API reports no next page or MaxPages
// is reached. Duplicate ids are dropped.
func (c *Client) FetchAll(ctx context.Context) ([]int, error) {
	seen := map[int]struct{}{}
	var all []int
	for page := 1; c.cfg.MaxPages == 0 || page <= c.cfg.MaxPages; page++ {
		ids, more, err := c.FetchPage(ctx, page)
		if err != nil {
			return all, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
		logging.Debug().Int("page", page).Int("ids", len(ids)).Msg("[sitemap] page fetched")
		if !more {
			break
		}
	}
	return all, nil
}
