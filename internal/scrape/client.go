package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	// ScheduleURL is the team schedule page listing past and upcoming games
	ScheduleURL = "https://www.espn.com/nba/team/schedule/_/name/gs/golden-state-warriors"

	// GameLogURL is the player game log page listing per-game stat lines
	GameLogURL = "https://www.espn.com/nba/player/gamelog/_/id/3975/stephen-curry"

	// UserAgent for requests
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	// Timeout for a single page fetch
	Timeout = 30 * time.Second
)

// Fetcher retrieves raw page markup for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client fetches pages over plain HTTP with browser-like headers.
// ESPN varies or rejects responses for bare automated clients, so every
// request carries a realistic user agent and no-cache directives.
type Client struct {
	client *http.Client
}

// NewClient creates a new page fetching client
func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout: Timeout,
		},
	}
}

// Fetch performs a single GET against url and returns the response body.
// Fails on any non-200 status or transport error; no retries.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.espn.com")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	log.Printf("[scrape] Fetched %s (%d bytes)", url, len(body))

	return string(body), nil
}
