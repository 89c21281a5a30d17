// Package release polls a release feed in the background so the UI can show
// an update banner when a newer version has shipped.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// defaultInterval is how often the feed is polled.
const defaultInterval = 6 * time.Hour

// Info describes the newest published release.
type Info struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Checker polls the release feed and caches the latest result. All methods
// are safe for concurrent use; the zero value with an empty feed URL is a
// disabled checker that always reports no update.
type Checker struct {
	feedURL        string
	currentVersion string
	interval       time.Duration
	client         *http.Client
	logger         *slog.Logger
	latest         atomic.Pointer[Info]
}

// NewChecker creates a release checker. An empty feedURL disables polling.
func NewChecker(feedURL, currentVersion string, logger *slog.Logger) *Checker {
	return &Checker{
		feedURL:        feedURL,
		currentVersion: currentVersion,
		interval:       defaultInterval,
		client:         &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
	}
}

// Start polls the feed until ctx is cancelled. It blocks, so run it in its
// own goroutine or errgroup. Poll failures are logged and swallowed; an
// unreachable feed must never affect the rest of the app.
func (c *Checker) Start(ctx context.Context) error {
	if c.feedURL == "" {
		return nil
	}

	c.poll(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.poll(ctx)
		}
	}
}

func (c *Checker) poll(ctx context.Context) {
	info, err := c.fetch(ctx)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "release feed poll failed",
			slog.String("feed_url", c.feedURL),
			slog.Any("error", err))
		return
	}
	c.latest.Store(&info)
}

func (c *Checker) fetch(ctx context.Context) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return Info{}, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("fetch release feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("release feed returned status %d", resp.StatusCode)
	}

	var info Info
	if err = json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("decode release feed: %w", err)
	}
	return info, nil
}

// Available returns the newest release when it differs from the running
// version, or nil when up to date or unknown.
func (c *Checker) Available() *Info {
	info := c.latest.Load()
	if info == nil || info.Version == "" || info.Version == c.currentVersion {
		return nil
	}
	return info
}
