// Package collector produces a bounded, recency-filtered, engagement-ranked
// set of posts for analysis.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pulselab/cryptopulse/internal/dataflows"
	"github.com/pulselab/cryptopulse/internal/logger"
	"github.com/pulselab/cryptopulse/internal/queue"
)

// ErrScrapeUnavailable marks a failed fetch from the scrape source.
var ErrScrapeUnavailable = errors.New("scrape source unavailable")

// ErrInvalidWindow marks a malformed selection window, rejected before any
// external call is made.
var ErrInvalidWindow = errors.New("invalid selection window")

// Searcher is the scrape collaborator. It may return fewer than maxResults.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]dataflows.RawPost, error)
}

// Window bounds one analysis run by recency and volume.
type Window struct {
	HoursBack int
	MaxItems  int
}

// Validate checks the window bounds.
func (w Window) Validate() error {
	if w.HoursBack < 1 {
		return fmt.Errorf("%w: hours_back must be >= 1, got %d", ErrInvalidWindow, w.HoursBack)
	}
	if w.MaxItems < 10 || w.MaxItems > 100 {
		return fmt.Errorf("%w: max_items must be in [10,100], got %d", ErrInvalidWindow, w.MaxItems)
	}
	return nil
}

// TopK is the engagement-ranked selection size for a window.
func (w Window) TopK() int {
	k := w.MaxItems / 3
	if k > 15 {
		k = 15
	}
	if k < 10 {
		k = 10
	}
	return k
}

// Collector fetches posts through the rate-limited queue and selects the
// most engaged recent ones. Stateless apart from its collaborator handles.
type Collector struct {
	searcher Searcher
	queue    *queue.Queue[[]dataflows.RawPost]
	now      func() time.Time
}

// New creates a collector. The queue must be shared by every caller that
// talks to the same scrape source.
func New(searcher Searcher, q *queue.Queue[[]dataflows.RawPost]) *Collector {
	return &Collector{
		searcher: searcher,
		queue:    q,
		now:      time.Now,
	}
}

// Collect returns the top-K posts about ticker inside the recency window,
// sorted by engagement descending (ties keep server order). An empty result
// is a normal outcome, not an error.
func (c *Collector) Collect(ctx context.Context, ticker string, w Window) ([]dataflows.RawPost, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	query := buildQuery(ticker)
	logger.Log.Debugf("collecting posts for %s (query %q, window %dh/%d items)",
		ticker, query, w.HoursBack, w.MaxItems)

	handle := c.queue.Submit(ctx, func(ctx context.Context) ([]dataflows.RawPost, error) {
		return c.searcher.Search(ctx, query, w.MaxItems)
	})
	posts, err := handle.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScrapeUnavailable, err)
	}

	cutoff := c.now().Add(-time.Duration(w.HoursBack) * time.Hour)
	recent := posts[:0:0]
	for _, p := range posts {
		if p.Timestamp.After(cutoff) {
			recent = append(recent, p)
		}
	}
	if len(recent) == 0 {
		logger.Log.Warnf("no posts for %s within the past %dh", ticker, w.HoursBack)
		return nil, nil
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Engagement() > recent[j].Engagement()
	})

	if k := w.TopK(); len(recent) > k {
		recent = recent[:k]
	}
	logger.Log.Infof("selected %d of %d recent posts for %s", len(recent), len(posts), ticker)
	return recent, nil
}

// buildQuery turns a ticker into a search query with reposts excluded.
func buildQuery(ticker string) string {
	return ticker + " -filter:retweets"
}
