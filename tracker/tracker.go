// Package tracker maintains an in-memory cache of issue-tracker tickets,
// refreshed on a fixed interval by a background poller. The cache is
// read-only with respect to the rest of the application.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Ticket is a single issue summary from the external tracker.
type Ticket struct {
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status"`
	Assignee string `json:"assignee,omitempty"`
}

// Snapshot is the cached poll result.
type Snapshot struct {
	Tickets     []Ticket  `json:"tickets"`
	LastRefresh time.Time `json:"last_refresh"`
}

// Cache holds the latest snapshot behind a read lock. A zero Cache is usable
// and returns an empty snapshot until the first refresh.
type Cache struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

func (c *Cache) set(tickets []Ticket, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = Snapshot{Tickets: tickets, LastRefresh: at}
}

// Fetcher retrieves the current ticket list from the external tracker.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Ticket, error)
}

// Poller refreshes a Cache from a Fetcher on a fixed interval.
type Poller struct {
	cache    *Cache
	fetcher  Fetcher
	interval time.Duration
	log      zerolog.Logger
}

func NewPoller(cache *Cache, fetcher Fetcher, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{cache: cache, fetcher: fetcher, interval: interval, log: log}
}

// Run polls until ctx is cancelled. Fetch failures are logged and the
// previous snapshot is kept.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	tickets, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("tracker poll failed")
		return
	}
	p.cache.set(tickets, time.Now().UTC())
	p.log.Debug().Int("tickets", len(tickets)).Msg("tracker cache refreshed")
}

// HTTPFetcher pulls open tickets from the tracker's REST endpoint.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Ticket, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/issues?status=open", nil)
	if err != nil {
		return nil, err
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}

	var tickets []Ticket
	if err := json.NewDecoder(resp.Body).Decode(&tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
