package services

import (
	"context"
	"log"
	"sync"
	"time"

	"InsureCost/models"
)

// DashboardFactory builds the dashboard of a new browser tab.
type DashboardFactory func(tabID string) (*Dashboard, error)

type registryEntry struct {
	dashboard *Dashboard
	lastSeen  time.Time
}

// Registry keeps one dashboard per browser tab.
type Registry struct {
	factory DashboardFactory
	now     func() time.Time

	mu         sync.Mutex
	dashboards map[string]*registryEntry
	closed     bool
}

func NewRegistry(factory DashboardFactory) *Registry {
	return &Registry{
		factory:    factory,
		now:        time.Now,
		dashboards: make(map[string]*registryEntry),
	}
}

// Get returns the dashboard of tabID, creating it and restoring its stored
// session on first use. Creation runs outside the lock so a slow session
// store never stalls other tabs.
func (r *Registry) Get(ctx context.Context, tabID string) (*Dashboard, error) {
	if dashboard, ok, err := r.existing(tabID); ok || err != nil {
		return dashboard, err
	}

	dashboard, err := r.factory(tabID)
	if err != nil {
		return nil, err
	}
	if err := dashboard.Init(ctx); err != nil {
		// Start logged out; the user can log in again.
		log.Printf("Dashboard for tab %s starts without a session: %v", tabID, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		dashboard.Teardown()
		return nil, models.ErrShuttingDown
	}
	if entry, ok := r.dashboards[tabID]; ok {
		// Another request for the same tab won the race.
		entry.lastSeen = r.now()
		r.mu.Unlock()
		dashboard.Teardown()
		return entry.dashboard, nil
	}
	r.dashboards[tabID] = &registryEntry{dashboard: dashboard, lastSeen: r.now()}
	r.mu.Unlock()
	return dashboard, nil
}

func (r *Registry) existing(tabID string) (*Dashboard, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, models.ErrShuttingDown
	}
	entry, ok := r.dashboards[tabID]
	if !ok {
		return nil, false, nil
	}
	entry.lastSeen = r.now()
	return entry.dashboard, true, nil
}

// Lookup returns an existing dashboard without creating one.
func (r *Registry) Lookup(tabID string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.dashboards[tabID]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.dashboard, true
}

// Remove tears down the dashboard of tabID.
func (r *Registry) Remove(tabID string) {
	r.mu.Lock()
	entry, ok := r.dashboards[tabID]
	delete(r.dashboards, tabID)
	r.mu.Unlock()

	if ok {
		entry.dashboard.Teardown()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dashboards)
}

// Sweep tears down dashboards unused for longer than idle. Their stored
// sessions survive, so a returning tab is restored.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Dashboard
	for tabID, entry := range r.dashboards {
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, entry.dashboard)
			delete(r.dashboards, tabID)
		}
	}
	r.mu.Unlock()

	for _, dashboard := range stale {
		dashboard.Teardown()
	}
	return len(stale)
}

// RunJanitor sweeps idle dashboards every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				log.Printf("Released %d idle dashboards", n)
			}
		}
	}
}

// Close tears down every dashboard. Later Get calls fail.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	dashboards := r.dashboards
	r.dashboards = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, entry := range dashboards {
		entry.dashboard.Teardown()
	}
}
