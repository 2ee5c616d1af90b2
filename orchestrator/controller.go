// Package orchestrator binds the catalog state model to the upstream API.
//
// A single Controller owns the application state. Transitions mutate it
// synchronously under one lock and issue the matching fetches in the
// background; every fetch carries the sequence number its tracker handed out,
// so only the most recently issued request of a collection can land.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/drugstore/catalog"
	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/interfaces"
	"github.com/giygas/drugstore/logging"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnknownDrug = errors.New("unknown drug")
	ErrNotFound    = errors.New("not found")
	ErrClosed      = errors.New("controller closed")
)

// Persistence scopes.
const (
	ScopeTheme   = "theme"
	ScopeSession = "session"
)

const (
	defaultFetchTimeout    = 30 * time.Second
	defaultNotificationTTL = 6 * time.Second
	persistTimeout         = 2 * time.Second
	maxNotifications       = 20
	deleteConcurrency      = 4
)

// Options tunes a Controller. The zero value is usable.
type Options struct {
	// Store persists preferences; nil disables persistence.
	Store interfaces.PreferenceStore
	// Scope is ScopeTheme (default) or ScopeSession.
	Scope           string
	FetchTimeout    time.Duration
	NotificationTTL time.Duration
	// Now is the clock, for tests.
	Now func() time.Time
}

// Controller is safe for concurrent use.
type Controller struct {
	api          interfaces.CatalogAPI
	store        interfaces.PreferenceStore
	scope        string
	fetchTimeout time.Duration
	ttl          time.Duration
	now          func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         *catalog.AppState
	notifications []Notification
	lastSuccess   time.Time
	startedAt     time.Time
	closed        bool

	// serializes preference writes so the latest state is written last
	persistMu sync.Mutex
	inflight  sync.WaitGroup
}

// New builds a controller and restores persisted preferences. It issues no
// fetch; call Start.
func New(api interfaces.CatalogAPI, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:          api,
		store:        opts.Store,
		scope:        opts.Scope,
		fetchTimeout: opts.FetchTimeout,
		ttl:          opts.NotificationTTL,
		now:          opts.Now,
		ctx:          ctx,
		cancel:       cancel,
		state:        catalog.NewAppState(),
	}
	if c.scope != ScopeSession {
		c.scope = ScopeTheme
	}
	if c.fetchTimeout <= 0 {
		c.fetchTimeout = defaultFetchTimeout
	}
	if c.ttl <= 0 {
		c.ttl = defaultNotificationTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.startedAt = c.now()

	c.restore()
	return c
}

// Start issues the initial countries and drugs fetches. Drugs are fetched
// for the restored view.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.issueCountriesLocked()
	c.issueDrugsLocked()
	logging.Info("Catalog controller started", "view", c.state.View.Current().GroupBy.String())
}

// Refresh re-issues the countries fetch and the drugs fetch of the active view.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.issueCountriesLocked()
	c.issueDrugsLocked()
}

// Wait blocks until every issued fetch, including the ones issued while
// resolving, has resolved.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// WaitContext is Wait bounded by ctx.
func (c *Controller) WaitContext(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight fetches and waits for them to unwind. Transitions
// after Close change state but issue no fetches.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.inflight.Wait()
}

// CollectionStatus implements interfaces.StatusSource.
func (c *Controller) CollectionStatus() interfaces.CollectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return interfaces.CollectionStatus{
		Drugs:       c.state.Drugs.Status().String(),
		Countries:   c.state.Countries.Status().String(),
		DrugCount:   c.state.Drugs.Len(),
		LastSuccess: c.lastSuccess,
		StartedAt:   c.startedAt,
	}
}

// Drug returns a loaded drug.
func (c *Controller) Drug(id string) (entities.Drug, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.FindDrug(id)
}

// Country returns country id, from the loaded list when present and from
// upstream otherwise.
func (c *Controller) Country(ctx context.Context, id string) (entities.Country, error) {
	c.mu.Lock()
	country, ok := c.state.FindCountry(id)
	c.mu.Unlock()
	if ok {
		return country, nil
	}

	country, err := c.api.GetCountry(ctx, id)
	if err != nil {
		return entities.Country{}, fmt.Errorf("failed to fetch country %s: %w", id, err)
	}
	return country, nil
}

var _ interfaces.StatusSource = (*Controller)(nil)
