// Package apphost provides the AppContext threaded through every
// subsystem's Launch/CheckReady/Land.
package apphost

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/hydrogen-daemon/hydrogen/internal/config"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

// Context is the shared handle every subsystem receives at build time.
// It exposes configuration, logging, the database queue manager, the
// orchestrator registry (for reading sibling subsystem state), and a
// Prometheus registry for subsystems that export their own collectors.
type Context struct {
	Config   *config.Config
	Log      *logrus.Logger
	DBQueue  *dbqueue.Manager
	Cache    dbqueue.ResultCache
	Registry *orchestrator.Registry
	Metrics  *prometheus.Registry

	mu    sync.RWMutex
	store map[string]any
}

// New builds an AppContext. metrics may be nil, in which case
// prometheus.NewRegistry() is used. cache may be nil; only Cache-tier
// child queues consult it.
func New(cfg *config.Config, log *logrus.Logger, dbq *dbqueue.Manager, cache dbqueue.ResultCache, registry *orchestrator.Registry, metrics *prometheus.Registry) *Context {
	if metrics == nil {
		metrics = prometheus.NewRegistry()
	}
	return &Context{
		Config:   cfg,
		Log:      log,
		DBQueue:  dbq,
		Cache:    cache,
		Registry: registry,
		Metrics:  metrics,
		store:    make(map[string]any),
	}
}

// Put stashes a value under key so sibling subsystems constructed later
// can retrieve it (e.g. the WebServer subsystem's *mux.Router, so the
// API and Swagger subsystems can mount routes on it).
func (c *Context) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
}

// Get retrieves a value stashed with Put.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok
}

// Background returns the context.Context subsystems should use for any
// blocking operation performed during Launch/CheckReady/Land.
func (c *Context) Background() context.Context {
	return context.Background()
}

// LoggerFor returns a logger entry scoped to a named subsystem, per the
// ambient logging convention every subsystem follows.
func (c *Context) LoggerFor(name string) *logrus.Entry {
	return c.Log.WithField("subsystem", name)
}
