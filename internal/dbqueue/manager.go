package dbqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ManagerConfig controls backpressure and result lifetime for a Manager.
type ManagerConfig struct {
	RateLimitPerSecond float64
	RateBurst          int
	DefaultResultTTL   time.Duration
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.RateLimitPerSecond <= 0 {
		c.RateLimitPerSecond = 200
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 50
	}
	if c.DefaultResultTTL <= 0 {
		c.DefaultResultTTL = 30 * time.Second
	}
	return c
}

// Manager is the Database Queue Manager: it fronts every
// registered lead queue, applies backpressure, routes submissions to the
// right workload tier, and correlates async results through a shared
// PendingResultRegistry.
type Manager struct {
	mu      sync.RWMutex
	leads   map[string]*LeadQueueActor
	pending *PendingResultRegistry
	limiter *rate.Limiter
	cfg     ManagerConfig
	log     *logrus.Entry
}

// NewManager builds a Manager with no registered databases.
func NewManager(cfg ManagerConfig, log *logrus.Logger) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		leads:   make(map[string]*LeadQueueActor),
		pending: NewPendingResultRegistry(),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateBurst),
		cfg:     cfg,
		log:     log.WithField("component", "dbqueue.manager"),
	}
}

// RegisterDatabase attaches a lead queue actor under databaseName.
func (m *Manager) RegisterDatabase(databaseName string, actor *LeadQueueActor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[databaseName] = actor
}

// Pending exposes the shared result registry, mainly for maintenance
// sweeps (cron-driven CleanupExpired).
func (m *Manager) Pending() *PendingResultRegistry { return m.pending }

// DatabaseNames lists every registered database, for maintenance sweeps
// that need to walk PendingResultRegistry scope by scope.
func (m *Manager) DatabaseNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.leads))
	for name := range m.leads {
		names = append(names, name)
	}
	return names
}

// SubmitQuery routes req to databaseName's tier-appropriate queue and
// returns a query id the caller later passes to AwaitResult.
// Backpressure is enforced with a token bucket; a request that cannot
// obtain a token within ctx's deadline is rejected with
// ErrBackpressureRejected rather than queued unbounded.
func (m *Manager) SubmitQuery(ctx context.Context, databaseName string, tier QueueType, req Request, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.cfg.DefaultResultTTL
	}

	m.mu.RLock()
	actor, ok := m.leads[databaseName]
	m.mu.RUnlock()
	if !ok {
		return "", ErrUnknownDatabase
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackpressureRejected, err)
	}

	queryID, err := m.pending.Register(databaseName, ttl)
	if err != nil {
		return "", err
	}
	req.Designator = databaseName
	req.QueryID = queryID

	child, err := m.routeToChild(actor, tier)
	if err != nil {
		_ = m.pending.Await(databaseName, queryID, 0) // drop the just-registered slot
		return "", err
	}
	child.Submit(req)
	return queryID, nil
}

func (m *Manager) routeToChild(actor *LeadQueueActor, tier QueueType) (*ChildQueue, error) {
	if tier == Lead {
		return nil, ErrNoChildQueueForPrio
	}
	children := actor.Children()
	var best *ChildQueue
	bestKey := ""
	for key, c := range children {
		if c.Queue().QueueType != tier {
			continue
		}
		if best == nil || key < bestKey {
			best = c
			bestKey = key
		}
	}
	if best == nil {
		return nil, ErrNoChildQueueForPrio
	}
	return best, nil
}

// AwaitResult blocks up to timeout for queryID's outcome within
// databaseName's scope.
func (m *Manager) AwaitResult(databaseName, queryID string, timeout time.Duration) QueryOutcome {
	return m.pending.Await(databaseName, queryID, timeout)
}

// Shutdown requests every registered lead queue to drain and aborts any
// parked waiters.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	actors := make([]*LeadQueueActor, 0, len(m.leads))
	for _, a := range m.leads {
		actors = append(actors, a)
	}
	m.mu.RUnlock()

	for _, a := range actors {
		a.Drain(ctx)
	}
	aborted := m.pending.DrainAborted()
	if aborted > 0 {
		m.log.WithField("aborted_waiters", aborted).Info("dbqueue manager shutdown drained pending results")
	}
}
