package dbqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LeadState is the lead queue actor's own state machine, distinct from
// the coarser orchestrator.SubsystemState the owning database
// subsystem reports upward.
type LeadState int

const (
	LeadInactive LeadState = iota
	LeadConnecting
	LeadBootstrapping
	LeadMigrating
	LeadServing
	LeadDraining
)

func (s LeadState) String() string {
	switch s {
	case LeadInactive:
		return "Inactive"
	case LeadConnecting:
		return "Connecting"
	case LeadBootstrapping:
		return "Bootstrapping"
	case LeadMigrating:
		return "Migrating"
	case LeadServing:
		return "Serving"
	case LeadDraining:
		return "Draining"
	default:
		return "Unknown"
	}
}

// ChildSpec describes how many workers of each non-lead queue type to
// spawn once the lead queue reaches Serving.
type ChildSpec struct {
	Slow, Medium, Fast int
	CacheEnabled       bool
}

// LeadQueueActor owns the single persistent connection for one database
// and runs its lifecycle: connect/heartbeat, bootstrap, migrate,
// dispatch, spawn/retire children.
type LeadQueueActor struct {
	mu sync.Mutex

	queue  *DatabaseQueue
	driver Driver
	dsn    string
	log    *logrus.Entry

	state             LeadState
	heartbeatInterval time.Duration
	connectTimeout    time.Duration

	children     map[string]*ChildQueue
	pending      *PendingResultRegistry
	cache        ResultCache
	availableVer int64 // Watermarks.Available as sourced from migration source
}

// NewLeadQueueActor builds a lead actor for databaseName against driver
// d, using dsn to connect and pending as the shared result registry.
// cache may be nil; it is only consulted by Cache-tier child queues.
func NewLeadQueueActor(databaseName string, d Driver, dsn string, pending *PendingResultRegistry, cache ResultCache, log *logrus.Logger) *LeadQueueActor {
	return &LeadQueueActor{
		queue:             NewDatabaseQueue(databaseName, Lead, 0, databaseName),
		driver:            d,
		dsn:               dsn,
		log:               log.WithField("database", databaseName),
		state:             LeadInactive,
		heartbeatInterval: 30 * time.Second,
		connectTimeout:    10 * time.Second,
		children:          make(map[string]*ChildQueue),
		pending:           pending,
		cache:             cache,
	}
}

// State returns the actor's current lifecycle state.
func (a *LeadQueueActor) State() LeadState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *LeadQueueActor) setState(s LeadState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Connect dials the backend, sanity-checks the returned handle before
// anything can lock it, and marks the queue connected.
func (a *LeadQueueActor) Connect(ctx context.Context) error {
	a.setState(LeadConnecting)

	connectCtx, cancel := context.WithTimeout(ctx, a.connectTimeout)
	defer cancel()

	conn, err := ConnectGuarded(connectCtx, a.driver, a.dsn, a.queue.Designator)
	if err != nil {
		a.log.WithError(err).Warn("lead queue connect failed")
		return fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}

	a.mu.Lock()
	a.queue.conn = conn
	a.queue.isConnected = true
	a.queue.lastConnectionAttempt = time.Now()
	a.queue.initialConnAttempted = true
	a.mu.Unlock()

	return nil
}

// Heartbeat runs the periodic health check. On failure the connection
// is torn down and isConnected cleared so the caller's control loop
// re-enters Connecting next cycle.
func (a *LeadQueueActor) Heartbeat(ctx context.Context) bool {
	a.mu.Lock()
	conn := a.queue.conn
	a.mu.Unlock()

	if conn == nil || !conn.SaneLock() {
		a.markDisconnected()
		return false
	}

	ok := a.driver.HealthCheck(ctx, conn)
	if !ok {
		a.markDisconnected()
		return false
	}

	a.mu.Lock()
	a.queue.lastHeartbeat = time.Now()
	a.mu.Unlock()
	return true
}

func (a *LeadQueueActor) markDisconnected() {
	a.mu.Lock()
	conn := a.queue.conn
	a.queue.conn = nil
	a.queue.isConnected = false
	a.mu.Unlock()

	if conn != nil && conn.SaneLock() {
		_ = a.driver.Disconnect(conn)
	}
}

// Bootstrap idempotently creates the control table the lead queue
// depends on (migration bookkeeping). Safe to call repeatedly.
func (a *LeadQueueActor) Bootstrap(ctx context.Context) error {
	a.setState(LeadBootstrapping)

	a.mu.Lock()
	conn := a.queue.conn
	a.mu.Unlock()
	if conn == nil {
		return ErrConnectFailed
	}

	sqlText := a.driver.BootstrapSQL()
	if sqlText == "" {
		a.mu.Lock()
		a.queue.bootstrapped = true
		a.mu.Unlock()
		return nil
	}

	_, err := a.driver.ExecuteQuery(ctx, conn, Request{SQL: sqlText, Designator: a.queue.Designator})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBootstrapFailed, err)
	}

	a.mu.Lock()
	a.queue.bootstrapped = true
	a.mu.Unlock()
	return nil
}

// SetAvailableWatermark records the migration source's reported
// "available" version, driving DetermineMigrationAction.
func (a *LeadQueueActor) SetAvailableWatermark(v int64) {
	a.mu.Lock()
	a.queue.watermarks.Available = v
	a.mu.Unlock()
}

// RunMigrationStep executes exactly one step of the migration decision
// table per invocation: Load advances the Loaded watermark, Apply
// advances Applied, None is a no-op. The caller's control loop
// re-enters Migrating until the result is None.
func (a *LeadQueueActor) RunMigrationStep(ctx context.Context, load func(ctx context.Context) error, apply func(ctx context.Context) error) (MigrationAction, error) {
	a.setState(LeadMigrating)

	a.mu.Lock()
	w := a.queue.watermarks
	a.mu.Unlock()

	action := DetermineMigrationAction(w)
	switch action {
	case ActionLoad:
		if err := load(ctx); err != nil {
			return action, fmt.Errorf("%w: %v", ErrMigrationStep, err)
		}
		a.mu.Lock()
		a.queue.watermarks.Loaded++
		a.mu.Unlock()
	case ActionApply:
		if err := apply(ctx); err != nil {
			return action, fmt.Errorf("%w: %v", ErrMigrationStep, err)
		}
		a.mu.Lock()
		a.queue.watermarks.Applied++
		a.mu.Unlock()
	}
	return action, nil
}

// EnterServing marks the lead queue ready to dispatch and spawns its
// workload-tier children.
func (a *LeadQueueActor) EnterServing(spec ChildSpec) {
	a.setState(LeadServing)

	a.mu.Lock()
	defer a.mu.Unlock()
	spawn := func(qt QueueType, count int) {
		for i := 1; i <= count; i++ {
			key := fmt.Sprintf("%s-%s-%d", a.queue.DatabaseName, qt, i)
			if _, exists := a.children[key]; exists {
				continue
			}
			a.children[key] = NewChildQueue(a.queue.DatabaseName, qt, i, a.queue.Designator, a.driver, a.pending, a.cache)
		}
	}
	spawn(Slow, spec.Slow)
	spawn(Medium, spec.Medium)
	spawn(Fast, spec.Fast)
	if spec.CacheEnabled {
		key := fmt.Sprintf("%s-Cache-1", a.queue.DatabaseName)
		if _, exists := a.children[key]; !exists {
			a.children[key] = NewChildQueue(a.queue.DatabaseName, Cache, 1, a.queue.Designator, a.driver, a.pending, a.cache)
		}
	}
}

// Dispatch executes req on the lead connection directly (used for
// lead-tier work; child queues dispatch their own requests).
func (a *LeadQueueActor) Dispatch(ctx context.Context, req Request, style PositionalStyle) (QueryResult, error) {
	a.mu.Lock()
	conn := a.queue.conn
	a.mu.Unlock()
	if conn == nil {
		return QueryResult{}, ErrConnectFailed
	}

	rewritten, ordered, err := ConvertNamedToPositional(req.SQL, req.Params, style)
	if err != nil {
		return QueryResult{}, err
	}
	req.SQL = rewritten
	req.Params = ordered

	return a.driver.ExecuteQuery(ctx, conn, req)
}

// ShutdownChildQueue retires one named child queue. Only the lead
// queue may call this, and both arguments must be non-null.
func (a *LeadQueueActor) ShutdownChildQueue(qt *QueueType, queueNumber int) error {
	if qt == nil {
		return ErrNullQueueType
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	key := fmt.Sprintf("%s-%s-%d", a.queue.DatabaseName, *qt, queueNumber)
	child, ok := a.children[key]
	if !ok {
		return ErrNullQueue
	}
	child.RequestShutdown()
	delete(a.children, key)
	return nil
}

// Drain moves the actor into Draining, requests shutdown on every child,
// and finally closes the lead connection.
func (a *LeadQueueActor) Drain(ctx context.Context) {
	a.setState(LeadDraining)

	a.mu.Lock()
	children := make([]*ChildQueue, 0, len(a.children))
	for _, c := range a.children {
		children = append(children, c)
	}
	conn := a.queue.conn
	a.mu.Unlock()

	for _, c := range children {
		c.RequestShutdown()
	}

	if conn != nil {
		_ = a.driver.Disconnect(conn)
	}

	a.mu.Lock()
	a.queue.isConnected = false
	a.queue.conn = nil
	a.mu.Unlock()

	a.setState(LeadInactive)
}

// Children returns a snapshot of currently spawned child queues, keyed
// by their lookup key.
func (a *LeadQueueActor) Children() map[string]*ChildQueue {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]*ChildQueue, len(a.children))
	for k, v := range a.children {
		out[k] = v
	}
	return out
}

// Queue exposes the underlying DatabaseQueue handle.
func (a *LeadQueueActor) Queue() *DatabaseQueue { return a.queue }
