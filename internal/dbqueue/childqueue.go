package dbqueue

import (
	"context"
	"sync"
	"time"
)

// ChildQueue is a non-lead worker queue (Slow, Medium, Fast, or Cache)
// spawned by a lead queue once it reaches Serving. It
// shares the lead's driver but dials its own connection so workload
// classes never contend on a single handle.
type ChildQueue struct {
	mu sync.Mutex

	queue  *DatabaseQueue
	driver Driver
	conn   *Conn

	pending *PendingResultRegistry
	cache   ResultCache
	inbox   chan Request
	done    chan struct{}
}

// NewChildQueue builds a child queue. It does not connect or start its
// worker loop; call Run to do both. cache may be nil for every tier
// except Cache, where a nil cache degrades to always-miss.
func NewChildQueue(databaseName string, qt QueueType, number int, designator string, d Driver, pending *PendingResultRegistry, cache ResultCache) *ChildQueue {
	return &ChildQueue{
		queue:   NewDatabaseQueue(databaseName, qt, number, designator),
		driver:  d,
		pending: pending,
		cache:   cache,
		inbox:   make(chan Request, 64),
		done:    make(chan struct{}),
	}
}

// RequestShutdown signals the worker loop to drain its inbox and exit.
func (c *ChildQueue) RequestShutdown() {
	c.queue.RequestShutdown()
}

// Submit enqueues req for this child to execute; it never blocks on a
// result.
func (c *ChildQueue) Submit(req Request) {
	c.inbox <- req
}

// Run dials a connection and services the inbox until shutdown is
// requested and the inbox drains, or ctx is cancelled. style controls
// how :name parameters are rewritten for this queue's engine.
func (c *ChildQueue) Run(ctx context.Context, dsn string, style PositionalStyle) error {
	defer close(c.done)

	conn, err := ConnectGuarded(ctx, c.driver, dsn, c.queue.Designator)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.queue.isConnected = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		conn := c.conn
		c.queue.isConnected = false
		c.conn = nil
		c.mu.Unlock()
		if conn != nil {
			_ = c.driver.Disconnect(conn)
		}
	}()

	shutdownPoll := time.NewTicker(50 * time.Millisecond)
	defer shutdownPoll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-c.inbox:
			if !ok {
				return nil
			}
			c.execute(ctx, req, style)
		case <-shutdownPoll.C:
			if c.queue.ShutdownRequested() && len(c.inbox) == 0 {
				return nil
			}
		}
	}
}

func (c *ChildQueue) execute(ctx context.Context, req Request, style PositionalStyle) {
	rewritten, ordered, err := ConvertNamedToPositional(req.SQL, req.Params, style)
	outcome := QueryOutcome{}
	if err != nil {
		outcome.Err = err
	} else {
		req.SQL = rewritten
		req.Params = ordered

		if c.queue.QueueType == Cache && c.cache != nil {
			if cached, hit := c.cache.Get(ctx, req.Designator, req.SQL, req.Params); hit {
				outcome.Result = cached
				outcome.Success = true
				if req.QueryID != "" {
					_ = c.pending.Complete(req.Designator, req.QueryID, outcome)
				}
				return
			}
		}

		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		result, execErr := c.driver.ExecuteQuery(ctx, conn, req)
		outcome.Result = result
		outcome.Success = execErr == nil
		outcome.Err = execErr

		if c.queue.QueueType == Cache && c.cache != nil && execErr == nil {
			c.cache.Put(ctx, req.Designator, req.SQL, req.Params, result, 0)
		}
	}

	if req.QueryID != "" {
		_ = c.pending.Complete(req.Designator, req.QueryID, outcome)
	}
}

// Done returns a channel closed once the worker loop exits.
func (c *ChildQueue) Done() <-chan struct{} { return c.done }

// Queue exposes the underlying DatabaseQueue handle.
func (c *ChildQueue) Queue() *DatabaseQueue { return c.queue }
