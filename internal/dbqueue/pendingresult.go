package dbqueue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// oneShotSlot is a lock-free-to-the-caller rendezvous cell: only the
// first Deliver takes effect (later calls are ignored), and it is safe
// to race against a single Wait.
type oneShotSlot struct {
	ch   chan QueryOutcome
	once sync.Once
}

func newOneShotSlot() *oneShotSlot {
	return &oneShotSlot{ch: make(chan QueryOutcome, 1)}
}

func (s *oneShotSlot) Deliver(outcome QueryOutcome) {
	s.once.Do(func() { s.ch <- outcome })
}

func (s *oneShotSlot) Wait(timeout time.Duration) (QueryOutcome, bool) {
	select {
	case outcome := <-s.ch:
		return outcome, true
	case <-time.After(timeout):
		return QueryOutcome{}, false
	}
}

// pendingEntry is one registered PendingResult.
type pendingEntry struct {
	queryID    string
	designator string
	createdAt  time.Time
	ttl        time.Duration
	slot       *oneShotSlot
}

func (e *pendingEntry) expired(now time.Time) bool {
	return !now.Before(e.createdAt.Add(e.ttl))
}

// PendingResultRegistry maps query_id -> PendingResult with
// per-designator scoping so two databases never collide on the same id.
// A single lock guards the map; delivery itself uses a one-shot
// channel so producers never block on waiters.
type PendingResultRegistry struct {
	mu      sync.Mutex
	byScope map[string]map[string]*pendingEntry // designator -> query_id -> entry

	now func() time.Time
}

// NewPendingResultRegistry builds an empty registry.
func NewPendingResultRegistry() *PendingResultRegistry {
	return &PendingResultRegistry{
		byScope: make(map[string]map[string]*pendingEntry),
		now:     time.Now,
	}
}

// Register allocates a fresh query id scoped to designator and creates
// its one-shot slot. ttl must be greater than zero: rejected at config
// load, and defensively rejected here too.
func (r *PendingResultRegistry) Register(designator string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	queryID := uuid.NewString()
	entry := &pendingEntry{
		queryID:    queryID,
		designator: designator,
		createdAt:  r.now(),
		ttl:        ttl,
		slot:       newOneShotSlot(),
	}

	r.mu.Lock()
	scope, ok := r.byScope[designator]
	if !ok {
		scope = make(map[string]*pendingEntry)
		r.byScope[designator] = scope
	}
	scope[queryID] = entry
	r.mu.Unlock()

	return queryID, nil
}

// Await blocks up to timeout for a result on queryID within designator's
// scope. If the caller's timeout elapses first, the entry is removed and
// the outcome's Err is ErrResultTimeout (the same error CleanupExpired
// delivers for an entry whose TTL elapsed). An id not registered in
// designator's scope yields Err ErrUnknownQueryID.
func (r *PendingResultRegistry) Await(designator, queryID string, timeout time.Duration) QueryOutcome {
	r.mu.Lock()
	scope, ok := r.byScope[designator]
	var entry *pendingEntry
	if ok {
		entry, ok = scope[queryID]
	}
	r.mu.Unlock()

	if !ok {
		return QueryOutcome{Err: ErrUnknownQueryID}
	}

	outcome, delivered := entry.slot.Wait(timeout)
	if !delivered {
		r.remove(designator, queryID)
		return QueryOutcome{Err: ErrResultTimeout}
	}
	r.remove(designator, queryID)
	return outcome
}

// Complete delivers outcome to the waiter for queryID. If no such id
// exists in designator's scope, the outcome is discarded and
// ErrUnknownQueryID is returned.
func (r *PendingResultRegistry) Complete(designator, queryID string, outcome QueryOutcome) error {
	r.mu.Lock()
	scope, ok := r.byScope[designator]
	var entry *pendingEntry
	if ok {
		entry, ok = scope[queryID]
	}
	r.mu.Unlock()

	if !ok {
		return ErrUnknownQueryID
	}
	entry.slot.Deliver(outcome)
	return nil
}

// CleanupExpired removes every entry in designator's scope whose TTL
// has elapsed, delivering ResultTimeout to any waiter still parked, and
// returns the count evicted.
func (r *PendingResultRegistry) CleanupExpired(designator string) int {
	now := r.now()

	r.mu.Lock()
	scope, ok := r.byScope[designator]
	if !ok {
		r.mu.Unlock()
		return 0
	}
	var expired []*pendingEntry
	for id, entry := range scope {
		if entry.expired(now) {
			expired = append(expired, entry)
			delete(scope, id)
		}
	}
	r.mu.Unlock()

	for _, entry := range expired {
		entry.slot.Deliver(QueryOutcome{Err: ErrResultTimeout})
	}
	return len(expired)
}

// remove drops an entry without delivering anything further (used after
// Await has already consumed or timed out its slot).
func (r *PendingResultRegistry) remove(designator, queryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope, ok := r.byScope[designator]; ok {
		delete(scope, queryID)
	}
}

// DrainAborted removes every pending entry across all designators,
// delivering ResultAborted-flavoured outcomes to any waiter still
// parked. Used by the Queue Manager on shutdown.
func (r *PendingResultRegistry) DrainAborted() int {
	r.mu.Lock()
	var all []*pendingEntry
	for designator, scope := range r.byScope {
		for id, entry := range scope {
			all = append(all, entry)
			delete(scope, id)
		}
		delete(r.byScope, designator)
	}
	r.mu.Unlock()

	for _, entry := range all {
		entry.slot.Deliver(QueryOutcome{Err: ErrAborted})
	}
	return len(all)
}
