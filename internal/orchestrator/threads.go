package orchestrator

import "sync"

// ThreadMetrics holds the per-worker-thread resource sample collected by
// the metrics sampler (fed from gopsutil in the process-level wiring).
type ThreadMetrics struct {
	CPUPercent    float64
	RSSBytes      uint64
	VirtualBytes  uint64
	MemoryPercent float32
}

// ServiceThread is one {thread_id, tid, metrics} entry in the table.
type ServiceThread struct {
	ThreadID string
	TID      int
	Metrics  ThreadMetrics
}

// ThreadAggregate is the subsystem-wide resource rollup, written only by
// the metrics collector (add/remove never touch it).
type ThreadAggregate struct {
	VirtualMemory uint64
	ResidentMemory uint64
	MemoryPercent  float32
}

// ThreadTable is a fixed-capacity per-subsystem array of worker thread
// identities plus an aggregate resource rollup. Capacity
// defaults to MAX_SERVICE_THREADS = 32; inserts past capacity are
// silently ignored.
type ThreadTable struct {
	mu        sync.Mutex
	capacity  int
	threads   []ServiceThread
	aggregate ThreadAggregate
}

func newThreadTable(capacity int) *ThreadTable {
	return &ThreadTable{capacity: capacity}
}

// AddServiceThread appends a thread entry. Beyond capacity this is a
// silent no-op, observable only as an unchanged ThreadCount().
func (t *ThreadTable) AddServiceThread(threadID string, tid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.threads) >= t.capacity {
		return
	}
	t.threads = append(t.threads, ServiceThread{ThreadID: threadID, TID: tid})
}

// RemoveServiceThread compacts the array, dropping the named entry and
// clearing its metrics. It is a no-op if threadID is not present.
func (t *ThreadTable) RemoveServiceThread(threadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, th := range t.threads {
		if th.ThreadID == threadID {
			t.threads = append(t.threads[:i], t.threads[i+1:]...)
			return
		}
	}
}

// ThreadCount returns the number of live entries.
func (t *ThreadTable) ThreadCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.threads)
}

// Threads returns a snapshot of the live thread entries.
func (t *ThreadTable) Threads() []ServiceThread {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ServiceThread(nil), t.threads...)
}

// SetThreadMetrics updates the metrics for a single thread entry, used
// by the periodic resource sampler.
func (t *ThreadTable) SetThreadMetrics(threadID string, m ThreadMetrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.threads {
		if t.threads[i].ThreadID == threadID {
			t.threads[i].Metrics = m
			return
		}
	}
}

// SetAggregate overwrites the subsystem-wide resource rollup. Only the
// metrics collector calls this; add/remove never touch it.
func (t *ThreadTable) SetAggregate(agg ThreadAggregate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.aggregate = agg
}

// Aggregate returns the current resource rollup.
func (t *ThreadTable) Aggregate() ThreadAggregate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregate
}
