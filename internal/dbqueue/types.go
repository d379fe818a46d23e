// Package dbqueue implements the per-database lead-queue worker pool:
// a single-threaded cooperative control loop per database that owns a
// persistent connection, runs bootstrap and schema migrations, drives
// periodic heartbeats and expired-result cleanup, and spawns/retires
// child worker queues.
package dbqueue

import (
	"sync"
	"time"
)

// QueueType classifies a DatabaseQueue. Lead is the singular
// connection-owning control loop; the rest are child workload classes.
type QueueType int

const (
	Lead QueueType = iota
	Slow
	Medium
	Fast
	Cache
)

func (q QueueType) String() string {
	switch q {
	case Lead:
		return "Lead"
	case Slow:
		return "Slow"
	case Medium:
		return "Medium"
	case Fast:
		return "Fast"
	case Cache:
		return "Cache"
	default:
		return "Unknown"
	}
}

// Engine identifies a supported SQL backend.
type Engine int

const (
	EnginePostgres Engine = iota
	EngineMySQL
	EngineSQLite
	EngineDB2
)

func (e Engine) String() string {
	switch e {
	case EnginePostgres:
		return "postgres"
	case EngineMySQL:
		return "mysql"
	case EngineSQLite:
		return "sqlite"
	case EngineDB2:
		return "db2"
	default:
		return "unknown"
	}
}

// Watermarks holds the three monotonic migration counters.
type Watermarks struct {
	Available int64
	Loaded    int64
	Applied   int64
}

// MigrationAction is the outcome of the migration watermark decision
// table, a pure function of the three-watermark triple.
type MigrationAction int

const (
	ActionNone MigrationAction = iota
	ActionLoad
	ActionApply
)

func (a MigrationAction) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLoad:
		return "Load"
	case ActionApply:
		return "Apply"
	default:
		return "Unknown"
	}
}

// DetermineMigrationAction implements the migration watermark decision
// table. It is a pure function of the watermark triple.
func DetermineMigrationAction(w Watermarks) MigrationAction {
	switch {
	case w.Available < w.Loaded:
		// Pathological: refuse to act.
		return ActionNone
	case w.Available == w.Loaded && w.Loaded == w.Applied:
		return ActionNone
	case w.Available > w.Loaded:
		return ActionLoad
	case w.Loaded > w.Applied:
		return ActionApply
	default:
		return ActionNone
	}
}

// DatabaseQueue is a handle representing one worker queue for one
// logical database.
type DatabaseQueue struct {
	mu sync.Mutex

	DatabaseName string
	QueueType    QueueType
	QueueNumber  int
	IsLeadQueue  bool
	Designator   string

	conn                 *Conn
	isConnected          bool
	shutdownRequested    bool
	watermarks           Watermarks
	lastConnectionAttempt time.Time
	lastHeartbeat         time.Time
	initialConnAttempted  bool
	bootstrapped          bool

	stmtCache *PreparedStatementCache
}

// NewDatabaseQueue constructs a queue handle. Lead queues always carry
// queue_number 0.
func NewDatabaseQueue(databaseName string, qt QueueType, queueNumber int, designator string) *DatabaseQueue {
	if qt == Lead {
		queueNumber = 0
	}
	return &DatabaseQueue{
		DatabaseName: databaseName,
		QueueType:    qt,
		QueueNumber:  queueNumber,
		IsLeadQueue:  qt == Lead,
		Designator:   designator,
		stmtCache:    NewPreparedStatementCache(100),
	}
}

// RequestShutdown sets the cooperative shutdown flag, observed at every
// checkpoint in the queue's loop.
func (q *DatabaseQueue) RequestShutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shutdownRequested = true
}

// ShutdownRequested reports the cooperative shutdown flag.
func (q *DatabaseQueue) ShutdownRequested() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shutdownRequested
}

// IsConnected reports whether the queue currently owns a live connection.
func (q *DatabaseQueue) IsConnected() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.isConnected
}

// Watermarks returns a snapshot of the migration watermarks.
func (q *DatabaseQueue) Watermarks() Watermarks {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.watermarks
}

// QueryOutcome is the result delivered to an await_result caller.
type QueryOutcome struct {
	Success bool
	Result  QueryResult
	Err     error
}

// QueryResult is the JSON-friendly shape delivered to callers. DataJSON
// is always a syntactically valid JSON array, never null — empty is
// "[]".
type QueryResult struct {
	Success      bool
	ColumnCount  int
	RowCount     int
	ColumnNames  []string
	DataJSON     string
	AffectedRows int64
}

// Request is a unit of work submitted to a queue. QueryID correlates
// the eventual outcome back to a PendingResultRegistry entry; it is
// empty for fire-and-forget dispatches (e.g. bootstrap, migration).
type Request struct {
	SQL        string
	Params     ParameterList
	Designator string
	QueryID    string
}
