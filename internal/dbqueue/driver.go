package dbqueue

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// minPlausibleLockAddr is the corrupted-mutex sentinel threshold: a
// lock's backing pointer below one page is treated as a corrupted
// handle handed back by a buggy native driver, and is never locked.
const minPlausibleLockAddr = uintptr(4096)

// Conn wraps a live backend connection. LockAddr simulates the address
// of the handle's internal lock as reported by the native driver layer;
// real Go `database/sql` connections never populate it (it defaults to
// 0, which is treated as "not applicable / trust the runtime mutex").
// Test doubles set it explicitly to exercise the sanity check.
type Conn struct {
	DB       *sqlx.DB
	Engine   Engine
	LockAddr uintptr
}

// SaneLock reports whether Conn's simulated lock address is plausible.
// A zero address means the handle carries no native lock to sanity
// check (the common case for pure database/sql backends).
func (c *Conn) SaneLock() bool {
	if c == nil {
		return false
	}
	return c.LockAddr == 0 || c.LockAddr >= minPlausibleLockAddr
}

// Transaction wraps a backend transaction.
type Transaction struct {
	Tx *sql.Tx
}

// Driver is the per-engine contract every SQL backend implements. One
// concrete implementation exists per engine; tests use a mock
// implementation satisfying the same interface.
type Driver interface {
	Engine() Engine
	Connect(ctx context.Context, dsn, designator string) (*Conn, error)
	Disconnect(conn *Conn) error
	HealthCheck(ctx context.Context, conn *Conn) bool
	ResetConnection(ctx context.Context, conn *Conn) error

	PrepareStatement(ctx context.Context, conn *Conn, name, sql string, addToCache bool, cache *PreparedStatementCache) (PreparedHandle, error)
	UnprepareStatement(cache *PreparedStatementCache, name string) error

	ExecuteQuery(ctx context.Context, conn *Conn, req Request) (QueryResult, error)
	ExecutePrepared(ctx context.Context, conn *Conn, stmt PreparedHandle, req Request) (QueryResult, error)

	BeginTransaction(ctx context.Context, conn *Conn, isolation sql.IsolationLevel) (*Transaction, error)
	CommitTransaction(txn *Transaction) error
	RollbackTransaction(txn *Transaction) error

	BootstrapSQL() string
}

// ConnectGuarded wraps Driver.Connect and, on success, rejects a handle
// whose lock address fails the sanity check before any caller can lock
// it — the handle is discarded and ErrCorruptedHandle is returned
// instead.
func ConnectGuarded(ctx context.Context, d Driver, dsn, designator string) (*Conn, error) {
	conn, err := d.Connect(ctx, dsn, designator)
	if err != nil {
		return nil, err
	}
	if !conn.SaneLock() {
		_ = d.Disconnect(conn)
		return nil, ErrCorruptedHandle
	}
	return conn, nil
}
