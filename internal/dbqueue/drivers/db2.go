package drivers

import (
	"context"
	"database/sql"

	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
)

// DB2 implements dbqueue.Driver for dbqueue.EngineDB2. No DB2 client
// library appears anywhere in the reference corpus this daemon's stack
// was drawn from, so this adapter is a stub: the engine enumerates and
// routes correctly, but no operation succeeds: Connect, ResetConnection,
// BeginTransaction, CommitTransaction and RollbackTransaction return
// ErrConnectFailed, PrepareStatement returns ErrPrepareFailed, the two
// Execute methods return ErrExecuteFailed, UnprepareStatement returns
// ErrNullArgument, and HealthCheck reports false. Disconnect is a no-op
// returning nil. See DESIGN.md.
type DB2 struct{}

func NewDB2() *DB2 { return &DB2{} }

func (d *DB2) Engine() dbqueue.Engine { return dbqueue.EngineDB2 }

func (d *DB2) Connect(ctx context.Context, dsn, designator string) (*dbqueue.Conn, error) {
	return nil, dbqueue.ErrConnectFailed
}

func (d *DB2) Disconnect(conn *dbqueue.Conn) error { return nil }

func (d *DB2) HealthCheck(ctx context.Context, conn *dbqueue.Conn) bool { return false }

func (d *DB2) ResetConnection(ctx context.Context, conn *dbqueue.Conn) error {
	return dbqueue.ErrConnectFailed
}

func (d *DB2) PrepareStatement(ctx context.Context, conn *dbqueue.Conn, name, sqlText string, addToCache bool, cache *dbqueue.PreparedStatementCache) (dbqueue.PreparedHandle, error) {
	return nil, dbqueue.ErrPrepareFailed
}

func (d *DB2) UnprepareStatement(cache *dbqueue.PreparedStatementCache, name string) error {
	return dbqueue.ErrNullArgument
}

func (d *DB2) ExecuteQuery(ctx context.Context, conn *dbqueue.Conn, req dbqueue.Request) (dbqueue.QueryResult, error) {
	return dbqueue.QueryResult{}, dbqueue.ErrExecuteFailed
}

func (d *DB2) ExecutePrepared(ctx context.Context, conn *dbqueue.Conn, handle dbqueue.PreparedHandle, req dbqueue.Request) (dbqueue.QueryResult, error) {
	return dbqueue.QueryResult{}, dbqueue.ErrExecuteFailed
}

func (d *DB2) BeginTransaction(ctx context.Context, conn *dbqueue.Conn, isolation sql.IsolationLevel) (*dbqueue.Transaction, error) {
	return nil, dbqueue.ErrConnectFailed
}

func (d *DB2) CommitTransaction(txn *dbqueue.Transaction) error   { return dbqueue.ErrConnectFailed }
func (d *DB2) RollbackTransaction(txn *dbqueue.Transaction) error { return dbqueue.ErrConnectFailed }

func (d *DB2) BootstrapSQL() string { return "" }
