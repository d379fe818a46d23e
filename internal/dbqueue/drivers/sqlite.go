package drivers

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
)

// SQLite implements dbqueue.Driver over modernc.org/sqlite (cgo-free).
type SQLite struct{}

func NewSQLite() *SQLite { return &SQLite{} }

func (s *SQLite) Engine() dbqueue.Engine { return dbqueue.EngineSQLite }

func (s *SQLite) Connect(ctx context.Context, dsn, designator string) (*dbqueue.Conn, error) {
	rawDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, formatDSNError("sqlite", err)
	}
	rawDB.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers per file handle
	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, formatDSNError("sqlite", err)
	}
	db := sqlx.NewDb(rawDB, "sqlite")
	return &dbqueue.Conn{DB: db, Engine: dbqueue.EngineSQLite}, nil
}

func (s *SQLite) Disconnect(conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return nil
	}
	return conn.DB.Close()
}

func (s *SQLite) HealthCheck(ctx context.Context, conn *dbqueue.Conn) bool {
	if conn == nil || conn.DB == nil {
		return false
	}
	return conn.DB.PingContext(ctx) == nil
}

func (s *SQLite) ResetConnection(ctx context.Context, conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return dbqueue.ErrConnectFailed
	}
	return conn.DB.PingContext(ctx)
}

func (s *SQLite) PrepareStatement(ctx context.Context, conn *dbqueue.Conn, name, sqlText string, addToCache bool, cache *dbqueue.PreparedStatementCache) (dbqueue.PreparedHandle, error) {
	stmt, err := conn.DB.PreparexContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	h := &stmtHandle{stmt: stmt}
	if addToCache && cache != nil {
		cache.Put(name, h)
	}
	return h, nil
}

func (s *SQLite) UnprepareStatement(cache *dbqueue.PreparedStatementCache, name string) error {
	if cache == nil {
		return dbqueue.ErrNullArgument
	}
	cache.Remove(name)
	return nil
}

func (s *SQLite) ExecuteQuery(ctx context.Context, conn *dbqueue.Conn, req dbqueue.Request) (dbqueue.QueryResult, error) {
	if conn == nil || conn.DB == nil {
		return dbqueue.QueryResult{}, dbqueue.ErrConnectFailed
	}
	return runQuery(ctx, conn.DB, req.SQL, paramValues(req.Params))
}

func (s *SQLite) ExecutePrepared(ctx context.Context, conn *dbqueue.Conn, handle dbqueue.PreparedHandle, req dbqueue.Request) (dbqueue.QueryResult, error) {
	h, ok := handle.(*stmtHandle)
	if !ok || h.stmt == nil {
		return dbqueue.QueryResult{}, dbqueue.ErrPrepareFailed
	}
	rows, err := h.stmt.QueryxContext(ctx, paramValues(req.Params)...)
	if err != nil {
		res, execErr := h.stmt.ExecContext(ctx, paramValues(req.Params)...)
		if execErr != nil {
			return dbqueue.QueryResult{}, execErr
		}
		affected, _ := res.RowsAffected()
		return dbqueue.QueryResult{Success: true, ColumnNames: []string{}, DataJSON: "[]", AffectedRows: affected}, nil
	}
	defer rows.Close()
	return scanRows(rows)
}

func (s *SQLite) BeginTransaction(ctx context.Context, conn *dbqueue.Conn, isolation sql.IsolationLevel) (*dbqueue.Transaction, error) {
	tx, err := conn.DB.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return nil, err
	}
	return &dbqueue.Transaction{Tx: tx}, nil
}

func (s *SQLite) CommitTransaction(txn *dbqueue.Transaction) error   { return txn.Tx.Commit() }
func (s *SQLite) RollbackTransaction(txn *dbqueue.Transaction) error { return txn.Tx.Rollback() }

func (s *SQLite) BootstrapSQL() string {
	return `CREATE TABLE IF NOT EXISTS hydrogen_migration_state (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		loaded_version INTEGER NOT NULL DEFAULT 0,
		applied_version INTEGER NOT NULL DEFAULT 0
	)`
}
