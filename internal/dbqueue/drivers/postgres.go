package drivers

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
)

// Postgres implements dbqueue.Driver over lib/pq.
type Postgres struct{}

func NewPostgres() *Postgres { return &Postgres{} }

func (p *Postgres) Engine() dbqueue.Engine { return dbqueue.EnginePostgres }

func (p *Postgres) Connect(ctx context.Context, dsn, designator string) (*dbqueue.Conn, error) {
	rawDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, formatDSNError("postgres", err)
	}
	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, formatDSNError("postgres", err)
	}
	db := sqlx.NewDb(rawDB, "postgres")
	return &dbqueue.Conn{DB: db, Engine: dbqueue.EnginePostgres}, nil
}

func (p *Postgres) Disconnect(conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return nil
	}
	return conn.DB.Close()
}

func (p *Postgres) HealthCheck(ctx context.Context, conn *dbqueue.Conn) bool {
	if conn == nil || conn.DB == nil {
		return false
	}
	return conn.DB.PingContext(ctx) == nil
}

func (p *Postgres) ResetConnection(ctx context.Context, conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return dbqueue.ErrConnectFailed
	}
	conn.DB.SetMaxIdleConns(0)
	return conn.DB.PingContext(ctx)
}

func (p *Postgres) PrepareStatement(ctx context.Context, conn *dbqueue.Conn, name, sqlText string, addToCache bool, cache *dbqueue.PreparedStatementCache) (dbqueue.PreparedHandle, error) {
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

func (p *Postgres) UnprepareStatement(cache *dbqueue.PreparedStatementCache, name string) error {
	if cache == nil {
		return dbqueue.ErrNullArgument
	}
	cache.Remove(name)
	return nil
}

func (p *Postgres) ExecuteQuery(ctx context.Context, conn *dbqueue.Conn, req dbqueue.Request) (dbqueue.QueryResult, error) {
	if conn == nil || conn.DB == nil {
		return dbqueue.QueryResult{}, dbqueue.ErrConnectFailed
	}
	return runQuery(ctx, conn.DB, req.SQL, paramValues(req.Params))
}

func (p *Postgres) ExecutePrepared(ctx context.Context, conn *dbqueue.Conn, handle dbqueue.PreparedHandle, req dbqueue.Request) (dbqueue.QueryResult, error) {
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

func (p *Postgres) BeginTransaction(ctx context.Context, conn *dbqueue.Conn, isolation sql.IsolationLevel) (*dbqueue.Transaction, error) {
	tx, err := conn.DB.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return nil, err
	}
	return &dbqueue.Transaction{Tx: tx}, nil
}

func (p *Postgres) CommitTransaction(txn *dbqueue.Transaction) error   { return txn.Tx.Commit() }
func (p *Postgres) RollbackTransaction(txn *dbqueue.Transaction) error { return txn.Tx.Rollback() }

func (p *Postgres) BootstrapSQL() string {
	return `CREATE TABLE IF NOT EXISTS hydrogen_migration_state (
		id SERIAL PRIMARY KEY,
		loaded_version BIGINT NOT NULL DEFAULT 0,
		applied_version BIGINT NOT NULL DEFAULT 0
	)`
}
