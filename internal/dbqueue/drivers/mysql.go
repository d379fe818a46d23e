package drivers

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
)

// MySQL implements dbqueue.Driver over go-sql-driver/mysql.
type MySQL struct{}

func NewMySQL() *MySQL { return &MySQL{} }

func (m *MySQL) Engine() dbqueue.Engine { return dbqueue.EngineMySQL }

func (m *MySQL) Connect(ctx context.Context, dsn, designator string) (*dbqueue.Conn, error) {
	rawDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, formatDSNError("mysql", err)
	}
	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, formatDSNError("mysql", err)
	}
	db := sqlx.NewDb(rawDB, "mysql")
	return &dbqueue.Conn{DB: db, Engine: dbqueue.EngineMySQL}, nil
}

func (m *MySQL) Disconnect(conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return nil
	}
	return conn.DB.Close()
}

func (m *MySQL) HealthCheck(ctx context.Context, conn *dbqueue.Conn) bool {
	if conn == nil || conn.DB == nil {
		return false
	}
	return conn.DB.PingContext(ctx) == nil
}

func (m *MySQL) ResetConnection(ctx context.Context, conn *dbqueue.Conn) error {
	if conn == nil || conn.DB == nil {
		return dbqueue.ErrConnectFailed
	}
	conn.DB.SetMaxIdleConns(0)
	return conn.DB.PingContext(ctx)
}

func (m *MySQL) PrepareStatement(ctx context.Context, conn *dbqueue.Conn, name, sqlText string, addToCache bool, cache *dbqueue.PreparedStatementCache) (dbqueue.PreparedHandle, error) {
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

func (m *MySQL) UnprepareStatement(cache *dbqueue.PreparedStatementCache, name string) error {
	if cache == nil {
		return dbqueue.ErrNullArgument
	}
	cache.Remove(name)
	return nil
}

func (m *MySQL) ExecuteQuery(ctx context.Context, conn *dbqueue.Conn, req dbqueue.Request) (dbqueue.QueryResult, error) {
	if conn == nil || conn.DB == nil {
		return dbqueue.QueryResult{}, dbqueue.ErrConnectFailed
	}
	return runQuery(ctx, conn.DB, req.SQL, paramValues(req.Params))
}

func (m *MySQL) ExecutePrepared(ctx context.Context, conn *dbqueue.Conn, handle dbqueue.PreparedHandle, req dbqueue.Request) (dbqueue.QueryResult, error) {
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

func (m *MySQL) BeginTransaction(ctx context.Context, conn *dbqueue.Conn, isolation sql.IsolationLevel) (*dbqueue.Transaction, error) {
	tx, err := conn.DB.BeginTx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return nil, err
	}
	return &dbqueue.Transaction{Tx: tx}, nil
}

func (m *MySQL) CommitTransaction(txn *dbqueue.Transaction) error   { return txn.Tx.Commit() }
func (m *MySQL) RollbackTransaction(txn *dbqueue.Transaction) error { return txn.Tx.Rollback() }

func (m *MySQL) BootstrapSQL() string {
	return `CREATE TABLE IF NOT EXISTS hydrogen_migration_state (
		id INT AUTO_INCREMENT PRIMARY KEY,
		loaded_version BIGINT NOT NULL DEFAULT 0,
		applied_version BIGINT NOT NULL DEFAULT 0
	)`
}
