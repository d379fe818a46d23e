package dbqueue

import (
	"context"
	"database/sql"
	"sync"
)

// fakeDriver is an in-memory Driver double for exercising the lead/child
// queue control flow without a real backend. It records every query it
// executes and lets tests inject failures per call.
type fakeDriver struct {
	mu sync.Mutex

	engine Engine

	connectErr     error
	healthCheckOK  bool
	executeErr     error
	bootstrapSQL   string
	lockAddr       uintptr
	executedSQL    []string
	disconnectErr  error
	connectCalls   int
	disconnectCalls int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{engine: EnginePostgres, healthCheckOK: true}
}

func (d *fakeDriver) Engine() Engine { return d.engine }

func (d *fakeDriver) Connect(ctx context.Context, dsn, designator string) (*Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connectCalls++
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	return &Conn{Engine: d.engine, LockAddr: d.lockAddr}, nil
}

func (d *fakeDriver) Disconnect(conn *Conn) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnectCalls++
	return d.disconnectErr
}

func (d *fakeDriver) HealthCheck(ctx context.Context, conn *Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.healthCheckOK
}

func (d *fakeDriver) ResetConnection(ctx context.Context, conn *Conn) error { return nil }

func (d *fakeDriver) PrepareStatement(ctx context.Context, conn *Conn, name, sqlText string, addToCache bool, cache *PreparedStatementCache) (PreparedHandle, error) {
	return nil, nil
}

func (d *fakeDriver) UnprepareStatement(cache *PreparedStatementCache, name string) error {
	return nil
}

func (d *fakeDriver) ExecuteQuery(ctx context.Context, conn *Conn, req Request) (QueryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.executedSQL = append(d.executedSQL, req.SQL)
	if d.executeErr != nil {
		return QueryResult{}, d.executeErr
	}
	return QueryResult{Success: true, RowCount: 1, DataJSON: "[]"}, nil
}

func (d *fakeDriver) ExecutePrepared(ctx context.Context, conn *Conn, stmt PreparedHandle, req Request) (QueryResult, error) {
	return d.ExecuteQuery(ctx, conn, req)
}

func (d *fakeDriver) BeginTransaction(ctx context.Context, conn *Conn, isolation sql.IsolationLevel) (*Transaction, error) {
	return &Transaction{}, nil
}

func (d *fakeDriver) CommitTransaction(txn *Transaction) error   { return nil }
func (d *fakeDriver) RollbackTransaction(txn *Transaction) error { return nil }

func (d *fakeDriver) BootstrapSQL() string { return d.bootstrapSQL }

func (d *fakeDriver) executedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.executedSQL)
}

var _ Driver = (*fakeDriver)(nil)
