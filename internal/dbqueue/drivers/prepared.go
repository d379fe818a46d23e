package drivers

import "github.com/jmoiron/sqlx"

// stmtHandle adapts *sqlx.Stmt to dbqueue.PreparedHandle.
type stmtHandle struct {
	stmt *sqlx.Stmt
}

func (h *stmtHandle) Close() error {
	if h.stmt == nil {
		return nil
	}
	return h.stmt.Close()
}
