package repositories

import "database/sql"

// Queryer is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same repository code serves both the committed view and the per-file
// transaction.
type Queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
