package repository

import "github.com/jmoiron/sqlx"

// target returns the transaction when one is supplied, otherwise the pool.
func target(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}
