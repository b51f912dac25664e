package util

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const MemoryDB = ":memory:"

// NewSqliteDB opens a sqlite database file. An in-memory database lives in
// a single connection, so the pool is pinned to one connection that is
// never recycled.
func NewSqliteDB(path string) (db *sqlx.DB, err error) {
	db, err = sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("NewSqliteDB -> %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return
}
