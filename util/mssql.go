package util

import (
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/jmoiron/sqlx"
)

func MssqlDSN(host string, port int, user, password, database string) string {
	if port == 0 {
		port = 1433
	}
	return fmt.Sprintf("server=%s,%d;user id=%s;password=%s;database=%s;encrypt=disable", host, port, user, password, database)
}

func NewMssqlDB(host string, port int, user, password, database string) (db *sqlx.DB, err error) {
	//open the connection pool
	db, err = sqlx.Open("sqlserver", MssqlDSN(host, port, user, password, database))
	if err != nil {
		return nil, fmt.Errorf("NewMssqlDB -> %w", err)
	}
	SetPool(db, 8)
	return
}
