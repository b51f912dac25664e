package util

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func MysqlDSN(host string, port int, user, password, database string) string {
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?timeout=5s", user, password, host, port, database)
}

func NewMysqlDB(host string, port int, user, password, database string) (db *sqlx.DB, err error) {
	//open the connection pool
	db, err = sqlx.Open("mysql", MysqlDSN(host, port, user, password, database))
	if err != nil {
		return nil, fmt.Errorf("NewMysqlDB -> %w", err)
	}
	SetPool(db, 8)
	return
}
