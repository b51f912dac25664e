package util

import (
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func PgsqlDSN(host string, port int, user, password, database string) string {
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func NewPgsqlDB(host string, port int, user, password, database string) (db *sqlx.DB, err error) {
	//open the connection pool
	db, err = sqlx.Open("postgres", PgsqlDSN(host, port, user, password, database))
	if err != nil {
		return nil, fmt.Errorf("NewPgsqlDB -> %w", err)
	}
	SetPool(db, 8)
	return
}
