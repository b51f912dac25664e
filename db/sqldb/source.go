package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"qaReport/model"
	"qaReport/util"
)

// Source answers queries from any database/sql engine.
type Source struct {
	name    string
	db      *sqlx.DB
	timeout time.Duration
}

func New(opt *model.SourceOptions) (*Source, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch opt.Driver {
	case model.DriverMssql:
		db, err = util.NewMssqlDB(opt.Host, opt.Port, opt.Username, opt.Password, opt.Database)
	case model.DriverMysql:
		db, err = util.NewMysqlDB(opt.Host, opt.Port, opt.Username, opt.Password, opt.Database)
	case model.DriverPostgres:
		db, err = util.NewPgsqlDB(opt.Host, opt.Port, opt.Username, opt.Password, opt.Database)
	case model.DriverSqlite:
		db, err = util.NewSqliteDB(opt.Path)
	default:
		return nil, fmt.Errorf("sqldb.New -> unsupported driver %q", opt.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewWithDB(opt.Name, db, opt.Timeout()), nil
}

func NewWithDB(name string, db *sqlx.DB, timeout time.Duration) *Source {
	return &Source{name: name, db: db, timeout: timeout}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) DB() *sqlx.DB {
	return s.db
}

func (s *Source) Query(ctx context.Context, query string) (*model.Rows, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := util.QueryRows(ctx, s.db, query)
	if err != nil {
		return nil, &model.ConnectionError{Source: s.name, Err: err}
	}
	return rows, nil
}

func (s *Source) Close() error {
	return s.db.Close()
}
