package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/gookit/slog"

	"qaReport/db/csvfile"
	"qaReport/db/mongo"
	"qaReport/db/sqldb"
	"qaReport/model"
)

func NewSource(ctx context.Context, opt *model.SourceOptions) (model.Source, error) {
	switch opt.Driver {
	case model.DriverMssql, model.DriverMysql, model.DriverPostgres, model.DriverSqlite:
		return sqldb.New(opt)
	case model.DriverCsv:
		return csvfile.New(opt)
	case model.DriverMongo:
		return mongo.New(ctx, opt)
	default:
		return nil, fmt.Errorf("NewSource -> unsupported driver %q", opt.Driver)
	}
}

// OpenSources opens every configured source. A source that cannot be opened
// is replaced by one that fails each query with the open error, so only the
// checks using it are affected.
func OpenSources(ctx context.Context, logger *slog.Logger, opts map[string]model.SourceOptions) map[string]model.Source {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make(map[string]model.Source, len(opts))
	for _, name := range names {
		opt := opts[name]
		src, err := NewSource(ctx, &opt)
		if err != nil {
			logger.Errorf("[%s] open source failed: %s", name, err)
			sources[name] = &brokenSource{name: name, err: err}
			continue
		}
		logger.Infof("[%s] source opened, driver=%s", name, opt.Driver)
		sources[name] = src
	}
	return sources
}

func CloseSources(logger *slog.Logger, sources map[string]model.Source) {
	for name, src := range sources {
		if err := src.Close(); err != nil {
			logger.Warnf("[%s] close source failed: %s", name, err)
		}
	}
}

type brokenSource struct {
	name string
	err  error
}

func (s *brokenSource) Name() string {
	return s.name
}

func (s *brokenSource) Query(context.Context, string) (*model.Rows, error) {
	return nil, &model.ConnectionError{Source: s.name, Err: s.err}
}

func (s *brokenSource) Close() error {
	return nil
}
