package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"qaReport/db/sqldb"
	"qaReport/model"
	"qaReport/util"
)

const quote = `"`

// Source stages raw CSV files into an in-memory sqlite database so checks
// can query them with SQL. Files are read on the first query.
type Source struct {
	opt     *model.SourceOptions
	db      *sqldb.Source
	loaded  bool
	loadErr error
}

func New(opt *model.SourceOptions) (*Source, error) {
	db, err := util.NewSqliteDB(util.MemoryDB)
	if err != nil {
		return nil, fmt.Errorf("csvfile.New -> %w", err)
	}
	return &Source{opt: opt, db: sqldb.NewWithDB(opt.Name, db, opt.Timeout())}, nil
}

func (s *Source) Name() string {
	return s.opt.Name
}

func (s *Source) Query(ctx context.Context, query string) (*model.Rows, error) {
	if !s.loaded {
		s.loadErr = s.load(ctx)
		s.loaded = true
	}
	if s.loadErr != nil {
		return nil, &model.ConnectionError{Source: s.opt.Name, Err: s.loadErr}
	}
	return s.db.Query(ctx, query)
}

func (s *Source) Close() error {
	return s.db.Close()
}

func (s *Source) load(ctx context.Context) error {
	for _, pair := range s.opt.Tables {
		name, path := util.SplitPair(pair)
		if err := s.loadTable(ctx, name, path); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) loadTable(ctx context.Context, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loadTable(%s) -> %w", name, err)
	}
	defer f.Close()

	in, err := decoder(f, s.opt.Encoding)
	if err != nil {
		return fmt.Errorf("loadTable(%s) -> %w", name, err)
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return fmt.Errorf("loadTable(%s) -> %s is empty", name, path)
	}
	if err != nil {
		return fmt.Errorf("loadTable(%s):header -> %w", name, err)
	}
	columns := headerNames(header)
	numeric := make([]bool, len(columns))
	for i, c := range columns {
		numeric[i] = util.InSliceFold(c, s.opt.Numeric)
	}

	tx, err := s.db.DB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("loadTable(%s):Begin -> %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(name, columns, numeric)); err != nil {
		return fmt.Errorf("loadTable(%s):Create -> %w", name, err)
	}
	stmt, err := tx.PreparexContext(ctx, insertSQL(name, len(columns)))
	if err != nil {
		return fmt.Errorf("loadTable(%s):Prepare -> %w", name, err)
	}
	defer stmt.Close()

	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return fmt.Errorf("loadTable(%s):line %d -> %w", name, line, err)
		}
		if _, err := stmt.ExecContext(ctx, rowArgs(record, numeric)...); err != nil {
			return fmt.Errorf("loadTable(%s):line %d -> %w", name, line, err)
		}
	}
	return tx.Commit()
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "cp1252", "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// headerNames cleans the header and gives blank or repeated names a unique
// replacement.
func headerNames(header []string) []string {
	names := util.CleanColumnNames(header)
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			n = fmt.Sprintf("Unnamed %d", i)
		}
		key := strings.ToLower(n)
		if count := seen[key]; count > 0 {
			n = fmt.Sprintf("%s_%d", n, count)
		}
		seen[key]++
		names[i] = n
	}
	return names
}

func createTableSQL(name string, columns []string, numeric []bool) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		if numeric[i] {
			defs[i] = util.EncloseStr(c, quote) + " REAL"
		} else {
			defs[i] = util.EncloseStr(c, quote) + " TEXT"
		}
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", util.EncloseStr(name, quote), strings.Join(defs, ", "))
}

func insertSQL(name string, n int) string {
	marks := strings.TrimSuffix(strings.Repeat("?,", n), ",")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", util.EncloseStr(name, quote), marks)
}

// rowArgs fits a record to the header width. Numeric cells are cleaned,
// empty text cells become NULL.
func rowArgs(record []string, numeric []bool) []any {
	args := make([]any, len(numeric))
	for i := range numeric {
		var cell *string
		if i < len(record) {
			cell = &record[i]
		}
		switch {
		case numeric[i]:
			args[i] = util.CleanNumeric(cell)
		case cell == nil || strings.TrimSpace(*cell) == "":
			args[i] = nil
		default:
			args[i] = *cell
		}
	}
	return args
}
