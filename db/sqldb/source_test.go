package sqldb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"qaReport/model"
)

func TestSource_Query(t *testing.T) {
	opt := &model.SourceOptions{Name: "ingested", Driver: model.DriverSqlite, Path: filepath.Join(t.TempDir(), "ingested.db")}
	src, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE Revenue (id INTEGER PRIMARY KEY, date_field TEXT, Revenue REAL)`,
		`INSERT INTO Revenue (date_field, Revenue) VALUES ('2024-01-01', 1000), ('2024-01-01', 500), ('2024-01-02', NULL)`,
	} {
		if _, err := src.DB().ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	if src.Name() != "ingested" {
		t.Errorf("Name = %q", src.Name())
	}
	rows, err := src.Query(ctx, `SELECT COUNT(*) FROM Revenue`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows.Len() != 1 || *rows.Values[0][0] != "3" {
		t.Errorf("count = %+v", rows.Values)
	}

	rows, err = src.Query(ctx, `SELECT date_field, SUM(Revenue) AS Revenue FROM Revenue GROUP BY date_field ORDER BY date_field`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows.Len() != 2 || *rows.Values[0][1] != "1500" || rows.Values[1][1] != nil {
		t.Errorf("grouped = %+v", rows.Values)
	}
}

func TestSource_Query_ConnectionError(t *testing.T) {
	src, err := New(&model.SourceOptions{Name: "ingested", Driver: model.DriverSqlite, Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	_, err = src.Query(context.Background(), `SELECT * FROM missing_table`)
	var connErr *model.ConnectionError
	if !errors.As(err, &connErr) || connErr.Source != "ingested" {
		t.Fatalf("err = %v, want a ConnectionError from ingested", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(&model.SourceOptions{Name: "x", Driver: "oracle"}); err == nil {
		t.Fatal("New with an unknown driver returned no error")
	}
}
