package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"qaReport/model"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestSource_Query(t *testing.T) {
	dir := t.TempDir()
	// utf-8 BOM read as latin1, a thousands separator, a "-" and a latin1 é
	data := []byte("\xef\xbb\xbfdate_field,Revenue,Note\n" +
		"2024-01-01,\"1,000\",caf\xe9\n" +
		"2024-01-01,500,\n" +
		"2024-01-02,-,x\n")
	path := writeFile(t, dir, "revenue.csv", data)

	src, err := New(&model.SourceOptions{
		Name:     "raw",
		Driver:   model.DriverCsv,
		Tables:   []string{"revenue:" + path},
		Encoding: "latin1",
		Numeric:  []string{"revenue"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	rows, err := src.Query(ctx, `SELECT date_field, SUM(Revenue) AS Revenue, COUNT(Note) AS notes FROM revenue GROUP BY date_field ORDER BY date_field`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows.Len() != 2 {
		t.Fatalf("rows = %d, want 2", rows.Len())
	}
	if got := *rows.Values[0][1]; got != "1500" {
		t.Errorf("2024-01-01 revenue = %s, want 1500", got)
	}
	if got := *rows.Values[0][2]; got != "1" {
		t.Errorf("2024-01-01 notes = %s, want 1 (empty text is NULL)", got)
	}
	if got := *rows.Values[1][1]; got != "0" {
		t.Errorf("2024-01-02 revenue = %s, want 0", got)
	}

	rows, err = src.Query(ctx, `SELECT Note FROM revenue WHERE Revenue = 1000`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rows.Len() != 1 || *rows.Values[0][0] != "café" {
		t.Errorf("latin1 text = %+v", rows.Values)
	}
}

func TestSource_Query_MissingFile(t *testing.T) {
	src, err := New(&model.SourceOptions{
		Name:   "raw",
		Tables: []string{"revenue:" + filepath.Join(t.TempDir(), "missing.csv")},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	for i := 0; i < 2; i++ {
		_, err = src.Query(context.Background(), `SELECT COUNT(*) FROM revenue`)
		var connErr *model.ConnectionError
		if !errors.As(err, &connErr) || connErr.Source != "raw" {
			t.Fatalf("query %d: err = %v, want a ConnectionError from raw", i, err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("query %d: err = %v, want it to wrap os.ErrNotExist", i, err)
		}
	}
}

func TestSource_Query_BadEncoding(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.csv", []byte("a\n1\n"))
	src, err := New(&model.SourceOptions{Name: "raw", Tables: []string{"a:" + path}, Encoding: "ebcdic"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer src.Close()

	if _, err := src.Query(context.Background(), `SELECT * FROM a`); err == nil {
		t.Fatal("Query with an unknown encoding returned no error")
	}
}

func TestHeaderNames(t *testing.T) {
	got := headerNames([]string{"Revenue", "", "revenue ", "Cost ($)"})
	want := []string{"Revenue", "Unnamed 1", "revenue_1", "Cost"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headerNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRowArgs(t *testing.T) {
	args := rowArgs([]string{"1,5", " "}, []bool{true, false, true})
	if args[0] != float64(15) || args[1] != nil || args[2] != float64(0) {
		t.Errorf("rowArgs = %v", args)
	}
}
