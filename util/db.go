package util

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"qaReport/model"
)

func SetPool(db *sqlx.DB, maxOpen int) {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2) //must stay below maxOpen
	db.SetConnMaxLifetime(time.Second * 3600)
	db.SetConnMaxIdleTime(time.Second * 3600)
}

// QueryRows runs sqlText on a connection taken from db and reads the whole
// result as text. The connection goes back to the pool before returning.
func QueryRows(ctx context.Context, db *sqlx.DB, sqlText string) (*model.Rows, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryRows:Connx -> %w", err)
	}
	defer conn.Close()

	cur, err := conn.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("QueryRows:Query -> %w", err)
	}
	defer cur.Close()

	cols, err := cur.Columns()
	if err != nil {
		return nil, fmt.Errorf("QueryRows:Columns -> %w", err)
	}

	rows := &model.Rows{Columns: cols}
	for cur.Next() {
		values, err := cur.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("QueryRows:Scan -> %w", err)
		}
		row := make([]*string, len(values))
		for i, v := range values {
			row[i] = ToText(v)
		}
		rows.Values = append(rows.Values, row)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("QueryRows:Next -> %w", err)
	}
	return rows, nil
}

// ToText converts a value returned by a driver to its text form, nil for NULL.
func ToText(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		s = string(t)
	case string:
		s = t
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(t)
	case time.Time:
		s = t.Format("2006-01-02 15:04:05")
	default:
		s = fmt.Sprint(t)
	}
	return &s
}
