package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"qaReport/model"
	"qaReport/util"
)

// Query is the extended-JSON form a check uses against a mongo source:
//
//	{"collection": "orders", "count": true, "filter": {"status": "done"}}
//	{"collection": "orders", "pipeline": [{"$group": {"_id": "$day", "total": {"$sum": "$amount"}}}]}
//	{"collection": "orders", "filter": {}}
type Query struct {
	Collection string `bson:"collection"`
	Count      bool   `bson:"count,omitempty"`
	Filter     bson.D `bson:"filter,omitempty"`
	Pipeline   bson.A `bson:"pipeline,omitempty"`
}

func ParseQuery(text string) (*Query, error) {
	q := &Query{}
	if err := bson.UnmarshalExtJSON([]byte(text), false, q); err != nil {
		return nil, fmt.Errorf("ParseQuery -> %w", err)
	}
	if q.Collection == "" {
		return nil, fmt.Errorf("ParseQuery -> collection is required")
	}
	return q, nil
}

// FilterDoc is the filter to send, an empty document when none was given.
func (q *Query) FilterDoc() bson.D {
	if len(q.Filter) == 0 {
		return bson.D{}
	}
	return q.Filter
}

type Source struct {
	name    string
	conn    *util.MongoDb
	timeout time.Duration
}

func New(ctx context.Context, opt *model.SourceOptions) (*Source, error) {
	conn := &util.MongoDb{
		Host:     opt.Host,
		Port:     opt.Port,
		User:     opt.Username,
		Password: opt.Password,
		Database: opt.Database,
	}
	if err := conn.Init(ctx); err != nil {
		return nil, err
	}
	return &Source{name: opt.Name, conn: conn, timeout: opt.Timeout()}, nil
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Query(ctx context.Context, text string) (*model.Rows, error) {
	q, err := ParseQuery(text)
	if err != nil {
		return nil, &model.ConnectionError{Source: s.name, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var docs []bson.D
	switch {
	case q.Count:
		n, err := s.conn.Count(ctx, q.Collection, q.FilterDoc())
		if err != nil {
			return nil, &model.ConnectionError{Source: s.name, Err: err}
		}
		return &model.Rows{Columns: []string{"count"}, Values: [][]*string{{util.ToText(n)}}}, nil
	case len(q.Pipeline) > 0:
		docs, err = s.conn.Aggregate(ctx, q.Collection, q.Pipeline)
	default:
		docs, err = s.conn.FindAll(ctx, q.Collection, q.FilterDoc())
	}
	if err != nil {
		return nil, &model.ConnectionError{Source: s.name, Err: err}
	}
	return DocsToRows(docs), nil
}

func (s *Source) Close() error {
	return s.conn.Close(context.Background())
}

// DocsToRows flattens documents into a table. Columns appear in the order
// they are first seen; a field missing from a document is NULL.
func DocsToRows(docs []bson.D) *model.Rows {
	rows := &model.Rows{}
	index := make(map[string]int)
	for _, doc := range docs {
		for _, e := range doc {
			if _, ok := index[e.Key]; !ok {
				index[e.Key] = len(rows.Columns)
				rows.Columns = append(rows.Columns, e.Key)
			}
		}
	}
	for _, doc := range docs {
		row := make([]*string, len(rows.Columns))
		for _, e := range doc {
			row[index[e.Key]] = valueText(e.Value)
		}
		rows.Values = append(rows.Values, row)
	}
	return rows
}

func valueText(v any) *string {
	var s string
	switch t := v.(type) {
	case primitive.ObjectID:
		s = t.Hex()
	case primitive.Decimal128:
		s = t.String()
	case primitive.DateTime:
		s = t.Time().UTC().Format("2006-01-02 15:04:05")
	case int32:
		return util.ToText(int64(t))
	case primitive.Null, primitive.Undefined:
		return nil
	case bson.D:
		b, err := bson.MarshalExtJSON(t, false, false)
		if err != nil {
			return util.ToText(t)
		}
		s = string(b)
	default:
		return util.ToText(t)
	}
	return &s
}
