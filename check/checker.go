package check

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/slog"

	"qaReport/model"
	"qaReport/util"
)

// Comparator runs checks against a fixed set of opened sources.
type Comparator struct {
	Sources map[string]model.Source
	Logger  *slog.Logger
}

func NewComparator(sources map[string]model.Source, logger *slog.Logger) *Comparator {
	return &Comparator{Sources: sources, Logger: logger}
}

// RunCheck dispatches spec to the check of its kind. The returned result is
// never nil; when err is not nil the result has StatusError.
func (c *Comparator) RunCheck(ctx context.Context, spec *model.CheckSpec) (*model.CheckResult, error) {
	switch spec.Kind {
	case model.KindColumnCount:
		return c.RunColumnCountCheck(ctx, spec)
	case model.KindGrouped:
		return c.RunGroupedCheck(ctx, spec)
	default:
		return c.RunRowCountCheck(ctx, spec)
	}
}

// RunRowCountCheck compares the scalar returned by the source and target
// row-count queries.
func (c *Comparator) RunRowCountCheck(ctx context.Context, spec *model.CheckSpec) (*model.CheckResult, error) {
	res := model.NewCheckResult(spec)
	src, tgt, err := c.queryBoth(ctx, spec)
	if err != nil {
		return fail(res, err)
	}

	expected, err := scalar(src)
	if err != nil {
		return fail(res, fmt.Errorf("source %s -> %w", spec.Source, err))
	}
	actual, err := scalar(tgt)
	if err != nil {
		return fail(res, fmt.Errorf("target %s -> %w", spec.Target, err))
	}

	settle(res, expected, actual)
	if !res.Pass && spec.SampleSourceQuery != "" {
		if err := c.sampleRows(ctx, spec, res); err != nil {
			c.Logger.Warnf("[%s] sample rows failed: %s", spec.Name, err)
			res.Message = fmt.Sprintf("[SampleError:%s]", err)
		}
	}
	return res, nil
}

// sampleRows runs the row level queries of a failing row count check and
// keeps up to SampleRows rows of each side that the other side lacks.
func (c *Comparator) sampleRows(ctx context.Context, spec *model.CheckSpec, res *model.CheckResult) error {
	srcDB, err := c.source(spec.Source)
	if err != nil {
		return err
	}
	tgtDB, err := c.source(spec.Target)
	if err != nil {
		return err
	}
	src, err := srcDB.Query(ctx, spec.SampleSourceQuery)
	if err != nil {
		return err
	}
	tgt, err := tgtDB.Query(ctx, spec.SampleTargetQuery)
	if err != nil {
		return err
	}

	limit := spec.SampleRows
	if limit == 0 {
		limit = model.DefaultSampleRows
	}
	res.Samples = append(res.Samples, onlyIn("source", src, tgt, limit)...)
	res.Samples = append(res.Samples, onlyIn("target", tgt, src, limit)...)
	return nil
}

// onlyIn returns the first limit rows of rows whose tuple is not in other.
// Cells are compared by position.
func onlyIn(side string, rows, other *model.Rows, limit int) []model.SampleRow {
	seen := make(map[string]struct{}, other.Len())
	for _, row := range other.Values {
		seen[rowKey(row)] = struct{}{}
	}
	var samples []model.SampleRow
	for _, row := range rows.Values {
		if len(samples) == limit {
			break
		}
		if _, ok := seen[rowKey(row)]; !ok {
			samples = append(samples, model.SampleRow{OnlyIn: side, Columns: util.CleanColumnNames(rows.Columns), Values: row})
		}
	}
	return samples
}

func rowKey(row []*string) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = groupKey(cell)
	}
	return strings.Join(cells, "\x1f")
}

// RunColumnCountCheck compares the number of columns both queries return,
// after cleaning the names and dropping the ignored ones. Names found on
// one side only are listed in the message.
func (c *Comparator) RunColumnCountCheck(ctx context.Context, spec *model.CheckSpec) (*model.CheckResult, error) {
	res := model.NewCheckResult(spec)
	src, tgt, err := c.queryBoth(ctx, spec)
	if err != nil {
		return fail(res, err)
	}

	srcCols := keepColumns(src.Columns, spec.IgnoreColumns)
	tgtCols := keepColumns(tgt.Columns, spec.IgnoreColumns)
	settle(res, float64(len(srcCols)), float64(len(tgtCols)))

	onlySrc, onlyTgt := columnDiff(srcCols, tgtCols)
	if len(onlySrc) > 0 || len(onlyTgt) > 0 {
		res.Message = fmt.Sprintf("[OnlyInSource:%s OnlyInTarget:%s]", strings.Join(onlySrc, ","), strings.Join(onlyTgt, ","))
	}
	return res, nil
}

// RunGroupedCheck folds both results by the group key, then compares every
// numeric field of every group. A key found on one side only is always a
// mismatch.
func (c *Comparator) RunGroupedCheck(ctx context.Context, spec *model.CheckSpec) (*model.CheckResult, error) {
	res := model.NewCheckResult(spec)
	src, tgt, err := c.queryBoth(ctx, spec)
	if err != nil {
		return fail(res, err)
	}

	fields, err := numericFields(spec, src, tgt)
	if err != nil {
		return fail(res, err)
	}
	srcGroups, err := fold(src, spec.GroupKey, fields, spec.RowCount)
	if err != nil {
		return fail(res, fmt.Errorf("source %s -> %w", spec.Source, err))
	}
	tgtGroups, err := fold(tgt, spec.GroupKey, fields, spec.RowCount)
	if err != nil {
		return fail(res, fmt.Errorf("target %s -> %w", spec.Target, err))
	}
	if spec.RowCount {
		fields = append(fields, model.RowCountField)
	}

	var (
		pass                       = true
		worst                      float64
		totalExpected, totalActual float64
	)
	for _, key := range unionKeys(srcGroups, tgtGroups) {
		s, inSrc := srcGroups[key]
		t, inTgt := tgtGroups[key]
		totalExpected += s[fields[0]]
		totalActual += t[fields[0]]
		for _, f := range fields {
			g := model.GroupResult{Key: key, Field: f, Expected: s[f], Actual: t[f]}
			switch {
			case !inTgt:
				g.Missing = "target"
			case !inSrc:
				g.Missing = "source"
			default:
				g.AbsDiff, g.RelDiff, g.Pass = Compare(g.Expected, g.Actual, spec.Tolerance)
			}
			if g.Missing != "" {
				//a group that is not there at all differs without bound
				g.AbsDiff, g.RelDiff = absDiff(g.Expected, g.Actual), math.Inf(1)
			}
			if g.RelDiff > worst {
				worst = g.RelDiff
			}
			if !g.Pass {
				pass = false
			}
			res.Groups = append(res.Groups, g)
		}
	}

	res.Expected, res.Actual = totalExpected, totalActual
	res.AbsDiff = absDiff(totalExpected, totalActual)
	res.RelDiff = worst
	res.Pass = pass
	res.Status = model.StatusFail
	if pass {
		res.Status = model.StatusPass
	}
	return res, nil
}

func (c *Comparator) queryBoth(ctx context.Context, spec *model.CheckSpec) (src, tgt *model.Rows, err error) {
	if err := spec.Validate(); err != nil {
		return nil, nil, err
	}
	srcDB, err := c.source(spec.Source)
	if err != nil {
		return nil, nil, err
	}
	tgtDB, err := c.source(spec.Target)
	if err != nil {
		return nil, nil, err
	}

	if src, err = srcDB.Query(ctx, spec.SourceQuery); err != nil {
		return nil, nil, err
	}
	if tgt, err = tgtDB.Query(ctx, spec.TargetQuery); err != nil {
		return nil, nil, err
	}
	src.Columns = util.CleanColumnNames(src.Columns)
	tgt.Columns = util.CleanColumnNames(tgt.Columns)
	return src, tgt, nil
}

func (c *Comparator) source(name string) (model.Source, error) {
	s, ok := c.Sources[name]
	if !ok {
		return nil, model.NewConfigError("source."+name, "source is not configured")
	}
	return s, nil
}

func fail(res *model.CheckResult, err error) (*model.CheckResult, error) {
	res.Status = model.StatusError
	res.Pass = false
	res.Err = err
	return res, err
}

func settle(res *model.CheckResult, expected, actual float64) {
	res.Expected, res.Actual = expected, actual
	res.AbsDiff, res.RelDiff, res.Pass = Compare(expected, actual, res.Tolerance)
	if res.Pass {
		res.Status = model.StatusPass
	} else {
		res.Status = model.StatusFail
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// scalar reads the single value of a count query.
func scalar(rows *model.Rows) (float64, error) {
	if rows.Len() == 0 || len(rows.Columns) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	cell := rows.Values[0][0]
	if cell == nil {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(*cell), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("count query returned %q, not a number", *cell)
	}
	return v, nil
}

func keepColumns(cols, ignore []string) []string {
	var kept []string
	for _, col := range cols {
		if !util.InSliceFold(col, ignore) {
			kept = append(kept, col)
		}
	}
	return kept
}

func columnDiff(src, tgt []string) (onlySrc, onlyTgt []string) {
	for _, col := range src {
		if !util.InSliceFold(col, tgt) {
			onlySrc = append(onlySrc, col)
		}
	}
	for _, col := range tgt {
		if !util.InSliceFold(col, src) {
			onlyTgt = append(onlyTgt, col)
		}
	}
	return
}

// numericFields returns the configured numeric fields, or every non-key
// column of the source result. Each field must exist on both sides.
func numericFields(spec *model.CheckSpec, src, tgt *model.Rows) ([]string, error) {
	if columnIndex(src.Columns, spec.GroupKey) < 0 {
		return nil, fmt.Errorf("group key %q not in source result", spec.GroupKey)
	}
	if columnIndex(tgt.Columns, spec.GroupKey) < 0 {
		return nil, fmt.Errorf("group key %q not in target result", spec.GroupKey)
	}

	fields := spec.NumericFields
	if len(fields) == 0 {
		for _, col := range src.Columns {
			if !strings.EqualFold(col, spec.GroupKey) {
				fields = append(fields, col)
			}
		}
	}
	for _, f := range fields {
		if columnIndex(src.Columns, f) < 0 {
			return nil, fmt.Errorf("field %q not in source result", f)
		}
		if columnIndex(tgt.Columns, f) < 0 {
			return nil, fmt.Errorf("field %q not in target result", f)
		}
	}
	if len(fields) == 0 && !spec.RowCount {
		return nil, fmt.Errorf("no numeric field to compare")
	}
	if len(fields) == 0 {
		return []string{}, nil
	}
	return append([]string(nil), fields...), nil
}

func columnIndex(cols []string, name string) int {
	for i, col := range cols {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// fold sums the fields of rows sharing a group key. With rowCount the
// number of rows per key is kept under model.RowCountField.
func fold(rows *model.Rows, key string, fields []string, rowCount bool) (map[string]map[string]float64, error) {
	keyIdx := columnIndex(rows.Columns, key)
	if keyIdx < 0 {
		return nil, fmt.Errorf("group key %q not in result", key)
	}
	idx := make([]int, len(fields))
	for i, f := range fields {
		if idx[i] = columnIndex(rows.Columns, f); idx[i] < 0 {
			return nil, fmt.Errorf("field %q not in result", f)
		}
	}

	groups := make(map[string]map[string]float64)
	for _, row := range rows.Values {
		k := groupKey(row[keyIdx])
		g, ok := groups[k]
		if !ok {
			g = make(map[string]float64, len(fields)+1)
			groups[k] = g
		}
		for i, f := range fields {
			g[f] += util.CleanNumeric(row[idx[i]])
		}
		if rowCount {
			g[model.RowCountField]++
		}
	}
	return groups, nil
}

// groupKey normalizes a key cell so a date read from a file matches the
// same date read back as a timestamp.
func groupKey(cell *string) string {
	if cell == nil {
		return model.NullKey
	}
	k := strings.TrimSpace(*cell)
	for _, suffix := range []string{" 00:00:00", "T00:00:00Z", "T00:00:00"} {
		k = strings.TrimSuffix(k, suffix)
	}
	return k
}

func unionKeys(a, b map[string]map[string]float64) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Run executes specs one after another and logs each result. A failing or
// erroring check never stops the ones after it.
func (c *Comparator) Run(ctx context.Context, specs []model.CheckSpec) []*model.CheckResult {
	results := make([]*model.CheckResult, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		c.Logger.Infof("[%s] start %s check", spec.Name, spec.Kind)
		t := time.Now()
		res, err := c.RunCheck(ctx, spec)
		res.ExecuteSeconds = time.Since(t).Seconds()
		if err != nil {
			c.Logger.Errorf("[%s] check failed to run: %s", spec.Name, err)
		}
		LogResult(c.Logger, res)
		results = append(results, res)
	}
	return results
}

// Passed reports whether every result passed.
func Passed(results []*model.CheckResult) bool {
	for _, res := range results {
		if !res.Pass {
			return false
		}
	}
	return true
}
