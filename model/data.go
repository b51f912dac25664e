package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	KindRowCount    = "row_count"
	KindColumnCount = "column_count"
	KindGrouped     = "grouped"
)

const (
	StatusError = -1
	StatusFail  = 0
	StatusPass  = 1
)

// RowCountField is the pseudo field under which grouped checks compare the
// number of rows folded into each group.
const RowCountField = "row_count"

// NullKey is the group key of rows whose key cell is NULL. The leading NUL
// byte keeps it apart from a text key "NULL".
const NullKey = "\x00NULL"

// DefaultSampleRows is how many example rows per side a failing row count
// check logs.
const DefaultSampleRows = 5

// KeyText prints a group key for the log.
func KeyText(key string) string {
	if key == NullKey {
		return "NULL"
	}
	return key
}

// CheckSpec is one named comparison between a raw and an ingested source.
type CheckSpec struct {
	Name          string   `ini:"-" yaml:"name"`
	Kind          string   `ini:"kind" yaml:"kind"`
	Source        string   `ini:"source" yaml:"source"`
	Target        string   `ini:"target" yaml:"target"`
	SourceQuery   string   `ini:"source_query" yaml:"source_query"`
	TargetQuery   string   `ini:"target_query" yaml:"target_query"`
	Tolerance     float64  `ini:"tolerance" yaml:"tolerance"`
	GroupKey      string   `ini:"group_key" yaml:"group_key"`
	NumericFields []string `ini:"numeric_fields" delim:"," yaml:"numeric_fields"`
	RowCount      bool     `ini:"row_count" yaml:"row_count"`
	IgnoreColumns []string `ini:"ignore_columns" delim:"," yaml:"ignore_columns"`

	// row level queries run only when a row count check fails, to show
	// rows found on one side only
	SampleSourceQuery string `ini:"sample_source_query" yaml:"sample_source_query"`
	SampleTargetQuery string `ini:"sample_target_query" yaml:"sample_target_query"`
	SampleRows        int    `ini:"sample_rows" yaml:"sample_rows"`
}

// GroupResult is the comparison of one field of one group.
type GroupResult struct {
	Key      string
	Field    string
	Expected float64
	Actual   float64
	AbsDiff  float64
	RelDiff  float64
	Pass     bool
	Missing  string // "source" or "target" when the key exists on one side only
}

func (self *GroupResult) GetLog() string {
	if self.Missing != "" {
		return fmt.Sprintf("[key:%s] [Field:%s Missing:%s Expected:%s Actual:%s]", KeyText(self.Key), self.Field, self.Missing, Num(self.Expected), Num(self.Actual))
	}
	return fmt.Sprintf("[key:%s] [Field:%s Expected:%s Actual:%s Diff:%s RelDiff:%s%%]", KeyText(self.Key), self.Field, Num(self.Expected), Num(self.Actual), Num(self.AbsDiff), Pct(self.RelDiff))
}

// SampleRow is a row found on one side of a failing row count check only.
type SampleRow struct {
	OnlyIn  string // "source" or "target"
	Columns []string
	Values  []*string
}

func (self *SampleRow) GetLog() string {
	cells := make([]string, len(self.Values))
	for i, v := range self.Values {
		name := strconv.Itoa(i)
		if i < len(self.Columns) && self.Columns[i] != "" {
			name = self.Columns[i]
		}
		text := "NULL"
		if v != nil {
			text = *v
		}
		cells[i] = name + ":" + text
	}
	return fmt.Sprintf("[OnlyIn:%s] [%s]", self.OnlyIn, strings.Join(cells, " "))
}

// CheckResult is the outcome of evaluating one CheckSpec. Expected is the
// raw side and Actual the ingested side.
type CheckResult struct {
	Name           string
	Kind           string
	Expected       float64
	Actual         float64
	AbsDiff        float64
	RelDiff        float64 // percent
	Tolerance      float64 // percent
	Pass           bool
	Status         int
	Message        string
	Err            error
	Groups         []GroupResult
	Samples        []SampleRow
	CheckedAt      time.Time
	ExecuteSeconds float64
}

func NewCheckResult(spec *CheckSpec) *CheckResult {
	return &CheckResult{
		Name:      spec.Name,
		Kind:      spec.Kind,
		Tolerance: spec.Tolerance,
		Status:    StatusError,
		CheckedAt: time.Now(),
	}
}

func (self *CheckResult) StatusText() string {
	switch self.Status {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	default:
		return "ERROR"
	}
}

// FailedGroups returns the group comparisons that did not pass.
func (self *CheckResult) FailedGroups() []GroupResult {
	var failed []GroupResult
	for _, g := range self.Groups {
		if !g.Pass {
			failed = append(failed, g)
		}
	}
	return failed
}

func (self *CheckResult) GetLog() string {
	if self.Status == StatusError {
		return fmt.Sprintf("[%s] [Kind:%s Status:%s Error:%v]", self.Name, self.Kind, self.StatusText(), self.Err)
	}
	text := fmt.Sprintf("[%s] [Kind:%s Status:%s Expected:%s Actual:%s Diff:%s RelDiff:%s%% Tolerance:%s%%]",
		self.Name, self.Kind, self.StatusText(), Num(self.Expected), Num(self.Actual), Num(self.AbsDiff), Pct(self.RelDiff), Pct(self.Tolerance))
	if self.Kind == KindGrouped {
		text += fmt.Sprintf(" [Groups:%d FailedGroups:%d]", self.groupKeys(), len(self.FailedGroups()))
	}
	if self.Message != "" {
		text += " " + self.Message
	}
	return text
}

func (self *CheckResult) groupKeys() int {
	keys := make(map[string]struct{})
	for _, g := range self.Groups {
		keys[g.Key] = struct{}{}
	}
	return len(keys)
}

func Num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func Pct(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Validate reports the first malformed field of the check as a ConfigError.
func (self *CheckSpec) Validate() error {
	key := "check." + self.Name
	if self.Name == "" {
		return NewConfigError("check", "check name is required")
	}
	switch self.Kind {
	case KindRowCount, KindColumnCount, KindGrouped:
	case "":
		return NewConfigError(key, "kind is required")
	default:
		return NewConfigError(key, "unknown kind %q (want %s, %s or %s)", self.Kind, KindRowCount, KindColumnCount, KindGrouped)
	}
	if strings.TrimSpace(self.SourceQuery) == "" {
		return NewConfigError(key, "source_query is required")
	}
	if strings.TrimSpace(self.TargetQuery) == "" {
		return NewConfigError(key, "target_query is required")
	}
	if self.Tolerance < 0 || math.IsNaN(self.Tolerance) || math.IsInf(self.Tolerance, 0) {
		return NewConfigError(key, "tolerance must be a non-negative percentage, got %v", self.Tolerance)
	}
	if self.Kind == KindGrouped && strings.TrimSpace(self.GroupKey) == "" {
		return NewConfigError(key, "group_key is required for a grouped check")
	}
	if self.Source == "" || self.Target == "" {
		return NewConfigError(key, "source and target are required")
	}
	if (strings.TrimSpace(self.SampleSourceQuery) == "") != (strings.TrimSpace(self.SampleTargetQuery) == "") {
		return NewConfigError(key, "sample_source_query and sample_target_query go together")
	}
	if self.SampleRows < 0 {
		return NewConfigError(key, "sample_rows must not be negative")
	}
	return nil
}
