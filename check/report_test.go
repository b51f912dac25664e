package check

import (
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"qaReport/model"
	"qaReport/util"
)

func TestLogResult(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "qa_report.log")
	logger, err := util.NewLogger(logFile, "info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	pass := &model.CheckResult{Name: "revenue_rows", Kind: model.KindRowCount, Expected: 1000, Actual: 1005,
		AbsDiff: 5, RelDiff: 0.5, Tolerance: 1, Pass: true, Status: model.StatusPass}
	fail := &model.CheckResult{Name: "revenue_by_day", Kind: model.KindGrouped, Expected: 2000, Actual: 2100,
		AbsDiff: 100, RelDiff: 10, Tolerance: 1, Status: model.StatusFail,
		Groups: []model.GroupResult{
			{Key: "2024-01-01", Field: "Revenue", Expected: 1000, Actual: 1000, Pass: true},
			{Key: "2024-01-02", Field: "Revenue", Expected: 1000, Actual: 1100, AbsDiff: 100, RelDiff: 10},
		}}
	LogResult(logger, pass)
	LogResult(logger, fail)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("log has %d lines, want 3:\n%s", len(lines), data)
	}

	stamp := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[(INFO|ERROR)\] `)
	for _, line := range lines {
		if !stamp.MatchString(line) {
			t.Errorf("line %q has no timestamp and level", line)
		}
	}
	for _, want := range []string{"[revenue_rows]", "Status:PASS", "Expected:1000", "Actual:1005"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q does not contain %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "Status:FAIL") || !strings.Contains(lines[1], "FailedGroups:1") {
		t.Errorf("line %q is not the failing check", lines[1])
	}
	if !strings.Contains(lines[2], "[key:2024-01-02]") {
		t.Errorf("line %q is not the failing group", lines[2])
	}
}

func TestLogResult_CapsGroupLines(t *testing.T) {
	old := MaxGroupLines
	MaxGroupLines = 2
	defer func() { MaxGroupLines = old }()

	logFile := filepath.Join(t.TempDir(), "qa.log")
	logger, err := util.NewLogger(logFile, "info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	res := &model.CheckResult{Name: "many", Kind: model.KindGrouped, Status: model.StatusFail}
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		res.Groups = append(res.Groups, model.GroupResult{Key: k, Field: "x", Missing: "target"})
	}
	LogResult(logger, res)
	_ = logger.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if strings.Contains(text, "[key:c]") {
		t.Errorf("group c should not be logged:\n%s", text)
	}
	if !strings.Contains(text, "3 more failing groups not shown") {
		t.Errorf("missing the truncation line:\n%s", text)
	}
}

func TestSummary(t *testing.T) {
	logger := newTestLogger(t)
	results := []*model.CheckResult{
		{Name: "a", Kind: model.KindRowCount, Status: model.StatusPass, Pass: true},
		{Name: "b", Kind: model.KindGrouped, Status: model.StatusFail},
		{Name: "c", Kind: model.KindColumnCount, Status: model.StatusError},
	}
	text := Summary(logger, results)
	for _, want := range []string{
		"Checks planned  : 3",
		"Checks passed   : 1",
		"Checks failed   : 1",
		"Checks errored  : 1",
		"Failed checks   : b\n",
		"Errored checks  : c\n",
		"c, column_count, ERROR,",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary does not contain %q:\n%s", want, text)
		}
	}
}

func TestLogResult_Samples(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "qa.log")
	logger, err := util.NewLogger(logFile, "info")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	res := &model.CheckResult{Name: "rows", Kind: model.KindRowCount, Expected: 4, Actual: 3, Status: model.StatusFail,
		Samples: []model.SampleRow{{OnlyIn: "source", Columns: []string{"id"}, Values: []*string{nil}}}}
	LogResult(logger, res)
	_ = logger.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[rows] [OnlyIn:source] [id:NULL]") {
		t.Errorf("sample row not logged:\n%s", data)
	}
}

func TestSummary_InfiniteRelDiff(t *testing.T) {
	logger := newTestLogger(t)
	text := Summary(logger, []*model.CheckResult{
		{Name: "g", Kind: model.KindGrouped, Status: model.StatusFail, RelDiff: math.Inf(1), Tolerance: 1},
	})
	if !strings.Contains(text, "g, grouped, FAIL, 0, 0, 0, inf, 1.00,") {
		t.Errorf("summary row:\n%s", text)
	}
}
