package check

import (
	"fmt"
	"strings"

	"github.com/gookit/slog"

	"qaReport/model"
)

// MaxGroupLines caps how many failing groups of one check are logged.
var MaxGroupLines = 100

// LogResult writes one line for the check, then one line per failing group
// and per sample row.
func LogResult(logger *slog.Logger, res *model.CheckResult) {
	if res.Pass {
		logger.Info(res.GetLog())
		return
	}
	logger.Error(res.GetLog())

	failed := res.FailedGroups()
	for i, g := range failed {
		if i == MaxGroupLines {
			logger.Errorf("[%s] ... %d more failing groups not shown", res.Name, len(failed)-MaxGroupLines)
			break
		}
		logger.Errorf("[%s] %s", res.Name, g.GetLog())
	}
	for _, sample := range res.Samples {
		logger.Errorf("[%s] %s", res.Name, sample.GetLog())
	}
}

// Summary logs the closing report of a run and returns its text.
func Summary(logger *slog.Logger, results []*model.CheckResult) string {
	var passed, failed, errored []string
	for _, res := range results {
		switch res.Status {
		case model.StatusPass:
			passed = append(passed, res.Name)
		case model.StatusFail:
			failed = append(failed, res.Name)
		default:
			errored = append(errored, res.Name)
		}
	}

	var text strings.Builder
	text.WriteString("########################################## QA report ##############################################\n")
	text.WriteString(fmt.Sprintf("Checks planned  : %d\n", len(results)))
	text.WriteString(fmt.Sprintf("Checks passed   : %d\n", len(passed)))
	text.WriteString(fmt.Sprintf("Checks failed   : %d\n", len(failed)))
	text.WriteString(fmt.Sprintf("Checks errored  : %d\n", len(errored)))
	text.WriteString(fmt.Sprintf("Failed checks   : %s\n", strings.Join(failed, ", ")))
	text.WriteString(fmt.Sprintf("Errored checks  : %s\n", strings.Join(errored, ", ")))
	text.WriteString("####################################################################################################\n")
	text.WriteString("Name, Kind, Status, Expected, Actual, Diff, RelDiff(%), Tolerance(%), ExecuteSeconds\n")
	for _, res := range results {
		text.WriteString(fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %.3f\n", res.Name, res.Kind, res.StatusText(),
			model.Num(res.Expected), model.Num(res.Actual), model.Num(res.AbsDiff), model.Pct(res.RelDiff), model.Pct(res.Tolerance), res.ExecuteSeconds))
	}

	if len(failed)+len(errored) > 0 {
		logger.Error("QA report\n" + text.String())
	} else {
		logger.Info("QA report\n" + text.String())
	}
	return text.String()
}
