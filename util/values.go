package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var columnNameJunk = regexp.MustCompile(`[^\p{L}\p{N}_\s/\-]`)

// CleanColumnName trims a header and drops the byte-order-mark remains and
// punctuation that spreadsheet exports leave in it.
func CleanColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "ï", "")
	name = columnNameJunk.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

func CleanColumnNames(names []string) []string {
	cleaned := make([]string, len(names))
	for i, n := range names {
		cleaned[i] = CleanColumnName(n)
	}
	return cleaned
}

// CleanNumeric reads a numeric cell the lenient way: thousands separators
// are dropped and anything that is not a number counts as 0.
func CleanNumeric(value *string) float64 {
	if value == nil {
		return 0
	}
	s := strings.TrimSpace(strings.ReplaceAll(*value, ",", ""))
	switch strings.ToLower(s) {
	case "", "-", "nan", "null":
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// EncloseStr quotes an identifier, doubling any quote inside it.
func EncloseStr(s string, quote string) string {
	return quote + strings.ReplaceAll(s, quote, quote+quote) + quote
}
