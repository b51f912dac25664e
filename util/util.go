package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/slog"
)

func Mkdir(dirName string) error {
	if dirName == "" || dirName == "." {
		return nil
	}
	if _, err := os.Stat(dirName); os.IsNotExist(err) {
		if err := os.MkdirAll(dirName, 0775); err != nil {
			return fmt.Errorf("mkdir(%s) -> %w", dirName, err)
		}
	}
	return nil
}

// MkdirFor creates the parent directory of a file path.
func MkdirFor(filename string) error {
	return Mkdir(filepath.Dir(filename))
}

func InSlice[T comparable](target T, list []T) bool {
	for i := range list {
		if target == list[i] {
			return true
		}
	}
	return false
}

// InSliceFold is InSlice for strings, ignoring case.
func InSliceFold(target string, list []string) bool {
	for i := range list {
		if strings.EqualFold(target, list[i]) {
			return true
		}
	}
	return false
}

// SplitPair splits "left:right". Without a colon both halves are s, the
// way db1 and db1:db01 are both accepted for a pair of names.
func SplitPair(s string) (string, string) {
	left, right, found := strings.Cut(s, ":")
	left = strings.TrimSpace(left)
	if !found {
		return left, left
	}
	return left, strings.TrimSpace(right)
}

// TrimList trims every element and drops the empty ones.
func TrimList(list []string) []string {
	var out []string
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func TimeCost(logger *slog.Logger) func(str string) {
	//log the elapsed time when the returned func runs
	bts := time.Now()
	return func(str string) {
		logger.Infof("%s, cost %.3fs", str, time.Since(bts).Seconds())
	}
}
