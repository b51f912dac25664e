package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
	"gopkg.in/yaml.v3"

	"qaReport/model"
	"qaReport/util"
)

const (
	sourcePrefix  = "source."
	checkPrefix   = "check."
	legacySection = "Database"
	logSection    = "log"
)

var logLevels = []string{"trace", "debug", "info", "notice", "warn", "error"}

// Load reads the configuration file at path. Files ending in .yaml or .yml
// are YAML, anything else is INI. Every problem is a *model.ConfigError.
func Load(path string) (*model.Options, error) {
	if path == "" {
		return nil, model.NewConfigError("", "config path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("config file not found: %w", err)}
	}

	var (
		opts *model.Options
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		opts, err = loadYAML(path)
	default:
		opts, err = loadINI(path)
	}
	if err != nil {
		var cfgErr *model.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &model.ConfigError{Err: fmt.Errorf("parse config: %w", err)}
	}

	applyDefaults(opts)
	if err := validate(opts); err != nil {
		return nil, err
	}
	return opts, nil
}

func loadINI(path string) (*model.Options, error) {
	//SQL text may hold ; and # and span indented continuation lines
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:        true,
		AllowPythonMultilineValues: true,
	}, path)
	if err != nil {
		return nil, err
	}

	opts := &model.Options{Sources: map[string]model.SourceOptions{}}
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case name == ini.DefaultSection:
			continue
		case strings.EqualFold(name, logSection):
			if err := sec.StrictMapTo(&opts.Log); err != nil {
				return nil, model.NewConfigError(name, "%s", err)
			}
		case name == legacySection:
			//a legacy single [Database] section is the ingested side
			src := model.SourceOptions{Driver: model.DriverMssql}
			if err := sec.StrictMapTo(&src); err != nil {
				return nil, model.NewConfigError(name, "%s", err)
			}
			if _, ok := opts.Sources[model.IngestedSource]; !ok {
				opts.Sources[model.IngestedSource] = src
			}
		case strings.HasPrefix(name, sourcePrefix):
			src := model.SourceOptions{}
			if err := sec.StrictMapTo(&src); err != nil {
				return nil, model.NewConfigError(name, "%s", err)
			}
			opts.Sources[strings.TrimPrefix(name, sourcePrefix)] = src
		case strings.HasPrefix(name, checkPrefix):
			spec := model.CheckSpec{}
			if err := sec.StrictMapTo(&spec); err != nil {
				return nil, model.NewConfigError(name, "%s", err)
			}
			spec.Name = strings.TrimPrefix(name, checkPrefix)
			opts.Checks = append(opts.Checks, spec)
		default:
			return nil, model.NewConfigError(name, "unknown section")
		}
	}
	return opts, nil
}

func loadYAML(path string) (*model.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	opts := &model.Options{}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	if opts.Sources == nil {
		opts.Sources = map[string]model.SourceOptions{}
	}
	return opts, nil
}

func applyDefaults(opts *model.Options) {
	if opts.Log.File == "" {
		opts.Log.File = model.DefaultLogFile
	}
	if opts.Log.Level == "" {
		opts.Log.Level = "info"
	}
	opts.Log.Level = strings.ToLower(opts.Log.Level)

	for name, src := range opts.Sources {
		src.Name = name
		src.Driver = strings.ToLower(strings.TrimSpace(src.Driver))
		src.Tables = util.TrimList(src.Tables)
		src.Numeric = util.TrimList(src.Numeric)
		opts.Sources[name] = src
	}

	for i := range opts.Checks {
		c := &opts.Checks[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
		if c.Source == "" {
			c.Source = model.RawSource
		}
		if c.Target == "" {
			c.Target = model.IngestedSource
		}
		c.GroupKey = util.CleanColumnName(c.GroupKey)
		c.NumericFields = util.CleanColumnNames(util.TrimList(c.NumericFields))
		c.IgnoreColumns = util.CleanColumnNames(util.TrimList(c.IgnoreColumns))
	}
}

func validate(opts *model.Options) error {
	if !util.InSlice(opts.Log.Level, logLevels) {
		return model.NewConfigError("log.level", "unknown level %q", opts.Log.Level)
	}
	if len(opts.Checks) == 0 {
		return model.NewConfigError("check", "at least one check is required")
	}

	for name, src := range opts.Sources {
		if err := validateSource(name, &src); err != nil {
			return err
		}
	}

	seen := map[string]bool{}
	for i := range opts.Checks {
		c := &opts.Checks[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return model.NewConfigError("check."+c.Name, "duplicate check name")
		}
		seen[c.Name] = true
		if _, ok := opts.Sources[c.Source]; !ok {
			return model.NewConfigError("check."+c.Name, "source %q is not configured", c.Source)
		}
		if _, ok := opts.Sources[c.Target]; !ok {
			return model.NewConfigError("check."+c.Name, "target %q is not configured", c.Target)
		}
	}
	return nil
}

func validateSource(name string, src *model.SourceOptions) error {
	key := "source." + name
	switch src.Driver {
	case model.DriverMssql, model.DriverMysql, model.DriverPostgres:
		if src.Host == "" {
			return model.NewConfigError(key, "host is required")
		}
		if src.Database == "" {
			return model.NewConfigError(key, "database is required")
		}
	case model.DriverMongo:
		if src.Host == "" {
			return model.NewConfigError(key, "host is required")
		}
		if src.Database == "" {
			return model.NewConfigError(key, "database is required")
		}
	case model.DriverSqlite:
		if src.Path == "" {
			return model.NewConfigError(key, "path is required")
		}
	case model.DriverCsv:
		if len(src.Tables) == 0 {
			return model.NewConfigError(key, "tables is required (name:path, ...)")
		}
		for _, pair := range src.Tables {
			table, path := util.SplitPair(pair)
			if !strings.Contains(pair, ":") || table == "" || path == "" {
				return model.NewConfigError(key, "table %q must be name:path", pair)
			}
		}
	case "":
		return model.NewConfigError(key, "driver is required")
	default:
		return model.NewConfigError(key, "unknown driver %q", src.Driver)
	}
	if src.QueryTimeout < 0 {
		return model.NewConfigError(key, "query_timeout must not be negative")
	}
	return nil
}
