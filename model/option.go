package model

import "time"

const (
	DriverMssql    = "mssql"
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
	DriverCsv      = "csv"
	DriverMongo    = "mongo"
)

const (
	RawSource      = "raw"
	IngestedSource = "ingested"
)

const (
	DefaultConfigFile   = "config/config.ini"
	DefaultLogFile      = "logs/qa_report.log"
	DefaultQueryTimeout = 300
)

// Options is the whole process configuration. It is loaded once and never
// modified after config.Load returns.
type Options struct {
	Log     LogOptions               `yaml:"log"`
	Sources map[string]SourceOptions `yaml:"sources"`
	Checks  []CheckSpec              `yaml:"checks"`
}

type LogOptions struct {
	File  string `ini:"file" yaml:"file"`
	Level string `ini:"level" yaml:"level"`
}

// SourceOptions describes one side of a comparison. Which fields are
// required depends on Driver.
type SourceOptions struct {
	Name         string   `ini:"-" yaml:"-"`
	Driver       string   `ini:"driver" yaml:"driver"`
	Host         string   `ini:"host" yaml:"host"`
	Port         int      `ini:"port" yaml:"port"`
	Username     string   `ini:"username" yaml:"username"`
	Password     string   `ini:"password" yaml:"password"`
	Database     string   `ini:"database" yaml:"database"`
	Path         string   `ini:"path" yaml:"path"`
	Tables       []string `ini:"tables" delim:"," yaml:"tables"`
	Encoding     string   `ini:"encoding" yaml:"encoding"`
	Numeric      []string `ini:"numeric" delim:"," yaml:"numeric"`
	QueryTimeout int      `ini:"query_timeout" yaml:"query_timeout"`
}

func (o *SourceOptions) Timeout() time.Duration {
	if o.QueryTimeout <= 0 {
		return DefaultQueryTimeout * time.Second
	}
	return time.Duration(o.QueryTimeout) * time.Second
}
