package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"qaReport/check"
	"qaReport/config"
	"qaReport/db"
	"qaReport/model"
	"qaReport/util"
)

const (
	ExitPassed = 0
	ExitFailed = 1
	ExitConfig = 2
)

func version() {
	text := `
####################################################################################################
#  Name        :  qaReport
#  Description :  Compare raw data files or tables with the copy ingested into the target database:
#                 row counts, column counts and grouped numeric totals within a tolerance
#  Updates     :
#      Version     When            What
#      --------    -----------     -----------------------------------------------------------------
#      v1.0        2024-03-11      row count, column count and grouped checks against mssql
#      v1.1        2024-04-02      csv raw sources staged in sqlite, mysql/pgsql/mongo sources
#      v1.2        2024-05-20      yaml config, per-group report lines
####################################################################################################
`
	fmt.Println(text)
}

func run(ctx *cli.Context) error {
	if code := runChecks(ctx.Context, ctx.String("config"), ctx.String("log-file")); code != ExitPassed {
		return cli.Exit("", code)
	}
	return nil
}

// runChecks loads cfgPath, runs every check and returns the exit code.
// logFile, when set, replaces the log file of the config.
func runChecks(ctx context.Context, cfgPath, logFile string) int {
	opts, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qaReport: %s\n", err)
		return ExitConfig
	}
	if logFile != "" {
		opts.Log.File = logFile
	}

	logger, err := util.NewLogger(opts.Log.File, opts.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "qaReport: %s\n", err)
		return ExitConfig
	}
	defer logger.Close()

	defer util.TimeCost(logger)("Data quality checks completed")
	logger.Infof("Starting data quality checks [config:%s sources:%d checks:%d]", cfgPath, len(opts.Sources), len(opts.Checks))

	sources := db.OpenSources(ctx, logger, opts.Sources)
	defer db.CloseSources(logger, sources)

	cmp := check.NewComparator(sources, logger)
	results := cmp.Run(ctx, opts.Checks)
	check.Summary(logger, results)

	for _, res := range results {
		var cfgErr *model.ConfigError
		if errors.As(res.Err, &cfgErr) {
			return ExitConfig
		}
	}
	if !check.Passed(results) {
		return ExitFailed
	}
	return ExitPassed
}

func main() {
	app := &cli.App{
		Name:  "qaReport",
		Usage: "check that ingested data matches its raw source",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: model.DefaultConfigFile, Usage: "INI or YAML config file with sources and checks"},
			&cli.StringFlag{Name: "log-file", Aliases: []string{"l"}, Usage: "Append check results to this file instead of [log] file"},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "show version history",
				Action: func(ctx *cli.Context) error {
					version()
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
