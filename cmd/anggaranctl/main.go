// anggaranctl runs the budget pipeline from the command line.
//
// Usage:
//
//	anggaranctl export --format xlsx --category Health --out health.xlsx
//	anggaranctl check
//	anggaranctl seed --db data/anggaran.db
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	appcli "anggaran/internal/cli"
	"anggaran/internal/core"
	"anggaran/internal/dataset"
	"anggaran/internal/export"
	applog "anggaran/internal/log"
	"anggaran/internal/pipeline"
	"anggaran/internal/storage"
)

var (
	version = "dev"
	logger  = applog.Discard()
)

func main() {
	appcli.LoadEnvFile()

	app := &cli.App{
		Name:    "anggaranctl",
		Usage:   "Regional budget exports and source checks",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"ANGGARANCTL_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger = appcli.SetupLogger(c.String("log-level"), c.App.ErrWriter)
			return nil
		},
		Commands: []*cli.Command{
			exportCommand(),
			checkCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Run the dashboard pipeline and write the filtered department table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(export.FormatCSV),
				Usage:   "Output format (csv, xlsx, json)",
			},
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Case-insensitive department name search",
			},
			&cli.StringSliceFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Category to keep (repeatable); all categories when omitted",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "Output file, - for stdout",
			},
			&cli.BoolFlag{
				Name:  "use-db",
				Usage: "Read from the configured database (defaults to USE_DB)",
			},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	services, err := newServices()
	if err != nil {
		return err
	}
	defer services.Close()

	settings := services.Defaults
	if c.IsSet("use-db") {
		settings.UseExternal = c.Bool("use-db")
	}
	req := pipeline.Request{Settings: settings, Search: c.String("search")}
	if c.IsSet("category") {
		req.Categories = c.StringSlice("category")
		req.CategoriesSelected = true
	}

	res := services.Resolver.Run(c.Context, req)
	for _, n := range res.Notices {
		fmt.Fprintf(c.App.ErrWriter, "[%s] %s\n", n.Level, n.Message)
	}

	out, closeOut, err := openOutput(c.String("out"), c.App.Writer)
	if err != nil {
		return err
	}
	if err := export.Write(out, format, res.Tables, core.SortByCode(res.Filtered)); err != nil {
		closeOut()
		return fmt.Errorf("write %s export: %w", format, err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "%d departments exported (%s mode)\n", len(res.Filtered), res.Mode)
	return nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Open and ping the configured external database",
		Action: func(c *cli.Context) error {
			services, err := newServices()
			if err != nil {
				return err
			}
			defer services.Close()

			conn := services.Defaults.Conn
			if missing := conn.Missing(); len(missing) > 0 {
				return fmt.Errorf("connection settings incomplete (missing %s)", strings.Join(missing, ", "))
			}
			if err := services.Loader.Ping(c.Context, conn); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Connected to %s\n", conn)
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create a local SQLite source populated from the built-in dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "Path of the SQLite database to create or refresh",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			return seed(c.Context, c.String("db"), c.App.Writer)
		},
	}
}

func seed(ctx context.Context, path string, w io.Writer) error {
	db, err := storage.OpenSourceDB(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Seed(ctx, dataset.Departments())
	if err != nil {
		return err
	}
	logger.Info("Source database seeded", applog.FieldOperation, applog.OpSeed, applog.FieldRows, n, "path", db.Path())
	fmt.Fprintf(w, "Seeded %d departments into %s\n", n, db.Path())
	return nil
}

func newServices() (*appcli.Services, error) {
	cfg, err := appcli.LoadConfig()
	if err != nil {
		return nil, err
	}
	services, err := appcli.NewServices(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire source: %w", err)
	}
	return services, nil
}
