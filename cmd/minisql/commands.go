package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vegasq/minisql/internal/config"
	"github.com/vegasq/minisql/internal/logger"
	"github.com/vegasq/minisql/internal/output"
	"github.com/vegasq/minisql/internal/query"
	"github.com/vegasq/minisql/internal/reader"
	"github.com/vegasq/minisql/internal/repl"
	"github.com/vegasq/minisql/internal/server"
)

// app carries state shared by every command
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "minisql [table]",
		Short: "Query a CSV or parquet table with a small subset of SQL",
		Long: `minisql loads one table from <data-dir>/<table>.csv (optionally
compressed as .csv.gz, .csv.zst, .csv.lz4 or .csv.br) or <table>.parquet
and answers SELECT queries against it.

Without a subcommand it starts an interactive session.`,
		Example: `  minisql users
  minisql query "SELECT name FROM users WHERE country = 'USA'"
  minisql query -f csv "SELECT COUNT(*) FROM users WHERE age >= 30"
  minisql schema users
  minisql serve -t users --addr :8080`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runREPL,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.String("data-dir", "data", "directory holding table files")
	flags.StringP("format", "f", output.DefaultFormat, "output format: "+strings.Join(output.Formats(), ", "))
	flags.String("parser", query.ModeTextual, "query parser: textual or tokens")
	flags.String("log-level", "WARN", "log level: DEBUG, INFO, WARN, ERROR")
	flags.String("log-format", "text", "log format: text or json")

	bind(a.v, flags.Lookup("data-dir"), "data_dir")
	bind(a.v, flags.Lookup("format"), "format")
	bind(a.v, flags.Lookup("parser"), "parser")
	bind(a.v, flags.Lookup("log-level"), "log.level")
	bind(a.v, flags.Lookup("log-format"), "log.format")

	root.AddCommand(a.newQueryCmd(), a.newSchemaCmd(), a.newServeCmd())
	return root
}

// setup loads configuration and the logger before any command runs
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if _, err := output.NewFormatter(cfg.Format, io.Discard); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	a.logger.Debug("configuration loaded", "data_dir", cfg.DataDir, "format", cfg.Format, "parser", cfg.Parser)
	return nil
}

func (a *app) runREPL(cmd *cobra.Command, args []string) error {
	parse, err := query.ParserFor(a.cfg.Parser)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(a.cfg.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	tableName := ""
	if len(args) == 1 {
		tableName = args[0]
	}

	term := repl.NewTerminal(a.cfg.History)
	defer func() {
		if err := term.Close(); err != nil {
			a.logger.Warn("failed to save history", "error", err)
		}
	}()

	session := repl.New(repl.Options{
		Input:     term,
		Output:    cmd.OutOrStdout(),
		Load:      a.loadTable,
		Parse:     parse,
		Formatter: formatter,
		Logger:    a.logger,
	})
	return session.Run(cmd.Context(), tableName)
}

func (a *app) newQueryCmd() *cobra.Command {
	var table, file string

	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run one query and print the result",
		Long: `Run one query and print the result. The table defaults to the name
after FROM; --table overrides it and also accepts a file path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := queryText(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}

			parse, err := query.ParserFor(a.cfg.Parser)
			if err != nil {
				return err
			}
			q, err := parse(text)
			if err != nil {
				return err
			}

			name := table
			if name == "" {
				name = q.Table
			}
			t, err := a.loadTable(name)
			if err != nil {
				return err
			}

			rows, err := t.Execute(q)
			if err != nil {
				return err
			}
			a.logger.Debug("query executed", "query", q.String(), "rows", len(rows))

			formatter, err := output.NewFormatter(a.cfg.Format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return formatter.Format(rows)
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "table name or file path")
	cmd.Flags().StringVar(&file, "file", "", "read the query from a file (- for stdin)")
	return cmd
}

func (a *app) newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the columns of a table and the kind of values they hold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTable(args[0])
			if err != nil {
				return err
			}

			rows := make([]*query.Record, 0, len(t.Columns))
			for _, col := range t.Schema() {
				rows = append(rows, query.RecordOf("column", query.Text(col.Name), "type", query.Text(col.Type)))
			}

			formatter, err := output.NewFormatter(a.cfg.Format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return formatter.Format(rows)
		},
	}
}

func (a *app) newServeCmd() *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve queries against a table over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if table == "" {
				return errors.New("--table is required")
			}
			t, err := a.loadTable(table)
			if err != nil {
				return err
			}
			parse, err := query.ParserFor(a.cfg.Parser)
			if err != nil {
				return err
			}

			srv, err := server.New(a.cfg.Server, t, parse, a.logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "table name or file path")
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("workers", 64, "maximum concurrent queries")
	cmd.Flags().Int("rate-limit", 600, "requests per minute per client (0 disables)")
	bind(a.v, cmd.Flags().Lookup("addr"), "server.addr")
	bind(a.v, cmd.Flags().Lookup("workers"), "server.workers")
	bind(a.v, cmd.Flags().Lookup("rate-limit"), "server.rate_limit")
	return cmd
}

// loadTable resolves a bare table name inside the data directory. A name
// with an extension is a file in the data directory and anything with a
// path separator is a file path.
func (a *app) loadTable(name string) (*reader.Table, error) {
	var (
		t   *reader.Table
		err error
	)
	switch {
	case strings.ContainsAny(name, `/\`):
		t, err = reader.LoadFile(name)
	case reader.TableName(name) != name:
		t, err = reader.LoadFile(filepath.Join(a.cfg.DataDir, name))
	default:
		t, err = reader.Load(a.cfg.DataDir, name)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Info("table loaded", "table", t.Name, "source", t.Source, "rows", t.Len())
	return t, nil
}

// queryText takes the query from the argument or from --file
func queryText(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", errors.New("pass the query as an argument or with --file, not both")
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	}
	return "", errors.New("missing query")
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
