package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thapedict/mydb"
	"github.com/thapedict/mydb/internal/config"
	"github.com/thapedict/mydb/internal/db"
	"github.com/thapedict/mydb/internal/logging"
)

var errOperationFailed = errors.New("operation failed (see log)")

var (
	dbURL       string
	envFile     string
	database    string
	logFile     string
	journalPath string
	format      string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "mydb",
	Short:         "Read and write table rows through a reflected schema",
	Long:          `mydb connects to a MySQL, PostgreSQL or SQLite database, discovers its tables and columns, and runs INSERT, SELECT, UPDATE and DELETE statements built from column=value arguments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return logging.Init(logging.Config{Level: cfg.LogLevel})
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Close()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbURL, "url", "", "Database URL (default: MYDB_URL or built from MYDB_HOST/MYDB_USERNAME/MYDB_PASSWORD)")
	flags.StringVar(&envFile, "env", "", "Environment file to load (default: .env when present)")
	flags.StringVar(&database, "database", "", "Database to select after connecting (default: MYDB_DATABASE)")
	flags.StringVar(&logFile, "log-file", "", "File receiving operation errors (default: MYDB_LOG_FILE)")
	flags.StringVar(&journalPath, "journal", "", "SQLite file recording every statement (default: MYDB_JOURNAL)")
	flags.StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml (rows); text or markdown (schemas)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (default: MYDB_LOG_LEVEL or warn)")

	rootCmd.AddCommand(tablesCmd, describeCmd, getCmd, addCmd, updateCmd, deleteCmd, historyCmd)
}

// loadConfig merges the environment with the command line flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	if dbURL != "" {
		cfg.URL = dbURL
	}
	if database != "" {
		cfg.Database = database
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if journalPath != "" {
		cfg.JournalPath = journalPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func openDatabase(ctx context.Context) (*mydb.Database, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	url, err := cfg.DatabaseURL()
	if err != nil {
		return nil, err
	}

	d, err := mydb.Open(ctx, url, &mydb.Config{
		Database:    cfg.Database,
		LogFile:     cfg.LogFile,
		JournalPath: cfg.JournalPath,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// withTable opens the database and runs fn on the named table
func withTable(ctx context.Context, name string, fn func(*mydb.Database, *mydb.Table) error) error {
	d, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close database: %v\n", err)
		}
	}()

	t, ok := d.Table(name)
	if !ok {
		return fmt.Errorf("table %s does not exist in database %s", name, d.Name())
	}
	return fn(d, t)
}

// lastStatementFailed reports whether the most recent statement on the
// connection failed
func lastStatementFailed(d *mydb.Database) bool {
	c, ok := d.Conn().(db.Client)
	if !ok {
		return false
	}
	q := c.Queries()
	return len(q) > 0 && q[len(q)-1].Error != ""
}

// parseAssignments turns col=value arguments into a row
func parseAssignments(args []string) (mydb.Row, error) {
	row := make(mydb.Row, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected column=value)", arg)
		}
		row[col] = val
	}
	return row, nil
}

// parseList splits a comma-separated list, dropping empty entries
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// projection returns the columns a Get with fields will return
func projection(t *mydb.Table, fields []string) []string {
	var cols []string
	for _, f := range fields {
		if _, ok := t.Column(f); ok && !slices.Contains(cols, f) {
			cols = append(cols, f)
		}
	}
	if len(cols) == 0 {
		return t.FieldNames()
	}
	return cols
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
