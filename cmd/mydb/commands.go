package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thapedict/mydb"
	"github.com/thapedict/mydb/internal/formatter"
	"github.com/thapedict/mydb/internal/schema"
)

var (
	outputDir  string
	fields     string
	whereArgs  []string
	operator   string
	limit      string
	historyMax int
	colorize   bool
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = d.Close() }()

		for _, name := range d.TableNames() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe [table...]",
	Short: "Describe the columns of some or all tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = d.Close() }()

		s, err := selectTables(d.Schema(), args)
		if err != nil {
			return err
		}

		if outputDir != "" {
			if err := formatter.NewMultiFileFormatter(outputDir, format).Format(s); err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			return nil
		}

		w := cmd.OutOrStdout()
		switch format {
		case "text":
			err = formatter.NewTextFormatter(w).Format(s)
		case "markdown":
			err = formatter.NewMarkdownFormatter(w).Format(s)
		default:
			return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
		}
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <table>",
	Short: "Select rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		where, err := parseAssignments(whereArgs)
		if err != nil {
			return err
		}
		rw, err := formatter.NewRowWriter(cmd.OutOrStdout(), format)
		if err != nil {
			return err
		}

		return withTable(cmd.Context(), args[0], func(d *mydb.Database, t *mydb.Table) error {
			cols := parseList(fields)
			rows := t.Where(where, operator).Get(cmd.Context(), cols, limit)
			if rows == nil && lastStatementFailed(d) {
				return errOperationFailed
			}
			return rw.Write(projection(t, cols), rows)
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <table> column=value...",
	Short: "Insert a row",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}

		return withTable(cmd.Context(), args[0], func(_ *mydb.Database, t *mydb.Table) error {
			q := t.Query()
			if !q.Add(cmd.Context(), data) {
				return errOperationFailed
			}
			if id := q.InsertID(); id != 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "inserted id %d\n", id)
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "inserted")
			}
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <table> column=value...",
	Short: "Update rows; primary key columns among the values select the row",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		where, err := parseAssignments(whereArgs)
		if err != nil {
			return err
		}

		return withTable(cmd.Context(), args[0], func(_ *mydb.Database, t *mydb.Table) error {
			if !t.Where(where, operator).Update(cmd.Context(), data) {
				return errOperationFailed
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "updated")
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table> [column=value...]",
	Short: "Delete rows matching the given values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}
		where, err := parseAssignments(whereArgs)
		if err != nil {
			return err
		}

		return withTable(cmd.Context(), args[0], func(_ *mydb.Database, t *mydb.Table) error {
			if !t.Where(where, operator).Delete(cmd.Context(), data) {
				return errOperationFailed
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		})
	},
}

func init() {
	describeCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")

	getCmd.Flags().StringVar(&fields, "fields", "", "Columns to select (comma-separated, default: all)")
	getCmd.Flags().StringVar(&limit, "limit", "", "Row count or offset,count")

	for _, c := range []*cobra.Command{getCmd, updateCmd, deleteCmd} {
		c.Flags().StringArrayVarP(&whereArgs, "where", "w", nil, "Filter column=value (repeatable)")
		c.Flags().StringVar(&operator, "op", "=", "Comparison operator for --where filters")
	}

	historyCmd.Flags().IntVarP(&historyMax, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&colorize, "color", false, "Highlight SQL for the terminal")
}

// selectTables narrows s to the named tables, keeping the schema order
func selectTables(s *schema.Schema, names []string) (*schema.Schema, error) {
	if len(names) == 0 {
		return s, nil
	}

	byName := make(map[string]schema.Table, len(s.Tables))
	for _, t := range s.Tables {
		byName[t.Name] = t
	}

	out := &schema.Schema{Database: s.Database}
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("table %s does not exist in database %s", name, s.Database)
		}
		out.Tables = append(out.Tables, t)
	}
	return out, nil
}
