package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"
	"github.com/thapedict/mydb/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show statements recorded in the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.JournalPath == "" {
			return fmt.Errorf("no journal configured (use --journal or MYDB_JOURNAL)")
		}

		j, err := journal.Open(cmd.Context(), cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() { _ = j.Close() }()

		entries, err := j.Recent(cmd.Context(), historyMax)
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), entries, colorize)
	},
}

// writeHistory prints entries oldest first
func writeHistory(w io.Writer, entries []journal.Entry, color bool) error {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		_, _ = fmt.Fprintf(w, "#%d %s %s/%s %s affected=%d\n",
			e.ID,
			e.ExecutedAt.Local().Format(time.DateTime),
			e.Driver, e.Database,
			e.Duration.Round(time.Microsecond),
			e.AffectedRows)

		if color {
			if err := highlightSQL(w, e.Query); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w)
		} else {
			_, _ = fmt.Fprintf(w, "%s\n", e.Query)
		}

		if e.Error != "" {
			_, _ = fmt.Fprintf(w, "error %s: %s\n", e.ErrorCode, e.Error)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}

func highlightSQL(w io.Writer, sql string) error {
	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	f := formatters.Get("terminal256")
	if f == nil {
		f = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return fmt.Errorf("failed to tokenise query: %w", err)
	}
	return f.Format(w, style, iterator)
}
