package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sptnr/internal/runlogs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List past sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries, err := runlogs.List(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprint(out, renderRunsTable(entries))
			return nil
		},
	}
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func renderRunsTable(entries []runlogs.Entry) string {
	headers := []string{"Log", "Modified", "Tracks", "Found", "Not Found", "Match", "Time"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}
	printer := message.NewPrinter(language.English)
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		row := []string{entry.Name, entry.ModTime.Local().Format("2006-01-02 15:04")}
		if entry.Completed {
			s := entry.Summary
			row = append(row,
				printer.Sprintf("%d", s.Tracks),
				printer.Sprintf("%d", s.Found),
				printer.Sprintf("%d", s.NotFound),
				strconv.FormatFloat(s.Match, 'f', -1, 64)+"%",
				s.Elapsed,
			)
		} else {
			row = append(row, "", "", "", "", "incomplete")
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns) + "\n"
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "show [log]",
		Short: "Print a run log (the newest when none is named)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			} else {
				entries, err := runlogs.List(cfg.Paths.LogDir)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				name = entries[0].Name
			}
			path, err := runlogs.Resolve(cfg.Paths.LogDir, name)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("run log %q not found in %s", name, cfg.Paths.LogDir)
			}
			if err != nil {
				return err
			}
			return printRunLog(cmd, path, lines, follow)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing until the run finishes")
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of trailing lines to show (0 for all)")
	return cmd
}

func printRunLog(cmd *cobra.Command, path string, lines int, follow bool) error {
	out := cmd.OutOrStdout()
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	opts := runlogs.TailOptions{Offset: 0}
	if lines > 0 {
		opts = runlogs.TailOptions{Offset: -1, Limit: lines}
	}
	for {
		result, err := runlogs.Tail(runCtx, path, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		finished := false
		for _, line := range result.Lines {
			fmt.Fprintln(out, line)
			if runFinished(line) {
				finished = true
			}
		}
		if !follow || finished {
			return nil
		}
		if runCtx.Err() != nil {
			return nil
		}
		opts = runlogs.TailOptions{Offset: result.Offset, Follow: true, Wait: time.Second}
	}
}

// runFinished reports whether line is the last one a run writes: the
// completion report or the abort record.
func runFinished(line string) bool {
	if _, ok := runlogs.ParseSummary(line); ok {
		return true
	}
	return strings.Contains(line, "sync aborted")
}
