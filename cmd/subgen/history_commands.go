package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"subgen/internal/history"
)

var statusCaser = cases.Title(language.English)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past subtitle requests",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if errors.Is(err, history.ErrDisabled) {
		return nil, errors.New("history is disabled (set history.enabled = true)")
	}
	return store, err
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No requests recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					shortRequestID(entry.RequestID),
					entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
					statusCaser.String(entry.Status),
					formatElapsed(entry),
					strconv.Itoa(entry.CueCount),
					truncateMiddle(entry.VideoURL, 48),
					entryDetail(entry),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Status", "Took", "Cues", "Video", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of requests to show (0 for all)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d request(s) from history\n", removed)
			return nil
		},
	}
}

func shortRequestID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatElapsed(entry history.Entry) string {
	if !entry.Finished() {
		return "-"
	}
	return entry.Duration().Round(100 * time.Millisecond).String()
}

func entryDetail(entry history.Entry) string {
	if entry.OutputPath != "" {
		return entry.OutputPath
	}
	return truncateMiddle(strings.TrimSpace(entry.Message), 60)
}

func truncateMiddle(value string, limit int) string {
	runes := []rune(value)
	if limit <= 3 || len(runes) <= limit {
		return value
	}
	half := (limit - 1) / 2
	return string(runes[:half]) + "…" + string(runes[len(runes)-(limit-1-half):])
}
