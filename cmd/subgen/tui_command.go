package main

import (
	"github.com/spf13/cobra"

	"subgen/internal/tui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive generate screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.newSession(true)
			if err != nil {
				return err
			}
			defer sess.Close()

			return tui.Run(cmd.Context(), tui.Options{
				Coordinator:   sess.coordinator,
				Writer:        sess.writer,
				DefaultAPIURL: sess.cfg.API.URL,
				OnSaved:       sess.saved,
			})
		},
	}
}
