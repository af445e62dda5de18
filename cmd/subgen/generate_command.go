package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/generation"
	"subgen/internal/logging"
	"subgen/internal/services"
	"subgen/internal/srtfile"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var apiURL string
	var videoURL string
	var outputDir string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "generate [video-url]",
		Short: "Generate subtitles for a video URL and save them as .srt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if videoURL != "" {
					return errors.New("pass the video URL either as an argument or with --video-url, not both")
				}
				videoURL = args[0]
			}

			sess, err := ctx.newSession(false)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !cmd.Flags().Changed("api-url") {
				apiURL = sess.cfg.API.URL
			}
			if !generation.FieldsPresent(apiURL, videoURL) {
				return errors.New(generation.MessageMissingFields)
			}

			state := sess.coordinator.Generate(cmd.Context(), apiURL, videoURL)
			if state.Status != generation.StatusSuccess {
				return errors.New(state.Message)
			}

			out := cmd.OutOrStdout()
			if toStdout {
				_, err := fmt.Fprint(out, state.Content)
				return err
			}

			writer := sess.writer
			if dir := strings.TrimSpace(outputDir); dir != "" {
				writer = srtfile.NewWriter(dir, srtfile.WithLogger(sess.logger))
			}
			path, err := writer.Save(cmd.Context(), state.Content)
			if err != nil {
				logging.WarnWithContext(sess.logger, "subtitle save failed", "subtitle_save_failed",
					logging.String(logging.FieldCorrelationID, state.RequestID),
					logging.String(logging.FieldFailureKind, services.MarkerLabel(err)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check output.dir permissions or rerun with --stdout"),
				)
				return errors.New(srtfile.FailedMessage(err))
			}
			sess.saved(state.RequestID, path)

			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Subtitles", statusOK, srtfile.SavedMessage(path), colorize))
			fmt.Fprintln(out, renderStatusLine("Cues", statusInfo, fmt.Sprintf("%d", srtfile.CountCues(state.Content)), colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Subtitle API base URL (defaults to api.url)")
	cmd.Flags().StringVar(&videoURL, "video-url", "", "Video URL to transcribe")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the .srt file (defaults to output.dir)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the SRT content instead of saving it")
	return cmd
}
