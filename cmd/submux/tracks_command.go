package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"submux/internal/language"
	"submux/internal/mediacmd"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tracks <video>",
		Short: "List the subtitle tracks in a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, _, err := ctx.resolveTools(cmd)
			if err != nil {
				return err
			}
			if ctx.flags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: %s -v error -print_format json -show_streams -select_streams s %s\n", tools.FFprobe, args[0])
				return nil
			}

			tracks, err := mediacmd.NewProber(tools, ctx.ensureLogger()).SubtitleTracks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(tracks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subtitle tracks found.")
				return nil
			}

			rows := make([][]string, 0, len(tracks))
			for _, track := range tracks {
				rows = append(rows, []string{
					strconv.Itoa(track.Index),
					track.Codec,
					language.DisplayName(track.Language),
					track.Title,
					yesNo(track.Default),
					yesNo(track.Forced),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Track", "Codec", "Language", "Title", "Default", "Forced"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
