package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"submux/internal/mediacmd"
)

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var (
		subtitle string
		track    int
		output   string
		crf      int
		preset   string
	)

	cmd := &cobra.Command{
		Use:   "burn <video>",
		Short: "Re-encode a video with subtitles rendered into the frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]

			req := mediacmd.BurnRequest{
				VideoPath:    video,
				SubtitlePath: subtitle,
				TrackIndex:   track,
				Output:       output,
				CRF:          crf,
				Preset:       preset,
			}

			tools, _, err := ctx.resolveTools(cmd)
			if err != nil {
				return err
			}
			if ctx.flags.dryRun {
				printDryRun(cmd, tools.FFmpeg, mediacmd.BurnArgs(req))
				return nil
			}

			if err := mediacmd.NewBurner(tools, ctx.ensureLogger()).Burn(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Burned subtitles into %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subtitle, "subtitle", "s", "", "External subtitle file to burn (default: embedded track)")
	cmd.Flags().IntVarP(&track, "track", "T", 0, "Embedded subtitle stream index to burn")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output video path (required)")
	cmd.Flags().IntVar(&crf, "crf", 0, "x264 quality target (0 uses the encoder default)")
	cmd.Flags().StringVar(&preset, "preset", "", "x264 speed preset")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
