package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"submux/internal/mediacmd"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var codec string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a subtitle file between text formats",
		Long:  "Convert subtitle files between SRT, ASS/SSA, and WebVTT. The output codec is derived from the output extension unless --codec is given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := mediacmd.ConvertRequest{
				InputPath:  args[0],
				OutputPath: args[1],
				Codec:      codec,
			}

			tools, _, err := ctx.resolveTools(cmd)
			if err != nil {
				return err
			}
			if ctx.flags.dryRun {
				argv, err := mediacmd.ConvertArgs(req)
				if err != nil {
					return err
				}
				printDryRun(cmd, tools.FFmpeg, argv)
				return nil
			}

			if err := mediacmd.NewConverter(tools, ctx.ensureLogger()).Convert(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", req.InputPath, req.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&codec, "codec", "", "Output subtitle codec (srt, ass, webvtt)")

	return cmd
}
