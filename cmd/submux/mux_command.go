package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"submux/internal/mediacmd"
)

func newMuxCommand(ctx *commandContext) *cobra.Command {
	var (
		languages []string
		titles    []string
		output    string
		markDef   bool
		markForce bool
		strip     bool
	)

	cmd := &cobra.Command{
		Use:   "mux <video> <subtitle>...",
		Short: "Embed subtitle files as tracks in an MKV container",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]
			subPaths := args[1:]

			subs := make([]mediacmd.SubtitleInput, 0, len(subPaths))
			for i, path := range subPaths {
				sub := mediacmd.SubtitleInput{
					Path:    path,
					Default: markDef && i == 0,
					Forced:  markForce,
				}
				if i < len(languages) {
					sub.Language = languages[i]
				} else if len(languages) > 0 {
					sub.Language = languages[len(languages)-1]
				}
				if i < len(titles) {
					sub.Title = titles[i]
				}
				if sub.Language == "" {
					sub.Language = guessLanguageFromName(path)
				}
				subs = append(subs, sub)
			}

			req := mediacmd.MuxRequest{
				VideoPath:     video,
				Subtitles:     subs,
				Output:        output,
				StripExisting: strip,
			}

			tools, _, err := ctx.resolveTools(cmd)
			if err != nil {
				return err
			}
			if ctx.flags.dryRun {
				target := output
				if target == "" {
					target = video
				}
				printDryRun(cmd, tools.Mkvmerge, mediacmd.MuxArgs(req, target))
				return nil
			}

			result, err := mediacmd.NewMuxer(tools, ctx.ensureLogger()).Mux(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Muxed %d subtitle track(s) into %s\n", result.TracksAdded, result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "Subtitle language per input file (last value repeats)")
	cmd.Flags().StringSliceVarP(&titles, "title", "t", nil, "Track title per input file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: replace the source in place)")
	cmd.Flags().BoolVar(&markDef, "default", false, "Mark the first added track as the default subtitle track")
	cmd.Flags().BoolVar(&markForce, "forced", false, "Mark added tracks as forced")
	cmd.Flags().BoolVarP(&strip, "strip", "S", false, "Drop subtitle tracks already present in the source")

	return cmd
}

// guessLanguageFromName pulls a language hint from names like
// movie.en.srt or movie.eng.forced.srt.
func guessLanguageFromName(path string) string {
	parts := strings.Split(path, ".")
	for i := len(parts) - 2; i >= 1; i-- {
		part := strings.ToLower(parts[i])
		if part == "forced" || part == "sdh" {
			continue
		}
		if len(part) == 2 || len(part) == 3 {
			return part
		}
		break
	}
	return ""
}

func printDryRun(cmd *cobra.Command, tool string, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "dry run: %s %s\n", tool, strings.Join(args, " "))
}
