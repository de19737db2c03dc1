package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"submux/internal/mediacmd"
)

// extensions by probe codec name for extracted track files.
var extensionByCodec = map[string]string{
	"subrip":            ".srt",
	"srt":               ".srt",
	"ass":               ".ass",
	"ssa":               ".ssa",
	"webvtt":            ".vtt",
	"hdmv_pgs_subtitle": ".sup",
	"dvd_subtitle":      ".sub",
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		trackIDs  []int
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Extract subtitle tracks to sidecar files",
		Long:  "Extract subtitle tracks with mkvextract. Without --track, every subtitle stream found by ffprobe is extracted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			video := args[0]
			tools, _, err := ctx.resolveTools(cmd)
			if err != nil {
				return err
			}

			dir := outputDir
			if dir == "" {
				dir = filepath.Dir(video)
			}
			base := strings.TrimSuffix(filepath.Base(video), filepath.Ext(video))

			if ctx.flags.dryRun && len(trackIDs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: %s -v error -print_format json -show_streams -select_streams s %s\n", tools.FFprobe, video)
				fmt.Fprintln(cmd.OutOrStdout(), "dry run: would extract every discovered subtitle track with mkvextract")
				return nil
			}

			var outputs []mediacmd.TrackOutput
			if len(trackIDs) > 0 {
				for _, id := range trackIDs {
					outputs = append(outputs, mediacmd.TrackOutput{
						TrackID: id,
						Path:    filepath.Join(dir, fmt.Sprintf("%s.track%d.srt", base, id)),
					})
				}
			} else {
				tracks, err := mediacmd.NewProber(tools, ctx.ensureLogger()).SubtitleTracks(cmd.Context(), video)
				if err != nil {
					return err
				}
				if len(tracks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No subtitle tracks found.")
					return nil
				}
				for _, track := range tracks {
					ext := extensionByCodec[track.Codec]
					if ext == "" {
						ext = ".srt"
					}
					name := fmt.Sprintf("%s.%s%s", base, track.Language, ext)
					if track.Forced {
						name = fmt.Sprintf("%s.%s.forced%s", base, track.Language, ext)
					}
					outputs = append(outputs, mediacmd.TrackOutput{
						TrackID: track.Index,
						Path:    filepath.Join(dir, name),
					})
				}
			}

			req := mediacmd.ExtractRequest{VideoPath: video, Tracks: outputs}
			if ctx.flags.dryRun {
				printDryRun(cmd, tools.Mkvextract, mediacmd.ExtractArgs(req))
				return nil
			}

			if err := mediacmd.NewExtractor(tools, ctx.ensureLogger()).Extract(cmd.Context(), req); err != nil {
				return err
			}
			for _, out := range outputs {
				fmt.Fprintf(cmd.OutOrStdout(), "Extracted track %d -> %s\n", out.TrackID, out.Path)
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&trackIDs, "track", "T", nil, "Track ID to extract (repeatable; default: all subtitle tracks)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory for extracted files (default: beside the source)")

	return cmd
}
