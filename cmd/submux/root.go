package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "submux",
		Short:         "Subtitle muxing, extraction, burn-in, and conversion",
		Long:          "submux orchestrates ffmpeg and MKVToolNix to mux, extract, burn, and convert subtitles, provisioning the tools on demand.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			if shouldSkipStartupGate(cmd) {
				return nil
			}
			return ctx.runStartupGate(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.manifest, "manifest", "", "Toolset manifest override path")
	pf.StringVar(&flags.toolsDir, "tools-dir", "", "Toolchain cache directory override")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging and per-tool resolution output")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Print the external commands without executing them")
	pf.BoolVar(&flags.noPrompt, "no-prompt", false, "Disable interactive startup prompts")
	pf.BoolVar(&flags.preferSystem, "prefer-system", false, "Resolve tools from PATH only, skipping bundled and cached toolsets")

	rootCmd.AddCommand(newMuxCommand(ctx))
	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newBurnCommand(ctx))
	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newTracksCommand(ctx))
	rootCmd.AddCommand(newToolsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// shouldSkipConfig reports whether the command opts out of config loading
// via the skipConfigLoad annotation.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// shouldSkipStartupGate reports whether the command opts out of the
// interactive startup gate. Help-only invocations (bare root, the help
// command) never run it; tool management commands manage the toolset
// explicitly and never want the gate in front of them.
func shouldSkipStartupGate(cmd *cobra.Command) bool {
	if !cmd.HasParent() || cmd.Name() == "help" {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipStartupGate"] == "true" {
			return true
		}
	}
	return false
}
