package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"submux/internal/fileutil"
	"submux/internal/toolchain"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage the provisioned toolset",
		Annotations: map[string]string{
			"skipStartupGate": "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newToolsStatusCommand(ctx))
	cmd.AddCommand(newToolsInstallCommand(ctx))
	cmd.AddCommand(newToolsCleanCommand(ctx))
	return cmd
}

func newToolsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where each required tool resolves from",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, resolver := ctx.toolchainComponents()

			opts := ctx.resolveOptions(false)
			resolution, err := resolver.Resolve(cmd.Context(), ctx.overrides(), opts, nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(resolution.Tools))
			for _, key := range toolchain.RequiredTools() {
				res := resolution.Tools[key]
				present := yesNo(fileutil.FileExists(res.Path))
				if res.Source == toolchain.SourcePath {
					present = "PATH lookup"
				}
				rows = append(rows, []string{key, string(res.Source), res.Path, present})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Tool", "Source", "Path", "Present"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			installed, err := manager.InstalledVersion(resolution.Platform, opts.CacheDirOverride)
			if err != nil {
				return err
			}
			switch installed {
			case "":
				fmt.Fprintln(cmd.OutOrStdout(), "Cached toolset: none")
			case resolution.ToolsetVersion:
				fmt.Fprintf(cmd.OutOrStdout(), "Cached toolset: %s (current)\n", installed)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Cached toolset: %s (manifest wants %s)\n", installed, resolution.ToolsetVersion)
			}
			return nil
		},
	}
}

func newToolsInstallCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download and install the managed toolset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, _ := ctx.toolchainComponents()

			opts := ctx.resolveOptions(true)
			platform := toolchain.RuntimeID(ctx.ensureLogger())
			if !toolchain.HostSupported() {
				return fmt.Errorf("tool provisioning is not supported on this host platform")
			}

			result, err := manager.EnsureCached(cmd.Context(), platform, opts, force, ctx.progressReporter())
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("the manifest has no toolset for platform %s", platform)
			}
			if result.DryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: would provision toolset %s into %s\n", result.ToolsetVersion, result.BaseDir)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Toolset %s installed in %s\n", result.ToolsetVersion, result.BaseDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-provision even when the cached toolset is valid")
	return cmd
}

func newToolsCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Delete the cached toolset for this platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, manager, _ := ctx.toolchainComponents()

			opts := ctx.resolveOptions(false)
			platform := toolchain.RuntimeID(ctx.ensureLogger())
			if ctx.flags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry run: would remove the cached toolset for %s\n", platform)
				return nil
			}
			if err := manager.Clean(platform, opts.CacheDirOverride); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cached toolset removed.")
			return nil
		},
	}
}
