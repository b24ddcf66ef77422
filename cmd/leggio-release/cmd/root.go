package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/logger"
	"github.com/kreilos/leggio-release/internal/service/common"
	"github.com/kreilos/leggio-release/internal/service/pipeline"
	"github.com/kreilos/leggio-release/internal/version"
)

var (
	// configPath is an explicit settings file; empty means auto-discovery.
	configPath string
	// logLevel is the minimum level written to stderr.
	logLevel string
	// projectDir overrides project_dir from the settings file.
	projectDir string
	// buildDir overrides build_dir from the settings file.
	buildDir string
	// releaseVersion pins the version and bypasses project files.
	releaseVersion string
	// dryRun logs the copy command instead of running it.
	dryRun bool
	// noProgress disables the upload spinner.
	noProgress bool

	// rootCmd runs the whole pipeline when called without a subcommand.
	rootCmd = &cobra.Command{
		Use:   "leggio-release",
		Short: "Version and deploy the Leggio release APK.",
		Long: `Post-build hook for the Leggio Android release.

After "flutter build apk --release" (Gradle assembleRelease) produced
build/app/outputs/flutter-apk/app-release.apk, this tool copies it to
leggio-<version>.apk, uploads that file with scp to the download host and
prints its public URL.

The version comes from --version, the settings file, android/local.properties,
pubspec.yaml and optionally the git tag on HEAD, in that order. When none is
set the artifact is named leggio-unknown.apk.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, pipeline.StepAll)
		},
	}

	// releaseCmd is an explicit alias of the root behaviour.
	releaseCmd = &cobra.Command{
		Use:   "release",
		Short: "Rename the artifact, then deploy it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, pipeline.StepAll)
		},
	}

	// renameCmd runs the version-qualify step only.
	renameCmd = &cobra.Command{
		Use:   "rename",
		Short: "Copy app-release.apk to leggio-<version>.apk.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, pipeline.StepRename)
		},
	}

	// deployCmd runs the deploy step only.
	deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Upload leggio-<version>.apk to the download host.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, pipeline.StepDeploy)
		},
	}
)

// Execute runs the leggio-release CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "",
		"path to settings file (default ./"+config.DefaultConfigFilename+", then $XDG_CONFIG_HOME/"+config.XDGConfigFilename+")")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&projectDir, "project-dir", "", "Flutter project root (overrides project_dir)")
	flags.StringVar(&buildDir, "build-dir", "", "Gradle build output directory (overrides build_dir)")
	flags.StringVar(&releaseVersion, "version", "", "release version (overrides every other version source)")
	flags.BoolVar(&dryRun, "dry-run", false, "log the copy command instead of running it")
	flags.BoolVar(&noProgress, "no-progress", false, "disable the upload spinner")

	rootCmd.AddCommand(releaseCmd, renameCmd, deployCmd, configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	version.AttachCobraVersionCommand(rootCmd)

	configInitCmd.Flags().BoolVar(&initXDG, "xdg", false, "write to the per-user XDG location")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

// runPipeline loads settings, applies flag overrides and runs step.
func runPipeline(cmd *cobra.Command, step pipeline.Step) error {
	if err := applyLogLevel(logLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := loadSettings(ctx, cmd.Flags())
	if err != nil {
		return err
	}

	options := &pipeline.Options{
		Config:   cfg,
		Stdout:   cmd.OutOrStdout(),
		Runner:   common.NewExecRunner(os.Stderr),
		Progress: common.NewProgress(os.Stderr, !noProgress),
		DryRun:   dryRun,
		Only:     step,
	}

	_, err = pipeline.Run(ctx, options)

	return err
}

// loadSettings locates the settings file and applies changed flags on top.
func loadSettings(ctx context.Context, flags *pflag.FlagSet) (*config.Config, error) {
	cfg, path, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	if path != "" {
		logger.DebugKV(ctx, "Loaded settings", "path", path)
	}

	if err = applyOverrides(cfg, flags); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyOverrides copies flags the user set into cfg and revalidates it.
func applyOverrides(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed("project-dir") {
		cfg.ProjectDir = projectDir
	}

	if flags.Changed("build-dir") {
		cfg.BuildDir = buildDir
	}

	if flags.Changed("version") {
		cfg.Version = releaseVersion
	}

	return config.Validate(cfg)
}

// applyLogLevel parses and sets the global log level.
func applyLogLevel(s string) error {
	level, ok := logger.ParseLogLevel(s)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, s)
	}

	logger.SetLevel(level)

	return nil
}
