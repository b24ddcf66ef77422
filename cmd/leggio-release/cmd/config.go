package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kreilos/leggio-release/internal/config"
)

var (
	// initXDG writes the settings file to the per-user location.
	initXDG bool
	// initForce allows overwriting an existing settings file.
	initForce bool

	// errSettingsExist is returned by config init when the target exists.
	errSettingsExist = errors.New("settings file already exists, use --force to overwrite")
	// errUnknownLogLevel is returned for an unparsable --log-level.
	errUnknownLogLevel = errors.New("unknown log level")

	// configCmd groups settings helpers.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage leggio-release settings.",
	}

	// configInitCmd writes the default settings.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget()
			if err != nil {
				return err
			}

			if _, err = os.Stat(path); err == nil && !initForce {
				return fmt.Errorf("%s: %w", path, errSettingsExist)
			}

			if err = config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings written to:", path)

			return nil
		},
	}

	// configShowCmd prints the effective settings after flag overrides.
	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyLogLevel(logLevel); err != nil {
				return err
			}

			cfg, err := loadSettings(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal settings: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
)

// initTarget picks where config init writes.
func initTarget() (string, error) {
	switch {
	case configPath != "":
		return configPath, nil
	case initXDG:
		return config.XDGPath()
	default:
		return config.DefaultConfigFilename, nil
	}
}
