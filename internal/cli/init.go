package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lsd/internal/logging"
	"github.com/goliatone/go-lsd/internal/ui/prompt"
	"github.com/goliatone/go-lsd/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0o644

// initFlags holds the flags for the init command.
type initFlags struct {
	force bool
	yes   bool
}

func newInitCommand(root *rootOptions) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an lsd.yaml property file",
		Long: `Create a property file with the output directory, the step label width
and the identifier mode. Values are asked for interactively unless --yes is
given, in which case the defaults are written.

Examples:
  lsd-report init                      Ask for each property
  lsd-report init --yes                Write the defaults
  lsd-report init --config ci/lsd.yaml Write to a custom path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, root, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing property file")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Accept the defaults without prompting")

	return cmd
}

func runInit(cmd *cobra.Command, root *rootOptions, flags *initFlags) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	outputPath := root.configPath
	if strings.TrimSpace(outputPath) == "" {
		outputPath = DefaultConfigFile
	}
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	props := config.Default()
	if !flags.yes {
		props, err = askProperties(cmd, root.prompt, props)
		if err != nil {
			return err
		}
	}

	content, err := props.ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created property file", logging.FieldPath, outputPath)
	return nil
}

func askProperties(cmd *cobra.Command, driver prompt.Driver, props *config.Properties) (*config.Properties, error) {
	if driver == nil {
		return nil, errors.New("no prompt driver available; use --yes")
	}
	ctx := cmd.Context()

	dir, err := driver.Input(ctx, prompt.InputConfig{
		Message: "Output directory",
		Default: props.Get(config.KeyDistDir),
		Help:    "Reports and the index page are written here (" + config.KeyDistDir + ").",
		Validator: func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("directory is required")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	width, err := driver.Input(ctx, prompt.InputConfig{
		Message:   "Step label width",
		Default:   props.Get(config.KeyLabelMaxWidth),
		Help:      "Longer step labels are abbreviated (" + config.KeyLabelMaxWidth + ").",
		Validator: validateWidth,
	})
	if err != nil {
		return nil, err
	}
	if err := validateWidth(width); err != nil {
		return nil, err
	}

	deterministic, err := driver.Confirm(ctx, prompt.ConfirmConfig{
		Message: "Use deterministic identifiers?",
		Default: props.Bool(config.KeyDeterministicIDs, false),
		Help:    "Repeatable ids keep rendered reports diffable between runs (" + config.KeyDeterministicIDs + ").",
	})
	if err != nil {
		return nil, err
	}

	return props.
		With(config.KeyDistDir, strings.TrimSpace(dir)).
		With(config.KeyLabelMaxWidth, strings.TrimSpace(width)).
		With(config.KeyDeterministicIDs, strconv.FormatBool(deterministic)), nil
}

func validateWidth(value string) error {
	width, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || width < 1 {
		return fmt.Errorf("width must be a positive number, got %q", value)
	}
	return nil
}
