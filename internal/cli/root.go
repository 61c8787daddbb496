// Package cli provides the Cobra command structure for lsd-report.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lsd/internal/logging"
	"github.com/goliatone/go-lsd/internal/ui/prompt"
)

// DefaultConfigFile is the property file read when --config is not given.
const DefaultConfigFile = "lsd.yaml"

// ErrScenariosFailed signals that rendering worked but at least one report
// has failed or unfinished scenarios and --strict was set.
var ErrScenariosFailed = errors.New("reports contain unsuccessful scenarios")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Option customises the command tree, mostly for tests.
type Option func(*rootOptions)

// WithPromptDriver replaces the terminal prompts used by init.
func WithPromptDriver(driver prompt.Driver) Option {
	return func(opts *rootOptions) {
		if driver != nil {
			opts.prompt = driver
		}
	}
}

type rootOptions struct {
	debug      bool
	configPath string
	color      string
	prompt     prompt.Driver
}

// NewRootCommand creates the root lsd-report command with all subcommands.
func NewRootCommand(info BuildInfo, options ...Option) *cobra.Command {
	opts := &rootOptions{prompt: prompt.NewSurveyDriver()}
	for _, option := range options {
		if option != nil {
			option(opts)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "lsd-report",
		Short: "Render living sequence diagram reports as HTML",
		Long: `lsd-report turns captured test runs into standalone HTML reports.

It reads LSD report JSON or cucumber JSON (as written by godog's cucumber
formatter), writes one page per report into the output directory together
with an index page, and prints a summary of the run.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", DefaultConfigFile, "path to the property file")
	rootCmd.PersistentFlags().StringVar(&opts.color, "color", "auto", "colorize output: auto, always, never")

	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}
