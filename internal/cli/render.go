package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-lsd/internal/logging"
	"github.com/goliatone/go-lsd/internal/ui/pretty"
	"github.com/goliatone/go-lsd/pkg/capture"
	"github.com/goliatone/go-lsd/pkg/config"
	"github.com/goliatone/go-lsd/pkg/cucumber"
	"github.com/goliatone/go-lsd/pkg/renderers/html"
	"github.com/goliatone/go-lsd/pkg/report"
	"github.com/goliatone/go-lsd/pkg/writer"
)

const (
	formatAuto     = "auto"
	formatLSD      = "lsd"
	formatCucumber = "cucumber"
)

// renderFlags holds the flags for the render command.
type renderFlags struct {
	format        string
	output        string
	templates     string
	indexTitle    string
	labelMaxWidth int
	strict        bool
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render report JSON files into HTML",
		Long: `Render one or more input files into HTML reports plus an index page.

Inputs are LSD report JSON (a report object or a list of reports) or cucumber
JSON (a list of features, one report per feature). The format is detected
from the document unless --format is given.

Examples:
  lsd-report render build/lsd/checkout.json
  godog --format=cucumber > run.json && lsd-report render run.json
  lsd-report render --out site/reports --templates ./templates run.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", formatAuto, "input format: auto, lsd, cucumber")
	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "output directory (overrides "+config.KeyDistDir+")")
	cmd.Flags().StringVar(&flags.templates, "templates", "", "directory with template overrides")
	cmd.Flags().StringVar(&flags.indexTitle, "index-title", capture.DefaultIndexTitle, "title of the index page")
	cmd.Flags().IntVar(&flags.labelMaxWidth, "label-max-width", 0, "abbreviate step labels (overrides "+config.KeyLabelMaxWidth+")")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit non-zero when any scenario is not successful")

	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, flags *renderFlags, inputs []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	switch flags.format {
	case formatAuto, formatLSD, formatCucumber:
	default:
		return fmt.Errorf("invalid format %q: must be auto, lsd or cucumber", flags.format)
	}

	props, err := config.Loader{Path: root.configPath, Logger: logger}.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flags.output != "" {
		props = props.With(config.KeyDistDir, flags.output)
	}
	if flags.labelMaxWidth > 0 {
		props = props.With(config.KeyLabelMaxWidth, strconv.Itoa(flags.labelMaxWidth))
	}

	var rendererOptions []html.Option
	if flags.templates != "" {
		rendererOptions = append(rendererOptions, html.WithTemplatesDir(flags.templates))
	}
	renderer, err := html.New(rendererOptions...)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	w, err := writer.FromProperties(props, renderer)
	if err != nil {
		return err
	}
	rec := capture.New(props, capture.WithWriter(w), capture.WithIndexTitle(flags.indexTitle))

	for _, input := range inputs {
		reports, err := readReports(input, flags.format)
		if err != nil {
			return err
		}
		logger.Debug("input loaded", logging.FieldInput, input, "reports", len(reports))
		for _, rep := range reports {
			if rep == nil {
				continue
			}
			rec.Import(rep)
			if _, err := rec.CompleteReport(ctx, rep.Title); err != nil {
				return fmt.Errorf("render %s: %w", input, err)
			}
		}
	}

	indexPath, err := rec.CreateIndex(ctx)
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	entries := rec.Entries()
	styles := pretty.NewStyles(pretty.IsColorEnabled(root.color, cmd.OutOrStdout()))
	out := cmd.OutOrStdout()
	for _, entry := range entries {
		fmt.Fprint(out, styles.FormatEntry(entry))
	}
	fmt.Fprint(out, styles.FormatSummary(entries, indexPath))

	if flags.strict {
		for _, entry := range entries {
			if !entry.Summary.IsSuccessful() {
				return ErrScenariosFailed
			}
		}
	}
	return nil
}

// readReports loads input in the given format, detecting it when format is
// auto.
func readReports(path, format string) ([]*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format == formatAuto {
		format = detectFormat(data)
	}

	switch format {
	case formatCucumber:
		reports, err := cucumber.Import(data, cucumber.Options{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return reports, nil
	default:
		reports, err := decodeLSD(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return reports, nil
	}
}

// detectFormat treats lists of objects carrying "elements" or "uri" as
// cucumber JSON and everything else as LSD report JSON.
func detectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return formatLSD
	}
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil || len(records) == 0 {
		return formatLSD
	}
	if _, ok := records[0]["elements"]; ok {
		return formatCucumber
	}
	if _, ok := records[0]["uri"]; ok {
		return formatCucumber
	}
	return formatLSD
}

func decodeLSD(data []byte) ([]*report.Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}
	if trimmed[0] == '[' {
		var reports []*report.Report
		if err := json.Unmarshal(trimmed, &reports); err != nil {
			return nil, fmt.Errorf("decode reports: %w", err)
		}
		return reports, nil
	}
	var rep report.Report
	if err := json.Unmarshal(trimmed, &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if strings.TrimSpace(rep.Title) == "" {
		return nil, errors.New("decode report: title is required")
	}
	return []*report.Report{&rep}, nil
}
