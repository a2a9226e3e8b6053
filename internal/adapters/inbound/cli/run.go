package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/dbprobe"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/envfile"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/history"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/metrics"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/report"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/scanner"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/tui"
	"github.com/openkraft/prodcheck/internal/application"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/logging"
	"github.com/spf13/cobra"
)

type runOptions struct {
	configPath string
	reportPath string
	url        string
	sections   []string
	jsonOutput bool
	verbose    bool
	history    bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the production readiness checklist",
		Long: "Run every enabled section against the configured service and project, write " +
			"JSON and HTML reports and exit non-zero unless the service is production ready.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.SetVerbose(opts.verbose)

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			git := gitinfo.New()
			svc := application.NewValidationService(
				newRegistry(),
				git,
				report.New(),
				metrics.New(cfg.MetricsTextfile),
			)

			rep := svc.Run(cmd.Context(), cfg)
			paths, err := svc.Save(rep, cfg.ReportPath)
			if err != nil {
				return err
			}

			hist := history.New()
			if err := hist.Save(cfg.ReportPath, domain.EntryFor(rep)); err != nil {
				logging.For("run").WithError(err).Warn("could not update run history")
			}

			if opts.jsonOutput {
				if err := renderJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(rep, opts.verbose))
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPaths(paths))
				if opts.history {
					entries, err := hist.Load(cfg.ReportPath)
					if err != nil {
						return fmt.Errorf("loading history: %w", err)
					}
					fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
				}
			}

			if !rep.Summary.ProductionReady {
				return fmt.Errorf("not production ready: %d of %d tests failed",
					rep.Summary.TestsFailed, rep.Summary.TotalTests)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultFileName, "Path to the configuration file")
	cmd.Flags().StringVar(&opts.reportPath, "report-path", "", "Directory for the JSON and HTML reports")
	cmd.Flags().StringVar(&opts.url, "url", "", "Base URL of the service under test")
	cmd.Flags().StringSliceVar(&opts.sections, "sections", nil, "Comma-separated sections to run")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&opts.history, "history", false, "Show earlier runs recorded in the report directory")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "List passing tests and log at debug level")

	return cmd
}

// loadConfig reads the config file and applies the command line overrides.
func loadConfig(cmd *cobra.Command, opts runOptions) (domain.ValidationConfig, error) {
	cfg, err := config.New().Load(opts.configPath)
	if err != nil {
		return domain.ValidationConfig{}, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.APIBaseURL = opts.url
	}
	if flags.Changed("sections") {
		cfg.ValidateSections = opts.sections
	}
	if flags.Changed("report-path") {
		cfg.ReportPath = opts.reportPath
	}
	if err := cfg.Validate(); err != nil {
		return domain.ValidationConfig{}, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func newRegistry() map[string]application.Checker {
	return application.NewRegistry(application.Dependencies{
		HTTPClient: &http.Client{},
		Files:      scanner.New(),
		Env:        envfile.New(),
		Database:   dbprobe.New(),
		Git:        gitinfo.New(),
	})
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
