package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = "# prodcheck configuration\n" +
	"# Every key may be overridden with a PRODCHECK_* environment variable.\n\n"

func newInitCmd() *cobra.Command {
	var (
		url   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a prodcheck.yaml configuration file",
		Long:  "Create a prodcheck.yaml holding the default settings for every section.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			dest := filepath.Join(absPath, config.DefaultFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.DefaultFileName)
				}
			}

			cfg := domain.DefaultConfig()
			if url != "" {
				cfg.APIBaseURL = url
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			content, err := generateConfig(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(dest, content, 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.DefaultFileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Base URL of the service under test")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing prodcheck.yaml")

	return cmd
}

func generateConfig(cfg domain.ValidationConfig) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
