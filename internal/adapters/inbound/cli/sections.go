package cli

import (
	"fmt"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newSectionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List validation sections in run order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New().Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderSections(cfg.ValidateSections))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "Path to the configuration file")
	return cmd
}
