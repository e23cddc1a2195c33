// file: cmd/config.go
// version: 1.0.0
// guid: e426a5b2-e6ad-40c9-9e5a-601576a48098

package cmd

import (
	"fmt"
	"io"

	"github.com/jdfalk/portal-server/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "portal-server.yaml"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout(), config.AppConfig)
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			return runConfigInit(cmd.OutOrStdout(), config.AppConfig, path, force)
		},
	}
)

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(out io.Writer, cfg config.Config) error {
	data, err := config.Dump(cfg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

func runConfigInit(out io.Writer, cfg config.Config, path string, force bool) error {
	if err := config.SaveConfigToFile(cfg, path, force); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
