// cmd/gollamabench/config.go
package gollamabench

import (
	"fmt"
	"io"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/gollamabench/internal/config"
)

// configCmd represents the 'config' command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for inspecting configuration",
	Long:  `The 'config' command groups subcommands that inspect the resolved configuration. It performs no action on its own.`,
}

// configShowCmd implements 'config show'.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long:  `The 'show' subcommand prints the configuration after defaults, the config file, GOLLAMABENCH_* environment variables and flags are applied. The judge API key is never printed; only whether one is set.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout(), app.cfg, app.v.ConfigFileUsed())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func showConfig(out io.Writer, cfg config.Config, file string) error {
	if file == "" {
		file = "(none)"
	}
	fmt.Fprintf(out, "Config file: %s\n", file)
	key := "not set"
	if cfg.Judge.APIKey != "" {
		key = "set"
	}
	fmt.Fprintf(out, "Judge API key: %s\n", key)

	cfg.Judge.APIKey = ""
	_, err := pp.Fprintln(out, cfg)
	return err
}
