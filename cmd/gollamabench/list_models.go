// cmd/gollamabench/list_models.go
package gollamabench

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	hostStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	modelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	loadedModelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

// listModelsCmd implements 'list models', which shows every model installed
// on the Ollama server and marks the ones currently loaded.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models installed on the Ollama server",
	Long:  `The 'models' subcommand lists the models installed on the configured Ollama server, with size and quantization, and marks the models currently loaded in memory. These are the models 'run' benchmarks when --models is not given.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newOllama(app.cfg.Ollama, app.log)
		if err != nil {
			return err
		}
		return listModels(cmd.Context(), cmd.OutOrStdout(), client, app.cfg.Ollama.URL)
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}

func listModels(ctx context.Context, out io.Writer, client ollamaClient, host string) error {
	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}
	running, err := client.RunningModels(ctx)
	if err != nil {
		app.log.WithError(err).Warn("could not read loaded models")
	}

	fmt.Fprintln(out, hostStyle.Render(host+":"))
	if len(models) == 0 {
		fmt.Fprintln(out, "  (no models installed)")
	}
	for _, m := range models {
		line := fmt.Sprintf("%s (%s, %s, %.1f GB)", m.Name, m.Details.ParameterSize, m.Details.QuantizationLevel, float64(m.Size)/1e9)
		if slices.Contains(running, m.Name) {
			fmt.Fprintln(out, "  >>> "+loadedModelStyle.Render(line+" [loaded]"))
			continue
		}
		fmt.Fprintln(out, "  >>> "+modelStyle.Render(line))
	}
	return nil
}
