// cmd/gollamabench/unload_models.go
package gollamabench

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// unloadModelsCmd implements 'unload models', which evicts every loaded model
// so the next benchmark measures cold starts.
var unloadModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Unload all loaded models",
	Long:  `The 'models' subcommand unloads every model currently loaded on the Ollama server, so the first-token latency of the next run includes model load time.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newOllama(app.cfg.Ollama, app.log)
		if err != nil {
			return err
		}
		return unloadModels(cmd.Context(), cmd.OutOrStdout(), client)
	},
}

func init() {
	unloadCmd.AddCommand(unloadModelsCmd)
}

func unloadModels(ctx context.Context, out io.Writer, client ollamaClient) error {
	running, err := client.RunningModels(ctx)
	if err != nil {
		return err
	}
	if len(running) == 0 {
		fmt.Fprintln(out, "No models are loaded.")
		return nil
	}
	var failed int
	for _, m := range running {
		fmt.Fprintf(out, "  -> Unloading model: %s\n", m)
		if err := client.Unload(ctx, m); err != nil {
			failed++
			app.log.WithError(err).WithField("model", m).Error("unload failed")
			fmt.Fprintf(out, "Error unloading model %s: %v\n", m, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d models could not be unloaded", failed, len(running))
	}
	fmt.Fprintln(out, "All model unload commands have finished.")
	return nil
}
