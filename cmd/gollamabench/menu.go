// cmd/gollamabench/menu.go
package gollamabench

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mwiater/gollamabench/internal/harness"
	"github.com/mwiater/gollamabench/internal/judge"
	"github.com/mwiater/gollamabench/internal/menu"
)

// menuCmd implements 'menu', the interactive numbered console menu.
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Choose and run benchmarks from an interactive menu",
	Long: `The 'menu' command asks for a language, then offers the comprehensive suite,
the quick suite or a custom question sent to all installed models. Benchmarks
run one after another until you quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.Flags().StringSliceVar(&runModels, "models", nil, "comma-separated models (default: all installed)")
	menuCmd.Flags().BoolVar(&noJudge, "no-judge", false, "skip judging")
}

func runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, log := app.cfg, app.log

	client, err := newOllama(cfg.Ollama, log)
	if err != nil {
		return err
	}
	models, err := resolveModels(ctx, client, runModels)
	if err != nil {
		return err
	}

	m := menu.New(in, out, "")
	fmt.Fprintln(out, "Welcome to gollamabench")
	fmt.Fprintf(out, "Models: %d available\n\n", len(models))

	var apiKey string
	if !noJudge {
		apiKey = judge.ResolveAPIKey(cfg.Judge.APIKey, m.Reader(), out)
	}

	for {
		sel, err := m.Select()
		if errors.Is(err, menu.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		runner := newRunner(cfg, client, apiKey, sel.Language, log)
		req := harness.RunRequest{
			Label:    sel.Label,
			Models:   models,
			Tests:    sel.Tests,
			UseJudge: runner.HasJudge(),
		}
		if _, err := runConsole(ctx, runner, req, out, false); err != nil {
			log.WithError(err).WithField("suite", sel.Label).Error("benchmark failed")
			fmt.Fprintf(out, "Benchmark failed: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
