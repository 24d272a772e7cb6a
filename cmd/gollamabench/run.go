// cmd/gollamabench/run.go
package gollamabench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/config"
	"github.com/mwiater/gollamabench/internal/harness"
	"github.com/mwiater/gollamabench/internal/judge"
)

var (
	runPrompt    string
	runTestsFile string
	runSystem    string
	runModels    []string
	noJudge      bool
	tuiMode      bool
	quietMode    bool
)

// runCmd implements 'run', one benchmark over the selected suite and models.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark suite against local models",
	Long: `The 'run' command sends every test of a suite to every model, in that order,
records latencies and answers, optionally asks the judge for a 1-5 rating, and
writes a transcript with a summary plus JSON and CSV exports to the output
directory. Models default to everything installed on the Ollama server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("suite", "", "built-in suite: comprehensive or quick")
	f.String("lang", "", "suite and rubric language: english or polish")
	f.Duration("delay", 0, "pause between cells")
	f.String("output-dir", "", "directory for the transcript and exports")
	f.StringVar(&runPrompt, "prompt", "", "ask every model this single question instead of a suite")
	f.StringVar(&runTestsFile, "tests-file", "", "load tests from a YAML or JSON file")
	f.StringVar(&runSystem, "system", "", "system prompt sent with every generation")
	f.StringSliceVar(&runModels, "models", nil, "comma-separated models (default: all installed)")
	f.BoolVar(&noJudge, "no-judge", false, "skip judging even when an API key is available")
	f.BoolVar(&tuiMode, "tui", false, "show the run in a full-screen terminal view")
	f.BoolVar(&quietMode, "quiet", false, "show a progress bar instead of streaming answers")
	runCmd.MarkFlagsMutuallyExclusive("prompt", "tests-file")
	runCmd.MarkFlagsMutuallyExclusive("tui", "quiet")

	flagBindings[runCmd] = map[string]string{
		"suite":      "run.suite",
		"lang":       "run.language",
		"delay":      "run.delay",
		"output-dir": "run.output_dir",
	}
}

func runBenchmark(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, log := app.cfg, app.log

	lang, err := catalog.ParseLanguage(cfg.Run.Language)
	if err != nil {
		return err
	}
	tests, label, err := resolveTests(lang, cfg.Run.Suite, runPrompt, runTestsFile)
	if err != nil {
		return err
	}

	client, err := newOllama(cfg.Ollama, log)
	if err != nil {
		return err
	}
	models, err := resolveModels(ctx, client, runModels)
	if err != nil {
		return err
	}

	var apiKey string
	if !noJudge {
		apiKey = judge.ResolveAPIKey(cfg.Judge.APIKey, in, out)
	}
	runner := newRunner(cfg, client, apiKey, lang, log)
	req := harness.RunRequest{
		Label:        label,
		Models:       models,
		Tests:        tests,
		UseJudge:     runner.HasJudge(),
		SystemPrompt: runSystem,
	}

	if tuiMode {
		rep, err := runTUI(ctx, runner, req)
		printOutcome(out, rep)
		return err
	}
	_, err = runConsole(ctx, runner, req, out, quietMode)
	return err
}

// resolveTests picks the tests in priority order: a tests file, a custom
// prompt, then the built-in suite.
func resolveTests(lang catalog.Language, suite, prompt, testsFile string) ([]catalog.Test, string, error) {
	switch {
	case testsFile != "":
		tests, err := catalog.LoadFile(testsFile)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(testsFile), filepath.Ext(testsFile))
		return tests, name, nil
	case strings.TrimSpace(prompt) != "":
		tests, err := catalog.CustomSuite(prompt)
		if err != nil {
			return nil, "", err
		}
		return tests, string(lang) + "_custom", nil
	}
	kind, err := catalog.ParseKind(suite)
	if err != nil {
		return nil, "", err
	}
	tests, err := catalog.Suite(lang, kind)
	if err != nil {
		return nil, "", err
	}
	return tests, string(lang) + "_" + string(kind), nil
}

// resolveModels uses the requested models, or every installed model when
// none were named.
func resolveModels(ctx context.Context, client ollamaClient, requested []string) ([]string, error) {
	var models []string
	for _, m := range requested {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) > 0 {
		return models, nil
	}
	names, err := client.ModelNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no models are installed", harness.ErrNoModels)
	}
	return names, nil
}

// newRunner wires the judge in when a key is available. A judge that cannot
// be built is logged and the runner goes without.
func newRunner(cfg config.Config, gen harness.Generator, apiKey string, lang catalog.Language, log *logrus.Logger) *harness.Runner {
	var j harness.Judge
	if apiKey != "" {
		built, err := newJudge(cfg.Judge, apiKey, lang, log)
		switch {
		case errors.Is(err, judge.ErrNoAPIKey):
		case err != nil:
			log.WithError(err).Warn("judge unavailable; running without it")
		default:
			j = built
		}
	}
	return harness.NewRunner(gen, j, harness.Options{
		Delay:     cfg.Run.Delay,
		OutputDir: cfg.Run.OutputDir,
		Log:       log,
	})
}
