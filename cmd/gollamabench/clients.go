// cmd/gollamabench/clients.go
package gollamabench

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/config"
	"github.com/mwiater/gollamabench/internal/harness"
	"github.com/mwiater/gollamabench/internal/judge"
	"github.com/mwiater/gollamabench/internal/ollama"
	"github.com/mwiater/gollamabench/internal/tui"
)

// ollamaClient is the slice of *ollama.Client the commands use.
type ollamaClient interface {
	harness.Generator
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	ModelNames(ctx context.Context) ([]string, error)
	RunningModels(ctx context.Context) ([]string, error)
	Unload(ctx context.Context, model string) error
}

// Seams replaced in tests.
var (
	newOllama = func(cfg config.OllamaConfig, log logrus.FieldLogger) (ollamaClient, error) {
		c, err := ollama.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// newJudge must return a literal nil Judge when it fails.
	newJudge = func(cfg config.JudgeConfig, apiKey string, lang catalog.Language, log logrus.FieldLogger) (harness.Judge, error) {
		c, err := judge.New(cfg, apiKey, lang, log)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	runTUI = tui.Run
)
