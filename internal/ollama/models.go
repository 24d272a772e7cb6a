// internal/ollama/models.go
// Package: ollama
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"
)

// ModelDetails mirrors the details object of /api/tags.
type ModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
	Format            string `json:"format"`
}

// ModelInfo is one entry of /api/tags.
type ModelInfo struct {
	Name       string       `json:"name"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	ModifiedAt time.Time    `json:"modified_at"`
	Details    ModelDetails `json:"details"`
}

// ListModels returns the models installed on the server, in server order.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models on %s: %w", c.baseURL, err)
	}
	out := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		out = append(out, ModelInfo{
			Name:       m.Name,
			Size:       m.Size,
			Digest:     m.Digest,
			ModifiedAt: m.ModifiedAt,
			Details: ModelDetails{
				Family:            m.Details.Family,
				ParameterSize:     m.Details.ParameterSize,
				QuantizationLevel: m.Details.QuantizationLevel,
				Format:            m.Details.Format,
			},
		})
	}
	return out, nil
}

// ModelNames is ListModels reduced to names.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	infos, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, m := range infos {
		names[i] = m.Name
	}
	return names, nil
}

// RunningModels returns the names reported by /api/ps.
func (c *Client) RunningModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.ListRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list running models on %s: %w", c.baseURL, err)
	}
	names := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		names[i] = m.Name
	}
	return names, nil
}

// Unload asks the server to evict model from memory (keep_alive 0), so the
// next benchmark starts cold.
func (c *Client) Unload(ctx context.Context, model string) error {
	stream := false
	req := &api.GenerateRequest{
		Model:     model,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: 0},
	}
	if err := c.api.Generate(ctx, req, func(api.GenerateResponse) error { return nil }); err != nil {
		return fmt.Errorf("could not unload %s on %s: %w", model, c.baseURL, err)
	}
	return nil
}
