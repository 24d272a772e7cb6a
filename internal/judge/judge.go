// Package judge scores a candidate answer with a remote Gemini model.
//
// Evaluate never returns an error: transport failures, timeouts, HTTP errors
// and unparseable replies all come back as a Verdict with Rating 0 and a
// justification describing what went wrong.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/config"
	"github.com/mwiater/gollamabench/internal/logging"
)

// DefaultTimeout bounds a single evaluation call.
const DefaultTimeout = 60 * time.Second

// ErrNoAPIKey is returned by New when judging cannot be enabled.
var ErrNoAPIKey = errors.New("judge API key is not set")

// Verdict is the judge's score for one answer.
type Verdict struct {
	Model         string `json:"model"`
	Rating        int    `json:"rating"` // 1-5, or 0 when no valid rating was obtained
	Justification string `json:"justification"`
	Error         string `json:"error,omitempty"` // set when the call itself failed
}

// Rated reports whether the verdict carries a usable rating.
func (v Verdict) Rated() bool { return v.Rating > 0 }

// Client calls generateContent for one judge model.
type Client struct {
	endpoint        string
	model           string
	apiKey          string
	lang            catalog.Language
	timeout         time.Duration
	temperature     float64
	maxOutputTokens int
	httpClient      *http.Client
	log             logrus.FieldLogger
}

// New returns a judge bound to cfg.Model and apiKey. The rubric is written in
// lang.
func New(cfg config.JudgeConfig, apiKey string, lang catalog.Language, log logrus.FieldLogger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		return nil, errors.New("judge model is required")
	}
	if log == nil {
		log = logging.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:        fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(cfg.URL, "/"), cfg.Model),
		model:           cfg.Model,
		apiKey:          apiKey,
		lang:            lang,
		timeout:         timeout,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		httpClient:      &http.Client{},
		log:             log.WithField("judge", cfg.Model),
	}, nil
}

// Model returns the judge model name.
func (c *Client) Model() string { return c.model }

type generateContentRequest struct {
	Contents         []requestContent `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type requestContent struct {
	Role  string        `json:"role"`
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Evaluate asks the judge to rate candidate as an answer to originalPrompt.
func (c *Client) Evaluate(ctx context.Context, candidate, originalPrompt string) Verdict {
	body, err := json.Marshal(generateContentRequest{
		Contents: []requestContent{{
			Role:  "user",
			Parts: []requestPart{{Text: Rubric(c.lang, originalPrompt, candidate)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	})
	if err != nil {
		return c.failed(fmt.Errorf("encode request: %w", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return c.failed(fmt.Errorf("timeout (%s)", c.timeout))
		}
		return c.failed(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return c.failed(fmt.Errorf("timeout (%s)", c.timeout))
		}
		return c.failed(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.failed(fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(raw, 300)))
	}

	text, err := ExtractText(raw)
	if err != nil {
		c.log.WithError(err).Warn("judge reply had no usable text")
		return Verdict{Model: c.model, Justification: capitalize(err.Error()) + "."}
	}

	v := ParseReply(text)
	v.Model = c.model
	c.log.WithFields(logrus.Fields{
		"rating":  v.Rating,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("judge verdict")
	return v
}

func (c *Client) failed(err error) Verdict {
	c.log.WithError(err).Warn("judge call failed")
	return Verdict{
		Model:         c.model,
		Justification: "Judge error: " + err.Error(),
		Error:         err.Error(),
	}
}

func snippet(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
