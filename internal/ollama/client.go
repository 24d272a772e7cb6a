// internal/ollama/client.go
// Package: ollama
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ollama/ollama/api"
	"github.com/sirupsen/logrus"

	"github.com/mwiater/gollamabench/internal/config"
	"github.com/mwiater/gollamabench/internal/logging"
)

// DefaultTimeout applies when neither the request nor the config sets one.
const DefaultTimeout = 180 * time.Second

// TimeoutOption is the per-test option key that overrides the call timeout
// (seconds). It is never forwarded to the server.
const TimeoutOption = "timeout"

// GenerateRequest is one /api/generate call.
type GenerateRequest struct {
	Model   string
	Prompt  string
	System  string         // optional system prompt, sent as Ollama's "system" field
	Options map[string]any // overlaid on the client's default options
	Timeout time.Duration  // 0 uses the "timeout" option, then the client default
	Stream  bool
}

// Generation is what a call produced. On failure it holds whatever text
// arrived before the error.
type Generation struct {
	Model             string        `json:"model"`
	Text              string        `json:"text"`
	FirstTokenLatency time.Duration `json:"first_token_latency"` // 0 if no fragment arrived
	TotalLatency      time.Duration `json:"total_latency"`
	Chars             int           `json:"chars"`
	SkippedLines      int           `json:"skipped_lines"` // malformed stream lines ignored

	// Server-reported, from the final done event.
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	LoadDuration    time.Duration `json:"load_duration"`
	EvalDuration    time.Duration `json:"eval_duration"`
	ServerDuration  time.Duration `json:"server_duration"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateEvent struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`

	DoneReason      string `json:"done_reason,omitempty"`
	TotalDuration   int64  `json:"total_duration,omitempty"` // ns
	LoadDuration    int64  `json:"load_duration,omitempty"`  // ns
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	EvalDuration    int64  `json:"eval_duration,omitempty"` // ns
}

// Client talks to one Ollama server.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	api            *api.Client
	defaultTimeout time.Duration
	defaultOptions map[string]any
	log            logrus.FieldLogger
}

// New builds a Client from the ollama section of the config.
func New(cfg config.OllamaConfig, log logrus.FieldLogger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", cfg.URL, err)
	}
	if log == nil {
		log = logging.Discard()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := newHTTPClient()
	return &Client{
		baseURL:        base.String(),
		httpClient:     hc,
		api:            api.NewClient(base, hc),
		defaultTimeout: timeout,
		defaultOptions: maps.Clone(cfg.Options),
		log:            log,
	}, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// Generate performs a single /api/generate call. onToken, if non-nil, is
// invoked on the calling goroutine once per received fragment, in order.
// Failures are *Error values; the partial Generation is returned with them.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, onToken func(string)) (*Generation, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, ErrEmptyModel
	}

	options, optTimeout := SplitOptions(c.defaultOptions, req.Options)
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = optTimeout
	}
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	body, err := json.Marshal(generateRequest{
		Model:   req.Model,
		Prompt:  req.Prompt,
		System:  req.System,
		Stream:  req.Stream,
		Options: options,
	})
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	gen := &Generation{Model: req.Model}
	var (
		text          strings.Builder
		gotFirstChunk bool
	)

	// T0: just before send
	t0 := time.Now()
	finish := func() {
		gen.Text = text.String()
		gen.Chars = utf8.RuneCountInString(gen.Text)
		gen.TotalLatency = time.Since(t0)
	}
	fail := func(kind ErrorKind, err error) (*Generation, error) {
		finish()
		return gen, &Error{Kind: kind, Model: req.Model, Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(classify(ctx, callCtx, err, KindConnection), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		finish()
		return gen, &Error{
			Kind:       KindHTTPStatus,
			Model:      req.Model,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	onFragment := func(ev generateEvent) {
		if ev.Response == "" {
			return
		}
		if !gotFirstChunk {
			gotFirstChunk = true
			gen.FirstTokenLatency = time.Since(t0)
		}
		text.WriteString(ev.Response)
		if onToken != nil {
			onToken(ev.Response)
		}
	}

	if !req.Stream {
		var ev generateEvent
		if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
			return fail(classify(ctx, callCtx, err, KindRead), err)
		}
		if ev.Error != "" {
			return fail(KindRead, errors.New(ev.Error))
		}
		onFragment(ev)
		applyFinal(gen, ev)
		finish()
		if gen.Chars > 0 {
			gen.FirstTokenLatency = gen.TotalLatency
		}
		return gen, nil
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var ev generateEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				// skip malformed lines; continue
				gen.SkippedLines++
				c.log.WithField("model", req.Model).Debugf("skipping malformed stream line: %q", truncate(string(line), 120))
			} else {
				if ev.Error != "" {
					return fail(KindRead, errors.New(ev.Error))
				}
				onFragment(ev)
				if ev.Done {
					applyFinal(gen, ev)
					finish()
					return gen, nil
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				finish()
				return gen, &Error{Kind: KindIncomplete, Model: req.Model, Err: io.ErrUnexpectedEOF}
			}
			return fail(classify(ctx, callCtx, readErr, KindRead), readErr)
		}
	}
}

func applyFinal(gen *Generation, ev generateEvent) {
	gen.DoneReason = ev.DoneReason
	gen.PromptEvalCount = ev.PromptEvalCount
	gen.EvalCount = ev.EvalCount
	gen.LoadDuration = time.Duration(ev.LoadDuration)
	gen.EvalDuration = time.Duration(ev.EvalDuration)
	gen.ServerDuration = time.Duration(ev.TotalDuration)
}

// SplitOptions overlays overrides on defaults and pulls out the timeout
// option (seconds). Neither input map is modified.
func SplitOptions(defaults, overrides map[string]any) (map[string]any, time.Duration) {
	out := make(map[string]any, len(defaults)+len(overrides))
	maps.Copy(out, defaults)
	maps.Copy(out, overrides)

	var timeout time.Duration
	if v, ok := out[TimeoutOption]; ok {
		if secs, ok := toFloat(v); ok && secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}
		delete(out, TimeoutOption)
	}
	if len(out) == 0 {
		return nil, timeout
	}
	return out, timeout
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// newHTTPClient returns a tuned HTTP client with keep-alives. Call timeouts
// are carried by the request context so streamed bodies are not cut short.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{Transport: transport}
}
