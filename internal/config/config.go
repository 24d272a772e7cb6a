// internal/config/config.go
// Package: config
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. GOLLAMABENCH_OLLAMA_URL.
const EnvPrefix = "GOLLAMABENCH"

// APIKeyEnv is the environment variable holding the Gemini judge key.
const APIKeyEnv = "GEMINI_API_KEY"

// Config is the fully resolved configuration handed to component constructors.
type Config struct {
	Ollama OllamaConfig `mapstructure:"ollama" json:"ollama"`
	Judge  JudgeConfig  `mapstructure:"judge" json:"judge"`
	Run    RunConfig    `mapstructure:"run" json:"run"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// OllamaConfig describes the local generation endpoint.
type OllamaConfig struct {
	URL     string         `mapstructure:"url" json:"url"`         // e.g. "http://localhost:11434"
	Timeout time.Duration  `mapstructure:"timeout" json:"timeout"` // per generation call
	Options map[string]any `mapstructure:"options" json:"options"` // default sampling options
}

// JudgeConfig describes the remote judge endpoint.
type JudgeConfig struct {
	URL             string        `mapstructure:"url" json:"url"`
	Model           string        `mapstructure:"model" json:"model"`
	APIKey          string        `mapstructure:"api_key" json:"-"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
	Temperature     float64       `mapstructure:"temperature" json:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" json:"max_output_tokens"`
}

// RunConfig holds runner defaults.
type RunConfig struct {
	Delay     time.Duration `mapstructure:"delay" json:"delay"` // pause between cells
	OutputDir string        `mapstructure:"output_dir" json:"output_dir"`
	Language  string        `mapstructure:"language" json:"language"`
	Suite     string        `mapstructure:"suite" json:"suite"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.timeout", 180*time.Second)
	v.SetDefault("ollama.options", map[string]any{
		"temperature": 0.7,
		"top_k":       40,
		"top_p":       0.9,
		"num_predict": -1,
	})

	v.SetDefault("judge.url", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("judge.model", "gemini-1.5-flash")
	v.SetDefault("judge.api_key", "")
	v.SetDefault("judge.timeout", 60*time.Second)
	v.SetDefault("judge.temperature", 0.2)
	v.SetDefault("judge.max_output_tokens", 2000)

	v.SetDefault("run.delay", 2*time.Second)
	v.SetDefault("run.output_dir", "outputs")
	v.SetDefault("run.language", "english")
	v.SetDefault("run.suite", "quick")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// NewViper returns a viper instance with defaults, env overrides and an
// optional config file. An explicit path that cannot be read is an error; when
// path is empty, gollamabench.yaml is searched in the working directory and
// its absence is not.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("judge.api_key", APIKeyEnv, EnvPrefix+"_JUDGE_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
		return v, nil
	}

	v.SetConfigName("gollamabench")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Ollama.URL); err != nil {
		return fmt.Errorf("ollama.url %q is not a valid URL: %w", c.Ollama.URL, err)
	}
	if _, err := url.ParseRequestURI(c.Judge.URL); err != nil {
		return fmt.Errorf("judge.url %q is not a valid URL: %w", c.Judge.URL, err)
	}
	if c.Ollama.Timeout <= 0 {
		return errors.New("ollama.timeout must be positive")
	}
	if c.Judge.Timeout <= 0 {
		return errors.New("judge.timeout must be positive")
	}
	if c.Judge.Model == "" {
		return errors.New("judge.model is required")
	}
	if c.Run.Delay < 0 {
		return errors.New("run.delay must not be negative")
	}
	if c.Run.OutputDir == "" {
		return errors.New("run.output_dir is required")
	}
	return nil
}
