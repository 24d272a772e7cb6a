// cmd/gollamabench/root.go
package gollamabench

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mwiater/gollamabench/internal/config"
	"github.com/mwiater/gollamabench/internal/logging"
)

var cfgFile string

// app is what PersistentPreRunE resolves for every subcommand.
var app struct {
	v      *viper.Viper
	cfg    config.Config
	log    *logrus.Logger
	closer io.Closer
}

// rootCmd is the base command; every subcommand hangs off it.
var rootCmd = &cobra.Command{
	Use:   "gollamabench",
	Short: "Benchmark local Ollama models, optionally judged by Gemini",
	Long: `gollamabench sends prompt suites to one or more models served by Ollama,
measures first-token and total latency, optionally asks a Gemini judge to rate
each answer from 1 to 5, and writes a transcript plus JSON and CSV exports.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.closer != nil {
			app.closer.Close()
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./gollamabench.yaml if present)")
	pf.String("ollama-url", "", "Ollama base URL")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "write logs to this file instead of stderr")
}

// persistentBindings maps persistent flags to config keys.
var persistentBindings = map[string]string{
	"ollama-url": "ollama.url",
	"log-level":  "log.level",
	"log-file":   "log.file",
}

// setup loads configuration and builds the logger for the command about to
// run. Subcommands add their own bindings through flagBindings.
func setup(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	bindings := map[string]string{}
	for flag, key := range persistentBindings {
		bindings[flag] = key
	}
	for flag, key := range flagBindings[cmd] {
		bindings[flag] = key
	}
	if err := bindFlags(v, cmd.Flags(), bindings); err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if cmd.Name() == "run" && tuiMode && cfg.Log.File == "" {
		// the alt screen owns the terminal
		cfg.Log.File = "debug.log"
	}
	log, closer, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}

	app.v, app.cfg, app.log, app.closer = v, cfg, log, closer
	log.WithFields(logrus.Fields{
		"command": cmd.CommandPath(),
		"config":  v.ConfigFileUsed(),
	}).Debug("configuration loaded")
	return nil
}

// flagBindings holds per-command flag to config key bindings.
var flagBindings = map[*cobra.Command]map[string]string{}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, bindings map[string]string) error {
	for name, key := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("could not bind --%s: %w", name, err)
		}
	}
	return nil
}
