// cmd/gollamabench/list_options.go
package gollamabench

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/gollamabench/internal/catalog"
	"github.com/mwiater/gollamabench/internal/ollama"
)

// listOptionsCmd implements 'list options', which prints the sampling options
// each test is sent with once its overrides are laid over the defaults.
var listOptionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the sampling options sent with each test",
	Long:  `The 'options' subcommand prints the configured default Ollama options, then for every test of the configured language (or of --tests-file) its overrides and the merged options the generation request carries.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listOptions(cmd.OutOrStdout(), app.cfg.Ollama.Options, app.cfg.Run.Language, listOptionsFile)
	},
}

var listOptionsFile string

func init() {
	listCmd.AddCommand(listOptionsCmd)
	listOptionsCmd.Flags().StringVar(&listOptionsFile, "tests-file", "", "show the tests of this YAML or JSON file instead")
}

func listOptions(out io.Writer, defaults map[string]any, language, file string) error {
	fmt.Fprintln(out, hostStyle.Render("Defaults:"))
	fmt.Fprintln(out, "  "+modelStyle.Render(formatOptions(defaults)))
	fmt.Fprintln(out)

	if file != "" {
		tests, err := catalog.LoadFile(file)
		if err != nil {
			return err
		}
		printOptions(out, file, defaults, tests)
		return nil
	}

	lang, err := catalog.ParseLanguage(language)
	if err != nil {
		return err
	}
	for _, kind := range catalog.Kinds() {
		tests, err := catalog.Suite(lang, kind)
		if err != nil {
			return err
		}
		printOptions(out, fmt.Sprintf("%s / %s", lang.DisplayName(), kind), defaults, tests)
	}
	return nil
}

func printOptions(out io.Writer, title string, defaults map[string]any, tests []catalog.Test) {
	fmt.Fprintln(out, hostStyle.Render(title+":"))
	for _, t := range tests {
		merged, timeout := ollama.SplitOptions(defaults, t.Options)
		fmt.Fprintf(out, "  >>> %s\n", t.Name)
		fmt.Fprintf(out, "      overrides: %s\n", formatOptions(t.Options))
		line := "      sent:      " + modelStyle.Render(formatOptions(merged))
		if timeout > 0 {
			line += loadedModelStyle.Render(fmt.Sprintf(" [timeout %s]", timeout))
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}

// formatOptions renders opts as sorted key=value pairs.
func formatOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return "(none)"
	}
	pairs := make([]string, 0, len(opts))
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, opts[k]))
	}
	return strings.Join(pairs, ", ")
}
