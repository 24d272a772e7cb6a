// cmd/gollamabench/list_tests.go
package gollamabench

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mwiater/gollamabench/internal/catalog"
)

// listTestsCmd implements 'list tests'.
var listTestsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List the built-in test suites",
	Long:  `The 'tests' subcommand prints every built-in suite per language with the name and category of each test, or the tests of a single file when --tests-file is given.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTests(cmd.OutOrStdout(), listTestsFile)
	},
}

var listTestsFile string

func init() {
	listCmd.AddCommand(listTestsCmd)
	listTestsCmd.Flags().StringVar(&listTestsFile, "tests-file", "", "list the tests of this YAML or JSON file instead")
}

func listTests(out io.Writer, file string) error {
	if file != "" {
		tests, err := catalog.LoadFile(file)
		if err != nil {
			return err
		}
		printTests(out, file, tests)
		return nil
	}
	for _, lang := range catalog.Languages() {
		for _, kind := range catalog.Kinds() {
			tests, err := catalog.Suite(lang, kind)
			if err != nil {
				return err
			}
			printTests(out, fmt.Sprintf("%s / %s", lang.DisplayName(), kind), tests)
		}
	}
	return nil
}

func printTests(out io.Writer, title string, tests []catalog.Test) {
	fmt.Fprintln(out, hostStyle.Render(fmt.Sprintf("%s (%d tests):", title, len(tests))))
	for i, t := range tests {
		category := t.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(out, "  %2d. %s [%s]\n", i+1, t.Name, category)
	}
	fmt.Fprintln(out)
}
