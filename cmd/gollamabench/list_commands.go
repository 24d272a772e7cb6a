// cmd/gollamabench/list_commands.go
package gollamabench

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandsCmd implements 'list commands', which prints the command tree with
// the command path in the first column and its short description in the second.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Long:  `The 'commands' subcommand lists all commands and subcommands in a hierarchical, indented format, with the command path in the first column and its short description in the second column.`,
	Run: func(cmd *cobra.Command, args []string) {
		listAllCommands(cmd.OutOrStdout(), cmd.Root())
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

type commandInfo struct {
	path        string
	description string
}

func listAllCommands(out io.Writer, root *cobra.Command) {
	rows := collectCommandData(root, "", "")

	width := 0
	for _, r := range rows {
		width = max(width, len(r.path))
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, r := range rows {
		fmt.Fprintf(out, "  %s%s%s\n", r.path, strings.Repeat(" ", width-len(r.path)+2), r.description)
	}
}

// collectCommandData flattens the tree depth-first, skipping hidden
// commands and the generated help command.
func collectCommandData(cmd *cobra.Command, parent, indent string) []commandInfo {
	path := cmd.Name()
	if parent != "" {
		path = parent + " " + cmd.Name()
	}
	rows := []commandInfo{{path: indent + path, description: cmd.Short}}
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		rows = append(rows, collectCommandData(sub, path, indent+"  ")...)
	}
	return rows
}
