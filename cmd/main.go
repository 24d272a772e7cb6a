// cmd/main.go
package main

import cmd "github.com/mwiater/gollamabench/cmd/gollamabench"

// main hands control to the cobra root command.
func main() {
	cmd.Execute()
}
