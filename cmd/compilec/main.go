// Command compilec is the driver for the compiler: it wires the
// internal/compiler pipeline to a small cobra-based CLI with two
// subcommands, "build" (emit assembly) and "run" (assemble, link, and
// execute).
//
// Generalised from the teacher's flag-based main.go, which took a
// single expression argument and a handful of boolean flags
// (-debug, -compile, -filename, -run) and shelled out to gcc directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "compilec",
		Short: "compilec compiles a small C-like language to x86-64 assembly",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline progress to standard error")

	root.AddCommand(newBuildCommand())
	root.AddCommand(newRunCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
