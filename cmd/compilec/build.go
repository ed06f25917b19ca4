package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skx/tiny-c-compiler/internal/compiler"
)

func newBuildCommand() *cobra.Command {
	var (
		debug  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [source]",
		Short: "Compile source to Intel-syntax x86-64 assembly",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "test.txt"
			if len(args) == 1 {
				source = args[0]
			}
			if output == "" {
				output = "chat.s"
			}

			log := newLogger()
			log.Info("reading source", "path", source)

			buf, err := os.ReadFile(source)
			if err != nil {
				return errors.Wrapf(err, "reading %s", source)
			}

			comp := compiler.New(string(buf))
			comp.SetDebug(debug)

			log.Info("compiling")
			asm, err := comp.Compile()
			if err != nil {
				return err
			}

			log.Info("writing assembly", "path", output)
			if err := os.WriteFile(output, []byte(asm), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "insert a debug-break marker in every function body")
	cmd.Flags().StringVarP(&output, "output", "o", "", "assembly output path (default chat.s)")

	return cmd
}
