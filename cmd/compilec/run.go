package main

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skx/tiny-c-compiler/internal/cleanup"
	"github.com/skx/tiny-c-compiler/internal/compiler"
)

// runTimeout bounds every external-process step (as, ld, and the
// produced binary) so a hung assembler or a runaway compiled program
// can't wedge the CLI indefinitely.
const runTimeout = 30 * time.Second

func newRunCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "run [source]",
		Short: "Compile, assemble, link, and execute source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "test.txt"
			if len(args) == 1 {
				source = args[0]
			}

			log := newLogger()

			as := envOr("AS", "as")
			ld := envOr("LD", "ld")

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

			work, err := os.MkdirTemp("", "compilec-run-")
			if err != nil {
				return errors.Wrap(err, "creating work directory")
			}
			artifacts := cleanup.New()
			artifacts.Push(work)
			defer func() {
				if cerr := artifacts.Close(); cerr != nil {
					log.Warn("cleanup failed", "error", cerr)
				}
			}()

			asmPath := work + "/chat.s"
			if err := os.WriteFile(asmPath, []byte(asm), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", asmPath)
			}

			objPath := work + "/chat.o"
			exePath := work + "/chat"

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()

			log.Info("assembling", "tool", as)
			if err := runTool(ctx, as, asmPath, "-o", objPath); err != nil {
				return errors.Wrap(err, "assembling")
			}

			log.Info("linking", "tool", ld)
			if err := runTool(ctx, ld, objPath, "-o", exePath); err != nil {
				return errors.Wrap(err, "linking")
			}

			log.Info("executing", "path", exePath)
			exe := exec.CommandContext(ctx, exePath)
			exe.Stdout = os.Stdout
			exe.Stderr = os.Stderr
			exe.Stdin = os.Stdin
			runErr := exe.Run()

			if exitErr, ok := runErr.(*exec.ExitError); ok {
				// os.Exit skips deferred calls, so remove the work
				// directory before propagating the exit code.
				if cerr := artifacts.Close(); cerr != nil {
					log.Warn("cleanup failed", "error", cerr)
				}
				os.Exit(exitErr.ExitCode())
			}
			if runErr != nil {
				return errors.Wrap(runErr, "executing compiled program")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "insert a debug-break marker in every function body")

	return cmd
}

func runTool(ctx context.Context, name string, args ...string) error {
	c := exec.CommandContext(ctx, name, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
