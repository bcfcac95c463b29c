// Package cmd wires the hemc CLI surface: run/emit/build/inspect
// subcommands over the compiler driver package, grounded on the teacher's
// cli/v3 command tree, extended with the --emit-map side table and the
// interactive inspect shell (SPEC_FULL.md "SUPPLEMENTED FEATURES").
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hemlang/hemc/codegen"
	"github.com/hemlang/hemc/compiler"
)

var log = logrus.New()

func init() {
	log.SetLevel(logrus.WarnLevel)
}

// Execute runs the hemc CLI with the given version string and returns the
// process exit code, letting main() decide whether/when to call os.Exit —
// the teacher's Execute calls os.Exit internally, but the exercises here
// keep that decision at the outermost edge so it can still be wired into
// something other than a direct `os.Exit` by anything embedding it later.
func Execute(version string) int {
	color.NoColor = !colorCapable()

	cmd := &cli.Command{
		Name:                   "hemc",
		Usage:                  "Hemlock code generator: lower a compiled AST to portable C",
		Version:                version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			emitCommand(),
			buildCommand(),
			runCommand(),
			inspectCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// buildCompiler assembles a *compiler.Compiler from hemc.yaml (if present)
// and CLI flags, flags always winning over file values (§ AMBIENT STACK
// "Configuration").
func buildCompiler(cmd *cli.Command) (*compiler.Compiler, error) {
	if cmd.Bool("verbose") {
		log.SetLevel(logrus.TraceLevel)
	}

	cfg, err := codegen.LoadConfig(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	c := &compiler.Compiler{}
	if cfg.Optimize != nil {
		c.Optimize = *cfg.Optimize
	}
	if cfg.StackCheck != nil {
		c.StackCheck = *cfg.StackCheck
	}
	if cfg.Sandbox != nil {
		c.Sandbox = *cfg.Sandbox
		if cfg.SandboxRoot != nil {
			c.SandboxRoot = *cfg.SandboxRoot
		}
	}

	if cmd.IsSet("optimize") {
		c.Optimize = cmd.Bool("optimize")
	}
	if cmd.IsSet("stack-check") {
		c.StackCheck = cmd.Bool("stack-check")
	}
	if cmd.IsSet("sandbox") {
		c.Sandbox = true
		c.SandboxRoot = cmd.String("sandbox")
	}
	return c, nil
}

func codegenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "optimize", Usage: "enable the peephole/strength-reduction pass"},
		&cli.BoolFlag{Name: "stack-check", Usage: "emit recursion-depth guards"},
		&cli.StringFlag{Name: "sandbox", Usage: "restrict filesystem/network builtins to this root"},
		&cli.StringFlag{Name: "config", Value: "hemc.yaml", Usage: "project config file"},
		&cli.BoolFlag{Name: "verbose", Usage: "enable trace-level logging of each codegen pass"},
	}
}

// configPath reads the subcommand's own --config flag — each subcommand
// declares it via codegenFlags rather than relying on inheriting the root
// command's flag, since a subcommand's own Command value is what Action
// receives.
func configPath(cmd *cli.Command) string {
	if p := cmd.String("config"); p != "" {
		return p
	}
	return "hemc.yaml"
}

func emitCommand() *cli.Command {
	return &cli.Command{
		Name:      "emit",
		Usage:     "Lower a compiled AST (JSON) to portable C and print it",
		ArgsUsage: "<program.json>",
		Flags: append(codegenFlags(),
			&cli.StringFlag{Name: "emit-map", Usage: "also write the mangled-name -> {kind, line} side table to this path"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("usage: hemc emit <program.json>")
			}
			c, err := buildCompiler(cmd)
			if err != nil {
				return err
			}
			c.EmitMap = cmd.IsSet("emit-map")
			result, err := c.Compile(cmd.Args().First())
			if err != nil {
				return err
			}
			fmt.Print(result.CSource)
			if path := cmd.String("emit-map"); path != "" {
				if err := writeEmitMap(path, result.EmitMap); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeEmitMap(path string, entries []codegen.EmitMapEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling emit map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing emit map: %w", err)
	}
	return nil
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Compile a program to a native binary via the host C toolchain",
		ArgsUsage: "<program.json>",
		Flags: append(codegenFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output binary path"},
			&cli.StringFlag{Name: "cc", Value: defaultCC(), Usage: "C compiler to invoke"},
			&cli.StringSliceFlag{Name: "cflags", Usage: "extra flags passed through to the C compiler, e.g. -I/path/to/hml_runtime"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("usage: hemc build [-o output] <program.json>")
			}
			_, _, err := compileAndLink(cmd)
			return err
		},
	}
}

// runCommand skips its own flag parsing so that `hemc run program.json -x`
// forwards `-x` to the compiled program rather than hemc itself (matching
// the teacher's runAction) — codegen options for `run` come from
// hemc.yaml only, not CLI flags.
func runCommand() *cli.Command {
	return &cli.Command{
		Name:            "run",
		Usage:           "Compile and run a program",
		ArgsUsage:       "<program.json> [args...]",
		SkipFlagParsing: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("usage: hemc run <program.json> [args...]")
			}
			binPath, cleanup, err := compileAndLink(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			run := exec.Command(binPath, cmd.Args().Tail()...)
			run.Stdin, run.Stdout, run.Stderr = os.Stdin, os.Stdout, os.Stderr
			if err := run.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					os.Exit(exitErr.ExitCode())
				}
				return err
			}
			return nil
		},
	}
}

// compileAndLink emits C for the program named by the command's first
// argument, writes it to a temp directory, and invokes the configured C
// compiler against it plus any runtime include/lib paths named via
// --cflags, mirroring the teacher's Run/Build's "write to a scratch build
// directory, then shell out to the real toolchain" shape — just with `cc`
// standing in for `go build` and the fixed hml_runtime ABI standing in for
// the Go standard library the teacher links against.
func compileAndLink(cmd *cli.Command) (binPath string, cleanup func(), err error) {
	c, err := buildCompiler(cmd)
	if err != nil {
		return "", nil, err
	}
	result, err := c.Compile(cmd.Args().First())
	if err != nil {
		return "", nil, err
	}

	tmpDir, err := os.MkdirTemp("", "hemc-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating build dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(tmpDir) }

	cFile := filepath.Join(tmpDir, "program.c")
	if err := os.WriteFile(cFile, []byte(result.CSource), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing generated C: %w", err)
	}

	output := cmd.String("output")
	if output == "" {
		output = filepath.Join(tmpDir, "hemc_program")
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("resolving output path: %w", err)
	}

	args := []string{cFile, "-o", absOutput}
	args = append(args, cmd.StringSlice("cflags")...)
	cc := cmd.String("cc")
	if cc == "" {
		cc = defaultCC()
	}
	ccCmd := exec.Command(cc, args...)
	ccCmd.Stdout, ccCmd.Stderr = os.Stdout, os.Stderr
	if err := ccCmd.Run(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("compiling generated C: %w", err)
	}
	return absOutput, cleanup, nil
}

func defaultCC() string {
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}
	return "cc"
}

// colorCapable reports whether stderr looks like an interactive terminal,
// the same TTY probe the teacher's test runner uses to decide on ANSI
// output (main.go's testAction).
func colorCapable() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
