package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"

	"github.com/hemlang/hemc/codegen"
	"github.com/hemlang/hemc/compiler"
)

// inspectCommand is an interactive debugging shell over a compiled
// program's emit map (SPEC_FULL.md SUPPLEMENTED FEATURES
// #2), grounded on the teacher pack's liner-backed REPL shape
// (sunholo/ailang's internal/repl).
func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Interactively browse a compiled program's mangled names",
		ArgsUsage: "<program.json>",
		Flags:     codegenFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return fmt.Errorf("usage: hemc inspect <program.json>")
			}
			c, err := buildCompiler(cmd)
			if err != nil {
				return err
			}
			c.EmitMap = true
			result, err := c.Compile(cmd.Args().First())
			if err != nil {
				return err
			}
			runInspectShell(result, os.Stdout)
			return nil
		},
	}
}

func runInspectShell(result *compiler.Result, out io.Writer) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".hemc_inspect_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(prefix string) (c []string) {
		commands := []string{":symbols", ":find", ":quit", ":help"}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, prefix) {
				c = append(c, cmd)
			}
		}
		for _, e := range result.EmitMap {
			if strings.HasPrefix(e.Name, prefix) {
				c = append(c, e.Name)
			}
		}
		return
	})

	fmt.Fprintf(out, "%s %s — %d emitted symbols\n", bold("hemc inspect"), result.SourceFile, len(result.EmitMap))
	fmt.Fprintln(out, dim("Type :help for commands, :quit to exit"))

	for {
		input, err := line.Prompt("hemc> ")
		if err != nil {
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q":
			if f, err := os.Create(historyFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
			return
		case input == ":help":
			fmt.Fprintln(out, "  :symbols          list every mangled symbol this program emitted")
			fmt.Fprintln(out, "  :find <substr>    list symbols whose name contains <substr>")
			fmt.Fprintln(out, "  <name>            show the kind and source line for exactly that symbol")
		case input == ":symbols":
			printSymbols(out, result.EmitMap, "")
		case strings.HasPrefix(input, ":find "):
			printSymbols(out, result.EmitMap, strings.TrimPrefix(input, ":find "))
		default:
			found := false
			for _, e := range result.EmitMap {
				if e.Name == input {
					fmt.Fprintf(out, "%s: %s, line %d\n", e.Name, e.Kind, e.Line)
					found = true
				}
			}
			if !found {
				fmt.Fprintf(out, "no symbol named %q\n", input)
			}
		}
	}
}

func printSymbols(out io.Writer, entries []codegen.EmitMapEntry, substr string) {
	matches := make([]codegen.EmitMapEntry, 0, len(entries))
	for _, e := range entries {
		if substr == "" || strings.Contains(e.Name, substr) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	for _, e := range matches {
		fmt.Fprintf(out, "  %-40s %-10s line %d\n", e.Name, e.Kind, e.Line)
	}
}
