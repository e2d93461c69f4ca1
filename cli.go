package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/compiler"
	"github.com/strager/minipas/graphviz"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/printer"
	"github.com/strager/minipas/report"
)

func formatProgram(prog *ast.Program) string {
	return printer.Print(prog)
}

func writeGraphFile(path, name string, prog *ast.Program) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := graphviz.Write(w, name, prog); err != nil {
		f.Close()
		return fmt.Errorf("write graph file: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write graph file: %w", err)
	}
	return f.Close()
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Parse and analyze a file and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageAnalyze)
			if err != nil {
				return err
			}
			if res.OK() {
				fmt.Fprintf(a.stdout, "%s: no errors found\n", args[0])
			}
			return a.finish(res)
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Analyze a file and evaluate it, printing the final call stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageAnalyze)
			if err != nil {
				return err
			}
			if res.OK() {
				a.execute(res)
			}
			return a.finish(res)
		},
	}
}

func (a *app) fmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <file>",
		Short: "Print a file formatted with canonical layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageParse)
			if err != nil {
				return err
			}
			if res.OK() {
				fmt.Fprint(a.stdout, formatProgram(res.Program))
			}
			return a.finish(res)
		},
	}
}

func (a *app) astCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the syntax tree as an s-expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageParse)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, ast.SExpr(res.Program))
			return a.finish(res)
		},
	}
}

func (a *app) graphCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Write the syntax tree as a Graphviz DOT graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageParse)
			if err != nil {
				return err
			}
			if res.OK() {
				if output == "" || output == "-" {
					if err := graphviz.Write(a.stdout, args[0], res.Program); err != nil {
						return &exitError{code: exitErrors, err: err}
					}
				} else if err := writeGraphFile(output, args[0], res.Program); err != nil {
					return &exitError{code: exitErrors, err: err}
				}
			}
			return a.finish(res)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	return cmd
}

func (a *app) symbolsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "symbols <file>",
		Short: "Print the symbol table built by analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return &exitError{code: exitErrors, err: fmt.Errorf("unknown format %q", format)}
			}
			res, err := a.compile(args[0], compiler.StageAnalyze)
			if err != nil {
				return err
			}
			if format == "yaml" {
				if err := res.Symbols.WriteYAML(a.stdout); err != nil {
					return &exitError{code: exitErrors, err: err}
				}
			} else {
				fmt.Fprint(a.stdout, res.Symbols.String())
			}
			return a.finish(res)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	return cmd
}

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream, one token per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compile(args[0], compiler.StageTokenize)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(a.stdout)
			for _, tok := range res.Tokens {
				writeToken(w, res.Source, tok)
			}
			if err := w.Flush(); err != nil {
				return &exitError{code: exitErrors, err: err}
			}
			return a.finish(res)
		},
	}
}

// writeToken prints "line:col class type" and the quoted source text, if
// the token has any.
func writeToken(w io.Writer, src *report.Source, tok lexer.Token) {
	line, col := src.Position(tok.Pos)
	fmt.Fprintf(w, "%d:%d\t%s\t%s", line, col, tok.Type.Class(), tok.Type)
	if tok.Text != "" {
		fmt.Fprintf(w, "\t%q", tok.Text)
	}
	fmt.Fprintln(w)
}
