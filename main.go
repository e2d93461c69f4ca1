package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/strager/minipas/compiler"
	"github.com/strager/minipas/config"
	"github.com/strager/minipas/interp"
	"github.com/strager/minipas/logger"
	"github.com/strager/minipas/report"
)

const (
	exitOK          = 0
	exitErrors      = 1
	exitCannotOpen  = 2
	defaultLogLevel = ""
)

// exitError carries a process exit code out of a command. err is printed
// when non-nil. Diagnostics are already printed by the time it is returned.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app holds the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	warnFlags  []string
	errorFlags []string
	noColor    bool
	logLevel   string
	graph      bool

	cfg   *config.Config
	opts  report.Options
	color bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "minipas [file]",
		Short: "minipas - a front end for a small Pascal subset",
		Long: `minipas tokenizes, parses, analyzes and evaluates programs written in a
small Pascal subset.

Given a file and no subcommand it runs the whole pipeline: after a clean
analysis it prints the symbol table, the formatted program and the final
call stack.

Warnings are controlled with -W all|error|no-<warning> and errors with
-E all|no-<error>, for example -Werror or -Wno-unused-variable.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runPipeline,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: $MINIPAS_CONFIG, ./minipas.toml or ./minipas.yaml)")
	flags.StringArrayVarP(&a.warnFlags, "warning", "W", nil, "warning control: all, error or no-<warning>")
	flags.StringArrayVarP(&a.errorFlags, "error", "E", nil, "error control: all or no-<error>")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored diagnostics")
	flags.StringVar(&a.logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")
	root.Flags().BoolVar(&a.graph, "graph", false, "also write <file>.dot")

	root.AddCommand(
		a.checkCmd(),
		a.runCmd(),
		a.fmtCmd(),
		a.astCmd(),
		a.graphCmd(),
		a.symbolsCmd(),
		a.tokensCmd(),
	)
	return root
}

// setup loads configuration, applies command line overrides and starts
// logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.LoadDefault()
	}
	if err != nil {
		return &exitError{code: exitErrors, err: err}
	}

	if err := a.applyFlags(); err != nil {
		return &exitError{code: exitErrors, err: err}
	}
	if a.opts, err = a.cfg.ReportOptions(); err != nil {
		return &exitError{code: exitErrors, err: err}
	}

	lc, err := a.cfg.LoggerConfig()
	if err != nil {
		return &exitError{code: exitErrors, err: err}
	}
	lc.Output = a.stderr
	if err := logger.Init(lc); err != nil {
		return &exitError{code: exitErrors, err: err}
	}

	a.color = !a.noColor && a.cfg.UseColor(isTerminal(a.stderr))
	logger.Debug("configured", "command", cmd.Name(), "werror", a.cfg.Diagnostics.Werror, "color", a.color)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// applyFlags folds -W, -E and --log-level into the loaded configuration.
func (a *app) applyFlags() error {
	d := &a.cfg.Diagnostics
	for _, w := range a.warnFlags {
		switch {
		case w == "all":
			d.DisabledWarnings = nil
		case w == "error":
			d.Werror = true
		case strings.HasPrefix(w, "no-"):
			name := strings.TrimPrefix(w, "no-")
			if name == "error" {
				d.Werror = false
				continue
			}
			if _, err := report.ParseWarningType(name); err != nil {
				return fmt.Errorf("-W%s: %w", w, err)
			}
			d.DisabledWarnings = append(d.DisabledWarnings, name)
		default:
			return fmt.Errorf("-W%s: expected all, error or no-<warning>", w)
		}
	}
	for _, e := range a.errorFlags {
		switch {
		case e == "all":
			d.DisabledErrors = nil
		case strings.HasPrefix(e, "no-"):
			name := strings.TrimPrefix(e, "no-")
			if _, err := report.ParseErrorType(name); err != nil {
				return fmt.Errorf("-E%s: %w", e, err)
			}
			d.DisabledErrors = append(d.DisabledErrors, name)
		default:
			return fmt.Errorf("-E%s: expected all or no-<error>", e)
		}
	}
	if a.logLevel != defaultLogLevel {
		a.cfg.Log.Level = a.logLevel
	}
	return a.cfg.Validate()
}

// load reads path. A file that cannot be read exits with status 2.
func (a *app) load(path string) (*report.Source, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, &exitError{code: exitCannotOpen, err: fmt.Errorf("can't open file %q: %w", path, err)}
	}
	src := report.NewSource(path, text)
	src.TabWidth = a.cfg.Diagnostics.TabWidth
	return src, nil
}

func (a *app) compile(path string, stage compiler.Stage) (*compiler.Result, error) {
	src, err := a.load(path)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(src, compiler.Options{
		Report:    a.opts,
		StopAfter: stage,
		Logger:    logger.Default(),
	}), nil
}

// finish prints the diagnostics and the summary line and picks the exit
// status.
func (a *app) finish(res *compiler.Result) error {
	r := res.Reporter
	report.NewPrinter(a.stderr, res.Source, a.color).PrintAll(r.Diagnostics())
	if summary := r.Summary(); summary != "" {
		style := lipgloss.NewRenderer(a.stderr).NewStyle().Bold(true)
		if a.color {
			summary = style.Render(summary)
		}
		fmt.Fprintln(a.stderr, summary)
	}
	if r.ErrorCount() > 0 || res.Err != nil {
		return &exitError{code: exitErrors}
	}
	return nil
}

// execute runs an analyzed program and prints its final call stack.
func (a *app) execute(res *compiler.Result) {
	rec, err := compiler.Run(res)
	if rec != nil {
		var stack interp.CallStack
		stack.Push(rec)
		fmt.Fprintln(a.stdout, stack.String())
	}
	var stop *report.StopExecution
	if err != nil && !errors.As(err, &stop) {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		res.Err = err
	}
}

func (a *app) runPipeline(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &exitError{code: exitErrors, err: errors.New("no files specified")}
	}
	path := args[0]
	res, err := a.compile(path, compiler.StageAnalyze)
	if err != nil {
		return err
	}

	if res.OK() {
		run := a.cfg.Run
		if a.graph || run.Graph {
			if err := writeGraphFile(path+".dot", path, res.Program); err != nil {
				return &exitError{code: exitErrors, err: err}
			}
		}
		if run.PrintSymbols {
			fmt.Fprint(a.stdout, res.Symbols.String())
		}
		if run.PrintSource {
			fmt.Fprintf(a.stdout, "\n%s\n", formatProgram(res.Program))
		}
		if run.Execute {
			a.execute(res)
		}
	}
	return a.finish(res)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	defer logger.Close()
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(stderr, "error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitErrors
}
