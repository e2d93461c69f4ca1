// Package compiler drives the front end over one source file: tokenize,
// parse, analyze, and optionally evaluate.
package compiler

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/interp"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/logger"
	"github.com/strager/minipas/parser"
	"github.com/strager/minipas/report"
	"github.com/strager/minipas/semantic"
	"github.com/strager/minipas/symbols"
)

// ErrNotAnalyzed is returned by Run for results that stopped before
// analysis or recorded errors.
var ErrNotAnalyzed = errors.New("program has errors or was not analyzed")

// Stage names the last phase Compile performs.
type Stage int

const (
	StageAnalyze Stage = iota
	StageTokenize
	StageParse
)

func (s Stage) String() string {
	switch s {
	case StageTokenize:
		return "tokenize"
	case StageParse:
		return "parse"
	default:
		return "analyze"
	}
}

type Options struct {
	Report report.Options
	// StopAfter defaults to StageAnalyze.
	StopAfter Stage
	// Logger defaults to logger.Default().
	Logger *slog.Logger
}

// Result holds everything a compilation produced. Program and Symbols are
// only meaningful for later passes when OK reports true.
type Result struct {
	Source   *report.Source
	Tokens   []lexer.Token
	Program  *ast.Program
	Symbols  *symbols.Table
	Reporter *report.Reporter
	RunID    string
	Stage    Stage
	// Err is set when a fatal diagnostic stopped the pipeline.
	Err error

	log *slog.Logger
}

// OK reports whether the pipeline ran to completion with no errors.
func (r *Result) OK() bool {
	return r.Err == nil && r.Reporter.ErrorCount() == 0
}

// Logger returns the logger tagged with this compilation's run id.
func (r *Result) Logger() *slog.Logger {
	return r.log
}

// Compile runs the front end over src. Diagnostics are collected in the
// result's Reporter rather than returned as errors.
func Compile(src *report.Source, opts Options) *Result {
	l := opts.Logger
	if l == nil {
		l = logger.Default()
	}
	res := &Result{
		Source:   src,
		Reporter: report.New(opts.Report),
		RunID:    uuid.NewString(),
	}
	res.log = l.With("run", res.RunID, "file", src.Name)
	res.Err = res.compile(opts.StopAfter)
	res.log.Debug("compilation finished",
		"stage", res.Stage.String(),
		"errors", res.Reporter.ErrorCount(),
		"warnings", res.Reporter.WarningCount())
	return res
}

func (res *Result) compile(stopAfter Stage) (err error) {
	defer report.Catch(&err)
	r := res.Reporter

	res.Stage = StageTokenize
	logger.LogPhase(res.log, "tokenize")
	res.Tokens = lexer.Tokenize(res.Source.Text, r)
	logger.LogPhaseComplete(res.log, "tokenize", r.ErrorCount(), r.WarningCount())
	if stopAfter == StageTokenize {
		return nil
	}

	res.Stage = StageParse
	logger.LogPhase(res.log, "parse")
	res.Program = parser.New(res.Tokens, r).ParseProgram()
	logger.LogPhaseComplete(res.log, "parse", r.ErrorCount(), r.WarningCount())
	if stopAfter == StageParse {
		return nil
	}

	res.Stage = StageAnalyze
	logger.LogPhase(res.log, "analyze")
	res.Symbols = semantic.New(r).WithLogger(res.log).Analyze(res.Program)
	logger.LogPhaseComplete(res.log, "analyze", r.ErrorCount(), r.WarningCount())
	return nil
}

// Run evaluates an analyzed, error-free result. The returned record is the
// program's record as it stood when evaluation ended. A division by zero
// comes back as a *report.StopExecution error and is also recorded in the
// result's Reporter.
func Run(res *Result) (*interp.ActivationRecord, error) {
	if res.Stage != StageAnalyze || !res.OK() {
		return nil, ErrNotAnalyzed
	}
	logger.LogPhase(res.log, "execute")
	rec, err := interp.New(res.Reporter).WithLogger(res.log).Run(res.Program)
	logger.LogPhaseComplete(res.log, "execute", res.Reporter.ErrorCount(), res.Reporter.WarningCount())
	if err != nil {
		res.log.Info("execution stopped", "error", err)
	}
	return rec, err
}
