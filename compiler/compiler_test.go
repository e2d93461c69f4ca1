package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/minipas/report"
)

func compile(src string, opts Options) *Result {
	return Compile(report.NewSource("test.pas", []byte(src)), opts)
}

func TestCompileCleanProgram(t *testing.T) {
	res := compile("program p; var x: integer; begin x := 1 + 2; x := x end.", Options{})
	be.True(t, res.OK())
	be.Equal(t, res.Stage, StageAnalyze)
	be.True(t, res.Program != nil)
	be.True(t, res.Symbols != nil)
	be.Equal(t, res.Reporter.Summary(), "")
	be.Equal(t, len(res.RunID), 36)

	rec, err := Run(res)
	be.Err(t, err, nil)
	be.Equal(t, rec.Members(), "x = 3\n")
}

func TestCompileReportsErrors(t *testing.T) {
	res := compile("program p; begin y := 1 end.", Options{})
	be.True(t, !res.OK())
	be.Err(t, res.Err, nil)
	be.Equal(t, res.Reporter.ErrorCount(), 1)
	be.Equal(t, res.Reporter.Diagnostics()[0].Error, report.ErrNameUndefined)

	_, err := Run(res)
	be.Err(t, err, ErrNotAnalyzed)
}

func TestCompileOptionsReachReporter(t *testing.T) {
	src := "program p; var x: integer; begin end."
	res := compile(src, Options{})
	be.True(t, res.OK())
	be.Equal(t, res.Reporter.WarningCount(), 1)

	res = compile(src, Options{Report: report.Options{WarningsAsErrors: true}})
	be.True(t, !res.OK())
	be.Equal(t, res.Reporter.Summary(), "Generated 1 errors.")

	res = compile(src, Options{Report: report.Options{DisabledWarnings: []report.WarningType{report.WarnUnusedVar}}})
	be.Equal(t, res.Reporter.WarningCount(), 0)
}

func TestStopAfter(t *testing.T) {
	src := "program p; begin y := 1 end."

	res := compile(src, Options{StopAfter: StageTokenize})
	be.Equal(t, res.Stage, StageTokenize)
	be.True(t, len(res.Tokens) > 0)
	be.True(t, res.Program == nil)
	be.True(t, res.OK())

	res = compile(src, Options{StopAfter: StageParse})
	be.Equal(t, res.Stage, StageParse)
	be.True(t, res.Program != nil)
	be.True(t, res.Symbols == nil)
	be.True(t, res.OK())

	_, err := Run(res)
	be.Err(t, err, ErrNotAnalyzed)
}

func TestRunDivisionByZero(t *testing.T) {
	res := compile("program p; var x: integer; begin x := 0; x := 1 / x end.", Options{})
	be.True(t, res.OK())

	_, err := Run(res)
	var stop *report.StopExecution
	be.True(t, errors.As(err, &stop))
	be.Equal(t, res.Reporter.ErrorCount(), 1)
	be.True(t, !res.OK())
}

func TestCompileLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	res := compile("program p; begin end.", Options{Logger: l})

	out := buf.String()
	be.True(t, strings.Contains(out, "run="+res.RunID))
	be.True(t, strings.Contains(out, "phase=analyze"))
	be.True(t, strings.Contains(out, "compilation finished"))
}

func TestStageString(t *testing.T) {
	be.Equal(t, StageTokenize.String(), "tokenize")
	be.Equal(t, StageParse.String(), "parse")
	be.Equal(t, StageAnalyze.String(), "analyze")
}
