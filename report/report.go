// Package report collects the diagnostics produced while compiling one
// source file.
//
// A Reporter is created per compilation and handed to every stage. It is
// not safe for concurrent use.
package report

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorType classifies error diagnostics.
type ErrorType int

const (
	ErrIllegalLetter ErrorType = iota + 1
	ErrUnexpectedWord
	ErrExpected
	ErrNameUndefined
	ErrNameRedefinition
	ErrIllegalAssignment
	ErrIllegalStatement
	ErrCallingNonProcedure
	ErrCallingNonFunction
	ErrWrongArgumentsCount
	ErrProcedureAsFunction
	ErrCannotParseLiteral
	ErrDivisionByZero
)

var errorNames = map[ErrorType]string{
	ErrIllegalLetter:       "illegal-letter",
	ErrUnexpectedWord:      "unexpected-word",
	ErrExpected:            "expected-token",
	ErrNameUndefined:       "name-undefined",
	ErrNameRedefinition:    "name-redefinition",
	ErrIllegalAssignment:   "illegal-assignment",
	ErrIllegalStatement:    "illegal-statement",
	ErrCallingNonProcedure: "calling-non-procedure",
	ErrCallingNonFunction:  "calling-non-function",
	ErrWrongArgumentsCount: "wrong-arguments-count",
	ErrProcedureAsFunction: "procedure-as-function",
	ErrCannotParseLiteral:  "cannot-parse-literal",
	ErrDivisionByZero:      "division-by-zero",
}

var errorMessages = map[ErrorType]string{
	ErrIllegalLetter:       "unknown or illegal symbol",
	ErrUnexpectedWord:      "unexpected word",
	ErrExpected:            "expected",
	ErrNameUndefined:       "undefined identifier",
	ErrNameRedefinition:    "name redefinition",
	ErrIllegalAssignment:   "attempt to assign a value to non-variable object",
	ErrIllegalStatement:    "can't recognize statement",
	ErrCallingNonProcedure: "attempt to call non-callable object",
	ErrCallingNonFunction:  "attempt to call non-function object",
	ErrWrongArgumentsCount: "wrong arguments count",
	ErrProcedureAsFunction: "required function, not procedure",
	ErrCannotParseLiteral:  "can't parse literal",
	ErrDivisionByZero:      "division by zero",
}

// String returns the kebab-case name used by flags, config and tests.
func (e ErrorType) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", int(e))
}

// Message returns the human-readable text for e.
func (e ErrorType) Message() string {
	return errorMessages[e]
}

// WarningType classifies warning diagnostics.
type WarningType int

const (
	WarnUninitializedVar WarningType = iota + 1
	WarnUnusedVar
)

func (w WarningType) String() string {
	switch w {
	case WarnUninitializedVar:
		return "uninitialized-variable-use"
	case WarnUnusedVar:
		return "unused-variable"
	default:
		return fmt.Sprintf("warning(%d)", int(w))
	}
}

func (w WarningType) Message() string {
	switch w {
	case WarnUninitializedVar:
		return "using uninitialized variable"
	case WarnUnusedVar:
		return "unused variable"
	default:
		return ""
	}
}

// ParseErrorType looks up an ErrorType by its String name.
func ParseErrorType(name string) (ErrorType, error) {
	for kind, n := range errorNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", name)
}

// ParseWarningType looks up a WarningType by its String name.
func ParseWarningType(name string) (WarningType, error) {
	for _, kind := range []WarningType{WarnUninitializedVar, WarnUnusedVar} {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown warning kind %q", name)
}

// Severity is how a diagnostic is rendered and counted.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is one recorded report. Exactly one of Error and Warning is
// set unless Severity is SeverityNote. A warning promoted by
// Options.WarningsAsErrors keeps its Warning kind but has SeverityError.
type Diagnostic struct {
	Severity Severity
	Pos      int
	Error    ErrorType
	Warning  WarningType
	Message  string
}

// Kind returns the name of the error or warning kind, or "note".
func (d Diagnostic) Kind() string {
	switch {
	case d.Error != 0:
		return d.Error.String()
	case d.Warning != 0:
		return d.Warning.String()
	default:
		return "note"
	}
}

// Options filters and escalates diagnostics.
type Options struct {
	DisabledErrors   []ErrorType
	DisabledWarnings []WarningType
	WarningsAsErrors bool
}

// StopExecution is the panic value raised by Reporter.Fatal.
type StopExecution struct {
	Diagnostic Diagnostic
}

func (s *StopExecution) Error() string {
	return "execution stopped: " + s.Diagnostic.Message
}

// Reporter accumulates diagnostics and counts errors and warnings.
type Reporter struct {
	opts     Options
	diags    []Diagnostic
	errors   int
	warnings int
}

// New returns an empty Reporter.
func New(opts Options) *Reporter {
	return &Reporter{opts: opts}
}

func joinMessage(base string, extra []string) string {
	if len(extra) == 0 {
		return base
	}
	return base + " " + strings.Join(extra, " ")
}

func (r *Reporter) errorDisabled(kind ErrorType) bool {
	for _, k := range r.opts.DisabledErrors {
		if k == kind {
			return true
		}
	}
	return false
}

func (r *Reporter) warningDisabled(kind WarningType) bool {
	for _, k := range r.opts.DisabledWarnings {
		if k == kind {
			return true
		}
	}
	return false
}

// Error records a non-fatal error at byte offset pos. Extra text is
// appended to the kind's message. Disabled kinds are dropped.
func (r *Reporter) Error(pos int, kind ErrorType, extra ...string) {
	if r.errorDisabled(kind) {
		return
	}
	r.errors++
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityError,
		Pos:      pos,
		Error:    kind,
		Message:  joinMessage(kind.Message(), extra),
	})
}

// Fatal records an error and panics with *StopExecution. Callers recover
// it with Catch. A disabled kind still stops execution but is not counted.
func (r *Reporter) Fatal(pos int, kind ErrorType, extra ...string) {
	d := Diagnostic{
		Severity: SeverityError,
		Pos:      pos,
		Error:    kind,
		Message:  joinMessage(kind.Message(), extra),
	}
	if !r.errorDisabled(kind) {
		r.errors++
		r.diags = append(r.diags, d)
	}
	panic(&StopExecution{Diagnostic: d})
}

// Warning records a warning. With WarningsAsErrors it is counted and
// rendered as an error.
func (r *Reporter) Warning(pos int, kind WarningType, extra ...string) {
	if r.warningDisabled(kind) {
		return
	}
	d := Diagnostic{
		Severity: SeverityWarning,
		Pos:      pos,
		Warning:  kind,
		Message:  joinMessage(kind.Message(), extra),
	}
	if r.opts.WarningsAsErrors {
		d.Severity = SeverityError
		r.errors++
	} else {
		r.warnings++
	}
	r.diags = append(r.diags, d)
}

// Note attaches an uncounted remark, usually pointing at a declaration.
func (r *Reporter) Note(pos int, text string) {
	r.diags = append(r.diags, Diagnostic{
		Severity: SeverityNote,
		Pos:      pos,
		Message:  text,
	})
}

func (r *Reporter) ErrorCount() int   { return r.errors }
func (r *Reporter) WarningCount() int { return r.warnings }

// Diagnostics returns the recorded diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// Summary formats the end-of-run counts line.
func (r *Reporter) Summary() string {
	switch {
	case r.warnings > 0 && r.errors > 0:
		return fmt.Sprintf("Generated %d warnings and %d errors.", r.warnings, r.errors)
	case r.warnings > 0:
		return fmt.Sprintf("Generated %d warnings.", r.warnings)
	case r.errors > 0:
		return fmt.Sprintf("Generated %d errors.", r.errors)
	default:
		return ""
	}
}

// Catch converts a *StopExecution panic into *errp. Runtime errors and
// foreign panics are re-raised. Use as `defer report.Catch(&err)`.
func Catch(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	stop, ok := e.(*StopExecution)
	if !ok {
		panic(e)
	}
	*errp = stop
}
