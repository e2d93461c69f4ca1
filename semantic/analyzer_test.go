package semantic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/parser"
	"github.com/strager/minipas/report"
	"github.com/strager/minipas/symbols"
)

func analyzeWith(t *testing.T, src string, opts report.Options) (*report.Reporter, *symbols.Table) {
	t.Helper()
	r := report.New(opts)
	prog := parser.New(lexer.Tokenize([]byte(src), r), r).ParseProgram()
	be.Equal(t, r.ErrorCount(), 0)
	return r, New(r).Analyze(prog)
}

func analyze(t *testing.T, src string) (*report.Reporter, *symbols.Table) {
	t.Helper()
	return analyzeWith(t, src, report.Options{})
}

// diags formats each diagnostic as "severity kind pos".
func diags(r *report.Reporter) []string {
	var out []string
	for _, d := range r.Diagnostics() {
		out = append(out, fmt.Sprintf("%s %s %d", d.Severity, d.Kind(), d.Pos))
	}
	return out
}

// kinds formats each diagnostic as "severity kind".
func kinds(r *report.Reporter) []string {
	var out []string
	for _, d := range r.Diagnostics() {
		out = append(out, d.Severity.String()+" "+d.Kind())
	}
	return out
}

// at returns the offset of the n-th (0-based) occurrence of word in src.
func at(src, word string, n int) int {
	pos := -1
	for i := 0; i <= n; i++ {
		next := strings.Index(src[pos+1:], word)
		if next < 0 {
			panic("word not found: " + word)
		}
		pos += next + 1
	}
	return pos
}

func TestWriteOnlyVariableIsUnused(t *testing.T) {
	src := "program p; var x : integer; begin x := 1 + 2 end."
	r, table := analyze(t, src)
	be.Equal(t, diags(r), []string{fmt.Sprintf("warning unused-variable %d", at(src, "x", 0))})
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, r.Diagnostics()[0].Message, "unused variable 'x'")

	id, ok := table.Lookup("x")
	be.True(t, ok)
	be.Equal(t, table.TypeName(table.Symbol(id)), "integer")
	be.True(t, !table.Symbol(id).Dirty())
	be.True(t, !table.Symbol(id).Used())
}

func TestUndefinedAssignmentTarget(t *testing.T) {
	src := "program p; var x : integer; begin y := 1 end."
	r, _ := analyze(t, src)
	be.Equal(t, diags(r), []string{
		fmt.Sprintf("error name-undefined %d", at(src, "y", 0)),
		fmt.Sprintf("warning unused-variable %d", at(src, "x", 0)),
	})
	be.Equal(t, r.ErrorCount(), 1)
	be.Equal(t, r.Diagnostics()[0].Message, "undefined identifier 'y'")
}

func TestCleanProgram(t *testing.T) {
	r, _ := analyze(t, `
program p;
var x: integer;
procedure q(a: integer);
begin
	a := a
end;
begin
	x := 2;
	q(x)
end.`)
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestRedefinition(t *testing.T) {
	src := "program p; var x: integer; x: real; begin x := 1; x := x end."
	r, _ := analyze(t, src)
	be.Equal(t, diags(r), []string{
		fmt.Sprintf("error name-redefinition %d", at(src, "x", 1)),
		fmt.Sprintf("note note %d", at(src, "x", 0)),
	})
	be.Equal(t, r.Diagnostics()[0].Message, "name redefinition 'x'")
}

func TestRedefiningBuiltinHasNoNote(t *testing.T) {
	r, _ := analyze(t, "program p; var integer: real; begin end.")
	be.Equal(t, kinds(r), []string{"error name-redefinition"})
}

func TestShadowingIsAllowed(t *testing.T) {
	r, _ := analyze(t, `
program p;
var x: integer;
procedure q;
var x: real;
begin
	x := 1.5;
	x := x
end;
begin
	x := 1;
	x := x;
	q()
end.`)
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestUninitializedReads(t *testing.T) {
	src := "program p; var x, y: integer; begin y := x; y := x; x := 1; y := x + y end."
	r, _ := analyze(t, src)
	be.Equal(t, diags(r), []string{
		fmt.Sprintf("warning uninitialized-variable-use %d", at(src, "x", 1)),
		fmt.Sprintf("warning uninitialized-variable-use %d", at(src, "x", 2)),
	})
	be.Equal(t, r.Diagnostics()[0].Message, "using uninitialized variable 'x'")
}

func TestSelfAssignmentReadsFirst(t *testing.T) {
	r, _ := analyze(t, "program p; var x: integer; begin x := x end.")
	be.Equal(t, kinds(r), []string{"warning uninitialized-variable-use"})
}

func TestOuterVariablesAreNotCheckedForInitialization(t *testing.T) {
	r, _ := analyze(t, "program p; var g: integer; procedure q; begin g := g end; begin g := 1; q() end.")
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestParametersAreInitialized(t *testing.T) {
	r, _ := analyze(t, "program p; procedure q(a: integer); var b: integer; begin b := a; a := b end; begin q(1) end.")
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestUnusedInProcedureSortedByPosition(t *testing.T) {
	src := "program p; procedure q; var b, a: integer; begin a := 1 end; begin q() end."
	r, _ := analyze(t, src)
	be.Equal(t, diags(r), []string{
		fmt.Sprintf("warning unused-variable %d", at(src, "b", 0)),
		fmt.Sprintf("warning unused-variable %d", at(src, "a:", 0)),
	})
}

func TestCallingUndeclared(t *testing.T) {
	r, _ := analyze(t, "program p; begin foo(1) end.")
	be.Equal(t, diags(r), []string{"error calling-non-procedure 17"})
	be.Equal(t, r.Diagnostics()[0].Message, "attempt to call non-callable object 'foo'")
}

func TestCallingVariable(t *testing.T) {
	r, _ := analyze(t, "program p; var x: integer; begin x := 1; x(2); x := x end.")
	be.Equal(t, kinds(r), []string{"error calling-non-procedure"})
}

func TestWrongArgumentCount(t *testing.T) {
	r, _ := analyze(t, "program p; procedure q(a, b: integer); begin a := b; b := a end; begin q(1) end.")
	be.Equal(t, kinds(r), []string{"error wrong-arguments-count"})
	be.Equal(t, r.Diagnostics()[0].Message, "wrong arguments count (expected 2, got 1)")
}

func TestCallArgumentsAreReads(t *testing.T) {
	r, _ := analyze(t, "program p; var x: integer; procedure q(a: integer); begin a := a end; begin q(x) end.")
	be.Equal(t, kinds(r), []string{"warning uninitialized-variable-use"})
}

func TestRecursiveCall(t *testing.T) {
	r, _ := analyze(t, "program p; procedure q(a: integer); begin q(a) end; begin q(1) end.")
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestProcedureAsValue(t *testing.T) {
	r, _ := analyze(t, "program p; procedure q; begin end; var x: integer; begin x := q; x := x end.")
	be.Equal(t, kinds(r), []string{"error procedure-as-function"})
}

func TestAssignToProcedure(t *testing.T) {
	src := "program p; procedure q; begin end; begin q := 1 end."
	r, _ := analyze(t, src)
	be.Equal(t, diags(r), []string{
		fmt.Sprintf("error illegal-assignment %d", at(src, "q", 1)),
		fmt.Sprintf("note note %d", at(src, "q", 0)),
	})
	be.Equal(t, r.Diagnostics()[1].Message, "the declaration is here")
}

func TestAssignToBuiltinType(t *testing.T) {
	r, _ := analyze(t, "program p; begin integer := 1 end.")
	be.Equal(t, kinds(r), []string{"error illegal-assignment"})
}

func TestUnknownType(t *testing.T) {
	src := "program p; var x: foo; begin x := 1; x := x end."
	r, table := analyze(t, src)
	be.Equal(t, diags(r), []string{fmt.Sprintf("error name-undefined %d", at(src, "foo", 0))})

	id, ok := table.Lookup("x")
	be.True(t, ok)
	be.Equal(t, table.Symbol(id).Type, symbols.NoID)
}

func TestVariableUsedAsType(t *testing.T) {
	r, _ := analyze(t, "program p; var y: integer; x: y; begin y := 1; x := y; y := x end.")
	be.Equal(t, kinds(r), []string{"error name-undefined"})
	be.Equal(t, r.Diagnostics()[0].Message, "undefined identifier 'y' is not a type")
}

func TestTypeUsedAsValue(t *testing.T) {
	r, _ := analyze(t, "program p; var x: integer; begin x := integer; x := x end.")
	be.Equal(t, kinds(r), []string{"error name-undefined"})
	be.Equal(t, r.Diagnostics()[0].Message, "undefined identifier 'integer' is not a variable")
}

func TestDeclarationsInSourceOrder(t *testing.T) {
	r, _ := analyze(t, "program p; procedure q; begin x := 1 end; var x: integer; begin x := 2; x := x end.")
	be.Equal(t, kinds(r), []string{"error name-undefined"})
}

func TestMalformedLiteral(t *testing.T) {
	r, _ := analyze(t, "program p; var x: real; begin x := 1.2.3; x := x end.")
	be.Equal(t, kinds(r), []string{"error cannot-parse-literal"})
}

func TestHugeIntegerLiteralIsReal(t *testing.T) {
	r, _ := analyze(t, "program p; var x: real; begin x := 99999999999999999999; x := x end.")
	be.Equal(t, len(r.Diagnostics()), 0)
}

func TestWarningsAsErrors(t *testing.T) {
	r, _ := analyzeWith(t, "program p; var x : integer; begin x := 1 end.", report.Options{WarningsAsErrors: true})
	be.Equal(t, r.ErrorCount(), 1)
	be.Equal(t, r.WarningCount(), 0)
	be.Equal(t, kinds(r), []string{"error unused-variable"})
}

func TestProcedureScopesRemainInTable(t *testing.T) {
	_, table := analyze(t, "program p; procedure q(a: integer); begin a := a end; begin q(1) end.")
	be.Equal(t, table.ScopeCount(), 2)
	scope := table.Scope(1)
	be.Equal(t, scope.Name, "q")
	be.Equal(t, scope.Level, 2)
	be.Equal(t, len(table.Variables(1)), 1)

	id, _ := table.Lookup("q")
	be.Equal(t, len(table.Symbol(id).Params), 1)
	be.Equal(t, table.TypeName(table.Symbol(id).Params[0]), "integer")
}

func TestParameterNamedLikeTypeDoesNotHideLaterTypes(t *testing.T) {
	src := "program p; procedure q(integer: real; b: integer); begin b := integer end; begin q(1.5, 2) end."
	r, table := analyze(t, src)
	be.Equal(t, r.ErrorCount(), 0)

	id, _ := table.Lookup("q")
	be.Equal(t, table.TypeName(table.Symbol(id).Params[1]), "integer")

	vars := table.Variables(1)
	be.Equal(t, len(vars), 2)
	be.Equal(t, table.Symbol(vars[0]).Name, "integer")
	be.Equal(t, table.TypeName(table.Symbol(vars[0])), "real")
	be.Equal(t, table.Symbol(vars[1]).Name, "b")
	be.Equal(t, table.TypeName(table.Symbol(vars[1])), "integer")
}
