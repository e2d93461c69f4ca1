package parser

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/report"
)

func parseProgram(src string) (string, *report.Reporter) {
	r := report.New(report.Options{})
	prog := New(lexer.Tokenize([]byte(src), r), r).ParseProgram()
	return ast.SExpr(prog), r
}

func parseExpr(src string) (string, *report.Reporter) {
	r := report.New(report.Options{})
	expr := New(lexer.Tokenize([]byte(src), r), r).ParseExpression()
	return ast.SExpr(expr), r
}

type diag struct {
	kind report.ErrorType
	pos  int
}

func errorsOf(r *report.Reporter) []diag {
	var out []diag
	for _, d := range r.Diagnostics() {
		out = append(out, diag{d.Error, d.Pos})
	}
	return out
}

func TestEmptyProgram(t *testing.T) {
	got, r := parseProgram("program p; begin end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block (compound (null))))`)
}

func TestVarDeclarations(t *testing.T) {
	got, r := parseProgram("program p; var a, b: integer; c: real; begin a := 1 end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block `+
		`(var-decl (var "a") (type "integer")) `+
		`(var-decl (var "b") (type "integer")) `+
		`(var-decl (var "c") (type "real")) `+
		`(compound (assign (var "a") 1))))`)
}

func TestDeclarationsKeepSourceOrder(t *testing.T) {
	got, r := parseProgram("program p; var a: integer; procedure q; begin end; var b: real; begin end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block `+
		`(var-decl (var "a") (type "integer")) `+
		`(proc "q" (params) (block (compound (null)))) `+
		`(var-decl (var "b") (type "real")) `+
		`(compound (null))))`)
}

func TestProcedureWithParams(t *testing.T) {
	got, r := parseProgram("program p; procedure q(a, b: integer; c: real); begin end; begin q(1, 2, 3.5) end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block `+
		`(proc "q" (params `+
		`(param (var "a") (type "integer")) `+
		`(param (var "b") (type "integer")) `+
		`(param (var "c") (type "real"))) `+
		`(block (compound (null)))) `+
		`(compound (call "q" 1 2 (real "3.5")))))`)
}

func TestCallWithoutArgs(t *testing.T) {
	got, r := parseProgram("program p; begin q() end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block (compound (call "q"))))`)
}

func TestNestedCompound(t *testing.T) {
	got, r := parseProgram("program p; begin begin x := 1 end; y := 2 end.")
	be.Equal(t, r.ErrorCount(), 0)
	be.Equal(t, got, `(program "p" (block (compound (compound (assign (var "x") 1)) (assign (var "y") 2))))`)
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", `(binary "+" 1 (binary "*" 2 3))`},
		{"(1 + 2) * 3", `(binary "*" (binary "+" 1 2) 3)`},
		{"a - b - c", `(binary "-" (binary "-" (var "a") (var "b")) (var "c"))`},
		{"a / b mod c", `(binary "mod" (binary "/" (var "a") (var "b")) (var "c"))`},
		{"-x mod 2", `(binary "mod" (unary "-" (var "x")) 2)`},
		{"7 % 2", `(binary "mod" 7 2)`},
		{"- - 1", `(unary "-" (unary "-" 1))`},
		{"+2.5", `(unary "+" (real "2.5"))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, r := parseExpr(tt.input)
			be.Equal(t, r.ErrorCount(), 0)
			be.Equal(t, got, tt.expected)
		})
	}
}

func TestMissingSemicolonResynchronizes(t *testing.T) {
	got, r := parseProgram("program p; begin x := 1 y := 2 end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 24}})
	be.Equal(t, r.Diagnostics()[0].Message, "expected ';'")
	be.Equal(t, got, `(program "p" (block (compound (assign (var "x") 1))))`)
}

func TestIllegalStatementLead(t *testing.T) {
	got, r := parseProgram("program p; begin 5 end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrIllegalStatement, 17}})
	be.Equal(t, got, `(program "p" (block (compound (null))))`)
}

func TestIdentifierWithoutAssignOrCall(t *testing.T) {
	_, r := parseProgram("program p; begin x end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrIllegalStatement, 17}})
}

func TestSemicolonLedStatement(t *testing.T) {
	got, r := parseProgram("program p; begin ; x := 1 end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrIllegalStatement, 17}})
	be.Equal(t, got, `(program "p" (block (compound (null) (assign (var "x") 1))))`)
}

func TestBadPrimary(t *testing.T) {
	got, r := parseProgram("program p; begin x := ; end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrUnexpectedWord, 22}})
	be.Equal(t, got, `(program "p" (block (compound (assign (var "x") (null)) (null))))`)
}

func TestErrorsAfterRecovery(t *testing.T) {
	_, r := parseProgram("program p; begin a := ); b end.")
	be.Equal(t, errorsOf(r), []diag{
		{report.ErrUnexpectedWord, 22},
		{report.ErrIllegalStatement, 25},
	})
}

func TestTrailingTokens(t *testing.T) {
	_, r := parseProgram("program p; begin end. x")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 22}})
	be.Equal(t, r.Diagnostics()[0].Message, "expected end of file")
}

func TestMissingDot(t *testing.T) {
	_, r := parseProgram("program p; begin end")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 20}})
	be.Equal(t, r.Diagnostics()[0].Message, "expected '.'")
}

func TestMissingProgramHeader(t *testing.T) {
	got, r := parseProgram("begin end.")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 0}})
	be.Equal(t, r.Diagnostics()[0].Message, "expected 'program'")
	be.Equal(t, got, `(program "" (block (compound (null))))`)
}

func TestExpressionErrors(t *testing.T) {
	_, r := parseExpr("1 +")
	be.Equal(t, errorsOf(r), []diag{{report.ErrUnexpectedWord, 3}})

	_, r = parseExpr("1 2")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 2}})

	_, r = parseExpr("(1 + 2")
	be.Equal(t, errorsOf(r), []diag{{report.ErrExpected, 6}})
	be.Equal(t, r.Diagnostics()[0].Message, "expected ')'")
}

func TestNewAppendsEOF(t *testing.T) {
	r := report.New(report.Options{})
	p := New([]lexer.Token{{Type: lexer.NUMBER, Text: "1", Pos: 0}}, r)
	expr := p.ParseExpression()
	be.Equal(t, ast.SExpr(expr), "1")
	be.Equal(t, r.ErrorCount(), 0)
}
