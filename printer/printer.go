// Package printer formats a syntax tree back into source code.
//
// Output uses four spaces per nesting level and only the parentheses the
// tree shape needs, so parsing the output gives back an equivalent tree.
package printer

import (
	"strings"

	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/lexer"
)

const indentUnit = "    "

// Print formats any node. Programs end with a newline.
func Print(node ast.Node) string {
	p := &printer{}
	node.Accept(p)
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	depth int
	// inProc is set while entering a procedure's block, whose
	// declarations are indented one level deeper than its body.
	inProc bool
}

func (p *printer) indent() {
	p.b.WriteString(strings.Repeat(indentUnit, p.depth))
}

func (p *printer) write(s string) {
	p.b.WriteString(s)
}

func (p *printer) VisitProgram(n *ast.Program) {
	p.write("program " + n.Name + ";\n")
	n.Block.Accept(p)
	p.write(".\n")
}

func (p *printer) VisitBlock(n *ast.Block) {
	top := !p.inProc
	p.inProc = false
	body := p.depth
	if !top {
		p.depth++
	}

	prevProc := false
	for i, decl := range n.Declarations {
		_, isProc := decl.(*ast.ProcDecl)
		if (top && i == 0) || (i > 0 && (isProc || prevProc)) {
			p.write("\n")
		}
		decl.Accept(p)
		prevProc = isProc
	}

	p.depth = body
	if top && len(n.Declarations) > 0 {
		p.write("\n")
	}
	p.indent()
	n.Body.Accept(p)
}

func (p *printer) VisitVarDecl(n *ast.VarDecl) {
	p.indent()
	p.write("var " + n.Var.Name + ": " + n.Type.Name + ";\n")
}

func (p *printer) VisitParam(n *ast.Param) {
	p.write(n.Var.Name + ": " + n.Type.Name)
}

func (p *printer) VisitProcDecl(n *ast.ProcDecl) {
	p.indent()
	p.write("procedure " + n.Name)
	if len(n.Params) > 0 {
		p.write("(")
		for i, param := range n.Params {
			if i > 0 {
				p.write("; ")
			}
			param.Accept(p)
		}
		p.write(")")
	}
	p.write(";\n")
	p.inProc = true
	n.Block.Accept(p)
	p.write(";\n")
}

func (p *printer) VisitVariable(n *ast.Variable) {
	p.write(n.Name)
}

func (p *printer) VisitTypeRef(n *ast.TypeRef) {
	p.write(n.Name)
}

// VisitCompound writes "begin", one statement per line, and "end" with no
// trailing newline. A trailing empty statement becomes a trailing ';'.
func (p *printer) VisitCompound(n *ast.Compound) {
	p.write("begin\n")
	p.depth++

	kids := n.Children
	trailingNull := false
	if len(kids) > 0 {
		if _, ok := kids[len(kids)-1].(*ast.NullStatement); ok {
			trailingNull = true
			kids = kids[:len(kids)-1]
		}
	}
	for i, s := range kids {
		p.indent()
		s.Accept(p)
		if i < len(kids)-1 || trailingNull {
			p.write(";")
		}
		p.write("\n")
	}

	p.depth--
	p.indent()
	p.write("end")
}

func (p *printer) VisitAssignment(n *ast.Assignment) {
	n.Left.Accept(p)
	p.write(" := ")
	n.Right.Accept(p)
}

func (p *printer) VisitNullStatement(*ast.NullStatement) {}

func precedence(e ast.Expression) int {
	switch e := e.(type) {
	case *ast.BinaryOp:
		if e.Op == lexer.PLUS || e.Op == lexer.MINUS {
			return 1
		}
		return 2
	case *ast.UnaryOp:
		return 3
	default:
		return 4
	}
}

func (p *printer) operand(e ast.Expression, parens bool) {
	if parens {
		p.write("(")
	}
	e.Accept(p)
	if parens {
		p.write(")")
	}
}

// VisitBinaryOp parenthesizes a left operand of lower precedence and a
// right operand of lower or equal precedence, since operators are left
// associative.
func (p *printer) VisitBinaryOp(n *ast.BinaryOp) {
	prec := precedence(n)
	p.operand(n.Left, precedence(n.Left) < prec)
	p.write(" " + ast.OpText(n.Op) + " ")
	p.operand(n.Right, precedence(n.Right) <= prec)
}

func (p *printer) VisitUnaryOp(n *ast.UnaryOp) {
	p.write(ast.OpText(n.Op))
	p.operand(n.Operand, precedence(n.Operand) < precedence(n))
}

func (p *printer) VisitNumber(n *ast.Number) {
	p.write(n.Value)
}

func (p *printer) VisitProcCall(n *ast.ProcCall) {
	p.write(n.Name + "(")
	for i, arg := range n.Args {
		if i > 0 {
			p.write(", ")
		}
		arg.Accept(p)
	}
	p.write(")")
}
