package ast

import (
	"strconv"
	"strings"
)

// SExpr converts a node to its s-expression form, as used by tests.
func SExpr(node Node) string {
	d := &sexprDumper{}
	node.Accept(d)
	return d.buf.String()
}

type sexprDumper struct {
	buf strings.Builder
}

func (d *sexprDumper) open(head string) {
	d.buf.WriteString("(" + head)
}

func (d *sexprDumper) child(n Node) {
	d.buf.WriteByte(' ')
	n.Accept(d)
}

func (d *sexprDumper) VisitProgram(n *Program) {
	d.open("program " + strconv.Quote(n.Name))
	d.child(n.Block)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitBlock(n *Block) {
	d.open("block")
	for _, decl := range n.Declarations {
		d.child(decl)
	}
	d.child(n.Body)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitVarDecl(n *VarDecl) {
	d.open("var-decl")
	d.child(n.Var)
	d.child(n.Type)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitParam(n *Param) {
	d.open("param")
	d.child(n.Var)
	d.child(n.Type)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitProcDecl(n *ProcDecl) {
	d.open("proc " + strconv.Quote(n.Name) + " (params")
	for _, p := range n.Params {
		d.child(p)
	}
	d.buf.WriteByte(')')
	d.child(n.Block)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitVariable(n *Variable) {
	d.buf.WriteString("(var " + strconv.Quote(n.Name) + ")")
}

func (d *sexprDumper) VisitTypeRef(n *TypeRef) {
	d.buf.WriteString("(type " + strconv.Quote(n.Name) + ")")
}

func (d *sexprDumper) VisitCompound(n *Compound) {
	d.open("compound")
	for _, s := range n.Children {
		d.child(s)
	}
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitAssignment(n *Assignment) {
	d.open("assign")
	d.child(n.Left)
	d.child(n.Right)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitNullStatement(*NullStatement) {
	d.buf.WriteString("(null)")
}

func (d *sexprDumper) VisitBinaryOp(n *BinaryOp) {
	d.open("binary " + strconv.Quote(OpText(n.Op)))
	d.child(n.Left)
	d.child(n.Right)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitUnaryOp(n *UnaryOp) {
	d.open("unary " + strconv.Quote(OpText(n.Op)))
	d.child(n.Operand)
	d.buf.WriteByte(')')
}

func (d *sexprDumper) VisitNumber(n *Number) {
	if n.IsReal() {
		d.buf.WriteString("(real " + strconv.Quote(n.Value) + ")")
		return
	}
	d.buf.WriteString(n.Value)
}

func (d *sexprDumper) VisitProcCall(n *ProcCall) {
	d.open("call " + strconv.Quote(n.Name))
	for _, arg := range n.Args {
		d.child(arg)
	}
	d.buf.WriteByte(')')
}
