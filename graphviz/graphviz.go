// Package graphviz exports a syntax tree as an undirected DOT graph.
package graphviz

import (
	"fmt"
	"io"
	"strings"

	"github.com/strager/minipas/ast"
)

// Write renders node and its descendants. name labels the whole graph,
// usually with the source file name.
func Write(w io.Writer, name string, node ast.Node) error {
	g := &grapher{}
	fmt.Fprintf(&g.b, "graph {\n\tlabel = %s\n\tfontname = \"Courier New\"\n", quote(name))
	node.Accept(g)
	g.b.WriteString("}\n")
	_, err := io.WriteString(w, g.b.String())
	return err
}

// quote escapes backslashes and double quotes for a DOT string.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

type grapher struct {
	b       strings.Builder
	counter int
	parents []string
}

// node emits a box and an edge from the current parent.
func (g *grapher) node(label string) string {
	id := fmt.Sprintf("n%d", g.counter)
	g.counter++
	fmt.Fprintf(&g.b, "\t%s [label=%s shape=box fontname=\"Courier New\"]\n", id, quote(label))
	if len(g.parents) > 0 {
		fmt.Fprintf(&g.b, "\t%s -- %s\n", g.parents[len(g.parents)-1], id)
	}
	return id
}

// subtree emits a box and visits children beneath it.
func (g *grapher) subtree(label string, children ...ast.Node) {
	g.parents = append(g.parents, g.node(label))
	for _, c := range children {
		c.Accept(g)
	}
	g.parents = g.parents[:len(g.parents)-1]
}

func (g *grapher) VisitProgram(n *ast.Program) {
	g.subtree(fmt.Sprintf("Program: %q", n.Name), n.Block)
}

func (g *grapher) VisitBlock(n *ast.Block) {
	children := make([]ast.Node, 0, len(n.Declarations)+1)
	for _, d := range n.Declarations {
		children = append(children, d)
	}
	g.subtree("Block", append(children, n.Body)...)
}

func (g *grapher) VisitVarDecl(n *ast.VarDecl) {
	g.subtree("VarDecl", n.Var, n.Type)
}

func (g *grapher) VisitParam(n *ast.Param) {
	g.subtree("Param", n.Var, n.Type)
}

func (g *grapher) VisitProcDecl(n *ast.ProcDecl) {
	children := make([]ast.Node, 0, len(n.Params)+1)
	for _, p := range n.Params {
		children = append(children, p)
	}
	g.subtree("ProcDecl: "+n.Name, append(children, n.Block)...)
}

func (g *grapher) VisitVariable(n *ast.Variable) {
	g.node("Variable: " + n.Name)
}

func (g *grapher) VisitTypeRef(n *ast.TypeRef) {
	g.node("Type: " + n.Name)
}

func (g *grapher) VisitCompound(n *ast.Compound) {
	children := make([]ast.Node, len(n.Children))
	for i, s := range n.Children {
		children[i] = s
	}
	g.subtree("Compound", children...)
}

func (g *grapher) VisitAssignment(n *ast.Assignment) {
	g.subtree("Assign", n.Left, n.Right)
}

func (g *grapher) VisitNullStatement(*ast.NullStatement) {
	g.node("NoOp")
}

func (g *grapher) VisitBinaryOp(n *ast.BinaryOp) {
	g.subtree("BinOp: "+ast.OpText(n.Op), n.Left, n.Right)
}

func (g *grapher) VisitUnaryOp(n *ast.UnaryOp) {
	g.subtree("UnaryOp: "+ast.OpText(n.Op), n.Operand)
}

func (g *grapher) VisitNumber(n *ast.Number) {
	g.node("Number: " + n.Value)
}

func (g *grapher) VisitProcCall(n *ast.ProcCall) {
	children := make([]ast.Node, len(n.Args))
	for i, a := range n.Args {
		children[i] = a
	}
	g.subtree("ProcCall: "+n.Name, children...)
}
