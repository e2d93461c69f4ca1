// Package ast defines the syntax tree built by the parser and the Visitor
// protocol every later pass dispatches through.
package ast

import (
	"fmt"
	"strconv"

	"github.com/strager/minipas/lexer"
)

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos is the byte offset used to anchor diagnostics.
	Pos() int
	Accept(v Visitor)
}

// Statement nodes can appear in a compound statement.
type Statement interface {
	Node
	statementNode()
}

// Expression nodes produce a value.
type Expression interface {
	Node
	expressionNode()
}

// Declaration nodes appear in a block before its body.
type Declaration interface {
	Node
	declarationNode()
}

// Visitor has one method per node kind. Passes implement all of them.
type Visitor interface {
	VisitProgram(*Program)
	VisitBlock(*Block)
	VisitVarDecl(*VarDecl)
	VisitParam(*Param)
	VisitProcDecl(*ProcDecl)
	VisitVariable(*Variable)
	VisitTypeRef(*TypeRef)
	VisitCompound(*Compound)
	VisitAssignment(*Assignment)
	VisitNullStatement(*NullStatement)
	VisitBinaryOp(*BinaryOp)
	VisitUnaryOp(*UnaryOp)
	VisitNumber(*Number)
	VisitProcCall(*ProcCall)
}

type Program struct {
	Token lexer.Token // the name
	Name  string
	Block *Block
}

type Block struct {
	Declarations []Declaration
	Body         *Compound
}

// VarDecl declares one variable. "var a, b: integer;" yields two.
type VarDecl struct {
	Var  *Variable
	Type *TypeRef
}

// Param is one formal parameter of a procedure.
type Param struct {
	Var  *Variable
	Type *TypeRef
}

type ProcDecl struct {
	Token  lexer.Token
	Name   string
	Params []*Param
	Block  *Block
}

// Variable is a name in expression or assignment-target position.
type Variable struct {
	Token lexer.Token
	Name  string
}

type TypeRef struct {
	Token lexer.Token
	Name  string
}

type Compound struct {
	Token    lexer.Token // 'begin'
	Children []Statement
}

type Assignment struct {
	Token lexer.Token // ':='
	Left  *Variable
	Right Expression
}

// NullStatement is the empty statement. The parser also uses it as a
// placeholder where a statement or expression could not be parsed.
type NullStatement struct {
	Token lexer.Token
}

type BinaryOp struct {
	Token lexer.Token // the operator
	Op    lexer.TokenType
	Left  Expression
	Right Expression
}

type UnaryOp struct {
	Token   lexer.Token
	Op      lexer.TokenType
	Operand Expression
}

type Number struct {
	Token lexer.Token
	Value string
}

type ProcCall struct {
	Token lexer.Token // the callee name
	Name  string
	Args  []Expression
}

func (n *Program) Pos() int       { return n.Token.Pos }
func (n *Block) Pos() int         { return n.Body.Pos() }
func (n *VarDecl) Pos() int       { return n.Var.Pos() }
func (n *Param) Pos() int         { return n.Var.Pos() }
func (n *ProcDecl) Pos() int      { return n.Token.Pos }
func (n *Variable) Pos() int      { return n.Token.Pos }
func (n *TypeRef) Pos() int       { return n.Token.Pos }
func (n *Compound) Pos() int      { return n.Token.Pos }
func (n *Assignment) Pos() int    { return n.Token.Pos }
func (n *NullStatement) Pos() int { return n.Token.Pos }
func (n *BinaryOp) Pos() int      { return n.Token.Pos }
func (n *UnaryOp) Pos() int       { return n.Token.Pos }
func (n *Number) Pos() int        { return n.Token.Pos }
func (n *ProcCall) Pos() int      { return n.Token.Pos }

func (n *Program) Accept(v Visitor)       { v.VisitProgram(n) }
func (n *Block) Accept(v Visitor)         { v.VisitBlock(n) }
func (n *VarDecl) Accept(v Visitor)       { v.VisitVarDecl(n) }
func (n *Param) Accept(v Visitor)         { v.VisitParam(n) }
func (n *ProcDecl) Accept(v Visitor)      { v.VisitProcDecl(n) }
func (n *Variable) Accept(v Visitor)      { v.VisitVariable(n) }
func (n *TypeRef) Accept(v Visitor)       { v.VisitTypeRef(n) }
func (n *Compound) Accept(v Visitor)      { v.VisitCompound(n) }
func (n *Assignment) Accept(v Visitor)    { v.VisitAssignment(n) }
func (n *NullStatement) Accept(v Visitor) { v.VisitNullStatement(n) }
func (n *BinaryOp) Accept(v Visitor)      { v.VisitBinaryOp(n) }
func (n *UnaryOp) Accept(v Visitor)       { v.VisitUnaryOp(n) }
func (n *Number) Accept(v Visitor)        { v.VisitNumber(n) }
func (n *ProcCall) Accept(v Visitor)      { v.VisitProcCall(n) }

func (*Compound) statementNode()      {}
func (*Assignment) statementNode()    {}
func (*NullStatement) statementNode() {}
func (*ProcCall) statementNode()      {}

func (*Variable) expressionNode()      {}
func (*NullStatement) expressionNode() {}
func (*BinaryOp) expressionNode()      {}
func (*UnaryOp) expressionNode()       {}
func (*Number) expressionNode()        {}

func (*VarDecl) declarationNode()  {}
func (*ProcDecl) declarationNode() {}

// IsReal reports whether the literal is written with a fractional part.
func (n *Number) IsReal() bool {
	for i := 0; i < len(n.Value); i++ {
		if n.Value[i] == '.' {
			return true
		}
	}
	return false
}

// Int parses an integer literal.
func (n *Number) Int() (int64, error) {
	return strconv.ParseInt(n.Value, 10, 64)
}

// Float parses a literal made of digits and dots as a float64.
func (n *Number) Float() (float64, error) {
	for i := 0; i < len(n.Value); i++ {
		if c := n.Value[i]; c != '.' && (c < '0' || c > '9') {
			return 0, fmt.Errorf("malformed number %q", n.Value)
		}
	}
	return strconv.ParseFloat(n.Value, 64)
}

// OpText is the source spelling used by printers for an operator.
func OpText(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.MOD:
		return "mod"
	default:
		return "?"
	}
}
