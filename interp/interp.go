// Package interp evaluates an analyzed program by walking its syntax tree.
//
// Only programs with no recorded errors may be run. Division by zero is
// reported as a fatal diagnostic and stops the run.
package interp

import (
	"errors"
	"log/slog"
	"math"

	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/logger"
	"github.com/strager/minipas/report"
)

// MaxDepth bounds procedure recursion.
const MaxDepth = 10000

// ErrStackOverflow is returned when calls nest deeper than MaxDepth.
var ErrStackOverflow = errors.New("call stack overflow")

type overflow struct{}

type Interpreter struct {
	r     *report.Reporter
	log   *slog.Logger
	stack CallStack
	acc   Value

	program *ActivationRecord
}

func New(r *report.Reporter) *Interpreter {
	return &Interpreter{r: r, log: logger.Default()}
}

func (in *Interpreter) WithLogger(l *slog.Logger) *Interpreter {
	in.log = l
	return in
}

// Run evaluates prog and returns the program's activation record as it was
// when evaluation ended, including after a fatal stop.
func (in *Interpreter) Run(prog *ast.Program) (rec *ActivationRecord, err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case *report.StopExecution:
				err = e
			case overflow:
				err = ErrStackOverflow
			default:
				panic(e)
			}
		}
		rec = in.program
	}()
	prog.Accept(in)
	return in.program, nil
}

// Stack exposes the call stack, mainly for tests and tracing.
func (in *Interpreter) Stack() *CallStack {
	return &in.stack
}

func (in *Interpreter) VisitProgram(n *ast.Program) {
	in.program = newRecord(n.Name, KindProgram, 1, nil)
	in.stack.Push(in.program)
	n.Block.Accept(in)
	in.stack.Pop()
}

func (in *Interpreter) VisitBlock(n *ast.Block) {
	for _, decl := range n.Declarations {
		decl.Accept(in)
	}
	n.Body.Accept(in)
}

func zeroOf(typeName string) Value {
	if typeName == "real" {
		return RealValue(0)
	}
	return IntValue(0)
}

func (in *Interpreter) VisitVarDecl(n *ast.VarDecl) {
	in.stack.Peek().Set(n.Var.Name, zeroOf(n.Type.Name))
}

func (in *Interpreter) VisitParam(n *ast.Param) {
	in.stack.Peek().Set(n.Var.Name, zeroOf(n.Type.Name))
}

func (in *Interpreter) VisitProcDecl(n *ast.ProcDecl) {
	in.stack.Peek().procs[n.Name] = n
}

func (in *Interpreter) VisitVariable(n *ast.Variable) {
	if ar := in.stack.Peek().lookup(n.Name); ar != nil {
		in.acc = ar.members[n.Name]
		return
	}
	in.acc = IntValue(0)
}

func (in *Interpreter) VisitTypeRef(*ast.TypeRef) {}

func (in *Interpreter) VisitCompound(n *ast.Compound) {
	for _, s := range n.Children {
		s.Accept(in)
	}
}

func (in *Interpreter) VisitAssignment(n *ast.Assignment) {
	n.Right.Accept(in)
	cur := in.stack.Peek()
	if ar := cur.lookup(n.Left.Name); ar != nil {
		ar.Set(n.Left.Name, in.acc)
		return
	}
	cur.Set(n.Left.Name, in.acc)
}

func (in *Interpreter) VisitNullStatement(*ast.NullStatement) {
	in.acc = IntValue(0)
}

func (in *Interpreter) VisitBinaryOp(n *ast.BinaryOp) {
	n.Left.Accept(in)
	left := in.acc
	n.Right.Accept(in)
	right := in.acc

	if left.IsReal || right.IsReal {
		in.acc = RealValue(in.realOp(n, left.Float(), right.Float()))
	} else {
		in.acc = IntValue(in.intOp(n, left.Int, right.Int))
	}
}

func (in *Interpreter) intOp(n *ast.BinaryOp, a, b int64) int64 {
	switch n.Op {
	case lexer.PLUS:
		return a + b
	case lexer.MINUS:
		return a - b
	case lexer.STAR:
		return a * b
	case lexer.SLASH, lexer.MOD:
		if b == 0 {
			in.r.Fatal(n.Pos(), report.ErrDivisionByZero)
		}
		if n.Op == lexer.SLASH {
			return a / b
		}
		return a % b
	}
	panic("interp: unknown operator " + n.Op.String())
}

func (in *Interpreter) realOp(n *ast.BinaryOp, a, b float64) float64 {
	switch n.Op {
	case lexer.PLUS:
		return a + b
	case lexer.MINUS:
		return a - b
	case lexer.STAR:
		return a * b
	case lexer.SLASH, lexer.MOD:
		if b == 0 {
			in.r.Fatal(n.Pos(), report.ErrDivisionByZero)
		}
		if n.Op == lexer.SLASH {
			return a / b
		}
		return math.Mod(a, b)
	}
	panic("interp: unknown operator " + n.Op.String())
}

func (in *Interpreter) VisitUnaryOp(n *ast.UnaryOp) {
	n.Operand.Accept(in)
	if n.Op != lexer.MINUS {
		return
	}
	if in.acc.IsReal {
		in.acc.Real = -in.acc.Real
	} else {
		in.acc.Int = -in.acc.Int
	}
}

func (in *Interpreter) VisitNumber(n *ast.Number) {
	if !n.IsReal() {
		if i, err := n.Int(); err == nil {
			in.acc = IntValue(i)
			return
		}
	}
	f, _ := n.Float()
	in.acc = RealValue(f)
}

// VisitProcCall evaluates the arguments in the caller, then runs the body
// in a new record linked to the record the procedure was declared in.
func (in *Interpreter) VisitProcCall(n *ast.ProcCall) {
	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		arg.Accept(in)
		args[i] = in.acc
	}

	proc, declaredIn := in.stack.Peek().lookupProc(n.Name)
	if proc == nil {
		return
	}
	if in.stack.Len() >= MaxDepth {
		panic(overflow{})
	}

	ar := newRecord(proc.Name, KindProcedure, declaredIn.Level+1, declaredIn)
	in.log.Debug("call", "procedure", proc.Name, "depth", in.stack.Len())
	in.stack.Push(ar)
	for i, p := range proc.Params {
		p.Accept(in)
		if i < len(args) {
			ar.Set(p.Var.Name, args[i])
		}
	}
	proc.Block.Accept(in)
	in.stack.Pop()
}
