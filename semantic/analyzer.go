// Package semantic resolves names against nested scopes and reports static
// errors and warnings.
package semantic

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/logger"
	"github.com/strager/minipas/report"
	"github.com/strager/minipas/symbols"
)

// Analyzer is an ast.Visitor. Declarations are processed in source order,
// so a name is visible only after its declaration.
type Analyzer struct {
	r     *report.Reporter
	table *symbols.Table
	log   *slog.Logger
}

// New returns an analyzer reporting to r.
func New(r *report.Reporter) *Analyzer {
	return &Analyzer{r: r, log: logger.Default()}
}

// WithLogger sets the logger used for debug tracing.
func (a *Analyzer) WithLogger(l *slog.Logger) *Analyzer {
	a.log = l
	return a
}

// Analyze checks prog and returns the populated symbol table. The table and
// the tree are only meaningful to later passes if no errors were reported.
func (a *Analyzer) Analyze(prog *ast.Program) *symbols.Table {
	a.table = symbols.NewTable()
	prog.Accept(a)
	return a.table
}

func quote(name string) string {
	return "'" + name + "'"
}

func (a *Analyzer) define(sym symbols.Symbol) symbols.ID {
	id, err := a.table.Define(sym)
	var redef *symbols.RedefinitionError
	if errors.As(err, &redef) {
		a.r.Error(sym.Pos, report.ErrNameRedefinition, quote(sym.Name))
		if first := a.table.Symbol(redef.Existing); !first.IsBuiltin() {
			a.r.Note(first.Pos, "the first declaration is here")
		}
		return redef.Existing
	}
	a.log.Debug("define symbol", "name", sym.Name, "kind", sym.Kind.String(),
		"scope", a.table.Scope(a.table.Current()).Name)
	return id
}

// resolveType returns the type symbol named by n, or NoID after reporting.
func (a *Analyzer) resolveType(n *ast.TypeRef) symbols.ID {
	if n.Name == "" {
		// Already reported by the parser.
		return symbols.NoID
	}
	id, ok := a.table.Lookup(n.Name)
	if !ok {
		a.r.Error(n.Pos(), report.ErrNameUndefined, quote(n.Name))
		return symbols.NoID
	}
	if !a.table.Symbol(id).IsBuiltin() {
		a.r.Error(n.Pos(), report.ErrNameUndefined, quote(n.Name), "is not a type")
		return symbols.NoID
	}
	return id
}

func (a *Analyzer) warnUnused(scope symbols.ScopeID) {
	for _, id := range a.table.Variables(scope) {
		if sym := a.table.Symbol(id); !sym.Used() {
			a.r.Warning(sym.Pos, report.WarnUnusedVar, quote(sym.Name))
		}
	}
}

func (a *Analyzer) VisitProgram(n *ast.Program) {
	n.Block.Accept(a)
	a.warnUnused(a.table.Current())
}

func (a *Analyzer) VisitBlock(n *ast.Block) {
	for _, decl := range n.Declarations {
		decl.Accept(a)
	}
	n.Body.Accept(a)
}

func (a *Analyzer) VisitVarDecl(n *ast.VarDecl) {
	typ := a.resolveType(n.Type)
	if n.Var.Name == "" {
		return
	}
	a.define(symbols.NewVariable(n.Var.Name, n.Var.Pos(), typ))
}

// VisitParam does nothing. VisitProcDecl defines parameters with the
// types it resolved in the enclosing scope, where a parameter named like a
// type cannot hide it.
func (a *Analyzer) VisitParam(*ast.Param) {}

func (a *Analyzer) VisitProcDecl(n *ast.ProcDecl) {
	params := make([]symbols.Symbol, 0, len(n.Params))
	for _, p := range n.Params {
		params = append(params, symbols.NewParameter(p.Var.Name, p.Var.Pos(), a.resolveType(p.Type)))
	}
	if n.Name != "" {
		a.define(symbols.NewProcedure(n.Name, n.Pos(), params))
	}

	scope := a.table.Enter(n.Name)
	a.log.Debug("enter scope", "name", n.Name, "level", a.table.Scope(scope).Level)
	for _, p := range params {
		if p.Name != "" {
			a.define(p)
		}
	}
	n.Block.Accept(a)
	a.warnUnused(scope)
	a.table.Leave()
	a.log.Debug("leave scope", "name", n.Name)
}

func (a *Analyzer) VisitVariable(n *ast.Variable) {
	id, ok := a.table.Lookup(n.Name)
	if !ok {
		a.r.Error(n.Pos(), report.ErrNameUndefined, quote(n.Name))
		return
	}
	sym := a.table.Symbol(id)
	switch sym.Kind {
	case symbols.KindProcedure:
		a.r.Error(n.Pos(), report.ErrProcedureAsFunction, quote(n.Name))
		return
	case symbols.KindBuiltinType:
		a.r.Error(n.Pos(), report.ErrNameUndefined, quote(n.Name), "is not a variable")
		return
	}
	if a.table.InCurrentScope(id) && sym.Dirty() {
		a.r.Warning(n.Pos(), report.WarnUninitializedVar, quote(n.Name))
	}
	a.table.MarkUsed(id)
}

func (a *Analyzer) VisitTypeRef(n *ast.TypeRef) {
	a.resolveType(n)
}

func (a *Analyzer) VisitCompound(n *ast.Compound) {
	for _, s := range n.Children {
		s.Accept(a)
	}
}

// VisitAssignment checks the right side first, so "x := x" reads x before
// it counts as assigned. The target is not a read.
func (a *Analyzer) VisitAssignment(n *ast.Assignment) {
	n.Right.Accept(a)

	id, err := a.table.ResolveForWrite(n.Left.Name)
	var notAssignable *symbols.NotAssignableError
	switch {
	case errors.Is(err, symbols.ErrUndefined):
		a.r.Error(n.Left.Pos(), report.ErrNameUndefined, quote(n.Left.Name))
	case errors.As(err, &notAssignable):
		a.r.Error(n.Left.Pos(), report.ErrIllegalAssignment)
		if decl := a.table.Symbol(notAssignable.ID); !decl.IsBuiltin() {
			a.r.Note(decl.Pos, "the declaration is here")
		}
	default:
		a.table.MarkAssigned(id)
	}
}

func (a *Analyzer) VisitNullStatement(*ast.NullStatement) {}

func (a *Analyzer) VisitBinaryOp(n *ast.BinaryOp) {
	n.Left.Accept(a)
	n.Right.Accept(a)
}

func (a *Analyzer) VisitUnaryOp(n *ast.UnaryOp) {
	n.Operand.Accept(a)
}

func (a *Analyzer) VisitNumber(n *ast.Number) {
	if !n.IsReal() {
		if _, err := n.Int(); err == nil {
			return
		}
	}
	if _, err := n.Float(); err != nil {
		a.r.Error(n.Pos(), report.ErrCannotParseLiteral, quote(n.Value))
	}
}

func (a *Analyzer) VisitProcCall(n *ast.ProcCall) {
	for _, arg := range n.Args {
		arg.Accept(a)
	}

	id, ok := a.table.Lookup(n.Name)
	if !ok || a.table.Symbol(id).Kind != symbols.KindProcedure {
		a.r.Error(n.Pos(), report.ErrCallingNonProcedure, quote(n.Name))
		return
	}
	if want := len(a.table.Symbol(id).Params); want != len(n.Args) {
		a.r.Error(n.Pos(), report.ErrWrongArgumentsCount, fmt.Sprintf("(expected %d, got %d)", want, len(n.Args)))
	}
}
