// Package symbols implements the scope chain used by semantic analysis.
//
// Symbols and scopes live in one arena owned by a Table and are addressed
// by index. A scope left with Leave stays in the arena, so dumps can still
// show it.
package symbols

import (
	"errors"
	"fmt"
	"sort"
)

// ID addresses a Symbol in a Table.
type ID int

// NoID marks a missing symbol, such as the type of a variable whose type
// name did not resolve.
const NoID ID = -1

// ScopeID addresses a Scope in a Table.
type ScopeID int

const NoScope ScopeID = -1

type Kind int

const (
	KindBuiltinType Kind = iota
	KindVariable
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindBuiltinType:
		return "type"
	case KindVariable:
		return "variable"
	case KindProcedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// Symbol is a named entity. Dirty and Used are only changed through
// Table.MarkAssigned and Table.MarkUsed.
type Symbol struct {
	Name string
	Kind Kind
	// Pos is the declaration offset, or -1 for built-ins.
	Pos int
	// Type is the variable's type symbol.
	Type ID
	// Params holds copies of a procedure's parameter symbols.
	Params []Symbol

	scope ScopeID
	dirty bool
	used  bool
}

// NewVariable returns a variable that has not been assigned yet.
func NewVariable(name string, pos int, typ ID) Symbol {
	return Symbol{Name: name, Kind: KindVariable, Pos: pos, Type: typ, dirty: true}
}

// NewParameter returns a variable that starts out initialized.
func NewParameter(name string, pos int, typ ID) Symbol {
	return Symbol{Name: name, Kind: KindVariable, Pos: pos, Type: typ}
}

// NewProcedure copies params into the returned symbol.
func NewProcedure(name string, pos int, params []Symbol) Symbol {
	return Symbol{Name: name, Kind: KindProcedure, Pos: pos, Type: NoID, Params: append([]Symbol(nil), params...)}
}

func newBuiltinType(name string) Symbol {
	return Symbol{Name: name, Kind: KindBuiltinType, Pos: -1, Type: NoID}
}

func (s Symbol) Dirty() bool      { return s.dirty }
func (s Symbol) Used() bool       { return s.used }
func (s Symbol) Scope() ScopeID   { return s.scope }
func (s Symbol) IsBuiltin() bool  { return s.Kind == KindBuiltinType }
func (s Symbol) IsVariable() bool { return s.Kind == KindVariable }

// Scope is one level of the chain.
type Scope struct {
	Name   string
	Level  int
	Parent ScopeID

	names map[string]ID
	order []ID
}

// ErrUndefined is returned for names not found in any enclosing scope.
var ErrUndefined = errors.New("undefined identifier")

// RedefinitionError is returned by Define when the name already exists in
// the current scope. The first definition is kept.
type RedefinitionError struct {
	Name     string
	Existing ID
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("%q is already defined in this scope", e.Name)
}

// NotAssignableError is returned by ResolveForWrite when the name resolves
// to something other than a variable.
type NotAssignableError struct {
	Name string
	ID   ID
	Kind Kind
}

func (e *NotAssignableError) Error() string {
	return fmt.Sprintf("%q is a %s, not a variable", e.Name, e.Kind)
}

// Table is the symbol arena plus the current position in the scope chain.
type Table struct {
	symbols []Symbol
	scopes  []Scope
	current ScopeID
}

// GlobalScopeName is the name of the outermost scope.
const GlobalScopeName = "global"

// NewTable returns a table positioned at the global scope (level 1) with
// the built-in types integer and real defined.
func NewTable() *Table {
	t := &Table{current: NoScope}
	t.Enter(GlobalScopeName)
	for _, name := range []string{"integer", "real"} {
		if _, err := t.Define(newBuiltinType(name)); err != nil {
			panic(err)
		}
	}
	return t
}

// Symbol returns a copy of the symbol with the given id.
func (t *Table) Symbol(id ID) Symbol {
	return t.symbols[id]
}

// Scope returns a copy of the scope header. Its name map is shared.
func (t *Table) Scope(id ScopeID) Scope {
	return t.scopes[id]
}

// Current returns the innermost active scope.
func (t *Table) Current() ScopeID {
	return t.current
}

// ScopeCount is the number of scopes ever entered.
func (t *Table) ScopeCount() int {
	return len(t.scopes)
}

// Enter pushes a child of the current scope one level deeper.
func (t *Table) Enter(name string) ScopeID {
	level := 1
	if t.current != NoScope {
		level = t.scopes[t.current].Level + 1
	}
	t.scopes = append(t.scopes, Scope{
		Name:   name,
		Level:  level,
		Parent: t.current,
		names:  make(map[string]ID),
	})
	t.current = ScopeID(len(t.scopes) - 1)
	return t.current
}

// Leave makes the parent of the current scope current again.
func (t *Table) Leave() {
	if t.current == NoScope {
		panic("symbols: Leave without Enter")
	}
	t.current = t.scopes[t.current].Parent
}

// Define inserts sym into the current scope.
func (t *Table) Define(sym Symbol) (ID, error) {
	scope := &t.scopes[t.current]
	if existing, ok := scope.names[sym.Name]; ok {
		return existing, &RedefinitionError{Name: sym.Name, Existing: existing}
	}
	sym.scope = t.current
	t.symbols = append(t.symbols, sym)
	id := ID(len(t.symbols) - 1)
	scope.names[sym.Name] = id
	scope.order = append(scope.order, id)
	return id, nil
}

// Lookup searches from the current scope outwards.
func (t *Table) Lookup(name string) (ID, bool) {
	for s := t.current; s != NoScope; s = t.scopes[s].Parent {
		if id, ok := t.scopes[s].names[name]; ok {
			return id, true
		}
	}
	return NoID, false
}

// LookupLocal searches the current scope only.
func (t *Table) LookupLocal(name string) (ID, bool) {
	id, ok := t.scopes[t.current].names[name]
	if !ok {
		return NoID, false
	}
	return id, true
}

// ResolveForWrite finds the variable an assignment to name writes.
// The returned ID is valid with a *NotAssignableError too.
func (t *Table) ResolveForWrite(name string) (ID, error) {
	id, ok := t.Lookup(name)
	if !ok {
		return NoID, fmt.Errorf("%q: %w", name, ErrUndefined)
	}
	sym := t.symbols[id]
	if sym.Kind != KindVariable {
		return id, &NotAssignableError{Name: name, ID: id, Kind: sym.Kind}
	}
	return id, nil
}

func (t *Table) MarkUsed(id ID) {
	t.symbols[id].used = true
}

// MarkAssigned records that the variable holds a value.
func (t *Table) MarkAssigned(id ID) {
	t.symbols[id].dirty = false
}

// InCurrentScope reports whether id was defined in the current scope.
func (t *Table) InCurrentScope(id ID) bool {
	return t.symbols[id].scope == t.current
}

// Variables lists the variables of scope ordered by declaration position.
func (t *Table) Variables(scope ScopeID) []ID {
	var ids []ID
	for _, id := range t.scopes[scope].order {
		if t.symbols[id].Kind == KindVariable {
			ids = append(ids, id)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return t.symbols[ids[i]].Pos < t.symbols[ids[j]].Pos
	})
	return ids
}

// Symbols lists every symbol of scope in definition order.
func (t *Table) Symbols(scope ScopeID) []ID {
	return append([]ID(nil), t.scopes[scope].order...)
}

// TypeName is the name of a variable's type, or "?" if unresolved.
func (t *Table) TypeName(sym Symbol) string {
	if sym.Type == NoID {
		return "?"
	}
	return t.symbols[sym.Type].Name
}
