package interp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/strager/minipas/ast"
)

// Value is an integer or a real number.
type Value struct {
	IsReal bool
	Int    int64
	Real   float64
}

func IntValue(i int64) Value    { return Value{Int: i} }
func RealValue(f float64) Value { return Value{IsReal: true, Real: f} }

// Float returns v as a float64, converting integers.
func (v Value) Float() float64 {
	if v.IsReal {
		return v.Real
	}
	return float64(v.Int)
}

// String formats integers plainly and reals with at least one decimal.
func (v Value) String() string {
	if !v.IsReal {
		return strconv.FormatInt(v.Int, 10)
	}
	s := strconv.FormatFloat(v.Real, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

type RecordKind int

const (
	KindProgram RecordKind = iota
	KindProcedure
)

func (k RecordKind) String() string {
	if k == KindProgram {
		return "PROGRAM"
	}
	return "PROCEDURE"
}

// ActivationRecord holds the variables of one running program or
// procedure block.
type ActivationRecord struct {
	Name  string
	Kind  RecordKind
	Level int

	members map[string]Value
	procs   map[string]*ast.ProcDecl
	// link is the record of the block the procedure was declared in.
	link *ActivationRecord
}

func newRecord(name string, kind RecordKind, level int, link *ActivationRecord) *ActivationRecord {
	return &ActivationRecord{
		Name:    name,
		Kind:    kind,
		Level:   level,
		members: make(map[string]Value),
		procs:   make(map[string]*ast.ProcDecl),
		link:    link,
	}
}

// Get returns a member of this record only.
func (ar *ActivationRecord) Get(name string) (Value, bool) {
	v, ok := ar.members[name]
	return v, ok
}

func (ar *ActivationRecord) Set(name string, v Value) {
	ar.members[name] = v
}

// Names lists the members in sorted order.
func (ar *ActivationRecord) Names() []string {
	names := make([]string, 0, len(ar.members))
	for name := range ar.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members formats one "name = value" line per member.
func (ar *ActivationRecord) Members() string {
	var b strings.Builder
	for _, name := range ar.Names() {
		fmt.Fprintf(&b, "%s = %s\n", name, ar.members[name])
	}
	return b.String()
}

func (ar *ActivationRecord) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s %s\n", ar.Level, ar.Kind, ar.Name)
	for _, name := range ar.Names() {
		fmt.Fprintf(&b, "    %s = %s\n", name, ar.members[name])
	}
	return b.String()
}

// lookup finds the record defining name by following static links.
func (ar *ActivationRecord) lookup(name string) *ActivationRecord {
	for r := ar; r != nil; r = r.link {
		if _, ok := r.members[name]; ok {
			return r
		}
	}
	return nil
}

func (ar *ActivationRecord) lookupProc(name string) (*ast.ProcDecl, *ActivationRecord) {
	for r := ar; r != nil; r = r.link {
		if proc, ok := r.procs[name]; ok {
			return proc, r
		}
	}
	return nil, nil
}

// CallStack is the stack of active records, innermost last.
type CallStack struct {
	records []*ActivationRecord
}

func (s *CallStack) Push(ar *ActivationRecord) {
	s.records = append(s.records, ar)
}

func (s *CallStack) Pop() *ActivationRecord {
	ar := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return ar
}

// Peek returns the innermost record, or nil if the stack is empty.
func (s *CallStack) Peek() *ActivationRecord {
	if len(s.records) == 0 {
		return nil
	}
	return s.records[len(s.records)-1]
}

func (s *CallStack) Len() int {
	return len(s.records)
}

func (s *CallStack) String() string {
	var b strings.Builder
	b.WriteString("CALL STACK:\n")
	for _, ar := range s.records {
		b.WriteString(ar.String())
	}
	return b.String()
}
