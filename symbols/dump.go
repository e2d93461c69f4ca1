package symbols

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

func (t *Table) describe(sym Symbol) string {
	switch sym.Kind {
	case KindBuiltinType:
		return "builtin type"
	case KindVariable:
		return "variable: " + t.TypeName(sym)
	case KindProcedure:
		params := make([]string, len(sym.Params))
		for i, p := range sym.Params {
			params[i] = p.Name + ": " + t.TypeName(p)
		}
		return "procedure(" + strings.Join(params, "; ") + ")"
	default:
		return sym.Kind.String()
	}
}

// String renders every scope with its symbols sorted by name.
func (t *Table) String() string {
	var b strings.Builder
	for i, scope := range t.scopes {
		parent := "none"
		if scope.Parent != NoScope {
			parent = t.scopes[scope.Parent].Name
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "scope %q (level %d, enclosing %s)\n", scope.Name, scope.Level, parent)

		names := make([]string, 0, len(scope.names))
		width := 0
		for name := range scope.names {
			names = append(names, name)
			width = max(width, len(name))
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, name, t.describe(t.symbols[scope.names[name]]))
		}
	}
	return b.String()
}

type yamlDump struct {
	Scopes []yamlScope `yaml:"scopes"`
}

type yamlScope struct {
	Name    string       `yaml:"name"`
	Level   int          `yaml:"level"`
	Parent  string       `yaml:"parent,omitempty"`
	Symbols []yamlSymbol `yaml:"symbols"`
}

type yamlSymbol struct {
	Name   string       `yaml:"name"`
	Kind   string       `yaml:"kind"`
	Pos    *int         `yaml:"pos,omitempty"`
	Type   string       `yaml:"type,omitempty"`
	Used   *bool        `yaml:"used,omitempty"`
	Params []yamlSymbol `yaml:"params,omitempty"`
}

func (t *Table) yamlSymbol(sym Symbol) yamlSymbol {
	y := yamlSymbol{Name: sym.Name, Kind: sym.Kind.String()}
	if sym.Pos >= 0 {
		pos := sym.Pos
		y.Pos = &pos
	}
	switch sym.Kind {
	case KindVariable:
		used := sym.used
		y.Type = t.TypeName(sym)
		y.Used = &used
	case KindProcedure:
		for _, p := range sym.Params {
			param := yamlSymbol{Name: p.Name, Kind: p.Kind.String(), Type: t.TypeName(p)}
			y.Params = append(y.Params, param)
		}
	}
	return y
}

// WriteYAML writes a machine-readable dump of all scopes. Symbols appear in
// definition order.
func (t *Table) WriteYAML(w io.Writer) error {
	var doc yamlDump
	for _, scope := range t.scopes {
		ys := yamlScope{Name: scope.Name, Level: scope.Level, Symbols: []yamlSymbol{}}
		if scope.Parent != NoScope {
			ys.Parent = t.scopes[scope.Parent].Name
		}
		for _, id := range scope.order {
			ys.Symbols = append(ys.Symbols, t.yamlSymbol(t.symbols[id]))
		}
		doc.Scopes = append(doc.Scopes, ys)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode symbol table: %w", err)
	}
	return enc.Close()
}
