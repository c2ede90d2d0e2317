package syntax

import "fmt"

// Stmt is any node of the statement tree. Every variant carries the source
// line it was parsed from.
type Stmt interface {
	Line() int
	String() string
}

// Tree is the immutable root of a parsed script: top-level statements plus
// whatever diagnostics the lexer/parser raised. Diagnostics are carried
// alongside rather than inside Tree.Nodes so that Tree itself stays a pure
// structural value, comparable across two parses of the same source.
type Tree struct {
	Nodes []Stmt
}

func (t *Tree) String() string {
	s := ""
	for i, n := range t.Nodes {
		if i > 0 {
			s += "\n"
		}
		s += n.String()
	}
	return s
}

// Primitive is a call to a built-in shape constructor:
// cube/sphere/cylinder/cone/circle/square/polygon/polyhedron/text/surface.
type Primitive struct {
	Pos
	Op     string
	Params ArgList
}

func (p *Primitive) String() string { return fmt.Sprintf("%s(%s)", p.Op, p.Params) }

// Transform is a call to an affine or 2D/extrusion transform that carries
// zero or more child statements:
// translate/rotate/scale/mirror/multmatrix/color/resize/offset/projection/
// linear_extrude/rotate_extrude.
type Transform struct {
	Pos
	Op       string
	Params   ArgList
	Children []Stmt
}

func (t *Transform) String() string {
	return fmt.Sprintf("%s(%s) { %d child(ren) }", t.Op, t.Params, len(t.Children))
}

// Boolean is a CSG combination: union/difference/intersection/hull/minkowski.
type Boolean struct {
	Pos
	Op       string
	Children []Stmt
}

func (b *Boolean) String() string {
	return fmt.Sprintf("%s() { %d child(ren) }", b.Op, len(b.Children))
}

// ModuleDef defines a user module.
type ModuleDef struct {
	Pos
	Name   string
	Params []Param
	Body   []Stmt
}

func (m *ModuleDef) String() string { return fmt.Sprintf("module %s(...) { ... }", m.Name) }

// FunctionDef defines a user function: a single expression body.
type FunctionDef struct {
	Pos
	Name   string
	Params []Param
	Expr   Expr
}

func (f *FunctionDef) String() string { return fmt.Sprintf("function %s(...) = %s;", f.Name, f.Expr) }

// ModuleCall invokes a user-defined module, passing Children as its child
// block.
type ModuleCall struct {
	Pos
	Name     string
	Params   ArgList
	Children []Stmt
}

func (m *ModuleCall) String() string {
	return fmt.Sprintf("%s(%s) { %d child(ren) }", m.Name, m.Params, len(m.Children))
}

// If is a conditional statement. Else is nil if there was no else-clause.
type If struct {
	Pos
	Cond Expr
	Then []Stmt
	Else []Stmt
}

func (i *If) String() string { return fmt.Sprintf("if (%s) { ... }", i.Cond) }

// For iterates Var over a range, unioning each iteration's geometry.
type For struct {
	Pos
	Var   string
	Range Expr
	Body  []Stmt
}

func (f *For) String() string { return fmt.Sprintf("for (%s = %s) { ... }", f.Var, f.Range) }

// IntersectionFor iterates like For but combines iterations via
// intersection instead of union.
type IntersectionFor struct {
	Pos
	Var   string
	Range Expr
	Body  []Stmt
}

func (f *IntersectionFor) String() string {
	return fmt.Sprintf("intersection_for (%s = %s) { ... }", f.Var, f.Range)
}

// Binding is one `name = expr` clause of a Let statement.
type Binding struct {
	Name string
	Expr Expr
}

// Let evaluates Bindings against a forked frame, then evaluates Body in it.
type Let struct {
	Pos
	Bindings []Binding
	Body     []Stmt
}

func (l *Let) String() string { return "let (...) { ... }" }

// Assignment binds Name to Expr's value in the current frame, evaluated in
// source order (no hoisting, unlike ModuleDef/FunctionDef).
type Assignment struct {
	Pos
	Name string
	Expr Expr
}

func (a *Assignment) String() string { return fmt.Sprintf("%s = %s;", a.Name, a.Expr) }

// Echo prints its evaluated values; produces no geometry.
type Echo struct {
	Pos
	Values []Expr
}

func (e *Echo) String() string { return fmt.Sprintf("echo(%s);", exprListStr(e.Values)) }

// Assert records a diagnostic if Cond is falsy. Message is nil if omitted.
type Assert struct {
	Pos
	Cond    Expr
	Message Expr
}

func (a *Assert) String() string { return fmt.Sprintf("assert(%s);", a.Cond) }

// Import brings in another file's definitions per Kind
// ("import"/"include"/"use").
type Import struct {
	Pos
	Kind     string
	Filename string
}

func (i *Import) String() string { return fmt.Sprintf("%s <%s>;", i.Kind, i.Filename) }

// Modifier applies a display-modifier glyph ('!', '#', '%', '*') to Child.
type Modifier struct {
	Pos
	Kind  string
	Child Stmt
}

func (m *Modifier) String() string { return m.Kind + m.Child.String() }

// ChildrenCall is a `children()` or `children(i)` statement-position call
// inside a module body.
type ChildrenCall struct {
	Pos
	Args []Expr
}

func (c *ChildrenCall) String() string { return fmt.Sprintf("children(%s)", exprListStr(c.Args)) }

func exprListStr(es []Expr) string {
	s := ""
	for i, e := range es {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s
}
