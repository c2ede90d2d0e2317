package syntax

import "fmt"

// Expr is any node of the expression tree. Every variant carries the source
// line it was parsed from.
type Expr interface {
	Line() int
	String() string
}

// Pos is embedded by every Expr/Stmt node to carry its source line. It is
// exported so that package parse, which builds every node, can populate it
// directly in a struct literal.
type Pos struct {
	LineNo int
}

func (p Pos) Line() int { return p.LineNo }

// PosAt constructs a Pos from a source line number.
func PosAt(line int) Pos { return Pos{LineNo: line} }

// NumberLit is a numeric literal.
type NumberLit struct {
	Pos
	Val float64
}

func (n *NumberLit) String() string { return formatNumber(n.Val) }

// StringLit is a string literal (already unescaped by the lexer).
type StringLit struct {
	Pos
	Val string
}

func (s *StringLit) String() string { return fmt.Sprintf("%q", s.Val) }

// VectorLit is a bracketed list of expressions, `[e1, e2, ...]`.
type VectorLit struct {
	Pos
	Elements []Expr
}

func (v *VectorLit) String() string { return exprList(v.Elements) }

// Variable is a bare identifier reference, including the special names
// $fn/$fa/$fs/$t/$children/$preview/$vpr/$vpt/$vpd/$vpf and — per the
// lexing rules — the literal spellings "true", "false", and "undef", which
// the evaluator recognizes specially rather than the parser.
type Variable struct {
	Pos
	Name string
}

func (v *Variable) String() string { return v.Name }

// Binary is a two-operand operator expression. Op is one of
// "||" "&&" "==" "!=" "<" ">" "<=" ">=" "+" "-" "*" "/" "%".
type Binary struct {
	Pos
	Op   string
	L, R Expr
}

func (b *Binary) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

// Unary is a one-operand prefix operator expression. Op is "!" or "-".
type Unary struct {
	Pos
	Op      string
	Operand Expr
}

func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// Ternary is `cond ? then : els`.
type Ternary struct {
	Pos
	Cond, Then, Else Expr
}

func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.Then, t.Else)
}

// Call is a function invocation, either a built-in or a user-defined
// function.
type Call struct {
	Pos
	Name string
	Args ArgList
}

func (c *Call) String() string { return fmt.Sprintf("%s(%s)", c.Name, c.Args) }

// RangeExpr is `[start:end]` or `[start:step:end]`. It may appear in any
// expression; for statements and list-comprehension generators iterate over
// it.
type RangeExpr struct {
	Pos
	Start, End Expr
	Step       Expr // nil if the 2-element form was used
}

func (r *RangeExpr) String() string {
	if r.Step != nil {
		return fmt.Sprintf("[%s:%s:%s]", r.Start, r.Step, r.End)
	}
	return fmt.Sprintf("[%s:%s]", r.Start, r.End)
}

// Generator is one `for (var = range)` clause of a list comprehension.
type Generator struct {
	Var   string
	Range *RangeExpr
}

// ListComprehension is `[for (...) for (...) if (guard) body]`. Generators
// nest left-to-right; Guard may be nil.
type ListComprehension struct {
	Pos
	Generators []Generator
	Guard      Expr
	Body       Expr
}

func (l *ListComprehension) String() string {
	s := "["
	for _, g := range l.Generators {
		s += fmt.Sprintf("for (%s = %s) ", g.Var, g.Range)
	}
	if l.Guard != nil {
		s += fmt.Sprintf("if (%s) ", l.Guard)
	}
	return s + l.Body.String() + "]"
}

func exprList(es []Expr) string {
	s := "["
	for i, e := range es {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + "]"
}

// Arg is one argument of a call or module/function invocation: either
// positional (Name == "") or named.
type Arg struct {
	Name  string
	Value Expr
}

// ArgList is an ordered list of arguments, mixing positional and named.
type ArgList []Arg

func (a ArgList) String() string {
	s := ""
	for i, arg := range a {
		if i > 0 {
			s += ", "
		}
		if arg.Name != "" {
			s += arg.Name + " = "
		}
		s += arg.Value.String()
	}
	return s
}

// Param is a formal parameter of a module or function definition, with an
// optional default-value expression.
type Param struct {
	Name    string
	Default Expr // nil if required
}
