// Package eval implements the kernel's two tree-walking evaluators: the
// expression evaluator (this file and builtins.go) and the statement
// evaluator (stmt.go), which drives the dispatcher to build geometry.
package eval

import (
	"context"
	"io"

	"github.com/dekarrin/scadkernel/internal/cache"
	"github.com/dekarrin/scadkernel/internal/dispatch"
	"github.com/dekarrin/scadkernel/internal/scaderr"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// maxRecursionDepth bounds user function and module call nesting; exceeding
// it raises a recursion_limit diagnostic rather than overflowing the Go
// stack.
const maxRecursionDepth = 100

// maxComprehensionElements and maxComprehensionGeneratorSteps bound a
// single list comprehension's output size and per-generator iteration
// count, so a runaway range (`[for (i = [0:0.00001:1e9]) i]`) fails fast
// with a resource_limit diagnostic instead of exhausting memory.
const (
	maxComprehensionElements      = 10000
	maxComprehensionGeneratorSteps = 1000
)

// Evaluator holds everything shared across one evaluation job: the
// dispatcher it drives to build geometry, the caches it memoizes through,
// the diagnostics list it appends to, and the deadline it checks against.
type Evaluator struct {
	Ctx      context.Context
	Dispatch *dispatch.Dispatcher
	Caches   *cache.Caches
	Diags    scaderr.Diags

	// Importer resolves import/include/use statements; nil disables them
	// (each one raises an import_error diagnostic instead).
	Importer Importer
	// EchoOut is where Echo statements print; os.Stdout when nil.
	EchoOut io.Writer

	depth int
}

// New builds an Evaluator. ctx may carry a deadline; Dispatch must not be
// nil. Caches may be nil, in which case trig memoization is simply
// skipped.
func New(ctx context.Context, d *dispatch.Dispatcher, caches *cache.Caches) *Evaluator {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Evaluator{Ctx: ctx, Dispatch: d, Caches: caches}
}

// checkDeadline appends a timeout diagnostic and returns false if the job's
// context has been cancelled or its deadline has passed. Callers check this
// at statement boundaries, for-loop iterations, and list-comprehension
// iterations; individual kernel calls have no check of their own.
func (e *Evaluator) checkDeadline(line int) bool {
	select {
	case <-e.Ctx.Done():
		e.Diags = append(e.Diags, scaderr.At(scaderr.Timeout, line, 0, "evaluation deadline exceeded"))
		return false
	default:
		return true
	}
}

func (e *Evaluator) errorf(line int, code scaderr.Kind, format string, args ...interface{}) {
	e.Diags = append(e.Diags, scaderr.At(code, line, 0, format, args...))
}

// EvalExpr evaluates an expression tree node against env, returning undef
// (with a diagnostic appended) for any node type or operation it cannot
// make sense of rather than panicking.
func (e *Evaluator) EvalExpr(expr syntax.Expr, env *syntax.Env) syntax.Value {
	if expr == nil {
		return syntax.Undef
	}
	switch n := expr.(type) {
	case *syntax.NumberLit:
		return syntax.NumberOf(n.Val)
	case *syntax.StringLit:
		return syntax.StringOf(n.Val)
	case *syntax.VectorLit:
		out := make([]syntax.Value, len(n.Elements))
		for i, el := range n.Elements {
			out[i] = e.EvalExpr(el, env)
		}
		return syntax.VectorOf(out)
	case *syntax.Variable:
		return e.evalVariable(n, env)
	case *syntax.Unary:
		v := e.EvalExpr(n.Operand, env)
		if n.Op == "!" {
			return v.Not()
		}
		return v.Negate()
	case *syntax.Binary:
		return e.evalBinary(n, env)
	case *syntax.Ternary:
		cond := e.EvalExpr(n.Cond, env)
		if cond.Bool() {
			return e.EvalExpr(n.Then, env)
		}
		return e.EvalExpr(n.Else, env)
	case *syntax.Call:
		return e.evalCall(n, env)
	case *syntax.RangeExpr:
		return e.evalRangeExpr(n, env)
	case *syntax.ListComprehension:
		return e.evalListComprehension(n, env)
	default:
		e.errorf(expr.Line(), scaderr.TypeError, "unrecognized expression node")
		return syntax.Undef
	}
}

func (e *Evaluator) evalVariable(n *syntax.Variable, env *syntax.Env) syntax.Value {
	switch n.Name {
	case "true":
		return syntax.BoolOf(true)
	case "false":
		return syntax.BoolOf(false)
	case "undef":
		return syntax.Undef
	}
	return env.Lookup(n.Name)
}

func (e *Evaluator) evalBinary(n *syntax.Binary, env *syntax.Env) syntax.Value {
	// || and && short-circuit: the right operand is only evaluated when it
	// can affect the result.
	if n.Op == "||" {
		l := e.EvalExpr(n.L, env)
		if l.Bool() {
			return syntax.BoolOf(true)
		}
		return syntax.BoolOf(e.EvalExpr(n.R, env).Bool())
	}
	if n.Op == "&&" {
		l := e.EvalExpr(n.L, env)
		if !l.Bool() {
			return syntax.BoolOf(false)
		}
		return syntax.BoolOf(e.EvalExpr(n.R, env).Bool())
	}

	l := e.EvalExpr(n.L, env)
	r := e.EvalExpr(n.R, env)
	switch n.Op {
	case "==":
		return syntax.BoolOf(l.Equal(r))
	case "!=":
		return syntax.BoolOf(!l.Equal(r))
	case "<":
		return l.LessThan(r)
	case ">":
		return l.GreaterThan(r)
	case "<=":
		return l.LessEqual(r)
	case ">=":
		return l.GreaterEqual(r)
	case "+":
		return l.Add(r)
	case "-":
		return l.Subtract(r)
	case "*":
		return l.Multiply(r)
	case "/":
		return l.Divide(r)
	case "%":
		return l.Mod(r)
	default:
		e.errorf(n.Line(), scaderr.TypeError, "unknown operator %q", n.Op)
		return syntax.Undef
	}
}

func (e *Evaluator) evalArgs(args syntax.ArgList, env *syntax.Env) []syntax.Value {
	out := make([]syntax.Value, len(args))
	for i, a := range args {
		out[i] = e.EvalExpr(a.Value, env)
	}
	return out
}

func (e *Evaluator) evalCall(n *syntax.Call, env *syntax.Env) syntax.Value {
	if fn, ok := builtins[n.Name]; ok {
		return fn(e, e.evalArgs(n.Args, env))
	}
	def, ok := env.LookupFunc(n.Name)
	if !ok {
		e.errorf(n.Line(), scaderr.UnknownIdentifier, "unknown function %q", n.Name)
		return syntax.Undef
	}
	if e.depth >= maxRecursionDepth {
		e.errorf(n.Line(), scaderr.RecursionLimit, "recursion limit exceeded calling %q", n.Name)
		return syntax.Undef
	}
	call := env.Fork()
	bindParams(call, def.Params, n.Args, env, e)
	e.depth++
	result := e.EvalExpr(def.Expr, call)
	e.depth--
	return result
}

// bindParams binds a module/function's formal parameters against an
// argument list: named arguments bind by name, remaining positional
// arguments fill unbound parameters left to right, and any parameter still
// unbound falls back to its default expression (evaluated in the callee's
// own frame, so defaults can reference earlier parameters) or undef.
func bindParams(callFrame *syntax.Env, params []syntax.Param, args syntax.ArgList, callerEnv *syntax.Env, e *Evaluator) {
	bound := map[string]bool{}
	var positional []syntax.Expr
	for _, a := range args {
		if a.Name == "" {
			positional = append(positional, a.Value)
			continue
		}
		callFrame.Bind(a.Name, e.EvalExpr(a.Value, callerEnv))
		bound[a.Name] = true
	}
	pi := 0
	for _, p := range params {
		if bound[p.Name] {
			continue
		}
		if pi < len(positional) {
			callFrame.Bind(p.Name, e.EvalExpr(positional[pi], callerEnv))
			pi++
			continue
		}
		if p.Default != nil {
			callFrame.Bind(p.Name, e.EvalExpr(p.Default, callFrame))
		} else {
			callFrame.Bind(p.Name, syntax.Undef)
		}
	}
}

func (e *Evaluator) evalRangeExpr(n *syntax.RangeExpr, env *syntax.Env) syntax.Value {
	start := e.EvalExpr(n.Start, env).Number()
	end := e.EvalExpr(n.End, env).Number()
	step := 1.0
	if n.Step != nil {
		step = e.EvalExpr(n.Step, env).Number()
	}
	return syntax.RangeOf(syntax.Range{Start: start, Step: step, End: end})
}

// rangeValues materializes a range value into its concrete element
// sequence, honoring a zero or sign-mismatched step by producing no
// elements (rather than looping forever), per the language's documented
// boundary behavior for degenerate ranges. A range that would exceed
// maxComprehensionGeneratorSteps is truncated and raises a resource_limit
// diagnostic at line rather than silently dropping the remainder.
func (e *Evaluator) rangeValues(r syntax.Range, line int) []float64 {
	if r.Step == 0 {
		return nil
	}
	var out []float64
	if r.Step > 0 {
		for v := r.Start; v <= r.End+1e-9; v += r.Step {
			if len(out) >= maxComprehensionGeneratorSteps {
				e.errorf(line, scaderr.ResourceLimit, "range generator exceeded %d steps", maxComprehensionGeneratorSteps)
				break
			}
			out = append(out, v)
		}
	} else {
		for v := r.Start; v >= r.End-1e-9; v += r.Step {
			if len(out) >= maxComprehensionGeneratorSteps {
				e.errorf(line, scaderr.ResourceLimit, "range generator exceeded %d steps", maxComprehensionGeneratorSteps)
				break
			}
			out = append(out, v)
		}
	}
	return out
}

func (e *Evaluator) evalListComprehension(n *syntax.ListComprehension, env *syntax.Env) syntax.Value {
	var out []syntax.Value
	e.expandGenerators(n, env, 0, &out)
	return syntax.VectorOf(out)
}

func (e *Evaluator) expandGenerators(n *syntax.ListComprehension, env *syntax.Env, gi int, out *[]syntax.Value) {
	if len(*out) >= maxComprehensionElements {
		return
	}
	if gi >= len(n.Generators) {
		if n.Guard != nil && !e.EvalExpr(n.Guard, env).Bool() {
			return
		}
		*out = append(*out, e.EvalExpr(n.Body, env))
		return
	}
	g := n.Generators[gi]
	rv := e.EvalExpr(g.Range, env)
	var values []float64
	if rv.Kind() == syntax.KindRange {
		values = e.rangeValues(rv.RangeTriple(), n.Line())
	} else {
		for _, el := range rv.Elements() {
			values = append(values, el.Number())
		}
	}
	for _, v := range values {
		if len(*out) >= maxComprehensionElements {
			e.errorf(n.Line(), scaderr.ResourceLimit, "list comprehension exceeded %d elements", maxComprehensionElements)
			return
		}
		if !e.checkDeadline(n.Line()) {
			return
		}
		child := env.Fork()
		child.Bind(g.Var, syntax.NumberOf(v))
		e.expandGenerators(n, child, gi+1, out)
	}
}
