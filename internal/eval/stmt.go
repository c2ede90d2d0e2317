package eval

import (
	"fmt"
	"os"

	"github.com/dekarrin/scadkernel/internal/dispatch"
	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/scaderr"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// Importer resolves an import/include/use statement to a parsed tree. The
// root package wires a concrete internal/importer.Resolver in; eval only
// depends on this narrow interface so it never needs to know about the
// filesystem or search-path rules.
type Importer interface {
	Resolve(kind, filename string, line int) (*syntax.Tree, scaderr.Diags)
}

// EvalTree evaluates every top-level statement of tree against env as a
// single implicit-union block and returns the combined geometry, applying
// the root `!` rule: if any top-level statement carries a `!` modifier, only
// those statements contribute, and every other top-level statement (and its
// subtree) is ignored for this evaluation.
func (e *Evaluator) EvalTree(tree *syntax.Tree, env *syntax.Env) *kernel.Handle {
	return e.EvalBlock(tree.Nodes, env)
}

// EvalBlock evaluates a statement list as the language's implicit union:
// ModuleDef/FunctionDef are hoisted first so they're visible regardless of
// source order, then every remaining statement is evaluated in order and
// any geometry it produces is unioned together. If one or more direct
// children carry the `!` ("show only") modifier, every other child is
// skipped entirely for this block.
func (e *Evaluator) EvalBlock(stmts []syntax.Stmt, env *syntax.Env) *kernel.Handle {
	syntax.HoistDefs(env, stmts)

	stmts = selectExclusive(stmts)

	var handles []*kernel.Handle
	for _, s := range stmts {
		if !e.checkDeadline(s.Line()) {
			break
		}
		if h := e.EvalStmt(s, env); h != nil {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return nil
	}
	if len(handles) == 1 {
		return handles[0]
	}
	return e.Dispatch.Boolean("union", handles)
}

// selectExclusive implements the `!` modifier's "only this subtree renders"
// rule: if any statement in stmts is itself a `!` Modifier node, only those
// survive. A `!` nested inside another modifier (`#!cube(1);`) is not
// detected.
func selectExclusive(stmts []syntax.Stmt) []syntax.Stmt {
	var exclusive []syntax.Stmt
	for _, s := range stmts {
		if m, ok := s.(*syntax.Modifier); ok && m.Kind == "!" {
			exclusive = append(exclusive, s)
		}
	}
	if len(exclusive) > 0 {
		return exclusive
	}
	return stmts
}

// EvalStmt evaluates one statement, returning the geometry it produces (nil
// for statements with no geometry: Assignment, Echo, Assert, Import,
// ModuleDef, FunctionDef).
func (e *Evaluator) EvalStmt(stmt syntax.Stmt, env *syntax.Env) *kernel.Handle {
	switch s := stmt.(type) {
	case *syntax.ModuleDef, *syntax.FunctionDef:
		return nil // already hoisted

	case *syntax.Assignment:
		env.Bind(s.Name, e.EvalExpr(s.Expr, env))
		return nil

	case *syntax.Echo:
		e.evalEcho(s, env)
		return nil

	case *syntax.Assert:
		e.evalAssert(s, env)
		return nil

	case *syntax.Import:
		e.evalImport(s, env)
		return nil

	case *syntax.Modifier:
		return e.evalModifier(s, env)

	case *syntax.Primitive:
		return e.evalPrimitive(s, env)

	case *syntax.Transform:
		return e.evalTransform(s, env)

	case *syntax.Boolean:
		return e.evalBoolean(s, env)

	case *syntax.ModuleCall:
		return e.evalModuleCall(s, env)

	case *syntax.ChildrenCall:
		return e.evalChildrenCall(s, env)

	case *syntax.If:
		return e.evalIf(s, env)

	case *syntax.For:
		return e.evalFor(s, env, "union")

	case *syntax.IntersectionFor:
		return e.evalFor(&syntax.For{Pos: s.Pos, Var: s.Var, Range: s.Range, Body: s.Body}, env, "intersection")

	case *syntax.Let:
		return e.evalLet(s, env)

	default:
		e.errorf(stmt.Line(), scaderr.TypeError, "unrecognized statement node")
		return nil
	}
}

func (e *Evaluator) evalEcho(s *syntax.Echo, env *syntax.Env) {
	w := e.EchoOut
	if w == nil {
		w = os.Stdout
	}
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = e.EvalExpr(v, env).Quoted()
	}
	msg := "ECHO: "
	for i, p := range parts {
		if i > 0 {
			msg += ", "
		}
		msg += p
	}
	fmt.Fprintln(w, msg)
}

func (e *Evaluator) evalAssert(s *syntax.Assert, env *syntax.Env) {
	if e.EvalExpr(s.Cond, env).Bool() {
		return
	}
	if s.Message != nil {
		e.errorf(s.Line(), scaderr.AssertionFailed, "assertion failed: %s", e.EvalExpr(s.Message, env).String())
		return
	}
	e.errorf(s.Line(), scaderr.AssertionFailed, "assertion failed: %s", s.Cond.String())
}

func (e *Evaluator) evalImport(s *syntax.Import, env *syntax.Env) {
	if e.Importer == nil {
		e.errorf(s.Line(), scaderr.ImportError, "no import resolver configured, cannot resolve %q", s.Filename)
		return
	}
	tree, diags := e.Importer.Resolve(s.Kind, s.Filename, s.Line())
	e.Diags = append(e.Diags, diags...)
	if tree == nil {
		return
	}
	// import and include expose module and function definitions; use
	// exposes module definitions only. include also executes top-level
	// statements as if they were written inline at this point.
	defs := tree.Nodes
	if s.Kind == "use" {
		defs = nil
		for _, stmt := range tree.Nodes {
			if _, ok := stmt.(*syntax.ModuleDef); ok {
				defs = append(defs, stmt)
			}
		}
	}
	syntax.HoistDefs(env, defs)
	if s.Kind != "include" {
		return
	}
	for _, stmt := range tree.Nodes {
		switch stmt.(type) {
		case *syntax.ModuleDef, *syntax.FunctionDef:
			continue
		}
		e.EvalStmt(stmt, env)
	}
}

// evalModifier applies a display-modifier glyph. `*` disables its subtree
// entirely; `!`/`#`/`%` evaluate the child normally and tag the resulting
// handle so a caller inspecting the mesh can recover which modifier applied
// (the `!` exclusivity rule itself is handled at the enclosing block by
// selectExclusive, not here).
func (e *Evaluator) evalModifier(m *syntax.Modifier, env *syntax.Env) *kernel.Handle {
	if m.Kind == "*" {
		return nil
	}
	h := e.EvalStmt(m.Child, env)
	if h == nil {
		return nil
	}
	return e.Dispatch.K.WithModifier(h, m.Kind)
}

func (e *Evaluator) evalPrimitive(s *syntax.Primitive, env *syntax.Env) *kernel.Handle {
	args, fr := e.resolveArgs(s.Params, env)
	return e.Dispatch.Primitive(s.Op, args, fr)
}

func (e *Evaluator) evalTransform(s *syntax.Transform, env *syntax.Env) *kernel.Handle {
	args, fr := e.resolveArgs(s.Params, env)
	child := e.EvalBlock(s.Children, env)
	return e.Dispatch.Transform(s.Op, args, fr, child)
}

func (e *Evaluator) evalBoolean(s *syntax.Boolean, env *syntax.Env) *kernel.Handle {
	var children []*kernel.Handle
	syntax.HoistDefs(env, s.Children)
	for _, c := range selectExclusive(s.Children) {
		if h := e.EvalStmt(c, env); h != nil {
			children = append(children, h)
		}
	}
	return e.Dispatch.Boolean(s.Op, children)
}

// resolveArgs evaluates a call's argument list into dispatch.Args and
// derives the $fn/$fa/$fs triple in effect: the environment's current
// values, overridden by any $fn/$fa/$fs named arguments on this very call.
func (e *Evaluator) resolveArgs(params syntax.ArgList, env *syntax.Env) (dispatch.Args, dispatch.Fragments) {
	raw := make([]dispatch.Arg, len(params))
	for i, p := range params {
		raw[i] = dispatch.Arg{Name: p.Name, Value: e.EvalExpr(p.Value, env)}
	}
	args := dispatch.NewArgs(raw)
	fr := dispatch.Fragments{
		Fn: env.Lookup("$fn").Number(),
		Fa: nonZeroOr(env.Lookup("$fa").Number(), 12),
		Fs: nonZeroOr(env.Lookup("$fs").Number(), 2),
	}
	if v, ok := args.Named["$fn"]; ok {
		fr.Fn = v.Number()
	}
	if v, ok := args.Named["$fa"]; ok {
		fr.Fa = v.Number()
	}
	if v, ok := args.Named["$fs"]; ok {
		fr.Fs = v.Number()
	}
	return args, fr
}

func nonZeroOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (e *Evaluator) evalModuleCall(s *syntax.ModuleCall, env *syntax.Env) *kernel.Handle {
	def, ok := env.LookupModule(s.Name)
	if !ok {
		e.errorf(s.Line(), scaderr.UnknownIdentifier, "unknown module %q", s.Name)
		return nil
	}
	if e.depth >= maxRecursionDepth {
		e.errorf(s.Line(), scaderr.RecursionLimit, "recursion limit exceeded calling module %q", s.Name)
		return nil
	}
	call := env.Fork()
	bindParams(call, def.Params, s.Params, env, e)
	call.SetChildren(s.Children)
	call.SetCallerEnv(env)
	call.Bind("$children", syntax.NumberOf(float64(len(s.Children))))

	e.depth++
	h := e.EvalBlock(def.Body, call)
	e.depth--
	return h
}

func (e *Evaluator) evalChildrenCall(c *syntax.ChildrenCall, env *syntax.Env) *kernel.Handle {
	kids, ok := env.Children()
	if !ok {
		return nil
	}
	callerEnv, hasCaller := env.CallerEnv()
	if !hasCaller {
		callerEnv = env
	}
	if len(c.Args) == 0 {
		return e.EvalBlock(kids, callerEnv)
	}
	idx := int(e.EvalExpr(c.Args[0], env).Number())
	if idx < 0 || idx >= len(kids) {
		return nil
	}
	return e.EvalStmt(kids[idx], callerEnv)
}

func (e *Evaluator) evalIf(s *syntax.If, env *syntax.Env) *kernel.Handle {
	if e.EvalExpr(s.Cond, env).Bool() {
		return e.EvalBlock(s.Then, env.Fork())
	}
	if s.Else != nil {
		return e.EvalBlock(s.Else, env.Fork())
	}
	return nil
}

func (e *Evaluator) evalFor(s *syntax.For, env *syntax.Env, combine string) *kernel.Handle {
	rv := e.EvalExpr(s.Range, env)
	var values []syntax.Value
	if rv.Kind() == syntax.KindRange {
		for _, n := range e.rangeValues(rv.RangeTriple(), s.Line()) {
			values = append(values, syntax.NumberOf(n))
		}
	} else {
		values = rv.Elements()
	}

	var handles []*kernel.Handle
	for _, v := range values {
		if !e.checkDeadline(s.Line()) {
			break
		}
		iter := env.Fork()
		iter.Bind(s.Var, v)
		if h := e.EvalBlock(s.Body, iter); h != nil {
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return nil
	}
	if combine == "intersection" {
		acc := handles[0]
		for _, h := range handles[1:] {
			acc = e.Dispatch.K.Intersect(acc, h)
		}
		return acc
	}
	return e.Dispatch.Boolean("union", handles)
}

func (e *Evaluator) evalLet(s *syntax.Let, env *syntax.Env) *kernel.Handle {
	frame := env.Fork()
	for _, b := range s.Bindings {
		frame.Bind(b.Name, e.EvalExpr(b.Expr, frame))
	}
	return e.EvalBlock(s.Body, frame)
}
