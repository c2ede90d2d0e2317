package syntax

// Env is one frame of the environment stack: a scope's variable bindings
// plus, separately, its user function and user module tables, and (for
// frames created by a module call) the call site's child statements.
//
// Lookup walks frames from innermost to outermost; Bind always writes into
// the frame it is called on, never a parent — this is how enter/fork
// produce shadowing without mutating an enclosing scope.
type Env struct {
	parent   *Env
	vars     map[string]Value
	funcs    map[string]*FunctionDef
	modules  map[string]*ModuleDef
	children []Stmt
	haveKids bool
	// callerEnv is the environment a module call was made FROM, attached
	// only to the frame created for that call's body. children()/children(i)
	// evaluate their statements against this environment rather than the
	// module body's own frame, matching the language's rule that a child
	// block sees the variables visible at its call site, not the callee's
	// locals.
	callerEnv *Env
}

// NewEnv creates a root environment frame with no parent.
func NewEnv() *Env {
	return &Env{
		vars:    map[string]Value{},
		funcs:   map[string]*FunctionDef{},
		modules: map[string]*ModuleDef{},
	}
}

// Enter pushes a new child frame whose lookups fall through to e. This
// implements enter_scope(): the child frame can bind and shadow freely
// without affecting e.
func (e *Env) Enter() *Env {
	return &Env{parent: e, vars: map[string]Value{}, funcs: map[string]*FunctionDef{}, modules: map[string]*ModuleDef{}}
}

// Fork is an alias for Enter used at call sites that want to make the
// "independently mutable child frame" intent explicit (module calls, let,
// for-loop iterations) — per the data model, fork() and enter_scope()
// describe the same push-a-child-frame operation from two angles.
func (e *Env) Fork() *Env { return e.Enter() }

// Bind inserts name=value into this frame only.
func (e *Env) Bind(name string, v Value) {
	e.vars[name] = v
}

// Lookup walks frames from innermost to outermost, returning undef if name
// is bound nowhere.
func (e *Env) Lookup(name string) Value {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v
		}
	}
	return Undef
}

// LookupLocal checks only this frame, without walking to parents.
func (e *Env) LookupLocal(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// BindFunc registers a user function definition in this frame.
func (e *Env) BindFunc(name string, def *FunctionDef) {
	e.funcs[name] = def
}

// LookupFunc walks frames for a user function definition.
func (e *Env) LookupFunc(name string) (*FunctionDef, bool) {
	for f := e; f != nil; f = f.parent {
		if def, ok := f.funcs[name]; ok {
			return def, true
		}
	}
	return nil, false
}

// BindModule registers a user module definition in this frame.
func (e *Env) BindModule(name string, def *ModuleDef) {
	e.modules[name] = def
}

// LookupModule walks frames for a user module definition.
func (e *Env) LookupModule(name string) (*ModuleDef, bool) {
	for f := e; f != nil; f = f.parent {
		if def, ok := f.modules[name]; ok {
			return def, true
		}
	}
	return nil, false
}

// SetChildren attaches the calling statement's child block to this frame,
// for a module-call frame's children()/children(i) builtin to read.
func (e *Env) SetChildren(kids []Stmt) {
	e.children = kids
	e.haveKids = true
}

// SetCallerEnv records the environment a module call was made from, for
// children()/children(i) to evaluate against.
func (e *Env) SetCallerEnv(caller *Env) {
	e.callerEnv = caller
}

// CallerEnv returns the nearest enclosing frame's recorded call-site
// environment and whether any frame in the chain has one.
func (e *Env) CallerEnv() (*Env, bool) {
	for f := e; f != nil; f = f.parent {
		if f.haveKids {
			return f.callerEnv, true
		}
	}
	return nil, false
}

// Children returns the nearest enclosing frame's attached child statements
// and whether any frame in the chain has them (a module body nested inside
// another module body still sees ITS OWN call's children, since each
// ModuleCall evaluation creates a fresh frame with SetChildren called
// again — this only falls through when no frame between here and the root
// ever set children, i.e. we are not inside any module body).
func (e *Env) Children() ([]Stmt, bool) {
	for f := e; f != nil; f = f.parent {
		if f.haveKids {
			return f.children, true
		}
	}
	return nil, false
}

// HoistDefs runs the first-pass collection of ModuleDef/FunctionDef nodes
// for a block, registering them into e before any statement in the block is
// executed. This implements the "definitions may appear anywhere in a block
// and are visible throughout that block" rule.
func HoistDefs(e *Env, body []Stmt) {
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *ModuleDef:
			e.BindModule(s.Name, s)
		case *FunctionDef:
			e.BindFunc(s.Name, s)
		}
	}
}
