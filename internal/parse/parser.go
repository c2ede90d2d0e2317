// Package parse implements the kernel's hand-written recursive-descent
// parser: a flat token stream in, a syntax.Tree plus diagnostics out. There
// is no parser-generator and no grammar file; each production is a method,
// and the method chain IS the precedence table.
package parse

import (
	"strings"

	"github.com/dekarrin/scadkernel/internal/lex"
	"github.com/dekarrin/scadkernel/internal/scaderr"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// Parse tokenizes and parses source in one pass, returning the top-level
// statement tree and every diagnostic raised by either stage. A non-empty
// tree may still carry error diagnostics: the parser resynchronizes at
// statement boundaries rather than giving up at the first mistake.
func Parse(source []byte) (*syntax.Tree, scaderr.Diags) {
	toks, lexDiags := lex.Tokenize(source)
	p := &parser{toks: toks}

	var nodes []syntax.Stmt
	for !p.atEOF() {
		before := p.pos
		s := p.parseStatement()
		if s != nil {
			nodes = append(nodes, s)
		}
		if p.pos == before {
			// parseStatement consumed nothing: the input is malformed in a
			// way no production recognized. Force progress so top-level
			// parsing always terminates.
			p.advance()
		}
	}

	var diags scaderr.Diags
	diags = append(diags, lexDiags...)
	diags = append(diags, p.diags...)
	diags.Sort()
	return &syntax.Tree{Nodes: nodes}, diags
}

// primitiveOps, transformOps, and booleanOps name the built-in statement-
// position calls the parser routes to their own node types; anything else
// becomes a ModuleCall, left for the evaluator to resolve against the
// environment's user-module table.
var primitiveOps = map[string]bool{
	"cube": true, "sphere": true, "cylinder": true, "cone": true,
	"circle": true, "square": true, "polygon": true, "polyhedron": true,
	"text": true, "surface": true,
}

var transformOps = map[string]bool{
	"translate": true, "rotate": true, "scale": true, "mirror": true,
	"multmatrix": true, "color": true, "resize": true, "offset": true,
	"projection": true, "linear_extrude": true, "rotate_extrude": true,
}

var booleanOps = map[string]bool{
	"union": true, "difference": true, "intersection": true,
	"hull": true, "minkowski": true,
}

type parser struct {
	toks  []lex.Token
	pos   int
	diags scaderr.Diags
}

func (p *parser) cur() lex.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1] // EOF sentinel
}

func (p *parser) atEOF() bool { return p.cur().Kind == lex.EOF }

func (p *parser) advance() lex.Token {
	tok := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) peekAt(offset int, kind lex.Kind, text string) bool {
	i := p.pos + offset
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	tok := p.toks[i]
	return tok.Kind == kind && (text == "" || tok.Text == text)
}

func (p *parser) atPunct(text string) bool    { return p.cur().Kind == lex.Punctuation && p.cur().Text == text }
func (p *parser) atOp(text string) bool       { return p.cur().Kind == lex.Operator && p.cur().Text == text }
func (p *parser) atKeyword(text string) bool  { return p.cur().Kind == lex.Keyword && p.cur().Text == text }
func (p *parser) atModifier() bool            { return p.cur().Kind == lex.Modifier }

// atOpOrModifier matches an operator token by text, or a modifier-glyph token
// carrying that same text. '!' and '%' are always lexed as Modifier (see
// lex.scanModifierOrOperator) since they can prefix a statement as well as
// appear mid-expression; expression-grammar productions that need them as
// operators must check both kinds.
func (p *parser) atOpOrModifier(text string) bool {
	tok := p.cur()
	if tok.Kind == lex.Operator && tok.Text == text {
		return true
	}
	return tok.Kind == lex.Modifier && tok.Text == text
}
func (p *parser) atIdent() bool               { return p.cur().Kind == lex.Identifier }

func (p *parser) errorf(tok lex.Token, format string, args ...interface{}) {
	p.diags = append(p.diags, scaderr.At(scaderr.SyntaxError, tok.Line, tok.Column, format, args...))
}

func (p *parser) expectIdent() (lex.Token, bool) {
	if !p.atIdent() {
		p.errorf(p.cur(), "expected identifier, found %q", p.cur().Text)
		return p.cur(), false
	}
	return p.advance(), true
}

func (p *parser) expectPunct(text string) bool {
	if !p.atPunct(text) {
		p.errorf(p.cur(), "expected %q, found %q", text, p.cur().Text)
		return false
	}
	p.advance()
	return true
}

func (p *parser) expectOp(text string) bool {
	if !p.atOp(text) {
		p.errorf(p.cur(), "expected %q, found %q", text, p.cur().Text)
		return false
	}
	p.advance()
	return true
}

// synchronize discards tokens until a statement boundary: a consumed ';' or
// an unconsumed '}' (left for the enclosing block loop to see) or EOF.
func (p *parser) synchronize() {
	for !p.atEOF() {
		if p.atPunct(";") {
			p.advance()
			return
		}
		if p.atPunct("}") {
			return
		}
		p.advance()
	}
}

// disableModifierHere reports whether a '*' token in the current position is
// the disable-subtree modifier glyph rather than the multiplication
// operator. Per the modifier-glyph rule, '*' is a statement modifier only
// when it begins a statement: immediately after ';', '{', '}', or at the
// start of the file. Anywhere else (e.g. after an identifier or a closing
// paren inside an expression) it is multiplication, and control never
// reaches here because parseStatement only makes this check before
// attempting to parse a new statement.
func (p *parser) disableModifierHere() bool {
	if p.pos == 0 {
		return true
	}
	prev := p.toks[p.pos-1]
	if prev.Kind != lex.Punctuation {
		return false
	}
	return prev.Text == ";" || prev.Text == "{" || prev.Text == "}"
}

// parseStatement parses exactly one Statement production, or nil for an
// empty ';' statement. On unrecoverable input it records a diagnostic and
// resynchronizes, also returning nil.
func (p *parser) parseStatement() syntax.Stmt {
	tok := p.cur()

	if tok.Kind == lex.Punctuation && tok.Text == ";" {
		p.advance()
		return nil
	}

	if tok.Kind == lex.Modifier {
		p.advance()
		child := p.parseStatement()
		if child == nil {
			return nil
		}
		return &syntax.Modifier{Pos: syntax.PosAt(tok.Line), Kind: tok.Text, Child: child}
	}

	if tok.Kind == lex.Operator && tok.Text == "*" && p.disableModifierHere() {
		p.advance()
		child := p.parseStatement()
		if child == nil {
			return nil
		}
		return &syntax.Modifier{Pos: syntax.PosAt(tok.Line), Kind: "*", Child: child}
	}

	if tok.Kind == lex.Keyword {
		switch tok.Text {
		case "module":
			return p.parseModuleDef()
		case "function":
			return p.parseFunctionDef()
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "intersection_for":
			return p.parseIntersectionFor()
		case "let":
			return p.parseLetStatement()
		case "echo":
			return p.parseEcho()
		case "assert":
			return p.parseAssert()
		case "import", "include", "use":
			return p.parseImport()
		}
	}

	if tok.Kind == lex.Identifier {
		return p.parseCallOrAssignment()
	}

	p.errorf(tok, "unexpected token %q", tok.Text)
	p.synchronize()
	return nil
}

// parseBody parses either a brace-delimited block or a single statement, per
// the grammar's Block production ('{' Statement* '}' | Statement).
func (p *parser) parseBody() []syntax.Stmt {
	if p.atPunct("{") {
		return p.parseBlock()
	}
	s := p.parseStatement()
	if s == nil {
		return nil
	}
	return []syntax.Stmt{s}
}

func (p *parser) parseBlock() []syntax.Stmt {
	p.expectPunct("{")
	var stmts []syntax.Stmt
	for !p.atPunct("}") && !p.atEOF() {
		before := p.pos
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.pos == before {
			p.advance()
		}
	}
	p.expectPunct("}")
	return stmts
}

func (p *parser) parseModuleDef() syntax.Stmt {
	kw := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	params := p.parseParamList()
	body := p.parseBody()
	return &syntax.ModuleDef{Pos: syntax.PosAt(kw.Line), Name: nameTok.Text, Params: params, Body: body}
}

func (p *parser) parseFunctionDef() syntax.Stmt {
	kw := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		p.synchronize()
		return nil
	}
	params := p.parseParamList()
	if !p.expectOp("=") {
		p.synchronize()
		return nil
	}
	expr := p.parseExpr()
	p.expectPunct(";")
	return &syntax.FunctionDef{Pos: syntax.PosAt(kw.Line), Name: nameTok.Text, Params: params, Expr: expr}
}

func (p *parser) parseParamList() []syntax.Param {
	p.expectPunct("(")
	var params []syntax.Param
	if p.atPunct(")") {
		p.advance()
		return params
	}
	for {
		nameTok, ok := p.expectIdent()
		if !ok {
			break
		}
		var def syntax.Expr
		if p.atOp("=") {
			p.advance()
			def = p.parseExpr()
		}
		params = append(params, syntax.Param{Name: nameTok.Text, Default: def})
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(")")
	return params
}

func (p *parser) parseIf() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	cond := p.parseExpr()
	p.expectPunct(")")
	then := p.parseBody()
	var els []syntax.Stmt
	if p.atKeyword("else") {
		p.advance()
		els = p.parseBody()
	}
	return &syntax.If{Pos: syntax.PosAt(kw.Line), Cond: cond, Then: then, Else: els}
}

func (p *parser) parseFor() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	nameTok, _ := p.expectIdent()
	p.expectOp("=")
	rng := p.parseExpr()
	p.expectPunct(")")
	body := p.parseBody()
	return &syntax.For{Pos: syntax.PosAt(kw.Line), Var: nameTok.Text, Range: rng, Body: body}
}

func (p *parser) parseIntersectionFor() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	nameTok, _ := p.expectIdent()
	p.expectOp("=")
	rng := p.parseExpr()
	p.expectPunct(")")
	body := p.parseBody()
	return &syntax.IntersectionFor{Pos: syntax.PosAt(kw.Line), Var: nameTok.Text, Range: rng, Body: body}
}

func (p *parser) parseLetStatement() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	var bindings []syntax.Binding
	if !p.atPunct(")") {
		for {
			nameTok, ok := p.expectIdent()
			if !ok {
				break
			}
			p.expectOp("=")
			val := p.parseExpr()
			bindings = append(bindings, syntax.Binding{Name: nameTok.Text, Expr: val})
			if p.atPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	p.expectPunct(")")
	body := p.parseBody()
	return &syntax.Let{Pos: syntax.PosAt(kw.Line), Bindings: bindings, Body: body}
}

func (p *parser) parseEcho() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	var vals []syntax.Expr
	if !p.atPunct(")") {
		vals = append(vals, p.parseExpr())
		for p.atPunct(",") {
			p.advance()
			vals = append(vals, p.parseExpr())
		}
	}
	p.expectPunct(")")
	p.expectPunct(";")
	return &syntax.Echo{Pos: syntax.PosAt(kw.Line), Values: vals}
}

func (p *parser) parseAssert() syntax.Stmt {
	kw := p.advance()
	p.expectPunct("(")
	cond := p.parseExpr()
	var msg syntax.Expr
	if p.atPunct(",") {
		p.advance()
		msg = p.parseExpr()
	}
	p.expectPunct(")")
	p.expectPunct(";")
	return &syntax.Assert{Pos: syntax.PosAt(kw.Line), Cond: cond, Message: msg}
}

// parseImport handles import/include/use. The bracketed-path form
// `<a/b.scad>` has no dedicated lexer support for paths, so the parser
// rebuilds the filename by concatenating every token between '<' and '>' —
// sufficient since SCAD library paths never contain internal whitespace.
func (p *parser) parseImport() syntax.Stmt {
	kw := p.advance()
	var filename string
	switch {
	case p.atOp("<"):
		p.advance()
		var sb strings.Builder
		for !p.atOp(">") && !p.atEOF() {
			sb.WriteString(p.advance().Text)
		}
		p.expectOp(">")
		filename = sb.String()
	case p.cur().Kind == lex.String:
		filename = p.advance().Text
	default:
		p.errorf(p.cur(), "expected filename after %q", kw.Text)
	}
	p.expectPunct(";")
	return &syntax.Import{Pos: syntax.PosAt(kw.Line), Kind: kw.Text, Filename: filename}
}

// parseCallOrAssignment handles the two statement forms that start with a
// bare identifier: `name = expr;` and `name(args) (Block | ';')`. The latter
// is routed to Primitive/Transform/Boolean/ChildrenCall/ModuleCall by name.
func (p *parser) parseCallOrAssignment() syntax.Stmt {
	nameTok := p.advance()

	if p.atOp("=") {
		p.advance()
		val := p.parseExpr()
		p.expectPunct(";")
		return &syntax.Assignment{Pos: syntax.PosAt(nameTok.Line), Name: nameTok.Text, Expr: val}
	}

	if !p.atPunct("(") {
		p.errorf(p.cur(), "expected '(' or '=' after %q", nameTok.Text)
		p.synchronize()
		return nil
	}

	args := p.parseArguments()

	// A call's suffix is a Block, a single unbraced statement (as in
	// `color("red") children();`), or a bare ';' for no children at all.
	// parseBody already distinguishes the first two; a lone ';' is handled
	// for free because parseStatement treats it as an empty statement and
	// returns nil, so children comes back empty either way.
	children := p.parseBody()

	name := nameTok.Text
	switch {
	case name == "children":
		return &syntax.ChildrenCall{Pos: syntax.PosAt(nameTok.Line), Args: argValues(args)}
	case primitiveOps[name]:
		return &syntax.Primitive{Pos: syntax.PosAt(nameTok.Line), Op: name, Params: args}
	case transformOps[name]:
		return &syntax.Transform{Pos: syntax.PosAt(nameTok.Line), Op: name, Params: args, Children: children}
	case booleanOps[name]:
		return &syntax.Boolean{Pos: syntax.PosAt(nameTok.Line), Op: name, Children: children}
	default:
		return &syntax.ModuleCall{Pos: syntax.PosAt(nameTok.Line), Name: name, Params: args, Children: children}
	}
}

func argValues(args syntax.ArgList) []syntax.Expr {
	out := make([]syntax.Expr, len(args))
	for i, a := range args {
		out[i] = a.Value
	}
	return out
}

func (p *parser) parseArguments() syntax.ArgList {
	p.expectPunct("(")
	var args syntax.ArgList
	if p.atPunct(")") {
		p.advance()
		return args
	}
	for {
		args = append(args, p.parseArgument())
		if p.atPunct(",") {
			p.advance()
			continue
		}
		break
	}
	p.expectPunct(")")
	return args
}

func (p *parser) parseArgument() syntax.Arg {
	if p.atIdent() && p.peekAt(1, lex.Operator, "=") {
		nameTok := p.advance()
		p.advance() // '='
		val := p.parseExpr()
		return syntax.Arg{Name: nameTok.Text, Value: val}
	}
	return syntax.Arg{Value: p.parseExpr()}
}

// --- expression grammar, lowest to highest precedence ---

func (p *parser) parseExpr() syntax.Expr { return p.parseTernary() }

func (p *parser) parseTernary() syntax.Expr {
	cond := p.parseOr()
	if p.atPunct("?") {
		q := p.advance()
		then := p.parseExpr()
		p.expectPunct(":")
		els := p.parseExpr()
		return &syntax.Ternary{Pos: syntax.PosAt(q.Line), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *parser) parseOr() syntax.Expr {
	left := p.parseAnd()
	for p.atOp("||") {
		op := p.advance()
		right := p.parseAnd()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: "||", L: left, R: right}
	}
	return left
}

func (p *parser) parseAnd() syntax.Expr {
	left := p.parseEquality()
	for p.atOp("&&") {
		op := p.advance()
		right := p.parseEquality()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: "&&", L: left, R: right}
	}
	return left
}

func (p *parser) parseEquality() syntax.Expr {
	left := p.parseRelational()
	for p.atOp("==") || p.atOp("!=") {
		op := p.advance()
		right := p.parseRelational()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: op.Text, L: left, R: right}
	}
	return left
}

func (p *parser) parseRelational() syntax.Expr {
	left := p.parseAdditive()
	for p.atOp("<") || p.atOp(">") || p.atOp("<=") || p.atOp(">=") {
		op := p.advance()
		right := p.parseAdditive()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: op.Text, L: left, R: right}
	}
	return left
}

func (p *parser) parseAdditive() syntax.Expr {
	left := p.parseMultiplicative()
	for p.atOp("+") || p.atOp("-") {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: op.Text, L: left, R: right}
	}
	return left
}

func (p *parser) parseMultiplicative() syntax.Expr {
	left := p.parseUnary()
	for p.atOp("*") || p.atOp("/") || p.atOpOrModifier("%") {
		op := p.advance()
		right := p.parseUnary()
		left = &syntax.Binary{Pos: syntax.PosAt(op.Line), Op: op.Text, L: left, R: right}
	}
	return left
}

func (p *parser) parseUnary() syntax.Expr {
	if p.atOp("-") || p.atOpOrModifier("!") {
		op := p.advance()
		operand := p.parseUnary()
		return &syntax.Unary{Pos: syntax.PosAt(op.Line), Op: op.Text, Operand: operand}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() syntax.Expr {
	tok := p.cur()
	switch {
	case tok.Kind == lex.Number:
		p.advance()
		return &syntax.NumberLit{Pos: syntax.PosAt(tok.Line), Val: tok.NumVal}
	case tok.Kind == lex.String:
		p.advance()
		return &syntax.StringLit{Pos: syntax.PosAt(tok.Line), Val: tok.Text}
	case tok.Kind == lex.Punctuation && tok.Text == "(":
		p.advance()
		e := p.parseExpr()
		p.expectPunct(")")
		return e
	case tok.Kind == lex.Punctuation && tok.Text == "[":
		return p.parseBracketExpr()
	case tok.Kind == lex.Identifier:
		p.advance()
		if p.atPunct("(") {
			args := p.parseArguments()
			return &syntax.Call{Pos: syntax.PosAt(tok.Line), Name: tok.Text, Args: args}
		}
		return &syntax.Variable{Pos: syntax.PosAt(tok.Line), Name: tok.Text}
	default:
		p.errorf(tok, "unexpected token %q in expression", tok.Text)
		if !p.atEOF() {
			p.advance()
		}
		return &syntax.Variable{Pos: syntax.PosAt(tok.Line), Name: "undef"}
	}
}

// parseBracketExpr parses everything that can start with '[': an empty or
// populated vector literal, a range expression (2- or 3-element colon
// form), or a list comprehension. All three share the opening bracket, so
// the choice is made by looking past the first element rather than by a
// separate lookahead production.
func (p *parser) parseBracketExpr() syntax.Expr {
	lb := p.advance() // '['

	if p.atKeyword("for") {
		return p.parseListComprehension(lb.Line)
	}
	if p.atPunct("]") {
		p.advance()
		return &syntax.VectorLit{Pos: syntax.PosAt(lb.Line)}
	}

	first := p.parseExpr()

	if p.atPunct(":") {
		p.advance()
		second := p.parseExpr()
		end := second
		var step syntax.Expr
		if p.atPunct(":") {
			p.advance()
			step = second
			end = p.parseExpr()
		}
		p.expectPunct("]")
		return &syntax.RangeExpr{Pos: syntax.PosAt(lb.Line), Start: first, End: end, Step: step}
	}

	elems := []syntax.Expr{first}
	for p.atPunct(",") {
		p.advance()
		elems = append(elems, p.parseExpr())
	}
	p.expectPunct("]")
	return &syntax.VectorLit{Pos: syntax.PosAt(lb.Line), Elements: elems}
}

// parseListComprehension parses the generator(s)+guard?+body that follow
// '[' once a leading 'for' has identified the bracket as a comprehension
// rather than a vector or range.
func (p *parser) parseListComprehension(startLine int) syntax.Expr {
	var gens []syntax.Generator
	for p.atKeyword("for") {
		p.advance()
		p.expectPunct("(")
		nameTok, _ := p.expectIdent()
		p.expectOp("=")
		rng := p.parseRangeOperand()
		p.expectPunct(")")
		gens = append(gens, syntax.Generator{Var: nameTok.Text, Range: rng})
	}

	var guard syntax.Expr
	if p.atKeyword("if") {
		p.advance()
		p.expectPunct("(")
		guard = p.parseExpr()
		p.expectPunct(")")
	}

	body := p.parseExpr()
	p.expectPunct("]")
	return &syntax.ListComprehension{Pos: syntax.PosAt(startLine), Generators: gens, Guard: guard, Body: body}
}

// parseRangeOperand parses a generator's range clause, which the grammar
// requires to actually be a range expression (`[a:b]` or `[a:step:b]`).
func (p *parser) parseRangeOperand() *syntax.RangeExpr {
	e := p.parseExpr()
	if r, ok := e.(*syntax.RangeExpr); ok {
		return r
	}
	p.errorf(p.cur(), "expected range expression in for-generator")
	return &syntax.RangeExpr{Pos: syntax.PosAt(e.Line()), Start: e, End: e}
}

