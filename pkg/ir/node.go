// Package ir defines the intermediate representation C8 lowers canonical
// SExp into and C9/C10 consume: a closed set of concrete node types
// dispatched by type switch, one level removed from both the S-expression
// source tree (pkg/ast) and the eventual ESTree output (pkg/estree).
package ir

import "github.com/hlvm-dev/hql/pkg/ast"

// Node is the closed sum type for IR nodes. Every node carries the source
// position of the SExp it was lowered from, which C10 copies into each
// ESTree node's `loc` (spec §4.9).
type Node interface {
	Pos() ast.Position
	irNode()
}

// LiteralKind mirrors ast.LiteralKind; kept as its own type so pkg/ir has
// no hard dependency on pkg/ast's specific enum beyond Position.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Literal is a self-evaluating JS literal.
type Literal struct {
	Kind LiteralKind
	Value any
	Meta ast.Position
}

func (l *Literal) Pos() ast.Position { return l.Meta }
func (*Literal) irNode()             {}

// Identifier is a bare name reference.
type Identifier struct {
	Name string
	Meta ast.Position
}

func (i *Identifier) Pos() ast.Position { return i.Meta }
func (*Identifier) irNode()             {}

// ArrayExpression is a `[...]` literal.
type ArrayExpression struct {
	Elements []Node
	Meta     ast.Position
}

func (a *ArrayExpression) Pos() ast.Position { return a.Meta }
func (*ArrayExpression) irNode()             {}

// ObjectProperty is one key/value pair of an ObjectExpression.
type ObjectProperty struct {
	Key      string
	Computed bool // true if Key names an identifier to evaluate, not a literal string
	Value    Node
}

// ObjectExpression is a `{...}` literal, lowered from hash-map sugar or a
// `class`/`enum` field set.
type ObjectExpression struct {
	Properties []ObjectProperty
	Meta       ast.Position
}

func (o *ObjectExpression) Pos() ast.Position { return o.Meta }
func (*ObjectExpression) irNode()             {}

// TemplateLiteral lowers `(template-literal s0 e1 s1 ...)` (spec §4.7):
// Quasis has one more element than Expressions.
type TemplateLiteral struct {
	Quasis      []string
	Expressions []Node
	Meta        ast.Position
}

func (t *TemplateLiteral) Pos() ast.Position { return t.Meta }
func (*TemplateLiteral) irNode()             {}

// BinaryExpression is an arithmetic/relational/bitwise binary operator.
type BinaryExpression struct {
	Operator string
	Left     Node
	Right    Node
	Meta     ast.Position
}

func (b *BinaryExpression) Pos() ast.Position { return b.Meta }
func (*BinaryExpression) irNode()             {}

// LogicalExpression is `&&`/`||`/`??`.
type LogicalExpression struct {
	Operator string
	Left     Node
	Right    Node
	Meta     ast.Position
}

func (l *LogicalExpression) Pos() ast.Position { return l.Meta }
func (*LogicalExpression) irNode()             {}

// UnaryExpression is a prefix operator (`-`, `!`, `typeof`, ...).
type UnaryExpression struct {
	Operator string
	Argument Node
	Meta     ast.Position
}

func (u *UnaryExpression) Pos() ast.Position { return u.Meta }
func (*UnaryExpression) irNode()             {}

// ConditionalExpression is a ternary, the lowering target for `cond`
// (spec §4.7: "cond → nested conditional expression").
type ConditionalExpression struct {
	Test       Node
	Consequent Node
	Alternate  Node
	Meta       ast.Position
}

func (c *ConditionalExpression) Pos() ast.Position { return c.Meta }
func (*ConditionalExpression) irNode()             {}

// CallExpression is a function/method invocation. Callee is itself a
// MemberExpression for a method call, so no separate "this-preserving
// call" node is needed; C10 detects that shape and uses `.call`/member
// dispatch to keep `this` bound correctly (spec §4.9).
type CallExpression struct {
	Callee    Node
	Arguments []Node
	Meta      ast.Position
}

func (c *CallExpression) Pos() ast.Position { return c.Meta }
func (*CallExpression) irNode()             {}

// NewExpression is a `new` construction, used for class instantiation.
type NewExpression struct {
	Callee    Node
	Arguments []Node
	Meta      ast.Position
}

func (n *NewExpression) Pos() ast.Position { return n.Meta }
func (*NewExpression) irNode()             {}

// MemberExpression is `(js-get o "p")`'s lowering, or any property read
// the builder knows resolves to a plain field (spec §4.7).
type MemberExpression struct {
	Object   Node
	Property string
	Computed bool
	Meta     ast.Position
}

func (m *MemberExpression) Pos() ast.Position { return m.Meta }
func (*MemberExpression) irNode()             {}

// InteropIIFE marks a `(js-interop obj "prop")` access whose field-vs-call
// nature isn't known until emission: C10 expands it into a self-invoking
// arrow that resolves Property on Object and calls it (preserving `this`)
// iff the resolved value is a function (spec §4.7/§4.9).
type InteropIIFE struct {
	Object   Node
	Property string
	Meta     ast.Position
}

func (i *InteropIIFE) Pos() ast.Position { return i.Meta }
func (*InteropIIFE) irNode()             {}

// SpreadElement is `...expr` inside a call's argument list or an array
// literal, the lowering target for a rest-splice argument.
type SpreadElement struct {
	Argument Node
	Meta     ast.Position
}

func (s *SpreadElement) Pos() ast.Position { return s.Meta }
func (*SpreadElement) irNode()             {}

// ArrowFunctionExpression is an anonymous function value, used for `=>`
// lambdas and callback arguments built during lowering (e.g. the
// InteropIIFE's own body, iteration helper callbacks).
type ArrowFunctionExpression struct {
	Params         []Node // Identifier/ArrayPattern/ObjectPattern/RestElement/AssignmentPattern
	Body           []Node
	ExpressionBody bool // true if Body is exactly one expression, no braces/return
	Meta           ast.Position
}

func (a *ArrowFunctionExpression) Pos() ast.Position { return a.Meta }
func (*ArrowFunctionExpression) irNode()             {}

// AssignmentExpression covers `=`, used by the interpreter bridge's
// lowering of mutation forms and the enum/class constructor prologue.
type AssignmentExpression struct {
	Operator string
	Left     Node
	Right    Node
	Meta     ast.Position
}

func (a *AssignmentExpression) Pos() ast.Position { return a.Meta }
func (*AssignmentExpression) irNode()             {}

// --- Patterns (destructuring targets; all implement Node) ---

// ArrayPattern destructures an array/sequence into named slots.
type ArrayPattern struct {
	Elements []Node
	Meta     ast.Position
}

func (a *ArrayPattern) Pos() ast.Position { return a.Meta }
func (*ArrayPattern) irNode()             {}

// ObjectPatternProperty is one binding of an ObjectPattern.
type ObjectPatternProperty struct {
	Key   string
	Value Node
}

// ObjectPattern destructures an object into named slots. pkg/irbuilder
// does not produce one for a JSON-map parameter list; that case is
// recorded on FnFunctionDeclaration (UsesJSONMapParams) instead.
type ObjectPattern struct {
	Properties []ObjectPatternProperty
	Meta       ast.Position
}

func (o *ObjectPattern) Pos() ast.Position { return o.Meta }
func (*ObjectPattern) irNode()             {}

// RestElement is a `&rest`-derived `...rest` binding.
type RestElement struct {
	Argument Node
	Meta     ast.Position
}

func (r *RestElement) Pos() ast.Position { return r.Meta }
func (*RestElement) irNode()             {}

// AssignmentPattern is a parameter with a default value (`x = expr`).
type AssignmentPattern struct {
	Left  Node
	Right Node
	Meta  ast.Position
}

func (a *AssignmentPattern) Pos() ast.Position { return a.Meta }
func (*AssignmentPattern) irNode()             {}

// --- Statements / declarations ---

// VariableDeclarator is one `name = init` binding within a declaration.
type VariableDeclarator struct {
	ID   Node // Identifier or a destructuring pattern
	Init Node // nil if uninitialized
}

// VariableDeclaration lowers `let`/`var`/`const` (spec §4.7).
type VariableDeclaration struct {
	Kind         string // "let", "var", or "const"
	Declarations []VariableDeclarator
	Meta         ast.Position
}

func (v *VariableDeclaration) Pos() ast.Position { return v.Meta }
func (*VariableDeclaration) irNode()             {}

// ExpressionStatement wraps an expression used for effect, at statement
// position in a body.
type ExpressionStatement struct {
	Expression Node
	Meta       ast.Position
}

func (e *ExpressionStatement) Pos() ast.Position { return e.Meta }
func (*ExpressionStatement) irNode()             {}

// ReturnStatement returns a value from the enclosing function.
type ReturnStatement struct {
	Argument Node // nil for a bare `return`
	Meta     ast.Position
}

func (r *ReturnStatement) Pos() ast.Position { return r.Meta }
func (*ReturnStatement) irNode()             {}

// ThrowStatement raises a value, the lowering target for the `__hql_throw`
// runtime helper's call site when used in statement position.
type ThrowStatement struct {
	Argument Node
	Meta     ast.Position
}

func (t *ThrowStatement) Pos() ast.Position { return t.Meta }
func (*ThrowStatement) irNode()             {}

// IfStatement lowers `if`/`when`/`unless` used in statement position
// (spec §4.7). `when`/`unless` lower with Alternate nil and, for
// `unless`, Test wrapped in a UnaryExpression("!", ...).
type IfStatement struct {
	Test       Node
	Consequent []Node
	Alternate  []Node // nil if no else branch
	Meta       ast.Position
}

func (i *IfStatement) Pos() ast.Position { return i.Meta }
func (*IfStatement) irNode()             {}

// WhileStatement lowers `while`.
type WhileStatement struct {
	Test Node
	Body []Node
	Meta ast.Position
}

func (w *WhileStatement) Pos() ast.Position { return w.Meta }
func (*WhileStatement) irNode()             {}

// ForOfStatement lowers `for` iterating over a sequence, with Iterable
// passed through the `__hql_toSequence` runtime helper so ranges,
// S-expression lists, and plain arrays all iterate uniformly.
type ForOfStatement struct {
	Variable string
	Iterable Node
	Body     []Node
	Meta     ast.Position
}

func (f *ForOfStatement) Pos() ast.Position { return f.Meta }
func (*ForOfStatement) irNode()             {}

// FnFunctionDeclaration lowers `fn`/`defn` (spec §4.7: "fn name [params]
// body… → FnFunctionDeclaration preserving default values"). When
// UsesJSONMapParams is true, Params is empty and pkg/estree emits a
// single `__hql_params = {}` parameter in its place; JSONMapKeys records
// the declared names and JSONMapDefaults their paired default
// expressions (nil entry if a key had no default) in the same order, so
// the body can destructure each key via `__hql_params.<key> ?? <default>`
// (spec: "a single parameter __hql_params = {} destructures each key via
// ?? to produce the declared name").
type FnFunctionDeclaration struct {
	Name              string
	Params            []Node // Identifier / AssignmentPattern / RestElement
	UsesJSONMapParams bool
	JSONMapKeys       []string
	JSONMapDefaults   []Node // parallel to JSONMapKeys; nil entry means no default
	Body              []Node
	Meta              ast.Position
}

func (f *FnFunctionDeclaration) Pos() ast.Position { return f.Meta }
func (*FnFunctionDeclaration) irNode()             {}

// ClassField is one `(field name [default])` member.
type ClassField struct {
	Name    string
	Default Node // nil if no default
}

// ClassMethod is one `(fn m [self args] body)` member.
type ClassMethod struct {
	Name   string
	Params []Node
	Body   []Node
	Static bool
}

// ClassDeclaration lowers `class Name (field ...) (fn ...) ...` (spec
// §4.7), with fields assigned in the constructor prologue.
type ClassDeclaration struct {
	Name    string
	Fields  []ClassField
	Methods []ClassMethod
	Meta    ast.Position
}

func (c *ClassDeclaration) Pos() ast.Position { return c.Meta }
func (*ClassDeclaration) irNode()             {}

// ImportSpecifier is one bound name of an ImportDeclaration.
type ImportSpecifier struct {
	Imported string // "" for a namespace or default import
	Local    string
	Namespace bool
	Default   bool
}

// ImportDeclaration lowers an `import` form into a real ECMAScript
// import statement (spec §4.6/§4.7): the compile-time effects of the
// same form are handled separately by pkg/importer; this is purely its
// runtime-surface shape.
type ImportDeclaration struct {
	Specifiers []ImportSpecifier
	Source     string
	Meta       ast.Position
}

func (i *ImportDeclaration) Pos() ast.Position { return i.Meta }
func (*ImportDeclaration) irNode()             {}

// ExportNamedDeclaration lowers `(export [a b])` into `export { a, b }`.
type ExportNamedDeclaration struct {
	Names []string
	Meta  ast.Position
}

func (e *ExportNamedDeclaration) Pos() ast.Position { return e.Meta }
func (*ExportNamedDeclaration) irNode()             {}

// ExportNamedExpr lowers `(export "name" expr)` into
// `export const name = expr;`.
type ExportNamedExpr struct {
	Name  string
	Value Node
	Meta  ast.Position
}

func (e *ExportNamedExpr) Pos() ast.Position { return e.Meta }
func (*ExportNamedExpr) irNode()             {}

// Program is the root IR node: the whole module's top-level statement
// sequence.
type Program struct {
	Body []Node
	Meta ast.Position
}

func (p *Program) Pos() ast.Position { return p.Meta }
func (*Program) irNode()             {}
