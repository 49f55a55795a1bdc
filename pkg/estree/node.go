// Package estree defines the ESTree node model this compiler emits into
// and the IR → ESTree conversion (C10 step 1, spec §4.9): a dispatch
// table keyed by IR node type, producing a tree pkg/codegen then prints
// to ECMAScript text with an accompanying source map.
package estree

// Loc is the `loc` field every emitted node carries: start/end source
// positions plus the originating file, so pkg/codegen can emit a
// mapping for each one (spec §4.9: "every ESTree node carries
// loc = { start, end, source }").
type Loc struct {
	Start    Position
	End      Position
	Source   string
}

// Position is one line/column pair, 1-indexed to match ast.Position.
type Position struct {
	Line   int
	Column int
}

// Node is the closed sum type for ESTree nodes. Type returns the ESTree
// type tag ("Identifier", "CallExpression", ...) used both for dispatch
// in pkg/codegen and, where useful, for debugging.
type Node interface {
	Type() string
	Loc() Loc
}

type base struct {
	Tag string
	L   Loc
}

func (b base) Type() string { return b.Tag }
func (b base) Loc() Loc     { return b.L }

// Program is the root node: a module's top-level statement list.
type Program struct {
	base
	Body []Node
}

func NewProgram(loc Loc, body []Node) *Program {
	return &Program{base: base{Tag: "Program", L: loc}, Body: body}
}

// --- Literals & identifiers ---

type Identifier struct {
	base
	Name string
}

func NewIdentifier(loc Loc, name string) *Identifier {
	return &Identifier{base: base{Tag: "Identifier", L: loc}, Name: name}
}

// Literal's Value is one of nil, bool, float64, string. Integers and
// floats are both carried as float64: ESTree/JS makes no distinction.
type Literal struct {
	base
	Value any
	Raw   string
}

func NewLiteral(loc Loc, value any, raw string) *Literal {
	return &Literal{base: base{Tag: "Literal", L: loc}, Value: value, Raw: raw}
}

type TemplateElement struct {
	base
	Raw    string
	Cooked string
	Tail   bool
}

type TemplateLiteral struct {
	base
	Quasis      []*TemplateElement
	Expressions []Node
}

func NewTemplateLiteral(loc Loc, quasis []*TemplateElement, exprs []Node) *TemplateLiteral {
	return &TemplateLiteral{base: base{Tag: "TemplateLiteral", L: loc}, Quasis: quasis, Expressions: exprs}
}

// --- Compound expressions ---

type ArrayExpression struct {
	base
	Elements []Node // nil element is a hole
}

func NewArrayExpression(loc Loc, elements []Node) *ArrayExpression {
	return &ArrayExpression{base: base{Tag: "ArrayExpression", L: loc}, Elements: elements}
}

type Property struct {
	Key      Node
	Value    Node
	Computed bool
	Shorthand bool
}

type ObjectExpression struct {
	base
	Properties []Property
}

func NewObjectExpression(loc Loc, props []Property) *ObjectExpression {
	return &ObjectExpression{base: base{Tag: "ObjectExpression", L: loc}, Properties: props}
}

type BinaryExpression struct {
	base
	Operator string
	Left     Node
	Right    Node
}

func NewBinaryExpression(loc Loc, op string, left, right Node) *BinaryExpression {
	return &BinaryExpression{base: base{Tag: "BinaryExpression", L: loc}, Operator: op, Left: left, Right: right}
}

type LogicalExpression struct {
	base
	Operator string
	Left     Node
	Right    Node
}

func NewLogicalExpression(loc Loc, op string, left, right Node) *LogicalExpression {
	return &LogicalExpression{base: base{Tag: "LogicalExpression", L: loc}, Operator: op, Left: left, Right: right}
}

type UnaryExpression struct {
	base
	Operator string
	Prefix   bool
	Argument Node
}

func NewUnaryExpression(loc Loc, op string, argument Node) *UnaryExpression {
	return &UnaryExpression{base: base{Tag: "UnaryExpression", L: loc}, Operator: op, Prefix: true, Argument: argument}
}

type ConditionalExpression struct {
	base
	Test       Node
	Consequent Node
	Alternate  Node
}

func NewConditionalExpression(loc Loc, test, cons, alt Node) *ConditionalExpression {
	return &ConditionalExpression{base: base{Tag: "ConditionalExpression", L: loc}, Test: test, Consequent: cons, Alternate: alt}
}

type CallExpression struct {
	base
	Callee    Node
	Arguments []Node
}

func NewCallExpression(loc Loc, callee Node, args []Node) *CallExpression {
	return &CallExpression{base: base{Tag: "CallExpression", L: loc}, Callee: callee, Arguments: args}
}

type NewExpression struct {
	base
	Callee    Node
	Arguments []Node
}

func NewNewExpression(loc Loc, callee Node, args []Node) *NewExpression {
	return &NewExpression{base: base{Tag: "NewExpression", L: loc}, Callee: callee, Arguments: args}
}

type MemberExpression struct {
	base
	Object   Node
	Property Node
	Computed bool
}

func NewMemberExpression(loc Loc, object, property Node, computed bool) *MemberExpression {
	return &MemberExpression{base: base{Tag: "MemberExpression", L: loc}, Object: object, Property: property, Computed: computed}
}

type SpreadElement struct {
	base
	Argument Node
}

func NewSpreadElement(loc Loc, argument Node) *SpreadElement {
	return &SpreadElement{base: base{Tag: "SpreadElement", L: loc}, Argument: argument}
}

type ArrowFunctionExpression struct {
	base
	Params   []Node
	Body     Node // BlockStatement, or a bare expression when Expression is true
	Expression bool
}

func NewArrowFunctionExpression(loc Loc, params []Node, body Node, expression bool) *ArrowFunctionExpression {
	return &ArrowFunctionExpression{base: base{Tag: "ArrowFunctionExpression", L: loc}, Params: params, Body: body, Expression: expression}
}

type FunctionDeclaration struct {
	base
	ID     *Identifier
	Params []Node
	Body   *BlockStatement
}

func NewFunctionDeclaration(loc Loc, id *Identifier, params []Node, body *BlockStatement) *FunctionDeclaration {
	return &FunctionDeclaration{base: base{Tag: "FunctionDeclaration", L: loc}, ID: id, Params: params, Body: body}
}

type FunctionExpression struct {
	base
	ID     *Identifier // nil for an anonymous method value
	Params []Node
	Body   *BlockStatement
}

func NewFunctionExpression(loc Loc, id *Identifier, params []Node, body *BlockStatement) *FunctionExpression {
	return &FunctionExpression{base: base{Tag: "FunctionExpression", L: loc}, ID: id, Params: params, Body: body}
}

type AssignmentExpression struct {
	base
	Operator string
	Left     Node
	Right    Node
}

func NewAssignmentExpression(loc Loc, op string, left, right Node) *AssignmentExpression {
	return &AssignmentExpression{base: base{Tag: "AssignmentExpression", L: loc}, Operator: op, Left: left, Right: right}
}

// SequenceExpression isn't lowered to directly by pkg/ir, and no
// conversion in this package builds one; pkg/codegen can still print it.
type SequenceExpression struct {
	base
	Expressions []Node
}

func NewSequenceExpression(loc Loc, exprs []Node) *SequenceExpression {
	return &SequenceExpression{base: base{Tag: "SequenceExpression", L: loc}, Expressions: exprs}
}

// --- Patterns ---

type ArrayPattern struct {
	base
	Elements []Node
}

func NewArrayPattern(loc Loc, elements []Node) *ArrayPattern {
	return &ArrayPattern{base: base{Tag: "ArrayPattern", L: loc}, Elements: elements}
}

type ObjectPatternProperty struct {
	Key   Node
	Value Node
}

type ObjectPattern struct {
	base
	Properties []ObjectPatternProperty
}

func NewObjectPattern(loc Loc, props []ObjectPatternProperty) *ObjectPattern {
	return &ObjectPattern{base: base{Tag: "ObjectPattern", L: loc}, Properties: props}
}

type RestElement struct {
	base
	Argument Node
}

func NewRestElement(loc Loc, argument Node) *RestElement {
	return &RestElement{base: base{Tag: "RestElement", L: loc}, Argument: argument}
}

type AssignmentPattern struct {
	base
	Left  Node
	Right Node
}

func NewAssignmentPattern(loc Loc, left, right Node) *AssignmentPattern {
	return &AssignmentPattern{base: base{Tag: "AssignmentPattern", L: loc}, Left: left, Right: right}
}

// --- Statements & declarations ---

type BlockStatement struct {
	base
	Body []Node
}

func NewBlockStatement(loc Loc, body []Node) *BlockStatement {
	return &BlockStatement{base: base{Tag: "BlockStatement", L: loc}, Body: body}
}

type ExpressionStatement struct {
	base
	Expression Node
}

func NewExpressionStatement(loc Loc, expr Node) *ExpressionStatement {
	return &ExpressionStatement{base: base{Tag: "ExpressionStatement", L: loc}, Expression: expr}
}

type ReturnStatement struct {
	base
	Argument Node // nil for a bare `return`
}

func NewReturnStatement(loc Loc, argument Node) *ReturnStatement {
	return &ReturnStatement{base: base{Tag: "ReturnStatement", L: loc}, Argument: argument}
}

type ThrowStatement struct {
	base
	Argument Node
}

func NewThrowStatement(loc Loc, argument Node) *ThrowStatement {
	return &ThrowStatement{base: base{Tag: "ThrowStatement", L: loc}, Argument: argument}
}

type IfStatement struct {
	base
	Test       Node
	Consequent Node // BlockStatement
	Alternate  Node // nil, or BlockStatement/IfStatement (else-if chain)
}

func NewIfStatement(loc Loc, test, cons, alt Node) *IfStatement {
	return &IfStatement{base: base{Tag: "IfStatement", L: loc}, Test: test, Consequent: cons, Alternate: alt}
}

type WhileStatement struct {
	base
	Test Node
	Body Node // BlockStatement
}

func NewWhileStatement(loc Loc, test, body Node) *WhileStatement {
	return &WhileStatement{base: base{Tag: "WhileStatement", L: loc}, Test: test, Body: body}
}

type ForOfStatement struct {
	base
	Left     Node // VariableDeclaration binding the loop variable
	Right    Node
	Body     Node // BlockStatement
}

func NewForOfStatement(loc Loc, left, right, body Node) *ForOfStatement {
	return &ForOfStatement{base: base{Tag: "ForOfStatement", L: loc}, Left: left, Right: right, Body: body}
}

type VariableDeclarator struct {
	ID   Node
	Init Node // nil if uninitialized
}

type VariableDeclaration struct {
	base
	Kind         string
	Declarations []VariableDeclarator
}

func NewVariableDeclaration(loc Loc, kind string, decls []VariableDeclarator) *VariableDeclaration {
	return &VariableDeclaration{base: base{Tag: "VariableDeclaration", L: loc}, Kind: kind, Declarations: decls}
}

// --- Classes ---

type MethodKind string

const (
	MethodNormal      MethodKind = "method"
	MethodConstructor MethodKind = "constructor"
)

type MethodDefinition struct {
	Key      Node
	Value    *FunctionExpression
	Kind     MethodKind
	Static   bool
}

type PropertyDefinition struct {
	Key    Node
	Value  Node // nil if no initializer
	Static bool
}

type ClassBody struct {
	base
	Body []Node // *MethodDefinitionNode / *PropertyDefinitionNode
}

func NewClassBody(loc Loc, body []Node) *ClassBody {
	return &ClassBody{base: base{Tag: "ClassBody", L: loc}, Body: body}
}

// MethodDefinitionNode and PropertyDefinitionNode wrap MethodDefinition/
// PropertyDefinition as Nodes so ClassBody.Body can hold either.
type MethodDefinitionNode struct {
	base
	MethodDefinition
}

func NewMethodDefinitionNode(loc Loc, m MethodDefinition) *MethodDefinitionNode {
	return &MethodDefinitionNode{base: base{Tag: "MethodDefinition", L: loc}, MethodDefinition: m}
}

type PropertyDefinitionNode struct {
	base
	PropertyDefinition
}

func NewPropertyDefinitionNode(loc Loc, p PropertyDefinition) *PropertyDefinitionNode {
	return &PropertyDefinitionNode{base: base{Tag: "PropertyDefinition", L: loc}, PropertyDefinition: p}
}

type ClassDeclaration struct {
	base
	ID   *Identifier
	Body *ClassBody
}

func NewClassDeclaration(loc Loc, id *Identifier, body *ClassBody) *ClassDeclaration {
	return &ClassDeclaration{base: base{Tag: "ClassDeclaration", L: loc}, ID: id, Body: body}
}

// --- Modules ---

type ImportSpecifierNode struct {
	base
	Imported *Identifier // nil for a default/namespace specifier
	Local    *Identifier
	Kind     string // "named", "default", "namespace"
}

type ImportDeclaration struct {
	base
	Specifiers []*ImportSpecifierNode
	Source     *Literal
}

func NewImportDeclaration(loc Loc, specs []*ImportSpecifierNode, source *Literal) *ImportDeclaration {
	return &ImportDeclaration{base: base{Tag: "ImportDeclaration", L: loc}, Specifiers: specs, Source: source}
}

type ExportSpecifier struct {
	Local    *Identifier
	Exported *Identifier
}

type ExportNamedDeclaration struct {
	base
	Declaration Node // nil when exporting pre-declared names by reference
	Specifiers  []ExportSpecifier
}

func NewExportNamedDeclaration(loc Loc, decl Node, specs []ExportSpecifier) *ExportNamedDeclaration {
	return &ExportNamedDeclaration{base: base{Tag: "ExportNamedDeclaration", L: loc}, Declaration: decl, Specifiers: specs}
}
