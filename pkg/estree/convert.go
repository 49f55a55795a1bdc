package estree

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// runtimeHelperNames is the fixed set of injected runtime identifiers
// the driver may need to prepend as a prelude (spec §4.9).
var runtimeHelperNames = map[string]bool{
	"__hql_get": true, "__hql_range": true, "__hql_toSequence": true,
	"__hql_for_each": true, "__hql_hash_map": true, "__hql_throw": true,
	"__hql_deepFreeze": true, "__hql_getNumeric": true,
}

// Converter lowers one pkg/ir tree into ESTree, recording which runtime
// helpers were referenced along the way so the driver can inject only
// the prelude a given module actually needs.
type Converter struct {
	used   map[string]bool
	tmp    int
}

func NewConverter() *Converter {
	return &Converter{used: make(map[string]bool)}
}

// UsedHelpers returns, in sorted order, every runtime helper identifier
// this conversion referenced.
func (c *Converter) UsedHelpers() []string {
	out := make([]string, 0, len(c.used))
	for name := range c.used {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// isIdentifierName reports whether name can stand unquoted as an object
// key ("foo" rather than "foo-bar"), a conservative ASCII-only check
// since every key this compiler generates comes from source identifiers
// or keyword sugar, never arbitrary user strings.
func isIdentifierName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 {
			if !isLetter {
				return false
			}
			continue
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

func (c *Converter) freshTemp(prefix string) string {
	c.tmp++
	return fmt.Sprintf("__%s%d", prefix, c.tmp)
}

// Convert is the IR → ESTree entry point (spec §4.9 step 1).
func Convert(prog *ir.Program) (*Program, []string) {
	c := NewConverter()
	body := c.convertStatements(prog.Body)
	return NewProgram(c.loc(prog.Meta), body), c.UsedHelpers()
}

// --- loc helpers ---

func (c *Converter) loc(pos ast.Position) Loc {
	end := Position{Line: pos.Line, Column: pos.Column}
	if pos.EndLine != 0 {
		end = Position{Line: pos.EndLine, Column: pos.EndColumn}
	}
	return Loc{Start: Position{Line: pos.Line, Column: pos.Column}, End: end, Source: pos.FilePath}
}

// locToken narrows loc to a single-line span of length tokenLen, used
// for identifiers and literals so the end column reflects the token's
// own length rather than whatever span the reader recorded (spec §4.9:
// "for identifiers and literals the end column is computed from the
// token length").
func (c *Converter) locToken(pos ast.Position, tokenLen int) Loc {
	return Loc{
		Start:  Position{Line: pos.Line, Column: pos.Column},
		End:    Position{Line: pos.Line, Column: pos.Column + tokenLen},
		Source: pos.FilePath,
	}
}

// --- statements ---

func (c *Converter) convertStatements(stmts []ir.Node) []Node {
	out := make([]Node, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.convertStatement(s))
	}
	return out
}

func (c *Converter) convertStatement(n ir.Node) Node {
	switch v := n.(type) {
	case *ir.ExpressionStatement:
		return NewExpressionStatement(c.loc(v.Meta), c.convertExpr(v.Expression))
	case *ir.VariableDeclaration:
		return c.convertVariableDeclaration(v)
	case *ir.ReturnStatement:
		var arg Node
		if v.Argument != nil {
			arg = c.convertExpr(v.Argument)
		}
		return NewReturnStatement(c.loc(v.Meta), arg)
	case *ir.ThrowStatement:
		return NewThrowStatement(c.loc(v.Meta), c.convertExpr(v.Argument))
	case *ir.IfStatement:
		test := c.convertExpr(v.Test)
		cons := NewBlockStatement(c.loc(v.Meta), c.convertStatements(v.Consequent))
		var alt Node
		if v.Alternate != nil {
			alt = NewBlockStatement(c.loc(v.Meta), c.convertStatements(v.Alternate))
		}
		return NewIfStatement(c.loc(v.Meta), test, cons, alt)
	case *ir.WhileStatement:
		test := c.convertExpr(v.Test)
		body := NewBlockStatement(c.loc(v.Meta), c.convertStatements(v.Body))
		return NewWhileStatement(c.loc(v.Meta), test, body)
	case *ir.ForOfStatement:
		return c.convertForOf(v)
	case *ir.FnFunctionDeclaration:
		return c.convertFnDeclaration(v)
	case *ir.ClassDeclaration:
		return c.convertClassDeclaration(v)
	case *ir.ImportDeclaration:
		return c.convertImportDeclaration(v)
	case *ir.ExportNamedDeclaration:
		specs := make([]ExportSpecifier, 0, len(v.Names))
		for _, name := range v.Names {
			id := NewIdentifier(c.locToken(v.Meta, len(name)), name)
			specs = append(specs, ExportSpecifier{Local: id, Exported: id})
		}
		return NewExportNamedDeclaration(c.loc(v.Meta), nil, specs)
	case *ir.ExportNamedExpr:
		decl := NewVariableDeclaration(c.loc(v.Meta), "const", []VariableDeclarator{
			{ID: NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name), Init: c.convertExpr(v.Value)},
		})
		return NewExportNamedDeclaration(c.loc(v.Meta), decl, nil)
	default:
		// An expression lowered directly to statement position (shouldn't
		// occur from the builder, but keeps the dispatch total).
		return NewExpressionStatement(c.loc(n.Pos()), c.convertExpr(n))
	}
}

func (c *Converter) convertVariableDeclaration(v *ir.VariableDeclaration) Node {
	decls := make([]VariableDeclarator, 0, len(v.Declarations))
	for _, d := range v.Declarations {
		var init Node
		if d.Init != nil {
			init = c.convertExpr(d.Init)
		}
		decls = append(decls, VariableDeclarator{ID: c.convertPattern(d.ID), Init: init})
	}
	return NewVariableDeclaration(c.loc(v.Meta), v.Kind, decls)
}

func (c *Converter) convertForOf(v *ir.ForOfStatement) Node {
	loopVar := NewIdentifier(c.locToken(v.Meta, len(v.Variable)), v.Variable)
	left := NewVariableDeclaration(c.loc(v.Meta), "const", []VariableDeclarator{{ID: loopVar}})
	right := c.wrapHelperCall("__hql_toSequence", v.Meta, c.convertExpr(v.Iterable))
	body := NewBlockStatement(c.loc(v.Meta), c.convertStatements(v.Body))
	return NewForOfStatement(c.loc(v.Meta), left, right, body)
}

func (c *Converter) wrapHelperCall(name string, pos ast.Position, args ...Node) Node {
	c.used[name] = true
	callee := NewIdentifier(c.locToken(pos, len(name)), name)
	return NewCallExpression(c.loc(pos), callee, args)
}

func (c *Converter) convertFnDeclaration(v *ir.FnFunctionDeclaration) Node {
	id := NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name)
	params, prologue := c.convertFnParams(v)
	body := append(prologue, c.convertStatements(v.Body)...)
	return NewFunctionDeclaration(c.loc(v.Meta), id, params, NewBlockStatement(c.loc(v.Meta), body))
}

// convertFnParams builds the ESTree parameter list and, for a
// JSON-map-parameter function, the body prologue that destructures each
// declared key off the single synthesized parameter (spec §4.7/§4.9: "a
// single parameter __hql_params = {} destructures each key via ?? to
// produce the declared name").
func (c *Converter) convertFnParams(v *ir.FnFunctionDeclaration) ([]Node, []Node) {
	if v.UsesJSONMapParams {
		paramsName := "__hql_params"
		param := NewAssignmentPattern(
			c.loc(v.Meta),
			NewIdentifier(c.locToken(v.Meta, len(paramsName)), paramsName),
			NewObjectExpression(c.loc(v.Meta), nil),
		)
		prologue := make([]Node, 0, len(v.JSONMapKeys))
		for i, key := range v.JSONMapKeys {
			member := NewMemberExpression(
				c.loc(v.Meta),
				NewIdentifier(c.locToken(v.Meta, len(paramsName)), paramsName),
				NewIdentifier(c.locToken(v.Meta, len(key)), key),
				false,
			)
			var defaultValue Node
			if i < len(v.JSONMapDefaults) && v.JSONMapDefaults[i] != nil {
				defaultValue = c.convertExpr(v.JSONMapDefaults[i])
			} else {
				defaultValue = NewIdentifier(c.locToken(v.Meta, len("undefined")), "undefined")
			}
			fallback := NewLogicalExpression(c.loc(v.Meta), "??", member, defaultValue)
			decl := NewVariableDeclaration(c.loc(v.Meta), "const", []VariableDeclarator{
				{ID: NewIdentifier(c.locToken(v.Meta, len(key)), key), Init: fallback},
			})
			prologue = append(prologue, decl)
		}
		return []Node{param}, prologue
	}
	params := make([]Node, 0, len(v.Params))
	for _, p := range v.Params {
		params = append(params, c.convertPattern(p))
	}
	return params, nil
}

func (c *Converter) convertClassDeclaration(v *ir.ClassDeclaration) Node {
	id := NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name)
	members := make([]Node, 0, len(v.Methods))
	for _, m := range v.Methods {
		members = append(members, c.convertClassMethod(m, v.Meta))
	}
	body := NewClassBody(c.loc(v.Meta), members)
	return NewClassDeclaration(c.loc(v.Meta), id, body)
}

func (c *Converter) convertClassMethod(m ir.ClassMethod, meta ast.Position) Node {
	kind := MethodNormal
	if m.Name == "constructor" {
		kind = MethodConstructor
	}
	params := make([]Node, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, c.convertPattern(p))
	}
	fnExpr := NewFunctionExpression(c.loc(meta), nil, params, NewBlockStatement(c.loc(meta), c.convertStatements(m.Body)))
	key := NewIdentifier(c.locToken(meta, len(m.Name)), m.Name)
	return NewMethodDefinitionNode(c.loc(meta), MethodDefinition{Key: key, Value: fnExpr, Kind: kind, Static: m.Static})
}

func (c *Converter) convertImportDeclaration(v *ir.ImportDeclaration) Node {
	specs := make([]*ImportSpecifierNode, 0, len(v.Specifiers))
	for _, s := range v.Specifiers {
		local := NewIdentifier(c.locToken(v.Meta, len(s.Local)), s.Local)
		switch {
		case s.Default:
			specs = append(specs, &ImportSpecifierNode{base: base{Tag: "ImportDefaultSpecifier", L: c.loc(v.Meta)}, Local: local, Kind: "default"})
		case s.Namespace:
			specs = append(specs, &ImportSpecifierNode{base: base{Tag: "ImportNamespaceSpecifier", L: c.loc(v.Meta)}, Local: local, Kind: "namespace"})
		default:
			imported := NewIdentifier(c.locToken(v.Meta, len(s.Imported)), s.Imported)
			specs = append(specs, &ImportSpecifierNode{base: base{Tag: "ImportSpecifier", L: c.loc(v.Meta)}, Imported: imported, Local: local, Kind: "named"})
		}
	}
	source := NewLiteral(c.loc(v.Meta), v.Source, strconv.Quote(v.Source))
	return NewImportDeclaration(c.loc(v.Meta), specs, source)
}

// --- patterns ---

func (c *Converter) convertPattern(n ir.Node) Node {
	switch v := n.(type) {
	case *ir.Identifier:
		return NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name)
	case *ir.ArrayPattern:
		elems := make([]Node, 0, len(v.Elements))
		for _, e := range v.Elements {
			if e == nil {
				elems = append(elems, nil)
				continue
			}
			elems = append(elems, c.convertPattern(e))
		}
		return NewArrayPattern(c.loc(v.Meta), elems)
	case *ir.ObjectPattern:
		props := make([]ObjectPatternProperty, 0, len(v.Properties))
		for _, p := range v.Properties {
			key := NewIdentifier(c.locToken(v.Meta, len(p.Key)), p.Key)
			props = append(props, ObjectPatternProperty{Key: key, Value: c.convertPattern(p.Value)})
		}
		return NewObjectPattern(c.loc(v.Meta), props)
	case *ir.RestElement:
		return NewRestElement(c.loc(v.Meta), c.convertPattern(v.Argument))
	case *ir.AssignmentPattern:
		return NewAssignmentPattern(c.loc(v.Meta), c.convertPattern(v.Left), c.convertExpr(v.Right))
	default:
		return c.convertExpr(n)
	}
}

// --- expressions ---

func (c *Converter) convertExpr(n ir.Node) Node {
	switch v := n.(type) {
	case *ir.Literal:
		return c.convertLiteral(v)
	case *ir.Identifier:
		if runtimeHelperNames[v.Name] {
			c.used[v.Name] = true
		}
		return NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name)
	case *ir.ArrayExpression:
		elems := make([]Node, 0, len(v.Elements))
		for _, e := range v.Elements {
			elems = append(elems, c.convertExpr(e))
		}
		return NewArrayExpression(c.loc(v.Meta), elems)
	case *ir.ObjectExpression:
		props := make([]Property, 0, len(v.Properties))
		for _, p := range v.Properties {
			var key Node
			switch {
			case p.Computed:
				key = NewIdentifier(c.locToken(v.Meta, len(p.Key)), p.Key)
			case isIdentifierName(p.Key):
				key = NewIdentifier(c.locToken(v.Meta, len(p.Key)), p.Key)
			default:
				key = NewLiteral(c.locToken(v.Meta, len(p.Key)+2), p.Key, strconv.Quote(p.Key))
			}
			props = append(props, Property{Key: key, Value: c.convertExpr(p.Value), Computed: p.Computed})
		}
		return NewObjectExpression(c.loc(v.Meta), props)
	case *ir.TemplateLiteral:
		return c.convertTemplateLiteral(v)
	case *ir.BinaryExpression:
		return NewBinaryExpression(c.loc(v.Meta), v.Operator, c.convertExpr(v.Left), c.convertExpr(v.Right))
	case *ir.LogicalExpression:
		return NewLogicalExpression(c.loc(v.Meta), v.Operator, c.convertExpr(v.Left), c.convertExpr(v.Right))
	case *ir.UnaryExpression:
		return NewUnaryExpression(c.loc(v.Meta), v.Operator, c.convertExpr(v.Argument))
	case *ir.ConditionalExpression:
		return NewConditionalExpression(c.loc(v.Meta), c.convertExpr(v.Test), c.convertExpr(v.Consequent), c.convertExpr(v.Alternate))
	case *ir.CallExpression:
		return c.convertCall(v)
	case *ir.NewExpression:
		args := make([]Node, 0, len(v.Arguments))
		for _, a := range v.Arguments {
			args = append(args, c.convertExpr(a))
		}
		return NewNewExpression(c.loc(v.Meta), c.convertExpr(v.Callee), args)
	case *ir.MemberExpression:
		return c.convertMember(v)
	case *ir.InteropIIFE:
		return c.convertInteropIIFE(v)
	case *ir.SpreadElement:
		return NewSpreadElement(c.loc(v.Meta), c.convertExpr(v.Argument))
	case *ir.ArrowFunctionExpression:
		return c.convertArrow(v)
	case *ir.FnFunctionDeclaration:
		// An anonymous (or named-but-inline) fn used as a value.
		id := NewIdentifier(c.locToken(v.Meta, len(v.Name)), v.Name)
		params, prologue := c.convertFnParams(v)
		body := append(prologue, c.convertStatements(v.Body)...)
		return NewFunctionExpression(c.loc(v.Meta), id, params, NewBlockStatement(c.loc(v.Meta), body))
	case *ir.AssignmentExpression:
		return NewAssignmentExpression(c.loc(v.Meta), v.Operator, c.convertExpr(v.Left), c.convertExpr(v.Right))
	case *ir.AssignmentPattern:
		return NewAssignmentPattern(c.loc(v.Meta), c.convertPattern(v.Left), c.convertExpr(v.Right))
	default:
		panic(fmt.Sprintf("estree: unhandled ir node %T", n))
	}
}

// convertLiteral emits negative int/float literals as UnaryExpression("-",
// Literal(+n)) per the ECMAScript grammar, which has no negative numeric
// literal token (spec §4.9).
func (c *Converter) convertLiteral(v *ir.Literal) Node {
	switch v.Kind {
	case ir.LitNull:
		return NewLiteral(c.locToken(v.Meta, 4), nil, "null")
	case ir.LitBool:
		b := v.Value.(bool)
		raw := "false"
		if b {
			raw = "true"
		}
		return NewLiteral(c.locToken(v.Meta, len(raw)), b, raw)
	case ir.LitInt:
		n := v.Value.(int64)
		raw := strconv.FormatInt(n, 10)
		if n < 0 {
			posRaw := strconv.FormatInt(-n, 10)
			lit := NewLiteral(c.locToken(v.Meta, len(posRaw)), float64(-n), posRaw)
			return NewUnaryExpression(c.locToken(v.Meta, len(raw)), "-", lit)
		}
		return NewLiteral(c.locToken(v.Meta, len(raw)), float64(n), raw)
	case ir.LitFloat:
		f := v.Value.(float64)
		raw := strconv.FormatFloat(f, 'g', -1, 64)
		if f < 0 {
			posRaw := strconv.FormatFloat(-f, 'g', -1, 64)
			lit := NewLiteral(c.locToken(v.Meta, len(posRaw)), -f, posRaw)
			return NewUnaryExpression(c.locToken(v.Meta, len(raw)), "-", lit)
		}
		return NewLiteral(c.locToken(v.Meta, len(raw)), f, raw)
	case ir.LitString:
		s := v.Value.(string)
		raw := strconv.Quote(s)
		return NewLiteral(c.locToken(v.Meta, len(raw)), s, raw)
	default:
		panic(fmt.Sprintf("estree: unknown literal kind %v", v.Kind))
	}
}

func (c *Converter) convertTemplateLiteral(v *ir.TemplateLiteral) Node {
	quasis := make([]*TemplateElement, 0, len(v.Quasis))
	for i, q := range v.Quasis {
		quasis = append(quasis, &TemplateElement{
			base:   base{Tag: "TemplateElement", L: c.loc(v.Meta)},
			Raw:    q,
			Cooked: q,
			Tail:   i == len(v.Quasis)-1,
		})
	}
	exprs := make([]Node, 0, len(v.Expressions))
	for _, e := range v.Expressions {
		exprs = append(exprs, c.convertExpr(e))
	}
	return NewTemplateLiteral(c.loc(v.Meta), quasis, exprs)
}

func (c *Converter) convertCall(v *ir.CallExpression) Node {
	args := make([]Node, 0, len(v.Arguments))
	for _, a := range v.Arguments {
		args = append(args, c.convertExpr(a))
	}
	return NewCallExpression(c.loc(v.Meta), c.convertExpr(v.Callee), args)
}

func (c *Converter) convertMember(v *ir.MemberExpression) Node {
	var prop Node
	if v.Computed {
		prop = c.convertExpr(stringAsExprNode(v.Property, v.Meta))
	} else {
		prop = NewIdentifier(c.locToken(v.Meta, len(v.Property)), v.Property)
	}
	return NewMemberExpression(c.loc(v.Meta), c.convertExpr(v.Object), prop, v.Computed)
}

// stringAsExprNode is a tiny escape hatch for a computed member whose
// property name is carried as a plain Go string rather than its own IR
// node; it is reinterpreted as a string-literal IR node so the regular
// expression conversion path can produce the ESTree Literal for it.
func stringAsExprNode(name string, meta ast.Position) ir.Node {
	return &ir.Literal{Kind: ir.LitString, Value: name, Meta: meta}
}

// convertInteropIIFE expands a `(js-interop obj "prop")` access into a
// self-invoking arrow that resolves Property on Object once, then either
// calls it (preserving `this` via .call) or returns it as a plain value,
// depending on its runtime type (spec §4.9).
func (c *Converter) convertInteropIIFE(v *ir.InteropIIFE) Node {
	objName := c.freshTemp("interop_obj")
	fnName := c.freshTemp("interop_fn")
	loc := c.loc(v.Meta)

	objDecl := NewVariableDeclaration(loc, "const", []VariableDeclarator{
		{ID: NewIdentifier(loc, objName), Init: c.convertExpr(v.Object)},
	})
	fnDecl := NewVariableDeclaration(loc, "const", []VariableDeclarator{
		{
			ID: NewIdentifier(loc, fnName),
			Init: NewMemberExpression(loc, NewIdentifier(loc, objName),
				NewIdentifier(c.locToken(v.Meta, len(v.Property)), v.Property), false),
		},
	})
	typeofFn := NewUnaryExpression(loc, "typeof", NewIdentifier(loc, fnName))
	isFunction := NewBinaryExpression(loc, "===", typeofFn, NewLiteral(loc, "function", `"function"`))
	callIt := NewCallExpression(loc,
		NewMemberExpression(loc, NewIdentifier(loc, fnName), NewIdentifier(loc, "call"), false),
		[]Node{NewIdentifier(loc, objName)})
	ret := NewReturnStatement(loc, NewConditionalExpression(loc, isFunction, callIt, NewIdentifier(loc, fnName)))

	body := NewBlockStatement(loc, []Node{objDecl, fnDecl, ret})
	arrow := NewArrowFunctionExpression(loc, nil, body, false)
	return NewCallExpression(loc, arrow, nil)
}

func (c *Converter) convertArrow(v *ir.ArrowFunctionExpression) Node {
	params := make([]Node, 0, len(v.Params))
	for _, p := range v.Params {
		params = append(params, c.convertPattern(p))
	}
	if v.ExpressionBody && len(v.Body) == 1 {
		if es, ok := v.Body[0].(*ir.ExpressionStatement); ok {
			return NewArrowFunctionExpression(c.loc(v.Meta), params, c.convertExpr(es.Expression), true)
		}
	}
	body := NewBlockStatement(c.loc(v.Meta), c.convertStatements(v.Body))
	return NewArrowFunctionExpression(c.loc(v.Meta), params, body, false)
}
