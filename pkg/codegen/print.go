package codegen

import (
	"github.com/hlvm-dev/hql/pkg/estree"
)

func (g *generator) printProgram(prog *estree.Program) {
	for _, stmt := range prog.Body {
		g.printStatement(stmt)
	}
}

func (g *generator) printStatement(n estree.Node) {
	switch v := n.(type) {
	case *estree.ExpressionStatement:
		g.writeIndent()
		g.printExpr(v.Expression)
		g.write(";")
		g.newline()
	case *estree.VariableDeclaration:
		g.writeIndent()
		g.printVariableDeclaration(v)
		g.write(";")
		g.newline()
	case *estree.ReturnStatement:
		g.writeIndent()
		g.mark(v.Loc(), "")
		g.write("return")
		if v.Argument != nil {
			g.write(" ")
			g.printExpr(v.Argument)
		}
		g.write(";")
		g.newline()
	case *estree.ThrowStatement:
		g.writeIndent()
		g.mark(v.Loc(), "")
		g.write("throw ")
		g.printExpr(v.Argument)
		g.write(";")
		g.newline()
	case *estree.IfStatement:
		g.printIf(v)
	case *estree.WhileStatement:
		g.writeIndent()
		g.mark(v.Loc(), "")
		g.write("while (")
		g.printExpr(v.Test)
		g.write(") ")
		g.printBlock(v.Body.(*estree.BlockStatement))
		g.newline()
	case *estree.ForOfStatement:
		g.writeIndent()
		g.mark(v.Loc(), "")
		g.write("for (")
		g.printVariableDeclaration(v.Left.(*estree.VariableDeclaration))
		g.write(" of ")
		g.printExpr(v.Right)
		g.write(") ")
		g.printBlock(v.Body.(*estree.BlockStatement))
		g.newline()
	case *estree.FunctionDeclaration:
		g.writeIndent()
		g.mark(v.Loc(), v.ID.Name)
		g.write("function ")
		g.printIdentifier(v.ID)
		g.printParamList(v.Params)
		g.write(" ")
		g.printBlock(v.Body)
		g.newline()
	case *estree.ClassDeclaration:
		g.printClass(v)
	case *estree.ImportDeclaration:
		g.printImport(v)
	case *estree.ExportNamedDeclaration:
		g.printExport(v)
	default:
		g.writeIndent()
		g.printExpr(n)
		g.write(";")
		g.newline()
	}
}

func (g *generator) printIf(v *estree.IfStatement) {
	g.writeIndent()
	g.mark(v.Loc(), "")
	g.write("if (")
	g.printExpr(v.Test)
	g.write(") ")
	g.printBlock(v.Consequent.(*estree.BlockStatement))
	if v.Alternate != nil {
		g.write(" else ")
		g.printBlock(v.Alternate.(*estree.BlockStatement))
	}
	g.newline()
}

func (g *generator) printBlock(b *estree.BlockStatement) {
	if len(b.Body) == 0 {
		g.write("{}")
		return
	}
	g.write("{")
	g.newline()
	g.indent++
	for _, stmt := range b.Body {
		g.printStatement(stmt)
	}
	g.indent--
	g.writeIndent()
	g.write("}")
}

func (g *generator) printVariableDeclaration(v *estree.VariableDeclaration) {
	g.mark(v.Loc(), "")
	g.write(v.Kind)
	g.write(" ")
	for i, d := range v.Declarations {
		if i > 0 {
			g.write(", ")
		}
		g.printExpr(d.ID)
		if d.Init != nil {
			g.write(" = ")
			g.printExpr(d.Init)
		}
	}
}

func (g *generator) printParamList(params []estree.Node) {
	g.write("(")
	for i, p := range params {
		if i > 0 {
			g.write(", ")
		}
		g.printExpr(p)
	}
	g.write(")")
}

func (g *generator) printClass(v *estree.ClassDeclaration) {
	g.writeIndent()
	g.mark(v.Loc(), v.ID.Name)
	g.write("class ")
	g.printIdentifier(v.ID)
	g.write(" {")
	g.newline()
	g.indent++
	for _, member := range v.Body.Body {
		m := member.(*estree.MethodDefinitionNode)
		g.writeIndent()
		if m.Static {
			g.write("static ")
		}
		g.printExpr(m.Key)
		g.printParamList(m.Value.Params)
		g.write(" ")
		g.printBlock(m.Value.Body)
		g.newline()
	}
	g.indent--
	g.writeIndent()
	g.write("}")
	g.newline()
}

func (g *generator) printImport(v *estree.ImportDeclaration) {
	g.writeIndent()
	g.mark(v.Loc(), "")
	g.write("import ")

	var defaultSpec, namespaceSpec *estree.ImportSpecifierNode
	named := make([]*estree.ImportSpecifierNode, 0, len(v.Specifiers))
	for _, s := range v.Specifiers {
		switch s.Kind {
		case "default":
			defaultSpec = s
		case "namespace":
			namespaceSpec = s
		default:
			named = append(named, s)
		}
	}

	wroteClause := false
	if defaultSpec != nil {
		g.printIdentifier(defaultSpec.Local)
		wroteClause = true
	}
	if namespaceSpec != nil {
		if wroteClause {
			g.write(", ")
		}
		g.write("* as ")
		g.printIdentifier(namespaceSpec.Local)
		wroteClause = true
	}
	if len(named) > 0 || !wroteClause {
		if wroteClause {
			g.write(", ")
		}
		g.write("{ ")
		for i, s := range named {
			if i > 0 {
				g.write(", ")
			}
			if s.Imported.Name != s.Local.Name {
				g.printIdentifier(s.Imported)
				g.write(" as ")
				g.printIdentifier(s.Local)
			} else {
				g.printIdentifier(s.Local)
			}
		}
		g.write(" }")
	}

	g.write(" from ")
	g.printExpr(v.Source)
	g.write(";")
	g.newline()
}

func (g *generator) printExport(v *estree.ExportNamedDeclaration) {
	g.writeIndent()
	g.mark(v.Loc(), "")
	g.write("export ")
	if v.Declaration != nil {
		g.printVariableDeclaration(v.Declaration.(*estree.VariableDeclaration))
		g.write(";")
		g.newline()
		return
	}
	g.write("{ ")
	for i, s := range v.Specifiers {
		if i > 0 {
			g.write(", ")
		}
		if s.Local.Name != s.Exported.Name {
			g.printIdentifier(s.Local)
			g.write(" as ")
			g.printIdentifier(s.Exported)
		} else {
			g.printIdentifier(s.Local)
		}
	}
	g.write(" };")
	g.newline()
}

// --- expressions ---

func (g *generator) printIdentifier(id *estree.Identifier) {
	g.mark(id.Loc(), id.Name)
	g.write(id.Name)
}

func (g *generator) printExpr(n estree.Node) {
	switch v := n.(type) {
	case *estree.Identifier:
		g.printIdentifier(v)
	case *estree.Literal:
		g.mark(v.Loc(), "")
		g.write(v.Raw)
	case *estree.TemplateLiteral:
		g.printTemplateLiteral(v)
	case *estree.ArrayExpression:
		g.mark(v.Loc(), "")
		g.write("[")
		for i, e := range v.Elements {
			if i > 0 {
				g.write(", ")
			}
			if e == nil {
				continue
			}
			g.printExpr(e)
		}
		g.write("]")
	case *estree.ObjectExpression:
		g.printObjectExpression(v)
	case *estree.BinaryExpression:
		g.mark(v.Loc(), "")
		g.printMaybeParen(v.Left)
		g.write(" " + v.Operator + " ")
		g.printMaybeParen(v.Right)
	case *estree.LogicalExpression:
		g.mark(v.Loc(), "")
		g.printMaybeParen(v.Left)
		g.write(" " + v.Operator + " ")
		g.printMaybeParen(v.Right)
	case *estree.UnaryExpression:
		g.mark(v.Loc(), "")
		g.write(v.Operator)
		if isWordOperator(v.Operator) {
			g.write(" ")
		}
		g.printMaybeParen(v.Argument)
	case *estree.ConditionalExpression:
		g.mark(v.Loc(), "")
		g.printMaybeParen(v.Test)
		g.write(" ? ")
		g.printMaybeParen(v.Consequent)
		g.write(" : ")
		g.printMaybeParen(v.Alternate)
	case *estree.CallExpression:
		g.mark(v.Loc(), "")
		g.printMaybeParen(v.Callee)
		g.write("(")
		for i, a := range v.Arguments {
			if i > 0 {
				g.write(", ")
			}
			g.printExpr(a)
		}
		g.write(")")
	case *estree.NewExpression:
		g.mark(v.Loc(), "")
		g.write("new ")
		g.printMaybeParen(v.Callee)
		g.write("(")
		for i, a := range v.Arguments {
			if i > 0 {
				g.write(", ")
			}
			g.printExpr(a)
		}
		g.write(")")
	case *estree.MemberExpression:
		g.mark(v.Loc(), "")
		g.printMaybeParen(v.Object)
		if v.Computed {
			g.write("[")
			g.printExpr(v.Property)
			g.write("]")
		} else {
			g.write(".")
			g.printExpr(v.Property)
		}
	case *estree.SpreadElement:
		g.mark(v.Loc(), "")
		g.write("...")
		g.printExpr(v.Argument)
	case *estree.ArrowFunctionExpression:
		g.printArrow(v)
	case *estree.FunctionExpression:
		g.mark(v.Loc(), "")
		g.write("function ")
		if v.ID != nil {
			g.printIdentifier(v.ID)
		}
		g.printParamList(v.Params)
		g.write(" ")
		g.printBlock(v.Body)
	case *estree.AssignmentExpression:
		g.mark(v.Loc(), "")
		g.printExpr(v.Left)
		g.write(" " + v.Operator + " ")
		g.printMaybeParen(v.Right)
	case *estree.SequenceExpression:
		for i, e := range v.Expressions {
			if i > 0 {
				g.write(", ")
			}
			g.printExpr(e)
		}
	case *estree.ArrayPattern:
		g.write("[")
		for i, e := range v.Elements {
			if i > 0 {
				g.write(", ")
			}
			if e == nil {
				continue
			}
			g.printExpr(e)
		}
		g.write("]")
	case *estree.ObjectPattern:
		g.write("{ ")
		for i, p := range v.Properties {
			if i > 0 {
				g.write(", ")
			}
			g.printExpr(p.Key)
			g.write(": ")
			g.printExpr(p.Value)
		}
		g.write(" }")
	case *estree.RestElement:
		g.write("...")
		g.printExpr(v.Argument)
	case *estree.AssignmentPattern:
		g.printExpr(v.Left)
		g.write(" = ")
		g.printExpr(v.Right)
	default:
		panic("codegen: unhandled estree node")
	}
}

func (g *generator) printObjectExpression(v *estree.ObjectExpression) {
	g.mark(v.Loc(), "")
	if len(v.Properties) == 0 {
		g.write("{}")
		return
	}
	g.write("{ ")
	for i, p := range v.Properties {
		if i > 0 {
			g.write(", ")
		}
		if p.Computed {
			g.write("[")
			g.printExpr(p.Key)
			g.write("]")
		} else {
			g.printExpr(p.Key)
		}
		g.write(": ")
		g.printExpr(p.Value)
	}
	g.write(" }")
}

func (g *generator) printTemplateLiteral(v *estree.TemplateLiteral) {
	g.mark(v.Loc(), "")
	g.write("`")
	for i, q := range v.Quasis {
		g.write(q.Raw)
		if i < len(v.Expressions) {
			g.write("${")
			g.printExpr(v.Expressions[i])
			g.write("}")
		}
	}
	g.write("`")
}

func (g *generator) printArrow(v *estree.ArrowFunctionExpression) {
	g.mark(v.Loc(), "")
	if len(v.Params) == 1 {
		if id, ok := v.Params[0].(*estree.Identifier); ok {
			g.printIdentifier(id)
		} else {
			g.printParamList(v.Params)
		}
	} else {
		g.printParamList(v.Params)
	}
	g.write(" => ")
	if v.Expression {
		g.printMaybeParen(v.Body)
		return
	}
	g.printBlock(v.Body.(*estree.BlockStatement))
}

// printMaybeParen prints n, wrapping it in parentheses if its own
// operator precedence could otherwise be misread in the surrounding
// expression. This compiler favors always-safe parenthesization over
// tracking a full precedence table.
func (g *generator) printMaybeParen(n estree.Node) {
	if needsParens(n) {
		g.write("(")
		g.printExpr(n)
		g.write(")")
		return
	}
	g.printExpr(n)
}

func needsParens(n estree.Node) bool {
	switch n.(type) {
	case *estree.BinaryExpression, *estree.LogicalExpression,
		*estree.ConditionalExpression, *estree.AssignmentExpression,
		*estree.ArrowFunctionExpression, *estree.FunctionExpression,
		*estree.SequenceExpression:
		return true
	}
	return false
}

func isWordOperator(op string) bool {
	return op == "typeof" || op == "void" || op == "delete"
}
