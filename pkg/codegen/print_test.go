package codegen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/estree"
)

func loc() estree.Loc {
	return estree.Loc{Start: estree.Position{Line: 1, Column: 1}, End: estree.Position{Line: 1, Column: 2}, Source: "m.hql"}
}

func TestGenerateVariableDeclaration(t *testing.T) {
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewVariableDeclaration(loc(), "let", []estree.VariableDeclarator{
			{ID: estree.NewIdentifier(loc(), "x"), Init: estree.NewLiteral(loc(), float64(5), "5")},
		}),
	})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "let x = 5;\n", res.Code)
}

func TestGeneratePreambleWrittenBeforeProgramBody(t *testing.T) {
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewVariableDeclaration(loc(), "let", []estree.VariableDeclarator{
			{ID: estree.NewIdentifier(loc(), "x"), Init: estree.NewLiteral(loc(), float64(5), "5")},
		}),
	})
	res, err := Generate(prog, nil, Options{Preamble: "function __hql_get() {}\n"})
	require.NoError(t, err)
	assert.Equal(t, "function __hql_get() {}\nlet x = 5;\n", res.Code)
}

func TestGenerateIfWithElseBlock(t *testing.T) {
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewIfStatement(loc(),
			estree.NewIdentifier(loc(), "cond"),
			estree.NewBlockStatement(loc(), []estree.Node{
				estree.NewExpressionStatement(loc(), estree.NewIdentifier(loc(), "a")),
			}),
			estree.NewBlockStatement(loc(), []estree.Node{
				estree.NewExpressionStatement(loc(), estree.NewIdentifier(loc(), "b")),
			}),
		),
	})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "if (cond) {\n  a;\n} else {\n  b;\n}\n", res.Code)
}

func TestGenerateBinaryExpressionParenthesizesNestedBinary(t *testing.T) {
	inner := estree.NewBinaryExpression(loc(), "+", estree.NewIdentifier(loc(), "a"), estree.NewIdentifier(loc(), "b"))
	outer := estree.NewBinaryExpression(loc(), "*", inner, estree.NewIdentifier(loc(), "c"))
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewExpressionStatement(loc(), outer),
	})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "(a + b) * c;\n", res.Code)
}

func TestGenerateFunctionDeclaration(t *testing.T) {
	fn := estree.NewFunctionDeclaration(loc(), estree.NewIdentifier(loc(), "greet"),
		[]estree.Node{estree.NewIdentifier(loc(), "name")},
		estree.NewBlockStatement(loc(), []estree.Node{
			estree.NewReturnStatement(loc(), estree.NewIdentifier(loc(), "name")),
		}))
	prog := estree.NewProgram(loc(), []estree.Node{fn})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "function greet(name) {\n  return name;\n}\n", res.Code)
}

func TestGenerateImportDefaultAndNamed(t *testing.T) {
	imp := estree.NewImportDeclaration(loc(), []*estree.ImportSpecifierNode{
		{Local: estree.NewIdentifier(loc(), "Default"), Kind: "default"},
		{Imported: estree.NewIdentifier(loc(), "foo"), Local: estree.NewIdentifier(loc(), "foo"), Kind: "named"},
		{Imported: estree.NewIdentifier(loc(), "bar"), Local: estree.NewIdentifier(loc(), "baz"), Kind: "named"},
	}, estree.NewLiteral(loc(), "./mod.hql", `"./mod.hql"`))
	prog := estree.NewProgram(loc(), []estree.Node{imp})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "import Default, { foo, bar as baz } from \"./mod.hql\";\n", res.Code)
}

func TestGenerateImportNamespaceOnly(t *testing.T) {
	imp := estree.NewImportDeclaration(loc(), []*estree.ImportSpecifierNode{
		{Local: estree.NewIdentifier(loc(), "ns"), Kind: "namespace"},
	}, estree.NewLiteral(loc(), "./mod.hql", `"./mod.hql"`))
	prog := estree.NewProgram(loc(), []estree.Node{imp})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "import * as ns from \"./mod.hql\";\n", res.Code)
}

func TestGenerateClassDeclarationWithConstructorAndStaticMethod(t *testing.T) {
	body := estree.NewClassBody(loc(), []estree.Node{
		estree.NewMethodDefinitionNode(loc(), estree.MethodDefinition{
			Key:  estree.NewIdentifier(loc(), "constructor"),
			Kind: estree.MethodConstructor,
			Value: estree.NewFunctionExpression(loc(), nil, []estree.Node{estree.NewIdentifier(loc(), "v")},
				estree.NewBlockStatement(loc(), []estree.Node{
					estree.NewExpressionStatement(loc(), estree.NewAssignmentExpression(loc(), "=",
						estree.NewMemberExpression(loc(), estree.NewIdentifier(loc(), "this"), estree.NewIdentifier(loc(), "v"), false),
						estree.NewIdentifier(loc(), "v"))),
				})),
		}),
		estree.NewMethodDefinitionNode(loc(), estree.MethodDefinition{
			Key:    estree.NewIdentifier(loc(), "make"),
			Kind:   estree.MethodNormal,
			Static: true,
			Value: estree.NewFunctionExpression(loc(), nil, nil,
				estree.NewBlockStatement(loc(), []estree.Node{
					estree.NewReturnStatement(loc(), estree.NewIdentifier(loc(), "undefined")),
				})),
		}),
	})
	cls := estree.NewClassDeclaration(loc(), estree.NewIdentifier(loc(), "Box"), body)
	prog := estree.NewProgram(loc(), []estree.Node{cls})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "class Box {\n  constructor(v) {\n    this.v = v;\n  }\n  static make() {\n    return undefined;\n  }\n}\n", res.Code)
}

func TestGenerateSourceMapProducesV3Document(t *testing.T) {
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewExpressionStatement(loc(), estree.NewIdentifier(loc(), "x")),
	})
	res, err := Generate(prog, []string{"__hql_range"}, Options{File: "out.js", GenerateSourceMap: true, SourceContent: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SourceMap)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.SourceMap), &doc))
	assert.Equal(t, float64(3), doc["version"])
	assert.Equal(t, "out.js", doc["file"])
	assert.Contains(t, doc["sources"], "m.hql")
	assert.NotEmpty(t, doc["mappings"])
	assert.Equal(t, []string{"__hql_range"}, res.UsedHelpers)
}

func TestGenerateSourceMapOmittedWhenDisabled(t *testing.T) {
	prog := estree.NewProgram(loc(), []estree.Node{
		estree.NewExpressionStatement(loc(), estree.NewIdentifier(loc(), "x")),
	})
	res, err := Generate(prog, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.SourceMap)
}
