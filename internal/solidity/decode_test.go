package solidity

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/xab-mack/solhunt/internal/model"
)

func loadFixture(t *testing.T, name string) (source string, output []byte) {
	t.Helper()
	ar, err := txtar.ParseFile("testdata/" + name)
	require.NoError(t, err)
	for _, f := range ar.Files {
		switch {
		case strings.HasSuffix(f.Name, ".sol"):
			source = string(f.Data)
		case f.Name == "output.json":
			output = f.Data
		}
	}
	require.NotEmpty(t, source)
	require.NotEmpty(t, output)
	return source, output
}

func TestParseStandardOutput_Vault(t *testing.T) {
	source, raw := loadFixture(t, "vault.txtar")

	out, err := ParseStandardOutput(raw)
	require.NoError(t, err)
	require.Len(t, out.Units, 1)
	require.Len(t, out.Errors, 1)
	assert.False(t, out.HasErrors())

	u := out.Units[0]
	assert.Equal(t, "src/Vault.sol", u.Path)
	assert.Equal(t, "src/Vault.sol", u.Tree.AbsolutePath)
	assert.Equal(t, len(source), u.Tree.Src.Length)

	require.Len(t, u.Tree.Nodes, 2)
	pragma, ok := u.Tree.Nodes[0].(*PragmaDirective)
	require.True(t, ok)
	assert.True(t, pragma.IsVersion())
	assert.Equal(t, []string{"solidity", "^", "0.8", ".4"}, pragma.Literals)

	contracts := u.Tree.Contracts()
	require.Len(t, contracts, 1)
	c := contracts[0]
	assert.Equal(t, "Vault", c.Name)
	require.Len(t, c.Nodes, 2)

	state := c.Nodes[0].(*VariableDeclaration)
	assert.True(t, state.StateVariable)
	assert.Equal(t, "uint256", state.TypeString)
	assert.Equal(t, "public", state.Visibility)

	fn := c.Nodes[1].(*FunctionDefinition)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "external", fn.Visibility)
	assert.True(t, fn.IsExternallyCallable())
	require.Len(t, fn.Parameters, 1)
	assert.Equal(t, "amount", fn.Parameters[0].(*VariableDeclaration).Name)
	assert.Empty(t, fn.ReturnParameters)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Statements, 4)

	unchecked := fn.Body.Statements[0].(*UncheckedBlock)
	assign := unchecked.Statements[0].(*ExpressionStatement).Expression.(*Assignment)
	assert.Equal(t, "+=", assign.Operator)
	assert.Equal(t, "uint256", assign.TypeString)
	assert.Equal(t, "total += amount", source[assign.Src.Start:assign.Src.End()])
	assert.Equal(t, "total", assign.Left.(*Identifier).Name)

	loop := fn.Body.Statements[1].(*ForStatement)
	assert.IsType(t, &VariableDeclarationStatement{}, loop.Init)
	assert.Equal(t, "<", loop.Condition.(*BinaryOperation).Operator)
	inc := loop.Loop.(*ExpressionStatement).Expression.(*UnaryOperation)
	assert.False(t, inc.Prefix)
	assert.Equal(t, "++", inc.Operator)

	do := fn.Body.Statements[2].(*WhileStatement)
	assert.True(t, do.DoWhile)
	kids := do.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, KindBlock, kids[0].Kind())
	assert.Equal(t, KindBinaryOperation, kids[1].Kind())

	asm := fn.Body.Statements[3].(*Other)
	assert.Equal(t, "InlineAssembly", asm.NodeType)
	require.Len(t, asm.Nodes, 1)
	assert.Equal(t, "YulBlock", asm.Nodes[0].(*Other).NodeType)
}

func TestLoadStandardOutput(t *testing.T) {
	_, raw := loadFixture(t, "vault.txtar")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/solc.json", raw, 0o644))

	out, err := LoadStandardOutput(fs, "/out/solc.json")
	require.NoError(t, err)
	assert.Len(t, out.Units, 1)

	_, err = LoadStandardOutput(fs, "/out/missing.json")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))
}

func TestParseSrc(t *testing.T) {
	sp, err := ParseSrc("12:34:1")
	require.NoError(t, err)
	assert.Equal(t, model.Span{Start: 12, Length: 34, Source: 1}, sp)
	assert.Equal(t, 46, sp.End())

	for _, bad := range []string{"", "1:2", "a:2:0", "1:2:3:4"} {
		_, err := ParseSrc(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecodeSourceUnit_Errors(t *testing.T) {
	_, err := DecodeSourceUnit([]byte(`{"src":"0:0:0"}`))
	assert.ErrorContains(t, err, "nodeType")

	_, err = DecodeSourceUnit([]byte(`{"nodeType":"Block","src":"0:2:0","statements":[]}`))
	assert.ErrorContains(t, err, "SourceUnit")

	_, err = DecodeSourceUnit([]byte(`{"nodeType":"SourceUnit","src":"bogus","nodes":[]}`))
	assert.ErrorContains(t, err, "malformed src")
}

func TestParseStandardOutput_BadTree(t *testing.T) {
	raw := []byte(`{"sources":{"a.sol":{"id":0,"ast":{"nodeType":"SourceUnit","src":"0:1:0","nodes":[{"nodeType":"Block"}]}}}}`)
	_, err := ParseStandardOutput(raw)
	require.Error(t, err)
	assert.True(t, model.IsCode(err, model.CodeMissingData))
}

func TestParseStandardOutput_MissingTree(t *testing.T) {
	for _, raw := range []string{
		`{"sources":{"src/A.sol":{"id":0}}}`,
		`{"sources":{"src/A.sol":{"id":0,"ast":null}}}`,
	} {
		_, err := ParseStandardOutput([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, model.IsCode(err, model.CodeMissingData))

		var e *model.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "src/A.sol", e.Context[model.CtxFile])
	}
}

func TestParseStandardOutput_MissingTreeAfterCompilerError(t *testing.T) {
	raw := []byte(`{"errors":[{"severity":"error","formattedMessage":"ParserError"}],"sources":{"src/A.sol":{"id":0}}}`)
	out, err := ParseStandardOutput(raw)
	require.NoError(t, err)
	assert.Empty(t, out.Units)
	assert.True(t, out.HasErrors())
}

func TestOther_ChildrenInSourceOrder(t *testing.T) {
	raw := []byte(`{"nodeType":"TryStatement","src":"0:40:0",
		"externalCall":{"nodeType":"Identifier","name":"b","src":"10:1:0"},
		"clauses":[{"nodeType":"TryCatchClause","src":"20:5:0","block":{"nodeType":"Block","src":"22:2:0","statements":[]}}],
		"meta":{"first":{"nodeType":"Identifier","name":"a","src":"4:1:0"}}}`)
	n, err := decodeNode(raw)
	require.NoError(t, err)
	other := n.(*Other)
	require.Len(t, other.Nodes, 3)
	assert.Equal(t, 4, other.Nodes[0].Span().Start)
	assert.Equal(t, 10, other.Nodes[1].Span().Start)
	assert.Equal(t, "TryCatchClause", other.Nodes[2].(*Other).NodeType)
	assert.Len(t, other.Nodes[2].Children(), 1)
}
