package engine

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/util"
)

func finding(module string, code, line int, snippet string) model.MetaFinding {
	return model.MetaFinding{
		Finding: model.Finding{Module: module, Code: code},
		Meta:    model.Meta{File: "src/A.sol", Line: line, Snippet: snippet},
	}
}

func TestBaseline_WriteThenFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	known := finding("overflow", 1, 7, "  x += 1;")
	all := model.AllFindings{"overflow": {known, known}}
	require.NoError(t, writeBaseline(fs, "/b.json", all))

	b, err := loadBaseline(fs, "/b.json")
	require.NoError(t, err)

	fresh := finding("overflow", 2, 9, "y -= 1;")
	// re-indented snippet keeps its fingerprint
	moved := finding("overflow", 1, 7, "x   +=   1;")
	got, n := filterByBaseline(model.AllFindings{"overflow": {moved, fresh}}, b)
	assert.Equal(t, 1, n)
	assert.Equal(t, []model.MetaFinding{fresh}, got["overflow"])
}

func TestBaseline_BareArray(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := finding("events", 0, 3, "")
	require.NoError(t, afero.WriteFile(fs, "/b.json", []byte(`["`+util.FindingFingerprint(f)+`"]`), 0o644))

	b, err := loadBaseline(fs, "/b.json")
	require.NoError(t, err)
	assert.True(t, b.contains(f))
}

func TestBaseline_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := loadBaseline(fs, "/missing.json")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{`), 0o644))
	_, err = loadBaseline(fs, "/bad.json")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))

	b, err := loadBaseline(fs, "")
	require.NoError(t, err)
	all := model.AllFindings{"events": {finding("events", 0, 1, "")}}
	got, n := filterByBaseline(all, b)
	assert.Zero(t, n)
	assert.Equal(t, all, got)
}
