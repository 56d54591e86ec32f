package analysis

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/solhunt/internal/solidity"
)

func TestBuildArtifacts_OnePerContract(t *testing.T) {
	shared := &solidity.SourceUnit{AbsolutePath: "src/Token.sol", Nodes: []solidity.Node{
		&solidity.PragmaDirective{Literals: []string{"solidity", "^", "0.8", ".0"}},
		&solidity.ContractDefinition{Name: "Token"},
		&solidity.ContractDefinition{Name: "TokenVault"},
	}}
	free := &solidity.SourceUnit{AbsolutePath: "src/lib/math.sol", Nodes: []solidity.Node{
		&solidity.PragmaDirective{Literals: []string{"solidity", "0.8", ".19"}},
	}}

	got := BuildArtifacts([]solidity.Unit{
		{Path: "src/Token.sol", Tree: shared},
		{Path: "src/lib/math.sol", Tree: free},
	}, "0.8.19")

	want := []ArtifactID{
		{Name: "Token", Source: "src/Token.sol", Version: "0.8.19"},
		{Name: "TokenVault", Source: "src/Token.sol", Version: "0.8.19"},
		{Name: "math", Source: "src/lib/math.sol", Version: "0.8.19"},
	}
	if diff := cmp.Diff(want, SortedIDs(got)); diff != "" {
		t.Errorf("artifact ids mismatch (-want +got):\n%s", diff)
	}
	assert.Same(t, got[want[0]].Tree, got[want[1]].Tree)
}

func TestSortedIDs_Order(t *testing.T) {
	m := map[ArtifactID]*Artifact{
		{Name: "B", Source: "a.sol", Version: "0.8.0"}: {},
		{Name: "A", Source: "b.sol", Version: "0.7.0"}: {},
		{Name: "A", Source: "a.sol", Version: "0.8.1"}: {},
		{Name: "A", Source: "a.sol", Version: "0.8.0"}: {},
	}
	ids := SortedIDs(m)
	require.Len(t, ids, 4)
	assert.Equal(t, "a.sol:A@0.8.0", ids[0].String())
	assert.Equal(t, "a.sol:A@0.8.1", ids[1].String())
	assert.Equal(t, "a.sol:B@0.8.0", ids[2].String())
	assert.Equal(t, "b.sol:A@0.7.0", ids[3].String())
}

func TestFromOutput_SourcesKeyedByAbsolutePath(t *testing.T) {
	root := filepath.FromSlash("/work/proj")
	out := &solidity.Output{
		Compiler: "0.8.19",
		Units:    []solidity.Unit{{Path: "src/A.sol", Tree: &solidity.SourceUnit{Nodes: []solidity.Node{&solidity.ContractDefinition{Name: "A"}}}}},
		Sources:  map[string][]byte{"src/A.sol": []byte("contract A {}")},
	}
	p := FromOutput(root, out)
	assert.Equal(t, root, p.Root)
	assert.Len(t, p.Artifacts, 1)
	assert.Equal(t, "contract A {}", string(p.Sources[filepath.Join(root, "src", "A.sol")]))
}
