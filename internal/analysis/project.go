package analysis

import (
	"path/filepath"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/xab-mack/solhunt/internal/solidity"
)

// ArtifactID identifies one compiled contract.
type ArtifactID struct {
	Name    string
	Source  string
	Version string
}

func (id ArtifactID) String() string {
	return id.Source + ":" + id.Name + "@" + id.Version
}

// Less orders IDs by source path, then contract name, then compiler version.
func (id ArtifactID) Less(o ArtifactID) bool {
	if id.Source != o.Source {
		return id.Source < o.Source
	}
	if id.Name != o.Name {
		return id.Name < o.Name
	}
	return id.Version < o.Version
}

// Artifact is a compiled contract together with the syntax tree of the
// source unit declaring it. Several artifacts may share one tree.
type Artifact struct {
	ID   ArtifactID
	Tree *solidity.SourceUnit
}

// VersionInfo is handed to every module visiting a source unit.
type VersionInfo struct {
	File    string // display path
	Source  string // absolute path, the unit's identity
	Version *goversion.Version
}

// Project bundles everything a traversal needs.
type Project struct {
	Root      string
	Artifacts map[ArtifactID]*Artifact
	Sources   map[string][]byte // keyed by absolute path
}

// SortedIDs returns the keys of artifacts in traversal order.
func SortedIDs(artifacts map[ArtifactID]*Artifact) []ArtifactID {
	ids := make([]ArtifactID, 0, len(artifacts))
	for id := range artifacts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// BuildArtifacts creates one artifact per contract definition. A unit that
// declares no contract still yields one artifact named after its file so
// file-level findings are not lost.
func BuildArtifacts(units []solidity.Unit, compiler string) map[ArtifactID]*Artifact {
	out := make(map[ArtifactID]*Artifact)
	for _, u := range units {
		contracts := u.Tree.Contracts()
		if len(contracts) == 0 {
			name := strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
			id := ArtifactID{Name: name, Source: u.Path, Version: compiler}
			out[id] = &Artifact{ID: id, Tree: u.Tree}
			continue
		}
		for _, c := range contracts {
			id := ArtifactID{Name: c.Name, Source: u.Path, Version: compiler}
			out[id] = &Artifact{ID: id, Tree: u.Tree}
		}
	}
	return out
}

// FromOutput assembles a Project from a compilation rooted at root.
func FromOutput(root string, out *solidity.Output) *Project {
	p := &Project{
		Root:      root,
		Artifacts: BuildArtifacts(out.Units, out.Compiler),
		Sources:   make(map[string][]byte, len(out.Sources)),
	}
	for name, content := range out.Sources {
		path := filepath.FromSlash(name)
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		p.Sources[filepath.Clean(path)] = content
	}
	return p
}
