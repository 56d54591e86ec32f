package plugins

import (
	goversion "github.com/hashicorp/go-version"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
	"github.com/xab-mack/solhunt/internal/version"
)

const (
	codeUnspecificPragma = iota
	codeOutdatedCompiler
	codeMultiplePragmas
)

// first release with checked arithmetic by default
var checkedArithmetic = goversion.Must(goversion.NewVersion("0.8.0"))

// compilerVersion inspects the solidity version pragmas of a source unit.
type compilerVersion struct{ catalog Catalog }

func newCompilerVersion() *compilerVersion {
	return &compilerVersion{catalog: NewCatalog(map[int]Entry{
		codeUnspecificPragma: {
			Summary:     "Unspecific compiler version pragma",
			Description: "The pragma allows a range of compiler versions. Different builds may use different compilers with different behaviour; pin an exact version such as `pragma solidity 0.8.20;`.",
			Severity:    model.SeverityInformal,
			References:  []string{"SWC-103"},
		},
		codeOutdatedCompiler: {
			Summary:     "Outdated compiler version allowed",
			Description: "The pragma admits a compiler older than 0.8.0, which lacks built-in overflow checks and several later bug fixes.",
			Severity:    model.SeverityLow,
			References:  []string{"SWC-102"},
		},
		codeMultiplePragmas: {
			Summary:     "Multiple solidity pragmas",
			Description: "The file declares more than one compiler version pragma; the effective range is their intersection and is easy to misread.",
			Severity:    model.SeverityInformal,
		},
	})}
}

func (m *compilerVersion) Name() string        { return "compiler-version" }
func (m *compilerVersion) Catalog() Catalog    { return m.catalog }
func (m *compilerVersion) NewVisitor() Visitor { return &compilerVersionVisitor{} }

type compilerVersionVisitor struct {
	pragmas int
}

func (v *compilerVersionVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.SourceUnit:
		return Continue, nil
	case *solidity.PragmaDirective:
		if !n.IsVersion() {
			return Continue, nil
		}
		v.pragmas++
		if v.pragmas > 1 {
			if err := c.Push(codeMultiplePragmas, SpanOf(n)); err != nil {
				return Continue, err
			}
		}
		r, err := version.ParsePragma(n.Literals)
		if err != nil {
			c.Log.Warnw("ignoring malformed pragma", "file", c.Version.File, "error", err)
			return Continue, nil
		}
		if !r.Exact() {
			if err := c.PushWithComment(codeUnspecificPragma, SpanOf(n), r.String()); err != nil {
				return Continue, err
			}
		}
		if low := r.Lowest(); low == nil || low.LessThan(checkedArithmetic) {
			if err := c.Push(codeOutdatedCompiler, SpanOf(n)); err != nil {
				return Continue, err
			}
		}
		return Continue, nil
	default:
		// pragmas only appear at the top level
		return SkipChildren, nil
	}
}
