package solidity

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/afero"

	"github.com/xab-mack/solhunt/internal/model"
)

// CompilerError is one entry of the "errors" array of solc's standard JSON
// output. Warnings are reported there as well.
type CompilerError struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Component        string `json:"component"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
	SourceLocation   *struct {
		File  string `json:"file"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"sourceLocation,omitempty"`
}

func (e CompilerError) IsError() bool { return e.Severity == "error" }

// Unit is one decoded source unit.
type Unit struct {
	Path string
	ID   int
	Tree *SourceUnit
}

// Output is the decoded result of one compilation.
type Output struct {
	Units  []Unit
	Errors []CompilerError

	// Compiler is the solc version that produced the trees, when known.
	Compiler string
	// Sources holds the content handed to solc, keyed by unit path.
	Sources map[string][]byte
}

// HasErrors reports whether solc emitted at least one error-severity entry.
func (o *Output) HasErrors() bool {
	for _, e := range o.Errors {
		if e.IsError() {
			return true
		}
	}
	return false
}

type standardOutput struct {
	Errors  []CompilerError `json:"errors"`
	Sources map[string]struct {
		ID  int             `json:"id"`
		AST json.RawMessage `json:"ast"`
	} `json:"sources"`
}

// ParseStandardOutput decodes solc --standard-json output. Units are
// returned sorted by path.
func ParseStandardOutput(data []byte) (*Output, error) {
	var raw standardOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "invalid solc standard JSON output")
	}
	out := &Output{Errors: raw.Errors}
	paths := make([]string, 0, len(raw.Sources))
	for p := range raw.Sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		src := raw.Sources[p]
		if isNull(src.AST) {
			if out.HasErrors() {
				continue
			}
			return nil, model.NewError(model.CodeMissingData, fmt.Sprintf("no syntax tree for %s", p)).
				WithContext(model.CtxFile, p)
		}
		tree, err := DecodeSourceUnit(src.AST)
		if err != nil {
			return nil, model.WrapError(err, model.CodeMissingData, fmt.Sprintf("decoding syntax tree of %s", p)).
				WithContext(model.CtxFile, p)
		}
		if tree.AbsolutePath == "" {
			tree.AbsolutePath = p
		}
		out.Units = append(out.Units, Unit{Path: p, ID: src.ID, Tree: tree})
	}
	return out, nil
}

// LoadStandardOutput reads a pre-generated solc standard JSON output file.
func LoadStandardOutput(fs afero.Fs, path string) (*Output, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "reading solc output").
			WithContext(model.CtxPath, path)
	}
	return ParseStandardOutput(b)
}
