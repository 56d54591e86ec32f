package engine

import (
	"strconv"
	"strings"

	"github.com/xab-mack/solhunt/internal/config"
	"github.com/xab-mack/solhunt/internal/model"
)

const inlineMarker = "solhunt:ignore"

// suppressor drops findings matched by config rules or by an inline
// marker on the finding's line or the line above:
//
//	// solhunt:ignore overflow:1 events reason="audited"
//
// A bare marker silences every module on that line.
type suppressor struct {
	rules  []config.IgnoreRule
	source func(path string) ([]byte, bool)
	lines  map[string][]string
}

func newSuppressor(rules []config.IgnoreRule, source func(string) ([]byte, bool)) *suppressor {
	return &suppressor{rules: rules, source: source, lines: map[string][]string{}}
}

func (s *suppressor) ignored(f model.MetaFinding) bool {
	for i := range s.rules {
		if s.rules[i].Matches(f.Module, f.Code, f.Meta.File) {
			return true
		}
	}
	return s.inline(f)
}

func (s *suppressor) inline(f model.MetaFinding) bool {
	if f.Meta.Line == 0 || s.source == nil {
		return false
	}
	lines := s.fileLines(f.Meta.File)
	for _, n := range []int{f.Meta.Line, f.Meta.Line - 1} {
		if n < 1 || n > len(lines) {
			continue
		}
		if markerCovers(lines[n-1], f.Module, f.Code) {
			return true
		}
	}
	return false
}

func (s *suppressor) fileLines(file string) []string {
	if l, ok := s.lines[file]; ok {
		return l
	}
	var out []string
	if b, ok := s.source(file); ok {
		out = strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	}
	s.lines[file] = out
	return out
}

// markerCovers parses the marker on line, if any, and reports whether it
// names module (optionally narrowed to code).
func markerCovers(line, module string, code int) bool {
	i := strings.Index(line, inlineMarker)
	if i < 0 {
		return false
	}
	rest := line[i+len(inlineMarker):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return false
	}
	var targets []string
	for _, tok := range strings.FieldsFunc(rest, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' }) {
		if strings.Contains(tok, "=") || strings.HasPrefix(tok, "*/") {
			break
		}
		targets = append(targets, tok)
	}
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		name, c, hasCode := strings.Cut(t, ":")
		if !strings.EqualFold(name, module) {
			continue
		}
		if !hasCode {
			return true
		}
		if n, err := strconv.Atoi(c); err == nil && n == code {
			return true
		}
	}
	return false
}

// applyIgnores returns the findings that survive suppression and how many
// were suppressed.
func applyIgnores(all model.AllFindings, rules []config.IgnoreRule, source func(string) ([]byte, bool)) (model.AllFindings, int) {
	s := newSuppressor(rules, source)
	return filterFindings(all, func(f model.MetaFinding) bool { return !s.ignored(f) })
}
