package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatSARIF    Format = "sarif"
)

var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown, FormatSARIF}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatSARIF:
		return f, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", model.NewError(model.CodeConfiguration, fmt.Sprintf("unknown report format %q", s)).
		WithContext(model.CtxToken, s)
}

// Write renders res in format f.
func Write(w io.Writer, f Format, res *model.ScanResult) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatMarkdown:
		return WriteMarkdown(w, res)
	case FormatSARIF:
		b, err := ToSARIF(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	default:
		return WriteTable(w, res)
	}
}

func writeJSON(w io.Writer, res *model.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// Ordered returns every finding, most severe first, then by location.
func Ordered(all model.AllFindings) []model.MetaFinding {
	fs := all.Flatten()
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Meta.File != b.Meta.File {
			return a.Meta.File < b.Meta.File
		}
		return a.Meta.Line < b.Meta.Line
	})
	return fs
}

// Counts tallies findings per severity.
func Counts(all model.AllFindings) map[model.Severity]int {
	out := map[model.Severity]int{}
	for _, f := range all.Flatten() {
		out[f.Severity]++
	}
	return out
}

func location(m model.Meta) string {
	if m.Line == 0 {
		return m.File
	}
	return fmt.Sprintf("%s:%d:%d", m.File, m.Line, m.Column)
}

// RuleID names a finding kind across reports, e.g. "overflow/1".
func RuleID(f model.Finding) string { return fmt.Sprintf("%s/%d", f.Module, f.Code) }
