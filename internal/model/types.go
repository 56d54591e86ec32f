package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Severity int

const (
	SeverityInformal Severity = iota
	SeverityGas
	SeverityLow
	SeverityMedium
	SeverityHigh
)

var severityNames = [...]string{"informal", "gas", "low", "medium", "high"}

func (s Severity) String() string {
	if s < SeverityInformal || s > SeverityHigh {
		return "unknown"
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	v, ok := LookupSeverity(string(b))
	if !ok {
		return fmt.Errorf("unknown severity %q", string(b))
	}
	*s = v
	return nil
}

// LookupSeverity resolves a severity name case-insensitively.
func LookupSeverity(s string) (Severity, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "info" || s == "informational" {
		return SeverityInformal, true
	}
	for i, n := range severityNames {
		if n == s {
			return Severity(i), true
		}
	}
	return SeverityInformal, false
}

// ParseSeverity is LookupSeverity with unknown names mapped to informal.
func ParseSeverity(s string) Severity {
	v, _ := LookupSeverity(s)
	return v
}

func SeverityGTE(a, b Severity) bool { return a >= b }

// Span is a byte range inside one source unit as reported by the compiler.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
	Source int `json:"source"`
}

func (s Span) End() int { return s.Start + s.Length }

type Finding struct {
	Module      string   `json:"module"`
	Code        int      `json:"code"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Span        *Span    `json:"span,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

// Meta locates a finding in human terms. Line and Column are 1-based; both
// are zero when the finding has no span or its file could not be read.
type Meta struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Snippet string `json:"snippet"`
}

type MetaFinding struct {
	Finding
	Meta Meta `json:"meta"`
}

// AllFindings maps a module name to its findings in discovery order.
type AllFindings map[string][]MetaFinding

// Modules returns the module names in lexical order.
func (a AllFindings) Modules() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (a AllFindings) Count() int {
	n := 0
	for _, fs := range a {
		n += len(fs)
	}
	return n
}

// Flatten returns every finding ordered by module name, then discovery order.
func (a AllFindings) Flatten() []MetaFinding {
	var out []MetaFinding
	for _, n := range a.Modules() {
		out = append(out, a[n]...)
	}
	return out
}

// ScanRequest describes one scan. Relative baseline paths resolve against
// the scan root.
type ScanRequest struct {
	Path              string
	ConfigPath        string
	SolcOutput        string
	SolcVersion       string
	Modules           []string
	MinSeverity       *Severity
	BaselinePath      string
	WriteBaselinePath string
	TimeBudget        time.Duration
}

type ScanResult struct {
	RunID      string        `json:"runId"`
	Root       string        `json:"root"`
	Compiler   string        `json:"compiler,omitempty"`
	Findings   AllFindings   `json:"findings"`
	Suppressed int           `json:"suppressed"`
	Elapsed    time.Duration `json:"elapsed"`
}
