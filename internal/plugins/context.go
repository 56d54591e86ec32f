package plugins

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xab-mack/solhunt/internal/analysis"
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

// Pending is a finding queued for PushAll.
type Pending struct {
	Code    int
	Span    *model.Span
	Comment string
}

// SharedState is a snapshot of a module's run so far. Its slice is a copy.
type SharedState struct {
	Name     string
	Findings []model.Finding
}

// Sink collects the findings one module produces during one run. Its list
// only grows; the walker harvests the tail it has not seen yet.
type Sink struct {
	name     string
	catalog  Catalog
	findings []model.Finding
	err      error
}

func NewSink(m Module) *Sink {
	return &Sink{name: m.Name(), catalog: m.Catalog()}
}

func (s *Sink) State() SharedState {
	return SharedState{Name: s.name, Findings: append([]model.Finding(nil), s.findings...)}
}

func (s *Sink) Len() int { return len(s.findings) }

// Since returns a copy of the findings pushed after the first n.
func (s *Sink) Since(n int) []model.Finding {
	if n >= len(s.findings) {
		return nil
	}
	return append([]model.Finding(nil), s.findings[n:]...)
}

// Err returns the first contract violation recorded by the sink.
func (s *Sink) Err() error { return s.err }

func (s *Sink) push(code int, span *model.Span, comment string) error {
	e, ok := s.catalog.Lookup(code)
	if !ok {
		err := model.NewError(model.CodeContractViolation, fmt.Sprintf("module %s pushed unknown finding code %d", s.name, code)).
			WithContext(model.CtxModule, s.name).
			WithContext(model.CtxCode, code)
		if s.err == nil {
			s.err = err
		}
		return err
	}
	f := model.Finding{
		Module:      s.name,
		Code:        code,
		Summary:     e.Summary,
		Description: e.Description,
		Severity:    e.Severity,
		Comment:     comment,
	}
	if span != nil {
		sp := *span
		f.Span = &sp
	}
	s.findings = append(s.findings, f)
	return nil
}

// Accumulator holds string counters shared by every visitor of one module
// during one run.
type Accumulator struct {
	counts map[string]int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{counts: make(map[string]int)}
}

// Add increments key and returns the new count.
func (a *Accumulator) Add(key string) int {
	a.counts[key]++
	return a.counts[key]
}

func (a *Accumulator) Count(key string) int { return a.counts[key] }

func (a *Accumulator) Keys() []string {
	keys := make([]string, 0, len(a.counts))
	for k := range a.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Context is what a visitor sees while walking one source unit.
type Context struct {
	Scope   analysis.Scope
	Version analysis.VersionInfo
	Unit    *solidity.SourceUnit
	Acc     *Accumulator
	Log     *zap.SugaredLogger

	sink *Sink
}

func NewContext(sink *Sink, acc *Accumulator, unit *solidity.SourceUnit, info analysis.VersionInfo, log *zap.SugaredLogger) *Context {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if acc == nil {
		acc = NewAccumulator()
	}
	return &Context{Version: info, Unit: unit, Acc: acc, Log: log, sink: sink}
}

func (c *Context) Push(code int, span *model.Span) error {
	return c.sink.push(code, span, "")
}

func (c *Context) PushWithComment(code int, span *model.Span, comment string) error {
	return c.sink.push(code, span, comment)
}

// PushAll pushes the batch in order and stops at the first unknown code.
func (c *Context) PushAll(batch []Pending) error {
	for _, p := range batch {
		if err := c.sink.push(p.Code, p.Span, p.Comment); err != nil {
			return err
		}
	}
	return nil
}

// SpanOf returns a pointer to a copy of n's span, ready for Push.
func SpanOf(n solidity.Node) *model.Span {
	if n == nil {
		return nil
	}
	sp := n.Span()
	return &sp
}
