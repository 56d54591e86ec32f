package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codePreCheckedCompiler = iota
	codeOverflow
	codeUnderflow
	codeUncheckedArithmetic
)

type overflow struct{ catalog Catalog }

func newOverflow() *overflow {
	return &overflow{catalog: NewCatalog(map[int]Entry{
		codePreCheckedCompiler: {
			Summary:     "Compiler without built-in overflow checks",
			Description: "Solidity versions before 0.8.0 wrap on integer overflow and underflow silently. Arithmetic must be guarded explicitly, for example with SafeMath.",
			Severity:    model.SeverityInformal,
		},
		codeOverflow: {
			Summary:     "Integer overflow",
			Description: "Addition or multiplication on an integer without overflow checking can wrap around to a small value.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-101"},
		},
		codeUnderflow: {
			Summary:     "Integer underflow",
			Description: "Subtraction on an integer without underflow checking can wrap around to a huge value.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-101"},
		},
		codeUncheckedArithmetic: {
			Summary:     "Arithmetic in unchecked block",
			Description: "Operations inside `unchecked { ... }` skip the compiler's overflow checks. Make sure the bounds are proven by the surrounding code.",
			Severity:    model.SeverityLow,
		},
	})}
}

func (m *overflow) Name() string        { return "overflow" }
func (m *overflow) Catalog() Catalog    { return m.catalog }
func (m *overflow) NewVisitor() Visitor { return &overflowVisitor{} }

type overflowVisitor struct {
	noted bool
}

type arith int

const (
	arithNone arith = iota
	arithGrow
	arithShrink
)

func classify(op string) arith {
	switch op {
	case "+", "*", "**", "+=", "*=", "++":
		return arithGrow
	case "-", "-=", "--":
		return arithShrink
	}
	return arithNone
}

func (v *overflowVisitor) preChecked(c *Context) bool {
	return c.Version.Version != nil && c.Version.Version.LessThan(checkedArithmetic)
}

func (v *overflowVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	var (
		kind arith
		typ  string
	)
	switch n := n.(type) {
	case *solidity.PragmaDirective:
		if n.IsVersion() && !v.noted && v.preChecked(c) {
			v.noted = true
			return Continue, c.Push(codePreCheckedCompiler, SpanOf(n))
		}
		return Continue, nil
	case *solidity.Assignment:
		kind, typ = classify(n.Operator), n.TypeString
	case *solidity.BinaryOperation:
		kind, typ = classify(n.Operator), n.TypeString
	case *solidity.UnaryOperation:
		kind, typ = classify(n.Operator), n.TypeString
	default:
		return Continue, nil
	}
	if kind == arithNone || !isIntegerType(typ) || !c.Scope.InBody() {
		return Continue, nil
	}
	switch {
	case v.preChecked(c):
		code := codeOverflow
		if kind == arithShrink {
			code = codeUnderflow
		}
		return Continue, c.Push(code, SpanOf(n))
	case c.Version.Version != nil && c.Scope.InUnchecked:
		return Continue, c.Push(codeUncheckedArithmetic, SpanOf(n))
	}
	return Continue, nil
}

func (v *overflowVisitor) Leave(c *Context, n solidity.Node) error {
	if _, ok := n.(*solidity.SourceUnit); ok && !v.noted && v.preChecked(c) {
		v.noted = true
		return c.Push(codePreCheckedCompiler, nil)
	}
	return nil
}
