package plugins

import (
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeCacheArrayLength = iota
	codePostfixIncrement
	codeExternalCallInLoop
)

type loops struct{ catalog Catalog }

func newLoops() *loops {
	return &loops{catalog: NewCatalog(map[int]Entry{
		codeCacheArrayLength: {
			Summary:     "Array length read on every iteration",
			Description: "The loop condition reads `.length` each time it is evaluated. Cache the length in a local variable before the loop.",
			Severity:    model.SeverityGas,
		},
		codePostfixIncrement: {
			Summary:     "Postfix increment in loop",
			Description: "`i++` keeps a copy of the old value; `++i` is cheaper and has the same effect in a loop expression.",
			Severity:    model.SeverityGas,
		},
		codeExternalCallInLoop: {
			Summary:     "External call inside loop",
			Description: "A single failing or gas-hungry callee makes the whole loop revert, which can block the function for everyone. Prefer pull over push patterns.",
			Severity:    model.SeverityLow,
			References:  []string{"SWC-113", "SWC-128"},
		},
	})}
}

func (m *loops) Name() string        { return "loops" }
func (m *loops) Catalog() Catalog    { return m.catalog }
func (m *loops) NewVisitor() Visitor { return loopsVisitor{} }

type loopsVisitor struct{}

func readsLength(n solidity.Node) bool {
	m, ok := n.(*solidity.MemberAccess)
	return ok && m.MemberName == "length"
}

func isPostfixIncrement(n solidity.Node) bool {
	if s, ok := n.(*solidity.ExpressionStatement); ok {
		n = s.Expression
	}
	u, ok := n.(*solidity.UnaryOperation)
	return ok && !u.Prefix && u.Operator == "++"
}

// isExternalCall matches calls on contract instances and the value-moving
// address members.
func isExternalCall(call *solidity.FunctionCall) bool {
	m, ok := memberCall(call)
	if !ok {
		return false
	}
	switch e := m.Expression.(type) {
	case *solidity.Identifier:
		if strings.HasPrefix(e.TypeString, "contract ") {
			return true
		}
	case *solidity.FunctionCall:
		if strings.HasPrefix(e.TypeString, "contract ") {
			return true
		}
	}
	switch addressCall(call) {
	case "call", "delegatecall", "staticcall", "transfer", "send":
		return true
	}
	return false
}

func (loopsVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ForStatement:
		if contains(n.Condition, readsLength) {
			if err := c.Push(codeCacheArrayLength, SpanOf(n.Condition)); err != nil {
				return Continue, err
			}
		}
		if isPostfixIncrement(n.Loop) {
			return Continue, c.Push(codePostfixIncrement, SpanOf(n.Loop))
		}
	case *solidity.WhileStatement:
		if contains(n.Condition, readsLength) {
			return Continue, c.Push(codeCacheArrayLength, SpanOf(n.Condition))
		}
	case *solidity.FunctionCall:
		if c.Scope.InLoop() && isExternalCall(n) {
			return Continue, c.Push(codeExternalCallInLoop, SpanOf(n))
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
