package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeUncheckedCall = iota
	codeUncheckedSend
	codeDelegatecall
)

// lowLevelCalls flags address.call/send whose result is discarded and every
// delegatecall.
type lowLevelCalls struct{ catalog Catalog }

func newLowLevelCalls() *lowLevelCalls {
	return &lowLevelCalls{catalog: NewCatalog(map[int]Entry{
		codeUncheckedCall: {
			Summary:     "Unchecked low-level call",
			Description: "The boolean returned by call or staticcall is discarded, so a failed call goes unnoticed. Capture the result and handle failure.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-104"},
		},
		codeUncheckedSend: {
			Summary:     "Unchecked send",
			Description: "send returns false on failure instead of reverting; the result is discarded here.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-104"},
		},
		codeDelegatecall: {
			Summary:     "Use of delegatecall",
			Description: "delegatecall runs foreign code against this contract's storage. The target must be trusted and must not be user controlled.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-112"},
		},
	})}
}

func (m *lowLevelCalls) Name() string        { return "low-level-calls" }
func (m *lowLevelCalls) Catalog() Catalog    { return m.catalog }
func (m *lowLevelCalls) NewVisitor() Visitor { return lowLevelCallsVisitor{} }

type lowLevelCallsVisitor struct{}

// addressCall returns the member name when call is made on an address.
func addressCall(call *solidity.FunctionCall) string {
	m, ok := memberCall(call)
	if !ok {
		return ""
	}
	var typ string
	switch e := m.Expression.(type) {
	case *solidity.Identifier:
		typ = e.TypeString
	case *solidity.MemberAccess:
		typ = e.TypeString
	case *solidity.IndexAccess:
		typ = e.TypeString
	case *solidity.FunctionCall:
		typ = e.TypeString
	}
	if !isAddressType(typ) {
		return ""
	}
	return m.MemberName
}

func (lowLevelCallsVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ExpressionStatement:
		call, ok := n.Expression.(*solidity.FunctionCall)
		if !ok {
			return Continue, nil
		}
		switch addressCall(call) {
		case "call", "staticcall":
			return Continue, c.Push(codeUncheckedCall, SpanOf(n))
		case "send":
			return Continue, c.Push(codeUncheckedSend, SpanOf(n))
		}
	case *solidity.FunctionCall:
		if addressCall(n) == "delegatecall" {
			return Continue, c.Push(codeDelegatecall, SpanOf(n))
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
