package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeWriteAfterCall = 0

// reentrancy reports state writes that follow an external call in the same
// function body, breaking checks-effects-interactions. transfer and send
// forward a fixed stipend and are not counted as calls.
type reentrancy struct{ catalog Catalog }

func newReentrancy() *reentrancy {
	return &reentrancy{catalog: NewCatalog(map[int]Entry{
		codeWriteAfterCall: {
			Summary:     "State written after external call",
			Description: "A state variable is updated after an external call. The callee can re-enter the contract and observe the stale state. Update state before making the call or add a reentrancy guard.",
			Severity:    model.SeverityHigh,
		},
	})}
}

func (m *reentrancy) Name() string        { return "reentrancy" }
func (m *reentrancy) Catalog() Catalog    { return m.catalog }
func (m *reentrancy) NewVisitor() Visitor { return &reentrancyVisitor{} }

type reentrancyVisitor struct {
	state map[string]bool

	fn       *solidity.FunctionDefinition
	locals   map[string]bool
	called   bool
	reported bool
}

func reentrantCall(call *solidity.FunctionCall) bool {
	switch addressCall(call) {
	case "transfer", "send":
		return false
	}
	return isExternalCall(call)
}

func (v *reentrancyVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
		v.state = mutableState(n)
	case *solidity.FunctionDefinition:
		if n.Body == nil || n.IsReadOnly() {
			return SkipChildren, nil
		}
		v.fn, v.locals, v.called, v.reported = n, map[string]bool{}, false, false
	case *solidity.VariableDeclaration:
		if v.fn != nil && !n.StateVariable {
			v.locals[n.Name] = true
		}
	case *solidity.FunctionCall:
		if v.fn != nil && reentrantCall(n) {
			v.called = true
		}
	case *solidity.Assignment:
		if v.fn == nil || !v.called || v.reported {
			return Continue, nil
		}
		if name := assignedName(n.Left); v.state[name] && !v.locals[name] {
			v.reported = true
			return Continue, c.PushWithComment(codeWriteAfterCall, SpanOf(n), v.fn.Name)
		}
	}
	return Continue, nil
}

func (v *reentrancyVisitor) Leave(_ *Context, n solidity.Node) error {
	if n == v.fn {
		v.fn = nil
	}
	return nil
}
