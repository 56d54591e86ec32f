package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeUnguardedWrite = 0

// accessControl flags public entry points that write shared state without
// a modifier or a check on the caller.
type accessControl struct{ catalog Catalog }

func newAccessControl() *accessControl {
	return &accessControl{catalog: NewCatalog(map[int]Entry{
		codeUnguardedWrite: {
			Summary:     "State-changing function without access control",
			Description: "A public or external function writes contract state but has no modifier and never checks msg.sender. Anyone can call it; restrict it with a modifier such as onlyOwner or an explicit require on the caller.",
			Severity:    model.SeverityHigh,
			References:  []string{"SWC-105", "SWC-106"},
		},
	})}
}

func (m *accessControl) Name() string        { return "access-control" }
func (m *accessControl) Catalog() Catalog    { return m.catalog }
func (m *accessControl) NewVisitor() Visitor { return &accessControlVisitor{} }

type accessControlVisitor struct {
	state map[string]bool
}

func isCaller(n solidity.Node) bool {
	return isMember(n, "msg", "sender") || isTxOrigin(n)
}

// checksCaller reports whether a require/assert argument or an if condition
// in body refers to the caller.
func checksCaller(body solidity.Node) bool {
	return contains(body, func(n solidity.Node) bool {
		switch n := n.(type) {
		case *solidity.FunctionCall:
			if !isGuardCall(n) {
				return false
			}
			for _, arg := range n.Arguments {
				if contains(arg, isCaller) {
					return true
				}
			}
		case *solidity.IfStatement:
			return contains(n.Condition, isCaller)
		}
		return false
	})
}

func declaredNames(fn *solidity.FunctionDefinition) map[string]bool {
	out := map[string]bool{}
	for _, p := range append(append([]solidity.Node(nil), fn.Parameters...), fn.ReturnParameters...) {
		if d, ok := p.(*solidity.VariableDeclaration); ok {
			out[d.Name] = true
		}
	}
	contains(fn.Body, func(n solidity.Node) bool {
		if d, ok := n.(*solidity.VariableDeclaration); ok {
			out[d.Name] = true
		}
		return false
	})
	return out
}

// writesSharedState reports a write to a state variable that is not keyed
// by msg.sender, such as owner = x or total += x but not bal[msg.sender] = x.
func writesSharedState(body solidity.Node, state, locals map[string]bool) bool {
	return contains(body, func(n solidity.Node) bool {
		var target solidity.Node
		switch n := n.(type) {
		case *solidity.Assignment:
			target = n.Left
		case *solidity.UnaryOperation:
			switch n.Operator {
			case "++", "--", "delete":
				target = n.SubExpression
			}
		}
		if target == nil {
			return false
		}
		name := assignedName(target)
		return state[name] && !locals[name] && !contains(target, func(n solidity.Node) bool {
			return isMember(n, "msg", "sender")
		})
	})
}

func (v *accessControlVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
		v.state = mutableState(n)
	case *solidity.FunctionDefinition:
		if n.FunctionKind != "function" || n.Body == nil || !n.IsExternallyCallable() || n.IsReadOnly() || len(n.Modifiers) > 0 {
			return SkipChildren, nil
		}
		if checksCaller(n.Body) || !writesSharedState(n.Body, v.state, declaredNames(n)) {
			return SkipChildren, nil
		}
		return SkipChildren, c.PushWithComment(codeUnguardedWrite, SpanOf(n), n.Name)
	}
	return Continue, nil
}
