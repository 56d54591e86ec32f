package plugins

import (
	"strings"

	"github.com/xab-mack/solhunt/internal/solidity"
)

// isMember reports whether n is the expression obj.member.
func isMember(n solidity.Node, obj, member string) bool {
	m, ok := n.(*solidity.MemberAccess)
	if !ok || m.MemberName != member {
		return false
	}
	id, ok := m.Expression.(*solidity.Identifier)
	return ok && id.Name == obj
}

// callee returns the name a call is made through: the identifier for
// plain calls, the member name for x.f(...).
func callee(call *solidity.FunctionCall) string {
	switch e := call.Callee().(type) {
	case *solidity.Identifier:
		return e.Name
	case *solidity.MemberAccess:
		return e.MemberName
	}
	return ""
}

// memberCall returns the member access a call is made through, if any.
func memberCall(call *solidity.FunctionCall) (*solidity.MemberAccess, bool) {
	m, ok := call.Callee().(*solidity.MemberAccess)
	return m, ok
}

func isAddressType(typ string) bool {
	return typ == "address" || typ == "address payable"
}

// isIntegerType matches sized integer types; literal constants are excluded.
func isIntegerType(typ string) bool {
	return strings.HasPrefix(typ, "uint") || strings.HasPrefix(typ, "int") && !strings.HasPrefix(typ, "int_const")
}

// contains reports whether any node in the subtree rooted at n satisfies f.
func contains(n solidity.Node, f func(solidity.Node) bool) bool {
	if n == nil {
		return false
	}
	if f(n) {
		return true
	}
	for _, c := range n.Children() {
		if contains(c, f) {
			return true
		}
	}
	return false
}

// assignedName returns the name of the variable written by an assignment
// target, looking through index and member accesses (bal[x].y = ...).
func assignedName(n solidity.Node) string {
	for {
		switch e := n.(type) {
		case *solidity.Identifier:
			return e.Name
		case *solidity.IndexAccess:
			n = e.Base
		case *solidity.MemberAccess:
			n = e.Expression
		case *solidity.TupleExpression:
			if len(e.Components) == 1 {
				n = e.Components[0]
				continue
			}
			return ""
		default:
			return ""
		}
	}
}

// mutableState collects the names of the mutable state variables a
// contract declares.
func mutableState(cd *solidity.ContractDefinition) map[string]bool {
	out := map[string]bool{}
	for _, member := range cd.Nodes {
		if d, ok := member.(*solidity.VariableDeclaration); ok && d.StateVariable && !d.Constant {
			out[d.Name] = true
		}
	}
	return out
}
