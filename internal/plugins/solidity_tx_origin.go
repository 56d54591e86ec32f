package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeTxOriginAuth = iota
	codeTxOriginUse
)

// txOrigin flags tx.origin, distinguishing authorization checks from other
// uses.
type txOrigin struct{ catalog Catalog }

func newTxOrigin() *txOrigin {
	return &txOrigin{catalog: NewCatalog(map[int]Entry{
		codeTxOriginAuth: {
			Summary:     "tx.origin used for authorization",
			Description: "tx.origin is the externally owned account that started the transaction. A malicious contract called by the owner passes such a check; use msg.sender instead.",
			Severity:    model.SeverityHigh,
			References:  []string{"SWC-115"},
		},
		codeTxOriginUse: {
			Summary:     "Use of tx.origin",
			Description: "tx.origin is read outside an authorization check. Its use is discouraged and it may change semantics with account abstraction.",
			Severity:    model.SeverityInformal,
		},
	})}
}

func (m *txOrigin) Name() string     { return "tx-origin" }
func (m *txOrigin) Catalog() Catalog { return m.catalog }
func (m *txOrigin) NewVisitor() Visitor {
	return &txOriginVisitor{guards: map[solidity.Node]bool{}, benign: map[solidity.Node]bool{}}
}

type txOriginVisitor struct {
	// depth of enclosing require/assert arguments and if conditions
	depth  int
	guards map[solidity.Node]bool
	benign map[solidity.Node]bool
}

func isTxOrigin(n solidity.Node) bool { return isMember(n, "tx", "origin") }

func isGuardCall(n solidity.Node) bool {
	call, ok := n.(*solidity.FunctionCall)
	if !ok {
		return false
	}
	name := callee(call)
	return name == "require" || name == "assert"
}

func (v *txOriginVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	if v.guards[n] || isGuardCall(n) {
		v.depth++
	}
	switch n := n.(type) {
	case *solidity.IfStatement:
		if n.Condition != nil {
			v.guards[n.Condition] = true
		}
	case *solidity.BinaryOperation:
		// tx.origin == msg.sender only rejects contract callers
		if n.Operator == "==" || n.Operator == "!=" {
			if isTxOrigin(n.Left) && isMember(n.Right, "msg", "sender") {
				v.benign[n.Left] = true
			}
			if isTxOrigin(n.Right) && isMember(n.Left, "msg", "sender") {
				v.benign[n.Right] = true
			}
		}
	case *solidity.MemberAccess:
		if !isTxOrigin(n) {
			return Continue, nil
		}
		if v.depth > 0 && !v.benign[n] {
			return SkipChildren, c.Push(codeTxOriginAuth, SpanOf(n))
		}
		return SkipChildren, c.Push(codeTxOriginUse, SpanOf(n))
	default:
		return Continue, nil
	}
	return Continue, nil
}

func (v *txOriginVisitor) Leave(c *Context, n solidity.Node) error {
	if v.guards[n] || isGuardCall(n) {
		v.depth--
		delete(v.guards, n)
	}
	return nil
}
