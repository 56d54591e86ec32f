package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeSilentEther = iota
	codePayableFallback
)

type fallbackReceive struct{ catalog Catalog }

func newFallbackReceive() *fallbackReceive {
	return &fallbackReceive{catalog: NewCatalog(map[int]Entry{
		codeSilentEther: {
			Summary:     "Payable fallback or receive without safeguards",
			Description: "Ether sent to the contract is accepted without being recorded, announced with an event or rejected. Funds sent by mistake are locked and go unnoticed.",
			Severity:    model.SeverityMedium,
		},
		codePayableFallback: {
			Summary:     "Payable fallback function",
			Description: "A payable fallback also accepts ether sent along with a call to a function the contract does not have, so a mistyped call keeps the funds. Prefer a receive function for plain transfers.",
			Severity:    model.SeverityLow,
		},
	})}
}

func (m *fallbackReceive) Name() string        { return "fallback-receive" }
func (m *fallbackReceive) Catalog() Catalog    { return m.catalog }
func (m *fallbackReceive) NewVisitor() Visitor { return fallbackReceiveVisitor{} }

type fallbackReceiveVisitor struct{}

func rejects(body solidity.Node) bool {
	return contains(body, func(n solidity.Node) bool {
		if _, ok := n.(*solidity.RevertStatement); ok {
			return true
		}
		call, ok := n.(*solidity.FunctionCall)
		return ok && (isGuardCall(call) || callee(call) == "revert")
	})
}

func (fallbackReceiveVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
		return Continue, nil
	case *solidity.FunctionDefinition:
		if (n.FunctionKind != "receive" && n.FunctionKind != "fallback") || n.StateMutability != "payable" || n.Body == nil {
			return SkipChildren, nil
		}
		if !handlesValue(n.Body) && !rejects(n.Body) {
			if err := c.PushWithComment(codeSilentEther, SpanOf(n), n.FunctionKind); err != nil {
				return SkipChildren, err
			}
		}
		if n.FunctionKind == "fallback" {
			return SkipChildren, c.Push(codePayableFallback, SpanOf(n))
		}
		return SkipChildren, nil
	}
	return Continue, nil
}
