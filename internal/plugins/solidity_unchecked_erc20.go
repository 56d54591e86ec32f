package plugins

import (
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeIgnoredTokenReturn = 0

// erc20Return reports token transfers whose boolean result is discarded.
// Tokens that return false instead of reverting make such calls fail
// silently.
type erc20Return struct{ catalog Catalog }

func newERC20Return() *erc20Return {
	return &erc20Return{catalog: NewCatalog(map[int]Entry{
		codeIgnoredTokenReturn: {
			Summary:     "Unchecked ERC20 return value",
			Description: "The boolean returned by transfer, transferFrom or approve is ignored. Some tokens return false instead of reverting. Check the result or use a safe transfer wrapper.",
			Severity:    model.SeverityMedium,
		},
	})}
}

func (m *erc20Return) Name() string        { return "erc20-return" }
func (m *erc20Return) Catalog() Catalog    { return m.catalog }
func (m *erc20Return) NewVisitor() Visitor { return erc20ReturnVisitor{} }

type erc20ReturnVisitor struct{}

var tokenMethods = map[string]bool{"transfer": true, "transferFrom": true, "approve": true}

// tokenCall reports whether call invokes one of the ERC20 methods on a
// contract-typed receiver.
func tokenCall(call *solidity.FunctionCall) bool {
	m, ok := memberCall(call)
	if !ok || !tokenMethods[m.MemberName] {
		return false
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
	return strings.HasPrefix(typ, "contract ")
}

func (erc20ReturnVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	stmt, ok := n.(*solidity.ExpressionStatement)
	if !ok {
		return Continue, nil
	}
	call, ok := stmt.Expression.(*solidity.FunctionCall)
	if !ok || !tokenCall(call) {
		return Continue, nil
	}
	return Continue, c.PushWithComment(codeIgnoredTokenReturn, SpanOf(call), callee(call))
}
