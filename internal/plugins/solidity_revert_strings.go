package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeLongRevertString = iota
	codeRepeatedRevertReason
)

// revert reasons longer than one word cost an extra memory slot
const maxRevertStringLen = 32

type revertStrings struct{ catalog Catalog }

func newRevertStrings() *revertStrings {
	return &revertStrings{catalog: NewCatalog(map[int]Entry{
		codeLongRevertString: {
			Summary:     "Revert string longer than 32 bytes",
			Description: "Reason strings longer than 32 bytes need additional memory words and deployment bytes. Shorten the message or use a custom error.",
			Severity:    model.SeverityGas,
		},
		codeRepeatedRevertReason: {
			Summary:     "Repeated revert reason",
			Description: "The same reason string appears in several checks across the project. A custom error declared once is cheaper and keeps messages consistent.",
			Severity:    model.SeverityInformal,
		},
	})}
}

func (m *revertStrings) Name() string        { return "revert-strings" }
func (m *revertStrings) Catalog() Catalog    { return m.catalog }
func (m *revertStrings) NewVisitor() Visitor { return revertStringsVisitor{} }

type revertStringsVisitor struct{}

// reason returns the string literal passed as revert reason, if any.
func reason(call *solidity.FunctionCall) (*solidity.Literal, bool) {
	idx := -1
	switch callee(call) {
	case "require":
		idx = 1
	case "revert":
		idx = 0
	}
	if idx < 0 || len(call.Arguments) <= idx {
		return nil, false
	}
	lit, ok := call.Arguments[idx].(*solidity.Literal)
	if !ok || lit.LiteralKind != "string" {
		return nil, false
	}
	return lit, true
}

func (revertStringsVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.FunctionCall:
		lit, ok := reason(n)
		if !ok {
			return Continue, nil
		}
		if len(lit.Value) > maxRevertStringLen {
			if err := c.Push(codeLongRevertString, SpanOf(lit)); err != nil {
				return Continue, err
			}
		}
		if c.Acc.Add(lit.Value) > 1 {
			return Continue, c.PushWithComment(codeRepeatedRevertReason, SpanOf(lit), lit.Value)
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
