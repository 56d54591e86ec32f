package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeIgnoredValue = 0

// payableValue reports payable functions that accept ether without reading
// msg.value, writing anything or emitting an event. receive and fallback
// exist to accept ether and are skipped.
type payableValue struct{ catalog Catalog }

func newPayableValue() *payableValue {
	return &payableValue{catalog: NewCatalog(map[int]Entry{
		codeIgnoredValue: {
			Summary:     "Payable function ignores msg.value",
			Description: "Ether sent to this function is accepted without being accounted for. Validate msg.value, record it, or drop the payable modifier.",
			Severity:    model.SeverityMedium,
		},
	})}
}

func (m *payableValue) Name() string        { return "payable-value" }
func (m *payableValue) Catalog() Catalog    { return m.catalog }
func (m *payableValue) NewVisitor() Visitor { return payableValueVisitor{} }

type payableValueVisitor struct{}

// handlesValue reports whether body reads msg.value, assigns or emits.
func handlesValue(body solidity.Node) bool {
	return contains(body, func(n solidity.Node) bool {
		switch n.(type) {
		case *solidity.Assignment, *solidity.EmitStatement:
			return true
		}
		return isMember(n, "msg", "value")
	})
}

func (payableValueVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	fn, ok := n.(*solidity.FunctionDefinition)
	if !ok {
		return Continue, nil
	}
	switch fn.FunctionKind {
	case "receive", "fallback":
		return SkipChildren, nil
	}
	if fn.StateMutability != "payable" || fn.Body == nil || handlesValue(fn.Body) {
		return SkipChildren, nil
	}
	name := fn.Name
	if fn.IsConstructor() {
		name = "constructor"
	}
	return SkipChildren, c.PushWithComment(codeIgnoredValue, SpanOf(fn), name)
}
