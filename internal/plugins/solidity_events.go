package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeMissingEvent = 0

// events reports externally callable functions that write contract state
// without emitting any event.
type events struct{ catalog Catalog }

func newEvents() *events {
	return &events{catalog: NewCatalog(map[int]Entry{
		codeMissingEvent: {
			Summary:     "State change without event emission",
			Description: "The function updates state variables but emits no event, so off-chain monitoring cannot observe the change. Emit an event describing the update.",
			Severity:    model.SeverityLow,
		},
	})}
}

func (m *events) Name() string        { return "events" }
func (m *events) Catalog() Catalog    { return m.catalog }
func (m *events) NewVisitor() Visitor { return &eventsVisitor{} }

type eventsVisitor struct {
	state map[string]bool

	// per function
	fn      *solidity.FunctionDefinition
	locals  map[string]bool
	write   solidity.Node
	emitted bool
}

func (v *eventsVisitor) tracked(fn *solidity.FunctionDefinition) bool {
	return fn.Body != nil && fn.IsExternallyCallable() && !fn.IsReadOnly() && !fn.IsConstructor()
}

func (v *eventsVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
		v.state = mutableState(n)
	case *solidity.FunctionDefinition:
		if !v.tracked(n) {
			return SkipChildren, nil
		}
		v.fn, v.locals, v.write, v.emitted = n, map[string]bool{}, nil, false
	case *solidity.VariableDeclaration:
		if v.fn != nil && !n.StateVariable {
			v.locals[n.Name] = true
		}
	case *solidity.Assignment:
		if v.fn == nil || v.write != nil {
			return Continue, nil
		}
		if name := assignedName(n.Left); v.state[name] && !v.locals[name] {
			v.write = n
		}
	case *solidity.EmitStatement:
		v.emitted = true
	default:
		return Continue, nil
	}
	return Continue, nil
}

func (v *eventsVisitor) Leave(c *Context, n solidity.Node) error {
	fn, ok := n.(*solidity.FunctionDefinition)
	if !ok || fn != v.fn {
		return nil
	}
	v.fn = nil
	if v.write == nil || v.emitted {
		return nil
	}
	return c.PushWithComment(codeMissingEvent, SpanOf(fn), fn.Name)
}
