package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeSelfdestruct = iota
	codeSuicide
)

type selfdestruct struct{ catalog Catalog }

func newSelfdestruct() *selfdestruct {
	return &selfdestruct{catalog: NewCatalog(map[int]Entry{
		codeSelfdestruct: {
			Summary:     "Use of selfdestruct",
			Description: "selfdestruct can permanently disable the contract or send its balance to an attacker-controlled address. Since EIP-6780 it no longer removes code outside the creating transaction.",
			Severity:    model.SeverityHigh,
			References:  []string{"SWC-106", "EIP-6780"},
		},
		codeSuicide: {
			Summary:     "Use of deprecated suicide",
			Description: "suicide is the deprecated alias of selfdestruct and carries the same risks.",
			Severity:    model.SeverityHigh,
			References:  []string{"SWC-106"},
		},
	})}
}

func (m *selfdestruct) Name() string        { return "selfdestruct" }
func (m *selfdestruct) Catalog() Catalog    { return m.catalog }
func (m *selfdestruct) NewVisitor() Visitor { return selfdestructVisitor{} }

type selfdestructVisitor struct{}

func (selfdestructVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
	case *solidity.FunctionCall:
		id, ok := n.Callee().(*solidity.Identifier)
		if !ok {
			return Continue, nil
		}
		switch id.Name {
		case "selfdestruct":
			return Continue, c.Push(codeSelfdestruct, SpanOf(n))
		case "suicide":
			return Continue, c.Push(codeSuicide, SpanOf(n))
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
