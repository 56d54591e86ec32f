package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const codeTransferSend = 0

// transferSend flags ether transfers relying on the 2300 gas stipend.
type transferSend struct{ catalog Catalog }

func newTransferSend() *transferSend {
	return &transferSend{catalog: NewCatalog(map[int]Entry{
		codeTransferSend: {
			Summary:     "Use of transfer/send",
			Description: "transfer and send forward a fixed 2300 gas stipend and may fail after gas repricing or with smart-contract wallets. Prefer call{value: amount}(\"\") with a checked result, or a pull payment pattern.",
			Severity:    model.SeverityLow,
			References:  []string{"EIP-1884"},
		},
	})}
}

func (m *transferSend) Name() string        { return "transfer-send" }
func (m *transferSend) Catalog() Catalog    { return m.catalog }
func (m *transferSend) NewVisitor() Visitor { return transferSendVisitor{} }

type transferSendVisitor struct{}

func (transferSendVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.FunctionCall:
		switch addressCall(n) {
		case "transfer", "send":
			return Continue, c.Push(codeTransferSend, SpanOf(n))
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
