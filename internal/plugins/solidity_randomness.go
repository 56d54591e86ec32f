package plugins

import (
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeWeakRandomness = iota
	codeTimestampComparison
)

// randomness flags miner-influenced values used as entropy or in
// comparisons.
type randomness struct{ catalog Catalog }

func newRandomness() *randomness {
	return &randomness{catalog: NewCatalog(map[int]Entry{
		codeWeakRandomness: {
			Summary:     "Weak randomness from chain attributes",
			Description: "Block attributes such as timestamp, number, prevrandao and blockhash are known to or influenced by block producers. Use a VRF or a commit-reveal scheme.",
			Severity:    model.SeverityMedium,
			References:  []string{"SWC-120"},
		},
		codeTimestampComparison: {
			Summary:     "Comparison with block.timestamp",
			Description: "Block producers can shift block.timestamp by several seconds; avoid strict time windows that decide value transfers.",
			Severity:    model.SeverityLow,
			References:  []string{"SWC-116"},
		},
	})}
}

func (m *randomness) Name() string        { return "randomness" }
func (m *randomness) Catalog() Catalog    { return m.catalog }
func (m *randomness) NewVisitor() Visitor { return randomnessVisitor{} }

type randomnessVisitor struct{}

func isChainEntropy(n solidity.Node) bool {
	switch e := n.(type) {
	case *solidity.MemberAccess:
		if id, ok := e.Expression.(*solidity.Identifier); ok && id.Name == "block" {
			switch e.MemberName {
			case "timestamp", "number", "difficulty", "prevrandao", "coinbase":
				return true
			}
		}
	case *solidity.Identifier:
		return e.Name == "now"
	case *solidity.FunctionCall:
		return callee(e) == "blockhash"
	}
	return false
}

func isTimestamp(n solidity.Node) bool {
	if id, ok := n.(*solidity.Identifier); ok {
		return id.Name == "now"
	}
	return isMember(n, "block", "timestamp")
}

func (randomnessVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.FunctionCall:
		if callee(n) != "keccak256" {
			return Continue, nil
		}
		for _, arg := range n.Arguments {
			if contains(arg, isChainEntropy) {
				return SkipChildren, c.Push(codeWeakRandomness, SpanOf(n))
			}
		}
	case *solidity.BinaryOperation:
		switch n.Operator {
		case "%":
			if contains(n.Left, isChainEntropy) {
				return SkipChildren, c.Push(codeWeakRandomness, SpanOf(n))
			}
		case "<", ">", "<=", ">=", "==", "!=":
			if contains(n.Left, isTimestamp) || contains(n.Right, isTimestamp) {
				return Continue, c.Push(codeTimestampComparison, SpanOf(n))
			}
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}
