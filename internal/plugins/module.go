package plugins

import "github.com/xab-mack/solhunt/internal/solidity"

// Action tells the walk whether to descend into a node's children.
type Action int

const (
	Continue Action = iota
	SkipChildren
)

// Module is one detection pass. A Module holds no mutable state: everything
// that changes while scanning lives in the Visitor it hands out per source
// unit, in the run's Sink or in the run's Accumulator.
type Module interface {
	Name() string
	Catalog() Catalog
	NewVisitor() Visitor
}

// Visitor receives every node of one source unit in depth-first pre-order.
type Visitor interface {
	Visit(c *Context, n solidity.Node) (Action, error)
}

// Leaver is implemented by visitors that need a post-order hook.
type Leaver interface {
	Leave(c *Context, n solidity.Node) error
}
