package plugins

import "github.com/xab-mack/solhunt/internal/solidity"

// Walk drives v over the tree rooted at n in pre-order. A visitor sees the
// scope enclosing the node it is given; c.Scope is entered for the node's
// children and restored afterwards. Leave hooks run post-order, also for
// nodes whose children were skipped.
func Walk(c *Context, v Visitor, n solidity.Node) error {
	if n == nil {
		return nil
	}
	act, err := v.Visit(c, n)
	if err != nil {
		return err
	}
	if act != SkipChildren {
		saved := c.Scope
		c.Scope = saved.Enter(n)
		for _, child := range n.Children() {
			if err := Walk(c, v, child); err != nil {
				c.Scope = saved
				return err
			}
		}
		c.Scope = saved
	}
	if l, ok := v.(Leaver); ok {
		return l.Leave(c, n)
	}
	return nil
}
