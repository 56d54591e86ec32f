package analysis

import "github.com/xab-mack/solhunt/internal/solidity"

// Scope records which syntactic constructs enclose the node being visited.
// Flags change only through Enter; the caller keeps the previous value and
// restores it when the node is left.
type Scope struct {
	InContract    bool
	InInterface   bool
	InLibrary     bool
	InFunction    bool
	InConstructor bool
	InModifier    bool
	InUnchecked   bool
	InFor         bool
	InWhile       bool

	Contract string
	Function string
}

// Enter returns the scope in effect for the children of n.
func (s Scope) Enter(n solidity.Node) Scope {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		return Scope{
			InContract:  true,
			InInterface: n.IsInterface(),
			InLibrary:   n.IsLibrary(),
			Contract:    n.Name,
		}
	case *solidity.FunctionDefinition:
		s.InFunction = true
		s.InModifier = false
		s.InConstructor = n.IsConstructor()
		s.InUnchecked, s.InFor, s.InWhile = false, false, false
		s.Function = n.Name
	case *solidity.ModifierDefinition:
		s.InModifier = true
		s.InFunction, s.InConstructor = false, false
		s.InUnchecked, s.InFor, s.InWhile = false, false, false
		s.Function = n.Name
	case *solidity.UncheckedBlock:
		s.InUnchecked = true
	case *solidity.ForStatement:
		s.InFor = true
	case *solidity.WhileStatement:
		s.InWhile = true
	}
	return s
}

func (s Scope) InLoop() bool { return s.InFor || s.InWhile }

// InBody reports whether the node sits in executable code.
func (s Scope) InBody() bool { return s.InFunction || s.InModifier }
