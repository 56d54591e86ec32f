package plugins

import (
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

const (
	codeCouldBeImmutable = iota
	codeCouldBeConstant
	codeLocalShadowsState
)

// stateVariables keeps a symbol table per contract and reports state
// variables that are never written after construction.
type stateVariables struct{ catalog Catalog }

func newStateVariables() *stateVariables {
	return &stateVariables{catalog: NewCatalog(map[int]Entry{
		codeCouldBeImmutable: {
			Summary:     "State variable could be immutable",
			Description: "The variable is only assigned during construction. Declaring it `immutable` replaces a storage read with a code constant.",
			Severity:    model.SeverityGas,
		},
		codeCouldBeConstant: {
			Summary:     "State variable could be constant",
			Description: "The variable is initialised with a compile-time value and never written. Declare it `constant`.",
			Severity:    model.SeverityGas,
		},
		codeLocalShadowsState: {
			Summary:     "Local variable shadows state variable",
			Description: "A parameter or local variable has the same name as a state variable of the contract, which makes it easy to read or write the wrong one.",
			Severity:    model.SeverityLow,
			References:  []string{"SWC-119"},
		},
	})}
}

func (m *stateVariables) Name() string        { return "state-variables" }
func (m *stateVariables) Catalog() Catalog    { return m.catalog }
func (m *stateVariables) NewVisitor() Visitor { return &stateVariablesVisitor{} }

type stateVariablesVisitor struct {
	vars        []*solidity.VariableDeclaration
	byName      map[string]*solidity.VariableDeclaration
	written     map[string]bool
	ctorWritten map[string]bool
	locals      map[string]bool
}

// isValueType matches types that may be declared immutable.
func isValueType(typ string) bool {
	switch {
	case typ == "bool", isIntegerType(typ), isAddressType(typ):
		return true
	case strings.HasPrefix(typ, "bytes") && typ != "bytes" && !strings.Contains(typ, " "):
		return true
	case strings.HasPrefix(typ, "contract ") || strings.HasPrefix(typ, "enum "):
		return true
	}
	return false
}

func isCompileTimeValue(n solidity.Node) bool {
	if n == nil {
		return false
	}
	return !contains(n, func(x solidity.Node) bool {
		switch x.(type) {
		case *solidity.Literal, *solidity.BinaryOperation, *solidity.UnaryOperation, *solidity.TupleExpression:
			return false
		}
		return true
	})
}

func (v *stateVariablesVisitor) enterContract(cd *solidity.ContractDefinition) {
	v.vars = nil
	v.byName = map[string]*solidity.VariableDeclaration{}
	v.written = map[string]bool{}
	v.ctorWritten = map[string]bool{}
	for _, member := range cd.Nodes {
		d, ok := member.(*solidity.VariableDeclaration)
		if !ok || !d.StateVariable {
			continue
		}
		v.byName[d.Name] = d
		if d.Constant || d.IsImmutable() || !isValueType(d.TypeString) {
			continue
		}
		v.vars = append(v.vars, d)
	}
}

func (v *stateVariablesVisitor) markWritten(c *Context, target solidity.Node) {
	name := assignedName(target)
	if name == "" || v.locals[name] {
		return
	}
	if c.Scope.InConstructor {
		v.ctorWritten[name] = true
		return
	}
	v.written[name] = true
}

func (v *stateVariablesVisitor) Visit(c *Context, n solidity.Node) (Action, error) {
	switch n := n.(type) {
	case *solidity.ContractDefinition:
		if n.IsInterface() {
			return SkipChildren, nil
		}
		v.enterContract(n)
	case *solidity.FunctionDefinition, *solidity.ModifierDefinition:
		v.locals = map[string]bool{}
	case *solidity.VariableDeclaration:
		if n.StateVariable || !c.Scope.InBody() {
			return Continue, nil
		}
		v.locals[n.Name] = true
		if _, shadows := v.byName[n.Name]; shadows {
			return Continue, c.PushWithComment(codeLocalShadowsState, SpanOf(n), n.Name)
		}
	case *solidity.Assignment:
		v.markWritten(c, n.Left)
	case *solidity.UnaryOperation:
		switch n.Operator {
		case "++", "--", "delete":
			v.markWritten(c, n.SubExpression)
		}
	default:
		return Continue, nil
	}
	return Continue, nil
}

func (v *stateVariablesVisitor) Leave(c *Context, n solidity.Node) error {
	cd, ok := n.(*solidity.ContractDefinition)
	if !ok || cd.IsInterface() {
		return nil
	}
	for _, d := range v.vars {
		if v.written[d.Name] {
			continue
		}
		switch {
		case !v.ctorWritten[d.Name] && isCompileTimeValue(d.Value):
			if err := c.PushWithComment(codeCouldBeConstant, SpanOf(d), d.Name); err != nil {
				return err
			}
		case v.ctorWritten[d.Name] || d.Value != nil:
			if err := c.PushWithComment(codeCouldBeImmutable, SpanOf(d), d.Name); err != nil {
				return err
			}
		}
	}
	v.vars = nil
	return nil
}
