package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xab-mack/solhunt/internal/solidity"
)

func TestScope_EnterEachFlag(t *testing.T) {
	base := Scope{}.Enter(&solidity.ContractDefinition{Name: "Bank", ContractKind: "contract"})
	fn := base.Enter(&solidity.FunctionDefinition{Name: "deposit", FunctionKind: "function"})

	tests := []struct {
		name  string
		from  Scope
		node  solidity.Node
		check func(Scope) bool
	}{
		{"contract", Scope{}, &solidity.ContractDefinition{Name: "C"}, func(s Scope) bool { return s.InContract && s.Contract == "C" }},
		{"interface", Scope{}, &solidity.ContractDefinition{ContractKind: "interface"}, func(s Scope) bool { return s.InInterface }},
		{"library", Scope{}, &solidity.ContractDefinition{ContractKind: "library"}, func(s Scope) bool { return s.InLibrary }},
		{"function", base, &solidity.FunctionDefinition{Name: "f"}, func(s Scope) bool { return s.InFunction && s.Function == "f" }},
		{"constructor", base, &solidity.FunctionDefinition{FunctionKind: "constructor"}, func(s Scope) bool { return s.InConstructor }},
		{"modifier", base, &solidity.ModifierDefinition{Name: "onlyOwner"}, func(s Scope) bool { return s.InModifier && !s.InFunction }},
		{"unchecked", fn, &solidity.UncheckedBlock{}, func(s Scope) bool { return s.InUnchecked }},
		{"for", fn, &solidity.ForStatement{}, func(s Scope) bool { return s.InFor && s.InLoop() }},
		{"while", fn, &solidity.WhileStatement{}, func(s Scope) bool { return s.InWhile && s.InLoop() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.from
			got := tt.from.Enter(tt.node)
			assert.True(t, tt.check(got))
			// Enter works on a copy; the saved scope is what the walk restores.
			assert.Equal(t, before, tt.from)
			assert.False(t, tt.check(before))
		})
	}
}

func TestScope_FunctionResetsBlockFlags(t *testing.T) {
	s := Scope{InContract: true, InUnchecked: true, InFor: true, InWhile: true}
	got := s.Enter(&solidity.FunctionDefinition{Name: "g"})
	assert.False(t, got.InUnchecked)
	assert.False(t, got.InLoop())
	assert.True(t, got.InContract)
	assert.True(t, got.InBody())
}

func TestScope_ContractResetsEverything(t *testing.T) {
	s := Scope{InFunction: true, InConstructor: true, InFor: true, Function: "f"}
	got := s.Enter(&solidity.ContractDefinition{Name: "D"})
	assert.Equal(t, Scope{InContract: true, Contract: "D"}, got)
}

func TestScope_OtherNodesKeepScope(t *testing.T) {
	s := Scope{InContract: true, InFunction: true, InFor: true}
	assert.Equal(t, s, s.Enter(&solidity.Block{}))
	assert.Equal(t, s, s.Enter(&solidity.Identifier{Name: "x"}))
}
