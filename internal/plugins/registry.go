package plugins

import (
	"fmt"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
)

// Registry keeps modules in registration order, which is also the order the
// walker runs them in.
type Registry struct {
	modules []Module
	byName  map[string]Module
}

func NewRegistry() *Registry { return &Registry{byName: map[string]Module{}} }

func (r *Registry) Register(m Module) error {
	name := m.Name()
	if _, dup := r.byName[name]; dup {
		return model.NewError(model.CodeConfiguration, fmt.Sprintf("module %q registered twice", name)).
			WithContext(model.CtxModule, name)
	}
	r.byName[name] = m
	r.modules = append(r.modules, m)
	return nil
}

// RegisterBuiltin adds every module shipped with solhunt.
func (r *Registry) RegisterBuiltin() {
	for _, m := range Builtin() {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
}

// Builtin returns fresh instances of the built-in modules in dispatch order.
func Builtin() []Module {
	return []Module{
		newCompilerVersion(),
		newOverflow(),
		newTxOrigin(),
		newSelfdestruct(),
		newLowLevelCalls(),
		newTransferSend(),
		newRandomness(),
		newLoops(),
		newStateVariables(),
		newRevertStrings(),
		newEvents(),
		newReentrancy(),
		newERC20Return(),
		newPayableValue(),
		newAccessControl(),
		newFallbackReceive(),
		newUninitializedStorage(),
	}
}

func (r *Registry) Modules() []Module { return append([]Module(nil), r.modules...) }

func (r *Registry) Lookup(name string) (Module, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Select returns the named modules in registration order. An empty list
// selects everything.
func (r *Registry) Select(names []string) ([]Module, error) {
	if len(names) == 0 {
		return r.Modules(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := r.byName[n]; !ok {
			return nil, model.NewError(model.CodeConfiguration, fmt.Sprintf("unknown module %q", n)).
				WithContext(model.CtxModule, n)
		}
		want[n] = true
	}
	var out []Module
	for _, m := range r.modules {
		if want[m.Name()] {
			out = append(out, m)
		}
	}
	return out, nil
}
