package solidity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
)

// ParseSrc parses solc's "start:length:sourceIndex" location format.
func ParseSrc(src string) (model.Span, error) {
	parts := strings.Split(src, ":")
	if len(parts) != 3 {
		return model.Span{}, fmt.Errorf("malformed src %q", src)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return model.Span{}, fmt.Errorf("malformed src %q: %w", src, err)
		}
		nums[i] = n
	}
	return model.Span{Start: nums[0], Length: nums[1], Source: nums[2]}, nil
}

// DecodeSourceUnit decodes the compact JSON AST of one source unit as found
// under "sources.<path>.ast" in solc's standard JSON output.
func DecodeSourceUnit(data []byte) (*SourceUnit, error) {
	n, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	su, ok := n.(*SourceUnit)
	if !ok {
		return nil, fmt.Errorf("root node is not a SourceUnit")
	}
	return su, nil
}

type object map[string]json.RawMessage

type decoder struct {
	obj object
	err error
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func (d *decoder) setErr(key string, err error) {
	if d.err == nil && err != nil {
		d.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (d *decoder) str(key string) string {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return ""
	}
	var s string
	d.setErr(key, json.Unmarshal(raw, &s))
	return s
}

func (d *decoder) boolean(key string) bool {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return false
	}
	var b bool
	d.setErr(key, json.Unmarshal(raw, &b))
	return b
}

func (d *decoder) integer(key string) int {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return 0
	}
	var n int
	d.setErr(key, json.Unmarshal(raw, &n))
	return n
}

func (d *decoder) strs(key string) []string {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	var out []string
	d.setErr(key, json.Unmarshal(raw, &out))
	return out
}

func (d *decoder) typeString() string {
	raw, ok := d.obj["typeDescriptions"]
	if !ok || isNull(raw) {
		return ""
	}
	var td struct {
		TypeString string `json:"typeString"`
	}
	d.setErr("typeDescriptions", json.Unmarshal(raw, &td))
	return td.TypeString
}

func (d *decoder) node(key string) Node {
	raw, ok := d.obj[key]
	if !ok {
		return nil
	}
	n, err := decodeNode(raw)
	d.setErr(key, err)
	return n
}

func (d *decoder) list(key string) []Node {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.setErr(key, err)
		return nil
	}
	out := make([]Node, 0, len(items))
	for _, item := range items {
		n, err := decodeNode(item)
		if err != nil {
			d.setErr(key, err)
			return nil
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// params unwraps a ParameterList node.
func (d *decoder) params(key string) []Node {
	raw, ok := d.obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		d.setErr(key, err)
		return nil
	}
	inner := &decoder{obj: obj}
	out := inner.list("parameters")
	d.setErr(key, inner.err)
	return out
}

func (d *decoder) block(key string) *Block {
	if b, ok := d.node(key).(*Block); ok {
		return b
	}
	return nil
}

func (d *decoder) baseNames() []string {
	raw, ok := d.obj["baseContracts"]
	if !ok || isNull(raw) {
		return nil
	}
	var bases []struct {
		BaseName struct {
			Name string `json:"name"`
		} `json:"baseName"`
	}
	d.setErr("baseContracts", json.Unmarshal(raw, &bases))
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		out = append(out, b.BaseName.Name)
	}
	return out
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if isNull(raw) {
		return nil, nil
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	d := &decoder{obj: obj}
	nodeType := d.str("nodeType")
	if nodeType == "" {
		return nil, fmt.Errorf("object without nodeType")
	}
	src, err := ParseSrc(d.str("src"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nodeType, err)
	}

	var n Node
	switch nodeType {
	case "SourceUnit":
		n = &SourceUnit{Src: src, ID: d.integer("id"), AbsolutePath: d.str("absolutePath"), Nodes: d.list("nodes")}
	case "PragmaDirective":
		n = &PragmaDirective{Src: src, Literals: d.strs("literals")}
	case "ImportDirective":
		n = &ImportDirective{Src: src, File: d.str("file"), AbsolutePath: d.str("absolutePath")}
	case "ContractDefinition":
		n = &ContractDefinition{
			Src:           src,
			ID:            d.integer("id"),
			Name:          d.str("name"),
			ContractKind:  d.str("contractKind"),
			Abstract:      d.boolean("abstract"),
			BaseContracts: d.baseNames(),
			Nodes:         d.list("nodes"),
		}
	case "FunctionDefinition":
		n = &FunctionDefinition{
			Src:              src,
			ID:               d.integer("id"),
			Name:             d.str("name"),
			FunctionKind:     d.str("kind"),
			Visibility:       d.str("visibility"),
			StateMutability:  d.str("stateMutability"),
			Virtual:          d.boolean("virtual"),
			Parameters:       d.params("parameters"),
			ReturnParameters: d.params("returnParameters"),
			Modifiers:        d.list("modifiers"),
			Body:             d.block("body"),
		}
	case "ModifierDefinition":
		n = &ModifierDefinition{
			Src:        src,
			ID:         d.integer("id"),
			Name:       d.str("name"),
			Parameters: d.params("parameters"),
			Body:       d.block("body"),
		}
	case "VariableDeclaration":
		n = &VariableDeclaration{
			Src:             src,
			ID:              d.integer("id"),
			Name:            d.str("name"),
			TypeString:      d.typeString(),
			StateVariable:   d.boolean("stateVariable"),
			Constant:        d.boolean("constant"),
			Mutability:      d.str("mutability"),
			Visibility:      d.str("visibility"),
			StorageLocation: d.str("storageLocation"),
			Value:           d.node("value"),
		}
	case "StructDefinition":
		n = &StructDefinition{Src: src, ID: d.integer("id"), Name: d.str("name"), Members: d.list("members")}
	case "EventDefinition":
		n = &EventDefinition{Src: src, ID: d.integer("id"), Name: d.str("name"), Parameters: d.params("parameters")}
	case "Block":
		n = &Block{Src: src, Statements: d.list("statements")}
	case "UncheckedBlock":
		n = &UncheckedBlock{Src: src, Statements: d.list("statements")}
	case "ForStatement":
		n = &ForStatement{
			Src:       src,
			Init:      d.node("initializationExpression"),
			Condition: d.node("condition"),
			Loop:      d.node("loopExpression"),
			Body:      d.node("body"),
		}
	case "WhileStatement", "DoWhileStatement":
		n = &WhileStatement{Src: src, Condition: d.node("condition"), Body: d.node("body"), DoWhile: nodeType == "DoWhileStatement"}
	case "IfStatement":
		n = &IfStatement{Src: src, Condition: d.node("condition"), TrueBody: d.node("trueBody"), FalseBody: d.node("falseBody")}
	case "ExpressionStatement":
		n = &ExpressionStatement{Src: src, Expression: d.node("expression")}
	case "EmitStatement":
		n = &EmitStatement{Src: src, EventCall: d.node("eventCall")}
	case "Return":
		n = &Return{Src: src, Expression: d.node("expression")}
	case "RevertStatement":
		n = &RevertStatement{Src: src, ErrorCall: d.node("errorCall")}
	case "VariableDeclarationStatement":
		n = &VariableDeclarationStatement{Src: src, Declarations: d.list("declarations"), InitialValue: d.node("initialValue")}
	case "Identifier":
		n = &Identifier{Src: src, Name: d.str("name"), TypeString: d.typeString(), ReferencedDeclaration: d.integer("referencedDeclaration")}
	case "MemberAccess":
		n = &MemberAccess{
			Src:                   src,
			Expression:            d.node("expression"),
			MemberName:            d.str("memberName"),
			TypeString:            d.typeString(),
			ReferencedDeclaration: d.integer("referencedDeclaration"),
		}
	case "IndexAccess":
		n = &IndexAccess{Src: src, Base: d.node("baseExpression"), Index: d.node("indexExpression"), TypeString: d.typeString()}
	case "BinaryOperation":
		n = &BinaryOperation{
			Src:        src,
			Operator:   d.str("operator"),
			Left:       d.node("leftExpression"),
			Right:      d.node("rightExpression"),
			TypeString: d.typeString(),
		}
	case "UnaryOperation":
		n = &UnaryOperation{
			Src:           src,
			Operator:      d.str("operator"),
			Prefix:        d.boolean("prefix"),
			SubExpression: d.node("subExpression"),
			TypeString:    d.typeString(),
		}
	case "Assignment":
		n = &Assignment{
			Src:        src,
			Operator:   d.str("operator"),
			Left:       d.node("leftHandSide"),
			Right:      d.node("rightHandSide"),
			TypeString: d.typeString(),
		}
	case "FunctionCall":
		n = &FunctionCall{
			Src:        src,
			Expression: d.node("expression"),
			Arguments:  d.list("arguments"),
			CallKind:   d.str("kind"),
			TypeString: d.typeString(),
		}
	case "FunctionCallOptions":
		n = &FunctionCallOptions{Src: src, Expression: d.node("expression"), Names: d.strs("names"), Options: d.list("options")}
	case "Literal":
		n = &Literal{Src: src, LiteralKind: d.str("kind"), Value: d.str("value"), TypeString: d.typeString()}
	case "TupleExpression":
		n = &TupleExpression{Src: src, Components: d.list("components")}
	default:
		other := &Other{Src: src, NodeType: nodeType}
		other.Nodes, err = nested(obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", nodeType, err)
		}
		n = other
	}
	if d.err != nil {
		return nil, fmt.Errorf("%s: %w", nodeType, d.err)
	}
	return n, nil
}

// nested collects every node reachable from the fields of an unmodelled
// node, in source order.
func nested(obj object) ([]Node, error) {
	var out []Node
	var walk func(raw json.RawMessage) error
	walk = func(raw json.RawMessage) error {
		t := bytes.TrimSpace(raw)
		if len(t) == 0 {
			return nil
		}
		switch t[0] {
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(t, &items); err != nil {
				return err
			}
			for _, item := range items {
				if err := walk(item); err != nil {
					return err
				}
			}
		case '{':
			var inner object
			if err := json.Unmarshal(t, &inner); err != nil {
				return err
			}
			if _, ok := inner["nodeType"]; !ok {
				for _, k := range sortedKeys(inner) {
					if err := walk(inner[k]); err != nil {
						return err
					}
				}
				return nil
			}
			n, err := decodeNode(t)
			if err != nil {
				return err
			}
			if n != nil {
				out = append(out, n)
			}
		}
		return nil
	}
	for _, k := range sortedKeys(obj) {
		if k == "nodeType" || k == "src" {
			continue
		}
		if err := walk(obj[k]); err != nil {
			return nil, err
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span(), out[j].Span()
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Length > b.Length
	})
	return out, nil
}

func sortedKeys(obj object) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
