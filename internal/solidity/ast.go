package solidity

import "github.com/xab-mack/solhunt/internal/model"

type NodeKind int

const (
	KindOther NodeKind = iota
	KindSourceUnit
	KindPragmaDirective
	KindImportDirective
	KindContractDefinition
	KindFunctionDefinition
	KindModifierDefinition
	KindVariableDeclaration
	KindStructDefinition
	KindEventDefinition
	KindBlock
	KindUncheckedBlock
	KindForStatement
	KindWhileStatement
	KindIfStatement
	KindExpressionStatement
	KindEmitStatement
	KindReturn
	KindRevertStatement
	KindVariableDeclarationStatement
	KindIdentifier
	KindMemberAccess
	KindIndexAccess
	KindBinaryOperation
	KindUnaryOperation
	KindAssignment
	KindFunctionCall
	KindFunctionCallOptions
	KindLiteral
	KindTupleExpression
)

var kindNames = map[NodeKind]string{
	KindOther:                        "Other",
	KindSourceUnit:                   "SourceUnit",
	KindPragmaDirective:              "PragmaDirective",
	KindImportDirective:              "ImportDirective",
	KindContractDefinition:           "ContractDefinition",
	KindFunctionDefinition:           "FunctionDefinition",
	KindModifierDefinition:           "ModifierDefinition",
	KindVariableDeclaration:          "VariableDeclaration",
	KindStructDefinition:             "StructDefinition",
	KindEventDefinition:              "EventDefinition",
	KindBlock:                        "Block",
	KindUncheckedBlock:               "UncheckedBlock",
	KindForStatement:                 "ForStatement",
	KindWhileStatement:               "WhileStatement",
	KindIfStatement:                  "IfStatement",
	KindExpressionStatement:          "ExpressionStatement",
	KindEmitStatement:                "EmitStatement",
	KindReturn:                       "Return",
	KindRevertStatement:              "RevertStatement",
	KindVariableDeclarationStatement: "VariableDeclarationStatement",
	KindIdentifier:                   "Identifier",
	KindMemberAccess:                 "MemberAccess",
	KindIndexAccess:                  "IndexAccess",
	KindBinaryOperation:              "BinaryOperation",
	KindUnaryOperation:               "UnaryOperation",
	KindAssignment:                   "Assignment",
	KindFunctionCall:                 "FunctionCall",
	KindFunctionCallOptions:          "FunctionCallOptions",
	KindLiteral:                      "Literal",
	KindTupleExpression:              "TupleExpression",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Node is one element of a solc syntax tree. The set of implementations is
// closed; anything solc emits that is not modelled becomes *Other.
type Node interface {
	Kind() NodeKind
	Span() model.Span
	Children() []Node
}

func nodes(ns ...Node) []Node {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func concat(groups ...[]Node) []Node {
	var out []Node
	for _, g := range groups {
		out = append(out, nodes(g...)...)
	}
	return out
}

type SourceUnit struct {
	Src          model.Span
	ID           int
	AbsolutePath string
	Nodes        []Node
}

func (n *SourceUnit) Kind() NodeKind   { return KindSourceUnit }
func (n *SourceUnit) Span() model.Span { return n.Src }
func (n *SourceUnit) Children() []Node { return nodes(n.Nodes...) }

// Contracts returns the contract, interface and library definitions declared
// at the top level of the unit.
func (n *SourceUnit) Contracts() []*ContractDefinition {
	var out []*ContractDefinition
	for _, c := range n.Nodes {
		if cd, ok := c.(*ContractDefinition); ok {
			out = append(out, cd)
		}
	}
	return out
}

type PragmaDirective struct {
	Src      model.Span
	Literals []string
}

func (n *PragmaDirective) Kind() NodeKind   { return KindPragmaDirective }
func (n *PragmaDirective) Span() model.Span { return n.Src }
func (n *PragmaDirective) Children() []Node { return nil }

// IsVersion reports whether the directive is a compiler version pragma.
func (n *PragmaDirective) IsVersion() bool {
	return len(n.Literals) > 0 && n.Literals[0] == "solidity"
}

type ImportDirective struct {
	Src          model.Span
	File         string
	AbsolutePath string
}

func (n *ImportDirective) Kind() NodeKind   { return KindImportDirective }
func (n *ImportDirective) Span() model.Span { return n.Src }
func (n *ImportDirective) Children() []Node { return nil }

type ContractDefinition struct {
	Src           model.Span
	ID            int
	Name          string
	ContractKind  string
	Abstract      bool
	BaseContracts []string
	Nodes         []Node
}

func (n *ContractDefinition) Kind() NodeKind    { return KindContractDefinition }
func (n *ContractDefinition) Span() model.Span  { return n.Src }
func (n *ContractDefinition) Children() []Node  { return nodes(n.Nodes...) }
func (n *ContractDefinition) IsInterface() bool { return n.ContractKind == "interface" }
func (n *ContractDefinition) IsLibrary() bool   { return n.ContractKind == "library" }

type FunctionDefinition struct {
	Src              model.Span
	ID               int
	Name             string
	FunctionKind     string
	Visibility       string
	StateMutability  string
	Virtual          bool
	Parameters       []Node
	ReturnParameters []Node
	Modifiers        []Node
	Body             *Block
}

func (n *FunctionDefinition) Kind() NodeKind   { return KindFunctionDefinition }
func (n *FunctionDefinition) Span() model.Span { return n.Src }
func (n *FunctionDefinition) Children() []Node {
	out := concat(n.Parameters, n.ReturnParameters, n.Modifiers)
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}
func (n *FunctionDefinition) IsConstructor() bool { return n.FunctionKind == "constructor" }

// IsExternallyCallable reports public or external visibility.
func (n *FunctionDefinition) IsExternallyCallable() bool {
	return n.Visibility == "public" || n.Visibility == "external"
}

// IsReadOnly reports view or pure functions.
func (n *FunctionDefinition) IsReadOnly() bool {
	return n.StateMutability == "view" || n.StateMutability == "pure"
}

type ModifierDefinition struct {
	Src        model.Span
	ID         int
	Name       string
	Parameters []Node
	Body       *Block
}

func (n *ModifierDefinition) Kind() NodeKind   { return KindModifierDefinition }
func (n *ModifierDefinition) Span() model.Span { return n.Src }
func (n *ModifierDefinition) Children() []Node {
	out := nodes(n.Parameters...)
	if n.Body != nil {
		out = append(out, n.Body)
	}
	return out
}

type VariableDeclaration struct {
	Src             model.Span
	ID              int
	Name            string
	TypeString      string
	StateVariable   bool
	Constant        bool
	Mutability      string
	Visibility      string
	StorageLocation string
	Value           Node
}

func (n *VariableDeclaration) Kind() NodeKind   { return KindVariableDeclaration }
func (n *VariableDeclaration) Span() model.Span { return n.Src }
func (n *VariableDeclaration) Children() []Node { return nodes(n.Value) }
func (n *VariableDeclaration) IsImmutable() bool {
	return n.Mutability == "immutable"
}

type StructDefinition struct {
	Src     model.Span
	ID      int
	Name    string
	Members []Node
}

func (n *StructDefinition) Kind() NodeKind   { return KindStructDefinition }
func (n *StructDefinition) Span() model.Span { return n.Src }
func (n *StructDefinition) Children() []Node { return nodes(n.Members...) }

type EventDefinition struct {
	Src        model.Span
	ID         int
	Name       string
	Parameters []Node
}

func (n *EventDefinition) Kind() NodeKind   { return KindEventDefinition }
func (n *EventDefinition) Span() model.Span { return n.Src }
func (n *EventDefinition) Children() []Node { return nodes(n.Parameters...) }

type Block struct {
	Src        model.Span
	Statements []Node
}

func (n *Block) Kind() NodeKind   { return KindBlock }
func (n *Block) Span() model.Span { return n.Src }
func (n *Block) Children() []Node { return nodes(n.Statements...) }

type UncheckedBlock struct {
	Src        model.Span
	Statements []Node
}

func (n *UncheckedBlock) Kind() NodeKind   { return KindUncheckedBlock }
func (n *UncheckedBlock) Span() model.Span { return n.Src }
func (n *UncheckedBlock) Children() []Node { return nodes(n.Statements...) }

type ForStatement struct {
	Src       model.Span
	Init      Node
	Condition Node
	Loop      Node
	Body      Node
}

func (n *ForStatement) Kind() NodeKind   { return KindForStatement }
func (n *ForStatement) Span() model.Span { return n.Src }
func (n *ForStatement) Children() []Node { return nodes(n.Init, n.Condition, n.Loop, n.Body) }

type WhileStatement struct {
	Src       model.Span
	Condition Node
	Body      Node
	DoWhile   bool
}

func (n *WhileStatement) Kind() NodeKind   { return KindWhileStatement }
func (n *WhileStatement) Span() model.Span { return n.Src }
func (n *WhileStatement) Children() []Node {
	if n.DoWhile {
		return nodes(n.Body, n.Condition)
	}
	return nodes(n.Condition, n.Body)
}

type IfStatement struct {
	Src       model.Span
	Condition Node
	TrueBody  Node
	FalseBody Node
}

func (n *IfStatement) Kind() NodeKind   { return KindIfStatement }
func (n *IfStatement) Span() model.Span { return n.Src }
func (n *IfStatement) Children() []Node { return nodes(n.Condition, n.TrueBody, n.FalseBody) }

type ExpressionStatement struct {
	Src        model.Span
	Expression Node
}

func (n *ExpressionStatement) Kind() NodeKind   { return KindExpressionStatement }
func (n *ExpressionStatement) Span() model.Span { return n.Src }
func (n *ExpressionStatement) Children() []Node { return nodes(n.Expression) }

type EmitStatement struct {
	Src       model.Span
	EventCall Node
}

func (n *EmitStatement) Kind() NodeKind   { return KindEmitStatement }
func (n *EmitStatement) Span() model.Span { return n.Src }
func (n *EmitStatement) Children() []Node { return nodes(n.EventCall) }

type Return struct {
	Src        model.Span
	Expression Node
}

func (n *Return) Kind() NodeKind   { return KindReturn }
func (n *Return) Span() model.Span { return n.Src }
func (n *Return) Children() []Node { return nodes(n.Expression) }

type RevertStatement struct {
	Src       model.Span
	ErrorCall Node
}

func (n *RevertStatement) Kind() NodeKind   { return KindRevertStatement }
func (n *RevertStatement) Span() model.Span { return n.Src }
func (n *RevertStatement) Children() []Node { return nodes(n.ErrorCall) }

type VariableDeclarationStatement struct {
	Src          model.Span
	Declarations []Node
	InitialValue Node
}

func (n *VariableDeclarationStatement) Kind() NodeKind   { return KindVariableDeclarationStatement }
func (n *VariableDeclarationStatement) Span() model.Span { return n.Src }
func (n *VariableDeclarationStatement) Children() []Node {
	return append(nodes(n.Declarations...), nodes(n.InitialValue)...)
}

type Identifier struct {
	Src                   model.Span
	Name                  string
	TypeString            string
	ReferencedDeclaration int
}

func (n *Identifier) Kind() NodeKind   { return KindIdentifier }
func (n *Identifier) Span() model.Span { return n.Src }
func (n *Identifier) Children() []Node { return nil }

type MemberAccess struct {
	Src                   model.Span
	Expression            Node
	MemberName            string
	TypeString            string
	ReferencedDeclaration int
}

func (n *MemberAccess) Kind() NodeKind   { return KindMemberAccess }
func (n *MemberAccess) Span() model.Span { return n.Src }
func (n *MemberAccess) Children() []Node { return nodes(n.Expression) }

type IndexAccess struct {
	Src        model.Span
	Base       Node
	Index      Node
	TypeString string
}

func (n *IndexAccess) Kind() NodeKind   { return KindIndexAccess }
func (n *IndexAccess) Span() model.Span { return n.Src }
func (n *IndexAccess) Children() []Node { return nodes(n.Base, n.Index) }

type BinaryOperation struct {
	Src        model.Span
	Operator   string
	Left       Node
	Right      Node
	TypeString string
}

func (n *BinaryOperation) Kind() NodeKind   { return KindBinaryOperation }
func (n *BinaryOperation) Span() model.Span { return n.Src }
func (n *BinaryOperation) Children() []Node { return nodes(n.Left, n.Right) }

type UnaryOperation struct {
	Src           model.Span
	Operator      string
	Prefix        bool
	SubExpression Node
	TypeString    string
}

func (n *UnaryOperation) Kind() NodeKind   { return KindUnaryOperation }
func (n *UnaryOperation) Span() model.Span { return n.Src }
func (n *UnaryOperation) Children() []Node { return nodes(n.SubExpression) }

type Assignment struct {
	Src        model.Span
	Operator   string
	Left       Node
	Right      Node
	TypeString string
}

func (n *Assignment) Kind() NodeKind   { return KindAssignment }
func (n *Assignment) Span() model.Span { return n.Src }
func (n *Assignment) Children() []Node { return nodes(n.Left, n.Right) }

type FunctionCall struct {
	Src        model.Span
	Expression Node
	Arguments  []Node
	CallKind   string
	TypeString string
}

func (n *FunctionCall) Kind() NodeKind   { return KindFunctionCall }
func (n *FunctionCall) Span() model.Span { return n.Src }
func (n *FunctionCall) Children() []Node {
	return append(nodes(n.Expression), nodes(n.Arguments...)...)
}

// Callee returns the called expression with call options such as
// {value: x} stripped.
func (n *FunctionCall) Callee() Node {
	if o, ok := n.Expression.(*FunctionCallOptions); ok {
		return o.Expression
	}
	return n.Expression
}

type FunctionCallOptions struct {
	Src        model.Span
	Expression Node
	Names      []string
	Options    []Node
}

func (n *FunctionCallOptions) Kind() NodeKind   { return KindFunctionCallOptions }
func (n *FunctionCallOptions) Span() model.Span { return n.Src }
func (n *FunctionCallOptions) Children() []Node {
	return append(nodes(n.Expression), nodes(n.Options...)...)
}

type Literal struct {
	Src         model.Span
	LiteralKind string
	Value       string
	TypeString  string
}

func (n *Literal) Kind() NodeKind   { return KindLiteral }
func (n *Literal) Span() model.Span { return n.Src }
func (n *Literal) Children() []Node { return nil }

type TupleExpression struct {
	Src        model.Span
	Components []Node
}

func (n *TupleExpression) Kind() NodeKind   { return KindTupleExpression }
func (n *TupleExpression) Span() model.Span { return n.Src }
func (n *TupleExpression) Children() []Node { return nodes(n.Components...) }

// Other keeps any node type without a dedicated representation so traversal
// still reaches the nodes nested in it.
type Other struct {
	Src      model.Span
	NodeType string
	Nodes    []Node
}

func (n *Other) Kind() NodeKind   { return KindOther }
func (n *Other) Span() model.Span { return n.Src }
func (n *Other) Children() []Node { return nodes(n.Nodes...) }
