// Package soltest builds syntax trees by hand for tests. Spans are located
// by searching the source text, so positions stay consistent with it.
package soltest

import (
	"fmt"
	"strings"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/solidity"
)

type Source struct {
	Path string
	Text string
	ID   int
}

func New(path, text string) *Source { return &Source{Path: path, Text: text} }

func (s *Source) Bytes() []byte { return []byte(s.Text) }

// At returns the span of the first occurrence of substr.
func (s *Source) At(substr string) model.Span { return s.Nth(substr, 1) }

// Nth returns the span of the n-th (1-based) occurrence of substr. It panics
// when there is no such occurrence.
func (s *Source) Nth(substr string, n int) model.Span {
	from := 0
	for i := 1; ; i++ {
		idx := strings.Index(s.Text[from:], substr)
		if idx < 0 {
			panic(fmt.Sprintf("soltest: occurrence %d of %q not found in %s", n, substr, s.Path))
		}
		if i == n {
			return model.Span{Start: from + idx, Length: len(substr), Source: s.ID}
		}
		from += idx + 1
	}
}

// Range spans from the first occurrence of from up to the end of the first
// occurrence of to that follows it.
func (s *Source) Range(from, to string) model.Span {
	start := s.At(from).Start
	idx := strings.Index(s.Text[start:], to)
	if idx < 0 {
		panic(fmt.Sprintf("soltest: %q not found after %q in %s", to, from, s.Path))
	}
	return model.Span{Start: start, Length: idx + len(to), Source: s.ID}
}

// Unit wraps nodes into a source unit spanning the whole text.
func (s *Source) Unit(nodes ...solidity.Node) *solidity.SourceUnit {
	return &solidity.SourceUnit{
		Src:          model.Span{Start: 0, Length: len(s.Text), Source: s.ID},
		ID:           s.ID,
		AbsolutePath: s.Path,
		Nodes:        nodes,
	}
}

// Pragma builds a version pragma from the text it spans, e.g.
// "pragma solidity ^0.8.4;" becomes literals ["solidity", "^", "0.8", ".4"].
func (s *Source) Pragma(text string) *solidity.PragmaDirective {
	body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(text), "pragma "), ";")
	var lits []string
	for _, f := range strings.Fields(body) {
		lits = append(lits, splitLiteral(f)...)
	}
	return &solidity.PragmaDirective{Src: s.At(text), Literals: lits}
}

// splitLiteral mirrors solc's tokenisation: "^0.8.4" -> "^", "0.8", ".4".
func splitLiteral(f string) []string {
	i := strings.IndexAny(f, "0123456789")
	if i < 0 {
		return []string{f}
	}
	var out []string
	if i > 0 {
		out = append(out, f[:i])
	}
	num := f[i:]
	if j := strings.Index(num, "."); j >= 0 {
		if k := strings.Index(num[j+1:], "."); k >= 0 {
			cut := j + 1 + k
			return append(out, num[:cut], num[cut:])
		}
	}
	return append(out, num)
}

func Contract(sp model.Span, name string, nodes ...solidity.Node) *solidity.ContractDefinition {
	return &solidity.ContractDefinition{Src: sp, Name: name, ContractKind: "contract", Nodes: nodes}
}

func Interface(sp model.Span, name string, nodes ...solidity.Node) *solidity.ContractDefinition {
	return &solidity.ContractDefinition{Src: sp, Name: name, ContractKind: "interface", Nodes: nodes}
}

// Func builds a public state-changing function.
func Func(sp model.Span, name string, body *solidity.Block, params ...solidity.Node) *solidity.FunctionDefinition {
	return &solidity.FunctionDefinition{
		Src:             sp,
		Name:            name,
		FunctionKind:    "function",
		Visibility:      "public",
		StateMutability: "nonpayable",
		Parameters:      params,
		Body:            body,
	}
}

func Constructor(sp model.Span, body *solidity.Block, params ...solidity.Node) *solidity.FunctionDefinition {
	f := Func(sp, "", body, params...)
	f.FunctionKind = "constructor"
	return f
}

func Block(sp model.Span, stmts ...solidity.Node) *solidity.Block {
	return &solidity.Block{Src: sp, Statements: stmts}
}

func Unchecked(sp model.Span, stmts ...solidity.Node) *solidity.UncheckedBlock {
	return &solidity.UncheckedBlock{Src: sp, Statements: stmts}
}

func Stmt(sp model.Span, expr solidity.Node) *solidity.ExpressionStatement {
	return &solidity.ExpressionStatement{Src: sp, Expression: expr}
}

func StateVar(sp model.Span, name, typ string, value solidity.Node) *solidity.VariableDeclaration {
	return &solidity.VariableDeclaration{
		Src:           sp,
		Name:          name,
		TypeString:    typ,
		StateVariable: true,
		Mutability:    "mutable",
		Visibility:    "internal",
		Value:         value,
	}
}

func Param(sp model.Span, name, typ string) *solidity.VariableDeclaration {
	return &solidity.VariableDeclaration{Src: sp, Name: name, TypeString: typ, Mutability: "mutable"}
}

// Local declares one local variable with an optional initial value.
func Local(sp model.Span, decl *solidity.VariableDeclaration, init solidity.Node) *solidity.VariableDeclarationStatement {
	return &solidity.VariableDeclarationStatement{Src: sp, Declarations: []solidity.Node{decl}, InitialValue: init}
}

func Ident(sp model.Span, name, typ string) *solidity.Identifier {
	return &solidity.Identifier{Src: sp, Name: name, TypeString: typ}
}

func Member(sp model.Span, expr solidity.Node, member, typ string) *solidity.MemberAccess {
	return &solidity.MemberAccess{Src: sp, Expression: expr, MemberName: member, TypeString: typ}
}

func Index(sp model.Span, base, index solidity.Node, typ string) *solidity.IndexAccess {
	return &solidity.IndexAccess{Src: sp, Base: base, Index: index, TypeString: typ}
}

func Binary(sp model.Span, op string, l, r solidity.Node, typ string) *solidity.BinaryOperation {
	return &solidity.BinaryOperation{Src: sp, Operator: op, Left: l, Right: r, TypeString: typ}
}

func Unary(sp model.Span, op string, prefix bool, sub solidity.Node) *solidity.UnaryOperation {
	return &solidity.UnaryOperation{Src: sp, Operator: op, Prefix: prefix, SubExpression: sub, TypeString: "uint256"}
}

func Assign(sp model.Span, op string, l, r solidity.Node, typ string) *solidity.Assignment {
	return &solidity.Assignment{Src: sp, Operator: op, Left: l, Right: r, TypeString: typ}
}

func Call(sp model.Span, callee solidity.Node, args ...solidity.Node) *solidity.FunctionCall {
	return &solidity.FunctionCall{Src: sp, Expression: callee, Arguments: args, CallKind: "functionCall"}
}

func Num(sp model.Span, value string) *solidity.Literal {
	return &solidity.Literal{Src: sp, LiteralKind: "number", Value: value, TypeString: "int_const " + value}
}

func Str(sp model.Span, value string) *solidity.Literal {
	return &solidity.Literal{Src: sp, LiteralKind: "string", Value: value, TypeString: "literal_string \"" + value + "\""}
}

// MsgSender builds the expression msg.sender at sp.
func MsgSender(sp model.Span) *solidity.MemberAccess {
	return Member(sp, Ident(model.Span{Start: sp.Start, Length: 3, Source: sp.Source}, "msg", "msg"), "sender", "address payable")
}
