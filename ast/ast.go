// Package ast defines ECCO's typed abstract syntax tree node, shared by the
// parser, the optimizer, and the LIR generator.
package ast

import (
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// Node is an ASTNode: a token plus up to three children. Ternary children
// (Left/Middle/Right) encode if/then/else and for-loop shapes; unary nodes
// use only Left; binary nodes use Left/Right.
type Node struct {
	Token token.Token

	Left   *Node
	Middle *Node
	Right  *Node

	Type     types.Descriptor
	IsRvalue bool

	// Entry points at the declaring symbol-table entry for Identifier,
	// FunctionCall, VarDecl, and Function nodes, set by the parser at
	// parse time. Because entries are shared pointers, a generator that
	// mutates Entry.LatestValue after allocating a stack slot makes that
	// slot visible to every other node referencing the same entry,
	// reproducing the Python implementation's latest_value field without
	// a second symbol-table lookup at generation time.
	Entry *symtab.Entry

	// CallArgs holds a function call's evaluated argument expressions,
	// in declaration order.
	CallArgs []*Node

	// Params holds a FUNCTION definition's parameter entries, in
	// declaration order, so the generator can bind each one's allocated
	// stack slot after the parameter scope the parser pushed has already
	// been popped.
	Params []*symtab.Entry
}

// New builds a ternary (or fewer) node.
func New(tok token.Token, left, middle, right *Node) *Node {
	return &Node{Token: tok, Left: left, Middle: middle, Right: right}
}

// NewUnary builds a node with only a left child.
func NewUnary(tok token.Token, left *Node) *Node {
	return &Node{Token: tok, Left: left}
}

// NewLeaf builds a childless node (an integer literal or identifier).
func NewLeaf(tok token.Token) *Node {
	return &Node{Token: tok}
}

// NewCall builds a FUNCTION_CALL node carrying its evaluated arguments.
func NewCall(tok token.Token, args []*Node) *Node {
	return &Node{Token: tok, CallArgs: args}
}

// Kind is shorthand for n.Token.Kind, used pervasively by the optimizer and
// generator to dispatch on node shape.
func (n *Node) Kind() token.Kind {
	if n == nil {
		return token.UNKNOWN
	}
	return n.Token.Kind
}

// Glue sequences left and right for side effects, synthesizing the
// AST_GLUE node spec.md §3 describes.
func Glue(left, right *Node) *Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return New(token.New(token.ASTGlue), left, nil, right)
}
