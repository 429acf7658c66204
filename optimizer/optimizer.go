// Package optimizer applies spec.md §4.5's bottom-up constant folding and
// algebraic simplification to an expression AST: two-literal folding, zero
// identities, and re-association, repeated to a fixpoint (or a single pass
// at --opt=1).
package optimizer

import (
	"strconv"

	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/token"
)

// Level selects how aggressively Optimize runs.
type Level int

// Levels, matching the --opt CLI flag in spec.md §6.
const (
	LevelOff    Level = 0
	LevelOnce   Level = 1
	LevelFixpoint Level = 2
)

// Optimize folds root per level, returning the (possibly rewritten) tree.
// At LevelOff it is a pass-through. A Fatal diagnostic is returned for
// division by zero encountered while folding two integer literals.
func Optimize(root *ast.Node, level Level, loc diagnostics.Location) (*ast.Node, *diagnostics.Diagnostic) {
	if level == LevelOff || root == nil {
		return root, nil
	}

	if level == LevelOnce {
		return pass(root, loc)
	}

	for {
		before := dump(root)
		next, err := pass(root, loc)
		if err != nil {
			return nil, err
		}
		root = next
		if dump(root) == before {
			return root, nil
		}
	}
}

// pass runs the three sub-passes once, bottom-up.
func pass(n *ast.Node, loc diagnostics.Location) (*ast.Node, *diagnostics.Diagnostic) {
	if n == nil {
		return nil, nil
	}

	var err *diagnostics.Diagnostic
	if n.Left, err = pass(n.Left, loc); err != nil {
		return nil, err
	}
	if n.Middle, err = pass(n.Middle, loc); err != nil {
		return nil, err
	}
	if n.Right, err = pass(n.Right, loc); err != nil {
		return nil, err
	}

	if !n.Kind().IsBinaryArithmetic() {
		return n, nil
	}

	if folded, ok, ferr := foldLiterals(n, loc); ferr != nil {
		return nil, ferr
	} else if ok {
		return folded, nil
	}

	if simplified, ok, ferr := foldZeroIdentity(n, loc); ferr != nil {
		return nil, ferr
	} else if ok {
		return simplified, nil
	}

	return reassociate(n), nil
}

func isIntLiteral(n *ast.Node) bool {
	return n != nil && n.Kind() == token.IntegerLiteral
}

func litValue(n *ast.Node) int { return n.Token.Value.Int }

func intLeaf(v int) *ast.Node {
	return ast.NewLeaf(token.NewInt(token.IntegerLiteral, v))
}

// foldLiterals implements the two-literal fold: if both children are
// integer literals, compute the result at compile time.
func foldLiterals(n *ast.Node, loc diagnostics.Location) (*ast.Node, bool, *diagnostics.Diagnostic) {
	if !isIntLiteral(n.Left) || !isIntLiteral(n.Right) {
		return nil, false, nil
	}

	l, r := litValue(n.Left), litValue(n.Right)
	switch n.Kind() {
	case token.Plus:
		return intLeaf(l + r), true, nil
	case token.Minus:
		return intLeaf(l - r), true, nil
	case token.Star:
		return intLeaf(l * r), true, nil
	case token.Slash:
		if r == 0 {
			return nil, false, diagnostics.Fatal(loc, "division by zero")
		}
		return intLeaf(truncDiv(l, r)), true, nil
	}
	return nil, false, nil
}

// truncDiv divides truncating toward zero, which is also Go's native `/`
// behavior for ints - spelled out because it is a semantic requirement
// (spec.md §4.5), not an implementation accident.
func truncDiv(a, b int) int { return a / b }

// foldZeroIdentity implements spec.md's zero-identity simplifications.
func foldZeroIdentity(n *ast.Node, loc diagnostics.Location) (*ast.Node, bool, *diagnostics.Diagnostic) {
	leftZero := isIntLiteral(n.Left) && litValue(n.Left) == 0
	rightZero := isIntLiteral(n.Right) && litValue(n.Right) == 0

	switch n.Kind() {
	case token.Plus:
		if rightZero {
			return n.Left, true, nil
		}
		if leftZero {
			return n.Right, true, nil
		}
	case token.Minus:
		if rightZero {
			return n.Left, true, nil
		}
		if leftZero {
			return negate(n.Right), true, nil
		}
	case token.Star:
		if leftZero || rightZero {
			return intLeaf(0), true, nil
		}
	case token.Slash:
		if leftZero {
			return intLeaf(0), true, nil
		}
		if rightZero {
			return nil, false, diagnostics.Fatal(loc, "division by zero")
		}
	}
	return nil, false, nil
}

// negate builds 0-x, the AST shape the generator already knows how to
// lower, rather than introducing a dedicated unary-minus node kind.
func negate(n *ast.Node) *ast.Node {
	return ast.New(token.New(token.Minus), intLeaf(0), nil, n)
}

// reassociate implements spec.md's re-association rule: only rewrites when
// the parent op matches the left child's op, and only for +, *, -, /.
func reassociate(n *ast.Node) *ast.Node {
	left := n.Left
	if left == nil || left.Kind() != n.Kind() {
		return n
	}

	switch n.Kind() {
	case token.Plus, token.Star:
		// x+y+z -> (x+y)+z ; x*y*z -> (x*y)*z: already left-associated
		// by construction, so this rebuilds the same shape. Folding is
		// not re-run on the rebuilt subtree within this pass; at
		// LevelFixpoint the next pass sees it.
		inner := ast.New(token.New(n.Kind()), left.Left, nil, left.Right)
		return ast.New(token.New(n.Kind()), inner, nil, n.Right)
	case token.Minus:
		// x-y-z -> x-(y+z)
		sum := ast.New(token.New(token.Plus), left.Right, nil, n.Right)
		return ast.New(token.New(token.Minus), left.Left, nil, sum)
	case token.Slash:
		// x/y/z -> x/(y*z)
		product := ast.New(token.New(token.Star), left.Right, nil, n.Right)
		return ast.New(token.New(token.Slash), left.Left, nil, product)
	}
	return n
}

// dump renders a cheap structural fingerprint used to detect the fixpoint
// without a deep-equality walk of node pointers.
func dump(n *ast.Node) string {
	if n == nil {
		return "."
	}
	s := string(n.Kind())
	if n.Kind() == token.IntegerLiteral {
		s += "#" + strconv.Itoa(n.Token.Value.Int)
	}
	return "(" + s + dump(n.Left) + dump(n.Middle) + dump(n.Right) + ")"
}
