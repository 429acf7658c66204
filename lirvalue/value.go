// Package lirvalue defines LIRValue, the tagged value the generator
// threads through every AST-to-LIR emission (spec.md §3). It is split out
// from the lir package itself so that symtab.Entry can record a variable's
// most recently allocated slot (spec.md's "latest_value") without creating
// an import cycle between the symbol table and the generator.
package lirvalue

import (
	"strconv"

	"github.com/ecco-lang/ecco/types"
)

// Kind classifies what an LIRValue refers to.
type Kind int

// Kind values.
const (
	None Kind = iota
	VirtualRegister
	Label
	Constant
)

func (k Kind) String() string {
	switch k {
	case VirtualRegister:
		return "Virtual Register"
	case Label:
		return "Label"
	case Constant:
		return "Constant"
	default:
		return "None"
	}
}

// Value is an LIRValue: a register, label, or constant, carrying enough
// type information (primitive kind, pointer depth, and - for aggregates -
// the array/struct/union descriptor) for the generator to decide how many
// loads are needed to reach the underlying primitive (spec.md's
// "pointer depth" invariant).
type Value struct {
	Kind Kind

	// Name is carried as either an int (anonymous SSA register, label
	// index) or a string (function parameter / local pre-SSA slot,
	// struct/global name). NameStr, if non-empty, wins.
	NameInt int
	NameStr string

	PrimKind     types.PrimitiveKind
	PointerDepth int

	// IsGlobal marks a register whose operand spelling uses the "@"
	// sigil (a module-level symbol) instead of "%" (an SSA register or
	// a named pre-SSA slot).
	IsGlobal bool

	ArrayOf  *types.Array
	StructOf *types.Struct
	UnionOf  *types.Union

	// JustLoadedFrom records the register/slot this value was most
	// recently loaded from, purely for debug-log readability.
	JustLoadedFrom string
}

// NoValue returns the canonical "no value" sentinel.
func NoValue() Value { return Value{Kind: None} }

// NewRegister builds a VirtualRegister value with an anonymous SSA number.
func NewRegister(n int, prim types.PrimitiveKind, depth int) Value {
	return Value{Kind: VirtualRegister, NameInt: n, PrimKind: prim, PointerDepth: depth}
}

// NewNamedRegister builds a VirtualRegister value referring to a named
// pre-SSA slot (a parameter or local).
func NewNamedRegister(name string, prim types.PrimitiveKind, depth int) Value {
	return Value{Kind: VirtualRegister, NameStr: name, PrimKind: prim, PointerDepth: depth}
}

// NewLabel builds a Label value.
func NewLabel(n int) Value {
	return Value{Kind: Label, NameInt: n}
}

// NewGlobalPointer builds a VirtualRegister value addressing a module-level
// global by name, rendered with the "@" sigil rather than "%".
func NewGlobalPointer(name string, prim types.PrimitiveKind, depth int) Value {
	return Value{Kind: VirtualRegister, NameStr: name, PrimKind: prim, PointerDepth: depth, IsGlobal: true}
}

// NewConstant builds a Constant value of the given primitive kind.
func NewConstant(n int, prim types.PrimitiveKind) Value {
	return Value{Kind: Constant, NameInt: n, PrimKind: prim}
}

// IsRegister reports whether v refers to a virtual register.
func (v Value) IsRegister() bool { return v.Kind == VirtualRegister }

// IsNone reports whether v carries no value.
func (v Value) IsNone() bool { return v.Kind == None }

// IsLikelyLocalVar reports whether v is a register addressed by name
// (a parameter or local slot) rather than an anonymous SSA number.
func (v Value) IsLikelyLocalVar() bool { return v.IsRegister() && v.NameStr != "" }

// Name renders the register/label's display name, preferring the string
// form when present.
func (v Value) Name() string {
	if v.NameStr != "" {
		return v.NameStr
	}
	return itoa(v.NameInt)
}

// References returns the "*" suffix matching v's pointer depth.
func (v Value) References() string {
	stars := ""
	for i := 0; i < v.PointerDepth; i++ {
		stars += "*"
	}
	return stars
}

// LLVMType renders the LIR type spelling of v: a primitive with stars, an
// array type, or a struct/union type, each suffixed by the pointer depth.
func (v Value) LLVMType() string {
	switch {
	case v.StructOf != nil:
		return v.StructOf.LLVMRepr() + v.References()
	case v.UnionOf != nil:
		return v.UnionOf.LLVMRepr() + v.References()
	case v.ArrayOf != nil:
		return v.ArrayOf.LLVMRepr() + v.References()
	default:
		return v.PrimKind.LLVMName() + v.References()
	}
}

// LLVMDisplayValue renders v's bare operand spelling: "%3", "%x", "@g", or a
// literal integer for constants.
func (v Value) LLVMDisplayValue() string {
	if v.Kind == VirtualRegister || v.Kind == Label {
		if v.IsGlobal {
			return "@" + v.Name()
		}
		return "%" + v.Name()
	}
	return itoa(v.NameInt)
}

// LLVMRepr renders a fully typed operand, e.g. "i32 %3" or "i32 7".
func (v Value) LLVMRepr() string {
	return v.LLVMType() + " " + v.LLVMDisplayValue()
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
