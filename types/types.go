// Package types implements ECCO's primitive-kind lattice and the tagged
// TypeDescriptor variants described in spec.md §3, encoded as a Go sum
// type (an interface with a closed set of implementations) rather than a
// dynamically tagged union, per the "dynamic tagged types → sum types"
// redesign note in spec.md §9.
package types

import "fmt"

// PrimitiveKind is one of the fixed-width integer kinds, plus the
// implicit boolean kind produced by comparisons, plus VOID. Ordering is
// significant: it is the total order used for implicit widening
// (spec.md §4.3).
type PrimitiveKind int

// PrimitiveKind values, in ascending widening order.
const (
	Bool PrimitiveKind = iota
	Char
	Short
	Int
	Long
	Void
)

// ByteWidth reports the in-memory width of the kind, in bytes. VOID has no
// width.
func (p PrimitiveKind) ByteWidth() int {
	switch p {
	case Bool:
		return 1 // i1 is modeled as a byte-aligned boolean register
	case Char:
		return 1
	case Short:
		return 2
	case Int:
		return 4
	case Long:
		return 8
	default:
		return 0
	}
}

// LLVMName reports the LIR spelling of the kind (i1, i8, i16, i32, i64,
// void).
func (p PrimitiveKind) LLVMName() string {
	switch p {
	case Bool:
		return "i1"
	case Char:
		return "i8"
	case Short:
		return "i16"
	case Int:
		return "i32"
	case Long:
		return "i64"
	default:
		return "void"
	}
}

func (p PrimitiveKind) String() string { return p.LLVMName() }

// Wider reports whether p is a strictly wider kind than other. VOID never
// compares as wider or narrower than anything - callers must reject VOID
// operands before calling this.
func (p PrimitiveKind) Wider(other PrimitiveKind) bool {
	return p > other && p != Void && other != Void
}

// Descriptor is the sum type of TypeDescriptor variants from spec.md §3:
// Number, Array, Function, Struct, Union, and Enum all satisfy it.
type Descriptor interface {
	// LLVMRepr returns the LIR spelling of the described type. For a
	// Number this includes one "*" per pointer level.
	LLVMRepr() string
	isDescriptor()
}

// Number is an integer or a pointer-to-N-levels of an integer.
type Number struct {
	Kind         PrimitiveKind
	Value        int // initializer value for declarations; otherwise unused
	PointerDepth int
}

func (n *Number) isDescriptor() {}

// Stars returns the "*" suffix matching n's pointer depth.
func (n *Number) Stars() string {
	stars := ""
	for i := 0; i < n.PointerDepth; i++ {
		stars += "*"
	}
	return stars
}

// LLVMRepr returns e.g. "i32" or "i32*" or "i32**".
func (n *Number) LLVMRepr() string {
	return n.Kind.LLVMName() + n.Stars()
}

func (n *Number) String() string {
	return fmt.Sprintf("Number[%s](%d)", n.LLVMRepr(), n.Value)
}

// Equal reports structural equality, matching the original's Number.__eq__.
func (n *Number) Equal(o *Number) bool {
	if o == nil {
		return false
	}
	return n.Kind == o.Kind && n.Value == o.Value && n.PointerDepth == o.PointerDepth
}

// Array is a fixed-size one-dimensional array of Number elements.
type Array struct {
	Element *Number
	Length  int
	// Dimension is always 1; only one-dimensional arrays are supported
	// (spec.md §1 Non-goals: multi-dimensional arrays).
	Dimension int
}

func (a *Array) isDescriptor() {}

// LLVMRepr returns e.g. "[3 x i32]".
func (a *Array) LLVMRepr() string {
	return fmt.Sprintf("[%d x %s]", a.Length, a.Element.LLVMRepr())
}

// Field is one named entry of an ordered mapping: a struct/union field or a
// function argument. Position is significant, so these live in slices, not
// Go maps.
type Field struct {
	Name string
	Type Descriptor
}

// Function describes a prototype or definition's signature.
type Function struct {
	Return      *Number
	Args        []Field
	IsPrototype bool
}

func (f *Function) isDescriptor() {}

// LLVMRepr returns the function's return type spelling.
func (f *Function) LLVMRepr() string {
	if f.Return == nil {
		return "void"
	}
	return f.Return.LLVMRepr()
}

// ArgsLLVMRepr renders the parameter list the way a LIR function signature
// spells it: "i32 %n, i8* %p".
func (f *Function) ArgsLLVMRepr() string {
	out := ""
	for i, arg := range f.Args {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s %%%s", arg.Type.LLVMRepr(), arg.Name)
	}
	return out
}

// FieldIndex returns the position of name within args, for parameter-type
// lookups during a call.
func (f *Function) FieldIndex(name string) int {
	for i, a := range f.Args {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Struct is a named aggregate with ordered fields, each laid out as a
// distinct slot.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) isDescriptor() {}

// LLVMRepr returns e.g. "%Point".
func (s *Struct) LLVMRepr() string { return "%" + s.Name }

// FieldIndex returns the position of name within the struct's fields, or -1.
func (s *Struct) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// FieldType returns the Descriptor of the named field, or nil.
func (s *Struct) FieldType(name string) Descriptor {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// TypeLine renders the LIR aggregate-type declaration line, e.g.
// "%Point = type { i32, i32 }".
func (s *Struct) TypeLine() string {
	out := "%" + s.Name + " = type { "
	for i, f := range s.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.Type.LLVMRepr()
	}
	out += " }"
	return out
}

// Union is a named aggregate whose members overlap a single scalar slot
// sized to its widest member (per SPEC_FULL.md §4.8 - the original
// compiler's union lowering, recovered from original_source/).
type Union struct {
	Name   string
	Fields []Field
}

func (u *Union) isDescriptor() {}

// LLVMRepr returns e.g. "%Variant".
func (u *Union) LLVMRepr() string { return "%" + u.Name }

// FieldType returns the Descriptor of the named field, or nil.
func (u *Union) FieldType(name string) Descriptor {
	for _, f := range u.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// Widest returns the widest primitive kind among the union's members. Only
// Number-typed members are considered; a union of aggregates is out of
// scope.
func (u *Union) Widest() PrimitiveKind {
	widest := Bool
	for _, f := range u.Fields {
		if n, ok := f.Type.(*Number); ok && n.Kind.Wider(widest) {
			widest = n.Kind
		}
	}
	return widest
}

// TypeLine renders the LIR aggregate-type declaration line for a union:
// a single-member struct sized to the widest constituent.
func (u *Union) TypeLine() string {
	return fmt.Sprintf("%%%s = type { %s }", u.Name, u.Widest().LLVMName())
}

// Enum is a set of integer constants, injected into the global symbol
// table as IsEnumValue entries (spec.md §3, §4.3).
type Enum struct {
	Name    string
	Members []Field // Type is always *Number holding the member's integer Value
}

func (e *Enum) isDescriptor() {}

// LLVMRepr reports the underlying representation enum members use.
func (e *Enum) LLVMRepr() string { return Int.LLVMName() }
