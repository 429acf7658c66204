// Package instructions catalogues the LIR opcodes the generator can emit,
// adapted from the teacher's RPN InstructionType enum (which named one byte
// per stack operation) to the much larger set of SSA-style LIR operations
// spec.md §4.6's emission catalogue requires. It exists so the generator
// spells opcodes and icmp predicates through named constants instead of
// scattering string literals through lir.Generator.
package instructions

// Op names one kind of LIR instruction the generator can emit.
type Op string

// Arithmetic and comparison.
const (
	Add  Op = "add nsw"
	Sub  Op = "sub nsw"
	Mul  Op = "mul nsw"
	UDiv Op = "udiv"
	ICmp Op = "icmp"
)

// Memory and aggregates.
const (
	Alloca Op = "alloca"
	Load   Op = "load"
	Store  Op = "store"
	GEP    Op = "getelementptr inbounds"
)

// Width coercion.
const (
	Zext  Op = "zext"
	Trunc Op = "trunc"
)

// Control flow.
const (
	Br    Op = "br"
	Ret   Op = "ret"
	Call  Op = "call"
	Label Op = "label"
)

// Predicate spells the LIR icmp condition code for a comparison token.
type Predicate string

// Predicates, matching spec.md §4.6's emission catalogue.
const (
	PredEQ  Predicate = "eq"
	PredNE  Predicate = "ne"
	PredSLT Predicate = "slt"
	PredSLE Predicate = "sle"
	PredSGT Predicate = "sgt"
	PredSGE Predicate = "sge"
)
