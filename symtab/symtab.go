// Package symtab implements the symbol-table stack from spec.md §4.3: one
// global table (GST) plus a stack of local tables (LST), each hashed with
// FNV-1a per spec.md §9's "string-keyed hash symbol table" redesign note.
// Lookups walk the stack from innermost outward; declarations always land
// in the current (innermost, or global if no locals are pushed) table.
package symtab

import (
	"hash/fnv"

	"github.com/ecco-lang/ecco/lirvalue"
	"github.com/ecco-lang/ecco/stack"
	"github.com/ecco-lang/ecco/types"
)

// tableSize is the bucket count for each hashed scope, matching the
// original Python implementation's default (512).
const tableSize = 512

// Entry is a SymbolTableEntry: a declared name's type, writeability, and
// (for locals) the most recently allocated LIR slot that later uses of the
// name should reference.
type Entry struct {
	Name        string
	Type        types.Descriptor
	Writeable   bool
	IsEnumValue bool
	LatestValue lirvalue.Value
}

// bucket is one hashed slot's singly linked overflow chain.
type bucket struct {
	key   string
	entry *Entry
	next  *bucket
}

// Table is one hashed scope (the GST, or one LST frame).
type Table struct {
	data []*bucket
}

// NewTable allocates an empty scope.
func NewTable() *Table {
	return &Table{data: make([]*bucket, tableSize)}
}

func hashKey(s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(tableSize))
}

// Get returns the entry declared under name in this table only (no outward
// search), or nil.
func (t *Table) Get(name string) *Entry {
	idx := hashKey(name)
	for b := t.data[idx]; b != nil; b = b.next {
		if b.key == name {
			return b.entry
		}
	}
	return nil
}

// Set inserts or overwrites name's entry in this table, reporting whether
// the name already existed.
func (t *Table) Set(name string, entry *Entry) (existed bool) {
	idx := hashKey(name)
	for b := t.data[idx]; b != nil; b = b.next {
		if b.key == name {
			b.entry = entry
			return true
		}
	}
	t.data[idx] = &bucket{key: name, entry: entry, next: t.data[idx]}
	return false
}

// Stack is the SymbolTableStack: exactly one GST plus a stack of LSTs.
type Stack struct {
	global *Table
	locals *stack.Stack[*Table]
}

// New builds a Stack with an empty GST and no local scopes pushed.
func New() *Stack {
	return &Stack{global: NewTable(), locals: stack.New[*Table]()}
}

// Global returns the global symbol table directly, for callers (the
// parser's function/struct/union registration, the generator's printint
// entry) that always target GST regardless of current scope depth.
func (s *Stack) Global() *Table { return s.global }

// Push opens a new local scope, e.g. on entering a function body.
func (s *Stack) Push() {
	s.locals.Push(NewTable())
}

// Pop closes the innermost local scope, e.g. on leaving a function body.
func (s *Stack) Pop() {
	_, _ = s.locals.Pop()
}

// current returns the innermost table declarations should land in: the top
// local scope if one is pushed, otherwise the GST.
func (s *Stack) current() *Table {
	if t, err := s.locals.Peek(); err == nil {
		return t
	}
	return s.global
}

// Declare inserts name into the current scope. If errorIfExists is true and
// name is already declared in that same scope, Declare reports that via its
// bool return (the caller raises diagnostics.IdentifierError); redeclaring
// in an outer scope is legal shadowing, not an error.
func (s *Stack) Declare(name string, entry *Entry, errorIfExists bool) (ok bool) {
	scope := s.current()
	if errorIfExists && scope.Get(name) != nil {
		return false
	}
	scope.Set(name, entry)
	return true
}

// Lookup searches from the innermost local scope outward to the GST.
func (s *Stack) Lookup(name string) *Entry {
	scopes := s.locals.Snapshot()
	for i := len(scopes) - 1; i >= 0; i-- {
		if e := scopes[i].Get(name); e != nil {
			return e
		}
	}
	return s.global.Get(name)
}

// DeclareEnum registers each member of an enum as a global integer
// constant entry flagged IsEnumValue, per spec.md §4.3.
func (s *Stack) DeclareEnum(e *types.Enum) {
	for _, member := range e.Members {
		n := member.Type.(*types.Number)
		s.global.Set(member.Name, &Entry{
			Name:        member.Name,
			Type:        n,
			Writeable:   false,
			IsEnumValue: true,
		})
	}
}
