// Package lir lowers a typed AST into textual LIR, spec.md §4.6's emission
// catalogue. Structurally it keeps the teacher's per-instruction-kind
// string-emission style (compiler/generator.go's genAbs/genCos/genDivide
// functions in the teacher), generalized from a fixed RPN op set to the
// SSA-style register/label bookkeeping an LLVM-flavored IR needs.
package lir

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/instructions"
	"github.com/ecco-lang/ecco/lirvalue"
	"github.com/ecco-lang/ecco/optimizer"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/types"
)

const globalsPlaceholder = "<ECCO GLOBALS PLACEHOLDER - If you see this, an issue with ecco occurred!>"

// Generator accumulates LIR text across a whole compilation unit: one
// preamble, one body per function (and one per global declaration,
// appended to a separate buffer), and a fixed postamble.
type Generator struct {
	Opt     optimizer.Level
	Symbols *symtab.Stack
	logger  *diagnostics.Logger

	out     bytes.Buffer
	globals bytes.Buffer

	regCounter   int
	labelCounter int

	currentFunctionName string
	currentFunctionType  *types.Function
}

// New builds a Generator and predeclares the built-in printint function in
// the global symbol table, so user call sites resolve it like any other
// function (spec.md §4.6's "implicit GST entry for printint").
func New(symbols *symtab.Stack, opt optimizer.Level, logger *diagnostics.Logger) *Generator {
	symbols.Global().Set("printint", &symtab.Entry{
		Name: "printint",
		Type: &types.Function{
			Return: &types.Number{Kind: types.Int},
			Args:   []types.Field{{Name: "value", Type: &types.Number{Kind: types.Int}}},
		},
		Writeable: false,
	})
	return &Generator{Symbols: symbols, Opt: opt, logger: logger}
}

func (g *Generator) emit(s string) { g.out.WriteString(s) }

func (g *Generator) emitf(format string, args ...interface{}) {
	g.out.WriteString(fmt.Sprintf(format, args...))
}

func (g *Generator) emitTab(s string) { g.out.WriteString("\t" + s + "\n") }

func (g *Generator) emitTabf(format string, args ...interface{}) {
	g.emitTab(fmt.Sprintf(format, args...))
}

// newRegister allocates the next anonymous SSA virtual register.
func (g *Generator) newRegister(prim types.PrimitiveKind, depth int) lirvalue.Value {
	r := g.regCounter
	g.regCounter++
	return lirvalue.NewRegister(r, prim, depth)
}

// newLabel allocates the next branch-target label index.
func (g *Generator) newLabel() lirvalue.Value {
	l := g.labelCounter
	g.labelCounter++
	return lirvalue.NewLabel(l)
}

// Preamble writes the module header, the fixed data layout and target
// triple strings, the printint format-string constant and built-in
// definition, and then the globals placeholder line, in the exact order and spelling spec.md §4.8 requires
// (recovered verbatim from original_source/'s llvm_preamble).
func (g *Generator) Preamble(programName string) {
	g.emitf("; ModuleID = '%s'\n", programName)
	g.emitf("source_filename = \"%s\"\n", programName)
	g.emit(`target datalayout = "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-f80:128-n8:16:32:64-S128"` + "\n")
	g.emit(`target triple = "x86_64-pc-linux-gnu"` + "\n\n")
	g.emit(`@print_int_fstring = private unnamed_addr constant [4 x i8] c"%d\0A\00", align 1` + "\n")
	g.emit("define dso_local i32 @printint(i32 %value) {\n")
	g.emitTab(`call i32 (i8*, ...) @printf(i8* getelementptr inbounds ([4 x i8], [4 x i8]* @print_int_fstring , i32 0, i32 0), i32 %value)`)
	g.emitTab("ret i32 %value")
	g.emit("}\n")
	g.emit(globalsPlaceholder + "\n\n")
	g.emit("; Function Attrs: noinline nounwind optnone uwtable\n")
}

// Postamble writes the external printf declaration and the fixed set of
// module-flag metadata lines, spliced after every user function has been
// emitted.
func (g *Generator) Postamble() {
	g.emit("declare i32 @printf(i8*, ...) #1\n")
	g.emit(`attributes #0 = { noinline nounwind optnone uwtable "frame-pointer"="all" "min-legal-vector-width"="0" "no-trapping-math"="true" "stack-protector-buffer-size"="8" "target-cpu"="x86-64" "target-features"="+cx8,+fxsr,+mmx,+sse,+sse2,+x87" "tune-cpu"="generic" }` + "\n")
	g.emit(`attributes #1 = { "frame-pointer"="all" "no-trapping-math"="true" "stack-protector-buffer-size"="8" "target-cpu"="x86-64" "target-features"="+cx8,+fxsr,+mmx,+sse,+sse2,+x87" "tune-cpu"="generic" }` + "\n")
	g.emit("!llvm.module.flags = !{!0, !1, !2, !3, !4}\n")
	g.emit("!llvm.ident = !{!5}\n\n")
	g.emit(`!0 = !{i32 1, !"wchar_size", i32 4}` + "\n")
	g.emit(`!1 = !{i32 7, !"PIC Level", i32 2}` + "\n")
	g.emit(`!2 = !{i32 7, !"PIE Level", i32 2}` + "\n")
	g.emit(`!3 = !{i32 7, !"uwtable", i32 1}` + "\n")
	g.emit(`!4 = !{i32 7, !"frame-pointer", i32 2}` + "\n")
	g.emit(`!5 = !{!"ecco"}` + "\n")
}

// Output splices the globals buffer into the placeholder line and returns
// the finished LIR text.
func (g *Generator) Output() string {
	return strings.Replace(g.out.String(), globalsPlaceholder, g.globals.String(), 1)
}

// ensureLoaded dereferences v until its pointer depth reaches level,
// emitting one load instruction per level, per spec.md's "ensure loaded"
// helper.
func (g *Generator) ensureLoaded(v lirvalue.Value, level int) lirvalue.Value {
	if level < 0 {
		level = 0
	}
	for v.PointerDepth > level {
		out := g.newRegister(v.PrimKind, v.PointerDepth-1)
		out.ArrayOf, out.StructOf, out.UnionOf = v.ArrayOf, v.StructOf, v.UnionOf
		out.JustLoadedFrom = v.Name()
		g.emitTabf("%%%s = load %s, %s %s", out.Name(), out.LLVMType(), v.LLVMType(), v.LLVMDisplayValue())
		v = out
	}
	return v
}

// intResize widens or truncates v to newKind via zext/trunc, or adjusts a
// constant's value in place, matching spec.md's "int resize" helper.
func (g *Generator) intResize(v lirvalue.Value, newKind types.PrimitiveKind) lirvalue.Value {
	if v.PrimKind == newKind {
		return v
	}
	if v.Kind == lirvalue.Constant {
		v.PrimKind = newKind
		return v
	}

	v = g.ensureLoaded(v, 0)
	op := instructions.Trunc
	if newKind.Wider(v.PrimKind) {
		op = instructions.Zext
	}
	out := g.newRegister(newKind, 0)
	g.emitTabf("%%%s = %s %s %%%s to %s", out.Name(), op, v.LLVMType(), v.Name(), newKind.LLVMName())
	return out
}

// binaryWiden brings two operands to a common width before an arithmetic or
// comparison op, per spec.md §4.3.
func (g *Generator) binaryWiden(l, r lirvalue.Value) (lirvalue.Value, lirvalue.Value) {
	if l.PrimKind.Wider(r.PrimKind) {
		r = g.intResize(r, l.PrimKind)
	} else if r.PrimKind.Wider(l.PrimKind) {
		l = g.intResize(l, r.PrimKind)
	}
	return l, r
}

// Arithmetic performs one of + - * / and always emits the instruction, even
// when both operands are constants; literal folding happens earlier, in the
// optimizer, on the AST.
func (g *Generator) Arithmetic(op instructions.Op, l, r lirvalue.Value) lirvalue.Value {
	l, r = g.ensureLoaded(l, 0), g.ensureLoaded(r, 0)
	l, r = g.binaryWiden(l, r)
	out := g.newRegister(l.PrimKind, 0)
	g.emitTabf("%%%s = %s %s %s, %s", out.Name(), op, l.LLVMType(), l.LLVMDisplayValue(), r.LLVMDisplayValue())
	return out
}

// Comparison emits an icmp and returns its i1 result.
func (g *Generator) Comparison(pred instructions.Predicate, l, r lirvalue.Value) lirvalue.Value {
	l, r = g.ensureLoaded(l, 0), g.ensureLoaded(r, 0)
	l, r = g.binaryWiden(l, r)
	out := g.newRegister(types.Bool, 0)
	g.emitTabf("%%%s = icmp %s %s, %s", out.Name(), pred, l.LLVMRepr(), r.LLVMDisplayValue())
	return out
}

// Alloca emits a stack slot for a local variable or parameter, returning a
// pointer-depth-1 register named after it (parameters and locals are always
// named registers, never anonymous, so later references resolve by name).
func (g *Generator) Alloca(name string, v lirvalue.Value) lirvalue.Value {
	slot := v
	slot.Kind = lirvalue.VirtualRegister
	slot.NameStr = name
	slot.PointerDepth = v.PointerDepth + 1
	g.emitTabf("%%%s = alloca %s, align %d", name, v.LLVMType(), max(1, v.PrimKind.ByteWidth()))
	return slot
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DeclareGlobal emits `@name = global TYPE value`, per spec.md §4.6.
func (g *Generator) DeclareGlobal(name string, n *types.Number) {
	value := "0"
	if n.PointerDepth > 0 {
		value = "null"
	} else if n.Value != 0 {
		value = fmt.Sprintf("%d", n.Value)
	}
	g.globals.WriteString(fmt.Sprintf("@%s = global %s %s\n", name, n.LLVMRepr(), value))
}

// DeclareGlobalArray emits `@name = global [N x T] zeroinitializer`.
func (g *Generator) DeclareGlobalArray(name string, arr *types.Array) {
	g.globals.WriteString(fmt.Sprintf("@%s = global %s zeroinitializer\n", name, arr.LLVMRepr()))
}

// LoadGlobal loads a non-enum global variable by name.
func (g *Generator) LoadGlobal(name string, n *types.Number) lirvalue.Value {
	out := g.newRegister(n.Kind, n.PointerDepth)
	g.emitTabf("%%%s = load %s, %s* @%s", out.Name(), n.LLVMRepr(), n.LLVMRepr(), name)
	return out
}

// StoreGlobal widens rvalue to n's kind and stores it into the named
// global.
func (g *Generator) StoreGlobal(name string, n *types.Number, rvalue lirvalue.Value) {
	rvalue = g.ensureLoaded(rvalue, 0)
	rvalue = g.intResize(rvalue, n.Kind)
	g.emitTabf("store %s, %s* @%s", rvalue.LLVMRepr(), n.LLVMRepr(), name)
}

// StoreLocal widens rvalue and stores it through slot, a pointer-depth-1
// named register returned by Alloca.
func (g *Generator) StoreLocal(slot lirvalue.Value, rvalue lirvalue.Value) {
	rvalue = g.ensureLoaded(rvalue, 0)
	rvalue = g.intResize(rvalue, slot.PrimKind)
	g.emitTabf("store %s, %s %%%s", rvalue.LLVMRepr(), slot.LLVMType(), slot.Name())
}

// StoreThroughPointer stores rvalue through an already-computed pointer
// value (a dereferenced pointer, or a GEP result from array/field access).
func (g *Generator) StoreThroughPointer(ptr lirvalue.Value, rvalue lirvalue.Value) {
	rvalue = g.ensureLoaded(rvalue, 0)
	g.emitTabf("store %s, %s %%%s", rvalue.LLVMRepr(), ptr.LLVMType(), ptr.Name())
}

// GEPArrayIndex computes a pointer to arr[index], where arr is a
// pointer-depth-1 register naming an [N x T] local/global slot.
func (g *Generator) GEPArrayIndex(arr lirvalue.Value, index lirvalue.Value) lirvalue.Value {
	index = g.ensureLoaded(index, 0)
	out := g.newRegister(arr.PrimKind, 1)
	arrType := arr.ArrayOf.LLVMRepr()
	g.emitTabf("%%%s = getelementptr inbounds %s, %s* %s, i32 0, %s",
		out.Name(), arrType, arrType, arr.LLVMDisplayValue(), index.LLVMRepr())
	return out
}

// GEPField computes a pointer to obj's named field.
func (g *Generator) GEPField(obj lirvalue.Value, structName string, fieldIndex int, fieldKind types.PrimitiveKind) lirvalue.Value {
	out := g.newRegister(fieldKind, 1)
	g.emitTabf("%%%s = getelementptr inbounds %%%s, %%%s* %s, i32 0, i32 %d",
		out.Name(), structName, structName, obj.LLVMDisplayValue(), fieldIndex)
	return out
}

// EmitStructType emits a struct's aggregate type line into the globals
// buffer (struct/union type lines must precede any use, so they are
// appended there rather than into the per-function body stream).
func (g *Generator) EmitStructType(s *types.Struct) {
	g.globals.WriteString(fmt.Sprintf("%%%s = type { ", s.Name))
	for i, f := range s.Fields {
		if i > 0 {
			g.globals.WriteString(", ")
		}
		g.globals.WriteString(f.Type.LLVMRepr())
	}
	g.globals.WriteString(" }\n")
}

// EmitUnionType emits a union's single-member aggregate type line, sized to
// its widest constituent (SPEC_FULL.md §4.8).
func (g *Generator) EmitUnionType(u *types.Union) {
	g.globals.WriteString(fmt.Sprintf("%%%s = type { %s }\n", u.Name, u.Widest().LLVMName()))
}

// FunctionPreamble emits `define ... @name(args) {`, allocates and stores
// each parameter into its own stack slot, and records each parameter's slot
// as its symbol-table entry's latest value so later Identifier lookups in
// the body resolve to the right register without re-walking the symbol
// table (spec.md's "latest_value" mechanism).
func (g *Generator) FunctionPreamble(name string, fn *types.Function, paramEntries []*symtab.Entry) {
	g.currentFunctionName = name
	g.currentFunctionType = fn
	g.regCounter = len(fn.Args)

	params := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		n := a.Type.(*types.Number)
		params[i] = fmt.Sprintf("%s %%%d", n.LLVMRepr(), i)
	}
	g.emitf("define dso_local %s @%s(%s) #0 {\n", fn.LLVMRepr(), name, strings.Join(params, ", "))

	for i, a := range fn.Args {
		n := a.Type.(*types.Number)
		incoming := lirvalue.NewRegister(i, n.Kind, n.PointerDepth)
		slot := g.Alloca(a.Name, lirvalue.NewConstant(0, n.Kind))
		slot.PointerDepth = n.PointerDepth + 1
		g.StoreLocal(slot, incoming)
		if i < len(paramEntries) {
			paramEntries[i].LatestValue = slot
		}
	}
}

// FunctionPostamble emits the trailing safety-net `ret` spec.md §4.6
// requires, then closes the function body.
func (g *Generator) FunctionPostamble(fn *types.Function) {
	if fn.Return.Kind == types.Void {
		g.emitTab("ret void")
	} else {
		g.emitTabf("ret %s 0", fn.Return.LLVMName())
	}
	g.emit("}\n\n")
	g.currentFunctionName = ""
	g.currentFunctionType = nil
}

// Return emits a `ret` terminator for an explicit return statement.
func (g *Generator) Return(v lirvalue.Value, fn *types.Function) {
	if fn.Return.Kind == types.Void || v.IsNone() {
		g.emitTab("ret void")
		return
	}
	v = g.ensureLoaded(v, 0)
	v = g.intResize(v, fn.Return.Kind)
	g.emitTabf("ret %s %s", v.LLVMType(), v.LLVMDisplayValue())
}

// Call emits a call instruction, widening each argument to its parameter's
// declared type first.
func (g *Generator) Call(name string, fn *types.Function, args []lirvalue.Value) lirvalue.Value {
	parts := make([]string, len(args))
	for i, a := range args {
		a = g.ensureLoaded(a, 0)
		if i < len(fn.Args) {
			a = g.intResize(a, fn.Args[i].Type.(*types.Number).Kind)
		}
		parts[i] = a.LLVMRepr()
	}

	if fn.Return.Kind == types.Void {
		g.emitTabf("call void @%s(%s)", name, strings.Join(parts, ", "))
		return lirvalue.NoValue()
	}

	out := g.newRegister(fn.Return.Kind, 0)
	g.emitTabf("%%%s = call %s @%s(%s)", out.Name(), fn.Return.LLVMRepr(), name, strings.Join(parts, ", "))
	return out
}

// Print widens v to INT and calls the built-in printint, per spec.md §4.6.
func (g *Generator) Print(v lirvalue.Value) {
	v = g.ensureLoaded(v, 0)
	v = g.intResize(v, types.Int)
	g.Call("printint", &types.Function{Return: &types.Number{Kind: types.Int}, Args: []types.Field{{Name: "value", Type: &types.Number{Kind: types.Int}}}}, []lirvalue.Value{v})
}

// Label emits a branch-target label definition.
func (g *Generator) Label(l lirvalue.Value) {
	g.emit("\n")
	g.emitTabf("L%s:", l.Name())
}

// Jump emits an unconditional branch.
func (g *Generator) Jump(l lirvalue.Value) {
	g.emitTabf("br label %%L%s", l.Name())
}

// ConditionalJump emits a two-way conditional branch on cond.
func (g *Generator) ConditionalJump(cond lirvalue.Value, ifTrue, ifFalse lirvalue.Value) {
	g.emitTabf("br %s %%%s, label %%L%s, label %%L%s", cond.LLVMType(), cond.Name(), ifTrue.Name(), ifFalse.Name())
}
