// Package compiler drives the full pipeline: lex -> parse -> optimize ->
// generate, one top-level declaration at a time, and assembles the
// resulting LIR text. The three-step shape - tokenize, build an internal
// form, then emit - mirrors the original RPN calculator this package grew
// out of, but each step is now delegated to its own package rather than
// living inline here.
package compiler

import (
	"github.com/ecco-lang/ecco/ast"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/lir"
	"github.com/ecco-lang/ecco/optimizer"
	"github.com/ecco-lang/ecco/parser"
	"github.com/ecco-lang/ecco/symtab"
	"github.com/ecco-lang/ecco/token"
	"github.com/ecco-lang/ecco/types"
)

// Compiler holds our object-state.
type Compiler struct {

	// ProgramName is embedded in the LIR preamble's source_filename and
	// module-identifier lines.
	ProgramName string

	// Opt selects the optimizer's aggressiveness, per the --opt flag.
	Opt optimizer.Level

	// Logger receives non-fatal diagnostic output as compilation proceeds.
	Logger *diagnostics.Logger
}

// New creates a new compiler for programName, logging through logger at
// optimization level opt.
func New(programName string, opt optimizer.Level, logger *diagnostics.Logger) *Compiler {
	return &Compiler{ProgramName: programName, Opt: opt, Logger: logger}
}

// Compile converts source into a complete LLVM-IR text module, returning
// the first fatal diagnostic encountered, if any.
func (c *Compiler) Compile(source string) (string, *diagnostics.Diagnostic) {
	symbols := symtab.New()
	gen := lir.New(symbols, c.Opt, c.Logger)
	gen.Preamble(c.ProgramName)

	p, err := parser.New(source, symbols, c.Opt, c.Logger)
	if err != nil {
		return "", err
	}

	for !p.AtEOF() {
		node, err := p.ParseTopLevel()
		if err != nil {
			return "", err
		}
		if node == nil {
			// An enum declaration: its members were injected straight
			// into the symbol table and need no code generation.
			continue
		}
		if err := c.emitTopLevel(gen, node); err != nil {
			return "", err
		}
	}

	gen.Postamble()
	return gen.Output(), nil
}

// emitTopLevel dispatches one top-level node - a struct/union type
// declaration, a function prototype/definition, or a global variable - to
// the generator.
func (c *Compiler) emitTopLevel(gen *lir.Generator, node *ast.Node) *diagnostics.Diagnostic {
	switch node.Kind() {

	case token.TypeDecl:
		switch t := node.Type.(type) {
		case *types.Struct:
			gen.EmitStructType(t)
		case *types.Union:
			gen.EmitUnionType(t)
		}
		return nil

	case token.Function:
		fn, ok := node.Type.(*types.Function)
		if !ok {
			return diagnostics.InternalTypeError(diagnostics.Location{}, "function type", node.Type.LLVMRepr(), "top-level function node")
		}
		if fn.IsPrototype {
			// Nothing to emit; the declaration only needed to land in
			// the symbol table so later calls can resolve it.
			return nil
		}

		body, err := optimizer.Optimize(node.Left, c.Opt, diagnostics.Location{})
		if err != nil {
			return err
		}

		gen.FunctionPreamble(node.Entry.Name, fn, node.Params)
		if _, err := gen.Generate(body); err != nil {
			return err
		}
		gen.FunctionPostamble(fn)
		return nil

	case token.VarDecl:
		return c.emitGlobalVar(gen, node)

	default:
		return diagnostics.InternalTypeError(diagnostics.Location{}, "top-level construct", string(node.Kind()), "Compile")
	}
}

// emitGlobalVar folds a global's optional initializer to a constant integer
// and declares the global, as a scalar or a zero-initialized array.
func (c *Compiler) emitGlobalVar(gen *lir.Generator, node *ast.Node) *diagnostics.Diagnostic {
	switch t := node.Type.(type) {

	case *types.Array:
		gen.DeclareGlobalArray(node.Entry.Name, t)
		return nil

	case *types.Number:
		if node.Left != nil {
			folded, err := optimizer.Optimize(node.Left, optimizer.LevelFixpoint, diagnostics.Location{})
			if err != nil {
				return err
			}
			if folded.Kind() != token.IntegerLiteral {
				return diagnostics.IdentifierError(diagnostics.Location{}, "global %q's initializer must be a constant expression", node.Entry.Name)
			}
			t.Value = folded.Token.Value.Int
		}
		gen.DeclareGlobal(node.Entry.Name, t)
		return nil

	default:
		return diagnostics.InternalTypeError(diagnostics.Location{}, "scalar or array global", node.Type.LLVMRepr(), "emitGlobalVar")
	}
}
