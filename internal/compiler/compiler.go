// Package compiler ties the lexer, parser, and code generator into the
// three-stage pipeline: source text in, assembly text out.
package compiler

import (
	"github.com/skx/tiny-c-compiler/internal/ast"
	"github.com/skx/tiny-c-compiler/internal/codegen"
	"github.com/skx/tiny-c-compiler/internal/diag"
	"github.com/skx/tiny-c-compiler/internal/parser"
)

// Compiler holds our object-state for a single compilation unit.
type Compiler struct {
	// source holds the program text we're compiling.
	source string

	// debug controls whether a debug marker is inserted in the
	// generated assembly.
	debug bool

	// functions holds the parsed top-level function declarations,
	// populated by Parse.
	functions []*ast.FunctionDecl
}

// New creates a new compiler for the given source text.
func New(source string) *Compiler {
	return &Compiler{source: source}
}

// SetDebug toggles whether a debug-break marker (a comment and an int3
// instruction) is emitted at the start of every function body.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile runs the full pipeline and returns the generated assembly
// text, or the first error encountered along the way.
func (c *Compiler) Compile() (string, error) {
	if err := c.Parse(); err != nil {
		return "", err
	}
	return c.Generate()
}

// Parse lexes and parses the source text, populating the compiler's
// internal AST. It is exposed separately from Compile so tests can
// inspect the parsed tree without also running code generation.
func (c *Compiler) Parse() error {
	p := parser.New(c.source)

	functions, err := p.ParseFile()
	if err != nil {
		return diag.Wrap(err, "compiler", "parsing %d bytes of source", len(c.source))
	}
	if len(functions) == 0 {
		return diag.Fatalf("compiler", 0, "no function declarations found in source")
	}

	c.functions = functions
	return nil
}

// Functions returns the parsed top-level function declarations. Only
// valid after a successful call to Parse or Compile.
func (c *Compiler) Functions() []*ast.FunctionDecl {
	return c.functions
}

// Generate walks the already-parsed AST and returns the generated
// assembly text.
func (c *Compiler) Generate() (string, error) {
	gen := codegen.New()
	if c.debug {
		gen.SetDebug(true)
	}
	return gen.Generate(c.functions)
}
