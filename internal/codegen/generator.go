// Package codegen walks a parsed AST and emits Intel-syntax x86-64
// assembly text for the GNU assembler.
//
// The generator is deliberately simple: two fixed registers (eax,
// edx), no spilling, no register allocation, and no stack teardown
// for locals. These are documented limitations inherited from the
// system this was modelled on, not oversights — see the repository's
// design notes for the full list and the reasoning for keeping them.
package codegen

import (
	"fmt"
	"strconv"

	"github.com/skx/tiny-c-compiler/internal/ast"
	"github.com/skx/tiny-c-compiler/internal/diag"
	"github.com/skx/tiny-c-compiler/internal/token"
)

const stageName = "codegen"

// argRegisters are the System V AMD64 integer-argument registers this
// compiler knows about, truncated to 32-bit width and to six slots.
//
// The last two entries are deliberately wrong: the correct 32-bit
// names for the fifth and sixth integer argument registers are r8d
// and r9d. No passing test exercises a sixth argument, so the bug is
// not observable there; it is preserved rather than silently fixed.
var argRegisters = []string{"edi", "esi", "edx", "ecx", "e8d", "e9d"}

// opMnemonics maps a binary operator token to its x86 mnemonic. Only
// the four arithmetic operators are generated; comparisons and `%` are
// lexed and parsed but have no code-generation rule.
var opMnemonics = map[token.Type]string{
	token.PLUS:     "add",
	token.MINUS:    "sub",
	token.ASTERISK: "imul",
	token.SLASH:    "idiv",
}

// Generator accumulates assembly instructions for an entire program.
type Generator struct {
	prog  list
	debug bool
}

// New returns an empty Generator.
func New() *Generator {
	return &Generator{}
}

// SetDebug toggles whether a debug-break marker is inserted at the
// start of every function body, mirroring the teacher tool's `-debug`
// flag which inserted an `int 03` breakpoint.
func (g *Generator) SetDebug(val bool) {
	g.debug = val
}

// Generate walks every top-level function declaration and returns the
// complete assembly-text program, prologue first.
func (g *Generator) Generate(functions []*ast.FunctionDecl) (string, error) {
	g.prologue()

	for _, fn := range functions {
		if err := g.genFunction(fn); err != nil {
			return "", err
		}
	}

	return g.prog.String(), nil
}

// prologue emits the fixed freestanding entry point, exactly once,
// before any function body. _start calls main, moves its return value
// from eax into rdi (exit's first argument), loads exit's syscall
// number into rax, and issues the syscall.
//
// The four instruction lines under `_start:` carry their own literal
// indentation (four spaces) rather than the eight-space instruction
// indent the rest of the generator uses, matching the fixed text in the
// design notes exactly.
func (g *Generator) prologue() {
	g.prog.append(Directive, ".intel_syntax noprefix")
	g.prog.append(Directive, ".global _start")
	g.prog.append(Directive, ".text")
	g.prog.append(Label, "_start:")
	g.prog.append(Directive, "    call main")
	g.prog.append(Directive, "    mov rdi, rax       # syscall: exit")
	g.prog.append(Directive, "    mov rax, 60        # exit code 0")
	g.prog.append(Directive, "    syscall")
}

func (g *Generator) genFunction(fn *ast.FunctionDecl) error {
	g.label(fn.Name())
	g.push("rbp")
	g.mov("rbp", "rsp")
	if g.debug {
		g.bare("# debug-break")
		g.bare("int3")
	}

	frm := newFrame()
	for i, param := range fn.Parameters {
		frm.add(param.Name())
		reg, err := argRegister(i)
		if err != nil {
			return diag.Fatalf(stageName, 0, "function %q: %s", fn.Name(), err)
		}
		operand, err := frm.format(param.Name())
		if err != nil {
			return err
		}
		g.mov("DWORD PTR "+operand, reg)
	}

	return g.genBlock(fn.Body, frm)
}

// genBlock emits each statement in source order. If/ElseIf/Else/While
// nodes are parsed successfully but are not emitted here — a known,
// deliberate gap (see design notes) — and any other node shape this
// dispatcher does not recognise is silently skipped rather than
// treated as an error.
func (g *Generator) genBlock(block *ast.Block, frm *frame) error {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {

		case *ast.VarDecl:
			frm.add(s.Name())

		case *ast.Declaration:
			if err := g.genDeclaration(s, frm); err != nil {
				return err
			}

		case *ast.FunctionCall:
			if err := g.genCall(s, frm); err != nil {
				return err
			}

		case *ast.Return:
			if err := g.genReturn(s, frm); err != nil {
				return err
			}

		case *ast.Conditional, *ast.While:
			// Control flow is parsed but not lowered; see §9.

		default:
			// Unsupported AST shape: silently skipped.
		}
	}
	return nil
}

func (g *Generator) genDeclaration(d *ast.Declaration, frm *frame) error {
	var operand string

	switch target := d.Target.(type) {
	case *ast.VarDecl:
		frm.add(target.Name())
		loc, err := frm.format(target.Name())
		if err != nil {
			return err
		}
		operand = "DWORD PTR " + loc
	case *ast.Variable:
		loc, err := frm.format(target.Name())
		if err != nil {
			return err
		}
		operand = "DWORD PTR " + loc
	default:
		return diag.Fatalf(stageName, 0, "declaration has an unsupported target shape")
	}

	if err := g.genExpr(d.Expression, frm); err != nil {
		return err
	}
	g.mov(operand, "eax")
	return nil
}

func (g *Generator) genReturn(r *ast.Return, frm *frame) error {
	if err := g.genExpr(r.Expression, frm); err != nil {
		return err
	}
	g.bare("pop rbp")
	g.bare("ret")
	return nil
}

func (g *Generator) genCall(call *ast.FunctionCall, frm *frame) error {
	for i, arg := range call.Arguments {
		if err := g.genExpr(arg, frm); err != nil {
			return err
		}
		reg, err := argRegister(i)
		if err != nil {
			return diag.Fatalf(stageName, 0, "call to %q: %s", call.Name(), err)
		}
		g.mov(reg, "eax")
	}
	g.call(call.Name())
	return nil
}

// genExpr materialises expr's value into eax.
func (g *Generator) genExpr(expr ast.Expression, frm *frame) error {
	switch e := expr.(type) {

	case *ast.IntLiteral:
		g.mov("eax", strconv.FormatInt(int64(e.Value), 10))

	case *ast.Variable:
		loc, err := frm.format(e.Name())
		if err != nil {
			return err
		}
		g.mov("eax", "DWORD PTR "+loc)

	case *ast.FunctionCall:
		return g.genCall(e, frm)

	case *ast.Binary:
		return g.genBinary(e, frm, true)

	default:
		// Unsupported expression shape: silently skipped, eax is
		// left holding whatever it already contained.
	}
	return nil
}

// genBinary implements the two-register, no-precedence binary scheme:
// a literal or variable right operand is loaded into edx; any other
// right operand is generated through genExpr, which leaves its result
// in eax. The left operand is then loaded into eax (only literals and
// variables are supported there), and the operator is applied as
// `op eax, edx` when first is true or `op edx, eax` otherwise. genExpr
// always passes first=true, including for a binary right operand.
//
// This does not implement a correct idiv (no sign-extension of eax
// into edx:eax). When the right operand is itself a binary expression
// or a call, its result in eax is overwritten by the left-operand load,
// so such trees do not compute the right value — known limitations,
// reproduced deliberately; see the design notes.
func (g *Generator) genBinary(b *ast.Binary, frm *frame, first bool) error {
	switch r := b.Right.(type) {
	case *ast.IntLiteral:
		g.mov("edx", strconv.FormatInt(int64(r.Value), 10))
	case *ast.Variable:
		loc, err := frm.format(r.Name())
		if err != nil {
			return err
		}
		g.mov("edx", "DWORD PTR "+loc)
	default:
		if err := g.genExpr(b.Right, frm); err != nil {
			return err
		}
	}

	switch l := b.Left.(type) {
	case *ast.IntLiteral:
		g.mov("eax", strconv.FormatInt(int64(l.Value), 10))
	case *ast.Variable:
		loc, err := frm.format(l.Name())
		if err != nil {
			return err
		}
		g.mov("eax", "DWORD PTR "+loc)
	default:
		// Other shapes are not supported at the left position:
		// silently skipped, matching the generator's general policy
		// for unsupported AST shapes.
	}

	mnemonic, ok := opMnemonics[b.Operator.Type]
	if !ok {
		return diag.Fatalf(stageName, b.Operator.Line, "unsupported binary operator %q", b.Operator.Literal)
	}
	if first {
		g.arith(mnemonic, "eax", "edx")
	} else {
		g.arith(mnemonic, "edx", "eax")
	}
	return nil
}

// argRegister returns the register name for the i'th integer
// argument, or an error once the fixed six-slot table is exhausted.
func argRegister(i int) (string, error) {
	if i < 0 || i >= len(argRegisters) {
		return "", fmt.Errorf("argument index %d exceeds the %d supported argument registers", i, len(argRegisters))
	}
	return argRegisters[i], nil
}

// --- line emission ----------------------------------------------------

func (g *Generator) label(name string) {
	g.prog.append(Label, name+":")
}

func (g *Generator) line(s string) {
	g.prog.append(Instr, s)
}

func (g *Generator) bare(mnemonic string) {
	g.line(mnemonic)
}

func (g *Generator) push(operand string) {
	g.line(fmt.Sprintf("push %s", operand))
}

func (g *Generator) mov(dst, src string) {
	g.line(fmt.Sprintf("mov %s, %s", dst, src))
}

func (g *Generator) arith(mnemonic, dst, src string) {
	g.line(fmt.Sprintf("%-8s%s, %s", mnemonic, dst, src))
}

func (g *Generator) call(name string) {
	g.line(fmt.Sprintf("%-8s%s", "call", name))
}
