// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive monitor for the emulated CPU.
//
// Within the monitor it is possible to load machine code into memory, step
// through and run it, raise interrupts, set address and data breakpoints,
// dump and disassemble memory, manipulate CPU registers and memory, and
// drive the whole system from Lua scripts.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/beevik/cmd"
	"github.com/gestalt-emu/gestalt/cpu"
	"github.com/gestalt-emu/gestalt/disasm"
	"github.com/gestalt-emu/gestalt/memory"
)

// ErrQuit is returned by RunCommands when the quit command is executed.
var ErrQuit = errors.New("quit")

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateFaulted
	stateInterrupted
)

// A Host represents an emulated system: a CPU, the memory it is attached
// to, and a debugger.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *memory.System
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *cmd.Selection
	state       state
	interrupted atomic.Bool
	scriptQuit  bool
	settings    *settings
	exprParser  *exprParser
}

// New creates a monitor for a CPU of the requested architecture. An NMOS
// CPU gets 64K of RAM. An RP2A03 CPU gets the console memory map.
func New(arch cpu.Architecture) (*Host, error) {
	var mem *memory.System
	switch arch {
	case cpu.RP2A03:
		m, err := memory.NewConsole(nil)
		if err != nil {
			return nil, err
		}
		mem = m
	default:
		mem = memory.NewFlat()
	}

	c, err := cpu.NewCPU(arch, mem)
	if err != nil {
		return nil, err
	}

	h := &Host{
		output:     bufio.NewWriter(os.Stdout),
		mem:        mem,
		cpu:        c,
		state:      stateProcessingCommands,
		settings:   newSettings(),
		exprParser: newExprParser(),
	}

	h.debugger = cpu.NewDebugger((*breakHandler)(h))
	h.cpu.AttachDebugger(h.debugger)
	return h, nil
}

// CPU returns the emulated CPU.
func (h *Host) CPU() *cpu.CPU {
	return h.cpu
}

// Memory returns the address space the CPU is attached to.
func (h *Host) Memory() *memory.System {
	return h.mem
}

// RunCommands accepts monitor commands from a reader and outputs the
// results to a writer. If the commands are interactive, a prompt is
// displayed while the host waits for the next command to be entered.
// RunCommands returns ErrQuit if a quit command was executed, and nil when
// the reader is exhausted.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) error {
	h.output = bufio.NewWriter(w)
	defer h.flush()

	if interactive {
		h.println()
		h.displayPC()
	}
	return h.process(r, interactive)
}

func (h *Host) process(r io.Reader, interactive bool) error {
	prevInput, prevInteractive := h.input, h.interactive
	h.input = bufio.NewScanner(r)
	h.interactive = interactive
	defer func() {
		h.input, h.interactive = prevInput, prevInteractive
	}()

	for {
		h.prompt()

		line, err := h.getLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := h.execLine(line); err != nil {
			return err
		}
	}
}

// Execute a single command line. An empty line repeats the previous
// command.
func (h *Host) execLine(line string) error {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return nil
	}

	var c cmd.Selection
	if line != "" {
		var err error
		c, err = cmds.Lookup(line)
		switch {
		case errors.Is(err, cmd.ErrNotFound):
			h.println("Command not found.")
			return nil
		case errors.Is(err, cmd.ErrAmbiguous):
			h.println("Command is ambiguous.")
			return nil
		case err != nil:
			h.printf("ERROR: %v.\n", err)
			return nil
		}
	} else if h.lastCmd != nil {
		c = *h.lastCmd
	}

	if c.Command == nil {
		return nil
	}
	h.lastCmd = &c

	return c.Command.Data.(*command).handler(h, c)
}

// Break interrupts a running CPU. It is safe to call from another
// goroutine.
func (h *Host) Break() {
	h.interrupted.Store(true)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayPC() {
	d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
	h.println(d)
}

func (h *Host) displayHelpText(c *command) {
	if c.usage != "" {
		h.printf("Syntax: %s\n", c.usage)
	} else {
		h.println("<no help text>")
	}
}

// Evaluate an expression argument against the current registers.
func (h *Host) evalExpr(s string) (int64, error) {
	h.exprParser.hexMode = h.settings.HexMode
	return h.exprParser.Parse(s, h)
}

// Parse an address expression. "." is the program counter.
func (h *Host) parseAddr(s string) (uint16, error) {
	v, err := h.evalExpr(s)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xffff {
		return 0, fmt.Errorf("address '%s' out of range", s)
	}
	return uint16(v), nil
}

// Parse a byte expression. Negative values down to -128 are stored in
// two's complement.
func (h *Host) parseByte(s string) (byte, error) {
	v, err := h.evalExpr(s)
	if err != nil {
		return 0, err
	}
	if v < -0x80 || v > 0xff {
		return 0, fmt.Errorf("value '%s' does not fit in a byte", s)
	}
	return byte(v), nil
}

// Identifiers in expressions name registers and flags. The stack pointer
// resolves to its address in page one.
func (h *Host) resolveIdentifier(s string) (int64, error) {
	s = strings.ToLower(s)
	if s == "." {
		return int64(h.cpu.Reg.PC), nil
	}

	r, err := lookupRegister(s)
	if err != nil {
		return 0, fmt.Errorf("identifier '%s' not found", s)
	}
	if r.name == "sp" {
		return 0x0100 | int64(h.cpu.Reg.SP), nil
	}
	return int64(r.get(&h.cpu.Reg)), nil
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	line, next, err := disasm.Disassemble(h.mem, h.cpu.Table(), addr)
	if err != nil {
		line, next = "???", addr+1
	}

	b, err := disasm.Bytes(h.mem, addr, int(next-addr))
	if err != nil {
		b = nil
	}

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b), line)

	if (flags & displayRegisters) != 0 {
		str += " " + h.cpu.Reg.String()
	}

	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%-12d", h.cpu.Cycles)
	}

	return strings.TrimRight(str, " "), next
}

func (h *Host) dumpMemory(addr0, bytes uint16) {
	if bytes == 0 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))
	put := func(a uint16, c1, c2 int) {
		m, err := h.mem.Read(a)
		if err != nil {
			buf[c1], buf[c1+1], buf[c2] = '-', '-', ' '
			return
		}
		byteToBuf(m, buf[c1:c1+2])
		buf[c2] = toPrintableChar(m)
	}

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= uint32(addr1); a, c1, c2 = a+1, c1+3, c2+1 {
			put(uint16(a), c1, c2)
		}
		h.println(strings.TrimRight(string(buf), " "))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	for r := start; r < stop; r += 8 {
		addrToBuf(uint16(r), buf[0:4])
		for i, c1, c2 := uint32(0), 6, 32; i < 8; i, c1, c2 = i+1, c1+3, c2+1 {
			a := r + i
			if a >= uint32(addr0) && a <= uint32(addr1) {
				put(uint16(a), c1, c2)
			} else {
				buf[c1], buf[c1+1], buf[c2] = ' ', ' ', ' '
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

// Look up the instruction at the address.
func (h *Host) instructionAt(addr uint16) (cpu.Opcode, bool) {
	v, err := h.mem.Read(addr)
	if err != nil {
		return cpu.Opcode{}, false
	}
	return h.cpu.Table().Lookup(v)
}

// Execute one CPU step, reporting faults.
func (h *Host) step() {
	if _, err := h.cpu.Step(); err != nil {
		h.printf("ERROR: %v\n", err)
		h.state = stateFaulted
	}
}

// Run the CPU until a breakpoint, a fault, a Ctrl-C, or until 'stop'
// returns true. 'stop' is called after each step with the opcode that was
// at the program counter before the step; 'ok' is false if none decoded.
func (h *Host) run(stop func(op cpu.Opcode, ok bool) bool) {
	h.interrupted.Store(false)
	h.state = stateRunning
	for h.state == stateRunning {
		if h.interrupted.Load() {
			h.state = stateInterrupted
			break
		}

		op, ok := h.instructionAt(h.cpu.Reg.PC)
		h.step()
		if h.state != stateRunning {
			break
		}
		if h.settings.Trace {
			h.displayPC()
		}
		if stop != nil && stop(op, ok) {
			break
		}
	}

	if h.state == stateInterrupted {
		h.println("Interrupted.")
		h.displayPC()
	}
}

// Step over the instruction at the program counter, running any
// subroutine it calls to completion.
func (h *Host) stepOver() {
	op, ok := h.instructionAt(h.cpu.Reg.PC)
	if !ok || op.Instruction != cpu.JSR {
		h.step()
		return
	}

	next := h.cpu.Reg.PC + uint16(op.Length())
	h.run(func(cpu.Opcode, bool) bool {
		return h.cpu.Reg.PC == next
	})
}

// Run until the current subroutine or interrupt handler returns.
func (h *Host) stepOut() {
	depth := 0
	h.run(func(op cpu.Opcode, ok bool) bool {
		if !ok {
			return false
		}
		switch op.Instruction {
		case cpu.JSR:
			depth++
		case cpu.RTS, cpu.RTI:
			if depth == 0 {
				return true
			}
			depth--
		}
		return false
	})
}

func (h *Host) onBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {
	if h.state != stateRunning {
		return
	}
	h.state = stateBreakpoint
	h.printf("Breakpoint hit at $%04X.\n", b.Address)
	h.displayPC()
}

func (h *Host) onDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	if h.state != stateRunning {
		return
	}
	h.state = stateBreakpoint
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)

	d, _ := h.disassemble(c.LastPC, 0)
	h.println(d)
}

// breakHandler adapts a Host to the cpu.BreakpointHandler interface.
type breakHandler Host

func (b *breakHandler) OnBreakpoint(c *cpu.CPU, bp *cpu.Breakpoint) {
	(*Host)(b).onBreakpoint(c, bp)
}

func (b *breakHandler) OnDataBreakpoint(c *cpu.CPU, bp *cpu.DataBreakpoint) {
	(*Host)(b).onDataBreakpoint(c, bp)
}
