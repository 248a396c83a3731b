// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gestalt-emu/gestalt/cpu"
)

func newTestHost(t *testing.T, arch cpu.Architecture) (*Host, *bytes.Buffer) {
	t.Helper()
	h, err := New(arch)
	if err != nil {
		t.Fatal(err)
	}
	return h, new(bytes.Buffer)
}

func runCommands(t *testing.T, h *Host, out *bytes.Buffer, lines ...string) {
	t.Helper()
	r := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := h.RunCommands(r, out, false); err != nil {
		t.Fatalf("RunCommands: %v", err)
	}
}

func expectOutput(t *testing.T, out *bytes.Buffer, substr string) {
	t.Helper()
	if !strings.Contains(out.String(), substr) {
		t.Errorf("output missing %q:\n%s", substr, out.String())
	}
}

func expectPC(t *testing.T, h *Host, pc uint16) {
	t.Helper()
	if h.cpu.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, h.cpu.Reg.PC)
	}
}

func expectByte(t *testing.T, h *Host, addr uint16, v byte) {
	t.Helper()
	got, err := h.mem.Read(addr)
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func TestRunToBreakpoint(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $1000 $A9 $05 $18 $69 $03 $85 $20 $EA",
		"breakpoint add $1007",
		"run $1000",
	)

	expectPC(t, h, 0x1007)
	expectByte(t, h, 0x20, 0x08)
	expectOutput(t, out, "Breakpoint hit at $1007.")

	if b := h.debugger.GetBreakpoint(0x1007); b == nil || b.Hits != 1 {
		t.Errorf("breakpoint hits incorrect: %+v", b)
	}
}

func TestBreakpointCommands(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"breakpoint add $2000",
		"breakpoint disable $2000",
		"breakpoint remove $3000",
	)

	b := h.debugger.GetBreakpoint(0x2000)
	if b == nil || !b.Disabled {
		t.Fatalf("breakpoint not disabled: %+v", b)
	}
	expectOutput(t, out, "No breakpoint was set on $3000.")

	runCommands(t, h, out, "breakpoint enable $2000")
	if b.Disabled {
		t.Error("breakpoint not enabled")
	}

	runCommands(t, h, out, "breakpoint remove $2000")
	if h.debugger.GetBreakpoint(0x2000) != nil {
		t.Error("breakpoint not removed")
	}
}

func TestDataBreakpoint(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $1000 $85 $20 $85 $21 $EA",
		"databreakpoint add $21 $07",
		"databreakpoint add $30",
		"register a 7",
		"run $1000",
	)

	expectPC(t, h, 0x1004)
	expectByte(t, h, 0x21, 0x07)
	expectOutput(t, out, "Data breakpoint hit on address $0021.")

	b := h.debugger.GetDataBreakpoint(0x21)
	if b == nil || !b.Conditional || b.Value != 0x07 || b.Hits != 1 {
		t.Errorf("data breakpoint incorrect: %+v", b)
	}
	if len(h.debugger.GetDataBreakpoints()) != 2 {
		t.Error("expected two data breakpoints")
	}
}

func TestStepCommands(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $1000 $20 $10 $10 $EA",
		"memory set $1010 $E8 $60",
		"register sp $ff",
		"register pc $1000",
		"step over",
	)
	expectPC(t, h, 0x1003)
	if h.cpu.Reg.X != 1 {
		t.Errorf("X incorrect. exp: 1, got: %d", h.cpu.Reg.X)
	}

	runCommands(t, h, out,
		"register pc $1000",
		"step in",
	)
	expectPC(t, h, 0x1010)

	runCommands(t, h, out, "step out")
	expectPC(t, h, 0x1003)
	if h.cpu.Reg.X != 2 {
		t.Errorf("X incorrect. exp: 2, got: %d", h.cpu.Reg.X)
	}
	if h.cpu.Reg.SP != 0xff {
		t.Errorf("SP incorrect. exp: $FF, got: $%02X", h.cpu.Reg.SP)
	}
}

func TestStepCount(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $1000 $E8 $E8 $E8 $E8",
		"register pc $1000",
		"step in 3",
	)
	expectPC(t, h, 0x1003)
	if h.cpu.Reg.X != 3 {
		t.Errorf("X incorrect. exp: 3, got: %d", h.cpu.Reg.X)
	}
	if h.cpu.Cycles != 6 {
		t.Errorf("cycles incorrect. exp: 6, got: %d", h.cpu.Cycles)
	}
}

func TestRunFaults(t *testing.T) {
	t.Run("bus", func(t *testing.T) {
		h, out := newTestHost(t, cpu.RP2A03)
		runCommands(t, h, out, "run $2000")
		expectPC(t, h, 0x2000)
		expectOutput(t, out, "bus fault")
	})

	t.Run("opcode", func(t *testing.T) {
		h, out := newTestHost(t, cpu.NMOS)
		runCommands(t, h, out,
			"memory set $1000 $EA $02",
			"run $1000",
		)
		expectPC(t, h, 0x1001)
		expectOutput(t, out, "unmapped opcode $02 at $1001")
	})
}

func TestInterruptCommands(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $FFFA $00 $40 $00 $80 $00 $50",
		"interrupt reset",
	)
	expectPC(t, h, 0x8000)

	runCommands(t, h, out,
		"interrupt nmi",
		"step in",
	)
	expectPC(t, h, 0x4000)

	runCommands(t, h, out,
		"register pc $8000",
		"register interrupt 0",
		"interrupt irq",
		"step in",
	)
	expectPC(t, h, 0x5000)

	runCommands(t, h, out, "interrupt clear")
	if _, _, irq := h.cpu.Pending(); irq {
		t.Error("IRQ line still asserted")
	}
}

func TestRegisterCommand(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"register x $12",
		"register carry on",
		"register n 1",
		"register a 300",
		"register q 1",
	)

	if h.cpu.Reg.X != 0x12 {
		t.Errorf("X incorrect. exp: $12, got: $%02X", h.cpu.Reg.X)
	}
	if !h.cpu.Reg.PS.IsSet(cpu.Carry | cpu.Negative) {
		t.Errorf("flags incorrect: %v", h.cpu.Reg.PS)
	}
	if h.cpu.Reg.A != 0 {
		t.Errorf("A should be unchanged, got: $%02X", h.cpu.Reg.A)
	}
	expectOutput(t, out, "does not fit in register 'a'")
	expectOutput(t, out, "register 'q' not found")

	runCommands(t, h, out, "register c off")
	if h.cpu.Reg.PS.IsSet(cpu.Carry) {
		t.Error("carry not cleared")
	}
}

func TestExpressionArguments(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"register pc $1000",
		"register sp $f0",
		"breakpoint add pc+3",
		"memory set sp $aa $bb",
		"memory set .+1 'A'",
		"register x pc>>8",
		"register y -1",
		"evaluate $10*2+1",
		"evaluate (x+1)*2",
		"evaluate 1/0",
		"evaluate bogus+1",
		"breakpoint add $ffff+1",
	)

	if h.debugger.GetBreakpoint(0x1003) == nil {
		t.Error("breakpoint at pc+3 not added")
	}
	expectByte(t, h, 0x01f0, 0xaa)
	expectByte(t, h, 0x01f1, 0xbb)
	expectByte(t, h, 0x1001, 'A')
	if h.cpu.Reg.X != 0x10 {
		t.Errorf("X incorrect. exp: $10, got: $%02X", h.cpu.Reg.X)
	}
	if h.cpu.Reg.Y != 0 {
		t.Errorf("Y should be unchanged, got: $%02X", h.cpu.Reg.Y)
	}
	expectOutput(t, out, "does not fit in register 'y'")
	expectOutput(t, out, "$0021 (33)")
	expectOutput(t, out, "$0022 (34)")
	expectOutput(t, out, "division by zero")
	expectOutput(t, out, "identifier 'bogus' not found")
	expectOutput(t, out, "address '$ffff+1' out of range")
}

func TestExpressionsInHexMode(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"set hexmode on",
		"register pc 2000",
		"memory set pc+10 a 0b",
		"evaluate ff+1",
		"set disasmlines 10",
	)

	expectByte(t, h, 0x2010, 0x0a)
	expectByte(t, h, 0x2011, 0x0b)
	expectOutput(t, out, "$0100 (256)")
	if h.settings.DisasmLines != 0x10 {
		t.Errorf("DisasmLines incorrect. exp: 16, got: %d", h.settings.DisasmLines)
	}
}

func TestSetCommand(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"set hexmode on",
		"memory set 1000 ff 7e",
		"set disasmlines 3",
		"set bogus 1",
	)

	if !h.settings.HexMode {
		t.Error("hex mode not set")
	}
	expectByte(t, h, 0x1000, 0xff)
	expectByte(t, h, 0x1001, 0x7e)
	if h.settings.DisasmLines != 3 {
		t.Errorf("DisasmLines incorrect. exp: 3, got: %d", h.settings.DisasmLines)
	}
	expectOutput(t, out, "setting 'bogus' not found")
}

func TestDisassembleCommand(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"memory set $1000 $A9 $5E $8D $00 $02 $00",
		"disassemble $1000 3",
	)
	expectOutput(t, out, "1000-   A9 5E       LDA #$5E")
	expectOutput(t, out, "1002-   8D 00 02    STA $0200")
	expectOutput(t, out, "1005-   00          BRK")

	if h.settings.NextDisasmAddr != 0x1006 {
		t.Errorf("next address incorrect: $%04X", h.settings.NextDisasmAddr)
	}
}

func TestMemoryCommands(t *testing.T) {
	h, out := newTestHost(t, cpu.RP2A03)
	runCommands(t, h, out,
		"memory set $0010 $41 $42",
		"memory dump $0810 2",
		"memory map",
		"memory set $3000 $01",
	)

	expectOutput(t, out, "0810- 41 42")
	expectOutput(t, out, "prg rom")
	expectOutput(t, out, "bus fault")
}

func TestLoadCommand(t *testing.T) {
	dir := t.TempDir()

	prog := filepath.Join(dir, "prog.bin")
	if err := os.WriteFile(prog, []byte{0xa9, 0x01, 0xea}, 0o600); err != nil {
		t.Fatal(err)
	}
	vectors := filepath.Join(dir, "vectors.bin")
	if err := os.WriteFile(vectors, []byte{0x00, 0x40, 0x00, 0x90, 0x00, 0x50}, 0o600); err != nil {
		t.Fatal(err)
	}

	h, out := newTestHost(t, cpu.RP2A03)
	runCommands(t, h, out, "load "+prog+" $0300")
	expectPC(t, h, 0x0300)
	expectByte(t, h, 0x0301, 0x01)

	// ROM is write protected on the bus but not for loads.
	runCommands(t, h, out, "load "+vectors+" $FFFA")
	expectPC(t, h, 0x9000)
	expectByte(t, h, 0xfffd, 0x90)

	runCommands(t, h, out, "load "+filepath.Join(dir, "missing.bin")+" $0300")
	expectOutput(t, out, "Failed to load 'missing.bin'")
}

func TestExecuteCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cmds.txt")
	script := "# comment\nmemory set $0200 $E8\nregister pc $0200\nstep in\n"
	if err := os.WriteFile(file, []byte(script), 0o600); err != nil {
		t.Fatal(err)
	}

	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out, "execute "+file)
	expectPC(t, h, 0x0201)
	if h.cpu.Reg.X != 1 {
		t.Errorf("X incorrect. exp: 1, got: %d", h.cpu.Reg.X)
	}
}

func TestQuit(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	err := h.RunCommands(strings.NewReader("quit\nregister a 5\n"), out, false)
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
	if h.cpu.Reg.A != 0 {
		t.Error("commands after quit were executed")
	}
}

func TestHelp(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out,
		"help",
		"help step",
		"help load",
	)
	expectOutput(t, out, "databreakpoint")
	expectOutput(t, out, "Step out of the current subroutine")
	expectOutput(t, out, "Syntax: load <filename> <address>")
}

func TestUnknownCommand(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out, "frobnicate")
	expectOutput(t, out, "Command not found.")
}

func TestGraph(t *testing.T) {
	h, _ := newTestHost(t, cpu.NMOS)
	h.debugger.AddBreakpoint(0x1234)

	var buf bytes.Buffer
	h.writeGraph(&buf)
	if !strings.Contains(buf.String(), "digraph") {
		t.Errorf("unexpected graph output:\n%s", buf.String())
	}
}
