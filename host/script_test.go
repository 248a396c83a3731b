// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gestalt-emu/gestalt/cpu"
)

func TestScriptBindings(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	h.output = bufio.NewWriter(out)

	src := `
		poke(0x1000, 0xa9, 0x42, 0xaa)
		setreg("pc", 0x1000)
		local c = step(2)
		print(reg("a"), reg("x"), c, cycles())
		setreg("carry", 1)
		print(reg("c"), peek(0x1001))
	`
	if err := h.runScriptString(src); err != nil {
		t.Fatal(err)
	}

	expectOutput(t, out, "66\t66\t4\t4")
	expectOutput(t, out, "1\t66")
	expectPC(t, h, 0x1003)
}

func TestScriptInterrupts(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	h.output = bufio.NewWriter(out)

	src := `
		poke(0xfffa, 0x00, 0x40, 0x00, 0x80, 0x00, 0x50)
		reset()
		assert(reg("pc") == 0x8000)
		nmi()
		step()
		assert(reg("pc") == 0x4000)
		setreg("interrupt", 0)
		irq()
		step()
		assert(reg("pc") == 0x5000)
		clearirq()
	`
	if err := h.runScriptString(src); err != nil {
		t.Fatal(err)
	}
	if _, nmi, irq := h.cpu.Pending(); nmi || irq {
		t.Errorf("interrupts still pending: nmi=%v irq=%v", nmi, irq)
	}
}

func TestScriptErrors(t *testing.T) {
	h, out := newTestHost(t, cpu.RP2A03)
	h.output = bufio.NewWriter(out)

	tests := []struct {
		src    string
		substr string
	}{
		{`peek(0x2000)`, "bus fault"},
		{`setreg("a", 0x100)`, "does not fit"},
		{`reg("bogus")`, "not found"},
		{`poke(0x10, 0x02) setreg("pc", 0x10) step()`, "unmapped opcode $02 at $0010"},
		{`peek(0x10000)`, "address 65536 out of range"},
		{`peek(-1)`, "address -1 out of range"},
		{`poke(0x10000, 0xea)`, "out of range"},
		{`poke(0x10, 0x100)`, "does not fit in a byte"},
	}
	for _, tt := range tests {
		err := h.runScriptString(tt.src)
		if err == nil || !strings.Contains(err.Error(), tt.substr) {
			t.Errorf("%s: expected error containing %q, got %v", tt.src, tt.substr, err)
		}
	}
}

func TestScriptPokeOutOfRangeLeavesMemory(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	h.output = bufio.NewWriter(out)

	if err := h.runScriptString(`poke(0x10000, 0xea)`); err == nil {
		t.Fatal("expected error")
	}
	expectByte(t, h, 0x0000, 0x00)
}

func TestScriptExec(t *testing.T) {
	h, out := newTestHost(t, cpu.NMOS)
	h.output = bufio.NewWriter(out)

	if err := h.runScriptString(`exec("register x $21")`); err != nil {
		t.Fatal(err)
	}
	if h.cpu.Reg.X != 0x21 {
		t.Errorf("X incorrect. exp: $21, got: $%02X", h.cpu.Reg.X)
	}

	err := h.runScriptString(`exec("quit") setreg("x", 0)`)
	if !errors.Is(err, ErrQuit) {
		t.Errorf("expected ErrQuit, got %v", err)
	}
	if h.cpu.Reg.X != 0x21 {
		t.Error("script continued after quit")
	}
}

func TestScriptCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.lua")
	if err := os.WriteFile(file, []byte(`setreg("y", 9) print("done")`), 0o600); err != nil {
		t.Fatal(err)
	}

	h, out := newTestHost(t, cpu.NMOS)
	runCommands(t, h, out, "script "+file)
	if h.cpu.Reg.Y != 9 {
		t.Errorf("Y incorrect. exp: 9, got: %d", h.cpu.Reg.Y)
	}
	expectOutput(t, out, "done")
}
