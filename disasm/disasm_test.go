// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"errors"
	"testing"

	"github.com/gestalt-emu/gestalt/cpu"
	"github.com/gestalt-emu/gestalt/memory"
)

func TestDisassembleModes(t *testing.T) {
	tests := []struct {
		code []byte
		line string
	}{
		{[]byte{0xa9, 0x5e}, "LDA #$5E"},
		{[]byte{0xea}, "NOP"},
		{[]byte{0xd0, 0x02}, "BNE $1004"},
		{[]byte{0xd0, 0xfc}, "BNE $0FFE"},
		{[]byte{0xa5, 0x10}, "LDA $10"},
		{[]byte{0xb5, 0x10}, "LDA $10,X"},
		{[]byte{0xb6, 0x10}, "LDX $10,Y"},
		{[]byte{0xad, 0x34, 0x12}, "LDA $1234"},
		{[]byte{0xbd, 0x34, 0x12}, "LDA $1234,X"},
		{[]byte{0xb9, 0x34, 0x12}, "LDA $1234,Y"},
		{[]byte{0x6c, 0xfc, 0xff}, "JMP ($FFFC)"},
		{[]byte{0xa1, 0x20}, "LDA ($20,X)"},
		{[]byte{0xb1, 0x20}, "LDA ($20),Y"},
		{[]byte{0x0a}, "ASL A"},
		{[]byte{0x02}, ".BYTE $02"},
	}

	table := cpu.MustDecodeTable()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			mem := cpu.NewFlatMemory()
			mem.StoreBytes(0x1000, tt.code)

			line, next, err := Disassemble(mem, table, 0x1000)
			if err != nil {
				t.Fatal(err)
			}
			if line != tt.line {
				t.Errorf("line incorrect. exp: %q, got: %q", tt.line, line)
			}
			length := uint16(len(tt.code))
			if next != 0x1000+length {
				t.Errorf("next incorrect. exp: $%04X, got: $%04X", 0x1000+length, next)
			}
		})
	}
}

func TestDisassembleEveryOpcode(t *testing.T) {
	table := cpu.MustDecodeTable()
	mem := cpu.NewFlatMemory()
	for opcode := 0; opcode < 256; opcode++ {
		op, ok := table.Lookup(byte(opcode))
		if !ok {
			continue
		}
		mem.StoreBytes(0x2000, []byte{byte(opcode), 0x00, 0x00})
		line, next, err := Disassemble(mem, table, 0x2000)
		if err != nil {
			t.Fatal(err)
		}
		if line[:3] != op.Instruction.String() {
			t.Errorf("$%02X disassembled as %q", opcode, line)
		}
		if next != 0x2000+uint16(op.Length()) {
			t.Errorf("$%02X next incorrect: $%04X", opcode, next)
		}
	}
}

func TestDisassembleBusFault(t *testing.T) {
	s, err := memory.NewConsole(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Disassemble(s, cpu.MustDecodeTable(), 0x2000); !errors.Is(err, cpu.ErrBusFault) {
		t.Errorf("expected bus fault, got %v", err)
	}
}
