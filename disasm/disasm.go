// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/gestalt-emu/gestalt/cpu"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"#$%s",    // IMM
	"",        // IMP
	"$%s",     // REL
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"($%s)",   // IND
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"A",       // ACC
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice, most
// significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code on 'bus' at address 'addr' using the decode
// table 't'. Return a 'line' string representing the disassembled
// instruction and a 'next' address that starts the following line of
// machine code. A byte with no decode table entry is rendered as a .BYTE
// directive one byte long.
func Disassemble(bus cpu.Bus, t *cpu.Table, addr uint16) (line string, next uint16, err error) {
	opcode, err := bus.Read(addr)
	if err != nil {
		return "", addr, err
	}

	op, ok := t.Lookup(opcode)
	if !ok {
		return fmt.Sprintf(".BYTE $%02X", opcode), addr + 1, nil
	}

	operand, err := Bytes(bus, addr+1, int(op.Length())-1)
	if err != nil {
		return "", addr, err
	}

	next = addr + uint16(op.Length())
	if op.Mode == cpu.REL {
		// Convert relative offset to absolute address.
		target := next + uint16(int8(operand[0]))
		operand = []byte{byte(target), byte(target >> 8)}
	}

	format := modeFormat[op.Mode]
	switch op.Mode {
	case cpu.IMP:
		line = op.Instruction.String()
	case cpu.ACC:
		line = op.Instruction.String() + " " + format
	default:
		line = op.Instruction.String() + " " + fmt.Sprintf(format, hexString(operand))
	}
	return line, next, nil
}

// Bytes reads 'n' consecutive bytes from 'bus' starting at 'addr'.
func Bytes(bus cpu.Bus, addr uint16, n int) ([]byte, error) {
	b := make([]byte, n)
	for i := range b {
		v, err := bus.Read(addr + uint16(i))
		if err != nil {
			return nil, err
		}
		b[i] = v
	}
	return b, nil
}
