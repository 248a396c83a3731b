// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// Status is the packed processor status register.
type Status byte

// Bits assigned to the processor status byte
const (
	Carry            Status = 1 << 0 // C
	Zero             Status = 1 << 1 // Z
	InterruptDisable Status = 1 << 2 // I
	Decimal          Status = 1 << 3 // D
	Break            Status = 1 << 4 // B, only meaningful in a pushed copy
	Reserved         Status = 1 << 5 // always reads as 1
	Overflow         Status = 1 << 6 // V
	Negative         Status = 1 << 7 // N
)

// IsSet returns true if every bit in 'bits' is set.
func (s Status) IsSet(bits Status) bool {
	return s&bits == bits
}

// Set turns the status bits on if 'on' is true. Otherwise it turns them off.
func (s *Status) Set(bits Status, on bool) {
	if on {
		*s |= bits
	} else {
		*s &^= bits
	}
}

// String renders the flags as NV-BDIZC, using upper case for set bits.
func (s Status) String() string {
	const names = "NV-BDIZC"
	b := []byte(names)
	for i := 0; i < 8; i++ {
		if i == 2 {
			continue
		}
		if s&(0x80>>i) == 0 {
			b[i] = b[i] + ('a' - 'A')
		}
	}
	return string(b)
}

// Registers contains the state of all 6502 registers.
type Registers struct {
	A  byte   // accumulator
	X  byte   // X indexing register
	Y  byte   // Y indexing register
	SP byte   // stack pointer ($100 + SP = stack memory location)
	PC uint16 // program counter
	PS Status // processor status
}

// Init zeroes all registers. The reserved status bit stays on.
func (r *Registers) Init() {
	*r = Registers{PS: Reserved}
}

// savePS returns the status byte as it is pushed onto the stack.
func (r *Registers) savePS(brk bool) byte {
	ps := r.PS | Reserved
	ps.Set(Break, brk)
	return byte(ps)
}

// restorePS loads the status register from a byte pulled off the stack.
// The break bit does not exist in the live register.
func (r *Registers) restorePS(v byte) {
	r.PS = (Status(v) | Reserved) &^ Break
}

func (r Registers) String() string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X PS=[%s] SP=%02X PC=%04X",
		r.A, r.X, r.Y, r.PS, r.SP, r.PC)
}

func boolToUint32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func boolToByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
