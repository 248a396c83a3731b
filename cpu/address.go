// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// operandKind says where an instruction's operand lives.
type operandKind byte

const (
	operandNone        operandKind = iota // implied
	operandAccumulator                    // the A register
	operandMemory                         // a bus address
)

// An operand is the resolved location an instruction operates on. For
// relative branches, addr holds the branch target.
type operand struct {
	kind        operandKind
	addr        uint16
	pageCrossed bool
}

// Fetch the byte at the program counter and advance past it.
func (cpu *CPU) fetch() (byte, error) {
	v, err := cpu.read(cpu.Reg.PC)
	if err != nil {
		return 0, err
	}
	cpu.Reg.PC++
	return v, nil
}

// Fetch a 16-bit little-endian address at the program counter and advance
// past it.
func (cpu *CPU) fetchAddress() (uint16, error) {
	addr, err := cpu.readAddress(cpu.Reg.PC)
	if err != nil {
		return 0, err
	}
	cpu.Reg.PC += 2
	return addr, nil
}

// Read a 16-bit pointer stored in the zero page. The high byte of a
// pointer at $FF comes from $00.
func (cpu *CPU) readZeroPagePointer(zp byte) (uint16, error) {
	lo, err := cpu.read(uint16(zp))
	if err != nil {
		return 0, err
	}
	hi, err := cpu.read(uint16(zp + 1))
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// resolve consumes the operand bytes of an instruction with addressing mode
// 'mode' and computes the location it refers to. On entry the program
// counter addresses the first operand byte.
func (cpu *CPU) resolve(mode Mode) (operand, error) {
	switch mode {
	case IMP:
		return operand{kind: operandNone}, nil

	case ACC:
		return operand{kind: operandAccumulator}, nil

	case IMM:
		addr := cpu.Reg.PC
		cpu.Reg.PC++
		return operand{kind: operandMemory, addr: addr}, nil

	case REL:
		off, err := cpu.fetch()
		if err != nil {
			return operand{}, err
		}
		base := cpu.Reg.PC
		target := base + uint16(int8(off))
		return operand{
			kind:        operandMemory,
			addr:        target,
			pageCrossed: target&0xff00 != base&0xff00,
		}, nil

	case ZPG:
		zp, err := cpu.fetch()
		if err != nil {
			return operand{}, err
		}
		return operand{kind: operandMemory, addr: uint16(zp)}, nil

	case ZPX, ZPY:
		zp, err := cpu.fetch()
		if err != nil {
			return operand{}, err
		}
		index := cpu.Reg.X
		if mode == ZPY {
			index = cpu.Reg.Y
		}
		return operand{kind: operandMemory, addr: offsetZeroPage(zp, index)}, nil

	case ABS:
		addr, err := cpu.fetchAddress()
		if err != nil {
			return operand{}, err
		}
		return operand{kind: operandMemory, addr: addr}, nil

	case ABX, ABY:
		base, err := cpu.fetchAddress()
		if err != nil {
			return operand{}, err
		}
		index := cpu.Reg.X
		if mode == ABY {
			index = cpu.Reg.Y
		}
		addr, crossed := offsetAddress(base, index)
		return operand{kind: operandMemory, addr: addr, pageCrossed: crossed}, nil

	case IND:
		ptr, err := cpu.fetchAddress()
		if err != nil {
			return operand{}, err
		}
		// The high byte of the target is read without carrying into the
		// pointer's page.
		lo, err := cpu.read(ptr)
		if err != nil {
			return operand{}, err
		}
		hi, err := cpu.read(samePageNext(ptr))
		if err != nil {
			return operand{}, err
		}
		return operand{kind: operandMemory, addr: uint16(lo) | uint16(hi)<<8}, nil

	case IDX:
		zp, err := cpu.fetch()
		if err != nil {
			return operand{}, err
		}
		addr, err := cpu.readZeroPagePointer(zp + cpu.Reg.X)
		if err != nil {
			return operand{}, err
		}
		return operand{kind: operandMemory, addr: addr}, nil

	case IDY:
		zp, err := cpu.fetch()
		if err != nil {
			return operand{}, err
		}
		base, err := cpu.readZeroPagePointer(zp)
		if err != nil {
			return operand{}, err
		}
		addr, crossed := offsetAddress(base, cpu.Reg.Y)
		return operand{kind: operandMemory, addr: addr, pageCrossed: crossed}, nil

	default:
		panic("cpu: invalid addressing mode " + mode.String())
	}
}
