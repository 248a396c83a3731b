// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// execute carries out the instruction 'op' on the resolved operand 'o' and
// returns the number of cycles it took beyond the opcode's base count.
func (cpu *CPU) execute(op *Opcode, o operand) (int, error) {
	extra := 0
	if o.pageCrossed && op.Mode != REL {
		extra += int(op.BPCycles)
	}

	var err error
	switch op.Instruction {
	case ADC:
		err = cpu.adc(o)
	case AND:
		err = cpu.and(o)
	case ASL:
		err = cpu.asl(o)
	case BCC:
		extra += cpu.branch(!cpu.Reg.PS.IsSet(Carry), o)
	case BCS:
		extra += cpu.branch(cpu.Reg.PS.IsSet(Carry), o)
	case BEQ:
		extra += cpu.branch(cpu.Reg.PS.IsSet(Zero), o)
	case BIT:
		err = cpu.bit(o)
	case BMI:
		extra += cpu.branch(cpu.Reg.PS.IsSet(Negative), o)
	case BNE:
		extra += cpu.branch(!cpu.Reg.PS.IsSet(Zero), o)
	case BPL:
		extra += cpu.branch(!cpu.Reg.PS.IsSet(Negative), o)
	case BRK:
		err = cpu.brk()
	case BVC:
		extra += cpu.branch(!cpu.Reg.PS.IsSet(Overflow), o)
	case BVS:
		extra += cpu.branch(cpu.Reg.PS.IsSet(Overflow), o)
	case CLC:
		cpu.Reg.PS.Set(Carry, false)
	case CLD:
		cpu.Reg.PS.Set(Decimal, false)
	case CLI:
		cpu.Reg.PS.Set(InterruptDisable, false)
	case CLV:
		cpu.Reg.PS.Set(Overflow, false)
	case CMP:
		err = cpu.compare(cpu.Reg.A, o)
	case CPX:
		err = cpu.compare(cpu.Reg.X, o)
	case CPY:
		err = cpu.compare(cpu.Reg.Y, o)
	case DEC:
		err = cpu.modify(o, func(v byte) byte { return v - 1 })
	case DEX:
		cpu.Reg.X--
		cpu.updateNZ(cpu.Reg.X)
	case DEY:
		cpu.Reg.Y--
		cpu.updateNZ(cpu.Reg.Y)
	case EOR:
		err = cpu.eor(o)
	case INC:
		err = cpu.modify(o, func(v byte) byte { return v + 1 })
	case INX:
		cpu.Reg.X++
		cpu.updateNZ(cpu.Reg.X)
	case INY:
		cpu.Reg.Y++
		cpu.updateNZ(cpu.Reg.Y)
	case JMP:
		cpu.Reg.PC = o.addr
	case JSR:
		err = cpu.jsr(o)
	case LDA:
		cpu.Reg.A, err = cpu.load(o)
		cpu.updateNZ(cpu.Reg.A)
	case LDX:
		cpu.Reg.X, err = cpu.load(o)
		cpu.updateNZ(cpu.Reg.X)
	case LDY:
		cpu.Reg.Y, err = cpu.load(o)
		cpu.updateNZ(cpu.Reg.Y)
	case LSR:
		err = cpu.lsr(o)
	case NOP:
		// do nothing
	case ORA:
		err = cpu.ora(o)
	case PHA:
		err = cpu.push(cpu.Reg.A)
	case PHP:
		err = cpu.push(cpu.Reg.savePS(true))
	case PLA:
		cpu.Reg.A, err = cpu.pull()
		cpu.updateNZ(cpu.Reg.A)
	case PLP:
		err = cpu.plp()
	case ROL:
		err = cpu.rol(o)
	case ROR:
		err = cpu.ror(o)
	case RTI:
		err = cpu.rti()
	case RTS:
		err = cpu.rts()
	case SBC:
		err = cpu.sbc(o)
	case SEC:
		cpu.Reg.PS.Set(Carry, true)
	case SED:
		cpu.Reg.PS.Set(Decimal, true)
	case SEI:
		cpu.Reg.PS.Set(InterruptDisable, true)
	case STA:
		err = cpu.store(o, cpu.Reg.A)
	case STX:
		err = cpu.store(o, cpu.Reg.X)
	case STY:
		err = cpu.store(o, cpu.Reg.Y)
	case TAX:
		cpu.Reg.X = cpu.Reg.A
		cpu.updateNZ(cpu.Reg.X)
	case TAY:
		cpu.Reg.Y = cpu.Reg.A
		cpu.updateNZ(cpu.Reg.Y)
	case TSX:
		cpu.Reg.X = cpu.Reg.SP
		cpu.updateNZ(cpu.Reg.X)
	case TXA:
		cpu.Reg.A = cpu.Reg.X
		cpu.updateNZ(cpu.Reg.A)
	case TXS:
		cpu.Reg.SP = cpu.Reg.X
	case TYA:
		cpu.Reg.A = cpu.Reg.Y
		cpu.updateNZ(cpu.Reg.A)
	default:
		return 0, fmt.Errorf("cpu: no handler for instruction %s", op.Instruction)
	}

	if err != nil {
		return 0, err
	}
	return extra, nil
}

// Load the operand's value.
func (cpu *CPU) load(o operand) (byte, error) {
	if o.kind == operandAccumulator {
		return cpu.Reg.A, nil
	}
	return cpu.read(o.addr)
}

// Store 'v' to the operand's location.
func (cpu *CPU) store(o operand, v byte) error {
	if o.kind == operandAccumulator {
		cpu.Reg.A = v
		return nil
	}
	return cpu.write(o.addr, v)
}

// Read-modify-write the operand with 'fn' and update the N and Z flags
// from the result. A memory operand is written twice, first with the
// unmodified value, as the NMOS chip does.
func (cpu *CPU) modify(o operand, fn func(v byte) byte) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	if o.kind == operandMemory {
		if err := cpu.write(o.addr, v); err != nil {
			return err
		}
	}
	r := fn(v)
	if err := cpu.store(o, r); err != nil {
		return err
	}
	cpu.updateNZ(r)
	return nil
}

// Take the branch to the operand's target if 'cond' holds. Return the
// number of extra cycles consumed.
func (cpu *CPU) branch(cond bool, o operand) int {
	if !cond {
		return 0
	}
	cpu.Reg.PC = o.addr
	if o.pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) decimalEnabled() bool {
	return cpu.arch == NMOS && cpu.Reg.PS.IsSet(Decimal)
}

// Add with carry
func (cpu *CPU) adc(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	if cpu.decimalEnabled() {
		cpu.adcDecimal(v)
	} else {
		cpu.adcBinary(v)
	}
	return nil
}

func (cpu *CPU) adcBinary(v byte) {
	acc := uint32(cpu.Reg.A)
	add := uint32(v)
	carry := boolToUint32(cpu.Reg.PS.IsSet(Carry))

	r := acc + add + carry
	cpu.Reg.PS.Set(Carry, r > 0xff)
	cpu.Reg.PS.Set(Overflow, (acc^r)&(add^r)&0x80 != 0)
	cpu.Reg.A = byte(r)
	cpu.updateNZ(cpu.Reg.A)
}

// Decimal add. The N and V flags come from the intermediate result after
// the low nibble is adjusted, and Z comes from the binary sum.
func (cpu *CPU) adcDecimal(v byte) {
	a := int(cpu.Reg.A)
	b := int(v)
	carry := int(boolToByte(cpu.Reg.PS.IsSet(Carry)))

	bin := byte(a + b + carry)

	lo := (a & 0x0f) + (b & 0x0f) + carry
	if lo >= 0x0a {
		lo = ((lo + 0x06) & 0x0f) + 0x10
	}
	r := (a & 0xf0) + (b & 0xf0) + lo
	signed := int(int8(byte(a&0xf0))) + int(int8(byte(b&0xf0))) + lo

	cpu.Reg.PS.Set(Negative, r&0x80 != 0)
	cpu.Reg.PS.Set(Overflow, signed < -128 || signed > 127)
	if r >= 0xa0 {
		r += 0x60
	}
	cpu.Reg.PS.Set(Carry, r >= 0x100)
	cpu.Reg.PS.Set(Zero, bin == 0)
	cpu.Reg.A = byte(r)
}

// Subtract with carry
func (cpu *CPU) sbc(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	if cpu.decimalEnabled() {
		cpu.sbcDecimal(v)
	} else {
		cpu.adcBinary(^v)
	}
	return nil
}

// Decimal subtract. All flags are set as they would be by a binary
// subtraction.
func (cpu *CPU) sbcDecimal(v byte) {
	a := int(cpu.Reg.A)
	b := int(v)
	carry := int(boolToByte(cpu.Reg.PS.IsSet(Carry)))

	cpu.adcBinary(^v)

	lo := (a & 0x0f) - (b & 0x0f) + carry - 1
	if lo < 0 {
		lo = ((lo - 0x06) & 0x0f) - 0x10
	}
	r := (a & 0xf0) - (b & 0xf0) + lo
	if r < 0 {
		r -= 0x60
	}
	cpu.Reg.A = byte(r)
}

// Boolean AND
func (cpu *CPU) and(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	cpu.Reg.A &= v
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Boolean XOR
func (cpu *CPU) eor(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	cpu.Reg.A ^= v
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Boolean OR
func (cpu *CPU) ora(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	cpu.Reg.A |= v
	cpu.updateNZ(cpu.Reg.A)
	return nil
}

// Arithmetic Shift Left
func (cpu *CPU) asl(o operand) error {
	return cpu.modify(o, func(v byte) byte {
		cpu.Reg.PS.Set(Carry, v&0x80 != 0)
		return v << 1
	})
}

// Logical Shift Right
func (cpu *CPU) lsr(o operand) error {
	return cpu.modify(o, func(v byte) byte {
		cpu.Reg.PS.Set(Carry, v&0x01 != 0)
		return v >> 1
	})
}

// Rotate Left
func (cpu *CPU) rol(o operand) error {
	return cpu.modify(o, func(v byte) byte {
		carry := boolToByte(cpu.Reg.PS.IsSet(Carry))
		cpu.Reg.PS.Set(Carry, v&0x80 != 0)
		return v<<1 | carry
	})
}

// Rotate Right
func (cpu *CPU) ror(o operand) error {
	return cpu.modify(o, func(v byte) byte {
		carry := boolToByte(cpu.Reg.PS.IsSet(Carry))
		cpu.Reg.PS.Set(Carry, v&0x01 != 0)
		return v>>1 | carry<<7
	})
}

// Bit Test
func (cpu *CPU) bit(o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	cpu.Reg.PS.Set(Zero, v&cpu.Reg.A == 0)
	cpu.Reg.PS.Set(Overflow, v&0x40 != 0)
	cpu.Reg.PS.Set(Negative, v&0x80 != 0)
	return nil
}

// Compare 'reg' against the operand
func (cpu *CPU) compare(reg byte, o operand) error {
	v, err := cpu.load(o)
	if err != nil {
		return err
	}
	cpu.Reg.PS.Set(Carry, reg >= v)
	cpu.updateNZ(reg - v)
	return nil
}

// Break. The byte after the opcode is skipped, so the pushed return
// address is the opcode address plus two.
func (cpu *CPU) brk() error {
	cpu.Reg.PC++
	cpu.state = ServicingBRK
	return cpu.interrupt(true, vectorBRK)
}

// Jump to subroutine. The pushed return address is the address of the
// last byte of the JSR instruction.
func (cpu *CPU) jsr(o operand) error {
	if err := cpu.pushAddress(cpu.Reg.PC - 1); err != nil {
		return err
	}
	cpu.Reg.PC = o.addr
	return nil
}

// Return from subroutine
func (cpu *CPU) rts() error {
	addr, err := cpu.pullAddress()
	if err != nil {
		return err
	}
	cpu.Reg.PC = addr + 1
	return nil
}

// Return from interrupt
func (cpu *CPU) rti() error {
	if err := cpu.plp(); err != nil {
		return err
	}
	addr, err := cpu.pullAddress()
	if err != nil {
		return err
	}
	cpu.Reg.PC = addr
	return nil
}

// Pull processor status
func (cpu *CPU) plp() error {
	v, err := cpu.pull()
	if err != nil {
		return err
	}
	cpu.Reg.restorePS(v)
	return nil
}
