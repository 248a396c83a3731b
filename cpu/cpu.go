// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements a cycle-counting MOS 6502 emulator core. The CPU
// executes instructions against a Bus it does not own, and reports the
// number of cycles consumed by each step.
package cpu

import "fmt"

// Architecture selects the CPU chip variant.
type Architecture byte

const (
	// NMOS 6502 CPU, with binary-coded decimal arithmetic.
	NMOS Architecture = iota

	// RP2A03 is the console variant of the NMOS 6502. The decimal flag
	// can be set and cleared, but ADC and SBC ignore it.
	RP2A03
)

func (a Architecture) String() string {
	switch a {
	case NMOS:
		return "6502"
	case RP2A03:
		return "2A03"
	default:
		return fmt.Sprintf("Architecture(%d)", byte(a))
	}
}

// CPU represents a single 6502 CPU. It holds a reference to the bus through
// which it accesses memory.
type CPU struct {
	Reg    Registers // CPU registers
	Cycles uint64    // total executed CPU cycles
	LastPC uint16    // address of the most recently executed instruction

	arch         Architecture
	bus          Bus
	table        *Table
	state        State
	resetPending bool
	nmiPending   bool
	irqLine      bool
	debugger     *Debugger
}

// NewCPU creates an emulated 6502 CPU bound to the bus. All registers start
// zeroed; call Reset to load the program counter from the reset vector.
func NewCPU(arch Architecture, bus Bus) (*CPU, error) {
	if arch != NMOS && arch != RP2A03 {
		return nil, fmt.Errorf("cpu: unknown architecture %d", arch)
	}

	table, err := DecodeTable()
	if err != nil {
		return nil, err
	}

	cpu := &CPU{
		arch:  arch,
		bus:   bus,
		table: table,
	}
	cpu.Reg.Init()
	return cpu, nil
}

// Arch returns the CPU's architecture.
func (cpu *CPU) Arch() Architecture {
	return cpu.arch
}

// Bus returns the bus the CPU is attached to.
func (cpu *CPU) Bus() Bus {
	return cpu.bus
}

// Table returns the decode table used by the CPU.
func (cpu *CPU) Table() *Table {
	return cpu.table
}

// Registers returns a copy of the CPU registers.
func (cpu *CPU) Registers() Registers {
	return cpu.Reg
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// Step executes one instruction, or services one pending reset or
// interrupt, and returns the number of cycles consumed.
//
// If the step fails, the registers and LastPC are restored to their state
// before the step, the cycle counter is unchanged, and the error is returned.
// Bus writes already performed are not undone.
func (cpu *CPU) Step() (int, error) {
	saved, lastPC := cpu.Reg, cpu.LastPC
	cycles, err := cpu.step()
	cpu.state = Running
	if err != nil {
		cpu.Reg, cpu.LastPC = saved, lastPC
		return 0, err
	}

	cpu.Cycles += uint64(cycles)

	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}
	return cycles, nil
}

func (cpu *CPU) step() (int, error) {
	// Interrupt lines are sampled only between instructions.
	switch {
	case cpu.resetPending:
		return cpu.serviceReset()
	case cpu.nmiPending:
		return cpu.serviceNMI()
	case cpu.irqLine && !cpu.Reg.PS.IsSet(InterruptDisable):
		return cpu.serviceIRQ()
	}

	// Grab the next opcode at the current PC and look it up.
	pc := cpu.Reg.PC
	opcode, err := cpu.read(pc)
	if err != nil {
		return 0, err
	}
	op, ok := cpu.table.Lookup(opcode)
	if !ok {
		return 0, &UnmappedOpcodeError{Opcode: opcode, PC: pc}
	}
	cpu.LastPC = pc
	cpu.Reg.PC++

	// Resolve the operand, advancing the PC past it.
	o, err := cpu.resolve(op.Mode)
	if err != nil {
		return 0, err
	}

	extra, err := cpu.execute(&op, o)
	if err != nil {
		return 0, err
	}
	return int(op.Cycles) + extra, nil
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU completes a step or stores a byte to
// memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
}

// DetachDebugger detaches the current debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
}

// Read a byte through the bus.
func (cpu *CPU) read(addr uint16) (byte, error) {
	v, err := cpu.bus.Read(addr)
	if err != nil {
		return 0, fmt.Errorf("cpu: read $%04X: %w", addr, err)
	}
	return v, nil
}

// Write a byte through the bus, notifying the debugger first.
func (cpu *CPU) write(addr uint16, v byte) error {
	if cpu.debugger != nil {
		cpu.debugger.onDataStore(cpu, addr, v)
	}
	if err := cpu.bus.Write(addr, v); err != nil {
		return fmt.Errorf("cpu: write $%04X: %w", addr, err)
	}
	return nil
}

// Read a little-endian 16-bit address from 'addr' and 'addr'+1.
func (cpu *CPU) readAddress(addr uint16) (uint16, error) {
	lo, err := cpu.read(addr)
	if err != nil {
		return 0, err
	}
	hi, err := cpu.read(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) error {
	err := cpu.write(stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
	return err
}

// Push the address 'addr' onto the stack, high byte first.
func (cpu *CPU) pushAddress(addr uint16) error {
	if err := cpu.push(byte(addr >> 8)); err != nil {
		return err
	}
	return cpu.push(byte(addr))
}

// Pull a value from the stack and return it.
func (cpu *CPU) pull() (byte, error) {
	cpu.Reg.SP++
	return cpu.read(stackAddress(cpu.Reg.SP))
}

// Pull a 16-bit address off the stack.
func (cpu *CPU) pullAddress() (uint16, error) {
	lo, err := cpu.pull()
	if err != nil {
		return 0, err
	}
	hi, err := cpu.pull()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Update the Zero and Negative flags based on the value of 'v'.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.PS.Set(Zero, v == 0)
	cpu.Reg.PS.Set(Negative, v&0x80 != 0)
}
