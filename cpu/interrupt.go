// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// Interrupt vectors
const (
	vectorNMI   = 0xfffa
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
	vectorBRK   = 0xfffe
)

// Cycles taken by the reset and hardware interrupt sequences.
const interruptCycles = 7

// State reports what the interrupt controller is doing. The servicing
// states are transient: they last only for the duration of a vector fetch
// and are visible to debugger callbacks made during it.
type State byte

// Interrupt controller states
const (
	Running State = iota
	ServicingReset
	ServicingNMI
	ServicingIRQ
	ServicingBRK
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ServicingReset:
		return "reset"
	case ServicingNMI:
		return "nmi"
	case ServicingIRQ:
		return "irq"
	case ServicingBRK:
		return "brk"
	default:
		return fmt.Sprintf("State(%d)", byte(s))
	}
}

// State returns the interrupt controller state.
func (cpu *CPU) State() State {
	return cpu.state
}

// Reset performs the reset sequence immediately: the interrupt disable
// flag is set and the program counter is loaded from the reset vector.
// Nothing is pushed, but the stack pointer drops by three as on silicon.
// Pending interrupts are discarded.
func (cpu *CPU) Reset() error {
	saved := cpu.Reg
	cycles, err := cpu.serviceReset()
	cpu.state = Running
	if err != nil {
		cpu.Reg = saved
		return err
	}
	cpu.Cycles += uint64(cycles)
	return nil
}

// TriggerReset raises the reset line. The reset sequence runs at the start
// of the next step.
func (cpu *CPU) TriggerReset() {
	cpu.resetPending = true
}

// TriggerNMI signals a non-maskable interrupt. The interrupt is latched and
// serviced at the start of the next step.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ asserts the maskable interrupt line. The interrupt is serviced
// at the start of the first step taken while the interrupt disable flag is
// clear. The line stays asserted until then, or until ClearIRQ.
func (cpu *CPU) TriggerIRQ() {
	cpu.irqLine = true
}

// ClearIRQ deasserts the maskable interrupt line.
func (cpu *CPU) ClearIRQ() {
	cpu.irqLine = false
}

// Pending reports which interrupt lines are waiting to be serviced.
func (cpu *CPU) Pending() (reset, nmi, irq bool) {
	return cpu.resetPending, cpu.nmiPending, cpu.irqLine
}

func (cpu *CPU) serviceReset() (int, error) {
	cpu.state = ServicingReset

	pc, err := cpu.readAddress(vectorReset)
	if err != nil {
		return 0, err
	}

	cpu.Reg.SP -= 3
	cpu.Reg.PS.Set(InterruptDisable, true)
	cpu.Reg.PC = pc

	cpu.resetPending = false
	cpu.nmiPending = false
	cpu.irqLine = false
	return interruptCycles, nil
}

func (cpu *CPU) serviceNMI() (int, error) {
	cpu.state = ServicingNMI
	if err := cpu.interrupt(false, vectorNMI); err != nil {
		return 0, err
	}
	cpu.nmiPending = false
	return interruptCycles, nil
}

func (cpu *CPU) serviceIRQ() (int, error) {
	cpu.state = ServicingIRQ
	if err := cpu.interrupt(false, vectorIRQ); err != nil {
		return 0, err
	}
	cpu.irqLine = false
	return interruptCycles, nil
}

// Handle an interrupt by storing the program counter and status flags on
// the stack. Then switch the program counter to the address stored at the
// vector.
func (cpu *CPU) interrupt(brk bool, vector uint16) error {
	if err := cpu.pushAddress(cpu.Reg.PC); err != nil {
		return err
	}
	if err := cpu.push(cpu.Reg.savePS(brk)); err != nil {
		return err
	}

	cpu.Reg.PS.Set(InterruptDisable, true)

	pc, err := cpu.readAddress(vector)
	if err != nil {
		return err
	}
	cpu.Reg.PC = pc
	return nil
}
