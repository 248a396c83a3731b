// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/gestalt-emu/gestalt/cpu"
)

func loadVectors(mem *cpu.FlatMemory) {
	mem.StoreAddress(0xfffa, 0x4000) // NMI
	mem.StoreAddress(0xfffc, 0x8000) // RESET
	mem.StoreAddress(0xfffe, 0x5000) // IRQ/BRK
	mem.StoreBytes(0x4000, []byte{0xea})
	mem.StoreBytes(0x5000, []byte{0xea})
	mem.StoreBytes(0x8000, []byte{0xea})
}

func TestReset(t *testing.T) {
	mem := cpu.NewFlatMemory()
	loadVectors(mem)
	c, err := cpu.NewCPU(cpu.NMOS, mem)
	if err != nil {
		t.Fatal(err)
	}
	c.TriggerNMI()

	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	expectPC(t, c, 0x8000)
	expectSP(t, c, 0xfd)
	expectCycles(t, c, 7)
	expectFlags(t, c, cpu.InterruptDisable|cpu.Reserved, cpu.Break)
	if c.State() != cpu.Running {
		t.Errorf("state incorrect. exp: %s, got: %s", cpu.Running, c.State())
	}

	// The pending NMI was discarded, so the next step runs the NOP.
	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 2 {
		t.Errorf("cycles incorrect. exp: 2, got: %d", cycles)
	}
	expectPC(t, c, 0x8001)
}

func TestTriggerReset(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000, 0xea)
	loadVectors(mem)
	c.TriggerReset()

	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 7 {
		t.Errorf("cycles incorrect. exp: 7, got: %d", cycles)
	}
	expectPC(t, c, 0x8000)
	expectSP(t, c, 0xfc)
	if reset, _, _ := c.Pending(); reset {
		t.Error("reset still pending")
	}
}

func TestNMI(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000, 0xea)
	loadVectors(mem)
	c.Reg.PS.Set(cpu.InterruptDisable, true)
	c.TriggerNMI()

	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 7 {
		t.Errorf("cycles incorrect. exp: 7, got: %d", cycles)
	}
	expectPC(t, c, 0x4000)
	expectSP(t, c, 0xfc)
	expectMem(t, c, 0x1ff, 0x10)
	expectMem(t, c, 0x1fe, 0x00)
	expectMem(t, c, 0x1fd, byte(cpu.InterruptDisable|cpu.Reserved))

	if _, nmi, _ := c.Pending(); nmi {
		t.Error("nmi still pending")
	}
}

func TestNMIBeforeIRQ(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000, 0xea)
	loadVectors(mem)
	c.TriggerIRQ()
	c.TriggerNMI()

	stepCPU(t, c, 1)
	expectPC(t, c, 0x4000)

	// The NMI handler runs with interrupts disabled, so the IRQ waits.
	stepCPU(t, c, 1)
	expectPC(t, c, 0x4001)
	if _, _, irq := c.Pending(); !irq {
		t.Error("irq no longer pending")
	}
}

func TestIRQ(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000,
		0xea, // NOP
		0x58, // CLI
		0xea, // NOP
	)
	loadVectors(mem)
	c.Reg.PS.Set(cpu.InterruptDisable, true)
	c.TriggerIRQ()

	// Masked: the NOP and CLI execute normally.
	stepCPU(t, c, 2)
	expectPC(t, c, 0x1002)

	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != 7 {
		t.Errorf("cycles incorrect. exp: 7, got: %d", cycles)
	}
	expectPC(t, c, 0x5000)
	expectMem(t, c, 0x1ff, 0x10)
	expectMem(t, c, 0x1fe, 0x02)
	expectMem(t, c, 0x1fd, byte(cpu.Reserved))
	expectFlags(t, c, cpu.InterruptDisable, cpu.Break)
	expectCycles(t, c, 2+2+7)
}

func TestClearIRQ(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000, 0xea)
	loadVectors(mem)
	c.TriggerIRQ()
	c.ClearIRQ()

	stepCPU(t, c, 1)
	expectPC(t, c, 0x1001)
}

// stateRecorder captures the interrupt state seen during a store.
type stateRecorder struct {
	states []cpu.State
}

func (r *stateRecorder) OnBreakpoint(c *cpu.CPU, b *cpu.Breakpoint) {}

func (r *stateRecorder) OnDataBreakpoint(c *cpu.CPU, b *cpu.DataBreakpoint) {
	r.states = append(r.states, c.State())
}

func TestServicingState(t *testing.T) {
	c, mem := loadCPU(t, cpu.NMOS, 0x1000, 0x00, 0x00)
	loadVectors(mem)

	r := &stateRecorder{}
	d := cpu.NewDebugger(r)
	d.AddDataBreakpoint(0x1fd)
	c.AttachDebugger(d)

	c.TriggerNMI()
	stepCPU(t, c, 1)

	c.Reg.SP = 0xff
	c.SetPC(0x1000)
	stepCPU(t, c, 1)

	if len(r.states) != 2 || r.states[0] != cpu.ServicingNMI || r.states[1] != cpu.ServicingBRK {
		t.Errorf("states incorrect: %v", r.states)
	}
	if c.State() != cpu.Running {
		t.Errorf("state after step: %s", c.State())
	}
}
