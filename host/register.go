// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"

	"github.com/beevik/prefixtree/v2"
	"github.com/gestalt-emu/gestalt/cpu"
)

// A register is a CPU register or status flag that can be read and
// written by name. Flags have size 1.
type register struct {
	name string
	size int // in bits
	get  func(r *cpu.Registers) int
	set  func(r *cpu.Registers, v int)
}

var registerTree = prefixtree.New[*register]()

func flagRegister(name string, bit cpu.Status) *register {
	return &register{
		name: name,
		size: 1,
		get:  func(r *cpu.Registers) int { return boolToInt(r.PS.IsSet(bit)) },
		set:  func(r *cpu.Registers, v int) { r.PS.Set(bit, v != 0) },
	}
}

func init() {
	registers := []*register{
		{
			name: "a", size: 8,
			get: func(r *cpu.Registers) int { return int(r.A) },
			set: func(r *cpu.Registers, v int) { r.A = byte(v) },
		},
		{
			name: "x", size: 8,
			get: func(r *cpu.Registers) int { return int(r.X) },
			set: func(r *cpu.Registers, v int) { r.X = byte(v) },
		},
		{
			name: "y", size: 8,
			get: func(r *cpu.Registers) int { return int(r.Y) },
			set: func(r *cpu.Registers, v int) { r.Y = byte(v) },
		},
		{
			name: "sp", size: 8,
			get: func(r *cpu.Registers) int { return int(r.SP) },
			set: func(r *cpu.Registers, v int) { r.SP = byte(v) },
		},
		{
			name: "pc", size: 16,
			get: func(r *cpu.Registers) int { return int(r.PC) },
			set: func(r *cpu.Registers, v int) { r.PC = uint16(v) },
		},
		flagRegister("carry", cpu.Carry),
		flagRegister("zero", cpu.Zero),
		flagRegister("interrupt", cpu.InterruptDisable),
		flagRegister("decimal", cpu.Decimal),
		flagRegister("overflow", cpu.Overflow),
		flagRegister("negative", cpu.Negative),
	}
	for _, r := range registers {
		registerTree.Add(r.name, r)
	}
}

// Look up a register or flag by a possibly abbreviated name.
func lookupRegister(name string) (*register, error) {
	r, err := registerTree.FindValue(name)
	if err != nil {
		return nil, fmt.Errorf("register '%s' not found", name)
	}
	return r, nil
}

// Assign a value to a register, rejecting values wider than it.
func (r *register) assign(regs *cpu.Registers, v int) error {
	if v < 0 || v >= 1<<r.size {
		return fmt.Errorf("value %d does not fit in register '%s'", v, r.name)
	}
	r.set(regs, v)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
