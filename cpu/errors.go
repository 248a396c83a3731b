// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrUnmappedOpcode is matched by every UnmappedOpcodeError.
	ErrUnmappedOpcode = errors.New("cpu: unmapped opcode")

	// ErrTableConflict is matched by every TableConflictError.
	ErrTableConflict = errors.New("cpu: decode table conflict")

	// ErrBusFault should be wrapped by Bus implementations that refuse an
	// access. The CPU returns such errors to the caller of Step unchanged
	// apart from added context.
	ErrBusFault = errors.New("bus fault")
)

// An UnmappedOpcodeError is returned by Step when the byte fetched at the
// program counter has no decode table entry.
type UnmappedOpcodeError struct {
	Opcode byte   // the offending opcode byte
	PC     uint16 // address the opcode was fetched from
}

func (e *UnmappedOpcodeError) Error() string {
	return fmt.Sprintf("cpu: unmapped opcode $%02X at $%04X", e.Opcode, e.PC)
}

func (e *UnmappedOpcodeError) Unwrap() error {
	return ErrUnmappedOpcode
}

// A TableConflictError is returned while building a decode table when
// two definitions claim the same opcode.
type TableConflictError struct {
	Opcode    byte
	Existing  OpcodeDef
	Duplicate OpcodeDef
}

func (e *TableConflictError) Error() string {
	return fmt.Sprintf("cpu: opcode $%02X claimed by %s %s and %s %s",
		e.Opcode,
		e.Existing.Instruction, e.Existing.Mode,
		e.Duplicate.Instruction, e.Duplicate.Mode)
}

func (e *TableConflictError) Unwrap() error {
	return ErrTableConflict
}
