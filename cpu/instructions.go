// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"fmt"
	"sync"
)

// An Instruction identifies one of the 56 documented 6502 operations.
type Instruction byte

// All documented instructions
const (
	ADC Instruction = iota // add with carry
	AND                    // logical and
	ASL                    // arithmetic shift left
	BCC                    // branch if carry clear
	BCS                    // branch if carry set
	BEQ                    // branch if equal
	BIT                    // bit test
	BMI                    // branch if minus
	BNE                    // branch if not equal
	BPL                    // branch if plus
	BRK                    // force interrupt
	BVC                    // branch if overflow clear
	BVS                    // branch if overflow set
	CLC                    // clear carry
	CLD                    // clear decimal
	CLI                    // clear interrupt disable
	CLV                    // clear overflow
	CMP                    // compare accumulator
	CPX                    // compare X
	CPY                    // compare Y
	DEC                    // decrement memory
	DEX                    // decrement X
	DEY                    // decrement Y
	EOR                    // exclusive or
	INC                    // increment memory
	INX                    // increment X
	INY                    // increment Y
	JMP                    // jump
	JSR                    // jump to subroutine
	LDA                    // load accumulator
	LDX                    // load X
	LDY                    // load Y
	LSR                    // logical shift right
	NOP                    // no operation
	ORA                    // logical inclusive or
	PHA                    // push accumulator
	PHP                    // push processor status
	PLA                    // pull accumulator
	PLP                    // pull processor status
	ROL                    // rotate left
	ROR                    // rotate right
	RTI                    // return from interrupt
	RTS                    // return from subroutine
	SBC                    // subtract with carry
	SEC                    // set carry
	SED                    // set decimal
	SEI                    // set interrupt disable
	STA                    // store accumulator
	STX                    // store X
	STY                    // store Y
	TAX                    // transfer A to X
	TAY                    // transfer A to Y
	TSX                    // transfer SP to X
	TXA                    // transfer X to A
	TXS                    // transfer X to SP
	TYA                    // transfer Y to A

	instructionCount
)

var instructionNames = [instructionCount]string{
	"ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI",
	"BNE", "BPL", "BRK", "BVC", "BVS", "CLC", "CLD", "CLI",
	"CLV", "CMP", "CPX", "CPY", "DEC", "DEX", "DEY", "EOR",
	"INC", "INX", "INY", "JMP", "JSR", "LDA", "LDX", "LDY",
	"LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
	"ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA",
	"STX", "STY", "TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
}

func (i Instruction) String() string {
	if i < instructionCount {
		return instructionNames[i]
	}
	return fmt.Sprintf("Instruction(%d)", byte(i))
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	ACC             // Accumulator (no operand)

	modeCount
)

var modeNames = [modeCount]string{
	"IMM", "IMP", "REL", "ZPG", "ZPX", "ZPY", "ABS",
	"ABX", "ABY", "IND", "IDX", "IDY", "ACC",
}

func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// OperandLength returns the number of operand bytes following the opcode.
func (m Mode) OperandLength() byte {
	switch m {
	case IMP, ACC:
		return 0
	case ABS, ABX, ABY, IND:
		return 2
	default:
		return 1
	}
}

// An OpcodeDef defines one (instruction, mode) pair of the instruction set.
type OpcodeDef struct {
	Instruction Instruction
	Mode        Mode
	Opcode      byte // opcode hex value
	Cycles      byte // base number of CPU cycles
	BPCycles    byte // additional cycles if an indexed read crosses a page
}

// All documented (opcode, mode) pairs
var opcodeDefs = []OpcodeDef{
	{LDA, IMM, 0xa9, 2, 0},
	{LDA, ZPG, 0xa5, 3, 0},
	{LDA, ZPX, 0xb5, 4, 0},
	{LDA, ABS, 0xad, 4, 0},
	{LDA, ABX, 0xbd, 4, 1},
	{LDA, ABY, 0xb9, 4, 1},
	{LDA, IDX, 0xa1, 6, 0},
	{LDA, IDY, 0xb1, 5, 1},

	{LDX, IMM, 0xa2, 2, 0},
	{LDX, ZPG, 0xa6, 3, 0},
	{LDX, ZPY, 0xb6, 4, 0},
	{LDX, ABS, 0xae, 4, 0},
	{LDX, ABY, 0xbe, 4, 1},

	{LDY, IMM, 0xa0, 2, 0},
	{LDY, ZPG, 0xa4, 3, 0},
	{LDY, ZPX, 0xb4, 4, 0},
	{LDY, ABS, 0xac, 4, 0},
	{LDY, ABX, 0xbc, 4, 1},

	{STA, ZPG, 0x85, 3, 0},
	{STA, ZPX, 0x95, 4, 0},
	{STA, ABS, 0x8d, 4, 0},
	{STA, ABX, 0x9d, 5, 0},
	{STA, ABY, 0x99, 5, 0},
	{STA, IDX, 0x81, 6, 0},
	{STA, IDY, 0x91, 6, 0},

	{STX, ZPG, 0x86, 3, 0},
	{STX, ZPY, 0x96, 4, 0},
	{STX, ABS, 0x8e, 4, 0},

	{STY, ZPG, 0x84, 3, 0},
	{STY, ZPX, 0x94, 4, 0},
	{STY, ABS, 0x8c, 4, 0},

	{ADC, IMM, 0x69, 2, 0},
	{ADC, ZPG, 0x65, 3, 0},
	{ADC, ZPX, 0x75, 4, 0},
	{ADC, ABS, 0x6d, 4, 0},
	{ADC, ABX, 0x7d, 4, 1},
	{ADC, ABY, 0x79, 4, 1},
	{ADC, IDX, 0x61, 6, 0},
	{ADC, IDY, 0x71, 5, 1},

	{SBC, IMM, 0xe9, 2, 0},
	{SBC, ZPG, 0xe5, 3, 0},
	{SBC, ZPX, 0xf5, 4, 0},
	{SBC, ABS, 0xed, 4, 0},
	{SBC, ABX, 0xfd, 4, 1},
	{SBC, ABY, 0xf9, 4, 1},
	{SBC, IDX, 0xe1, 6, 0},
	{SBC, IDY, 0xf1, 5, 1},

	{CMP, IMM, 0xc9, 2, 0},
	{CMP, ZPG, 0xc5, 3, 0},
	{CMP, ZPX, 0xd5, 4, 0},
	{CMP, ABS, 0xcd, 4, 0},
	{CMP, ABX, 0xdd, 4, 1},
	{CMP, ABY, 0xd9, 4, 1},
	{CMP, IDX, 0xc1, 6, 0},
	{CMP, IDY, 0xd1, 5, 1},

	{CPX, IMM, 0xe0, 2, 0},
	{CPX, ZPG, 0xe4, 3, 0},
	{CPX, ABS, 0xec, 4, 0},

	{CPY, IMM, 0xc0, 2, 0},
	{CPY, ZPG, 0xc4, 3, 0},
	{CPY, ABS, 0xcc, 4, 0},

	{BIT, ZPG, 0x24, 3, 0},
	{BIT, ABS, 0x2c, 4, 0},

	{CLC, IMP, 0x18, 2, 0},
	{SEC, IMP, 0x38, 2, 0},
	{CLI, IMP, 0x58, 2, 0},
	{SEI, IMP, 0x78, 2, 0},
	{CLD, IMP, 0xd8, 2, 0},
	{SED, IMP, 0xf8, 2, 0},
	{CLV, IMP, 0xb8, 2, 0},

	{BCC, REL, 0x90, 2, 0},
	{BCS, REL, 0xb0, 2, 0},
	{BEQ, REL, 0xf0, 2, 0},
	{BNE, REL, 0xd0, 2, 0},
	{BMI, REL, 0x30, 2, 0},
	{BPL, REL, 0x10, 2, 0},
	{BVC, REL, 0x50, 2, 0},
	{BVS, REL, 0x70, 2, 0},

	{BRK, IMP, 0x00, 7, 0},

	{AND, IMM, 0x29, 2, 0},
	{AND, ZPG, 0x25, 3, 0},
	{AND, ZPX, 0x35, 4, 0},
	{AND, ABS, 0x2d, 4, 0},
	{AND, ABX, 0x3d, 4, 1},
	{AND, ABY, 0x39, 4, 1},
	{AND, IDX, 0x21, 6, 0},
	{AND, IDY, 0x31, 5, 1},

	{ORA, IMM, 0x09, 2, 0},
	{ORA, ZPG, 0x05, 3, 0},
	{ORA, ZPX, 0x15, 4, 0},
	{ORA, ABS, 0x0d, 4, 0},
	{ORA, ABX, 0x1d, 4, 1},
	{ORA, ABY, 0x19, 4, 1},
	{ORA, IDX, 0x01, 6, 0},
	{ORA, IDY, 0x11, 5, 1},

	{EOR, IMM, 0x49, 2, 0},
	{EOR, ZPG, 0x45, 3, 0},
	{EOR, ZPX, 0x55, 4, 0},
	{EOR, ABS, 0x4d, 4, 0},
	{EOR, ABX, 0x5d, 4, 1},
	{EOR, ABY, 0x59, 4, 1},
	{EOR, IDX, 0x41, 6, 0},
	{EOR, IDY, 0x51, 5, 1},

	{INC, ZPG, 0xe6, 5, 0},
	{INC, ZPX, 0xf6, 6, 0},
	{INC, ABS, 0xee, 6, 0},
	{INC, ABX, 0xfe, 7, 0},

	{DEC, ZPG, 0xc6, 5, 0},
	{DEC, ZPX, 0xd6, 6, 0},
	{DEC, ABS, 0xce, 6, 0},
	{DEC, ABX, 0xde, 7, 0},

	{INX, IMP, 0xe8, 2, 0},
	{INY, IMP, 0xc8, 2, 0},

	{DEX, IMP, 0xca, 2, 0},
	{DEY, IMP, 0x88, 2, 0},

	{JMP, ABS, 0x4c, 3, 0},
	{JMP, IND, 0x6c, 5, 0},

	{JSR, ABS, 0x20, 6, 0},

	{RTS, IMP, 0x60, 6, 0},

	{RTI, IMP, 0x40, 6, 0},

	{NOP, IMP, 0xea, 2, 0},

	{TAX, IMP, 0xaa, 2, 0},
	{TXA, IMP, 0x8a, 2, 0},
	{TAY, IMP, 0xa8, 2, 0},
	{TYA, IMP, 0x98, 2, 0},
	{TXS, IMP, 0x9a, 2, 0},
	{TSX, IMP, 0xba, 2, 0},

	{PHA, IMP, 0x48, 3, 0},
	{PLA, IMP, 0x68, 4, 0},
	{PHP, IMP, 0x08, 3, 0},
	{PLP, IMP, 0x28, 4, 0},

	{ASL, ACC, 0x0a, 2, 0},
	{ASL, ZPG, 0x06, 5, 0},
	{ASL, ZPX, 0x16, 6, 0},
	{ASL, ABS, 0x0e, 6, 0},
	{ASL, ABX, 0x1e, 7, 0},

	{LSR, ACC, 0x4a, 2, 0},
	{LSR, ZPG, 0x46, 5, 0},
	{LSR, ZPX, 0x56, 6, 0},
	{LSR, ABS, 0x4e, 6, 0},
	{LSR, ABX, 0x5e, 7, 0},

	{ROL, ACC, 0x2a, 2, 0},
	{ROL, ZPG, 0x26, 5, 0},
	{ROL, ZPX, 0x36, 6, 0},
	{ROL, ABS, 0x2e, 6, 0},
	{ROL, ABX, 0x3e, 7, 0},

	{ROR, ACC, 0x6a, 2, 0},
	{ROR, ZPG, 0x66, 5, 0},
	{ROR, ZPX, 0x76, 6, 0},
	{ROR, ABS, 0x6e, 6, 0},
	{ROR, ABX, 0x7e, 7, 0},
}

// An Opcode is a decode table entry: the instruction and addressing
// mode selected by an opcode byte, plus its cycle cost.
type Opcode struct {
	Opcode      byte        // hexadecimal opcode value
	Instruction Instruction // operation
	Mode        Mode        // addressing mode
	Cycles      byte        // base number of CPU cycles
	BPCycles    byte        // additional cycles if an indexed read crosses a page
}

// Length returns the combined size of opcode and operand, in bytes.
func (o Opcode) Length() byte {
	return 1 + o.Mode.OperandLength()
}

func (o Opcode) String() string {
	return fmt.Sprintf("%s %s", o.Instruction, o.Mode)
}

// A Table maps opcode bytes to instructions. A Table never changes once
// built, so it may be shared by any number of CPUs.
type Table struct {
	opcodes  [256]Opcode
	mapped   [256]bool
	variants [instructionCount][]byte
}

// NewTable builds a decode table from opcode definitions. It fails if two
// definitions claim the same opcode.
func NewTable(defs []OpcodeDef) (*Table, error) {
	t := &Table{}
	owner := make(map[byte]OpcodeDef, len(defs))

	for _, d := range defs {
		if d.Instruction >= instructionCount || d.Mode >= modeCount {
			return nil, fmt.Errorf("cpu: invalid definition for opcode $%02X", d.Opcode)
		}
		if prev, ok := owner[d.Opcode]; ok {
			return nil, &TableConflictError{Opcode: d.Opcode, Existing: prev, Duplicate: d}
		}
		owner[d.Opcode] = d

		t.opcodes[d.Opcode] = Opcode{
			Opcode:      d.Opcode,
			Instruction: d.Instruction,
			Mode:        d.Mode,
			Cycles:      d.Cycles,
			BPCycles:    d.BPCycles,
		}
		t.mapped[d.Opcode] = true
		t.variants[d.Instruction] = append(t.variants[d.Instruction], d.Opcode)
	}
	return t, nil
}

// Lookup retrieves a copy of the decode entry for an opcode. The boolean
// result is false if the opcode is unmapped.
func (t *Table) Lookup(opcode byte) (Opcode, bool) {
	if !t.mapped[opcode] {
		return Opcode{}, false
	}
	return t.opcodes[opcode], true
}

// Variants returns copies of every opcode that implements the instruction.
func (t *Table) Variants(inst Instruction) []Opcode {
	if inst >= instructionCount {
		return nil
	}
	ops := make([]Opcode, len(t.variants[inst]))
	for i, opcode := range t.variants[inst] {
		ops[i] = t.opcodes[opcode]
	}
	return ops
}

// Len returns the number of mapped opcodes.
func (t *Table) Len() int {
	n := 0
	for _, m := range t.mapped {
		if m {
			n++
		}
	}
	return n
}

var decodeTable = sync.OnceValues(func() (*Table, error) {
	return NewTable(opcodeDefs)
})

// DecodeTable returns the documented 6502 instruction set. It is built on
// first use and shared by all callers.
func DecodeTable() (*Table, error) {
	return decodeTable()
}

// MustDecodeTable is like DecodeTable but panics if the table cannot be
// built.
func MustDecodeTable() *Table {
	t, err := decodeTable()
	if err != nil {
		panic(err)
	}
	return t
}
