// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory provides page-mapped implementations of cpu.Bus.
package memory

import (
	"errors"
	"fmt"

	"github.com/gestalt-emu/gestalt/cpu"
)

// Errors
var (
	ErrUnmapped = fmt.Errorf("unmapped address: %w", cpu.ErrBusFault)
	ErrReadOnly = fmt.Errorf("read-only address: %w", cpu.ErrBusFault)
	ErrOverlap  = errors.New("memory: region overlaps an existing mapping")
	ErrAlign    = errors.New("memory: region is not page aligned")
)

// PageSize is the mapping granularity of a System.
const PageSize = 0x100

// A Bank is a block of storage that can be mapped into a System. Offsets
// passed to a bank are relative to the start of its mapping and are always
// less than Size.
type Bank interface {
	// Size returns the number of bytes the bank occupies in the address
	// space. It must be a non-zero multiple of PageSize.
	Size() int

	// Read loads the byte at the offset.
	Read(off int) (byte, error)

	// Write stores a byte at the offset.
	Write(off int, v byte) error

	// Poke stores a byte at the offset, ignoring write protection. It is
	// used to load program images.
	Poke(off int, v byte)
}

// RAM is a readable and writable bank.
type RAM struct {
	b []byte
}

// NewRAM creates a zeroed RAM bank of 'size' bytes.
func NewRAM(size int) *RAM {
	return &RAM{b: make([]byte, size)}
}

func (r *RAM) Size() int                   { return len(r.b) }
func (r *RAM) Read(off int) (byte, error)  { return r.b[off], nil }
func (r *RAM) Write(off int, v byte) error { r.b[off] = v; return nil }
func (r *RAM) Poke(off int, v byte)        { r.b[off] = v }

// MirroredRAM is a RAM bank that repeats across a larger span of the
// address space.
type MirroredRAM struct {
	b    []byte
	span int
}

// NewMirroredRAM creates 'size' bytes of RAM that occupy 'span' bytes of
// the address space. Every address in the span maps to offset % size.
func NewMirroredRAM(size, span int) *MirroredRAM {
	return &MirroredRAM{b: make([]byte, size), span: span}
}

func (r *MirroredRAM) Size() int                   { return r.span }
func (r *MirroredRAM) Read(off int) (byte, error)  { return r.b[off%len(r.b)], nil }
func (r *MirroredRAM) Write(off int, v byte) error { r.b[off%len(r.b)] = v; return nil }
func (r *MirroredRAM) Poke(off int, v byte)        { r.b[off%len(r.b)] = v }

// ROM is a bank whose contents can only be changed with Poke. Writes
// through the bus fail with ErrReadOnly.
type ROM struct {
	b    []byte
	span int
}

// NewROM creates a ROM bank that occupies 'span' bytes of the address
// space. The image repeats if it is smaller than the span. An empty image
// produces a zeroed ROM of the full span.
func NewROM(image []byte, span int) *ROM {
	if len(image) == 0 {
		image = make([]byte, span)
	}
	b := make([]byte, len(image))
	copy(b, image)
	return &ROM{b: b, span: span}
}

func (r *ROM) Size() int                   { return r.span }
func (r *ROM) Read(off int) (byte, error)  { return r.b[off%len(r.b)], nil }
func (r *ROM) Write(off int, v byte) error { return ErrReadOnly }
func (r *ROM) Poke(off int, v byte)        { r.b[off%len(r.b)] = v }

// A Region describes one bank mapping in a System.
type Region struct {
	Name  string
	Start uint16
	End   uint16 // last address in the region
	Bank  Bank
}

// System is a 16-bit address space assembled from banks mapped on page
// boundaries. Accesses to pages with no bank fail with ErrUnmapped.
type System struct {
	pages   [0x10000 / PageSize]*Region
	regions []*Region
}

// NewSystem creates an address space with nothing mapped.
func NewSystem() *System {
	return &System{}
}

// Map places 'bank' in the address space starting at 'start'.
func (s *System) Map(name string, start uint16, bank Bank) error {
	size := bank.Size()
	if int(start)%PageSize != 0 || size <= 0 || size%PageSize != 0 {
		return fmt.Errorf("%w: %s at $%04X size $%X", ErrAlign, name, start, size)
	}
	if int(start)+size > 0x10000 {
		return fmt.Errorf("memory: %s at $%04X size $%X runs past $FFFF", name, start, size)
	}

	first := int(start) / PageSize
	last := first + size/PageSize
	for p := first; p < last; p++ {
		if r := s.pages[p]; r != nil {
			return fmt.Errorf("%w: %s at $%04X collides with %s", ErrOverlap, name, p*PageSize, r.Name)
		}
	}

	r := &Region{
		Name:  name,
		Start: start,
		End:   uint16(int(start) + size - 1),
		Bank:  bank,
	}
	for p := first; p < last; p++ {
		s.pages[p] = r
	}
	s.regions = append(s.regions, r)
	return nil
}

// Regions returns the mapped regions in the order they were mapped.
func (s *System) Regions() []Region {
	regions := make([]Region, len(s.regions))
	for i, r := range s.regions {
		regions[i] = *r
	}
	return regions
}

// Region returns the region containing the address, or nil if the address
// is unmapped.
func (s *System) Region(addr uint16) *Region {
	return s.pages[addr/PageSize]
}

// Read loads a byte from the address.
func (s *System) Read(addr uint16) (byte, error) {
	r := s.pages[addr/PageSize]
	if r == nil {
		return 0, fmt.Errorf("memory: read $%04X: %w", addr, ErrUnmapped)
	}
	v, err := r.Bank.Read(int(addr - r.Start))
	if err != nil {
		return 0, fmt.Errorf("memory: read $%04X in %s: %w", addr, r.Name, err)
	}
	return v, nil
}

// Write stores a byte to the address.
func (s *System) Write(addr uint16, v byte) error {
	r := s.pages[addr/PageSize]
	if r == nil {
		return fmt.Errorf("memory: write $%04X: %w", addr, ErrUnmapped)
	}
	if err := r.Bank.Write(int(addr-r.Start), v); err != nil {
		return fmt.Errorf("memory: write $%04X in %s: %w", addr, r.Name, err)
	}
	return nil
}

// Load copies 'b' into the address space starting at 'addr', bypassing
// write protection. Loading stops at the first unmapped address or at
// the top of memory.
func (s *System) Load(addr uint16, b []byte) error {
	for i, v := range b {
		a := int(addr) + i
		if a > 0xffff {
			return fmt.Errorf("memory: load of %d bytes at $%04X runs past $FFFF", len(b), addr)
		}
		r := s.pages[a/PageSize]
		if r == nil {
			return fmt.Errorf("memory: load $%04X: %w", a, ErrUnmapped)
		}
		r.Bank.Poke(a-int(r.Start), v)
	}
	return nil
}

// NewFlat creates a system with 64K of RAM and nothing else.
func NewFlat() *System {
	s := NewSystem()
	if err := s.Map("ram", 0x0000, NewRAM(0x10000)); err != nil {
		panic(err)
	}
	return s
}

// Console memory map sizes
const (
	ConsoleRAMSize     = 0x0800
	ConsoleWorkRAMSize = 0x2000
	ConsolePRGSize     = 0x8000
)

// NewConsole creates the CPU address space of the home console: 2K of RAM
// mirrored through $1FFF, unmapped I/O from $2000 to $5FFF, 8K of work RAM
// at $6000, and program ROM at $8000. A 16K program image is mirrored into
// both halves of the ROM window. An empty image leaves the ROM zeroed.
func NewConsole(prg []byte) (*System, error) {
	switch len(prg) {
	case 0, ConsolePRGSize / 2, ConsolePRGSize:
	default:
		return nil, fmt.Errorf("memory: program image is %d bytes, expected 16K or 32K", len(prg))
	}

	s := NewSystem()
	maps := []struct {
		name  string
		start uint16
		bank  Bank
	}{
		{"ram", 0x0000, NewMirroredRAM(ConsoleRAMSize, 0x2000)},
		{"work ram", 0x6000, NewRAM(ConsoleWorkRAMSize)},
		{"prg rom", 0x8000, NewROM(prg, ConsolePRGSize)},
	}
	for _, m := range maps {
		if err := s.Map(m.name, m.start, m.bank); err != nil {
			return nil, err
		}
	}
	return s, nil
}
