// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// The Bus interface presents the 16-bit address space to the CPU. Every
// memory access the CPU makes goes through it. What backs an address (RAM,
// ROM, I/O registers, a cartridge mapper) is the implementation's concern.
//
// An implementation that refuses an access should return an error wrapping
// ErrBusFault.
type Bus interface {
	// Read loads a single byte from the address.
	Read(addr uint16) (byte, error)

	// Write stores a single byte to the address.
	Write(addr uint16, v byte) error
}

// FlatMemory represents an entire 16-bit address space as a singular
// 64K buffer. It never faults.
type FlatMemory struct {
	b [64 * 1024]byte
}

// NewFlatMemory creates a new 16-bit memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// Read loads a single byte from the address and returns it.
func (m *FlatMemory) Read(addr uint16) (byte, error) {
	return m.b[addr], nil
}

// Write stores a byte at the requested address.
func (m *FlatMemory) Write(addr uint16, v byte) error {
	m.b[addr] = v
	return nil
}

// LoadByte returns the byte at the address.
func (m *FlatMemory) LoadByte(addr uint16) byte {
	return m.b[addr]
}

// StoreBytes copies 'b' into memory starting at the address. Bytes that
// would run past $FFFF wrap around to $0000.
func (m *FlatMemory) StoreBytes(addr uint16, b []byte) {
	for i, v := range b {
		m.b[addr+uint16(i)] = v
	}
}

// StoreAddress stores a 16-bit little-endian value at the address.
func (m *FlatMemory) StoreAddress(addr uint16, v uint16) {
	m.b[addr] = byte(v)
	m.b[addr+1] = byte(v >> 8)
}

// Return the offset address 'addr' + 'offset'. If the offset
// crossed a page boundary, return 'pageCrossed' as true.
func offsetAddress(addr uint16, offset byte) (newAddr uint16, pageCrossed bool) {
	newAddr = addr + uint16(offset)
	pageCrossed = ((newAddr & 0xff00) != (addr & 0xff00))
	return newAddr, pageCrossed
}

// Offset a zero-page address 'addr' by 'offset'. The result wraps within
// the zero page.
func offsetZeroPage(addr byte, offset byte) uint16 {
	return uint16(addr + offset)
}

// Given a 1-byte stack pointer register, return the stack
// corresponding memory address.
func stackAddress(offset byte) uint16 {
	return uint16(0x100) + uint16(offset)
}

// Return the address of the byte following 'addr' within the same page.
func samePageNext(addr uint16) uint16 {
	return (addr & 0xff00) | uint16(byte(addr)+1)
}
