// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// RunScript runs a Lua script file against the host, writing any output to
// 'w'.
func (h *Host) RunScript(filename string, w io.Writer) error {
	h.output.Reset(w)
	defer h.flush()
	return h.runScript(filename)
}

func (h *Host) runScript(filename string) error {
	L := h.newScriptState()
	defer L.Close()
	return h.scriptResult(L.DoFile(filename))
}

func (h *Host) runScriptString(src string) error {
	L := h.newScriptState()
	defer L.Close()
	return h.scriptResult(L.DoString(src))
}

// A quit command executed from a script stops the script and is passed on
// to the caller.
func (h *Host) scriptResult(err error) error {
	if h.scriptQuit {
		h.scriptQuit = false
		return ErrQuit
	}
	return err
}

// Create a Lua state with the emulator bindings installed as globals.
func (h *Host) newScriptState() *lua.LState {
	L := lua.NewState()

	funcs := map[string]lua.LGFunction{
		"print":    h.luaPrint,
		"step":     h.luaStep,
		"reg":      h.luaReg,
		"setreg":   h.luaSetReg,
		"peek":     h.luaPeek,
		"poke":     h.luaPoke,
		"nmi":      h.luaNMI,
		"irq":      h.luaIRQ,
		"clearirq": h.luaClearIRQ,
		"reset":    h.luaReset,
		"cycles":   h.luaCycles,
		"exec":     h.luaExec,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	return L
}

// print(...) writes its arguments to the monitor's output.
func (h *Host) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	h.println(strings.Join(parts, "\t"))
	return 0
}

// step([n]) runs n instructions (default 1) and returns the cycles spent.
func (h *Host) luaStep(L *lua.LState) int {
	n := L.OptInt(1, 1)
	total := 0
	for i := 0; i < n; i++ {
		cycles, err := h.cpu.Step()
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		total += cycles
	}
	L.Push(lua.LNumber(total))
	return 1
}

// reg(name) returns the value of a register or flag.
func (h *Host) luaReg(L *lua.LState) int {
	r, err := lookupRegister(strings.ToLower(L.CheckString(1)))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(r.get(&h.cpu.Reg)))
	return 1
}

// setreg(name, value) assigns a register or flag.
func (h *Host) luaSetReg(L *lua.LState) int {
	r, err := lookupRegister(strings.ToLower(L.CheckString(1)))
	if err == nil {
		err = r.assign(&h.cpu.Reg, L.CheckInt(2))
	}
	if err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// peek(addr) reads a byte through the bus.
func (h *Host) luaPeek(L *lua.LState) int {
	v, err := h.mem.Read(checkAddr(L, 1))
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(v))
	return 1
}

// poke(addr, value, ...) stores bytes, ignoring write protection.
func (h *Host) luaPoke(L *lua.LState) int {
	addr := checkAddr(L, 1)
	var b []byte
	for i := 2; i <= L.GetTop(); i++ {
		v := L.CheckInt(i)
		if v < 0 || v > 0xff {
			L.RaiseError("value %d does not fit in a byte", v)
			return 0
		}
		b = append(b, byte(v))
	}
	if err := h.mem.Load(addr, b); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// Check that argument n is a valid 16-bit address.
func checkAddr(L *lua.LState, n int) uint16 {
	v := L.CheckInt(n)
	if v < 0 || v > 0xffff {
		L.RaiseError("address %d out of range", v)
	}
	return uint16(v)
}

func (h *Host) luaNMI(L *lua.LState) int {
	h.cpu.TriggerNMI()
	return 0
}

func (h *Host) luaIRQ(L *lua.LState) int {
	h.cpu.TriggerIRQ()
	return 0
}

func (h *Host) luaClearIRQ(L *lua.LState) int {
	h.cpu.ClearIRQ()
	return 0
}

func (h *Host) luaReset(L *lua.LState) int {
	if err := h.cpu.Reset(); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (h *Host) luaCycles(L *lua.LState) int {
	L.Push(lua.LNumber(h.cpu.Cycles))
	return 1
}

// exec(line) runs a monitor command.
func (h *Host) luaExec(L *lua.LState) int {
	err := h.execLine(L.CheckString(1))
	if errors.Is(err, ErrQuit) {
		h.scriptQuit = true
	}
	if err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}
