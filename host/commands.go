// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"
	"github.com/gestalt-emu/gestalt/cpu"
)

// Return the command definition behind a selection.
func selected(c cmd.Selection) *command {
	return c.Command.Data.(*command)
}

// Parse the i'th argument as an address. If the argument is missing, the
// command's help text is displayed.
func (h *Host) argAddr(c cmd.Selection, i int) (uint16, bool) {
	if len(c.Args) <= i {
		h.displayHelpText(selected(c))
		return 0, false
	}
	addr, err := h.parseAddr(c.Args[i])
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	return addr, true
}

// Parse an optional count argument.
func (h *Host) argCount(c cmd.Selection, i int, def int) (int, bool) {
	if len(c.Args) <= i {
		return def, true
	}
	n, err := h.evalExpr(c.Args[i])
	if err != nil {
		h.printf("%v\n", err)
		return 0, false
	}
	if n < 0 || n > 0xffff {
		h.printf("count '%s' out of range\n", c.Args[i])
		return 0, false
	}
	return int(n), true
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled  Hits")
	h.println("----- -------  ----")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %-7v  %d\n", b.Address, !b.Disabled, b.Hits)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if addr, ok := h.argAddr(c, 0); ok {
		h.debugger.AddBreakpoint(addr)
		h.printf("Breakpoint added at $%04X.\n", addr)
	}
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if b := h.findBreakpoint(c); b != nil {
		h.debugger.RemoveBreakpoint(b.Address)
		h.printf("Breakpoint at $%04X removed.\n", b.Address)
	}
	return nil
}

func (h *Host) cmdBreakpointEnable(c cmd.Selection) error {
	if b := h.findBreakpoint(c); b != nil {
		b.Disabled = false
		h.printf("Breakpoint at $%04X enabled.\n", b.Address)
	}
	return nil
}

func (h *Host) cmdBreakpointDisable(c cmd.Selection) error {
	if b := h.findBreakpoint(c); b != nil {
		b.Disabled = true
		h.printf("Breakpoint at $%04X disabled.\n", b.Address)
	}
	return nil
}

func (h *Host) findBreakpoint(c cmd.Selection) *cpu.Breakpoint {
	addr, ok := h.argAddr(c, 0)
	if !ok {
		return nil
	}
	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
	}
	return b
}

func (h *Host) cmdDataBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled  Value  Hits")
	h.println("----- -------  -----  ----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		value := "<none>"
		if b.Conditional {
			value = fmt.Sprintf("$%02X", b.Value)
		}
		h.printf("$%04X %-7v  %-6s %d\n", b.Address, !b.Disabled, value, b.Hits)
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c cmd.Selection) error {
	addr, ok := h.argAddr(c, 0)
	if !ok {
		return nil
	}

	if len(c.Args) > 1 {
		v, err := h.parseByte(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, v)
		h.printf("Conditional data breakpoint added at $%04X for value $%02X.\n", addr, v)
		return nil
	}

	h.debugger.AddDataBreakpoint(addr)
	h.printf("Data breakpoint added at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointRemove(c cmd.Selection) error {
	if b := h.findDataBreakpoint(c); b != nil {
		h.debugger.RemoveDataBreakpoint(b.Address)
		h.printf("Data breakpoint at $%04X removed.\n", b.Address)
	}
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c cmd.Selection) error {
	if b := h.findDataBreakpoint(c); b != nil {
		b.Disabled = false
		h.printf("Data breakpoint at $%04X enabled.\n", b.Address)
	}
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c cmd.Selection) error {
	if b := h.findDataBreakpoint(c); b != nil {
		b.Disabled = true
		h.printf("Data breakpoint at $%04X disabled.\n", b.Address)
	}
	return nil
}

func (h *Host) findDataBreakpoint(c cmd.Selection) *cpu.DataBreakpoint {
	addr, ok := h.argAddr(c, 0)
	if !ok {
		return nil
	}
	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
	}
	return b
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	addr := h.settings.NextDisasmAddr
	if addr == 0 {
		addr = h.cpu.Reg.PC
	}
	if len(c.Args) > 0 {
		var ok bool
		if addr, ok = h.argAddr(c, 0); !ok {
			return nil
		}
	}

	lines, ok := h.argCount(c, 1, h.settings.DisasmLines)
	if !ok {
		return nil
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	// Repeating the command continues where this one stopped.
	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = nil
	return nil
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayHelpText(selected(c))
		return nil
	}

	v, err := h.evalExpr(strings.Join(c.Args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("$%04X (%d)\n", uint16(v), v)
	return nil
}

func (h *Host) cmdExecute(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(selected(c))
		return nil
	}

	file, err := os.Open(c.Args[0])
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(c.Args[0]), err)
		return nil
	}
	defer file.Close()

	return h.process(file, false)
}

func (h *Host) cmdGraph(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(selected(c))
		return nil
	}

	file, err := os.Create(c.Args[0])
	if err != nil {
		h.printf("Failed to create '%s': %v\n", filepath.Base(c.Args[0]), err)
		return nil
	}
	defer file.Close()

	h.writeGraph(file)
	h.printf("Graph written to '%s'.\n", filepath.Base(c.Args[0]))
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.println("Commands:")
		for _, t := range topLevel {
			if t.brief != "" {
				h.printf("    %-15s  %s\n", t.name, t.brief)
			}
		}
		for _, g := range groups {
			h.printf("    %-15s  %s\n", g.name, g.brief)
		}
		return nil
	}

	if g := findGroup(strings.ToLower(c.Args[0])); g != nil && len(c.Args) == 1 {
		h.printf("%s commands:\n", g.name)
		for _, sub := range g.commands {
			h.printf("    %-15s  %s\n", sub.name, sub.brief)
		}
		return nil
	}

	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil || s.Command == nil {
		h.println("Command not found.")
		return nil
	}

	sc := selected(s)
	if sc.usage != "" {
		h.printf("Syntax: %s\n\n", sc.usage)
	}
	switch {
	case sc.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, sc.description))
	case sc.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, sc.brief))
	}
	return nil
}

func (h *Host) cmdInterruptNMI(c cmd.Selection) error {
	h.cpu.TriggerNMI()
	h.println("NMI latched.")
	return nil
}

func (h *Host) cmdInterruptIRQ(c cmd.Selection) error {
	h.cpu.TriggerIRQ()
	h.println("IRQ line asserted.")
	return nil
}

func (h *Host) cmdInterruptClear(c cmd.Selection) error {
	h.cpu.ClearIRQ()
	h.println("IRQ line cleared.")
	return nil
}

func (h *Host) cmdInterruptReset(c cmd.Selection) error {
	if err := h.cpu.Reset(); err != nil {
		h.printf("ERROR: %v\n", err)
		return nil
	}
	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	h.displayPC()
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText(selected(c))
		return nil
	}

	addr, ok := h.argAddr(c, 1)
	if !ok {
		return nil
	}

	h.load(c.Args[0], addr)
	return nil
}

// Load a raw binary image into memory. If the image covers the reset
// vector, the CPU is reset. Otherwise the program counter moves to the
// load address.
func (h *Host) load(filename string, addr uint16) {
	b, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return
	}

	if err := h.mem.Load(addr, b); err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return
	}
	h.printf("Loaded '%s' to $%04X..$%04X.\n", filepath.Base(filename), addr, int(addr)+len(b)-1)

	end := int(addr) + len(b)
	if int(addr) <= 0xfffc && end >= 0xfffe {
		if err := h.cpu.Reset(); err != nil {
			h.printf("ERROR: %v\n", err)
			return
		}
	} else {
		h.cpu.SetPC(addr)
	}

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	h.displayPC()
}

func (h *Host) cmdMemoryDump(c cmd.Selection) error {
	addr := h.settings.NextMemDumpAddr
	if len(c.Args) > 0 {
		var ok bool
		if addr, ok = h.argAddr(c, 0); !ok {
			return nil
		}
	}

	bytes, ok := h.argCount(c, 1, h.settings.MemDumpBytes)
	if !ok {
		return nil
	}

	h.dumpMemory(addr, uint16(bytes))

	h.settings.NextMemDumpAddr = addr + uint16(bytes)
	h.lastCmd.Args = nil
	return nil
}

func (h *Host) cmdMemorySet(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText(selected(c))
		return nil
	}

	addr, ok := h.argAddr(c, 0)
	if !ok {
		return nil
	}

	b := make([]byte, 0, len(c.Args)-1)
	for _, s := range c.Args[1:] {
		v, err := h.parseByte(s)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		b = append(b, v)
	}

	if err := h.mem.Load(addr, b); err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.dumpMemory(addr, uint16(len(b)))
	return nil
}

func (h *Host) cmdMemoryMap(c cmd.Selection) error {
	h.println("Start End   Size   Region")
	h.println("----- ----- ------ ------")
	for _, r := range h.mem.Regions() {
		h.printf("$%04X $%04X $%04X  %s\n", r.Start, r.End, r.Bank.Size(), r.Name)
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return ErrQuit
}

func (h *Host) cmdRegister(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayPC()
		return nil
	}
	if len(c.Args) < 2 {
		h.displayHelpText(selected(c))
		return nil
	}

	r, err := lookupRegister(strings.ToLower(c.Args[0]))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	var v int
	if r.size == 1 {
		var b bool
		b, err = stringToBool(c.Args[1])
		v = boolToInt(b)
	} else {
		var n int64
		n, err = h.evalExpr(strings.Join(c.Args[1:], " "))
		v = int(n)
	}
	if err == nil {
		err = r.assign(&h.cpu.Reg, v)
	}
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	switch r.size {
	case 1:
		h.printf("Flag %s set to %v.\n", r.name, v != 0)
	case 8:
		h.printf("Register %s set to $%02X.\n", strings.ToUpper(r.name), v)
	default:
		h.printf("Register %s set to $%04X.\n", strings.ToUpper(r.name), v)
	}
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	if len(c.Args) > 0 {
		pc, ok := h.argAddr(c, 0)
		if !ok {
			return nil
		}
		h.cpu.SetPC(pc)
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.run(nil)
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdScript(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(selected(c))
		return nil
	}

	err := h.runScript(c.Args[0])
	switch {
	case errors.Is(err, ErrQuit):
		return err
	case err != nil:
		h.printf("Script failed: %v\n", err)
	}
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(selected(c))

	default:
		key, value := c.Args[0], strings.Join(c.Args[1:], " ")

		f, err := h.settings.Lookup(key)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}

		switch f.kind {
		case reflect.Bool:
			var b bool
			if b, err = stringToBool(value); err == nil {
				err = h.settings.Set(key, b)
			}
		default:
			var n int64
			n, err = h.evalExpr(value)
			switch {
			case err != nil:
			case n < 0 || n > 0xffff:
				err = fmt.Errorf("value '%s' out of range", value)
			default:
				err = h.settings.Set(key, int(n))
			}
		}

		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.println("Setting updated.")
	}
	return nil
}

func (h *Host) cmdStepIn(c cmd.Selection) error {
	return h.stepRepeat(c, h.step)
}

func (h *Host) cmdStepOver(c cmd.Selection) error {
	return h.stepRepeat(c, h.stepOver)
}

// Perform 'count' steps, displaying the last few.
func (h *Host) stepRepeat(c cmd.Selection, stepFn func()) error {
	count, ok := h.argCount(c, 0, 1)
	if !ok {
		return nil
	}

	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		stepFn()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines && h.state == stateRunning:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdStepOut(c cmd.Selection) error {
	h.stepOut()
	if h.state == stateRunning {
		h.displayPC()
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}
