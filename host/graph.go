// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"io"

	"github.com/bradleyjkemp/memviz"
	"github.com/gestalt-emu/gestalt/cpu"
)

type regionSummary struct {
	Name  string
	Start uint16
	End   uint16
}

type pendingLines struct {
	Reset bool
	NMI   bool
	IRQ   bool
}

type machineSnapshot struct {
	Arch            string
	State           string
	Cycles          uint64
	LastPC          uint16
	Registers       cpu.Registers
	Pending         pendingLines
	Breakpoints     []*cpu.Breakpoint
	DataBreakpoints []*cpu.DataBreakpoint
	Regions         []regionSummary
}

// Capture the machine state in a form suitable for graphing. Bank contents
// are left out.
func (h *Host) snapshot() *machineSnapshot {
	s := &machineSnapshot{
		Arch:            h.cpu.Arch().String(),
		State:           h.cpu.State().String(),
		Cycles:          h.cpu.Cycles,
		LastPC:          h.cpu.LastPC,
		Registers:       h.cpu.Registers(),
		Breakpoints:     h.debugger.GetBreakpoints(),
		DataBreakpoints: h.debugger.GetDataBreakpoints(),
	}
	s.Pending.Reset, s.Pending.NMI, s.Pending.IRQ = h.cpu.Pending()
	for _, r := range h.mem.Regions() {
		s.Regions = append(s.Regions, regionSummary{r.Name, r.Start, r.End})
	}
	return s
}

// Write the machine state to 'w' as a Graphviz dot graph.
func (h *Host) writeGraph(w io.Writer) {
	memviz.Map(w, h.snapshot())
}
