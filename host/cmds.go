// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

// A command describes one monitor command. The command tree stores a
// pointer to it as the tree entry's data.
type command struct {
	name        string
	brief       string
	description string
	usage       string
	handler     func(h *Host, c cmd.Selection) error
}

// A commandGroup is a subtree of related commands.
type commandGroup struct {
	name     string
	brief    string
	commands []*command
}

var (
	cmds      *cmd.Tree
	topLevel  []*command
	groups    []*commandGroup
	shortcuts = [][2]string{
		{"b", "breakpoint"},
		{"bp", "breakpoint"},
		{"ba", "breakpoint add"},
		{"br", "breakpoint remove"},
		{"bl", "breakpoint list"},
		{"be", "breakpoint enable"},
		{"bd", "breakpoint disable"},
		{"d", "disassemble"},
		{"e", "evaluate"},
		{"db", "databreakpoint"},
		{"dbp", "databreakpoint"},
		{"dbl", "databreakpoint list"},
		{"dba", "databreakpoint add"},
		{"dbr", "databreakpoint remove"},
		{"dbe", "databreakpoint enable"},
		{"dbd", "databreakpoint disable"},
		{"i", "interrupt"},
		{"m", "memory dump"},
		{"mm", "memory map"},
		{"ms", "memory set"},
		{"r", "register"},
		{"s", "step over"},
		{"si", "step in"},
		{"so", "step out"},
		{"?", "help"},
		{".", "register"},
	}
)

func init() {
	topLevel = []*command{
		{
			name:        "help",
			description: "Display help for a command.",
			usage:       "help [<command>]",
			handler:     (*Host).cmdHelp,
		},
		{
			name:  "disassemble",
			brief: "Disassemble code",
			description: "Disassemble machine code starting at the requested" +
				" address. The number of instruction lines to disassemble may be" +
				" specified as an option. If no address is specified, the" +
				" disassembly continues from where the last disassembly left off.",
			usage:   "disassemble [<address>] [<lines>]",
			handler: (*Host).cmdDisassemble,
		},
		{
			name:  "evaluate",
			brief: "Evaluate an expression",
			description: "Evaluate an integer expression. Expressions may use" +
				" register and flag names, '.' for the program counter, and the" +
				" operators + - * / % << >> & ^ | and ~. Write the expression" +
				" without spaces.",
			usage:   "evaluate <expression>",
			handler: (*Host).cmdEvaluate,
		},
		{
			name:  "execute",
			brief: "Execute a monitor command file",
			description: "Load a file of monitor commands from disk and execute" +
				" the commands it contains.",
			usage:   "execute <filename>",
			handler: (*Host).cmdExecute,
		},
		{
			name:  "graph",
			brief: "Write a graph of the CPU state",
			description: "Write the CPU registers, interrupt state, breakpoints" +
				" and memory map to a file in Graphviz dot format.",
			usage:   "graph <filename>",
			handler: (*Host).cmdGraph,
		},
		{
			name:  "load",
			brief: "Load a binary file",
			description: "Load the contents of a raw binary file into the" +
				" emulated system's memory at the specified address. Loading" +
				" ignores ROM write protection. The program counter is moved" +
				" to the load address unless the image covers the reset vector.",
			usage:   "load <filename> <address>",
			handler: (*Host).cmdLoad,
		},
		{
			name:        "quit",
			brief:       "Quit the program",
			description: "Quit the program.",
			usage:       "quit",
			handler:     (*Host).cmdQuit,
		},
		{
			name:  "register",
			brief: "View or change register values",
			description: "When used without arguments, this command displays the current" +
				" contents of the CPU registers. When used with arguments, this" +
				" command changes the value of a register or one of the CPU's status" +
				" flags. Allowed register names include A, X, Y, PC and SP. Allowed status" +
				" flag names include Negative, Overflow, Decimal, Interrupt, Zero and" +
				" Carry, and may be abbreviated.",
			usage:   "register [<name> <value>]",
			handler: (*Host).cmdRegister,
		},
		{
			name:  "run",
			brief: "Run the CPU",
			description: "Run the CPU until a breakpoint is hit, the CPU" +
				" faults, or the user types Ctrl-C. If an address is given, the" +
				" program counter is moved there first.",
			usage:   "run [<address>]",
			handler: (*Host).cmdRun,
		},
		{
			name:  "script",
			brief: "Run a Lua script",
			description: "Run a Lua script that drives the emulator. Scripts may" +
				" call step, reg, setreg, peek, poke, nmi, irq, reset, cycles and" +
				" exec.",
			usage:   "script <filename>",
			handler: (*Host).cmdScript,
		},
		{
			name:  "set",
			brief: "Set a configuration variable",
			description: "Set the value of a configuration variable. To see the" +
				" current values of all configuration variables, type set" +
				" without any arguments.",
			usage:   "set [<var> <value>]",
			handler: (*Host).cmdSet,
		},
	}

	groups = []*commandGroup{
		{
			name:  "breakpoint",
			brief: "Breakpoint commands",
			commands: []*command{
				{
					name:        "list",
					brief:       "List breakpoints",
					description: "List all current breakpoints.",
					usage:       "breakpoint list",
					handler:     (*Host).cmdBreakpointList,
				},
				{
					name:  "add",
					brief: "Add a breakpoint",
					description: "Add a breakpoint at the specified address." +
						" The breakpoint starts enabled.",
					usage:   "breakpoint add <address>",
					handler: (*Host).cmdBreakpointAdd,
				},
				{
					name:        "remove",
					brief:       "Remove a breakpoint",
					description: "Remove a breakpoint at the specified address.",
					usage:       "breakpoint remove <address>",
					handler:     (*Host).cmdBreakpointRemove,
				},
				{
					name:        "enable",
					brief:       "Enable a breakpoint",
					description: "Enable a previously added breakpoint.",
					usage:       "breakpoint enable <address>",
					handler:     (*Host).cmdBreakpointEnable,
				},
				{
					name:  "disable",
					brief: "Disable a breakpoint",
					description: "Disable a previously added breakpoint. This" +
						" prevents the breakpoint from being hit when running the" +
						" CPU.",
					usage:   "breakpoint disable <address>",
					handler: (*Host).cmdBreakpointDisable,
				},
			},
		},
		{
			name:  "databreakpoint",
			brief: "Data breakpoint commands",
			commands: []*command{
				{
					name:        "list",
					brief:       "List data breakpoints",
					description: "List all current data breakpoints.",
					usage:       "databreakpoint list",
					handler:     (*Host).cmdDataBreakpointList,
				},
				{
					name:  "add",
					brief: "Add a data breakpoint",
					description: "Add a new data breakpoint at the specified" +
						" memory address. When the CPU stores data at this address," +
						" the breakpoint will stop the CPU. Optionally, a byte" +
						" value may be specified, and the CPU will stop only" +
						" when this value is stored. The data breakpoint starts" +
						" enabled.",
					usage:   "databreakpoint add <address> [<value>]",
					handler: (*Host).cmdDataBreakpointAdd,
				},
				{
					name:  "remove",
					brief: "Remove a data breakpoint",
					description: "Remove a previously added data breakpoint at" +
						" the specified memory address.",
					usage:   "databreakpoint remove <address>",
					handler: (*Host).cmdDataBreakpointRemove,
				},
				{
					name:        "enable",
					brief:       "Enable a data breakpoint",
					description: "Enable a previously added data breakpoint.",
					usage:       "databreakpoint enable <address>",
					handler:     (*Host).cmdDataBreakpointEnable,
				},
				{
					name:        "disable",
					brief:       "Disable a data breakpoint",
					description: "Disable a previously added data breakpoint.",
					usage:       "databreakpoint disable <address>",
					handler:     (*Host).cmdDataBreakpointDisable,
				},
			},
		},
		{
			name:  "interrupt",
			brief: "Interrupt commands",
			commands: []*command{
				{
					name:  "nmi",
					brief: "Signal a non-maskable interrupt",
					description: "Latch a non-maskable interrupt. It is serviced" +
						" at the start of the next step.",
					usage:   "interrupt nmi",
					handler: (*Host).cmdInterruptNMI,
				},
				{
					name:  "irq",
					brief: "Assert the interrupt request line",
					description: "Assert the maskable interrupt line. The" +
						" interrupt is serviced at the first step taken while" +
						" the interrupt disable flag is clear.",
					usage:   "interrupt irq",
					handler: (*Host).cmdInterruptIRQ,
				},
				{
					name:        "clear",
					brief:       "Deassert the interrupt request line",
					description: "Deassert the maskable interrupt line.",
					usage:       "interrupt clear",
					handler:     (*Host).cmdInterruptClear,
				},
				{
					name:  "reset",
					brief: "Reset the CPU",
					description: "Run the reset sequence, loading the program" +
						" counter from the reset vector.",
					usage:   "interrupt reset",
					handler: (*Host).cmdInterruptReset,
				},
			},
		},
		{
			name:  "memory",
			brief: "Memory commands",
			commands: []*command{
				{
					name:  "dump",
					brief: "Dump memory at address",
					description: "Dump the contents of memory starting from the" +
						" specified address. The number of bytes to dump may be" +
						" specified as an option. If no address is specified, the" +
						" memory dump continues from where the last dump left off.",
					usage:   "memory dump [<address>] [<bytes>]",
					handler: (*Host).cmdMemoryDump,
				},
				{
					name:  "set",
					brief: "Set memory at address",
					description: "Set the contents of memory starting from the specified" +
						" address. The values to assign should be a series of" +
						" space-separated byte values.",
					usage:   "memory set <address> <byte> [<byte> ...]",
					handler: (*Host).cmdMemorySet,
				},
				{
					name:        "map",
					brief:       "Display the memory map",
					description: "Display the regions mapped into the address space.",
					usage:       "memory map",
					handler:     (*Host).cmdMemoryMap,
				},
			},
		},
		{
			name:  "step",
			brief: "Step the debugger",
			commands: []*command{
				{
					name:  "in",
					brief: "Step into next instruction",
					description: "Step the CPU by a single instruction. If the" +
						" instruction is a subroutine call, step into the subroutine." +
						" The number of steps may be specified as an option.",
					usage:   "step in [<count>]",
					handler: (*Host).cmdStepIn,
				},
				{
					name:  "over",
					brief: "Step over next instruction",
					description: "Step the CPU by a single instruction. If the" +
						" instruction is a subroutine call, step over the subroutine." +
						" The number of steps may be specified as an option.",
					usage:   "step over [<count>]",
					handler: (*Host).cmdStepOver,
				},
				{
					name:  "out",
					brief: "Step out of the current subroutine",
					description: "Step the CPU until it executes an RTS or RTI" +
						" instruction. This has the effect of stepping until the" +
						" currently running subroutine has returned.",
					usage:   "step out",
					handler: (*Host).cmdStepOut,
				},
			},
		},
	}

	root := cmd.NewTree(cmd.TreeDescriptor{Name: "gestalt"})
	for _, c := range topLevel {
		root.AddCommand(c.descriptor())
	}
	for _, g := range groups {
		sub := root.AddSubtree(cmd.TreeDescriptor{Name: g.name, Brief: g.brief})
		for _, c := range g.commands {
			sub.AddCommand(c.descriptor())
		}
	}
	for _, s := range shortcuts {
		root.AddShortcut(s[0], s[1])
	}
	cmds = root
}

func (c *command) descriptor() cmd.CommandDescriptor {
	return cmd.CommandDescriptor{
		Name:        c.name,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	}
}

// Find the command group named 'name', or nil.
func findGroup(name string) *commandGroup {
	for _, g := range groups {
		if g.name == name {
			return g
		}
	}
	return nil
}
