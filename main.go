// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/beevik/term"
	"github.com/gestalt-emu/gestalt/cpu"
	"github.com/gestalt-emu/gestalt/host"
	"github.com/gestalt-emu/gestalt/statsview"
)

var (
	arch      string
	stats     bool
	statsAddr string
)

func init() {
	flag.StringVar(&arch, "arch", "6502", "CPU architecture (6502 or 2a03)")
	flag.BoolVar(&stats, "stats", false, "serve runtime statistics over HTTP")
	flag.StringVar(&statsAddr, "stats-addr", statsview.DefaultAddress, "address of the statistics server")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: gestalt [file] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	a, err := parseArch(arch)
	if err != nil {
		exitOnError(err)
	}

	h, err := host.New(a)
	if err != nil {
		exitOnError(err)
	}

	if stats {
		statsview.Launch(os.Stdout, statsAddr)
	}

	// Break on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	// Run Lua scripts and command files named on the command line.
	for _, filename := range flag.Args() {
		err := runFile(h, filename)
		if errors.Is(err, host.ErrQuit) {
			return
		}
		if err != nil {
			exitOnError(err)
		}
	}

	// Run commands interactively.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	err = h.RunCommands(os.Stdin, os.Stdout, interactive)
	if err != nil && !errors.Is(err, host.ErrQuit) {
		exitOnError(err)
	}
}

func parseArch(s string) (cpu.Architecture, error) {
	switch strings.ToLower(s) {
	case "6502", "nmos":
		return cpu.NMOS, nil
	case "2a03", "rp2a03":
		return cpu.RP2A03, nil
	default:
		return 0, fmt.Errorf("unknown architecture '%s'", s)
	}
}

func runFile(h *host.Host, filename string) error {
	if strings.EqualFold(filepath.Ext(filename), ".lua") {
		return h.RunScript(filename, os.Stdout)
	}

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return h.RunCommands(file, os.Stdout, false)
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
