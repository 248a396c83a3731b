// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package statsview serves runtime statistics of the emulator process over
// HTTP, using github.com/go-echarts/statsview.
//
// After launch, graphical statistics are viewable at:
//
//	<addr>/debug/statsview
//
// And standard Go pprof statistics at:
//
//	<addr>/debug/pprof/
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is the address the stats server listens on when none is
// given.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine and reports its URL to
// 'output'.
func Launch(output io.Writer, addr string) {
	if addr == "" {
		addr = DefaultAddress
	}

	viewer.SetConfiguration(viewer.WithAddr(addr))
	go statsview.New().Start()

	fmt.Fprintf(output, "stats server available at %s%s\n", addr, url)
}
