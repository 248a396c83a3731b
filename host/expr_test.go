// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"testing"
)

type mapResolver map[string]int64

func (m mapResolver) resolveIdentifier(s string) (int64, error) {
	if v, ok := m[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func TestExprParser(t *testing.T) {
	r := mapResolver{"pc": 0x1000, "x": 3, "label_1": 0x40, ".": 0x1234}

	tests := []struct {
		expr    string
		hexMode bool
		result  int64
	}{
		{"1", false, 1},
		{"$ff", false, 0xff},
		{"0x1F", false, 0x1f},
		{"0b101", false, 5},
		{"%1010", false, 10},
		{"'A'", false, 65},
		{"1+2*3", false, 7},
		{"(1+2)*3", false, 9},
		{"10-4-3", false, 3},
		{"64/4/2", false, 8},
		{"7%4", false, 3},
		{"7 % %11", false, 1},
		{"-5+2", false, -3},
		{"2*-3", false, -6},
		{"--4", false, 4},
		{"~0&$ff", false, 0xff},
		{"1<<4|1", false, 0x11},
		{"$f0>>4", false, 0x0f},
		{"$ff^$0f", false, 0xf0},
		{"1|2&3", false, 3},
		{"pc+x", false, 0x1003},
		{".+1", false, 0x1235},
		{"label_1*2", false, 0x80},
		{" ( pc - 1 ) ", false, 0xfff},
		{"10", true, 0x10},
		{"ff+1", true, 0x100},
		{"0b", true, 0x0b},
		{"pc+10", true, 0x1010},
		{"$10+0x10", true, 0x20},
	}

	p := newExprParser()
	for _, tt := range tests {
		p.hexMode = tt.hexMode
		v, err := p.Parse(tt.expr, r)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.expr, err)
			continue
		}
		if v != tt.result {
			t.Errorf("%q: result incorrect. exp: %d, got: %d", tt.expr, tt.result, v)
		}
	}
}

func TestExprParserErrors(t *testing.T) {
	r := mapResolver{"pc": 0x1000}

	tests := []struct {
		expr string
		err  error
	}{
		{"", errExprSyntax},
		{"1+", errExprSyntax},
		{"*2", errExprSyntax},
		{"(1+2", errExprSyntax},
		{"1+2)", errExprSyntax},
		{"()", errExprSyntax},
		{"1 2", errExprSyntax},
		{"12ab", errExprSyntax},
		{"$", errExprSyntax},
		{"'A", errExprSyntax},
		{"1 ~ 2", errExprSyntax},
		{"1@2", errExprSyntax},
		{"4/0", errDivideByZero},
		{"4%0", errDivideByZero},
		{"1<<64", errShiftOutOfRange},
		{"1>>-1", errShiftOutOfRange},
	}

	p := newExprParser()
	for _, tt := range tests {
		_, err := p.Parse(tt.expr, r)
		if !errors.Is(err, tt.err) {
			t.Errorf("%q: expected %v, got %v", tt.expr, tt.err, err)
		}
	}

	if _, err := p.Parse("pc+bogus", r); err == nil || err.Error() != "identifier 'bogus' not found" {
		t.Errorf("unresolved identifier error incorrect: %v", err)
	}

	// A failed parse leaves no state behind.
	if v, err := p.Parse("2+2", r); err != nil || v != 4 {
		t.Errorf("parse after error incorrect: %d, %v", v, err)
	}
}
