// Copyright 2026 The Gestalt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	HexMode         bool   `doc:"parse unprefixed numbers as hex"`
	Trace           bool   `doc:"show each instruction while running"`
	MemDumpBytes    int    `doc:"bytes shown by memory dump"`
	DisasmLines     int    `doc:"lines shown by disassemble"`
	MaxStepLines    int    `doc:"trailing steps shown by step"`
	NextDisasmAddr  uint16 `doc:"where disassemble continues"`
	NextMemDumpAddr uint16 `doc:"where memory dump continues"`
}

func newSettings() *settings {
	return &settings{
		HexMode:      false,
		Trace:        false,
		MemDumpBytes: 64,
		DisasmLines:  10,
		MaxStepLines: 20,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	for _, sf := range reflect.VisibleFields(reflect.TypeFor[settings]()) {
		settingsFields = append(settingsFields, settingsField{
			name:  sf.Name,
			index: sf.Index[0],
			kind:  sf.Type.Kind(),
			typ:   sf.Type,
			doc:   sf.Tag.Get("doc"),
		})
	}
	for i := range settingsFields {
		f := &settingsFields[i]
		settingsTree.Add(strings.ToLower(f.name), f)
	}
}

// Display writes every setting, its value and its description to 'w'.
func (s *settings) Display(w io.Writer) {
	sv := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		v := sv.Field(f.index)
		var line string
		switch f.kind {
		case reflect.Uint16:
			line = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			line = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", line, f.doc)
	}
}

// Lookup resolves a possibly abbreviated setting name.
func (s *settings) Lookup(key string) (*settingsField, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return nil, fmt.Errorf("setting '%s' not found", key)
	}
	return f, nil
}

// Set assigns 'value' to the setting named 'key'.
func (s *settings) Set(key string, value any) error {
	f, err := s.Lookup(key)
	if err != nil {
		return err
	}

	in := reflect.ValueOf(value)
	if !in.Type().ConvertibleTo(f.typ) || (f.kind == reflect.Bool) != (in.Kind() == reflect.Bool) {
		return fmt.Errorf("setting '%s' cannot hold %v", f.name, value)
	}

	reflect.ValueOf(s).Elem().Field(f.index).Set(in.Convert(f.typ))
	return nil
}
