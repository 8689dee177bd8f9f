// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rnx16

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/readynas-tools/rnx16oled/bitbang"
)

// Pins names the six GPIO lines wired to the display controller.
type Pins struct {
	SD    string // serial data
	CLK   string // serial clock
	DC    string // command/data select
	CS    string // chip-select, active low
	Ctrl  string // controller enable
	Reset string // controller reset, active low
}

// DefaultPins is the RNX16 mainboard wiring on gpiochip0.
var DefaultPins = Pins{
	SD:    "GPIO54",
	CLK:   "GPIO52",
	DC:    "GPIO32",
	CS:    "GPIO50",
	Ctrl:  "GPIO6",
	Reset: "GPIO7",
}

// Open opens the front panel display with the stock RNX16 wiring.
//
// periph.io/x/host/v3 must have been initialized first so the GPIO registry
// is populated.
func Open(opts *Opts) (*Dev, error) {
	return OpenPins(&DefaultPins, opts)
}

// OpenPins opens the display on an explicit wiring.
//
// Acquisition is all or nothing: the first line that cannot be resolved or
// driven aborts with an error naming it, and no usable state is left behind.
func OpenPins(p *Pins, opts *Opts) (*Dev, error) {
	lines := [6]gpio.PinOut{}
	for i, name := range []string{p.SD, p.CLK, p.DC, p.CS, p.Ctrl, p.Reset} {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("rnx16: GPIO line %q is not available", name)
		}
		lines[i] = pin
	}
	c, err := bitbang.New(lines[0], lines[1], lines[2], lines[3])
	if err != nil {
		return nil, err
	}
	return New(c, lines[4], lines[5], opts)
}
