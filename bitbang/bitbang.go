// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang emulates a clocked serial link over discrete GPIO lines.
//
// The protocol is the write-only half of SPI mode 0: the data line is valid
// while the clock is low and the peripheral samples it on the rising edge,
// most significant bit first. Two extra lines frame the stream: a
// command/data select line telling the controller whether the clocked byte
// is an instruction or pixel data, and an active-low chip-select asserted
// around a transaction.
//
// There is no hardware assistance of any kind; throughput is bounded by the
// cost of toggling a GPIO line, so callers streaming many bytes should share
// a single chip-select assertion via Begin, WriteByte and End instead of
// paying the framing overhead of Tx per byte.
package bitbang

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Conn is a clocked serial connection over four GPIO lines.
//
// It carries no state besides the line handles. It is not safe for
// concurrent use; the caller serializes access.
type Conn struct {
	sd  gpio.PinOut // serial data, sampled on the rising clock edge
	clk gpio.PinOut // serial clock
	dc  gpio.PinOut // select line: low for commands, high for data
	cs  gpio.PinOut // chip-select, active low
}

// New returns a connection over the given lines and drives every line to its
// idle level: select high, chip-select deasserted.
//
// Each line must already be usable as an output. The first line that cannot
// be driven aborts with an error naming it.
func New(sd, clk, dc, cs gpio.PinOut) (*Conn, error) {
	c := &Conn{sd: sd, clk: clk, dc: dc, cs: cs}
	for _, l := range []gpio.PinOut{sd, clk, dc, cs} {
		if err := l.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("bitbang: failed to drive %s: %w", l, err)
		}
	}
	return c, nil
}

func (c *Conn) String() string {
	return fmt.Sprintf("bitbang{%s, %s, %s, %s}", c.sd, c.clk, c.dc, c.cs)
}

// Tx transmits a single byte framed as a command or data byte.
//
// On return the chip-select is deasserted and the select line is back at its
// idle (data) level, whatever happened in between. There is no partial-byte
// recovery: a failed line drive aborts the transaction where it stands.
func (c *Conn) Tx(b byte, cmd bool) error {
	if err := c.Begin(cmd); err != nil {
		return err
	}
	if err := c.WriteByte(b); err != nil {
		return err
	}
	return c.End()
}

// SendCommand transmits one framed command byte.
func (c *Conn) SendCommand(b byte) error {
	return c.Tx(b, true)
}

// SendData transmits one framed data byte.
func (c *Conn) SendData(b byte) error {
	return c.Tx(b, false)
}

// Begin asserts the chip-select and sets the select line for command or data
// bytes, starting a multi-byte transaction.
func (c *Conn) Begin(cmd bool) error {
	if err := c.cs.Out(gpio.Low); err != nil {
		return err
	}
	return c.Mode(cmd)
}

// Mode switches the select line between command and data level without
// breaking the current chip-select frame.
//
// The select line polarity is the inverse of cmd: low selects commands.
func (c *Conn) Mode(cmd bool) error {
	return c.dc.Out(gpio.Level(!cmd))
}

// WriteByte clocks out one byte, most significant bit first, without any
// framing. The caller owns the chip-select via Begin and End.
func (c *Conn) WriteByte(b byte) error {
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if err := c.clk.Out(gpio.Low); err != nil {
			return err
		}
		if err := c.sd.Out(gpio.Level(b&mask != 0)); err != nil {
			return err
		}
		// The controller samples the data line on this edge.
		if err := c.clk.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

// End deasserts the chip-select and returns the select line to its idle
// level, closing the transaction opened by Begin.
func (c *Conn) End() error {
	if err := c.cs.Out(gpio.High); err != nil {
		return err
	}
	return c.dc.Out(gpio.High)
}

var _ fmt.Stringer = &Conn{}
