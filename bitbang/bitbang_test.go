// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bitbang

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// tracePin records every level written to it into a trace shared by all the
// pins of one connection, so tests can assert the exact toggle sequence.
type tracePin struct {
	gpiotest.Pin
	trace *[]string
}

func (p *tracePin) Out(l gpio.Level) error {
	v := 0
	if l == gpio.High {
		v = 1
	}
	*p.trace = append(*p.trace, fmt.Sprintf("%s=%d", p.N, v))
	return p.Pin.Out(l)
}

type failPin struct {
	gpiotest.Pin
	remaining int
}

var errInjected = errors.New("injected line failure")

func (p *failPin) Out(l gpio.Level) error {
	if p.remaining <= 0 {
		return errInjected
	}
	p.remaining--
	return p.Pin.Out(l)
}

func newTraced(t *testing.T) (*Conn, *[]string) {
	trace := &[]string{}
	mk := func(name string) *tracePin {
		return &tracePin{Pin: gpiotest.Pin{N: name}, trace: trace}
	}
	c, err := New(mk("sd"), mk("clk"), mk("dc"), mk("cs"))
	if err != nil {
		t.Fatal(err)
	}
	// Drop the idle levels driven by New.
	*trace = nil
	return c, trace
}

// byteTrace is the clock and data sequence for one byte, MSB first.
func byteTrace(b byte) []string {
	var s []string
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		bit := 0
		if b&mask != 0 {
			bit = 1
		}
		s = append(s, "clk=0", fmt.Sprintf("sd=%d", bit), "clk=1")
	}
	return s
}

func TestNewIdleLevels(t *testing.T) {
	trace := &[]string{}
	mk := func(name string) *tracePin {
		return &tracePin{Pin: gpiotest.Pin{N: name}, trace: trace}
	}
	if _, err := New(mk("sd"), mk("clk"), mk("dc"), mk("cs")); err != nil {
		t.Fatal(err)
	}
	want := []string{"sd=1", "clk=1", "dc=1", "cs=1"}
	if diff := cmp.Diff(*trace, want); diff != "" {
		t.Errorf("New() idle trace difference (-got +want):\n%s", diff)
	}
}

func TestTxTrace(t *testing.T) {
	for _, tc := range []struct {
		name string
		b    byte
		cmd  bool
		dc   string
	}{
		{name: "command", b: 0xA5, cmd: true, dc: "dc=0"},
		{name: "data", b: 0xA5, cmd: false, dc: "dc=1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, trace := newTraced(t)
			if err := c.Tx(tc.b, tc.cmd); err != nil {
				t.Fatal(err)
			}
			want := append([]string{"cs=0", tc.dc}, byteTrace(tc.b)...)
			want = append(want, "cs=1", "dc=1")
			if diff := cmp.Diff(*trace, want); diff != "" {
				t.Errorf("Tx(%#02x, %t) trace difference (-got +want):\n%s", tc.b, tc.cmd, diff)
			}
		})
	}
}

// A command and a data byte must produce the same clock and data sequence;
// only the select line level may differ.
func TestCommandDataDifferOnlyInSelect(t *testing.T) {
	strip := func(trace []string) []string {
		var s []string
		for _, e := range trace {
			if !strings.HasPrefix(e, "dc=") {
				s = append(s, e)
			}
		}
		return s
	}
	for _, b := range []byte{0x00, 0x01, 0x80, 0xA5, 0xFF} {
		c1, t1 := newTraced(t)
		if err := c1.Tx(b, true); err != nil {
			t.Fatal(err)
		}
		c2, t2 := newTraced(t)
		if err := c2.Tx(b, false); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(strip(*t1), strip(*t2)); diff != "" {
			t.Errorf("Tx(%#02x) command vs data clock/data difference:\n%s", b, diff)
		}
		if diff := cmp.Diff(*t1, *t2); diff == "" {
			t.Errorf("Tx(%#02x) command and data traces are identical; select line never moved", b)
		}
	}
}

// Replays the trace the way the controller would: sample the data line on
// every rising clock edge and expect exactly 8 edges per byte, MSB first.
func TestWriteByteSampledOnRisingEdge(t *testing.T) {
	for _, b := range []byte{0x00, 0x01, 0x80, 0xA5, 0x5A, 0xFF} {
		c, trace := newTraced(t)
		if err := c.Begin(false); err != nil {
			t.Fatal(err)
		}
		if err := c.WriteByte(b); err != nil {
			t.Fatal(err)
		}
		if err := c.End(); err != nil {
			t.Fatal(err)
		}

		clk := 1
		sd := 1
		edges := 0
		var got byte
		for _, e := range *trace {
			switch e {
			case "sd=0":
				sd = 0
			case "sd=1":
				sd = 1
			case "clk=0":
				clk = 0
			case "clk=1":
				if clk == 0 {
					got = got<<1 | byte(sd)
					edges++
				}
				clk = 1
			}
		}
		if edges != 8 {
			t.Errorf("WriteByte(%#02x): %d rising edges, want 8", b, edges)
		}
		if got != b {
			t.Errorf("WriteByte(%#02x): controller sampled %#02x", b, got)
		}
	}
}

func TestTxLineFailure(t *testing.T) {
	trace := &[]string{}
	sd := &tracePin{Pin: gpiotest.Pin{N: "sd"}, trace: trace}
	dc := &tracePin{Pin: gpiotest.Pin{N: "dc"}, trace: trace}
	cs := &tracePin{Pin: gpiotest.Pin{N: "cs"}, trace: trace}
	clk := &failPin{Pin: gpiotest.Pin{N: "clk"}}
	clk.remaining = 1 // survives New, fails on the first clocked bit
	c, err := New(sd, clk, dc, cs)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Tx(0xFF, false); !errors.Is(err, errInjected) {
		t.Errorf("Tx() = %v, want injected failure", err)
	}
}

func TestNewLineFailure(t *testing.T) {
	trace := &[]string{}
	sd := &tracePin{Pin: gpiotest.Pin{N: "sd"}, trace: trace}
	dc := &tracePin{Pin: gpiotest.Pin{N: "dc"}, trace: trace}
	cs := &tracePin{Pin: gpiotest.Pin{N: "cs"}, trace: trace}
	clk := &failPin{Pin: gpiotest.Pin{N: "clk"}}
	_, err := New(sd, clk, dc, cs)
	if err == nil {
		t.Fatal("New() with a dead line did not fail")
	}
	if !strings.Contains(err.Error(), "clk") {
		t.Errorf("New() error %q does not name the failing line", err)
	}
}
