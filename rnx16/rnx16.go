// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rnx16

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/readynas-tools/rnx16oled/bitbang"
)

const (
	_DISPLAYOFF       = 0xAE
	_DISPLAYON        = 0xAF
	_NORMALDISPLAY    = 0xA6
	_PAGESTARTADDRESS = 0xB0
	_SETCONTRAST      = 0x81
	_SETHIGHCOLUMN    = 0x10
	_SETLOWCOLUMN     = 0x00
	_SETSTARTLINE     = 0x40
)

// transport is what the blitter needs from the serial link. *bitbang.Conn
// implements it; tests substitute a recorder.
type transport interface {
	Tx(b byte, cmd bool) error
	Begin(cmd bool) error
	Mode(cmd bool) error
	WriteByte(b byte) error
	End() error
}

// DefaultOpts is the RNX16 front panel geometry: a 128x64 panel mapped 4
// columns into the controller's 132 column RAM.
var DefaultOpts = Opts{
	W:           128,
	H:           64,
	StartColumn: 4,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// StartColumn is the controller RAM column of the panel's leftmost
	// pixel. The controller memory window is wider than the visible panel.
	StartColumn int
	// Inverted flips the pixel polarity, for panels wired with inverted
	// logic.
	Inverted bool
	// FullRedraw disables the differential update and retransmits the whole
	// frame on every blit.
	FullRedraw bool
	// DirtySpan is the differential update granularity in bytes within a
	// page; it must divide W. 0 means whole pages.
	DirtySpan int
}

// Dev is an open handle to the display controller.
//
// Dev is not safe for concurrent use. The caller renders on a single
// threaded tick and serializes every call.
type Dev struct {
	// Communication.
	c         transport
	ctrl, rst gpio.PinOut

	// Display geometry.
	rect     image.Rectangle
	startCol int
	span     int

	// Mutable.
	inverted   byte
	fullRedraw bool
	// backing remembers what was last physically written, so unchanged
	// regions are skipped. redraw marks it invalid: first frame, after an
	// interrupted blit, or after the inversion mask changed.
	backing []byte
	redraw  bool
	halted  bool
	// next is lazy initialized on first Draw(). Write() skips this buffer.
	next *image1bit.VerticalLSB
}

// New returns a Dev driving a display controller over the given bit-banged
// serial connection.
//
// ctrl and rst are the panel's controller enable and reset lines; they are
// driven to their idle high level and otherwise left alone. Either may be
// nil if wired externally.
//
// The backing store starts out all ones so the first blit always transmits
// the full frame.
func New(c *bitbang.Conn, ctrl, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	return newDev(c, ctrl, rst, opts)
}

func newDev(c transport, ctrl, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	if opts.W < 8 || opts.W > 128 || opts.W%8 != 0 {
		return nil, fmt.Errorf("rnx16: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 64 || opts.H%8 != 0 {
		return nil, fmt.Errorf("rnx16: invalid height %d", opts.H)
	}
	if opts.StartColumn < 0 || opts.StartColumn+opts.W > 256 {
		return nil, fmt.Errorf("rnx16: invalid start column %d", opts.StartColumn)
	}
	span := opts.DirtySpan
	if span == 0 {
		span = opts.W
	}
	if span < 0 || span > opts.W || opts.W%span != 0 {
		return nil, fmt.Errorf("rnx16: dirty span %d does not divide width %d", opts.DirtySpan, opts.W)
	}
	for _, p := range []gpio.PinOut{ctrl, rst} {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("rnx16: failed to drive %s: %w", p, err)
		}
	}
	d := &Dev{
		c:          c,
		ctrl:       ctrl,
		rst:        rst,
		rect:       image.Rect(0, 0, opts.W, opts.H),
		startCol:   opts.StartColumn,
		span:       span,
		fullRedraw: opts.FullRedraw,
		backing:    make([]byte, opts.H/8*opts.W),
		redraw:     true,
	}
	if opts.Inverted {
		d.inverted = 0xFF
	}
	// All ones can't match any incoming frame region by region, since the
	// first compare already sees the real frame against it.
	for i := range d.backing {
		d.backing[i] = 0xFF
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("rnx16.Dev{%s}", d.rect.Max)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// It draws synchronously; once this function returns, the display is
// updated. Unchanged regions are not retransmitted, which matters on a
// transport whose throughput is bounded by per-bit line toggling.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	var next []byte
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp.X == 0 && sp.Y == 0 {
		// Exact size, full frame, image1bit encoding: fast path!
		next = img.Pix
	} else {
		// Double buffering.
		if d.next == nil {
			d.next = image1bit.NewVerticalLSB(d.rect)
		}
		next = d.next.Pix
		draw.Src.Draw(d.next, r, src, sp)
	}
	return d.drawInternal(next)
}

// Write writes a buffer of pixels to the display.
//
// The format is unusual as each byte represents 8 vertical pixels at a time,
// in horizontal bands of 8 pixels high. This matches the content of
// image1bit.VerticalLSB.Pix and the glcd VPAGED framebuffer layout.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.backing) {
		return 0, fmt.Errorf("rnx16: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.backing), len(pixels))
	}
	// Write() skips d.next so it saves 1kb of RAM.
	if err := d.drawInternal(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// drawInternal sends the frame to the controller.
//
// The backing store is only updated once the whole frame went out; an
// interrupted blit leaves it stale and forces a full retransmit on the next
// call, so a half written page can never be mistaken for clean.
func (d *Dev) drawInternal(next []byte) error {
	if d.halted {
		// Transparently enable the display.
		if err := d.Display(true); err != nil {
			return err
		}
	}
	// Re-establish the global addressing baseline every frame. Two command
	// bytes are cheap next to the pixel data.
	if err := d.c.Tx(_NORMALDISPLAY, true); err != nil {
		return d.fail(err)
	}
	if err := d.c.Tx(_SETSTARTLINE|0x00, true); err != nil {
		return d.fail(err)
	}

	full := d.redraw || d.fullRedraw
	stride := d.rect.Dx()
	pages := d.rect.Dy() / 8
	for page := 0; page < pages; page++ {
		base := page * stride
		for col := 0; col < stride; col += d.span {
			region := next[base+col : base+col+d.span]
			if !full && bytes.Equal(d.backing[base+col:base+col+d.span], region) {
				continue
			}
			if err := d.writeRegion(page, col, region); err != nil {
				return d.fail(err)
			}
		}
	}
	copy(d.backing, next)
	d.redraw = false
	return nil
}

// writeRegion addresses one page/column window and streams its pixel bytes,
// all under a single chip-select assertion.
func (d *Dev) writeRegion(page, col int, pixels []byte) error {
	if err := d.c.Begin(true); err != nil {
		return err
	}
	addr := byte(d.startCol + col)
	if err := d.c.WriteByte(_PAGESTARTADDRESS | byte(page)); err != nil {
		return err
	}
	if err := d.c.WriteByte(_SETHIGHCOLUMN | addr>>4); err != nil {
		return err
	}
	if err := d.c.WriteByte(_SETLOWCOLUMN | addr&0x0F); err != nil {
		return err
	}
	if err := d.c.Mode(false); err != nil {
		return err
	}
	for _, b := range pixels {
		if err := d.c.WriteByte(b ^ d.inverted); err != nil {
			return err
		}
	}
	return d.c.End()
}

func (d *Dev) fail(err error) error {
	d.redraw = true
	return err
}

// sendCommand transmits command bytes sharing one chip-select assertion.
func (d *Dev) sendCommand(c []byte) error {
	if err := d.c.Begin(true); err != nil {
		return err
	}
	for _, b := range c {
		if err := d.c.WriteByte(b); err != nil {
			return err
		}
	}
	return d.c.End()
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand([]byte{_SETCONTRAST, level})
}

// mapContrast maps the display server's logical 0-1000 contrast onto the
// 200-255 hardware range, where a higher setting sends a lower value.
func mapContrast(promille int) byte {
	if promille < 0 {
		promille = 0
	}
	if promille > 1000 {
		promille = 1000
	}
	return byte((1000-promille)*55/1000 + 200)
}

// Display turns the panel on or off. The panel is an OLED, so this doubles
// as the backlight control.
func (d *Dev) Display(on bool) error {
	b := byte(_DISPLAYOFF)
	if on {
		b = _DISPLAYON
	}
	if err := d.sendCommand([]byte{b}); err != nil {
		return err
	}
	d.halted = !on
	return nil
}

// Invert flips the pixel polarity of subsequent frames (black on white vs
// white on black) and schedules a full repaint.
//
// Applying the mask twice is the identity, so toggling back and forth
// round-trips every frame byte.
func (d *Dev) Invert(blackOnWhite bool) {
	mask := byte(0x00)
	if blackOnWhite {
		mask = 0xFF
	}
	if mask != d.inverted {
		d.inverted = mask
		d.redraw = true
	}
}

// Reset pulses the reset line and invalidates the backing store, since the
// controller's addressing state is unknown afterwards.
//
// It is a no-op when the reset line is wired externally.
func (d *Dev) Reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	d.redraw = true
	return nil
}

// Halt turns off the display.
//
// Sending any frame afterwards turns it back on.
func (d *Dev) Halt() error {
	return d.Display(false)
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
