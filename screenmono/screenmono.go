// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screenmono implements a monochrome display.Drawer that outputs to
// terminal (stdout) using ANSI color codes.
//
// Useful to develop against the front panel layout on a machine that is not
// a ReadyNAS. It accepts the same paged framebuffer as the hardware driver
// and is registered with package glcd under the connection type name
// "terminal".
package screenmono

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/readynas-tools/rnx16oled/glcd"
)

func init() {
	err := glcd.Register("terminal", func(cfg *glcd.Config) (glcd.Conn, error) {
		d, err := New(&Opts{W: 128, H: 64, Inverted: cfg.Inverted})
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		panic(err)
	}
}

// Opts represents the options available for this display.
type Opts struct {
	W, H    int
	Palette *ansi256.Palette
	// Writer overrides the default colorable stdout, mostly for tests.
	Writer io.Writer
	// Inverted swaps the on and off colors.
	Inverted bool
}

// Dev is a monochrome panel emulator that outputs to the console.
type Dev struct {
	w        io.Writer
	rect     image.Rectangle
	palette  ansi256.Palette
	inverted bool

	img *image1bit.VerticalLSB
	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits to do local testing of the panel rendering.
func New(opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 || opts.H%8 != 0 {
		return nil, fmt.Errorf("screenmono: invalid geometry %dx%d", opts.W, opts.H)
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:        w,
		rect:     image.Rect(0, 0, opts.W, opts.H),
		palette:  *p,
		inverted: opts.Inverted,
		img:      image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ScreenMono{%s}", d.rect.Max)
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Src.Draw(d.img, r.Intersect(d.rect), src, sp)
	return d.refresh()
}

// Write accepts a vertically paged pixel stream, the same format the
// hardware driver takes, and renders it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.img.Pix) {
		return 0, fmt.Errorf("screenmono: invalid pixel stream length; expected %d bytes, got %d bytes", len(d.img.Pix), len(pixels))
	}
	copy(d.img.Pix, pixels)
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Blit implements glcd.Conn.
func (d *Dev) Blit(f *glcd.Framebuffer) error {
	if f.Layout != glcd.VPaged {
		return fmt.Errorf("screenmono: unsupported framebuffer layout %s", f.Layout)
	}
	if f.PxWidth != d.rect.Dx() || f.PxHeight != d.rect.Dy() {
		return fmt.Errorf("screenmono: framebuffer is %dx%d, display is %s", f.PxWidth, f.PxHeight, d.rect.Max)
	}
	if len(f.Data) != f.Size() {
		return fmt.Errorf("screenmono: framebuffer data is %d bytes, expected %d", len(f.Data), f.Size())
	}
	_, err := d.Write(f.Data)
	return err
}

// Close implements glcd.Conn.
func (d *Dev) Close() error {
	return d.Halt()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	on := color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}
	off := color.NRGBA{0x00, 0x00, 0x00, 0xFF}
	if d.inverted {
		on, off = off, on
	}
	w := d.rect.Dx()
	d.buf.Reset()
	for y := 0; y < d.rect.Dy(); y++ {
		for x := 0; x < w; x++ {
			c := off
			if d.img.Pix[y/8*w+x]&(1<<uint(y%8)) != 0 {
				c = on
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ glcd.Conn = &Dev{}
var _ fmt.Stringer = &Dev{}
