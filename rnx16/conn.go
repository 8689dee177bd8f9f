// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rnx16

import (
	"errors"
	"fmt"

	"github.com/readynas-tools/rnx16oled/glcd"
)

// ErrClosed is returned by connection calls after Close.
var ErrClosed = errors.New("rnx16: connection is closed")

func init() {
	if err := glcd.Register("rnx16", openConn); err != nil {
		panic(err)
	}
}

func openConn(cfg *glcd.Config) (glcd.Conn, error) {
	opts := DefaultOpts
	opts.Inverted = cfg.Inverted
	d, err := Open(&opts)
	if err != nil {
		return nil, err
	}
	return newConnection(d, cfg), nil
}

// connection adapts Dev to the glcd display server boundary.
type connection struct {
	dev           *Dev
	brightness    int
	offBrightness int
	closed        bool
}

func newConnection(d *Dev, cfg *glcd.Config) *connection {
	return &connection{
		dev:           d,
		brightness:    cfg.Brightness,
		offBrightness: cfg.OffBrightness,
	}
}

// Blit implements glcd.Conn.
func (c *connection) Blit(f *glcd.Framebuffer) error {
	if c.closed {
		return ErrClosed
	}
	if f.Layout != glcd.VPaged {
		return fmt.Errorf("rnx16: unsupported framebuffer layout %s", f.Layout)
	}
	if f.PxWidth != c.dev.rect.Dx() || f.PxHeight != c.dev.rect.Dy() {
		return fmt.Errorf("rnx16: framebuffer is %dx%d, display is %s", f.PxWidth, f.PxHeight, c.dev.rect.Max)
	}
	if len(f.Data) != f.Size() {
		return fmt.Errorf("rnx16: framebuffer data is %d bytes, expected %d", len(f.Data), f.Size())
	}
	_, err := c.dev.Write(f.Data)
	return err
}

// Close implements glcd.Conn. It turns the panel off and is safe to call
// more than once, or on a connection that never finished opening.
func (c *connection) Close() error {
	if c.closed || c.dev == nil {
		return nil
	}
	c.closed = true
	return c.dev.Halt()
}

// SetBacklight implements glcd.Backlighter by switching the OLED panel
// itself; there is no separate backlight. The configured promille level for
// the requested state decides whether the panel ends up lit.
func (c *connection) SetBacklight(on bool) error {
	if c.closed {
		return ErrClosed
	}
	promille := c.offBrightness
	if on {
		promille = c.brightness
	}
	return c.dev.Display(promille*255/1000 > 0)
}

// SetContrast implements glcd.Contraster, mapping the server's 0-1000 scale
// onto the hardware contrast register.
func (c *connection) SetContrast(promille int) error {
	if c.closed {
		return ErrClosed
	}
	return c.dev.SetContrast(mapContrast(promille))
}

var _ glcd.Conn = &connection{}
var _ glcd.Backlighter = &connection{}
var _ glcd.Contraster = &connection{}
