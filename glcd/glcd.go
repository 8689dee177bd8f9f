// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glcd defines the boundary between a graphic display server and the
// connection drivers that push its framebuffer to actual hardware.
//
// The server owns a Framebuffer, renders into it on a single-threaded tick,
// and hands it to a Conn obtained from the registry. A Conn may additionally
// implement Backlighter or Contraster; the server probes for those with type
// assertions and skips the calls when absent.
package glcd

import (
	"fmt"
	"sort"
	"sync"
)

// Layout describes how pixels are packed in a Framebuffer's Data.
type Layout int

const (
	// VPaged packs 8 vertically stacked pixels per byte, bit 0 on top. Byte
	// (page*PxWidth)+column holds one column of one 8 row page.
	VPaged Layout = iota
)

func (l Layout) String() string {
	if l == VPaged {
		return "VPAGED"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// Framebuffer is the display bitmap shared between the server and a Conn.
//
// The server guarantees Data is sized and laid out per Layout before calling
// Blit; connection drivers only read it.
type Framebuffer struct {
	Layout   Layout
	PxWidth  int
	PxHeight int
	Data     []byte
}

// NewFramebuffer returns a zeroed vertically paged framebuffer.
func NewFramebuffer(w, h int) (*Framebuffer, error) {
	if w <= 0 || h <= 0 || h%8 != 0 {
		return nil, fmt.Errorf("glcd: invalid framebuffer geometry %dx%d", w, h)
	}
	return &Framebuffer{
		Layout:   VPaged,
		PxWidth:  w,
		PxHeight: h,
		Data:     make([]byte, h/8*w),
	}, nil
}

// Size returns the expected byte length of Data.
func (f *Framebuffer) Size() int {
	return f.PxHeight / 8 * f.PxWidth
}

// SetPixel sets or clears one pixel. Out of range coordinates are ignored.
func (f *Framebuffer) SetPixel(x, y int, on bool) {
	if x < 0 || y < 0 || x >= f.PxWidth || y >= f.PxHeight {
		return
	}
	i := y/8*f.PxWidth + x
	mask := byte(1) << uint(y%8)
	if on {
		f.Data[i] |= mask
	} else {
		f.Data[i] &^= mask
	}
}

// Pixel reports whether one pixel is set. Out of range coordinates read as
// off.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= f.PxWidth || y >= f.PxHeight {
		return false
	}
	return f.Data[y/8*f.PxWidth+x]&(1<<uint(y%8)) != 0
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// Conn is one open connection to a display.
//
// A Conn is not safe for concurrent use; the server serializes Blit, Close
// and the optional capability calls.
type Conn interface {
	// Blit writes the framebuffer to the display. On error the display
	// content is undefined and the next Blit retransmits in full.
	Blit(f *Framebuffer) error
	// Close releases the underlying resources. Closing twice is a no-op.
	Close() error
}

// Backlighter is implemented by connections that can switch the panel
// light or the panel itself on and off.
type Backlighter interface {
	SetBacklight(on bool) error
}

// Contraster is implemented by connections with adjustable contrast. The
// value is the server's logical 0-1000 scale, not a hardware byte.
type Contraster interface {
	SetContrast(promille int) error
}

// Config carries the server-side settings a connection may care about.
type Config struct {
	// Brightness and OffBrightness are the backlight levels in promille for
	// the on and off states.
	Brightness    int
	OffBrightness int
	// KeyTimeout is the key repeat timeout in milliseconds. Display-only
	// connections ignore it.
	KeyTimeout int
	// Inverted flips the pixel polarity for panels wired with inverted
	// logic.
	Inverted bool
}

// DefaultConfig is the server's stock configuration.
var DefaultConfig = Config{
	Brightness:    800,
	OffBrightness: 100,
	KeyTimeout:    125,
}

// Opener opens one connection type with the given configuration.
type Opener func(cfg *Config) (Conn, error)

var (
	mu     sync.Mutex
	byName = map[string]Opener{}
)

// Register makes a connection type available to Open. It is meant to be
// called from the init() of connection driver packages.
func Register(name string, o Opener) error {
	if o == nil {
		return fmt.Errorf("glcd: can't register nil Opener for %q", name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; ok {
		return fmt.Errorf("glcd: connection type %q was already registered", name)
	}
	byName[name] = o
	return nil
}

// Open opens a registered connection type. A nil cfg uses DefaultConfig.
func Open(name string, cfg *Config) (Conn, error) {
	mu.Lock()
	o := byName[name]
	mu.Unlock()
	if o == nil {
		return nil, fmt.Errorf("glcd: no connection type %q registered", name)
	}
	if cfg == nil {
		c := DefaultConfig
		cfg = &c
	}
	return o(cfg)
}

// All returns the registered connection type names, sorted.
func All() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
