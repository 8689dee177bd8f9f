// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glcd

import (
	"testing"
)

func TestNewFramebuffer(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"128x64", 128, 64, false},
		{"minimum", 1, 8, false},
		{"zero width", 0, 64, true},
		{"zero height", 128, 0, true},
		{"height not paged", 128, 60, true},
		{"negative", -128, 64, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFramebuffer(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFramebuffer(%d, %d) error = %v, wantErr %t", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := f.Size(); got != tt.h/8*tt.w {
				t.Errorf("Size() = %d, want %d", got, tt.h/8*tt.w)
			}
			if len(f.Data) != f.Size() {
				t.Errorf("len(Data) = %d, want %d", len(f.Data), f.Size())
			}
			if f.Layout != VPaged {
				t.Errorf("Layout = %v, want %v", f.Layout, VPaged)
			}
		})
	}
}

func TestFramebufferPixels(t *testing.T) {
	f, err := NewFramebuffer(128, 64)
	if err != nil {
		t.Fatal(err)
	}

	// Bit 0 is the top row of a page.
	f.SetPixel(3, 9, true)
	if f.Data[1*128+3] != 0x02 {
		t.Errorf("SetPixel(3, 9) wrote %#02x to byte %d, want 0x02", f.Data[1*128+3], 1*128+3)
	}
	if !f.Pixel(3, 9) {
		t.Error("Pixel(3, 9) = false after SetPixel")
	}
	if f.Pixel(3, 8) || f.Pixel(3, 10) || f.Pixel(2, 9) {
		t.Error("SetPixel(3, 9) leaked into a neighbor")
	}

	f.SetPixel(3, 9, false)
	if f.Pixel(3, 9) {
		t.Error("Pixel(3, 9) = true after clearing")
	}

	// Out of range access must be a no-op, not a panic.
	f.SetPixel(-1, 0, true)
	f.SetPixel(0, -1, true)
	f.SetPixel(128, 0, true)
	f.SetPixel(0, 64, true)
	if f.Pixel(-1, 0) || f.Pixel(128, 0) || f.Pixel(0, 64) {
		t.Error("out of range Pixel() read as on")
	}
	for i, b := range f.Data {
		if b != 0 {
			t.Fatalf("Data[%d] = %#02x after out of range writes, want 0", i, b)
		}
	}

	f.SetPixel(127, 63, true)
	f.Clear()
	if f.Pixel(127, 63) {
		t.Error("Pixel(127, 63) = true after Clear")
	}
}

func TestRegistry(t *testing.T) {
	opener := func(cfg *Config) (Conn, error) { return nil, nil }

	if err := Register("glcdtest", opener); err != nil {
		t.Fatal(err)
	}
	if err := Register("glcdtest", opener); err == nil {
		t.Error("registering the same name twice did not fail")
	}
	if err := Register("glcdtest-nil", nil); err == nil {
		t.Error("registering a nil Opener did not fail")
	}

	if _, err := Open("no-such-connection", nil); err == nil {
		t.Error("Open() of an unregistered name did not fail")
	}
	if _, err := Open("glcdtest", nil); err != nil {
		t.Errorf("Open() with nil config = %v", err)
	}

	found := false
	for _, n := range All() {
		if n == "glcdtest" {
			found = true
		}
	}
	if !found {
		t.Errorf("All() = %v, missing %q", All(), "glcdtest")
	}
}

func TestOpenPassesConfig(t *testing.T) {
	var got *Config
	if err := Register("glcdtest-cfg", func(cfg *Config) (Conn, error) {
		got = cfg
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := Open("glcdtest-cfg", nil); err != nil {
		t.Fatal(err)
	}
	if *got != DefaultConfig {
		t.Errorf("nil config opened with %+v, want DefaultConfig %+v", *got, DefaultConfig)
	}
	cfg := Config{Brightness: 1000, Inverted: true}
	if _, err := Open("glcdtest-cfg", &cfg); err != nil {
		t.Fatal(err)
	}
	if got != &cfg {
		t.Error("explicit config was not passed through")
	}
}
