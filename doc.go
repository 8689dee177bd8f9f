// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rnx16oled is a container for the driver of the front panel OLED
// found in the NETGEAR ReadyNAS RNX16 (built by mini-box.com).
//
// The panel is a 128x64 monochrome display behind an SSD1306 style
// controller, wired to the SoC through plain GPIO lines instead of a real
// SPI peripheral. Package bitbang clocks bytes out over those lines, package
// rnx16 drives the display controller, and package glcd defines the boundary
// with a display server that renders into a paged framebuffer.
package rnx16oled
