// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rnx16 controls the 128x64 monochrome OLED on the front panel of
// the NETGEAR ReadyNAS RNX16.
//
// The panel sits behind an SSD1306 style controller whose bus pins are wired
// straight to SoC GPIOs, so every byte is clocked out in software through
// package bitbang. The driver does differential updates: it remembers the
// last frame physically written and skips the page regions that did not
// change, which is what keeps the refresh rate usable on a bit-banged link.
//
// The display RAM is addressed in pages, horizontal bands of 8 pixels high.
// Each page is selected with a command byte, followed by the column address
// split in two nibble commands; pixel bytes then stream out under the same
// chip-select assertion.
//
// The driver is registered with package glcd under the connection type name
// "rnx16".
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
package rnx16
