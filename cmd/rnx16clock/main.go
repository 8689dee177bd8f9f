// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// rnx16clock renders a clock on the ReadyNAS RNX16 front panel OLED.
//
// Pass -conn terminal to preview the layout in a terminal instead of driving
// the hardware.
package main

import (
	"flag"
	"image"
	"image/draw"
	"log"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/readynas-tools/rnx16oled/glcd"
	_ "github.com/readynas-tools/rnx16oled/rnx16"
	_ "github.com/readynas-tools/rnx16oled/screenmono"
)

func mainImpl() error {
	connName := flag.String("conn", "rnx16", "connection type to open (rnx16, terminal)")
	fontPath := flag.String("font", "", "optional TTF font for the time display")
	fontSize := flag.Float64("font-size", 24, "TTF font size in points")
	interval := flag.Duration("interval", time.Second, "refresh interval")
	invert := flag.Bool("invert", false, "flip the pixel polarity")
	contrast := flag.Int("contrast", -1, "contrast on a 0-1000 scale, -1 to leave alone")
	flag.Parse()

	// Make sure periph is initialized so the GPIO lines can be resolved.
	if _, err := host.Init(); err != nil {
		return err
	}

	cfg := glcd.DefaultConfig
	cfg.Inverted = *invert
	c, err := glcd.Open(*connName, &cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
	}()

	if *contrast >= 0 {
		if ct, ok := c.(glcd.Contraster); ok {
			if err := ct.SetContrast(*contrast); err != nil {
				return err
			}
		} else {
			log.Printf("%s does not support contrast", *connName)
		}
	}

	var face font.Face = basicfont.Face7x13
	if *fontPath != "" {
		raw, err := os.ReadFile(*fontPath)
		if err != nil {
			return err
		}
		f, err := truetype.Parse(raw)
		if err != nil {
			return err
		}
		face = truetype.NewFace(f, &truetype.Options{Size: *fontSize})
	}

	fb, err := glcd.NewFramebuffer(128, 64)
	if err != nil {
		return err
	}
	dc := gg.NewContext(fb.PxWidth, fb.PxHeight)
	dc.SetFontFace(face)

	render := func() error {
		dc.SetRGB(0, 0, 0)
		dc.Clear()
		dc.SetRGB(1, 1, 1)
		dc.DrawRectangle(0.5, 0.5, float64(fb.PxWidth)-1, float64(fb.PxHeight)-1)
		dc.Stroke()
		now := time.Now()
		dc.DrawStringAnchored(now.Format("15:04:05"), float64(fb.PxWidth)/2, float64(fb.PxHeight)/2-6, 0.5, 0.5)
		dc.DrawStringAnchored(now.Format("Mon Jan 2"), float64(fb.PxWidth)/2, float64(fb.PxHeight)-14, 0.5, 0.5)
		toPaged(dc.Image(), fb)
		return c.Blit(fb)
	}

	if err := render(); err != nil {
		return err
	}
	t := time.NewTicker(*interval)
	defer t.Stop()
	for range t.C {
		if err := render(); err != nil {
			return err
		}
	}
	return nil
}

// toPaged converts any image into the vertically paged framebuffer layout by
// going through image1bit's thresholding.
func toPaged(src image.Image, fb *glcd.Framebuffer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, fb.PxWidth, fb.PxHeight))
	draw.Src.Draw(img, img.Bounds(), src, image.Point{})
	copy(fb.Data, img.Pix)
}

func main() {
	if err := mainImpl(); err != nil {
		log.Fatalf("rnx16clock: %s", err)
	}
}
