// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pixbuf

import (
	"image"

	"golang.org/x/image/draw"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// DrawImage composes img onto the buffer's logical rectangle starting at
// (x, y) using a 1-bit Floyd-Steinberg-free threshold, the same
// image1bit.VerticalLSB conversion periph's waveshare drivers use for
// their draw.Image-compatible frame buffers. Only Depth1 buffers are
// supported.
func (b *Buffer) DrawImage(img image.Image, x, y int) {
	if b.depth != Depth1 {
		panic("pixbuf: DrawImage requires a Depth1 buffer")
	}
	mono := image1bit.NewVerticalLSB(img.Bounds())
	draw.Draw(mono, mono.Bounds(), img, image.Point{}, draw.Src)
	b.blitMono(mono, x, y)
}

// DrawImageScaled behaves like DrawImage but first resamples img to fit
// exactly within w x h using a bilinear filter, for source images that
// don't already match the destination's pixel dimensions (icons, photos).
func (b *Buffer) DrawImageScaled(img image.Image, x, y, w, h int) {
	if b.depth != Depth1 {
		panic("pixbuf: DrawImageScaled requires a Depth1 buffer")
	}
	scaled := image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	b.blitMono(scaled, x, y)
}

// ToImage renders the whole logical buffer as an image1bit.VerticalLSB,
// the same draw.Image type periph's waveshare drivers expose, so a Buffer
// can feed into any image/draw-based pipeline for inspection or encoding.
// Only Depth1 buffers are supported; 2-bit buffers have no single-plane
// image representation.
func (b *Buffer) ToImage() *image1bit.VerticalLSB {
	if b.depth != Depth1 {
		panic("pixbuf: ToImage requires a Depth1 buffer")
	}
	w, h := b.LogicalWidth(), b.LogicalHeight()
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := image1bit.Off
			if b.GetPixel(x, y) != 0 {
				c = image1bit.On
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func (b *Buffer) blitMono(mono *image1bit.VerticalLSB, x, y int) {
	bounds := mono.Bounds()
	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		for px := bounds.Min.X; px < bounds.Max.X; px++ {
			lx, ly := x+px-bounds.Min.X, y+py-bounds.Min.Y
			if lx < 0 || ly < 0 || lx >= b.LogicalWidth() || ly >= b.LogicalHeight() {
				continue
			}
			color := 0
			if mono.At(px, py) == image1bit.On {
				color = 1
			}
			b.PixelUnchecked(lx, ly, color)
		}
	}
}
