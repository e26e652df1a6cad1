// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"context"
	"fmt"

	"github.com/mauro-lanza/magtag-drivers/bf2font"
	"github.com/mauro-lanza/magtag-drivers/pixbuf"
	"github.com/mauro-lanza/magtag-drivers/ssd1680"
)

// Region is one rectangle in a batched UpdateRegions call, given in
// logical (pre-rotation) coordinates.
type Region struct {
	X, Y, W, H int
}

// Canvas composes a panel driver, a pixel buffer and a text renderer into
// the single surface application code draws on. Drawing methods are thin
// delegates to the buffer; refresh methods choose the BW/RAM path from
// the buffer's depth and push frame bytes to the driver.
type Canvas struct {
	Driver Driver
	Buffer *pixbuf.Buffer
	Text   *bf2font.Renderer
}

// New composes a Canvas from an already-constructed driver, buffer and
// text renderer. None of the three is created here: callers choose the
// concrete transport, buffer geometry and font stack.
func New(driver Driver, buf *pixbuf.Buffer, text *bf2font.Renderer) *Canvas {
	return &Canvas{Driver: driver, Buffer: buf, Text: text}
}

// Init brings the panel driver into a known state, optionally performing
// a clearing white refresh.
func (c *Canvas) Init(ctx context.Context, clear bool) error {
	return c.Driver.Init(ctx, clear)
}

// Drawing delegates.

func (c *Canvas) Clear(color int)                            { c.Buffer.Clear(color) }
func (c *Canvas) Pixel(x, y, color int)                       { c.Buffer.Pixel(x, y, color) }
func (c *Canvas) Line(x0, y0, x1, y1, color int)              { c.Buffer.Line(x0, y0, x1, y1, color) }
func (c *Canvas) Rect(x, y, w, h, color int)                  { c.Buffer.Rect(x, y, w, h, color) }
func (c *Canvas) FillRect(x, y, w, h, color int)              { c.Buffer.FillRect(x, y, w, h, color) }
func (c *Canvas) Circle(cx, cy, r, color int)                 { c.Buffer.Circle(cx, cy, r, color) }
func (c *Canvas) FillCircle(cx, cy, r, color int)             { c.Buffer.FillCircle(cx, cy, r, color) }
func (c *Canvas) RoundedRect(x, y, w, h, r, color int)        { c.Buffer.RoundedRect(x, y, w, h, r, color) }

func (c *Canvas) Triangle(x0, y0, x1, y1, x2, y2, color int) {
	c.Buffer.Triangle(x0, y0, x1, y1, x2, y2, color)
}

func (c *Canvas) FillTriangle(x0, y0, x1, y1, x2, y2, color int) {
	c.Buffer.FillTriangle(x0, y0, x1, y1, x2, y2, color)
}

func (c *Canvas) Blit(bitmap []byte, srcStride, x, y, w, h, color int) {
	c.Buffer.Blit(bitmap, srcStride, x, y, w, h, color)
}

// Text rendering delegates.

func (c *Canvas) DrawText(text string, x, y, color, scale int, align bf2font.Align) error {
	return c.Text.Draw(c.Buffer, text, x, y, color, scale, align)
}

func (c *Canvas) MeasureText(text string, scale int) int { return c.Text.MeasureWidth(text, scale) }

func (c *Canvas) LoadFont(path string) error { return c.Text.LoadFont(path) }

func (c *Canvas) AddFont(path string, optional bool) error { return c.Text.AddFont(path, optional) }

// FullRefresh pushes the whole buffer through the slow, ghost-free
// refresh path: to_planes+DisplayGray for a 2-bit buffer, to_mono+Display
// with full=true otherwise.
func (c *Canvas) FullRefresh(ctx context.Context) error {
	if c.Buffer.Depth() == pixbuf.Depth2 {
		black, red := c.Buffer.ToPlanes()
		return c.Driver.DisplayGray(ctx, black, red)
	}
	return c.Driver.Display(ctx, c.Buffer.ToMono(), true, false, false)
}

// PartialRefresh pushes the whole buffer through the fast path. A 2-bit
// buffer has no partial mode of its own and always redoes the 4-gray
// waveform; a 1-bit buffer stays awake afterward so the caller can chain
// further partial refreshes without re-waking the panel.
func (c *Canvas) PartialRefresh(ctx context.Context) error {
	if c.Buffer.Depth() == pixbuf.Depth2 {
		black, red := c.Buffer.ToPlanes()
		return c.Driver.DisplayGray(ctx, black, red)
	}
	return c.Driver.Display(ctx, c.Buffer.ToMono(), false, false, true)
}

// Refresh chooses between FullRefresh and PartialRefresh. forceFull skips
// the driver state machine's own escalation heuristic and always takes
// the full path.
func (c *Canvas) Refresh(ctx context.Context, forceFull bool) error {
	if forceFull {
		return c.FullRefresh(ctx)
	}
	return c.PartialRefresh(ctx)
}

// CustomRefresh performs a full refresh with a caller-supplied 153-byte
// waveform, using the driver's default voltage levels. It invalidates the
// basemap the same way display_lut does, so the next refresh after this
// one is forced full regardless of the state machine's partial count.
func (c *Canvas) CustomRefresh(ctx context.Context, lut []byte) error {
	if c.Buffer.Depth() == pixbuf.Depth2 {
		black, red := c.Buffer.ToPlanes()
		return c.Driver.DisplayLUTDefaultVoltages(ctx, lut, black, red)
	}
	return c.Driver.DisplayLUTDefaultVoltages(ctx, lut, c.Buffer.ToMono(), nil)
}

// UpdateRegion pushes one rectangle of a 1-bit buffer through the
// differential partial-update path. 2-bit buffers reject region updates:
// there is no 2-bit region command, and splitting one into two 1-bit
// plane writes is left unsupported.
func (c *Canvas) UpdateRegion(ctx context.Context, x, y, w, h int) error {
	if c.Buffer.Depth() != pixbuf.Depth1 {
		return fmt.Errorf("magtag: update region: %w: only 1-bit buffers support region updates", ErrUnsupported)
	}
	data, err := c.Buffer.GetRegion(x, y, w, h, false)
	if err != nil {
		return err
	}
	px, py, pw, ph := c.Buffer.PhysicalRegion(x, y, w, h)
	return c.Driver.DisplayRegion(ctx, data, px, py, pw, ph)
}

// UpdateRegions batches several rectangles into a single activation.
func (c *Canvas) UpdateRegions(ctx context.Context, regions []Region) error {
	if c.Buffer.Depth() != pixbuf.Depth1 {
		return fmt.Errorf("magtag: update regions: %w: only 1-bit buffers support region updates", ErrUnsupported)
	}
	out := make([]ssd1680.Region, len(regions))
	for i, r := range regions {
		data, err := c.Buffer.GetRegion(r.X, r.Y, r.W, r.H, false)
		if err != nil {
			return err
		}
		px, py, pw, ph := c.Buffer.PhysicalRegion(r.X, r.Y, r.W, r.H)
		out[i] = ssd1680.Region{Data: data, X: px, Y: py, W: pw, H: ph}
	}
	return c.Driver.DisplayRegions(ctx, out)
}

// FastClear fills both panel RAMs solid with bit 7 of color without
// streaming a full frame, then sleeps.
func (c *Canvas) FastClear(ctx context.Context, color byte) error {
	return c.Driver.FastClear(ctx, color)
}

// Sleep puts the panel in deep sleep. retainRAM preserves the basemap so
// the next refresh can stay partial; without it, the next refresh is
// forced full.
func (c *Canvas) Sleep(ctx context.Context, retainRAM bool) error {
	return c.Driver.Sleep(ctx, retainRAM)
}

// InvertDisplay sets the panel's inversion bits. The effect is visible
// starting with the next refresh, not retroactively.
func (c *Canvas) InvertDisplay(ctx context.Context, invertBW, invertRed bool) error {
	return c.Driver.SetInvert(ctx, invertBW, invertRed)
}

// ReadTemperature returns the panel's on-die temperature sensor reading.
func (c *Canvas) ReadTemperature(ctx context.Context) (float64, error) {
	return c.Driver.ReadTemperature(ctx)
}

// CheckTemperature is ReadTemperature plus a check against the panel's
// documented operating envelope.
func (c *Canvas) CheckTemperature(ctx context.Context) (float64, bool, error) {
	return c.Driver.CheckTemperature(ctx)
}
