// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pixbuf

// cohenSutherland outcodes.
const (
	outInside = 0
	outLeft   = 1 << 0
	outRight  = 1 << 1
	outBottom = 1 << 2
	outTop    = 1 << 3
)

func outcode(x, y, w, h int) int {
	code := outInside
	if x < 0 {
		code |= outLeft
	} else if x > w-1 {
		code |= outRight
	}
	if y < 0 {
		code |= outTop
	} else if y > h-1 {
		code |= outBottom
	}
	return code
}

// clipLine clips (x0,y0)-(x1,y1) to the logical rectangle [0,w-1]x[0,h-1]
// using Cohen-Sutherland. Reports false if the segment is entirely
// outside.
func clipLine(x0, y0, x1, y1, w, h int) (int, int, int, int, bool) {
	oc0 := outcode(x0, y0, w, h)
	oc1 := outcode(x1, y1, w, h)
	for {
		if oc0|oc1 == 0 {
			return x0, y0, x1, y1, true
		}
		if oc0&oc1 != 0 {
			return 0, 0, 0, 0, false
		}
		var x, y int
		outside := oc0
		if outside == 0 {
			outside = oc1
		}
		switch {
		case outside&outBottom != 0:
			x = x0 + (x1-x0)*(h-1-y0)/(y1-y0)
			y = h - 1
		case outside&outTop != 0:
			x = x0 + (x1-x0)*(0-y0)/(y1-y0)
			y = 0
		case outside&outRight != 0:
			y = y0 + (y1-y0)*(w-1-x0)/(x1-x0)
			x = w - 1
		case outside&outLeft != 0:
			y = y0 + (y1-y0)*(0-x0)/(x1-x0)
			x = 0
		}
		if outside == oc0 {
			x0, y0 = x, y
			oc0 = outcode(x0, y0, w, h)
		} else {
			x1, y1 = x, y
			oc1 = outcode(x1, y1, w, h)
		}
	}
}

// Line draws a straight line from (x0,y0) to (x1,y1), clipped to the
// logical bounds. Axis-aligned segments shortcut to HLine/VLine.
func (b *Buffer) Line(x0, y0, x1, y1, color int) {
	if y0 == y1 {
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		b.HLine(x0, y0, x1-x0+1, color)
		return
	}
	if x0 == x1 {
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		b.VLine(x0, y0, y1-y0+1, color)
		return
	}

	cx0, cy0, cx1, cy1, ok := clipLine(x0, y0, x1, y1, b.LogicalWidth(), b.LogicalHeight())
	if !ok {
		return
	}
	b.bresenhamLine(cx0, cy0, cx1, cy1, color)
}

func (b *Buffer) bresenhamLine(x0, y0, x1, y1, color int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	for {
		b.PixelUnchecked(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rect draws an unfilled rectangle outline.
func (b *Buffer) Rect(x, y, w, h, color int) {
	if w <= 0 || h <= 0 {
		return
	}
	b.HLine(x, y, w, color)
	b.HLine(x, y+h-1, w, color)
	b.VLine(x, y, h, color)
	b.VLine(x+w-1, y, h, color)
}

// FillRect fills a rectangle with h horizontal line draws.
func (b *Buffer) FillRect(x, y, w, h, color int) {
	x0, w0 := clipRun(x, w, b.LogicalWidth())
	y0, h0 := clipRun(y, h, b.LogicalHeight())
	if w0 <= 0 || h0 <= 0 {
		return
	}
	for row := 0; row < h0; row++ {
		b.HLine(x0, y0+row, w0, color)
	}
}

// Circle draws an unfilled circle of radius r centered at (cx, cy)
// using integer Bresenham.
func (b *Buffer) Circle(cx, cy, r, color int) {
	x, y := r, 0
	err := 1 - r
	for x >= y {
		b.circlePoints(cx, cy, x, y, color)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func (b *Buffer) circlePoints(cx, cy, x, y, color int) {
	b.PixelUnchecked(cx+x, cy+y, color)
	b.PixelUnchecked(cx-x, cy+y, color)
	b.PixelUnchecked(cx+x, cy-y, color)
	b.PixelUnchecked(cx-x, cy-y, color)
	b.PixelUnchecked(cx+y, cy+x, color)
	b.PixelUnchecked(cx-y, cy+x, color)
	b.PixelUnchecked(cx+y, cy-x, color)
	b.PixelUnchecked(cx-y, cy-x, color)
}

// FillCircle fills a circle by emitting symmetric horizontal spans
// between mirror points on each Bresenham step.
func (b *Buffer) FillCircle(cx, cy, r, color int) {
	x, y := r, 0
	err := 1 - r
	for x >= y {
		b.HLine(cx-x, cy+y, 2*x+1, color)
		b.HLine(cx-x, cy-y, 2*x+1, color)
		b.HLine(cx-y, cy+x, 2*y+1, color)
		b.HLine(cx-y, cy-x, 2*y+1, color)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// Triangle draws the three edges of a triangle.
func (b *Buffer) Triangle(x0, y0, x1, y1, x2, y2, color int) {
	b.Line(x0, y0, x1, y1, color)
	b.Line(x1, y1, x2, y2, color)
	b.Line(x2, y2, x0, y0, color)
}

// FillTriangle fills a triangle via a standard sort-by-y scanline fill.
func (b *Buffer) FillTriangle(x0, y0, x1, y1, x2, y2, color int) {
	if y0 > y1 {
		x0, y0, x1, y1 = x1, y1, x0, y0
	}
	if y0 > y2 {
		x0, y0, x2, y2 = x2, y2, x0, y0
	}
	if y1 > y2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	if y0 == y2 {
		minX, maxX := x0, x0
		for _, x := range []int{x1, x2} {
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
		}
		b.HLine(minX, y0, maxX-minX+1, color)
		return
	}

	for y := y0; y <= y2; y++ {
		var xa int
		if y < y1 {
			xa = interpX(x0, y0, x1, y1, y)
		} else {
			xa = interpX(x1, y1, x2, y2, y)
		}
		xb := interpX(x0, y0, x2, y2, y)
		if xa > xb {
			xa, xb = xb, xa
		}
		b.HLine(xa, y, xb-xa+1, color)
	}
}

func interpX(x0, y0, x1, y1, y int) int {
	if y1 == y0 {
		return x0
	}
	return x0 + (x1-x0)*(y-y0)/(y1-y0)
}

// RoundedRect draws four straight edges joined by a Bresenham quarter
// arc of radius r at each corner.
func (b *Buffer) RoundedRect(x, y, w, h, r, color int) {
	if 2*r > w || 2*r > h {
		r = min(w, h) / 2
	}
	b.HLine(x+r, y, w-2*r, color)
	b.HLine(x+r, y+h-1, w-2*r, color)
	b.VLine(x, y+r, h-2*r, color)
	b.VLine(x+w-1, y+r, h-2*r, color)

	b.quarterArc(x+r, y+r, r, color, -1, -1)
	b.quarterArc(x+w-1-r, y+r, r, color, 1, -1)
	b.quarterArc(x+r, y+h-1-r, r, color, -1, 1)
	b.quarterArc(x+w-1-r, y+h-1-r, r, color, 1, 1)
}

// quarterArc draws the single octant pair of a Bresenham circle that
// lies in the quadrant (sx, sy) relative to center (cx, cy).
func (b *Buffer) quarterArc(cx, cy, r, color, sx, sy int) {
	x, y := r, 0
	err := 1 - r
	for x >= y {
		b.PixelUnchecked(cx+sx*x, cy+sy*y, color)
		b.PixelUnchecked(cx+sx*y, cy+sy*x, color)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// Blit draws a 1-bit, MSB-first bitmap of logical size w x h at (x, y).
// Set bits draw color; clear bits are transparent. srcStride is the
// bitmap's row stride in bytes (ceil(w/8) for a tightly packed source).
func (b *Buffer) Blit(bitmap []byte, srcStride, x, y, w, h, color int) {
	ctx := b.BlitContext(color)
	for row := 0; row < h; row++ {
		rowOff := row * srcStride
		for col := 0; col < w; col++ {
			byteIdx := rowOff + col/8
			if byteIdx >= len(bitmap) {
				continue
			}
			bit := byte(0x80) >> uint(col%8)
			if bitmap[byteIdx]&bit == 0 {
				continue
			}
			lx, ly := x+col, y+row
			if lx < 0 || ly < 0 || lx >= b.LogicalWidth() || ly >= b.LogicalHeight() {
				continue
			}
			px, py := ctx.Transform(lx, ly)
			ctx.SetPixel(px, py)
		}
	}
}
