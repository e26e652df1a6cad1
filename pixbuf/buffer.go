// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pixbuf

import "fmt"

// Depth is the number of bits stored per pixel.
type Depth int

const (
	Depth1 Depth = 1
	Depth2 Depth = 2
)

// Rotation is the logical-to-physical orientation applied to every
// coordinate passed into the buffer.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// rotationProps returns (swapXY, flipX, flipY) for rot.
func rotationProps(rot Rotation) (swapXY, flipX, flipY bool) {
	switch rot {
	case Rotate90:
		return true, true, false
	case Rotate180:
		return false, true, true
	case Rotate270:
		return true, false, true
	default:
		return false, false, false
	}
}

// Buffer is a packed, rotatable pixel buffer in physical (un-rotated)
// byte order. Logical coordinates passed to its drawing methods are
// transformed to physical coordinates before any byte is touched.
type Buffer struct {
	physW, physH int
	depth        Depth
	rotation     Rotation
	stride       int // bytes per physical row
	data         []byte
	inverted     bool

	lutOnce  bool
	lutMono  [256]byte
	lutBlack [256]byte
	lutRed   [256]byte
}

// New allocates a buffer physW x physH pixels deep, at the given depth
// and rotation. physW must be a multiple of 8 for Depth1 and a multiple
// of 4 for Depth2; the panel geometry this module targets (128x296)
// satisfies both.
func New(physW, physH int, depth Depth, rotation Rotation) (*Buffer, error) {
	if depth != Depth1 && depth != Depth2 {
		return nil, fmt.Errorf("pixbuf: invalid depth %d", depth)
	}
	pixelsPerByte := 8 / int(depth)
	if physW%pixelsPerByte != 0 {
		return nil, fmt.Errorf("pixbuf: width %d must be a multiple of %d at depth %d", physW, pixelsPerByte, depth)
	}
	stride := physW / pixelsPerByte
	return &Buffer{
		physW:    physW,
		physH:    physH,
		depth:    depth,
		rotation: rotation,
		stride:   stride,
		data:     make([]byte, stride*physH),
	}, nil
}

// PhysWidth and PhysHeight are the buffer's un-rotated dimensions.
func (b *Buffer) PhysWidth() int  { return b.physW }
func (b *Buffer) PhysHeight() int { return b.physH }
func (b *Buffer) Depth() Depth    { return b.depth }
func (b *Buffer) Stride() int     { return b.stride }

// LogicalWidth and LogicalHeight are the dimensions callers should use
// when addressing the buffer through its rotation.
func (b *Buffer) LogicalWidth() int {
	if swapXY, _, _ := rotationProps(b.rotation); swapXY {
		return b.physH
	}
	return b.physW
}

func (b *Buffer) LogicalHeight() int {
	if swapXY, _, _ := rotationProps(b.rotation); swapXY {
		return b.physW
	}
	return b.physH
}

// Bytes returns the raw physical-orientation backing array. Callers must
// not retain it across further mutation of the buffer.
func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) transformPoint(x, y int) (px, py int) {
	swapXY, flipX, flipY := rotationProps(b.rotation)
	if swapXY {
		x, y = y, x
	}
	if flipX {
		px = b.physW - 1 - x
	} else {
		px = x
	}
	if flipY {
		py = b.physH - 1 - y
	} else {
		py = y
	}
	return px, py
}

func (b *Buffer) transformRegion(x, y, w, h int) (px, py, pw, ph int) {
	swapXY, flipX, flipY := rotationProps(b.rotation)
	if swapXY {
		x, y = y, x
		w, h = h, w
	}
	if flipX {
		px = b.physW - w - x
	} else {
		px = x
	}
	if flipY {
		py = b.physH - h - y
	} else {
		py = y
	}
	return px, py, w, h
}

// PhysicalRegion converts a logical rectangle to physical coordinates
// using the same rotation rule as transformRegion, for callers outside
// the package (e.g. magtag.Canvas) that need the physical rectangle to
// address the panel driver directly.
func (b *Buffer) PhysicalRegion(x, y, w, h int) (px, py, pw, ph int) {
	return b.transformRegion(x, y, w, h)
}

// invertMask is the per-pixel all-ones value at the buffer's depth.
func (b *Buffer) invertMask() int {
	return (1 << uint(b.depth)) - 1
}

func (b *Buffer) effectiveColor(color int) int {
	if b.inverted {
		return color ^ b.invertMask()
	}
	return color
}

// Clear fills the whole buffer with color, honoring the current
// inversion flag.
func (b *Buffer) Clear(color int) {
	ec := byte(b.effectiveColor(color))
	var pattern byte
	switch b.depth {
	case Depth1:
		if ec&1 != 0 {
			pattern = 0xFF
		} else {
			pattern = 0x00
		}
	case Depth2:
		ec &= 0x3
		pattern = ec | ec<<2 | ec<<4 | ec<<6
	}
	for i := range b.data {
		b.data[i] = pattern
	}
}

// Invert XORs every stored byte and toggles the inversion flag so
// future Clear/pixel calls stay consistent with the now-inverted image.
func (b *Buffer) Invert() {
	for i := range b.data {
		b.data[i] = ^b.data[i]
	}
	b.inverted = !b.inverted
}

// Pixel sets the logical pixel at (x, y) to color, clipping silently if
// out of bounds.
func (b *Buffer) Pixel(x, y, color int) {
	if x < 0 || y < 0 || x >= b.LogicalWidth() || y >= b.LogicalHeight() {
		return
	}
	b.PixelUnchecked(x, y, color)
}

// PixelUnchecked writes without bounds checking; callers must guarantee
// (x, y) is within logical bounds.
func (b *Buffer) PixelUnchecked(x, y, color int) {
	px, py := b.transformPoint(x, y)
	b.setPhysPixel(px, py, b.effectiveColor(color))
}

// GetPixel returns the value stored at logical (x, y): the effective
// color, i.e. the color as written after the inversion flag was applied,
// so after Invert it reads the complement of what was drawn before.
func (b *Buffer) GetPixel(x, y int) int {
	px, py := b.transformPoint(x, y)
	return b.getPhysPixel(px, py)
}

func (b *Buffer) setPhysPixel(px, py, color int) {
	if px < 0 || py < 0 || px >= b.physW || py >= b.physH {
		return
	}
	switch b.depth {
	case Depth1:
		byteIdx := py*b.stride + px/8
		bit := uint(7 - px%8)
		if color&1 != 0 {
			b.data[byteIdx] |= 1 << bit
		} else {
			b.data[byteIdx] &^= 1 << bit
		}
	case Depth2:
		byteIdx := py*b.stride + px/4
		shift := uint(6 - 2*(px%4))
		mask := byte(0x3) << shift
		b.data[byteIdx] = b.data[byteIdx]&^mask | byte(color&0x3)<<shift
	}
}

func (b *Buffer) getPhysPixel(px, py int) int {
	if px < 0 || py < 0 || px >= b.physW || py >= b.physH {
		return 0
	}
	switch b.depth {
	case Depth1:
		byteIdx := py*b.stride + px/8
		bit := uint(7 - px%8)
		return int(b.data[byteIdx]>>bit) & 1
	case Depth2:
		byteIdx := py*b.stride + px/4
		shift := uint(6 - 2*(px%4))
		return int(b.data[byteIdx]>>shift) & 0x3
	}
	return 0
}

// HLine draws a horizontal logical line of length n starting at (x, y).
// After rotation this may become a physical vertical run. At depth 1 a
// run that stays physically horizontal uses the byte-optimized fill; a
// physically vertical run is drawn pixel by pixel.
func (b *Buffer) HLine(x, y, n, color int) {
	x, n = clipRun(x, n, b.LogicalWidth())
	if n <= 0 || y < 0 || y >= b.LogicalHeight() {
		return
	}
	b.runUnchecked(x, y, n, color, true)
}

// VLine draws a vertical logical line of length n starting at (x, y).
func (b *Buffer) VLine(x, y, n, color int) {
	y, n = clipRun(y, n, b.LogicalHeight())
	if n <= 0 || x < 0 || x >= b.LogicalWidth() {
		return
	}
	b.runUnchecked(x, y, n, color, false)
}

func clipRun(start, n, limit int) (int, int) {
	if start < 0 {
		n += start
		start = 0
	}
	if start+n > limit {
		n = limit - start
	}
	return start, n
}

// runUnchecked draws a horizontal (horiz=true) or vertical run of n
// logical pixels starting at (x, y), after clipping. It resolves the
// post-rotation orientation and, for Depth1 horizontal physical runs,
// uses the byte-optimized path; every other case falls back to a
// per-pixel loop via PixelUnchecked, which transforms each pixel.
func (b *Buffer) runUnchecked(x, y, n, color int, horiz bool) {
	swapXY, _, _ := rotationProps(b.rotation)
	physHoriz := horiz != swapXY // swap flips which axis is physical-horizontal

	if b.depth == Depth1 && physHoriz {
		lxEnd, lyEnd := x, y
		if horiz {
			lxEnd = x + n - 1
		} else {
			lyEnd = y + n - 1
		}
		px0, py0 := b.transformPoint(x, y)
		px1, py1 := b.transformPoint(lxEnd, lyEnd)
		if py0 == py1 {
			start, end := px0, px1
			if start > end {
				start, end = end, start
			}
			b.fillPhysicalHRun(py0, start, end-start+1, b.effectiveColor(color))
			return
		}
	}

	b.runByPixel(x, y, n, color, horiz)
}

func (b *Buffer) runByPixel(x, y, n, color int, horiz bool) {
	for i := 0; i < n; i++ {
		if horiz {
			b.PixelUnchecked(x+i, y, color)
		} else {
			b.PixelUnchecked(x, y+i, color)
		}
	}
}

// fillPhysicalHRun sets len 1-bit pixels starting at physical column x0
// on physical row py using a byte-optimized run fill: a single mask when
// the run fits in one byte, otherwise a masked first byte, a memset
// middle, and a masked last byte.
func (b *Buffer) fillPhysicalHRun(py, x0, length int, color int) {
	if length <= 0 {
		return
	}
	b0 := x0 / 8
	bit0 := x0 % 8
	x1 := x0 + length - 1
	b1 := x1 / 8
	bit1 := x1 % 8
	rowOff := py * b.stride

	set := color&1 != 0

	if b0 == b1 {
		mask := byte(0xFF>>uint(bit0)) & byte(0xFF<<uint(7-bit1))
		if set {
			b.data[rowOff+b0] |= mask
		} else {
			b.data[rowOff+b0] &^= mask
		}
		return
	}

	firstMask := byte(0xFF >> uint(bit0))
	if set {
		b.data[rowOff+b0] |= firstMask
	} else {
		b.data[rowOff+b0] &^= firstMask
	}

	var fill byte
	if set {
		fill = 0xFF
	}
	for bi := b0 + 1; bi < b1; bi++ {
		b.data[rowOff+bi] = fill
	}

	lastMask := byte(0xFF << uint(7-bit1))
	if set {
		b.data[rowOff+b1] |= lastMask
	} else {
		b.data[rowOff+b1] &^= lastMask
	}
}

// GetRegion returns a packed copy of the sub-rectangle (x, y, w, h). If
// physical is true, the coordinates are already physical; otherwise they
// are transformed first. For Depth1, x and w must be multiples of 8.
func (b *Buffer) GetRegion(x, y, w, h int, physical bool) ([]byte, error) {
	px, py, pw, ph := x, y, w, h
	if !physical {
		px, py, pw, ph = b.transformRegion(x, y, w, h)
	}
	switch b.depth {
	case Depth1:
		if px&7 != 0 || pw&7 != 0 {
			return nil, fmt.Errorf("pixbuf: get region: x and w must be multiples of 8, got x=%d w=%d", px, pw)
		}
		xByte := px / 8
		wByte := pw / 8
		out := make([]byte, wByte*ph)
		for row := 0; row < ph; row++ {
			src := (py+row)*b.stride + xByte
			dst := row * wByte
			copy(out[dst:dst+wByte], b.data[src:src+wByte])
		}
		return out, nil
	case Depth2:
		out := make([]byte, 0, (pw+3)/4*ph)
		for row := 0; row < ph; row++ {
			for col := 0; col < pw; col += 4 {
				var packed byte
				for i := 0; i < 4 && col+i < pw; i++ {
					v := b.getPhysPixel(px+col+i, py+row)
					packed |= byte(v&0x3) << uint(6-2*i)
				}
				out = append(out, packed)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("pixbuf: get region: unsupported depth %d", b.depth)
}

// ToMono converts the buffer to a packed 1-bit representation. At
// Depth1 this is a copy of the raw bytes; at Depth2 it thresholds each
// pixel (v >= 2 is white) via the lazily-built conversion LUT.
func (b *Buffer) ToMono() []byte {
	if b.depth == Depth1 {
		out := make([]byte, len(b.data))
		copy(out, b.data)
		return out
	}
	b.ensureLUTs()
	outStride := b.physW / 8
	out := make([]byte, outStride*b.physH)
	for row := 0; row < b.physH; row++ {
		srcRow := row * b.stride
		dstRow := row * outStride
		for i := 0; i < outStride; i++ {
			hi := b.lutMono[b.data[srcRow+2*i]]
			lo := b.lutMono[b.data[srcRow+2*i+1]]
			out[dstRow+i] = hi<<4 | lo
		}
	}
	return out
}

// ToPlanes splits a Depth2 buffer into the black and red bit planes
// display_gray expects. It panics if called on a Depth1 buffer, the
// same precondition the original implementation enforces.
func (b *Buffer) ToPlanes() (black, red []byte) {
	if b.depth != Depth2 {
		panic("pixbuf: ToPlanes requires a Depth2 buffer")
	}
	b.ensureLUTs()
	outStride := b.physW / 8
	black = make([]byte, outStride*b.physH)
	red = make([]byte, outStride*b.physH)
	for row := 0; row < b.physH; row++ {
		srcRow := row * b.stride
		dstRow := row * outStride
		for i := 0; i < outStride; i++ {
			black[dstRow+i] = b.lutBlack[b.data[srcRow+2*i]]<<4 | b.lutBlack[b.data[srcRow+2*i+1]]
			red[dstRow+i] = b.lutRed[b.data[srcRow+2*i]]<<4 | b.lutRed[b.data[srcRow+2*i+1]]
		}
	}
	return black, red
}

// ensureLUTs lazily builds the three 256-entry conversion tables used by
// ToMono/ToPlanes. Each entry packs the four 2-bit pixels of one source
// byte into a 4-bit nibble of the corresponding output plane.
func (b *Buffer) ensureLUTs() {
	if b.lutOnce {
		return
	}
	for v := 0; v < 256; v++ {
		var mono, black, red byte
		for i := 0; i < 4; i++ {
			shift := uint(6 - 2*i)
			pix := (v >> shift) & 0x3
			nibbleShift := uint(3 - i)
			if pix >= 2 {
				mono |= 1 << nibbleShift
			}
			if pix&0x2 != 0 {
				black |= 1 << nibbleShift
			}
			if pix&0x1 != 0 {
				red |= 1 << nibbleShift
			}
		}
		b.lutMono[v] = mono
		b.lutBlack[v] = black
		b.lutRed[v] = red
	}
	b.lutOnce = true
}

// BlitContext bundles the fields a hot drawing loop needs so it can
// inline the rotation transform and pixel write without repeated method
// dispatch, mirroring the role PixelBuffer.get_blit_context plays for
// the shape and text renderers.
type BlitContext struct {
	Data           []byte
	PhysW, PhysH   int
	Stride         int
	SwapXY, FlipX, FlipY bool
	Color          int
	Depth          Depth
}

// BlitContext returns the hot-loop context for drawing with color.
func (b *Buffer) BlitContext(color int) BlitContext {
	swapXY, flipX, flipY := rotationProps(b.rotation)
	return BlitContext{
		Data:   b.data,
		PhysW:  b.physW,
		PhysH:  b.physH,
		Stride: b.stride,
		SwapXY: swapXY,
		FlipX:  flipX,
		FlipY:  flipY,
		Color:  b.effectiveColor(color),
		Depth:  b.depth,
	}
}

// Transform resolves logical (x, y) to physical (px, py) using the
// context's cached rotation properties.
func (c *BlitContext) Transform(x, y int) (px, py int) {
	if c.SwapXY {
		x, y = y, x
	}
	if c.FlipX {
		px = c.PhysW - 1 - x
	} else {
		px = x
	}
	if c.FlipY {
		py = c.PhysH - 1 - y
	} else {
		py = y
	}
	return px, py
}

// SetPixel writes one physical pixel through the context, used by the
// shape and text blitters' inner loops.
func (c *BlitContext) SetPixel(px, py int) {
	if px < 0 || py < 0 || px >= c.PhysW || py >= c.PhysH {
		return
	}
	switch c.Depth {
	case Depth1:
		idx := py*c.Stride + px/8
		bit := uint(7 - px%8)
		if c.Color&1 != 0 {
			c.Data[idx] |= 1 << bit
		} else {
			c.Data[idx] &^= 1 << bit
		}
	case Depth2:
		idx := py*c.Stride + px/4
		shift := uint(6 - 2*(px%4))
		mask := byte(0x3) << shift
		c.Data[idx] = c.Data[idx]&^mask | byte(c.Color&0x3)<<shift
	}
}
