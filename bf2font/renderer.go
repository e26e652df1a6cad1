// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bf2font

import (
	"container/list"
	"errors"
	"fmt"
	"os"

	"github.com/mauro-lanza/magtag-drivers/pixbuf"
)

// Align controls how Draw positions text relative to (x, y).
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

type cacheKey struct {
	font int
	cp   rune
}

// Renderer owns a stack of fonts (first match wins) and a byte-budgeted
// LRU cache of streamed glyph bitmaps shared across the whole stack.
// container/list backs the cache instead of a package like
// hashicorp/golang-lru because eviction here is driven by cumulative
// bitmap byte size, not entry count.
type Renderer struct {
	stack []*Font

	cacheCapacity int
	cacheSize     int
	order         *list.List
	elems         map[cacheKey]*list.Element
}

type cacheItem struct {
	key    cacheKey
	bitmap []byte
}

// NewRenderer returns a Renderer with an empty font stack and a glyph
// cache budgeted to cacheCapacityBytes of stored bitmaps.
func NewRenderer(cacheCapacityBytes int) *Renderer {
	return &Renderer{
		cacheCapacity: cacheCapacityBytes,
		order:         list.New(),
		elems:         make(map[cacheKey]*list.Element),
	}
}

// LoadFont replaces the font stack with a single font.
func (r *Renderer) LoadFont(path string) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	r.closeStack()
	r.stack = []*Font{f}
	r.invalidateCache()
	return nil
}

// AddFont appends a font to the stack. If optional is true, a missing
// file is swallowed and AddFont returns (nil, false semantics folded
// into a nil error with no effect on the stack).
func (r *Renderer) AddFont(path string, optional bool) error {
	f, err := Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	r.stack = append(r.stack, f)
	return nil
}

func (r *Renderer) closeStack() {
	for _, f := range r.stack {
		f.Close()
	}
}

func (r *Renderer) invalidateCache() {
	r.order.Init()
	r.elems = make(map[cacheKey]*list.Element)
	r.cacheSize = 0
}

// Close releases every font's underlying file handle.
func (r *Renderer) Close() {
	r.closeStack()
	r.stack = nil
}

// resolve walks the font stack and returns the first font containing cp.
func (r *Renderer) resolve(cp rune) (idx int, font *Font, ok bool) {
	for i, f := range r.stack {
		if f.Contains(cp) {
			return i, f, true
		}
	}
	return 0, nil, false
}

// glyphBitmap returns cp's bitmap from cache, populating the cache on
// miss and evicting from the LRU head until the new entry fits.
func (r *Renderer) glyphBitmap(idx int, font *Font, cp rune) ([]byte, error) {
	key := cacheKey{font: idx, cp: cp}
	if el, ok := r.elems[key]; ok {
		r.order.MoveToBack(el)
		return el.Value.(*cacheItem).bitmap, nil
	}

	bitmap, err := font.ReadGlyphBitmap(cp)
	if err != nil {
		return nil, err
	}

	for r.cacheCapacity > 0 && r.cacheSize+len(bitmap) > r.cacheCapacity && r.order.Len() > 0 {
		front := r.order.Front()
		evicted := front.Value.(*cacheItem)
		r.order.Remove(front)
		delete(r.elems, evicted.key)
		r.cacheSize -= len(evicted.bitmap)
	}

	item := &cacheItem{key: key, bitmap: bitmap}
	el := r.order.PushBack(item)
	r.elems[key] = el
	r.cacheSize += len(bitmap)
	return bitmap, nil
}

func (r *Renderer) primaryFont() *Font {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[0]
}

// MeasureWidth sums (advance+1)*scale for each found glyph, plus
// DefaultWidth*scale (no +1) for each codepoint missing from every font in
// the stack, minus one scale of trailing spacing.
func (r *Renderer) MeasureWidth(text string, scale int) int {
	primary := r.primaryFont()
	if primary == nil {
		return 0
	}
	total := 0
	n := 0
	for _, cp := range text {
		n++
		_, font, ok := r.resolve(cp)
		if ok {
			total += (font.Width(cp) + 1) * scale
		} else {
			total += primary.DefaultWidth * scale
		}
	}
	if n > 0 {
		total -= scale
	}
	return total
}

// MeasureHeight returns the primary font's glyph height scaled by scale.
func (r *Renderer) MeasureHeight(scale int) int {
	primary := r.primaryFont()
	if primary == nil {
		return 0
	}
	return primary.Height * scale
}

// PreloadGlyphs forces cache population for a set of codepoints.
func (r *Renderer) PreloadGlyphs(chars []rune) error {
	for _, cp := range chars {
		idx, font, ok := r.resolve(cp)
		if !ok {
			continue
		}
		if _, err := r.glyphBitmap(idx, font, cp); err != nil {
			return err
		}
	}
	return nil
}

// Draw renders text onto buf at (x, y) with the given color and integer
// scale, aligned per align. It performs one pass to collect glyphs and
// total width, then blits each glyph with pre-clipping against buf's
// logical bounds.
func (r *Renderer) Draw(buf *pixbuf.Buffer, text string, x, y, color, scale int, align Align) error {
	if scale <= 0 {
		scale = 1
	}
	width := r.MeasureWidth(text, scale)
	switch align {
	case AlignCenter:
		x -= width / 2
	case AlignRight:
		x -= width
	}

	cursor := x
	for _, cp := range text {
		idx, font, ok := r.resolve(cp)
		if !ok {
			if primary := r.primaryFont(); primary != nil {
				cursor += primary.DefaultWidth * scale
			}
			continue
		}
		bitmap, err := r.glyphBitmap(idx, font, cp)
		if err != nil {
			return fmt.Errorf("bf2font: draw: %w", err)
		}
		glyphWidth := font.Width(cp)
		r.drawGlyph(buf, bitmap, font.BytesPerRow, cursor, y, glyphWidth, font.Height, color, scale)
		cursor += (glyphWidth + 1) * scale
	}
	return nil
}

// drawGlyph blits one scaled glyph bitmap, clipping rows/columns to the
// buffer's logical bounds up front so the inner loop only bounds-checks
// at the scaled edges.
func (r *Renderer) drawGlyph(buf *pixbuf.Buffer, bitmap []byte, bytesPerRow, x, y, w, h, color, scale int) {
	logW, logH := buf.LogicalWidth(), buf.LogicalHeight()

	rowStart, rowEnd := 0, h
	if y < 0 {
		rowStart = -y / scale
	}
	if y+h*scale > logH {
		rowEnd = (logH - y + scale - 1) / scale
	}
	colStart, colEnd := 0, w
	if x < 0 {
		colStart = -x / scale
	}
	if x+w*scale > logW {
		colEnd = (logW - x + scale - 1) / scale
	}

	for row := rowStart; row < rowEnd; row++ {
		byteRow := row * bytesPerRow
		for col := colStart; col < colEnd; col++ {
			byteIdx := byteRow + col/8
			if byteIdx >= len(bitmap) {
				continue
			}
			bit := byte(0x80) >> uint(col%8)
			if bitmap[byteIdx]&bit == 0 {
				continue
			}
			for sy := 0; sy < scale; sy++ {
				for sx := 0; sx < scale; sx++ {
					buf.Pixel(x+col*scale+sx, y+row*scale+sy, color)
				}
			}
		}
	}
}
