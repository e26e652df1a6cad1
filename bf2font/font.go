// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bf2font

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/image/math/fixed"
)

const (
	magic0 = 'B'
	magic1 = '2'

	headerSize      = 12
	flagProportional = 1 << 0
	flag32BitCodepoints = 1 << 1
)

// indexEntry is one font index record: the glyph's advance width and
// its bitmap offset relative to the start of the bitmap section.
type indexEntry struct {
	width  byte
	offset uint32 // 24-bit value
}

// Font is an open BF2 font file. Glyph bitmaps are streamed from disk on
// demand rather than loaded eagerly; only the small fixed header and
// index are read by Open.
type Font struct {
	r    io.ReadSeeker
	closer io.Closer

	Proportional       bool
	CodepointsAre32Bit bool
	MaxWidth           int
	Height             int
	BytesPerRow        int
	DefaultWidth       int
	GlyphCount         int

	index         map[rune]indexEntry
	bitmapSection int64
}

// Open parses the BF2 header and index from path, keeping the file open
// for on-demand glyph bitmap reads. Call Close when done.
func Open(path string) (*Font, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bf2font: open %s: %w", path, err)
	}
	font, err := Read(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	font.closer = f
	return font, nil
}

// Read parses a BF2 font from an already-open ReadSeeker. The caller
// retains ownership; Close on the returned Font is then a no-op on r.
func Read(r io.ReadSeeker) (*Font, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("bf2font: read header: %w: %w", ErrBadFont, err)
	}
	if header[0] != magic0 || header[1] != magic1 {
		return nil, fmt.Errorf("bf2font: %w: bad magic %q", ErrBadFont, header[0:2])
	}
	flags := header[3]
	f := &Font{
		r:                  r,
		Proportional:       flags&flagProportional != 0,
		CodepointsAre32Bit: flags&flag32BitCodepoints != 0,
		MaxWidth:           int(header[4]),
		Height:             int(header[5]),
		GlyphCount:         int(binary.LittleEndian.Uint16(header[6:8])),
		BytesPerRow:        int(header[8]),
		DefaultWidth:       int(header[9]),
		index:              make(map[rune]indexEntry),
	}

	entrySize := 6
	if f.CodepointsAre32Bit {
		entrySize = 8
	}
	raw := make([]byte, entrySize*f.GlyphCount)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("bf2font: read index: %w: %w", ErrBadFont, err)
	}
	for i := 0; i < f.GlyphCount; i++ {
		e := raw[i*entrySize : (i+1)*entrySize]
		var cp rune
		var width byte
		var offBytes []byte
		if f.CodepointsAre32Bit {
			cp = rune(binary.LittleEndian.Uint32(e[0:4]))
			width = e[4]
			offBytes = e[5:8]
		} else {
			cp = rune(binary.LittleEndian.Uint16(e[0:2]))
			width = e[2]
			offBytes = e[3:6]
		}
		offset := uint32(offBytes[0]) | uint32(offBytes[1])<<8 | uint32(offBytes[2])<<16
		f.index[cp] = indexEntry{width: width, offset: offset}
	}

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("bf2font: %w: %w", ErrBadFont, err)
	}
	f.bitmapSection = pos
	return f, nil
}

// Close releases the underlying file, if Font opened it itself.
func (f *Font) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// BitmapSize is the fixed size in bytes of every glyph's bitmap.
func (f *Font) BitmapSize() int { return f.Height * f.BytesPerRow }

// Contains reports whether the font has a glyph for codepoint cp.
func (f *Font) Contains(cp rune) bool {
	_, ok := f.index[cp]
	return ok
}

// Width returns the glyph's advance width, or DefaultWidth if cp is
// absent from the font.
func (f *Font) Width(cp rune) int {
	if e, ok := f.index[cp]; ok {
		return int(e.width)
	}
	return f.DefaultWidth
}

// Advance is Width expressed as golang.org/x/image/math/fixed.Int26_6, the
// unit golang.org/x/image/font.Face.GlyphAdvance uses, so BF2 widths
// compose with x/image/font-based layout code without a manual conversion.
func (f *Font) Advance(cp rune) fixed.Int26_6 {
	return fixed.I(f.Width(cp))
}

// ReadGlyphBitmap streams the bitmap for cp from disk. It returns
// ErrBadFont if cp is not indexed.
func (f *Font) ReadGlyphBitmap(cp rune) ([]byte, error) {
	e, ok := f.index[cp]
	if !ok {
		return nil, fmt.Errorf("bf2font: %w: codepoint %U not in font", ErrBadFont, cp)
	}
	size := f.BitmapSize()
	buf := make([]byte, size)
	if _, err := f.r.Seek(f.bitmapSection+int64(e.offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("bf2font: seek glyph %U: %w", cp, err)
	}
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, fmt.Errorf("bf2font: read glyph %U: %w: %w", cp, ErrBadFont, err)
	}
	return buf, nil
}
