// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bf2font

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/image/math/fixed"
)

// buildBF2 assembles a minimal BF2 file in memory: a 6x8 font with
// glyphs for 'A' and 'B', bytes_per_row=1, one byte per row.
func buildBF2(t *testing.T, codepoints32Bit bool) []byte {
	t.Helper()
	glyphs := []struct {
		cp     rune
		width  byte
		bitmap []byte
	}{
		{'A', 6, []byte{0x08, 0x14, 0x22, 0x3E, 0x22, 0x22, 0x22, 0x00}},
		{'B', 6, []byte{0x3C, 0x22, 0x22, 0x3C, 0x22, 0x22, 0x3C, 0x00}},
	}

	var flags byte = flagProportional
	if codepoints32Bit {
		flags |= flag32BitCodepoints
	}

	header := make([]byte, headerSize)
	header[0], header[1] = magic0, magic1
	header[2] = 1 // version
	header[3] = flags
	header[4] = 6              // max_w
	header[5] = 8              // height
	binary.LittleEndian.PutUint16(header[6:8], uint16(len(glyphs)))
	header[8] = 1 // bytes_per_row
	header[9] = 5 // default_width

	entrySize := 6
	if codepoints32Bit {
		entrySize = 8
	}
	index := make([]byte, entrySize*len(glyphs))
	var bitmaps []byte
	for i, g := range glyphs {
		offset := uint32(len(bitmaps))
		e := index[i*entrySize : (i+1)*entrySize]
		if codepoints32Bit {
			binary.LittleEndian.PutUint32(e[0:4], uint32(g.cp))
			e[4] = g.width
			e[5], e[6], e[7] = byte(offset), byte(offset>>8), byte(offset>>16)
		} else {
			binary.LittleEndian.PutUint16(e[0:2], uint16(g.cp))
			e[2] = g.width
			e[3], e[4], e[5] = byte(offset), byte(offset>>8), byte(offset>>16)
		}
		bitmaps = append(bitmaps, g.bitmap...)
	}

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(index)
	buf.Write(bitmaps)
	return buf.Bytes()
}

func TestReadParsesHeaderAndIndex(t *testing.T) {
	raw := buildBF2(t, false)
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Height != 8 || f.BytesPerRow != 1 || f.DefaultWidth != 5 || f.GlyphCount != 2 {
		t.Errorf("unexpected header fields: %+v", f)
	}
	if !f.Contains('A') || !f.Contains('B') {
		t.Error("expected glyphs A and B")
	}
	if f.Contains('Z') {
		t.Error("should not contain an unindexed codepoint")
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	raw := buildBF2(t, false)
	raw[0] = 'X'
	_, err := Read(bytes.NewReader(raw))
	if !errors.Is(err, ErrBadFont) {
		t.Fatalf("err = %v, want ErrBadFont", err)
	}
}

func TestReadRejectsTruncatedHeader(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{'B', '2', 1}))
	if !errors.Is(err, ErrBadFont) {
		t.Fatalf("err = %v, want ErrBadFont", err)
	}
}

func TestReadGlyphBitmapStreamsCorrectBytes(t *testing.T) {
	raw := buildBF2(t, false)
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	bitmap, err := f.ReadGlyphBitmap('B')
	if err != nil {
		t.Fatalf("ReadGlyphBitmap: %v", err)
	}
	want := []byte{0x3C, 0x22, 0x22, 0x3C, 0x22, 0x22, 0x3C, 0x00}
	if !bytes.Equal(bitmap, want) {
		t.Errorf("ReadGlyphBitmap('B') = %v, want %v", bitmap, want)
	}
}

func TestReadGlyphBitmapMissingCodepoint(t *testing.T) {
	raw := buildBF2(t, false)
	f, _ := Read(bytes.NewReader(raw))
	if _, err := f.ReadGlyphBitmap('Z'); !errors.Is(err, ErrBadFont) {
		t.Fatalf("err = %v, want ErrBadFont", err)
	}
}

func Test32BitCodepointIndex(t *testing.T) {
	raw := buildBF2(t, true)
	f, err := Read(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !f.CodepointsAre32Bit {
		t.Error("expected CodepointsAre32Bit to be true")
	}
	if !f.Contains('A') {
		t.Error("expected glyph A with 32-bit codepoint index")
	}
}

func TestAdvanceMatchesWidthAsFixedPoint(t *testing.T) {
	raw := buildBF2(t, false)
	f, _ := Read(bytes.NewReader(raw))
	if got, want := f.Advance('A'), fixed.I(6); got != want {
		t.Errorf("Advance('A') = %v, want %v", got, want)
	}
	if got, want := f.Advance('Z'), fixed.I(f.DefaultWidth); got != want {
		t.Errorf("Advance('Z') = %v, want DefaultWidth %v", got, want)
	}
}
