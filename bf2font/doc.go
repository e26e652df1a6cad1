// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bf2font reads the BF2 bitmap font format and renders text onto
// a pixbuf.Buffer through an LRU glyph cache that streams bitmaps from
// disk on demand rather than loading a whole font up front.
package bf2font
