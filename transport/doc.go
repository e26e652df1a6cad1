// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport provides the byte-level command/data interface that the
// ssd1680 package drives. It wraps a periph.io SPI connection and the four
// GPIO lines (CS, D/C, RST, BUSY) a SSD1680-class e-paper panel needs, and
// owns its two blocking hardware operations: hardware reset and the
// BUSY-polling loop.
package transport
