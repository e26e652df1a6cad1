// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package magtag provides Canvas, a façade over a pixel buffer, a text
// renderer and an SSD1680 panel driver for a 2.9" 296x128 black/white
// e-paper display.
package magtag
