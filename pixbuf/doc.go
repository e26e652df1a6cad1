// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pixbuf implements the packed frame buffer the magtag canvas
// draws into: pixel/line/region primitives, rotation, and the bit-plane
// conversions (to_mono, to_planes) the ssd1680 driver's RAM layout
// expects.
package pixbuf
