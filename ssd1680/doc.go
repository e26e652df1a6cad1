// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1680 drives the Solomon Systech SSD1680 e-paper controller
// used by the 2.9" 296x128 black/white panel. It owns the refresh state
// machine, the command sequences for full/partial/custom-LUT refreshes,
// and the differential-update bookkeeping that lets a caller write only
// the regions of the panel that changed.
package ssd1680
