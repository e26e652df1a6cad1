// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import (
	"context"

	"github.com/mauro-lanza/magtag-drivers/ssd1680"
)

// Driver is the subset of ssd1680.Driver that Canvas depends on. Canvas
// is written against this interface, not the concrete type, so tests can
// drive it with a fake panel driver the way the panel driver's own tests
// drive a fake transport.
type Driver interface {
	Init(ctx context.Context, clear bool) error
	Display(ctx context.Context, data []byte, full, forceFull, stayAwake bool) error
	DisplayGray(ctx context.Context, blackPlane, redPlane []byte) error
	DisplayLUTDefaultVoltages(ctx context.Context, lut, black, red []byte) error
	DisplayRegion(ctx context.Context, data []byte, x, y, w, h int) error
	DisplayRegions(ctx context.Context, regions []ssd1680.Region) error
	FastClear(ctx context.Context, color byte) error
	Sleep(ctx context.Context, retainRAM bool) error
	SetInvert(ctx context.Context, invertBW, invertRed bool) error
	ReadTemperature(ctx context.Context) (float64, error)
	CheckTemperature(ctx context.Context) (float64, bool, error)
	State() *ssd1680.State
}

var _ Driver = (*ssd1680.Driver)(nil)
