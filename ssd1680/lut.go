// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

// A waveform LUT is 153 bytes, laid out as:
//
//	[0:60)    VS  - voltage source, 5 LUTs x 12 groups
//	[60:144)  TP/SR/RP - timing, 12 groups x 7 bytes
//	[144:150) FR  - frame rate, 6 bytes
//	[150:153) XON - gate scan selection, 3 bytes
//
// LUT4Gray drives the built-in 4-level grayscale mode used by
// Driver.DisplayGray. Group 0 of VS LUTs 0-3 selects one voltage level
// per gray shade; the timing bytes give each shade a short settle phase.
var LUT4Gray = buildLUT4Gray()

func buildLUT4Gray() [lutLength]byte {
	var lut [lutLength]byte

	vs := [4]byte{0x40, 0x48, 0x84, 0x88}
	for i := 0; i < 4; i++ {
		lut[i*12] = vs[i]
	}

	for g := 0; g < 12; g++ {
		base := 60 + g*7
		lut[base] = 0x0A   // TP0
		lut[base+1] = 0x0A // TP1
		lut[base+2] = 0x0A // TP2
		lut[base+3] = 0x0A // TP3
		lut[base+4] = 0x01 // SR
		lut[base+5] = 0x00 // RP
		lut[base+6] = 0x00
	}

	copy(lut[144:150], []byte{0x22, 0x22, 0x22, 0x22, 0x22, 0x22})
	copy(lut[150:153], []byte{0x00, 0x00, 0x00})
	return lut
}
