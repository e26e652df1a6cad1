// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import "time"

// Command opcodes, following periph's waveshare2in13v4 naming convention
// of one lowerCamelCase constant per SSD1680 register.
const (
	cmdDriverOutput    byte = 0x01
	cmdGateVoltage     byte = 0x03
	cmdSourceVoltage   byte = 0x04
	cmdSoftStart       byte = 0x0C
	cmdGateScanStart   byte = 0x0F
	cmdDeepSleep       byte = 0x10
	cmdDataEntry       byte = 0x11
	cmdSWReset         byte = 0x12
	cmdHVReady         byte = 0x14
	cmdVCIDetect       byte = 0x15
	cmdTempSensor      byte = 0x18
	cmdTempWrite       byte = 0x1A
	cmdTempRead        byte = 0x1B
	cmdActivate        byte = 0x20
	cmdUpdateCtrl1     byte = 0x21
	cmdUpdateCtrl2     byte = 0x22
	cmdRAMBW           byte = 0x24
	cmdRAMRed          byte = 0x26
	cmdVCOM            byte = 0x2C
	cmdOTPDisplay      byte = 0x2D
	cmdOTPUserID       byte = 0x2E
	cmdStatus          byte = 0x2F
	cmdLUT             byte = 0x32
	cmdCRCCalc         byte = 0x34
	cmdCRCStatus       byte = 0x35
	cmdBorder          byte = 0x3C
	cmdRAMXAddr        byte = 0x44
	cmdRAMYAddr        byte = 0x45
	cmdAutoWriteRed    byte = 0x46
	cmdAutoWriteBW     byte = 0x47
	cmdRAMXCounter     byte = 0x4E
	cmdRAMYCounter     byte = 0x4F
)

// Update sequences, written as the single data byte of cmdUpdateCtrl2.
const (
	seqFull       byte = 0xF7
	seqCustomLUT  byte = 0xC7
	seqPartial    byte = 0xFC
	seqPowerOn    byte = 0xE0
	seqPowerOff   byte = 0x83
	seqLoadTemp   byte = 0xB1
)

// Deep-sleep modes.
const (
	sleepRetain  byte = 0x01
	sleepDiscard byte = 0x03
)

// Border waveforms.
const (
	borderFull    byte = 0x05
	borderPartial byte = 0x80
)

// dataEntryXYInc configures X-increment/Y-increment/X-first addressing,
// the only entry mode this driver uses.
const dataEntryXYInc byte = 0x03

// softStart is the booster soft-start tuple written verbatim.
var softStart = [4]byte{0x8B, 0x9C, 0x96, 0x0F}

// Default custom-LUT voltage levels.
const (
	defaultVGH  byte = 0x17
	defaultVSH1 byte = 0x41
	defaultVSH2 byte = 0xA8
	defaultVSL  byte = 0x32
	defaultVCOM byte = 0x50
)

// lutLength is the fixed size of a waveform LUT payload.
const lutLength = 153

// Panel geometry for the 2.9" 296x128 GDEY029T94-class display.
const (
	Width  = 128
	Height = 296
	// stride is BW/RED RAM bytes per row.
	stride = Width / 8
	// FrameBytes1Bit is the size of a full 1-bit-per-pixel frame buffer.
	FrameBytes1Bit = stride * Height
)

// Command/BUSY timeouts.
const (
	timeoutCommand = 500 * time.Millisecond
	timeoutPower   = 500 * time.Millisecond
	timeoutPartial = 1 * time.Second
	timeoutFull    = 5 * time.Second
	timeoutDefault = 10 * time.Second
)

// Operating temperature range in Celsius, used by CheckTemperature.
const (
	tempMin = 0.0
	tempMax = 50.0
)

// autoFillFullScreenBits are the step-height and step-width bits of the
// auto-write parameter byte that select a full-screen solid fill; autoFill
// ORs the fill value into bit 7.
const autoFillFullScreenBits byte = 0b110<<4 | 0b101
