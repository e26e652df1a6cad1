// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"context"
	"fmt"
	"time"

	"github.com/mauro-lanza/magtag-drivers/transport"
)

// Region identifies a rectangular window of the panel for a differential
// update. X and W must be multiples of 8: the controller only addresses
// BW/RED RAM byte columns.
type Region struct {
	Data       []byte
	X, Y, W, H int
}

// StatusBits is the decoded result of ReadStatus.
type StatusBits struct {
	HVReady bool
	VCIOk   bool
	Busy    bool
	ChipID  byte
	Raw     byte
}

// OTPInfo is the decoded result of ReadOTPInfo.
type OTPInfo struct {
	VCOMOTPSel      byte
	VCOMRegister    byte
	DisplayMode     [5]byte
	WaveformVersion [4]byte
	UserID          [10]byte
}

// Driver implements the SSD1680 command sequences and refresh state
// machine on top of a transport.Transport. It holds no pixel-layout
// knowledge beyond the fixed 128x296 BW/RED RAM geometry; framing
// (rotation, depth conversion) is the pixbuf package's job.
type Driver struct {
	t     transport.Transport
	state *State

	// prevFrame mirrors the last frame written to BW RAM so partial
	// refreshes can feed RED RAM the correct "old image" for the
	// controller's differential LUT. Nil disables differential updates:
	// partial refreshes then write only BW RAM and leave RED RAM as it was.
	prevFrame []byte
}

// New returns a Driver bound to t. useDiffBuffer trades FrameBytes1Bit of
// RAM for correct partial-refresh ghosting behavior; without it, partial
// refreshes do not write RED RAM.
func New(t transport.Transport, useDiffBuffer bool) *Driver {
	d := &Driver{t: t, state: NewState()}
	if useDiffBuffer {
		d.prevFrame = make([]byte, FrameBytes1Bit)
	}
	return d
}

// State returns the driver's refresh state machine for inspection.
func (d *Driver) State() *State { return d.state }

func (d *Driver) wait(ctx context.Context, tk timeoutKind, op string) error {
	return d.t.WaitReady(ctx, tk.duration(), op)
}

type timeoutKind int

const (
	tCommand timeoutKind = iota
	tPower
	tPartial
	tFull
	tDefault
)

func (k timeoutKind) duration() time.Duration {
	switch k {
	case tCommand:
		return timeoutCommand
	case tPower:
		return timeoutPower
	case tPartial:
		return timeoutPartial
	case tFull:
		return timeoutFull
	default:
		return timeoutDefault
	}
}

// initFull configures the controller for a Mode-1 full refresh. It is a
// no-op if already READY and not in partial mode.
func (d *Driver) initFull(ctx context.Context) error {
	if d.state.IsSleeping() {
		if err := d.t.HardwareReset(ctx); err != nil {
			return fmt.Errorf("ssd1680: init full: %w", err)
		}
		d.state.OnWake()
	}
	if d.state.IsReady() && !d.state.InPartialMode {
		return nil
	}

	if err := d.wait(ctx, tCommand, "init full"); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdSWReset); err != nil {
		return fmt.Errorf("ssd1680: sw reset: %w", err)
	}
	if err := d.wait(ctx, tCommand, "init full"); err != nil {
		return err
	}

	h := Height - 1
	if err := d.t.WriteCommand(cmdDriverOutput, byte(h&0xFF), byte(h>>8), 0x00); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdDataEntry, dataEntryXYInc); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMXAddr, 0x00, byte(Width/8-1)); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMYAddr, 0x00, 0x00, byte(h&0xFF), byte(h>>8)); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdBorder, borderFull); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdUpdateCtrl1, 0x00, 0x80); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdTempSensor, 0x80); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdSoftStart, softStart[0], softStart[1], softStart[2], softStart[3]); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMXCounter, 0x00); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMYCounter, 0x00, 0x00); err != nil {
		return err
	}
	if err := d.wait(ctx, tCommand, "init full"); err != nil {
		return err
	}

	d.state.OnInitComplete()
	d.state.InPartialMode = false
	return nil
}

// initPartial configures the controller for a Mode-2 differential
// refresh windowed to (x, y, w, h).
func (d *Driver) initPartial(ctx context.Context, x, y, w, h int) error {
	if d.state.InPartialMode && !d.state.IsSleeping() && d.state.IsReady() {
		return d.setWindow(x, y, w, h)
	}

	if d.state.IsReady() && !d.state.IsSleeping() {
		if err := d.t.WriteCommand(cmdBorder, borderPartial); err != nil {
			return err
		}
		if err := d.setWindow(x, y, w, h); err != nil {
			return err
		}
		d.state.InPartialMode = true
		return nil
	}

	if err := d.t.HardwareReset(ctx); err != nil {
		return fmt.Errorf("ssd1680: init partial: %w", err)
	}
	d.state.OnWake()
	if err := d.wait(ctx, tCommand, "init partial"); err != nil {
		return err
	}

	gh := Height - 1
	if err := d.t.WriteCommand(cmdDriverOutput, byte(gh&0xFF), byte(gh>>8), 0x00); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdDataEntry, dataEntryXYInc); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdBorder, borderPartial); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdUpdateCtrl1, 0x00, 0x80); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdTempSensor, 0x80); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdSoftStart, softStart[0], softStart[1], softStart[2], softStart[3]); err != nil {
		return err
	}
	if err := d.setWindow(x, y, w, h); err != nil {
		return err
	}
	d.state.OnInitComplete()
	d.state.InPartialMode = true
	return nil
}

// setWindow sets the RAM address window and resets the address counters
// to its origin. The SSD1680 requires this before every region write.
func (d *Driver) setWindow(x, y, w, h int) error {
	xByte := x >> 3
	xEnd := (x + w - 1) >> 3
	yEnd := y + h - 1

	if err := d.t.WriteCommand(cmdRAMXAddr, byte(xByte), byte(xEnd)); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMYAddr, byte(y&0xFF), byte(y>>8), byte(yEnd&0xFF), byte(yEnd>>8)); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMXCounter, byte(xByte)); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMYCounter, byte(y&0xFF), byte(y>>8)); err != nil {
		return err
	}
	return nil
}

// update triggers the controller's update sequence and waits for BUSY to
// clear, using the timeout appropriate to the requested mode.
func (d *Driver) update(ctx context.Context, mode byte) error {
	if err := d.t.WriteCommand(cmdUpdateCtrl2, mode); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdActivate); err != nil {
		return err
	}
	var tk timeoutKind
	var op string
	switch mode {
	case seqPartial:
		tk, op = tPartial, "partial refresh"
	case seqFull, seqCustomLUT:
		tk, op = tFull, "full refresh"
	default:
		tk, op = tDefault, fmt.Sprintf("update 0x%02x", mode)
	}
	return d.wait(ctx, tk, op)
}

// Init brings the panel to a known READY state, optionally clearing it
// to white with a full refresh.
func (d *Driver) Init(ctx context.Context, clear bool) error {
	if err := d.initFull(ctx); err != nil {
		return err
	}
	if clear {
		return d.Clear(ctx, 0xFF)
	}
	return nil
}

// Clear fills the whole panel with color using a full refresh, then puts
// the panel to sleep.
func (d *Driver) Clear(ctx context.Context, color byte) error {
	if err := d.initFull(ctx); err != nil {
		return err
	}
	data := repeatByte(color, FrameBytes1Bit)
	if err := d.t.WriteCommand(cmdRAMBW, data...); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMRed, data...); err != nil {
		return err
	}
	if err := d.update(ctx, seqFull); err != nil {
		return err
	}
	d.state.OnFullRefreshComplete()
	if d.prevFrame != nil {
		copy(d.prevFrame, data)
	}
	return d.Sleep(ctx, true)
}

// Display writes a full FrameBytes1Bit frame, choosing between a full and
// a partial refresh. forceFull and the state machine's own escalation
// (State.NeedsFullRefresh) can both upgrade a requested partial refresh
// to a full one.
func (d *Driver) Display(ctx context.Context, data []byte, full, forceFull, stayAwake bool) error {
	if len(data) != FrameBytes1Bit {
		return fmt.Errorf("ssd1680: display: %w: buffer must be %d bytes, got %d", ErrInvalidArgument, FrameBytes1Bit, len(data))
	}
	if full {
		return d.displayFull(ctx, data, nil, stayAwake)
	}
	return d.displayPartial(ctx, data, forceFull, nil, stayAwake)
}

func (d *Driver) displayFull(ctx context.Context, data, lut []byte, stayAwake bool) error {
	if err := d.initFull(ctx); err != nil {
		return err
	}
	if lut != nil {
		if err := d.t.WriteCommand(cmdLUT, lut...); err != nil {
			return err
		}
	}
	if err := d.t.WriteCommand(cmdRAMBW, data...); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMRed, data...); err != nil {
		return err
	}
	mode := seqFull
	if lut != nil {
		mode = seqCustomLUT
	}
	if err := d.update(ctx, mode); err != nil {
		return err
	}
	d.state.OnFullRefreshComplete()
	if d.prevFrame != nil {
		copy(d.prevFrame, data)
	}
	if !stayAwake {
		return d.Sleep(ctx, true)
	}
	return nil
}

func (d *Driver) displayPartial(ctx context.Context, data []byte, forceFull bool, lut []byte, stayAwake bool) error {
	if d.state.NeedsFullRefresh() || forceFull {
		return d.displayFull(ctx, data, lut, stayAwake)
	}
	if err := d.initPartial(ctx, 0, 0, Width, Height); err != nil {
		return err
	}
	if err := d.setWindow(0, 0, Width, Height); err != nil {
		return err
	}
	if lut != nil {
		if err := d.t.WriteCommand(cmdLUT, lut...); err != nil {
			return err
		}
	}
	if d.prevFrame != nil {
		if err := d.t.WriteCommand(cmdRAMRed, d.prevFrame...); err != nil {
			return err
		}
	}
	if err := d.t.WriteCommand(cmdRAMBW, data...); err != nil {
		return err
	}
	mode := seqPartial
	if lut != nil {
		mode = seqCustomLUT
	}
	if err := d.update(ctx, mode); err != nil {
		return err
	}
	if d.prevFrame != nil {
		copy(d.prevFrame, data)
	}
	d.state.OnPartialRefreshComplete()
	if !stayAwake {
		return d.Sleep(ctx, true)
	}
	return nil
}

// DisplayGray renders a 4-level grayscale image via the built-in 4-gray
// waveform, writing the caller's black and red bit planes to BW and RED
// RAM the same way DisplayLUT does for a caller-supplied waveform.
func (d *Driver) DisplayGray(ctx context.Context, blackPlane, redPlane []byte) error {
	return d.DisplayLUT(ctx, LUT4Gray[:], blackPlane, redPlane, defaultVGH, defaultVSH1, defaultVSH2, defaultVSL, defaultVCOM)
}

// DisplayLUT performs a full refresh with a caller-supplied 153-byte
// waveform and voltage levels. A custom LUT invalidates the basemap: the
// controller's differential state after a non-standard waveform is
// undefined, so the next refresh must be full.
func (d *Driver) DisplayLUT(ctx context.Context, lut, black, red []byte, vgh, vsh1, vsh2, vsl, vcom byte) error {
	if len(lut) != lutLength {
		return fmt.Errorf("ssd1680: display lut: %w: lut must be %d bytes, got %d", ErrInvalidArgument, lutLength, len(lut))
	}
	if err := d.initFull(ctx); err != nil {
		return err
	}
	if err := d.setWaveform(lut, vgh, vsh1, vsh2, vsl, vcom); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdRAMBW, black...); err != nil {
		return err
	}
	payload := red
	if payload == nil {
		payload = black
	}
	if err := d.t.WriteCommand(cmdRAMRed, payload...); err != nil {
		return err
	}
	if err := d.update(ctx, seqCustomLUT); err != nil {
		return err
	}
	d.state.HasBasemap = false
	return nil
}

// DisplayLUTDefaultVoltages is DisplayLUT with the default custom-LUT
// voltage levels, for callers that only want to vary the waveform.
func (d *Driver) DisplayLUTDefaultVoltages(ctx context.Context, lut, black, red []byte) error {
	return d.DisplayLUT(ctx, lut, black, red, defaultVGH, defaultVSH1, defaultVSH2, defaultVSL, defaultVCOM)
}

func (d *Driver) setWaveform(lut []byte, vgh, vsh1, vsh2, vsl, vcom byte) error {
	if err := d.t.WriteCommand(cmdLUT, lut[:lutLength]...); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdGateVoltage, vgh); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdSourceVoltage, vsh1, vsh2, vsl); err != nil {
		return err
	}
	return d.t.WriteCommand(cmdVCOM, vcom)
}

// DisplayRegion updates a single rectangular window; see DisplayRegions.
func (d *Driver) DisplayRegion(ctx context.Context, data []byte, x, y, w, h int) error {
	return d.DisplayRegions(ctx, []Region{{Data: data, X: x, Y: y, W: w, H: h}})
}

// DisplayRegions updates several rectangular windows with a single
// refresh, feeding the controller's differential LUT the prior contents
// of each window from the prevFrame buffer. Requires a prior full
// refresh (a basemap). Without a differential buffer only BW RAM is
// written for each window.
func (d *Driver) DisplayRegions(ctx context.Context, regions []Region) error {
	if !d.state.HasBasemap {
		return fmt.Errorf("ssd1680: display regions: %w: must do full refresh first", ErrNotReady)
	}
	if len(regions) == 0 {
		return nil
	}
	for i, r := range regions {
		if r.X&7 != 0 || r.W&7 != 0 {
			return fmt.Errorf("ssd1680: display regions: %w: region %d: x and w must be multiples of 8", ErrInvalidArgument, i)
		}
	}

	first := regions[0]
	if err := d.initPartial(ctx, first.X, first.Y, first.W, first.H); err != nil {
		return err
	}

	for _, r := range regions {
		if err := d.setWindow(r.X, r.Y, r.W, r.H); err != nil {
			return err
		}
		xByte := r.X / 8
		wByte := r.W / 8

		if d.prevFrame != nil {
			old := make([]byte, wByte*r.H)
			for row := 0; row < r.H; row++ {
				src := (r.Y+row)*stride + xByte
				dst := row * wByte
				copy(old[dst:dst+wByte], d.prevFrame[src:src+wByte])
			}
			if err := d.t.WriteCommand(cmdRAMRed, old...); err != nil {
				return err
			}
			for row := 0; row < r.H; row++ {
				dst := (r.Y+row)*stride + xByte
				src := row * wByte
				copy(d.prevFrame[dst:dst+wByte], r.Data[src:src+wByte])
			}
		}

		if err := d.t.WriteCommand(cmdRAMXCounter, byte(xByte)); err != nil {
			return err
		}
		if err := d.t.WriteCommand(cmdRAMYCounter, byte(r.Y&0xFF), byte(r.Y>>8)); err != nil {
			return err
		}
		if err := d.t.WriteCommand(cmdRAMBW, r.Data...); err != nil {
			return err
		}
	}

	if err := d.update(ctx, seqPartial); err != nil {
		return err
	}
	d.state.OnPartialRefreshComplete()
	return nil
}

// Sleep enters deep sleep. If retainRAM is false, RAM contents (and the
// basemap they represent) are not guaranteed to survive, so the next
// operation must perform a full refresh.
func (d *Driver) Sleep(ctx context.Context, retainRAM bool) error {
	if d.state.IsSleeping() {
		return nil
	}
	if err := d.powerOff(ctx); err != nil {
		return err
	}
	mode := sleepRetain
	if !retainRAM {
		mode = sleepDiscard
	}
	if err := d.t.WriteCommand(cmdDeepSleep, mode); err != nil {
		return err
	}
	if err := sleepFor(ctx, time.Millisecond); err != nil {
		return err
	}
	d.state.OnSleep(retainRAM)
	return nil
}

// Wake exits deep sleep via a hardware reset. The controller must be
// fully re-initialized afterwards; Wake only updates the state machine.
func (d *Driver) Wake(ctx context.Context) error {
	if !d.state.IsSleeping() {
		return nil
	}
	if err := d.t.HardwareReset(ctx); err != nil {
		return fmt.Errorf("ssd1680: wake: %w", err)
	}
	d.state.OnWake()
	return nil
}

func (d *Driver) powerOn(ctx context.Context) error {
	if d.state.IsSleeping() {
		return nil
	}
	if err := d.t.WriteCommand(cmdUpdateCtrl2, seqPowerOn); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdActivate); err != nil {
		return err
	}
	return d.wait(ctx, tPower, "power on")
}

func (d *Driver) powerOff(ctx context.Context) error {
	if d.state.IsSleeping() {
		return nil
	}
	if err := d.t.WriteCommand(cmdUpdateCtrl2, seqPowerOff); err != nil {
		return err
	}
	if err := d.t.WriteCommand(cmdActivate); err != nil {
		return err
	}
	return d.wait(ctx, tPower, "power off")
}

// SetInvert enables hardware inversion of BW and/or RED RAM without
// touching pixel data, preserving whichever bits of UPDATE_CTRL1 the
// caller does not ask to change.
func (d *Driver) SetInvert(ctx context.Context, invertBW, invertRed bool) error {
	if d.state.IsSleeping() {
		if err := d.t.HardwareReset(ctx); err != nil {
			return fmt.Errorf("ssd1680: set invert: %w", err)
		}
		d.state.OnWake()
	}
	var a byte
	if invertRed {
		a |= 0x80
	}
	if invertBW {
		a |= 0x08
	}
	return d.t.WriteCommand(cmdUpdateCtrl1, a, 0x80)
}

// FastClear fills the panel with a solid color using the controller's
// hardware auto-write, avoiding a FrameBytes1Bit SPI transfer. Only bit 7
// of color is used: every pixel is set to it (0x00 black, 0xFF white).
func (d *Driver) FastClear(ctx context.Context, color byte) error {
	if err := d.initFull(ctx); err != nil {
		return err
	}
	if err := d.autoFill(ctx, color, true, true); err != nil {
		return err
	}
	if err := d.update(ctx, seqFull); err != nil {
		return err
	}
	d.state.OnFullRefreshComplete()
	if d.prevFrame != nil {
		var solid byte
		if color&0x80 != 0 {
			solid = 0xFF
		}
		fill := repeatByte(solid, len(d.prevFrame))
		copy(d.prevFrame, fill)
	}
	return d.Sleep(ctx, true)
}

func (d *Driver) autoFill(ctx context.Context, pattern byte, redRAM, bwRAM bool) error {
	firstBit := (pattern >> 7) & 0x01
	param := (firstBit << 7) | autoFillFullScreenBits
	if redRAM {
		if err := d.t.WriteCommand(cmdAutoWriteRed, param); err != nil {
			return err
		}
		if err := d.wait(ctx, tCommand, "auto fill red"); err != nil {
			return err
		}
	}
	if bwRAM {
		if err := d.t.WriteCommand(cmdAutoWriteBW, param); err != nil {
			return err
		}
		if err := d.wait(ctx, tCommand, "auto fill bw"); err != nil {
			return err
		}
	}
	return nil
}

// SetGateStart configures the gate scan start row for hardware
// scrolling. position is a 9-bit row index.
func (d *Driver) SetGateStart(position int) error {
	if position < 0 || position > 0x1FF {
		return fmt.Errorf("ssd1680: set gate start: %w: position out of range: %d", ErrInvalidArgument, position)
	}
	return d.t.WriteCommand(cmdGateScanStart, byte(position&0xFF), byte((position>>8)&0x01))
}

// ReadTemperature reads the internal temperature sensor in Celsius.
// Requires a transport that supports reads (MISO wired).
func (d *Driver) ReadTemperature(ctx context.Context) (float64, error) {
	if err := d.ensureAwakeAndInit(ctx); err != nil {
		return 0, err
	}
	if err := d.t.WriteCommand(cmdTempSensor, 0x80); err != nil {
		return 0, err
	}
	if err := d.t.WriteCommand(cmdUpdateCtrl2, seqLoadTemp); err != nil {
		return 0, err
	}
	if err := d.t.WriteCommand(cmdActivate); err != nil {
		return 0, err
	}
	if err := d.wait(ctx, tDefault, "read temperature"); err != nil {
		return 0, err
	}

	data, err := d.t.ReadData(cmdTempRead, 2)
	if err != nil {
		return 0, fmt.Errorf("ssd1680: read temperature: %w", err)
	}
	raw := int(data[0])<<4 | int(data[1])>>4
	if raw&0x800 != 0 {
		raw -= 0x1000
	}
	return float64(raw) / 16.0, nil
}

// CheckTemperature reads the temperature and reports whether it is
// within the panel's documented operating range.
func (d *Driver) CheckTemperature(ctx context.Context) (float64, bool, error) {
	temp, err := d.ReadTemperature(ctx)
	if err != nil {
		return 0, false, err
	}
	return temp, temp >= tempMin && temp <= tempMax, nil
}

// ReadStatus reads the controller's diagnostic status byte.
func (d *Driver) ReadStatus(ctx context.Context) (StatusBits, error) {
	if err := d.ensureAwakeAndInit(ctx); err != nil {
		return StatusBits{}, err
	}
	if err := d.powerOn(ctx); err != nil {
		return StatusBits{}, err
	}
	if err := d.t.WriteCommand(cmdHVReady, 0x00); err != nil {
		return StatusBits{}, err
	}
	if err := d.wait(ctx, tDefault, "read status"); err != nil {
		return StatusBits{}, err
	}
	if err := d.t.WriteCommand(cmdVCIDetect, 0x04); err != nil {
		return StatusBits{}, err
	}
	if err := d.wait(ctx, tDefault, "read status"); err != nil {
		return StatusBits{}, err
	}
	data, err := d.t.ReadData(cmdStatus, 1)
	if err != nil {
		return StatusBits{}, fmt.Errorf("ssd1680: read status: %w", err)
	}
	raw := data[0]
	return StatusBits{
		HVReady: raw&0x20 == 0,
		VCIOk:   raw&0x10 == 0,
		Busy:    raw&0x04 != 0,
		ChipID:  raw & 0x03,
		Raw:     raw,
	}, nil
}

// ReadOTPInfo reads the controller's factory-programmed OTP block.
func (d *Driver) ReadOTPInfo(ctx context.Context) (OTPInfo, error) {
	if err := d.ensureAwakeAndInit(ctx); err != nil {
		return OTPInfo{}, err
	}
	display, err := d.t.ReadData(cmdOTPDisplay, 11)
	if err != nil {
		return OTPInfo{}, fmt.Errorf("ssd1680: read otp info: %w", err)
	}
	userID, err := d.t.ReadData(cmdOTPUserID, 10)
	if err != nil {
		return OTPInfo{}, fmt.Errorf("ssd1680: read otp info: %w", err)
	}
	var info OTPInfo
	info.VCOMOTPSel = display[0]
	info.VCOMRegister = display[1]
	copy(info.DisplayMode[:], display[2:7])
	copy(info.WaveformVersion[:], display[7:11])
	copy(info.UserID[:], userID)
	return info, nil
}

// CalculateCRC triggers the controller's hardware CRC of RAM contents.
func (d *Driver) CalculateCRC(ctx context.Context) (uint16, error) {
	if err := d.ensureAwakeAndInit(ctx); err != nil {
		return 0, err
	}
	if err := d.t.WriteCommand(cmdCRCCalc); err != nil {
		return 0, err
	}
	if err := d.wait(ctx, tDefault, "calculate crc"); err != nil {
		return 0, err
	}
	data, err := d.t.ReadData(cmdCRCStatus, 2)
	if err != nil {
		return 0, fmt.Errorf("ssd1680: calculate crc: %w", err)
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

func (d *Driver) ensureAwakeAndInit(ctx context.Context) error {
	if d.state.IsSleeping() {
		if err := d.t.HardwareReset(ctx); err != nil {
			return fmt.Errorf("ssd1680: wake: %w", err)
		}
		d.state.OnWake()
	}
	if d.state.Refresh == Uninitialized {
		return d.initFull(ctx)
	}
	return nil
}

func repeatByte(b byte, n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// sleepFor blocks for d or until ctx is cancelled, mirroring the
// transport package's own context-aware sleep.
func sleepFor(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
