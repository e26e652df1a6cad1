// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// record is one WriteCommand call, mirroring periph's waveshare
// controller_test.go fakeController pattern.
type record struct {
	cmd  byte
	data []byte
}

// fakeTransport implements transport.Transport, recording every
// WriteCommand and serving canned ReadData responses.
type fakeTransport struct {
	writes    []record
	reads     map[byte][]byte
	resetErr  error
	resets    int
	sleepCall bool
	waits     []time.Duration
}

func (f *fakeTransport) WriteCommand(cmd byte, data ...byte) error {
	f.writes = append(f.writes, record{cmd: cmd, data: append([]byte(nil), data...)})
	return nil
}

func (f *fakeTransport) ReadData(cmd byte, n int) ([]byte, error) {
	if d, ok := f.reads[cmd]; ok {
		return d, nil
	}
	return make([]byte, n), nil
}

func (f *fakeTransport) HardwareReset(ctx context.Context) error {
	f.resets++
	return f.resetErr
}

func (f *fakeTransport) WaitReady(ctx context.Context, timeout time.Duration, operation string) error {
	f.waits = append(f.waits, timeout)
	return nil
}

func newTestDriver() (*Driver, *fakeTransport) {
	ft := &fakeTransport{}
	d := New(ft, true)
	return d, ft
}

func diffRecords(t *testing.T, got, want []record) {
	t.Helper()
	if diff := cmp.Diff(got, want, cmpopts.EquateEmpty(), cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("commands difference (-got +want):\n%s", diff)
	}
}

func TestInitFullSequence(t *testing.T) {
	d, ft := newTestDriver()
	if err := d.initFull(context.Background()); err != nil {
		t.Fatalf("initFull: %v", err)
	}
	want := []record{
		{cmd: cmdSWReset},
		{cmd: cmdDriverOutput, data: []byte{0x27, 0x01, 0x00}},
		{cmd: cmdDataEntry, data: []byte{0x03}},
		{cmd: cmdRAMXAddr, data: []byte{0x00, 0x0F}},
		{cmd: cmdRAMYAddr, data: []byte{0x00, 0x00, 0x27, 0x01}},
		{cmd: cmdBorder, data: []byte{0x05}},
		{cmd: cmdUpdateCtrl1, data: []byte{0x00, 0x80}},
		{cmd: cmdTempSensor, data: []byte{0x80}},
		{cmd: cmdSoftStart, data: []byte{0x8B, 0x9C, 0x96, 0x0F}},
		{cmd: cmdRAMXCounter, data: []byte{0x00}},
		{cmd: cmdRAMYCounter, data: []byte{0x00, 0x00}},
	}
	diffRecords(t, ft.writes, want)
	if !d.state.IsReady() {
		t.Errorf("state = %v, want Ready", d.state.Refresh)
	}
}

func TestInitFullNoOpWhenAlreadyReady(t *testing.T) {
	d, ft := newTestDriver()
	if err := d.initFull(context.Background()); err != nil {
		t.Fatalf("initFull: %v", err)
	}
	ft.writes = nil
	if err := d.initFull(context.Background()); err != nil {
		t.Fatalf("initFull: %v", err)
	}
	if len(ft.writes) != 0 {
		t.Errorf("second initFull issued %d commands, want 0", len(ft.writes))
	}
}

func TestDisplayFullWritesBothRAMsAndActivates(t *testing.T) {
	d, ft := newTestDriver()
	data := repeatByte(0xAA, FrameBytes1Bit)

	if err := d.Display(context.Background(), data, true, false, true); err != nil {
		t.Fatalf("Display: %v", err)
	}

	var sawBW, sawRed, sawActivate bool
	var activateMode byte
	for i, r := range ft.writes {
		switch r.cmd {
		case cmdRAMBW:
			sawBW = true
		case cmdRAMRed:
			sawRed = true
		case cmdUpdateCtrl2:
			activateMode = r.data[0]
		case cmdActivate:
			sawActivate = true
			if i == 0 || ft.writes[i-1].cmd != cmdUpdateCtrl2 {
				t.Errorf("ACTIVATE must immediately follow UPDATE_CTRL2")
			}
		}
	}
	if !sawBW || !sawRed || !sawActivate {
		t.Fatalf("missing expected commands: bw=%v red=%v activate=%v", sawBW, sawRed, sawActivate)
	}
	if activateMode != seqFull {
		t.Errorf("update mode = 0x%02x, want seqFull (0x%02x)", activateMode, seqFull)
	}
	if !d.state.HasBasemap {
		t.Error("HasBasemap should be true after a full display")
	}
	if d.state.PartialCount != 0 {
		t.Errorf("PartialCount = %d, want 0", d.state.PartialCount)
	}
}

func TestDisplayPartialBeforeBasemapForcesFull(t *testing.T) {
	d, ft := newTestDriver()
	data := repeatByte(0x00, FrameBytes1Bit)

	if err := d.Display(context.Background(), data, false, false, true); err != nil {
		t.Fatalf("Display: %v", err)
	}

	var mode byte
	for _, r := range ft.writes {
		if r.cmd == cmdUpdateCtrl2 {
			mode = r.data[0]
		}
	}
	if mode != seqFull {
		t.Errorf("update mode = 0x%02x, want seqFull since no basemap existed yet", mode)
	}
}

func TestDisplayPartialAfterBasemapStaysPartial(t *testing.T) {
	d, ft := newTestDriver()
	ctx := context.Background()
	white := repeatByte(0xFF, FrameBytes1Bit)
	if err := d.Display(ctx, white, true, false, true); err != nil {
		t.Fatalf("initial full display: %v", err)
	}

	ft.writes = nil
	black := repeatByte(0x00, FrameBytes1Bit)
	if err := d.Display(ctx, black, false, false, true); err != nil {
		t.Fatalf("partial display: %v", err)
	}

	var mode byte
	var redPayload []byte
	for _, r := range ft.writes {
		switch r.cmd {
		case cmdUpdateCtrl2:
			mode = r.data[0]
		case cmdRAMRed:
			redPayload = r.data
		}
	}
	if mode != seqPartial {
		t.Errorf("update mode = 0x%02x, want seqPartial (0x%02x)", mode, seqPartial)
	}
	if len(redPayload) != FrameBytes1Bit || redPayload[0] != 0xFF {
		t.Errorf("RED RAM should carry the previous (white) frame for differential update")
	}
	if d.state.PartialCount != 1 {
		t.Errorf("PartialCount = %d, want 1", d.state.PartialCount)
	}
}

func TestPartialThresholdEscalatesToFull(t *testing.T) {
	d, ft := newTestDriver()
	ctx := context.Background()
	d.state.PartialThreshold = 2

	data := repeatByte(0xFF, FrameBytes1Bit)
	if err := d.Display(ctx, data, true, false, true); err != nil {
		t.Fatalf("full display: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := d.Display(ctx, data, false, false, true); err != nil {
			t.Fatalf("partial display %d: %v", i, err)
		}
	}

	ft.writes = nil
	if err := d.Display(ctx, data, false, false, true); err != nil {
		t.Fatalf("escalated display: %v", err)
	}
	var mode byte
	for _, r := range ft.writes {
		if r.cmd == cmdUpdateCtrl2 {
			mode = r.data[0]
		}
	}
	if mode != seqFull {
		t.Errorf("update mode = 0x%02x, want seqFull after hitting the partial threshold", mode)
	}
	if d.state.PartialCount != 0 {
		t.Errorf("PartialCount = %d, want reset to 0 after escalation", d.state.PartialCount)
	}
}

func TestDisplayRejectsWrongSizedBuffer(t *testing.T) {
	d, _ := newTestDriver()
	err := d.Display(context.Background(), make([]byte, 10), true, false, true)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestDisplayRegionsRejectsUnalignedWindow(t *testing.T) {
	d, ft := newTestDriver()
	ctx := context.Background()
	white := repeatByte(0xFF, FrameBytes1Bit)
	if err := d.Display(ctx, white, true, false, true); err != nil {
		t.Fatalf("full display: %v", err)
	}
	ft.writes = nil

	err := d.DisplayRegion(ctx, make([]byte, 8), 1, 0, 8, 8)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestDisplayRegionsRequiresBasemap(t *testing.T) {
	d, _ := newTestDriver()
	err := d.DisplayRegion(context.Background(), make([]byte, 8), 0, 0, 8, 8)
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
}

func TestSleepThenWakeRequiresReinit(t *testing.T) {
	d, ft := newTestDriver()
	ctx := context.Background()
	if err := d.Init(ctx, false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := d.Sleep(ctx, true); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if !d.state.IsSleeping() {
		t.Fatal("expected Sleeping state")
	}

	if err := d.Wake(ctx); err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if d.state.Refresh != Uninitialized {
		t.Errorf("Refresh = %v after wake, want Uninitialized", d.state.Refresh)
	}
	if ft.resets != 1 {
		t.Errorf("HardwareReset called %d times, want 1", ft.resets)
	}
}

func TestReadTemperatureDecodesSignedTwelveBit(t *testing.T) {
	for _, tc := range []struct {
		name string
		b0   byte
		b1   byte
		want float64
	}{
		{"zero", 0x00, 0x00, 0.0},
		{"positive", 0x32, 0x00, 50.0},
		{"negative one", 0xFF, 0xF0, -1.0 / 16.0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, ft := newTestDriver()
			ft.reads = map[byte][]byte{cmdTempRead: {tc.b0, tc.b1}}
			got, err := d.ReadTemperature(context.Background())
			if err != nil {
				t.Fatalf("ReadTemperature: %v", err)
			}
			if got != tc.want {
				t.Errorf("ReadTemperature() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCalculateCRCReadsBigEndian(t *testing.T) {
	d, ft := newTestDriver()
	ft.reads = map[byte][]byte{cmdCRCStatus: {0x12, 0x34}}
	got, err := d.CalculateCRC(context.Background())
	if err != nil {
		t.Fatalf("CalculateCRC: %v", err)
	}
	if got != 0x1234 {
		t.Errorf("CalculateCRC() = 0x%04x, want 0x1234", got)
	}
}

func TestSetGateStartRejectsOutOfRange(t *testing.T) {
	d, _ := newTestDriver()
	if err := d.SetGateStart(-1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if err := d.SetGateStart(0x200); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
	if err := d.SetGateStart(0x1FF); err != nil {
		t.Errorf("SetGateStart(0x1FF): %v", err)
	}
}

func TestWaitTimeoutsMatchKind(t *testing.T) {
	cases := []struct {
		kind timeoutKind
		want time.Duration
	}{
		{tCommand, timeoutCommand},
		{tPower, timeoutPower},
		{tPartial, timeoutPartial},
		{tFull, timeoutFull},
		{tDefault, timeoutDefault},
	}
	for _, c := range cases {
		d, ft := newTestDriver()
		if err := d.wait(context.Background(), c.kind, "test"); err != nil {
			t.Fatalf("wait(%v): %v", c.kind, err)
		}
		if len(ft.waits) != 1 || ft.waits[0] != c.want {
			t.Errorf("wait(%v) passed %v, want %v", c.kind, ft.waits, c.want)
		}
	}
	if timeoutCommand != 500*time.Millisecond {
		t.Errorf("timeoutCommand = %v, want 500ms", timeoutCommand)
	}
	if timeoutDefault != 10*time.Second {
		t.Errorf("timeoutDefault = %v, want 10s", timeoutDefault)
	}
}

// TestDisplayRegionsThreeBlockWireTrace exercises the real controller's
// region batching with three non-adjacent blocks: a single ACTIVATE for
// the whole batch, RAM_X start-byte values of 0, 6, 12 (one per 32px-wide,
// 8px-aligned block), and RED-before-BW ordering with a counter reset
// between each block.
func TestDisplayRegionsThreeBlockWireTrace(t *testing.T) {
	d, ft := newTestDriver()
	ctx := context.Background()

	base := repeatByte(0xFF, FrameBytes1Bit)
	if err := d.Display(ctx, base, true, false, true); err != nil {
		t.Fatalf("initial full display: %v", err)
	}
	ft.writes = nil

	regions := []Region{
		{Data: repeatByte(0x00, 4*32), X: 0, Y: 0, W: 32, H: 32},
		{Data: repeatByte(0x00, 4*32), X: 48, Y: 0, W: 32, H: 32},
		{Data: repeatByte(0x00, 4*32), X: 96, Y: 0, W: 32, H: 32},
	}
	if err := d.DisplayRegions(ctx, regions); err != nil {
		t.Fatalf("DisplayRegions: %v", err)
	}

	var xAddrStarts []byte
	var xCounters []byte
	activates := 0
	lastWasRed := false
	for _, r := range ft.writes {
		switch r.cmd {
		case cmdRAMXAddr:
			xAddrStarts = append(xAddrStarts, r.data[0])
		case cmdRAMXCounter:
			xCounters = append(xCounters, r.data[0])
		case cmdRAMRed:
			lastWasRed = true
		case cmdRAMBW:
			if !lastWasRed {
				t.Error("expected RED RAM write to immediately precede each BW RAM write")
			}
			lastWasRed = false
		case cmdActivate:
			activates++
		}
	}

	// initPartial primes the window for the first region before the loop
	// below sets it again per region, so the raw RAM_X trace repeats the
	// first region's start byte; collapse adjacent repeats to get the
	// one-per-region sequence the controller actually ends up addressing.
	wantXBytes := []byte{0, 6, 12}
	if diff := cmp.Diff(dedupeAdjacent(xAddrStarts), wantXBytes); diff != "" {
		t.Errorf("RAM_X start bytes (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(dedupeAdjacent(xCounters), wantXBytes); diff != "" {
		t.Errorf("RAM_X counter resets (-got +want):\n%s", diff)
	}
	if activates != 1 {
		t.Errorf("ACTIVATE written %d times, want exactly 1 for the whole batch", activates)
	}
}

func dedupeAdjacent(b []byte) []byte {
	var out []byte
	for _, v := range b {
		if len(out) == 0 || out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
