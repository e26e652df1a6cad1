// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrTimeout is returned by WaitReady when the BUSY line does not clear
// within the requested timeout.
var ErrTimeout = errors.New("transport: timed out waiting for BUSY")

// ErrUnsupported is returned by ReadData when the underlying SPI
// connection has no MISO line wired.
var ErrUnsupported = errors.New("transport: read requires MISO")

// Transport is the capability set a SSD1680-class controller needs from the
// board: command/data framing over SPI, a hardware reset line and BUSY
// polling. It is the only hardware-facing interface in this module; the
// ssd1680 package depends on nothing else.
type Transport interface {
	// WriteCommand clocks out a single command byte with D/C low, followed
	// by data bytes (if any) with D/C high.
	WriteCommand(cmd byte, data ...byte) error
	// ReadData issues cmd with D/C low, then clocks in n bytes with D/C
	// high and MOSI idle. Returns ErrUnsupported if the bus has no MISO.
	ReadData(cmd byte, n int) ([]byte, error)
	// HardwareReset pulses RST low for at least 1ms with 1ms of recovery
	// before and after.
	HardwareReset(ctx context.Context) error
	// WaitReady blocks while BUSY is high, bounded by timeout. operation
	// names the call for the returned error.
	WaitReady(ctx context.Context, timeout time.Duration, operation string) error
}

// DefaultPollInterval is the default cadence WaitReady sleeps between BUSY
// samples: zero, a tight loop. Set SPI.PollInterval higher to reduce CPU
// usage on platforms where microsecond BUSY latency does not matter.
const DefaultPollInterval = 0

// SPI implements Transport directly on a periph.io SPI connection and four
// GPIO lines, mirroring the Dev.sendCommand/sendData/Reset/waitUntilIdle
// helpers used throughout periph's waveshare e-paper drivers.
type SPI struct {
	c    conn.Conn
	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	// PollInterval is the delay between BUSY polls in WaitReady. Zero
	// means a tight loop.
	PollInterval time.Duration
}

// NewSPI connects p at the given frequency and wraps it together with the
// dc/cs/rst/busy GPIO lines into a Transport.
func NewSPI(p spi.Port, freq physic.Frequency, dc, cs, rst gpio.PinOut, busy gpio.PinIn) (*SPI, error) {
	c, err := p.Connect(freq, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("transport: connect spi: %w", err)
	}
	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("transport: configure busy pin: %w", err)
	}
	return &SPI{c: c, dc: dc, cs: cs, rst: rst, busy: busy}, nil
}

// txChain short-circuits a sequence of GPIO/SPI operations on first error,
// the same errorHandler pattern periph's waveshare drivers use for pin
// setup sequences.
type txChain struct {
	err error
}

func (t *txChain) out(pin gpio.PinOut, l gpio.Level) {
	if t.err != nil {
		return
	}
	t.err = pin.Out(l)
}

func (t *txChain) tx(c conn.Conn, w, r []byte) {
	if t.err != nil {
		return
	}
	t.err = c.Tx(w, r)
}

func (s *SPI) WriteCommand(cmd byte, data ...byte) error {
	t := txChain{}
	t.out(s.dc, gpio.Low)
	t.out(s.cs, gpio.Low)
	t.tx(s.c, []byte{cmd}, nil)
	t.out(s.cs, gpio.High)
	if t.err != nil {
		return fmt.Errorf("transport: write command 0x%02x: %w", cmd, t.err)
	}
	if len(data) == 0 {
		return nil
	}
	t.out(s.dc, gpio.High)
	t.out(s.cs, gpio.Low)
	t.tx(s.c, data, nil)
	t.out(s.cs, gpio.High)
	if t.err != nil {
		return fmt.Errorf("transport: write data for command 0x%02x: %w", cmd, t.err)
	}
	return nil
}

func (s *SPI) ReadData(cmd byte, n int) ([]byte, error) {
	t := txChain{}
	t.out(s.dc, gpio.Low)
	t.out(s.cs, gpio.Low)
	t.tx(s.c, []byte{cmd}, nil)
	t.out(s.cs, gpio.High)
	if t.err != nil {
		return nil, fmt.Errorf("transport: read command 0x%02x: %w", cmd, t.err)
	}

	buf := make([]byte, n)
	w := make([]byte, n)
	t.out(s.dc, gpio.High)
	t.out(s.cs, gpio.Low)
	t.tx(s.c, w, buf)
	t.out(s.cs, gpio.High)
	if t.err != nil {
		return nil, fmt.Errorf("transport: read data for command 0x%02x: %w: %w", cmd, ErrUnsupported, t.err)
	}
	return buf, nil
}

func (s *SPI) HardwareReset(ctx context.Context) error {
	t := txChain{}
	t.out(s.rst, gpio.High)
	if err := sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	t.out(s.rst, gpio.Low)
	if err := sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	t.out(s.rst, gpio.High)
	if err := sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	if t.err != nil {
		return fmt.Errorf("transport: hardware reset: %w", t.err)
	}
	return nil
}

func (s *SPI) WaitReady(ctx context.Context, timeout time.Duration, operation string) error {
	deadline := time.Now().Add(timeout)
	for s.busy.Read() == gpio.High {
		if time.Now().After(deadline) {
			if operation == "" {
				operation = "wait_ready"
			}
			return fmt.Errorf("transport: %s: %w", operation, ErrTimeout)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.PollInterval > 0 {
			if err := sleep(ctx, s.PollInterval); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
