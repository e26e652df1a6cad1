// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// fakePin is a minimal gpio.PinIO used to drive HardwareReset/WaitReady
// without touching real hardware.
type fakePin struct {
	name  string
	level gpio.Level
}

func (p *fakePin) String() string                 { return p.name }
func (p *fakePin) Halt() error                     { return nil }
func (p *fakePin) Name() string                    { return p.name }
func (p *fakePin) Number() int                     { return -1 }
func (p *fakePin) Function() string                { return "" }
func (p *fakePin) In(gpio.Pull, gpio.Edge) error   { return nil }
func (p *fakePin) Read() gpio.Level                { return p.level }
func (p *fakePin) WaitForEdge(time.Duration) bool  { return false }
func (p *fakePin) Pull() gpio.Pull                 { return gpio.Float }
func (p *fakePin) DefaultPull() gpio.Pull          { return gpio.Float }
func (p *fakePin) Out(l gpio.Level) error          { p.level = l; return nil }
func (p *fakePin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("not supported")
}

// fakeConn records every Tx call.
type fakeConn struct {
	writes [][]byte
}

func (c *fakeConn) String() string { return "fakeConn" }
func (c *fakeConn) Halt() error    { return nil }
func (c *fakeConn) Tx(w, r []byte) error {
	if w != nil {
		cp := make([]byte, len(w))
		copy(cp, w)
		c.writes = append(c.writes, cp)
	}
	return nil
}
func (c *fakeConn) Duplex() conn.Duplex { return conn.Full }

func newTestSPI() (*SPI, *fakeConn, *fakePin) {
	busy := &fakePin{name: "busy"}
	s := &SPI{
		c:    &fakeConn{},
		dc:   &fakePin{name: "dc"},
		cs:   &fakePin{name: "cs"},
		rst:  &fakePin{name: "rst"},
		busy: busy,
	}
	return s, s.c.(*fakeConn), busy
}

func TestWriteCommandNoData(t *testing.T) {
	s, c, _ := newTestSPI()
	if err := s.WriteCommand(0x12); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if len(c.writes) != 1 || c.writes[0][0] != 0x12 {
		t.Errorf("got %v, want single command byte 0x12", c.writes)
	}
}

func TestWriteCommandWithData(t *testing.T) {
	s, c, _ := newTestSPI()
	if err := s.WriteCommand(0x44, 0x00, 0x0f); err != nil {
		t.Fatalf("WriteCommand: %v", err)
	}
	if len(c.writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(c.writes))
	}
	if c.writes[0][0] != 0x44 {
		t.Errorf("command byte = 0x%x, want 0x44", c.writes[0][0])
	}
	if string(c.writes[1]) != string([]byte{0x00, 0x0f}) {
		t.Errorf("data = %v, want [0x00 0x0f]", c.writes[1])
	}
}

func TestWaitReadyReturnsImmediatelyWhenIdle(t *testing.T) {
	s, _, busy := newTestSPI()
	busy.level = gpio.Low
	if err := s.WaitReady(context.Background(), 50*time.Millisecond, "test"); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func TestWaitReadyTimesOut(t *testing.T) {
	s, _, busy := newTestSPI()
	busy.level = gpio.High
	err := s.WaitReady(context.Background(), 10*time.Millisecond, "full refresh")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitReady error = %v, want ErrTimeout", err)
	}
}

func TestHardwareResetPulsesLine(t *testing.T) {
	s, _, _ := newTestSPI()
	if err := s.HardwareReset(context.Background()); err != nil {
		t.Fatalf("HardwareReset: %v", err)
	}
	if s.rst.(*fakePin).level != gpio.High {
		t.Errorf("rst left at %v, want High after reset sequence", s.rst.(*fakePin).level)
	}
}
