// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

// RefreshState is the coarse lifecycle stage of the panel: whether it has
// been initialized, is mid-refresh, or is asleep. It replaces the OR-ed
// bitflags of earlier drivers with a small enum so illegal combinations
// (READY and SLEEPING at once) cannot be represented.
type RefreshState int

const (
	Uninitialized RefreshState = iota
	Ready
	Updating
	Sleeping
)

func (s RefreshState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Ready:
		return "Ready"
	case Updating:
		return "Updating"
	case Sleeping:
		return "Sleeping"
	default:
		return "Unknown"
	}
}

// State is the full refresh state machine described by the component
// design: a RefreshState tag plus the orthogonal booleans/counters that
// qualify it while Ready. Transitions are the only way to mutate it.
type State struct {
	Refresh RefreshState

	// HasBasemap is true once a full refresh has committed an image the
	// controller can diff partial updates against.
	HasBasemap bool
	// IsInitial is true until the first full refresh completes.
	IsInitial bool
	// InPartialMode is true when the hardware is currently configured
	// with the partial-update border waveform and window.
	InPartialMode bool
	// PartialCount is the number of partial refreshes since the last
	// full refresh.
	PartialCount int
	// PartialThreshold auto-escalates to a full refresh once PartialCount
	// reaches it. Zero disables the escalation.
	PartialThreshold int
}

// NewState returns the state a driver starts in: uninitialized, no
// basemap, first refresh still pending, auto-full every 10 partials.
func NewState() *State {
	return &State{
		Refresh:          Uninitialized,
		IsInitial:        true,
		PartialThreshold: 10,
	}
}

// OnInitComplete transitions to Ready after a successful init sequence.
func (s *State) OnInitComplete() {
	s.Refresh = Ready
}

// OnFullRefreshComplete transitions to Ready with a fresh basemap and a
// reset partial counter.
func (s *State) OnFullRefreshComplete() {
	s.Refresh = Ready
	s.HasBasemap = true
	s.IsInitial = false
	s.PartialCount = 0
	s.InPartialMode = false
}

// OnPartialRefreshComplete transitions to Ready and bumps the partial
// counter. HasBasemap and InPartialMode are unaffected.
func (s *State) OnPartialRefreshComplete() {
	s.Refresh = Ready
	s.PartialCount++
}

// OnSleep transitions to Sleeping. If retainRAM is false, the basemap is
// invalidated because the controller's RAM is not guaranteed to survive.
func (s *State) OnSleep(retainRAM bool) {
	s.Refresh = Sleeping
	s.InPartialMode = false
	if !retainRAM {
		s.HasBasemap = false
	}
}

// OnWake transitions back to Uninitialized: the next operation must
// re-run a full init sequence.
func (s *State) OnWake() {
	s.Refresh = Uninitialized
	s.InPartialMode = false
}

// NeedsFullRefresh reports whether the next refresh must be a full
// refresh rather than a partial one.
func (s *State) NeedsFullRefresh() bool {
	return s.IsInitial || !s.HasBasemap ||
		(s.PartialThreshold > 0 && s.PartialCount >= s.PartialThreshold)
}

// CanPartialRefresh reports whether a partial refresh is currently legal.
func (s *State) CanPartialRefresh() bool {
	return s.HasBasemap && !s.IsInitial
}

func (s *State) IsSleeping() bool { return s.Refresh == Sleeping }
func (s *State) IsReady() bool    { return s.Refresh == Ready }
func (s *State) IsUpdating() bool { return s.Refresh == Updating }
