// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import "errors"

// Sentinel errors, wrapped with fmt.Errorf("%w", ...) and contextual detail
// at the call site so callers can errors.Is against the category.
var (
	// ErrUnsupported is returned when a feature the transport cannot
	// provide is requested, e.g. reading temperature without MISO.
	ErrUnsupported = errors.New("ssd1680: unsupported")
	// ErrInvalidArgument is returned for caller-supplied values that
	// violate a documented precondition (region alignment, LUT length).
	ErrInvalidArgument = errors.New("ssd1680: invalid argument")
	// ErrNotReady is returned when an operation is attempted in a state
	// that forbids it, e.g. display_regions before any full refresh.
	ErrNotReady = errors.New("ssd1680: not ready")
)
