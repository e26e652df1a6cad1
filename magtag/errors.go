// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package magtag

import "errors"

// ErrUnsupported marks an operation that the current buffer configuration
// cannot perform, such as a region update on a 2-bit buffer.
var ErrUnsupported = errors.New("magtag: unsupported")
