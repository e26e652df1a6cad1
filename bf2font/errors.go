// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bf2font

import "errors"

// ErrBadFont covers malformed BF2 files: missing magic, truncated
// header, or an index entry pointing outside the file.
var ErrBadFont = errors.New("bf2font: bad font file")
