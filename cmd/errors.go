// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import "errors"

var ErrParsingFlag = errors.New("error while parsing flag")
