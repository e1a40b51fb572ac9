// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

//go:build linux
// +build linux

package adcboard

import (
	"github.com/warthog618/adcboard/i2c/i2cdev"
)

var defaultOpener = i2cdev.Opener
