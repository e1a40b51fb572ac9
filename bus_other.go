// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

//go:build !linux
// +build !linux

package adcboard

import (
	"errors"

	"github.com/warthog618/adcboard/i2c"
)

func defaultOpener(node string) (i2c.Bus, error) {
	return nil, errors.New("i2c-dev is only supported on linux")
}
