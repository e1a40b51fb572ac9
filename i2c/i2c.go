// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package i2c defines the bus interface used by the ADC board drivers.
//
// Implementations are provided by the subpackages, i2cdev (raw Linux
// /dev/i2c-N ioctls), smbus (go-daq/smbus) and periphi2c (periph.io), and a
// simulated bus is provided by i2ctest.
package i2c

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Bus represents an I2C adapter with SMBus word transactions.
//
// The Bus is not safe for concurrent use - the selected slave address is
// shared state, so callers must serialise the SetAddr/ReadWord sequence.
type Bus interface {
	// SetAddr sets the slave address for subsequent transactions.
	SetAddr(addr uint8) error

	// ReadWord performs an SMBus read word transaction using the cmd byte.
	//
	// The word is returned in SMBus order, i.e. the first byte on the wire
	// is the low byte.
	ReadWord(cmd uint8) (uint16, error)

	// Close releases the bus.
	Close() error
}

// Opener opens the bus identified by a device node, e.g. /dev/i2c-1.
type Opener func(node string) (Bus, error)

// ParseBusNumber extracts the adapter number from a device node.
//
// Accepts the full node path (/dev/i2c-1), the base name (i2c-1), or the
// bare number (1).
func ParseBusNumber(node string) (int, error) {
	s := strings.TrimPrefix(filepath.Base(node), "i2c-")
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("can't parse bus number from '%s'", node)
	}
	return int(n), nil
}
