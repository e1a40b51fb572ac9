// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package periphi2c provides an i2c.Bus backed by periph.io.
package periphi2c

import (
	"strconv"

	"github.com/warthog618/adcboard/i2c"
	pi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus wraps a periph I2C bus and the currently addressed device on it.
type Bus struct {
	bus pi2c.BusCloser
	dev pi2c.Dev
}

var _ i2c.Bus = (*Bus)(nil)

// Open initialises the periph host drivers and opens the bus identified by
// node, e.g. /dev/i2c-1.
//
// An empty node opens the first bus registered with periph.
func Open(node string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	name := ""
	if node != "" {
		n, err := i2c.ParseBusNumber(node)
		if err != nil {
			return nil, err
		}
		name = strconv.Itoa(n)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &Bus{bus: b, dev: pi2c.Dev{Bus: b}}, nil
}

// Opener returns the Bus as an i2c.Bus, for use as an i2c.Opener.
func Opener(node string) (i2c.Bus, error) {
	b, err := Open(node)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Close closes the bus.
func (b *Bus) Close() error {
	return b.bus.Close()
}

// SetAddr selects the slave addressed by subsequent transactions.
//
// periph addresses each transaction directly so this cannot fail.
func (b *Bus) SetAddr(addr uint8) error {
	b.dev.Addr = uint16(addr)
	return nil
}

// ReadWord writes the cmd byte then reads two bytes, low byte first.
func (b *Bus) ReadWord(cmd uint8) (uint16, error) {
	r := make([]byte, 2)
	if err := b.dev.Tx([]byte{cmd}, r); err != nil {
		return 0, err
	}
	return uint16(r[0]) | uint16(r[1])<<8, nil
}
