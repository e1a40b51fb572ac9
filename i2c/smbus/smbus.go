// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package smbus provides an i2c.Bus backed by github.com/go-daq/smbus.
package smbus

import (
	"fmt"

	"github.com/go-daq/smbus"
	"github.com/warthog618/adcboard/i2c"
)

// Bus wraps a go-daq SMBus connection.
type Bus struct {
	conn *smbus.Conn
	addr uint8
}

var _ i2c.Bus = (*Bus)(nil)

// Open opens the SMBus adapter identified by node, e.g. /dev/i2c-1.
//
// The connection is initially bound to addr.
func Open(node string, addr uint8) (*Bus, error) {
	n, err := i2c.ParseBusNumber(node)
	if err != nil {
		return nil, err
	}
	conn, err := smbus.Open(n, addr)
	if err != nil {
		return nil, fmt.Errorf("smbus: error in open: %w", err)
	}
	return &Bus{conn: conn, addr: addr}, nil
}

// NewOpener returns an i2c.Opener that opens the adapter bound to addr.
func NewOpener(addr uint8) i2c.Opener {
	return func(node string) (i2c.Bus, error) {
		b, err := Open(node, addr)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// Close closes the connection.
func (b *Bus) Close() error {
	return b.conn.Close()
}

// SetAddr selects the slave addressed by subsequent transactions.
func (b *Bus) SetAddr(addr uint8) error {
	if err := b.conn.SetAddr(addr); err != nil {
		return fmt.Errorf("smbus: error in set-addr: %w", err)
	}
	b.addr = addr
	return nil
}

// ReadWord performs an SMBus read word data transaction on the selected slave.
func (b *Bus) ReadWord(cmd uint8) (uint16, error) {
	w, err := b.conn.ReadWord(b.addr, cmd)
	if err != nil {
		return 0, fmt.Errorf("smbus: error in read-word: %w", err)
	}
	return w, nil
}
