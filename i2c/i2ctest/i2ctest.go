// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package i2ctest provides a simulated bus of LTC2309 ADCs for testing.
package i2ctest

import (
	"errors"
	"math/bits"
	"sync"

	"github.com/warthog618/adcboard/i2c"
)

var (
	// ErrClosed is returned by any operation on a closed Bus.
	ErrClosed = errors.New("bus closed")

	// ErrNack is returned when no chip responds at the selected address.
	ErrNack = errors.New("no acknowledge")

	// ErrSelect is returned by SetAddr when a select failure is injected.
	ErrSelect = errors.New("select failed")
)

// chip is a simulated LTC2309.
//
// Like the real chip, each read returns the result of the previous
// conversion and starts a conversion on the channel in the command.
type chip struct {
	codes   [8]uint16
	result  uint16
	readErr error
}

// Bus is a simulated bus of LTC2309 chips.
type Bus struct {
	mu        sync.Mutex
	chips     map[uint8]*chip
	addr      uint8
	closed    bool
	selFail   map[uint8]int
	selects   map[uint8]int
	reads     map[uint8]int
	lastCmd   uint8
	openCount int
}

var _ i2c.Bus = (*Bus)(nil)

// New creates a Bus with chips at the given addresses.
//
// All channels initially read as code 0.
func New(addrs ...uint8) *Bus {
	b := &Bus{
		chips:   make(map[uint8]*chip),
		selFail: make(map[uint8]int),
		selects: make(map[uint8]int),
		reads:   make(map[uint8]int),
	}
	for _, a := range addrs {
		b.chips[a] = &chip{}
	}
	return b
}

// Opener returns an i2c.Opener that returns the Bus, ignoring the node.
//
// The Bus is reopened if it has been closed.
func (b *Bus) Opener() i2c.Opener {
	return func(node string) (i2c.Bus, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = false
		b.openCount++
		return b, nil
	}
}

// SetCode sets the code returned for a channel of the chip at addr.
func (b *Bus) SetCode(addr uint8, ch int, code uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.chips[addr]; ok {
		c.codes[ch] = code & 0xfff
	}
}

// FailSelect causes the next n selections of addr to fail.
// A negative n causes all selections to fail.
func (b *Bus) FailSelect(addr uint8, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selFail[addr] = n
}

// FailRead causes reads from the chip at addr to return err.
// A nil err restores normal operation.
func (b *Bus) FailRead(addr uint8, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.chips[addr]; ok {
		c.readErr = err
	}
}

// Remove removes the chip at addr from the bus.
func (b *Bus) Remove(addr uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.chips, addr)
}

// Closed returns true if the Bus has been closed.
func (b *Bus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Opens returns the number of times the Bus has been opened via Opener.
func (b *Bus) Opens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openCount
}

// Selects returns the number of select attempts on addr.
func (b *Bus) Selects(addr uint8) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selects[addr]
}

// Reads returns the number of read transactions addressed to addr.
func (b *Bus) Reads(addr uint8) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads[addr]
}

// LastCommand returns the command byte of the most recent read.
func (b *Bus) LastCommand() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCmd
}

// Close closes the Bus.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	return nil
}

// SetAddr selects the chip at addr.
func (b *Bus) SetAddr(addr uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.selects[addr]++
	if n := b.selFail[addr]; n != 0 {
		if n > 0 {
			b.selFail[addr] = n - 1
		}
		return ErrSelect
	}
	b.addr = addr
	return nil
}

// ReadWord reads the previous conversion from the selected chip and starts
// a conversion on the channel selected by cmd.
func (b *Bus) ReadWord(cmd uint8) (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	b.reads[b.addr]++
	b.lastCmd = cmd
	c, ok := b.chips[b.addr]
	if !ok {
		return 0, ErrNack
	}
	if c.readErr != nil {
		return 0, c.readErr
	}
	w := Encode(c.result)
	c.result = c.codes[channel(cmd)]
	return w, nil
}

// Encode converts a code into the SMBus word the chip would return.
func Encode(code uint16) uint16 {
	return bits.ReverseBytes16(code << 4)
}

// channel decodes the channel from the S1, S0 and O/S bits of cmd.
func channel(cmd uint8) int {
	odd := int(cmd>>6) & 1
	s1 := int(cmd>>5) & 1
	s0 := int(cmd>>4) & 1
	return s1<<2 | s0<<1 | odd
}
