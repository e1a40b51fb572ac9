// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package ltc2309 provides a device driver for the LTC2309 8 channel 12-bit
// I2C ADC.
//
// The driver only supports the single-ended unipolar mode.
package ltc2309

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/warthog618/adcboard/i2c"
	"periph.io/x/conn/v3/physic"
)

// Slave addresses selected by the AD1 and AD0 strap pins.
const (
	AddrLowLow     uint8 = 0x08
	AddrLowFloat   uint8 = 0x09
	AddrLowHigh    uint8 = 0x0A
	AddrFloatHigh  uint8 = 0x0B
	AddrFloatFloat uint8 = 0x18
	AddrFloatLow   uint8 = 0x19
	AddrHighLow    uint8 = 0x1A
	AddrHighFloat  uint8 = 0x1B
	AddrHighHigh   uint8 = 0x14
)

const (
	// NumChannels is the number of single-ended inputs.
	NumChannels = 8

	// MaxCode is the largest conversion result.
	MaxCode = 1<<12 - 1

	// RefMicroVolts is the reference voltage of the board, 5V.
	RefMicroVolts = 5000000

	// LSBWeight is the weight of one code in µV, truncated.
	LSBWeight = RefMicroVolts / (MaxCode + 1)

	// DefaultAttempts is the number of attempts made to select the chip.
	DefaultAttempts = 3

	// DefaultRetryDelay is the delay between attempts to select the chip.
	DefaultRetryDelay = 100 * time.Microsecond
)

// Input word bits.
//
//	BIT7  BIT6  BIT5  BIT4  BIT3  BIT2  BIT1  BIT0
//	S/D   O/S   S1    S0    UNI   SLP   X     X
const (
	cmdSingleEnded = 0x80
	cmdOdd         = 0x40
	cmdS1          = 0x20
	cmdS0          = 0x10
	cmdUnipolar    = 0x08

	cmdBase = cmdSingleEnded | cmdUnipolar
)

// single-ended, unipolar, awake - indexed by channel
var commands = [NumChannels]uint8{
	cmdBase,
	cmdBase | cmdOdd,
	cmdBase | cmdS0,
	cmdBase | cmdOdd | cmdS0,
	cmdBase | cmdS1,
	cmdBase | cmdOdd | cmdS1,
	cmdBase | cmdS1 | cmdS0,
	cmdBase | cmdOdd | cmdS1 | cmdS0,
}

var (
	// ErrDeviceUnavailable indicates the chip did not respond to selection.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrInvalidChannel indicates the channel is outside 0-7.
	ErrInvalidChannel = errors.New("invalid channel")
)

// Command returns the input word that selects channel ch.
func Command(ch int) (uint8, error) {
	if ch < 0 || ch >= NumChannels {
		return 0, ErrInvalidChannel
	}
	return commands[ch], nil
}

// Decode extracts the conversion code from an SMBus word.
//
// The chip sends the code MSB first and left justified, so the SMBus word
// is byte swapped and carries four don't care bits at the bottom.
func Decode(w uint16) uint16 {
	return (bits.ReverseBytes16(w) >> 4) & MaxCode
}

// Millivolts converts a code to mV.
//
// The conversion is code * LSBWeight / 1000, truncated at each step.
func Millivolts(code uint16) int {
	uv := int(code) * LSBWeight
	return uv / 1000
}

// Voltage converts a code to a physic.ElectricPotential at µV resolution.
func Voltage(code uint16) physic.ElectricPotential {
	return physic.ElectricPotential(int64(code)*LSBWeight) * physic.MicroVolt
}

// Dev is an LTC2309 on an I2C bus.
//
// A Dev does not lock the bus. Callers sharing a bus between several Devs
// must serialise access.
type Dev struct {
	bus      i2c.Bus
	addr     uint8
	attempts int
	delay    time.Duration
}

// Option modifies the construction of a Dev.
type Option func(*Dev)

// WithRetry sets the number of attempts made to select the chip before a
// read is abandoned, and the delay between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(d *Dev) {
		if attempts > 0 {
			d.attempts = attempts
		}
		if delay >= 0 {
			d.delay = delay
		}
	}
}

// New creates a Dev for the chip at addr.
func New(bus i2c.Bus, addr uint8, options ...Option) *Dev {
	d := &Dev{
		bus:      bus,
		addr:     addr,
		attempts: DefaultAttempts,
		delay:    DefaultRetryDelay,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Addr returns the slave address of the chip.
func (d *Dev) Addr() uint8 {
	return d.addr
}

// Read returns the conversion code for channel ch.
//
// The chip returns the result of the previous conversion, so a dummy read
// is performed to start the conversion on ch before the result is read.
func (d *Dev) Read(ch int) (uint16, error) {
	cmd, err := Command(ch)
	if err != nil {
		return 0, err
	}
	if err := d.selectChip(); err != nil {
		return 0, err
	}
	// wake and convert.
	// The result is stale and any failure shows up on the read that follows.
	_, _ = d.bus.ReadWord(cmd)
	w, err := d.bus.ReadWord(cmd)
	if err != nil {
		return 0, fmt.Errorf("ltc2309 0x%02x: read ch%d: %w", d.addr, ch, err)
	}
	return Decode(w), nil
}

// ReadMillivolts returns the voltage on channel ch in mV.
func (d *Dev) ReadMillivolts(ch int) (int, error) {
	code, err := d.Read(ch)
	if err != nil {
		return 0, err
	}
	return Millivolts(code), nil
}

// Probe checks that the chip responds to a single select and read.
func (d *Dev) Probe() error {
	if err := d.bus.SetAddr(d.addr); err != nil {
		return fmt.Errorf("ltc2309 0x%02x: %w: %v", d.addr, ErrDeviceUnavailable, err)
	}
	if _, err := d.bus.ReadWord(commands[0]); err != nil {
		return fmt.Errorf("ltc2309 0x%02x: %w: %v", d.addr, ErrDeviceUnavailable, err)
	}
	return nil
}

func (d *Dev) selectChip() (err error) {
	for i := 0; i < d.attempts; i++ {
		if i > 0 {
			time.Sleep(d.delay)
		}
		if err = d.bus.SetAddr(d.addr); err == nil {
			return nil
		}
	}
	return fmt.Errorf("ltc2309 0x%02x: %w: %v", d.addr, ErrDeviceUnavailable, err)
}
