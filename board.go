// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

package adcboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/adcboard/i2c"
	"github.com/warthog618/adcboard/ltc2309"
	"periph.io/x/conn/v3/physic"
)

// Board is an open ADC board.
type Board struct {
	// The mu covers the bus, as the selected slave is shared by all chips.
	mu     sync.Mutex
	node   string
	bus    i2c.Bus
	chips  [NumChips]*ltc2309.Dev
	logger Logger
}

// Logger is the interface used to report debug information.
//
// *log.Logger satisfies Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Reading is the value read from a header pin.
type Reading struct {
	Pin PinInfo
	// Code is the raw conversion code.
	Code uint16
	// MilliVolts is the truncated voltage.
	MilliVolts int
	// Voltage is the voltage at µV resolution.
	Voltage physic.ElectricPotential
	// Err is the reason a wired pin could not be read.
	// In that case the pin reads as 0mV, the same as an unwired pin.
	Err error
}

// ChipStatus reports the presence of a chip on the board.
type ChipStatus struct {
	Chip int
	Addr uint8
	// Err is nil if the chip responded.
	Err error
}

type options struct {
	opener   i2c.Opener
	logger   Logger
	attempts int
	delay    time.Duration
}

// Option modifies the initialisation of a Board.
type Option func(*options)

// WithBusOpener sets the function used to open the bus.
// The default opens the Linux i2c-dev node.
func WithBusOpener(opener i2c.Opener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

// WithLogger sets the Logger used for debug output.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRetry sets the number of attempts made to select a chip before a read
// is abandoned, and the delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.delay = delay
	}
}

// Init opens the bus at node and checks that all the chips on the board
// respond.
//
// The bus is closed if any chip fails to respond.
func Init(node string, opts ...Option) (*Board, error) {
	b, err := Open(node, opts...)
	if err != nil {
		return nil, err
	}
	if !b.CheckDevices() {
		b.Close()
		return nil, fmt.Errorf("%w on '%s'", ErrPresenceCheck, node)
	}
	return b, nil
}

// Open opens the bus at node without checking that the chips respond.
func Open(node string, opts ...Option) (*Board, error) {
	if node == "" {
		return nil, ErrInvalidArgument
	}
	o := options{
		opener:   defaultOpener,
		logger:   nopLogger{},
		attempts: ltc2309.DefaultAttempts,
		delay:    ltc2309.DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	bus, err := o.opener(node)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrOpen, node, err)
	}
	b := &Board{node: node, bus: bus, logger: o.logger}
	for i, addr := range chipAddrs {
		b.chips[i] = ltc2309.New(bus, addr, ltc2309.WithRetry(o.attempts, o.delay))
	}
	return b, nil
}

// Close releases the bus.
func (b *Board) Close() error {
	if b == nil {
		return ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bus == nil {
		return ErrClosed
	}
	err := b.bus.Close()
	b.bus = nil
	return err
}

// Node returns the device node of the bus.
func (b *Board) Node() string {
	return b.node
}

// CheckDevices returns true if all the chips on the board respond.
func (b *Board) CheckDevices() bool {
	for _, s := range b.Detect() {
		if s.Err != nil {
			return false
		}
	}
	b.logger.Printf("check devices pass: %s", b.node)
	return true
}

// Detect probes each chip on the board.
func (b *Board) Detect() []ChipStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	ss := make([]ChipStatus, NumChips)
	for i, c := range b.chips {
		ss[i] = ChipStatus{Chip: i, Addr: c.Addr()}
		if b.bus == nil {
			ss[i].Err = ErrClosed
			continue
		}
		if err := c.Probe(); err != nil {
			b.logger.Printf("chip %d at 0x%02x not found: %v", i, c.Addr(), err)
			ss[i].Err = err
		}
	}
	return ss
}

// Read reads the named pin, e.g. CON1.1, or all pins of the named header,
// e.g. CON1.
//
// Readings are returned in pin order. Failing reads do not abort the batch,
// but are recorded in the Err field of the corresponding Reading.
//
// Returns ErrUnresolvedPin if the name does not identify a header, and
// ErrInvalidArgument if the name is empty or the Board is closed.
func (b *Board) Read(name string) ([]Reading, error) {
	if b == nil || name == "" {
		return nil, ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bus == nil {
		return nil, ErrInvalidArgument
	}
	h, pin, err := ParseName(name)
	if err != nil {
		b.logger.Printf("can't find %s pin or header", name)
		return nil, err
	}
	pp := Resolve(h, pin)
	b.logger.Printf("%s: header = %s, pin = %d, pin_cnt = %d", name, h, pin, len(pp))
	rr := make([]Reading, len(pp))
	for i, p := range pp {
		rr[i] = b.readPin(p)
		b.logger.Printf("%s, value = %d mV", p.Name, rr[i].MilliVolts)
	}
	return rr, nil
}

// ReadMillivolts reads the named pin or header, as per Read, and returns
// only the voltages in mV.
func (b *Board) ReadMillivolts(name string) ([]int, error) {
	rr, err := b.Read(name)
	if err != nil {
		return nil, err
	}
	mv := make([]int, len(rr))
	for i, r := range rr {
		mv[i] = r.MilliVolts
	}
	return mv, nil
}

// ReadPin reads a single pin.
func (b *Board) ReadPin(p PinInfo) (Reading, error) {
	if b == nil {
		return Reading{}, ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bus == nil {
		return Reading{}, ErrInvalidArgument
	}
	return b.readPin(p), nil
}

// readPin assumes the caller holds the mu lock.
func (b *Board) readPin(p PinInfo) Reading {
	r := Reading{Pin: p}
	if !p.Wired() {
		return r
	}
	if p.ADC.Chip < 0 || p.ADC.Chip >= NumChips {
		r.Err = ltc2309.ErrDeviceUnavailable
		return r
	}
	code, err := b.chips[p.ADC.Chip].Read(p.ADC.Input)
	if err != nil {
		b.logger.Printf("%s: %v", p.Name, err)
		r.Err = err
		return r
	}
	r.Code = code
	r.MilliVolts = ltc2309.Millivolts(code)
	r.Voltage = ltc2309.Voltage(code)
	return r
}

// Status maps the error returned by Read to a legacy status code - 1 on
// success, 0 if the pin or header is not found, and -1 otherwise.
func Status(err error) int {
	switch {
	case err == nil:
		return 1
	case errors.Is(err, ErrUnresolvedPin):
		return 0
	default:
		return -1
	}
}

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...interface{}) {}

var (
	// ErrOpen indicates the bus could not be opened.
	ErrOpen = errors.New("can't open bus")

	// ErrPresenceCheck indicates one or more chips on the board did not
	// respond.
	ErrPresenceCheck = errors.New("can't find adc board")

	// ErrDeviceUnavailable indicates a chip did not respond to selection.
	ErrDeviceUnavailable = ltc2309.ErrDeviceUnavailable

	// ErrUnresolvedPin indicates the name does not identify a header.
	ErrUnresolvedPin = errors.New("can't find pin or header")

	// ErrInvalidArgument indicates an empty name or a closed Board.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed indicates the Board has already been closed.
	ErrClosed = errors.New("already closed")
)
