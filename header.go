// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// Package adcboard provides access to the analog inputs of the ODROID-JIG
// ADC board.
//
// The board carries six LTC2309 ADCs on a single I2C bus, with their inputs
// wired to the pins of the board headers. Inputs are identified by header
// pin names as printed on the board, e.g. CON1.1 or P3.5, and a header name
// alone, e.g. CON1, identifies all the pins on that header.
//
// Example of use:
//
//	b, err := adcboard.Init("/dev/i2c-0")
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//
//	mv, err := b.ReadMillivolts("CON1.1")
//
// Pins that are not wired to an ADC, and pins on chips that fail to respond,
// read as 0mV.
package adcboard

import (
	"strings"
)

// HeaderID identifies a header on the board.
type HeaderID int

// Headers in the order their names are matched.
const (
	// CON1 is the 40 pin main header.
	CON1 HeaderID = iota
	// P3 is an auxiliary header.
	P3
	// P13 is an auxiliary header.
	P13
	// P1_1 to P1_6 are breakouts of all eight inputs of ADC0 to ADC5.
	P1_1
	P1_2
	P1_3
	P1_4
	P1_5
	P1_6
	numHeaders
)

// Chip indices of the ADCs on the board.
const (
	ADC0 = iota
	ADC1
	ADC2
	ADC3
	ADC4
	ADC5
	NumChips
)

// Channel identifies an ADC input.
type Channel struct {
	// Chip is the index of the chip on the board, ADC0 to ADC5.
	Chip int
	// Input is the input on the chip, 0 to 7.
	Input int
}

// PinInfo describes the wiring of a header pin.
type PinInfo struct {
	// Name is the display name of the pin, e.g. CON1.1.
	Name string
	// Pin is the 1-based pin number on the header.
	Pin int
	// ADC is the input wired to the pin, or nil if the pin is not wired
	// to an ADC.
	ADC *Channel
}

// Wired returns true if the pin is wired to an ADC input.
func (p PinInfo) Wired() bool {
	return p.ADC != nil
}

// clone returns a copy of p that shares no state with the wiring tables.
func (p PinInfo) clone() PinInfo {
	if p.ADC != nil {
		c := *p.ADC
		p.ADC = &c
	}
	return p
}

var headerNames = [numHeaders]string{
	CON1: "CON1",
	P3:   "P3",
	P13:  "P13",
	P1_1: "P1_1",
	P1_2: "P1_2",
	P1_3: "P1_3",
	P1_4: "P1_4",
	P1_5: "P1_5",
	P1_6: "P1_6",
}

// String returns the name of the header as printed on the board.
func (h HeaderID) String() string {
	if h < 0 || h >= numHeaders {
		return "unknown"
	}
	return headerNames[h]
}

// Pins returns the pins of the header, in pin order.
func (h HeaderID) Pins() []PinInfo {
	return Resolve(h, 0)
}

// Len returns the number of pins on the header.
func (h HeaderID) Len() int {
	if h < 0 || h >= numHeaders {
		return 0
	}
	return len(headers[h]) - 1
}

// Headers returns all the headers on the board.
func Headers() []HeaderID {
	hh := make([]HeaderID, numHeaders)
	for i := range hh {
		hh[i] = HeaderID(i)
	}
	return hh
}

// Resolve returns the wiring of a pin on a header.
//
// If pin is 0, or not on the header, all the pins on the header are
// returned, in pin order. Returns nil if the header is unknown.
func Resolve(h HeaderID, pin int) []PinInfo {
	if h < 0 || h >= numHeaders {
		return nil
	}
	t := headers[h]
	if pin > 0 && pin < len(t) {
		return []PinInfo{t[pin].clone()}
	}
	pp := make([]PinInfo, len(t)-1)
	for i, p := range t[1:] {
		pp[i] = p.clone()
	}
	return pp
}

// ParseName splits a pin name, e.g. CON1.7, into its header and pin.
//
// The header is matched case insensitively by prefix, in the order of the
// HeaderID constants. A missing or non-numeric pin parses as 0, selecting
// the whole header.
func ParseName(name string) (HeaderID, int, error) {
	if name == "" {
		return 0, 0, ErrInvalidArgument
	}
	parts := strings.SplitN(name, ".", 2)
	hname := strings.ToUpper(parts[0])
	pin := 0
	if len(parts) > 1 {
		pin = atoi(parts[1])
	}
	for h, prefix := range headerNames {
		if strings.HasPrefix(hname, prefix) {
			return HeaderID(h), pin, nil
		}
	}
	return 0, 0, ErrUnresolvedPin
}

// Lookup returns the wiring of the named pin or header.
func Lookup(name string) ([]PinInfo, error) {
	h, pin, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	return Resolve(h, pin), nil
}

// atoi parses the leading decimal integer in s, ignoring anything after it.
// Returns 0 if s does not start with an integer.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t")
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<16 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
