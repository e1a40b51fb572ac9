// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/warthog618/adcboard"
)

type millivoltReader interface {
	ReadMillivolts(name string) ([]int, error)
}

// printPinInfo prints the voltage of a pin, or the pins of a header.
func printPinInfo(w io.Writer, b millivoltReader, name string) error {
	mv, err := b.ReadMillivolts(name)
	if err != nil {
		if errors.Is(err, adcboard.ErrUnresolvedPin) {
			fmt.Fprintf(w, "can't find %s pin or header\n", name)
			return nil
		}
		return err
	}
	fmt.Fprintf(w, "%10s\t%s\n", "PIN Name", "mV")
	fmt.Fprintln(w, "--------------------------")
	for i, v := range mv {
		if len(mv) > 1 {
			fmt.Fprintf(w, "%8s.%02d\t%d\n", name, i+1, v)
		} else {
			fmt.Fprintf(w, "%10s\t%d\n", name, v)
		}
	}
	return nil
}

// printAllInfo prints the voltages of all pins on all headers.
func printAllInfo(w io.Writer, b millivoltReader) {
	for _, h := range adcboard.Headers() {
		printPinInfo(w, b, h.String())
	}
}

// printReadings prints one line per reading, flagging failed reads.
func printReadings(w io.Writer, rr []adcboard.Reading, raw bool) {
	for _, r := range rr {
		v := fmt.Sprintf("%d", r.MilliVolts)
		if raw {
			v = fmt.Sprintf("0x%03x", r.Code)
		}
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%-8s %6s (%s)\n", r.Pin.Name, v, r.Err)
		case !r.Pin.Wired():
			fmt.Fprintf(w, "%-8s %6s (not wired)\n", r.Pin.Name, v)
		default:
			fmt.Fprintf(w, "%-8s %6s\n", r.Pin.Name, v)
		}
	}
}

// printReadingsShort prints the voltages on a single line.
func printReadingsShort(w io.Writer, rr []adcboard.Reading) {
	for i, r := range rr {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%d", r.MilliVolts)
	}
	fmt.Fprintln(w)
}

// printWiring prints the chip and input wired to each pin.
func printWiring(w io.Writer, pp []adcboard.PinInfo) {
	for _, p := range pp {
		if !p.Wired() {
			fmt.Fprintf(w, "%-8s -\n", p.Name)
			continue
		}
		fmt.Fprintf(w, "%-8s adc%d (0x%02x) ch%d\n",
			p.Name, p.ADC.Chip, adcboard.ChipAddr(p.ADC.Chip), p.ADC.Input)
	}
}
