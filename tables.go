// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

package adcboard

import (
	"fmt"

	"github.com/warthog618/adcboard/ltc2309"
)

// chipAddrs maps the chip index to its I2C slave address.
var chipAddrs = [NumChips]uint8{
	ADC0: ltc2309.AddrLowLow,
	ADC1: ltc2309.AddrLowFloat,
	ADC2: ltc2309.AddrLowHigh,
	ADC3: ltc2309.AddrFloatHigh,
	ADC4: ltc2309.AddrFloatFloat,
	ADC5: ltc2309.AddrFloatLow,
}

// ChipAddrs returns the I2C slave addresses of the chips, indexed by chip.
func ChipAddrs() []uint8 {
	aa := make([]uint8, NumChips)
	copy(aa, chipAddrs[:])
	return aa
}

// ChipAddr returns the I2C slave address of the chip, or 0 if chip is not
// on the board.
func ChipAddr(chip int) uint8 {
	if chip < 0 || chip >= NumChips {
		return 0
	}
	return chipAddrs[chip]
}

func in(chip, input int) *Channel {
	return &Channel{Chip: chip, Input: input}
}

// Wiring tables are indexed by pin number.
// Entry 0 is a placeholder so that pin numbers are 1-based.
var (
	wiringCON1 = []*Channel{
		nil,
		in(ADC0, 0), in(ADC0, 1), in(ADC1, 0), in(ADC0, 2), in(ADC1, 1), // 1-5
		nil, in(ADC1, 2), in(ADC1, 3), nil, in(ADC1, 4), // 6-10
		in(ADC1, 5), in(ADC1, 6), in(ADC1, 7), nil, in(ADC2, 0), // 11-15
		in(ADC2, 1), in(ADC0, 3), in(ADC2, 2), in(ADC2, 3), nil, // 16-20
		in(ADC2, 4), in(ADC2, 5), in(ADC2, 6), in(ADC2, 7), nil, // 21-25
		in(ADC3, 0), in(ADC3, 1), in(ADC3, 2), in(ADC3, 3), nil, // 26-30
		in(ADC3, 4), in(ADC3, 5), in(ADC3, 6), nil, in(ADC3, 7), // 31-35
		in(ADC4, 0), nil, in(ADC0, 4), nil, nil, // 36-40
	}

	wiringP3 = []*Channel{
		nil,
		nil, in(ADC5, 0), in(ADC5, 1), nil, in(ADC5, 2), // 1-5
		in(ADC5, 3), nil, in(ADC5, 4), in(ADC5, 5), nil, // 6-10
	}

	wiringP13 = []*Channel{
		nil,
		nil, in(ADC4, 1), in(ADC0, 5), in(ADC4, 2), in(ADC4, 3), // 1-5
		in(ADC4, 4), in(ADC4, 5), // 6-7
	}
)

// breakout returns the wiring of a P1_x header, which breaks out all the
// inputs of one chip in reverse order - pin 1 is input 7 and pin 8 input 0.
func breakout(chip int) []*Channel {
	w := make([]*Channel, ltc2309.NumChannels+1)
	for pin := 1; pin <= ltc2309.NumChannels; pin++ {
		w[pin] = in(chip, ltc2309.NumChannels-pin)
	}
	return w
}

var headers = [numHeaders][]PinInfo{
	CON1: newTable(CON1, wiringCON1),
	P3:   newTable(P3, wiringP3),
	P13:  newTable(P13, wiringP13),
	P1_1: newTable(P1_1, breakout(ADC0)),
	P1_2: newTable(P1_2, breakout(ADC1)),
	P1_3: newTable(P1_3, breakout(ADC2)),
	P1_4: newTable(P1_4, breakout(ADC3)),
	P1_5: newTable(P1_5, breakout(ADC4)),
	P1_6: newTable(P1_6, breakout(ADC5)),
}

func newTable(h HeaderID, wiring []*Channel) []PinInfo {
	t := make([]PinInfo, len(wiring))
	for pin, ch := range wiring {
		t[pin] = PinInfo{
			Name: fmt.Sprintf("%s.%d", h, pin),
			Pin:  pin,
			ADC:  ch,
		}
	}
	return t
}
