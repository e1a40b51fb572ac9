// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

package adcboard_test

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/adcboard"
	"github.com/warthog618/adcboard/i2c"
	"github.com/warthog618/adcboard/i2c/i2ctest"
	"github.com/warthog618/adcboard/ltc2309"
	"periph.io/x/conn/v3/physic"
)

const node = "/dev/i2c-0"

// code returns a distinct code for each input on the board.
func code(chip, input int) uint16 {
	return uint16(chip*8+input)*80 + 7
}

func newBus() *i2ctest.Bus {
	bus := i2ctest.New(adcboard.ChipAddrs()...)
	for chip, addr := range adcboard.ChipAddrs() {
		for input := 0; input < ltc2309.NumChannels; input++ {
			bus.SetCode(addr, input, code(chip, input))
		}
	}
	return bus
}

func initBoard(t *testing.T, bus *i2ctest.Bus, opts ...adcboard.Option) *adcboard.Board {
	t.Helper()
	opts = append([]adcboard.Option{
		adcboard.WithBusOpener(bus.Opener()),
		adcboard.WithRetry(3, 0),
	}, opts...)
	b, err := adcboard.Init(node, opts...)
	require.Nil(t, err)
	require.NotNil(t, b)
	return b
}

func TestInit(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	assert.Equal(t, node, b.Node())
	assert.Equal(t, 1, bus.Opens())
	for _, addr := range adcboard.ChipAddrs() {
		assert.Equal(t, 1, bus.Selects(addr))
		assert.Equal(t, 1, bus.Reads(addr))
	}
	assert.False(t, bus.Closed())
	assert.Nil(t, b.Close())
	assert.True(t, bus.Closed())
	assert.Equal(t, adcboard.ErrClosed, b.Close())
}

func TestInitNoNode(t *testing.T) {
	bus := newBus()
	b, err := adcboard.Init("", adcboard.WithBusOpener(bus.Opener()))
	assert.Equal(t, adcboard.ErrInvalidArgument, err)
	assert.Nil(t, b)
	assert.Equal(t, 0, bus.Opens())
}

func TestInitOpenError(t *testing.T) {
	openErr := errors.New("no such file or directory")
	opener := func(node string) (i2c.Bus, error) {
		return nil, openErr
	}
	b, err := adcboard.Init(node, adcboard.WithBusOpener(opener))
	assert.True(t, errors.Is(err, adcboard.ErrOpen))
	assert.Equal(t, -1, adcboard.Status(err))
	assert.Nil(t, b)
}

func TestInitMissingChip(t *testing.T) {
	for chip, addr := range adcboard.ChipAddrs() {
		bus := newBus()
		bus.Remove(addr)
		b, err := adcboard.Init(node, adcboard.WithBusOpener(bus.Opener()))
		assert.True(t, errors.Is(err, adcboard.ErrPresenceCheck), chip)
		assert.Nil(t, b)
		assert.True(t, bus.Closed(), chip)
	}
}

func TestInitReadFailure(t *testing.T) {
	bus := newBus()
	bus.FailRead(adcboard.ChipAddr(adcboard.ADC3), errors.New("remote I/O error"))
	b, err := adcboard.Init(node, adcboard.WithBusOpener(bus.Opener()))
	assert.True(t, errors.Is(err, adcboard.ErrPresenceCheck))
	assert.Nil(t, b)
	assert.True(t, bus.Closed())
}

func TestOpenWithoutCheck(t *testing.T) {
	bus := newBus()
	bus.Remove(adcboard.ChipAddr(adcboard.ADC2))
	b, err := adcboard.Open(node, adcboard.WithBusOpener(bus.Opener()))
	require.Nil(t, err)
	defer b.Close()
	assert.False(t, b.CheckDevices())
	ss := b.Detect()
	require.Len(t, ss, adcboard.NumChips)
	for i, s := range ss {
		assert.Equal(t, i, s.Chip)
		assert.Equal(t, adcboard.ChipAddrs()[i], s.Addr)
		if i == adcboard.ADC2 {
			assert.True(t, errors.Is(s.Err, adcboard.ErrDeviceUnavailable))
		} else {
			assert.Nil(t, s.Err)
		}
	}
}

func TestReadPin(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	bus.SetCode(adcboard.ChipAddr(adcboard.ADC0), 0, 4095)

	rr, err := b.Read("CON1.1")
	require.Nil(t, err)
	require.Len(t, rr, 1)
	r := rr[0]
	assert.Equal(t, "CON1.1", r.Pin.Name)
	assert.Equal(t, uint16(4095), r.Code)
	assert.Equal(t, 4995, r.MilliVolts)
	assert.Equal(t, 4995900*physic.MicroVolt, r.Voltage)
	assert.Nil(t, r.Err)

	mv, err := b.ReadMillivolts("con1.1")
	require.Nil(t, err)
	assert.Equal(t, []int{4995}, mv)
}

func TestReadUsesChannelCommand(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	addr := adcboard.ChipAddr(adcboard.ADC1)
	before := bus.Reads(addr)
	// CON1.8 is ADC1 input 3
	mv, err := b.ReadMillivolts("CON1.8")
	require.Nil(t, err)
	assert.Equal(t, []int{ltc2309.Millivolts(code(adcboard.ADC1, 3))}, mv)
	// dummy read and real read
	assert.Equal(t, before+2, bus.Reads(addr))
	assert.Equal(t, uint8(0xD8), bus.LastCommand())
}

func TestReadHeader(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	for _, h := range adcboard.Headers() {
		for _, name := range []string{h.String(), h.String() + ".0", h.String() + ".99"} {
			rr, err := b.Read(name)
			require.Nil(t, err, name)
			require.Len(t, rr, h.Len(), name)
			for i, r := range rr {
				assert.Equal(t, i+1, r.Pin.Pin)
				assert.Nil(t, r.Err)
				if !r.Pin.Wired() {
					assert.Equal(t, 0, r.MilliVolts, r.Pin.Name)
					continue
				}
				c := code(r.Pin.ADC.Chip, r.Pin.ADC.Input)
				assert.Equal(t, c, r.Code, r.Pin.Name)
				assert.Equal(t, ltc2309.Millivolts(c), r.MilliVolts, r.Pin.Name)
			}
		}
	}
	mv, err := b.ReadMillivolts("CON1")
	require.Nil(t, err)
	assert.Len(t, mv, 40)
}

func TestReadUnwired(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	// unwired pins read as 0 even with the bus failing
	for _, addr := range adcboard.ChipAddrs() {
		bus.FailSelect(addr, -1)
	}
	for _, name := range []string{"CON1.6", "CON1.40", "P3.1", "P13.1"} {
		rr, err := b.Read(name)
		require.Nil(t, err)
		require.Len(t, rr, 1)
		assert.Equal(t, 0, rr[0].MilliVolts)
		assert.Equal(t, uint16(0), rr[0].Code)
		assert.Nil(t, rr[0].Err)
		assert.False(t, rr[0].Pin.Wired())
	}
}

func TestReadUnresolved(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	for _, name := range []string{"XYZ", "P1", "P1_7.1", ".1"} {
		rr, err := b.Read(name)
		assert.Equal(t, adcboard.ErrUnresolvedPin, err, name)
		assert.Nil(t, rr)
		assert.Equal(t, 0, adcboard.Status(err))
		mv, err := b.ReadMillivolts(name)
		assert.Equal(t, adcboard.ErrUnresolvedPin, err, name)
		assert.Nil(t, mv)
	}
}

func TestReadInvalid(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	rr, err := b.Read("")
	assert.Equal(t, adcboard.ErrInvalidArgument, err)
	assert.Nil(t, rr)
	assert.Equal(t, -1, adcboard.Status(err))

	b.Close()
	rr, err = b.Read("CON1.1")
	assert.Equal(t, adcboard.ErrInvalidArgument, err)
	assert.Nil(t, rr)
	_, err = b.ReadPin(adcboard.Resolve(adcboard.CON1, 1)[0])
	assert.Equal(t, adcboard.ErrInvalidArgument, err)

	// closed board takes precedence over an unknown name
	rr, err = b.Read("XYZ")
	assert.Equal(t, adcboard.ErrInvalidArgument, err)
	assert.Nil(t, rr)
	assert.Equal(t, -1, adcboard.Status(err))

	var nb *adcboard.Board
	rr, err = nb.Read("CON1.1")
	assert.Equal(t, adcboard.ErrInvalidArgument, err)
	assert.Nil(t, rr)
	assert.Equal(t, adcboard.ErrInvalidArgument, nb.Close())
}

func TestReadSelectRetry(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	addr := adcboard.ChipAddr(adcboard.ADC0)
	before := bus.Selects(addr)
	bus.FailSelect(addr, 2)
	mv, err := b.ReadMillivolts("CON1.1")
	require.Nil(t, err)
	assert.Equal(t, []int{ltc2309.Millivolts(code(adcboard.ADC0, 0))}, mv)
	assert.Equal(t, before+3, bus.Selects(addr))
}

func TestReadDeviceUnavailable(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	addr := adcboard.ChipAddr(adcboard.ADC1)
	before := bus.Selects(addr)
	bus.FailSelect(addr, 3)
	rr, err := b.Read("CON1.3")
	require.Nil(t, err)
	require.Len(t, rr, 1)
	assert.Equal(t, 0, rr[0].MilliVolts)
	assert.True(t, errors.Is(rr[0].Err, adcboard.ErrDeviceUnavailable))
	assert.Equal(t, before+3, bus.Selects(addr))

	// recovers once the chip responds
	mv, err := b.ReadMillivolts("CON1.3")
	require.Nil(t, err)
	assert.Equal(t, []int{ltc2309.Millivolts(code(adcboard.ADC1, 0))}, mv)
}

func TestReadBatchContinues(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	bus.FailSelect(adcboard.ChipAddr(adcboard.ADC1), -1)
	bus.FailRead(adcboard.ChipAddr(adcboard.ADC2), errors.New("remote I/O error"))
	rr, err := b.Read("CON1")
	require.Nil(t, err)
	require.Len(t, rr, 40)
	for _, r := range rr {
		if !r.Pin.Wired() {
			assert.Nil(t, r.Err)
			continue
		}
		switch r.Pin.ADC.Chip {
		case adcboard.ADC1:
			assert.True(t, errors.Is(r.Err, adcboard.ErrDeviceUnavailable), r.Pin.Name)
			assert.Equal(t, 0, r.MilliVolts)
		case adcboard.ADC2:
			assert.NotNil(t, r.Err, r.Pin.Name)
			assert.Equal(t, 0, r.MilliVolts)
		default:
			assert.Nil(t, r.Err, r.Pin.Name)
			assert.Equal(t, ltc2309.Millivolts(code(r.Pin.ADC.Chip, r.Pin.ADC.Input)), r.MilliVolts)
		}
	}
}

func TestReadPinDirect(t *testing.T) {
	bus := newBus()
	b := initBoard(t, bus)
	defer b.Close()
	p := adcboard.Resolve(adcboard.P1_6, 1)[0]
	r, err := b.ReadPin(p)
	require.Nil(t, err)
	assert.Equal(t, code(adcboard.ADC5, 7), r.Code)

	bad := adcboard.PinInfo{Name: "bad", Pin: 1, ADC: &adcboard.Channel{Chip: adcboard.NumChips}}
	r, err = b.ReadPin(bad)
	require.Nil(t, err)
	assert.Equal(t, 0, r.MilliVolts)
	assert.True(t, errors.Is(r.Err, adcboard.ErrDeviceUnavailable))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	bus := newBus()
	b := initBoard(t, bus, adcboard.WithLogger(log.New(&buf, "", 0)))
	defer b.Close()
	assert.Contains(t, buf.String(), "check devices pass: "+node)
	buf.Reset()
	bus.SetCode(adcboard.ChipAddr(adcboard.ADC0), 0, 4095)
	b.Read("con1.1")
	assert.Contains(t, buf.String(), "con1.1: header = CON1, pin = 1, pin_cnt = 1\n")
	assert.Contains(t, buf.String(), "CON1.1, value = 4995 mV\n")
	buf.Reset()
	b.Read("xyz")
	assert.Contains(t, buf.String(), "can't find xyz pin or header")
}

func TestStatus(t *testing.T) {
	assert.Equal(t, 1, adcboard.Status(nil))
	assert.Equal(t, 0, adcboard.Status(adcboard.ErrUnresolvedPin))
	assert.Equal(t, -1, adcboard.Status(adcboard.ErrInvalidArgument))
	assert.Equal(t, -1, adcboard.Status(adcboard.ErrPresenceCheck))
}
