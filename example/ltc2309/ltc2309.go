// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"fmt"

	"github.com/warthog618/adcboard/i2c/i2cdev"
	"github.com/warthog618/adcboard/ltc2309"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
)

// This example reads all eight channels from a single LTC2309 on an I2C bus.
// The default bus and chip address are defined in loadConfig, but can be
// altered via configuration (env, flag or config file).
func main() {
	cfg := loadConfig()
	bus, err := i2cdev.Open(cfg.MustGet("device").String())
	if err != nil {
		panic(err)
	}
	defer bus.Close()
	adc := ltc2309.New(
		bus,
		uint8(cfg.MustGet("addr").Uint()),
		ltc2309.WithRetry(
			int(cfg.MustGet("retry.attempts").Int()),
			cfg.MustGet("retry.delay").Duration()))
	if err := adc.Probe(); err != nil {
		panic(err)
	}
	for ch := 0; ch < ltc2309.NumChannels; ch++ {
		d, err := adc.Read(ch)
		if err != nil {
			fmt.Printf("ch%d: %s\n", ch, err)
			continue
		}
		fmt.Printf("ch%d=0x%03x %dmV (%s)\n", ch, d, ltc2309.Millivolts(d), ltc2309.Voltage(d))
	}
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"device": "/dev/i2c-0",
		"addr":   ltc2309.AddrLowLow,
		"retry": map[string]interface{}{
			"attempts": ltc2309.DefaultAttempts,
			"delay":    ltc2309.DefaultRetryDelay.String(),
		},
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		pflag.New(pflag.WithFlags(
			[]pflag.Flag{{Short: 'c', Name: "config-file"}})),
		env.New(env.WithEnvPrefix("LTC2309_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "ltc2309.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
