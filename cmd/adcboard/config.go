// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/adcboard"
	"github.com/warthog618/adcboard/i2c"
	"github.com/warthog618/adcboard/i2c/i2cdev"
	"github.com/warthog618/adcboard/i2c/periphi2c"
	"github.com/warthog618/adcboard/i2c/smbus"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
)

var errNoDevice = errors.New("no device specified")

// loadConfig stacks the flags set on the command line over the environment,
// over the config file, over the defaults.
func loadConfig(cmd *cobra.Command) *config.Config {
	defaultConfig := map[string]interface{}{
		"driver": "i2cdev",
		"debug":  false,
		"retry": map[string]interface{}{
			"attempts": 3,
			"delay":    "100us",
		},
	}
	def := dict.New(dict.WithMap(defaultConfig))
	cfg := config.New(
		dict.New(dict.WithMap(flagConfig(cmd))),
		env.New(env.WithEnvPrefix("ADCBOARD_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "adcboard.json", json.NewDecoder()))
	return cfg
}

// flagConfig returns the flags explicitly set on the command line, so that
// unset flags do not mask lower priority sources.
func flagConfig(cmd *cobra.Command) map[string]interface{} {
	m := map[string]interface{}{}
	ff := cmd.Flags()
	if ff.Changed("device") {
		m["device"] = rootOpts.Device
	}
	if ff.Changed("driver") {
		m["driver"] = rootOpts.Driver
	}
	if ff.Changed("debug") {
		m["debug"] = rootOpts.Debug
	}
	if ff.Changed("config-file") {
		m["config"] = map[string]interface{}{"file": rootOpts.ConfigFile}
	}
	return m
}

func busOpener(driver string) (i2c.Opener, error) {
	switch driver {
	case "i2cdev":
		return i2cdev.Opener, nil
	case "smbus":
		return smbus.NewOpener(adcboard.ChipAddr(adcboard.ADC0)), nil
	case "periph":
		return periphi2c.Opener, nil
	}
	return nil, fmt.Errorf("unknown driver '%s'", driver)
}

func boardOptions(cfg *config.Config) ([]adcboard.Option, error) {
	opener, err := busOpener(cfg.MustGet("driver").String())
	if err != nil {
		return nil, err
	}
	opts := []adcboard.Option{
		adcboard.WithBusOpener(opener),
		adcboard.WithRetry(
			int(cfg.MustGet("retry.attempts").Int()),
			cfg.MustGet("retry.delay").Duration()),
	}
	if cfg.MustGet("debug").Bool() {
		opts = append(opts, adcboard.WithLogger(log.New(os.Stderr, "adcboard: ", 0)))
	}
	return opts, nil
}

func deviceNode(cfg *config.Config) (string, error) {
	v, err := cfg.Get("device")
	if err != nil || v.String() == "" {
		return "", errNoDevice
	}
	return v.String(), nil
}

// initBoard opens the board and checks all chips are present.
func initBoard(cmd *cobra.Command) (*adcboard.Board, error) {
	cfg := loadConfig(cmd)
	node, err := deviceNode(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := boardOptions(cfg)
	if err != nil {
		return nil, err
	}
	return adcboard.Init(node, opts...)
}

// openBoard opens the board without checking the chips are present.
func openBoard(cmd *cobra.Command) (*adcboard.Board, error) {
	cfg := loadConfig(cmd)
	node, err := deviceNode(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := boardOptions(cfg)
	if err != nil {
		return nil, err
	}
	return adcboard.Open(node, opts...)
}
