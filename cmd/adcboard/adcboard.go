// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warthog618/adcboard"
)

var version = "undefined"

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.Device, "device", "D", "", "i2c device node of the board, e.g. /dev/i2c-0")
	rootCmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config-file", "c", "", "config file")
	rootCmd.PersistentFlags().StringVar(&rootOpts.Driver, "driver", "", "bus driver [i2cdev|smbus|periph]")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.Debug, "debug", false, "trace bus reads to stderr")
	rootCmd.Flags().StringVarP(&rootOpts.Pin, "pin", "p", "", "header pin name in adc board (con1, con1.1...)")
	rootCmd.Flags().BoolVarP(&rootOpts.View, "view", "v", false, "display all header pins")
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + extendedRootHelp)
}

var (
	rootCmd = &cobra.Command{
		Use:           "adcboard",
		Short:         "adcboard reads the analog inputs of the ODROID-JIG ADC board",
		Example:       "  adcboard -D /dev/i2c-0 -p con1.1",
		Args:          cobra.NoArgs,
		RunE:          root,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootOpts = struct {
		Device     string
		ConfigFile string
		Driver     string
		Debug      bool
		Pin        string
		View       bool
	}{}
)

var extendedRootHelp = `
Pins:
  Pins are identified by header and pin number (CON1.1), or by header alone
  (CON1) to read all pins on the header. Names are case insensitive.

Headers:
  CON1, P3, P13, P1_1, P1_2, P1_3, P1_4, P1_5, P1_6
`

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, adcboard.ErrOpen) || errors.Is(err, adcboard.ErrPresenceCheck) {
			os.Exit(-1)
		}
		os.Exit(1)
	}
}

func logErr(cmd *cobra.Command, err error) {
	fmt.Fprintf(os.Stderr, "adcboard %s: %s\n", cmd.Name(), err)
}

func root(cmd *cobra.Command, args []string) error {
	b, err := initBoard(cmd)
	if err != nil {
		if errors.Is(err, errNoDevice) {
			cmd.Usage()
		}
		return err
	}
	defer b.Close()
	out := cmd.OutOrStdout()
	if rootOpts.View {
		printAllInfo(out, b)
	}
	if rootOpts.Pin != "" {
		if err := printPinInfo(out, b, rootOpts.Pin); err != nil {
			logErr(cmd, err)
		}
	}
	return nil
}
