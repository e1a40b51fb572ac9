// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"github.com/spf13/cobra"
	"github.com/warthog618/adcboard"
)

func init() {
	readCmd.Flags().BoolVarP(&readOpts.Raw, "raw", "r", false, "display raw conversion codes rather than mV")
	readCmd.Flags().BoolVarP(&readOpts.Short, "short", "s", false, "single line output format")
	readCmd.SetHelpTemplate(readCmd.HelpTemplate() + extendedReadHelp)
	rootCmd.AddCommand(readCmd)
}

var (
	readCmd = &cobra.Command{
		Use:     "read <pin1>...",
		Short:   "Read the voltage on a pin or header",
		Example: "  adcboard -D /dev/i2c-0 read CON1.1 P3",
		Args:    cobra.MinimumNArgs(1),
		RunE:    read,
	}
	readOpts = struct {
		Raw   bool
		Short bool
	}{}
)

var extendedReadHelp = `
Pins:
  Pins may be identified by name (CON1.1) or by header (CON1).

Pins that are not wired to an ADC, or that fail to read, read as 0mV.
`

func read(cmd *cobra.Command, args []string) error {
	b, err := initBoard(cmd)
	if err != nil {
		return err
	}
	defer b.Close()
	var rr []adcboard.Reading
	for _, arg := range args {
		r, err := b.Read(arg)
		if err != nil {
			return err
		}
		rr = append(rr, r...)
	}
	out := cmd.OutOrStdout()
	if readOpts.Short {
		printReadingsShort(out, rr)
	} else {
		printReadings(out, rr, readOpts.Raw)
	}
	return nil
}
