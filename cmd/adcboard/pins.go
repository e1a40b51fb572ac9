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
	rootCmd.AddCommand(pinsCmd)
}

var pinsCmd = &cobra.Command{
	Use:     "pins [pin1]...",
	Short:   "Display the ADC wiring of a pin or header",
	Long:    `Display the ADC chip and input wired to each pin. Displays all headers if no pins are specified.`,
	Example: "  adcboard pins CON1 P3.5",
	RunE:    pins,
}

func pins(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, h := range adcboard.Headers() {
			printWiring(out, h.Pins())
		}
		return nil
	}
	for _, arg := range args {
		pp, err := adcboard.Lookup(arg)
		if err != nil {
			logErr(cmd, err)
			continue
		}
		printWiring(out, pp)
	}
	return nil
}
