// SPDX-License-Identifier: MIT
//
// Copyright © 2023 Kent Gibson <warthog618@gmail.com>.

// +build linux

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warthog618/adcboard"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Identify the ADC chips responding on the bus",
	Args:  cobra.NoArgs,
	RunE:  detect,
}

func detect(cmd *cobra.Command, args []string) error {
	b, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer b.Close()
	missing := 0
	for _, s := range b.Detect() {
		status := "ok"
		if s.Err != nil {
			status = "not found"
			missing++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "adc%d 0x%02x: %s\n", s.Chip, s.Addr, status)
	}
	if missing != 0 {
		return fmt.Errorf("%w: %d of %d chips not found", adcboard.ErrPresenceCheck, missing, adcboard.NumChips)
	}
	return nil
}

