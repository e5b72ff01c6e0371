// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/consensys/go-csrbus/pkg/soc"
	"github.com/consensys/go-csrbus/pkg/util"
	"github.com/consensys/go-csrbus/pkg/util/termio"
	"github.com/spf13/cobra"
)

var mapCmd = &cobra.Command{
	Use:   "map [flags] description_file",
	Short: "print the address map of a system.",
	Long: `Allocate addresses to every register bank and memory of a system
description, and print the resulting address map.  Objects without a fixed
address are given consecutive addresses in declaration order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		stats := util.NewPerfStats()
		system := buildSystem(cmd, args[0])
		registers := getFlag(cmd, "registers")
		escapes := termio.IsTerminal(os.Stdout) && !getFlag(cmd, "no-colour")
		width := termio.Width(os.Stdout, 120)
		//
		printMap(os.Stdout, system, registers, width, escapes)
		stats.Log("Address allocation")
	},
}

// Column headings of the address map
var mapHeadings = []string{"kind", "name", "object", "addr", "base", "size", "geometry"}

// Column of the address map holding the name of a memory.
const objectColumn = 2

// Print the address map of a system as a table, optionally including every
// register of every bank.  Columns other than the last are clamped according to
// a given width.  Read-only memories have their name highlighted.
func printMap(out io.Writer, system *soc.System, registers bool, width uint, escapes bool) {
	var (
		regions  = system.Map()
		rows     = [][]string{mapHeadings}
		colours  = []string{termio.BoldAnsiEscape().Build()}
		readOnly = []bool{false}
		config   = system.Config()
	)
	//
	for _, r := range regions {
		rows = append(rows, []string{r.Kind, r.Name, r.Object, fmt.Sprintf("%d", r.Address),
			fmt.Sprintf("0x%04x", r.Base), fmt.Sprintf("%d", r.Size), r.Detail})
		readOnly = append(readOnly, r.ReadOnly)
		//
		if r.Kind == "memory" {
			colours = append(colours, termio.NewAnsiEscape().FgColour(termio.TERM_CYAN).Build())
		} else {
			colours = append(colours, "")
		}
		//
		if !registers || r.Kind != "bank" {
			continue
		}
		//
		for _, b := range system.Array().Banks() {
			if b.Address != r.Address {
				continue
			}
			//
			for i, reg := range b.Bank.Registers() {
				rows = append(rows, []string{"register", r.Name, reg.Name(), "",
					fmt.Sprintf("0x%04x", r.Base+uint64(i)), "1", fmt.Sprintf("%d bits", reg.Size())})
				colours = append(colours, termio.NewAnsiEscape().FgColour(termio.TERM_YELLOW).Build())
				readOnly = append(readOnly, false)
			}
		}
	}
	//
	table := termio.NewTablePrinter(uint(len(mapHeadings)), uint(len(rows)))
	//
	for i := uint(0); i < table.Height(); i++ {
		table.SetRow(i, rows[i]...)
		//
		if colours[i] != "" {
			table.SetRowEscape(i, colours[i])
		}
		//
		if readOnly[i] {
			highlight := termio.NewAnsiEscape().FgColour(termio.TERM_BLACK).BgColour(termio.TERM_CYAN)
			table.SetEscape(objectColumn, i, highlight.Build())
		}
	}
	// Each column costs three characters of padding and separator.  The
	// geometry column is never clamped.
	for col := 0; col+1 < len(mapHeadings); col++ {
		table.SetMaxWidth(uint(col), max(width/uint(len(mapHeadings)), 4)-3)
	}
	//
	table.AnsiEscapes(escapes)
	table.Print(out)
	//
	fmt.Fprintf(out, "%d responders on a %d-bit address / %d-bit data bus (%d addresses each)\n",
		len(regions), config.AddressWidth, config.DataWidth, uint64(1)<<config.WindowBits)
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().Bool("registers", false, "list the registers of every bank")
	mapCmd.Flags().Bool("no-colour", false, "disable coloured output")
}
