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
	"os"

	"github.com/consensys/go-csrbus/pkg/soc"
	"github.com/consensys/go-csrbus/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var simCmd = &cobra.Command{
	Use:   "sim [flags] description_file script_file",
	Short: "simulate bus transactions against a system.",
	Long: `Construct a system from its description, and execute a script of bus
transactions against it.  Each line of the script is one of:

  r ADDRESS             read a bus address
  w ADDRESS VALUE       write a bus address
  mr MEMORY ENTRY       read a memory entry, one sub-word at a time
  mw MEMORY ENTRY VALUE write a memory entry, one sub-word at a time

The result of every read is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		stats := util.NewPerfStats()
		system := buildSystem(cmd, args[0])
		system.CycleLimit = getUint(cmd, "cycle-limit")
		//
		bytes, err := os.ReadFile(args[1])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		commands, err := soc.ParseScript(string(bytes))
		if err != nil {
			fmt.Printf("%s: %s\n", args[1], err)
			os.Exit(2)
		}
		//
		if err := system.RunScript(commands, os.Stdout); err != nil {
			log.Error(err)
			os.Exit(4)
		}
		//
		log.Debugf("executed %d commands in %d cycles", len(commands), system.Cycle())
		stats.Log("Simulation")
	},
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.Flags().Uint("cycle-limit", soc.DefaultCycleLimit, "maximum cycles for any one command")
}
