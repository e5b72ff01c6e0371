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

	"github.com/consensys/go-csrbus/pkg/csr"
	"github.com/consensys/go-csrbus/pkg/soc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// getFlag gets an expected flag, or exits if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// getUint gets an expected unsigned integer flag, or exits if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Configure log level
func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// Read a system description, and apply any geometry overrides given on the
// command line.
func readDescription(cmd *cobra.Command, filename string) (*soc.Description, csr.Config) {
	desc, err := soc.ReadDescriptionFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	config := desc.Config()
	//
	if w := getUint(cmd, "address-width"); w != 0 {
		config.AddressWidth = w
	}
	//
	if w := getUint(cmd, "data-width"); w != 0 {
		config.DataWidth = w
	}
	//
	if w := getUint(cmd, "window-bits"); w != 0 {
		config.WindowBits = w
	}
	//
	return desc, config
}

// Construct the system described in a given file, or exit on failure.
func buildSystem(cmd *cobra.Command, filename string) *soc.System {
	desc, config := readDescription(cmd, filename)
	//
	root, policy, err := desc.Build()
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	system, err := soc.NewSystem(root, policy, config)
	if err != nil {
		fmt.Printf("%s: %s\n", filename, err)
		os.Exit(3)
	}
	//
	return system
}
