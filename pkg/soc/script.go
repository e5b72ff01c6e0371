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
package soc

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Script operations
const (
	// OpRead reads a bus address: "r ADDRESS"
	OpRead = "r"
	// OpWrite writes a bus address: "w ADDRESS VALUE"
	OpWrite = "w"
	// OpMemoryRead reads a memory entry: "mr MEMORY ENTRY"
	OpMemoryRead = "mr"
	// OpMemoryWrite writes a memory entry: "mw MEMORY ENTRY VALUE"
	OpMemoryWrite = "mw"
)

// Command is a single line of a bus script.  For memory operations, Address
// holds the entry, and the word to write (which may be wider than 64 bits) is
// held in Word.
type Command struct {
	Line    int
	Op      string
	Memory  string
	Address uint64
	Value   uint64
	Word    *big.Int
}

// ParseScript parses a bus script, one command per line.  Blank lines and
// anything following a '#' are ignored.  Numbers may be given in any base
// accepted by Go (e.g. 0x1f, 0b101, 17).
func ParseScript(text string) ([]Command, error) {
	var commands []Command
	//
	for i, line := range strings.Split(text, "\n") {
		if j := strings.IndexByte(line, '#'); j >= 0 {
			line = line[:j]
		}
		//
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		//
		cmd, err := parseCommand(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}
		//
		cmd.Line = i + 1
		commands = append(commands, cmd)
	}
	//
	return commands, nil
}

func parseCommand(fields []string) (Command, error) {
	var (
		cmd      = Command{Op: fields[0]}
		operands []string
		err      error
	)
	//
	switch cmd.Op {
	case OpRead:
		operands = []string{"address"}
	case OpWrite:
		operands = []string{"address", "value"}
	case OpMemoryRead:
		operands = []string{"memory", "entry"}
	case OpMemoryWrite:
		operands = []string{"memory", "entry", "word"}
	default:
		return cmd, fmt.Errorf("unknown operation %q", cmd.Op)
	}
	//
	if len(fields)-1 != len(operands) {
		return cmd, fmt.Errorf("%s expects %d operands, found %d", cmd.Op, len(operands), len(fields)-1)
	}
	//
	for i, name := range operands {
		field := fields[i+1]
		//
		switch name {
		case "memory":
			cmd.Memory = field
		case "address", "entry":
			cmd.Address, err = strconv.ParseUint(field, 0, 64)
		case "value":
			cmd.Value, err = strconv.ParseUint(field, 0, 64)
		case "word":
			cmd.Word, err = parseWord(field)
		}
		//
		if err != nil {
			return cmd, errors.Wrapf(err, "invalid %s", name)
		}
	}
	//
	return cmd, nil
}

// Parse an unsigned integer of any size, in any base accepted by Go.
func parseWord(field string) (*big.Int, error) {
	word, ok := new(big.Int).SetString(field, 0)
	//
	if !ok || word.Sign() < 0 {
		return nil, fmt.Errorf("%q is not an unsigned integer", field)
	}
	//
	return word, nil
}

// RunScript executes a sequence of commands in order, reporting the result of
// every read on a given writer.
func (s *System) RunScript(commands []Command, out io.Writer) error {
	for _, cmd := range commands {
		var (
			value uint64
			word  *big.Int
			err   error
		)
		//
		switch cmd.Op {
		case OpRead:
			value, err = s.Read(cmd.Address)
			if err == nil {
				_, err = fmt.Fprintf(out, "r 0x%x = 0x%x\n", cmd.Address, value)
			}
		case OpWrite:
			err = s.Write(cmd.Address, cmd.Value)
		case OpMemoryRead:
			word, err = s.ReadMemory(cmd.Memory, cmd.Address)
			if err == nil {
				_, err = fmt.Fprintf(out, "mr %s[%d] = 0x%x\n", cmd.Memory, cmd.Address, word)
			}
		case OpMemoryWrite:
			err = s.WriteMemory(cmd.Memory, cmd.Address, cmd.Word)
		default:
			err = fmt.Errorf("unknown operation %q", cmd.Op)
		}
		//
		if err != nil {
			return errors.Wrapf(err, "line %d", cmd.Line)
		}
	}
	//
	return nil
}
