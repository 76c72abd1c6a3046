// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/suitx/transaction"
	"github.com/spf13/pflag"
)

type globalFlags struct {
	flagset  *pflag.FlagSet
	kind     bool
	logLevel string
}

func newGlobalFlags(stderr io.Writer) *globalFlags {
	f := &globalFlags{
		flagset: pflag.NewFlagSet("suitx", pflag.ContinueOnError),
	}
	f.flagset.SetOutput(stderr)
	f.flagset.BoolVar(
		&f.kind,
		"kind",
		false,
		"input holds only the transaction kind, without sender and gas data",
	)
	f.flagset.StringVar(
		&f.logLevel,
		"log-level",
		"info",
		"log level (debug, info, warn, error)",
	)
	f.flagset.Usage = func() {
		fmt.Fprintf(
			stderr,
			"Usage: suitx [flags] <decode|digest|roundtrip> [base64 transaction bytes | -]\n\n",
		)
		f.flagset.PrintDefaults()
	}
	return f
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	f := newGlobalFlags(stderr)
	if err := f.flagset.Parse(args); err != nil {
		return fmt.Errorf("failed to parse command args: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return fmt.Errorf("invalid log level: %s", f.logLevel)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if f.flagset.NArg() == 0 {
		f.flagset.Usage()
		return errors.New("you must specify a subcommand")
	}
	input, err := readInput(f.flagset.Args()[1:], stdin)
	if err != nil {
		return err
	}
	logger.Debug("decoded input", "bytes", len(input), "kind", f.kind)
	data, err := decodeData(input, f.kind)
	if err != nil {
		return err
	}
	switch f.flagset.Arg(0) {
	case "decode":
		return decodeCommand(data, stdout)
	case "digest":
		if f.kind {
			return errors.New("digest needs full transaction data")
		}
		digest, err := data.GetDigest()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, digest.String())
		return nil
	case "roundtrip":
		return roundTripCommand(data, input, f.kind, stdout, logger)
	default:
		return fmt.Errorf("unknown subcommand: %s", f.flagset.Arg(0))
	}
}

// readInput takes the base64 input from the arguments, or from stdin when
// it is missing or "-"
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	var text string
	if len(args) > 0 && args[0] != "-" {
		text = args[0]
	} else {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		text = string(raw)
	}
	ret, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("input is not base64: %w", err)
	}
	return ret, nil
}

func decodeData(input []byte, kindOnly bool) (*transaction.TransactionData, error) {
	if kindOnly {
		return transaction.FromKindBytes(input)
	}
	return transaction.FromBytes(input)
}

func decodeCommand(data *transaction.TransactionData, stdout io.Writer) error {
	serialized, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, serialized, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(stdout)
	return err
}

func roundTripCommand(data *transaction.TransactionData, input []byte, kindOnly bool, stdout io.Writer, logger *slog.Logger) error {
	var encoded []byte
	var err error
	if kindOnly {
		encoded, err = data.KindBytes(0)
	} else {
		encoded, err = data.Bytes(0)
	}
	if err != nil {
		return err
	}
	if !bytes.Equal(encoded, input) {
		logger.Debug("round trip mismatch", "input", len(input), "encoded", len(encoded))
		return errors.New("re-encoded bytes differ from input")
	}
	fmt.Fprintln(stdout, "ok")
	return nil
}
