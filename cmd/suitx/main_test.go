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
	"strings"
	"testing"

	"github.com/blinklabs-io/suitx/internal/test"
	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T) *transaction.TransactionData {
	t.Helper()
	data := transaction.NewTransactionData()
	data.SetSender(types.MustParseAddress("0xa"))
	data.SetGasOwner(types.MustParseAddress("0xa"))
	data.SetGasPrice(1000)
	data.SetGasBudget(2_000_000)
	data.SetGasPayment([]types.ObjectRef{test.ObjectRef("0x1001", 3)})
	recipient := data.AddInput(transaction.NewPureArg(types.MustParseAddress("0xb").Bytes()))
	data.AddCommand(&transaction.TransferObjects{
		Objects: []transaction.Argument{transaction.GasCoin()},
		Address: recipient,
	})
	return data
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestDecode(t *testing.T) {
	data := testTransaction(t)
	txBytes, err := data.Bytes(0)
	require.NoError(t, err)
	out, err := runCommand(t, "", "decode", base64.StdEncoding.EncodeToString(txBytes))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(2), decoded["version"])
	digest, err := data.GetDigest()
	require.NoError(t, err)
	assert.Equal(t, digest.String(), decoded["digest"])
}

func TestDigestFromStdin(t *testing.T) {
	data := testTransaction(t)
	txBytes, err := data.Bytes(0)
	require.NoError(t, err)
	out, err := runCommand(t, base64.StdEncoding.EncodeToString(txBytes)+"\n", "digest", "-")
	require.NoError(t, err)
	digest, err := data.GetDigest()
	require.NoError(t, err)
	assert.Equal(t, digest.String()+"\n", out)
}

func TestRoundTrip(t *testing.T) {
	data := testTransaction(t)
	kindBytes, err := data.KindBytes(0)
	require.NoError(t, err)
	out, err := runCommand(t, "", "--kind", "roundtrip", base64.StdEncoding.EncodeToString(kindBytes))
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = runCommand(t, "", "--kind", "digest", base64.StdEncoding.EncodeToString(kindBytes))
	assert.ErrorContains(t, err, "digest needs full transaction data")
}

func TestCommandErrors(t *testing.T) {
	txBytes, err := testTransaction(t).Bytes(0)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(txBytes)
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "no subcommand", args: nil, msg: "you must specify a subcommand"},
		{name: "unknown subcommand", args: []string{"sign", encoded}, msg: "unknown subcommand: sign"},
		{name: "bad base64", args: []string{"decode", "%%"}, msg: "input is not base64"},
		{name: "bad log level", args: []string{"--log-level", "loud", "decode", encoded}, msg: "invalid log level"},
		{name: "truncated", args: []string{"decode", base64.StdEncoding.EncodeToString(txBytes[:10])}, msg: "unexpected end"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := runCommand(t, "", test.args...)
			assert.ErrorContains(t, err, test.msg)
		})
	}
}

func TestUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(nil, strings.NewReader(""), &stdout, &stderr)
	require.Error(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Usage: suitx [flags]")
	assert.Contains(t, stderr.String(), "--kind")
	assert.Contains(t, stderr.String(), "--log-level")
}
