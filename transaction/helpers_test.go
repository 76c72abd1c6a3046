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

package transaction_test

import (
	"encoding/binary"

	"github.com/blinklabs-io/suitx/transaction"
	"github.com/blinklabs-io/suitx/types"
)

var (
	testSender    = types.MustParseAddress("0xa")
	testRecipient = types.MustParseAddress("0xb")
	testPackage   = types.MustParseAddress("0xc0ffee")
	testGasCoinID = types.MustParseAddress("0x1001")
	testCoinID    = types.MustParseAddress("0x2001")
	testPoolID    = types.MustParseAddress("0x3001")
)

func testDigest(seed string) types.Digest {
	return types.HashTypedData("Test", []byte(seed))
}

func testRef(id types.ObjectID, version uint64) types.ObjectRef {
	return types.ObjectRef{
		ObjectID: id,
		Version:  version,
		Digest:   testDigest(id.String()),
	}
}

func u64Bytes(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

// withGas sets every gas field so no resolution is needed
func withGas(data *transaction.TransactionData) {
	data.SetSender(testSender)
	data.SetGasOwner(testSender)
	data.SetGasPrice(1000)
	data.SetGasBudget(5_000_000)
	data.SetGasPayment([]types.ObjectRef{testRef(testGasCoinID, 7)})
}

// resolvedData builds transaction data that uses every command kind
func resolvedData() *transaction.TransactionData {
	data := transaction.NewTransactionData()
	withGas(data)
	data.SetExpiration(42)
	coin := data.AddInput(transaction.NewImmOrOwnedArg(testCoinID, 3, testDigest("coin")))
	amount := data.AddInput(transaction.NewPureArg(u64Bytes(100)))
	pool := data.AddInput(transaction.NewSharedArg(testPoolID, 5, true))
	recipient := data.AddInput(transaction.NewPureArg(testRecipient.Bytes()))
	split := data.AddCommand(&transaction.SplitCoins{
		Coin:    coin,
		Amounts: []transaction.Argument{amount},
	})
	data.AddCommand(&transaction.MoveCall{
		Package:       testPackage,
		Module:        "pool",
		Function:      "deposit",
		TypeArguments: []types.TypeTag{types.MustParseTypeTag("0x2::sui::SUI")},
		Arguments:     []transaction.Argument{pool, split.Nested(0)},
	})
	data.AddCommand(&transaction.MergeCoins{
		Destination: transaction.GasCoin(),
		Sources:     []transaction.Argument{coin},
	})
	elemType := types.MustParseTypeTag("u64")
	data.AddCommand(&transaction.MakeMoveVec{
		Type:     &elemType,
		Elements: []transaction.Argument{amount},
	})
	data.AddCommand(&transaction.Publish{
		Modules:      [][]byte{{0xa1, 0x1c, 0xeb, 0x0b}},
		Dependencies: []types.ObjectID{types.MoveStdlibAddress, types.SuiFrameworkAddress},
	})
	data.AddCommand(&transaction.Upgrade{
		Modules:      [][]byte{{0xa1, 0x1c, 0xeb, 0x0b, 0x06}},
		Dependencies: []types.ObjectID{types.SuiFrameworkAddress},
		Package:      testPackage,
		Ticket:       transaction.Result(1),
	})
	data.AddCommand(&transaction.TransferObjects{
		Objects: []transaction.Argument{transaction.Result(4)},
		Address:  recipient,
	})
	return data
}

func primitive(kind types.BodyKind) types.OpenMoveTypeSignatureBody {
	return types.OpenMoveTypeSignatureBody{Kind: kind}
}

func datatype(pkg types.Address, module string, name string, params ...types.OpenMoveTypeSignatureBody) types.OpenMoveTypeSignatureBody {
	return types.OpenMoveTypeSignatureBody{
		Kind: types.BodyDatatype,
		Datatype: &types.MoveDatatype{
			Package:        pkg,
			Module:         module,
			Type:           name,
			TypeParameters: params,
		},
	}
}

func param(ref types.RefKind, body types.OpenMoveTypeSignatureBody) types.OpenMoveTypeSignature {
	return types.OpenMoveTypeSignature{Ref: ref, Body: body}
}

var (
	poolType  = datatype(testPackage, "pool", "Pool")
	txContext = param(types.RefMutable, datatype(types.SuiFrameworkAddress, "tx_context", "TxContext"))
)

func moveFunction(name string, params ...types.OpenMoveTypeSignature) types.MoveFunction {
	return types.MoveFunction{
		Package:    testPackage,
		Module:     "pool",
		Function:   name,
		Parameters: params,
	}
}

// withFullGas sets sender and every gas field on a Transaction
func withFullGas(tx *transaction.Transaction) {
	tx.SetSender(testSender)
	tx.SetGasPrice(1000)
	tx.SetGasBudget(5_000_000)
	tx.SetGasPayment([]types.ObjectRef{testRef(testGasCoinID, 7)})
}
