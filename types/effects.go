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

package types

// OutputStateKind is the state of an object after a transaction
type OutputStateKind uint8

const (
	OutputNotExist OutputStateKind = iota
	OutputObjectWrite
	OutputPackageWrite
)

// ObjectOutputState describes an object after execution. Digest and Owner
// are set for ObjectWrite; Version and Digest are set for PackageWrite.
type ObjectOutputState struct {
	Kind    OutputStateKind
	Digest  Digest
	Owner   Owner
	Version uint64
}

type ChangedObject struct {
	ObjectID ObjectID
	Output   ObjectOutputState
}

type ExecutionStatus struct {
	Success bool
	Error   string
}

type GasCostSummary struct {
	ComputationCost         uint64
	StorageCost             uint64
	StorageRebate           uint64
	NonRefundableStorageFee uint64
}

// TransactionEffects is the subset of execution effects used by clients.
// Every written object takes LamportVersion as its new version.
type TransactionEffects struct {
	TransactionDigest Digest
	Status            ExecutionStatus
	GasUsed           GasCostSummary
	LamportVersion    uint64
	GasObject         *ObjectID
	ChangedObjects    []ChangedObject
}

// GasCoinRef returns the new reference of the gas coin when it still exists
func (e *TransactionEffects) GasCoinRef() (ObjectRef, bool) {
	if e.GasObject == nil {
		return ObjectRef{}, false
	}
	for _, change := range e.ChangedObjects {
		if change.ObjectID != *e.GasObject {
			continue
		}
		if change.Output.Kind != OutputObjectWrite {
			return ObjectRef{}, false
		}
		return ObjectRef{
			ObjectID: change.ObjectID,
			Version:  e.LamportVersion,
			Digest:   change.Output.Digest,
		}, true
	}
	return ObjectRef{}, false
}
