// Copyright 2025 Meridian Network Authors
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

package wire

// Operation types
const (
	OpCryptoTransfer uint16 = 1
	OpScheduleCreate uint16 = 2
	OpScheduleSign   uint16 = 3
	OpContractCall   uint16 = 4
	OpFileAppend     uint16 = 5
	OpTopicMessage   uint16 = 6
)

// Signature key types
const (
	KeyTypeEd25519        uint8 = 1
	KeyTypeECDSASecp256k1 uint8 = 2
)

// TransactionBody is the portion of a transaction covered by signatures.
// FeeLimit and any transfer amounts are denominated in tinybars.
type TransactionBody struct {
	_             struct{} `cbor:",toarray"`
	TransactionID TransactionID
	NodeAccount   AccountID
	FeeLimit      uint64
	ValidDuration int64
	Memo          string
	Operation     uint16
	Payload       RawMessage
}

// SchedulableBody is a transaction body stripped of the fields the network
// assigns when a schedule finally executes
type SchedulableBody struct {
	_         struct{} `cbor:",toarray"`
	FeeLimit  uint64
	Memo      string
	Operation uint16
	Payload   RawMessage
}

// ScheduleCreate wraps a schedulable body for network-side deferred
// execution pending further signatures
type ScheduleCreate struct {
	_             struct{} `cbor:",toarray"`
	Inner         SchedulableBody
	AdminKey      []byte
	PayerAccount  *AccountID
	Expiration    *Timestamp
	WaitForExpiry bool
	Memo          string
}

// SignaturePair is one signature over a transaction body, identified by a
// prefix of the signing public key
type SignaturePair struct {
	_         struct{} `cbor:",toarray"`
	KeyType   uint8
	Prefix    []byte
	Signature []byte
}

// SignedTransaction pairs the canonical body bytes with the collected
// signatures. BodyBytes is whatever the signatories signed and is never
// re-encoded after signing.
type SignedTransaction struct {
	_         struct{} `cbor:",toarray"`
	BodyBytes []byte
	SigPairs  []SignaturePair
}

// Precheck is the gateway's fast pre-execution validation result for a
// submitted transaction. Cost is only populated for fee-related rejections.
type Precheck struct {
	_      struct{} `cbor:",toarray"`
	Status Status
	Cost   uint64
}

// AccountAmount is a single adjustment within a crypto transfer, in tinybars.
// The amounts in a transfer list must sum to zero.
type AccountAmount struct {
	_       struct{} `cbor:",toarray"`
	Account AccountID
	Amount  int64
}

// CryptoTransfer is the payload for OpCryptoTransfer
type CryptoTransfer struct {
	_         struct{} `cbor:",toarray"`
	Transfers []AccountAmount
}
