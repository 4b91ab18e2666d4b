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

// Query kinds
const (
	QueryKindReceipt        uint16 = 1
	QueryKindAccountBalance uint16 = 2
	QueryKindAccountInfo    uint16 = 3
	QueryKindContractCall   uint16 = 4
	QueryKindFileContents   uint16 = 5
)

// Response types requested in a query header
const (
	ResponseTypeAnswer     uint8 = 0
	ResponseTypeCostAnswer uint8 = 1
)

// QueryHeader carries the payment (if any) and the response type for one
// query round. The first round of a paid query asks only for a cost
// estimate and carries no payment.
type QueryHeader struct {
	_            struct{} `cbor:",toarray"`
	Payment      *SignedTransaction
	ResponseType uint8
}

// Query is the envelope for a single query round trip
type Query struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint16
	Header  QueryHeader
	Payload RawMessage
}

// ResponseHeader is returned with every query response
type ResponseHeader struct {
	_            struct{} `cbor:",toarray"`
	Status       Status
	ResponseType uint8
	Cost         uint64
}

// Response is the envelope for a query answer
type Response struct {
	_       struct{} `cbor:",toarray"`
	Header  ResponseHeader
	Payload RawMessage
}

// ReceiptQuery asks for the terminal outcome of a transaction by ID.
// Receipt queries are free and skip cost negotiation.
type ReceiptQuery struct {
	_             struct{} `cbor:",toarray"`
	TransactionID TransactionID
}

// AccountBalanceQuery asks for an account's current balance (free)
type AccountBalanceQuery struct {
	_       struct{} `cbor:",toarray"`
	Account AccountID
}

// AccountBalance is the payload of a balance query response
type AccountBalance struct {
	_       struct{} `cbor:",toarray"`
	Account AccountID
	Balance uint64
}

// AccountInfoQuery asks for an account's full info record (paid)
type AccountInfoQuery struct {
	_       struct{} `cbor:",toarray"`
	Account AccountID
}

// AccountInfo is the payload of an info query response
type AccountInfo struct {
	_        struct{} `cbor:",toarray"`
	Account  AccountID
	Alias    string
	Key      []byte
	Balance  uint64
	Memo     string
	Deleted  bool
	Expiry   Timestamp
	AutoPay  *AccountID
	Receiver bool
}

// Receipt is the terminal, network-agreed outcome record for a transaction
type Receipt struct {
	_          struct{} `cbor:",toarray"`
	Status     Status
	AccountID  *AccountID
	ScheduleID *AccountID
	FileID     *AccountID
	TopicSeq   uint64
}

// ReceiptResponse pairs a receipt lookup's own precheck header with the
// receipt found, if any. Header.Status reflects whether the lookup itself
// succeeded; Receipt.Status is the transaction's terminal outcome.
type ReceiptResponse struct {
	_       struct{} `cbor:",toarray"`
	Header  ResponseHeader
	Receipt Receipt
}
