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

// Status is a response code returned by a gateway node, either as a precheck
// result or as the terminal status recorded in a receipt
type Status uint32

const (
	StatusOk                       Status = 0
	StatusInvalidTransaction       Status = 1
	StatusPayerAccountNotFound     Status = 2
	StatusInvalidNodeAccount       Status = 3
	StatusTransactionExpired       Status = 4
	StatusInvalidTransactionStart  Status = 5
	StatusInvalidSignature         Status = 6
	StatusDuplicateTransaction     Status = 7
	StatusBusy                     Status = 8
	StatusNotSupported             Status = 9
	StatusInsufficientTxFee        Status = 10
	StatusInsufficientPayerBalance Status = 11
	StatusUnknown                  Status = 12
	StatusReceiptNotFound          Status = 13
	StatusSuccess                  Status = 14
	StatusInvalidFeeSubmitted      Status = 15
	StatusSignatureRequired        Status = 16
)

func (s Status) String() string {
	tmp := map[Status]string{
		StatusOk:                       "Ok",
		StatusInvalidTransaction:       "InvalidTransaction",
		StatusPayerAccountNotFound:     "PayerAccountNotFound",
		StatusInvalidNodeAccount:       "InvalidNodeAccount",
		StatusTransactionExpired:       "TransactionExpired",
		StatusInvalidTransactionStart:  "InvalidTransactionStart",
		StatusInvalidSignature:         "InvalidSignature",
		StatusDuplicateTransaction:     "DuplicateTransaction",
		StatusBusy:                     "Busy",
		StatusNotSupported:             "NotSupported",
		StatusInsufficientTxFee:        "InsufficientTxFee",
		StatusInsufficientPayerBalance: "InsufficientPayerBalance",
		StatusUnknown:                  "Unknown",
		StatusReceiptNotFound:          "ReceiptNotFound",
		StatusSuccess:                  "Success",
		StatusInvalidFeeSubmitted:      "InvalidFeeSubmitted",
		StatusSignatureRequired:        "SignatureRequired",
	}
	ret, ok := tmp[s]
	if !ok {
		return "Unknown"
	}
	return ret
}
