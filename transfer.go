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

package meridian

import (
	"errors"

	"github.com/meridianhq/gomeridian/wire"
)

// TransferTransaction moves tinybars between accounts. The adjustments must
// sum to zero.
type TransferTransaction struct {
	transfers []wire.AccountAmount
}

func NewTransferTransaction() *TransferTransaction {
	return &TransferTransaction{}
}

// AddTransfer appends one signed adjustment, in tinybars. Negative amounts
// debit the account, positive amounts credit it.
func (t *TransferTransaction) AddTransfer(account wire.AccountID, amount int64) *TransferTransaction {
	t.transfers = append(t.transfers, wire.AccountAmount{
		Account: account,
		Amount:  amount,
	})
	return t
}

func (t *TransferTransaction) OperationName() string {
	return "CryptoTransfer"
}

func (t *TransferTransaction) buildPayload() (wire.RawMessage, error) {
	if len(t.transfers) == 0 {
		return nil, errors.New("transfer requires at least one adjustment")
	}
	var sum int64
	for _, transfer := range t.transfers {
		sum += transfer.Amount
	}
	if sum != 0 {
		return nil, errors.New("transfer adjustments must sum to zero")
	}
	return wire.Marshal(wire.CryptoTransfer{Transfers: t.transfers})
}

func (t *TransferTransaction) BuildBody() (*wire.TransactionBody, error) {
	payload, err := t.buildPayload()
	if err != nil {
		return nil, err
	}
	return &wire.TransactionBody{
		Operation: wire.OpCryptoTransfer,
		Payload:   payload,
	}, nil
}

func (t *TransferTransaction) BuildSchedulableBody() (*wire.SchedulableBody, error) {
	payload, err := t.buildPayload()
	if err != nil {
		return nil, err
	}
	return &wire.SchedulableBody{
		Operation: wire.OpCryptoTransfer,
		Payload:   payload,
	}, nil
}
