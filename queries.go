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
	"context"

	"github.com/meridianhq/gomeridian/wire"
)

// AccountBalanceQuery asks for an account's current tinybar balance. The
// network answers balance queries for free, so this completes in one round
// trip.
type AccountBalanceQuery struct {
	Account wire.AccountID
}

func (q *AccountBalanceQuery) OperationName() string {
	return "AccountBalance"
}

func (q *AccountBalanceQuery) Kind() uint16 {
	return wire.QueryKindAccountBalance
}

func (q *AccountBalanceQuery) BuildPayload() (wire.RawMessage, error) {
	return wire.Marshal(wire.AccountBalanceQuery{Account: q.Account})
}

// AccountInfoQuery asks for an account's full info record. Info queries are
// paid and go through the two-phase fee negotiation.
type AccountInfoQuery struct {
	Account wire.AccountID
}

func (q *AccountInfoQuery) OperationName() string {
	return "AccountInfo"
}

func (q *AccountInfoQuery) Kind() uint16 {
	return wire.QueryKindAccountInfo
}

func (q *AccountInfoQuery) BuildPayload() (wire.RawMessage, error) {
	return wire.Marshal(wire.AccountInfoQuery{Account: q.Account})
}

// GetAccountBalance returns the account's current balance in tinybars
func (c *Client) GetAccountBalance(ctx context.Context, account wire.AccountID, opts ...Option) (uint64, error) {
	resp, err := ExecuteQuery(ctx, c, &AccountBalanceQuery{Account: account}, opts...)
	if err != nil {
		return 0, err
	}
	var balance wire.AccountBalance
	if err := wire.Unmarshal(resp.Payload, &balance); err != nil {
		return 0, err
	}
	return balance.Balance, nil
}

// GetAccountInfo returns the account's info record
func (c *Client) GetAccountInfo(ctx context.Context, account wire.AccountID, opts ...Option) (*wire.AccountInfo, error) {
	resp, err := ExecuteQuery(ctx, c, &AccountInfoQuery{Account: account}, opts...)
	if err != nil {
		return nil, err
	}
	var info wire.AccountInfo
	if err := wire.Unmarshal(resp.Payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetReceipt looks up the terminal outcome of a previously submitted
// transaction by ID, retrying while the network has not decided yet
func (c *Client) GetReceipt(ctx context.Context, txID wire.TransactionID, opts ...Option) (*TransactionReceipt, error) {
	scope := c.scope.NewChild(opts...)
	defer scope.Close()
	gw, err := scope.Gateway()
	if err != nil {
		return nil, err
	}
	channel, err := scope.channel(gw)
	if err != nil {
		return nil, err
	}
	resp, err := pollReceipt(ctx, scope, channel, gw, txID)
	if err != nil {
		return nil, err
	}
	return classifyReceipt(scope, gw, txID, resp, false)
}

// Transfer submits a crypto transfer and waits for its receipt
func (c *Client) Transfer(ctx context.Context, tx *TransferTransaction, opts ...Option) (*TransactionReceipt, error) {
	return Execute(ctx, c, tx, opts...)
}
