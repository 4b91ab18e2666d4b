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
	"fmt"

	"github.com/meridianhq/gomeridian/wire"
)

var (
	// ErrNoSignatures is returned when the coalesced signatories produced no
	// signatures for a transaction that requires at least one
	ErrNoSignatures = errors.New("no signatures were produced for the transaction")

	// ErrScopeClosed is returned when a scope is used after it was released
	ErrScopeClosed = errors.New("scope has already been released")
)

// ConfigurationError indicates a required setting was never set anywhere in
// the scope chain. It is raised at point of use, never retried.
type ConfigurationError struct {
	Setting Setting
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"configuration error: required setting %s is not set in the scope chain",
		e.Setting,
	)
}

// PrecheckError indicates the gateway node rejected the request before
// execution, or an unrecoverable transport failure occurred. Unless
// PaymentAmbiguous is set the request was not charged.
type PrecheckError struct {
	Status        wire.Status
	TransactionID *wire.TransactionID
	// Cost carries the node's fee hint when the rejection was fee-related
	Cost uint64
	// PaymentAmbiguous marks the query case where the connection dropped
	// after an embedded payment may have been collected
	PaymentAmbiguous bool
	transportErr     error
}

func (e *PrecheckError) Error() string {
	if e.transportErr != nil {
		if e.PaymentAmbiguous {
			return fmt.Sprintf(
				"precheck failed: node unreachable; payment may already be collected: %s",
				e.transportErr,
			)
		}
		return fmt.Sprintf("precheck failed: node unreachable: %s", e.transportErr)
	}
	ret := fmt.Sprintf("precheck failed with status %s", e.Status)
	if e.TransactionID != nil {
		ret += fmt.Sprintf(" for transaction %s", e.TransactionID)
	}
	if e.Cost > 0 {
		ret += fmt.Sprintf(" (required fee: %d tinybars)", e.Cost)
	}
	return ret
}

func (e *PrecheckError) Unwrap() error {
	return e.transportErr
}

// ConsensusTimeoutError indicates the retry budget for receipt polling was
// exhausted while the network still reported Busy or Unknown. The outcome is
// indeterminate and the network may still finalize the transaction later.
type ConsensusTimeoutError struct {
	TransactionID wire.TransactionID
	LastStatus    wire.Status
}

func (e *ConsensusTimeoutError) Error() string {
	return fmt.Sprintf(
		"network did not reach consensus on transaction %s before the retry budget was exhausted (last status: %s)",
		e.TransactionID,
		e.LastStatus,
	)
}

// TransactionFailedError indicates a terminal, non-success receipt was
// obtained. The payer was charged. Receipt may be synthetic when the network
// could not locate the transaction.
type TransactionFailedError struct {
	TransactionID wire.TransactionID
	Receipt       wire.Receipt
	// Scheduled is set when the failed operation was a schedule-create
	// wrapping the caller's transaction
	Scheduled bool
}

func (e *TransactionFailedError) Error() string {
	if e.Scheduled {
		return fmt.Sprintf(
			"scheduling transaction %s failed with status %s",
			e.TransactionID,
			e.Receipt.Status,
		)
	}
	return fmt.Sprintf(
		"transaction %s failed with status %s",
		e.TransactionID,
		e.Receipt.Status,
	)
}
