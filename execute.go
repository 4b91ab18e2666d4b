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
	"errors"
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/meridianhq/gomeridian/wire"
)

// Transaction is implemented by every network operation that can be
// submitted for execution. Implementations supply the operation-specific
// payload; the engine stamps identity, node, fee, duration, and memo.
type Transaction interface {
	// OperationName is the human-readable name used in error messages
	OperationName() string
	// BuildBody returns a transaction body with the operation fields set
	BuildBody() (*wire.TransactionBody, error)
	// BuildSchedulableBody returns the form of the body the network holds
	// when execution is deferred behind a schedule
	BuildSchedulableBody() (*wire.SchedulableBody, error)
}

// TransactionReceipt is the terminal outcome of a submitted transaction
type TransactionReceipt struct {
	TransactionID wire.TransactionID
	NodeAccount   wire.AccountID
	Receipt       wire.Receipt
}

// txSubmitOutcome is the submitter's response type for the transaction path.
// A transport-failure recovery can substitute a directly-probed receipt for
// the missing precheck.
type txSubmitOutcome struct {
	precheck *wire.Precheck
	receipt  *wire.ReceiptResponse
}

func (o txSubmitOutcome) status() wire.Status {
	if o.receipt != nil {
		return o.receipt.Header.Status
	}
	if o.precheck != nil {
		return o.precheck.Status
	}
	return wire.StatusUnknown
}

// Execute signs and submits the transaction, then polls until the network
// reports a terminal outcome. Per-call options overlay the client's scope
// for the duration of this call only.
func Execute(ctx context.Context, c *Client, tx Transaction, opts ...Option) (*TransactionReceipt, error) {
	scope := c.scope.NewChild(opts...)
	defer scope.Close()
	return executeTransaction(ctx, scope, tx)
}

func executeTransaction(ctx context.Context, scope *Scope, tx Transaction) (*TransactionReceipt, error) {
	gw, err := scope.Gateway()
	if err != nil {
		return nil, err
	}
	payer, err := scope.Payer()
	if err != nil {
		return nil, err
	}
	signatories, err := scope.Signatories()
	if err != nil {
		return nil, err
	}
	scheduleParams, err := collectScheduleParams(signatories)
	if err != nil {
		return nil, err
	}
	var body *wire.TransactionBody
	if scheduleParams != nil {
		schedulable, err := tx.BuildSchedulableBody()
		if err != nil {
			return nil, err
		}
		body, err = wrapAsScheduleCreate(schedulable, scheduleParams)
		if err != nil {
			return nil, err
		}
	} else {
		body, err = tx.BuildBody()
		if err != nil {
			return nil, err
		}
	}
	// Resolve the transaction identity: caller-supplied, or payer plus a
	// fresh unique start time
	generated := false
	var txID wire.TransactionID
	if explicit := scope.TransactionID(); explicit != nil {
		if explicit.Scheduled {
			return nil, errors.New("a caller-supplied transaction ID must not be marked scheduled")
		}
		txID = *explicit
	} else {
		txID = wire.TransactionID{
			Payer:      payer,
			ValidStart: scope.gen.Next(scope.AdjustForDrift()),
		}
		generated = true
	}
	buildSigned := func(ctx context.Context) (*wire.SignedTransaction, error) {
		stamped := *body
		stamped.TransactionID = txID
		stamped.NodeAccount = gw.Account
		stamped.FeeLimit = scope.FeeLimit()
		stamped.ValidDuration = int64(scope.ValidDuration() / time.Second)
		stamped.Memo = scope.Memo()
		bodyBytes, err := wire.Marshal(&stamped)
		if err != nil {
			return nil, err
		}
		invoice := newInvoice(txID, bodyBytes, scope.PrefixTrimLimit())
		if err := signatories.SignRequest(ctx, invoice); err != nil {
			return nil, err
		}
		if invoice.signatureCount() == 0 {
			return nil, ErrNoSignatures
		}
		return invoice.signedTransaction(), nil
	}
	signed, err := buildSigned(ctx)
	if err != nil {
		return nil, err
	}
	channel, err := scope.channel(gw)
	if err != nil {
		return nil, err
	}
	// The drift reference is the loop's first timing instant; it is not
	// re-derived per retry
	attemptStart := time.Now()
	driftRecorded := false
	rebuild := false
	outcome, err := submitWithRetry(
		ctx,
		submitParams{
			scope:     scope,
			operation: tx.OperationName(),
			gateway:   gw,
			txID:      &txID,
		},
		func(ctx context.Context, attempt int) (txSubmitOutcome, error) {
			if rebuild {
				// The node rejected the generated start time; reissue with
				// the drift correction applied and re-sign
				rebuild = false
				txID.ValidStart = scope.gen.Next(scope.AdjustForDrift())
				var buildErr error
				signed, buildErr = buildSigned(ctx)
				if buildErr != nil {
					return txSubmitOutcome{}, buildErr
				}
			}
			reqBytes, err := wire.Marshal(signed)
			if err != nil {
				return txSubmitOutcome{}, err
			}
			out, err := channel.SubmitTransaction(ctx, wrapperspb.Bytes(reqBytes))
			if err != nil {
				return txSubmitOutcome{}, err
			}
			var precheck wire.Precheck
			if err := wire.Unmarshal(out.Value, &precheck); err != nil {
				return txSubmitOutcome{}, err
			}
			return txSubmitOutcome{precheck: &precheck}, nil
		},
		func(o txSubmitOutcome) bool {
			if o.precheck == nil {
				return false
			}
			switch o.precheck.Status {
			case wire.StatusBusy:
				return true
			case wire.StatusInvalidTransactionStart:
				if !generated {
					return false
				}
				if !driftRecorded {
					scope.gen.RecordDrift(time.Since(attemptStart))
					driftRecorded = true
				}
				rebuild = true
				return true
			}
			return false
		},
		txSubmitOutcome.status,
		func(ctx context.Context, attempt int, transportErr error) (txSubmitOutcome, bool, error) {
			// The node may have received the transaction before the
			// connection dropped: wait one backoff interval and probe for
			// a receipt by ID before retrying the submission
			if err := waitBackoff(ctx, scope.RetryDelay()); err != nil {
				return txSubmitOutcome{}, false, err
			}
			receiptResp, err := fetchReceipt(ctx, channel, txID)
			if err != nil {
				return txSubmitOutcome{}, false, nil
			}
			if !receiptUsable(receiptResp) {
				return txSubmitOutcome{}, false, nil
			}
			return txSubmitOutcome{receipt: receiptResp}, true, nil
		},
	)
	if err != nil {
		return nil, err
	}
	scheduled := scheduleParams != nil
	receiptResp := outcome.receipt
	if receiptResp == nil {
		if outcome.precheck.Status != wire.StatusOk {
			return nil, &PrecheckError{
				Status:        outcome.precheck.Status,
				TransactionID: &txID,
				Cost:          outcome.precheck.Cost,
			}
		}
		receiptResp, err = pollReceipt(ctx, scope, channel, gw, txID)
		if err != nil {
			return nil, err
		}
	}
	return classifyReceipt(scope, gw, txID, receiptResp, scheduled)
}

// pollReceipt retries the receipt lookup while the node is busy or the
// network has not yet agreed on an outcome
func pollReceipt(
	ctx context.Context,
	scope *Scope,
	channel wire.GatewayClient,
	gw Gateway,
	txID wire.TransactionID,
) (*wire.ReceiptResponse, error) {
	return submitWithRetry(
		ctx,
		submitParams{
			scope:     scope,
			operation: "GetReceipt",
			gateway:   gw,
			txID:      &txID,
		},
		func(ctx context.Context, attempt int) (*wire.ReceiptResponse, error) {
			return fetchReceipt(ctx, channel, txID)
		},
		func(resp *wire.ReceiptResponse) bool {
			if resp.Header.Status == wire.StatusBusy {
				return true
			}
			return resp.Header.Status == wire.StatusOk &&
				resp.Receipt.Status == wire.StatusUnknown
		},
		func(resp *wire.ReceiptResponse) wire.Status {
			return resp.Header.Status
		},
		nil,
	)
}

// fetchReceipt performs one direct receipt lookup with no retries
func fetchReceipt(ctx context.Context, channel wire.GatewayClient, txID wire.TransactionID) (*wire.ReceiptResponse, error) {
	reqBytes, err := wire.Marshal(wire.ReceiptQuery{TransactionID: txID})
	if err != nil {
		return nil, err
	}
	out, err := channel.GetReceipt(ctx, wrapperspb.Bytes(reqBytes))
	if err != nil {
		return nil, err
	}
	var resp wire.ReceiptResponse
	if err := wire.Unmarshal(out.Value, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// receiptUsable reports whether a probed receipt can stand in as the
// submission outcome: the lookup succeeded and the network has reached a
// terminal decision
func receiptUsable(resp *wire.ReceiptResponse) bool {
	if resp.Header.Status != wire.StatusOk {
		return false
	}
	return resp.Receipt.Status != wire.StatusUnknown
}

// classifyReceipt maps a receipt response to the caller-facing outcome
func classifyReceipt(
	scope *Scope,
	gw Gateway,
	txID wire.TransactionID,
	resp *wire.ReceiptResponse,
	scheduled bool,
) (*TransactionReceipt, error) {
	switch resp.Header.Status {
	case wire.StatusReceiptNotFound, wire.StatusUnknown:
		// The network never saw the transaction; synthesize a receipt so
		// the caller still gets a terminal record
		return nil, &TransactionFailedError{
			TransactionID: txID,
			Receipt:       wire.Receipt{Status: resp.Header.Status},
			Scheduled:     scheduled,
		}
	case wire.StatusBusy:
		return nil, &ConsensusTimeoutError{
			TransactionID: txID,
			LastStatus:    wire.StatusBusy,
		}
	case wire.StatusOk:
		// Fall through to receipt inspection
	default:
		return nil, &PrecheckError{
			Status:        resp.Header.Status,
			TransactionID: &txID,
		}
	}
	if resp.Receipt.Status == wire.StatusUnknown {
		return nil, &ConsensusTimeoutError{
			TransactionID: txID,
			LastStatus:    wire.StatusUnknown,
		}
	}
	if resp.Receipt.Status != wire.StatusSuccess && scope.ThrowOnFail() {
		return nil, &TransactionFailedError{
			TransactionID: txID,
			Receipt:       resp.Receipt,
			Scheduled:     scheduled,
		}
	}
	return &TransactionReceipt{
		TransactionID: txID,
		NodeAccount:   gw.Account,
		Receipt:       resp.Receipt,
	}, nil
}
