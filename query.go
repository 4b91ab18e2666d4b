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
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/meridianhq/gomeridian/wire"
)

// Query is implemented by every paid or free network query. Implementations
// supply the query-specific payload; the engine negotiates the fee and
// builds the payment header.
type Query interface {
	// OperationName is the human-readable name used in error messages
	OperationName() string
	// Kind identifies the query on the wire
	Kind() uint16
	// BuildPayload returns the encoded query-specific parameters
	BuildPayload() (wire.RawMessage, error)
}

// ExecuteQuery runs the two-phase fee negotiation and returns the final
// response envelope. A query whose reported cost is zero completes in a
// single round trip.
func ExecuteQuery(ctx context.Context, c *Client, q Query, opts ...Option) (*wire.Response, error) {
	scope := c.scope.NewChild(opts...)
	defer scope.Close()
	return executeQuery(ctx, scope, q)
}

func executeQuery(ctx context.Context, scope *Scope, q Query) (*wire.Response, error) {
	gw, err := scope.Gateway()
	if err != nil {
		return nil, err
	}
	channel, err := scope.channel(gw)
	if err != nil {
		return nil, err
	}
	payload, err := q.BuildPayload()
	if err != nil {
		return nil, err
	}
	// Phase one: ask for the price without paying
	costAsk := wire.Query{
		Kind: q.Kind(),
		Header: wire.QueryHeader{
			ResponseType: wire.ResponseTypeCostAnswer,
		},
		Payload: payload,
	}
	resp, err := submitQueryRound(ctx, scope, channel, gw, q.OperationName(), costAsk, nil)
	if err != nil {
		return nil, err
	}
	if resp.Header.Status != wire.StatusOk {
		if resp.Header.Status != wire.StatusNotSupported {
			return nil, &PrecheckError{Status: resp.Header.Status}
		}
		// Some queries refuse an unsigned cost-ask: retry once with a
		// signed zero-amount payment header, falling back to the original
		// failure if that does not help
		signedResp, signedErr := resendCostAskSigned(ctx, scope, channel, gw, q.OperationName(), costAsk)
		if signedErr != nil || signedResp.Header.Status != wire.StatusOk {
			return nil, &PrecheckError{Status: wire.StatusNotSupported}
		}
		resp = signedResp
	}
	cost := resp.Header.Cost
	if cost == 0 {
		// Free answer; the cost-ask response is the final answer
		return resp, nil
	}
	tip := scope.QueryTip()
	if limit := scope.FeeLimit(); limit < cost+tip {
		return nil, &PrecheckError{
			Status: wire.StatusInsufficientTxFee,
			Cost:   cost + tip,
		}
	}
	payment, txID, err := buildQueryPayment(ctx, scope, gw, int64(cost+tip))
	if err != nil {
		return nil, err
	}
	paid := wire.Query{
		Kind: q.Kind(),
		Header: wire.QueryHeader{
			Payment:      payment,
			ResponseType: wire.ResponseTypeAnswer,
		},
		Payload: payload,
	}
	final, err := submitQueryRound(ctx, scope, channel, gw, q.OperationName(), paid, txID)
	if err != nil {
		return nil, err
	}
	switch final.Header.Status {
	case wire.StatusOk:
		return final, nil
	case wire.StatusInsufficientTxFee:
		// The estimate went stale; surface the corrected price
		return nil, &PrecheckError{
			Status:        wire.StatusInsufficientTxFee,
			TransactionID: txID,
			Cost:          final.Header.Cost,
		}
	default:
		return nil, &PrecheckError{
			Status:        final.Header.Status,
			TransactionID: txID,
		}
	}
}

// submitQueryRound runs one query round through the retry submitter. A
// transport failure is recovered by resending, bounded by the remaining
// attempts; but if a resend reports the embedded payment as a duplicate the
// original transport failure is re-raised, since the node may have collected
// the payment before the connection dropped.
func submitQueryRound(
	ctx context.Context,
	scope *Scope,
	channel wire.GatewayClient,
	gw Gateway,
	operation string,
	query wire.Query,
	txID *wire.TransactionID,
) (*wire.Response, error) {
	reqBytes, err := wire.Marshal(query)
	if err != nil {
		return nil, err
	}
	hasPayment := query.Header.Payment != nil
	var transportFailure error
	resp, err := submitWithRetry(
		ctx,
		submitParams{
			scope:            scope,
			operation:        operation,
			gateway:          gw,
			txID:             txID,
			ambiguousPayment: hasPayment,
		},
		func(ctx context.Context, attempt int) (*wire.Response, error) {
			out, err := channel.Query(ctx, wrapperspb.Bytes(reqBytes))
			if err != nil {
				return nil, err
			}
			var decoded wire.Response
			if err := wire.Unmarshal(out.Value, &decoded); err != nil {
				return nil, err
			}
			return &decoded, nil
		},
		func(resp *wire.Response) bool {
			return resp.Header.Status == wire.StatusBusy
		},
		func(resp *wire.Response) wire.Status {
			return resp.Header.Status
		},
		func(ctx context.Context, attempt int, transportErr error) (*wire.Response, bool, error) {
			if transportFailure == nil {
				transportFailure = transportErr
			}
			// Resend via the outer retry loop
			return nil, false, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if hasPayment && transportFailure != nil &&
		resp.Header.Status == wire.StatusDuplicateTransaction {
		return nil, &PrecheckError{
			Status:           wire.StatusDuplicateTransaction,
			TransactionID:    txID,
			PaymentAmbiguous: true,
			transportErr:     transportFailure,
		}
	}
	return resp, nil
}

// resendCostAskSigned retries a cost-ask exactly once with a signed
// zero-amount payment header attached. The round still goes through the
// retry submitter, with retries disabled, so scope observers see it.
func resendCostAskSigned(
	ctx context.Context,
	scope *Scope,
	channel wire.GatewayClient,
	gw Gateway,
	operation string,
	costAsk wire.Query,
) (*wire.Response, error) {
	payment, txID, err := buildQueryPayment(ctx, scope, gw, 0)
	if err != nil {
		return nil, err
	}
	signed := costAsk
	signed.Header.Payment = payment
	reqBytes, err := wire.Marshal(signed)
	if err != nil {
		return nil, err
	}
	once := scope.NewChild(WithRetryCount(0))
	defer once.Close()
	return submitWithRetry(
		ctx,
		submitParams{
			scope:     once,
			operation: operation,
			gateway:   gw,
			txID:      txID,
		},
		func(ctx context.Context, attempt int) (*wire.Response, error) {
			out, err := channel.Query(ctx, wrapperspb.Bytes(reqBytes))
			if err != nil {
				return nil, err
			}
			var decoded wire.Response
			if err := wire.Unmarshal(out.Value, &decoded); err != nil {
				return nil, err
			}
			return &decoded, nil
		},
		func(resp *wire.Response) bool { return false },
		func(resp *wire.Response) wire.Status { return resp.Header.Status },
		nil,
	)
}

// buildQueryPayment constructs and signs the crypto transfer that pays for
// a query, moving amount tinybars from the payer to the gateway node
func buildQueryPayment(
	ctx context.Context,
	scope *Scope,
	gw Gateway,
	amount int64,
) (*wire.SignedTransaction, *wire.TransactionID, error) {
	payer, err := scope.Payer()
	if err != nil {
		return nil, nil, err
	}
	signatories, err := scope.Signatories()
	if err != nil {
		return nil, nil, err
	}
	txID := wire.TransactionID{
		Payer:      payer,
		ValidStart: scope.gen.Next(scope.AdjustForDrift()),
	}
	payload, err := wire.Marshal(wire.CryptoTransfer{
		Transfers: []wire.AccountAmount{
			{Account: payer, Amount: -amount},
			{Account: gw.Account, Amount: amount},
		},
	})
	if err != nil {
		return nil, nil, err
	}
	body := wire.TransactionBody{
		TransactionID: txID,
		NodeAccount:   gw.Account,
		FeeLimit:      scope.FeeLimit(),
		ValidDuration: int64(scope.ValidDuration() / time.Second),
		Operation:     wire.OpCryptoTransfer,
		Payload:       payload,
	}
	bodyBytes, err := wire.Marshal(&body)
	if err != nil {
		return nil, nil, err
	}
	invoice := newInvoice(txID, bodyBytes, scope.PrefixTrimLimit())
	if err := signatories.SignRequest(ctx, invoice); err != nil {
		return nil, nil, err
	}
	if invoice.signatureCount() == 0 {
		return nil, nil, ErrNoSignatures
	}
	return invoice.signedTransaction(), &txID, nil
}
