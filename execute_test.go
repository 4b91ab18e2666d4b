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

package meridian_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	meridian "github.com/meridianhq/gomeridian"
	"github.com/meridianhq/gomeridian/internal/test"
	"github.com/meridianhq/gomeridian/keys"
	"github.com/meridianhq/gomeridian/wire"
)

var (
	testPayer   = wire.AccountID{Num: 100}
	testNode    = wire.AccountID{Num: 3}
	testAccount = wire.AccountID{Num: 200}
)

// newTestClient wires a client to the mock gateway with a fresh operator key
func newTestClient(t *testing.T, gw *test.Gateway, opts ...meridian.Option) (*meridian.Client, *keys.Ed25519PrivateKey) {
	t.Helper()
	operatorKey, err := keys.GenerateEd25519PrivateKey()
	require.NoError(t, err)
	base := []meridian.Option{
		meridian.WithDialer(gw.Dialer()),
		meridian.WithGateway(meridian.Gateway{
			Account: testNode,
			Target:  "gw-1.test.meridian.network:50051",
		}),
		meridian.WithPayer(testPayer),
		meridian.WithSignatory(meridian.NewKeySignatory(operatorKey)),
		meridian.WithRetryDelay(time.Millisecond),
	}
	client := meridian.NewClient(append(base, opts...)...)
	t.Cleanup(func() {
		client.Close()
		gw.Close()
	})
	return client, operatorKey
}

func okPrecheck() *wire.Precheck {
	return &wire.Precheck{Status: wire.StatusOk}
}

func successReceipt() *wire.ReceiptResponse {
	return &wire.ReceiptResponse{
		Header:  wire.ResponseHeader{Status: wire.StatusOk},
		Receipt: wire.Receipt{Status: wire.StatusSuccess},
	}
}

func testTransfer() *meridian.TransferTransaction {
	return meridian.NewTransferTransaction().
		AddTransfer(testPayer, -50).
		AddTransfer(testAccount, 50)
}

func TestExecuteHappyPath(t *testing.T) {
	var submitted *wire.SignedTransaction
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			submitted = tx
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return successReceipt(), nil
		},
	})
	client, operatorKey := newTestClient(t, gw, meridian.WithMemo("hello"))

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, receipt.Receipt.Status)
	assert.Equal(t, testNode, receipt.NodeAccount)
	assert.Equal(t, testPayer, receipt.TransactionID.Payer)

	// The engine stamps identity and scope settings onto the body
	require.NotNil(t, submitted)
	var body wire.TransactionBody
	require.NoError(t, wire.Unmarshal(submitted.BodyBytes, &body))
	assert.Equal(t, receipt.TransactionID, body.TransactionID)
	assert.Equal(t, testNode, body.NodeAccount)
	assert.Equal(t, meridian.DefaultFeeLimit, body.FeeLimit)
	assert.Equal(t, int64(120), body.ValidDuration)
	assert.Equal(t, "hello", body.Memo)
	assert.Equal(t, wire.OpCryptoTransfer, body.Operation)

	// The operator's signature covers the exact submitted bytes
	require.Len(t, submitted.SigPairs, 1)
	assert.True(
		t,
		operatorKey.Public().Verify(submitted.BodyBytes, submitted.SigPairs[0].Signature),
	)
}

func TestExecuteRetriesOnBusy(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			if attempt <= 2 {
				return &wire.Precheck{Status: wire.StatusBusy}, nil
			}
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return successReceipt(), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(5))

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, receipt.Receipt.Status)
	assert.Equal(t, int32(3), gw.SubmitCalls.Load())
}

func TestExecuteBusyExhaustion(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			return &wire.Precheck{Status: wire.StatusBusy}, nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(2))

	_, err := client.Transfer(context.Background(), testTransfer())
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusBusy, precheckErr.Status)
	assert.Equal(t, int32(3), gw.SubmitCalls.Load())
}

func TestExecuteTransportFailureOnFinalAttempt(t *testing.T) {
	transportErr := status.Error(codes.Unavailable, "connection reset")
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			if attempt == 1 {
				return &wire.Precheck{Status: wire.StatusBusy}, nil
			}
			return nil, transportErr
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			// The probe cannot tell whether the last submission landed
			return &wire.ReceiptResponse{
				Header: wire.ResponseHeader{Status: wire.StatusReceiptNotFound},
			}, nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(1))

	_, err := client.Transfer(context.Background(), testTransfer())
	// The stale Busy precheck must not be reported when the final attempt
	// died in transit and the probe did not resolve it
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusUnknown, precheckErr.Status)
	assert.False(t, precheckErr.PaymentAmbiguous)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, int32(2), gw.SubmitCalls.Load())
}

func TestExecuteRecoversViaReceiptProbe(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			// The node got the transaction but the reply never made it back
			return nil, status.Error(codes.Unavailable, "connection reset")
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return successReceipt(), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(5))

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, receipt.Receipt.Status)
	// The probe resolved the very first failure; no resubmission happened
	assert.Equal(t, int32(1), gw.SubmitCalls.Load())
	assert.Equal(t, int32(1), gw.ReceiptCalls.Load())
}

func TestExecuteProbeSkipsUndecidedReceipt(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			if attempt == 1 {
				return nil, status.Error(codes.Unavailable, "connection reset")
			}
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			if attempt == 1 {
				// Probe finds nothing; the submission must be retried
				return &wire.ReceiptResponse{
					Header: wire.ResponseHeader{Status: wire.StatusReceiptNotFound},
				}, nil
			}
			return successReceipt(), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(5))

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, receipt.Receipt.Status)
	assert.Equal(t, int32(2), gw.SubmitCalls.Load())
}

func TestExecutePollsUntilDecided(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			if attempt <= 2 {
				// Consensus not reached yet
				return &wire.ReceiptResponse{
					Header:  wire.ResponseHeader{Status: wire.StatusOk},
					Receipt: wire.Receipt{Status: wire.StatusUnknown},
				}, nil
			}
			return successReceipt(), nil
		},
	})
	client, _ := newTestClient(t, gw)

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, wire.StatusSuccess, receipt.Receipt.Status)
	assert.Equal(t, int32(3), gw.ReceiptCalls.Load())
}

func TestExecuteFailedReceipt(t *testing.T) {
	failed := func() *wire.ReceiptResponse {
		return &wire.ReceiptResponse{
			Header:  wire.ResponseHeader{Status: wire.StatusOk},
			Receipt: wire.Receipt{Status: wire.StatusInsufficientPayerBalance},
		}
	}
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return failed(), nil
		},
	})
	client, _ := newTestClient(t, gw)

	_, err := client.Transfer(context.Background(), testTransfer())
	var failedErr *meridian.TransactionFailedError
	require.ErrorAs(t, err, &failedErr)
	assert.Equal(t, wire.StatusInsufficientPayerBalance, failedErr.Receipt.Status)

	// With ThrowOnFail disabled the receipt comes back as data
	receipt, err := client.Transfer(
		context.Background(),
		testTransfer(),
		meridian.WithThrowOnFail(false),
	)
	require.NoError(t, err)
	assert.Equal(t, wire.StatusInsufficientPayerBalance, receipt.Receipt.Status)
}

func TestExecutePrecheckRejection(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			return &wire.Precheck{Status: wire.StatusInsufficientTxFee, Cost: 777}, nil
		},
	})
	client, _ := newTestClient(t, gw)

	_, err := client.Transfer(context.Background(), testTransfer())
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusInsufficientTxFee, precheckErr.Status)
	assert.Equal(t, uint64(777), precheckErr.Cost)
	assert.Equal(t, int32(1), gw.SubmitCalls.Load())
}

func TestExecuteRejectedStartTimeReissues(t *testing.T) {
	var firstStart, secondStart wire.Timestamp
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			var body wire.TransactionBody
			if err := wire.Unmarshal(tx.BodyBytes, &body); err != nil {
				return nil, err
			}
			if attempt == 1 {
				firstStart = body.TransactionID.ValidStart
				return &wire.Precheck{Status: wire.StatusInvalidTransactionStart}, nil
			}
			secondStart = body.TransactionID.ValidStart
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return successReceipt(), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(3))

	receipt, err := client.Transfer(context.Background(), testTransfer())
	require.NoError(t, err)
	assert.Equal(t, int32(2), gw.SubmitCalls.Load())
	// A fresh start time was issued and the receipt reflects it
	assert.NotEqual(t, firstStart, secondStart)
	assert.Equal(t, secondStart, receipt.TransactionID.ValidStart)
}

func TestExecuteExplicitTransactionID(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			// An explicit start time is never regenerated
			return &wire.Precheck{Status: wire.StatusInvalidTransactionStart}, nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(3))

	explicit := client.TransactionIDFor(testPayer)
	_, err := client.Transfer(
		context.Background(),
		testTransfer(),
		meridian.WithTransactionID(explicit),
	)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusInvalidTransactionStart, precheckErr.Status)
	assert.Equal(t, int32(1), gw.SubmitCalls.Load())
	require.NotNil(t, precheckErr.TransactionID)
	assert.Equal(t, explicit, *precheckErr.TransactionID)

	// A scheduled-marked explicit ID is rejected before submission
	scheduled := explicit
	scheduled.Scheduled = true
	_, err = client.Transfer(
		context.Background(),
		testTransfer(),
		meridian.WithTransactionID(scheduled),
	)
	require.ErrorContains(t, err, "must not be marked scheduled")
}

func TestExecuteNoSignatures(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{})
	defer gw.Close()

	// A signatory that produces nothing must fail the call before any bytes
	// go out
	noop := meridian.SignatoryFunc(func(ctx context.Context, inv *meridian.Invoice) error {
		return nil
	})
	client := meridian.NewClient(
		meridian.WithDialer(gw.Dialer()),
		meridian.WithGateway(meridian.Gateway{Account: testNode, Target: "gw-1:50051"}),
		meridian.WithPayer(testPayer),
		meridian.WithSignatory(noop),
	)
	defer client.Close()
	_, err := client.Transfer(context.Background(), testTransfer())
	require.ErrorIs(t, err, meridian.ErrNoSignatures)
	assert.Equal(t, int32(0), gw.SubmitCalls.Load())
}

func TestExecuteScheduled(t *testing.T) {
	var submitted *wire.SignedTransaction
	gw := test.NewGateway(test.GatewayScript{
		SubmitFunc: func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error) {
			submitted = tx
			return okPrecheck(), nil
		},
		ReceiptFunc: func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error) {
			return &wire.ReceiptResponse{
				Header: wire.ResponseHeader{Status: wire.StatusOk},
				Receipt: wire.Receipt{
					Status:     wire.StatusSuccess,
					ScheduleID: &wire.AccountID{Num: 900},
				},
			}, nil
		},
	})
	client, _ := newTestClient(t, gw)

	adminKey := []byte{0x01, 0x02, 0x03, 0x04}
	schedulePayer := &wire.AccountID{Num: 777}
	expiration := &wire.Timestamp{Seconds: 1_700_000_600, Nanos: 42}
	receipt, err := client.Transfer(
		context.Background(),
		testTransfer(),
		meridian.WithSignatory(meridian.NewScheduleSignatory(meridian.ScheduleParams{
			AdminKey:      adminKey,
			PayerAccount:  schedulePayer,
			Expiration:    expiration,
			Memo:          "deferred",
			WaitForExpiry: true,
		})),
	)
	require.NoError(t, err)
	require.NotNil(t, receipt.Receipt.ScheduleID)
	assert.Equal(t, uint64(900), receipt.Receipt.ScheduleID.Num)

	// The submitted body is a schedule-create wrapping the transfer
	require.NotNil(t, submitted)
	var body wire.TransactionBody
	require.NoError(t, wire.Unmarshal(submitted.BodyBytes, &body))
	assert.Equal(t, wire.OpScheduleCreate, body.Operation)
	var create wire.ScheduleCreate
	require.NoError(t, wire.Unmarshal(body.Payload, &create))
	assert.Equal(t, adminKey, create.AdminKey)
	assert.Equal(t, schedulePayer, create.PayerAccount)
	assert.Equal(t, expiration, create.Expiration)
	assert.Equal(t, "deferred", create.Memo)
	assert.True(t, create.WaitForExpiry)
	assert.Equal(t, wire.OpCryptoTransfer, create.Inner.Operation)
	var transfer wire.CryptoTransfer
	require.NoError(t, wire.Unmarshal(create.Inner.Payload, &transfer))
	assert.Len(t, transfer.Transfers, 2)

	// The operator key still signed the outer schedule-create
	require.Len(t, submitted.SigPairs, 1)
}

func TestTransferValidation(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{})
	client, _ := newTestClient(t, gw)

	_, err := client.Transfer(context.Background(), meridian.NewTransferTransaction())
	require.ErrorContains(t, err, "at least one adjustment")

	unbalanced := meridian.NewTransferTransaction().AddTransfer(testPayer, -50)
	_, err = client.Transfer(context.Background(), unbalanced)
	require.ErrorContains(t, err, "sum to zero")
	assert.Equal(t, int32(0), gw.SubmitCalls.Load())
}
