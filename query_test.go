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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	meridian "github.com/meridianhq/gomeridian"
	"github.com/meridianhq/gomeridian/internal/test"
	"github.com/meridianhq/gomeridian/wire"
)

// paymentAmount decodes the transfer embedded in a query payment and returns
// the amount credited to the node
func paymentAmount(t *testing.T, payment *wire.SignedTransaction) int64 {
	t.Helper()
	require.NotNil(t, payment)
	var body wire.TransactionBody
	require.NoError(t, wire.Unmarshal(payment.BodyBytes, &body))
	require.Equal(t, wire.OpCryptoTransfer, body.Operation)
	var transfer wire.CryptoTransfer
	require.NoError(t, wire.Unmarshal(body.Payload, &transfer))
	require.Len(t, transfer.Transfers, 2)
	assert.Equal(t, -transfer.Transfers[1].Amount, transfer.Transfers[0].Amount)
	assert.Equal(t, testNode, transfer.Transfers[1].Account)
	return transfer.Transfers[1].Amount
}

func costAnswer(cost uint64) *wire.Response {
	return &wire.Response{
		Header: wire.ResponseHeader{
			Status:       wire.StatusOk,
			ResponseType: wire.ResponseTypeCostAnswer,
			Cost:         cost,
		},
	}
}

func answerWithPayload(t *testing.T, v any) *wire.Response {
	t.Helper()
	payload, err := wire.Marshal(v)
	require.NoError(t, err)
	return &wire.Response{
		Header:  wire.ResponseHeader{Status: wire.StatusOk},
		Payload: payload,
	}
}

func TestQueryFreeSingleRoundTrip(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			// The cost ask carries no payment
			assert.Nil(t, q.Header.Payment)
			assert.Equal(t, wire.ResponseTypeCostAnswer, q.Header.ResponseType)
			assert.Equal(t, wire.QueryKindAccountBalance, q.Kind)
			resp := answerWithPayload(t, wire.AccountBalance{
				Account: testAccount,
				Balance: 1234,
			})
			// Free queries answer the cost ask directly with cost zero
			return resp, nil
		},
	})
	client, _ := newTestClient(t, gw)

	balance, err := client.GetAccountBalance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), balance)
	assert.Equal(t, int32(1), gw.QueryCalls.Load())
}

func TestQueryPaidTwoPhase(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt == 1 {
				assert.Nil(t, q.Header.Payment)
				return costAnswer(55), nil
			}
			// Phase two carries the signed payment for cost plus tip
			assert.Equal(t, wire.ResponseTypeAnswer, q.Header.ResponseType)
			assert.Equal(t, int64(60), paymentAmount(t, q.Header.Payment))
			return answerWithPayload(t, wire.AccountInfo{
				Account: testAccount,
				Balance: 999,
				Memo:    "info",
			}), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithQueryTip(5))

	info, err := client.GetAccountInfo(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(999), info.Balance)
	assert.Equal(t, "info", info.Memo)
	assert.Equal(t, int32(2), gw.QueryCalls.Load())
}

func TestQueryFeeLimitExceeded(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			return costAnswer(100), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithFeeLimit(50), meridian.WithQueryTip(5))

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusInsufficientTxFee, precheckErr.Status)
	// The reported cost includes the tip the payment would have carried
	assert.Equal(t, uint64(105), precheckErr.Cost)
	// No payment was built or sent
	assert.Equal(t, int32(1), gw.QueryCalls.Load())
}

func TestQuerySignedCostAskFallback(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt == 1 {
				return &wire.Response{
					Header: wire.ResponseHeader{Status: wire.StatusNotSupported},
				}, nil
			}
			// The retry is still a cost ask but carries a zero-amount
			// signed payment
			assert.Equal(t, wire.ResponseTypeCostAnswer, q.Header.ResponseType)
			assert.Equal(t, int64(0), paymentAmount(t, q.Header.Payment))
			return answerWithPayload(t, wire.AccountInfo{Account: testAccount}), nil
		},
	})
	client, _ := newTestClient(t, gw)

	info, err := client.GetAccountInfo(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, testAccount, info.Account)
	assert.Equal(t, int32(2), gw.QueryCalls.Load())
}

func TestQuerySignedCostAskStillRefused(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			return &wire.Response{
				Header: wire.ResponseHeader{Status: wire.StatusNotSupported},
			}, nil
		},
	})
	client, _ := newTestClient(t, gw)

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusNotSupported, precheckErr.Status)
	assert.Equal(t, int32(2), gw.QueryCalls.Load())
}

func TestQueryStaleEstimate(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt == 1 {
				return costAnswer(10), nil
			}
			// The price moved between the estimate and the paid round
			return &wire.Response{
				Header: wire.ResponseHeader{
					Status: wire.StatusInsufficientTxFee,
					Cost:   80,
				},
			}, nil
		},
	})
	client, _ := newTestClient(t, gw)

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusInsufficientTxFee, precheckErr.Status)
	assert.Equal(t, uint64(80), precheckErr.Cost)
	require.NotNil(t, precheckErr.TransactionID)
	assert.Equal(t, testPayer, precheckErr.TransactionID.Payer)
}

func TestQueryRetriesOnBusy(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt <= 2 {
				return &wire.Response{
					Header: wire.ResponseHeader{Status: wire.StatusBusy},
				}, nil
			}
			return answerWithPayload(t, wire.AccountBalance{Balance: 7}), nil
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(5))

	balance, err := client.GetAccountBalance(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), balance)
	assert.Equal(t, int32(3), gw.QueryCalls.Load())
}

func TestQueryPaidRoundTransportFailureOnFinalAttempt(t *testing.T) {
	transportErr := status.Error(codes.Unavailable, "connection reset")
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			switch attempt {
			case 1:
				return costAnswer(10), nil
			case 2:
				return &wire.Response{
					Header: wire.ResponseHeader{Status: wire.StatusBusy},
				}, nil
			default:
				return nil, transportErr
			}
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(1))

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	// The Busy answer from the first paid attempt must not mask the
	// transport failure that ended the round: the payment may or may not
	// have been collected
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusUnknown, precheckErr.Status)
	assert.True(t, precheckErr.PaymentAmbiguous)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, int32(3), gw.QueryCalls.Load())
}

func TestQuerySignedCostAskVisibleToObservers(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt == 1 {
				return &wire.Response{
					Header: wire.ResponseHeader{Status: wire.StatusNotSupported},
				}, nil
			}
			return answerWithPayload(t, wire.AccountInfo{Account: testAccount}), nil
		},
	})
	var sends int
	var statuses []wire.Status
	client, _ := newTestClient(t, gw,
		meridian.WithSendObserver(func(ev meridian.RequestEvent) {
			sends++
			assert.Equal(t, "AccountInfo", ev.Operation)
		}),
		meridian.WithResponseObserver(func(ev meridian.ResponseEvent) {
			statuses = append(statuses, ev.Status)
		}),
	)

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	require.NoError(t, err)
	// Both the refused cost ask and its signed retry are observed
	assert.Equal(t, 2, sends)
	assert.Equal(t, []wire.Status{wire.StatusNotSupported, wire.StatusOk}, statuses)
}

func TestQueryDuplicatePaymentAmbiguity(t *testing.T) {
	transportErr := status.Error(codes.Unavailable, "connection reset")
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			switch attempt {
			case 1:
				return costAnswer(10), nil
			case 2:
				// The paid round dies mid-flight
				return nil, transportErr
			default:
				// The resend finds the payment already collected
				return &wire.Response{
					Header: wire.ResponseHeader{
						Status: wire.StatusDuplicateTransaction,
					},
				}, nil
			}
		},
	})
	client, _ := newTestClient(t, gw, meridian.WithRetryCount(5))

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusDuplicateTransaction, precheckErr.Status)
	assert.True(t, precheckErr.PaymentAmbiguous)
	// The original transport failure is preserved as the cause
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, int32(3), gw.QueryCalls.Load())
}

func TestQueryDuplicateWithoutTransportFailure(t *testing.T) {
	gw := test.NewGateway(test.GatewayScript{
		QueryFunc: func(attempt int32, q *wire.Query) (*wire.Response, error) {
			if attempt == 1 {
				return costAnswer(10), nil
			}
			// A duplicate with no preceding transport failure is an
			// ordinary rejection, not an ambiguous payment
			return &wire.Response{
				Header: wire.ResponseHeader{
					Status: wire.StatusDuplicateTransaction,
				},
			}, nil
		},
	})
	client, _ := newTestClient(t, gw)

	_, err := client.GetAccountInfo(context.Background(), testAccount)
	var precheckErr *meridian.PrecheckError
	require.ErrorAs(t, err, &precheckErr)
	assert.Equal(t, wire.StatusDuplicateTransaction, precheckErr.Status)
	assert.False(t, precheckErr.PaymentAmbiguous)
}
