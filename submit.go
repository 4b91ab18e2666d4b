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

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/meridianhq/gomeridian/wire"
)

// RequestEvent is passed to send observers before each dispatch attempt
type RequestEvent struct {
	Operation     string
	Attempt       int
	Gateway       Gateway
	TransactionID *wire.TransactionID
}

// ResponseEvent is passed to response observers after each attempt,
// including the final one. Exactly one of Status or TransportErr is
// meaningful.
type ResponseEvent struct {
	Operation     string
	Attempt       int
	Gateway       Gateway
	TransactionID *wire.TransactionID
	Status        wire.Status
	TransportErr  error
}

// SendObserver and ResponseObserver hooks are gathered from the entire
// scope chain (root to leaf) and invoked synchronously. They must not
// influence control flow.
type (
	SendObserver     func(RequestEvent)
	ResponseObserver func(ResponseEvent)
)

// submitParams carries the per-request context the retry loop needs
type submitParams struct {
	scope     *Scope
	operation string
	gateway   Gateway
	txID      *wire.TransactionID
	// ambiguousPayment marks a query round carrying an embedded payment:
	// an unrecovered transport failure then means the payment may already
	// have been collected
	ambiguousPayment bool
}

// recoverFunc attempts to resolve a transport failure. It returns either a
// substitute response (done=true), an instruction to continue the outer
// retry loop (done=false, err=nil), or a terminal error.
type recoverFunc[Resp any] func(ctx context.Context, attempt int, transportErr error) (resp Resp, done bool, err error)

// submitWithRetry performs a time-boxed request/response exchange with
// bounded retry. Backoff between attempts is linear: attempt n (n > 1) waits
// (n-1) times the configured delay before dispatch. On exhaustion the last
// response is returned as-is; classification is the engine's job. If the
// final attempt ended in a transport failure the recovery hook did not
// resolve, the exchange outcome is unknown and a PrecheckError is returned
// instead of any earlier, stale response.
func submitWithRetry[Resp any](
	ctx context.Context,
	p submitParams,
	send func(ctx context.Context, attempt int) (Resp, error),
	shouldRetry func(Resp) bool,
	respStatus func(Resp) wire.Status,
	recoverFn recoverFunc[Resp],
) (Resp, error) {
	var zero, last Resp
	maxAttempts := p.scope.RetryCount() + 1
	delay := p.scope.RetryDelay()
	sendObservers := p.scope.sendObservers()
	responseObservers := p.scope.responseObservers()
	logger := p.scope.Logger()
	haveResponse := false
	var lastTransportErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := waitBackoff(ctx, delay*time.Duration(attempt-1)); err != nil {
				return zero, err
			}
		} else if err := ctx.Err(); err != nil {
			return zero, err
		}
		for _, observe := range sendObservers {
			observe(RequestEvent{
				Operation:     p.operation,
				Attempt:       attempt,
				Gateway:       p.gateway,
				TransactionID: p.txID,
			})
		}
		resp, err := send(ctx, attempt)
		if err != nil {
			for _, observe := range responseObservers {
				observe(ResponseEvent{
					Operation:     p.operation,
					Attempt:       attempt,
					Gateway:       p.gateway,
					TransactionID: p.txID,
					TransportErr:  err,
				})
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
			if !isTransportError(err) {
				return zero, err
			}
			logger.Warn(
				"transport failure during submission",
				"operation", p.operation,
				"gateway", p.gateway.Target,
				"attempt", attempt,
				"error", err,
			)
			lastTransportErr = err
			if recoverFn != nil {
				recovered, done, recoverErr := recoverFn(ctx, attempt, err)
				if recoverErr != nil {
					return zero, recoverErr
				}
				if done {
					return recovered, nil
				}
			}
			continue
		}
		for _, observe := range responseObservers {
			observe(ResponseEvent{
				Operation:     p.operation,
				Attempt:       attempt,
				Gateway:       p.gateway,
				TransactionID: p.txID,
				Status:        respStatus(resp),
			})
		}
		last = resp
		haveResponse = true
		lastTransportErr = nil
		if !shouldRetry(resp) {
			return resp, nil
		}
	}
	if !haveResponse || lastTransportErr != nil {
		return zero, &PrecheckError{
			Status:           wire.StatusUnknown,
			TransactionID:    p.txID,
			PaymentAmbiguous: p.ambiguousPayment,
			transportErr:     lastTransportErr,
		}
	}
	return last, nil
}

// waitBackoff sleeps for the given interval without blocking the calling
// goroutine past cancellation
func waitBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransportError reports whether the error indicates the request may never
// have reached the node, as opposed to a caller-side cancellation or a
// response the node actually produced
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		// Local errors (encoding, configuration) are never transport failures
		return false
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
		return true
	}
	return false
}
