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
	"log/slog"
	"time"

	"github.com/meridianhq/gomeridian/wire"
)

// Option is a function that modifies a configuration scope. Options passed
// to NewClient configure the client's own scope; options passed to an
// execute call configure an ephemeral child scope for that call only.
type Option func(*Scope)

// WithGateway specifies the network node requests are sent to
func WithGateway(gw Gateway) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.gateway = &gw
		s.mutex.Unlock()
	}
}

// WithNetwork picks one of the network's gateways for this scope
func WithNetwork(network Network) Option {
	return func(s *Scope) {
		gw := network.Pick()
		s.mutex.Lock()
		s.gateway = &gw
		s.mutex.Unlock()
	}
}

// WithPayer specifies the account financially responsible for fees
func WithPayer(payer wire.AccountID) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.payer = &payer
		s.mutex.Unlock()
	}
}

// WithSignatory specifies a signing capability. Signatories set at
// different levels of the scope chain are coalesced, not shadowed.
func WithSignatory(signatory Signatory) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.signatory = signatory
		s.mutex.Unlock()
	}
}

// WithFeeLimit caps the fee, in tinybars, this scope will authorize
func WithFeeLimit(limit uint64) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.feeLimit = &limit
		s.mutex.Unlock()
	}
}

// WithValidDuration specifies how long a submitted transaction stays valid
func WithValidDuration(d time.Duration) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.validDuration = &d
		s.mutex.Unlock()
	}
}

// WithMemo attaches a memo to transactions built in this scope
func WithMemo(memo string) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.memo = &memo
		s.mutex.Unlock()
	}
}

// WithRetryCount specifies how many times an attempt is retried after the
// first dispatch
func WithRetryCount(count int) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.retryCount = &count
		s.mutex.Unlock()
	}
}

// WithRetryDelay specifies the base backoff interval; attempt n waits
// (n-1) times this delay
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.retryDelay = &d
		s.mutex.Unlock()
	}
}

// WithQueryTip adds extra tinybars on top of a query's reported cost when
// building the payment
func WithQueryTip(tip uint64) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.queryTip = &tip
		s.mutex.Unlock()
	}
}

// WithPrefixTrimLimit sets the minimum signature prefix length retained
// when the signing round closes
func WithPrefixTrimLimit(limit int) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.prefixTrimLimit = &limit
		s.mutex.Unlock()
	}
}

// WithTransactionID supplies an explicit transaction identity instead of a
// generated one. The identity must not be marked scheduled.
func WithTransactionID(txID wire.TransactionID) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.txID = &txID
		s.mutex.Unlock()
	}
}

// WithDriftAdjustment toggles whether generated start times compensate for
// observed local/network clock drift
func WithDriftAdjustment(enabled bool) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.adjustForDrift = &enabled
		s.mutex.Unlock()
	}
}

// WithThrowOnFail toggles whether a terminal non-success receipt is
// surfaced as a TransactionFailedError (default) or returned as data
func WithThrowOnFail(enabled bool) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.throwOnFail = &enabled
		s.mutex.Unlock()
	}
}

// WithSendObserver registers a hook fired before every dispatch attempt.
// Observers registered at different levels of the scope chain all fire, in
// root-to-leaf order.
func WithSendObserver(observer SendObserver) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.sendObserver = observer
		s.mutex.Unlock()
	}
}

// WithResponseObserver registers a hook fired after every attempt,
// including the final one
func WithResponseObserver(observer ResponseObserver) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.responseObserver = observer
		s.mutex.Unlock()
	}
}

// WithLogger specifies the logger; slog.Default is used when unset
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scope) {
		s.mutex.Lock()
		s.logger = logger
		s.mutex.Unlock()
	}
}

// WithDialer replaces the function used to open gateway channels. Channels
// dialed before the option is applied are unaffected.
func WithDialer(dialer DialFunc) Option {
	return func(s *Scope) {
		s.registry.setDialer(dialer)
	}
}

// WithTimestampGenerator replaces the shared timestamp generator for this
// scope and its descendants
func WithTimestampGenerator(gen *TimestampGenerator) Option {
	return func(s *Scope) {
		s.gen = gen
	}
}
