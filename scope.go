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
	"sync"
	"time"

	"github.com/meridianhq/gomeridian/wire"
)

// Setting enumerates the configurable values a scope can override. Reading a
// setting walks from the scope to the root and returns the first explicit
// override found; the walk happens on every read, so a child tracks its
// parent's current value unless it overrides it.
type Setting int

const (
	SettingGateway Setting = iota
	SettingPayer
	SettingSignatory
	SettingFeeLimit
	SettingValidDuration
	SettingMemo
	SettingRetryCount
	SettingRetryDelay
	SettingQueryTip
	SettingPrefixTrimLimit
	SettingTransactionID
	SettingAdjustForDrift
	SettingThrowOnFail
	SettingSendObserver
	SettingResponseObserver
	SettingLogger
)

func (s Setting) String() string {
	tmp := map[Setting]string{
		SettingGateway:          "Gateway",
		SettingPayer:            "Payer",
		SettingSignatory:        "Signatory",
		SettingFeeLimit:         "FeeLimit",
		SettingValidDuration:    "ValidDuration",
		SettingMemo:             "Memo",
		SettingRetryCount:       "RetryCount",
		SettingRetryDelay:       "RetryDelay",
		SettingQueryTip:         "QueryTip",
		SettingPrefixTrimLimit:  "PrefixTrimLimit",
		SettingTransactionID:    "TransactionID",
		SettingAdjustForDrift:   "AdjustForDrift",
		SettingThrowOnFail:      "ThrowOnFail",
		SettingSendObserver:     "SendObserver",
		SettingResponseObserver: "ResponseObserver",
		SettingLogger:           "Logger",
	}
	ret, ok := tmp[s]
	if !ok {
		return "Unknown"
	}
	return ret
}

// Gateway identifies the single network node a request is sent to
type Gateway struct {
	Account wire.AccountID
	Target  string
}

// Defaults applied when no scope in the chain overrides a setting. Endpoint,
// payer, and signatory have no defaults and raise a ConfigurationError at
// point of use instead.
const (
	DefaultFeeLimit        uint64        = 200_000_000
	DefaultValidDuration   time.Duration = 120 * time.Second
	DefaultRetryCount      int           = 5
	DefaultRetryDelay      time.Duration = 200 * time.Millisecond
	DefaultQueryTip        uint64        = 0
	DefaultPrefixTrimLimit int           = 0
)

// Scope is one node in a client's configuration tree. Each scope holds local
// overrides over the enumerated settings, a pointer to its parent, and a
// reference to the channel registry shared by the whole tree.
//
// A scope obtained for a call must be released on every exit path so the
// registry's reference count reliably reaches zero.
type Scope struct {
	mutex    sync.Mutex
	parent   *Scope
	registry *channelRegistry
	gen      *TimestampGenerator
	refs     int
	closed   bool
	once     sync.Once

	// Local overrides; nil means "not set here, ask the parent"
	gateway          *Gateway
	payer            *wire.AccountID
	signatory        Signatory
	feeLimit         *uint64
	validDuration    *time.Duration
	memo             *string
	retryCount       *int
	retryDelay       *time.Duration
	queryTip         *uint64
	prefixTrimLimit  *int
	txID             *wire.TransactionID
	adjustForDrift   *bool
	throwOnFail      *bool
	sendObserver     SendObserver
	responseObserver ResponseObserver
	logger           *slog.Logger
}

// newRootScope creates the (caller-invisible) root of a scope tree. The root
// owns the channel registry and starts with a reference count of zero.
func newRootScope(registry *channelRegistry, gen *TimestampGenerator) *Scope {
	return &Scope{
		registry: registry,
		gen:      gen,
	}
}

// newChildScope creates a scope under parent, sharing the parent's registry
// and timestamp generator. The child starts at reference count one and every
// ancestor up to the root is incremented.
func newChildScope(parent *Scope, opts ...Option) *Scope {
	s := &Scope{
		parent:   parent,
		registry: parent.registry,
		gen:      parent.gen,
		refs:     1,
	}
	for node := parent; node != nil; node = node.parent {
		node.mutex.Lock()
		node.refs++
		node.mutex.Unlock()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewChild returns a scope layered over this one. Settings not overridden on
// the child resolve against this scope's current values.
func (s *Scope) NewChild(opts ...Option) *Scope {
	return newChildScope(s, opts...)
}

// Apply sets the provided options on this scope
func (s *Scope) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Close releases this scope's reference on the tree. When the root's count
// reaches zero every channel in the registry is shut down. Close is
// idempotent.
func (s *Scope) Close() error {
	s.once.Do(func() {
		s.mutex.Lock()
		s.refs--
		s.closed = true
		s.mutex.Unlock()
		for node := s.parent; node != nil; node = node.parent {
			node.mutex.Lock()
			node.refs--
			remaining := node.refs
			isRoot := node.parent == nil
			node.mutex.Unlock()
			if isRoot && remaining == 0 {
				node.registry.closeAll()
			}
		}
	})
	return nil
}

// Reset clears this scope's own override for the named setting, re-exposing
// the parent chain's current value
func (s *Scope) Reset(name Setting) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch name {
	case SettingGateway:
		s.gateway = nil
	case SettingPayer:
		s.payer = nil
	case SettingSignatory:
		s.signatory = nil
	case SettingFeeLimit:
		s.feeLimit = nil
	case SettingValidDuration:
		s.validDuration = nil
	case SettingMemo:
		s.memo = nil
	case SettingRetryCount:
		s.retryCount = nil
	case SettingRetryDelay:
		s.retryDelay = nil
	case SettingQueryTip:
		s.queryTip = nil
	case SettingPrefixTrimLimit:
		s.prefixTrimLimit = nil
	case SettingTransactionID:
		s.txID = nil
	case SettingAdjustForDrift:
		s.adjustForDrift = nil
	case SettingThrowOnFail:
		s.throwOnFail = nil
	case SettingSendObserver:
		s.sendObserver = nil
	case SettingResponseObserver:
		s.responseObserver = nil
	case SettingLogger:
		s.logger = nil
	}
}

// Gateway resolves the effective gateway, raising a ConfigurationError if it
// was never set anywhere in the chain
func (s *Scope) Gateway() (Gateway, error) {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		gw := node.gateway
		node.mutex.Unlock()
		if gw != nil {
			return *gw, nil
		}
	}
	return Gateway{}, &ConfigurationError{Setting: SettingGateway}
}

// Payer resolves the effective payer account
func (s *Scope) Payer() (wire.AccountID, error) {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		payer := node.payer
		node.mutex.Unlock()
		if payer != nil {
			return *payer, nil
		}
	}
	return wire.AccountID{}, &ConfigurationError{Setting: SettingPayer}
}

// Signatories gathers every signatory override along the chain, root first.
// Unlike other settings a child's signatory does not shadow an ancestor's;
// they are coalesced by concatenation.
func (s *Scope) Signatories() (Signatories, error) {
	var ret Signatories
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		sig := node.signatory
		node.mutex.Unlock()
		if sig != nil {
			ret = append(Signatories{sig}, ret...)
		}
	}
	if len(ret) == 0 {
		return nil, &ConfigurationError{Setting: SettingSignatory}
	}
	return ret, nil
}

// FeeLimit resolves the effective maximum fee, in tinybars
func (s *Scope) FeeLimit() uint64 {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		limit := node.feeLimit
		node.mutex.Unlock()
		if limit != nil {
			return *limit
		}
	}
	return DefaultFeeLimit
}

// ValidDuration resolves the transaction validity window
func (s *Scope) ValidDuration() time.Duration {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		dur := node.validDuration
		node.mutex.Unlock()
		if dur != nil {
			return *dur
		}
	}
	return DefaultValidDuration
}

// Memo resolves the transaction memo
func (s *Scope) Memo() string {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		memo := node.memo
		node.mutex.Unlock()
		if memo != nil {
			return *memo
		}
	}
	return ""
}

// RetryCount resolves the number of retries after the initial attempt
func (s *Scope) RetryCount() int {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		count := node.retryCount
		node.mutex.Unlock()
		if count != nil {
			return *count
		}
	}
	return DefaultRetryCount
}

// RetryDelay resolves the base backoff interval between attempts
func (s *Scope) RetryDelay() time.Duration {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		delay := node.retryDelay
		node.mutex.Unlock()
		if delay != nil {
			return *delay
		}
	}
	return DefaultRetryDelay
}

// QueryTip resolves the extra tinybars added on top of a query's reported
// cost when building the payment
func (s *Scope) QueryTip() uint64 {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		tip := node.queryTip
		node.mutex.Unlock()
		if tip != nil {
			return *tip
		}
	}
	return DefaultQueryTip
}

// PrefixTrimLimit resolves the minimum retained signature prefix length
func (s *Scope) PrefixTrimLimit() int {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		limit := node.prefixTrimLimit
		node.mutex.Unlock()
		if limit != nil {
			return *limit
		}
	}
	return DefaultPrefixTrimLimit
}

// TransactionID resolves an explicitly-supplied transaction identity, if any
func (s *Scope) TransactionID() *wire.TransactionID {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		id := node.txID
		node.mutex.Unlock()
		if id != nil {
			idCopy := *id
			return &idCopy
		}
	}
	return nil
}

// AdjustForDrift resolves whether generated start times compensate for
// observed clock drift
func (s *Scope) AdjustForDrift() bool {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		flag := node.adjustForDrift
		node.mutex.Unlock()
		if flag != nil {
			return *flag
		}
	}
	return false
}

// ThrowOnFail resolves whether a terminal non-success receipt is surfaced as
// a TransactionFailedError rather than returned as data
func (s *Scope) ThrowOnFail() bool {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		flag := node.throwOnFail
		node.mutex.Unlock()
		if flag != nil {
			return *flag
		}
	}
	return true
}

// Logger resolves the effective logger, falling back to slog.Default
func (s *Scope) Logger() *slog.Logger {
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		logger := node.logger
		node.mutex.Unlock()
		if logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// sendObservers gathers per-request observers from the entire ancestor
// chain in root-to-leaf order
func (s *Scope) sendObservers() []SendObserver {
	var ret []SendObserver
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		obs := node.sendObserver
		node.mutex.Unlock()
		if obs != nil {
			ret = append([]SendObserver{obs}, ret...)
		}
	}
	return ret
}

// responseObservers gathers per-response observers from the entire ancestor
// chain in root-to-leaf order
func (s *Scope) responseObservers() []ResponseObserver {
	var ret []ResponseObserver
	for node := s; node != nil; node = node.parent {
		node.mutex.Lock()
		obs := node.responseObserver
		node.mutex.Unlock()
		if obs != nil {
			ret = append([]ResponseObserver{obs}, ret...)
		}
	}
	return ret
}

// channel returns the shared gRPC channel for the given gateway, dialing it
// on first use
func (s *Scope) channel(gw Gateway) (wire.GatewayClient, error) {
	s.mutex.Lock()
	closed := s.closed
	s.mutex.Unlock()
	if closed {
		return nil, ErrScopeClosed
	}
	conn, err := s.registry.channel(gw.Target)
	if err != nil {
		return nil, err
	}
	return wire.NewGatewayClient(conn), nil
}
