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

// Package meridian implements a client for submitting signed transactions
// and paid queries to the Meridian distributed ledger network, and for
// reliably learning the outcome of those requests despite network
// instability.
//
// A Client owns a tree of configuration scopes plus one shared channel
// registry. Settings resolve dynamically up the tree, cloned clients share
// channels with their origin, and the registry is torn down when the last
// clone is closed.
package meridian

import (
	"github.com/meridianhq/gomeridian/wire"
)

// Client is the main entry point into this library. It holds the leaf scope
// of a configuration tree; per-call options overlay it for a single request.
type Client struct {
	scope *Scope
}

// NewClient returns a new Client with the specified options. The client owns
// a fresh channel registry and timestamp generator unless options inject
// replacements.
func NewClient(opts ...Option) *Client {
	root := newRootScope(newChannelRegistry(nil), NewTimestampGenerator())
	return &Client{scope: newChildScope(root, opts...)}
}

// Clone returns a client layered over this one. The clone shares channels
// (and their registry) with the original; settings not overridden on the
// clone track the original's current values. Each clone must be closed
// independently.
func (c *Client) Clone(opts ...Option) *Client {
	return &Client{scope: c.scope.NewChild(opts...)}
}

// Close releases this client's reference on the scope tree. Channels shut
// down once every clone (and in-flight call scope) has been released.
func (c *Client) Close() error {
	return c.scope.Close()
}

// Scope exposes the client's own configuration scope, primarily so callers
// can Reset settings previously applied with options
func (c *Client) Scope() *Scope {
	return c.scope
}

// TransactionIDFor mints a fresh transaction identity for the given payer
// using the client's timestamp generator, for callers that want to supply an
// explicit ID later
func (c *Client) TransactionIDFor(payer wire.AccountID) wire.TransactionID {
	return wire.TransactionID{
		Payer:      payer,
		ValidStart: c.scope.gen.Next(c.scope.AdjustForDrift()),
	}
}
