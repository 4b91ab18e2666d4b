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
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DialFunc opens a gRPC channel to a gateway target. Tests substitute their
// own to route calls to an in-memory server.
type DialFunc func(target string) (*grpc.ClientConn, error)

func defaultDialer(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
}

// channelRegistry is the one piece of mutable state shared across a scope
// tree: a lazily-populated map from gateway target to an open channel. It is
// owned by the tree's root scope and torn down when the root's reference
// count reaches zero.
type channelRegistry struct {
	dialer DialFunc
	mutex  sync.Mutex
	conns  map[string]*grpc.ClientConn
	group  singleflight.Group
}

func newChannelRegistry(dialer DialFunc) *channelRegistry {
	if dialer == nil {
		dialer = defaultDialer
	}
	return &channelRegistry{
		dialer: dialer,
		conns:  make(map[string]*grpc.ClientConn),
	}
}

// setDialer swaps the function used for future dials. Channels already in
// the registry keep whatever dialer opened them.
func (r *channelRegistry) setDialer(dialer DialFunc) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.dialer = dialer
}

// channel returns the open channel for target, dialing one if absent. The
// singleflight group guarantees the dialer runs at most once per target under
// concurrent misses, without holding the registry lock during the dial.
func (r *channelRegistry) channel(target string) (*grpc.ClientConn, error) {
	r.mutex.Lock()
	conn, ok := r.conns[target]
	r.mutex.Unlock()
	if ok {
		return conn, nil
	}
	ret, err, _ := r.group.Do(target, func() (any, error) {
		// Re-check under the lock in case a racing call populated the
		// entry between our miss and the singleflight admission
		r.mutex.Lock()
		existing, ok := r.conns[target]
		r.mutex.Unlock()
		if ok {
			return existing, nil
		}
		r.mutex.Lock()
		dialer := r.dialer
		r.mutex.Unlock()
		dialed, err := dialer(target)
		if err != nil {
			return nil, err
		}
		r.mutex.Lock()
		r.conns[target] = dialed
		r.mutex.Unlock()
		return dialed, nil
	})
	if err != nil {
		return nil, err
	}
	return ret.(*grpc.ClientConn), nil
}

// closeAll shuts down every channel and clears the registry
func (r *channelRegistry) closeAll() {
	r.mutex.Lock()
	conns := r.conns
	r.conns = make(map[string]*grpc.ClientConn)
	r.mutex.Unlock()
	for _, conn := range conns {
		// Ignore close errors; the channels are being discarded
		_ = conn.Close()
	}
}
