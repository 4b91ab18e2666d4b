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

// Package wire defines the binary message types exchanged with Meridian
// gateway nodes and the gRPC bindings used to carry them.
//
// Messages are encoded as canonical CBOR arrays so that the bytes a
// signatory signs are deterministic for a given body.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountID identifies a ledger account as shard.realm.num
type AccountID struct {
	_     struct{} `cbor:",toarray"`
	Shard uint64
	Realm uint64
	Num   uint64
}

func (a AccountID) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// ParseAccountID parses the shard.realm.num string form of an account ID
func ParseAccountID(s string) (AccountID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return AccountID{}, fmt.Errorf("invalid account ID: %s", s)
	}
	var nums [3]uint64
	for i, part := range parts {
		num, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return AccountID{}, fmt.Errorf("invalid account ID: %s", s)
		}
		nums[i] = num
	}
	return AccountID{Shard: nums[0], Realm: nums[1], Num: nums[2]}, nil
}

// Timestamp is a point in consensus time with nanosecond resolution
type Timestamp struct {
	_       struct{} `cbor:",toarray"`
	Seconds int64
	Nanos   int32
}

// NewTimestampFromNanos splits total nanoseconds since the Unix epoch into
// the seconds+nanos wire form
func NewTimestampFromNanos(nanos int64) Timestamp {
	return Timestamp{
		Seconds: nanos / 1e9,
		Nanos:   int32(nanos % 1e9),
	}
}

func (t Timestamp) UnixNanos() int64 {
	return t.Seconds*1e9 + int64(t.Nanos)
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%d.%09d", t.Seconds, t.Nanos)
}

// TransactionID uniquely identifies a transaction across the network. It is
// either generated by the client (payer plus a fresh unique start time) or
// supplied explicitly by the caller.
type TransactionID struct {
	_          struct{} `cbor:",toarray"`
	Payer      AccountID
	ValidStart Timestamp
	Scheduled  bool
	Nonce      int32
}

func (id TransactionID) String() string {
	ret := fmt.Sprintf("%s@%s", id.Payer, id.ValidStart)
	if id.Scheduled {
		ret += "?scheduled"
	}
	if id.Nonce != 0 {
		ret += fmt.Sprintf("/%d", id.Nonce)
	}
	return ret
}
