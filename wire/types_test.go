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

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	testDefs := []struct {
		input     string
		expected  AccountID
		expectErr bool
	}{
		{input: "0.0.3", expected: AccountID{Shard: 0, Realm: 0, Num: 3}},
		{input: "1.2.345", expected: AccountID{Shard: 1, Realm: 2, Num: 345}},
		{input: "0.0", expectErr: true},
		{input: "0.0.3.4", expectErr: true},
		{input: "a.b.c", expectErr: true},
		{input: "0.0.-3", expectErr: true},
		{input: "", expectErr: true},
	}
	for _, testDef := range testDefs {
		parsed, err := ParseAccountID(testDef.input)
		if testDef.expectErr {
			assert.Error(t, err, "input %q", testDef.input)
			continue
		}
		require.NoError(t, err, "input %q", testDef.input)
		assert.Equal(t, testDef.expected, parsed)
		assert.Equal(t, testDef.input, parsed.String())
	}
}

func TestTransactionIDString(t *testing.T) {
	base := TransactionID{
		Payer:      AccountID{Num: 7},
		ValidStart: NewTimestampFromNanos(1_700_000_000_123_456_789),
	}
	assert.Equal(t, "0.0.7@1700000000.123456789", base.String())

	scheduled := base
	scheduled.Scheduled = true
	assert.Equal(t, "0.0.7@1700000000.123456789?scheduled", scheduled.String())

	child := base
	child.Nonce = 2
	assert.Equal(t, "0.0.7@1700000000.123456789/2", child.String())
}

func TestTimestampNanosRoundTrip(t *testing.T) {
	nanos := int64(1_700_000_000_123_456_789)
	ts := NewTimestampFromNanos(nanos)
	assert.Equal(t, int64(1_700_000_000), ts.Seconds)
	assert.Equal(t, int32(123_456_789), ts.Nanos)
	assert.Equal(t, nanos, ts.UnixNanos())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Ok", StatusOk.String())
	assert.Equal(t, "Busy", StatusBusy.String())
	assert.Equal(t, "Success", StatusSuccess.String())
	assert.Equal(t, "Unknown", Status(0xffff).String())
}
