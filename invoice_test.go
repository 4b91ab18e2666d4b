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
	"testing"

	"github.com/meridianhq/gomeridian/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicePrefixTrimming(t *testing.T) {
	testDefs := []struct {
		name         string
		minPrefixLen int
		keys         [][]byte
		expected     [][]byte
	}{
		{
			name:         "single signature trims to nothing",
			minPrefixLen: 0,
			keys:         [][]byte{{0xaa, 0xbb, 0xcc}},
			expected:     [][]byte{{}},
		},
		{
			name:         "distinct first byte",
			minPrefixLen: 0,
			keys: [][]byte{
				{0xaa, 0x01, 0x02},
				{0xbb, 0x01, 0x02},
			},
			expected: [][]byte{{0xaa}, {0xbb}},
		},
		{
			name:         "shared prefix keeps enough bytes",
			minPrefixLen: 0,
			keys: [][]byte{
				{0xaa, 0xbb, 0x01},
				{0xaa, 0xbb, 0x02},
				{0xcc, 0x00, 0x00},
			},
			expected: [][]byte{
				{0xaa, 0xbb, 0x01},
				{0xaa, 0xbb, 0x02},
				{0xcc, 0x00, 0x00},
			},
		},
		{
			name:         "trim limit floors the prefix length",
			minPrefixLen: 2,
			keys: [][]byte{
				{0xaa, 0x01, 0x02},
				{0xbb, 0x01, 0x02},
			},
			expected: [][]byte{
				{0xaa, 0x01},
				{0xbb, 0x01},
			},
		},
		{
			name:         "identical keys keep the full length",
			minPrefixLen: 0,
			keys: [][]byte{
				{0xaa, 0xbb, 0xcc},
				{0xaa, 0xbb, 0xcc},
			},
			expected: [][]byte{
				{0xaa, 0xbb, 0xcc},
				{0xaa, 0xbb, 0xcc},
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			inv := newInvoice(wire.TransactionID{}, []byte{0x01}, testDef.minPrefixLen)
			for idx, key := range testDef.keys {
				inv.AddSignature(wire.KeyTypeEd25519, key, []byte{byte(idx)})
			}
			signed := inv.signedTransaction()
			require.Len(t, signed.SigPairs, len(testDef.expected))
			for idx, pair := range signed.SigPairs {
				assert.Equal(
					t,
					testDef.expected[idx],
					[]byte(pair.Prefix),
					"prefix %d",
					idx,
				)
			}
		})
	}
}

func TestInvoiceRetainsBodyBytes(t *testing.T) {
	body := []byte{0xde, 0xad, 0xbe, 0xef}
	txID := wire.TransactionID{
		Payer:      wire.AccountID{Num: 7},
		ValidStart: wire.NewTimestampFromNanos(1234),
	}
	inv := newInvoice(txID, body, 0)
	assert.Equal(t, body, inv.BodyBytes())
	assert.Equal(t, txID, inv.TransactionID())
	assert.Equal(t, 0, inv.signatureCount())
	inv.AddSignature(wire.KeyTypeEd25519, []byte{0x01}, []byte{0x02})
	assert.Equal(t, 1, inv.signatureCount())
	assert.Equal(t, body, inv.signedTransaction().BodyBytes)
}
