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
	"bytes"
	"sync"

	"github.com/meridianhq/gomeridian/wire"
)

// Invoice pairs the canonical bytes-to-sign for one transaction with the
// signatures accumulated during a single signing round. It exists only for
// the duration of that round.
type Invoice struct {
	mutex        sync.Mutex
	txID         wire.TransactionID
	bodyBytes    []byte
	minPrefixLen int
	sigPairs     []wire.SignaturePair
}

func newInvoice(txID wire.TransactionID, bodyBytes []byte, minPrefixLen int) *Invoice {
	return &Invoice{
		txID:         txID,
		bodyBytes:    bodyBytes,
		minPrefixLen: minPrefixLen,
	}
}

// TransactionID returns the identity of the transaction being signed
func (i *Invoice) TransactionID() wire.TransactionID {
	return i.txID
}

// BodyBytes returns the canonical bytes a signatory must sign
func (i *Invoice) BodyBytes() []byte {
	return i.bodyBytes
}

// AddSignature appends one (key type, public key, signature) triple. The
// full public key is retained until the signing round closes, when prefixes
// are trimmed.
func (i *Invoice) AddSignature(keyType uint8, publicKey []byte, signature []byte) {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	i.sigPairs = append(i.sigPairs, wire.SignaturePair{
		KeyType:   keyType,
		Prefix:    publicKey,
		Signature: signature,
	})
}

// signatureCount returns the number of accumulated signatures
func (i *Invoice) signatureCount() int {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	return len(i.sigPairs)
}

// signedTransaction closes the signing round, trimming each signature's
// public key prefix to the shortest length that keeps all prefixes distinct,
// floored at the invoice's minimum desired length
func (i *Invoice) signedTransaction() *wire.SignedTransaction {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	maxLen := 0
	for _, pair := range i.sigPairs {
		if len(pair.Prefix) > maxLen {
			maxLen = len(pair.Prefix)
		}
	}
	trimAt := i.minPrefixLen
	// Identical keys can never be distinguished, so stop at the full length
	for trimAt < maxLen && !prefixesDistinct(i.sigPairs, trimAt) {
		trimAt++
	}
	pairs := make([]wire.SignaturePair, len(i.sigPairs))
	for idx, pair := range i.sigPairs {
		prefix := pair.Prefix
		if trimAt < len(prefix) {
			prefix = prefix[:trimAt]
		}
		pairs[idx] = wire.SignaturePair{
			KeyType:   pair.KeyType,
			Prefix:    prefix,
			Signature: pair.Signature,
		}
	}
	return &wire.SignedTransaction{
		BodyBytes: i.bodyBytes,
		SigPairs:  pairs,
	}
}

func prefixesDistinct(pairs []wire.SignaturePair, length int) bool {
	for a := 0; a < len(pairs); a++ {
		for b := a + 1; b < len(pairs); b++ {
			prefixA := pairs[a].Prefix
			prefixB := pairs[b].Prefix
			if length < len(prefixA) {
				prefixA = prefixA[:length]
			}
			if length < len(prefixB) {
				prefixB = prefixB[:length]
			}
			if bytes.Equal(prefixA, prefixB) {
				return false
			}
		}
	}
	return true
}
