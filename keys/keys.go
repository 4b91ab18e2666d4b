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

// Package keys provides the key types accepted by the Meridian network and
// implements signing over canonical transaction bytes. Ed25519 and ECDSA
// secp256k1 keys are supported.
package keys

import (
	"github.com/meridianhq/gomeridian/wire"
)

// Signer produces signatures over canonical transaction bytes with a single
// key
type Signer interface {
	// KeyType identifies the signature algorithm on the wire
	KeyType() uint8
	// SignBytes signs the provided message bytes
	SignBytes(message []byte) ([]byte, error)
	// Public returns the corresponding public key
	Public() PublicKey
}

// PublicKey is a verification key plus its wire identity
type PublicKey interface {
	KeyType() uint8
	// Bytes returns the canonical public key encoding used as the
	// signature-pair prefix source
	Bytes() []byte
	// Verify reports whether sig is a valid signature of message
	Verify(message []byte, sig []byte) bool
	// Alias returns the bech32 account alias for this key
	Alias() (string, error)
}

// keyTypeName maps wire key types to human-readable names for errors
func keyTypeName(keyType uint8) string {
	switch keyType {
	case wire.KeyTypeEd25519:
		return "ed25519"
	case wire.KeyTypeECDSASecp256k1:
		return "ecdsa-secp256k1"
	default:
		return "unknown"
	}
}
