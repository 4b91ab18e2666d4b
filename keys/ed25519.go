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

package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"

	"github.com/meridianhq/gomeridian/wire"
)

// Ed25519PrivateKey is an Ed25519 signing key
type Ed25519PrivateKey struct {
	priv ed25519.PrivateKey
}

// Ed25519PublicKey is an Ed25519 verification key
type Ed25519PublicKey struct {
	pub ed25519.PublicKey
}

// GenerateEd25519PrivateKey returns a new random Ed25519 private key
func GenerateEd25519PrivateKey() (*Ed25519PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Ed25519PrivateKey{priv: priv}, nil
}

// Ed25519PrivateKeyFromBytes parses a 32-byte seed or a 64-byte expanded key
func Ed25519PrivateKeyFromBytes(data []byte) (*Ed25519PrivateKey, error) {
	switch len(data) {
	case ed25519.SeedSize:
		return &Ed25519PrivateKey{priv: ed25519.NewKeyFromSeed(data)}, nil
	case ed25519.PrivateKeySize:
		return &Ed25519PrivateKey{priv: ed25519.PrivateKey(data)}, nil
	default:
		return nil, fmt.Errorf("invalid ed25519 private key length: %d", len(data))
	}
}

// Ed25519PublicKeyFromBytes parses a 32-byte public key, rejecting
// non-canonical curve points
func Ed25519PublicKeyFromBytes(data []byte) (*Ed25519PublicKey, error) {
	if len(data) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid ed25519 public key length: %d", len(data))
	}
	if _, err := new(edwards25519.Point).SetBytes(data); err != nil {
		return nil, fmt.Errorf("invalid ed25519 public key: %w", err)
	}
	return &Ed25519PublicKey{pub: ed25519.PublicKey(data)}, nil
}

func (k *Ed25519PrivateKey) KeyType() uint8 {
	return wire.KeyTypeEd25519
}

func (k *Ed25519PrivateKey) SignBytes(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}

func (k *Ed25519PrivateKey) Public() PublicKey {
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, k.priv.Public().(ed25519.PublicKey))
	return &Ed25519PublicKey{pub: pub}
}

// Bytes returns the 32-byte seed form of the private key
func (k *Ed25519PrivateKey) Bytes() []byte {
	return k.priv.Seed()
}

func (k *Ed25519PublicKey) KeyType() uint8 {
	return wire.KeyTypeEd25519
}

func (k *Ed25519PublicKey) Bytes() []byte {
	return []byte(k.pub)
}

func (k *Ed25519PublicKey) Verify(message []byte, sig []byte) bool {
	return ed25519.Verify(k.pub, message, sig)
}

func (k *Ed25519PublicKey) Alias() (string, error) {
	return encodeAlias(k.Bytes())
}
