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
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp_ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/meridianhq/gomeridian/wire"
)

// ECDSAPrivateKey is a secp256k1 signing key. Signatures are produced over
// the keccak-256 digest of the message.
type ECDSAPrivateKey struct {
	priv *secp256k1.PrivateKey
}

// ECDSAPublicKey is a secp256k1 verification key
type ECDSAPublicKey struct {
	pub *secp256k1.PublicKey
}

// GenerateECDSAPrivateKey returns a new random secp256k1 private key
func GenerateECDSAPrivateKey() (*ECDSAPrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &ECDSAPrivateKey{priv: priv}, nil
}

// ECDSAPrivateKeyFromBytes parses a 32-byte secp256k1 private scalar
func ECDSAPrivateKeyFromBytes(data []byte) (*ECDSAPrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("invalid secp256k1 private key length: %d", len(data))
	}
	return &ECDSAPrivateKey{priv: secp256k1.PrivKeyFromBytes(data)}, nil
}

// ECDSAPublicKeyFromBytes parses a 33-byte compressed secp256k1 public key
func ECDSAPublicKeyFromBytes(data []byte) (*ECDSAPublicKey, error) {
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 public key: %w", err)
	}
	return &ECDSAPublicKey{pub: pub}, nil
}

func keccakDigest(message []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(message)
	return hash.Sum(nil)
}

func (k *ECDSAPrivateKey) KeyType() uint8 {
	return wire.KeyTypeECDSASecp256k1
}

func (k *ECDSAPrivateKey) SignBytes(message []byte) ([]byte, error) {
	sig := secp_ecdsa.Sign(k.priv, keccakDigest(message))
	return sig.Serialize(), nil
}

func (k *ECDSAPrivateKey) Public() PublicKey {
	return &ECDSAPublicKey{pub: k.priv.PubKey()}
}

// Bytes returns the 32-byte private scalar
func (k *ECDSAPrivateKey) Bytes() []byte {
	return k.priv.Serialize()
}

func (k *ECDSAPublicKey) KeyType() uint8 {
	return wire.KeyTypeECDSASecp256k1
}

// Bytes returns the 33-byte compressed point encoding
func (k *ECDSAPublicKey) Bytes() []byte {
	return k.pub.SerializeCompressed()
}

func (k *ECDSAPublicKey) Verify(message []byte, sig []byte) bool {
	parsed, err := secp_ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(keccakDigest(message), k.pub)
}

func (k *ECDSAPublicKey) Alias() (string, error) {
	return encodeAlias(k.Bytes())
}
