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

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// AliasHRP is the human-readable prefix for Meridian account aliases
const AliasHRP = "mer"

func encodeAlias(pubKeyBytes []byte) (string, error) {
	converted, err := bech32.ConvertBits(pubKeyBytes, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(AliasHRP, converted)
}

// DecodeAlias returns the public key bytes encoded in a bech32 account alias
func DecodeAlias(alias string) ([]byte, error) {
	hrp, data, err := bech32.Decode(alias)
	if err != nil {
		return nil, err
	}
	if hrp != AliasHRP {
		return nil, fmt.Errorf("invalid alias prefix: %s", hrp)
	}
	return bech32.ConvertBits(data, 5, 8, false)
}
