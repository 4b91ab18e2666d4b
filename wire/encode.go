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
	"fmt"

	_cbor "github.com/fxamacker/cbor/v2"
)

// Alias for RawMessage for convenience
type RawMessage = _cbor.RawMessage

var (
	encMode _cbor.EncMode
	decMode _cbor.DecMode
)

func init() {
	var err error
	// Core deterministic encoding so signed bytes are reproducible
	encMode, err = _cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = _cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes the provided object as canonical CBOR
func Marshal(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode error: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the provided CBOR into the destination object
func Unmarshal(data []byte, dest any) error {
	if err := decMode.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("wire: decode error: %w", err)
	}
	return nil
}
