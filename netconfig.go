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
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/meridianhq/gomeridian/keys"
	"github.com/meridianhq/gomeridian/wire"
)

// ClientConfig is the declarative TOML form of a client's initial scope
type ClientConfig struct {
	// Network selects a named public network; ignored when explicit
	// gateways are listed
	Network  string                `toml:"network"`
	Gateways []ClientConfigGateway `toml:"gateway"`
	Operator *ClientConfigOperator `toml:"operator"`
	Defaults *ClientConfigDefaults `toml:"defaults"`
}

type ClientConfigGateway struct {
	Account string `toml:"account"`
	Target  string `toml:"target"`
}

type ClientConfigOperator struct {
	Account string `toml:"account"`
	KeyType string `toml:"key_type"`
	// Key is the hex-encoded private key
	Key string `toml:"key"`
}

type ClientConfigDefaults struct {
	FeeLimit     uint64 `toml:"fee_limit"`
	Memo         string `toml:"memo"`
	RetryCount   int    `toml:"retry_count"`
	RetryDelayMS int    `toml:"retry_delay_ms"`
	QueryTip     uint64 `toml:"query_tip"`
	AdjustDrift  bool   `toml:"adjust_drift"`
}

// NewClientConfigFromFile loads a client config from a TOML file
func NewClientConfigFromFile(path string) (*ClientConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewClientConfigFromReader(dataFile)
}

// NewClientConfigFromReader loads a client config from TOML content
func NewClientConfigFromReader(r io.Reader) (*ClientConfig, error) {
	c := &ClientConfig{}
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Options converts the config into client options
func (c *ClientConfig) Options() ([]Option, error) {
	var opts []Option
	switch {
	case len(c.Gateways) > 0:
		account, err := wire.ParseAccountID(c.Gateways[0].Account)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithGateway(Gateway{
			Account: account,
			Target:  c.Gateways[0].Target,
		}))
	case c.Network != "":
		network, ok := NetworkByName(c.Network)
		if !ok {
			return nil, fmt.Errorf("unknown network: %s", c.Network)
		}
		opts = append(opts, WithNetwork(network))
	}
	if c.Operator != nil {
		account, err := wire.ParseAccountID(c.Operator.Account)
		if err != nil {
			return nil, err
		}
		keyBytes, err := hex.DecodeString(c.Operator.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid operator key: %w", err)
		}
		var signer keys.Signer
		switch c.Operator.KeyType {
		case "", "ed25519":
			signer, err = keys.Ed25519PrivateKeyFromBytes(keyBytes)
		case "ecdsa":
			signer, err = keys.ECDSAPrivateKeyFromBytes(keyBytes)
		default:
			return nil, fmt.Errorf("unknown operator key type: %s", c.Operator.KeyType)
		}
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			WithPayer(account),
			WithSignatory(NewKeySignatory(signer)),
		)
	}
	if d := c.Defaults; d != nil {
		if d.FeeLimit > 0 {
			opts = append(opts, WithFeeLimit(d.FeeLimit))
		}
		if d.Memo != "" {
			opts = append(opts, WithMemo(d.Memo))
		}
		if d.RetryCount > 0 {
			opts = append(opts, WithRetryCount(d.RetryCount))
		}
		if d.RetryDelayMS > 0 {
			opts = append(opts, WithRetryDelay(time.Duration(d.RetryDelayMS)*time.Millisecond))
		}
		if d.QueryTip > 0 {
			opts = append(opts, WithQueryTip(d.QueryTip))
		}
		if d.AdjustDrift {
			opts = append(opts, WithDriftAdjustment(true))
		}
	}
	return opts, nil
}

// NewClientFromConfigFile builds a client from a TOML config file
func NewClientFromConfigFile(path string, extra ...Option) (*Client, error) {
	cfg, err := NewClientConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return NewClient(append(opts, extra...)...), nil
}
