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
	"math/rand"

	"github.com/meridianhq/gomeridian/wire"
)

// Network is a named set of public gateway nodes
type Network struct {
	Name     string
	Gateways []Gateway
}

// Pick returns one of the network's gateways at random. The engine sends
// each request to a single gateway; spreading load across a network's nodes
// is the caller's choice of Pick versus a fixed Gateway.
func (n Network) Pick() Gateway {
	return n.Gateways[rand.Intn(len(n.Gateways))]
}

var NetworkMainnet = Network{
	Name: "mainnet",
	Gateways: []Gateway{
		{
			Account: wire.AccountID{Num: 3},
			Target:  "gw0.mainnet.meridian.network:50051",
		},
		{
			Account: wire.AccountID{Num: 4},
			Target:  "gw1.mainnet.meridian.network:50051",
		},
		{
			Account: wire.AccountID{Num: 5},
			Target:  "gw2.mainnet.meridian.network:50051",
		},
		{
			Account: wire.AccountID{Num: 6},
			Target:  "gw3.mainnet.meridian.network:50051",
		},
	},
}

var NetworkTestnet = Network{
	Name: "testnet",
	Gateways: []Gateway{
		{
			Account: wire.AccountID{Num: 3},
			Target:  "gw0.testnet.meridian.network:50051",
		},
		{
			Account: wire.AccountID{Num: 4},
			Target:  "gw1.testnet.meridian.network:50051",
		},
	},
}

var NetworkPreviewnet = Network{
	Name: "previewnet",
	Gateways: []Gateway{
		{
			Account: wire.AccountID{Num: 3},
			Target:  "gw0.previewnet.meridian.network:50051",
		},
	},
}

// NetworkByName returns the named public network, or false if unknown
func NetworkByName(name string) (Network, bool) {
	switch name {
	case NetworkMainnet.Name:
		return NetworkMainnet, true
	case NetworkTestnet.Name:
		return NetworkTestnet, true
	case NetworkPreviewnet.Name:
		return NetworkPreviewnet, true
	}
	return Network{}, false
}
