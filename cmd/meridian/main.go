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

package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	meridian "github.com/meridianhq/gomeridian"
	"github.com/meridianhq/gomeridian/keys"
	"github.com/meridianhq/gomeridian/wire"
)

type globalFlags struct {
	flagset        *flag.FlagSet
	config         string
	network        string
	gateway        string
	gatewayAccount string
	payer          string
	key            string
	keyType        string
}

func newGlobalFlags() *globalFlags {
	f := &globalFlags{
		flagset: flag.NewFlagSet(os.Args[0], flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.config,
		"config",
		"",
		"path to a TOML client config file",
	)
	f.flagset.StringVar(
		&f.network,
		"network",
		"testnet",
		"named public network to send requests to",
	)
	f.flagset.StringVar(
		&f.gateway,
		"gateway",
		"",
		"gateway target in host:port format. this overrides the -network option",
	)
	f.flagset.StringVar(
		&f.gatewayAccount,
		"gateway-account",
		"0.0.3",
		"account ID of the gateway node",
	)
	f.flagset.StringVar(
		&f.payer,
		"payer",
		"",
		"payer account ID in shard.realm.num format",
	)
	f.flagset.StringVar(
		&f.key,
		"key",
		"",
		"hex-encoded operator private key",
	)
	f.flagset.StringVar(
		&f.keyType,
		"key-type",
		"ed25519",
		"operator key algorithm (ed25519 or ecdsa)",
	)
	return f
}

func main() {
	f := newGlobalFlags()
	err := f.flagset.Parse(os.Args[1:])
	if err != nil {
		fmt.Printf("failed to parse command args: %s\n", err)
		os.Exit(1)
	}

	if len(f.flagset.Args()) > 0 {
		switch f.flagset.Arg(0) {
		case "transfer":
			runTransfer(f)
		case "balance":
			runBalance(f)
		case "info":
			runInfo(f)
		case "receipt":
			runReceipt(f)
		default:
			fmt.Printf("Unknown subcommand: %s\n", f.flagset.Arg(0))
			os.Exit(1)
		}
	} else {
		fmt.Printf("You must specify a subcommand (transfer, balance, info, or receipt)\n")
		os.Exit(1)
	}
}

func createClient(f *globalFlags) *meridian.Client {
	var opts []meridian.Option
	if f.config != "" {
		client, err := meridian.NewClientFromConfigFile(f.config, flagOptions(f)...)
		if err != nil {
			fmt.Printf("failed to load client config: %s\n", err)
			os.Exit(1)
		}
		return client
	}
	if f.gateway != "" {
		account, err := wire.ParseAccountID(f.gatewayAccount)
		if err != nil {
			fmt.Printf("Invalid gateway account: %s\n", f.gatewayAccount)
			os.Exit(1)
		}
		opts = append(opts, meridian.WithGateway(meridian.Gateway{
			Account: account,
			Target:  f.gateway,
		}))
	} else {
		network, ok := meridian.NetworkByName(f.network)
		if !ok {
			fmt.Printf("Invalid network specified: %s\n", f.network)
			os.Exit(1)
		}
		opts = append(opts, meridian.WithNetwork(network))
	}
	opts = append(opts, flagOptions(f)...)
	return meridian.NewClient(opts...)
}

// flagOptions converts the operator-related flags into client options.
// They layer over any config file values.
func flagOptions(f *globalFlags) []meridian.Option {
	var opts []meridian.Option
	if f.payer != "" {
		payer, err := wire.ParseAccountID(f.payer)
		if err != nil {
			fmt.Printf("Invalid payer account: %s\n", f.payer)
			os.Exit(1)
		}
		opts = append(opts, meridian.WithPayer(payer))
	}
	if f.key != "" {
		keyBytes, err := hex.DecodeString(f.key)
		if err != nil {
			fmt.Printf("Invalid operator key: %s\n", err)
			os.Exit(1)
		}
		var signer keys.Signer
		switch f.keyType {
		case "ed25519":
			signer, err = keys.Ed25519PrivateKeyFromBytes(keyBytes)
		case "ecdsa":
			signer, err = keys.ECDSAPrivateKeyFromBytes(keyBytes)
		default:
			fmt.Printf("Invalid key type specified: %s\n", f.keyType)
			os.Exit(1)
		}
		if err != nil {
			fmt.Printf("Invalid operator key: %s\n", err)
			os.Exit(1)
		}
		opts = append(opts, meridian.WithSignatory(meridian.NewKeySignatory(signer)))
	}
	return opts
}

func parseAccountArg(name string, value string) wire.AccountID {
	account, err := wire.ParseAccountID(value)
	if err != nil {
		fmt.Printf("Invalid %s account: %s\n", name, value)
		os.Exit(1)
	}
	return account
}
