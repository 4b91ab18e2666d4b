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
	"context"
	"flag"
	"fmt"
	"os"

	meridian "github.com/meridianhq/gomeridian"
)

type transferFlags struct {
	flagset *flag.FlagSet
	to      string
	amount  int64
	memo    string
}

func newTransferFlags() *transferFlags {
	f := &transferFlags{
		flagset: flag.NewFlagSet("transfer", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.to,
		"to",
		"",
		"destination account ID in shard.realm.num format",
	)
	f.flagset.Int64Var(
		&f.amount,
		"amount",
		0,
		"amount to transfer, in tinybars",
	)
	f.flagset.StringVar(
		&f.memo,
		"memo",
		"",
		"memo to record on the transaction",
	)
	return f
}

func runTransfer(f *globalFlags) {
	transferFlags := newTransferFlags()
	err := transferFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if transferFlags.to == "" || transferFlags.amount <= 0 {
		fmt.Printf("You must specify -to and a positive -amount\n")
		os.Exit(1)
	}
	to := parseAccountArg("destination", transferFlags.to)

	client := createClient(f)
	defer client.Close()
	payer, err := client.Scope().Payer()
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	tx := meridian.NewTransferTransaction().
		AddTransfer(payer, -transferFlags.amount).
		AddTransfer(to, transferFlags.amount)
	receipt, err := client.Transfer(
		context.Background(),
		tx,
		meridian.WithMemo(transferFlags.memo),
	)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf(
		"transaction %s finalized with status %s\n",
		receipt.TransactionID,
		receipt.Receipt.Status,
	)
}
