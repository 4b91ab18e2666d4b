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
)

type queryFlags struct {
	flagset *flag.FlagSet
	account string
}

func newQueryFlags(name string) *queryFlags {
	f := &queryFlags{
		flagset: flag.NewFlagSet(name, flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.account,
		"account",
		"",
		"account ID to query in shard.realm.num format",
	)
	return f
}

func runBalance(f *globalFlags) {
	balanceFlags := newQueryFlags("balance")
	err := balanceFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if balanceFlags.account == "" {
		fmt.Printf("You must specify -account\n")
		os.Exit(1)
	}
	account := parseAccountArg("query", balanceFlags.account)

	client := createClient(f)
	defer client.Close()
	balance, err := client.GetAccountBalance(context.Background(), account)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("account %s balance: %d tinybars\n", account, balance)
}

func runInfo(f *globalFlags) {
	infoFlags := newQueryFlags("info")
	err := infoFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if infoFlags.account == "" {
		fmt.Printf("You must specify -account\n")
		os.Exit(1)
	}
	account := parseAccountArg("query", infoFlags.account)

	client := createClient(f)
	defer client.Close()
	info, err := client.GetAccountInfo(context.Background(), account)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("account:  %s\n", info.Account)
	fmt.Printf("balance:  %d tinybars\n", info.Balance)
	if info.Alias != "" {
		fmt.Printf("alias:    %s\n", info.Alias)
	}
	if info.Memo != "" {
		fmt.Printf("memo:     %s\n", info.Memo)
	}
	fmt.Printf("deleted:  %t\n", info.Deleted)
	fmt.Printf("expiry:   %s\n", info.Expiry)
}
