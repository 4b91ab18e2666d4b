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
	"strconv"
	"strings"

	"github.com/meridianhq/gomeridian/wire"
)

type receiptFlags struct {
	flagset *flag.FlagSet
	tx      string
}

func newReceiptFlags() *receiptFlags {
	f := &receiptFlags{
		flagset: flag.NewFlagSet("receipt", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.tx,
		"tx",
		"",
		"transaction ID in payer@seconds.nanos format",
	)
	return f
}

func runReceipt(f *globalFlags) {
	receiptFlags := newReceiptFlags()
	err := receiptFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if receiptFlags.tx == "" {
		fmt.Printf("You must specify -tx\n")
		os.Exit(1)
	}
	txID, err := parseTransactionID(receiptFlags.tx)
	if err != nil {
		fmt.Printf("Invalid transaction ID: %s\n", receiptFlags.tx)
		os.Exit(1)
	}

	client := createClient(f)
	defer client.Close()
	receipt, err := client.GetReceipt(context.Background(), txID)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf(
		"transaction %s finalized with status %s\n",
		receipt.TransactionID,
		receipt.Receipt.Status,
	)
	if receipt.Receipt.AccountID != nil {
		fmt.Printf("created account: %s\n", receipt.Receipt.AccountID)
	}
	if receipt.Receipt.ScheduleID != nil {
		fmt.Printf("schedule: %s\n", receipt.Receipt.ScheduleID)
	}
}

func parseTransactionID(s string) (wire.TransactionID, error) {
	payerPart, startPart, ok := strings.Cut(s, "@")
	if !ok {
		return wire.TransactionID{}, fmt.Errorf("invalid transaction ID: %s", s)
	}
	payer, err := wire.ParseAccountID(payerPart)
	if err != nil {
		return wire.TransactionID{}, err
	}
	secPart, nanoPart, ok := strings.Cut(startPart, ".")
	if !ok {
		return wire.TransactionID{}, fmt.Errorf("invalid transaction ID: %s", s)
	}
	seconds, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return wire.TransactionID{}, err
	}
	nanos, err := strconv.ParseInt(nanoPart, 10, 32)
	if err != nil {
		return wire.TransactionID{}, err
	}
	return wire.TransactionID{
		Payer: payer,
		ValidStart: wire.Timestamp{
			Seconds: seconds,
			Nanos:   int32(nanos),
		},
	}, nil
}
