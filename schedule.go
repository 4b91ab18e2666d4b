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
	"github.com/jinzhu/copier"

	"github.com/meridianhq/gomeridian/wire"
)

// ScheduleParams describes a network-side deferred execution wrapper: the
// engine rewraps the would-be transaction as a schedule-create carrying
// these parameters, and the network executes it once the remaining
// signatures arrive (or the expiration passes).
type ScheduleParams struct {
	// AdminKey may later delete or modify the pending schedule
	AdminKey []byte
	// PayerAccount pays for the scheduled execution; defaults to the
	// schedule-create payer when nil
	PayerAccount *wire.AccountID
	// Expiration bounds how long the network holds the pending transaction
	Expiration *wire.Timestamp
	// WaitForExpiry delays execution until the expiration even if all
	// signatures arrive earlier
	WaitForExpiry bool
	// Memo is recorded on the schedule entity itself
	Memo string
}

// wrapAsScheduleCreate turns a schedulable body into a schedule-create
// transaction body carrying the scheduling parameters. The inner body is
// deep-copied so later stamping of the outer body cannot alias into it.
func wrapAsScheduleCreate(inner *wire.SchedulableBody, params *ScheduleParams) (*wire.TransactionBody, error) {
	var innerCopy wire.SchedulableBody
	if err := copier.CopyWithOption(&innerCopy, inner, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	payload, err := wire.Marshal(wire.ScheduleCreate{
		Inner:         innerCopy,
		AdminKey:      params.AdminKey,
		PayerAccount:  params.PayerAccount,
		Expiration:    params.Expiration,
		WaitForExpiry: params.WaitForExpiry,
		Memo:          params.Memo,
	})
	if err != nil {
		return nil, err
	}
	return &wire.TransactionBody{
		Operation: wire.OpScheduleCreate,
		Payload:   payload,
	}, nil
}
