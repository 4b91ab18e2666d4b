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
	"context"
	"errors"

	"github.com/meridianhq/gomeridian/keys"
)

// Signatory is any capability that can produce signatures over a
// transaction's canonical bytes. A signatory appends zero or more signatures
// to the invoice it is handed.
type Signatory interface {
	SignRequest(ctx context.Context, invoice *Invoice) error
}

// SignatoryFunc adapts a plain function to the Signatory interface
type SignatoryFunc func(ctx context.Context, invoice *Invoice) error

func (f SignatoryFunc) SignRequest(ctx context.Context, invoice *Invoice) error {
	return f(ctx, invoice)
}

// Signatories coalesces multiple signatories by simple concatenation. There
// is no de-duplication and no ordering guarantee beyond append order.
type Signatories []Signatory

func (s Signatories) SignRequest(ctx context.Context, invoice *Invoice) error {
	for _, signatory := range s {
		if err := signatory.SignRequest(ctx, invoice); err != nil {
			return err
		}
	}
	return nil
}

// scheduler is implemented by signatories that defer to network-side
// scheduled execution instead of signing immediately
type scheduler interface {
	ScheduleParams() *ScheduleParams
}

// NewKeySignatory wraps a single key in a Signatory that signs the invoice's
// canonical bytes and appends one signature pair
func NewKeySignatory(signer keys.Signer) Signatory {
	return &keySignatory{signer: signer}
}

type keySignatory struct {
	signer keys.Signer
}

func (k *keySignatory) SignRequest(ctx context.Context, invoice *Invoice) error {
	sig, err := k.signer.SignBytes(invoice.BodyBytes())
	if err != nil {
		return err
	}
	invoice.AddSignature(k.signer.KeyType(), k.signer.Public().Bytes(), sig)
	return nil
}

// NewScheduleSignatory returns a signatory that produces no signatures and
// instead instructs the engine to wrap the transaction as a schedule-create
// awaiting further signatures on the network side
func NewScheduleSignatory(params ScheduleParams) Signatory {
	return &scheduleSignatory{params: params}
}

type scheduleSignatory struct {
	params ScheduleParams
}

func (s *scheduleSignatory) SignRequest(ctx context.Context, invoice *Invoice) error {
	return nil
}

func (s *scheduleSignatory) ScheduleParams() *ScheduleParams {
	return &s.params
}

// collectScheduleParams scans the coalesced signatories (recursing into
// nested lists) for scheduling instructions. More than one scheduling
// signatory is an error.
func collectScheduleParams(signatories Signatories) (*ScheduleParams, error) {
	var found *ScheduleParams
	for _, signatory := range signatories {
		var params *ScheduleParams
		switch v := signatory.(type) {
		case scheduler:
			params = v.ScheduleParams()
		case Signatories:
			var err error
			params, err = collectScheduleParams(v)
			if err != nil {
				return nil, err
			}
		}
		if params == nil {
			continue
		}
		if found != nil {
			return nil, errors.New("multiple signatories requested scheduled execution")
		}
		found = params
	}
	return found, nil
}
