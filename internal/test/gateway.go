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

// Package test provides an in-memory scriptable gateway node for exercising
// the execution engine without a network
package test

import (
	"context"
	"net"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	meridian "github.com/meridianhq/gomeridian"
	"github.com/meridianhq/gomeridian/wire"
)

const bufSize = 1 << 20

// GatewayScript supplies the behavior of a mock gateway, one function per
// RPC. A nil function rejects the call. Returned errors pass through to the
// client as gRPC status errors, which is how tests inject transport
// failures.
type GatewayScript struct {
	SubmitFunc  func(attempt int32, tx *wire.SignedTransaction) (*wire.Precheck, error)
	QueryFunc   func(attempt int32, q *wire.Query) (*wire.Response, error)
	ReceiptFunc func(attempt int32, q *wire.ReceiptQuery) (*wire.ReceiptResponse, error)
}

// Gateway is an in-process gateway node listening on an in-memory transport
type Gateway struct {
	wire.UnimplementedGatewayServer
	script GatewayScript
	server *grpc.Server
	lis    *bufconn.Listener

	SubmitCalls  atomic.Int32
	QueryCalls   atomic.Int32
	ReceiptCalls atomic.Int32
}

// NewGateway starts a mock gateway serving the provided script
func NewGateway(script GatewayScript) *Gateway {
	g := &Gateway{
		script: script,
		server: grpc.NewServer(),
		lis:    bufconn.Listen(bufSize),
	}
	wire.RegisterGatewayServer(g.server, g)
	go func() {
		_ = g.server.Serve(g.lis)
	}()
	return g
}

// Dialer returns a dial function routing every target to this gateway
func (g *Gateway) Dialer() meridian.DialFunc {
	return func(target string) (*grpc.ClientConn, error) {
		return grpc.NewClient(
			"passthrough:///"+target,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return g.lis.DialContext(ctx)
			}),
		)
	}
}

// Close stops the server and releases the listener
func (g *Gateway) Close() {
	g.server.Stop()
	_ = g.lis.Close()
}

func (g *Gateway) SubmitTransaction(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	attempt := g.SubmitCalls.Add(1)
	if g.script.SubmitFunc == nil {
		return nil, errUnscripted("SubmitTransaction")
	}
	var tx wire.SignedTransaction
	if err := wire.Unmarshal(in.Value, &tx); err != nil {
		return nil, err
	}
	precheck, err := g.script.SubmitFunc(attempt, &tx)
	if err != nil {
		return nil, err
	}
	return marshalResponse(precheck)
}

func (g *Gateway) Query(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	attempt := g.QueryCalls.Add(1)
	if g.script.QueryFunc == nil {
		return nil, errUnscripted("Query")
	}
	var q wire.Query
	if err := wire.Unmarshal(in.Value, &q); err != nil {
		return nil, err
	}
	resp, err := g.script.QueryFunc(attempt, &q)
	if err != nil {
		return nil, err
	}
	return marshalResponse(resp)
}

func (g *Gateway) GetReceipt(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	attempt := g.ReceiptCalls.Add(1)
	if g.script.ReceiptFunc == nil {
		return nil, errUnscripted("GetReceipt")
	}
	var q wire.ReceiptQuery
	if err := wire.Unmarshal(in.Value, &q); err != nil {
		return nil, err
	}
	resp, err := g.script.ReceiptFunc(attempt, &q)
	if err != nil {
		return nil, err
	}
	return marshalResponse(resp)
}

func errUnscripted(method string) error {
	return status.Errorf(codes.FailedPrecondition, "no script for %s", method)
}

func marshalResponse(v any) (*wrapperspb.BytesValue, error) {
	data, err := wire.Marshal(v)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bytes(data), nil
}
