/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

package query

import (
	"context"

	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// Capacity is the read and write capacity consumed by one or more calls.
type Capacity struct {
	ReadKB     int `json:"readKB"`
	ReadUnits  int `json:"readUnits"`
	WriteKB    int `json:"writeKB"`
	WriteUnits int `json:"writeUnits"`
}

func (c Capacity) Add(o Capacity) Capacity {
	return Capacity{
		ReadKB:     c.ReadKB + o.ReadKB,
		ReadUnits:  c.ReadUnits + o.ReadUnits,
		WriteKB:    c.WriteKB + o.WriteKB,
		WriteUnits: c.WriteUnits + o.WriteUnits,
	}
}

func (c Capacity) IsZero() bool {
	return c == Capacity{}
}

type PrepareRequest struct {
	Statement string
	Options   Options
}

// PrepareResult describes a compiled statement. Blob is opaque to the client.
type PrepareResult struct {
	Blob      []byte
	Table     string
	Kind      parser.StatementKind
	Variables []parser.Variable
	Capacity  Capacity
}

// QueryRequest carries either a compiled statement in Prepared or a statement text.
type QueryRequest struct {
	Statement string
	Prepared  []byte
	Bindings  map[string]types.Value
	Options   Options
}

// QueryResult is the outcome of one call. An empty ContinuationKey means the
// execution is complete.
type QueryResult struct {
	Rows            []*types.MapValue
	Capacity        Capacity
	ContinuationKey []byte
}

func (r *QueryResult) HasMore() bool {
	return len(r.ContinuationKey) > 0
}

type GetRequest struct {
	Table       string
	Key         *types.MapValue
	Consistency Consistency
	Compartment string
}

type GetResult struct {
	Row      *types.MapValue
	Version  []byte
	Capacity Capacity
}

//go:generate mockgen -source=transport.go -destination=mock_transport_test.go -package=query

// Transport performs the remote calls. Implementations return nosqlerr errors
// for conditions reported by the engine.
type Transport interface {
	Prepare(ctx context.Context, req *PrepareRequest) (*PrepareResult, error)
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)
	Get(ctx context.Context, req *GetRequest) (*GetResult, error)
}
