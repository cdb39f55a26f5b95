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

package httpapi

import (
	"fmt"
	"time"

	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

const (
	prepareRoute = "/v1/prepare"
	queryRoute   = "/v1/query"
	getRoute     = "/v1/get"
	healthRoute  = "/health"
	metricsRoute = "/metrics"
)

// Byte slices travel base64 encoded, values with their type tag.

type wireOptions struct {
	TimeoutMs       int64  `json:"timeoutMs,omitempty"`
	Consistency     string `json:"consistency,omitempty"`
	Limit           int    `json:"limit,omitempty"`
	MaxReadKB       int    `json:"maxReadKB,omitempty"`
	MaxWriteKB      int    `json:"maxWriteKB,omitempty"`
	MaxMemoryMB     int    `json:"maxMemoryMB,omitempty"`
	TraceLevel      int    `json:"traceLevel,omitempty"`
	ContinuationKey []byte `json:"continuationKey,omitempty"`
	Compartment     string `json:"compartment,omitempty"`
}

type wireVariable struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Declared bool   `json:"declared"`
}

type prepareRequest struct {
	Statement string      `json:"statement"`
	Options   wireOptions `json:"options"`
}

type prepareResponse struct {
	Blob      []byte         `json:"blob"`
	Table     string         `json:"table"`
	Kind      string         `json:"kind"`
	Variables []wireVariable `json:"variables"`
	Capacity  query.Capacity `json:"capacity"`
}

type queryRequest struct {
	Statement string                 `json:"statement,omitempty"`
	Prepared  []byte                 `json:"prepared,omitempty"`
	Bindings  map[string]types.Value `json:"bindings,omitempty"`
	Options   wireOptions            `json:"options"`
}

type queryResponse struct {
	Rows            []*types.MapValue `json:"rows"`
	Capacity        query.Capacity    `json:"capacity"`
	ContinuationKey []byte            `json:"continuationKey,omitempty"`
}

type getRequest struct {
	Table       string          `json:"table"`
	Key         *types.MapValue `json:"key"`
	Consistency string          `json:"consistency,omitempty"`
	Compartment string          `json:"compartment,omitempty"`
}

type getResponse struct {
	Row      *types.MapValue `json:"row,omitempty"`
	Version  []byte          `json:"version,omitempty"`
	Capacity query.Capacity  `json:"capacity"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toWireOptions(o query.Options) wireOptions {
	w := wireOptions{
		TimeoutMs:       o.Timeout.Milliseconds(),
		Limit:           o.Limit,
		MaxReadKB:       o.MaxReadKB,
		MaxWriteKB:      o.MaxWriteKB,
		MaxMemoryMB:     o.MaxMemoryMB,
		TraceLevel:      o.TraceLevel,
		ContinuationKey: o.ContinuationKey,
		Compartment:     o.Compartment,
	}
	if o.Consistency != 0 {
		w.Consistency = o.Consistency.String()
	}
	return w
}

func (w wireOptions) options() (query.Options, error) {
	o := query.Options{
		Timeout:         time.Duration(w.TimeoutMs) * time.Millisecond,
		Limit:           w.Limit,
		MaxReadKB:       w.MaxReadKB,
		MaxWriteKB:      w.MaxWriteKB,
		MaxMemoryMB:     w.MaxMemoryMB,
		TraceLevel:      w.TraceLevel,
		ContinuationKey: w.ContinuationKey,
		Compartment:     w.Compartment,
	}
	var err error
	if w.Consistency != "" {
		o.Consistency, err = query.ParseConsistency(w.Consistency)
	}
	return o, err
}

func parseKind(name string) (parser.StatementKind, error) {
	for _, k := range []parser.StatementKind{parser.KindSelect, parser.KindInsert, parser.KindUpdate, parser.KindDelete} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown statement kind %q", name)
}

func parseType(name string) (types.Type, error) {
	for t, n := range types.TypeNames {
		if n == name {
			return t, nil
		}
	}
	return types.Null, fmt.Errorf("unknown value type %q", name)
}

func toPrepareResponse(res *query.PrepareResult) *prepareResponse {
	out := &prepareResponse{
		Blob:      res.Blob,
		Table:     res.Table,
		Kind:      res.Kind.String(),
		Variables: make([]wireVariable, len(res.Variables)),
		Capacity:  res.Capacity,
	}
	for i, v := range res.Variables {
		out.Variables[i] = wireVariable{Name: v.Name, Type: v.Type.String(), Declared: v.Declared}
	}
	return out
}

func (r *prepareResponse) result() (*query.PrepareResult, error) {
	kind, err := parseKind(r.Kind)
	if err != nil {
		return nil, nosqlerr.Server(err, "invalid prepare response")
	}
	res := &query.PrepareResult{
		Blob:      r.Blob,
		Table:     r.Table,
		Kind:      kind,
		Variables: make([]parser.Variable, len(r.Variables)),
		Capacity:  r.Capacity,
	}
	for i, v := range r.Variables {
		t, err := parseType(v.Type)
		if err != nil {
			return nil, nosqlerr.Server(err, "invalid prepare response")
		}
		res.Variables[i] = parser.Variable{Name: v.Name, Type: t, Declared: v.Declared}
	}
	return res, nil
}
