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
	"strings"
	"time"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
)

type Consistency int

const (
	Eventual Consistency = iota + 1
	Absolute
)

func (c Consistency) String() string {
	switch c {
	case Eventual:
		return "EVENTUAL"
	case Absolute:
		return "ABSOLUTE"
	}
	return "UNKNOWN"
}

// ReadUnitMultiplier is the factor applied to read units consumed under c.
func (c Consistency) ReadUnitMultiplier() int {
	if c == Absolute {
		return 2
	}
	return 1
}

func ParseConsistency(s string) (Consistency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EVENTUAL", "":
		return Eventual, nil
	case "ABSOLUTE":
		return Absolute, nil
	}
	return 0, nosqlerr.Argument("unknown consistency '%s'", s)
}

// Options are the per request settings. Zero fields take the client defaults.
// Timeout bounds the wall clock time of one call and Limit the number of rows
// returned by one call. ContinuationKey resumes a previous execution, it is only
// used for the first call of an execution.
type Options struct {
	Timeout         time.Duration
	Consistency     Consistency
	Limit           int
	MaxReadKB       int
	MaxWriteKB      int
	MaxMemoryMB     int
	TraceLevel      int
	ContinuationKey []byte
	Compartment     string
}

func (o Options) Clone() Options {
	c := o
	if o.ContinuationKey != nil {
		c.ContinuationKey = append([]byte(nil), o.ContinuationKey...)
	}
	return c
}

// resolveOptions fills unset fields from defaults and validates the result against limits.
func resolveOptions(in *Options, d config.QueryDefaults, limits config.Limits) (Options, error) {
	var o Options
	if in != nil {
		o = in.Clone()
	}
	if o.Timeout < 0 {
		return o, nosqlerr.Argument("timeout must be positive, got %v", o.Timeout)
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.Consistency == 0 {
		c, err := ParseConsistency(d.Consistency)
		if err != nil {
			return o, err
		}
		o.Consistency = c
	}
	if o.Consistency != Eventual && o.Consistency != Absolute {
		return o, nosqlerr.Argument("invalid consistency %d", int(o.Consistency))
	}
	if o.Limit == 0 {
		o.Limit = d.Limit
	}
	if o.MaxReadKB == 0 {
		o.MaxReadKB = d.MaxReadKB
	}
	if o.MaxWriteKB == 0 {
		o.MaxWriteKB = d.MaxWriteKB
	}
	if o.MaxMemoryMB == 0 {
		o.MaxMemoryMB = d.MaxMemoryMB
	}
	if o.TraceLevel == 0 {
		o.TraceLevel = d.TraceLevel
	}
	if o.Compartment == "" {
		o.Compartment = d.Compartment
	}

	switch {
	case o.Limit < 0:
		return o, nosqlerr.Argument("limit can not be negative, got %d", o.Limit)
	case o.MaxReadKB < 0 || o.MaxReadKB > limits.MaxReadKB:
		return o, nosqlerr.Argument("maxReadKB must be in [0, %d], got %d", limits.MaxReadKB, o.MaxReadKB)
	case o.MaxWriteKB < 0 || o.MaxWriteKB > limits.MaxWriteKB:
		return o, nosqlerr.Argument("maxWriteKB must be in [0, %d], got %d", limits.MaxWriteKB, o.MaxWriteKB)
	case o.MaxMemoryMB < 0 || o.MaxMemoryMB > limits.MaxMemoryMB:
		return o, nosqlerr.Argument("maxMemoryMB must be in [0, %d], got %d", limits.MaxMemoryMB, o.MaxMemoryMB)
	case o.TraceLevel < 0 || o.TraceLevel > limits.MaxTraceLevel:
		return o, nosqlerr.Argument("traceLevel must be in [0, %d], got %d", limits.MaxTraceLevel, o.TraceLevel)
	}
	return o, nil
}
