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
	"fmt"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"go.uber.org/multierr"
)

// Accountant aggregates consumed capacity across the calls of an execution and
// checks the aggregate once the execution completes. Single calls are not
// checked against row counts because the engine may batch work across calls.
type Accountant struct {
	metered  bool
	capacity config.Capacity
}

func NewAccountant(deployment config.Deployment, capacity config.Capacity) *Accountant {
	return &Accountant{
		metered:  deployment.Metered(),
		capacity: capacity,
	}
}

// Metered reports whether capacity bounds are checked at all.
func (a *Accountant) Metered() bool {
	return a.metered
}

func (a *Accountant) Accumulate(state *ExecutionState, c Capacity) {
	state.calls = append(state.calls, c)
	state.total = state.total.Add(c)
}

// callSite tells the accountant how the first call of an execution was issued.
type callSite struct {
	// compiled is false for a statement text compiled by the first call.
	compiled bool
	resumed  bool
	readOnly bool
}

// Verify checks the aggregate capacity of a completed execution. Every
// violated bound is reported.
func (a *Accountant) Verify(state *ExecutionState, opts Options, exp *Expectation, site callSite) error {
	if !a.metered || state.NumCalls() == 0 {
		return nil
	}
	var err error
	total := state.Capacity()

	if opts.MaxReadKB > 0 {
		first := state.Calls()[0]
		bound := opts.MaxReadKB + a.capacity.RowOverheadKB
		if !site.compiled && !site.resumed {
			bound += a.capacity.PrepareCostKB
		}
		if first.ReadKB > bound {
			err = multierr.Append(err, fmt.Errorf("first call read %d KB, exceeds bound %d KB (maxReadKB %d)", first.ReadKB, bound, opts.MaxReadKB))
		}
	}

	if exp == nil {
		return violated(err)
	}

	examined := exp.examined(site.readOnly)
	if total.ReadKB < examined {
		err = multierr.Append(err, fmt.Errorf("read %d KB for %d examined rows", total.ReadKB, examined))
	}
	if minUnits := examined * opts.Consistency.ReadUnitMultiplier(); total.ReadUnits < minUnits {
		err = multierr.Append(err, fmt.Errorf("read %d units for %d examined rows at %v, expected at least %d", total.ReadUnits, examined, opts.Consistency, minUnits))
	}
	if exp.RowsWritten > 0 {
		if total.WriteKB < exp.RowsWritten || total.WriteUnits < exp.RowsWritten {
			err = multierr.Append(err, fmt.Errorf("wrote %d KB / %d units for %d written rows", total.WriteKB, total.WriteUnits, exp.RowsWritten))
		}
	} else if total.WriteKB != 0 || total.WriteUnits != 0 {
		err = multierr.Append(err, fmt.Errorf("wrote %d KB / %d units without writing rows", total.WriteKB, total.WriteUnits))
	}
	return violated(err)
}

func violated(err error) error {
	if err == nil {
		return nil
	}
	return nosqlerr.Fatal("capacity invariant violated: %v", err)
}
