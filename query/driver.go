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
	"sync/atomic"
	"time"

	"github.com/cznic/mathutil"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/label"
)

type State int32

const (
	Ready State = iota
	AwaitingResponse
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case AwaitingResponse:
		return "AWAITING_RESPONSE"
	case Done:
		return "DONE"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Result is the outcome of a completed execution. Calls holds the capacity of
// each call and Batches its row count.
type Result struct {
	Rows     []*types.MapValue
	Capacity Capacity
	Calls    []Capacity
	Batches  []int
}

// Driver runs one execution as a sequence of calls, each resuming from the
// continuation key of the previous one. Calls are strictly sequential and a
// failed call is never retried. A driver is not safe for concurrent use.
type Driver struct {
	client    *Client
	req       *QueryRequest
	info      statementInfo
	opts      Options
	exp       *Expectation
	assembler *Assembler
	state     int32
	exec      ExecutionState
	maxCalls  int
	resumed   bool
	err       error
	started   time.Time
	zeroRows  *logging.ThrottledLogger
}

func newDriver(c *Client, req *QueryRequest, info statementInfo, opts Options, exp *Expectation) *Driver {
	d := &Driver{
		client:    c,
		req:       req,
		info:      info,
		opts:      opts,
		exp:       exp,
		assembler: NewAssembler(exp),
		resumed:   len(opts.ContinuationKey) > 0,
		zeroRows:  logging.NewThrottledLogger("zero-row-batch", c.logger, c.cfg.Pagination.ZeroRowWarnInterval),
	}
	d.exec.token = opts.ContinuationKey
	d.maxCalls = d.callBound()
	return d
}

// callBound caps the number of calls. With an expectation the cap is a multiple
// of the rows the execution returns or examines, otherwise the configured maximum.
func (d *Driver) callBound() int {
	p := d.client.cfg.Pagination
	if d.exp == nil {
		return p.MaxCalls
	}
	n := mathutil.Max(d.exp.examined(!d.info.kind.IsWrite()), 1)
	if d.exp.Rows != nil {
		n = mathutil.Max(n, len(d.exp.Rows))
	}
	return p.GuardMultiplier * n
}

func (d *Driver) State() State {
	return State(atomic.LoadInt32(&d.state))
}

func (d *Driver) setState(s State) {
	atomic.StoreInt32(&d.state, int32(s))
}

// Err returns the error that moved the driver to FAILED.
func (d *Driver) Err() error {
	return d.err
}

// Execution exposes the accumulated state. It must not be modified.
func (d *Driver) Execution() *ExecutionState {
	return &d.exec
}

// Next issues one call and returns its result. The driver is DONE after the call
// that returns no continuation key and FAILED after any error, both refuse
// further calls.
func (d *Driver) Next(ctx context.Context) (*QueryResult, error) {
	switch d.State() {
	case Done:
		return nil, nosqlerr.Argument("execution is complete")
	case Failed:
		return nil, nosqlerr.Argument("execution failed: %v", d.err)
	case AwaitingResponse:
		return nil, nosqlerr.Argument("a call is already in progress")
	}
	if d.started.IsZero() {
		d.started = time.Now()
	}
	d.setState(AwaitingResponse)

	res, err := d.call(ctx)
	if err != nil {
		return nil, d.fail(ctx, err)
	}

	more := res.HasMore()
	d.client.acct.Accumulate(&d.exec, res.Capacity)
	if err = d.assembler.Append(&d.exec, res.Rows, more); err != nil {
		return nil, d.fail(ctx, err)
	}

	if !more {
		d.exec.token = nil
		if err = d.complete(ctx); err != nil {
			return nil, d.fail(ctx, err)
		}
		return res, nil
	}

	d.exec.token = res.ContinuationKey
	if len(res.Rows) == 0 {
		d.zeroRows.Warningf("call %d on %s returned no rows with a continuation key", d.exec.NumCalls(), d.info.table)
	}
	if d.exec.NumCalls() >= d.maxCalls {
		return nil, d.fail(ctx, nosqlerr.Fatal("execution on %s did not complete after %d calls", d.info.table, d.exec.NumCalls()))
	}
	d.setState(Ready)
	return res, nil
}

func (d *Driver) call(ctx context.Context) (*QueryResult, error) {
	req := *d.req
	req.Options = d.opts.Clone()
	req.Options.ContinuationKey = d.exec.token

	callCtx, cancel := context.WithTimeout(ctx, req.Options.Timeout)
	defer cancel()
	callCtx, span := tracer.Start(callCtx, "query.call")
	defer span.End()
	span.SetAttributes(
		label.String("table", d.info.table),
		label.Int("call", d.exec.NumCalls()+1),
	)

	start := time.Now()
	res, err := d.client.transport.Query(callCtx, &req)
	if err == nil && callCtx.Err() == context.DeadlineExceeded {
		err = context.DeadlineExceeded
	}
	if err == nil && res == nil {
		err = nosqlerr.Server(nil, "query on %s returned no result", d.info.table)
	}
	if err != nil {
		err = nosqlerr.FromTransport(err, "query")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(label.Int("rows", len(res.Rows)), label.Bool("more", res.HasMore()))
	d.client.stats.recordCall(ctx, start, res, d.info.table)
	if req.Options.TraceLevel > 0 {
		d.client.logger.Debugf("call %d on %s: %d rows, capacity %+v, more: %v",
			d.exec.NumCalls()+1, d.info.table, len(res.Rows), res.Capacity, res.HasMore())
	}
	return res, nil
}

func (d *Driver) complete(ctx context.Context) error {
	if _, err := d.assembler.Finalize(&d.exec); err != nil {
		return err
	}
	site := callSite{
		compiled: d.info.compiled,
		resumed:  d.resumed,
		readOnly: !d.info.kind.IsWrite(),
	}
	if err := d.client.acct.Verify(&d.exec, d.opts, d.exp, site); err != nil {
		return err
	}
	d.setState(Done)
	d.client.stats.recordExecution(ctx, d.info.kind.String(), d.started)
	return nil
}

func (d *Driver) fail(ctx context.Context, err error) error {
	d.err = err
	d.setState(Failed)
	d.client.stats.recordFailure(ctx, err)
	if nosqlerr.IsFatal(err) {
		d.client.logger.Errorf("execution on %s halted after %d calls: %v", d.info.table, d.exec.NumCalls(), err)
	}
	return err
}

// Run issues calls until the execution completes and returns the merged result.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	for d.State() != Done {
		if _, err := d.Next(ctx); err != nil {
			return nil, err
		}
	}
	return d.Result(), nil
}

// Result returns the merged result of a DONE driver, nil otherwise.
func (d *Driver) Result() *Result {
	if d.State() != Done {
		return nil
	}
	return &Result{
		Rows:     d.exec.rows,
		Capacity: d.exec.total,
		Calls:    d.exec.calls,
		Batches:  d.exec.batches,
	}
}
