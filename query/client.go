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
	"strings"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

var logger = logging.GetLogger("query")

// Client prepares statements and runs executions over a Transport.
type Client struct {
	transport Transport
	cfg       *config.Config
	acct      *Accountant
	stats     *stats
	logger    logging.StandardLogger
}

type ClientOption func(*Client)

func WithLogger(l logging.StandardLogger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client. A nil cfg uses config.Default().
func NewClient(transport Transport, cfg *config.Config, opts ...ClientOption) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Client{
		transport: transport,
		cfg:       cfg,
		acct:      NewAccountant(cfg.Deployment, cfg.Capacity),
		stats:     newStats(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Config() *config.Config {
	return c.cfg
}

func (c *Client) Options(opts *Options) (Options, error) {
	return resolveOptions(opts, c.cfg.Query, c.cfg.Limits)
}

// Prepare compiles a statement. Malformed text is rejected before any remote call.
func (c *Client) Prepare(ctx context.Context, text string, opts *Options) (*PreparedStatement, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nosqlerr.Argument("statement text can not be empty")
	}
	if _, err := parser.Parse(text); err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}
	o, err := c.Options(opts)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	res, err := c.transport.Prepare(callCtx, &PrepareRequest{Statement: text, Options: o})
	if err != nil {
		err = nosqlerr.FromTransport(err, "prepare")
		c.stats.recordFailure(ctx, err)
		return nil, err
	}
	if o.TraceLevel > 0 {
		c.logger.Debugf("prepared '%s' on table %s, variables: %v, capacity: %+v", text, res.Table, res.Variables, res.Capacity)
	}
	return newPreparedStatement(text, res), nil
}

// NewDriver creates a driver for one execution of stmt. exp may be nil.
func (c *Client) NewDriver(stmt Statement, opts *Options, exp *Expectation) (*Driver, error) {
	if ps, ok := stmt.(*PreparedStatement); stmt == nil || (ok && ps == nil) {
		return nil, nosqlerr.Argument("statement can not be null")
	}
	o, err := c.Options(opts)
	if err != nil {
		return nil, err
	}
	req, info, err := stmt.newRequest()
	if err != nil {
		return nil, err
	}
	return newDriver(c, req, info, o, exp), nil
}

// ExecuteAll runs stmt until the engine returns no continuation key.
func (c *Client) ExecuteAll(ctx context.Context, stmt Statement, opts *Options) (*Result, error) {
	return c.ExecuteExpect(ctx, stmt, opts, nil)
}

// ExecuteExpect runs stmt and verifies the rows and consumed capacity against exp.
func (c *Client) ExecuteExpect(ctx context.Context, stmt Statement, opts *Options, exp *Expectation) (*Result, error) {
	d, err := c.NewDriver(stmt, opts, exp)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx)
}

// Get reads one row by primary key.
func (c *Client) Get(ctx context.Context, table string, key *types.MapValue, opts *Options) (*GetResult, error) {
	if strings.TrimSpace(table) == "" {
		return nil, nosqlerr.Argument("table name can not be empty")
	}
	if key.Len() == 0 {
		return nil, nosqlerr.Argument("primary key can not be empty")
	}
	o, err := c.Options(opts)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	res, err := c.transport.Get(callCtx, &GetRequest{
		Table:       table,
		Key:         key,
		Consistency: o.Consistency,
		Compartment: o.Compartment,
	})
	if err != nil {
		return nil, nosqlerr.FromTransport(err, "get")
	}
	return res, nil
}
