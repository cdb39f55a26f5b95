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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/httpapi"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
)

// bindFlags collects repeated -bind name=value flags.
type bindFlags map[string]interface{}

func (b bindFlags) String() string {
	return fmt.Sprint(map[string]interface{}(b))
}

func (b bindFlags) Set(s string) error {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return fmt.Errorf("binding must be name=value, got '%s'", s)
	}
	b[s[:i]] = parseLiteral(s[i+1:])
	return nil
}

// parseLiteral reads integers, floats and booleans, anything else is a string.
func parseLiteral(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if i == int64(int(i)) {
			return int(i)
		}
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.Trim(s, "'\"")
}

type queryRun struct {
	statement   string
	bindings    bindFlags
	limit       int
	maxReadKB   int
	consistency string
}

func (r *queryRun) options() (*query.Options, error) {
	opts := &query.Options{Limit: r.limit, MaxReadKB: r.maxReadKB}
	if r.consistency != "" {
		c, err := query.ParseConsistency(r.consistency)
		if err != nil {
			return nil, err
		}
		opts.Consistency = c
	}
	return opts, nil
}

// execute runs the statement call by call, writing every row as a JSON line to out.
func (r *queryRun) execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	opts, err := r.options()
	if err != nil {
		return err
	}
	client := query.NewClient(httpapi.NewClient(cfg.Server.Endpoint, nil), cfg)

	var stmt query.Statement = query.Text(r.statement)
	if len(r.bindings) > 0 {
		ps, err := client.Prepare(ctx, r.statement, opts)
		if err != nil {
			return nosqlerr.Wrap(err, "prepare")
		}
		if err = ps.BindAll(map[string]interface{}(r.bindings)); err != nil {
			return err
		}
		stmt = ps
	}

	d, err := client.NewDriver(stmt, opts, nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for d.State() != query.Done {
		res, err := d.Next(ctx)
		if err != nil {
			return nosqlerr.Wrapf(err, "call %d", d.Execution().NumCalls()+1)
		}
		for _, row := range res.Rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
	}
	total := d.Execution().Capacity()
	logger.Infof("%d rows in %d calls, read %d KB / %d units, wrote %d KB / %d units",
		len(d.Execution().Rows()), d.Execution().NumCalls(), total.ReadKB, total.ReadUnits, total.WriteKB, total.WriteUnits)
	return nil
}
