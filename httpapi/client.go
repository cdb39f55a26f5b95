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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
)

var _ query.Transport = (*Client)(nil)

// Client is a query.Transport talking to a Server.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a transport for endpoint, e.g. http://127.0.0.1:8080. A nil
// httpClient uses http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     httpClient,
	}
}

func (c *Client) Prepare(ctx context.Context, req *query.PrepareRequest) (*query.PrepareResult, error) {
	var resp prepareResponse
	in := prepareRequest{Statement: req.Statement, Options: toWireOptions(req.Options)}
	if err := c.post(ctx, prepareRoute, in, &resp); err != nil {
		return nil, err
	}
	return resp.result()
}

func (c *Client) Query(ctx context.Context, req *query.QueryRequest) (*query.QueryResult, error) {
	var resp queryResponse
	in := queryRequest{
		Statement: req.Statement,
		Prepared:  req.Prepared,
		Bindings:  req.Bindings,
		Options:   toWireOptions(req.Options),
	}
	if err := c.post(ctx, queryRoute, in, &resp); err != nil {
		return nil, err
	}
	return &query.QueryResult{
		Rows:            resp.Rows,
		Capacity:        resp.Capacity,
		ContinuationKey: resp.ContinuationKey,
	}, nil
}

func (c *Client) Get(ctx context.Context, req *query.GetRequest) (*query.GetResult, error) {
	var resp getResponse
	in := getRequest{
		Table:       req.Table,
		Key:         req.Key,
		Compartment: req.Compartment,
	}
	if req.Consistency != 0 {
		in.Consistency = req.Consistency.String()
	}
	if err := c.post(ctx, getRoute, in, &resp); err != nil {
		return nil, err
	}
	return &query.GetResult{Row: resp.Row, Version: resp.Version, Capacity: resp.Capacity}, nil
}

func (c *Client) post(ctx context.Context, route string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return nosqlerr.Argument("can not encode request: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+route, bytes.NewReader(body))
	if err != nil {
		return nosqlerr.Argument("invalid endpoint %s: %v", c.endpoint, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if err := json.Unmarshal(data, &e); err != nil || e.Code == "" {
			return nosqlerr.Server(fmt.Errorf("status %d", resp.StatusCode), "%s failed", route)
		}
		return nosqlerr.New(nosqlerr.ParseCode(e.Code), "%s", e.Message)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nosqlerr.Server(err, "invalid response from %s", route)
	}
	return nil
}
