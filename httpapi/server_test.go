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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/testkit"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, cfg *config.Config) (*query.Client, *httptest.Server) {
	if cfg == nil {
		cfg = config.Default()
	}
	store := testkit.NewUsersStore(t, cfg)
	ts := httptest.NewServer(NewServer(store, cfg.Server).Handler())
	return query.NewClient(NewClient(ts.URL, ts.Client()), cfg), ts
}

func TestPaginatedQueryOverHTTP(t *testing.T) {
	c, ts := newTestServer(t, nil)
	defer ts.Close()
	ctx := context.Background()

	ps, err := c.Prepare(ctx, "DECLARE $k INTEGER; SELECT * FROM users WHERE k = $k", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"$k"}, ps.Variables())
	typ, _ := ps.VariableType("$k")
	assert.Equal(t, types.Integer, typ)
	require.NoError(t, ps.Bind("$k", 0))

	exp := query.ExpectRows(testkit.User(1), testkit.User(3), testkit.User(5))
	res, err := c.ExecuteExpect(ctx, ps, &query.Options{Limit: 1}, exp)
	require.NoError(t, err)
	assert.Len(t, res.Calls, 3)
}

func TestWritesAndGetOverHTTP(t *testing.T) {
	c, ts := newTestServer(t, nil)
	defer ts.Close()
	ctx := context.Background()

	_, err := c.ExecuteAll(ctx, query.Text("UPDATE users SET name = 'bobby' WHERE id = 2"), nil)
	require.NoError(t, err)

	got, err := c.Get(ctx, "users", types.NewRow("id", 2), nil)
	require.NoError(t, err)
	require.NotNil(t, got.Row)
	assert.Equal(t, "bobby", testkit.Field(t, got.Row, "name").Str())
	assert.NotEmpty(t, got.Version)

	got, err = c.Get(ctx, "users", types.NewRow("id", 99), nil)
	require.NoError(t, err)
	assert.Nil(t, got.Row)
}

func TestErrorsKeepTheirCode(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Latency = 100 * time.Millisecond
	c, ts := newTestServer(t, cfg)
	defer ts.Close()
	ctx := context.Background()

	_, err := c.Prepare(ctx, "SELECT * FROM missing", nil)
	assert.True(t, nosqlerr.IsNotFound(err), "%v", err)

	_, err = c.ExecuteAll(ctx, query.Text("SELECT * FROM users"), &query.Options{Timeout: 20 * time.Millisecond})
	assert.True(t, nosqlerr.IsTimeout(err), "%v", err)

	_, err = c.ExecuteAll(ctx, query.Text("UPDATE users SET id = 7 WHERE id = 1"), nil)
	assert.True(t, nosqlerr.IsArgument(err), "%v", err)
}

func TestBadRequests(t *testing.T) {
	_, ts := newTestServer(t, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+queryRoute, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, _ := ioutil.ReadAll(resp.Body)
	assert.Contains(t, string(body), nosqlerr.IllegalArgument.String())

	resp2, err := http.Post(ts.URL+getRoute, "application/json", bytes.NewReader([]byte(`{"table":"users"}`)))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestGzipAndMetrics(t *testing.T) {
	c, ts := newTestServer(t, nil)
	defer ts.Close()
	_, err := c.ExecuteAll(context.Background(), query.Text("SELECT * FROM users"), nil)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+metricsRoute, nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	resp, err = http.Get(ts.URL + metricsRoute)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	assert.Contains(t, string(body), `nosql_query_http_requests_total{code="200",route="/v1/query"} 1`)
	assert.Contains(t, string(body), "nosql_query_http_rows_returned_total 5")
}

func TestWireOptions(t *testing.T) {
	o := query.Options{Timeout: 1500 * time.Millisecond, Consistency: query.Absolute, Limit: 3, ContinuationKey: []byte{0, 1}}
	back, err := toWireOptions(o).options()
	require.NoError(t, err)
	assert.Equal(t, o, back)

	_, err = wireOptions{Consistency: "strong"}.options()
	assert.True(t, nosqlerr.IsArgument(err))
}
