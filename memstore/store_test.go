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

package memstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsers(t *testing.T, cfg *config.Config) *Store {
	s := New(cfg)
	require.NoError(t, s.CreateTable("users", "id"))
	for i, name := range []string{"alice", "bob", "carol", "dave", "erin"} {
		_, err := s.Put("users", types.NewRow("id", i+1, "name", name, "age", 50-i*5, "k", (i%2)*5))
		require.NoError(t, err)
	}
	return s
}

func defaultOptions() query.Options {
	return query.Options{Consistency: query.Eventual, Timeout: time.Second}
}

// drain issues calls until no continuation key is returned.
func drain(t *testing.T, s *Store, req *query.QueryRequest) ([]*query.QueryResult, []*types.MapValue) {
	var results []*query.QueryResult
	var rows []*types.MapValue
	for i := 0; i < 100; i++ {
		res, err := s.Query(context.Background(), req)
		require.NoError(t, err)
		results = append(results, res)
		rows = append(rows, res.Rows...)
		if !res.HasMore() {
			return results, rows
		}
		req.Options.ContinuationKey = res.ContinuationKey
	}
	t.Fatal("query did not complete")
	return nil, nil
}

func prepare(t *testing.T, s *Store, text string) *query.PrepareResult {
	res, err := s.Prepare(context.Background(), &query.PrepareRequest{Statement: text, Options: defaultOptions()})
	require.NoError(t, err)
	return res
}

func names(rows []*types.MapValue) []string {
	var out []string
	for _, r := range rows {
		v, _ := r.Get("name")
		out = append(out, v.Str())
	}
	return out
}

func TestPrepare(t *testing.T) {
	s := newUsers(t, nil)
	res := prepare(t, s, "DECLARE $k INTEGER; SELECT * FROM users WHERE k = $k")
	assert.Equal(t, "users", res.Table)
	assert.Equal(t, parser.KindSelect, res.Kind)
	require.Len(t, res.Variables, 1)
	assert.Equal(t, "$k", res.Variables[0].Name)
	assert.Equal(t, types.Integer, res.Variables[0].Type)
	assert.Equal(t, query.Capacity{ReadKB: 2, ReadUnits: 2}, res.Capacity)

	text, err := decodeBlob(res.Blob)
	require.NoError(t, err)
	assert.Equal(t, "DECLARE $k INTEGER; SELECT * FROM users WHERE k = $k", text)

	_, err = s.Prepare(context.Background(), &query.PrepareRequest{Statement: "SELECT * FROM nope"})
	assert.True(t, nosqlerr.IsNotFound(err))

	_, err = s.Prepare(context.Background(), &query.PrepareRequest{Statement: "SELECT count(*) FROM users"})
	assert.True(t, nosqlerr.IsArgument(err))
}

func TestCreateAndDropTable(t *testing.T) {
	s := newUsers(t, nil)
	require.NoError(t, s.CreateTable("Orders", "customer", "id"))
	assert.Equal(t, []string{"Orders", "users"}, s.Tables())

	assert.True(t, nosqlerr.IsArgument(s.CreateTable("orders", "id")))
	assert.True(t, nosqlerr.IsArgument(s.CreateTable("2orders", "id")))
	assert.True(t, nosqlerr.IsArgument(s.CreateTable("items")))

	require.NoError(t, s.DropTable("users"))
	assert.Equal(t, []string{"Orders"}, s.Tables())
	assert.True(t, nosqlerr.IsNotFound(s.DropTable("users")))

	_, err := s.Prepare(context.Background(), &query.PrepareRequest{Statement: "SELECT * FROM users"})
	assert.True(t, nosqlerr.IsNotFound(err))
}

func TestSelectByLimit(t *testing.T) {
	s := newUsers(t, nil)
	p := prepare(t, s, "SELECT * FROM users WHERE k = $k")
	opts := defaultOptions()
	opts.Limit = 1
	results, rows := drain(t, s, &query.QueryRequest{
		Prepared: p.Blob,
		Bindings: map[string]types.Value{"$k": types.NewInteger(0)},
		Options:  opts,
	})

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Len(t, r.Rows, 1)
		assert.Equal(t, i < 2, r.HasMore())
	}
	assert.Equal(t, []string{"alice", "carol", "erin"}, names(rows))
}

func TestReadLimitStopsBatch(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.MaxReadKB = 1
	results, rows := drain(t, s, &query.QueryRequest{Statement: "SELECT * FROM users", Options: opts})

	assert.Len(t, rows, 5)
	assert.Len(t, results, 5)
	// the first call also pays for compiling the text
	assert.Equal(t, 3, results[0].Capacity.ReadKB)
	for _, r := range results[1:] {
		assert.Equal(t, 1, r.Capacity.ReadKB)
	}
}

func TestLargeRowsSpanCalls(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.CreateTable("docs", "id"))
	for i, body := range []string{strings.Repeat("x", 6*1024), "short", strings.Repeat("y", 3*1024)} {
		_, err := s.Put("docs", types.NewRow("id", i+1, "body", body))
		require.NoError(t, err)
	}
	overhead := s.cfg.Capacity.RowOverheadKB

	for _, text := range []string{"SELECT * FROM docs", "SELECT * FROM docs ORDER BY body"} {
		opts := defaultOptions()
		opts.MaxReadKB = 1
		p := prepare(t, s, text)
		results, rows := drain(t, s, &query.QueryRequest{Statement: text, Prepared: p.Blob, Options: opts})
		assert.Len(t, rows, 3, text)
		total := 0
		for i, r := range results {
			assert.LessOrEqual(t, r.Capacity.ReadKB, opts.MaxReadKB+overhead, "%s call %d", text, i)
			total += r.Capacity.ReadKB
		}
		assert.GreaterOrEqual(t, total, 7+1+4, text)
	}
	assert.Equal(t, int64(0), s.OpenSorts())
}

func TestWriteReadLimit(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.MaxReadKB = 1
	_, err := s.Query(context.Background(), &query.QueryRequest{Statement: "UPDATE users SET age = 1 WHERE k = 0", Options: opts})
	assert.True(t, nosqlerr.IsArgument(err))
	assert.Contains(t, err.Error(), "maxReadKB is 1")

	opts.MaxReadKB = 3
	res, err := s.Query(context.Background(), &query.QueryRequest{Statement: "UPDATE users SET age = 1 WHERE k = 0", Options: opts})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestEmptyBatchesWhileFiltering(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.MaxReadKB = 1
	results, rows := drain(t, s, &query.QueryRequest{Statement: "SELECT name FROM users WHERE age < 35", Options: opts})

	assert.Equal(t, []string{"erin"}, names(rows))
	empty := 0
	for _, r := range results {
		if len(r.Rows) == 0 {
			empty++
			assert.True(t, r.HasMore())
		}
	}
	assert.Equal(t, 4, empty)
	total := query.Capacity{}
	for _, r := range results {
		total = total.Add(r.Capacity)
	}
	assert.Equal(t, 5+2, total.ReadKB)
}

func TestAbsoluteConsistencyDoublesUnits(t *testing.T) {
	s := newUsers(t, nil)
	p := prepare(t, s, "SELECT * FROM users")
	opts := defaultOptions()
	opts.Consistency = query.Absolute
	results, _ := drain(t, s, &query.QueryRequest{Prepared: p.Blob, Options: opts})
	require.Len(t, results, 1)
	assert.Equal(t, query.Capacity{ReadKB: 5, ReadUnits: 10}, results[0].Capacity)
}

func TestOnPremIsNotMetered(t *testing.T) {
	cfg := config.Default()
	cfg.Deployment = config.DeploymentOnPrem
	s := newUsers(t, cfg)
	p := prepare(t, s, "SELECT * FROM users")
	assert.True(t, p.Capacity.IsZero())

	opts := defaultOptions()
	opts.MaxReadKB = 2
	results, rows := drain(t, s, &query.QueryRequest{Prepared: p.Blob, Options: opts})
	assert.Len(t, rows, 5)
	assert.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Capacity.IsZero())
	}
}

func TestOrderByNonKeyUsesSortBuffer(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.MaxReadKB = 2
	opts.Limit = 2
	results, rows := drain(t, s, &query.QueryRequest{Statement: "SELECT id, name FROM users ORDER BY name DESC", Options: opts})

	assert.Equal(t, []string{"erin", "dave", "carol", "bob", "alice"}, names(rows))
	// two calls collect, the third sorts and the rest emit
	assert.Len(t, results[0].Rows, 0)
	assert.Len(t, results[1].Rows, 0)
	assert.Len(t, results, 5)
	assert.Equal(t, int64(0), s.OpenSorts())
	assert.Equal(t, []string{"id", "name"}, rows[0].Keys())
}

func TestSelectLimitOffset(t *testing.T) {
	s := newUsers(t, nil)
	p := prepare(t, s, "SELECT name FROM users ORDER BY id LIMIT $n OFFSET 1")
	opts := defaultOptions()
	opts.Limit = 1
	results, rows := drain(t, s, &query.QueryRequest{
		Prepared: p.Blob,
		Bindings: map[string]types.Value{"$n": types.NewInteger(3)},
		Options:  opts,
	})
	assert.Equal(t, []string{"bob", "carol", "dave"}, names(rows))
	assert.Len(t, results, 3)

	_, rows = drain(t, s, &query.QueryRequest{Statement: "SELECT name FROM users ORDER BY age LIMIT 2", Options: defaultOptions()})
	assert.Equal(t, []string{"erin", "dave"}, names(rows))
}

func TestMemoryLimit(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.CreateTable("blobs", "id"))
	payload := strings.Repeat("x", 1000)
	for i := 0; i < 1200; i++ {
		_, err := s.Put("blobs", types.NewRow("id", i, "payload", payload, "rank", 1200-i))
		require.NoError(t, err)
	}
	opts := defaultOptions()
	opts.MaxMemoryMB = 1
	var err error
	req := &query.QueryRequest{Statement: "SELECT * FROM blobs ORDER BY rank", Options: opts}
	for i := 0; i < 100; i++ {
		var res *query.QueryResult
		if res, err = s.Query(context.Background(), req); err != nil || !res.HasMore() {
			break
		}
		req.Options.ContinuationKey = res.ContinuationKey
	}
	require.Error(t, err)
	assert.Equal(t, nosqlerr.MemoryLimitExceeded, nosqlerr.CodeOf(err))
	assert.Equal(t, int64(0), s.OpenSorts())
}

func TestWrites(t *testing.T) {
	s := newUsers(t, nil)
	ctx := context.Background()
	key := types.NewRow("id", 2)

	before, err := s.Get(ctx, &query.GetRequest{Table: "users", Key: key})
	require.NoError(t, err)
	require.NotNil(t, before.Row)

	p := prepare(t, s, "UPDATE users SET age = age + 1 WHERE id = $id")
	res, err := s.Query(ctx, &query.QueryRequest{
		Prepared: p.Blob,
		Bindings: map[string]types.Value{"$id": types.NewInteger(2)},
		Options:  defaultOptions(),
	})
	require.NoError(t, err)
	assert.False(t, res.HasMore())
	require.Len(t, res.Rows, 1)
	n, _ := res.Rows[0].Get(NumRowsUpdated)
	assert.True(t, n.Equals(types.NewInteger(1)))
	assert.Equal(t, 5, res.Capacity.ReadKB)
	assert.Equal(t, 1, res.Capacity.WriteKB)
	assert.Equal(t, 1, res.Capacity.WriteUnits)

	after, err := s.Get(ctx, &query.GetRequest{Table: "users", Key: key})
	require.NoError(t, err)
	age, _ := after.Row.Get("age")
	assert.True(t, age.Equals(types.NewLong(46)))
	assert.NotEqual(t, before.Version, after.Version)

	res, err = s.Query(ctx, &query.QueryRequest{Statement: "INSERT INTO users (id, name, age, k) VALUES (6, 'frank', 20, 5), (1, 'dup', 1, 1)", Options: defaultOptions()})
	require.NoError(t, err)
	n, _ = res.Rows[0].Get(NumRowsInserted)
	assert.True(t, n.Equals(types.NewInteger(1)))

	res, err = s.Query(ctx, &query.QueryRequest{Statement: "DELETE FROM users WHERE k = 5", Options: defaultOptions()})
	require.NoError(t, err)
	n, _ = res.Rows[0].Get(NumRowsDeleted)
	assert.True(t, n.Equals(types.NewInteger(3)))
	count, err := s.Len("users")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = s.Query(ctx, &query.QueryRequest{Statement: "UPDATE users SET id = 9 WHERE id = 1", Options: defaultOptions()})
	assert.True(t, nosqlerr.IsArgument(err))

	missing, err := s.Get(ctx, &query.GetRequest{Table: "users", Key: types.NewRow("id", 42)})
	require.NoError(t, err)
	assert.Nil(t, missing.Row)
	assert.Nil(t, missing.Version)
}

func TestWriteLimit(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.MaxWriteKB = 2
	_, err := s.Query(context.Background(), &query.QueryRequest{Statement: "UPDATE users SET k = 1", Options: opts})
	assert.True(t, nosqlerr.IsArgument(err))
	_, rows := drain(t, s, &query.QueryRequest{Statement: "SELECT name FROM users WHERE k = 1", Options: defaultOptions()})
	assert.Empty(t, rows)
}

func TestLatencyHonorsContext(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Latency = 200 * time.Millisecond
	s := newUsers(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := s.Query(ctx, &query.QueryRequest{Statement: "SELECT * FROM users", Options: defaultOptions()})
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestBadContinuationKey(t *testing.T) {
	s := newUsers(t, nil)
	opts := defaultOptions()
	opts.ContinuationKey = []byte{9, 9, 9}
	_, err := s.Query(context.Background(), &query.QueryRequest{Statement: "SELECT * FROM users", Options: opts})
	assert.True(t, nosqlerr.IsArgument(err))
}

func TestMissingBinding(t *testing.T) {
	s := newUsers(t, nil)
	p := prepare(t, s, "SELECT * FROM users WHERE id = $id")
	_, err := s.Query(context.Background(), &query.QueryRequest{Prepared: p.Blob, Options: defaultOptions()})
	assert.True(t, nosqlerr.IsArgument(err))
}

func TestCursorEncoding(t *testing.T) {
	c := &cursor{
		phase:     phaseEmit,
		lastKey:   []types.Value{types.NewLong(7), types.NewString("x")},
		matched:   3,
		returned:  2,
		sortID:    11,
		emitted:   2,
		partialKB: 3,
	}
	b, err := c.encode()
	require.NoError(t, err)
	d, err := decodeCursor(b)
	require.NoError(t, err)
	assert.Equal(t, c.phase, d.phase)
	assert.Equal(t, c.matched, d.matched)
	assert.Equal(t, c.sortID, d.sortID)
	assert.Equal(t, c.partialKB, d.partialKB)
	require.Len(t, d.lastKey, 2)
	assert.True(t, d.lastKey[0].Equals(types.NewLong(7)))

	_, err = decodeCursor(b[:len(b)-2])
	assert.Error(t, err)
}
