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

package query_test

import (
	"context"
	"strings"
	"testing"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/memstore"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/testkit"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestPreparedSelectOneRowPerCall(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	ctx := context.Background()

	ps, err := c.Prepare(ctx, "DECLARE $k INTEGER; SELECT * FROM users WHERE k = $k", nil)
	require.NoError(t, err)
	require.NoError(t, ps.Bind("k", 0))

	exp := query.ExpectRows(testkit.User(1), testkit.User(3), testkit.User(5))
	res, err := c.ExecuteExpect(ctx, ps, &query.Options{Limit: 1}, exp)
	require.NoError(t, err)
	assert.Len(t, res.Calls, 3)
	assert.Equal(t, []int{1, 1, 1}, res.Batches)

	// bindings stay usable for another execution
	require.NoError(t, ps.Bind("k", 5))
	res, err = c.ExecuteAll(ctx, ps, nil)
	require.NoError(t, err)
	testkit.AssertRowsInOrder(t, []*types.MapValue{testkit.User(2), testkit.User(4)}, res.Rows)
}

func TestReadLimitBoundsFirstCall(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	opts := &query.Options{MaxReadKB: 1}

	res, err := c.ExecuteExpect(context.Background(), query.Text("SELECT * FROM users"), opts, query.ExpectRows(testkit.Users()...))
	require.NoError(t, err)
	require.Len(t, res.Calls, 5)
	capacity := c.Config().Capacity
	assert.LessOrEqual(t, res.Calls[0].ReadKB, opts.MaxReadKB+capacity.RowOverheadKB+capacity.PrepareCostKB)
	assert.Equal(t, 7, res.Capacity.ReadKB)
}

func TestRowsLargerThanTheReadLimit(t *testing.T) {
	c, store := testkit.NewClient(t, nil)
	require.NoError(t, store.CreateTable("docs", "id"))
	large := types.NewRow("id", 1, "body", strings.Repeat("x", 6*1024))
	small := types.NewRow("id", 2, "body", "short")
	for _, row := range []*types.MapValue{large, small} {
		_, err := store.Put("docs", row)
		require.NoError(t, err)
	}

	ctx := context.Background()
	ps, err := c.Prepare(ctx, "SELECT * FROM docs", nil)
	require.NoError(t, err)
	opts := &query.Options{MaxReadKB: 1}
	res, err := c.ExecuteExpect(ctx, ps, opts, query.ExpectRows(large, small))
	require.NoError(t, err)

	bound := opts.MaxReadKB + c.Config().Capacity.RowOverheadKB
	for i, call := range res.Calls {
		assert.LessOrEqual(t, call.ReadKB, bound, "call %d", i)
	}
	assert.Greater(t, len(res.Calls), 2)
	assert.GreaterOrEqual(t, res.Capacity.ReadKB, 7)
}

func TestEmptyBatchesAreWarnedOnce(t *testing.T) {
	logger, logs := testkit.NewObservedLogger()
	c, _ := testkit.NewClient(t, nil, query.WithLogger(logger))

	exp := query.ExpectRows(types.NewRow("name", "erin")).Examined(5)
	res, err := c.ExecuteExpect(context.Background(), query.Text("SELECT name FROM users WHERE age < 35"), &query.Options{MaxReadKB: 1}, exp)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 1}, res.Batches)
	assert.Equal(t, 1, testkit.CountLevel(logs, zapcore.WarnLevel))
}

func TestAbsoluteConsistency(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	ctx := context.Background()
	ps, err := c.Prepare(ctx, "SELECT * FROM users", nil)
	require.NoError(t, err)

	opts := &query.Options{Consistency: query.Absolute}
	res, err := c.ExecuteExpect(ctx, ps, opts, query.ExpectRows(testkit.Users()...))
	require.NoError(t, err)
	assert.Equal(t, 2*res.Capacity.ReadKB, res.Capacity.ReadUnits)
}

func TestUpdateThenGet(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	ctx := context.Background()

	ps, err := c.Prepare(ctx, "DECLARE $id INTEGER; UPDATE users SET age = age + 1 WHERE id = $id", nil)
	require.NoError(t, err)
	require.NoError(t, ps.BindAll(map[string]interface{}{"$id": 2}))

	exp := query.ExpectRows(types.NewRow(memstore.NumRowsUpdated, 1)).Examined(5).Written(1)
	res, err := c.ExecuteExpect(ctx, ps, nil, exp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Capacity.WriteUnits)

	got, err := c.Get(ctx, testkit.UsersTable, types.NewRow("id", 2), &query.Options{Consistency: query.Absolute})
	require.NoError(t, err)
	assert.True(t, testkit.Field(t, got.Row, "age").Equals(types.NewLong(46)))
	assert.Len(t, got.Version, 8)
}

func TestResumeFromContinuationKey(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	ctx := context.Background()

	d, err := c.NewDriver(query.Text("SELECT * FROM users"), &query.Options{Limit: 2}, nil)
	require.NoError(t, err)
	first, err := d.Next(ctx)
	require.NoError(t, err)
	require.True(t, first.HasMore())
	testkit.AssertRowsInOrder(t, testkit.Users()[:2], first.Rows)

	res, err := c.ExecuteExpect(ctx, query.Text("SELECT * FROM users"),
		&query.Options{Limit: 2, ContinuationKey: first.ContinuationKey}, query.ExpectRows(testkit.Users()[2:]...))
	require.NoError(t, err)
	assert.Len(t, res.Calls, 2)
	assert.Equal(t, query.Ready, d.State())
}

func TestSortedExecution(t *testing.T) {
	c, _ := testkit.NewClient(t, nil)
	var want []*types.MapValue
	for _, id := range []int{5, 4, 3, 2, 1} {
		u := testkit.User(id)
		want = append(want, types.NewRow("id", id, "name", testkit.Field(t, u, "name").Str()))
	}
	res, err := c.ExecuteExpect(context.Background(), query.Text("SELECT id, name FROM users ORDER BY name DESC"),
		&query.Options{Limit: 2, MaxReadKB: 2}, query.ExpectRows(want...))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Batches[0])
}

func TestOnPremSkipsCapacityChecks(t *testing.T) {
	cfg := config.Default()
	cfg.Deployment = config.DeploymentOnPrem
	c, _ := testkit.NewClient(t, cfg)

	res, err := c.ExecuteExpect(context.Background(), query.Text("SELECT * FROM users"), nil, query.ExpectRows(testkit.Users()...).Unordered("id"))
	require.NoError(t, err)
	assert.True(t, res.Capacity.IsZero())
}
