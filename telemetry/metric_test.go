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

package telemetry

import (
	"context"
	"io/ioutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/global"
)

func TestBuildMetricName(t *testing.T) {
	var name string
	name = BuildMetricName("a_")
	assert.Equal(t, "a", name)

	name = BuildMetricName("_-a._")
	assert.Equal(t, "a", name)

	name = BuildMetricName("db", "A")
	assert.Equal(t, "db_a", name)

	name = BuildMetricName("db", "AbcEdf")
	assert.Equal(t, "db_abc_edf", name)

	name = BuildMetricName("db", "...AbcEdf...")
	assert.Equal(t, "db_abc_edf", name)

	name = BuildMetricName("query.calls", "", "SELECT")
	assert.Equal(t, "query_calls_select", name)

	assert.Panics(t, func() { BuildMetricName() })
}

func TestGetMeterIsCached(t *testing.T) {
	a := GetMeter("telemetry-test")
	b := GetMeter("telemetry-test")
	assert.Same(t, a, b)

	c1 := a.NewInt64Counter("test_counter", "counter")
	c2 := b.NewInt64Counter("test_counter", "counter")
	assert.Equal(t, c1, c2)
	c1.Add(context.Background(), 1)
}

func TestMultiDurationValueRecorder(t *testing.T) {
	r := GetMeter("telemetry-test").NewMultiDurationValueRecorder("latency", "latency by kind")
	r.Record(context.Background(), "Select", time.Millisecond)
	r.RecordLatency(context.Background(), "SELECT", time.Now())
	r.Record(context.Background(), "Update", time.Millisecond)
	assert.Equal(t, 2, r.size())
	assert.Same(t, r, GetMeter("telemetry-test").NewMultiDurationValueRecorder("latency", ""))
}

func TestStartAndShutdown(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Start(ctx, time.Hour, ioutil.Discard))
	assert.Equal(t, pusher.MeterProvider(), global.GetMeterProvider())
	assert.Equal(t, tracer, otel.GetTracerProvider())
	assert.Error(t, Start(ctx, time.Hour, ioutil.Discard))
	Shutdown()
	assert.NoError(t, Start(ctx, 0, ioutil.Discard))
	Shutdown()
}
