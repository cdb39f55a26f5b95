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
	"time"

	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/label"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "nosql-query"

var tracer = otel.Tracer(instrumentationName)

type stats struct {
	calls         metric.Int64Counter
	rows          metric.Int64Counter
	readKB        metric.Int64Counter
	writeKB       metric.Int64Counter
	violations    metric.Int64Counter
	failures      metric.Int64Counter
	batchRows     metric.Int64ValueRecorder
	callLatency   telemetry.DurationValueRecorder
	executionTime telemetry.DurationCounter
	kindLatency   *telemetry.MultiDurationValueRecorder
}

func newStats() *stats {
	m := telemetry.GetMeter(instrumentationName)
	return &stats{
		calls:         m.NewInt64Counter(telemetry.BuildMetricName("query", "calls"), "query calls issued"),
		rows:          m.NewInt64Counter(telemetry.BuildMetricName("query", "rows"), "rows returned"),
		readKB:        m.NewInt64Counter(telemetry.BuildMetricName("query", "readKB"), "read KB consumed"),
		writeKB:       m.NewInt64Counter(telemetry.BuildMetricName("query", "writeKB"), "write KB consumed"),
		violations:    m.NewInt64Counter(telemetry.BuildMetricName("query", "violations"), "executions halted by an invariant violation"),
		failures:      m.NewInt64Counter(telemetry.BuildMetricName("query", "failures"), "failed calls by error code"),
		batchRows:     m.NewInt64ValueRecorder(telemetry.BuildMetricName("query", "batchRows"), "rows returned per call"),
		callLatency:   m.NewDurationValueRecorder(telemetry.BuildMetricName("query", "callLatency"), "latency of one call"),
		executionTime: m.NewDurationCounter(telemetry.BuildMetricName("query", "executionTime"), "time spent in executions"),
		kindLatency:   m.NewMultiDurationValueRecorder(telemetry.BuildMetricName("execution", "latency"), "execution latency by statement kind"),
	}
}

func (s *stats) recordCall(ctx context.Context, start time.Time, res *QueryResult, table string) {
	l := label.String("table", table)
	s.calls.Add(ctx, 1, l)
	s.rows.Add(ctx, int64(len(res.Rows)), l)
	s.readKB.Add(ctx, int64(res.Capacity.ReadKB), l)
	s.writeKB.Add(ctx, int64(res.Capacity.WriteKB), l)
	s.batchRows.Record(ctx, int64(len(res.Rows)), l)
	s.callLatency.RecordLatency(ctx, start, l)
}

func (s *stats) recordFailure(ctx context.Context, err error) {
	code := nosqlerr.CodeOf(err)
	s.failures.Add(ctx, 1, label.String("code", code.String()))
	if code == nosqlerr.InvariantViolation {
		s.violations.Add(ctx, 1)
	}
}

func (s *stats) recordExecution(ctx context.Context, kind string, start time.Time) {
	s.executionTime.Add(ctx, time.Since(start))
	s.kindLatency.RecordLatency(ctx, kind, start)
}
