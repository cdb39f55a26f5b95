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
	"sync"
	"time"

	"go.opentelemetry.io/otel/label"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/unit"
)

type DurationCounter struct {
	counter metric.Int64Counter
}

func NewDurationCounter(meter metric.MeterMust, name string, mos ...metric.InstrumentOption) DurationCounter {
	options := append(mos, metric.WithUnit(unit.Milliseconds))
	return DurationCounter{
		counter: meter.NewInt64Counter(name, options...),
	}
}

func (d DurationCounter) Add(ctx context.Context, duration time.Duration, labels ...label.KeyValue) {
	d.counter.Add(ctx, duration.Milliseconds(), labels...)
}

type DurationValueRecorder struct {
	valueRecorder metric.Int64ValueRecorder
}

func NewDurationValueRecorder(meter metric.MeterMust, name string, mos ...metric.InstrumentOption) DurationValueRecorder {
	options := append(mos, metric.WithUnit(unit.Milliseconds))
	return DurationValueRecorder{
		valueRecorder: meter.NewInt64ValueRecorder(name, options...),
	}
}

func (d DurationValueRecorder) Record(ctx context.Context, duration time.Duration, labels ...label.KeyValue) {
	d.valueRecorder.Record(ctx, duration.Milliseconds(), labels...)
}

func (d DurationValueRecorder) RecordLatency(ctx context.Context, startTime time.Time, labels ...label.KeyValue) {
	d.valueRecorder.Record(ctx, time.Since(startTime).Milliseconds(), labels...)
}

// MultiDurationValueRecorder keeps one latency recorder per sub name, e.g. per
// statement kind.
type MultiDurationValueRecorder struct {
	name           string
	options        []metric.InstrumentOption
	recorders      map[string]DurationValueRecorder
	recordersMutex sync.Mutex
	meter          metric.MeterMust
}

func NewMultiDurationValueRecorder(meter metric.Meter, name string, mos ...metric.InstrumentOption) *MultiDurationValueRecorder {
	return &MultiDurationValueRecorder{
		meter:     metric.Must(meter),
		name:      name,
		options:   mos,
		recorders: make(map[string]DurationValueRecorder),
	}
}

func (d *MultiDurationValueRecorder) getOrPut(name string) DurationValueRecorder {
	d.recordersMutex.Lock()
	defer d.recordersMutex.Unlock()
	v, ok := d.recorders[name]
	if !ok {
		v = NewDurationValueRecorder(d.meter, BuildMetricName(d.name, name), d.options...)
		d.recorders[name] = v
	}
	return v
}

func (d *MultiDurationValueRecorder) Record(ctx context.Context, name string, duration time.Duration, labels ...label.KeyValue) {
	d.getOrPut(BuildMetricName(name)).Record(ctx, duration, labels...)
}

func (d *MultiDurationValueRecorder) RecordLatency(ctx context.Context, name string, startTime time.Time, labels ...label.KeyValue) {
	d.getOrPut(BuildMetricName(name)).RecordLatency(ctx, startTime, labels...)
}

func (d *MultiDurationValueRecorder) size() int {
	d.recordersMutex.Lock()
	defer d.recordersMutex.Unlock()
	return len(d.recorders)
}
