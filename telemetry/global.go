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
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout"
	"go.opentelemetry.io/otel/metric/global"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	"go.opentelemetry.io/otel/sdk/metric/selector/simple"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	mu               sync.Mutex
	telemetryContext context.Context
	pusher           *controller.Controller
	tracer           *sdktrace.TracerProvider
)

// Start installs the global meter and tracer providers, exporting to w (stdout
// when nil). Without it every instrument is a no-op.
func Start(ctx context.Context, collectPeriod time.Duration, w io.Writer) error {
	mu.Lock()
	defer mu.Unlock()
	if pusher != nil {
		return fmt.Errorf("telemetry already started")
	}
	if w == nil {
		w = os.Stdout
	}
	exporter, err := stdout.NewExporter(stdout.WithWriter(w), stdout.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to initialize stdout export pipeline: %v", err)
	}
	if collectPeriod <= 0 {
		collectPeriod = 5 * time.Second
	}

	pusher = controller.New(
		processor.New(
			simple.NewWithExactDistribution(),
			exporter,
		),
		controller.WithPusher(exporter),
		controller.WithCollectPeriod(collectPeriod),
	)

	tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)))

	telemetryContext = ctx
	if err := pusher.Start(ctx); err != nil {
		pusher = nil
		return fmt.Errorf("failed to initialize metric controller: %v", err)
	}
	global.SetMeterProvider(pusher.MeterProvider())
	otel.SetTracerProvider(tracer)
	return nil
}

func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if pusher != nil {
		_ = pusher.Stop(telemetryContext)
		pusher = nil
	}
	if tracer != nil {
		_ = tracer.Shutdown(telemetryContext)
		tracer = nil
	}
	telemetryContext = nil
}
