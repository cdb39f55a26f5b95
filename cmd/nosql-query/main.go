// Copyright 2019 The Gaea Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/httpapi"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	"github.com/sharonminer052/sql-node-sdk-database-develo/memstore"
	"github.com/sharonminer052/sql-node-sdk-database-develo/telemetry"

	_ "github.com/sharonminer052/sql-node-sdk-database-develo/config/source"
)

var logger = logging.GetLogger("main")

func main() {
	var configFile = flag.String("config", "", "config file (.yaml or .ini), default locations are searched when empty")
	var mode = flag.String("mode", "serve", "serve: run the reference engine over HTTP, query: run a statement against -endpoint")
	var endpoint = flag.String("endpoint", "", "engine endpoint for query mode, defaults to server.endpoint")
	var statement = flag.String("statement", "", "statement text for query mode")
	var limit = flag.Int("limit", 0, "rows per call")
	var maxReadKB = flag.Int("max-read-kb", 0, "read budget per call in KB")
	var consistency = flag.String("consistency", "", "EVENTUAL or ABSOLUTE")
	var seedRows = flag.Int("seed", 100, "rows of the sample table created in serve mode")
	var metricsPeriod = flag.Duration("metrics-period", 0, "export telemetry to stdout at this period, disabled when 0")
	var bindings = bindFlags{}
	flag.Var(&bindings, "bind", "variable binding name=value, repeatable")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Printf("load config error: %v\n", err)
		os.Exit(1)
	}
	logging.SetOutput(logging.ParseLogFormat(cfg.Logging.Format), os.Stderr)
	if err := logging.SetLevelText("", cfg.Logging.Level); err != nil {
		logger.Warnf("invalid log level '%s': %v", cfg.Logging.Level, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *metricsPeriod > 0 {
		if err := telemetry.Start(ctx, *metricsPeriod, os.Stderr); err != nil {
			logger.Fatalf("start telemetry failed: %v", err)
		}
		defer telemetry.Shutdown()
	}

	switch *mode {
	case "serve":
		err = serve(ctx, cancel, cfg, *seedRows)
	case "query":
		if *endpoint != "" {
			cfg.Server.Endpoint = *endpoint
		}
		run := &queryRun{
			statement:   *statement,
			bindings:    bindings,
			limit:       *limit,
			maxReadKB:   *maxReadKB,
			consistency: *consistency,
		}
		go waitForSignal(cancel, nil)
		err = run.execute(ctx, cfg, os.Stdout)
	default:
		err = fmt.Errorf("unknown mode '%s'", *mode)
	}
	if err != nil {
		logger.Errorf("%s failed: %v", *mode, err)
		os.Exit(1)
	}
}

func loadConfig(file string) (*config.Config, error) {
	var mgr config.Manager
	var err error
	if file == "" {
		mgr, err = config.NewManager()
	} else {
		mgr, err = config.NewManagerFromFile(file)
	}
	if err != nil {
		return nil, err
	}
	defer mgr.Close()
	logger.Debugf("configuration loaded from provider '%s'", mgr.Provider())
	return mgr.Config(), nil
}

func serve(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, seedRows int) error {
	gin.SetMode(gin.ReleaseMode)
	store := memstore.New(cfg)
	if err := seed(store, seedRows); err != nil {
		return err
	}
	svr := httpapi.NewServer(store, cfg.Server)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		waitForSignal(cancel, ctx.Done())
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = svr.Shutdown(shutdownCtx)
	}()
	err := svr.ListenAndServe()
	cancel()
	wg.Wait()
	return err
}

// waitForSignal cancels on SIGINT, SIGTERM or SIGQUIT, or returns when stop is closed.
func waitForSignal(cancel context.CancelFunc, stop <-chan struct{}) {
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGPIPE,
	)
	defer signal.Stop(sc)
	for {
		select {
		case <-stop:
			return
		case sig := <-sc:
			if sig == syscall.SIGPIPE {
				logger.Infof("Ignore broken pipe signal")
				continue
			}
			logger.Infof("Got signal %d, quit", sig)
			cancel()
			return
		}
	}
}
