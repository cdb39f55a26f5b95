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

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cznic/mathutil"
	"go.uber.org/multierr"
)

type Deployment string

const (
	DeploymentCloud    Deployment = "cloud"
	DeploymentCloudSim Deployment = "cloudsim"
	DeploymentOnPrem   Deployment = "onprem"
)

// Metered reports whether the deployment bills read and write capacity.
func (d Deployment) Metered() bool {
	return d != DeploymentOnPrem
}

func ParseDeployment(s string) (Deployment, error) {
	switch d := Deployment(strings.ToLower(strings.TrimSpace(s))); d {
	case DeploymentCloud, DeploymentCloudSim, DeploymentOnPrem:
		return d, nil
	case "":
		return DeploymentCloudSim, nil
	default:
		return "", fmt.Errorf("unknown deployment '%s'", s)
	}
}

const (
	DefaultReadLimitKB    = 2048
	DefaultWriteLimitKB   = 2048
	DefaultMaxTraceLevel  = 32
	DefaultMaxMemoryMB    = 1024
	DefaultPrepareCostKB  = 2
	DefaultRowOverheadKB  = 2
	DefaultGuardMultiple  = 16
	DefaultMaxCalls       = 100000
	DefaultQueryTimeout   = 5 * time.Second
	DefaultServerAddress  = "127.0.0.1:8080"
	DefaultConfigProvider = "file"
)

// QueryDefaults are applied to every request that leaves the field unset.
type QueryDefaults struct {
	Timeout     time.Duration `yaml:"timeout" ini:"timeout"`
	Consistency string        `yaml:"consistency" ini:"consistency"`
	Limit       int           `yaml:"limit" ini:"limit"`
	MaxReadKB   int           `yaml:"max-read-kb" ini:"max-read-kb"`
	MaxWriteKB  int           `yaml:"max-write-kb" ini:"max-write-kb"`
	MaxMemoryMB int           `yaml:"max-memory-mb" ini:"max-memory-mb"`
	TraceLevel  int           `yaml:"trace-level" ini:"trace-level"`
	Compartment string        `yaml:"compartment" ini:"compartment"`
}

// Limits are the system ceilings request options are validated against.
type Limits struct {
	MaxReadKB     int `yaml:"max-read-kb" ini:"max-read-kb"`
	MaxWriteKB    int `yaml:"max-write-kb" ini:"max-write-kb"`
	MaxTraceLevel int `yaml:"max-trace-level" ini:"max-trace-level"`
	MaxMemoryMB   int `yaml:"max-memory-mb" ini:"max-memory-mb"`
}

type Capacity struct {
	PrepareCostKB int `yaml:"prepare-cost-kb" ini:"prepare-cost-kb"`
	RowOverheadKB int `yaml:"row-overhead-kb" ini:"row-overhead-kb"`
}

type Pagination struct {
	GuardMultiplier     int           `yaml:"guard-multiplier" ini:"guard-multiplier"`
	MaxCalls            int           `yaml:"max-calls" ini:"max-calls"`
	ZeroRowWarnInterval time.Duration `yaml:"zero-row-warn-interval" ini:"zero-row-warn-interval"`
}

type Engine struct {
	Latency    time.Duration `yaml:"latency" ini:"latency"`
	ReadUnitKB int           `yaml:"read-unit-kb" ini:"read-unit-kb"`
}

type Server struct {
	Address  string `yaml:"address" ini:"address"`
	Endpoint string `yaml:"endpoint" ini:"endpoint"`
	Gzip     bool   `yaml:"gzip" ini:"gzip"`
}

type Logging struct {
	Level  string `yaml:"level" ini:"level"`
	Format string `yaml:"format" ini:"format"`
}

type Config struct {
	Deployment Deployment    `yaml:"deployment" ini:"deployment"`
	Query      QueryDefaults `yaml:"query" ini:"query"`
	Limits     Limits        `yaml:"limits" ini:"limits"`
	Capacity   Capacity      `yaml:"capacity" ini:"capacity"`
	Pagination Pagination    `yaml:"pagination" ini:"pagination"`
	Engine     Engine        `yaml:"engine" ini:"engine"`
	Server     Server        `yaml:"server" ini:"server"`
	Logging    Logging       `yaml:"logging" ini:"logging"`
}

func Default() *Config {
	return &Config{
		Deployment: DeploymentCloudSim,
		Query: QueryDefaults{
			Timeout:     DefaultQueryTimeout,
			Consistency: "EVENTUAL",
		},
		Limits: Limits{
			MaxReadKB:     DefaultReadLimitKB,
			MaxWriteKB:    DefaultWriteLimitKB,
			MaxTraceLevel: DefaultMaxTraceLevel,
			MaxMemoryMB:   DefaultMaxMemoryMB,
		},
		Capacity: Capacity{
			PrepareCostKB: DefaultPrepareCostKB,
			RowOverheadKB: DefaultRowOverheadKB,
		},
		Pagination: Pagination{
			GuardMultiplier:     DefaultGuardMultiple,
			MaxCalls:            DefaultMaxCalls,
			ZeroRowWarnInterval: time.Second,
		},
		Engine: Engine{
			ReadUnitKB: 1,
		},
		Server: Server{
			Address: DefaultServerAddress,
			Gzip:    true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var err error
	if _, e := ParseDeployment(string(c.Deployment)); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Limits.MaxReadKB <= 0 || c.Limits.MaxWriteKB <= 0 {
		err = multierr.Append(err, fmt.Errorf("limits.max-read-kb and limits.max-write-kb must be positive"))
	}
	if c.Limits.MaxTraceLevel < 0 || c.Limits.MaxTraceLevel > DefaultMaxTraceLevel {
		err = multierr.Append(err, fmt.Errorf("limits.max-trace-level must be in [0, %d]", DefaultMaxTraceLevel))
	}
	if c.Query.Timeout < 0 {
		err = multierr.Append(err, fmt.Errorf("query.timeout can not be negative"))
	}
	if c.Query.Limit < 0 {
		err = multierr.Append(err, fmt.Errorf("query.limit can not be negative"))
	}
	if c.Query.MaxReadKB > c.Limits.MaxReadKB {
		err = multierr.Append(err, fmt.Errorf("query.max-read-kb %d exceeds limit %d", c.Query.MaxReadKB, c.Limits.MaxReadKB))
	}
	if c.Query.MaxWriteKB > c.Limits.MaxWriteKB {
		err = multierr.Append(err, fmt.Errorf("query.max-write-kb %d exceeds limit %d", c.Query.MaxWriteKB, c.Limits.MaxWriteKB))
	}
	if c.Query.TraceLevel > c.Limits.MaxTraceLevel {
		err = multierr.Append(err, fmt.Errorf("query.trace-level %d exceeds limit %d", c.Query.TraceLevel, c.Limits.MaxTraceLevel))
	}
	if c.Capacity.PrepareCostKB < 0 || c.Capacity.RowOverheadKB < 0 {
		err = multierr.Append(err, fmt.Errorf("capacity constants can not be negative"))
	}
	if c.Pagination.GuardMultiplier < 1 || c.Pagination.MaxCalls < 1 {
		err = multierr.Append(err, fmt.Errorf("pagination.guard-multiplier and pagination.max-calls must be at least 1"))
	}
	if c.Engine.ReadUnitKB < 1 {
		err = multierr.Append(err, fmt.Errorf("engine.read-unit-kb must be at least 1"))
	}
	return err
}

// normalize fills zero values left by a partial document with defaults.
func (c *Config) normalize() {
	d := Default()
	if strings.TrimSpace(string(c.Deployment)) == "" {
		c.Deployment = d.Deployment
	}
	c.Deployment = Deployment(strings.ToLower(strings.TrimSpace(string(c.Deployment))))
	c.Query.Consistency = strings.ToUpper(strings.TrimSpace(c.Query.Consistency))
	if c.Query.Consistency == "" {
		c.Query.Consistency = d.Query.Consistency
	}
	if c.Query.Timeout == 0 {
		c.Query.Timeout = d.Query.Timeout
	}
	if c.Limits.MaxReadKB == 0 {
		c.Limits.MaxReadKB = d.Limits.MaxReadKB
	}
	if c.Limits.MaxWriteKB == 0 {
		c.Limits.MaxWriteKB = d.Limits.MaxWriteKB
	}
	if c.Limits.MaxTraceLevel == 0 {
		c.Limits.MaxTraceLevel = d.Limits.MaxTraceLevel
	}
	if c.Limits.MaxMemoryMB == 0 {
		c.Limits.MaxMemoryMB = d.Limits.MaxMemoryMB
	}
	c.Limits.MaxTraceLevel = mathutil.Min(c.Limits.MaxTraceLevel, DefaultMaxTraceLevel)
	if c.Pagination.GuardMultiplier == 0 {
		c.Pagination.GuardMultiplier = d.Pagination.GuardMultiplier
	}
	if c.Pagination.MaxCalls == 0 {
		c.Pagination.MaxCalls = d.Pagination.MaxCalls
	}
	if c.Engine.ReadUnitKB == 0 {
		c.Engine.ReadUnitKB = d.Engine.ReadUnitKB
	}
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.Endpoint == "" {
		c.Server.Endpoint = "http://" + c.Server.Address
	}
}
