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

package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	_ "github.com/sharonminer052/sql-node-sdk-database-develo/config/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const TestYAML = `
config:
  provider: file

deployment: cloud

query:
  timeout: 3s
  consistency: absolute
  limit: 10
  max-read-kb: 512

limits:
  max-read-kb: 1024

pagination:
  guard-multiplier: 32

server:
  address: 0.0.0.0:9090
`

func TestNewManagerFromString(t *testing.T) {
	m, err := config.NewManagerFromString(TestYAML)
	require.NoError(t, err)
	defer m.Close()

	c := m.Config()
	assert.Equal(t, "file", m.Provider())
	assert.Equal(t, config.DeploymentCloud, c.Deployment)
	assert.True(t, c.Deployment.Metered())
	assert.Equal(t, 3*time.Second, c.Query.Timeout)
	assert.Equal(t, "ABSOLUTE", c.Query.Consistency)
	assert.Equal(t, 10, c.Query.Limit)
	assert.Equal(t, 512, c.Query.MaxReadKB)
	assert.Equal(t, 1024, c.Limits.MaxReadKB)
	assert.Equal(t, config.DefaultWriteLimitKB, c.Limits.MaxWriteKB)
	assert.Equal(t, 32, c.Pagination.GuardMultiplier)
	assert.Equal(t, config.DefaultMaxCalls, c.Pagination.MaxCalls)
	assert.Equal(t, "http://0.0.0.0:9090", c.Server.Endpoint)
}

func TestConfigIsCopied(t *testing.T) {
	m, err := config.NewManagerFromString(TestYAML)
	require.NoError(t, err)
	m.Config().Query.Limit = 99
	assert.Equal(t, 10, m.Config().Query.Limit)
}

func TestUnknownProvider(t *testing.T) {
	_, err := config.NewManagerFromString("config:\n  provider: zookeeper\n")
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := config.Default()
	c.Query.MaxReadKB = 4096
	c.Query.TraceLevel = 40
	c.Query.Limit = -1
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max-read-kb")
	assert.Contains(t, err.Error(), "trace-level")
	assert.Contains(t, err.Error(), "query.limit")
}

func TestInvalidYAMLRejected(t *testing.T) {
	_, err := config.NewManagerFromString("deployment: moon\n")
	assert.Error(t, err)
}

func TestDeployment(t *testing.T) {
	d, err := config.ParseDeployment(" OnPrem ")
	require.NoError(t, err)
	assert.False(t, d.Metered())
	d, err = config.ParseDeployment("")
	require.NoError(t, err)
	assert.Equal(t, config.DeploymentCloudSim, d)
	_, err = config.ParseDeployment("edge")
	assert.Error(t, err)
}

func TestLoadINI(t *testing.T) {
	dir, err := ioutil.TempDir("", "nosql-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "client.ini")
	content := `deployment = onprem

[query]
timeout = 250ms
limit = 5

[pagination]
max-calls = 10
`
	require.NoError(t, ioutil.WriteFile(file, []byte(content), 0644))

	m, err := config.NewManagerFromFile(file)
	require.NoError(t, err)
	c := m.Config()
	assert.Equal(t, "ini", m.Provider())
	assert.Equal(t, config.DeploymentOnPrem, c.Deployment)
	assert.Equal(t, 250*time.Millisecond, c.Query.Timeout)
	assert.Equal(t, 5, c.Query.Limit)
	assert.Equal(t, 10, c.Pagination.MaxCalls)
	assert.Equal(t, "EVENTUAL", c.Query.Consistency)
}

func TestEndpointFollowsAddress(t *testing.T) {
	assert.Empty(t, config.Default().Server.Endpoint)

	m, err := config.NewManagerFromConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, "http://"+config.DefaultServerAddress, m.Config().Server.Endpoint)

	c, err := config.LoadINI([]byte("[server]\naddress = 10.0.0.1:7070\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:7070", c.Server.Endpoint)

	m, err = config.NewManagerFromString(TestYAML + "  endpoint: https://nosql.example.com\n")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", m.Config().Server.Address)
	assert.Equal(t, "https://nosql.example.com", m.Config().Server.Endpoint)
}

func TestDefaultLocations(t *testing.T) {
	files := config.DefaultConfigFileLocations()
	assert.NotEmpty(t, files)
	for _, f := range files {
		assert.Equal(t, ".y", filepath.Ext(f)[:2])
	}
}
