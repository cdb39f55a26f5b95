// Copyright 2016 CodisLabs. All Rights Reserved.
// Licensed under the MIT (MIT-LICENSE.txt) license.

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

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coreos/etcd/client"
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/core/provider"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	cnf "go.uber.org/config"
)

// ErrClosedEtcdClient means etcd client closed
var ErrClosedEtcdClient = errors.New("use of closed etcd client")

const (
	defaultEtcdPrefix = "/nosql-query"
	defaultEtcdKey    = "config.yaml"
)

var logger = logging.GetLogger("config-etcd")

func init() {
	_ = provider.DefaultRegistry().Register(provider.ConfigSource, &EtcdSource{})
}

// EtcdSettings is read from the "config.etcd" node of the boot document.
type EtcdSettings struct {
	Endpoints string        `yaml:"endpoints"`
	Username  string        `yaml:"username"`
	Password  string        `yaml:"password"`
	Timeout   time.Duration `yaml:"timeout"`
	Prefix    string        `yaml:"prefix"`
	Key       string        `yaml:"key"`
}

// EtcdSource reads a YAML document stored under one etcd key.
type EtcdSource struct {
	sync.Mutex
	kapi client.KeysAPI

	closed   bool
	settings EtcdSettings
}

// NewEtcdSource builds a source over an existing keys API.
func NewEtcdSource(kapi client.KeysAPI, settings EtcdSettings) *EtcdSource {
	s := &EtcdSource{kapi: kapi, settings: settings}
	s.applyDefaults()
	return s
}

func (c *EtcdSource) GetName() string {
	return config.EtcdProvider
}

func (c *EtcdSource) applyDefaults() {
	if strings.TrimSpace(c.settings.Prefix) == "" {
		c.settings.Prefix = defaultEtcdPrefix
	}
	if strings.TrimSpace(c.settings.Key) == "" {
		c.settings.Key = defaultEtcdKey
	}
}

func (c *EtcdSource) connect() error {
	endpoints := strings.Split(c.settings.Endpoints, ",")
	for i, s := range endpoints {
		s = strings.TrimSpace(s)
		if s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			s = "http://" + s
		}
		endpoints[i] = s
	}
	cc, err := client.New(client.Config{
		Endpoints:               endpoints,
		Transport:               client.DefaultTransport,
		Username:                c.settings.Username,
		Password:                c.settings.Password,
		HeaderTimeoutPerRequest: time.Second * 10,
	})
	if err != nil {
		return err
	}
	c.kapi = client.NewKeysAPI(cc)
	return nil
}

func (c *EtcdSource) Load(boot cnf.Provider) (cnf.Value, error) {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return cnf.Value{}, ErrClosedEtcdClient
	}
	if c.kapi == nil {
		if err := boot.Get("config.etcd").Populate(&c.settings); err != nil {
			return cnf.Value{}, err
		}
		c.applyDefaults()
		if strings.TrimSpace(c.settings.Endpoints) == "" {
			return cnf.Value{}, errors.New("config.etcd.endpoints is required by etcd config source")
		}
		if err := c.connect(); err != nil {
			return cnf.Value{}, err
		}
	}

	path := c.path()
	data, err := c.read(path)
	if err != nil {
		return cnf.Value{}, err
	}
	if data == nil {
		return cnf.Value{}, fmt.Errorf("etcd node %s not found", path)
	}
	yml, err := cnf.NewYAML(cnf.Source(strings.NewReader(string(data))), cnf.Permissive())
	if err != nil {
		return cnf.Value{}, err
	}
	return yml.Get(cnf.Root), nil
}

func (c *EtcdSource) path() string {
	return strings.TrimRight(c.settings.Prefix, "/") + "/" + strings.TrimLeft(c.settings.Key, "/")
}

// Close close etcd client
func (c *EtcdSource) Close() error {
	c.Lock()
	defer c.Unlock()
	c.closed = true
	return nil
}

func (c *EtcdSource) contextWithTimeout() (context.Context, context.CancelFunc) {
	if c.settings.Timeout == 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.settings.Timeout)
}

func isErrNoNode(err error) bool {
	if err != nil {
		if e, ok := err.(client.Error); ok {
			return e.Code == client.ErrorCodeKeyNotFound
		}
	}
	return false
}

func (c *EtcdSource) read(path string) ([]byte, error) {
	cntx, canceller := c.contextWithTimeout()
	defer canceller()
	logger.Debugf("etcd read node %s", path)
	r, err := c.kapi.Get(cntx, path, nil)
	if err != nil && !isErrNoNode(err) {
		return nil, err
	} else if r == nil || r.Node == nil || r.Node.Dir {
		return nil, nil
	} else {
		return []byte(r.Node.Value), nil
	}
}

// Save stores a YAML document at the configured key.
func (c *EtcdSource) Save(data []byte) error {
	c.Lock()
	defer c.Unlock()
	if c.closed {
		return ErrClosedEtcdClient
	}
	cntx, canceller := c.contextWithTimeout()
	defer canceller()
	path := c.path()
	logger.Debugf("etcd update node %s", path)
	_, err := c.kapi.Set(cntx, path, string(data), &client.SetOptions{PrevExist: client.PrevIgnore})
	if err != nil {
		logger.Debugf("etcd update node %s failed: %s", path, err)
		return err
	}
	return nil
}
