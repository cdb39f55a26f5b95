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
	"github.com/sharonminer052/sql-node-sdk-database-develo/core/provider"
	"go.uber.org/config"
)

const (
	FileProvider = "file"
	EtcdProvider = "etcd"
)

// Source is a configuration source provider registered under provider.ConfigSource.
type Source interface {
	provider.Provider
	// Load returns the document configuration is populated from. boot is the
	// document the manager was created with.
	Load(boot config.Provider) (config.Value, error)
	Close() error
}
