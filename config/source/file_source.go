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

package source

import (
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/core/provider"
	cnf "go.uber.org/config"
)

func init() {
	_ = provider.DefaultRegistry().Register(provider.ConfigSource, &FileSource{})
}

// FileSource reads settings from the boot document itself.
type FileSource struct {
	value  cnf.Value
	loaded bool
}

func (c *FileSource) GetName() string {
	return config.FileProvider
}

func (c *FileSource) Load(boot cnf.Provider) (cnf.Value, error) {
	c.value = boot.Get(cnf.Root)
	c.loaded = true

	return c.value, nil
}

// Close do nothing
func (c *FileSource) Close() error {
	return nil
}
