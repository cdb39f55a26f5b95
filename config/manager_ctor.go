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
	"path/filepath"
	"strings"

	"github.com/sharonminer052/sql-node-sdk-database-develo/core"
	"github.com/sharonminer052/sql-node-sdk-database-develo/core/provider"
	"go.uber.org/config"
)

// NewManager searches the default locations for YAML documents. When none is
// found the built-in defaults are used.
func NewManager() (Manager, error) {
	var sources []config.YAMLOption

	files := DefaultConfigFileLocations()

	var sb = core.NewStringBuilder()
	sb.WriteLine()
	sb.WriteLine("Search configuration locations:")
	for _, f := range files {
		if core.FileExists(f) {
			sources = append(sources, config.File(f))
			sb.WriteLine("[Found]:", f)
		} else {
			sb.WriteLine("[Not Found]:", f)
		}
	}
	logger.Debug(sb.String())

	if len(sources) == 0 {
		return NewManagerFromConfig(Default())
	}
	sources = append(sources, config.Permissive())
	yaml, err := config.NewYAML(sources...)
	if err != nil {
		logger.Warn("Build boot config file fault.", core.LineSeparator, err)
		return nil, err
	}
	return NewManagerFromYAML(yaml)
}

func NewManagerFromYAML(yaml config.Provider) (Manager, error) {
	boot := &bootSettings{Provider: DefaultConfigProvider}
	if err := yaml.Get("config").Populate(boot); err != nil {
		return nil, err
	}
	name := core.IfBlankAndTrim(boot.Provider, DefaultConfigProvider)

	p, ok := provider.DefaultRegistry().TryLoad(provider.ConfigSource, name)
	if !ok {
		return nil, fmt.Errorf("config source provider named '%s' was not found", name)
	}
	source, ok := p.(Source)
	if !ok {
		return nil, fmt.Errorf("provider named '%s' is not a config source", name)
	}

	v, err := source.Load(yaml)
	if err != nil {
		return nil, err
	}
	cnf := Default()
	if err = v.Populate(cnf); err != nil {
		_ = source.Close()
		return nil, err
	}
	cnf.normalize()
	if err = cnf.Validate(); err != nil {
		_ = source.Close()
		return nil, err
	}

	logger.Infof("configuration loaded by '%s' provider, deployment: %s", name, cnf.Deployment)
	return &cnfManager{
		provider: name,
		source:   source,
		current:  cnf,
	}, nil
}

func NewManagerFromString(ymlContent string) (Manager, error) {
	r := strings.NewReader(ymlContent)
	yml, err := config.NewYAML(config.Source(r), config.Permissive())
	if err != nil {
		return nil, err
	}
	return NewManagerFromYAML(yml)
}

// NewManagerFromFile loads a YAML document, or an INI document when the file
// has the .ini extension.
func NewManagerFromFile(file string) (Manager, error) {
	if strings.EqualFold(filepath.Ext(file), ".ini") {
		cnf, err := LoadINI(file)
		if err != nil {
			return nil, err
		}
		return &cnfManager{provider: "ini", current: cnf}, nil
	}
	yml, err := config.NewYAML(config.File(file), config.Permissive())
	if err != nil {
		return nil, err
	}
	return NewManagerFromYAML(yml)
}

// NewManagerFromConfig wraps settings built in code.
func NewManagerFromConfig(cnf *Config) (Manager, error) {
	c := *cnf
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &cnfManager{provider: "static", current: &c}, nil
}
