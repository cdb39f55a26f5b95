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

type Manager interface {
	Provider() string
	Config() *Config
	Close() error
}

type bootSettings struct {
	Provider string `yaml:"provider"`
}

type cnfManager struct {
	provider string
	source   Source
	current  *Config
}

func (m *cnfManager) Provider() string {
	return m.provider
}

// Config returns a copy so callers can not mutate the shared settings.
func (m *cnfManager) Config() *Config {
	c := *m.current
	return &c
}

func (m *cnfManager) Close() error {
	if m.source != nil {
		return m.source.Close()
	}
	return nil
}
