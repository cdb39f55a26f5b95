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
	"github.com/go-ini/ini"
)

// LoadINI reads settings from an INI document whose sections mirror the YAML layout:
//
//	deployment = cloud
//	[query]
//	timeout = 3s
func LoadINI(source interface{}) (*Config, error) {
	f, err := ini.Load(source)
	if err != nil {
		return nil, err
	}
	cnf := Default()
	if err = f.MapTo(cnf); err != nil {
		return nil, err
	}
	cnf.normalize()
	if err = cnf.Validate(); err != nil {
		return nil, err
	}
	return cnf, nil
}
