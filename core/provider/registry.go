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

package provider

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

type Type int

const (
	// ConfigSource providers load the client configuration.
	ConfigSource Type = iota + 1
)

type Provider interface {
	GetName() string
}

type Registry interface {
	TryLoad(tp Type, name string) (Provider, bool)
	Register(tp Type, provider Provider) error
	Names(tp Type) []string
	Delete(tp Type, name string)
}

var instance Registry
var onceReg sync.Once

func DefaultRegistry() Registry {
	onceReg.Do(func() {
		instance = NewRegistry()
	})
	return instance
}

func NewRegistry() Registry {
	return &registry{}
}

type registry struct {
	mp sync.Map
}

func getFullName(tp Type, name string) string {
	return fmt.Sprintf("%d:%s", int(tp), strings.ToLower(strings.TrimSpace(name)))
}

func (r *registry) TryLoad(tp Type, name string) (Provider, bool) {
	v, ok := r.mp.Load(getFullName(tp, name))
	if !ok {
		return nil, false
	}
	p, ok := v.(Provider)
	return p, ok
}

func (r *registry) Register(tp Type, provider Provider) error {
	if provider == nil {
		return errors.New("provider can not be null")
	}
	n := strings.TrimSpace(provider.GetName())
	if n == "" {
		return errors.New("provider name can not be empty")
	}
	r.mp.Store(getFullName(tp, n), provider)
	return nil
}

func (r *registry) Names(tp Type) []string {
	prefix := fmt.Sprint(int(tp), ":")
	var names []string
	r.mp.Range(func(key, _ interface{}) bool {
		if k := key.(string); strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, prefix))
		}
		return true
	})
	return names
}

func (r *registry) Delete(tp Type, name string) {
	r.mp.Delete(getFullName(tp, name))
}
