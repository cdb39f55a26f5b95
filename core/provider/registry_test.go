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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedProvider string

func (n namedProvider) GetName() string { return string(n) }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(ConfigSource, namedProvider("File")))
	assert.Error(t, r.Register(ConfigSource, namedProvider(" ")))
	assert.Error(t, r.Register(ConfigSource, nil))

	p, ok := r.TryLoad(ConfigSource, "file")
	require.True(t, ok)
	assert.Equal(t, "File", p.GetName())
	assert.Equal(t, []string{"file"}, r.Names(ConfigSource))

	r.Delete(ConfigSource, "FILE")
	_, ok = r.TryLoad(ConfigSource, "file")
	assert.False(t, ok)
}
