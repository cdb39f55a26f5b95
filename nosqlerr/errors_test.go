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

package nosqlerr

import (
	"context"
	"fmt"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOfWrapped(t *testing.T) {
	err := Argument("unknown variable %s", "$junk")
	assert.True(t, IsArgument(err))
	assert.Contains(t, err.Error(), "[ILLEGAL_ARGUMENT] unknown variable $junk")

	wrapped := Wrap(err, "bind")
	assert.True(t, IsArgument(wrapped))
	assert.False(t, IsNotFound(wrapped))

	assert.Equal(t, Unknown, CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, Unknown, CodeOf(nil))
	assert.False(t, Is(nil, Unknown))
}

func TestFromTransport(t *testing.T) {
	assert.Nil(t, FromTransport(nil, "query"))

	err := FromTransport(errors.Trace(context.DeadlineExceeded), "query")
	assert.True(t, IsTimeout(err))
	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, context.DeadlineExceeded, errors.Cause(e.Cause()))

	nf := TableNotFoundf("users")
	assert.Equal(t, nf, FromTransport(nf, "prepare"))

	assert.Equal(t, ServerError, CodeOf(FromTransport(fmt.Errorf("boom"), "query")))
}

func TestParseCode(t *testing.T) {
	for c := range codeNames {
		assert.Equal(t, c, ParseCode(c.String()))
	}
	assert.Equal(t, Unknown, ParseCode("nope"))
	assert.True(t, RequestTimeout.Retryable())
	assert.False(t, InvariantViolation.Retryable())
}
