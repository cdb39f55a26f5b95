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

package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestThrottledLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tl := NewThrottledLogger("pager", zap.New(core).Sugar(), time.Second)
	current := time.Unix(1000, 0)
	tl.now = func() time.Time { return current }

	assert.True(t, tl.Warningf("empty batch %d", 1))
	entries := logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "pager: empty batch 1", entries[0].Message)

	current = current.Add(100 * time.Millisecond)
	assert.False(t, tl.Warningf("empty batch %d", 2))
	assert.False(t, tl.Infof("empty batch %d", 3))
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, 2, tl.Skipped())

	current = current.Add(2 * time.Second)
	assert.True(t, tl.Errorf("empty batch %d", 4))
	entries = logs.TakeAll()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "pager: empty batch 4 (skipped 2 similar messages)", entries[0].Message)
	assert.Equal(t, 2, tl.Skipped())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, JSONOutput, ParseLogFormat(" JSON "))
	assert.Equal(t, PlaintextOutput, ParseLogFormat("plain"))
	assert.Equal(t, ColorizedOutput, ParseLogFormat(""))
}

func TestSetLevelText(t *testing.T) {
	l := GetLogger("level-test")
	require.NoError(t, SetLevelText("level-test", "warn"))
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	require.NoError(t, SetLevelText("level-test", "debug"))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.Error(t, SetLevelText("level-test", "loud"))
}
