/*
Copyright 2019 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logging

import (
	"fmt"
	"sync"
	"time"
)

// ThrottledLogger will allow logging of messages but won't spam the
// logs. Messages arriving inside maxInterval of the previous one are
// counted and summarized by the next message that gets through.
type ThrottledLogger struct {
	// set at construction
	name        string
	maxInterval time.Duration
	logger      StandardLogger
	now         func() time.Time

	// mu protects the following members
	mu           sync.Mutex
	lastLogTime  time.Time
	skippedCount int
	totalSkipped int
}

// NewThrottledLogger will create a ThrottledLogger with the given
// name and throttling interval.
func NewThrottledLogger(name string, logger StandardLogger, maxInterval time.Duration) *ThrottledLogger {
	var log = logger
	if logger == nil {
		log = GetLogger("throttled")
	}
	return &ThrottledLogger{
		name:        name,
		maxInterval: maxInterval,
		logger:      log,
		now:         time.Now,
	}
}

type logFunc func(args ...interface{})

func (tl *ThrottledLogger) log(logFunc logFunc, format string, v ...interface{}) bool {
	now := tl.now()

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if !tl.lastLogTime.IsZero() && now.Sub(tl.lastLogTime) < tl.maxInterval {
		tl.skippedCount++
		tl.totalSkipped++
		return false
	}
	tl.lastLogTime = now
	msg := fmt.Sprintf(tl.name+": "+format, v...)
	if tl.skippedCount > 0 {
		msg = fmt.Sprintf("%s (skipped %d similar messages)", msg, tl.skippedCount)
		tl.skippedCount = 0
	}
	logFunc(msg)
	return true
}

// Infof logs an info if not throttled.
func (tl *ThrottledLogger) Infof(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Info, format, v...)
}

// Warningf logs a warning if not throttled.
func (tl *ThrottledLogger) Warningf(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Warn, format, v...)
}

// Errorf logs an error if not throttled.
func (tl *ThrottledLogger) Errorf(format string, v ...interface{}) bool {
	return tl.log(tl.logger.Error, format, v...)
}

// Skipped returns how many messages were suppressed since creation.
func (tl *ThrottledLogger) Skipped() int {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	return tl.totalSkipped
}
