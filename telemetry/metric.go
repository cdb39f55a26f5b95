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

package telemetry

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"go.opentelemetry.io/otel/metric/global"
)

var meterMap = make(map[string]*NamedMeter)
var meterMutex sync.Mutex

func GetMeter(instrumentationName string) *NamedMeter {
	meterMutex.Lock()
	defer meterMutex.Unlock()
	if m, ok := meterMap[instrumentationName]; ok {
		return m
	}
	nm := &NamedMeter{
		meter:     global.Meter(instrumentationName),
		recorders: make(map[string]interface{}),
	}
	meterMap[instrumentationName] = nm
	return nm
}

// BuildMetricName joins the statements into a lower snake case name. Camel
// case is split, punctuation is collapsed and empty parts are skipped.
func BuildMetricName(statement ...string) string {
	if len(statement) == 0 {
		panic(errors.New("name for 'BuildMetricName' can not be nil or empty"))
	}

	array := make([]string, 0, len(statement))
	sb := &strings.Builder{}
	for _, s := range statement {
		sb.Reset()
		pendingSep := false
		prevLower := false
		for _, r := range s {
			switch {
			case unicode.IsUpper(r):
				if prevLower {
					pendingSep = true
				}
				r = unicode.ToLower(r)
				prevLower = false
			case unicode.IsLower(r) || unicode.IsDigit(r):
				prevLower = true
			default:
				pendingSep = true
				prevLower = false
				continue
			}
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
		}
		if sb.Len() > 0 {
			array = append(array, sb.String())
		}
	}
	return strings.Join(array, "_")
}
