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

package core

import (
	"fmt"
	"strings"
)

// StringBuilder joins values the way fmt.Sprint prints them, one call per line.
type StringBuilder struct {
	buffer strings.Builder
}

func NewStringBuilder() *StringBuilder {
	return &StringBuilder{}
}

// WriteLine writes the values separated by a blank and ends the line.
func (w *StringBuilder) WriteLine(value ...interface{}) {
	for i, v := range value {
		if i > 0 {
			w.buffer.WriteString(" ")
		}
		w.write(v)
	}
	w.buffer.WriteString(LineSeparator)
}

func (w *StringBuilder) write(v interface{}) {
	switch a := v.(type) {
	case string:
		w.buffer.WriteString(a)
	case fmt.Stringer:
		w.buffer.WriteString(a.String())
	default:
		w.buffer.WriteString(fmt.Sprint(v))
	}
}

func (w *StringBuilder) String() string {
	return w.buffer.String()
}
