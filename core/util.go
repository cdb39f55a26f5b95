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
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
)

var LineSeparator = "\n"

func IsWindows() bool {
	return strings.EqualFold(runtime.GOOS, "windows")
}

// FileExists is false for directories.
func FileExists(name string) bool {
	info, err := os.Lstat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func IfBlankAndTrim(value string, blankValue string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return blankValue
	}
	return v
}

var identityRegex *regexp.Regexp
var identityRegexOnce sync.Once

// ValidateIdentifier accepts table and field names: a letter followed by letters, digits or underscores.
func ValidateIdentifier(identifier string) error {
	identityRegexOnce.Do(func() {
		identityRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	})
	if !identityRegex.MatchString(identifier) {
		return fmt.Errorf("identifier must start with a letter and contain only letters, numbers and underscores, given value: %s", identifier)
	}
	return nil
}
