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

package parser

import (
	"fmt"
	"strings"

	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

const declareKeyword = "DECLARE"

// splitDeclare separates "DECLARE $a INTEGER; $b STRING;" from the statement body.
func splitDeclare(text string) ([]Variable, string, error) {
	rest := strings.TrimSpace(text)
	if len(rest) < len(declareKeyword) || !strings.EqualFold(rest[:len(declareKeyword)], declareKeyword) {
		return nil, rest, nil
	}
	rest = rest[len(declareKeyword):]
	if rest == "" || !isSpace(rest[0]) {
		// an identifier such as "declared_at", not the keyword
		return nil, strings.TrimSpace(text), nil
	}

	var decls []Variable
	seen := make(map[string]bool)
	for {
		rest = strings.TrimSpace(rest)
		if !strings.HasPrefix(rest, "$") {
			break
		}
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			return nil, "", fmt.Errorf("declaration %q is not terminated by ';'", rest)
		}
		fields := strings.Fields(rest[:end])
		if len(fields) < 2 {
			return nil, "", fmt.Errorf("declaration %q has no type", rest[:end])
		}
		name := fields[0]
		if !isIdentifier(name[1:]) {
			return nil, "", fmt.Errorf("invalid variable name %q", name)
		}
		if seen[name] {
			return nil, "", fmt.Errorf("variable %s is declared twice", name)
		}
		typ, err := types.ParseTypeName(strings.Join(fields[1:], " "))
		if err != nil {
			return nil, "", fmt.Errorf("variable %s: %v", name, err)
		}
		seen[name] = true
		decls = append(decls, Variable{Name: name, Type: typ, Declared: true})
		rest = rest[end+1:]
	}

	if len(decls) == 0 {
		return nil, "", fmt.Errorf("DECLARE must be followed by at least one variable")
	}
	if rest == "" {
		return nil, "", fmt.Errorf("statement body is missing after DECLARE")
	}
	return decls, rest, nil
}

// rewriteVariables replaces every $name outside quotes with '?' and returns the
// names in order of appearance.
func rewriteVariables(body string) (string, []string, error) {
	var sb strings.Builder
	sb.Grow(len(body))
	var order []string
	var quote byte

	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(body) {
				i++
				sb.WriteByte(body[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
			sb.WriteByte(c)
		case '$':
			j := i + 1
			for j < len(body) && isIdentChar(body[j]) {
				j++
			}
			if j == i+1 {
				return "", nil, fmt.Errorf("bare '$' at offset %d", i)
			}
			order = append(order, body[i:j])
			sb.WriteByte('?')
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	if quote != 0 {
		return "", nil, fmt.Errorf("unterminated quoted string")
	}
	return strings.TrimRight(strings.TrimSpace(sb.String()), ";"), order, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
