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

package query

import (
	"reflect"
	"sort"

	"github.com/scylladb/go-set/strset"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// PreparedStatement is a compiled statement together with its variable bindings.
// The compiled part never changes. Bindings must not be modified while an
// execution that reads them is in progress.
type PreparedStatement struct {
	text     string
	table    string
	kind     parser.StatementKind
	blob     []byte
	declared *strset.Set
	varTypes map[string]types.Type
	bindings map[string]types.Value
	capacity Capacity
}

func newPreparedStatement(text string, res *PrepareResult) *PreparedStatement {
	ps := &PreparedStatement{
		text:     text,
		table:    res.Table,
		kind:     res.Kind,
		blob:     append([]byte(nil), res.Blob...),
		declared: strset.New(),
		varTypes: make(map[string]types.Type, len(res.Variables)),
		bindings: make(map[string]types.Value),
		capacity: res.Capacity,
	}
	for _, v := range res.Variables {
		name := parser.NormalizeVariableName(v.Name)
		ps.declared.Add(name)
		if v.Type == types.Null {
			ps.varTypes[name] = types.Any
		} else {
			ps.varTypes[name] = v.Type
		}
	}
	return ps
}

func (ps *PreparedStatement) Text() string { return ps.text }

func (ps *PreparedStatement) Table() string { return ps.table }

func (ps *PreparedStatement) Kind() parser.StatementKind { return ps.kind }

// Capacity is the capacity consumed compiling the statement.
func (ps *PreparedStatement) Capacity() Capacity { return ps.capacity }

func (ps *PreparedStatement) Blob() []byte {
	return append([]byte(nil), ps.blob...)
}

// Variables returns the declared variable names, sorted.
func (ps *PreparedStatement) Variables() []string {
	names := ps.declared.List()
	sort.Strings(names)
	return names
}

func (ps *PreparedStatement) VariableType(name string) (types.Type, bool) {
	t, ok := ps.varTypes[parser.NormalizeVariableName(name)]
	return t, ok
}

// Bind sets a variable. The name may be given with or without its '$' prefix.
// Binding the same name again replaces the previous value.
func (ps *PreparedStatement) Bind(name string, value interface{}) error {
	n, v, err := ps.checkBinding(name, value)
	if err != nil {
		return err
	}
	ps.bindings[n] = v
	return nil
}

// BindAll binds every entry of a name to value map. Nothing is bound when any
// entry is rejected. bindings must be a map keyed by string, e.g.
// map[string]interface{} or map[string]types.Value.
func (ps *PreparedStatement) BindAll(bindings interface{}) error {
	if bindings == nil {
		return nosqlerr.Argument("bindings can not be null")
	}
	if m, ok := bindings.(map[string]interface{}); ok && m != nil {
		return ps.bindNative(m)
	}
	rv := reflect.ValueOf(bindings)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nosqlerr.Argument("bindings must be a map of variable name to value, got %T", bindings)
	}
	if rv.IsNil() {
		return nosqlerr.Argument("bindings can not be null")
	}

	staged := make(map[string]types.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		n, v, err := ps.checkBinding(iter.Key().String(), iter.Value().Interface())
		if err != nil {
			return err
		}
		staged[n] = v
	}
	for n, v := range staged {
		ps.bindings[n] = v
	}
	return nil
}

func (ps *PreparedStatement) bindNative(m map[string]interface{}) error {
	for name := range m {
		if _, err := ps.checkName(name); err != nil {
			return err
		}
	}
	values, err := types.BuildBindValues(m)
	if err != nil {
		return nosqlerr.Argument("invalid binding value %v", err)
	}
	staged := make(map[string]types.Value, len(values))
	for name, v := range values {
		n, _ := ps.checkName(name)
		if err := ps.checkType(n, v); err != nil {
			return err
		}
		staged[n] = v
	}
	for n, v := range staged {
		ps.bindings[n] = v
	}
	return nil
}

// ClearAll removes every binding.
func (ps *PreparedStatement) ClearAll() {
	ps.bindings = make(map[string]types.Value)
}

// Bindings returns a copy of the current bindings.
func (ps *PreparedStatement) Bindings() map[string]types.Value {
	out := make(map[string]types.Value, len(ps.bindings))
	for k, v := range ps.bindings {
		out[k] = v
	}
	return out
}

func (ps *PreparedStatement) unbound() []string {
	var missing []string
	ps.declared.Each(func(name string) bool {
		if _, ok := ps.bindings[name]; !ok {
			missing = append(missing, name)
		}
		return true
	})
	sort.Strings(missing)
	return missing
}

func (ps *PreparedStatement) checkBinding(name string, value interface{}) (string, types.Value, error) {
	n, err := ps.checkName(name)
	if err != nil {
		return "", types.NULL, err
	}
	v, err := types.FromInterface(value)
	if err != nil {
		return "", types.NULL, nosqlerr.Argument("invalid value for variable %s: %v", n, err)
	}
	if err := ps.checkType(n, v); err != nil {
		return "", types.NULL, err
	}
	return n, v, nil
}

func (ps *PreparedStatement) checkName(name string) (string, error) {
	n := parser.NormalizeVariableName(name)
	if n == "$" {
		return "", nosqlerr.Argument("variable name can not be empty")
	}
	if !ps.declared.Has(n) {
		return "", nosqlerr.Argument("variable %s is not declared by the statement", n)
	}
	return n, nil
}

func (ps *PreparedStatement) checkType(n string, v types.Value) error {
	if declared := ps.varTypes[n]; !v.Type().AssignableTo(declared) {
		return nosqlerr.Argument("variable %s is declared %v, can not bind a %v value", n, declared, v.Type())
	}
	return nil
}
