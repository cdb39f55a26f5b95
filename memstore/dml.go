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

package memstore

import (
	"context"
	"fmt"

	"github.com/pingcap/parser/ast"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/parser"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"go.opentelemetry.io/otel/label"
)

// Result field names of write statements.
const (
	NumRowsInserted = "NumRowsInserted"
	NumRowsUpdated  = "NumRowsUpdated"
	NumRowsDeleted  = "NumRowsDeleted"
)

type change struct {
	key []types.Value
	row *types.MapValue
}

// execWrite runs a write statement in a single call. Changes are computed first
// and applied only when they fit the write limit.
func (s *Store) execWrite(p *plan, params []types.Value, opts query.Options, m *meter) (*query.QueryResult, error) {
	t, err := s.table(p.table())
	if err != nil {
		return nil, err
	}

	var changes []change
	switch p.kind() {
	case parser.KindInsert:
		changes, err = s.insertChanges(t, p, params)
	case parser.KindUpdate, parser.KindDelete:
		changes, err = s.matchChanges(t, p, params, m, opts)
	}
	if err != nil {
		return nil, err
	}

	writeKB := 0
	for _, c := range changes {
		if c.row != nil {
			writeKB += m.write(c.row.Size())
		} else if r, ok := t.get(c.key); ok {
			writeKB += m.write(r.row.Size())
		}
	}
	limit := opts.MaxWriteKB
	if limit <= 0 {
		limit = s.cfg.Limits.MaxWriteKB
	}
	if writeKB > limit {
		return nil, nosqlerr.Argument("statement writes %d KB, exceeds limit of %d KB", writeKB, limit)
	}

	for _, c := range changes {
		if c.row == nil {
			t.remove(c.key)
			continue
		}
		t.put(c.key, &record{row: c.row, version: s.nextVersion()})
	}
	if len(changes) > 0 {
		s.writes.Add(context.Background(), int64(len(changes)), label.String("table", t.name))
	}

	field := map[parser.StatementKind]string{
		parser.KindInsert: NumRowsInserted,
		parser.KindUpdate: NumRowsUpdated,
		parser.KindDelete: NumRowsDeleted,
	}[p.kind()]
	row := types.NewMapValue().Put(field, types.NewInteger(int32(len(changes))))
	return &query.QueryResult{Rows: []*types.MapValue{row}}, nil
}

// matchChanges examines every row for UPDATE and DELETE. A change with a nil row
// is a delete.
func (s *Store) matchChanges(t *table, p *plan, params []types.Value, m *meter, opts query.Options) ([]change, error) {
	var changes []change
	var err error
	examined, readKB := 0, 0
	t.scan(nil, func(key []types.Value, rec *record) bool {
		readKB += m.read(rec.row.Size())
		examined++
		if opts.MaxReadKB > 0 && readKB > opts.MaxReadKB+s.cfg.Capacity.RowOverheadKB {
			err = nosqlerr.Argument("statement reads %d KB before completing, maxReadKB is %d", readKB, opts.MaxReadKB)
			return false
		}
		e := &env{row: rec.row, params: params}
		var ok bool
		if ok, err = matches(p.where, e); err != nil || !ok {
			return err == nil
		}
		if p.kind() == parser.KindDelete {
			changes = append(changes, change{key: key})
			return true
		}
		var row *types.MapValue
		if row, err = s.assign(t, p.assignments, rec.row, e); err != nil {
			return false
		}
		changes = append(changes, change{key: key, row: row})
		return true
	})
	s.recordExamined(t.name, examined)
	if _, ok := nosqlerr.As(err); ok {
		return nil, err
	}
	if err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}
	return changes, nil
}

func (s *Store) assign(t *table, list []*ast.Assignment, row *types.MapValue, e *env) (*types.MapValue, error) {
	updated := row.Clone()
	for _, a := range list {
		name := a.Column.Name.O
		if t.isKeyField(name) {
			return nil, fmt.Errorf("primary key field %s can not be updated", name)
		}
		v, err := eval(a.Expr, e)
		if err != nil {
			return nil, err
		}
		updated.Put(name, v)
	}
	return updated, nil
}

func (s *Store) insertChanges(t *table, p *plan, params []types.Value) ([]change, error) {
	e := &env{params: params}
	var rows []*types.MapValue
	if len(p.insert.Setlist) > 0 {
		row := types.NewMapValue()
		for _, a := range p.insert.Setlist {
			v, err := eval(a.Expr, e)
			if err != nil {
				return nil, nosqlerr.Argument("%v", err)
			}
			row.Put(a.Column.Name.O, v)
		}
		rows = append(rows, row)
	}
	for _, list := range p.insert.Lists {
		if len(list) != len(p.insert.Columns) {
			return nil, nosqlerr.Argument("INSERT has %d columns but %d values", len(p.insert.Columns), len(list))
		}
		row := types.NewMapValue()
		for i, expr := range list {
			v, err := eval(expr, e)
			if err != nil {
				return nil, nosqlerr.Argument("%v", err)
			}
			row.Put(p.insert.Columns[i].Name.O, v)
		}
		rows = append(rows, row)
	}

	var changes []change
	seen := make(map[string]bool)
	for _, row := range rows {
		key, err := t.keyOf(row)
		if err != nil {
			return nil, nosqlerr.Argument("%v", err)
		}
		id := fmt.Sprint(key)
		if seen[id] {
			continue
		}
		if _, exists := t.get(key); exists && !p.insert.IsReplace {
			continue
		}
		seen[id] = true
		changes = append(changes, change{key: key, row: row})
	}
	return changes, nil
}
