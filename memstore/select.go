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
	"sort"

	"github.com/cznic/mathutil"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// sortBuffer holds the matches of an ORDER BY on non key fields across calls.
type sortBuffer struct {
	entries []sortEntry
	size    int
	sorted  bool
}

type sortEntry struct {
	key    []types.Value
	order  []types.Value
	row    *types.MapValue
	params []types.Value
}

// selectRun is the state of one select call.
type selectRun struct {
	plan     *plan
	table    *table
	params   []types.Value
	opts     query.Options
	meter    *meter
	cur      *cursor
	count    int64
	offset   int64
	budgetKB int
	ceilKB   int
	batchKB  int
	examined int
	rows     []*types.MapValue
}

func (s *Store) execSelect(p *plan, params []types.Value, opts query.Options, m *meter) (*query.QueryResult, error) {
	t, err := s.table(p.table())
	if err != nil {
		return nil, err
	}
	run := &selectRun{
		plan:     p,
		table:    t,
		params:   params,
		opts:     opts,
		meter:    m,
		cur:      &cursor{phase: phaseScan},
		budgetKB: opts.MaxReadKB,
	}
	if run.budgetKB <= 0 {
		run.budgetKB = s.cfg.Limits.MaxReadKB
	}
	run.ceilKB = run.budgetKB + s.cfg.Capacity.RowOverheadKB
	if len(opts.ContinuationKey) > 0 {
		if run.cur, err = decodeCursor(opts.ContinuationKey); err != nil {
			return nil, nosqlerr.Argument("%v", err)
		}
	}
	if run.count, run.offset, err = p.bounds(&env{params: params}); err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}

	var more bool
	if p.keyOrdered(t) {
		more, err = run.scanOrdered()
	} else {
		more, err = s.scanSorted(run)
	}
	s.recordExamined(t.name, run.examined)
	if err != nil {
		return nil, err
	}

	res := &query.QueryResult{Rows: run.rows}
	if more {
		if res.ContinuationKey, err = run.cur.encode(); err != nil {
			return nil, nosqlerr.Server(err, "encode continuation key")
		}
	}
	return res, nil
}

func (r *selectRun) limitReached() bool {
	return r.count >= 0 && int64(r.cur.returned) >= r.count
}

func (r *selectRun) batchFull() bool {
	return (r.opts.Limit > 0 && len(r.rows) >= r.opts.Limit) || r.batchKB >= r.budgetKB
}

// examine charges a row read and advances the cursor past it. A call never
// reads more than its budget plus the row overhead: the part of a row that does
// not fit is left to the next call and examine reports false.
func (r *selectRun) examine(key []types.Value, rec *record) bool {
	cost := sizeKB(rec.row.Size()) - int(r.cur.partialKB)
	if room := r.ceilKB - r.batchKB; cost > room {
		if room > 0 {
			r.batchKB += r.meter.readKB(room)
			r.cur.partialKB += uint64(room)
		}
		return false
	}
	r.batchKB += r.meter.readKB(cost)
	r.cur.partialKB = 0
	r.examined++
	r.cur.lastKey = key
	return true
}

// scanOrdered returns rows in primary key order. It stops at the call's row or
// read limit and reports whether another matching row exists.
func (r *selectRun) scanOrdered() (bool, error) {
	var err error
	stopped, more := false, false
	r.table.scan(r.cur.lastKey, func(key []types.Value, rec *record) bool {
		e := &env{row: rec.row, params: r.params}
		var ok bool
		if ok, err = matches(r.plan.where, e); err != nil {
			return false
		}
		if stopped {
			more = ok
			return !ok
		}
		if !r.examine(key, rec) {
			more = true
			return false
		}
		if ok {
			r.cur.matched++
			if int64(r.cur.matched) > r.offset && !r.limitReached() {
				var out *types.MapValue
				if out, err = r.plan.project(rec.row, e); err != nil {
					return false
				}
				r.rows = append(r.rows, out)
				r.cur.returned++
			}
		}
		if r.limitReached() {
			return false
		}
		stopped = r.batchFull()
		return true
	})
	if err != nil {
		return false, nosqlerr.Argument("%v", err)
	}
	return more, nil
}

// scanSorted collects every match into a sort buffer kept across calls, then
// returns the sorted rows. Calls spent collecting return no rows.
func (s *Store) scanSorted(r *selectRun) (bool, error) {
	buf, err := s.sortBufferOf(r.cur)
	if err != nil {
		return false, err
	}
	memLimit := r.opts.MaxMemoryMB
	if memLimit <= 0 {
		memLimit = s.cfg.Limits.MaxMemoryMB
	}

	if r.cur.phase == phaseScan {
		stopped, remaining := false, false
		r.table.scan(r.cur.lastKey, func(key []types.Value, rec *record) bool {
			if stopped {
				remaining = true
				return false
			}
			if !r.examine(key, rec) {
				remaining = true
				return false
			}
			e := &env{row: rec.row, params: r.params}
			var ok bool
			if ok, err = matches(r.plan.where, e); err != nil || !ok {
				return err == nil
			}
			entry := sortEntry{key: key, row: rec.row, params: r.params}
			for _, item := range r.plan.orderBy {
				var v types.Value
				if v, err = eval(item.Expr, e); err != nil {
					return false
				}
				entry.order = append(entry.order, v)
			}
			buf.entries = append(buf.entries, entry)
			buf.size += rec.row.Size()
			if buf.size > memLimit*kb*kb {
				err = nosqlerr.New(nosqlerr.MemoryLimitExceeded, "sorting %s needs more than %d MB", r.table.name, memLimit)
				return false
			}
			stopped = r.batchFull()
			return true
		})
		if err != nil {
			s.dropSortBuffer(r.cur.sortID)
			if nosqlerr.CodeOf(err) == nosqlerr.MemoryLimitExceeded {
				return false, err
			}
			return false, nosqlerr.Argument("%v", err)
		}
		if remaining {
			return true, nil
		}
		s.sortEntries(buf, r.plan)
		r.cur.phase = phaseEmit
	}

	end := len(buf.entries)
	if r.count >= 0 {
		end = mathutil.Min(end, int(r.offset+r.count))
	}
	i := mathutil.Max(int(r.cur.emitted), int(r.offset))
	for ; i < end && (r.opts.Limit <= 0 || len(r.rows) < r.opts.Limit); i++ {
		entry := buf.entries[i]
		out, err := r.plan.project(entry.row, &env{row: entry.row, params: entry.params})
		if err != nil {
			s.dropSortBuffer(r.cur.sortID)
			return false, nosqlerr.Argument("%v", err)
		}
		r.rows = append(r.rows, out)
	}
	r.cur.emitted = uint64(i)
	r.cur.returned += uint64(len(r.rows))
	if i < end {
		return true, nil
	}
	s.dropSortBuffer(r.cur.sortID)
	return false, nil
}

func (s *Store) sortEntries(buf *sortBuffer, p *plan) {
	if buf.sorted {
		return
	}
	sort.SliceStable(buf.entries, func(i, j int) bool {
		a, b := buf.entries[i], buf.entries[j]
		for k, item := range p.orderBy {
			c, err := types.CompareValues(a.order[k], b.order[k])
			if err != nil || c == 0 {
				continue
			}
			if item.Desc {
				return c > 0
			}
			return c < 0
		}
		return compareKeys(a.key, b.key) < 0
	})
	buf.sorted = true
}

// sortBufferOf returns the buffer of a cursor, creating it for a new execution.
func (s *Store) sortBufferOf(cur *cursor) (*sortBuffer, error) {
	s.sortMu.Lock()
	defer s.sortMu.Unlock()
	if cur.sortID == 0 {
		s.nextSort++
		cur.sortID = s.nextSort
		buf := &sortBuffer{}
		s.sorts[cur.sortID] = buf
		return buf, nil
	}
	buf, ok := s.sorts[cur.sortID]
	if !ok {
		return nil, nosqlerr.Argument("continuation key refers to an expired sort")
	}
	return buf, nil
}

func (s *Store) dropSortBuffer(id uint64) {
	s.sortMu.Lock()
	defer s.sortMu.Unlock()
	delete(s.sorts, id)
}
