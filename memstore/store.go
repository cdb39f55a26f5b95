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
	"encoding/binary"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cznic/mathutil"
	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/core"
	"github.com/sharonminer052/sql-node-sdk-database-develo/logging"
	"github.com/sharonminer052/sql-node-sdk-database-develo/nosqlerr"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/telemetry"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"go.opentelemetry.io/otel/label"
	"go.opentelemetry.io/otel/metric"
)

var logger = logging.GetLogger("memstore")

// Store is an in-process table engine. It implements query.Transport with the
// same metering, pagination and limits a remote engine applies.
type Store struct {
	mu      sync.RWMutex
	tables  map[string]*table
	version uint64

	plansMu sync.Mutex
	plans   map[string]*plan

	sortMu   sync.Mutex
	sorts    map[uint64]*sortBuffer
	nextSort uint64

	cfg      *config.Config
	logger   logging.StandardLogger
	writes   metric.Int64Counter
	examined metric.Int64ValueRecorder
}

var _ query.Transport = (*Store)(nil)

// New creates an empty store. A nil cfg uses config.Default().
func New(cfg *config.Config) *Store {
	if cfg == nil {
		cfg = config.Default()
	}
	m := telemetry.GetMeter("memstore")
	s := &Store{
		tables:   make(map[string]*table),
		plans:    make(map[string]*plan),
		sorts:    make(map[uint64]*sortBuffer),
		cfg:      cfg,
		logger:   logger,
		writes:   m.NewInt64Counter(telemetry.BuildMetricName("memstore", "writes"), "rows written"),
		examined: m.NewInt64ValueRecorder(telemetry.BuildMetricName("memstore", "rowsExamined"), "rows examined per call"),
	}
	m.NewInt64ValueObserver(telemetry.BuildMetricName("memstore", "openSorts"), "sort buffers awaiting their last page", s.OpenSorts)
	return s
}

// OpenSorts reports how many sorted executions still hold a buffer.
func (s *Store) OpenSorts() int64 {
	s.sortMu.Lock()
	defer s.sortMu.Unlock()
	return int64(len(s.sorts))
}

func tableKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateTable adds a table keyed by the given fields, in order.
func (s *Store) CreateTable(name string, primaryKey ...string) error {
	if err := core.ValidateIdentifier(name); err != nil {
		return nosqlerr.Argument("invalid table name: %v", err)
	}
	if len(primaryKey) == 0 {
		return nosqlerr.Argument("table %s needs a primary key", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableKey(name)]; ok {
		return nosqlerr.Argument("table %s already exists", name)
	}
	s.tables[tableKey(name)] = newTable(name, append([]string(nil), primaryKey...))
	return nil
}

func (s *Store) DropTable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableKey(name)]; !ok {
		return nosqlerr.TableNotFoundf(name)
	}
	delete(s.tables, tableKey(name))
	return nil
}

func (s *Store) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.tables))
	for _, t := range s.tables {
		names = append(names, t.name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of rows of a table.
func (s *Store) Len(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[tableKey(name)]
	if !ok {
		return 0, nosqlerr.TableNotFoundf(name)
	}
	return t.rows.Size(), nil
}

// Put writes a row without metering and returns its new version.
func (s *Store) Put(name string, row *types.MapValue) ([]byte, error) {
	if row.Len() == 0 {
		return nil, nosqlerr.Argument("row can not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableKey(name)]
	if !ok {
		return nil, nosqlerr.TableNotFoundf(name)
	}
	key, err := t.keyOf(row)
	if err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}
	r := &record{row: row.Clone(), version: s.nextVersion()}
	t.put(key, r)
	return versionBytes(r.version), nil
}

func (s *Store) nextVersion() uint64 {
	s.version++
	return s.version
}

func versionBytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[tableKey(name)]
	if !ok {
		return nil, nosqlerr.TableNotFoundf(name)
	}
	return t, nil
}

// plan compiles text once and caches the result.
func (s *Store) plan(text string) (*plan, error) {
	s.plansMu.Lock()
	defer s.plansMu.Unlock()
	if p, ok := s.plans[text]; ok {
		return p, nil
	}
	p, err := compile(text)
	if err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}
	s.plans[text] = p
	return p, nil
}

func (s *Store) newMeter(c query.Consistency) *meter {
	return &meter{
		metered:    s.cfg.Deployment.Metered(),
		unitKB:     mathutil.Max(s.cfg.Engine.ReadUnitKB, 1),
		multiplier: c.ReadUnitMultiplier(),
	}
}

// wait applies the simulated latency.
func (s *Store) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Engine.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.cfg.Engine.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store) Prepare(ctx context.Context, req *query.PrepareRequest) (*query.PrepareResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	p, err := s.plan(req.Statement)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	_, err = s.table(p.table())
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	m := s.newMeter(req.Options.Consistency)
	m.compile(s.cfg.Capacity.PrepareCostKB)
	if req.Options.TraceLevel > 0 {
		s.logger.Debugf("prepare %s statement on %s, variables %v", p.kind(), p.table(), p.stmt.ParamOrder)
	}
	return &query.PrepareResult{
		Blob:      encodeBlob(req.Statement),
		Table:     p.table(),
		Kind:      p.kind(),
		Variables: p.stmt.Variables,
		Capacity:  m.consumed,
	}, nil
}

func (s *Store) Query(ctx context.Context, req *query.QueryRequest) (*query.QueryResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	text, compiled := req.Statement, false
	if len(req.Prepared) > 0 {
		var err error
		if text, err = decodeBlob(req.Prepared); err != nil {
			return nil, nosqlerr.Argument("%v", err)
		}
		compiled = true
	}
	p, err := s.plan(text)
	if err != nil {
		return nil, err
	}
	params, err := p.params(req.Bindings)
	if err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}

	opts := req.Options
	m := s.newMeter(opts.Consistency)
	if !compiled && len(opts.ContinuationKey) == 0 {
		m.compile(s.cfg.Capacity.PrepareCostKB)
	}

	var res *query.QueryResult
	if p.kind().IsWrite() {
		s.mu.Lock()
		res, err = s.execWrite(p, params, opts, m)
		s.mu.Unlock()
	} else {
		s.mu.RLock()
		res, err = s.execSelect(p, params, opts, m)
		s.mu.RUnlock()
	}
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	res.Capacity = m.consumed
	if opts.TraceLevel > 0 {
		s.logger.Debugf("%s on %s returned %d rows, capacity %+v, more: %v",
			p.kind(), p.table(), len(res.Rows), res.Capacity, res.HasMore())
	}
	return res, nil
}

func (s *Store) Get(ctx context.Context, req *query.GetRequest) (*query.GetResult, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.table(req.Table)
	if err != nil {
		return nil, err
	}
	if req.Key.Len() == 0 {
		return nil, nosqlerr.Argument("primary key can not be empty")
	}
	key, err := t.keyOf(req.Key)
	if err != nil {
		return nil, nosqlerr.Argument("%v", err)
	}
	consistency := req.Consistency
	if consistency == 0 {
		consistency = query.Eventual
	}
	m := s.newMeter(consistency)
	r, ok := t.get(key)
	if !ok {
		m.read(0)
		return &query.GetResult{Capacity: m.consumed}, nil
	}
	m.read(r.row.Size())
	return &query.GetResult{
		Row:      r.row.Clone(),
		Version:  versionBytes(r.version),
		Capacity: m.consumed,
	}, nil
}

func (s *Store) recordExamined(table string, n int) {
	s.examined.Record(context.Background(), int64(n), label.String("table", table))
}
