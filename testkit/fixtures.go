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

package testkit

import (
	"testing"

	"github.com/sharonminer052/sql-node-sdk-database-develo/config"
	"github.com/sharonminer052/sql-node-sdk-database-develo/memstore"
	"github.com/sharonminer052/sql-node-sdk-database-develo/query"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
	"github.com/stretchr/testify/require"
)

// UsersTable is the fixture table, keyed by id.
const UsersTable = "users"

var userNames = []string{"alice", "bob", "carol", "dave", "erin"}

// User returns fixture row id, ids start at 1.
func User(id int) *types.MapValue {
	i := id - 1
	return types.NewRow("id", id, "name", userNames[i], "age", 50-i*5, "k", (i%2)*5)
}

// Users returns every fixture row in key order.
func Users() []*types.MapValue {
	rows := make([]*types.MapValue, len(userNames))
	for i := range userNames {
		rows[i] = User(i + 1)
	}
	return rows
}

// SeedUsers creates the users table in store and fills it with Users().
func SeedUsers(store *memstore.Store) error {
	if err := store.CreateTable(UsersTable, "id"); err != nil {
		return err
	}
	for _, row := range Users() {
		if _, err := store.Put(UsersTable, row); err != nil {
			return err
		}
	}
	return nil
}

// NewUsersStore returns a store holding the users fixture. A nil cfg uses the defaults.
func NewUsersStore(t testing.TB, cfg *config.Config) *memstore.Store {
	store := memstore.New(cfg)
	require.NoError(t, SeedUsers(store))
	return store
}

// NewClient returns a client running directly against a seeded store.
func NewClient(t testing.TB, cfg *config.Config, opts ...query.ClientOption) (*query.Client, *memstore.Store) {
	if cfg == nil {
		cfg = config.Default()
	}
	store := NewUsersStore(t, cfg)
	return query.NewClient(store, cfg, opts...), store
}
