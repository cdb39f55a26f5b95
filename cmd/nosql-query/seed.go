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

package main

import (
	"fmt"

	"github.com/sharonminer052/sql-node-sdk-database-develo/memstore"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

const sampleTable = "users"

var sampleNames = []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi"}

// seed creates the sample table holding n rows.
func seed(store *memstore.Store, n int) error {
	if err := store.CreateTable(sampleTable, "id"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row := types.NewRow(
			"id", i+1,
			"name", fmt.Sprintf("%s-%d", sampleNames[i%len(sampleNames)], i+1),
			"age", 18+(i*7)%60,
			"k", i%10,
		)
		if _, err := store.Put(sampleTable, row); err != nil {
			return err
		}
	}
	logger.Infof("table %s seeded with %d rows", sampleTable, n)
	return nil
}
