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
	"math"
	"sort"

	"github.com/pingcap/parser/ast"
	driver "github.com/pingcap/tidb/types/parser_driver"
)

// numberParams assigns each parameter marker its position in the statement text
// and returns how many there are.
func numberParams(stmt ast.Node) (int, error) {
	var markers []*driver.ParamMarkerExpr

	err := Walk(func(node ast.Node) (bool, error) {
		if p, ok := node.(*driver.ParamMarkerExpr); ok {
			markers = append(markers, p)
		}
		return true, nil
	}, stmt)
	if err != nil {
		return 0, err
	}

	if len(markers) > math.MaxUint16 {
		return 0, fmt.Errorf("statement variable count out of limit ( allow max: %d )", math.MaxUint16)
	}

	// the walk order follows the tree, not the text
	sort.Slice(markers, func(i, j int) bool {
		return markers[i].Offset < markers[j].Offset
	})
	for i, p := range markers {
		p.SetOrder(i)
	}
	return len(markers), nil
}
