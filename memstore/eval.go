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
	"fmt"

	"github.com/pingcap/parser/ast"
	"github.com/pingcap/parser/opcode"
	driver "github.com/pingcap/tidb/types/parser_driver"
	"github.com/sharonminer052/sql-node-sdk-database-develo/types"
)

// env is what an expression is evaluated against.
type env struct {
	row    *types.MapValue
	params []types.Value
}

func eval(node ast.ExprNode, e *env) (types.Value, error) {
	switch n := node.(type) {
	case *driver.ParamMarkerExpr:
		if n.Order < 0 || n.Order >= len(e.params) {
			return types.NULL, fmt.Errorf("no value bound for parameter %d", n.Order)
		}
		return e.params[n.Order], nil
	case *driver.ValueExpr:
		v, ok := types.FromDatum(&n.Datum)
		if !ok {
			return types.NULL, fmt.Errorf("unsupported literal of kind %d", n.Datum.Kind())
		}
		return v, nil
	case *ast.ColumnNameExpr:
		if e.row == nil {
			return types.NULL, fmt.Errorf("column %s can not be used here", n.Name.Name.O)
		}
		v, _ := e.row.Get(n.Name.Name.O)
		return v, nil
	case *ast.ParenthesesExpr:
		return eval(n.Expr, e)
	case *ast.UnaryOperationExpr:
		return evalUnary(n, e)
	case *ast.BinaryOperationExpr:
		return evalBinary(n, e)
	case *ast.IsNullExpr:
		v, err := eval(n.Expr, e)
		if err != nil {
			return types.NULL, err
		}
		return types.NewBoolean(v.IsNull() != n.Not), nil
	case *ast.BetweenExpr:
		return evalBetween(n, e)
	case *ast.PatternInExpr:
		return evalIn(n, e)
	}
	return types.NULL, fmt.Errorf("unsupported expression %T", node)
}

// truth maps a value to three valued logic. ok is false for NULL.
func truth(v types.Value) (b bool, ok bool) {
	switch {
	case v.IsNull():
		return false, false
	case v.Type() == types.Boolean:
		b, _ := v.Bool()
		return b, true
	case v.IsNumeric():
		f, err := v.Float64()
		return err == nil && f != 0, true
	}
	return false, true
}

// matches evaluates a WHERE condition, NULL does not match.
func matches(where ast.ExprNode, e *env) (bool, error) {
	if where == nil {
		return true, nil
	}
	v, err := eval(where, e)
	if err != nil {
		return false, err
	}
	b, _ := truth(v)
	return b, nil
}

func evalUnary(n *ast.UnaryOperationExpr, e *env) (types.Value, error) {
	v, err := eval(n.V, e)
	if err != nil || v.IsNull() {
		return types.NULL, err
	}
	switch n.Op {
	case opcode.Not:
		b, _ := truth(v)
		return types.NewBoolean(!b), nil
	case opcode.Minus:
		return arithmetic(opcode.Minus, types.NewLong(0), v)
	case opcode.Plus:
		return v, nil
	}
	return types.NULL, fmt.Errorf("unsupported operator %s", n.Op)
}

func evalBinary(n *ast.BinaryOperationExpr, e *env) (types.Value, error) {
	l, err := eval(n.L, e)
	if err != nil {
		return types.NULL, err
	}
	switch n.Op {
	case opcode.LogicAnd, opcode.LogicOr:
		return logic(n.Op, l, n.R, e)
	}
	r, err := eval(n.R, e)
	if err != nil {
		return types.NULL, err
	}
	switch n.Op {
	case opcode.EQ, opcode.NE, opcode.LT, opcode.LE, opcode.GT, opcode.GE:
		return compare(n.Op, l, r), nil
	case opcode.Plus, opcode.Minus, opcode.Mul, opcode.Div:
		return arithmetic(n.Op, l, r)
	}
	return types.NULL, fmt.Errorf("unsupported operator %s", n.Op)
}

func logic(op opcode.Op, l types.Value, right ast.ExprNode, e *env) (types.Value, error) {
	lb, lok := truth(l)
	if op == opcode.LogicAnd && lok && !lb {
		return types.NewBoolean(false), nil
	}
	if op == opcode.LogicOr && lok && lb {
		return types.NewBoolean(true), nil
	}
	r, err := eval(right, e)
	if err != nil {
		return types.NULL, err
	}
	rb, rok := truth(r)
	if op == opcode.LogicAnd {
		switch {
		case rok && !rb:
			return types.NewBoolean(false), nil
		case lok && rok:
			return types.NewBoolean(true), nil
		}
		return types.NULL, nil
	}
	switch {
	case rok && rb:
		return types.NewBoolean(true), nil
	case lok && rok:
		return types.NewBoolean(false), nil
	}
	return types.NULL, nil
}

// compare yields NULL when either side is NULL or the values are not comparable.
func compare(op opcode.Op, l, r types.Value) types.Value {
	if l.IsNull() || r.IsNull() {
		return types.NULL
	}
	if op == opcode.EQ || op == opcode.NE {
		if l.Type() == types.Array || l.Type() == types.Map {
			return types.NewBoolean(l.Equals(r) == (op == opcode.EQ))
		}
	}
	c, err := types.CompareValues(l, r)
	if err != nil {
		return types.NULL
	}
	var b bool
	switch op {
	case opcode.EQ:
		b = c == 0
	case opcode.NE:
		b = c != 0
	case opcode.LT:
		b = c < 0
	case opcode.LE:
		b = c <= 0
	case opcode.GT:
		b = c > 0
	case opcode.GE:
		b = c >= 0
	}
	return types.NewBoolean(b)
}

func isIntegral(v types.Value) bool {
	return v.Type() == types.Integer || v.Type() == types.Long
}

func arithmetic(op opcode.Op, l, r types.Value) (types.Value, error) {
	if l.IsNull() || r.IsNull() {
		return types.NULL, nil
	}
	if !l.IsNumeric() || !r.IsNumeric() {
		return types.NULL, fmt.Errorf("operator %s requires numeric operands, got %v and %v", op, l.Type(), r.Type())
	}
	if isIntegral(l) && isIntegral(r) && op != opcode.Div {
		a, _ := l.Int64()
		b, _ := r.Int64()
		switch op {
		case opcode.Plus:
			return types.NewLong(a + b), nil
		case opcode.Minus:
			return types.NewLong(a - b), nil
		case opcode.Mul:
			return types.NewLong(a * b), nil
		}
	}
	a, err := l.Float64()
	if err != nil {
		return types.NULL, err
	}
	b, err := r.Float64()
	if err != nil {
		return types.NULL, err
	}
	switch op {
	case opcode.Plus:
		return types.NewDouble(a + b), nil
	case opcode.Minus:
		return types.NewDouble(a - b), nil
	case opcode.Mul:
		return types.NewDouble(a * b), nil
	case opcode.Div:
		if b == 0 {
			return types.NULL, nil
		}
		return types.NewDouble(a / b), nil
	}
	return types.NULL, fmt.Errorf("unsupported operator %s", op)
}

func evalBetween(n *ast.BetweenExpr, e *env) (types.Value, error) {
	v, err := eval(n.Expr, e)
	if err != nil {
		return types.NULL, err
	}
	lo, err := eval(n.Left, e)
	if err != nil {
		return types.NULL, err
	}
	hi, err := eval(n.Right, e)
	if err != nil {
		return types.NULL, err
	}
	ge, geOK := truth(compare(opcode.GE, v, lo))
	le, leOK := truth(compare(opcode.LE, v, hi))
	if !geOK || !leOK {
		return types.NULL, nil
	}
	return types.NewBoolean((ge && le) != n.Not), nil
}

func evalIn(n *ast.PatternInExpr, e *env) (types.Value, error) {
	if n.Sel != nil {
		return types.NULL, fmt.Errorf("sub queries are not supported")
	}
	v, err := eval(n.Expr, e)
	if err != nil || v.IsNull() {
		return types.NULL, err
	}
	found := false
	for _, item := range n.List {
		iv, err := eval(item, e)
		if err != nil {
			return types.NULL, err
		}
		if b, ok := truth(compare(opcode.EQ, v, iv)); ok && b {
			found = true
			break
		}
	}
	return types.NewBoolean(found != n.Not), nil
}
