// Copyright 2025 DataPilot
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ValueKind is the runtime kind of a result cell value
type ValueKind string

const (
	KindNull  ValueKind = "null"
	KindBool  ValueKind = "bool"
	KindInt   ValueKind = "integer"
	KindFloat ValueKind = "float"
	KindText  ValueKind = "text"
	KindBytes ValueKind = "binary"
	KindTime  ValueKind = "timestamp"
)

// Value is a typed result cell value
type Value struct {
	Kind ValueKind
	Data interface{}
}

// Cell is one column of a result row
type Cell struct {
	Name  string
	Value Value
}

// Row is an ordered sequence of cells, preserving the column order
// returned by the statement
type Row []Cell

// MarshalJSON renders the row as a JSON object with columns in
// statement order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cell := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(cell.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(cell.Value.Data)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON rebuilds the row from a JSON object, keeping the
// object's key order. Counterpart of MarshalJSON, used by clients of
// the wire format.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	row := Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row key is not a string")
		}

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		row = append(row, Cell{Name: name, Value: jsonValue(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

// jsonValue types a decoded JSON value the way typedValue types a
// driver value
func jsonValue(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Data: v}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return Value{Kind: KindInt, Data: n}
		}
		f, _ := v.Float64()
		return Value{Kind: KindFloat, Data: f}
	case string:
		return Value{Kind: KindText, Data: v}
	default:
		return Value{Kind: KindText, Data: fmt.Sprint(v)}
	}
}

// Get returns the value for a column name, or a null Value if the
// row has no such column
func (r Row) Get(name string) Value {
	for _, cell := range r {
		if cell.Name == name {
			return cell.Value
		}
	}
	return Value{Kind: KindNull}
}

// QueryResult is the outcome of a single statement execution.
// Either Rows is set (row-producing statement, with Duration) or
// Acknowledged is true (non-row statement, no duration) - never both.
type QueryResult struct {
	Rows         []Row
	Columns      []string
	Duration     time.Duration
	Acknowledged bool
	RowsAffected int64
}

// typedValue converts a raw driver value into a typed cell Value.
// Drivers hand back a small closed set of Go types; []byte is
// converted to text, matching what clients expect for varchar columns.
func typedValue(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindNull}
	case bool:
		return Value{Kind: KindBool, Data: v}
	case int64:
		return Value{Kind: KindInt, Data: v}
	case float64:
		return Value{Kind: KindFloat, Data: v}
	case time.Time:
		return Value{Kind: KindTime, Data: v}
	case []byte:
		return Value{Kind: KindText, Data: string(v)}
	case string:
		return Value{Kind: KindText, Data: v}
	default:
		return Value{Kind: KindText, Data: v}
	}
}
