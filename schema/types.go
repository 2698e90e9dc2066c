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

package schema

import "time"

// KeyRole describes a column's participation in table keys
type KeyRole string

const (
	KeyNone    KeyRole = ""
	KeyPrimary KeyRole = "primary"
	KeyUnique  KeyRole = "unique"
	KeyIndex   KeyRole = "index"
)

// ColumnSchema describes one column: name, declared type, nullability
// and key role, in the order the catalog reports them
type ColumnSchema struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Key      KeyRole `json:"key,omitempty"`
}

// TableStats carries lightweight, best-effort statistics. Row counts
// are catalog estimates for server databases; never the result of a
// full scan.
type TableStats struct {
	ApproxRows int64 `json:"approx_rows"`
}

// TableSchema is the immutable snapshot of one table
type TableSchema struct {
	Columns []ColumnSchema `json:"columns"`
	Stats   TableStats     `json:"extra_stats"`
}

// Metadata is the full snapshot of one database, captured at one point
// in time. It is never refreshed automatically; a caller re-triggers
// introspection to observe schema drift.
type Metadata struct {
	Schema     map[string]TableSchema `json:"schema"`
	CapturedAt time.Time              `json:"captured_at"`
}

// Tables returns the number of tables in the snapshot
func (m *Metadata) Tables() int {
	if m == nil {
		return 0
	}
	return len(m.Schema)
}
