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

import (
	"context"
	"database/sql"
)

const pgColumnsQuery = `
SELECT c.table_name, c.column_name, c.data_type, c.is_nullable
FROM information_schema.columns c
JOIN information_schema.tables t
  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
WHERE c.table_schema = 'public' AND t.table_type = 'BASE TABLE'
ORDER BY c.table_name, c.ordinal_position`

const pgPrimaryKeysQuery = `
SELECT kcu.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name
 AND kcu.table_schema = tc.table_schema
WHERE tc.table_schema = 'public' AND tc.constraint_type = 'PRIMARY KEY'`

// Planner estimates from pg_class; cheap and good enough for
// best-effort stats (exact counts would require full scans)
const pgRowEstimatesQuery = `
SELECT c.relname, GREATEST(c.reltuples, 0)::bigint
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = 'public' AND c.relkind = 'r'`

func introspectPostgres(ctx context.Context, db *sql.DB) (map[string]TableSchema, error) {
	tables := make(map[string]TableSchema)

	err := collectRows(ctx, db, pgColumnsQuery, func(rows *sql.Rows) error {
		var tableName, columnName, dataType, isNullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &isNullable); err != nil {
			return err
		}
		ts := tables[tableName]
		ts.Columns = append(ts.Columns, ColumnSchema{
			Name:     columnName,
			Type:     dataType,
			Nullable: isNullable == "YES",
		})
		tables[tableName] = ts
		return nil
	})
	if err != nil {
		return nil, err
	}

	primary := make(map[string]map[string]bool)
	err = collectRows(ctx, db, pgPrimaryKeysQuery, func(rows *sql.Rows) error {
		var tableName, columnName string
		if err := rows.Scan(&tableName, &columnName); err != nil {
			return err
		}
		if primary[tableName] == nil {
			primary[tableName] = make(map[string]bool)
		}
		primary[tableName][columnName] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	for name, ts := range tables {
		for i, col := range ts.Columns {
			if primary[name][col.Name] {
				ts.Columns[i].Key = KeyPrimary
			}
		}
		tables[name] = ts
	}

	err = collectRows(ctx, db, pgRowEstimatesQuery, func(rows *sql.Rows) error {
		var tableName string
		var estimate int64
		if err := rows.Scan(&tableName, &estimate); err != nil {
			return err
		}
		if ts, ok := tables[tableName]; ok {
			ts.Stats.ApproxRows = estimate
			tables[tableName] = ts
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tables, nil
}
