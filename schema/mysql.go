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

const mysqlColumnsQuery = `
SELECT c.TABLE_NAME, c.COLUMN_NAME, c.COLUMN_TYPE, c.IS_NULLABLE, c.COLUMN_KEY
FROM information_schema.COLUMNS c
JOIN information_schema.TABLES t
  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
WHERE c.TABLE_SCHEMA = DATABASE() AND t.TABLE_TYPE = 'BASE TABLE'
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// TABLE_ROWS is the storage engine's estimate; exact for MyISAM,
// approximate for InnoDB
const mysqlRowEstimatesQuery = `
SELECT TABLE_NAME, COALESCE(TABLE_ROWS, 0)
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'`

func mysqlKeyRole(columnKey string) KeyRole {
	switch columnKey {
	case "PRI":
		return KeyPrimary
	case "UNI":
		return KeyUnique
	case "MUL":
		return KeyIndex
	default:
		return KeyNone
	}
}

func introspectMySQL(ctx context.Context, db *sql.DB) (map[string]TableSchema, error) {
	tables := make(map[string]TableSchema)

	err := collectRows(ctx, db, mysqlColumnsQuery, func(rows *sql.Rows) error {
		var tableName, columnName, columnType, isNullable, columnKey string
		if err := rows.Scan(&tableName, &columnName, &columnType, &isNullable, &columnKey); err != nil {
			return err
		}
		ts := tables[tableName]
		ts.Columns = append(ts.Columns, ColumnSchema{
			Name:     columnName,
			Type:     columnType,
			Nullable: isNullable == "YES",
			Key:      mysqlKeyRole(columnKey),
		})
		tables[tableName] = ts
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = collectRows(ctx, db, mysqlRowEstimatesQuery, func(rows *sql.Rows) error {
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
