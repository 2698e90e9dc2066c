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
	"fmt"
	"strings"
)

const sqliteTablesQuery = `
SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// quoteIdent quotes a SQLite identifier for PRAGMA/COUNT statements.
// Table names come from sqlite_master, not from user input, but may
// still contain quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func introspectSQLite(ctx context.Context, db *sql.DB) (map[string]TableSchema, error) {
	var names []string
	err := collectRows(ctx, db, sqliteTablesQuery, func(rows *sql.Rows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	tables := make(map[string]TableSchema, len(names))
	for _, name := range names {
		var ts TableSchema

		pragma := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name))
		err := collectRows(ctx, db, pragma, func(rows *sql.Rows) error {
			var (
				cid     int
				colName string
				colType string
				notNull int
				dfltVal sql.NullString
				pkIndex int
			)
			if err := rows.Scan(&cid, &colName, &colType, &notNull, &dfltVal, &pkIndex); err != nil {
				return err
			}
			key := KeyNone
			if pkIndex > 0 {
				key = KeyPrimary
			}
			ts.Columns = append(ts.Columns, ColumnSchema{
				Name:     colName,
				Type:     colType,
				Nullable: notNull == 0 && pkIndex == 0,
				Key:      key,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}

		// SQLite keeps no row estimate in its catalog; an exact COUNT
		// over a local file is cheap enough
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))
		if err := db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return nil, err
		}
		ts.Stats.ApproxRows = count

		tables[name] = ts
	}

	return tables, nil
}
