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

// Package schema walks a live database and produces a normalized
// Metadata snapshot: every accessible table with its ordered columns
// (name, type, nullability, key role) plus best-effort row statistics.
//
// Introspection is a full catalog scan and explicitly expensive. It is
// run once per connection validation, never implicitly by lightweight
// operations - those read the metadata store instead.
package schema

import (
	"context"
	"database/sql"
	"time"

	"datapilot/backend/engine"
)

// Introspect captures a Metadata snapshot over the given handle,
// dispatching on its SQL dialect. Fails with an introspection error
// when the catalog cannot be enumerated (insufficient privileges,
// unsupported dialect).
func Introspect(ctx context.Context, handle *engine.Handle) (*Metadata, error) {
	var (
		tables map[string]TableSchema
		err    error
	)

	switch handle.Dialect() {
	case engine.DialectPostgres:
		tables, err = introspectPostgres(ctx, handle.DB())
	case engine.DialectMySQL:
		tables, err = introspectMySQL(ctx, handle.DB())
	case engine.DialectSQLite:
		tables, err = introspectSQLite(ctx, handle.DB())
	default:
		return nil, engine.NewError(engine.KindIntrospection, "Introspect",
			"unsupported dialect: "+string(handle.Dialect()), nil)
	}

	if err != nil {
		return nil, engine.NewError(engine.KindIntrospection, "Introspect",
			"failed to enumerate schema objects", err)
	}

	return &Metadata{
		Schema:     tables,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// collectRows is a small helper shared by the dialect walkers: it runs
// a catalog query and invokes scan for every row
func collectRows(ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) error, args ...interface{}) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
