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
	"context"
	"database/sql"
	"strings"
	"time"
)

// rowProducingVerbs are the statement keywords executed through the
// row-returning path. Everything else goes through Exec and returns
// an acknowledgment.
var rowProducingVerbs = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"VALUES":   true,
	"DESC":     true,
	"DESCRIBE": true,
}

// stripLeadingComments removes whitespace, -- line comments and
// /* */ block comments from the front of a statement so classification
// sees the first real token
func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}

func isRowProducing(sqlText string) bool {
	s := stripLeadingComments(sqlText)
	// A parenthesized SELECT is still row-producing
	s = strings.TrimLeft(s, "( \t\r\n")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	return rowProducingVerbs[strings.ToUpper(fields[0])]
}

// Execute runs a single SQL statement inside an explicit transaction
// scoped to that statement, measuring wall-clock duration and invoking
// the pool's observers around the inner execution.
//
// Row-producing statements return ordered typed rows plus the measured
// duration; non-row statements return an acknowledgment without a
// duration (a documented asymmetry, not masked). The transaction
// commits on success and rolls back on any execution error; nothing is
// retried. One statement per call; arbitrary SQL is accepted - DDL,
// DML, DQL - the caller is trusted for anything the database
// credentials permit.
func (h *Handle) Execute(ctx context.Context, sqlText string, params ...interface{}) (*QueryResult, error) {
	if err := h.pool.beginOp("Execute"); err != nil {
		return nil, err
	}
	defer h.pool.endOp()

	// Per-statement deadline when the caller's context carries none
	if _, ok := ctx.Deadline(); !ok && h.pool.config.StatementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.pool.config.StatementTimeout)
		defer cancel()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewError(KindConnection, "Execute", "failed to begin transaction", err)
	}

	event := &ExecutionEvent{
		ConnectionString: h.connectionString,
		Statement:        sqlText,
		Params:           params,
		Start:            time.Now(),
	}
	notifyBefore(h.pool.observers, event)

	result, execErr := h.executeInTx(ctx, tx, sqlText, params, event.Start)

	event.Elapsed = time.Since(event.Start)
	event.Err = execErr
	notifyAfter(h.pool.observers, event)

	if execErr != nil {
		_ = tx.Rollback()
		return nil, NewError(KindExecution, "Execute", "statement failed", execErr)
	}

	if err := tx.Commit(); err != nil {
		return nil, NewError(KindExecution, "Execute", "commit failed", err)
	}

	return result, nil
}

// executeInTx runs the statement through the row or non-row path and
// normalizes the outcome. Duration is stamped by the caller.
func (h *Handle) executeInTx(ctx context.Context, tx *sql.Tx, sqlText string, params []interface{}, start time.Time) (*QueryResult, error) {
	if !isRowProducing(sqlText) {
		res, err := tx.ExecContext(ctx, sqlText, params...)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			// Some drivers cannot report affected rows for DDL
			affected = 0
		}
		return &QueryResult{Acknowledged: true, RowsAffected: affected}, nil
	}

	rows, err := tx.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Row, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[i] = Cell{Name: col, Value: typedValue(values[i])}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryResult{
		Rows:     results,
		Columns:  columns,
		Duration: time.Since(start),
	}, nil
}
