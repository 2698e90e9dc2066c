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
	"sync"
	"testing"
)

func newTestHandle(t *testing.T, observers ...Observer) *Handle {
	t.Helper()
	pool := NewPool(DefaultConfig(), observers...)
	t.Cleanup(func() { _ = pool.DisposeAll(context.Background()) })

	handle, err := pool.Resolve(testConnectionString(t))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return handle
}

func TestExecute_RowProducing(t *testing.T) {
	handle := newTestHandle(t)

	result, err := handle.Execute(context.Background(), "SELECT 1 AS x")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Acknowledged {
		t.Error("row-producing statement returned an acknowledgment")
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	if result.Duration < 0 {
		t.Errorf("duration = %v, want >= 0", result.Duration)
	}

	row := result.Rows[0]
	if len(row) != 1 || row[0].Name != "x" {
		t.Fatalf("unexpected row shape: %+v", row)
	}
	if row[0].Value.Kind != KindInt {
		t.Errorf("value kind = %s, want %s", row[0].Value.Kind, KindInt)
	}
	if row[0].Value.Data.(int64) != 1 {
		t.Errorf("value = %v, want 1", row[0].Value.Data)
	}
}

func TestExecute_NonRowStatement(t *testing.T) {
	handle := newTestHandle(t)

	result, err := handle.Execute(context.Background(), "CREATE TABLE scratch (id INTEGER)")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Acknowledged {
		t.Error("non-row statement did not return an acknowledgment")
	}
	if result.Rows != nil {
		t.Error("acknowledgment carried rows")
	}
	if result.Duration != 0 {
		t.Errorf("acknowledgment carried a duration: %v", result.Duration)
	}
}

func TestExecute_ColumnOrderPreserved(t *testing.T) {
	handle := newTestHandle(t)

	if _, err := handle.Execute(context.Background(),
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, zebra TEXT, alpha TEXT)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := handle.Execute(context.Background(),
		"INSERT INTO users (id, name, zebra, alpha) VALUES (1, 'ann', 'z', 'a')"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	result, err := handle.Execute(context.Background(),
		"SELECT zebra, alpha, name, id FROM users")
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	want := []string{"zebra", "alpha", "name", "id"}
	row := result.Rows[0]
	if len(row) != len(want) {
		t.Fatalf("got %d cells, want %d", len(row), len(want))
	}
	for i, name := range want {
		if row[i].Name != name {
			t.Errorf("cell %d name = %s, want %s", i, row[i].Name, name)
		}
	}
}

func TestExecute_RollbackOnError(t *testing.T) {
	handle := newTestHandle(t)
	ctx := context.Background()

	if _, err := handle.Execute(ctx, "CREATE TABLE accounts (id INTEGER PRIMARY KEY, balance INTEGER)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := handle.Execute(ctx, "INSERT INTO accounts VALUES (1, 100)"); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Multi-row insert with a primary-key collision mid-statement
	_, err := handle.Execute(ctx, "INSERT INTO accounts VALUES (2, 50), (1, 75)")
	if err == nil {
		t.Fatal("expected a constraint violation")
	}
	if KindOf(err) != KindExecution {
		t.Errorf("KindOf(err) = %s, want %s", KindOf(err), KindExecution)
	}

	result, err := handle.Execute(ctx, "SELECT COUNT(*) AS c FROM accounts")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got := result.Rows[0].Get("c").Data.(int64); got != 1 {
		t.Errorf("table has %d rows after failed statement, want 1 (rollback)", got)
	}
}

func TestExecute_LeadingCommentStillReturnsRows(t *testing.T) {
	handle := newTestHandle(t)
	ctx := context.Background()

	statements := []string{
		"-- fetch one\nSELECT 1 AS x",
		"/* hint */ SELECT 1 AS x",
		"-- first\n-- second\nSELECT 1 AS x",
	}
	for _, stmt := range statements {
		result, err := handle.Execute(ctx, stmt)
		if err != nil {
			t.Fatalf("Execute(%q) failed: %v", stmt, err)
		}
		if result.Acknowledged {
			t.Errorf("Execute(%q) returned an acknowledgment, want rows", stmt)
			continue
		}
		if len(result.Rows) != 1 || result.Rows[0].Get("x").Data.(int64) != 1 {
			t.Errorf("Execute(%q) rows = %+v, want one row x=1", stmt, result.Rows)
		}
	}
}

func TestExecute_SyntaxErrorTranslated(t *testing.T) {
	handle := newTestHandle(t)

	_, err := handle.Execute(context.Background(), "SELEKT broken")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	if KindOf(err) != KindExecution {
		t.Errorf("KindOf(err) = %s, want %s", KindOf(err), KindExecution)
	}
}

func TestExecute_NullAndTypedValues(t *testing.T) {
	handle := newTestHandle(t)
	ctx := context.Background()

	result, err := handle.Execute(ctx, "SELECT NULL AS n, 2.5 AS f, 'hi' AS s")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	row := result.Rows[0]
	if row.Get("n").Kind != KindNull {
		t.Errorf("n kind = %s, want %s", row.Get("n").Kind, KindNull)
	}
	if row.Get("f").Kind != KindFloat {
		t.Errorf("f kind = %s, want %s", row.Get("f").Kind, KindFloat)
	}
	if row.Get("s").Kind != KindText {
		t.Errorf("s kind = %s, want %s", row.Get("s").Kind, KindText)
	}
}

// recordingObserver captures execution events for assertions
type recordingObserver struct {
	mu     sync.Mutex
	before []ExecutionEvent
	after  []ExecutionEvent
}

func (o *recordingObserver) OnBeforeExecute(event *ExecutionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.before = append(o.before, *event)
}

func (o *recordingObserver) OnAfterExecute(event *ExecutionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.after = append(o.after, *event)
}

// panickyObserver always panics, proving hook failures are isolated
type panickyObserver struct{}

func (panickyObserver) OnBeforeExecute(event *ExecutionEvent) { panic("before") }
func (panickyObserver) OnAfterExecute(event *ExecutionEvent)  { panic("after") }

func TestExecute_ObserversInvoked(t *testing.T) {
	recorder := &recordingObserver{}
	handle := newTestHandle(t, recorder)

	if _, err := handle.Execute(context.Background(), "SELECT 1 AS x"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(recorder.before) != 1 || len(recorder.after) != 1 {
		t.Fatalf("observer saw %d before / %d after events, want 1/1",
			len(recorder.before), len(recorder.after))
	}
	if recorder.before[0].Statement != "SELECT 1 AS x" {
		t.Errorf("before event statement = %q", recorder.before[0].Statement)
	}
	if recorder.before[0].Elapsed != 0 {
		t.Error("before event already carried an elapsed time")
	}
	if recorder.after[0].Elapsed < 0 {
		t.Error("after event elapsed time is negative")
	}
	if recorder.after[0].Err != nil {
		t.Errorf("after event carried an error: %v", recorder.after[0].Err)
	}
}

func TestExecute_ObserverSeesFailure(t *testing.T) {
	recorder := &recordingObserver{}
	handle := newTestHandle(t, recorder)

	_, err := handle.Execute(context.Background(), "SELEKT broken")
	if err == nil {
		t.Fatal("expected execution error")
	}
	if len(recorder.after) != 1 {
		t.Fatalf("observer saw %d after events, want 1", len(recorder.after))
	}
	if recorder.after[0].Err == nil {
		t.Error("after event did not carry the execution error")
	}
}

func TestExecute_ObserverPanicIsolated(t *testing.T) {
	recorder := &recordingObserver{}
	handle := newTestHandle(t, panickyObserver{}, recorder)

	result, err := handle.Execute(context.Background(), "SELECT 1 AS x")
	if err != nil {
		t.Fatalf("panicking observer aborted the statement: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatal("statement result lost")
	}
	// Observers after the panicking one still run
	if len(recorder.before) != 1 || len(recorder.after) != 1 {
		t.Error("observer after the panicking one was skipped")
	}
}

func TestExecute_RejectedDuringDisposal(t *testing.T) {
	pool := NewPool(DefaultConfig())
	handle, err := pool.Resolve(testConnectionString(t))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if err := pool.DisposeAll(context.Background()); err != nil {
		t.Fatalf("DisposeAll failed: %v", err)
	}

	// The disposed handle's pool entry is gone; executing through it
	// must surface an error, not silently reuse closed connections
	if _, err := handle.Execute(context.Background(), "SELECT 1"); err == nil {
		t.Error("Execute on a disposed handle succeeded")
	}
}

func TestIsRowProducing(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT * FROM t", true},
		{"  select 1", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"EXPLAIN SELECT 1", true},
		{"PRAGMA table_info(t)", true},
		{"-- comment\nSELECT 1", true},
		{"/* comment */ SELECT 1", true},
		{"/* multi\nline */\nSELECT 1", true},
		{"(SELECT 1)", true},
		{"-- comment\nINSERT INTO t VALUES (1)", false},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"DELETE FROM t", false},
		{"CREATE TABLE t (id INTEGER)", false},
		{"DROP TABLE t", false},
		{"-- only a comment", false},
		{"/* unterminated", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isRowProducing(tt.sql); got != tt.want {
			t.Errorf("isRowProducing(%q) = %t, want %t", tt.sql, got, tt.want)
		}
	}
}
