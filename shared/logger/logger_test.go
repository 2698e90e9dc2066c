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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewWithWriter("test-component", &buf), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	return entry
}

func TestLoggerWritesJSONLine(t *testing.T) {
	l, buf := capture(t)

	l.Info("req-123", "connection validated", map[string]interface{}{"tables": 2})

	entry := lastEntry(t, buf)
	if entry.Level != INFO {
		t.Errorf("level = %s, want INFO", entry.Level)
	}
	if entry.Component != "test-component" {
		t.Errorf("component = %s", entry.Component)
	}
	if entry.RequestID != "req-123" {
		t.Errorf("request_id = %s", entry.RequestID)
	}
	if entry.Message != "connection validated" {
		t.Errorf("message = %s", entry.Message)
	}
	if entry.Fields["tables"] != float64(2) {
		t.Errorf("fields = %v", entry.Fields)
	}
	if entry.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestLoggerLevels(t *testing.T) {
	l, buf := capture(t)

	l.Debug("", "d", nil)
	l.Warn("", "w", nil)
	l.Error("", "e", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, want := range []LogLevel{DEBUG, WARN, ERROR} {
		var entry LogEntry
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("line %d not valid JSON: %v", i, err)
		}
		if entry.Level != want {
			t.Errorf("line %d level = %s, want %s", i, entry.Level, want)
		}
	}
}

func TestInfoWithDuration(t *testing.T) {
	l, buf := capture(t)

	l.InfoWithDuration("req-1", "request handled", 12.5, nil)

	entry := lastEntry(t, buf)
	if entry.Fields["duration_ms"] != 12.5 {
		t.Errorf("duration_ms = %v", entry.Fields["duration_ms"])
	}
}

func TestErrorWithErr(t *testing.T) {
	l, buf := capture(t)

	l.ErrorWithErr("req-1", "statement failed", errors.New("boom"), nil)

	entry := lastEntry(t, buf)
	if entry.Level != ERROR {
		t.Errorf("level = %s", entry.Level)
	}
	if entry.Fields["error"] != "boom" {
		t.Errorf("error field = %v", entry.Fields["error"])
	}
}

func TestEmptyRequestIDOmitted(t *testing.T) {
	l, buf := capture(t)

	l.Info("", "no request context", nil)

	if strings.Contains(buf.String(), "request_id") {
		t.Error("empty request_id should be omitted from output")
	}
}
