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

package textgen

import (
	"context"
	"strings"
	"testing"

	"datapilot/backend/schema"
)

func sampleSchema() *schema.Metadata {
	return &schema.Metadata{
		Schema: map[string]schema.TableSchema{
			"users": {
				Columns: []schema.ColumnSchema{
					{Name: "id", Type: "INTEGER", Key: schema.KeyPrimary},
					{Name: "name", Type: "TEXT", Nullable: true},
				},
				Stats: schema.TableStats{ApproxRows: 12},
			},
			"orders": {
				Columns: []schema.ColumnSchema{
					{Name: "id", Type: "INTEGER", Key: schema.KeyPrimary},
				},
			},
		},
	}
}

func TestStaticGenerator_GenerateSQL(t *testing.T) {
	g := NewStaticGenerator()

	sql, err := g.GenerateSQL(context.Background(), Request{
		Instruction: "show me everything",
		Schema:      sampleSchema(),
	})
	if err != nil {
		t.Fatalf("GenerateSQL failed: %v", err)
	}
	// Alphabetically first table
	if sql != "SELECT * FROM orders LIMIT 10" {
		t.Errorf("sql = %q", sql)
	}
}

func TestStaticGenerator_EmptySchema(t *testing.T) {
	g := NewStaticGenerator()

	if _, err := g.GenerateSQL(context.Background(), Request{Schema: nil}); err == nil {
		t.Error("expected error for empty schema")
	}
	if _, err := g.GenerateGraph(context.Background(), Request{Schema: nil}); err == nil {
		t.Error("expected error for empty schema")
	}
}

func TestStaticGenerator_Reply(t *testing.T) {
	g := NewStaticGenerator()

	reply, err := g.Reply(context.Background(), Request{Schema: sampleSchema()})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if !strings.Contains(reply, "2 table(s)") {
		t.Errorf("reply = %q", reply)
	}
	if !strings.Contains(reply, "orders, users") {
		t.Errorf("reply does not list tables in order: %q", reply)
	}
}

func TestStaticGenerator_GenerateDocs(t *testing.T) {
	g := NewStaticGenerator()

	docs, err := g.GenerateDocs(context.Background(), Request{Schema: sampleSchema()})
	if err != nil {
		t.Fatalf("GenerateDocs failed: %v", err)
	}
	for _, want := range []string{"## users", "## orders", "| id | INTEGER |"} {
		if !strings.Contains(docs, want) {
			t.Errorf("docs missing %q", want)
		}
	}
}

func TestStaticGenerator_GenerateGraph(t *testing.T) {
	g := NewStaticGenerator()

	spec, err := g.GenerateGraph(context.Background(), Request{Schema: sampleSchema()})
	if err != nil {
		t.Fatalf("GenerateGraph failed: %v", err)
	}
	if spec.ChartType != "bar" {
		t.Errorf("chart type = %q", spec.ChartType)
	}
	if !strings.Contains(spec.Query, "FROM orders") {
		t.Errorf("graph query = %q", spec.Query)
	}
}

func TestRenderSchema(t *testing.T) {
	out := renderSchema(sampleSchema())

	if !strings.Contains(out, "TABLE users (id INTEGER PRIMARY KEY NOT NULL, name TEXT) -- ~12 rows") {
		t.Errorf("rendered schema = %q", out)
	}
	// Deterministic table order
	if strings.Index(out, "TABLE orders") > strings.Index(out, "TABLE users") {
		t.Error("tables not rendered in sorted order")
	}

	if renderSchema(nil) != "(no tables)" {
		t.Error("nil schema not rendered as empty")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"```\nSELECT 1\n```", "SELECT 1"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  SELECT 1  ", "SELECT 1"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
