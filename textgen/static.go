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
	"fmt"
	"sort"
	"strings"

	"datapilot/backend/schema"
)

// StaticGenerator is the deterministic fallback used when no model
// API key is configured, and by tests. It derives its answers purely
// from the schema snapshot.
type StaticGenerator struct{}

// NewStaticGenerator creates the fallback generator
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Name returns the generator name
func (g *StaticGenerator) Name() string {
	return "static"
}

// firstTable returns the alphabetically first table of the snapshot
func firstTable(m *schema.Metadata) (string, schema.TableSchema, bool) {
	if m == nil || len(m.Schema) == 0 {
		return "", schema.TableSchema{}, false
	}
	names := make([]string, 0, len(m.Schema))
	for name := range m.Schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], m.Schema[names[0]], true
}

// GenerateSQL returns a preview query over the first table
func (g *StaticGenerator) GenerateSQL(ctx context.Context, req Request) (string, error) {
	name, _, ok := firstTable(req.Schema)
	if !ok {
		return "", fmt.Errorf("schema has no tables to query")
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT 10", name), nil
}

// Reply summarizes the schema
func (g *StaticGenerator) Reply(ctx context.Context, req Request) (string, error) {
	if req.Schema == nil || len(req.Schema.Schema) == 0 {
		return "The connected database has no tables yet.", nil
	}
	names := make([]string, 0, len(req.Schema.Schema))
	for name := range req.Schema.Schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("The connected database has %d table(s): %s.",
		len(names), strings.Join(names, ", ")), nil
}

// GenerateDocs renders a plain markdown listing of the schema
func (g *StaticGenerator) GenerateDocs(ctx context.Context, req Request) (string, error) {
	if req.Schema == nil || len(req.Schema.Schema) == 0 {
		return "# Database Documentation\n\nNo tables found.", nil
	}

	names := make([]string, 0, len(req.Schema.Schema))
	for name := range req.Schema.Schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# Database Documentation\n")
	for _, name := range names {
		table := req.Schema.Schema[name]
		fmt.Fprintf(&b, "\n## %s\n\n", name)
		fmt.Fprintf(&b, "Approximate rows: %d\n\n", table.Stats.ApproxRows)
		b.WriteString("| Column | Type | Nullable | Key |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "| %s | %s | %t | %s |\n", col.Name, col.Type, col.Nullable, col.Key)
		}
	}
	return b.String(), nil
}

// GenerateGraph proposes a bar chart of row counts per table
func (g *StaticGenerator) GenerateGraph(ctx context.Context, req Request) (*GraphSpec, error) {
	name, table, ok := firstTable(req.Schema)
	if !ok {
		return nil, fmt.Errorf("schema has no tables to graph")
	}
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns to graph", name)
	}

	x := table.Columns[0].Name
	return &GraphSpec{
		ChartType: "bar",
		Title:     fmt.Sprintf("Row distribution of %s", name),
		XColumn:   x,
		YColumn:   "count",
		Query:     fmt.Sprintf("SELECT %s, COUNT(*) AS count FROM %s GROUP BY %s LIMIT 50", x, name, x),
	}, nil
}
