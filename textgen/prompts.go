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
	"fmt"
	"sort"
	"strings"

	"datapilot/backend/schema"
)

// renderSchema flattens a metadata snapshot into the compact text
// form embedded in prompts: one line per table, deterministic order.
func renderSchema(m *schema.Metadata) string {
	if m == nil || len(m.Schema) == 0 {
		return "(no tables)"
	}

	names := make([]string, 0, len(m.Schema))
	for name := range m.Schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		table := m.Schema[name]
		cols := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			desc := col.Name + " " + col.Type
			if col.Key == schema.KeyPrimary {
				desc += " PRIMARY KEY"
			}
			if !col.Nullable {
				desc += " NOT NULL"
			}
			cols = append(cols, desc)
		}
		fmt.Fprintf(&b, "TABLE %s (%s) -- ~%d rows\n", name, strings.Join(cols, ", "), table.Stats.ApproxRows)
	}
	return b.String()
}

const sqlSystemPrompt = `You are a SQL generator. Given a database schema and a task
description, respond with exactly one SQL statement and nothing else:
no explanation, no markdown fences.`

const chatSystemPrompt = `You are a helpful data assistant. Answer questions about the
user's database using the schema and, when present, their last query.`

const docsSystemPrompt = `You are a technical writer. Produce concise markdown
documentation for the database schema: purpose of each table, its
columns and relationships.`

const graphSystemPrompt = `You are a charting assistant. Given a schema and a request,
respond with a single JSON object and nothing else, with keys:
chart_type (bar|line|pie|scatter), title, x_column, y_column, query
(the SQL producing the chart data).`

func sqlUserPrompt(req Request) string {
	return fmt.Sprintf("Schema:\n%s\nTask: %s", renderSchema(req.Schema), req.Instruction)
}

func chatUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schema:\n%s\n", renderSchema(req.Schema))
	if req.PriorQuery != "" {
		fmt.Fprintf(&b, "Last query: %s\n", req.PriorQuery)
	}
	fmt.Fprintf(&b, "Question: %s", req.Instruction)
	return b.String()
}

func docsUserPrompt(req Request) string {
	return fmt.Sprintf("Document this schema:\n%s", renderSchema(req.Schema))
}

func graphUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schema:\n%s\n", renderSchema(req.Schema))
	if req.PriorQuery != "" {
		fmt.Fprintf(&b, "Last query: %s\n", req.PriorQuery)
	}
	fmt.Fprintf(&b, "Request: %s", req.Instruction)
	return b.String()
}

// stripCodeFences removes markdown fencing that models sometimes wrap
// around SQL or JSON despite instructions
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag on the opening fence (```sql, ```json)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, " \t") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
