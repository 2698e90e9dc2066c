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

// Package textgen hosts the text-generation collaborators consumed by
// the request gateway: NL-to-SQL, chat, documentation and graphing.
// Each takes a user instruction, an optional prior query and a schema
// snapshot, and returns a domain-specific payload. The core's only
// contract with them is supplying a valid Metadata snapshot.
package textgen

import (
	"context"

	"datapilot/backend/schema"
)

// Request is the common input tuple for every collaborator
type Request struct {
	// Instruction is the user's natural-language input
	Instruction string
	// PriorQuery is the SQL the user last ran, when relevant
	PriorQuery string
	// Schema is the metadata snapshot the collaborator reasons over
	Schema *schema.Metadata
}

// GraphSpec describes a chart to render client-side, plus the
// follow-up query whose result feeds it
type GraphSpec struct {
	ChartType string `json:"chart_type"` // bar, line, pie, scatter
	Title     string `json:"title"`
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column"`
	Query     string `json:"query"`
}

// Generator is the unified interface for text-generation
// collaborators. Implementations must be safe for concurrent use.
type Generator interface {
	// Name identifies the implementation for logging and health checks
	Name() string

	// GenerateSQL turns a natural-language description into a single
	// SQL statement valid against the request schema
	GenerateSQL(ctx context.Context, req Request) (string, error)

	// Reply produces a conversational answer about the schema and the
	// user's prior query
	Reply(ctx context.Context, req Request) (string, error)

	// GenerateDocs produces prose documentation for the schema
	GenerateDocs(ctx context.Context, req Request) (string, error)

	// GenerateGraph proposes a chart and the follow-up query that
	// feeds it
	GenerateGraph(ctx context.Context, req Request) (*GraphSpec, error)
}
