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

package gateway

import (
	"datapilot/backend/engine"
	"datapilot/backend/schema"
	"datapilot/backend/textgen"
)

// ValidateRequest registers (or re-validates) a database connection
type ValidateRequest struct {
	ConnectionString string `json:"connection_string"`
}

// ValidateResponse carries the captured metadata on success
type ValidateResponse struct {
	Success bool             `json:"success"`
	Data    *schema.Metadata `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
}

// QueryRequest executes one SQL statement against a validated connection
type QueryRequest struct {
	ConnectionString string `json:"connection_string"`
	Query            string `json:"query"`
}

// QueryResponse is either rows+duration (row-producing statement) or
// an acknowledgment (everything else). Duration is in seconds. Rows is
// a pointer so an empty result still serializes as [] while
// acknowledgments omit the field entirely.
type QueryResponse struct {
	Success      bool          `json:"success"`
	Rows         *[]engine.Row `json:"rows,omitempty"`
	Duration     *float64      `json:"duration,omitempty"`
	Acknowledged bool          `json:"acknowledged,omitempty"`
	RowsAffected *int64        `json:"rows_affected,omitempty"`
	Message      string        `json:"message,omitempty"`
}

// SchemaResponse returns the cached schema snapshot
type SchemaResponse struct {
	Success bool                          `json:"success"`
	Data    map[string]schema.TableSchema `json:"data,omitempty"`
	Message string                        `json:"message,omitempty"`
}

// NLPRequest turns a natural-language description into SQL
type NLPRequest struct {
	Description      string                        `json:"description"`
	ConnectionString string                        `json:"connection_string,omitempty"`
	Schema           map[string]schema.TableSchema `json:"schema,omitempty"`
}

// NLPResponse carries the generated SQL
type NLPResponse struct {
	Success bool   `json:"success"`
	SQL     string `json:"sql,omitempty"`
	Message string `json:"message,omitempty"`
}

// DocsRequest generates documentation for a schema
type DocsRequest struct {
	ConnectionString string                        `json:"connection_string,omitempty"`
	Schema           map[string]schema.TableSchema `json:"schema,omitempty"`
}

// DocsResponse carries the generated documentation
type DocsResponse struct {
	Success bool   `json:"success"`
	Docs    string `json:"docs,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChatRequest asks a conversational question; also used by /graph.
// The userInput field name is part of the public contract.
type ChatRequest struct {
	UserInput        string           `json:"userInput"`
	Query            string           `json:"query,omitempty"`
	ConnectionString string           `json:"connection_string,omitempty"`
	Metadata         *schema.Metadata `json:"metadata,omitempty"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	Success bool   `json:"success"`
	Reply   string `json:"reply,omitempty"`
	Message string `json:"message,omitempty"`
}

// GraphResponse carries the proposed chart and its data
type GraphResponse struct {
	Success bool               `json:"success"`
	Graph   *textgen.GraphSpec `json:"graph,omitempty"`
	Rows    []engine.Row       `json:"rows,omitempty"`
	Message string             `json:"message,omitempty"`
}

// errorResponse is the uniform failure envelope for every endpoint
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
