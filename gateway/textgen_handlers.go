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
	"net/http"

	"datapilot/backend/engine"
	"datapilot/backend/textgen"
)

// handleNLPToSQL turns a natural-language description into SQL using
// the request-supplied schema or the cached snapshot
func (g *Gateway) handleNLPToSQL(w http.ResponseWriter, r *http.Request, requestID string) {
	var req NLPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.Description == "" {
		writeFailure(w, "description is missing")
		return
	}

	metadata, err := g.resolveSchema(r.Context(), req.Schema, req.ConnectionString)
	if err != nil {
		writeFailure(w, "Try connecting to your database again")
		return
	}

	sql, err := g.generator.GenerateSQL(r.Context(), textgen.Request{
		Instruction: req.Description,
		Schema:      metadata,
	})
	if err != nil {
		g.logger.ErrorWithErr(requestID, "sql generation failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NLPResponse{Success: true, SQL: sql})
}

// handleDocs generates prose documentation for the schema
func (g *Gateway) handleDocs(w http.ResponseWriter, r *http.Request, requestID string) {
	var req DocsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" && len(req.Schema) == 0 {
		writeFailure(w, "Field connection_string or schema is missing")
		return
	}

	metadata, err := g.resolveSchema(r.Context(), req.Schema, req.ConnectionString)
	if err != nil {
		writeFailure(w, err.Error())
		return
	}

	docs, err := g.generator.GenerateDocs(r.Context(), textgen.Request{Schema: metadata})
	if err != nil {
		g.logger.ErrorWithErr(requestID, "docs generation failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DocsResponse{Success: true, Docs: docs})
}

// handleChat produces a conversational reply about the schema and the
// user's prior query
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request, requestID string) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" && req.Metadata == nil {
		writeFailure(w, "Not enough data")
		return
	}

	metadata, err := g.resolveMetadata(r.Context(), req.Metadata, req.ConnectionString)
	if err != nil {
		writeFailure(w, err.Error())
		return
	}

	reply, err := g.generator.Reply(r.Context(), textgen.Request{
		Instruction: req.UserInput,
		PriorQuery:  req.Query,
		Schema:      metadata,
	})
	if err != nil {
		g.logger.ErrorWithErr(requestID, "chat reply failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Success: true, Reply: reply})
}

// handleGraph proposes a chart spec and runs its follow-up query
// through the core executor, returning spec plus data
func (g *Gateway) handleGraph(w http.ResponseWriter, r *http.Request, requestID string) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" && req.Metadata == nil {
		writeFailure(w, "Not enough data")
		return
	}

	metadata, err := g.resolveMetadata(r.Context(), req.Metadata, req.ConnectionString)
	if err != nil {
		writeFailure(w, err.Error())
		return
	}

	spec, err := g.generator.GenerateGraph(r.Context(), textgen.Request{
		Instruction: req.UserInput,
		PriorQuery:  req.Query,
		Schema:      metadata,
	})
	if err != nil {
		g.logger.ErrorWithErr(requestID, "graph generation failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	// The graph collaborator is the one feature that needs a live
	// connection: its proposed query runs through the normal
	// instrumented execution path
	var rows []engine.Row
	if req.ConnectionString != "" {
		handle, err := g.pool.Resolve(req.ConnectionString)
		if err != nil {
			writeFailure(w, err.Error())
			return
		}
		result, err := handle.Execute(r.Context(), spec.Query)
		if err != nil {
			g.logger.ErrorWithErr(requestID, "graph query failed", err, nil)
			writeFailure(w, err.Error())
			return
		}
		rows = result.Rows
	}

	writeJSON(w, http.StatusOK, GraphResponse{Success: true, Graph: spec, Rows: rows})
}
