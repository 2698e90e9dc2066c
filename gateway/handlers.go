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
	"datapilot/backend/schema"
)

// handleValidateConnection resolves (or creates) the pooled handle for
// the connection string, probes liveness, introspects the schema and
// caches the snapshot. On any failure the handle stays in the pool so
// a transient error does not evict an otherwise-reusable pool.
func (g *Gateway) handleValidateConnection(w http.ResponseWriter, r *http.Request, requestID string) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" {
		writeFailure(w, "connection_string is missing")
		return
	}

	handle, err := g.pool.Resolve(req.ConnectionString)
	if err != nil {
		g.logger.ErrorWithErr(requestID, "resolve failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	if err := handle.Ping(r.Context()); err != nil {
		g.logger.ErrorWithErr(requestID, "liveness probe failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	metadata, err := schema.Introspect(r.Context(), handle)
	if err != nil {
		g.logger.ErrorWithErr(requestID, "introspection failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	if err := g.store.Put(r.Context(), req.ConnectionString, metadata); err != nil {
		g.logger.ErrorWithErr(requestID, "metadata store put failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	g.logger.Info(requestID, "connection validated", map[string]interface{}{
		"tables": metadata.Tables(),
	})
	writeJSON(w, http.StatusOK, ValidateResponse{Success: true, Data: metadata})
}

// handleExecuteQuery runs one SQL statement through the instrumented
// executor. Arbitrary SQL is accepted; the caller is trusted for
// anything the database credentials permit.
func (g *Gateway) handleExecuteQuery(w http.ResponseWriter, r *http.Request, requestID string) {
	var req QueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" || req.Query == "" {
		writeFailure(w, "Connection string or Query is missing")
		return
	}

	handle, err := g.pool.Resolve(req.ConnectionString)
	if err != nil {
		writeFailure(w, err.Error())
		return
	}

	result, err := handle.Execute(r.Context(), req.Query)
	if err != nil {
		g.logger.ErrorWithErr(requestID, "statement failed", err, nil)
		writeFailure(w, err.Error())
		return
	}

	if result.Acknowledged {
		affected := result.RowsAffected
		writeJSON(w, http.StatusOK, QueryResponse{
			Success:      true,
			Acknowledged: true,
			RowsAffected: &affected,
		})
		return
	}

	// Rows serialize as [] rather than null for empty results
	rows := result.Rows
	if rows == nil {
		rows = []engine.Row{}
	}
	duration := result.Duration.Seconds()
	writeJSON(w, http.StatusOK, QueryResponse{
		Success:  true,
		Rows:     &rows,
		Duration: &duration,
	})
}

// handleGetSchema serves the cached snapshot; it never triggers a
// fresh introspection. Absence is a user-facing error telling the
// client to validate first.
func (g *Gateway) handleGetSchema(w http.ResponseWriter, r *http.Request, requestID string) {
	var req ValidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.ConnectionString == "" {
		writeFailure(w, "connection_string is missing")
		return
	}

	metadata, err := g.store.Get(r.Context(), req.ConnectionString)
	if err != nil {
		writeFailure(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SchemaResponse{Success: true, Data: metadata.Schema})
}

// handleHealth is the liveness endpoint
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"handles": g.pool.Count(),
	})
}
