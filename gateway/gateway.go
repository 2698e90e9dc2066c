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

// Package gateway is the HTTP boundary of the DataPilot backend. It
// turns inbound calls into engine pool, introspector and executor
// invocations, and dispatches to the text-generation collaborators.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"datapilot/backend/engine"
	"datapilot/backend/metastore"
	"datapilot/backend/schema"
	"datapilot/backend/shared/logger"
	"datapilot/backend/textgen"
)

// Gateway owns the core services: the engine pool, the metadata store
// and the text generator. Constructed once at process start and passed
// to the HTTP layer - never reached through ambient globals.
type Gateway struct {
	pool      *engine.Pool
	store     metastore.Store
	generator textgen.Generator
	logger    *logger.Logger
}

// NewGateway wires the gateway from its dependencies
func NewGateway(pool *engine.Pool, store metastore.Store, generator textgen.Generator) *Gateway {
	return &Gateway{
		pool:      pool,
		store:     store,
		generator: generator,
		logger:    logger.New("gateway"),
	}
}

// Pool exposes the engine pool for lifecycle management (shutdown)
func (g *Gateway) Pool() *engine.Pool {
	return g.pool
}

// Shutdown disposes every pooled engine handle, draining in-flight
// statements first. Called exactly once, at process shutdown.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("", "shutting down, closing all database connections", nil)
	return g.pool.DisposeAll(ctx)
}

// resolveSchema is the single resolution path used by every
// collaborator endpoint: an explicit request-supplied schema wins,
// else the store is consulted by connection string, else not-found.
func (g *Gateway) resolveSchema(ctx context.Context, explicit map[string]schema.TableSchema, connectionString string) (*schema.Metadata, error) {
	if len(explicit) > 0 {
		return &schema.Metadata{Schema: explicit}, nil
	}
	if connectionString == "" {
		return nil, metastore.NotFound("resolveSchema")
	}
	return g.store.Get(ctx, connectionString)
}

// resolveMetadata is resolveSchema for endpoints that accept a full
// metadata envelope instead of a bare schema map
func (g *Gateway) resolveMetadata(ctx context.Context, explicit *schema.Metadata, connectionString string) (*schema.Metadata, error) {
	if explicit != nil && len(explicit.Schema) > 0 {
		return explicit, nil
	}
	if connectionString == "" {
		return nil, metastore.NotFound("resolveMetadata")
	}
	return g.store.Get(ctx, connectionString)
}

// Prometheus metrics for the HTTP surface
var (
	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapilot_gateway_requests_total",
			Help: "Total number of gateway requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)
	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datapilot_gateway_request_duration_milliseconds",
			Help:    "Gateway request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 30000},
		},
		[]string{"endpoint"},
	)
)

func init() {
	// Register ignores AlreadyRegisteredError, so repeated package
	// initialization in tests stays harmless
	_ = prometheus.Register(gatewayRequestsTotal)
	_ = prometheus.Register(gatewayRequestDuration)
}

// writeJSON serializes a response payload with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeFailure emits the uniform {success:false, message} envelope.
// The gateway reports failures with HTTP 200 and success:false, the
// contract the original clients rely on; transport-level errors
// (malformed JSON) use 4xx.
func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, errorResponse{Success: false, Message: message})
}

// decodeJSON parses a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}

// instrument wraps a handler with request-ID assignment, access
// logging and Prometheus accounting
func (g *Gateway) instrument(endpoint string, handler func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		handler(w, r, requestID)

		elapsed := time.Since(start)
		gatewayRequestsTotal.WithLabelValues(endpoint, "handled").Inc()
		gatewayRequestDuration.WithLabelValues(endpoint).Observe(float64(elapsed.Microseconds()) / 1000.0)
		g.logger.InfoWithDuration(requestID, "request handled",
			float64(elapsed.Microseconds())/1000.0,
			map[string]interface{}{"endpoint": endpoint, "method": r.Method})
	}
}
