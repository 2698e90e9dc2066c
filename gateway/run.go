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
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"datapilot/backend/engine"
	"datapilot/backend/metastore"
	"datapilot/backend/shared/logger"
	"datapilot/backend/textgen"
)

// Run is the exported entry point for the gateway service.
//
// It wires the engine pool, metadata store and text generator, sets up
// HTTP routes, and serves until SIGINT/SIGTERM. Shutdown stops the
// HTTP listener first, then disposes every pooled database handle.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8080)
//   - GATEWAY_CONFIG: optional YAML config file
//   - REDIS_ADDR: switch the metadata store to Redis (optional)
//   - ANTHROPIC_API_KEY: enable the Claude-backed text generator (optional)
func Run() {
	log.Println("Starting DataPilot Gateway...")

	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gw, err := buildGateway(config)
	if err != nil {
		log.Fatalf("Failed to initialize gateway: %v", err)
	}

	router := NewRouter(gw)

	// CORS: the original frontend calls from any origin
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + config.Port,
		Handler: c.Handler(router),
	}

	go func() {
		log.Printf("DataPilot Gateway listening on port %s", config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Block until shutdown is requested
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutdown requested, draining...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace())
	defer cancel()

	// Stop accepting requests before tearing down the pools
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := gw.Shutdown(ctx); err != nil {
		log.Printf("Engine pool disposal error: %v", err)
	}

	log.Println("DataPilot Gateway stopped")
}

// buildGateway constructs the service graph from configuration
func buildGateway(config Config) (*Gateway, error) {
	engineConfig := engine.Config{
		PoolSize:         config.PoolSize,
		MaxOverflow:      config.MaxOverflow,
		ConnMaxLifetime:  5 * time.Minute,
		StatementTimeout: config.StatementTimeout(),
	}
	pool := engine.NewPool(engineConfig,
		engine.NewLogObserver(logger.New("executor")),
		engine.NewMetricsObserver(),
	)

	var store metastore.Store
	if config.RedisAddr != "" {
		redisStore, err := metastore.NewRedisStore(context.Background(),
			config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Printf("Metadata store: Redis (%s)", config.RedisAddr)
		store = redisStore
	} else {
		log.Println("Metadata store: in-process (volatile)")
		store = metastore.NewMemoryStore()
	}

	var generator textgen.Generator
	if config.AnthropicAPIKey != "" {
		anthropic, err := textgen.NewAnthropicGenerator(textgen.AnthropicConfig{
			APIKey: config.AnthropicAPIKey,
			Model:  config.AnthropicModel,
		})
		if err != nil {
			return nil, err
		}
		log.Println("Text generator: anthropic")
		generator = anthropic
	} else {
		log.Println("Text generator: static fallback (no API key configured)")
		generator = textgen.NewStaticGenerator()
	}

	return NewGateway(pool, store, generator), nil
}

// NewRouter builds the HTTP route table for a gateway instance
func NewRouter(gw *Gateway) *mux.Router {
	r := mux.NewRouter()

	// Health and metrics
	r.HandleFunc("/health", gw.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Core: connection lifecycle and query execution
	r.HandleFunc("/validate_connection", gw.instrument("validate_connection", gw.handleValidateConnection)).Methods("POST")
	r.HandleFunc("/execute_query", gw.instrument("execute_query", gw.handleExecuteQuery)).Methods("POST")
	r.HandleFunc("/get_schema", gw.instrument("get_schema", gw.handleGetSchema)).Methods("POST")

	// Text-generation collaborators
	r.HandleFunc("/nlp2sql", gw.instrument("nlp2sql", gw.handleNLPToSQL)).Methods("POST")
	r.HandleFunc("/docs", gw.instrument("docs", gw.handleDocs)).Methods("POST")
	r.HandleFunc("/chat", gw.instrument("chat", gw.handleChat)).Methods("POST")
	r.HandleFunc("/graph", gw.instrument("graph", gw.handleGraph)).Methods("POST")

	return r
}
