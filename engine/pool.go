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

package engine

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sync"
	"time"
)

// Config bounds the connection pool behind each handle
type Config struct {
	// PoolSize is the number of idle connections kept per handle
	PoolSize int
	// MaxOverflow is the number of extra connections allowed beyond PoolSize
	MaxOverflow int
	// ConnMaxLifetime recycles pooled connections after this duration
	ConnMaxLifetime time.Duration
	// StatementTimeout is the default per-statement deadline applied when
	// the caller's context carries none
	StatementTimeout time.Duration
}

// DefaultConfig mirrors the classic 5 base / 10 overflow pool bounds
func DefaultConfig() Config {
	return Config{
		PoolSize:         5,
		MaxOverflow:      10,
		ConnMaxLifetime:  5 * time.Minute,
		StatementTimeout: 30 * time.Second,
	}
}

// Pool owns one pooled handle per distinct connection string.
// Handles are created lazily on first use and disposed at shutdown.
// Safe for concurrent use.
type Pool struct {
	mu        sync.RWMutex
	handles   map[string]*Handle
	config    Config
	observers []Observer
	draining  bool
	inflight  sync.WaitGroup
	logger    *log.Logger
}

// Handle is a pooled, reusable connection factory bound to one
// connection string. Owned exclusively by the Pool.
type Handle struct {
	pool             *Pool
	connectionString string
	dialect          Dialect
	db               *sql.DB
}

// NewPool creates a Pool with the given pool bounds. Observers are
// attached here, at construction, so every handle created later is
// instrumented from its first statement.
func NewPool(config Config, observers ...Observer) *Pool {
	if config.PoolSize <= 0 {
		config = DefaultConfig()
	}
	return &Pool{
		handles:   make(map[string]*Handle),
		config:    config,
		observers: observers,
		logger:    log.New(os.Stdout, "[ENGINE] ", log.LstdFlags),
	}
}

// Resolve returns the pooled handle for a connection string, creating
// it on first use. Concurrent first-use races for the same new string
// yield exactly one handle. Reachability is not probed here; that is
// the validation path's job.
func (p *Pool) Resolve(connectionString string) (*Handle, error) {
	p.mu.RLock()
	if p.draining {
		p.mu.RUnlock()
		return nil, NewError(KindShutdown, "Resolve", "engine pool is shutting down", nil)
	}
	handle, exists := p.handles[connectionString]
	p.mu.RUnlock()

	if exists {
		return handle, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.draining {
		return nil, NewError(KindShutdown, "Resolve", "engine pool is shutting down", nil)
	}

	// Double-check: another goroutine may have created the handle
	// while we waited for the write lock
	if handle, exists := p.handles[connectionString]; exists {
		return handle, nil
	}

	driverName, dsn, dialect, err := driverFor(connectionString)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, NewError(KindConnection, "Resolve", "failed to open connection pool", err)
	}

	db.SetMaxIdleConns(p.config.PoolSize)
	db.SetMaxOpenConns(p.config.PoolSize + p.config.MaxOverflow)
	db.SetConnMaxLifetime(p.config.ConnMaxLifetime)

	handle = &Handle{
		pool:             p,
		connectionString: connectionString,
		dialect:          dialect,
		db:               db,
	}
	p.handles[connectionString] = handle

	p.logger.Printf("Created pooled handle (dialect=%s, pool=%d+%d)",
		dialect, p.config.PoolSize, p.config.MaxOverflow)

	return handle, nil
}

// DisposeAll closes every pooled handle and clears the cache.
// New Resolve/Execute calls fail fast while disposal is in progress;
// in-flight statement executions are drained first. Idempotent.
// Once disposal completes the pool accepts Resolve again, recreating
// fresh handles (pool identity is per-string, not per-process-epoch).
func (p *Pool) DisposeAll(ctx context.Context) error {
	p.mu.Lock()
	if p.draining {
		p.mu.Unlock()
		return nil
	}
	p.draining = true
	handles := make([]*Handle, 0, len(p.handles))
	for _, h := range p.handles {
		handles = append(handles, h)
	}
	p.handles = make(map[string]*Handle)
	p.mu.Unlock()

	// Wait for in-flight statements to drain, bounded by ctx
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Printf("Disposal proceeding before drain completed: %v", ctx.Err())
	}

	for _, h := range handles {
		if err := h.db.Close(); err != nil {
			p.logger.Printf("Error closing handle: %v", err)
		}
	}

	p.logger.Printf("Disposed %d pooled handle(s)", len(handles))

	p.mu.Lock()
	p.draining = false
	p.mu.Unlock()

	return nil
}

// Count returns the number of live pooled handles
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handles)
}

// beginOp registers an in-flight operation, failing fast when the
// pool has begun disposal
func (p *Pool) beginOp(op string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.draining {
		return NewError(KindShutdown, op, "engine pool is shutting down", nil)
	}
	p.inflight.Add(1)
	return nil
}

func (p *Pool) endOp() {
	p.inflight.Done()
}

// ConnectionString returns the cache key this handle is bound to
func (h *Handle) ConnectionString() string {
	return h.connectionString
}

// Dialect returns the SQL dialect behind this handle
func (h *Handle) Dialect() Dialect {
	return h.dialect
}

// DB exposes the underlying pooled database for the introspector.
// Callers must not close it; the Pool owns its lifecycle.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// Ping runs the liveness probe used by connection validation: a
// driver-level ping followed by a trivial statement over one
// short-lived connection
func (h *Handle) Ping(ctx context.Context) error {
	if err := h.pool.beginOp("Ping"); err != nil {
		return err
	}
	defer h.pool.endOp()

	if err := h.db.PingContext(ctx); err != nil {
		return NewError(KindConnection, "Ping", "database unreachable", err)
	}
	if _, err := h.db.ExecContext(ctx, "SELECT 1"); err != nil {
		return NewError(KindConnection, "Ping", "liveness probe failed", err)
	}
	return nil
}
