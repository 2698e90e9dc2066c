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

// Package metastore caches the last-known schema snapshot per
// connection string so downstream features need not resend or
// re-introspect the schema on every call.
//
// Semantics are last-write-wins: a new introspection overwrites the
// previous snapshot, never merges. There is no TTL and no invalidation
// beyond explicit overwrite via re-validation.
package metastore

import (
	"context"
	"sync"

	"datapilot/backend/engine"
	"datapilot/backend/schema"
)

// Store maps connection strings to their last-known Metadata snapshot.
// Implementations must be safe for concurrent use; Get/Put for
// different keys must not block each other on I/O.
type Store interface {
	// Put stores the snapshot for a connection string, overwriting any
	// previous one
	Put(ctx context.Context, connectionString string, metadata *schema.Metadata) error
	// Get returns the snapshot for a connection string, or a not-found
	// error when the string was never validated
	Get(ctx context.Context, connectionString string) (*schema.Metadata, error)
}

// NotFound builds the error returned when no snapshot exists for a
// connection string
func NotFound(op string) error {
	return engine.NewError(engine.KindNotFound, op,
		"no metadata for connection string; validate the connection first", nil)
}

// MemoryStore is the default in-process Store. State is volatile and
// cleared on process exit.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*schema.Metadata
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]*schema.Metadata),
	}
}

// Put stores the snapshot, last write wins
func (s *MemoryStore) Put(ctx context.Context, connectionString string, metadata *schema.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[connectionString] = metadata
	return nil
}

// Get returns the stored snapshot or a not-found error
func (s *MemoryStore) Get(ctx context.Context, connectionString string) (*schema.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metadata, ok := s.snapshots[connectionString]
	if !ok {
		return nil, NotFound("Get")
	}
	return metadata, nil
}

// Len returns the number of cached snapshots
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
