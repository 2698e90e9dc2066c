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

package metastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"datapilot/backend/engine"
	"datapilot/backend/schema"
)

const redisKeyPrefix = "datapilot:metadata:"

// RedisStore keeps snapshots in Redis, letting multiple gateway
// replicas share one metadata cache. Snapshots are JSON-encoded under
// a hashed key so raw connection strings (which carry credentials)
// never appear in the keyspace.
type RedisStore struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisStore connects to Redis at addr and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, engine.NewError(engine.KindConnection, "NewRedisStore",
			"failed to ping Redis", err)
	}

	return &RedisStore{
		client: client,
		logger: log.New(os.Stdout, "[METASTORE] ", log.LstdFlags),
	}, nil
}

func redisKey(connectionString string) string {
	sum := sha256.Sum256([]byte(connectionString))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}

// Put stores the JSON-encoded snapshot, last write wins
func (s *RedisStore) Put(ctx context.Context, connectionString string, metadata *schema.Metadata) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	// No TTL: entries live until overwritten by re-validation
	if err := s.client.Set(ctx, redisKey(connectionString), payload, 0).Err(); err != nil {
		return engine.NewError(engine.KindConnection, "Put", "failed to store metadata", err)
	}
	return nil
}

// Get returns the stored snapshot or a not-found error
func (s *RedisStore) Get(ctx context.Context, connectionString string) (*schema.Metadata, error) {
	payload, err := s.client.Get(ctx, redisKey(connectionString)).Bytes()
	if err == redis.Nil {
		return nil, NotFound("Get")
	}
	if err != nil {
		return nil, engine.NewError(engine.KindConnection, "Get", "failed to fetch metadata", err)
	}

	var metadata schema.Metadata
	if err := json.Unmarshal(payload, &metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return &metadata, nil
}

// Close releases the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
