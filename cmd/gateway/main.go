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

// Package main is the entry point for the DataPilot Gateway service.
//
// The Gateway lets a client register a database connection, introspect
// its schema, and execute arbitrary queries against it, while brokering
// requests to text-generation features (NL-to-SQL, chat, documentation,
// graphing) that consume the introspected schema.
//
// Usage:
//
//	./gateway
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	GATEWAY_CONFIG - optional YAML config file
//	REDIS_ADDR - Redis metadata store address (optional)
//	ANTHROPIC_API_KEY - Anthropic API key for text generation (optional)
package main

import (
	"datapilot/backend/gateway"
)

func main() {
	gateway.Run()
}
