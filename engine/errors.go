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

import "errors"

// ErrorKind classifies core failures at the operation boundary.
// Driver errors are translated into exactly one of these kinds;
// raw driver errors never cross the core's public contract.
type ErrorKind string

const (
	// KindConnection - unreachable database or auth failure during resolve/validation
	KindConnection ErrorKind = "connection_error"
	// KindIntrospection - schema enumeration failed after a successful connection
	KindIntrospection ErrorKind = "introspection_error"
	// KindExecution - statement failed (syntax, constraint violation, runtime engine error)
	KindExecution ErrorKind = "execution_error"
	// KindNotFound - schema or metadata requested for a connection string never validated
	KindNotFound ErrorKind = "not_found"
	// KindShutdown - operation rejected because the pool has begun disposal
	KindShutdown ErrorKind = "shutting_down"
)

// Error represents a failure of a core operation, carrying the
// original driver message as its cause
type Error struct {
	Kind      ErrorKind
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Operation + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new core Error
func NewError(kind ErrorKind, operation, message string, cause error) *Error {
	return &Error{
		Kind:      kind,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// KindOf returns the ErrorKind of err, or an empty kind for errors
// that did not originate in the core
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a KindNotFound core error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
