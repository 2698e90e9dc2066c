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
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"datapilot/backend/shared/logger"
)

// ExecutionEvent is the ephemeral record handed to instrumentation
// observers around a single statement execution. Before the statement
// runs only Statement, Params and Start are set; after it completes
// Elapsed and Err are filled in.
type ExecutionEvent struct {
	ConnectionString string
	Statement        string
	Params           []interface{}
	Start            time.Time
	Elapsed          time.Duration
	Err              error
}

// Observer receives synchronous callbacks around each statement
// execution. Observers must not alter the statement or its result.
// Implementations are attached at pool construction and inherited by
// every handle, so the first statement on a fresh handle is observed too.
type Observer interface {
	OnBeforeExecute(event *ExecutionEvent)
	OnAfterExecute(event *ExecutionEvent)
}

// notify invokes one observer callback, isolating panics so a broken
// hook can never abort the statement that triggered it
func notify(fn func(), hook string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ENGINE] observer panic in %s: %v", hook, r)
		}
	}()
	fn()
}

func notifyBefore(observers []Observer, event *ExecutionEvent) {
	for _, o := range observers {
		o := o
		notify(func() { o.OnBeforeExecute(event) }, "OnBeforeExecute")
	}
}

func notifyAfter(observers []Observer, event *ExecutionEvent) {
	for _, o := range observers {
		o := o
		notify(func() { o.OnAfterExecute(event) }, "OnAfterExecute")
	}
}

// LogObserver writes structured log lines around each execution
type LogObserver struct {
	Logger *logger.Logger
}

// NewLogObserver creates an observer logging to the given component logger
func NewLogObserver(l *logger.Logger) *LogObserver {
	return &LogObserver{Logger: l}
}

func (o *LogObserver) OnBeforeExecute(event *ExecutionEvent) {
	o.Logger.Debug("", "executing statement", map[string]interface{}{
		"statement": event.Statement,
		"params":    event.Params,
	})
}

func (o *LogObserver) OnAfterExecute(event *ExecutionEvent) {
	fields := map[string]interface{}{
		"statement":   event.Statement,
		"duration_ms": float64(event.Elapsed.Microseconds()) / 1000.0,
	}
	if event.Err != nil {
		fields["error"] = event.Err.Error()
		o.Logger.Error("", "statement failed", fields)
		return
	}
	o.Logger.Info("", "statement executed", fields)
}

// Prometheus metrics for statement execution
var (
	execStatementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapilot_engine_statements_total",
			Help: "Total number of SQL statements executed by the engine",
		},
		[]string{"status"},
	)
	execStatementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datapilot_engine_statement_duration_milliseconds",
			Help:    "SQL statement execution duration in milliseconds",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
		},
	)
)

func init() {
	// Duplicate registration is OK when tests construct multiple pools
	_ = prometheus.Register(execStatementsTotal)
	_ = prometheus.Register(execStatementDuration)
}

// MetricsObserver records Prometheus counters and duration histograms
// for every executed statement
type MetricsObserver struct{}

func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (o *MetricsObserver) OnBeforeExecute(event *ExecutionEvent) {}

func (o *MetricsObserver) OnAfterExecute(event *ExecutionEvent) {
	status := "success"
	if event.Err != nil {
		status = "error"
	}
	execStatementsTotal.WithLabelValues(status).Inc()
	execStatementDuration.Observe(float64(event.Elapsed.Microseconds()) / 1000.0)
}
