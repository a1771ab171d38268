// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts operator DDL.
type Metrics struct {
	Defines prometheus.Counter
	Alters  prometheus.Counter
	// Removes counts removed operator rows; one DROP may remove several.
	Removes prometheus.Counter
	// Errors counts failed statements by SQLSTATE.
	Errors *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Defines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opercat_operator_define_total",
			Help: "Number of operators created.",
		}),
		Alters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opercat_operator_alter_total",
			Help: "Number of operators altered.",
		}),
		Removes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opercat_operator_remove_total",
			Help: "Number of operators removed.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opercat_operator_errors_total",
			Help: "Number of failed operator statements, by SQLSTATE.",
		}, []string{"code"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Defines, m.Alters, m.Removes, m.Errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type stmtKind int

const (
	defineStmt stmtKind = iota
	alterStmt
	removeStmt
)

// record counts the outcome of a statement: n operators affected, or
// one error.
func (m *Metrics) record(kind stmtKind, n int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Errors.WithLabelValues(pgerror.GetPGCode(err).String()).Inc()
		return
	}
	var c prometheus.Counter
	switch kind {
	case defineStmt:
		c = m.Defines
	case alterStmt:
		c = m.Alters
	default:
		c = m.Removes
	}
	c.Add(float64(n))
}
