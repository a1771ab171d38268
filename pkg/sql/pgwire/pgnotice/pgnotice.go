// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgnotice defines non-fatal messages sent back to the client
// alongside a successful statement.
package pgnotice

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
)

// Notice is an error that can be returned as a notice to the client.
type Notice error

// Newf generates a Notice with a format string.
func Newf(format string, args ...interface{}) Notice {
	err := errors.NewWithDepthf(1, format, args...)
	err = pgerror.WithCandidateCode(err, pgcode.SuccessfulCompletion)
	err = pgerror.WithSeverity(err, "NOTICE")
	return Notice(err)
}

// NewWithSeverityf generates a Notice with a format string and severity.
func NewWithSeverityf(severity string, code pgcode.Code, format string, args ...interface{}) Notice {
	err := errors.NewWithDepthf(1, format, args...)
	err = pgerror.WithCandidateCode(err, code)
	err = pgerror.WithSeverity(err, severity)
	return Notice(err)
}

// Sender receives the notices emitted while a statement runs.
type Sender interface {
	BufferClientNotice(ctx context.Context, notice Notice)
}

// Collector is a Sender that accumulates notices in memory.
type Collector struct {
	Notices []Notice
}

var _ Sender = (*Collector)(nil)

// BufferClientNotice implements the Sender interface.
func (c *Collector) BufferClientNotice(_ context.Context, notice Notice) {
	c.Notices = append(c.Notices, notice)
}

// Strings renders the collected notices as "SEVERITY: message".
func (c *Collector) Strings() []string {
	res := make([]string, len(c.Notices))
	for i, n := range c.Notices {
		res[i] = pgerror.GetSeverity(n) + ": " + n.Error()
	}
	return res
}
