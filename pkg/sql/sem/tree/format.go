// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package tree holds the statement nodes consumed by the operator DDL
// commands. Parsing SQL text into these nodes is left to the caller.
package tree

import (
	"bytes"
	"strings"
	"unicode"
)

// NodeFormatter is implemented by nodes that can be pretty-printed.
type NodeFormatter interface {
	// Format performs pretty-printing towards a bytes buffer.
	Format(ctx *FmtCtx)
}

// FmtCtx is suitable for passing to Format() methods.
type FmtCtx struct {
	bytes.Buffer
}

// NewFmtCtx creates a FmtCtx.
func NewFmtCtx() *FmtCtx {
	return &FmtCtx{}
}

// FormatNode recurses into a node for pretty-printing.
func (ctx *FmtCtx) FormatNode(n NodeFormatter) {
	n.Format(ctx)
}

// FormatName formats an identifier, quoting it if it would not survive
// a round trip as a bare identifier.
func (ctx *FmtCtx) FormatName(s string) {
	if isBareIdentifier(s) {
		ctx.WriteString(s)
		return
	}
	ctx.WriteByte('"')
	ctx.WriteString(strings.ReplaceAll(s, `"`, `""`))
	ctx.WriteByte('"')
}

// CloseAndGetString returns the contents of the buffer.
func (ctx *FmtCtx) CloseAndGetString() string {
	return ctx.String()
}

// AsString pretty prints a node to a string.
func AsString(n NodeFormatter) string {
	ctx := NewFmtCtx()
	ctx.FormatNode(n)
	return ctx.CloseAndGetString()
}

func isBareIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLower(r) || (i > 0 && (unicode.IsDigit(r) || r == '$')) {
			continue
		}
		return false
	}
	return true
}
