// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/lib/pq/oid"
)

// TypeNameByID renders a type id for use in messages. Ids with no
// descriptor render as their number so that a broken reference is
// still visible.
func TypeNameByID(ctx context.Context, tr TypeResolver, id oid.Oid) string {
	if id == InvalidOid {
		return "NONE"
	}
	if typ, err := tr.GetTypeByID(ctx, id); err == nil && typ != nil {
		return typ.Name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// FormatFunctionSignature renders name(t1, t2, ...) for messages.
func FormatFunctionSignature(
	ctx context.Context, tr TypeResolver, name string, params []oid.Oid,
) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(TypeNameByID(ctx, tr, p))
	}
	sb.WriteByte(')')
	return sb.String()
}

// FormatOperatorSignature renders name(left, right) for messages. An
// absent left type renders as NONE.
func FormatOperatorSignature(
	ctx context.Context, tr TypeResolver, name string, left, right oid.Oid,
) string {
	return name + "(" + TypeNameByID(ctx, tr, left) + ", " + TypeNameByID(ctx, tr, right) + ")"
}
