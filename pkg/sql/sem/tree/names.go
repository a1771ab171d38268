// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import "strings"

// ObjectName is a possibly schema-qualified object name. Operators,
// functions and types are all named this way.
type ObjectName struct {
	// Schema is empty when the name is unqualified.
	Schema string
	Name   string
}

// MakeUnqualifiedName returns an ObjectName without a schema.
func MakeUnqualifiedName(name string) ObjectName {
	return ObjectName{Name: name}
}

// MakeQualifiedName returns a schema-qualified ObjectName.
func MakeQualifiedName(schema, name string) ObjectName {
	return ObjectName{Schema: schema, Name: name}
}

// ParseObjectName splits "schema.name" on its first dot. Operator names
// cannot contain dots, so this is unambiguous for them.
func ParseObjectName(s string) ObjectName {
	if i := strings.IndexByte(s, '.'); i > 0 && i < len(s)-1 {
		return ObjectName{Schema: s[:i], Name: s[i+1:]}
	}
	return ObjectName{Name: s}
}

// ExplicitSchema is true if the name carries a schema.
func (n *ObjectName) ExplicitSchema() bool { return n.Schema != "" }

// Format implements the NodeFormatter interface. The object part is
// written verbatim so that operator symbols print unquoted.
func (n *ObjectName) Format(ctx *FmtCtx) {
	if n.Schema != "" {
		ctx.FormatName(n.Schema)
		ctx.WriteByte('.')
	}
	ctx.WriteString(n.Name)
}

func (n *ObjectName) String() string { return AsString(n) }

func (*ObjectName) defArg() {}

// TypeName is a reference to a type as written in a definition.
type TypeName struct {
	Name ObjectName
	// SetOf is set for "SETOF t".
	SetOf bool
}

// NewTypeName returns a TypeName for an unqualified type.
func NewTypeName(name string) *TypeName {
	return &TypeName{Name: ParseObjectName(name)}
}

// ParseTypeName parses "[SETOF ][schema.]name".
func ParseTypeName(s string) *TypeName {
	s = strings.TrimSpace(s)
	if len(s) > 6 && strings.EqualFold(s[:6], "setof ") {
		tn := NewTypeName(strings.TrimSpace(s[6:]))
		tn.SetOf = true
		return tn
	}
	return NewTypeName(s)
}

// Format implements the NodeFormatter interface.
func (t *TypeName) Format(ctx *FmtCtx) {
	if t.SetOf {
		ctx.WriteString("SETOF ")
	}
	ctx.FormatNode(&t.Name)
}

func (t *TypeName) String() string { return AsString(t) }

func (*TypeName) defArg() {}
