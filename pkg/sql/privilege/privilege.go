// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package privilege defines the privileges checked by catalog DDL and
// the capability interface that answers those checks.
package privilege

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
)

// Kind defines a privilege. This is output by the parser, and used to
// generate the privilege bitfields in grant tables.
type Kind uint32

// List of privileges. ALL is specifically encoded so that it will
// automatically pick up new privileges.
const (
	_ Kind = iota
	ALL
	CREATE
	USAGE
	EXECUTE
)

var kindNames = map[Kind]string{
	ALL:     "ALL",
	CREATE:  "CREATE",
	USAGE:   "USAGE",
	EXECUTE: "EXECUTE",
}

// ByName is a map of string -> kind value.
var ByName = map[string]Kind{
	"ALL":     ALL,
	"CREATE":  CREATE,
	"USAGE":   USAGE,
	"EXECUTE": EXECUTE,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// SafeValue implements redact.SafeValue.
func (k Kind) SafeValue() {}

// Mask returns the bitmask for a given privilege.
func (k Kind) Mask() uint32 {
	return 1 << k
}

// KindFromString converts a privilege name, case-insensitively, to its
// Kind.
func KindFromString(s string) (Kind, error) {
	k, ok := ByName[strings.ToUpper(s)]
	if !ok {
		return 0, pgerror.Newf(pgcode.InvalidParameterValue, "unrecognized privilege type %q", s)
	}
	return k, nil
}

// List is a list of privileges.
type List []Kind

// ToBitField returns the bitfield representation of a list of privileges.
func (pl List) ToBitField() uint32 {
	var ret uint32
	for _, p := range pl {
		ret |= p.Mask()
	}
	return ret
}

// ListFromBitField takes a bitfield of privileges and returns a list,
// sorted by kind.
func ListFromBitField(m uint32) List {
	var ret List
	for k := range kindNames {
		if m&k.Mask() != 0 {
			ret = append(ret, k)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// String implements fmt.Stringer.
func (pl List) String() string {
	names := make([]string, len(pl))
	for i, p := range pl {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// ObjectType is the kind of object a privilege is granted on.
type ObjectType string

// Object types that carry grants in the operator catalog.
const (
	Schema   ObjectType = "schema"
	Type     ObjectType = "type"
	Function ObjectType = "function"
)

// SafeValue implements redact.SafeValue.
func (o ObjectType) SafeValue() {}

// ObjectTypeFromString converts a lower-cased object type name.
func ObjectTypeFromString(s string) (ObjectType, error) {
	switch o := ObjectType(strings.ToLower(s)); o {
	case Schema, Type, Function:
		return o, nil
	}
	return "", errors.Newf("unknown object type %q", s)
}

// validFor lists the privileges that can be granted per object type.
var validFor = map[ObjectType]List{
	Schema:   {ALL, CREATE, USAGE},
	Type:     {ALL, USAGE},
	Function: {ALL, EXECUTE},
}

// ValidateFor returns an error when k cannot be granted on objects of
// type o.
func (k Kind) ValidateFor(o ObjectType) error {
	for _, v := range validFor[o] {
		if v == k {
			return nil
		}
	}
	return pgerror.Newf(pgcode.InvalidParameterValue,
		"invalid privilege type %s for %s", k, o)
}
