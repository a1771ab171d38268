// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
)

// attrKind enumerates the attribute names of CREATE OPERATOR.
type attrKind int

const (
	attrUnrecognized attrKind = iota
	attrLeftArg
	attrRightArg
	attrFunction
	attrCommutator
	attrNegator
	attrRestrict
	attrJoin
	attrHashes
	attrMerges
	// attrObsoleteMerges covers sort1, sort2, ltcmp and gtcmp, which
	// predate MERGES and imply it.
	attrObsoleteMerges
)

var attrKinds = map[string]attrKind{
	"leftarg":    attrLeftArg,
	"rightarg":   attrRightArg,
	"function":   attrFunction,
	"procedure":  attrFunction,
	"commutator": attrCommutator,
	"negator":    attrNegator,
	"restrict":   attrRestrict,
	"join":       attrJoin,
	"hashes":     attrHashes,
	"merges":     attrMerges,
	"sort1":      attrObsoleteMerges,
	"sort2":      attrObsoleteMerges,
	"ltcmp":      attrObsoleteMerges,
	"gtcmp":      attrObsoleteMerges,
}

// lookupAttrKind maps an attribute name to its kind. Names are matched
// exactly; the parser has already lowercased them.
func lookupAttrKind(name string) attrKind {
	return attrKinds[name]
}

// createOnly is true for the attributes CREATE accepts and ALTER
// refuses to change.
func (k attrKind) createOnly() bool {
	switch k {
	case attrLeftArg, attrRightArg, attrFunction, attrCommutator, attrNegator,
		attrHashes, attrMerges:
		return true
	}
	return false
}

// typeNameArg returns the type named by the attribute value.
func typeNameArg(d tree.DefElem) (*tree.TypeName, error) {
	switch t := d.Arg.(type) {
	case nil:
		return nil, sqlerrors.NewRequiresParameterError(d.Name)
	case *tree.TypeName:
		return t, nil
	case *tree.ObjectName:
		return &tree.TypeName{Name: *t}, nil
	case tree.DString:
		return tree.ParseTypeName(string(t)), nil
	}
	return nil, sqlerrors.NewInvalidArgumentTypeError(pgcode.Syntax,
		"argument of %s must be a type name", errors.Safe(d.Name))
}

// qualifiedNameArg returns the possibly qualified name given as the
// attribute value.
func qualifiedNameArg(d tree.DefElem) (*tree.ObjectName, error) {
	switch t := d.Arg.(type) {
	case nil:
		return nil, sqlerrors.NewRequiresParameterError(d.Name)
	case *tree.ObjectName:
		return t, nil
	case *tree.TypeName:
		if !t.SetOf {
			return &t.Name, nil
		}
	case tree.DString:
		n := tree.ParseObjectName(string(t))
		return &n, nil
	case tree.DBool:
		// true and false are keywords, which read as names.
		n := tree.MakeUnqualifiedName(strconv.FormatBool(bool(t)))
		return &n, nil
	}
	return nil, sqlerrors.NewInvalidArgumentTypeError(pgcode.Syntax,
		"argument of %s must be a name", errors.Safe(d.Name))
}

// boolArg returns the boolean attribute value. An attribute given
// without a value is true.
func boolArg(d tree.DefElem) (bool, error) {
	var word string
	switch t := d.Arg.(type) {
	case nil:
		return true, nil
	case tree.DBool:
		return bool(t), nil
	case tree.DInt:
		switch t {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case tree.DString:
		word = string(t)
	case *tree.ObjectName:
		if !t.ExplicitSchema() {
			word = t.Name
		}
	}
	switch strings.ToLower(word) {
	case "true", "on":
		return true, nil
	case "false", "off":
		return false, nil
	}
	return false, sqlerrors.NewInvalidArgumentTypeError(pgcode.Syntax,
		"%s requires a Boolean value", errors.Safe(d.Name))
}

// isNoneArg is true when an ALTER option was given as NONE, or without
// a value, which resets it.
func isNoneArg(d tree.DefElem) bool {
	switch t := d.Arg.(type) {
	case nil:
		return true
	case *tree.ObjectName:
		return !t.ExplicitSchema() && strings.EqualFold(t.Name, "none")
	}
	return false
}
