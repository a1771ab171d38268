// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strconv"
	"strings"
)

// DefArg is the value of a DefElem. It is one of *TypeName,
// *ObjectName, DBool, DString or DInt. A nil DefArg means the attribute
// was given without a value.
type DefArg interface {
	NodeFormatter
	defArg()
}

// DBool is a boolean attribute value.
type DBool bool

// Format implements the NodeFormatter interface.
func (d DBool) Format(ctx *FmtCtx) {
	ctx.WriteString(strconv.FormatBool(bool(d)))
}

func (DBool) defArg() {}

// DString is a quoted string or bare keyword attribute value.
type DString string

// Format implements the NodeFormatter interface.
func (d DString) Format(ctx *FmtCtx) {
	ctx.WriteByte('\'')
	ctx.WriteString(strings.ReplaceAll(string(d), "'", "''"))
	ctx.WriteByte('\'')
}

func (DString) defArg() {}

// DInt is an integer attribute value.
type DInt int64

// Format implements the NodeFormatter interface.
func (d DInt) Format(ctx *FmtCtx) {
	ctx.WriteString(strconv.FormatInt(int64(d), 10))
}

func (DInt) defArg() {}

// DefElem is one "name [= value]" entry of a definition list.
type DefElem struct {
	Name string
	Arg  DefArg
}

// Format implements the NodeFormatter interface.
func (d *DefElem) Format(ctx *FmtCtx) {
	ctx.WriteString(d.Name)
	if d.Arg != nil {
		ctx.WriteString(" = ")
		ctx.FormatNode(d.Arg)
	}
}

// DefList is a parenthesized list of DefElems.
type DefList []DefElem

// Format implements the NodeFormatter interface.
func (l DefList) Format(ctx *FmtCtx) {
	ctx.WriteByte('(')
	for i := range l {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.FormatNode(&l[i])
	}
	ctx.WriteByte(')')
}

// ParseDefElem parses the "name[=value]" shorthand used by the command
// line driver and test scripts. Attribute names are lower-cased. The
// value is a DBool for true/false, a DInt for integers, a DString when
// single-quoted, a SETOF *TypeName when prefixed by SETOF, and an
// *ObjectName otherwise.
func ParseDefElem(s string) DefElem {
	name, val, ok := strings.Cut(s, "=")
	d := DefElem{Name: strings.ToLower(strings.TrimSpace(name))}
	if !ok {
		return d
	}
	d.Arg = parseDefArg(strings.TrimSpace(val))
	return d
}

func parseDefArg(v string) DefArg {
	switch {
	case strings.EqualFold(v, "true"):
		return DBool(true)
	case strings.EqualFold(v, "false"):
		return DBool(false)
	case len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'':
		return DString(strings.ReplaceAll(v[1:len(v)-1], "''", "'"))
	case len(v) > 6 && strings.EqualFold(v[:6], "setof "):
		return ParseTypeName(v)
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return DInt(i)
	}
	n := ParseObjectName(v)
	return &n
}
