// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package tree

import (
	"strings"

	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
)

// Statement represents a statement.
type Statement interface {
	NodeFormatter
	StatementTag() string
}

var _ Statement = (*CreateOperator)(nil)
var _ Statement = (*AlterOperator)(nil)
var _ Statement = (*DropOperator)(nil)

// CreateOperator represents a CREATE OPERATOR statement.
type CreateOperator struct {
	Name       ObjectName
	Definition DefList
}

// Format implements the NodeFormatter interface.
func (n *CreateOperator) Format(ctx *FmtCtx) {
	ctx.WriteString("CREATE OPERATOR ")
	ctx.FormatNode(&n.Name)
	ctx.WriteByte(' ')
	ctx.FormatNode(n.Definition)
}

// StatementTag implements the Statement interface.
func (*CreateOperator) StatementTag() string { return "CREATE OPERATOR" }

func (n *CreateOperator) String() string { return AsString(n) }

// OperatorWithArgs names an operator by its name and argument types. A
// nil Left designates a prefix operator.
type OperatorWithArgs struct {
	Name  ObjectName
	Left  *TypeName
	Right *TypeName
}

// Format implements the NodeFormatter interface.
func (o *OperatorWithArgs) Format(ctx *FmtCtx) {
	ctx.FormatNode(&o.Name)
	ctx.WriteByte('(')
	formatOperArg(ctx, o.Left)
	ctx.WriteString(", ")
	formatOperArg(ctx, o.Right)
	ctx.WriteByte(')')
}

func (o *OperatorWithArgs) String() string { return AsString(o) }

// ParseOperatorWithArgs parses "[schema.]name(left, right)", where
// either argument may be NONE.
func ParseOperatorWithArgs(s string) (OperatorWithArgs, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || s[len(s)-1] != ')' {
		return OperatorWithArgs{}, pgerror.Newf(pgcode.Syntax,
			"expected operator with argument types, got %q", s)
	}
	args := strings.Split(s[open+1:len(s)-1], ",")
	if len(args) != 2 {
		return OperatorWithArgs{}, pgerror.Newf(pgcode.Syntax,
			"operator %q must have exactly two argument types", s)
	}
	o := OperatorWithArgs{Name: ParseObjectName(strings.TrimSpace(s[:open]))}
	o.Left = parseOperArg(args[0])
	o.Right = parseOperArg(args[1])
	return o, nil
}

func parseOperArg(s string) *TypeName {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "none") {
		return nil
	}
	return NewTypeName(s)
}

func formatOperArg(ctx *FmtCtx, t *TypeName) {
	if t == nil {
		ctx.WriteString("NONE")
		return
	}
	ctx.FormatNode(t)
}

// AlterOperator represents an ALTER OPERATOR ... SET (...) statement.
type AlterOperator struct {
	Operator OperatorWithArgs
	Options  DefList
}

// Format implements the NodeFormatter interface.
func (n *AlterOperator) Format(ctx *FmtCtx) {
	ctx.WriteString("ALTER OPERATOR ")
	ctx.FormatNode(&n.Operator)
	ctx.WriteString(" SET ")
	ctx.FormatNode(n.Options)
}

// StatementTag implements the Statement interface.
func (*AlterOperator) StatementTag() string { return "ALTER OPERATOR" }

func (n *AlterOperator) String() string { return AsString(n) }

// DropOperator represents a DROP OPERATOR statement.
type DropOperator struct {
	Operators []OperatorWithArgs
	IfExists  bool
}

// Format implements the NodeFormatter interface.
func (n *DropOperator) Format(ctx *FmtCtx) {
	ctx.WriteString("DROP OPERATOR ")
	if n.IfExists {
		ctx.WriteString("IF EXISTS ")
	}
	for i := range n.Operators {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.FormatNode(&n.Operators[i])
	}
}

// StatementTag implements the Statement interface.
func (*DropOperator) StatementTag() string { return "DROP OPERATOR" }

func (n *DropOperator) String() string { return AsString(n) }

// MaxOperatorNameLen is the longest operator name accepted. It matches
// NAMEDATALEN-1 in postgres.
const MaxOperatorNameLen = 63

const operatorChars = "~!@#^&|`?+-*/%<>="

// ValidOperatorName reports whether name is a legal operator symbol:
// a non-empty run of operator characters that does not contain a
// comment start, and that does not end in + or - unless it also
// contains one of ~!@#^&|`?%.
func ValidOperatorName(name string) bool {
	if len(name) == 0 || len(name) > MaxOperatorNameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		if strings.IndexByte(operatorChars, name[i]) < 0 {
			return false
		}
	}
	if strings.Contains(name, "/*") || strings.Contains(name, "--") {
		return false
	}
	if len(name) > 1 && (name[len(name)-1] == '+' || name[len(name)-1] == '-') {
		return strings.ContainsAny(name[:len(name)-1], "~!@#^&|`?%")
	}
	return true
}
