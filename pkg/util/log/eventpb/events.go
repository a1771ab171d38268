// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package eventpb defines the structured events emitted for operator
// schema changes.
package eventpb

import (
	"reflect"
	"strings"
)

// GetEventTypeName retrieves the event type name for the given payload.
func GetEventTypeName(event EventPayload) string {
	// This logic takes the type names and converts from CamelCase to snake_case.
	typeName := reflect.TypeOf(event).Elem().Name()
	var res strings.Builder
	res.WriteByte(typeName[0] + 'a' - 'A')
	for i := 1; i < len(typeName); i++ {
		if typeName[i] >= 'A' && typeName[i] <= 'Z' {
			res.WriteByte('_')
			res.WriteByte(typeName[i] + 'a' - 'A')
		} else {
			res.WriteByte(typeName[i])
		}
	}
	return res.String()
}

// EventPayload is implemented by CommonEventDetails.
type EventPayload interface {
	CommonDetails() *CommonEventDetails
}

// CommonEventDetails contains the fields common to all events.
type CommonEventDetails struct {
	// The timestamp of the event, in nanoseconds since the epoch.
	Timestamp int64 `json:"Timestamp,omitempty"`
	// The type of the event.
	EventType string `json:"EventType,omitempty"`
}

// CommonDetails implements the EventPayload interface.
func (m *CommonEventDetails) CommonDetails() *CommonEventDetails { return m }

// CommonSQLEventDetails contains the fields common to all SQL events.
type CommonSQLEventDetails struct {
	// The user account that triggered the event.
	User string `json:"User,omitempty"`
	// The primary object descriptor affected by the operation.
	DescriptorID uint32 `json:"DescriptorID,omitempty"`
}

// CommonSQLDetails implements the EventWithCommonSQLPayload interface.
func (m *CommonSQLEventDetails) CommonSQLDetails() *CommonSQLEventDetails { return m }

// EventWithCommonSQLPayload is implemented by CommonSQLEventDetails.
type EventWithCommonSQLPayload interface {
	EventPayload
	CommonSQLDetails() *CommonSQLEventDetails
}

// CreateOperator is recorded when an operator is created.
type CreateOperator struct {
	CommonEventDetails
	CommonSQLEventDetails
	// The name of the new operator, including its argument types.
	OperatorName string `json:"OperatorName,omitempty"`
}

// AlterOperator is recorded when an operator's estimators are changed.
type AlterOperator struct {
	CommonEventDetails
	CommonSQLEventDetails
	// The name of the affected operator, including its argument types.
	OperatorName string `json:"OperatorName,omitempty"`
	// The options that were changed.
	Options []string `json:"Options,omitempty"`
}

// DropOperator is recorded when an operator is dropped.
type DropOperator struct {
	CommonEventDetails
	CommonSQLEventDetails
	// The name of the affected operator, including its argument types.
	OperatorName string `json:"OperatorName,omitempty"`
}

var _ EventWithCommonSQLPayload = (*CreateOperator)(nil)
var _ EventWithCommonSQLPayload = (*AlterOperator)(nil)
var _ EventWithCommonSQLPayload = (*DropOperator)(nil)
