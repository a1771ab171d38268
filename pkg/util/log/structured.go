// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/opercat/pkg/util/log/eventpb"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	if tags := logtags.FromContext(ctx); tags != nil {
		buf.WriteByte('[')
		buf.WriteString(tags.String())
		buf.WriteString("] ")
	}
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// StructuredEvent emits a structured event to the INFO log. The payload
// is rendered as JSON with its event type filled in.
func StructuredEvent(ctx context.Context, event eventpb.EventPayload) {
	common := event.CommonDetails()
	if common.EventType == "" {
		common.EventType = eventpb.GetEventTypeName(event)
	}
	b, err := json.Marshal(event)
	if err != nil {
		Errorf(ctx, "unable to encode event %s: %v", redact.Safe(common.EventType), err)
		return
	}
	entry := makeEntry(ctx, Severity_INFO, 1, "Structured entry: %s", []interface{}{b})
	outputEntry(entry)
}
