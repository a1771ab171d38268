// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/opercat/pkg/util/log/eventpb"
	"github.com/stretchr/testify/require"
)

func TestLogTagsAndFormat(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	ctx := logtags.AddTag(context.Background(), "opr", "===")
	Infof(ctx, "hello %s", "world")

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "I"), out)
	require.Contains(t, out, "log_test.go:")
	require.Contains(t, out, "[opr====] hello world\n")
}

func TestIntercept(t *testing.T) {
	defer SetOutput(nil)()

	var entries []Entry
	cleanup := Intercept(func(e Entry) { entries = append(entries, e) })
	ctx := context.Background()
	Warningf(ctx, "attribute %q not recognized", "foo")
	cleanup()
	Warningf(ctx, "not captured")

	require.Len(t, entries, 1)
	require.Equal(t, Severity_WARNING, entries[0].Severity)
	require.Equal(t, `attribute "foo" not recognized`, entries[0].Message.StripMarkers())
}

func TestVerbosity(t *testing.T) {
	defer SetOutput(nil)()
	defer SetVerbosity(SetVerbosity(0))

	var count int
	defer Intercept(func(Entry) { count++ })()
	ctx := context.Background()
	VEventf(ctx, 2, "hidden")
	require.Equal(t, 0, count)
	SetVerbosity(2)
	VEventf(ctx, 2, "shown")
	require.Equal(t, 1, count)
}

func TestStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	defer SetOutput(&buf)()

	StructuredEvent(context.Background(), &eventpb.CreateOperator{
		CommonSQLEventDetails: eventpb.CommonSQLEventDetails{User: "root", DescriptorID: 16384},
		OperatorName:          "public.===(int4, int4)",
	})
	out := buf.String()
	require.Contains(t, out, `"EventType":"create_operator"`)
	require.Contains(t, out, `"DescriptorID":16384`)
}

func TestEveryN(t *testing.T) {
	e := Every(time.Minute)
	now := time.Now()
	require.True(t, e.shouldLog(now))
	require.False(t, e.shouldLog(now.Add(time.Second)))
	require.True(t, e.shouldLog(now.Add(2*time.Minute)))
}
