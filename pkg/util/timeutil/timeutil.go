// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package timeutil wraps the clock so that every timestamp the catalog
// records is taken the same way.
package timeutil

import "time"

// FullTimeFormat is the time format used to display any timestamp
// with date, time and time zone data.
const FullTimeFormat = "2006-01-02 15:04:05.999999-07:00:00"

// Now returns the current UTC time.
func Now() time.Time {
	return time.Now().UTC()
}

// Since returns the time elapsed since t.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
