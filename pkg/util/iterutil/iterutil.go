// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package iterutil

import "github.com/cockroachdb/errors"

var errStopIteration = errors.New("stop iteration")

// StopIteration returns a sentinel error that indicates stopping iteration.
//
// It is used to signal early termination from iterator callbacks. Iterators
// map it back to nil via Map before returning.
func StopIteration() error { return errStopIteration }

// Map the nil if it is StopIteration, or keep the error otherwise
func Map(err error) error {
	if errors.Is(err, errStopIteration) {
		return nil
	}
	return err
}
