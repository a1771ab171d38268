// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package syncutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutexExclusion(t *testing.T) {
	var mu Mutex
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mu.Lock()
				mu.AssertHeld()
				counter++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 800, counter)
}
