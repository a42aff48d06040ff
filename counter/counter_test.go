// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/bitmark-inc/lobwallet/counter"
)

// test incrementing/decrementing a counter
func TestCounter(t *testing.T) {

	var c1 counter.Counter

	if !c1.IsZero() {
		t.Errorf("counter is not zero at start: %d", c1.Uint64())
	}

	for i := 0; i < 5; i += 1 {
		c1.Increment()
	}

	if 5 != c1.Uint64() {
		t.Errorf("counter is not 5 after incrementing: %d", c1.Uint64())
	}

	if n := c1.Decrement(); 4 != n {
		t.Errorf("counter is not 4 after decrementing: %d", n)
	}

	for i := 0; i < 4; i += 1 {
		c1.Decrement()
	}

	if !c1.IsZero() {
		t.Errorf("counter did not return to zero: %d", c1.Uint64())
	}

	// must not wrap around
	if n := c1.Decrement(); 0 != n {
		t.Errorf("counter went below zero: %d", n)
	}
	if !c1.IsZero() {
		t.Errorf("counter went below zero: %d", c1.Uint64())
	}
}

func TestConcurrent(t *testing.T) {

	var c1 counter.Counter
	var wg sync.WaitGroup

	const workers = 8
	const n = 1000

	for i := 0; i < workers; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n; j += 1 {
				c1.Increment()
			}
		}()
	}
	wg.Wait()

	if workers*n != c1.Uint64() {
		t.Errorf("counter: %d  expected: %d", c1.Uint64(), workers*n)
	}

	if old := c1.Reset(); workers*n != old {
		t.Errorf("reset returned: %d  expected: %d", old, workers*n)
	}
	if !c1.IsZero() {
		t.Errorf("counter not zero after reset: %d", c1.Uint64())
	}
}
