// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - atomic counters for open watches and dropped
// notifications
package counter

import (
	"sync/atomic"
)

// Counter - a 64 bit unsigned counter that is safe for concurrent use
//
// the zero value is ready to use
type Counter struct {
	n uint64
}

// Increment - add 1 to a counter, returns new value
func (c *Counter) Increment() uint64 {
	return atomic.AddUint64(&c.n, 1)
}

// Decrement - subtract 1 from a counter, returns new value
//
// a counter at zero stays at zero
func (c *Counter) Decrement() uint64 {
	for {
		old := atomic.LoadUint64(&c.n)
		if 0 == old {
			return 0
		}
		if atomic.CompareAndSwapUint64(&c.n, old, old-1) {
			return old - 1
		}
	}
}

// Uint64 - returns current value
func (c *Counter) Uint64() uint64 {
	return atomic.LoadUint64(&c.n)
}

// IsZero - check if zero
func (c *Counter) IsZero() bool {
	return 0 == atomic.LoadUint64(&c.n)
}

// Reset - set back to zero, returns the previous value
func (c *Counter) Reset() uint64 {
	return atomic.SwapUint64(&c.n, 0)
}
