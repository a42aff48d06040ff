// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/bitmark-inc/logger"
)

// hold a logger channel for invariant reports
var invariant struct {
	sync.Mutex
	log *logger.L
}

// Initialise - setup the log channel that invariant violations are written to
func Initialise() error {
	invariant.Lock()
	defer invariant.Unlock()

	if nil != invariant.log {
		return ErrAlreadyInitialised
	}
	invariant.log = logger.New("INVARIANT")
	if nil == invariant.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush any data
func Finalise() {
	invariant.Lock()
	defer invariant.Unlock()

	if nil != invariant.log {
		invariant.log.Flush()
		invariant.log = nil
	}
}

// Invariant - report a violated invariant and return it as an error
// wrapping the given class so callers can test with IsErrInvariant
func Invariant(class InvariantError, format string, arguments ...interface{}) error {
	message := fmt.Sprintf(format, arguments...)
	if _, file, line, ok := runtime.Caller(1); ok {
		internalCriticalf("(%q:%d) %s: %s", file, line, class, message)
	} else {
		internalCriticalf("%s: %s", class, message)
	}
	return fmt.Errorf("%w: %s", class, message)
}

// internal routines to handle uninitialised logger channel
func internalCriticalf(format string, arguments ...interface{}) {
	invariant.Lock()
	log := invariant.log
	invariant.Unlock()

	if nil == log {
		fmt.Printf("*** "+format+"\n", arguments...)
	} else {
		log.Criticalf(format, arguments...)
	}
}
