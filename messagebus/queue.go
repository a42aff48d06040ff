// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/counter"
	"github.com/bitmark-inc/lobwallet/issuance"
)

// internal constants
const (
	queueSize = 1000
)

// Kind - which record changed
type Kind int

// record kinds
const (
	BalanceChanged Kind = iota
	ReclaimableChanged
	RevokedChanged
	Cleared
)

func (k Kind) String() string {
	switch k {
	case BalanceChanged:
		return "balance"
	case ReclaimableChanged:
		return "reclaimable"
	case RevokedChanged:
		return "revoked"
	case Cleared:
		return "cleared"
	default:
		return "*Unknown*"
	}
}

// Message - a single change notification
//
// Owner is only set for ReclaimableChanged
type Message struct {
	Kind     Kind
	Location issuance.Location
	Address  common.Address
	Owner    common.Address
}

// Bus - a bounded notification queue
//
// a nil *Bus discards everything
type Bus struct {
	queue   chan Message
	dropped counter.Counter
}

// New - create a queue of the default size
func New() *Bus {
	return NewSized(queueSize)
}

// NewSized - create a queue holding at most size messages
func NewSized(size int) *Bus {
	return &Bus{
		queue: make(chan Message, size),
	}
}

// Send - queue a message without blocking
//
// when the queue is full the message is counted and discarded
func (bus *Bus) Send(m Message) {
	if nil == bus {
		return
	}
	select {
	case bus.queue <- m:
	default:
		bus.dropped.Increment()
	}
}

// Chan - channel to read from
func (bus *Bus) Chan() <-chan Message {
	return bus.queue
}

// Dropped - number of messages discarded because the queue was full
func (bus *Bus) Dropped() uint64 {
	if nil == bus {
		return 0
	}
	return bus.dropped.Uint64()
}
