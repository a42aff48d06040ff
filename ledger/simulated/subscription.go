// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package simulated

import (
	"context"
	"sync"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger"
)

// subscription queues without bound so that emitting never blocks the
// ledger lock; a pump goroutine feeds the consumer channel
type subscription struct {
	sync.Mutex
	cond   *sync.Cond
	queue  []ledger.Event
	closed bool

	query  ledger.Query
	owner  *Ledger
	events chan ledger.Event
	errs   chan error
	quit   chan struct{}
	once   sync.Once
}

// Subscribe - see ledger.Client
func (l *Ledger) Subscribe(ctx context.Context, query ledger.Query) (ledger.Subscription, error) {
	l.Lock()
	defer l.Unlock()

	if nil != l.failure {
		return nil, fault.LedgerQuery("subscribe "+query.Kind.String(), l.failure)
	}

	s := &subscription{
		query:  query,
		owner:  l,
		events: make(chan ledger.Event),
		errs:   make(chan error, 1),
		quit:   make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.Mutex)

	// backlog first, then live
	s.queue = l.matching(&query)
	l.subscribers[s] = struct{}{}

	go s.pump()
	go func() {
		select {
		case <-ctx.Done():
			s.Unsubscribe()
		case <-s.quit:
		}
	}()

	return s, nil
}

// Break - fail every live subscription with err
//
// the subscriptions stay registered until their owners unsubscribe
func (l *Ledger) Break(err error) {
	l.Lock()
	defer l.Unlock()

	for s := range l.subscribers {
		select {
		case s.errs <- fault.LedgerQuery("subscription", err):
		default:
		}
	}
}

// Subscribers - number of live subscriptions
func (l *Ledger) Subscribers() int {
	l.Lock()
	defer l.Unlock()
	return len(l.subscribers)
}

func (s *subscription) Events() <-chan ledger.Event {
	return s.events
}

func (s *subscription) Err() <-chan error {
	return s.errs
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.owner.Lock()
		delete(s.owner.subscribers, s)
		s.owner.Unlock()

		s.Lock()
		s.closed = true
		s.Unlock()
		s.cond.Broadcast()

		close(s.quit)
	})
}

// called with the ledger lock held
func (s *subscription) push(e ledger.Event) {
	s.Lock()
	if !s.closed {
		s.queue = append(s.queue, e)
	}
	s.Unlock()
	s.cond.Signal()
}

func (s *subscription) pump() {
	for {
		s.Lock()
		for 0 == len(s.queue) && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.Unlock()
			return
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.Unlock()

		select {
		case s.events <- e:
		case <-s.quit:
			return
		}
	}
}
