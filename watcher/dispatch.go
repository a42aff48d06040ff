// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"context"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger"
)

func (w *Watcher) issuing(ctx context.Context, e *ledger.Event) {
	loc := e.Location()
	w.log.Debugf("issuing: %s  block: %d", loc, e.BlockNumber)

	err := w.cache.UpdateRelevantBalancesForIssuance(ctx, loc, w.Addresses())
	w.check(err, "issuing", loc)
}

func (w *Watcher) transfer(ctx context.Context, e *ledger.Event) {
	loc := e.Location()
	w.log.Debugf("transfer: %s  from: %s  to: %s  amount: %d", loc, e.From.Hex(), e.To.Hex(), e.Amount)

	w.invalidate(loc)

	if w.isWatched(e.From) {
		w.check(w.cache.RefreshBalance(ctx, loc, e.From), "transfer from", loc)
	}
	if w.isWatched(e.To) {
		w.check(w.cache.RefreshBalance(ctx, loc, e.To), "transfer to", loc)
	}

	// the sender may now reclaim the lent units
	if e.Reclaimable && w.isWatched(e.From) {
		w.check(w.cache.RefreshReclaimableFrom(ctx, loc, e.From, e.To), "transfer reclaimable", loc)
	}
}

// From is the current owner and To the reclaimer
func (w *Watcher) reclaim(ctx context.Context, e *ledger.Event) {
	loc := e.Location()
	w.log.Debugf("reclaim: %s  owner: %s  reclaimer: %s  amount: %d", loc, e.From.Hex(), e.To.Hex(), e.Amount)

	w.invalidate(loc)

	if w.isWatched(e.From) {
		w.check(w.cache.RefreshBalance(ctx, loc, e.From), "reclaim from", loc)
	}
	if w.isWatched(e.To) {
		w.check(w.cache.RefreshBalance(ctx, loc, e.To), "reclaim to", loc)
		w.check(w.cache.RefreshReclaimableFrom(ctx, loc, e.To, e.From), "reclaim reclaimable", loc)
	}
}

func (w *Watcher) revoke(e *ledger.Event) {
	w.cache.SetRevoked(e.Location())
}

func (w *Watcher) invalidate(loc issuance.Location) {
	if nil != w.history {
		w.history.Invalidate(loc)
	}
}

// log and count a dropped update
func (w *Watcher) check(err error, operation string, loc issuance.Location) {
	if nil == err {
		return
	}
	if fault.IsErrInvariant(err) {
		w.log.Errorf("%s: %s  stored with violation: %s", operation, loc, err)
		return
	}
	w.dropped.Increment()
	w.log.Warnf("%s: %s  update dropped: %s", operation, loc, err)
}
