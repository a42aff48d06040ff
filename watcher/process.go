// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/background"
	"github.com/bitmark-inc/lobwallet/ledger"
	"github.com/bitmark-inc/logger"
)

// one watched contract
type contractWatch struct {
	owner         *Watcher
	contract      common.Address
	ctx           context.Context
	cancel        context.CancelFunc
	subscriptions []ledger.Subscription
	processes     *background.T
	once          sync.Once
}

// Run - dispatch events until shutdown or a subscription fails
func (cw *contractWatch) Run(args interface{}, shutdown <-chan struct{}) {
	log := args.(*logger.L)

	transfers := cw.subscriptions[0]
	reclaims := cw.subscriptions[1]
	issuings := cw.subscriptions[2]
	revokes := cw.subscriptions[3]

	var err error

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-cw.ctx.Done():
			break loop

		case e := <-transfers.Events():
			cw.owner.transfer(cw.ctx, &e)
		case e := <-reclaims.Events():
			cw.owner.reclaim(cw.ctx, &e)
		case e := <-issuings.Events():
			cw.owner.issuing(cw.ctx, &e)
		case e := <-revokes.Events():
			cw.owner.revoke(&e)

		case err = <-transfers.Err():
			break loop
		case err = <-reclaims.Err():
			break loop
		case err = <-issuings.Err():
			break loop
		case err = <-revokes.Err():
			break loop
		}
	}

	cw.owner.ended(cw)
	cw.unsubscribe()

	if nil != err {
		log.Errorf("watch: %s  subscription error: %s", cw.contract.Hex(), err)
		return
	}
	log.Infof("watch stopped: %s", cw.contract.Hex())
}

func (cw *contractWatch) stop() {
	cw.cancel()
	cw.processes.Stop()
	cw.unsubscribe()
}

func (cw *contractWatch) unsubscribe() {
	cw.once.Do(func() {
		cw.cancel()
		for _, s := range cw.subscriptions {
			s.Unsubscribe()
		}
	})
}
