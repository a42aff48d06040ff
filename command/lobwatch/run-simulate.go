// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger/simulated"
	"github.com/bitmark-inc/lobwallet/pending"
	"github.com/bitmark-inc/lobwallet/session"
)

const simulatedNetwork = 1

var (
	simulatedRoot  = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	simulatedAlice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	simulatedBob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	simulatedCarol = common.HexToAddress("0x00000000000000000000000000000000000000c0")

	// a transfer that is submitted but never mined
	simulatedPendingHash = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000ff")
)

type simulationReply struct {
	Location  issuance.Location                 `json:"location"`
	Balances  map[common.Address]*balanceReport `json:"balances"`
	Pending   []pending.Transaction             `json:"pending"`
	Snapshots []history.Snapshot                `json:"snapshots"`
	Error     string                            `json:"error,omitempty"`
}

func runSimulate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	reply, err := simulate(context.Background())
	if nil != err {
		return err
	}
	return printJson(m.w, reply)
}

// mint 100 to alice, alice gives 40 to bob, bob gives 10 to carol,
// carol burns 5, alice lends 20 to carol then reclaims them, finally
// bob submits a transfer of 15 back to alice that is never mined
func simulate(ctx context.Context) (*simulationReply, error) {

	l := simulated.New()
	contract, _ := l.CreateLicenseContract(simulatedRoot)
	if _, err := l.Sign(contract); nil != err {
		return nil, err
	}

	id, _, err := l.Issue(contract, simulatedAlice, 100)
	if nil != err {
		return nil, err
	}
	steps := []func() (common.Hash, error){
		func() (common.Hash, error) { return l.Transfer(contract, id, simulatedAlice, simulatedBob, 40) },
		func() (common.Hash, error) { return l.Transfer(contract, id, simulatedBob, simulatedCarol, 10) },
		func() (common.Hash, error) { return l.Destroy(contract, id, simulatedCarol, 5) },
		func() (common.Hash, error) {
			return l.TransferAndAllowReclaim(contract, id, simulatedAlice, simulatedCarol, 20)
		},
		func() (common.Hash, error) { return l.Reclaim(contract, id, simulatedAlice, simulatedCarol, 20) },
	}
	for _, step := range steps {
		if _, err := step(); nil != err {
			return nil, err
		}
	}

	addresses := []common.Address{simulatedAlice, simulatedBob, simulatedCarol}
	s, err := session.New(l, session.Config{
		Network:       simulatedNetwork,
		Contracts:     []common.Address{contract},
		Addresses:     addresses,
		HistoryExpiry: history.DefaultExpiry,
	})
	if nil != err {
		return nil, err
	}
	defer s.Close()

	err = s.Start(ctx)
	if nil != err {
		return nil, err
	}

	loc := issuance.New(contract, id)
	err = s.Pending().Submit(ctx, pending.Transaction{
		Type:                     pending.Transfer,
		Hash:                     simulatedPendingHash,
		SubmittedBy:              simulatedBob,
		Network:                  simulatedNetwork,
		Timestamp:                time.Now().UTC(),
		WatchForMiningCheckpoint: l.BlockNumber(),
		LicenseContract:          contract,
		IssuanceID:               id,
		From:                     simulatedBob,
		To:                       simulatedAlice,
		Amount:                   15,
	})
	if nil != err {
		return nil, err
	}

	reply := &simulationReply{
		Location: loc,
		Balances: make(map[common.Address]*balanceReport),
		Pending:  s.Pending().List(),
	}

	for _, a := range addresses {
		report, err := makeReport(ctx, s.Cache(), []common.Address{a})
		if nil != err {
			return nil, err
		}
		reply.Balances[a] = report
	}

	reply.Snapshots, err = s.Snapshots(ctx, loc)
	if nil != err {
		return nil, err
	}
	if err := history.Verify(reply.Snapshots); nil != err {
		reply.Error = err.Error()
	}

	return reply, nil
}
