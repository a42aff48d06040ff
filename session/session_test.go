// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/ledger/simulated"
	"github.com/bitmark-inc/lobwallet/pending"
	"github.com/bitmark-inc/lobwallet/session"
	"github.com/bitmark-inc/logger"
)

const (
	dir     = "testing"
	network = 3
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var (
	root  = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func TestMain(m *testing.M) {
	_ = os.RemoveAll(dir)
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)
	_ = fault.Initialise()

	rc := m.Run()

	fault.Finalise()
	logger.Finalise()
	_ = os.RemoveAll(dir)
	os.Exit(rc)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, alice, 100)
	require.Nil(t, err, "issue")
	_, err = l.TransferAndAllowReclaim(contract, id, alice, bob, 20)
	require.Nil(t, err, "lend")
	loc := issuance.New(contract, id)

	s, err := session.New(l, session.Config{
		Network:   network,
		Contracts: []common.Address{contract},
		Addresses: []common.Address{alice},
	})
	require.Nil(t, err, "new")
	defer s.Close()

	require.Nil(t, s.Start(ctx), "start")
	assert.True(t, s.Watcher().Watching(contract), "contract not watched")

	// filled by the bulk refresh, not by a miss
	assert.Equal(t, []issuance.Location{loc}, s.Cache().NonZeroBalanceLocations(alice), "wrong locations")
	assert.Equal(t, []issuance.Location{loc}, s.Cache().ReclaimableLocations(alice), "wrong reclaimable")

	// a pending transfer lowers the balance until mined
	tx := pending.Transaction{
		Type:                     pending.Transfer,
		Hash:                     l.NextTransactionHash(),
		SubmittedBy:              alice,
		Network:                  network,
		WatchForMiningCheckpoint: l.BlockNumber(),
		LicenseContract:          contract,
		IssuanceID:               id,
		From:                     alice,
		To:                       bob,
		Amount:                   30,
	}
	require.Nil(t, s.Pending().Submit(ctx, tx), "submit")

	n, err := s.Cache().Balance(ctx, loc, alice)
	require.Nil(t, err, "balance")
	assert.Equal(t, int64(50), n, "pending not applied")

	_, err = l.Transfer(contract, id, alice, bob, 30)
	require.Nil(t, err, "transfer")

	assert.Eventually(t, func() bool {
		got, err := s.Pending().Get(tx.Hash)
		return nil == err && got.Confirmed()
	}, waitFor, tick, "not confirmed")

	assert.Eventually(t, func() bool {
		n, err := s.Cache().Balance(ctx, loc, alice)
		return nil == err && 50 == n
	}, waitFor, tick, "wrong balance after confirmation")

	snapshots, err := s.Snapshots(ctx, loc)
	require.Nil(t, err, "snapshots")
	require.Equal(t, 3, len(snapshots), "wrong snapshot count")
	assert.Equal(t, int64(100), snapshots[2].Total(), "not conserved")
	assert.Equal(t, int64(50), snapshots[2].Balances[alice], "wrong alice history")
	assert.Equal(t, int64(50), snapshots[2].Balances[bob], "wrong bob history")

	s.ClearAll()
	assert.False(t, s.Watcher().Watching(contract), "watch survived clear")
	assert.Equal(t, 0, len(s.Cache().NonZeroBalanceLocations(alice)), "balances survived clear")
	assert.Equal(t, 0, len(s.Pending().List()), "transactions survived clear")
	assert.Equal(t, 0, len(s.Addresses()), "addresses survived clear")
}

func TestSetAddresses(t *testing.T) {
	ctx := context.Background()
	l := simulated.New()
	contract, _ := l.CreateLicenseContract(root)

	id, _, err := l.Issue(contract, bob, 9)
	require.Nil(t, err, "issue")

	s, err := session.New(l, session.Config{
		Network:   network,
		Contracts: []common.Address{contract},
		Addresses: []common.Address{alice},
	})
	require.Nil(t, err, "new")
	defer s.Close()

	require.Nil(t, s.Start(ctx), "start")
	assert.Equal(t, 0, len(s.Cache().NonZeroBalanceLocations(bob)), "bob cached before added")

	require.Nil(t, s.SetAddresses(ctx, []common.Address{alice, bob}), "set addresses")
	assert.Equal(t, []issuance.Location{issuance.New(contract, id)}, s.Cache().NonZeroBalanceLocations(bob), "bob not refreshed")
}

func TestCloseTwice(t *testing.T) {
	s, err := session.New(simulated.New(), session.Config{})
	require.Nil(t, err, "new")

	s.Close()
	s.Close()

	assert.Equal(t, fault.ErrNotInitialised, s.Start(context.Background()), "start after close")
}
