// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/balance"
	"github.com/bitmark-inc/lobwallet/issuance"
)

type locationBalance struct {
	Location    issuance.Location `json:"location"`
	Revoked     bool              `json:"revoked"`
	Balance     int64             `json:"balance"`
	Owned       int64             `json:"owned"`
	Borrowed    int64             `json:"borrowed"`
	Reclaimable int64             `json:"reclaimable"`
}

type balanceReport struct {
	Addresses []common.Address `json:"addresses"`
	Balances  []locationBalance `json:"balances"`
}

// every location where the addresses hold or can reclaim licenses
func makeReport(ctx context.Context, cache *balance.Cache, addresses []common.Address) (*balanceReport, error) {

	seen := make(map[issuance.Location]struct{})
	locations := cache.NonZeroBalanceLocations(addresses...)
	for _, loc := range locations {
		seen[loc] = struct{}{}
	}
	for _, loc := range cache.ReclaimableLocations(addresses...) {
		if _, ok := seen[loc]; !ok {
			locations = append(locations, loc)
		}
	}

	report := &balanceReport{
		Addresses: addresses,
		Balances:  make([]locationBalance, 0, len(locations)),
	}

	for _, loc := range locations {
		b, err := cache.Balance(ctx, loc, addresses...)
		if nil != err {
			return nil, err
		}
		owned, err := cache.OwnedBalance(ctx, loc, addresses...)
		if nil != err {
			return nil, err
		}
		borrowed, err := cache.BorrowedBalance(ctx, loc, addresses...)
		if nil != err {
			return nil, err
		}
		reclaimable, err := cache.ReclaimableBalance(ctx, loc, addresses...)
		if nil != err {
			return nil, err
		}
		report.Balances = append(report.Balances, locationBalance{
			Location:    loc,
			Revoked:     cache.Revoked(loc),
			Balance:     b,
			Owned:       owned,
			Borrowed:    borrowed,
			Reclaimable: reclaimable,
		})
	}
	return report, nil
}
