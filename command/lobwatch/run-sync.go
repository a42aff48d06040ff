// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/lobwallet/ledger/contract"
	"github.com/bitmark-inc/lobwallet/session"
)

func runSync(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if 0 == len(m.config.WalletAddresses()) {
		return fault.ErrMissingAddresses
	}

	ctx := context.Background()

	s, err := openSession(ctx, m)
	if nil != err {
		return err
	}
	defer s.Close()

	for _, licenseContract := range m.config.Contracts() {
		if m.verbose {
			fmt.Fprintf(m.e, "refreshing: %s\n", licenseContract.Hex())
		}
		err := s.Cache().UpdateAllRelevantBalancesForLicenseContract(ctx, licenseContract, m.config.WalletAddresses())
		if nil != err {
			return err
		}
	}

	report, err := makeReport(ctx, s.Cache(), m.config.WalletAddresses())
	if nil != err {
		return err
	}
	return printJson(m.w, report)
}

// connect to the node and open a session on the configured database
func openSession(ctx context.Context, m *metadata) (*session.Session, error) {

	if m.verbose {
		fmt.Fprintf(m.e, "connecting to: %s\n", m.config.Ethereum.URL)
	}

	client, err := contract.Dial(ctx, m.config.Ethereum.URL, m.config.Ethereum.RateLimit)
	if nil != err {
		return nil, err
	}

	return session.New(client, sessionConfig(m))
}

func sessionConfig(m *metadata) session.Config {
	return session.Config{
		Database:      m.config.Database,
		Network:       m.config.Network,
		Contracts:     m.config.Contracts(),
		Addresses:     m.config.WalletAddresses(),
		StartBlock:    m.config.StartBlock,
		HistoryExpiry: m.config.Expiry(),
	}
}
