// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/lobwallet/history"
	"github.com/bitmark-inc/lobwallet/issuance"
)

type historyReply struct {
	Location  issuance.Location  `json:"location"`
	Snapshots []history.Snapshot `json:"snapshots"`
	Error     string             `json:"error,omitempty"`
}

func runHistory(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	id := c.String("issuance")
	if "" == id {
		return fmt.Errorf("issuance is required")
	}
	loc, err := issuance.FromString(id)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "issuance: %s\n", loc)
	}

	ctx := context.Background()

	s, err := openSession(ctx, m)
	if nil != err {
		return err
	}
	defer s.Close()

	snapshots, err := s.Snapshots(ctx, loc)
	if nil != err {
		return err
	}

	reply := historyReply{
		Location:  loc,
		Snapshots: snapshots,
	}
	if err := history.Verify(snapshots); nil != err {
		reply.Error = err.Error()
	}
	return printJson(m.w, reply)
}
