// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/lobwallet/background"
	"github.com/bitmark-inc/lobwallet/broadcast"
	"github.com/bitmark-inc/lobwallet/configuration"
	"github.com/bitmark-inc/lobwallet/messagebus"
	"github.com/bitmark-inc/lobwallet/session"
)

func runWatch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	log := logger.New("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openSession(ctx, m)
	if nil != err {
		return err
	}
	defer s.Close()

	err = s.Start(ctx)
	if nil != err {
		return err
	}

	report, err := makeReport(ctx, s.Cache(), s.Addresses())
	if nil != err {
		return err
	}
	err = printJson(m.w, report)
	if nil != err {
		return err
	}

	var hub *broadcast.Hub
	if "" != m.config.Listen {
		hub = broadcast.New()
		server := &http.Server{
			Addr:    m.config.Listen,
			Handler: hub,
		}
		go func() {
			log.Infof("listening on: %s", m.config.Listen)
			if err := server.ListenAndServe(); nil != err && http.ErrServerClosed != err {
				log.Errorf("listen: %s  error: %s", m.config.Listen, err)
			}
		}()
		defer func() {
			hub.Close()
			_ = server.Close()
		}()
	}

	processes := background.Start(background.Processes{
		&notifier{log: log, w: m.w, hub: hub},
	}, s.Bus())
	defer processes.Stop()

	files, err := configuration.NewFileWatcher(m.file, log)
	if nil != err {
		return err
	}
	defer files.Close()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)

	for {
		select {
		case sig := <-ch:
			log.Infof("received signal: %v", sig)
			if m.verbose {
				fmt.Fprintf(m.e, "stopping on: %v\n", sig)
			}
			return nil

		case <-files.Change():
			err := reloadAddresses(ctx, s, m.file)
			if nil != err {
				log.Errorf("reload: %s  error: %s", m.file, err)
			}

		case <-files.Remove():
			log.Warnf("configuration: %s removed, keeping current addresses", m.file)
		}
	}
}

// re-read the configuration and apply its address list
func reloadAddresses(ctx context.Context, s *session.Session, file string) error {
	config, err := configuration.GetConfiguration(file)
	if nil != err {
		return err
	}
	return s.SetAddresses(ctx, config.WalletAddresses())
}

// print every balance change notification as one JSON line and pass
// it to the websocket clients if listening
type notifier struct {
	log *logger.L
	w   io.Writer
	hub *broadcast.Hub
}

func (n *notifier) Run(args interface{}, shutdown <-chan struct{}) {

	bus := args.(*messagebus.Bus)
	encoder := json.NewEncoder(n.w)

	n.log.Info("notifier: starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item := <-bus.Chan():
			notification := broadcast.NewNotification(item)
			if err := encoder.Encode(notification); nil != err {
				n.log.Errorf("notifier: write error: %s", err)
			}
			if nil != n.hub {
				n.hub.Broadcast(notification)
			}
		}
	}

	n.log.Info("notifier: stopped")
}
