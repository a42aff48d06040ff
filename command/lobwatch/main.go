// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/lobwallet/configuration"
	"github.com/bitmark-inc/lobwallet/fault"
)

type metadata struct {
	file    string
	config  *configuration.Configuration
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "lobwatch"
	app.Usage = "reconcile license balances with the ledger"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "lobwatch.conf",
			Usage: " configuration `FILE`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "sync",
			Usage:     "refresh all balances of the configured addresses and print them",
			ArgsUsage: "\n   (* = required)",
			Action:    runSync,
		},
		{
			Name:      "watch",
			Usage:     "keep balances current and print every change",
			ArgsUsage: "\n   (* = required)",
			Action:    runWatch,
		},
		{
			Name:      "history",
			Usage:     "show the balance history of an issuance",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "issuance, i",
					Value: "",
					Usage: "*issuance `CONTRACT|ID`",
				},
			},
			Action: runHistory,
		},
		{
			Name:      "simulate",
			Usage:     "run a mint, lend, reclaim and burn scenario on an in-memory ledger",
			ArgsUsage: "\n   (* = required)",
			Action:    runSimulate,
		},
		{
			Name:  "version",
			Usage: "display lobwatch version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// read the configuration
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command {
			return nil
		}

		file := c.GlobalString("config-file")
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}

		config, err := configuration.GetConfiguration(file)
		if nil != err {
			return fmt.Errorf("failed to read configuration from: %q  error: %s", file, err)
		}

		err = logger.Initialise(config.LoggerConfiguration())
		if nil != err {
			return fmt.Errorf("logger setup failed with error: %s", err)
		}

		err = fault.Initialise()
		if nil != err {
			return fmt.Errorf("fault setup failed with error: %s", err)
		}

		c.App.Metadata["config"] = &metadata{
			file:    file,
			config:  config,
			verbose: verbose,
			e:       e,
			w:       w,
		}

		log := logger.New("main")
		log.Infof("version: %s", version)
		log.Infof("configuration: %s", file)

		return nil
	}

	app.After = func(c *cli.Context) error {
		if _, ok := c.App.Metadata["config"].(*metadata); !ok {
			return nil
		}
		fault.Finalise()
		logger.Finalise()
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("%s: terminated with error: %s", app.Name, err)
	}
}
