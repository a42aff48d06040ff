// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bitmark-inc/lobwallet/fault"
	"github.com/bitmark-inc/logger"
)

// basic defaults (directories and files are relative to the
// "data_directory" from the configuration file)
const (
	defaultDataDirectory = "."

	defaultEthereumURL = "ws://127.0.0.1:8546"
	defaultRateLimit   = 20

	defaultHistoryExpiry = "10m"

	defaultLogDirectory = "log"
	defaultLogFile      = "lobwatch.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// a fresh map for each read, file values are merged into it
func defaultLogLevels() map[string]string {
	return map[string]string{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
}

// EthereumType - node connection
type EthereumType struct {
	URL       string  `gluamapper:"url" json:"url"`
	RateLimit float64 `gluamapper:"rate_limit" json:"rate_limit"`
}

// LoggerType - log file settings
type LoggerType struct {
	Directory string            `gluamapper:"directory" json:"directory"`
	File      string            `gluamapper:"file" json:"file"`
	Size      int               `gluamapper:"size" json:"size"`
	Count     int               `gluamapper:"count" json:"count"`
	Console   bool              `gluamapper:"console" json:"console"`
	Levels    map[string]string `gluamapper:"levels" json:"levels"`
}

// Configuration - the whole file
//
// an empty database keeps all records in memory, an empty listen
// disables the websocket notifications
type Configuration struct {
	DataDirectory    string       `gluamapper:"data_directory" json:"data_directory"`
	Network          uint64       `gluamapper:"network" json:"network"`
	Ethereum         EthereumType `gluamapper:"ethereum" json:"ethereum"`
	LicenseContracts []string     `gluamapper:"license_contracts" json:"license_contracts"`
	Addresses        []string     `gluamapper:"addresses" json:"addresses"`
	StartBlock       uint64       `gluamapper:"start_block" json:"start_block"`
	HistoryExpiry    string       `gluamapper:"history_expiry" json:"history_expiry"`
	Database         string       `gluamapper:"database" json:"database"`
	Listen           string       `gluamapper:"listen" json:"listen"`
	Logging          LoggerType   `gluamapper:"logging" json:"logging"`

	// set by GetConfiguration
	contracts []common.Address
	addresses []common.Address
	expiry    time.Duration
}

// GetConfiguration - read and check a configuration file
//
// relative paths are made absolute against the data directory, itself
// relative to the directory of the configuration file
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		Ethereum: EthereumType{
			URL:       defaultEthereumURL,
			RateLimit: defaultRateLimit,
		},
		HistoryExpiry: defaultHistoryExpiry,
		Logging: LoggerType{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels(),
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// data directory is relative to the configuration file
	if !filepath.IsAbs(options.DataDirectory) {
		options.DataDirectory = filepath.Join(filepath.Dir(configurationFileName), options.DataDirectory)
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	if info, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !info.IsDir() {
		return nil, fault.ErrNotADirectory
	}

	if "" != options.Database {
		options.Database = ensureAbsolute(options.DataDirectory, options.Database)
	}
	options.Logging.Directory = ensureAbsolute(options.DataDirectory, options.Logging.Directory)

	if options.contracts, err = parseAddresses(options.LicenseContracts); nil != err {
		return nil, err
	}
	if options.addresses, err = parseAddresses(options.Addresses); nil != err {
		return nil, err
	}
	if options.expiry, err = time.ParseDuration(options.HistoryExpiry); nil != err {
		return nil, err
	}

	return options, nil
}

// Contracts - the watched license contracts
func (c *Configuration) Contracts() []common.Address {
	return c.contracts
}

// WalletAddresses - the addresses whose balances are tracked
func (c *Configuration) WalletAddresses() []common.Address {
	return c.addresses
}

// Expiry - how long a fetched history is cached
func (c *Configuration) Expiry() time.Duration {
	return c.expiry
}

// LoggerConfiguration - settings for logger.Initialise
func (c *Configuration) LoggerConfiguration() logger.Configuration {
	return logger.Configuration{
		Directory: c.Logging.Directory,
		File:      c.Logging.File,
		Size:      c.Logging.Size,
		Count:     c.Logging.Count,
		Console:   c.Logging.Console,
		Levels:    c.Logging.Levels,
	}
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}

func parseAddresses(list []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(list))
	for _, s := range list {
		if !common.IsHexAddress(s) {
			return nil, fault.ErrInvalidAddress
		}
		addresses = append(addresses, common.HexToAddress(s))
	}
	return addresses, nil
}
