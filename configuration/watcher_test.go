// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/lobwallet/configuration"
	"github.com/bitmark-inc/logger"
)

func TestFileWatcherChange(t *testing.T) {
	fileName := writeConfig(t, configText)
	other := filepath.Join(filepath.Dir(fileName), "other.conf")

	w, err := configuration.NewFileWatcher(fileName, logger.New("watcher"))
	require.NoError(t, err)
	defer w.Close()

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(other, []byte("return {}\n"), 0600))
	select {
	case <-w.Change():
		t.Fatal("change signalled for another file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(fileName, []byte("return {}\n"), 0600))
	select {
	case <-w.Change():
	case <-time.After(5 * time.Second):
		t.Fatal("no change signalled")
	}
}

func TestFileWatcherRemove(t *testing.T) {
	fileName := writeConfig(t, configText)

	w, err := configuration.NewFileWatcher(fileName, logger.New("watcher"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(fileName))
	select {
	case <-w.Remove():
	case <-time.After(5 * time.Second):
		t.Fatal("no remove signalled")
	}
}

func TestFileWatcherMissingFile(t *testing.T) {
	_, err := configuration.NewFileWatcher(filepath.Join(t.TempDir(), "absent"), logger.New("watcher"))
	assert.Error(t, err)
}

func TestFileWatcherCloseTwice(t *testing.T) {
	fileName := writeConfig(t, configText)

	w, err := configuration.NewFileWatcher(fileName, logger.New("watcher"))
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
