// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package broadcast_test

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/lobwallet/broadcast"
	"github.com/bitmark-inc/lobwallet/issuance"
	"github.com/bitmark-inc/lobwallet/messagebus"
	"github.com/bitmark-inc/logger"
)

const (
	dir = "testing"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	loc   = issuance.New(common.HexToAddress("0x00000000000000000000000000000000000000c1"), 3)
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

	rc := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(dir)
	os.Exit(rc)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "dial")
	return conn
}

func TestBroadcast(t *testing.T) {
	hub := broadcast.New()
	defer hub.Close()
	server := httptest.NewServer(hub)
	defer server.Close()

	one := dial(t, server)
	defer one.Close()
	two := dial(t, server)
	defer two.Close()

	require.Eventually(t, func() bool { return 2 == hub.Clients() }, 5*time.Second, 10*time.Millisecond)

	hub.Broadcast(broadcast.NewNotification(messagebus.Message{
		Kind:     messagebus.BalanceChanged,
		Location: loc,
		Address:  alice,
	}))

	for _, conn := range []*websocket.Conn{one, two} {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err, "read")
		assert.Equal(t, websocket.TextMessage, kind)

		var n broadcast.Notification
		require.NoError(t, json.Unmarshal(data, &n))
		assert.Equal(t, "balance", n.Kind)
		assert.Equal(t, loc.String(), n.Location)
		assert.Equal(t, alice.Hex(), n.Address)
	}
	assert.Equal(t, uint64(0), hub.Dropped())
}

func TestClientDisconnect(t *testing.T) {
	hub := broadcast.New()
	defer hub.Close()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	require.Eventually(t, func() bool { return 1 == hub.Clients() }, 5*time.Second, 10*time.Millisecond)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return 0 == hub.Clients() }, 5*time.Second, 10*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	hub := broadcast.New()
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	require.Eventually(t, func() bool { return 1 == hub.Clients() }, 5*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "closed by hub")

	// refused after close
	late := dial(t, server)
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err, "late connection")
	assert.Equal(t, 0, hub.Clients())
}
