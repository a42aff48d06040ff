// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package broadcast

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bitmark-inc/lobwallet/counter"
	"github.com/bitmark-inc/logger"
)

const (
	sendQueueSize = 64
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
)

// Hub - the set of connected clients
type Hub struct {
	sync.RWMutex

	log      *logger.L
	upgrader websocket.Upgrader
	clients  map[*client]struct{}
	closed   bool
	dropped  counter.Counter
}

// New - create an empty hub
func New() *Hub {
	return &Hub{
		log: logger.New("broadcast"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP - upgrade the request and register the client
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if nil != err {
		h.log.Warnf("upgrade: %s  error: %s", r.RemoteAddr, err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}

	h.Lock()
	if h.closed {
		h.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.Unlock()

	h.log.Infof("connected: %s", conn.RemoteAddr())

	go c.writePump()
	go c.readPump()
}

// Broadcast - queue a notification for every client
func (h *Hub) Broadcast(n Notification) {
	data, err := json.Marshal(n)
	if nil != err {
		h.log.Errorf("marshal: %s", err)
		return
	}

	h.RLock()
	defer h.RUnlock()

	for c := range h.clients {
		if !c.queue(data) {
			h.dropped.Increment()
			h.log.Debugf("client: %s  queue full, notification dropped", c.conn.RemoteAddr())
		}
	}
}

// Clients - number of connected clients
func (h *Hub) Clients() int {
	h.RLock()
	defer h.RUnlock()
	return len(h.clients)
}

// Dropped - notifications lost to slow clients
func (h *Hub) Dropped() uint64 {
	return h.dropped.Uint64()
}

// Close - disconnect all clients, later connections are refused
func (h *Hub) Close() {
	h.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.Lock()
	delete(h.clients, c)
	h.Unlock()
}
