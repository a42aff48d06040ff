// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package broadcast

import (
	"github.com/bitmark-inc/lobwallet/messagebus"
)

// Notification - the JSON form of a bus message
type Notification struct {
	Kind     string `json:"kind"`
	Location string `json:"location"`
	Address  string `json:"address"`
	Owner    string `json:"owner"`
}

// NewNotification - convert a bus message
func NewNotification(m messagebus.Message) Notification {
	return Notification{
		Kind:     m.Kind.String(),
		Location: m.Location.String(),
		Address:  m.Address.Hex(),
		Owner:    m.Owner.Hex(),
	}
}
