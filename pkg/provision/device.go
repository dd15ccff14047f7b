// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provision

import (
	"fmt"
	"net"
	"strings"

	"github.com/u-root/dpskeygen/pkg/wifi"
)

// Device is an unprovisioned device found by a scan.
type Device struct {
	Network wifi.Network
	MAC     net.HardwareAddr
	// RegistrationID is the base id followed by the last two MAC bytes.
	RegistrationID string
	// PIN is the first two MAC bytes.
	PIN string
}

// NewDevice computes the identity of the device behind n.
func NewDevice(n wifi.Network, baseID string) (Device, error) {
	mac, err := net.ParseMAC(n.Bssid)
	if err != nil {
		return Device{}, fmt.Errorf("%s: %v", n.Essid, err)
	}
	if len(mac) != 6 {
		return Device{}, fmt.Errorf("%s: bssid %s is not a 48-bit MAC", n.Essid, n.Bssid)
	}
	return Device{
		Network:        n,
		MAC:            mac,
		RegistrationID: baseID + fmt.Sprintf("%02X%02X", mac[4], mac[5]),
		PIN:            fmt.Sprintf("%02X%02X", mac[0], mac[1]),
	}, nil
}

// Candidates returns the networks whose name starts with prefix, in
// scan order.
func Candidates(nets []wifi.Network, prefix string) []wifi.Network {
	var c []wifi.Network
	for _, n := range nets {
		if strings.HasPrefix(n.Essid, prefix) {
			c = append(c, n)
		}
	}
	return c
}

func bssidKey(n wifi.Network) string {
	return strings.ToUpper(n.Bssid)
}
