// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u-root/dpskeygen/pkg/wifi"
)

func TestNewDevice(t *testing.T) {
	for _, bssid := range []string{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff", "aa-bb-cc-dd-ee-ff"} {
		d, err := NewDevice(wifi.Network{Essid: "AZ3166_A", Bssid: bssid}, "base")
		require.NoError(t, err, bssid)
		assert.Equal(t, "baseEEFF", d.RegistrationID, bssid)
		assert.Equal(t, "AABB", d.PIN, bssid)
	}
}

func TestNewDeviceBadBSSID(t *testing.T) {
	for _, bssid := range []string{"", "AA:BB:CC", "00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01"} {
		_, err := NewDevice(wifi.Network{Essid: "AZ3166_A", Bssid: bssid}, "base")
		assert.Error(t, err, bssid)
	}
}

func TestCandidates(t *testing.T) {
	nets := []wifi.Network{
		{Essid: "AZ3166_A", Bssid: "AA:BB:CC:DD:EE:01"},
		{Essid: "OtherNet", Bssid: "AA:BB:CC:DD:EE:02"},
		{Essid: "AZ3166_B", Bssid: "AA:BB:CC:DD:EE:03"},
		{Essid: "xAZ3166_C", Bssid: "AA:BB:CC:DD:EE:04"},
	}
	var names []string
	for _, n := range Candidates(nets, DefaultPrefix) {
		names = append(names, n.Essid)
	}
	assert.ElementsMatch(t, []string{"AZ3166_A", "AZ3166_B"}, names)
	assert.Empty(t, Candidates(nets[1:2], DefaultPrefix))
}

func TestLoopStateStack(t *testing.T) {
	st := &loopState{done: map[string]bool{"AA:BB:CC:DD:EE:02": true}}
	st.push(
		wifi.Network{Essid: "AZ3166_A", Bssid: "aa:bb:cc:dd:ee:01"},
		wifi.Network{Essid: "AZ3166_B", Bssid: "aa:bb:cc:dd:ee:02"},
		wifi.Network{Essid: "AZ3166_C", Bssid: "aa:bb:cc:dd:ee:03"},
	)

	var order []string
	for {
		n, ok := st.pop()
		if !ok {
			break
		}
		order = append(order, n.Essid)
	}
	assert.Equal(t, []string{"AZ3166_C", "AZ3166_A"}, order)
}
