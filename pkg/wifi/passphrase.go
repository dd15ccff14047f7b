// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const psk = `network={
		ssid="%s"
		#psk="%s"
		psk=%s
	}`

// PSK computes the WPA pre-shared key for a passphrase the way
// wpa_passphrase does.
func PSK(essid, pass string) ([]byte, error) {
	if len(pass) < 8 || len(pass) > 63 {
		return nil, fmt.Errorf("passphrase must be 8..63 characters, got %d", len(pass))
	}
	return pbkdf2.Key([]byte(pass), []byte(essid), 4096, 32, sha1.New), nil
}

func passphraseConfig(essid, pass string) ([]byte, error) {
	k, err := PSK(essid, pass)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(psk, essid, pass, hex.EncodeToString(k))), nil
}
