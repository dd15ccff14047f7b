// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"io"
)

type SecProto int

const (
	NoEnc SecProto = iota
	WpaPsk
	WpaEap
	NotSupportedProto
)

func (s SecProto) String() string {
	switch s {
	case NoEnc:
		return "open"
	case WpaPsk:
		return "WPA-PSK"
	case WpaEap:
		return "WPA-EAP"
	}
	return "unsupported"
}

// Network is one access point reported by a scan.
type Network struct {
	Essid     string
	Bssid     string
	AuthSuite SecProto
}

// WiFi is the host's wireless stack. Only one Scan or Connect may be
// outstanding at a time.
type WiFi interface {
	Scan(stdout, stderr io.Writer) ([]Network, error)
	GetID(stdout, stderr io.Writer) (string, error)
	// Connect joins a network. The format of a is [essid, pass, id]:
	// one element joins an open network, two a WPA-PSK network and
	// three a WPA-EAP network. It returns ctx.Err() once ctx is done.
	Connect(ctx context.Context, stdout, stderr io.Writer, a ...string) error
}
