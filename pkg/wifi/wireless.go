// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"errors"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// SIOCGIWNAME from linux/wireless.h. Only wireless extensions answer it.
const siocgiwname = 0x8B01

// ErrNotWireless is returned for interfaces without wireless extensions.
var ErrNotWireless = errors.New("not a wireless interface")

// IsWireless reports whether the named interface answers SIOCGIWNAME.
func IsWireless(name string) bool {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_IP)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return false
	}
	return unix.IoctlIfreq(fd, siocgiwname, ifr) == nil
}

// WirelessInterfaces lists the names of all wireless links.
func WirelessInterfaces() ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, l := range links {
		if n := l.Attrs().Name; IsWireless(n) {
			names = append(names, n)
		}
	}
	return names, nil
}

// DefaultInterface returns the first wireless link.
func DefaultInterface() (string, error) {
	names, err := WirelessInterfaces()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNotWireless
	}
	return names[0], nil
}
