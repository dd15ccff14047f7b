// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dhclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/u-root/u-root/pkg/dhclient"
	"github.com/vishvananda/netlink"
)

// Options controls a lease request.
type Options struct {
	// Timeout is the per-packet timeout.
	Timeout time.Duration
	// Retry is the number of attempts. -1 means infinity.
	Retry   int
	Verbose bool
}

// DefaultOptions suits the small access points of unprovisioned devices.
var DefaultOptions = Options{
	Timeout: 5 * time.Second,
	Retry:   3,
}

// ErrNoLease is returned when the interface got no usable lease.
var ErrNoLease = errors.New("no lease")

// Request obtains an IPv4 lease on ifName and configures the interface
// with it.
func Request(ctx context.Context, ifName string, o Options) error {
	link, err := netlink.LinkByName(ifName)
	if err != nil {
		return fmt.Errorf("can't find link %s: %v", ifName, err)
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultOptions.Timeout
	}

	c := dhclient.Config{
		Timeout: o.Timeout,
		Retries: o.Retry,
	}
	if o.Verbose {
		c.LogLevel = dhclient.LogSummary
	}
	r := dhclient.SendRequests(ctx, []netlink.Link{link}, true, false, c, 10*time.Second)

	log := logrus.WithField("interface", ifName)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %v", ifName, ErrNoLease, ctx.Err())

		case result, ok := <-r:
			if !ok {
				return fmt.Errorf("%s: %w", ifName, ErrNoLease)
			}
			if result.Err != nil {
				log.WithError(result.Err).Debug("dhcp request failed")
				continue
			}
			if err := result.Lease.Configure(); err != nil {
				return fmt.Errorf("could not configure %s: %v", ifName, err)
			}
			log.Debugf("configured with %s", result.Lease)
			return nil
		}
	}
}
