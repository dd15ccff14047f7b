// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provision

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/u-root/dpskeygen/pkg/wifi"
)

// Failure is one failed attempt on a device.
type Failure struct {
	Network wifi.Network
	Err     error
}

// Report is the outcome of a run.
type Report struct {
	Provisioned []Device
	Failed      []Failure
}

func (r *Report) add(d Device) {
	r.Provisioned = append(r.Provisioned, d)
}

func (r *Report) fail(n wifi.Network, err error) {
	r.Failed = append(r.Failed, Failure{Network: n, Err: err})
}

func (r *Report) provisioned(n wifi.Network) bool {
	for _, d := range r.Provisioned {
		if bssidKey(d.Network) == bssidKey(n) {
			return true
		}
	}
	return false
}

// Err returns the failures of devices that were never provisioned, or
// nil.
func (r *Report) Err() error {
	var errs *multierror.Error
	for _, f := range r.Failed {
		if r.provisioned(f.Network) {
			continue
		}
		errs = multierror.Append(errs, fmt.Errorf("%s (%s): %w", f.Network.Essid, f.Network.Bssid, f.Err))
	}
	return errs.ErrorOrNil()
}

// Lines summarizes the report, one device per line.
func (r *Report) Lines() []string {
	var l []string
	for _, d := range r.Provisioned {
		l = append(l, fmt.Sprintf("done: %s as %s", d.Network.Essid, d.RegistrationID))
	}
	for _, f := range r.Failed {
		if r.provisioned(f.Network) {
			continue
		}
		l = append(l, fmt.Sprintf("failed: %s: %v", f.Network.Essid, f.Err))
	}
	if len(l) == 0 {
		l = append(l, "no devices were provisioned")
	}
	return l
}
