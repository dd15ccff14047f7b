// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package provision pushes WiFi credentials and derived device keys to
// devices waiting in access point mode.
//
// A run scans for access points whose name carries the device prefix,
// joins each one in turn and sends a single configuration request to
// the device's web server. Devices are handled strictly one at a time
// since joining a device network takes over the host's radio.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/u-root/dpskeygen/pkg/wifi"
)

// ErrNoDevices is returned when the first scan finds no device.
var ErrNoDevices = errors.New("no devices found")

// Provisioner provisions the devices in radio range.
type Provisioner struct {
	cfg    Config
	wifi   wifi.WiFi
	client *Client
	log    logrus.FieldLogger

	// Stdout and Stderr receive the output of the wireless tools.
	// They default to io.Discard.
	Stdout, Stderr io.Writer

	// Out, if set, gets one line per provisioned device.
	Out io.Writer

	// Select, if set, is called with the new candidates of every scan
	// and returns the ones to provision.
	Select func([]wifi.Network) ([]wifi.Network, error)
}

// loopState is owned by a single Run.
type loopState struct {
	scans int
	// candidates is a stack; the last discovered network goes first.
	candidates []wifi.Network
	done       map[string]bool
}

func (s *loopState) push(nets ...wifi.Network) {
	for _, n := range nets {
		if !s.done[bssidKey(n)] {
			s.candidates = append(s.candidates, n)
		}
	}
}

func (s *loopState) pop() (wifi.Network, bool) {
	if len(s.candidates) == 0 {
		return wifi.Network{}, false
	}
	n := s.candidates[len(s.candidates)-1]
	s.candidates = s.candidates[:len(s.candidates)-1]
	return n, true
}

func New(cfg Config, w wifi.WiFi, log logrus.FieldLogger) (*Provisioner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Provisioner{
		cfg:    cfg,
		wifi:   w,
		client: NewClient(cfg, log),
		log:    log,
	}, nil
}

// Run scans up to MaxScans times and provisions every new device found.
// It returns an error only when scanning fails, when the first scan
// finds nothing (ErrNoDevices), when Select fails or when ctx is done.
// Per-device failures are in the Report.
func (p *Provisioner) Run(ctx context.Context) (*Report, error) {
	st := &loopState{done: map[string]bool{}}
	rep := &Report{}

	for st.scans < p.cfg.MaxScans {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		nets, err := p.wifi.Scan(p.stdout(), p.stderr())
		st.scans++
		if err != nil {
			return rep, fmt.Errorf("scan: %w", err)
		}
		st.push(Candidates(nets, p.cfg.Prefix)...)
		p.log.Debugf("scan %d/%d: %d networks, %d candidates", st.scans, p.cfg.MaxScans, len(nets), len(st.candidates))

		if len(st.candidates) == 0 {
			if st.scans == 1 {
				return rep, ErrNoDevices
			}
			if st.scans < p.cfg.MaxScans {
				if err := sleep(ctx, p.cfg.RetryDelay); err != nil {
					return rep, err
				}
			}
			continue
		}

		if p.Select != nil {
			if err := p.selectCandidates(st); err != nil {
				return rep, err
			}
		}

		for {
			n, ok := st.pop()
			if !ok {
				break
			}
			if err := p.provision(ctx, n, st, rep); err != nil {
				return rep, err
			}
		}
	}
	return rep, nil
}

func (p *Provisioner) selectCandidates(st *loopState) error {
	sel, err := p.Select(append([]wifi.Network(nil), st.candidates...))
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(sel))
	for _, n := range sel {
		keep[bssidKey(n)] = true
	}
	var c []wifi.Network
	for _, n := range st.candidates {
		if keep[bssidKey(n)] {
			c = append(c, n)
		}
	}
	st.candidates = c
	return nil
}

// provision handles one device. Only a done ctx is returned as an error.
func (p *Provisioner) provision(ctx context.Context, n wifi.Network, st *loopState, rep *Report) error {
	log := p.log.WithFields(logrus.Fields{"ssid": n.Essid, "bssid": n.Bssid})

	dev, err := NewDevice(n, p.cfg.BaseRegistrationID)
	if err != nil {
		// A bad address will not get better on the next scan.
		st.done[bssidKey(n)] = true
		log.WithError(err).Warn("skipping device")
		rep.fail(n, err)
		return nil
	}

	log.Info("updating device")
	if err := p.connect(ctx, n); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("connect failed")
		rep.fail(n, err)
		return sleep(ctx, p.cfg.RetryDelay)
	}

	if err := sleep(ctx, p.cfg.SettleDelay); err != nil {
		return err
	}
	req := Request{
		SSID:           p.cfg.SSID,
		Password:       p.cfg.Password,
		PIN:            dev.PIN,
		ScopeID:        p.cfg.ScopeID,
		RegistrationID: dev.RegistrationID,
		Key:            p.cfg.MasterKey.Derive(dev.RegistrationID),
	}
	if err := p.client.Provision(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("provisioning failed")
		rep.fail(n, err)
		return nil
	}

	if err := sleep(ctx, p.cfg.RetryDelay); err != nil {
		return err
	}
	st.done[bssidKey(n)] = true
	rep.add(dev)
	log.WithField("pin", dev.PIN).Info("device provisioned")
	if p.Out != nil {
		fmt.Fprintf(p.Out, "done! deviceid: %s\n", dev.RegistrationID)
	}
	return nil
}

// connect joins the open network of a device and checks that the
// association stuck.
func (p *Provisioner) connect(ctx context.Context, n wifi.Network) error {
	if err := p.wifi.Connect(ctx, p.stdout(), p.stderr(), n.Essid); err != nil {
		return err
	}
	id, err := p.wifi.GetID(p.stdout(), p.stderr())
	if err != nil {
		return fmt.Errorf("get id: %v", err)
	}
	if id != n.Essid {
		return fmt.Errorf("associated with %q, want %q", id, n.Essid)
	}
	return nil
}

// Restore joins the network the devices were configured for.
func (p *Provisioner) Restore(ctx context.Context) error {
	a := []string{p.cfg.SSID}
	if p.cfg.Password != "" {
		a = append(a, p.cfg.Password)
	}
	if err := p.wifi.Connect(ctx, p.stdout(), p.stderr(), a...); err != nil {
		return fmt.Errorf("rejoin %s: %w", p.cfg.SSID, err)
	}
	p.log.WithField("ssid", p.cfg.SSID).Info("rejoined network")
	return nil
}

func (p *Provisioner) stdout() io.Writer {
	if p.Stdout == nil {
		return io.Discard
	}
	return p.Stdout
}

func (p *Provisioner) stderr() io.Writer {
	if p.Stderr == nil {
		return io.Discard
	}
	return p.Stderr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
