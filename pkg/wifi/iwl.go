// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/u-root/dpskeygen/pkg/dhclient"
	"github.com/vishvananda/netlink"
)

const (
	nopassphrase = `network={
		ssid="%s"
		key_mgmt=NONE
	}`
	eap = `network={
		ssid="%s"
		key_mgmt=WPA-EAP
		identity="%s"
		password="%s"
	}`

	// Each request has a 30 second window to make a connection.
	connectTimeout = 30 * time.Second
)

var (
	// RegEx for parsing iwlist output
	cellRE       = regexp.MustCompile(`(?m)^\s*Cell \d+ - Address: ([0-9A-Fa-f:]{17})\s*$`)
	essidRE      = regexp.MustCompile(`(?m)^\s*ESSID:"(.*)"\s*$`)
	encKeyOptRE  = regexp.MustCompile(`(?m)^\s*Encryption key:(on|off)\s*$`)
	wpa2RE       = regexp.MustCompile(`(?m)^\s*IE: IEEE 802.11i/WPA2 Version 1\s*$`)
	authSuitesRE = regexp.MustCompile(`(?m)^\s*Authentication Suites \(\d+\) : (.*)$`)
)

var _ = WiFi(&IWLWorker{})

// IWLWorker implements the WiFi interface using the Intel Wireless LAN commands
type IWLWorker struct {
	Interface string
	DHCP      dhclient.Options

	supplicant *exec.Cmd
	exited     chan error
	confPath   string
}

// NewIWLWorker brings the wireless interface i up.
func NewIWLWorker(i string, opts dhclient.Options) (*IWLWorker, error) {
	link, err := netlink.LinkByName(i)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", i, err)
	}
	if !IsWireless(i) {
		return nil, fmt.Errorf("%s: %w", i, ErrNotWireless)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return nil, fmt.Errorf("%s: link up: %v", i, err)
	}
	return &IWLWorker{Interface: i, DHCP: opts}, nil
}

func (w *IWLWorker) Scan(stdout, stderr io.Writer) ([]Network, error) {
	// Need a local copy of exec's output to parse out the Iwlist
	var execOutput bytes.Buffer
	stdoutTee := io.MultiWriter(&execOutput, stdout)

	cmd := exec.Command("iwlist", w.Interface, "scanning")
	cmd.Stdout, cmd.Stderr = stdoutTee, stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("iwlist %s scanning: %v", w.Interface, err)
	}
	return parseIwlistOut(execOutput.Bytes()), nil
}

// parseIwlistOut splits the output into cells and reads the address,
// ESSID and security of each one. Cells without an ESSID are hidden
// networks and are skipped. Only IEEE 802.11i/WPA2 Version 1 is
// recognized as a secured network.
func parseIwlistOut(o []byte) []Network {
	cells := cellRE.FindAllSubmatchIndex(o, -1)
	if cells == nil {
		return nil
	}

	var res []Network
	known := make(map[string]bool)
	for i, c := range cells {
		end := len(o)
		if i != len(cells)-1 {
			end = cells[i+1][0]
		}
		cell := o[c[1]:end]
		bssid := strings.ToUpper(string(o[c[2]:c[3]]))

		m := essidRE.FindSubmatch(cell)
		if m == nil || len(m[1]) == 0 {
			continue
		}
		essid := string(m[1])
		if known[bssid+essid] {
			continue
		}
		known[bssid+essid] = true

		res = append(res, Network{Essid: essid, Bssid: bssid, AuthSuite: authSuite(cell)})
	}
	return res
}

func authSuite(cell []byte) SecProto {
	if m := encKeyOptRE.FindSubmatch(cell); m != nil && string(m[1]) == "off" {
		return NoEnc
	}
	l := wpa2RE.FindIndex(cell)
	if l == nil {
		return NotSupportedProto
	}
	m := authSuitesRE.FindSubmatch(cell[l[0]:])
	if m == nil {
		return NotSupportedProto
	}
	switch strings.TrimSpace(string(m[1])) {
	case "PSK":
		return WpaPsk
	case "802.1x":
		return WpaEap
	}
	return NotSupportedProto
}

func (w *IWLWorker) GetID(stdout, stderr io.Writer) (string, error) {
	var execOutput bytes.Buffer
	stdoutTee := io.MultiWriter(&execOutput, stdout)

	cmd := exec.Command("iwgetid", w.Interface, "-r")
	cmd.Stdout, cmd.Stderr = stdoutTee, stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.Trim(execOutput.String(), " \n"), nil
}

// Connect replaces any running wpa_supplicant with one for the new
// network and waits for a DHCP lease.
func (w *IWLWorker) Connect(ctx context.Context, stdout, stderr io.Writer, a ...string) error {
	conf, err := generateConfig(a...)
	if err != nil {
		return err
	}
	w.stop()

	f, err := os.CreateTemp("", "wifi-*.conf")
	if err != nil {
		return err
	}
	if _, err := f.Write(conf); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("%s: %v", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("%s: %v", f.Name(), err)
	}
	w.confPath = f.Name()

	parent := ctx
	ctx, cancel := context.WithTimeout(parent, connectTimeout)
	defer cancel()

	// There's no telling how long the supplicant will take, but on the other hand,
	// it's been almost instantaneous. But, further, it needs to keep running.
	cmd := exec.Command("wpa_supplicant", "-i"+w.Interface, "-c"+w.confPath)
	cmd.Stdout, cmd.Stderr = stdout, stderr
	if err := cmd.Start(); err != nil {
		os.Remove(w.confPath)
		return fmt.Errorf("wpa_supplicant: %v", err)
	}
	w.supplicant = cmd
	w.exited = make(chan error, 1)
	go func(exited chan<- error) {
		exited <- cmd.Wait()
	}(w.exited)

	// The lease might never come on an incorrect password or identity.
	leased := make(chan error, 1)
	go func() {
		leased <- dhclient.Request(ctx, w.Interface, w.DHCP)
	}()

	select {
	case err := <-w.exited:
		w.supplicant = nil
		os.Remove(w.confPath)
		return fmt.Errorf("wpa supplicant exited unexpectedly: %v", err)
	case err := <-leased:
		return err
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return err
		}
		return fmt.Errorf("dhcp timeout")
	}
}

// Close stops the wpa_supplicant started by the last Connect.
func (w *IWLWorker) Close() error {
	w.stop()
	return nil
}

func (w *IWLWorker) stop() {
	if w.supplicant == nil {
		return
	}
	w.supplicant.Process.Kill()
	<-w.exited
	os.Remove(w.confPath)
	w.supplicant = nil
}

func generateConfig(a ...string) (conf []byte, err error) {
	// format of a: [essid, pass, id]
	switch {
	case len(a) == 3:
		conf = []byte(fmt.Sprintf(eap, a[0], a[2], a[1]))
	case len(a) == 2 && a[1] != "":
		conf, err = passphraseConfig(a[0], a[1])
		if err != nil {
			return nil, fmt.Errorf("essid: %v: %v", a[0], err)
		}
	case len(a) == 2, len(a) == 1:
		conf = []byte(fmt.Sprintf(nopassphrase, a[0]))
	default:
		return nil, fmt.Errorf("generateConfig needs 1, 2, or 3 args")
	}
	return
}
