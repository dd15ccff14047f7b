// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dpskeygen derives device keys for symmetric key enrollment groups and
// optionally provisions MXChip devices waiting in AP mode.
//
// Synopsis:
//     dpskeygen [OPTIONS] MASTER-KEY REGISTRATION-ID [SCOPE-ID SSID PASSWORD]
//
// With two arguments the device key for REGISTRATION-ID is printed.
// With five, every device in range gets SSID, PASSWORD, SCOPE-ID and a
// key derived for REGISTRATION-ID plus the last two bytes of its MAC.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/u-root/dpskeygen/pkg/dhclient"
	"github.com/u-root/dpskeygen/pkg/provision"
	"github.com/u-root/dpskeygen/pkg/sas"
	"github.com/u-root/dpskeygen/pkg/wifi"
)

const name = "dpskeygen"

type worker interface {
	wifi.WiFi
	Close() error
}

var newWorker = func(iface string, o dhclient.Options) (worker, error) {
	if iface == "" {
		var err error
		if iface, err = wifi.DefaultInterface(); err != nil {
			return nil, fmt.Errorf("no wireless interface: %w", err)
		}
	}
	w, err := wifi.NewIWLWorker(iface, o)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n  %s [OPTIONS] [--] <master-key> <registration-id> [<scope-id> <ssid> <password>]\n\n"+
		"Arguments after -- are never read as options, e.g. a password starting with '-'.\n\nOptions:\n%s",
		name, fs.FlagUsages())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		iface       = fs.StringP("interface", "i", "", "Wireless interface, the first wireless link if empty")
		prefix      = fs.String("prefix", provision.DefaultPrefix, "Access point name prefix of unprovisioned devices")
		endpoint    = fs.String("endpoint", provision.DefaultEndpoint, "Configuration URL of a device in AP mode")
		timeout     = fs.Duration("timeout", provision.DefaultTimeout, "Timeout of one provisioning request")
		scans       = fs.Int("scans", provision.DefaultMaxScans, "Maximum number of scans")
		config      = fs.String("config", "", "YAML file with defaults for the options")
		interactive = fs.Bool("interactive", false, "Choose the devices to provision from a menu")
		restore     = fs.Bool("restore", false, "Join SSID once all devices are handled")
		verbose     = fs.BoolP("verbose", "v", false, "Verbose output")
	)
	fs.Usage = func() { usage(stdout, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		usage(stdout, fs)
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	pos := fs.Args()
	if len(pos) != 2 && len(pos) != 5 {
		usage(stdout, fs)
		return 0
	}

	key, err := sas.ParseMasterKey(pos[0])
	if err != nil {
		fmt.Fprintf(stderr, "\nerror : %v\n\texpects a base64 encoded master key\n", err)
		return 1
	}
	log.WithField("registration_id", pos[1]).Debug("base device id")

	if len(pos) == 2 {
		fmt.Fprintf(stdout, "\nplease find the device key below.\n%s\n\n", key.Derive(pos[1]))
		return 0
	}

	opts := provision.DefaultOptions()
	if *config != "" {
		if err := provision.LoadOptions(*config, &opts); err != nil {
			log.WithError(err).Error("can't load config")
			return 1
		}
	}
	// Flags given on the command line win over the file.
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "interface":
			opts.Interface = *iface
		case "prefix":
			opts.Prefix = *prefix
		case "endpoint":
			opts.Endpoint = *endpoint
		case "timeout":
			opts.Timeout = *timeout
		case "scans":
			opts.Scans = *scans
		}
	})

	cfg := provision.NewConfig(key, pos[1], pos[2], pos[3], pos[4], opts)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid options")
		return 1
	}

	w, err := newWorker(opts.Interface, dhclient.Options{
		Timeout: opts.DHCPTimeout,
		Retry:   dhclient.DefaultOptions.Retry,
		Verbose: *verbose,
	})
	if err != nil {
		log.WithError(err).Error("can't set up wireless interface")
		return 1
	}
	defer w.Close()

	p, err := provision.New(cfg, w, log)
	if err != nil {
		log.WithError(err).Error("can't start provisioning")
		return 1
	}
	if *verbose {
		out := log.WriterLevel(logrus.DebugLevel)
		defer out.Close()
		p.Stdout, p.Stderr = out, out
	}
	p.Out = stdout
	if *interactive {
		p.Select = selectDevices
	}

	log.Info("Scanning Devices...")
	rep, err := p.Run(ctx)
	switch {
	case errors.Is(err, provision.ErrNoDevices):
		fmt.Fprintln(stdout, "No MXCHIP broadcast was found. Have you reset them to AP mode?")
	case err != nil:
		log.WithError(err).Error("provisioning stopped")
	}
	if rerr := rep.Err(); rerr != nil {
		log.WithError(rerr).Warn("some devices were not provisioned")
	}
	if *interactive && (len(rep.Provisioned) > 0 || len(rep.Failed) > 0) {
		if err := showReport(rep); err != nil {
			log.WithError(err).Debug("can't show report")
		}
	}

	// Nothing to undo if no device network was ever joined.
	if *restore && (len(rep.Provisioned) > 0 || len(rep.Failed) > 0) {
		if err := p.Restore(ctx); err != nil {
			log.WithError(err).Warn("can't rejoin network")
		}
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
