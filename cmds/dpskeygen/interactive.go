package main

import (
	"fmt"

	ui "github.com/gizak/termui/v3"
	"github.com/u-root/dpskeygen/pkg/menu"
	"github.com/u-root/dpskeygen/pkg/provision"
	"github.com/u-root/dpskeygen/pkg/wifi"
)

// AllDevices provisions every device of the scan.
type AllDevices struct {
	count int
}

var _ = menu.Entry(&AllDevices{})

func (a *AllDevices) Label() string {
	return fmt.Sprintf("All %d devices", a.count)
}

// Device provisions a single device.
type Device struct {
	info wifi.Network
}

var _ = menu.Entry(&Device{})

func (d *Device) Label() string {
	return fmt.Sprintf("%s (%s, %s)", d.info.Essid, d.info.Bssid, d.info.AuthSuite)
}

func selectDevices(candidates []wifi.Network) ([]wifi.Network, error) {
	if err := menu.Init(); err != nil {
		return nil, err
	}
	defer menu.Close()
	return chooseDevices(candidates, ui.PollEvents())
}

func chooseDevices(candidates []wifi.Network, uiEvents <-chan ui.Event) ([]wifi.Network, error) {
	entries := []menu.Entry{&AllDevices{count: len(candidates)}}
	for _, n := range candidates {
		entries = append(entries, &Device{info: n})
	}

	entry, err := menu.DisplayMenu("Devices", "Choose the devices to provision", entries, uiEvents)
	if err != nil {
		return nil, err
	}
	if d, ok := entry.(*Device); ok {
		return []wifi.Network{d.info}, nil
	}
	return candidates, nil
}

func showReport(rep *provision.Report) error {
	if err := menu.Init(); err != nil {
		return err
	}
	defer menu.Close()
	_, err := menu.DisplayResult(rep.Lines(), ui.PollEvents())
	return err
}
