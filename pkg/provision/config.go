// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provision

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/u-root/dpskeygen/pkg/sas"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPrefix is the access point name prefix of an MXChip AZ3166
	// in AP mode.
	DefaultPrefix = "AZ3166_"
	// DefaultEndpoint is the configuration page of a device in AP mode.
	DefaultEndpoint = "http://192.168.0.1/PROCESS"

	DefaultTimeout     = 10 * time.Second
	DefaultMaxScans    = 3
	DefaultRetryDelay  = time.Second
	DefaultSettleDelay = 2 * time.Second
	DefaultDHCPTimeout = 5 * time.Second
)

// Options are the tunables of a run. They may be read from a YAML file.
type Options struct {
	Interface   string        `yaml:"interface"`
	Prefix      string        `yaml:"prefix"`
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	Scans       int           `yaml:"scans"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	DHCPTimeout time.Duration `yaml:"dhcp_timeout"`
}

func DefaultOptions() Options {
	return Options{
		Prefix:      DefaultPrefix,
		Endpoint:    DefaultEndpoint,
		Timeout:     DefaultTimeout,
		Scans:       DefaultMaxScans,
		RetryDelay:  DefaultRetryDelay,
		SettleDelay: DefaultSettleDelay,
		DHCPTimeout: DefaultDHCPTimeout,
	}
}

// LoadOptions overlays the YAML file at path onto o. Keys missing from
// the file keep their current value.
func LoadOptions(path string, o *Options) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, o); err != nil {
		return fmt.Errorf("%s: %v", path, err)
	}
	return nil
}

// Config is everything a Provisioner needs. It is not modified after
// the Provisioner is created.
type Config struct {
	MasterKey          sas.MasterKey
	BaseRegistrationID string
	ScopeID            string
	// SSID and Password are pushed to the devices.
	SSID     string
	Password string

	Prefix      string
	Endpoint    string
	Timeout     time.Duration
	MaxScans    int
	RetryDelay  time.Duration
	SettleDelay time.Duration
}

func NewConfig(key sas.MasterKey, baseID, scopeID, ssid, pass string, o Options) Config {
	return Config{
		MasterKey:          key,
		BaseRegistrationID: baseID,
		ScopeID:            scopeID,
		SSID:               ssid,
		Password:           pass,
		Prefix:             o.Prefix,
		Endpoint:           o.Endpoint,
		Timeout:            o.Timeout,
		MaxScans:           o.Scans,
		RetryDelay:         o.RetryDelay,
		SettleDelay:        o.SettleDelay,
	}
}

func (c Config) Validate() error {
	switch {
	case len(c.MasterKey) == 0:
		return fmt.Errorf("%w: empty key", sas.ErrInvalidMasterKey)
	case c.Prefix == "":
		return fmt.Errorf("empty device prefix")
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	case c.MaxScans < 1:
		return fmt.Errorf("scans must be at least 1, got %d", c.MaxScans)
	case c.RetryDelay < 0 || c.SettleDelay < 0:
		return fmt.Errorf("delays must not be negative")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q: want an http(s) URL", c.Endpoint)
	}
	return nil
}
