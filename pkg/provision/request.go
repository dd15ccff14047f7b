// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// sensors are enabled unconditionally, in this order.
var sensors = []string{"HUM", "MAG", "GYRO", "TEMP", "PRES", "ACCEL"}

// Request is the configuration pushed to one device.
type Request struct {
	SSID           string
	Password       string
	PIN            string
	ScopeID        string
	RegistrationID string
	Key            string
}

// URL renders r as a query on endpoint. The device firmware reads the
// parameters positionally, so the order is fixed.
func (r Request) URL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := []string{
		"SSID=" + escape(r.SSID),
		"PASS=" + escape(r.Password),
		"PINCO=" + escape(r.PIN),
		"SCOPEID=" + escape(r.ScopeID),
		"REGID=" + escape(r.RegistrationID),
		"AUTH=S",
		"SASKEY=" + escape(r.Key),
	}
	for _, s := range sensors {
		q = append(q, s+"=1")
	}
	u.RawQuery = strings.Join(q, "&")
	return u.String(), nil
}

// escape percent-encodes s for a query value. Spaces become %20; the
// device firmware does not decode '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Client sends provisioning requests.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	// Retries is the number of extra attempts after a transport error.
	Retries    uint64
	RetryDelay time.Duration
	Log        logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	return &Client{
		Endpoint: cfg.Endpoint,
		HTTP: &http.Client{
			Timeout: cfg.Timeout,
		},
		Retries:    1,
		RetryDelay: cfg.RetryDelay,
		Log:        log,
	}
}

// Provision sends r to the device. Any HTTP response counts as success,
// whatever its status; the device answers before it reboots and its
// status codes are not meaningful.
func (c *Client) Provision(ctx context.Context, r Request) error {
	u, err := r.URL(c.Endpoint)
	if err != nil {
		return err
	}

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return c.stripURL(err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.Log.WithFields(logrus.Fields{"status": resp.Status, "attempt": attempt}).Debug("device answered")
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.RetryDelay), c.Retries), ctx)
	notify := func(err error, d time.Duration) {
		c.Log.WithError(err).Debugf("request failed, retrying in %v", d)
	}
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return fmt.Errorf("after %d attempts: %w", attempt, err)
	}
	return nil
}

// stripURL drops the request URL from transport errors; it carries the
// device key.
func (c *Client) stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s %s: %w", ue.Op, c.Endpoint, ue.Err)
	}
	return err
}
