// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"fmt"
	"io"
)

var _ = WiFi(&StubWorker{})

// StubWorker is a scripted WiFi for tests. Each Scan returns the next
// entry of Scans, repeating the last one once they run out.
type StubWorker struct {
	Scans      [][]Network
	ScanErr    error
	ConnectErr map[string]error
	// ID, if set, is what GetID reports instead of the last joined essid.
	ID string

	NumScans  int
	Connected [][]string
	current   string
}

func NewStubWorker(id string, scans ...[]Network) *StubWorker {
	return &StubWorker{ID: id, Scans: scans}
}

func (w *StubWorker) Scan(stdout, stderr io.Writer) ([]Network, error) {
	w.NumScans++
	if w.ScanErr != nil {
		return nil, w.ScanErr
	}
	if len(w.Scans) == 0 {
		return nil, nil
	}
	i := w.NumScans - 1
	if i >= len(w.Scans) {
		i = len(w.Scans) - 1
	}
	fmt.Fprintf(stdout, "scan %d: %d networks\n", w.NumScans, len(w.Scans[i]))
	return w.Scans[i], nil
}

func (w *StubWorker) GetID(stdout, stderr io.Writer) (string, error) {
	if w.ID != "" {
		return w.ID, nil
	}
	return w.current, nil
}

func (w *StubWorker) Connect(ctx context.Context, stdout, stderr io.Writer, a ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := generateConfig(a...); err != nil {
		return err
	}
	w.Connected = append(w.Connected, a)
	if err := w.ConnectErr[a[0]]; err != nil {
		return err
	}
	w.current = a[0]
	return nil
}
