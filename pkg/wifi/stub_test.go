// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestStubWorker(t *testing.T) {
	first := []Network{{Essid: "AZ3166_A", Bssid: "AA:BB:CC:DD:EE:FF"}}
	w := NewStubWorker("", first, nil)
	w.ConnectErr = map[string]error{"bad": errors.New("no carrier")}

	for i, want := range []int{1, 0, 0} {
		n, err := w.Scan(io.Discard, io.Discard)
		if err != nil {
			t.Fatal(err)
		}
		if len(n) != want {
			t.Errorf("scan %d: got %d networks, want %d", i, len(n), want)
		}
	}

	if err := w.Connect(context.Background(), io.Discard, io.Discard, "AZ3166_A"); err != nil {
		t.Fatal(err)
	}
	if id, _ := w.GetID(io.Discard, io.Discard); id != "AZ3166_A" {
		t.Errorf("GetID: got %q, want %q", id, "AZ3166_A")
	}
	if err := w.Connect(context.Background(), io.Discard, io.Discard, "bad"); err == nil {
		t.Errorf("Connect(bad): got nil, want error")
	}
	if id, _ := w.GetID(io.Discard, io.Discard); id != "AZ3166_A" {
		t.Errorf("GetID after failed connect: got %q, want %q", id, "AZ3166_A")
	}
	if len(w.Connected) != 2 {
		t.Errorf("got %d connects, want 2", len(w.Connected))
	}
}

func TestStubWorkerConnectCanceled(t *testing.T) {
	w := NewStubWorker("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Connect(ctx, io.Discard, io.Discard, "AZ3166_A"); !errors.Is(err, context.Canceled) {
		t.Errorf("Connect: got %v, want %v", err, context.Canceled)
	}
	if len(w.Connected) != 0 {
		t.Errorf("got %d connects, want 0", len(w.Connected))
	}
}
