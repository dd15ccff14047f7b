// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sas derives per-device symmetric keys for group enrollments.
//
// A device key is HMAC-SHA256(masterKey, registrationID), base64 encoded,
// which is what a device provisioning service expects when the enrollment
// group uses symmetric key attestation.
package sas

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrInvalidMasterKey is returned when a master key is not base64 encoded.
var ErrInvalidMasterKey = errors.New("invalid master key encoding")

// MasterKey is the decoded group master key.
type MasterKey []byte

// ParseMasterKey decodes a standard, padded base64 master key.
func ParseMasterKey(s string) (MasterKey, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidMasterKey)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKey, err)
	}
	return MasterKey(b), nil
}

// Derive returns the base64 encoded device key for registrationID.
func (k MasterKey) Derive(registrationID string) string {
	h := hmac.New(sha256.New, k)
	h.Write([]byte(registrationID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// DeriveKey parses masterKey and derives the key for registrationID.
func DeriveKey(masterKey, registrationID string) (string, error) {
	k, err := ParseMasterKey(masterKey)
	if err != nil {
		return "", err
	}
	return k.Derive(registrationID), nil
}
