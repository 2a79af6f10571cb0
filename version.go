// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

// Protocol versions this package negotiates. TLS 1.3 is deliberately absent:
// its handshake shape (no ServerHelloDone, AEAD-only records, HKDF key
// schedule) is a different state machine, not a parameter of this one.
const (
	VersionTLS10 = 0x0301
	VersionTLS11 = 0x0302
	VersionTLS12 = 0x0303
)

// VersionName returns a human-readable name for a negotiated version number,
// for tracing and error messages.
func VersionName(version uint16) string {
	switch version {
	case VersionTLS10:
		return "TLS 1.0"
	case VersionTLS11:
		return "TLS 1.1"
	case VersionTLS12:
		return "TLS 1.2"
	default:
		return "unknown version"
	}
}

func supportedVersion(v uint16) bool {
	return v == VersionTLS10 || v == VersionTLS11 || v == VersionTLS12
}
