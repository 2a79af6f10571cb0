// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"crypto/rsa"
	"fmt"

	"github.com/latticetls/tls12hs/errors"
)

// Certificate pairs a DER-encoded leaf-first chain with the matching
// private key. X.509 parsing and trust-anchor validation are external
// collaborators; this module only ever signs with PrivateKey
// and serializes Chain verbatim into the Certificate message.
type Certificate struct {
	Chain      [][]byte
	PrivateKey *rsa.PrivateKey
}

// Config is the frozen, validated server configuration. Build one with
// NewConfig; the zero value is not valid.
type Config struct {
	Ciphers                    []uint16
	MinVersion, MaxVersion     uint16
	Hashes                     []hashAlgorithm
	UseRenegotiation           bool
	RequireSecureRenegotiation bool
	OwnCertificate             *Certificate
	PeerName                   string
}

// NewConfig validates opts and returns a frozen Config, or an error
// combining every invariant violated (via the errors package's Combine, so
// a caller fixing a config with several problems at once sees all of them
// in one pass instead of playing whack-a-mole). Callers should treat a
// successfully returned *Config as immutable and shared.
func NewConfig(opts Config) (*Config, error) {
	cfg := opts
	var problems []error

	if cfg.MinVersion == 0 {
		cfg.MinVersion = VersionTLS10
	}
	if cfg.MaxVersion == 0 {
		cfg.MaxVersion = VersionTLS12
	}
	if !supportedVersion(cfg.MinVersion) || !supportedVersion(cfg.MaxVersion) {
		problems = append(problems, fmt.Errorf("tls12hs: unsupported protocol version in config"))
	}
	if cfg.MinVersion > cfg.MaxVersion {
		problems = append(problems, fmt.Errorf("tls12hs: MinVersion > MaxVersion"))
	}

	if len(cfg.Ciphers) == 0 {
		problems = append(problems, fmt.Errorf("tls12hs: no ciphers configured"))
	}
	for _, id := range cfg.Ciphers {
		suite := suiteByID(id)
		if suite == nil {
			problems = append(problems, fmt.Errorf("tls12hs: unknown cipher suite 0x%04x", id))
			continue
		}
		if suite.requiresCertificate() && cfg.OwnCertificate == nil {
			problems = append(problems, fmt.Errorf("tls12hs: cipher 0x%04x requires own_certificate", id))
		}
	}

	if cfg.OwnCertificate != nil {
		if cfg.OwnCertificate.PrivateKey == nil {
			problems = append(problems, fmt.Errorf("tls12hs: own_certificate has no private key"))
		} else if cfg.OwnCertificate.PrivateKey.N.BitLen() < 1024 {
			problems = append(problems, fmt.Errorf("tls12hs: RSA key smaller than 1024 bits"))
		}
		if len(cfg.OwnCertificate.Chain) == 0 {
			problems = append(problems, fmt.Errorf("tls12hs: own_certificate has an empty chain"))
		}
	}

	if combined := errors.Combine(problems...); combined != nil {
		return nil, combined
	}

	if len(cfg.Hashes) == 0 {
		cfg.Hashes = []hashAlgorithm{hashSHA256, hashSHA1}
	}

	return &cfg, nil
}

// versionSupported reports whether v lies in [MinVersion, MaxVersion].
func (c *Config) versionSupported(v uint16) bool {
	return v >= c.MinVersion && v <= c.MaxVersion
}

// selectVersion selects the highest configured
// version that does not exceed the client's advertised version.
func (c *Config) selectVersion(clientVersion uint16) (uint16, bool) {
	best := uint16(0)
	for _, v := range []uint16{VersionTLS12, VersionTLS11, VersionTLS10} {
		if v <= clientVersion && c.versionSupported(v) {
			best = v
			break
		}
	}
	return best, best != 0
}

// selectCipherSuite intersects in server
// preference order, first match wins.
func (c *Config) selectCipherSuite(offered *clientHelloMsg) (*cipherSuite, bool) {
	for _, id := range c.Ciphers {
		if offered.hasCipherSuite(id) {
			return suiteByID(id), true
		}
	}
	return nil, false
}
