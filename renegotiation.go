// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import "bytes"

// rekeyingInfo is the pair of verify_data values a completed handshake
// leaves behind, consulted on the next ClientHello to decide whether it is
// an initial handshake or a renegotiation.
type rekeyingInfo struct {
	clientVerifyData []byte
	serverVerifyData []byte
}

// checkRenegotiation implements RFC 5746
// secure-renegotiation gating plus the local policy switch that refuses
// peer-initiated renegotiation altogether.
func checkRenegotiation(cfg *Config, established bool, rekeying *rekeyingInfo, hello *clientHelloMsg) error {
	theirDataPresent := hello.renegotiationPresent
	theirData := hello.renegotiationInfo
	if hello.hasCipherSuite(sigCipherSuiteValueEmptyRenegotiationInfo) {
		theirDataPresent = true
		theirData = []byte{}
	}

	if rekeying == nil {
		if theirDataPresent && len(theirData) != 0 {
			return errHandshakeFailure(nil)
		}
	} else {
		if !theirDataPresent || !bytes.Equal(theirData, rekeying.clientVerifyData) {
			return errHandshakeFailure(nil)
		}
	}

	if cfg.RequireSecureRenegotiation && !theirDataPresent {
		return errHandshakeFailure(nil)
	}

	if established && !cfg.UseRenegotiation {
		return errHandshakeFailure(nil)
	}

	return nil
}
