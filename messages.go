// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"golang.org/x/crypto/cryptobyte"
)

// handshakeType is the 1-byte type tag of the handshake message header.
type handshakeType uint8

const (
	typeClientHello       handshakeType = 1
	typeServerHello       handshakeType = 2
	typeCertificate       handshakeType = 11
	typeServerKeyExchange handshakeType = 12
	typeServerHelloDone   handshakeType = 14
	typeClientKeyExchange handshakeType = 16
	typeFinished          handshakeType = 20
)

// extRenegotiationInfo is RFC 5746's extension type number.
const extRenegotiationInfo uint16 = 0xff01

// extSignatureAlgorithms is RFC 5246's extension type number.
const extSignatureAlgorithms uint16 = 13

// extServerName is RFC 6066's extension type number.
const extServerName uint16 = 0

// clientHelloMsg is the subset of ClientHello this module needs: version,
// random, offered ciphers, and the two extensions it inspects
// (renegotiation_info, signature_algorithms). SNI is parsed only far
// enough to learn whether it was present.
type clientHelloMsg struct {
	raw                  []byte
	vers                 uint16
	random               []byte
	cipherSuites         []uint16
	compressionMethods   []uint8
	sniPresent           bool
	renegotiationInfo    []byte
	renegotiationPresent bool
	sigAlgHashes         []hashAlgorithm
	sigAlgPresent        bool
}

func (m *clientHelloMsg) unmarshal(data []byte) bool {
	*m = clientHelloMsg{raw: data}
	s := cryptobyte.String(data)

	var msgType uint8
	var body cryptobyte.String
	if !s.ReadUint8(&msgType) || msgType != uint8(typeClientHello) ||
		!s.ReadUint24LengthPrefixed(&body) {
		return false
	}

	var random cryptobyte.String
	if !body.ReadUint16(&m.vers) || !body.ReadBytes((*[]byte)(&random), 32) {
		return false
	}
	m.random = []byte(random)

	var sessionID cryptobyte.String
	if !body.ReadUint8LengthPrefixed(&sessionID) {
		return false
	}

	var cipherSuites cryptobyte.String
	if !body.ReadUint16LengthPrefixed(&cipherSuites) {
		return false
	}
	for !cipherSuites.Empty() {
		var suite uint16
		if !cipherSuites.ReadUint16(&suite) {
			return false
		}
		m.cipherSuites = append(m.cipherSuites, suite)
	}

	var compression cryptobyte.String
	if !body.ReadUint8LengthPrefixed(&compression) {
		return false
	}
	m.compressionMethods = []uint8(compression)

	if body.Empty() {
		return true
	}

	var extensions cryptobyte.String
	if !body.ReadUint16LengthPrefixed(&extensions) {
		return false
	}
	for !extensions.Empty() {
		var extType uint16
		var extData cryptobyte.String
		if !extensions.ReadUint16(&extType) || !extensions.ReadUint16LengthPrefixed(&extData) {
			return false
		}
		switch extType {
		case extServerName:
			m.sniPresent = true
		case extRenegotiationInfo:
			var info cryptobyte.String
			if !extData.ReadUint8LengthPrefixed(&info) {
				return false
			}
			m.renegotiationPresent = true
			m.renegotiationInfo = []byte(info)
		case extSignatureAlgorithms:
			var algs cryptobyte.String
			if !extData.ReadUint16LengthPrefixed(&algs) {
				return false
			}
			m.sigAlgPresent = true
			for !algs.Empty() {
				var hashByte, sigByte uint8
				if !algs.ReadUint8(&hashByte) || !algs.ReadUint8(&sigByte) {
					return false
				}
				if sigByte == 1 { // rsa
					m.sigAlgHashes = append(m.sigAlgHashes, hashAlgorithm(hashByte))
				}
			}
		}
	}
	return true
}

// hasCipherSuite reports whether id appears in the client's offered list,
// used both for real suite matching and for the renegotiation SCSV check.
func (m *clientHelloMsg) hasCipherSuite(id uint16) bool {
	for _, s := range m.cipherSuites {
		if s == id {
			return true
		}
	}
	return false
}

// serverHelloMsg is the server's response; renegotiationInfo is nil on a
// handshake where the extension should be omitted entirely versus non-nil
// empty for "present but empty".
type serverHelloMsg struct {
	vers              uint16
	random            []byte
	cipherSuite       uint16
	sniAck            bool
	renegotiationInfo []byte // nil => omit extension entirely
}

func (m *serverHelloMsg) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(typeServerHello))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddUint16(m.vers)
		b.AddBytes(m.random)
		b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {}) // empty session id
		b.AddUint16(m.cipherSuite)
		b.AddUint8(0) // null compression

		hasRenego := m.renegotiationInfo != nil
		if !m.sniAck && !hasRenego {
			return
		}
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			if m.sniAck {
				b.AddUint16(extServerName)
				b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {})
			}
			if hasRenego {
				b.AddUint16(extRenegotiationInfo)
				b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
					b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
						b.AddBytes(m.renegotiationInfo)
					})
				})
			}
		})
	})
	return b.Bytes()
}

// certificateMsg carries the server's certificate chain, DER-encoded, leaf
// first.
type certificateMsg struct {
	certificates [][]byte
}

func (m *certificateMsg) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(typeCertificate))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
			for _, cert := range m.certificates {
				b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
					b.AddBytes(cert)
				})
			}
		})
	})
	return b.Bytes()
}

// serverKeyExchangeDHEMsg is the DHE_RSA ServerKeyExchange: DH params plus
// a signature whose encoding depends on the negotiated version.
type serverKeyExchangeDHEMsg struct {
	p, g, Ys  []byte
	version   uint16
	hashID    hashAlgorithm // only meaningful for TLS 1.2
	signature []byte
}

func (m *serverKeyExchangeDHEMsg) dhParamBytes() []byte {
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.p) })
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.g) })
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(m.Ys) })
	out, _ := b.Bytes()
	return out
}

func (m *serverKeyExchangeDHEMsg) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(typeServerKeyExchange))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.dhParamBytes())
		if m.version == VersionTLS12 {
			b.AddUint8(uint8(m.hashID))
			b.AddUint8(1) // signature algorithm: rsa
		}
		b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(m.signature)
		})
	})
	return b.Bytes()
}

// serverHelloDoneMsg has no body.
type serverHelloDoneMsg struct{}

func (m *serverHelloDoneMsg) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(typeServerHelloDone))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {})
	return b.Bytes()
}

// clientKeyExchangeMsg carries either an RSA-encrypted pre-master secret
// or a raw DH public value, depending on the negotiated key exchange.
type clientKeyExchangeMsg struct {
	ciphertext []byte // RSA: length-prefixed; DHE: length-prefixed public value
}

func (m *clientKeyExchangeMsg) unmarshal(data []byte) bool {
	s := cryptobyte.String(data)
	var msgType uint8
	var body cryptobyte.String
	if !s.ReadUint8(&msgType) || msgType != uint8(typeClientKeyExchange) ||
		!s.ReadUint24LengthPrefixed(&body) {
		return false
	}
	var value cryptobyte.String
	if !body.ReadUint16LengthPrefixed(&value) {
		return false
	}
	m.ciphertext = []byte(value)
	return true
}

// finishedMsg carries the 12-byte verify_data.
type finishedMsg struct {
	verifyData []byte
}

func (m *finishedMsg) marshal() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(typeFinished))
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.verifyData)
	})
	return b.Bytes()
}

func (m *finishedMsg) unmarshal(data []byte) bool {
	s := cryptobyte.String(data)
	var msgType uint8
	var body cryptobyte.String
	if !s.ReadUint8(&msgType) || msgType != uint8(typeFinished) ||
		!s.ReadUint24LengthPrefixed(&body) {
		return false
	}
	if len(body) != finishedVerifyDataLen {
		return false
	}
	m.verifyData = []byte(body)
	return true
}
