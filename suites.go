// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha1"
	"crypto/sha256"
	"hash"
)

// kxKind names the key-exchange shape a suite drives the state machine
// through. Every suite in this table needs a certificate: kxRSA encrypts the
// pre-master secret to it directly, kxDHERSA uses it only to sign the
// ephemeral DH parameters.
type kxKind uint8

const (
	kxRSA kxKind = iota
	kxDHERSA
)

// cipherSuite is a closed enumeration: a pure table of
// algorithm identifiers and key sizes, never an open dispatch over suite
// IDs sprinkled through the handshake logic.
type cipherSuite struct {
	id        uint16
	kx        kxKind
	macLen    int
	macHash   func() hash.Hash
	keyLen    int
	ivLen     int // 0 for stream ciphers, IV size for CBC otherwise
	blockSize int // 0 for stream ciphers
	cipher    func(key []byte) (cipher.Block, error)
	stream    func(key []byte) (cipher.Stream, error)
}

// TLS_EMPTY_RENEGOTIATION_INFO_SCSV is a pseudo-ciphersuite: a client that
// cannot send the renegotiation_info extension signals the same "no prior
// session" fact by listing this value instead. See RFC 5746 §3.4.
const sigCipherSuiteValueEmptyRenegotiationInfo uint16 = 0x00ff

const (
	TLS_RSA_WITH_RC4_128_MD5            uint16 = 0x0004
	TLS_RSA_WITH_RC4_128_SHA            uint16 = 0x0005
	TLS_RSA_WITH_3DES_EDE_CBC_SHA       uint16 = 0x000a
	TLS_DHE_RSA_WITH_3DES_EDE_CBC_SHA   uint16 = 0x0016
	TLS_RSA_WITH_AES_128_CBC_SHA        uint16 = 0x002f
	TLS_DHE_RSA_WITH_AES_128_CBC_SHA    uint16 = 0x0033
	TLS_RSA_WITH_AES_256_CBC_SHA        uint16 = 0x0035
	TLS_DHE_RSA_WITH_AES_256_CBC_SHA    uint16 = 0x0039
	TLS_RSA_WITH_AES_128_CBC_SHA256     uint16 = 0x003c
	TLS_DHE_RSA_WITH_AES_128_CBC_SHA256 uint16 = 0x0067
)

func cipherAES(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }

func cipher3DES(key []byte) (cipher.Block, error) { return des.NewTripleDESCipher(key) }

func streamRC4(key []byte) (cipher.Stream, error) { return rc4.NewCipher(key) }

// cipherSuites is the fixed, ordered master table this package knows how to
// speak. Config.Ciphers is validated against it at construction time so the
// handshake never has to fail mid-negotiation over an unrecognized ID.
var cipherSuites = []*cipherSuite{
	{TLS_RSA_WITH_3DES_EDE_CBC_SHA, kxRSA, sha1.Size, sha1.New, 24, 8, 8, cipher3DES, nil},
	{TLS_DHE_RSA_WITH_3DES_EDE_CBC_SHA, kxDHERSA, sha1.Size, sha1.New, 24, 8, 8, cipher3DES, nil},
	{TLS_RSA_WITH_AES_128_CBC_SHA, kxRSA, sha1.Size, sha1.New, 16, 16, 16, cipherAES, nil},
	{TLS_DHE_RSA_WITH_AES_128_CBC_SHA, kxDHERSA, sha1.Size, sha1.New, 16, 16, 16, cipherAES, nil},
	{TLS_RSA_WITH_AES_256_CBC_SHA, kxRSA, sha1.Size, sha1.New, 32, 16, 16, cipherAES, nil},
	{TLS_DHE_RSA_WITH_AES_256_CBC_SHA, kxDHERSA, sha1.Size, sha1.New, 32, 16, 16, cipherAES, nil},
	{TLS_RSA_WITH_AES_128_CBC_SHA256, kxRSA, sha256.Size, sha256.New, 16, 16, 16, cipherAES, nil},
	{TLS_DHE_RSA_WITH_AES_128_CBC_SHA256, kxDHERSA, sha256.Size, sha256.New, 16, 16, 16, cipherAES, nil},
	{TLS_RSA_WITH_RC4_128_SHA, kxRSA, sha1.Size, sha1.New, 16, 0, 0, nil, streamRC4},
	{TLS_RSA_WITH_RC4_128_MD5, kxRSA, md5.Size, md5.New, 16, 0, 0, nil, streamRC4},
}

func suiteByID(id uint16) *cipherSuite {
	for _, s := range cipherSuites {
		if s.id == id {
			return s
		}
	}
	return nil
}

// requiresCertificate reports whether a suite needs own_certificate
// configured: both key-exchange kinds in this table do, one to decrypt, one
// to sign, so this is trivially true today, but kept explicit per suite so a
// future anonymous-DH suite wouldn't silently inherit the wrong default.
func (s *cipherSuite) requiresCertificate() bool { return true }

// isStream reports whether the suite uses a stream cipher (no IV, no CBC
// padding) rather than block cipher CBC mode.
func (s *cipherSuite) isStream() bool { return s.blockSize == 0 }

// prfHash is the hash backing the TLS 1.2 PRF for this suite. Every suite in
// this table uses SHA-256, "unless the ciphersuite specifies
// otherwise" — none here do.
func (s *cipherSuite) prfHash() func() hash.Hash { return sha256.New }
