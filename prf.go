// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"hash"
)

// pHash implements the P_hash function from RFC 5246 §5: it fills result
// with HMAC(secret, A(1)||seed) || HMAC(secret, A(2)||seed) || ..., where
// A(0) = seed and A(i) = HMAC(secret, A(i-1)).
func pHash(hashFunc func() hash.Hash, result, secret, seed []byte) {
	h := hmac.New(hashFunc, secret)
	h.Write(seed)
	a := h.Sum(nil)

	for len(result) > 0 {
		h.Reset()
		h.Write(a)
		h.Write(seed)
		b := h.Sum(nil)
		n := copy(result, b)
		result = result[n:]

		h.Reset()
		h.Write(a)
		a = h.Sum(nil)
	}
}

// splitSecretHalves splits secret into two possibly-overlapping halves per
// RFC 2246 §5: each half has length ceil(len/2), overlapping by one byte
// when len is odd.
func splitSecretHalves(secret []byte) (s1, s2 []byte) {
	half := (len(secret) + 1) / 2
	return secret[:half], secret[len(secret)-half:]
}

// prf10 is the TLS 1.0/1.1 PRF: P_MD5 XOR P_SHA1 over independent halves of
// the secret (RFC 2246 §5).
func prf10(result, secret, label, seed []byte) {
	labelAndSeed := make([]byte, len(label)+len(seed))
	copy(labelAndSeed, label)
	copy(labelAndSeed[len(label):], seed)

	s1, s2 := splitSecretHalves(secret)

	md5Result := make([]byte, len(result))
	pHash(md5.New, md5Result, s1, labelAndSeed)

	sha1Result := make([]byte, len(result))
	pHash(sha1.New, sha1Result, s2, labelAndSeed)

	for i, b := range sha1Result {
		result[i] = md5Result[i] ^ b
	}
}

// prf12 is the TLS 1.2 PRF: P_hash over the suite's PRF hash, SHA-256 for
// every suite in this table (RFC 5246 §5).
func prf12(hashFunc func() hash.Hash) func(result, secret, label, seed []byte) {
	return func(result, secret, label, seed []byte) {
		labelAndSeed := make([]byte, len(label)+len(seed))
		copy(labelAndSeed, label)
		copy(labelAndSeed[len(label):], seed)
		pHash(hashFunc, result, secret, labelAndSeed)
	}
}

const (
	labelMasterSecret     = "master secret"
	labelKeyExpansion     = "key expansion"
	labelClientFinished   = "client finished"
	labelServerFinished   = "server finished"
	masterSecretLength    = 48
	finishedVerifyDataLen = 12
)

// prfForVersion returns the PRF function to use for a negotiated version and
// suite, matching the secret/label/seed/n signature used throughout this
// package.
func prfForVersion(version uint16, suite *cipherSuite) func(result, secret, label, seed []byte) {
	if version == VersionTLS12 {
		return prf12(suite.prfHash())
	}
	return prf10
}

// masterFromPreMasterSecret computes the 48-byte master secret from the
// pre-master secret and both handshake randoms.
func masterFromPreMasterSecret(version uint16, suite *cipherSuite, preMasterSecret, clientRandom, serverRandom []byte) []byte {
	seed := make([]byte, 0, len(clientRandom)+len(serverRandom))
	seed = append(seed, clientRandom...)
	seed = append(seed, serverRandom...)

	masterSecret := make([]byte, masterSecretLength)
	prfForVersion(version, suite)(masterSecret, preMasterSecret, []byte(labelMasterSecret), seed)
	return masterSecret
}

// keysFromMasterSecret derives the key block from the master secret and
// splits it: client MAC, server MAC, client enc key, server enc
// key, client IV, server IV, in that order. Note the random order
// (server||client) is reversed from master-secret derivation.
func keysFromMasterSecret(version uint16, suite *cipherSuite, masterSecret, clientRandom, serverRandom []byte) (clientMAC, serverMAC, clientKey, serverKey, clientIV, serverIV []byte) {
	seed := make([]byte, 0, len(clientRandom)+len(serverRandom))
	seed = append(seed, serverRandom...)
	seed = append(seed, clientRandom...)

	n := 2*suite.macLen + 2*suite.keyLen + 2*suite.ivLen
	keyBlock := make([]byte, n)
	prfForVersion(version, suite)(keyBlock, masterSecret, []byte(labelKeyExpansion), seed)

	clientMAC = keyBlock[:suite.macLen]
	keyBlock = keyBlock[suite.macLen:]
	serverMAC = keyBlock[:suite.macLen]
	keyBlock = keyBlock[suite.macLen:]
	clientKey = keyBlock[:suite.keyLen]
	keyBlock = keyBlock[suite.keyLen:]
	serverKey = keyBlock[:suite.keyLen]
	keyBlock = keyBlock[suite.keyLen:]
	clientIV = keyBlock[:suite.ivLen]
	keyBlock = keyBlock[suite.ivLen:]
	serverIV = keyBlock[:suite.ivLen]
	return
}

// finishedHash accumulates the running transcript digests needed to compute
// Finished verify_data without re-hashing the whole transcript from scratch
// on every call: md5+sha1 for TLS 1.0/1.1, sha256 for TLS 1.2. It is an
// incremental optimization of the spec's "recompute from the transcript"
// model and must produce identical output.
type finishedHash struct {
	version uint16
	suite   *cipherSuite
	md5     hash.Hash
	sha1    hash.Hash
	sha256  hash.Hash
}

func newFinishedHash(version uint16, suite *cipherSuite) finishedHash {
	fh := finishedHash{version: version, suite: suite}
	if version == VersionTLS12 {
		fh.sha256 = suite.prfHash()()
	} else {
		fh.md5 = md5.New()
		fh.sha1 = sha1.New()
	}
	return fh
}

func (h *finishedHash) Write(msg []byte) {
	if h.version == VersionTLS12 {
		h.sha256.Write(msg)
		return
	}
	h.md5.Write(msg)
	h.sha1.Write(msg)
}

func (h *finishedHash) sum() []byte {
	if h.version == VersionTLS12 {
		return h.sha256.Sum(nil)
	}
	md5Sum := h.md5.Sum(nil)
	return append(md5Sum, h.sha1.Sum(nil)...)
}

func (h *finishedHash) clientSum(masterSecret []byte) []byte {
	return h.finishedSum(masterSecret, labelClientFinished)
}

func (h *finishedHash) serverSum(masterSecret []byte) []byte {
	return h.finishedSum(masterSecret, labelServerFinished)
}

func (h *finishedHash) finishedSum(masterSecret []byte, label string) []byte {
	out := make([]byte, finishedVerifyDataLen)
	prfForVersion(h.version, h.suite)(out, masterSecret, []byte(label), h.sum())
	return out
}

// transcriptFinishedSum computes Finished verify_data directly from a raw
// transcript buffer, for callers (and tests) that keep the full transcript
// rather than an incremental hash.
func transcriptFinishedSum(version uint16, suite *cipherSuite, masterSecret []byte, transcript []byte, label string) []byte {
	h := newFinishedHash(version, suite)
	h.Write(transcript)
	return h.finishedSum(masterSecret, label)
}
