// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"hash"
	"io"
)

// hashAlgorithm identifies a hash usable in a TLS 1.2 signature_algorithms
// entry. Only the values this module can intersect a client's
// signature_algorithms extension against are named; signing is restricted
// to RSA, so no signature-algorithm identifier is needed
// alongside these.
type hashAlgorithm uint8

const (
	hashMD5    hashAlgorithm = 1
	hashSHA1   hashAlgorithm = 2
	hashSHA256 hashAlgorithm = 4
)

func (h hashAlgorithm) hashAndCryptoHash() (func() hash.Hash, crypto.Hash) {
	switch h {
	case hashMD5:
		return md5.New, crypto.MD5
	case hashSHA256:
		return sha256.New, crypto.SHA256
	default:
		return sha1.New, crypto.SHA1
	}
}

// supportedHashes lists, in preference order, the TLS 1.2 signature hashes
// this server will agree to use, for intersecting against a client's
// signature_algorithms extension.
var supportedHashes = []hashAlgorithm{hashSHA256, hashSHA1}

// selectSignatureHash intersects the client's offered hash list (already
// filtered to RSA pairs by the caller) with supportedHashes, preserving the
// client's order, and falls back to SHA-1 if the client sent no
// signature_algorithms extension at all: an absent extension always
// yields SHA-1, not SHA-256.
func selectSignatureHash(clientHashes []hashAlgorithm, extensionPresent bool) (hashAlgorithm, error) {
	if !extensionPresent {
		return hashSHA1, nil
	}
	for _, want := range clientHashes {
		for _, have := range supportedHashes {
			if want == have {
				return want, nil
			}
		}
	}
	return 0, errHandshakeFailure(nil)
}

// rsaDecryptPreMasterSecret implements the Bleichenbacher mitigation:
// regardless of whether PKCS#1 v1.5 decryption succeeds, the
// caller always receives a 48-byte value, and which branch produced it is
// not observable from the return value or its timing shape beyond what
// crypto/rsa.DecryptPKCS1v15SessionKey itself guarantees. Grounded on
// DrKLO-Telegram's key_agreement.go, which fills a pre-generated random
// plaintext and lets DecryptPKCS1v15SessionKey overwrite it in place on
// success, never branching on the decryption error.
func rsaDecryptPreMasterSecret(priv *rsa.PrivateKey, clientVersion uint16, ciphertext []byte) []byte {
	preMasterSecret := make([]byte, masterSecretLength)
	if _, err := io.ReadFull(rand.Reader, preMasterSecret[2:]); err != nil {
		panic(err) // CSPRNG failure is not a recoverable handshake condition
	}
	preMasterSecret[0] = byte(clientVersion >> 8)
	preMasterSecret[1] = byte(clientVersion)

	// DecryptPKCS1v15SessionKey copies the decrypted plaintext over
	// preMasterSecret only if decryption succeeds AND the plaintext is
	// exactly len(preMasterSecret) bytes; otherwise preMasterSecret is left
	// untouched. Its return error must not be inspected by the caller.
	_ = rsa.DecryptPKCS1v15SessionKey(rand.Reader, priv, ciphertext, preMasterSecret)
	return preMasterSecret
}

// signHandshakeParams signs the DHE_RSA ServerKeyExchange parameters:
// PKCS#1 v1.5 over MD5||SHA1 for TLS 1.0/1.1, or over
// a single negotiated hash's DigestInfo for TLS 1.2.
func signHandshakeParams(priv *rsa.PrivateKey, version uint16, hashID hashAlgorithm, data []byte) ([]byte, error) {
	if version != VersionTLS12 {
		md5Sum := md5.Sum(data)
		sha1Sum := sha1.Sum(data)
		digest := append(md5Sum[:], sha1Sum[:]...)
		return rsa.SignPKCS1v15(rand.Reader, priv, crypto.Hash(0), digest)
	}

	hashFunc, cryptoHash := hashID.hashAndCryptoHash()
	hasher := hashFunc()
	hasher.Write(data)
	digest := hasher.Sum(nil)
	return rsa.SignPKCS1v15(rand.Reader, priv, cryptoHash, digest)
}

// randomBytes fills and returns an n-byte slice from the process CSPRNG,
// the sole source of randomness the core touches directly
// (server_random, DH secrets).
func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err)
	}
	return b
}
