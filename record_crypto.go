// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/subtle"
)

// recordType mirrors the content-type byte of a TLS record header; used
// here to compute the record MAC input and in handshake.go to tag each
// Output record, never to frame records (that's the record layer's job, an
// external collaborator).
type recordType uint8

const (
	recordTypeChangeCipherSpec recordType = 20
	recordTypeAlert            recordType = 21
	recordTypeHandshake        recordType = 22
	recordTypeApplicationData  recordType = 23
)

// CryptoContext is the per-direction state the record layer activates on a
// ChangeCipherSpec: MAC key, encryption key, current IV (CBC only), sequence
// number, and the suite's algorithm identifiers. A
// stream-cipher context additionally carries the live cipher.Stream, which
// must persist across records: RC4's keystream is a single continuous
// sequence for the life of the connection, not reset per record.
type CryptoContext struct {
	version uint16
	suite   *cipherSuite
	macKey  []byte
	encKey  []byte
	iv      []byte // current CBC IV; unused for stream ciphers
	seq     uint64
	stream  cipher.Stream // stream ciphers only
}

// newCryptoContext builds a direction's context from derived key material,
// constructing the suite's stream cipher once up front when applicable.
func newCryptoContext(version uint16, suite *cipherSuite, macKey, encKey, iv []byte) (*CryptoContext, error) {
	ctx := &CryptoContext{version: version, suite: suite, macKey: macKey, encKey: encKey, iv: iv}
	if suite.isStream() {
		stream, err := suite.stream(encKey)
		if err != nil {
			return nil, err
		}
		ctx.stream = stream
	}
	return ctx, nil
}

// EncryptRecord MACs and encrypts a plaintext record, dispatching to CBC or
// the suite's stream cipher.
func (c *CryptoContext) EncryptRecord(ty recordType, plaintext []byte) ([]byte, error) {
	if c.suite.isStream() {
		return c.streamEncryptRecord(ty, c.stream, plaintext), nil
	}
	return c.cbcEncryptRecord(ty, plaintext)
}

// DecryptRecord reverses EncryptRecord.
func (c *CryptoContext) DecryptRecord(ty recordType, ciphertext []byte) ([]byte, error) {
	if c.suite.isStream() {
		return c.streamDecryptRecord(ty, c.stream, ciphertext)
	}
	return c.cbcDecryptRecord(ty, ciphertext)
}

// Zero overwrites the context's key material in place. Callers must call
// this when a connection ends or a context is superseded by renegotiation
// Key material must not outlive its owning connection.
func (c *CryptoContext) Zero() {
	zero(c.macKey)
	zero(c.encKey)
	zero(c.iv)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (c *CryptoContext) nextSeq() []byte {
	var seq [8]byte
	s := c.seq
	for i := 7; i >= 0; i-- {
		seq[i] = byte(s)
		s >>= 8
	}
	c.seq++
	return seq[:]
}

// recordMACInput builds the 13-byte MAC prefix: seq (8B BE) || type
// (1B) || version major (1B) || version minor (1B) || len(data) (2B BE).
func recordMACInput(seq []byte, ty recordType, version uint16, dataLen int) []byte {
	prefix := make([]byte, 13)
	copy(prefix, seq)
	prefix[8] = byte(ty)
	prefix[9] = byte(version >> 8)
	prefix[10] = byte(version)
	prefix[11] = byte(dataLen >> 8)
	prefix[12] = byte(dataLen)
	return prefix
}

// recordMAC computes the MAC for a record: HMAC-<suite-mac> over
// the 13-byte prefix followed by the plaintext.
func (c *CryptoContext) recordMAC(ty recordType, data []byte) []byte {
	prefix := recordMACInput(c.nextSeqPeek(), ty, c.version, len(data))
	mac := hmac.New(c.suite.macHash, c.macKey)
	mac.Write(prefix)
	mac.Write(data)
	return mac.Sum(nil)
}

// nextSeqPeek returns the current sequence number without advancing it;
// recordMAC and the caller that increments seq via nextSeq must agree on
// which record the MAC is computed for.
func (c *CryptoContext) nextSeqPeek() []byte {
	var seq [8]byte
	s := c.seq
	for i := 7; i >= 0; i-- {
		seq[i] = byte(s)
		s >>= 8
	}
	return seq[:]
}

// padCBC implements the padding law: pad_len = B - ((len(P)+1) mod
// B); append pad_len+1 bytes each equal to pad_len. The result is a multiple
// of B and at least len(P)+1.
func padCBC(plaintext []byte, blockSize int) []byte {
	padLen := blockSize - ((len(plaintext) + 1) % blockSize)
	padded := make([]byte, len(plaintext)+padLen+1)
	copy(padded, plaintext)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// extractPadding returns, in constant time, the number of trailing bytes to
// remove (padding plus its own length byte) and whether the padding was
// well-formed. See RFC 5246 §6.2.3.2; constant-time shape grounded on the
// standard record layer's padding oracle mitigation.
func extractPadding(payload []byte) (toRemove int, good byte) {
	if len(payload) < 1 {
		return 0, 0
	}

	paddingLen := payload[len(payload)-1]
	t := uint(len(payload)-1) - uint(paddingLen)
	good = byte(int32(^t) >> 31)

	toCheck := 256
	if toCheck > len(payload) {
		toCheck = len(payload)
	}
	for i := 0; i < toCheck; i++ {
		t := uint(paddingLen) - uint(i)
		mask := byte(int32(^t) >> 31)
		b := payload[len(payload)-1-i]
		good &^= mask&paddingLen ^ mask&b
	}

	good &= good << 4
	good &= good << 2
	good &= good << 1
	good = uint8(int8(good) >> 7)

	toRemove = int(paddingLen) + 1
	return
}

// cbcEncryptRecord MACs then encrypts a plaintext record under CBC with the
// context's current IV, storing the final ciphertext block back as the next
// IV.
func (c *CryptoContext) cbcEncryptRecord(ty recordType, plaintext []byte) ([]byte, error) {
	mac := c.recordMAC(ty, plaintext)
	payload := append(append([]byte{}, plaintext...), mac...)
	padded := padCBC(payload, c.suite.blockSize)

	block, err := c.suite.cipher(c.encKey)
	if err != nil {
		return nil, err
	}
	mode := cipher.NewCBCEncrypter(block, c.iv)
	ciphertext := make([]byte, len(padded))
	mode.CryptBlocks(ciphertext, padded)

	c.iv = append([]byte{}, ciphertext[len(ciphertext)-c.suite.blockSize:]...)
	c.nextSeq()
	return ciphertext, nil
}

// cbcDecryptRecord reverses cbcEncryptRecord, rejecting any MAC or padding
// failure with the SAME bad-record-MAC outcome regardless of whether
// padding or MAC check failed, a Lucky13-style padding oracle mitigation.
func (c *CryptoContext) cbcDecryptRecord(ty recordType, ciphertext []byte) ([]byte, error) {
	blockSize := c.suite.blockSize
	if len(ciphertext)%blockSize != 0 || len(ciphertext) < blockSize {
		return nil, errBadRecordMAC(nil)
	}

	block, err := c.suite.cipher(c.encKey)
	if err != nil {
		return nil, err
	}
	mode := cipher.NewCBCDecrypter(block, c.iv)
	payload := make([]byte, len(ciphertext))
	mode.CryptBlocks(payload, ciphertext)

	nextIV := append([]byte{}, ciphertext[len(ciphertext)-blockSize:]...)

	paddingLen, paddingGood := extractPadding(payload)
	macSize := c.suite.macLen
	if len(payload) < macSize+paddingLen {
		c.iv = nextIV
		c.nextSeq()
		return nil, errBadRecordMAC(nil)
	}

	n := len(payload) - macSize - paddingLen
	if n < 0 {
		n = 0
	}
	data := payload[:n]
	remoteMAC := payload[n : n+macSize]
	localMAC := c.recordMAC(ty, data)

	ok := subtle.ConstantTimeCompare(localMAC, remoteMAC) == 1 && paddingGood == 255

	c.iv = nextIV
	c.nextSeq()
	if !ok {
		return nil, errBadRecordMAC(nil)
	}
	return data, nil
}

// streamEncryptRecord MACs then XORs plaintext through the suite's stream
// cipher; no IV, no padding, MAC still applied before encryption (MAC-then-
// encrypt).
func (c *CryptoContext) streamEncryptRecord(ty recordType, stream cipher.Stream, plaintext []byte) []byte {
	mac := c.recordMAC(ty, plaintext)
	payload := append(append([]byte{}, plaintext...), mac...)
	ciphertext := make([]byte, len(payload))
	stream.XORKeyStream(ciphertext, payload)
	c.nextSeq()
	return ciphertext
}

func (c *CryptoContext) streamDecryptRecord(ty recordType, stream cipher.Stream, ciphertext []byte) ([]byte, error) {
	macSize := c.suite.macLen
	if len(ciphertext) < macSize {
		return nil, errBadRecordMAC(nil)
	}
	payload := make([]byte, len(ciphertext))
	stream.XORKeyStream(payload, ciphertext)

	n := len(payload) - macSize
	data := payload[:n]
	remoteMAC := payload[n:]
	localMAC := c.recordMAC(ty, data)

	c.nextSeq()
	if subtle.ConstantTimeCompare(localMAC, remoteMAC) != 1 {
		return nil, errBadRecordMAC(nil)
	}
	return data, nil
}
