// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"bytes"
	"testing"
)

func TestPadCBCLaw(t *testing.T) {
	for n := 0; n < 64; n++ {
		p := make([]byte, n)
		for _, blockSize := range []int{8, 16} {
			padded := padCBC(p, blockSize)
			if len(padded)%blockSize != 0 {
				t.Fatalf("len(%d, block=%d): padded length %d not a multiple of block size", n, blockSize, len(padded))
			}
			if len(padded) < n+1 {
				t.Fatalf("len(%d, block=%d): padded length %d shorter than len(P)+1", n, blockSize, len(padded))
			}
			padLen := padded[len(padded)-1]
			for i := len(padded) - int(padLen) - 1; i < len(padded); i++ {
				if padded[i] != padLen {
					t.Fatalf("len(%d, block=%d): byte %d = %d, want %d", n, blockSize, i, padded[i], padLen)
				}
			}
		}
	}
}

func TestExtractPaddingRoundTrip(t *testing.T) {
	for n := 0; n < 64; n++ {
		p := make([]byte, n)
		for i := range p {
			p[i] = byte(i + 1)
		}
		padded := padCBC(p, 16)
		toRemove, good := extractPadding(padded)
		if good != 255 {
			t.Fatalf("len(%d): extractPadding rejected well-formed padding", n)
		}
		recovered := padded[:len(padded)-toRemove]
		if !bytes.Equal(recovered, p) {
			t.Fatalf("len(%d): recovered %v, want %v", n, recovered, p)
		}
	}
}

func TestExtractPaddingRejectsCorruption(t *testing.T) {
	padded := padCBC([]byte("hello world"), 16)
	padded[len(padded)-1] ^= 0x01
	_, good := extractPadding(padded)
	if good == 255 {
		t.Fatal("extractPadding accepted corrupted padding")
	}
}

func newTestContext(t *testing.T, suiteID uint16) (*CryptoContext, *CryptoContext) {
	suite := suiteByID(suiteID)
	if suite == nil {
		t.Fatalf("unknown suite 0x%04x", suiteID)
	}
	macKey := make([]byte, suite.macLen)
	encKey := make([]byte, suite.keyLen)
	iv := make([]byte, suite.ivLen)
	for i := range macKey {
		macKey[i] = byte(i + 1)
	}
	for i := range encKey {
		encKey[i] = byte(i + 2)
	}
	for i := range iv {
		iv[i] = byte(i + 3)
	}
	enc, err := newCryptoContext(VersionTLS12, suite, macKey, encKey, iv)
	if err != nil {
		t.Fatalf("newCryptoContext: %v", err)
	}
	dec, err := newCryptoContext(VersionTLS12, suite, macKey, encKey, iv)
	if err != nil {
		t.Fatalf("newCryptoContext: %v", err)
	}
	return enc, dec
}

func TestCBCRecordRoundTrip(t *testing.T) {
	enc, dec := newTestContext(t, TLS_RSA_WITH_AES_128_CBC_SHA)
	plaintext := []byte("this is a handshake-sized record payload")

	ciphertext, err := enc.EncryptRecord(recordTypeApplicationData, plaintext)
	if err != nil {
		t.Fatalf("EncryptRecord: %v", err)
	}
	got, err := dec.DecryptRecord(recordTypeApplicationData, ciphertext)
	if err != nil {
		t.Fatalf("DecryptRecord: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, plaintext)
	}
}

func TestCBCRecordIVChaining(t *testing.T) {
	enc, dec := newTestContext(t, TLS_RSA_WITH_AES_128_CBC_SHA)
	for i := 0; i < 3; i++ {
		plaintext := []byte{byte(i), byte(i), byte(i)}
		ciphertext, err := enc.EncryptRecord(recordTypeApplicationData, plaintext)
		if err != nil {
			t.Fatalf("record %d: EncryptRecord: %v", i, err)
		}
		if !bytes.Equal(enc.iv, ciphertext[len(ciphertext)-enc.suite.blockSize:]) {
			t.Fatalf("record %d: stored IV does not equal final ciphertext block", i)
		}
		got, err := dec.DecryptRecord(recordTypeApplicationData, ciphertext)
		if err != nil {
			t.Fatalf("record %d: DecryptRecord: %v", i, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("record %d: mismatch got %v want %v", i, got, plaintext)
		}
	}
}

func TestCBCRecordBadMACRejected(t *testing.T) {
	enc, dec := newTestContext(t, TLS_RSA_WITH_AES_128_CBC_SHA)
	ciphertext, err := enc.EncryptRecord(recordTypeApplicationData, []byte("payload"))
	if err != nil {
		t.Fatalf("EncryptRecord: %v", err)
	}
	ciphertext[0] ^= 0x01
	if _, err := dec.DecryptRecord(recordTypeApplicationData, ciphertext); err == nil {
		t.Fatal("DecryptRecord accepted a corrupted record")
	}
}

func TestStreamRecordRoundTrip(t *testing.T) {
	enc, dec := newTestContext(t, TLS_RSA_WITH_RC4_128_SHA)
	for i, plaintext := range [][]byte{[]byte("first record"), []byte("second record"), []byte("third")} {
		ciphertext, err := enc.EncryptRecord(recordTypeApplicationData, plaintext)
		if err != nil {
			t.Fatalf("record %d: EncryptRecord: %v", i, err)
		}
		got, err := dec.DecryptRecord(recordTypeApplicationData, ciphertext)
		if err != nil {
			t.Fatalf("record %d: DecryptRecord: %v", i, err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("record %d: mismatch got %q want %q", i, got, plaintext)
		}
	}
}

func must(t *testing.T, b []byte, err error) []byte {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestRecordMACMatchesRFC5246Prefix(t *testing.T) {
	prefix := recordMACInput([]byte{0, 0, 0, 0, 0, 0, 0, 0}, recordTypeHandshake, VersionTLS12, 5)
	want := []byte{0, 0, 0, 0, 0, 0, 0, 0, byte(recordTypeHandshake), 0x03, 0x03, 0, 5}
	if !bytes.Equal(prefix, want) {
		t.Fatalf("record MAC prefix = %v, want %v", prefix, want)
	}
}
