// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestPHashLength(t *testing.T) {
	for _, n := range []int{0, 1, 16, 17, 48, 100} {
		result := make([]byte, n)
		pHash(sha256.New, result, []byte("secret"), []byte("seed"))
		if len(result) != n {
			t.Fatalf("pHash(%d) produced %d bytes", n, len(result))
		}
	}
}

func TestPHashDeterministic(t *testing.T) {
	a := make([]byte, 64)
	b := make([]byte, 64)
	pHash(sha256.New, a, []byte("secret"), []byte("seed"))
	pHash(sha256.New, b, []byte("secret"), []byte("seed"))
	if !bytes.Equal(a, b) {
		t.Fatal("pHash is not deterministic")
	}
}

func TestSplitSecretHalvesOverlap(t *testing.T) {
	tests := []struct {
		n         int
		wantHalf  int
		wantEqual bool
	}{
		{10, 5, false},
		{11, 6, false},
	}
	for _, tt := range tests {
		secret := make([]byte, tt.n)
		for i := range secret {
			secret[i] = byte(i)
		}
		s1, s2 := splitSecretHalves(secret)
		if len(s1) != tt.wantHalf || len(s2) != tt.wantHalf {
			t.Fatalf("len(%d): got halves %d,%d want %d", tt.n, len(s1), len(s2), tt.wantHalf)
		}
		if tt.n%2 == 1 {
			// odd length: halves overlap by exactly one byte
			if !bytes.Equal(s1[len(s1)-1:], s2[:1]) {
				t.Fatalf("odd-length halves do not overlap as expected")
			}
		}
	}
}

func TestPRF10LengthAndDeterminism(t *testing.T) {
	secret := make([]byte, 48)
	for i := range secret {
		secret[i] = byte(i)
	}
	a := make([]byte, 32)
	b := make([]byte, 32)
	prf10(a, secret, []byte("master secret"), []byte("seed"))
	prf10(b, secret, []byte("master secret"), []byte("seed"))
	if len(a) != 32 {
		t.Fatalf("prf10 produced %d bytes, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Fatal("prf10 is not deterministic")
	}
}

func TestPRF12LengthAndDeterminism(t *testing.T) {
	secret := make([]byte, 48)
	prf := prf12(sha256.New)
	a := make([]byte, 32)
	b := make([]byte, 32)
	prf(a, secret, []byte("master secret"), []byte("seed"))
	prf(b, secret, []byte("master secret"), []byte("seed"))
	if len(a) != 32 {
		t.Fatalf("prf12 produced %d bytes, want 32", len(a))
	}
	if !bytes.Equal(a, b) {
		t.Fatal("prf12 is not deterministic")
	}
}

func TestMasterSecretLength(t *testing.T) {
	suite := suiteByID(TLS_RSA_WITH_AES_128_CBC_SHA256)
	preMaster := make([]byte, 48)
	clientRandom := make([]byte, 32)
	serverRandom := make([]byte, 32)
	ms := masterFromPreMasterSecret(VersionTLS12, suite, preMaster, clientRandom, serverRandom)
	if len(ms) != masterSecretLength {
		t.Fatalf("master secret length = %d, want %d", len(ms), masterSecretLength)
	}
}

func TestKeysFromMasterSecretLengths(t *testing.T) {
	for _, id := range []uint16{TLS_RSA_WITH_RC4_128_SHA, TLS_RSA_WITH_AES_128_CBC_SHA, TLS_RSA_WITH_AES_128_CBC_SHA256} {
		suite := suiteByID(id)
		ms := make([]byte, masterSecretLength)
		clientRandom := make([]byte, 32)
		serverRandom := make([]byte, 32)
		cMAC, sMAC, cKey, sKey, cIV, sIV := keysFromMasterSecret(VersionTLS12, suite, ms, clientRandom, serverRandom)
		if len(cMAC) != suite.macLen || len(sMAC) != suite.macLen {
			t.Errorf("suite 0x%04x: MAC key length mismatch", id)
		}
		if len(cKey) != suite.keyLen || len(sKey) != suite.keyLen {
			t.Errorf("suite 0x%04x: enc key length mismatch", id)
		}
		if len(cIV) != suite.ivLen || len(sIV) != suite.ivLen {
			t.Errorf("suite 0x%04x: IV length mismatch", id)
		}
	}
}

func TestFinishedVerifyDataLength(t *testing.T) {
	suite := suiteByID(TLS_RSA_WITH_AES_128_CBC_SHA256)
	fh := newFinishedHash(VersionTLS12, suite)
	fh.Write([]byte("transcript bytes"))
	ms := make([]byte, masterSecretLength)
	verify := fh.clientSum(ms)
	if len(verify) != finishedVerifyDataLen {
		t.Fatalf("verify_data length = %d, want %d", len(verify), finishedVerifyDataLen)
	}
}

func TestFinishedSumTranscriptAssociativity(t *testing.T) {
	suite := suiteByID(TLS_RSA_WITH_AES_128_CBC_SHA256)
	ms := make([]byte, masterSecretLength)

	whole := transcriptFinishedSum(VersionTLS12, suite, ms, []byte("abcdef"), labelClientFinished)

	fh := newFinishedHash(VersionTLS12, suite)
	fh.Write([]byte("abc"))
	fh.Write([]byte("def"))
	chunked := fh.clientSum(ms)

	if !bytes.Equal(whole, chunked) {
		t.Fatal("Finished sum depends on transcript chunking, not just concatenation")
	}
}
