// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import "math/big"

// oakleyGroup2PrimeHex is the prime of the 1024-bit MODP group of RFC 2409
// §6.2 in hex, parsed into oakleyGroup2Prime at init: the fixed
// DH group used for all DHE_RSA key exchanges. No group negotiation
// exists in this module.
const oakleyGroup2PrimeHex = "" +
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD" +
	"129024E088A67CC74020BBEA63B139B22514A08798E3404" +
	"DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C" +
	"245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406" +
	"B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE" +
	"65381FFFFFFFFFFFFFFFF"

var (
	oakleyGroup2Prime     *big.Int
	oakleyGroup2Generator = big.NewInt(2)
)

func init() {
	oakleyGroup2Prime, _ = new(big.Int).SetString(oakleyGroup2PrimeHex, 16)
}

// dheState holds the server's half of a single DHE_RSA key exchange: the
// fixed group, the ephemeral secret exponent, and the corresponding public
// value sent to the peer in ServerKeyExchange.
type dheState struct {
	p, g *big.Int
	x    *big.Int // server's secret exponent
	Ys   *big.Int // server's public value, g^x mod p
}

// generateServerDHE picks a fresh ephemeral secret in the fixed Oakley
// Group 2 and computes the corresponding public value. The secret
// exponent is sized to the group, matching the exponent
// length conventions other DH-capable TLS stacks use.
func generateServerDHE() *dheState {
	p := oakleyGroup2Prime
	g := oakleyGroup2Generator

	// A private exponent the same bit length as the prime is generously
	// conservative for a 1024-bit group and avoids small-subgroup bias
	// without requiring a second prime (q) to reduce modulo.
	x := new(big.Int).SetBytes(randomBytes((p.BitLen() + 7) / 8))
	x.Mod(x, new(big.Int).Sub(p, big.NewInt(1)))
	if x.Sign() == 0 {
		x.SetInt64(1)
	}

	Ys := new(big.Int).Exp(g, x, p)
	return &dheState{p: p, g: g, x: x, Ys: Ys}
}

// sharedSecret computes the DH shared secret from the peer's public value,
// used directly as the pre-master secret in DHE_RSA ClientKeyExchange
// handling. Leading zero bytes of the value are stripped, as TLS 1.0-1.2
// require of a DH pre-master secret.
func (d *dheState) sharedSecret(peerYc *big.Int) []byte {
	return new(big.Int).Exp(peerYc, d.x, d.p).Bytes()
}
