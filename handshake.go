// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

import (
	"context"
	"crypto/subtle"
	"math/big"

	"github.com/latticetls/tls12hs/errors"
)

// machina is the tagged-union discriminant of the handshake state machine: a
// HandshakeState carries exactly the fields its current machina needs, and
// each HandleXxx method checks the machina first and fails with an
// unexpected-message error when called in any other stage.
type machina int

const (
	machServerInitial machina = iota
	machHelloDoneRSA
	machHelloDoneDHERSA
	machClientKeyExchangeReceived
	machClientCCSReceived
	machEstablished
)

func (m machina) String() string {
	switch m {
	case machServerInitial:
		return "ServerInitial"
	case machHelloDoneRSA:
		return "HelloDoneRSA"
	case machHelloDoneDHERSA:
		return "HelloDoneDHERSA"
	case machClientKeyExchangeReceived:
		return "ClientKeyExchangeReceived"
	case machClientCCSReceived:
		return "ClientCCSReceived"
	case machEstablished:
		return "Established"
	default:
		return "Unknown"
	}
}

// handshakeParams holds the negotiated handshake parameters.
type handshakeParams struct {
	clientRandom  []byte
	serverRandom  []byte
	clientVersion uint16
	version       uint16
	cipher        *cipherSuite
}

// HandshakeState is the handshake state: the state-machine tag,
// the shared configuration, the running transcript, and whatever stage-
// specific payload the current machina carries.
type HandshakeState struct {
	ctx     context.Context
	config  *Config
	machina machina

	transcript [][]byte
	fh         finishedHash

	params *handshakeParams
	dhe    *dheState

	clientCtx, serverCtx *CryptoContext
	masterSecret         []byte

	rekeying *rekeyingInfo
}

// NewHandshakeState starts a fresh server-side handshake in ServerInitial
// against the given configuration.
func NewHandshakeState(config *Config) *HandshakeState {
	return NewHandshakeStateContext(context.Background(), config)
}

// NewHandshakeStateContext is NewHandshakeState with a caller-supplied
// context, carried through to the errors package for log correlation (see
// errors.ContextWithID) when a handshake fails.
func NewHandshakeStateContext(ctx context.Context, config *Config) *HandshakeState {
	return &HandshakeState{ctx: ctx, config: config, machina: machServerInitial}
}

// fail logs a terminating handshake error at the driver boundary and
// returns it unchanged, so every HandleXxx return site can just wrap its
// error value without duplicating the logging call.
func (hs *HandshakeState) fail(err *HandshakeError) *HandshakeError {
	errors.LogErrorInner(hs.ctx, err, "handshake terminated in state ", hs.machina)
	return err
}

// advance moves the state machine forward and logs the transition at
// debug level, so a caller running with debug logging enabled can trace
// a handshake's path through the machina without instrumenting callers.
func (hs *HandshakeState) advance(next machina) {
	errors.LogDebug(hs.ctx, "handshake ", hs.machina, " -> ", next)
	hs.machina = next
}

// outputKind discriminates the Output variant.
type outputKind int

const (
	outRecord outputKind = iota
	outChangeEnc
	outChangeDec
)

// Output is one element of the sequence a HandleXxx call emits, consumed
// by the record layer (an external collaborator).
type Output struct {
	Kind        outputKind
	ContentType recordType // meaningful only for outRecord
	Bytes       []byte     // meaningful only for outRecord
	Context     *CryptoContext
}

func recordOutput(ty recordType, bytes []byte) Output {
	return Output{Kind: outRecord, ContentType: ty, Bytes: bytes}
}

func changeEncOutput(ctx *CryptoContext) Output { return Output{Kind: outChangeEnc, Context: ctx} }
func changeDecOutput(ctx *CryptoContext) Output { return Output{Kind: outChangeDec, Context: ctx} }

func (hs *HandshakeState) record(raw []byte) {
	hs.transcript = append(hs.transcript, raw)
	hs.fh.Write(raw)
}

// HandleClientHello implements ClientHello handling, covering both an
// initial handshake (ServerInitial)
// and a renegotiation (ServerEstablished).
func (hs *HandshakeState) HandleClientHello(raw []byte) ([]Output, error) {
	established := hs.machina == machEstablished
	if hs.machina != machServerInitial && !established {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}

	var hello clientHelloMsg
	if !hello.unmarshal(raw) {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}
	if !clientHelloStructurallyValid(&hello) {
		return nil, hs.fail(errIllegalParameter(nil))
	}

	version, ok := hs.config.selectVersion(hello.vers)
	if !ok {
		return nil, hs.fail(errProtocolVersion(nil))
	}

	suite, ok := hs.config.selectCipherSuite(&hello)
	if !ok {
		return nil, hs.fail(errHandshakeFailure(nil))
	}

	if err := checkRenegotiation(hs.config, established, hs.rekeying, &hello); err != nil {
		return nil, hs.fail(err.(*HandshakeError))
	}

	hs.transcript = nil
	hs.fh = newFinishedHash(version, suite)
	hs.record(raw)

	serverRandom := randomBytes(32)
	hs.params = &handshakeParams{
		clientRandom:  hello.random,
		serverRandom:  serverRandom,
		clientVersion: hello.vers,
		version:       version,
		cipher:        suite,
	}

	var outputs []Output

	var renegotiationInfo []byte
	if hs.rekeying == nil {
		renegotiationInfo = []byte{}
	} else {
		renegotiationInfo = append(append([]byte{}, hs.rekeying.clientVerifyData...), hs.rekeying.serverVerifyData...)
	}

	serverHello := &serverHelloMsg{
		vers:              version,
		random:            serverRandom,
		cipherSuite:       suite.id,
		sniAck:            hello.sniPresent,
		renegotiationInfo: renegotiationInfo,
	}
	shBytes, err := serverHello.marshal()
	if err != nil {
		return nil, hs.fail(errHandshakeFailure(err))
	}
	hs.record(shBytes)
	outputs = append(outputs, recordOutput(recordTypeHandshake, shBytes))

	if suite.requiresCertificate() {
		if hs.config.OwnCertificate == nil {
			return nil, hs.fail(errHandshakeFailure(nil))
		}
		cert := &certificateMsg{certificates: hs.config.OwnCertificate.Chain}
		certBytes, err := cert.marshal()
		if err != nil {
			return nil, hs.fail(errHandshakeFailure(err))
		}
		hs.record(certBytes)
		outputs = append(outputs, recordOutput(recordTypeHandshake, certBytes))
	}

	switch suite.kx {
	case kxRSA:
		hs.advance(machHelloDoneRSA)
	case kxDHERSA:
		dhe := generateServerDHE()
		hs.dhe = dhe

		skx := &serverKeyExchangeDHEMsg{
			p:       dhe.p.Bytes(),
			g:       dhe.g.Bytes(),
			Ys:      dhe.Ys.Bytes(),
			version: version,
		}
		signedData := append(append(append([]byte{}, hello.random...), serverRandom...), skx.dhParamBytes()...)

		if version == VersionTLS12 {
			hashID, err := selectSignatureHash(hello.sigAlgHashes, hello.sigAlgPresent)
			if err != nil {
				return nil, hs.fail(err.(*HandshakeError))
			}
			skx.hashID = hashID
		}

		sig, err := signHandshakeParams(hs.config.OwnCertificate.PrivateKey, version, skx.hashID, signedData)
		if err != nil {
			return nil, hs.fail(errHandshakeFailure(err))
		}
		skx.signature = sig

		skxBytes, err := skx.marshal()
		if err != nil {
			return nil, hs.fail(errHandshakeFailure(err))
		}
		hs.record(skxBytes)
		outputs = append(outputs, recordOutput(recordTypeHandshake, skxBytes))

		hs.advance(machHelloDoneDHERSA)
	}

	done := &serverHelloDoneMsg{}
	doneBytes, err := done.marshal()
	if err != nil {
		return nil, hs.fail(errHandshakeFailure(err))
	}
	hs.record(doneBytes)
	outputs = append(outputs, recordOutput(recordTypeHandshake, doneBytes))

	return outputs, nil
}

// HandleClientKeyExchange implements RSA and DHE_RSA
// ClientKeyExchange handling, including the Bleichenbacher mitigation.
func (hs *HandshakeState) HandleClientKeyExchange(raw []byte) ([]Output, error) {
	if hs.machina != machHelloDoneRSA && hs.machina != machHelloDoneDHERSA {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}

	var ckx clientKeyExchangeMsg
	if !ckx.unmarshal(raw) {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}
	hs.record(raw)

	var preMasterSecret []byte
	switch hs.machina {
	case machHelloDoneRSA:
		preMasterSecret = rsaDecryptPreMasterSecret(hs.config.OwnCertificate.PrivateKey, hs.params.clientVersion, ckx.ciphertext)
	case machHelloDoneDHERSA:
		Yc := new(big.Int).SetBytes(ckx.ciphertext)
		preMasterSecret = hs.dhe.sharedSecret(Yc)
	}

	hs.masterSecret = masterFromPreMasterSecret(hs.params.version, hs.params.cipher, preMasterSecret, hs.params.clientRandom, hs.params.serverRandom)
	zero(preMasterSecret)

	clientMAC, serverMAC, clientKey, serverKey, clientIV, serverIV := keysFromMasterSecret(hs.params.version, hs.params.cipher, hs.masterSecret, hs.params.clientRandom, hs.params.serverRandom)

	clientCtx, err := newCryptoContext(hs.params.version, hs.params.cipher, clientMAC, clientKey, clientIV)
	if err != nil {
		return nil, hs.fail(errHandshakeFailure(err))
	}
	serverCtx, err := newCryptoContext(hs.params.version, hs.params.cipher, serverMAC, serverKey, serverIV)
	if err != nil {
		return nil, hs.fail(errHandshakeFailure(err))
	}
	hs.clientCtx, hs.serverCtx = clientCtx, serverCtx

	hs.advance(machClientKeyExchangeReceived)
	return nil, nil
}

// HandleChangeCipherSpec implements ChangeCipherSpec
// handling. ChangeCipherSpec itself is excluded from the transcript.
func (hs *HandshakeState) HandleChangeCipherSpec() ([]Output, error) {
	if hs.machina != machClientKeyExchangeReceived {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}
	hs.advance(machClientCCSReceived)
	return []Output{changeDecOutput(hs.clientCtx)}, nil
}

// HandleFinished implements client Finished handling:
// verify_data check, server Finished emission, and rekeying bookkeeping.
func (hs *HandshakeState) HandleFinished(raw []byte) ([]Output, error) {
	if hs.machina != machClientCCSReceived {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}

	var fin finishedMsg
	if !fin.unmarshal(raw) {
		return nil, hs.fail(errUnexpectedMessage(nil))
	}

	expected := hs.fh.clientSum(hs.masterSecret)
	if subtle.ConstantTimeCompare(expected, fin.verifyData) != 1 {
		return nil, hs.fail(errBadRecordMAC(nil))
	}
	clientVerifyData := fin.verifyData

	hs.record(raw)

	serverVerifyData := hs.fh.serverSum(hs.masterSecret)
	serverFin := &finishedMsg{verifyData: serverVerifyData}
	finBytes, err := serverFin.marshal()
	if err != nil {
		return nil, hs.fail(errHandshakeFailure(err))
	}
	hs.record(finBytes)

	hs.rekeying = &rekeyingInfo{clientVerifyData: clientVerifyData, serverVerifyData: serverVerifyData}
	hs.advance(machEstablished)

	return []Output{
		recordOutput(recordTypeChangeCipherSpec, []byte{1}),
		changeEncOutput(hs.serverCtx),
		recordOutput(recordTypeHandshake, finBytes),
	}, nil
}

// clientHelloStructurallyValid checks structural well-formedness: non-empty
// ciphersuite list, non-zero random, and a legal (null-only) compression
// list. Extension well-formedness is already enforced by unmarshal itself
// returning false on malformed extensions.
func clientHelloStructurallyValid(hello *clientHelloMsg) bool {
	if len(hello.cipherSuites) == 0 {
		return false
	}
	if len(hello.random) != 32 {
		return false
	}
	allZero := true
	for _, b := range hello.random {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return false
	}
	if len(hello.compressionMethods) == 0 {
		return false
	}
	foundNull := false
	for _, m := range hello.compressionMethods {
		if m == 0 {
			foundNull = true
		}
	}
	return foundNull
}
