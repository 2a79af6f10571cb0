// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tls12hs

// alert is a TLS alert description, as carried on the wire in an Alert
// record. Only the fatal alerts this package can raise are named; the full
// table lives with the record layer, which is an external collaborator.
type alert uint8

const (
	alertUnexpectedMessage alert = 10
	alertBadRecordMAC      alert = 20
	alertHandshakeFailure  alert = 40
	alertIllegalParameter  alert = 47
	alertDecodeError       alert = 50
	alertProtocolVersion   alert = 70
)

func (e alert) String() string {
	switch e {
	case alertUnexpectedMessage:
		return "unexpected_message"
	case alertBadRecordMAC:
		return "bad_record_mac"
	case alertHandshakeFailure:
		return "handshake_failure"
	case alertIllegalParameter:
		return "illegal_parameter"
	case alertDecodeError:
		return "decode_error"
	case alertProtocolVersion:
		return "protocol_version"
	default:
		return "unknown_alert"
	}
}

func (e alert) Error() string { return "tls12hs: " + e.String() }

// HandshakeError is the error taxonomy returned by this package.
// Every handshake failure is fatal: Alert names the record-layer
// alert the driver must send before dropping the connection.
type HandshakeError struct {
	Kind  ErrorKind
	Alert alert
	err   error
}

// ErrorKind classifies a HandshakeError independently of its wire alert, so
// callers can branch on taxonomy without string matching.
type ErrorKind uint8

const (
	ErrProtocolVersion ErrorKind = iota
	ErrHandshakeFailure
	ErrUnexpectedMessage
	ErrBadRecordMAC
	ErrIllegalParameter
)

func (k ErrorKind) String() string {
	switch k {
	case ErrProtocolVersion:
		return "ProtocolVersion"
	case ErrHandshakeFailure:
		return "HandshakeFailure"
	case ErrUnexpectedMessage:
		return "UnexpectedMessage"
	case ErrBadRecordMAC:
		return "BadRecordMAC"
	case ErrIllegalParameter:
		return "IllegalParameter"
	default:
		return "Unknown"
	}
}

func (e *HandshakeError) Error() string {
	if e.err == nil {
		return "tls12hs: " + e.Kind.String()
	}
	return "tls12hs: " + e.Kind.String() + ": " + e.err.Error()
}

func (e *HandshakeError) Unwrap() error { return e.err }

func newHandshakeError(kind ErrorKind, a alert, err error) *HandshakeError {
	return &HandshakeError{Kind: kind, Alert: a, err: err}
}

func errProtocolVersion(err error) *HandshakeError {
	return newHandshakeError(ErrProtocolVersion, alertProtocolVersion, err)
}

func errHandshakeFailure(err error) *HandshakeError {
	return newHandshakeError(ErrHandshakeFailure, alertHandshakeFailure, err)
}

func errUnexpectedMessage(err error) *HandshakeError {
	return newHandshakeError(ErrUnexpectedMessage, alertUnexpectedMessage, err)
}

func errBadRecordMAC(err error) *HandshakeError {
	return newHandshakeError(ErrBadRecordMAC, alertBadRecordMAC, err)
}

func errIllegalParameter(err error) *HandshakeError {
	return newHandshakeError(ErrIllegalParameter, alertIllegalParameter, err)
}
