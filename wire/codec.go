package wire

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeEnvelope peeks the action and any attached error without
// committing to a full frame shape, so the connection can dispatch to
// the right concrete decoder.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, ErrDecode{Cause: err}
	}
	return env, nil
}

// DecodeHandshake decodes an `hs` frame.
func DecodeHandshake(raw []byte) (Handshake, error) {
	var msg Handshake
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Handshake{}, ErrDecode{Action: ActionHandshake, Cause: err}
	}
	return msg, nil
}

// DecodeSubscribe decodes an `s` frame.
func DecodeSubscribe(raw []byte) (Subscribe, error) {
	var msg Subscribe
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Subscribe{}, ErrDecode{Action: ActionSubscribe, Cause: err}
	}
	return msg, nil
}

// DecodeOperation decodes an `op` frame.
func DecodeOperation(raw []byte) (Operation, error) {
	var msg Operation
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Operation{}, ErrDecode{Action: ActionOperation, Cause: err}
	}
	return msg, nil
}

// DecodeQuerySubscribe decodes a `qs` frame.
func DecodeQuerySubscribe(raw []byte) (QuerySubscribe, error) {
	var msg QuerySubscribe
	if err := json.Unmarshal(raw, &msg); err != nil {
		return QuerySubscribe{}, ErrDecode{Action: ActionQuerySub, Cause: err}
	}
	return msg, nil
}

// DecodeQueryDiff decodes a `q` frame.
func DecodeQueryDiff(raw []byte) (QueryDiff, error) {
	var msg QueryDiff
	if err := json.Unmarshal(raw, &msg); err != nil {
		return QueryDiff{}, ErrDecode{Action: ActionQueryDiff, Cause: err}
	}
	return msg, nil
}

// Encode serializes any frame value. An encode failure is treated as
// an internal bug per SPEC_FULL.md §7, so the error is wrapped with a
// stack via pkg/errors rather than the plain ErrDecode used for
// inbound frames.
func Encode(msg interface{}) ([]byte, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	return raw, nil
}
