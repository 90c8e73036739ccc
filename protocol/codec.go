package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyEnvelope = errors.New("empty envelope")
	ErrEmptyType     = errors.New("envelope type is empty")
	ErrEmptyPayload  = errors.New("envelope payload is empty")
	ErrUnknownType   = errors.New("unknown message type")
)

// Envelope は全メッセージ共通の外枠です。 {"t": 種別, "p": ペイロード}
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, ErrEmptyType
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %q: %w", t, ErrEmptyPayload)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %q payload: %w", t, err)
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

// MustEncode はサーバー内部で組み立てた型に対してだけ使います。
func MustEncode(t string, payload any) []byte {
	b, err := Encode(t, payload)
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyEnvelope
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if e.T == "" {
		return Envelope{}, ErrEmptyType
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("decode %q: %w", env.T, ErrEmptyPayload)
	}
	if err := json.Unmarshal(env.P, &out); err != nil {
		return out, fmt.Errorf("decode %q payload: %w", env.T, err)
	}
	return out, nil
}
