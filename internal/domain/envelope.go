package domain

import "encoding/json"

// Envelope is the response wrapper used by every upstream backend endpoint
// and mirrored by this gateway's own API:
//
//	{ "success": true,  "data": ... }
//	{ "success": false, "error": { "message": "..." } }
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
}

// EnvelopeError is the error half of an Envelope.
type EnvelopeError struct {
	Message string `json:"message"`
}

// OKEnvelope wraps v in a success envelope, or returns the marshal error
// when v is not JSON-serializable.
func OKEnvelope(v any) (Envelope, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Success: true, Data: data}, nil
}

// FailEnvelope builds a failure envelope with the given message.
func FailEnvelope(msg string) Envelope {
	return Envelope{Success: false, Error: &EnvelopeError{Message: msg}}
}
