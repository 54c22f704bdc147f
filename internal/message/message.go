// Package message defines the capclip stdio bridge protocol.
//
// A host runtime spawns "capclip bridge" and exchanges newline-delimited
// JSON with it. Each request names a method and carries the call's named
// options; each response echoes the request ID and either resolves with
// data or rejects with an error message:
//
//	→ {"id":"1","method":"write","options":{"string":"hi","label":"greeting"}}
//	← {"id":"1","data":{"outcome":"written"}}
//	→ {"id":"2","method":"read"}
//	← {"id":"2","data":{"value":"hi","type":"text/plain"}}
package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Method identifies the call being made.
type Method string

const (
	MethodWrite  Method = "write"
	MethodRead   Method = "read"
	MethodStatus Method = "status"
)

// MsgNotImplemented rejects requests for unknown methods.
const MsgNotImplemented = "Method not implemented"

// ErrMalformed is wrapped by Decode errors.
var ErrMalformed = errors.New("malformed message")

// Request is one call from the host.
type Request struct {
	ID      string         `json:"id"`
	Method  Method         `json:"method"`
	Options map[string]any `json:"options,omitempty"`
}

// Struct returns the options as a protobuf Struct, the form the bridge
// reads named fields from.
func (r *Request) Struct() (*structpb.Struct, error) {
	s, err := structpb.NewStruct(r.Options)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	return s, nil
}

// Response answers one Request. Exactly one of Data and Error is set.
type Response struct {
	ID    string         `json:"id"`
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

// Resolve returns a successful response carrying data.
func Resolve(id string, data map[string]any) *Response {
	return &Response{ID: id, Data: data}
}

// Reject returns a failed response carrying msg.
func Reject(id, msg string) *Response {
	return &Response{ID: id, Error: msg}
}

// Encode serialises the response to JSON without a trailing newline.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Decode deserialises a request from raw JSON bytes.
func Decode(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if r.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrMalformed)
	}
	return &r, nil
}
