// Package bridge adapts named-field calls from a host runtime to the
// clipboard accessor and maps each result to a resolve or a reject.
package bridge

import (
	"errors"

	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/capclip/internal/clipboard"
)

// Rejection messages produced by the bridge itself.
const (
	MsgNoPayload = "No data provided"
	MsgNoData    = "No data on clipboard"
)

var (
	ErrNoPayload = errors.New("no payload field set")
	ErrNoData    = errors.New("nothing on clipboard")
)

// Rejection is a rejected call. Error returns the user-facing message
// verbatim; Unwrap exposes the cause for classification.
type Rejection struct {
	Message string
	Err     error
}

func (r *Rejection) Error() string { return r.Message }
func (r *Rejection) Unwrap() error { return r.Err }

func reject(msg string, err error) error {
	return &Rejection{Message: msg, Err: err}
}

// Call carries the optional named fields of a write call. A nil field was
// not supplied.
type Call struct {
	String *string
	Image  *string
	URL    *string
	Label  *string
}

// Content returns the first non-nil of String, Image and URL, in that order.
func (c Call) Content() (string, bool) {
	for _, v := range []*string{c.String, c.Image, c.URL} {
		if v != nil {
			return *v, true
		}
	}
	return "", false
}

// CallFromStruct maps the fields of a protobuf Struct to a Call. Fields that
// are missing, null or not strings are treated as absent.
func CallFromStruct(s *structpb.Struct) Call {
	field := func(name string) *string {
		v, ok := s.GetFields()[name]
		if !ok {
			return nil
		}
		sv, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil
		}
		return &sv.StringValue
	}
	return Call{
		String: field("string"),
		Image:  field("image"),
		URL:    field("url"),
		Label:  field("label"),
	}
}

// Accessor is the clipboard the bridge delegates to.
type Accessor interface {
	Write(label, content string) clipboard.WriteResponse
	Read() (clipboard.Data, bool)
}

// Bridge resolves or rejects calls against an Accessor.
type Bridge struct {
	impl Accessor
}

// New returns a Bridge over impl.
func New(impl Accessor) *Bridge {
	return &Bridge{impl: impl}
}

// Write selects the call's payload and writes it. A nil error resolves the
// call; otherwise the error is a *Rejection.
func (b *Bridge) Write(call Call) error {
	_, err := b.WriteOutcome(call)
	return err
}

// WriteOutcome is Write that also reports how the write ended.
func (b *Bridge) WriteOutcome(call Call) (clipboard.Outcome, error) {
	content, ok := call.Content()
	if !ok {
		return clipboard.OutcomeFailed, reject(MsgNoPayload, ErrNoPayload)
	}
	var label string
	if call.Label != nil {
		label = *call.Label
	}

	resp := b.impl.Write(label, content)
	if !resp.Success {
		return resp.Outcome, reject(resp.ErrorMessage, resp.Err)
	}
	return resp.Outcome, nil
}

// Read returns the clipboard content, or a *Rejection when there is none.
func (b *Bridge) Read() (clipboard.Data, error) {
	data, ok := b.impl.Read()
	if !ok {
		return clipboard.Data{}, reject(MsgNoData, ErrNoData)
	}
	return data, nil
}

// ToStruct renders read data as {value, type}.
func ToStruct(d clipboard.Data) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"value": structpb.NewStringValue(d.Value),
		"type":  structpb.NewStringValue(d.Type),
	}}
}
