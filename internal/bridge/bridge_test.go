package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/capclip/internal/clip"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/staging"
)

func ptr(s string) *string { return &s }

type recorder struct {
	labels   []string
	contents []string
	resp     clipboard.WriteResponse
}

func (r *recorder) Write(label, content string) clipboard.WriteResponse {
	r.labels = append(r.labels, label)
	r.contents = append(r.contents, content)
	return r.resp
}

func (r *recorder) Read() (clipboard.Data, bool) { return clipboard.Data{}, false }

func TestWritePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		call Call
		want string
	}{
		{"string wins", Call{String: ptr("s"), Image: ptr("i"), URL: ptr("u")}, "s"},
		{"image over url", Call{Image: ptr("i"), URL: ptr("u")}, "i"},
		{"url only", Call{URL: ptr("u")}, "u"},
		{"empty string still wins", Call{String: ptr(""), URL: ptr("u")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &recorder{resp: clipboard.WriteResponse{Success: true, Outcome: clipboard.OutcomeWritten}}
			require.NoError(t, New(rec).Write(tt.call))
			require.Equal(t, []string{tt.want}, rec.contents)
			require.Equal(t, []string{""}, rec.labels)
		})
	}
}

func TestWriteNoPayload(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	err := New(rec).Write(Call{Label: ptr("x")})
	require.EqualError(t, err, "No data provided")
	require.ErrorIs(t, err, ErrNoPayload)
	require.Empty(t, rec.contents)

	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, MsgNoPayload, rej.Message)
}

func TestWriteRejectsVerbatim(t *testing.T) {
	t.Parallel()

	rec := &recorder{resp: clipboard.WriteResponse{
		ErrorMessage: clipboard.MsgUnavailable,
		Err:          clipboard.ErrUnavailable,
	}}
	err := New(rec).Write(Call{String: ptr("hello"), Label: ptr("lbl")})
	require.EqualError(t, err, clipboard.MsgUnavailable)
	require.ErrorIs(t, err, clipboard.ErrUnavailable)
	require.Equal(t, []string{"lbl"}, rec.labels)
}

func TestNoNativeMutationWithoutPayload(t *testing.T) {
	t.Parallel()

	mem := clip.NewMemory()
	b := New(clipboard.New(mem, staging.New(t.TempDir())))
	require.Error(t, b.Write(Call{}))
	require.Zero(t, mem.Writes())
}

func TestReadRoundTrip(t *testing.T) {
	t.Parallel()

	mem := clip.NewMemory()
	b := New(clipboard.New(mem, staging.New(t.TempDir())))

	_, err := b.Read()
	require.EqualError(t, err, "No data on clipboard")
	require.ErrorIs(t, err, ErrNoData)

	outcome, err := b.WriteOutcome(Call{String: ptr("hello")})
	require.NoError(t, err)
	require.Equal(t, clipboard.OutcomeWritten, outcome)

	got, err := b.Read()
	require.NoError(t, err)
	require.Equal(t, clipboard.Data{Value: "hello", Type: "text/plain"}, got)

	outcome, err = b.WriteOutcome(Call{Image: ptr("data:image/png;base64,###")})
	require.NoError(t, err)
	require.Equal(t, clipboard.OutcomeTextFallback, outcome)

	mem.Clear()
	_, err = b.Read()
	require.ErrorIs(t, err, ErrNoData)
}

func TestCallFromStruct(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{
		"string": "hello",
		"image":  nil,
		"url":    42.0,
		"label":  "greeting",
		"extra":  "ignored",
	})
	require.NoError(t, err)

	call := CallFromStruct(s)
	require.Equal(t, "hello", *call.String)
	require.Nil(t, call.Image)
	require.Nil(t, call.URL)
	require.Equal(t, "greeting", *call.Label)

	empty := CallFromStruct(nil)
	_, ok := empty.Content()
	require.False(t, ok)
}

func TestToStruct(t *testing.T) {
	t.Parallel()

	s := ToStruct(clipboard.Data{Value: "v", Type: "image/*"})
	require.Equal(t, map[string]any{"value": "v", "type": "image/*"}, s.AsMap())
}

func TestRejectionUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	err := reject("msg", cause)
	require.EqualError(t, err, "msg")
	require.ErrorIs(t, err, cause)
}
