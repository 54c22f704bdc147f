package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clip"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/message"
	"go.klb.dev/capclip/internal/staging"
	"go.klb.dev/capclip/internal/wire"
)

func run(t *testing.T, input string) []message.Response {
	t.Helper()
	mem := clip.NewMemory()
	b := bridge.New(clipboard.New(mem, staging.New(t.TempDir())))
	status := func() map[string]any { return map[string]any{"backend": mem.Name()} }

	var out bytes.Buffer
	err := Serve(context.Background(), wire.New(strings.NewReader(input), &out), b, status)
	require.NoError(t, err)

	var resps []message.Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var r message.Response
		require.NoError(t, dec.Decode(&r))
		resps = append(resps, r)
	}
	return resps
}

func TestServeSession(t *testing.T) {
	t.Parallel()

	resps := run(t, strings.Join([]string{
		`{"id":"1","method":"read"}`,
		`{"id":"2","method":"write","options":{"label":"only"}}`,
		`{"id":"3","method":"write","options":{"string":"hello","label":"greeting"}}`,
		`{"id":"4","method":"read"}`,
		`{"id":"5","method":"write","options":{"image":"data:image/png;base64,%%%"}}`,
		`{"id":"6","method":"read"}`,
		`{"id":"7","method":"status"}`,
		`{"id":"8","method":"paste"}`,
	}, "\n"))
	require.Len(t, resps, 8)

	require.Equal(t, "No data on clipboard", resps[0].Error)
	require.Equal(t, "No data provided", resps[1].Error)
	require.Empty(t, resps[2].Error)
	require.Equal(t, "written", resps[2].Data["outcome"])
	require.Equal(t, map[string]any{"value": "hello", "type": "text/plain"}, resps[3].Data)
	require.Equal(t, "text-fallback", resps[4].Data["outcome"])
	require.Equal(t, "image/png", resps[5].Data["type"])
	require.Equal(t, "in-memory", resps[6].Data["backend"])
	require.Equal(t, message.MsgNotImplemented, resps[7].Error)

	for i, r := range resps {
		require.Equal(t, string(rune('1'+i)), r.ID)
	}
}

func TestServeMalformedLine(t *testing.T) {
	t.Parallel()

	resps := run(t, "{oops\n"+`{"id":"9","method":"write","options":{"url":"file:///tmp/x.png"}}`+"\n")
	require.Len(t, resps, 2)
	require.Empty(t, resps[0].ID)
	require.NotEmpty(t, resps[0].Error)
	require.Equal(t, "9", resps[1].ID)
	require.Empty(t, resps[1].Error)
}

func TestServeCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	b := bridge.New(clipboard.New(clip.NewMemory(), nil))
	err := Serve(ctx, wire.New(strings.NewReader(`{"id":"1","method":"read"}`+"\n"), &out), b, nil)
	require.NoError(t, err)
	require.Zero(t, out.Len())
}

func TestHandleStatusWithoutFunc(t *testing.T) {
	t.Parallel()

	b := bridge.New(clipboard.New(nil, nil))
	resp := Handle(b, nil, &message.Request{ID: "s", Method: message.MethodStatus})
	require.Empty(t, resp.Error)
	require.Equal(t, "s", resp.ID)
}

func TestServeStopsWhileWaitingForInput(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	b := bridge.New(clipboard.New(clip.NewMemory(), nil))
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, wire.New(pr, io.Discard), b, nil) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve kept waiting on input after cancel")
	}
}
