package rpcservice

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clip"
	"go.klb.dev/capclip/internal/clipboard"
	"go.klb.dev/capclip/internal/staging"
)

func ptr(s string) *string { return &s }

func newService(t *testing.T, token string) (*Service, *clip.Memory) {
	t.Helper()
	mem := clip.NewMemory()
	cb := clipboard.New(mem, staging.New(t.TempDir()))
	return New(bridge.New(cb), cb.Backend(), "test", token), mem
}

func dial(t *testing.T, svc *Service) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	Register(srv, svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestGRPCRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, "")
	c := dial(t, svc)
	ctx := context.Background()

	_, err := c.Read(ctx)
	require.Equal(t, codes.NotFound, status.Code(err))
	require.Equal(t, "No data on clipboard", status.Convert(err).Message())

	outcome, err := c.Write(ctx, bridge.Call{String: ptr("hello"), Label: ptr("greeting")})
	require.NoError(t, err)
	require.Equal(t, clipboard.OutcomeWritten, outcome)
	got, err := c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, clipboard.Data{Value: "hello", Type: "text/plain"}, got)

	_, err = c.Write(ctx, bridge.Call{URL: ptr("content://media/external/images/42")})
	require.NoError(t, err)
	got, err = c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, "image/*", got.Type)

	bad := "data:image/png;base64,@@@not-base64@@@"
	outcome, err = c.Write(ctx, bridge.Call{Image: ptr(bad)})
	require.NoError(t, err)
	require.Equal(t, clipboard.OutcomeTextFallback, outcome)
	got, err = c.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, bad, got.Value)
}

func TestGRPCWriteNoPayload(t *testing.T) {
	t.Parallel()

	svc, mem := newService(t, "")
	c := dial(t, svc)

	_, err := c.Write(context.Background(), bridge.Call{Label: ptr("only a label")})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
	require.Equal(t, "No data provided", status.Convert(err).Message())
	require.Zero(t, mem.Writes())
}

func TestGRPCUnavailable(t *testing.T) {
	t.Parallel()

	svc := New(bridge.New(clipboard.New(nil, nil)), "", "test", "")
	c := dial(t, svc)

	_, err := c.Write(context.Background(), bridge.Call{String: ptr("x")})
	require.Equal(t, codes.Unavailable, status.Code(err))
	require.Equal(t, clipboard.MsgUnavailable, status.Convert(err).Message())

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, false, st["available"])
}

func TestGRPCAuth(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, "s3cret")
	c := dial(t, svc)

	_, err := c.Status(context.Background())
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err = c.Status(bad)
	require.Equal(t, codes.Unauthenticated, status.Code(err))

	good := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer s3cret")
	st, err := c.Status(good)
	require.NoError(t, err)
	require.Equal(t, "in-memory", st["backend"])
	require.Equal(t, "test", st["version"])
	require.Equal(t, true, st["available"])
}

func TestToStatus(t *testing.T) {
	t.Parallel()

	b := bridge.New(clipboard.New(nil, nil))
	err := b.Write(bridge.Call{})
	require.Equal(t, codes.InvalidArgument, status.Code(toStatus(err)))

	err = b.Write(bridge.Call{String: ptr("x")})
	require.Equal(t, codes.Unavailable, status.Code(toStatus(err)))

	_, err = b.Read()
	require.Equal(t, codes.NotFound, status.Code(toStatus(err)))

	mem := clip.NewMemory()
	mem.FailWrites = io.ErrClosedPipe
	err = bridge.New(clipboard.New(mem, nil)).Write(bridge.Call{String: ptr("x")})
	require.Equal(t, codes.Internal, status.Code(toStatus(err)))
	require.Equal(t, clipboard.MsgWriteFailed, status.Convert(toStatus(err)).Message())
}

func TestGateway(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, "")
	mux, err := NewGateway(svc)
	require.NoError(t, err)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + ReadPath)
	require.NoError(t, err)
	body := decode(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "No data on clipboard", body["message"])

	resp, err = http.Post(ts.URL+WritePath, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	body = decode(t, resp)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "No data provided", body["message"])

	resp, err = http.Post(ts.URL+WritePath, "application/json", strings.NewReader(`{"image":"data:image/png;base64,@@@"}`))
	require.NoError(t, err)
	body = decode(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"outcome": "text-fallback"}, body)

	resp, err = http.Post(ts.URL+WritePath, "application/json", strings.NewReader(`{"string":"hi","label":"x"}`))
	require.NoError(t, err)
	body = decode(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"outcome": "written"}, body)

	resp, err = http.Get(ts.URL + ReadPath)
	require.NoError(t, err)
	body = decode(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"value": "hi", "type": "text/plain"}, body)
}

func TestGatewayAuth(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, "s3cret")
	mux, err := NewGateway(svc)
	require.NoError(t, err)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + StatusPath)
	require.NoError(t, err)
	_ = decode(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+StatusPath, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body := decode(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "in-memory", body["backend"])
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
