// Package session runs the stdio bridge: it reads requests from a wire.Conn,
// answers each through the clipboard bridge and writes the response back.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/message"
	"go.klb.dev/capclip/internal/wire"
)

// StatusFunc reports the fields returned by the "status" method.
type StatusFunc func() map[string]any

type readResult struct {
	req *message.Request
	err error
}

// Serve answers requests until the input ends, ctx is cancelled or a write
// to the host fails. Requests are handled one at a time, in order. A clean
// end of input or a cancelled ctx returns nil; a read still blocked on the
// host's input at cancellation is abandoned.
func Serve(ctx context.Context, c *wire.Conn, b *bridge.Bridge, status StatusFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reads := make(chan readResult)
	go func() {
		for {
			req, err := c.ReadMsg()
			select {
			case reads <- readResult{req, err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !recoverable(err) {
				return
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		var r readResult
		select {
		case <-ctx.Done():
			return nil
		case r = <-reads:
		}

		switch {
		case errors.Is(r.err, io.EOF):
			return nil
		case recoverable(r.err):
			slog.Warn("bad request from host", "err", r.err)
			if err := c.WriteMsg(message.Reject("", r.err.Error())); err != nil {
				return err
			}
			continue
		case r.err != nil:
			return r.err
		}

		if err := c.WriteMsg(Handle(b, status, r.req)); err != nil {
			return err
		}
	}
}

// recoverable reports whether the stream is still usable after err.
func recoverable(err error) bool {
	return errors.Is(err, message.ErrMalformed) || errors.Is(err, wire.ErrTooLarge)
}

// Handle answers a single request.
func Handle(b *bridge.Bridge, status StatusFunc, req *message.Request) *message.Response {
	switch req.Method {
	case message.MethodWrite:
		opts, err := req.Struct()
		if err != nil {
			return message.Reject(req.ID, err.Error())
		}
		outcome, err := b.WriteOutcome(bridge.CallFromStruct(opts))
		if err != nil {
			return message.Reject(req.ID, err.Error())
		}
		return message.Resolve(req.ID, map[string]any{"outcome": outcome.String()})

	case message.MethodRead:
		data, err := b.Read()
		if err != nil {
			return message.Reject(req.ID, err.Error())
		}
		return message.Resolve(req.ID, map[string]any{"value": data.Value, "type": data.Type})

	case message.MethodStatus:
		if status == nil {
			return message.Resolve(req.ID, nil)
		}
		return message.Resolve(req.ID, status())
	}

	slog.Debug("unknown method", "method", req.Method, "id", req.ID)
	return message.Reject(req.ID, message.MsgNotImplemented)
}
