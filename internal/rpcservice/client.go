package rpcservice

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"go.klb.dev/capclip/internal/bridge"
	"go.klb.dev/capclip/internal/clipboard"
)

// Client calls capclip.v1.Clipboard over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client using cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Write sends call and returns how the write ended. Rejections come back as
// status errors whose message is the rejection text.
func (c *Client) Write(ctx context.Context, call bridge.Call, opts ...grpc.CallOption) (clipboard.Outcome, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	for name, v := range map[string]*string{
		"string": call.String,
		"image":  call.Image,
		"url":    call.URL,
		"label":  call.Label,
	} {
		if v != nil {
			req.Fields[name] = structpb.NewStringValue(*v)
		}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, WriteMethod, req, out, opts...); err != nil {
		return clipboard.OutcomeFailed, err
	}
	return clipboard.ParseOutcome(out.GetFields()["outcome"].GetStringValue()), nil
}

// Read returns the clipboard content.
func (c *Client) Read(ctx context.Context, opts ...grpc.CallOption) (clipboard.Data, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReadMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return clipboard.Data{}, err
	}
	f := out.GetFields()
	return clipboard.Data{
		Value: f["value"].GetStringValue(),
		Type:  f["type"].GetStringValue(),
	}, nil
}

// Status returns the server's status fields.
func (c *Client) Status(ctx context.Context, opts ...grpc.CallOption) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, StatusMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
