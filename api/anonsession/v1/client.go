package anonsessionv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AnonymousSessionServiceClient is a typed client for AnonymousSessionService. Fingerprint
// headers and the bearer token travel as outgoing metadata set by the caller.
type AnonymousSessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAnonymousSessionServiceClient(cc grpc.ClientConnInterface) *AnonymousSessionServiceClient {
	return &AnonymousSessionServiceClient{cc: cc}
}

func (c *AnonymousSessionServiceClient) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := Encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return Decode(out, resp)
}

func (c *AnonymousSessionServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	out := new(CreateSessionResponse)
	if err := c.invoke(ctx, AnonymousSessionService_CreateSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AnonymousSessionServiceClient) ValidateSession(ctx context.Context, in *ValidateSessionRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	if err := c.invoke(ctx, AnonymousSessionService_ValidateSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AnonymousSessionServiceClient) UpdateSession(ctx context.Context, in *UpdateSessionRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	if err := c.invoke(ctx, AnonymousSessionService_UpdateSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AnonymousSessionServiceClient) TrackActivity(ctx context.Context, in *TrackActivityRequest, opts ...grpc.CallOption) (*TrackActivityResponse, error) {
	out := new(TrackActivityResponse)
	if err := c.invoke(ctx, AnonymousSessionService_TrackActivity_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AnonymousSessionServiceClient) InvalidateSession(ctx context.Context, in *InvalidateSessionRequest, opts ...grpc.CallOption) (*InvalidateSessionResponse, error) {
	out := new(InvalidateSessionResponse)
	if err := c.invoke(ctx, AnonymousSessionService_InvalidateSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AnonymousSessionServiceClient) GetSessionInfo(ctx context.Context, in *GetSessionInfoRequest, opts ...grpc.CallOption) (*SessionInfo, error) {
	out := new(SessionInfo)
	if err := c.invoke(ctx, AnonymousSessionService_GetSessionInfo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
