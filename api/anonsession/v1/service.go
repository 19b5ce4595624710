// Package anonsessionv1 declares the juribank.anonsession.v1 gRPC service. Requests and
// responses are google.protobuf.Struct values holding the messages in messages.go.
package anonsessionv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "juribank.anonsession.v1.AnonymousSessionService"

const (
	AnonymousSessionService_CreateSession_FullMethodName     = "/" + ServiceName + "/CreateSession"
	AnonymousSessionService_ValidateSession_FullMethodName   = "/" + ServiceName + "/ValidateSession"
	AnonymousSessionService_UpdateSession_FullMethodName     = "/" + ServiceName + "/UpdateSession"
	AnonymousSessionService_TrackActivity_FullMethodName     = "/" + ServiceName + "/TrackActivity"
	AnonymousSessionService_InvalidateSession_FullMethodName = "/" + ServiceName + "/InvalidateSession"
	AnonymousSessionService_GetSessionInfo_FullMethodName    = "/" + ServiceName + "/GetSessionInfo"
)

// AnonymousSessionServiceServer is the server API for AnonymousSessionService.
type AnonymousSessionServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TrackActivity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InvalidateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSessionInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAnonymousSessionServiceServer can be embedded to have forward compatible implementations.
type UnimplementedAnonymousSessionServiceServer struct{}

func (UnimplementedAnonymousSessionServiceServer) CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
}
func (UnimplementedAnonymousSessionServiceServer) ValidateSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateSession not implemented")
}
func (UnimplementedAnonymousSessionServiceServer) UpdateSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateSession not implemented")
}
func (UnimplementedAnonymousSessionServiceServer) TrackActivity(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method TrackActivity not implemented")
}
func (UnimplementedAnonymousSessionServiceServer) InvalidateSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method InvalidateSession not implemented")
}
func (UnimplementedAnonymousSessionServiceServer) GetSessionInfo(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSessionInfo not implemented")
}

// RegisterAnonymousSessionServiceServer registers srv on s.
func RegisterAnonymousSessionServiceServer(s grpc.ServiceRegistrar, srv AnonymousSessionServiceServer) {
	s.RegisterService(&AnonymousSessionService_ServiceDesc, srv)
}

type unaryMethod func(AnonymousSessionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AnonymousSessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AnonymousSessionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AnonymousSessionService_ServiceDesc is the grpc.ServiceDesc for AnonymousSessionService.
var AnonymousSessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnonymousSessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateSession",
			Handler:    unaryHandler(AnonymousSessionService_CreateSession_FullMethodName, AnonymousSessionServiceServer.CreateSession),
		},
		{
			MethodName: "ValidateSession",
			Handler:    unaryHandler(AnonymousSessionService_ValidateSession_FullMethodName, AnonymousSessionServiceServer.ValidateSession),
		},
		{
			MethodName: "UpdateSession",
			Handler:    unaryHandler(AnonymousSessionService_UpdateSession_FullMethodName, AnonymousSessionServiceServer.UpdateSession),
		},
		{
			MethodName: "TrackActivity",
			Handler:    unaryHandler(AnonymousSessionService_TrackActivity_FullMethodName, AnonymousSessionServiceServer.TrackActivity),
		},
		{
			MethodName: "InvalidateSession",
			Handler:    unaryHandler(AnonymousSessionService_InvalidateSession_FullMethodName, AnonymousSessionServiceServer.InvalidateSession),
		},
		{
			MethodName: "GetSessionInfo",
			Handler:    unaryHandler(AnonymousSessionService_GetSessionInfo_FullMethodName, AnonymousSessionServiceServer.GetSessionInfo),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "anonsession/v1/anonsession.proto",
}
