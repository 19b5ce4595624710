package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	anonsessionv1 "juribank/backend/api/anonsession/v1"
	"juribank/backend/internal/server/interceptors"
	"juribank/backend/internal/session/domain"
	"juribank/backend/internal/session/service"
)

// Registry is the session registry behind the gRPC service.
type Registry interface {
	CreateSession(ctx context.Context, rc domain.RequestContext) (*domain.CreateResult, error)
	ValidateSession(ctx context.Context, token string, rc domain.RequestContext) (*domain.Info, error)
	UpdateSession(ctx context.Context, id string, upd domain.Update) (*domain.Info, error)
	TrackActivity(ctx context.Context, id string, activity domain.ActivityType)
	InvalidateSession(ctx context.Context, id string) error
	GetSessionInfo(ctx context.Context, id string) (*domain.Info, error)
}

// Server implements AnonymousSessionService. Every method except CreateSession and
// ValidateSession acts on the session named by the caller's bearer token.
type Server struct {
	anonsessionv1.UnimplementedAnonymousSessionServiceServer
	registry Registry
}

// NewServer returns a new session gRPC server. If registry is nil, all RPCs return Unimplemented.
func NewServer(registry Registry) *Server {
	return &Server{registry: registry}
}

// CreateSession starts a session for the calling client.
func (s *Server) CreateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method CreateSession not implemented")
	}
	res, err := s.registry.CreateSession(ctx, interceptors.RequestContextFrom(ctx))
	if err != nil {
		return nil, toStatus("create session", err)
	}
	return encode(&anonsessionv1.CreateSessionResponse{
		SessionID:   res.SessionID,
		Token:       res.Token,
		ExpiresAt:   res.ExpiresAt,
		Preferences: preferencesToProto(res.Preferences),
	})
}

// ValidateSession checks the token from the request body, or the bearer token when the body has none.
func (s *Server) ValidateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method ValidateSession not implemented")
	}
	var req anonsessionv1.ValidateSessionRequest
	if err := anonsessionv1.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed request")
	}
	token := req.Token
	if token == "" {
		token = interceptors.ExtractBearer(ctx)
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "token required")
	}
	info, err := s.registry.ValidateSession(ctx, token, interceptors.RequestContextFrom(ctx))
	if err != nil {
		return nil, toStatus("validate session", err)
	}
	return encode(infoToProto(info))
}

// UpdateSession merges preference changes and an optional last-active time into the caller's session.
func (s *Server) UpdateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method UpdateSession not implemented")
	}
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	var req anonsessionv1.UpdateSessionRequest
	if err := anonsessionv1.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed request")
	}
	info, err := s.registry.UpdateSession(ctx, sessionID, domain.Update{
		Preferences: patchFromProto(req.Preferences),
		LastActive:  req.LastActive,
	})
	if err != nil {
		return nil, toStatus("update session", err)
	}
	return encode(infoToProto(info))
}

// TrackActivity records one community action for the caller's session.
func (s *Server) TrackActivity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method TrackActivity not implemented")
	}
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	var req anonsessionv1.TrackActivityRequest
	if err := anonsessionv1.Decode(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed request")
	}
	activity := domain.ActivityType(req.ActivityType)
	if !activity.Valid() {
		return nil, status.Error(codes.InvalidArgument, "unknown activity_type")
	}
	s.registry.TrackActivity(ctx, sessionID, activity)
	return encode(&anonsessionv1.TrackActivityResponse{})
}

// InvalidateSession ends the caller's session. Invalidating an already removed session succeeds
// with invalidated=false.
func (s *Server) InvalidateSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method InvalidateSession not implemented")
	}
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	err = s.registry.InvalidateSession(ctx, sessionID)
	switch {
	case err == nil:
		return encode(&anonsessionv1.InvalidateSessionResponse{Invalidated: true})
	case errors.Is(err, service.ErrNotFound):
		return encode(&anonsessionv1.InvalidateSessionResponse{Invalidated: false})
	default:
		return nil, toStatus("invalidate session", err)
	}
}

// GetSessionInfo returns the caller's session without marking it active.
func (s *Server) GetSessionInfo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.registry == nil {
		return nil, status.Error(codes.Unimplemented, "method GetSessionInfo not implemented")
	}
	sessionID, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	info, err := s.registry.GetSessionInfo(ctx, sessionID)
	if err != nil {
		return nil, toStatus("get session info", err)
	}
	return encode(infoToProto(info))
}

func requireSession(ctx context.Context) (string, error) {
	sessionID, ok := interceptors.GetSessionID(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	return sessionID, nil
}

// toStatus maps registry errors to gRPC statuses. Messages are generic so callers cannot tell
// a ban from other denials.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, service.ErrAccessDenied), errors.Is(err, service.ErrSecurityViolation):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, service.ErrRateLimited), errors.Is(err, service.ErrTooManySessions):
		return status.Error(codes.ResourceExhausted, "too many requests")
	case errors.Is(err, service.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "invalid session token")
	case errors.Is(err, service.ErrExpired):
		return status.Error(codes.Unauthenticated, "session expired")
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "session not found")
	default:
		log.Printf("session: %s: %v", op, err)
		return status.Error(codes.Internal, "internal error")
	}
}

func encode(v any) (*structpb.Struct, error) {
	out, err := anonsessionv1.Encode(v)
	if err != nil {
		log.Printf("session: encode response: %v", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func infoToProto(info *domain.Info) *anonsessionv1.SessionInfo {
	a := info.Activity
	return &anonsessionv1.SessionInfo{
		SessionID:  info.ID,
		CreatedAt:  info.CreatedAt,
		LastActive: info.LastActive,
		ExpiresAt:  info.ExpiresAt,
		Activity: anonsessionv1.ActivityCounts{
			Posts:              a.Posts,
			Replies:            a.Replies,
			Likes:              a.Likes,
			Reports:            a.Reports,
			ComplianceWarnings: a.ComplianceWarnings,
			EducationalPrompts: a.EducationalPrompts,
		},
		Preferences: preferencesToProto(info.Preferences),
		Verified:    info.Verified,
	}
}

func preferencesToProto(p domain.Preferences) anonsessionv1.Preferences {
	return anonsessionv1.Preferences{
		Notifications:   p.Notifications,
		RealTimeUpdates: p.RealTimeUpdates,
		Accessibility: anonsessionv1.Accessibility{
			HighContrast:  p.Accessibility.HighContrast,
			FontSize:      p.Accessibility.FontSize,
			ReducedMotion: p.Accessibility.ReducedMotion,
		},
	}
}

func patchFromProto(p *anonsessionv1.PreferencesPatch) *domain.PreferencesPatch {
	if p == nil {
		return nil
	}
	out := &domain.PreferencesPatch{
		Notifications:   p.Notifications,
		RealTimeUpdates: p.RealTimeUpdates,
	}
	if a := p.Accessibility; a != nil {
		out.Accessibility = &domain.AccessibilityPatch{
			HighContrast:  a.HighContrast,
			FontSize:      a.FontSize,
			ReducedMotion: a.ReducedMotion,
		}
	}
	return out
}
