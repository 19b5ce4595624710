// Package service implements the anonymous session registry and behavior monitor.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"juribank/backend/internal/ratelimit"
	"juribank/backend/internal/security"
	"juribank/backend/internal/session/domain"
	"juribank/backend/internal/session/repository"
	"juribank/backend/internal/telemetry"
	telemetrydomain "juribank/backend/internal/telemetry/domain"
)

// Errors returned by Registry operations. They are expected, client-facing outcomes;
// anything else is an internal failure.
var (
	ErrAccessDenied      = errors.New("access denied")
	ErrRateLimited       = errors.New("too many requests")
	ErrTooManySessions   = errors.New("too many sessions")
	ErrInvalidToken      = errors.New("invalid session token")
	ErrNotFound          = errors.New("session not found")
	ErrExpired           = errors.New("session expired")
	ErrSecurityViolation = errors.New("session terminated")
)

const eventSource = "anonsession.registry"

// maxIDAttempts bounds retries when a freshly generated id collides with a stored one.
const maxIDAttempts = 5

// TokenCodec signs and verifies session bearer tokens. Verify returns the session id together
// with security.ErrTokenExpired for authentic tokens past their expiry.
type TokenCodec interface {
	Sign(sessionID string, issuedAt, expiresAt time.Time) (string, error)
	Verify(token string) (string, error)
}

// IdentityHasher derives the stored one-way identifiers of a client.
type IdentityHasher interface {
	HashIP(ip string) string
	HashUserAgent(userAgent string) string
}

// Config holds the registry limits.
type Config struct {
	// SessionTTL is the absolute session lifetime from creation.
	SessionTTL time.Duration
	// MaxSessionsPerIP caps live sessions per IP hash.
	MaxSessionsPerIP int
	// RateLimitWindow and RateLimitMax bound creations and validations per IP hash.
	RateLimitWindow time.Duration
	RateLimitMax    int
	// SweepInterval is the cadence of the expired-session and IP-index sweeps.
	SweepInterval time.Duration
	Thresholds    Thresholds
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:       7 * 24 * time.Hour,
		MaxSessionsPerIP: 10,
		RateLimitWindow:  15 * time.Minute,
		RateLimitMax:     100,
		SweepInterval:    time.Hour,
		Thresholds:       DefaultThresholds(),
	}
}

// Deps are the registry's collaborators. Repo, Tokens and Hasher are required.
type Deps struct {
	Repo   repository.Repository
	Tokens TokenCodec
	Hasher IdentityHasher
	// Events receives moderation events; nil disables them.
	Events telemetry.EventEmitter
	// Meter records registry counters; nil uses a no-op meter.
	Meter metric.Meter
	// Now is the clock; nil uses time.Now.
	Now func() time.Time
	// NewID generates session ids; nil uses random UUIDs.
	NewID func() string
}

// Registry owns anonymous sessions: issuing, validating, mutating and retiring them, per-IP
// throttling, and the ban set. A single mutex serializes every operation that reads and
// writes a session so concurrent activity is never lost.
type Registry struct {
	mu      sync.Mutex
	repo    repository.Repository
	tokens  TokenCodec
	hasher  IdentityHasher
	events  telemetry.EventEmitter
	metrics *registryMetrics
	nowF    func() time.Time
	newID   func() string
	cfg     Config
	limiter *ratelimit.Limiter
	banned  map[string]struct{}

	sweepMu sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewRegistry returns a Registry. Zero-valued limits in cfg fall back to DefaultConfig.
func NewRegistry(deps Deps, cfg Config) (*Registry, error) {
	if deps.Repo == nil || deps.Tokens == nil || deps.Hasher == nil {
		return nil, errors.New("session: repository, token codec and hasher are required")
	}
	cfg = withDefaults(cfg)
	m, err := newRegistryMetrics(deps.Meter)
	if err != nil {
		return nil, fmt.Errorf("session: metrics: %w", err)
	}
	r := &Registry{
		repo:    deps.Repo,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		events:  deps.Events,
		metrics: m,
		nowF:    deps.Now,
		newID:   deps.NewID,
		cfg:     cfg,
		limiter: ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax),
		banned:  make(map[string]struct{}),
	}
	if r.nowF == nil {
		r.nowF = time.Now
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	return r, nil
}

func withDefaults(cfg Config) Config {
	d := DefaultConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = d.SessionTTL
	}
	if cfg.MaxSessionsPerIP <= 0 {
		cfg.MaxSessionsPerIP = d.MaxSessionsPerIP
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = d.RateLimitWindow
	}
	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = d.RateLimitMax
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = d.SweepInterval
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = d.Thresholds
	}
	return cfg
}

func (r *Registry) now() time.Time {
	return r.nowF().UTC()
}

// CreateSession starts a new anonymous session for the client described by rc.
// Checks run in order: ban set, rate limit, per-IP session cap. Every call creates a
// distinct session.
func (r *Registry) CreateSession(ctx context.Context, rc domain.RequestContext) (*domain.CreateResult, error) {
	now := r.now()
	ipHash := r.hasher.HashIP(rc.IP)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, banned := r.banned[ipHash]; banned {
		r.reject(ctx, ipHash, "banned")
		return nil, ErrAccessDenied
	}
	if !r.limiter.Allow(ipHash, now) {
		r.reject(ctx, ipHash, "rate_limited")
		return nil, ErrRateLimited
	}
	live, err := r.repo.CountByIPHash(ctx, ipHash, now)
	if err != nil {
		return nil, fmt.Errorf("session: count by ip: %w", err)
	}
	if live >= r.cfg.MaxSessionsPerIP {
		r.reject(ctx, ipHash, "too_many_sessions")
		return nil, ErrTooManySessions
	}

	id, err := r.allocateID(ctx)
	if err != nil {
		return nil, err
	}
	// whole seconds so the record matches the token's exp claim in every store
	start := now.Truncate(time.Second)
	s := &domain.Session{
		ID:            id,
		IPHash:        ipHash,
		UserAgentHash: r.hasher.HashUserAgent(rc.UserAgent),
		Fingerprint:   fingerprint(rc),
		CreatedAt:     start,
		LastActive:    start,
		ExpiresAt:     start.Add(r.cfg.SessionTTL),
		Preferences:   domain.DefaultPreferences(),
	}
	token, err := r.tokens.Sign(id, start, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("session: sign token: %w", err)
	}
	if err := r.repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	r.metrics.created.Add(ctx, 1)
	r.emit(ctx, telemetrydomain.EventSessionCreated, s.ID, ipHash, nil)
	return &domain.CreateResult{
		SessionID:   id,
		Token:       token,
		ExpiresAt:   s.ExpiresAt,
		Preferences: s.Preferences,
	}, nil
}

func (r *Registry) allocateID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := r.newID()
		existing, err := r.repo.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("session: id lookup: %w", err)
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", errors.New("session: could not allocate a unique id")
}

// ValidateSession resolves token to a live session, checks the request fingerprint and the
// per-IP rate limit, and marks the session active. A fingerprint drift adds a penalty; if that
// pushes the score over the ban threshold the session is terminated with ErrSecurityViolation.
// The IP hash is not banned on this path.
func (r *Registry) ValidateSession(ctx context.Context, token string, rc domain.RequestContext) (*domain.Info, error) {
	// an expired token still names its session; the stored expiry decides
	sid, err := r.tokens.Verify(token)
	if err != nil && !errors.Is(err, security.ErrTokenExpired) {
		return nil, ErrInvalidToken
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.Expired(now) {
		return nil, r.expire(ctx, s)
	}

	th := r.cfg.Thresholds
	if !security.FingerprintEqual(fingerprint(rc), s.Fingerprint) {
		s.Penalize(th.FingerprintMismatchPenalty, domain.FlagFingerprintMismatch)
		r.metrics.flagged.Add(ctx, 1, flagAttr(domain.FlagFingerprintMismatch))
		r.emit(ctx, telemetrydomain.EventFingerprintMismatch, s.ID, s.IPHash, map[string]any{
			"points": th.FingerprintMismatchPenalty,
			"score":  s.SuspicionScore,
		})
		if s.SuspicionScore > th.BanThreshold {
			if err := r.remove(ctx, s.ID); err != nil {
				return nil, err
			}
			r.metrics.terminated.Add(ctx, 1, reasonAttr("security_violation"))
			r.emit(ctx, telemetrydomain.EventSecurityViolation, s.ID, s.IPHash, map[string]any{"score": s.SuspicionScore})
			return nil, ErrSecurityViolation
		}
	}

	if !r.limiter.Allow(s.IPHash, now) {
		// keep any penalty applied above
		if err := r.save(ctx, s); err != nil {
			return nil, err
		}
		r.reject(ctx, s.IPHash, "rate_limited")
		return nil, ErrRateLimited
	}

	s.Touch(now)
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	info := s.Info()
	return &info, nil
}

// UpdateSession applies the allow-listed fields of upd: preferences are merged field by field,
// and LastActive is accepted only between CreatedAt and now. Expired sessions are removed and
// reported as ErrExpired.
func (r *Registry) UpdateSession(ctx context.Context, id string, upd domain.Update) (*domain.Info, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(now) {
		return nil, r.expire(ctx, s)
	}
	if upd.Preferences != nil {
		s.Preferences = s.Preferences.Merge(*upd.Preferences)
	}
	if upd.LastActive != nil {
		t := upd.LastActive.UTC()
		if !t.Before(s.CreatedAt) && !t.After(now) {
			s.LastActive = t
		}
	}
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	info := s.Info()
	return &info, nil
}

// TrackActivity records one community action against the session and runs the behavior
// analyzer. It is fire-and-forget: unknown or expired sessions and invalid types are ignored,
// and storage failures are only logged.
func (r *Registry) TrackActivity(ctx context.Context, id string, activity domain.ActivityType) {
	if !activity.Valid() {
		log.Printf("session: track activity: unknown type %q", activity)
		return
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.repo.GetByID(ctx, id)
	if err != nil {
		log.Printf("session: track activity: get %s: %v", id, err)
		return
	}
	if s == nil {
		return
	}
	if s.Expired(now) {
		_ = r.expire(ctx, s)
		return
	}

	s.Activity.Increment(activity)
	s.Touch(now)
	findings, banned := analyze(s, activity, r.cfg.Thresholds, now)
	for _, f := range findings {
		r.metrics.flagged.Add(ctx, 1, flagAttr(f.flag))
		r.emit(ctx, telemetrydomain.EventBehaviorFlagged, s.ID, s.IPHash, map[string]any{
			"flag":     f.flag,
			"points":   f.points,
			"score":    s.SuspicionScore,
			"activity": string(activity),
		})
	}
	if banned {
		r.ban(ctx, s)
		return
	}
	if err := r.repo.Save(ctx, s); err != nil {
		log.Printf("session: track activity: save %s: %v", id, err)
	}
}

// ban adds the session's IP hash to the ban set and deletes the session. Caller holds r.mu.
func (r *Registry) ban(ctx context.Context, s *domain.Session) {
	r.banned[s.IPHash] = struct{}{}
	if _, err := r.repo.Delete(ctx, s.ID); err != nil {
		log.Printf("session: ban: delete %s: %v", s.ID, err)
	}
	r.metrics.terminated.Add(ctx, 1, reasonAttr("banned"))
	r.emit(ctx, telemetrydomain.EventIPBanned, s.ID, s.IPHash, map[string]any{
		"score": s.SuspicionScore,
		"flags": s.Flags,
	})
}

// InvalidateSession removes the session. A second call for the same id returns ErrNotFound,
// which callers should treat as already invalidated.
func (r *Registry) InvalidateSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if err := r.remove(ctx, id); err != nil {
		return err
	}
	r.metrics.terminated.Add(ctx, 1, reasonAttr("invalidated"))
	r.emit(ctx, telemetrydomain.EventSessionInvalidated, id, s.IPHash, nil)
	return nil
}

// GetSessionInfo returns the session snapshot without marking it active. Expired sessions are
// removed and reported as ErrExpired.
func (r *Registry) GetSessionInfo(ctx context.Context, id string) (*domain.Info, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(now) {
		return nil, r.expire(ctx, s)
	}
	info := s.Info()
	return &info, nil
}

// IsBanned reports whether the client address is in the ban set.
func (r *Registry) IsBanned(ip string) bool {
	ipHash := r.hasher.HashIP(ip)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.banned[ipHash]
	return ok
}

// load returns the stored session or ErrNotFound. Caller holds r.mu.
func (r *Registry) load(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	s, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	if s == nil {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *Registry) save(ctx context.Context, s *domain.Session) error {
	if err := r.repo.Save(ctx, s); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (r *Registry) remove(ctx context.Context, id string) error {
	if _, err := r.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// expire deletes an expired session and returns ErrExpired, or the storage error.
func (r *Registry) expire(ctx context.Context, s *domain.Session) error {
	if err := r.remove(ctx, s.ID); err != nil {
		return err
	}
	r.metrics.terminated.Add(ctx, 1, reasonAttr("expired"))
	r.emit(ctx, telemetrydomain.EventSessionExpired, s.ID, s.IPHash, nil)
	return ErrExpired
}

func (r *Registry) reject(ctx context.Context, ipHash, reason string) {
	r.metrics.rejected.Add(ctx, 1, reasonAttr(reason))
	r.emit(ctx, telemetrydomain.EventSessionRejected, "", ipHash, map[string]any{"reason": reason})
}

func (r *Registry) emit(ctx context.Context, eventType, sessionID, ipHash string, metadata map[string]any) {
	if r.events == nil {
		return
	}
	telemetry.EmitAsync(r.events, ctx, telemetry.NewEvent(eventType, eventSource, sessionID, ipHash, metadata))
}

func fingerprint(rc domain.RequestContext) string {
	return security.Fingerprint(rc.UserAgent, rc.AcceptLanguage, rc.AcceptEncoding, rc.Accept)
}
