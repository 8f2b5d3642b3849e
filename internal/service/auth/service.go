package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

var ErrInvalidCredentials = apperrors.Unauthorized(errors.New("invalid credentials"))

// Service is the identity provider: it creates users and sessions and
// resolves a request token back to its session.
type Service struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	cache      *cache.Cache
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(users repository.UserRepository, sessions repository.SessionRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, sessionTTL, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		jwtSvc:     jwtSvc,
		hasher:     hasher,
		cache:      cache.New(cacheTTL, 2*cacheTTL),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, req *model.SignUpRequest, meta model.SessionMeta) (*model.SessionResponse, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.BadRequest("password is too short", err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return s.startSession(ctx, user, meta)
}

func (s *Service) SignIn(ctx context.Context, req *model.SignInRequest, meta model.SessionMeta) (*model.SessionResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user, meta)
}

func (s *Service) startSession(ctx context.Context, user *model.User, meta model.SessionMeta) (*model.SessionResponse, error) {
	sess := &model.Session{
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.sessionTTL),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	token, err := s.jwtSvc.GenerateSessionToken(sess.ID, user.ID, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.SessionResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// GetSession resolves token to a live session with its user. A missing,
// malformed, expired or revoked token yields (nil, nil).
func (s *Service) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, nil
	}

	key := claims.SessionID.String()
	if v, ok := s.cache.Get(key); ok {
		sess := v.(*model.Session)
		if !sess.Expired(s.now()) {
			return sess, nil
		}
		s.cache.Delete(key)
		return nil, nil
	}

	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if sess.UserID != claims.UserID || sess.Expired(s.now()) {
		return nil, nil
	}

	user, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sess.User = user

	s.cache.SetDefault(key, sess)
	return sess, nil
}

// SignOut deletes the session named by token. Signing out an unknown
// session is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return apperrors.Unauthorized(err)
	}

	s.cache.Delete(claims.SessionID.String())
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

// PurgeExpired removes sessions that expired before now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}
