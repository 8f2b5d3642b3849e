package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type fixture struct {
	users    *mocks.UserRepository
	sessions *mocks.SessionRepository
	jwt      auth.JWTService
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		users:    new(mocks.UserRepository),
		sessions: new(mocks.SessionRepository),
		jwt:      auth.NewJWTService("test-secret-0123456789", "clinic-api"),
	}
	f.svc = NewService(f.users, f.sessions, f.jwt, security.NewBcryptHasher(4), time.Hour, time.Minute)
	return f
}

func assignSessionID(args mock.Arguments) {
	args.Get(1).(*model.Session).ID = uuid.New()
}

func TestSignUpCreatesSession(t *testing.T) {
	f := newFixture()
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = uuid.New() }).
		Return(nil)
	f.sessions.On("Create", mock.Anything, mock.AnythingOfType("*model.Session")).
		Run(assignSessionID).Return(nil)

	resp, err := f.svc.SignUp(context.Background(), &model.SignUpRequest{
		Name: "Ann", Email: "ann@example.com", Password: "correct-horse",
	}, model.SessionMeta{IPAddress: "127.0.0.1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "correct-horse", resp.User.PasswordHash)
	claims, err := f.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestSignInWrongPassword(t *testing.T) {
	f := newFixture()
	hash, err := security.NewBcryptHasher(4).Hash("correct-horse")
	require.NoError(t, err)
	f.users.On("GetByEmail", mock.Anything, "ann@example.com").
		Return(&model.User{Base: model.Base{ID: uuid.New()}, PasswordHash: hash}, nil)

	_, err = f.svc.SignIn(context.Background(), &model.SignInRequest{Email: "ann@example.com", Password: "wrong-horse"}, model.SessionMeta{})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
	f.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignInUnknownEmail(t *testing.T) {
	f := newFixture()
	f.users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, apperrors.NotFound("user", nil))

	_, err := f.svc.SignIn(context.Background(), &model.SignInRequest{Email: "nobody@example.com", Password: "x"}, model.SessionMeta{})
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}

func TestGetSessionCachesLookup(t *testing.T) {
	f := newFixture()
	userID, sessionID := uuid.New(), uuid.New()
	token, err := f.jwt.GenerateSessionToken(sessionID, userID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	f.sessions.On("Get", mock.Anything, sessionID).
		Return(&model.Session{ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	f.users.On("Get", mock.Anything, userID).
		Return(&model.User{Base: model.Base{ID: userID}, Name: "Ann"}, nil).Once()

	for i := 0; i < 2; i++ {
		sess, err := f.svc.GetSession(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, "Ann", sess.User.Name)
	}
	f.sessions.AssertExpectations(t)
}

func TestGetSessionAbsent(t *testing.T) {
	f := newFixture()

	sess, err := f.svc.GetSession(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = f.svc.GetSession(context.Background(), "garbage")
	assert.NoError(t, err)
	assert.Nil(t, sess)

	sessionID := uuid.New()
	token, err := f.jwt.GenerateSessionToken(sessionID, uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	f.sessions.On("Get", mock.Anything, sessionID).Return(nil, apperrors.NotFound("session", nil))

	sess, err = f.svc.GetSession(context.Background(), token)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSignOutInvalidatesCache(t *testing.T) {
	f := newFixture()
	userID, sessionID := uuid.New(), uuid.New()
	token, err := f.jwt.GenerateSessionToken(sessionID, userID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	f.sessions.On("Get", mock.Anything, sessionID).
		Return(&model.Session{ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()
	f.users.On("Get", mock.Anything, userID).Return(&model.User{Base: model.Base{ID: userID}}, nil)
	f.sessions.On("Delete", mock.Anything, sessionID).Return(nil)

	sess, err := f.svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, sess)

	require.NoError(t, f.svc.SignOut(context.Background(), token))

	f.sessions.On("Get", mock.Anything, sessionID).Return(nil, apperrors.NotFound("session", nil))
	sess, err = f.svc.GetSession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
