package service

import (
	"context"
	"testing"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*authService, *memory.SessionRepository) {
	t.Helper()
	sessions := memory.NewSessionRepository()
	svc := NewAuthService(memory.NewUserRepository(), sessions, memory.TxManager{}, testSecret, time.Hour, zerolog.Nop())
	return svc.(*authService), sessions
}

func signup(t *testing.T, svc AuthService) *SessionResponse {
	t.Helper()
	res, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return res
}

func TestSignup_OpensSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)

	res := signup(t, svc)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada Lovelace", res.User.Name)

	p, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, p.UserID.String())

	me, err := svc.CurrentUser(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, res.User, *me)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)
	signup(t, svc)

	_, err := svc.Signup(context.Background(), SignupRequest{Name: "Other", Email: "ada@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Name: "", Email: "nope", Password: "short"})
	require.ErrorIs(t, err, model.ErrValidation)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fieldsOf(t, err))
}

func TestCreateSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)
	signup(t, svc)

	res, err := svc.CreateSession(ctx, LoginRequest{Email: " ADA@example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, res.Token)
	assert.NoError(t, err)

	_, err = svc.CreateSession(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = svc.CreateSession(ctx, LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestDeleteSession_RevokesToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)
	res := signup(t, svc)

	p, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, p.SessionID))

	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	err = svc.DeleteSession(ctx, p.SessionID)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)
	res := signup(t, svc)

	p, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	forge := func(method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return tok
	}
	valid := jwt.RegisteredClaims{
		Subject:   p.UserID.String(),
		ID:        p.SessionID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", forge(jwt.SigningMethodHS256, []byte("other"), valid)},
		{"wrong algorithm", forge(jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{"no expiry", forge(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{Subject: valid.Subject, ID: valid.ID})},
		{"expired", forge(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: valid.Subject, ID: valid.ID, ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
		{"unknown session", forge(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: valid.Subject, ID: uuid.NewString(), ExpiresAt: valid.ExpiresAt,
		})},
		{"subject mismatch", forge(jwt.SigningMethodHS256, []byte(testSecret), jwt.RegisteredClaims{
			Subject: uuid.NewString(), ID: valid.ID, ExpiresAt: valid.ExpiresAt,
		})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, model.ErrUnauthenticated)
		})
	}
}

func TestAuthenticate_ExpiredSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAuthService(t)
	res := signup(t, svc)

	// Token still verifies but the stored session has lapsed.
	svc.now = func() time.Time { return time.Now().Add(59 * time.Minute) }
	_, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func TestCurrentUser_Unknown(t *testing.T) {
	t.Parallel()
	svc, _ := newAuthService(t)

	_, err := svc.CurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}
