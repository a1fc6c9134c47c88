package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*SessionResponse, error)
	CreateSession(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
	Authenticate(ctx context.Context, token string) (Principal, error)
}

type authService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	txManager repository.TransactionManager
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	txManager repository.TransactionManager,
	secret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		txManager: txManager,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", model.ErrUnauthenticated)

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*SessionResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Name: req.Name, Email: req.Email, Password: string(hashed)}
	var res *SessionResponse
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return fmt.Errorf("email already registered: %w", err)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		var err error
		res, err = s.openSession(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("account created")
	return res, nil
}

func (s *authService) CreateSession(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req).OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.openSession(ctx, user)
}

func (s *authService) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("session %s: %w", sessionID, model.ErrUnauthenticated)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, model.ErrUnauthenticated)
		}
		return nil, err
	}
	res := toUserResponse(user)
	return &res, nil
}

// Authenticate verifies the token signature and expiry, then checks that its session
// still exists.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (Principal, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w", model.ErrUnauthenticated)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token subject: %w", model.ErrUnauthenticated)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token id: %w", model.ErrUnauthenticated)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Principal{}, fmt.Errorf("session revoked: %w", model.ErrUnauthenticated)
		}
		return Principal{}, err
	}
	if session.UserID != userID || session.Expired(s.now()) {
		return Principal{}, fmt.Errorf("session expired: %w", model.ErrUnauthenticated)
	}

	return Principal{UserID: userID, SessionID: sessionID}, nil
}

func (s *authService) openSession(ctx context.Context, user *model.User) (*SessionResponse, error) {
	now := s.now().UTC()
	session := &model.Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ID:        session.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &SessionResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      toUserResponse(user),
	}, nil
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
}
