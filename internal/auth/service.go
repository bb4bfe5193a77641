package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/auth"
	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller and session middleware.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Resolve(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, userID int) error
}

type authBackend interface {
	Register(ctx context.Context, input content.RegisterInput) (*content.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*content.AuthResult, error)
	Me(ctx context.Context, sessionToken string) (*models.User, error)
}

type identityCache interface {
	Lookup(ctx context.Context, userID int) (*models.User, bool, error)
	Remember(ctx context.Context, user models.User) error
	Forget(ctx context.Context, userID int) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Backend   authBackend
	Identity  identityCache
	JWTSecret string
	Logger    *logger.Logger
}

type service struct {
	backend  authBackend
	identity identityCache
	secret   string
	logg     *logger.Logger
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("auth backend is required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity cache is required")
	}
	if strings.TrimSpace(params.JWTSecret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: params.Backend, identity: params.Identity, secret: params.JWTSecret, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	input := content.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username, email and password are required")
	}
	result, err := s.backend.Register(ctx, input)
	if err != nil {
		// The backend reports taken emails and usernames as a bad request.
		if pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email or username is already taken")
		}
		return nil, err
	}
	return s.establish(ctx, result)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	result, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	result, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !result.User.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not an admin")
	}
	if !result.User.AdminVerified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin account is pending verification")
	}
	return s.establish(ctx, result)
}

// Resolve verifies a session token and loads its account, preferring the identity cache.
func (s *service) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := auth.ParseSessionToken(s.secret, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session")
	}

	user, ok, err := s.identity.Lookup(ctx, claims.UserID)
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, strconv.Itoa(claims.UserID)), "identity cache lookup failed: "+err.Error())
	}
	if ok && user != nil && user.ID == claims.UserID {
		return NewSession(*user, token), nil
	}

	user, err = s.backend.Me(ctx, token)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeForbidden) || pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session")
		}
		return nil, err
	}
	if user.ID != claims.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session does not match account")
	}
	s.remember(ctx, *user)
	return NewSession(*user, token), nil
}

func (s *service) Logout(ctx context.Context, userID int) error {
	if userID <= 0 {
		return nil
	}
	if err := s.identity.Forget(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear session cache")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, req LoginRequest) (*content.AuthResult, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identifier and password are required")
	}
	result, err := s.backend.Login(ctx, identifier, req.Password)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeValidation) || pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}
	return result, nil
}

func (s *service) establish(ctx context.Context, result *content.AuthResult) (*LoginResponse, error) {
	if result == nil || strings.TrimSpace(result.JWT) == "" || result.User.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth response missing token or user")
	}
	s.remember(ctx, result.User)
	user := result.User
	ctx = s.logg.WithUserID(ctx, strconv.Itoa(user.ID))
	s.logg.Info(ctx, "auth.session_established")
	return &LoginResponse{Token: result.JWT, User: &user, Session: NewSession(user, result.JWT)}, nil
}

func (s *service) remember(ctx context.Context, user models.User) {
	if err := s.identity.Remember(ctx, user); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, strconv.Itoa(user.ID)), "identity cache write failed: "+err.Error())
	}
}
