package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/angelmondragon/homeplate-backend/pkg/auth"
	"github.com/angelmondragon/homeplate-backend/pkg/content"
	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

const testSecret = "test-secret"

func signSession(secret string, now time.Time, ttl time.Duration, userID int) (string, error) {
	claims := pkgauth.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type fakeBackend struct {
	users      map[string]models.User
	passwords  map[string]string
	meCalls    int
	registered []content.RegisterInput
	meErr      error
}

func (f *fakeBackend) token(t *testing.T, id int) string {
	t.Helper()
	tok, err := signSession(testSecret, time.Now(), time.Hour, id)
	require.NoError(t, err)
	return tok
}

func (f *fakeBackend) Register(ctx context.Context, input content.RegisterInput) (*content.AuthResult, error) {
	if _, taken := f.users[input.Email]; taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email or Username are already taken")
	}
	f.registered = append(f.registered, input)
	user := models.User{ID: 50, Email: input.Email, Username: input.Username}
	f.users[input.Email] = user
	return &content.AuthResult{JWT: "registered-jwt", User: user}, nil
}

func (f *fakeBackend) Login(ctx context.Context, identifier, password string) (*content.AuthResult, error) {
	user, ok := f.users[identifier]
	if !ok || f.passwords[identifier] != password {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid identifier or password")
	}
	return &content.AuthResult{JWT: "login-jwt", User: user}, nil
}

func (f *fakeBackend) Me(ctx context.Context, token string) (*models.User, error) {
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	for _, u := range f.users {
		claims, err := pkgauth.ParseSessionToken(testSecret, token)
		if err == nil && claims.UserID == u.ID {
			user := u
			return &user, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown token")
}

type memoryIdentity struct {
	users     map[int]models.User
	lookupErr error
}

func (m *memoryIdentity) Lookup(ctx context.Context, userID int) (*models.User, bool, error) {
	if m.lookupErr != nil {
		return nil, false, m.lookupErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (m *memoryIdentity) Remember(ctx context.Context, user models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memoryIdentity) Forget(ctx context.Context, userID int) error {
	delete(m.users, userID)
	return nil
}

func setup(t *testing.T) (Service, *fakeBackend, *memoryIdentity) {
	t.Helper()
	backend := &fakeBackend{
		users: map[string]models.User{
			"ann@example.com":  {ID: 3, Email: "ann@example.com", Username: "ann"},
			"root@example.com": {ID: 1, Email: "root@example.com", IsAdmin: true, AdminVerified: true, AdminType: enums.AdminTypeMain},
			"new@example.com":  {ID: 2, Email: "new@example.com", IsAdmin: true, AdminType: enums.AdminTypeRegular},
		},
		passwords: map[string]string{"ann@example.com": "pw", "root@example.com": "pw", "new@example.com": "pw"},
	}
	identity := &memoryIdentity{users: map[int]models.User{}}
	svc, err := NewService(ServiceParams{Backend: backend, Identity: identity, JWTSecret: testSecret})
	require.NoError(t, err)
	return svc, backend, identity
}

func TestNewServiceValidatesParams(t *testing.T) {
	_, err := NewService(ServiceParams{Identity: &memoryIdentity{}, JWTSecret: "x"})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Backend: &fakeBackend{}, Identity: &memoryIdentity{}})
	assert.Error(t, err)
}

func TestLoginCachesIdentity(t *testing.T) {
	svc, _, identity := setup(t)
	resp, err := svc.Login(context.Background(), LoginRequest{Identifier: " ann@example.com ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "login-jwt", resp.Token)
	assert.Equal(t, 3, resp.Session.UserID)
	assert.Contains(t, identity.users, 3)

	_, err = svc.Login(context.Background(), LoginRequest{Identifier: "ann@example.com", Password: "nope"})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
	assert.Equal(t, invalidCredentialsMessage, appErr.Message())
}

func TestAdminLoginRequiresVerifiedAdmin(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.AdminLogin(ctx, LoginRequest{Identifier: "ann@example.com", Password: "pw"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	_, err = svc.AdminLogin(ctx, LoginRequest{Identifier: "new@example.com", Password: "pw"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	resp, err := svc.AdminLogin(ctx, LoginRequest{Identifier: "root@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, resp.Session.IsVerifiedAdmin())
	assert.True(t, resp.Session.User().IsMainAdmin())
}

func TestRegisterNormalizesAndDetectsDuplicates(t *testing.T) {
	svc, backend, _ := setup(t)
	resp, err := svc.Register(context.Background(), RegisterRequest{Username: " cy ", Email: "CY@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "registered-jwt", resp.Token)
	require.Len(t, backend.registered, 1)
	assert.Equal(t, "cy@example.com", backend.registered[0].Email)
	assert.Equal(t, "cy", backend.registered[0].Username)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestResolveUsesCacheThenBackend(t *testing.T) {
	svc, backend, identity := setup(t)
	ctx := context.Background()
	token := backend.token(t, 3)

	sess, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", sess.Email)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, 1, backend.meCalls)

	_, err = svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.meCalls, "second resolve should hit the cache")

	require.NoError(t, svc.Logout(ctx, 3))
	assert.NotContains(t, identity.users, 3)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc, backend, identity := setup(t)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "garbage")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	forged, err := signSession("other-secret", time.Now(), time.Hour, 3)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, forged)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	assert.Zero(t, backend.meCalls)

	identity.lookupErr = errors.New("redis down")
	backend.meErr = pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	_, err = svc.Resolve(ctx, backend.token(t, 3))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency), "backend outage is not a bad session: %v", err)
}
