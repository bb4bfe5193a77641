package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// AuthResult is returned by register and login.
type AuthResult struct {
	JWT  string      `json:"jwt" validate:"required"`
	User models.User `json:"user"`
}

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	body, err := jsonBody(input)
	if err != nil {
		return nil, err
	}
	var out AuthResult
	if _, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/local/register",
		collection:  collectionAuth,
		body:        body,
		contentType: contentTypeJSON,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	body, err := jsonBody(map[string]string{"identifier": identifier, "password": password})
	if err != nil {
		return nil, err
	}
	var out AuthResult
	if _, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/local",
		collection:  collectionAuth,
		body:        body,
		contentType: contentTypeJSON,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the account behind a user session token.
func (c *Client) Me(ctx context.Context, sessionToken string) (*models.User, error) {
	if strings.TrimSpace(sessionToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session token required")
	}
	var out models.User
	if _, err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/users/me",
		collection: collectionUsers,
		token:      sessionToken,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers queries the users collection, which is not wrapped in a data envelope.
func (c *Client) ListUsers(ctx context.Context, q *Query) ([]models.User, error) {
	var out []models.User
	if _, err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/users",
		collection: collectionUsers,
		query:      q,
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser loads one account.
func (c *Client) GetUser(ctx context.Context, id int) (*models.User, error) {
	var out models.User
	if _, err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/users/%d", id),
		collection: collectionUsers,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser changes the supplied fields on an account.
func (c *Client) UpdateUser(ctx context.Context, id int, fields map[string]any) (*models.User, error) {
	body, err := jsonBody(fields)
	if err != nil {
		return nil, err
	}
	var out models.User
	if _, err := c.do(ctx, request{
		method:      http.MethodPut,
		path:        fmt.Sprintf("/users/%d", id),
		collection:  collectionUsers,
		body:        body,
		contentType: contentTypeJSON,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	_, err := c.do(ctx, request{
		method:     http.MethodDelete,
		path:       fmt.Sprintf("/users/%d", id),
		collection: collectionUsers,
	}, nil)
	return err
}

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode content payload")
	}
	return bytes.NewReader(raw), nil
}
