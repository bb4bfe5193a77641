package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/metrics"
)

const (
	apiPrefix               = "/api"
	responseBodyReadLimit   = 4 << 20
	errorBodyReadLimit      = 4096
	defaultRequestTimeout   = 10 * time.Second
	collectionUsers         = "users"
	collectionUpload        = "upload"
	collectionAuth          = "auth"
	contentTypeJSON         = "application/json"
	authorizationHeaderName = "Authorization"
)

// Collections referenced by the marketplace.
const (
	CollectionOrders  = "orders"
	CollectionDishes  = "dishes"
	CollectionVendors = "vendors"
)

var (
	errBaseURLRequired      = errors.New("content base url is required")
	errServiceTokenRequired = errors.New("content service token is required")
)

// Client talks to the content backend's REST API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	serviceToken string
	metrics      *metrics.ContentMetrics
	validate     *validator.Validate
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithMetrics records request latency and outcome.
func WithMetrics(m *metrics.ContentMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a content backend client. The service token authorizes collection access.
func NewClient(baseURL, serviceToken string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedURL == "" {
		return nil, errBaseURLRequired
	}
	trimmedToken := strings.TrimSpace(serviceToken)
	if trimmedToken == "" {
		return nil, errServiceTokenRequired
	}

	client := &Client{
		baseURL:      trimmedURL,
		serviceToken: trimmedToken,
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		validate:     validator.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Pagination mirrors meta.pagination on collection responses.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination *Pagination `json:"pagination"`
	} `json:"meta"`
}

type request struct {
	method      string
	path        string
	collection  string
	query       *Query
	body        io.Reader
	contentType string
	token       string
	enveloped   bool
}

// List fetches a page of records into dest, which must point to a slice.
func (c *Client) List(ctx context.Context, collection string, q *Query, dest any) (*Pagination, error) {
	return c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/" + collection,
		collection: collection,
		query:      q,
		enveloped:  true,
	}, dest)
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, collection string, id int, q *Query, dest any) error {
	_, err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       fmt.Sprintf("/%s/%d", collection, id),
		collection: collection,
		query:      q,
		enveloped:  true,
	}, dest)
	return err
}

// Create posts {data: payload} to the collection.
func (c *Client) Create(ctx context.Context, collection string, payload any, dest any) error {
	body, err := wrapData(payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/" + collection,
		collection:  collection,
		body:        body,
		contentType: contentTypeJSON,
		enveloped:   true,
	}, dest)
	return err
}

// Update puts {data: payload} to a record. Only supplied fields change.
func (c *Client) Update(ctx context.Context, collection string, id int, payload any, dest any) error {
	body, err := wrapData(payload)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method:      http.MethodPut,
		path:        fmt.Sprintf("/%s/%d", collection, id),
		collection:  collection,
		body:        body,
		contentType: contentTypeJSON,
		enveloped:   true,
	}, dest)
	return err
}

func wrapData(payload any) (io.Reader, error) {
	raw, err := json.Marshal(map[string]any{"data": payload})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode content payload")
	}
	return bytes.NewReader(raw), nil
}

func (c *Client) do(ctx context.Context, req request, dest any) (*Pagination, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "content client not configured")
	}
	action := fmt.Sprintf("%s %s", strings.ToLower(req.method), req.collection)

	target := c.baseURL + apiPrefix + req.path
	if req.query != nil {
		if encoded := req.query.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build content request")
	}
	token := req.token
	if token == "" {
		token = c.serviceToken
	}
	httpReq.Header.Set(authorizationHeaderName, "Bearer "+token)
	httpReq.Header.Set("Accept", contentTypeJSON)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		httpReq.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.Observe(req.collection, req.method, 0, time.Since(start))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
	defer func() { _ = resp.Body.Close() }()
	c.metrics.Observe(req.collection, req.method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, classify(parseUpstreamError(resp.StatusCode, body), action)
	}

	if dest == nil {
		return nil, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read content response")
	}

	var page *Pagination
	if req.enveloped {
		var env dataEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, malformed(err, action)
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		raw = env.Data
		page = env.Meta.Pagination
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, malformed(err, action)
	}
	if err := c.validateRecords(dest); err != nil {
		return nil, malformed(err, action)
	}
	return page, nil
}

// validateRecords checks a decoded struct or every element of a decoded slice.
func (c *Client) validateRecords(dest any) error {
	v := reflect.ValueOf(dest)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Addr().Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if elem.Kind() == reflect.Struct {
				if err := c.validate.Struct(elem.Addr().Interface()); err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
			}
		}
	}
	return nil
}

func malformed(err error, action string) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "malformed content response").
		WithDetails(map[string]any{"step": action})
}
