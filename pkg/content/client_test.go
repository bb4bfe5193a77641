package content

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/metrics"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, "service-token", WithMetrics(metrics.NewContentMetrics(prometheus.NewRegistry())))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresSettings(t *testing.T) {
	_, err := NewClient("", "token")
	assert.Error(t, err)
	_, err = NewClient("http://x", " ")
	assert.Error(t, err)
}

func TestListDecodesRecordsAndPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dishes", r.URL.Path)
		assert.Equal(t, "Bearer service-token", r.Header.Get("Authorization"))
		assert.Equal(t, "7", r.URL.Query().Get("filters[vendorId][$eq]"))
		assert.Equal(t, "*", r.URL.Query().Get("populate"))
		assert.Equal(t, "rating:desc", r.URL.Query().Get("sort[0]"))
		assert.Equal(t, "2", r.URL.Query().Get("pagination[page]"))
		_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Tacos","price":9.5,"vendorId":7,"available":true,"reviews":[]}],
			"meta":{"pagination":{"page":2,"pageSize":10,"pageCount":3,"total":21}}}`)
	})

	var dishes []models.Dish
	page, err := client.List(context.Background(), CollectionDishes,
		NewQuery().Eq("vendorId", 7).Populate().Sort("rating", true).Page(2, 10), &dishes)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Tacos", dishes[0].Name)
	assert.Equal(t, "9.5", dishes[0].Price.String())
	require.NotNil(t, page)
	assert.Equal(t, 21, page.Total)
}

func TestRequestIDIsForwarded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-7", r.Header.Get(RequestIDHeader))
		_, _ = io.WriteString(w, `{"data":[]}`)
	})

	var dishes []models.Dish
	_, err := client.List(WithRequestID(context.Background(), "req-7"), CollectionDishes, nil, &dishes)
	require.NoError(t, err)
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestListRejectsMalformedRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":1,"price":9.5}]}`)
	})

	var dishes []models.Dish
	_, err := client.List(context.Background(), CollectionDishes, nil, &dishes)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Contains(t, err.Error(), "malformed content response")
}

func TestErrorStatusesAreClassified(t *testing.T) {
	cases := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"data":null,"error":{"status":400,"name":"ValidationError","message":"email is taken"}}`)
		})
		var dish models.Dish
		err := client.Get(context.Background(), CollectionDishes, 1, nil, &dish)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, tc.code, typed.Code(), "status %d", tc.status)
		if tc.status == http.StatusBadRequest {
			assert.Equal(t, "email is taken", typed.Message())
		}
	}
}

func TestGetNullDataIsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	})
	var order models.Order
	err := client.Get(context.Background(), CollectionOrders, 3, nil, &order)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateWrapsPayloadInData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/dishes/4", r.URL.Path)
		var body map[string]map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(12), body["data"]["weeklySales"])
		_, _ = io.WriteString(w, `{"data":{"id":4,"name":"Pho","vendorId":2,"weeklySales":12,"reviews":[]}}`)
	})

	var dish models.Dish
	err := client.Update(context.Background(), CollectionDishes, 4, map[string]any{"weeklySales": 12}, &dish)
	require.NoError(t, err)
	assert.Equal(t, 12, dish.WeeklySales)
}

func TestMeUsesSessionToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id":9,"email":"ann@example.com","username":"ann"}`)
	})

	user, err := client.Me(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, 9, user.ID)

	_, err = client.Me(context.Background(), "")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestUploadSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		raw, _ := io.ReadAll(file)
		assert.Equal(t, "logo.png", header.Filename)
		assert.Equal(t, "png-bytes", string(raw))
		_, _ = io.WriteString(w, `[{"id":5,"url":"/uploads/logo.png","name":"logo.png"}]`)
	})

	media, err := client.Upload(context.Background(), "logo.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 5, media.ID)
	assert.Equal(t, "/uploads/logo.png", media.URL)
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", "token")
	require.NoError(t, err)
	var dish models.Dish
	err = client.Get(context.Background(), CollectionDishes, 1, nil, &dish)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}
