package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"hello-firestore/backend/internal/config"
	"hello-firestore/backend/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) Get(ctx context.Context, k user.Key) (*user.Record, error) {
	args := m.Called(ctx, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Record), args.Error(1)
}

var leerob = user.Key{Collection: "users", ID: "leerob"}

func testConfig() config.Config {
	return config.Config{
		UserCollection: "users",
		UserID:         "leerob",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetUserFound(t *testing.T) {
	m := new(mockReader)
	m.On("Get", mock.Anything, leerob).Return(&user.Record{
		ID:     "leerob",
		Fields: map[string]any{"name": "Lee Robinson"},
	}, nil).Once()

	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: m}), "/api/user")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"leerob","name":"Lee Robinson"}`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestGetUserMissing(t *testing.T) {
	m := new(mockReader)
	m.On("Get", mock.Anything, leerob).Return(nil, user.ErrNotFound).Once()

	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: m}), "/api/user")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestGetUserStoreFailure(t *testing.T) {
	m := new(mockReader)
	m.On("Get", mock.Anything, leerob).Return(nil, errors.New("unavailable")).Once()

	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: m}), "/api/user")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Message)
	assert.NotContains(t, rec.Body.String(), "unavailable")
}

func TestGetUserUnencodableRecord(t *testing.T) {
	m := new(mockReader)
	m.On("Get", mock.Anything, leerob).Return(&user.Record{
		ID:     "leerob",
		Fields: map[string]any{"name": "Lee Robinson", "score": math.NaN()},
	}, nil).Once()

	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: m}), "/api/user")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "encode response", body.Message)
	m.AssertExpectations(t)
}

func TestWriteJSONCommitsStatusAfterEncoding(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]any{"a": "<b>"}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "{\"a\":\"<b>\"}\n", rec.Body.String())

	rec = httptest.NewRecorder()
	assert.Error(t, WriteJSON(rec, http.StatusOK, map[string]any{"inf": math.Inf(1)}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"encode response"}`, rec.Body.String())
}

func TestGetUserUsesConfiguredKey(t *testing.T) {
	cfg := testConfig()
	cfg.UserCollection = "people"
	cfg.UserID = "ada"

	m := new(mockReader)
	m.On("Get", mock.Anything, user.Key{Collection: "people", ID: "ada"}).
		Return(&user.Record{ID: "ada", Fields: map[string]any{"name": "Ada"}}, nil).Once()

	rec := serve(t, NewRouter(RouterDeps{Cfg: cfg, Users: m}), "/api/user")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"ada","name":"Ada"}`, rec.Body.String())
	m.AssertExpectations(t)
}

func TestGetUserRejectsOtherMethods(t *testing.T) {
	m := new(mockReader)
	h := NewRouter(RouterDeps{Cfg: testConfig(), Users: m})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestHealthz(t *testing.T) {
	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: new(mockReader)}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["ts"])
}

func TestPageMountedAtRoot(t *testing.T) {
	page := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("page"))
	})

	rec := serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: new(mockReader), Page: page}), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String())

	rec = serve(t, NewRouter(RouterDeps{Cfg: testConfig(), Users: new(mockReader)}), "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapUserError(t *testing.T) {
	status, _ := mapUserError(user.ErrBadKey)
	assert.Equal(t, 500, status)
	status, _ = mapUserError(user.ErrNotFound)
	assert.Equal(t, 404, status)
}
