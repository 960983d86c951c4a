package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]string

func (f fakeTokens) Validate(token string) (string, error) {
	if uid, ok := f[token]; ok {
		return uid, nil
	}
	return "", auth.ErrInvalidToken
}

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func setupRouter(loader PrincipalLoader, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorResponder(zap.NewNop()), Identity(fakeTokens{"good": "u1", "ghost": "u404", "broken": "u500"}, loader))
	handlers := append(guards, func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.ID)
	})
	r.GET("/whoami", handlers...)
	return r
}

func TestIdentity(t *testing.T) {
	loader := &mockLoader{}
	loader.On("FindByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", Email: "u1@x.io", Roles: []models.Role{{Name: models.RoleWaiter}}}, nil)
	loader.On("FindByID", mock.Anything, "u404").
		Return(nil, fmt.Errorf("find user: %w", apperrors.ErrNotFound))
	loader.On("FindByID", mock.Anything, "u500").
		Return(nil, errors.New("database is locked"))
	router := setupRouter(loader)

	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedBody string
	}{
		{name: "no_header", expectedCode: http.StatusOK, expectedBody: "anonymous"},
		{name: "basic_scheme", header: "Basic dXNlcjpwYXNz", expectedCode: http.StatusOK, expectedBody: "anonymous"},
		{name: "bearer_without_token", header: "Bearer ", expectedCode: http.StatusOK, expectedBody: "anonymous"},
		{name: "invalid_token", header: "Bearer nope", expectedCode: http.StatusForbidden},
		{name: "deleted_user", header: "Bearer ghost", expectedCode: http.StatusNotFound},
		{name: "store_failure", header: "Bearer broken", expectedCode: http.StatusInternalServerError, expectedBody: "database is locked"},
		{name: "authenticated", header: "Bearer good", expectedCode: http.StatusOK, expectedBody: "u1"},
		{name: "lowercase_scheme", header: "bearer good", expectedCode: http.StatusOK, expectedBody: "u1"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if testCase.header != "" {
				req.Header.Set("Authorization", testCase.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestGuards(t *testing.T) {
	users := map[string]*models.User{
		"admin":  {ID: "admin", Roles: []models.Role{{Name: models.RoleAdmin}}},
		"chef":   {ID: "chef", Roles: []models.Role{{Name: models.RoleChef}}},
		"waiter": {ID: "waiter", Roles: []models.Role{{Name: models.RoleWaiter}}},
	}
	loader := &mockLoader{}
	for id, u := range users {
		loader.On("FindByID", mock.Anything, id).Return(u, nil)
	}
	tokens := fakeTokens{"admin": "admin", "chef": "chef", "waiter": "waiter"}

	guards := map[string]gin.HandlerFunc{
		"auth":        RequireAuth(),
		"admin":       RequireAdmin(),
		"waiter":      RequireWaiter(),
		"chef_waiter": RequireChefOrWaiter(),
		"admin_chef":  RequireAdminOrChef(),
	}
	// expected status per guard for anonymous, admin, chef, waiter callers
	expected := map[string][4]int{
		"auth":        {401, 200, 200, 200},
		"admin":       {401, 200, 403, 403},
		"waiter":      {401, 403, 403, 200},
		"chef_waiter": {401, 403, 200, 200},
		"admin_chef":  {401, 200, 200, 403},
	}
	callers := []string{"", "admin", "chef", "waiter"}

	for name, guard := range guards {
		r := gin.New()
		r.Use(ErrorResponder(zap.NewNop()), Identity(tokens, loader))
		r.GET("/", guard, func(c *gin.Context) { c.Status(http.StatusOK) })

		for i, caller := range callers {
			t.Run(name+"/"+caller, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				if caller != "" {
					req.Header.Set("Authorization", "Bearer "+caller)
				}
				recorder := httptest.NewRecorder()
				r.ServeHTTP(recorder, req)
				assert.Equal(t, expected[name][i], recorder.Code)
			})
		}
	}
}

func TestErrorResponder(t *testing.T) {
	r := gin.New()
	r.Use(ErrorResponder(zap.NewNop()))
	r.GET("/bad", func(c *gin.Context) { _ = c.Error(fmt.Errorf("%w: empty body", apperrors.ErrBadRequest)) })
	r.GET("/conflict", func(c *gin.Context) { _ = c.Error(apperrors.ErrConflict) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("disk full")) })
	r.GET("/written", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
		c.Writer.WriteHeaderNow()
		_ = c.Error(errors.New("late"))
	})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/bad", http.StatusBadRequest, `{"message":"bad request: empty body"}`},
		{"/conflict", http.StatusForbidden, `{"message":"resource already exists"}`},
		{"/boom", http.StatusInternalServerError, `{"message":"disk full"}`},
		{"/written", http.StatusTeapot, ""},
	}
	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, testCase.path, nil))
			assert.Equal(t, testCase.code, recorder.Code)
			if testCase.body != "" {
				assert.JSONEq(t, testCase.body, recorder.Body.String())
			} else {
				assert.Empty(t, recorder.Body.String())
			}
		})
	}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	failGet bool
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, false, errors.New("cache down")
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func TestIdempotency(t *testing.T) {
	loader := &mockLoader{}
	loader.On("FindByID", mock.Anything, "u1").Return(&models.User{ID: "u1"}, nil)
	cache := &memoryCache{entries: map[string][]byte{}}

	calls := 0
	r := gin.New()
	r.Use(ErrorResponder(zap.NewNop()), Identity(fakeTokens{"good": "u1"}, loader))
	r.POST("/orders", RequireAuth(), Idempotency(cache, time.Hour, zap.NewNop()), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"id": fmt.Sprintf("order-%d", calls)})
	})

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer good")
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		recorder := httptest.NewRecorder()
		r.ServeHTTP(recorder, req)
		return recorder
	}

	first := post("k1")
	second := post("k1")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	assert.JSONEq(t, `{"id":"order-2"}`, post("k2").Body.String())
	assert.JSONEq(t, `{"id":"order-3"}`, post("").Body.String())

	cache.failGet = true
	assert.JSONEq(t, `{"id":"order-4"}`, post("k1").Body.String())
}
