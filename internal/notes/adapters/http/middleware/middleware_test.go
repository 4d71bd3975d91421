package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"securenotes/internal/notes/adapters/http/middleware"
	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/ports/services"
	"securenotes/pkg/logger"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) ValidateAccessToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func newApp(handlers ...fiber.Handler) *fiber.App {
	logger.SetGlobalLogger(logger.NewNop())
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	for _, h := range handlers {
		app.Use(h)
	}
	return app
}

func echoOwner(ctx fiber.Ctx) error {
	return ctx.SendString(middleware.Owner(ctx))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		setupMock  func(m *MockTokenService)
		wantStatus int
		wantOwner  string
	}{
		{
			name:       "missing header",
			setupMock:  func(*MockTokenService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "basic scheme",
			header:     "Basic dXNlcjpwYXNz",
			setupMock:  func(*MockTokenService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "rejected token",
			header: "Bearer bad",
			setupMock: func(m *MockTokenService) {
				m.On("ValidateAccessToken", mock.Anything, "bad").Return("", services.ErrInvalidJWTToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			header: "Bearer good",
			setupMock: func(m *MockTokenService) {
				m.On("ValidateAccessToken", mock.Anything, "good").Return("alice", nil)
			},
			wantStatus: http.StatusOK,
			wantOwner:  "alice",
		},
		{
			name:   "scheme is case insensitive",
			header: "BEARER good",
			setupMock: func(m *MockTokenService) {
				m.On("ValidateAccessToken", mock.Anything, "good").Return("bob", nil)
			},
			wantStatus: http.StatusOK,
			wantOwner:  "bob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(MockTokenService)
			tt.setupMock(tokens)
			app := newApp(middleware.NewAuthMiddleware(tokens))
			app.Get("/", echoOwner)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			} else {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantOwner, string(body))
			}
			tokens.AssertExpectations(t)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	app := newApp()
	app.Get("/", func(ctx fiber.Ctx) error {
		id, _ := logger.RequestIDFrom(middleware.RequestContext(ctx))
		return ctx.SendString(id)
	})

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "client id kept", incoming: "abc-123", keep: true},
		{name: "missing id generated"},
		{name: "id with spaces replaced", incoming: "abc 123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.incoming)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			header := resp.Header.Get(middleware.HeaderRequestID)
			assert.NotEmpty(t, header)
			assert.Equal(t, header, string(body), "context and header carry the same id")
			if tt.keep {
				assert.Equal(t, tt.incoming, header)
			} else {
				assert.NotEqual(t, tt.incoming, header)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	app := newApp()
	app.Get("/", func(fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), response.CodeInternal)
	assert.NotContains(t, string(body), "boom")
}

type stubLimiter struct {
	decision services.RateDecision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (services.RateDecision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	withOwner := func(owner string) fiber.Handler {
		return func(ctx fiber.Ctx) error {
			ctx.Locals(middleware.LocalOwner, owner)
			return ctx.Next()
		}
	}

	t.Run("keyed by owner", func(t *testing.T) {
		limiter := &stubLimiter{decision: services.RateDecision{Allowed: true, Limit: 5, Remaining: 4}}
		app := newApp(withOwner("alice"), middleware.NewRateLimitMiddleware(limiter))
		app.Get("/", echoOwner)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "5", resp.Header.Get(middleware.HeaderRateLimit))
		assert.Equal(t, "4", resp.Header.Get(middleware.HeaderRateRemaining))
		assert.Equal(t, []string{"alice"}, limiter.keys)
	})

	t.Run("sub-second reset rounds up", func(t *testing.T) {
		limiter := &stubLimiter{decision: services.RateDecision{Limit: 5}}
		app := newApp(withOwner("alice"), middleware.NewRateLimitMiddleware(limiter))
		app.Get("/", echoOwner)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	})

	t.Run("unauthenticated request skipped", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("unexpected call")}
		app := newApp(middleware.NewRateLimitMiddleware(limiter))
		app.Get("/", echoOwner)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, limiter.keys)
	})
}
