package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securenotes/internal/notes/adapters/http/response"
	"securenotes/internal/notes/app"
	"securenotes/pkg/logger"
)

func errorBody(t *testing.T, resp *http.Response) response.ErrorBody {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env response.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &env), string(data))
	return env.Error
}

func TestFromError(t *testing.T) {
	logger.SetGlobalLogger(logger.NewNop())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "field validation",
			err:        &app.ValidationError{Field: "title", Reason: "must not be empty"},
			wantStatus: http.StatusBadRequest,
			wantCode:   response.CodeValidation,
			wantField:  "title",
		},
		{
			name:       "generic validation",
			err:        fmt.Errorf("decode: %w", app.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantCode:   response.CodeValidation,
		},
		{name: "unauthenticated", err: app.ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantCode: response.CodeUnauthenticated},
		{name: "not found", err: app.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: response.CodeNotFound},
		{name: "unavailable", err: app.ErrUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: response.CodeUnavailable},
		{name: "unknown", err: errors.New("pq: secret internals"), wantStatus: http.StatusInternalServerError, wantCode: response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fiber.New()
			server.Get("/", func(ctx fiber.Ctx) error {
				return response.FromError(ctx, ctx.Context(), tt.err)
			})

			resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := errorBody(t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotContains(t, body.Message, "internals")
		})
	}
}

func TestErrorHandler(t *testing.T) {
	logger.SetGlobalLogger(logger.NewNop())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "route not found", err: fiber.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: response.CodeRouteNotFound},
		{name: "method not allowed", err: fiber.ErrMethodNotAllowed, wantStatus: http.StatusMethodNotAllowed, wantCode: response.CodeMethodNotAllow},
		{name: "body too large", err: fiber.ErrRequestEntityTooLarge, wantStatus: http.StatusRequestEntityTooLarge, wantCode: response.CodeBodyTooLarge},
		{name: "unprocessable", err: fiber.ErrUnprocessableEntity, wantStatus: http.StatusBadRequest, wantCode: response.CodeValidation},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: response.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})
			server.Get("/", func(fiber.Ctx) error { return tt.err })

			resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, errorBody(t, resp).Code)
		})
	}
}
