package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestProperty_ErrorsHaveConsistentStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every error body has code, message and RFC3339 timestamp", prop.ForAll(
		func(message string, statusCode int) bool {
			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode || w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if _, err := time.Parse(time.RFC3339, response.Error.Timestamp); err != nil {
				return false
			}

			return response.Error.Code == http.StatusText(statusCode) &&
				response.Error.Message == message &&
				response.Error.Details == nil
		},
		gen.AlphaString(),
		gen.OneConstOf(
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()

	RespondWithValidationErrors(w, []ValidationError{{Field: "cardNumber", Message: "Value is too short"}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Message string `json:"message"`
			Details struct {
				ValidationErrors []ValidationError `json:"validation_errors"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error.Message)
	require.Len(t, body.Error.Details.ValidationErrors, 1)
	assert.Equal(t, "cardNumber", body.Error.Details.ValidationErrors[0].Field)
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := ErrorHandlingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/api/products", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/api/products", logs.All()[0].ContextMap()["path"])
}

func TestNotFoundHandler_EchoesPath(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/nothing-here", nil)
	w := httptest.NewRecorder()

	NotFoundHandler(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "/api/nothing-here", response.Error.Details["path"])
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	for status, level := range map[int]zapcore.Level{
		http.StatusOK:                  zapcore.InfoLevel,
		http.StatusNotFound:            zapcore.WarnLevel,
		http.StatusInternalServerError: zapcore.ErrorLevel,
	} {
		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/orders", nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, level, entries[0].Level)
		assert.Equal(t, int64(status), entries[0].ContextMap()["status"])
	}
}
