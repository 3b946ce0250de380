package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"electro-shop/internal/domain"
	"electro-shop/internal/middleware"
	"electro-shop/internal/repository"
	"electro-shop/internal/service"
	"electro-shop/internal/sqlbuild"
	"electro-shop/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// statusByError maps expected failures to response codes; anything not
// listed is a 500.
var statusByError = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{sqlbuild.ErrNoFields, http.StatusBadRequest},
	{domain.ErrInvalidTransition, http.StatusBadRequest},
	{upload.ErrUnsupportedType, http.StatusBadRequest},
	{upload.ErrFileTooLarge, http.StatusBadRequest},
	{repository.ErrConstraint, http.StatusBadRequest},
	{repository.ErrReferenceNotFound, http.StatusBadRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},

	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrCategoryNotFound, http.StatusNotFound},
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrImageNotFound, http.StatusNotFound},
	{repository.ErrDescriptionNotFound, http.StatusNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound},
	{repository.ErrPaymentMethodNotFound, http.StatusNotFound},

	{repository.ErrUserAlreadyExists, http.StatusConflict},
	{repository.ErrCategoryAlreadyExists, http.StatusConflict},
	{repository.ErrOpenOrderExists, http.StatusConflict},
	{repository.ErrOutOfStock, http.StatusConflict},
	{repository.ErrDuplicate, http.StatusConflict},
}

// responder writes handler results and is embedded by every handler.
type responder struct {
	logger *zap.Logger
	// debug adds SQL state and message to 500 responses.
	debug bool
}

func (rs responder) ok(w http.ResponseWriter, payload interface{}) {
	middleware.RespondWithJSON(w, http.StatusOK, payload)
}

func (rs responder) created(w http.ResponseWriter, payload interface{}) {
	middleware.RespondWithJSON(w, http.StatusCreated, payload)
}

func (rs responder) deleted(w http.ResponseWriter) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// fail answers err with the status of the first matching sentinel. Messages
// of errors that carry a database error are replaced by the sentinel's own.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	hasPgErr := errors.As(err, &pgErr)

	for _, m := range statusByError {
		if !errors.Is(err, m.err) {
			continue
		}

		message := err.Error()
		if hasPgErr {
			message = m.err.Error()
		}

		var details map[string]interface{}
		if hasPgErr && rs.debug {
			details = sqlDetails(pgErr)
		}

		rs.logger.Debug("Request failed",
			zap.Error(err),
			zap.Int("status", m.status),
			zap.String("path", r.URL.Path),
		)
		middleware.RespondWithErrorDetails(w, m.status, message, details)
		return
	}

	rs.logger.Error("Unhandled error",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	var details map[string]interface{}
	if rs.debug {
		details = map[string]interface{}{"error": err.Error()}
		if hasPgErr {
			for k, v := range sqlDetails(pgErr) {
				details[k] = v
			}
		}
	}
	middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, "internal server error", details)
}

func sqlDetails(pgErr *pgconn.PgError) map[string]interface{} {
	return map[string]interface{}{
		"sqlState":   pgErr.Code,
		"sqlMessage": pgErr.Message,
	}
}

// decode reads a JSON body into v and validates it. It answers the request
// itself and returns false when the body is unusable.
func (rs responder) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		rs.logger.Debug("Invalid request body", zap.Error(err), zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter. It answers 400 itself
// and returns false when the value is malformed.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}

// parseMultipart caps the body at limit bytes before parsing the form.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "upload is too large")
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

// Guard is a route middleware; a nil Guard lets every request through.
type Guard func(http.Handler) http.Handler

func (g Guard) wrap(r chi.Router) chi.Router {
	if g == nil {
		return r
	}
	return r.With(g)
}
