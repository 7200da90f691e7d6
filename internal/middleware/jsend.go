package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSend statuses. "success" and "fail" carry a data payload, "error" carries
// a message and hides internals.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// JSendResponse is the envelope for success and fail outcomes
type JSendResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// JSendErrorResponse is the envelope for unexpected errors
type JSendErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondSuccess sends a JSend success envelope with the given payload.
// A nil payload serializes as data: null.
func RespondSuccess(w http.ResponseWriter, statusCode int, data any) {
	respondJSON(w, statusCode, JSendResponse{Status: StatusSuccess, Data: data})
}

// RespondFail sends a JSend fail envelope. Data is either a human-readable
// message or a map of field violations.
func RespondFail(w http.ResponseWriter, statusCode int, data any) {
	respondJSON(w, statusCode, JSendResponse{Status: StatusFail, Data: data})
}

// RespondError sends a JSend error envelope for unexpected failures
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, JSendErrorResponse{Status: StatusError, Message: message})
}

// RespondWithValidationErrors sends field violations as a JSend fail response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	fields := make(map[string]string, len(errors))
	for _, e := range errors {
		if _, ok := fields[e.Field]; !ok {
			fields[e.Field] = e.Message
		}
	}
	RespondFail(w, http.StatusBadRequest, fields)
}

// ErrorHandlingMiddleware catches panics and converts them to opaque JSend
// error responses
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
