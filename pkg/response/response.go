package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"

	"github.com/gorilla/mux"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Error encoding JSON response", logger.ErrorField(err))
	}
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error JSON response; code is the machine-readable error kind.
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	response := ErrorResponse{
		Success:   false,
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("Error encoding error response", logger.ErrorField(encodeErr))
	}
}

// StatusFor maps a business error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case customError.ErrCodeValidation,
		customError.ErrCodeLoanLimitExceeded,
		customError.ErrCodeMembershipRequired,
		customError.ErrCodeActiveLoanLimit,
		customError.ErrCodeInsufficientXP:
		return http.StatusBadRequest
	case customError.ErrCodeUserBanned, customError.ErrCodeForbidden:
		return http.StatusForbidden
	case customError.ErrCodeUserNotFound,
		customError.ErrCodeLoanNotFound,
		customError.ErrCodePostNotFound,
		customError.ErrCodeNotificationNotFound:
		return http.StatusNotFound
	case customError.ErrCodeInvalidLoanStatus:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// BusinessError writes err with the status its code maps to. Internal causes are logged, not exposed.
func BusinessError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		logger.Error("Unhandled error", logger.ErrorField(err))
		Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	status := StatusFor(be.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", logger.String("code", be.Code), logger.ErrorField(err))
	}

	Error(w, status, be.Code, be.Message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, customError.ErrCodeForbidden, message)
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests and records them in the request metrics
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, routeTemplate(r), strconv.Itoa(recorder.statusCode), duration.Seconds())
		logger.Info("HTTP request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", recorder.statusCode),
			logger.Duration("duration", duration),
		)
	})
}

// routeTemplate keeps metric labels bounded by using the mux pattern instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
