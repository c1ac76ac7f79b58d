package errors

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// InternalError logs err with the request id and sends a generic 500.
func InternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logf(r, "ERROR", "%s: %v", message, err)
	if wantsJSON(r) {
		WriteJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// BadRequestError logs err at warning level and sends clientMessage as a 400.
func BadRequestError(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	logf(r, "WARN", "bad request: %v", err)
	if wantsJSON(r) {
		WriteJSONError(w, http.StatusBadRequest, clientMessage)
		return
	}
	http.Error(w, clientMessage, http.StatusBadRequest)
}

// NotFoundError sends a 404 without logging.
func NotFoundError(w http.ResponseWriter, r *http.Request, clientMessage string) {
	if wantsJSON(r) {
		WriteJSONError(w, http.StatusNotFound, clientMessage)
		return
	}
	http.Error(w, clientMessage, http.StatusNotFound)
}

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func LogError(r *http.Request, message string, err error) {
	logf(r, "ERROR", "%s: %v", message, err)
}

func LogWarn(r *http.Request, message string, err error) {
	logf(r, "WARN", "%s: %v", message, err)
}

func LogInfo(r *http.Request, message string) {
	logf(r, "INFO", "%s", message)
}

func logf(r *http.Request, level, format string, args ...any) {
	requestID := ""
	if r != nil {
		requestID = middleware.GetReqID(r.Context())
	}
	if requestID != "" {
		log.Printf("[%s] RequestID=%s: "+format, append([]any{level, requestID}, args...)...)
		return
	}
	log.Printf("[%s] "+format, append([]any{level}, args...)...)
}

// wantsJSON reports whether the request was made against the JSON API.
func wantsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
