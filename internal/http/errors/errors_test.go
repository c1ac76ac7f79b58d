package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestInternalErrorHidesDetails(t *testing.T) {
	buf := captureLog(t)
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		InternalError(w, r, errors.New("pool exhausted"), "load availability")
	})
	handler = middleware.RequestID(handler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/calendar", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "pool exhausted") {
		t.Fatal("error detail leaked to client")
	}
	logged := buf.String()
	if !strings.Contains(logged, "[ERROR] RequestID=") || !strings.Contains(logged, "load availability: pool exhausted") {
		t.Fatalf("unexpected log line %q", logged)
	}
}

func TestBadRequestErrorJSON(t *testing.T) {
	buf := captureLog(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/calendar", nil)
	BadRequestError(rr, req, errors.New("month out of range"), "invalid month")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid month" {
		t.Fatalf("body = %v", body)
	}
	if !strings.HasPrefix(buf.String(), "[WARN] bad request: month out of range") {
		t.Fatalf("unexpected log line %q", buf.String())
	}
}

func TestLogWarnWithoutRequest(t *testing.T) {
	buf := captureLog(t)
	LogWarn(nil, "timezone fallback", errors.New("unknown time zone Mars/Base"))
	if got := strings.TrimSpace(buf.String()); got != "[WARN] timezone fallback: unknown time zone Mars/Base" {
		t.Fatalf("log = %q", got)
	}
}
