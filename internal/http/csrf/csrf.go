package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"net/url"
)

type contextKey struct{}

const (
	CookieName = "dyncal_csrf"
	HeaderName = "X-CSRF-Token"
	// FieldName is the form field carrying the token on HTML posts.
	FieldName = "_csrf"
)

// Middleware issues a CSRF token cookie and validates it on mutating requests.
// The cookie is marked Secure when baseURL is served over https.
func Middleware(baseURL string) func(http.Handler) http.Handler {
	secure := true
	if base, err := url.Parse(baseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ensureToken(w, r, secure)
			if err != nil {
				http.Error(w, "failed to issue csrf token", http.StatusInternalServerError)
				return
			}

			if isStateChanging(r.Method) && !valid(r, token) {
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromContext returns the CSRF token associated with the request.
func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}
	return ""
}

func ensureToken(w http.ResponseWriter, r *http.Request, secure bool) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func valid(r *http.Request, token string) bool {
	provided := r.Header.Get(HeaderName)
	if provided == "" {
		provided = r.FormValue(FieldName)
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(token)) == 1
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
