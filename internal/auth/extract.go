package auth

import (
	"errors"
	"net/http"
	"strings"
)

var ErrNoToken = errors.New("no token")

// TokenFromRequest reads the session cookie first, then a Bearer header.
func TokenFromRequest(r *http.Request, cookieName string) (string, error) {
	if c, err := r.Cookie(cookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v, nil
		}
	}

	h := r.Header.Get("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		if v := strings.TrimSpace(h[len("Bearer "):]); v != "" {
			return v, nil
		}
	}

	return "", ErrNoToken
}
