package jwt

import (
	"net/http"
	"strings"

	"seatnotify/internal/pkg/logx"
)

// BearerFromHeader extracts the raw token from an "Authorization: Bearer <token>"
// header value. It returns the empty string when the header is absent or malformed.
func BearerFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// Authenticate validates the bearer token on the request and returns the
// embedded identity claims. A nil return means the request carries no usable
// identity; callers decide whether that is fatal for the route.
func Authenticate(r *http.Request, secretKey string) *Payload {
	tokenString := BearerFromHeader(r)
	if tokenString == "" {
		return nil
	}

	payload, err := ParseToken(tokenString, secretKey)
	if err != nil {
		logx.Warn("Invalid or expired JWT presented", "error", err.Error())
		return nil
	}

	return payload
}
