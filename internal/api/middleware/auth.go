package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(next http.Handler, secret string, logger *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Not authenticated", http.StatusUnauthorized)
			return
		}

		if !verifyToken(token, secret) {
			logger.WithField("remote_addr", r.RemoteAddr).Debug("Rejected invalid token")
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Invalid authentication credentials", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// verifyToken checks signature, expiry and the authenticated claim
func verifyToken(tokenString, secret string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	authenticated, _ := claims["authenticated"].(bool)
	return authenticated
}
