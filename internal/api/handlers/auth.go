package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const tokenLifetime = 30 * 24 * time.Hour

// AuthHandler issues and checks access tokens for the single-password login
type AuthHandler struct {
	password string
	secret   string
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(password, secret string, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		password: password,
		secret:   secret,
		logger:   logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login verifies the configured password and issues a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	given := strings.TrimSpace(req.Password)
	want := strings.TrimSpace(h.password)
	if want == "" || subtle.ConstantTimeCompare([]byte(given), []byte(want)) != 1 {
		h.logger.WithField("remote_addr", r.RemoteAddr).Warn("Failed login attempt")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":           time.Now().Add(tokenLifetime).Unix(),
		"authenticated": true,
	})
	signed, err := token.SignedString([]byte(h.secret))
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: signed, TokenType: "bearer"})
}

// Logout exists so clients have something to call; the token is simply
// discarded client-side
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Check reports whether the presented token is valid (auth middleware
// already rejected invalid ones)
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}
