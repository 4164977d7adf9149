package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/auth"
	"github.com/societyhub/community-server/internal/middleware"
	"github.com/societyhub/community-server/internal/models"
)

// AuthHandler handles sign-up, sign-in and sign-out
type AuthHandler struct {
	users       UserService
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
	logger      *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserService, issuer *auth.TokenIssuer, revocations auth.RevocationStore, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, revocations: revocations, logger: logger}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "signup")
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, err, "signup")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Signin handles POST /api/v1/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "signin")
		return
	}

	user, err := h.users.Authenticate(r.Context(), &req)
	if err != nil {
		respondErr(w, h.logger, err, "signin")
		return
	}

	token, expires, err := h.issuer.Issue(user)
	if err != nil {
		respondErr(w, h.logger, err, "signin")
		return
	}

	h.logger.Infow("User signed in", "user_id", user.ID, "role", user.Role)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Login successful",
		"token":     token,
		"expiresAt": expires,
		"user":      user,
	})
}

// Signout handles POST /api/v1/auth/signout
// The presented token stays rejected until it would have expired.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	if err := h.revocations.Revoke(r.Context(), s.TokenID, s.ExpiresAt); err != nil {
		respondErr(w, h.logger, err, "signout")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "current user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
