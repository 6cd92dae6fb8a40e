package api

import (
	"encoding/json"
	"net/http"

	"github.com/housetally/housetally-core/internal/auth"
)

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// refreshRequest is the request body for POST /auth/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshResponse is the response body for POST /auth/refresh.
type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// logoutRequest is the request body for POST /auth/logout. The access token
// comes from the Authorization header; the refresh token travels in the body.
type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// changePasswordRequest is the request body for POST /auth/change-password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleRegister creates a new user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.engine.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin verifies credentials and returns an access/refresh token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	pair, err := s.engine.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// handleRefresh exchanges a live refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	accessToken, expiresIn, err := s.engine.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		AccessToken: accessToken,
		TokenType:   auth.TokenTypeBearer,
		ExpiresIn:   expiresIn,
	})
}

// handleLogout revokes the presented tokens. It is deliberately public and
// idempotent: expired, revoked, or garbled tokens still produce a success
// response so a client can always discard its session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.Body != nil {
		//nolint:errcheck // an absent or malformed body just means no refresh token
		json.NewDecoder(r.Body).Decode(&req)
	}

	accessToken, _ := bearerToken(r)

	if err := s.engine.Logout(r.Context(), accessToken, req.RefreshToken); err != nil {
		writeInternalError(w, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

// handleChangePassword updates the user's password and revokes every token
// issued for them, ending all other sessions.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user := userFromContext(r.Context())
	if err := s.engine.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "password_changed"})
}
