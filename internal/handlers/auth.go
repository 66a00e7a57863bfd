package handlers

import (
	"log"
	"net/http"

	"github.com/staffgraph/staffgraph/internal/api"
	"github.com/staffgraph/staffgraph/internal/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	jwtAuth *middleware.JWTAuthMiddleware
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(jwtAuth *middleware.JWTAuthMiddleware) *AuthHandler {
	return &AuthHandler{jwtAuth: jwtAuth}
}

// SetupRoutes sets up authentication routes
func (h *AuthHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("GET /auth/verify", h.handleVerify)
}

// handleLogin handles POST /auth/login
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		api.RespondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if !h.jwtAuth.ValidateCredentials(req.Username, req.Password) {
		log.Printf("AuthHandler: Failed login attempt for user '%s' from %s", req.Username, r.RemoteAddr)
		api.RespondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, expiresAt, err := h.jwtAuth.GenerateToken(req.Username)
	if err != nil {
		log.Printf("AuthHandler: Failed to generate token for user '%s': %v", req.Username, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	api.RespondJSON(w, http.StatusOK, api.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// handleVerify handles GET /auth/verify - reports whether the current token is valid
func (h *AuthHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == "" {
		api.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"username": user,
	})
}
