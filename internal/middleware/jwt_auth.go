package middleware

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffgraph/staffgraph/internal/api"
)

// UserClaims represents the JWT claims for an authenticated user
type UserClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTAuthConfig holds JWT authentication configuration. It is fixed at
// startup; toggling auth at runtime is not supported.
type JWTAuthConfig struct {
	// Enabled determines if JWT authentication is enforced
	Enabled bool

	// AdminUsername is the admin username from env
	AdminUsername string

	// AdminPasswordHash is the bcrypt hash of the admin password
	AdminPasswordHash string

	// JWTSecret is the secret key for signing JWT tokens
	JWTSecret string

	// JWTExpiryHours is the token expiry in hours
	JWTExpiryHours int

	// SkipPaths are paths that don't require authentication.
	// A trailing "*" matches by prefix.
	SkipPaths []string
}

// JWTAuthMiddleware provides JWT-based authentication
type JWTAuthMiddleware struct {
	config  *JWTAuthConfig
	skipMap map[string]bool
}

// ContextKey is a type for context keys
type ContextKey string

// UserContextKey is the context key for the authenticated user
const UserContextKey ContextKey = "user"

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(config *JWTAuthConfig) *JWTAuthMiddleware {
	m := &JWTAuthMiddleware{
		config:  config,
		skipMap: make(map[string]bool),
	}
	for _, path := range config.SkipPaths {
		m.skipMap[path] = true
	}
	return m
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if the provided password matches the hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken generates a JWT token for a user
func (m *JWTAuthMiddleware) GenerateToken(username string) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(m.config.JWTExpiryHours) * time.Hour)
	claims := UserClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "staffgraph",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.JWTSecret))
	return signed, expiresAt, err
}

// ValidateToken validates a JWT token and returns the claims
func (m *JWTAuthMiddleware) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.config.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// ValidateCredentials validates username and password
func (m *JWTAuthMiddleware) ValidateCredentials(username, password string) bool {
	// Constant-time comparison for the username
	if subtle.ConstantTimeCompare([]byte(username), []byte(m.config.AdminUsername)) != 1 {
		return false
	}
	return CheckPassword(password, m.config.AdminPasswordHash)
}

// Wrap wraps an http.Handler with JWT authentication
func (m *JWTAuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled || m.shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := m.extractToken(r)
		if tokenString == "" {
			m.unauthorized(w, "Missing authentication token")
			return
		}

		claims, err := m.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWTAuthMiddleware: Invalid token from %s: %v", r.RemoteAddr, err)
			m.unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *JWTAuthMiddleware) shouldSkipAuth(path string) bool {
	if m.skipMap[path] {
		return true
	}
	for skipPath := range m.skipMap {
		if strings.HasSuffix(skipPath, "*") && strings.HasPrefix(path, strings.TrimSuffix(skipPath, "*")) {
			return true
		}
	}
	return false
}

func (m *JWTAuthMiddleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	// Browsers cannot set headers on websocket dials; allow a query token.
	return r.URL.Query().Get("token")
}

func (m *JWTAuthMiddleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer realm=\"API\"")
	api.RespondError(w, http.StatusUnauthorized, message)
}

// GetUserFromContext returns the username from the request context
func GetUserFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(UserContextKey).(string); ok {
		return user
	}
	return ""
}
