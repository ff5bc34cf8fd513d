package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/jwtauth"

	"github.com/jd-116/bulletin-board-api/env"
	"github.com/jd-116/bulletin-board-api/util"
)

// JWTManager contains the secret loaded from the environment
type JWTManager struct {
	Auth       *jwtauth.JWTAuth
	secret     []byte
	BypassAuth bool
}

// NewJWTManager creates a new JWTManager
// and loads the secret from the environment.
// The secret may be omitted when AUTH_BYPASS is set
func NewJWTManager() (*JWTManager, error) {
	// Try to see if the server should bypass authentication
	bypassAuth := env.GetBoolEnv("AUTH_BYPASS")

	jwtSecretStr, err := env.GetEnv("auth JWT secret key", "AUTH_JWT_SECRET")
	if err != nil {
		if bypassAuth {
			return NewJWTManagerFromSecret(nil, true), nil
		}
		return nil, err
	}

	// Parse the string into bytes
	encoding := base64.StdEncoding.WithPadding(base64.StdPadding)
	secretBytes, err := encoding.DecodeString(jwtSecretStr)
	if err != nil {
		return nil, err
	}

	return NewJWTManagerFromSecret(secretBytes, bypassAuth), nil
}

// NewJWTManagerFromSecret creates a JWTManager signing and verifying with the given secret
func NewJWTManagerFromSecret(secret []byte, bypassAuth bool) *JWTManager {
	// Create the instance of the auth used for middleware
	tokenAuth := jwtauth.New("HS256", secret, nil)

	return &JWTManager{
		Auth:       tokenAuth,
		secret:     secret,
		BypassAuth: bypassAuth,
	}
}

// IssueToken creates and signs a new bearer token for the given subject.
// A zero ttl issues a token that never expires
func (m *JWTManager) IssueToken(subject string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("cannot issue tokens without a secret")
	}

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
	}
	if ttl > 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}

	_, tokenString, err := m.Auth.Encode(claims)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

type key int

// BypassAuthContextKey is the key to access the BypassAuth boolean field
// on request contexts that are processed by the Authenticated middleware
const BypassAuthContextKey key = iota

// Authenticated handles seeking, verifying, and validating JWT tokens,
// sending appropriate status codes upon failure.
func (m *JWTManager) Authenticated() func(http.Handler) http.Handler {
	// Seek, verify and validate JWT tokens
	verifier := jwtauth.Verify(m.Auth, jwtauth.TokenFromHeader)
	return func(next http.Handler) http.Handler {
		if m.BypassAuth {
			// Skip authentication
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Attach a value to the context
				ctx := context.WithValue(r.Context(), BypassAuthContextKey, true)

				// Pass it through
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}

		// Compose the verifier and authenticator functions
		return verifier(authenticator(next))
	}
}

// Subject returns the subject of the verified token on the request context,
// or the empty string if there is none
func Subject(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}

	subject, _ := claims["sub"].(string)
	return subject
}

// authenticator sends an error response if token validation failed
func authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())

		if err != nil {
			unauthorized(w, r)
			return
		}

		if token == nil || !token.Valid {
			unauthorized(w, r)
			return
		}

		// Token is authenticated, pass it through
		next.ServeHTTP(w, r)
	})
}

// unauthorized sends a response message in the case that validation fails
func unauthorized(w http.ResponseWriter, r *http.Request) {
	util.ErrorWithCode(w, r, errors.New("user is not authorized to access resource"),
		http.StatusUnauthorized)
}
