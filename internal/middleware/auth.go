package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tubedash-backend/internal/models"
)

type contextKey string

const sessionKey contextKey = "session"

const revokedKeyPrefix = "session:revoked:"

// SessionAuth validates the session JWT the external auth provider
// issues. The token carries the user identity plus the upstream bearer
// token; this core never performs the OAuth handshake itself, it only
// consumes the result.
type SessionAuth struct {
	secret []byte
	redis  *redis.Client
}

func NewSessionAuth(secret string, redisClient *redis.Client) *SessionAuth {
	return &SessionAuth{secret: []byte(secret), redis: redisClient}
}

// GenerateToken issues a session JWT. Kept here so tests and the local
// development login stub can mint tokens the middleware accepts.
func (a *SessionAuth) GenerateToken(user models.SessionUser, accessToken string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"jti":          uuid.NewString(),
		"user_id":      user.ID.String(),
		"email":        user.Email,
		"name":         user.Name,
		"access_token": accessToken,
		"exp":          time.Now().Add(ttl).Unix(),
		"iat":          time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Require rejects requests without a valid, unrevoked session.
func (a *SessionAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, reason := a.sessionFromRequest(r)
		if session == nil {
			writeAuthError(w, reason)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// Optional attaches the session when a valid token is present and
// otherwise lets the request through as public traffic.
func (a *SessionAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, _ := a.sessionFromRequest(r); session != nil {
			r = r.WithContext(withSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

// Revoke marks the token's jti as dead for its remaining lifetime.
func (a *SessionAuth) Revoke(ctx context.Context, tokenStr string) error {
	token, err := a.parse(tokenStr)
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.ErrTokenInvalidClaims
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return jwt.ErrTokenInvalidId
	}

	ttl := time.Hour
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return a.redis.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (a *SessionAuth) parse(tokenStr string) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
}

func (a *SessionAuth) sessionFromRequest(r *http.Request) (*models.Session, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "Missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "Invalid authorization format"
	}

	token, err := a.parse(parts[1])
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, "Session has expired"
		}
		return nil, "Invalid session token"
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, "Invalid session token"
	}

	if jti, _ := claims["jti"].(string); jti != "" && a.redis != nil {
		exists, err := a.redis.Exists(r.Context(), revokedKeyPrefix+jti).Result()
		if err == nil && exists > 0 {
			return nil, "Session has been revoked"
		}
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, "Invalid user ID in session token"
	}

	session := &models.Session{
		User: models.SessionUser{ID: userID},
	}
	session.User.Email, _ = claims["email"].(string)
	session.User.Name, _ = claims["name"].(string)
	session.AccessToken, _ = claims["access_token"].(string)
	return session, ""
}

func withSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session attached by Require or Optional, or
// nil for public traffic.
func GetSession(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}

// GetUserID returns the authenticated user id or uuid.Nil.
func GetUserID(ctx context.Context) uuid.UUID {
	if s := GetSession(ctx); s != nil {
		return s.User.ID
	}
	return uuid.Nil
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.Response{Success: false, Error: message})
}
