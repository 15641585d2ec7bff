// internal/middleware/jwt.go
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"

	LoginURL = "/auth/login/"

	issuer = "yatube"
)

// Claims represents the JWT claims for our application
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Viewer is the authenticated user of a request.
type Viewer struct {
	ID       uuid.UUID
	Username string
}

// Sessions signs and checks session tokens.
type Sessions struct {
	secret     []byte
	expiration time.Duration
	secure     bool
}

func NewSessions(secret string, expiration time.Duration, secure bool) *Sessions {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), expiration: expiration, secure: secure}
}

// GenerateToken creates a new JWT token for the given user
func (s *Sessions) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates the provided JWT token. Failures are
// utils.ErrInvalidToken or utils.ErrUnauthorized AppErrors.
func (s *Sessions) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidToken, "invalid session token", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, utils.NewUnauthorizedError("session token rejected")
}

// Login sets the session cookie for user.
func (s *Sessions) Login(w http.ResponseWriter, user *models.User) error {
	token, err := s.GenerateToken(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.expiration.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout expires the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticate resolves the viewer from the session cookie or a Bearer
// header. Requests without a valid token continue anonymously.
func (s *Sessions) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			slog.Debug("ignoring invalid session token", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := SetViewerInContext(r.Context(), &Viewer{ID: claims.UserID, Username: claims.Username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireLogin redirects anonymous viewers to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetViewerFromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Define a custom context key type to avoid collisions
type contextKey string

const viewerKey contextKey = "viewer"

func SetViewerInContext(ctx context.Context, viewer *Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}

// GetViewerFromContext returns the authenticated viewer, if any.
func GetViewerFromContext(ctx context.Context) (*Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey).(*Viewer)
	return viewer, ok && viewer != nil
}
