package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"famconomy-go/internal/config"
	"famconomy-go/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

type JWTAuth struct {
	secret   []byte
	issuer   string
	profiles ProfileSaver
	skipAuth bool
	mockUser User
	log      logger.Logger
}

type contextKey int

const (
	userIDKey contextKey = iota
	userKey
)

type User struct {
	ID        uint
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// Name joins first and last name for snapshot fields.
func (u User) Name() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

type ProfileSaver interface {
	UpsertProfile(ctx context.Context, userID uint, firstName, lastName, email, avatarURL string) error
}

type authClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
	jwt.RegisteredClaims
}

func NewJWTAuth(cfg config.AuthConfig, profiles ProfileSaver, log logger.Logger) *JWTAuth {
	return &JWTAuth{
		secret:   []byte(cfg.JWTSecret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		profiles: profiles,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:        cfg.MockUserID,
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			FirstName: strings.TrimSpace(cfg.MockUserFirstName),
			LastName:  strings.TrimSpace(cfg.MockUserLastName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
		},
		log: log,
	}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == 0 {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			a.saveProfile(r.Context(), user)
			ctx := WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if len(a.secret) == 0 {
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		user, ok := a.verify(token)
		if !ok {
			unauthorized(w)
			return
		}

		a.saveProfile(r.Context(), user)
		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *JWTAuth) verify(token string) (User, bool) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}

	var claims authClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, options...)
	if err != nil || !parsed.Valid {
		return User{}, false
	}

	userID, err := strconv.ParseUint(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || userID == 0 {
		return User{}, false
	}

	return User{
		ID:        uint(userID),
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		AvatarURL: claims.AvatarURL,
	}, true
}

func (a *JWTAuth) saveProfile(ctx context.Context, user User) {
	if a.profiles == nil {
		return
	}
	if err := a.profiles.UpsertProfile(ctx, user.ID, user.FirstName, user.LastName, user.Email, user.AvatarURL); err != nil {
		a.log.Warn("auth: upsert profile failed", "user_id", user.ID, "err", err)
	}
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, userIDKey, user.ID)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == 0 {
		return User{}, false
	}
	return user, true
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
