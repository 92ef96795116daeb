package main

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jeffreysprompts/internal/observability"
	"jeffreysprompts/internal/store"
)

const userIDCookie = "user-id"

// identity is who this request acts as: the visitor cookie for anonymous
// traffic, or a registered user when a valid bearer token was sent.
type identity struct {
	UserID     string
	Registered bool
	User       *store.User
}

type identityKey string

const identityCtx identityKey = "identity"

func getIdentity(r *http.Request) identity {
	id, _ := r.Context().Value(identityCtx).(identity)
	return id
}

// VisitorIdentityMiddleware guarantees every request carries a stable
// pseudo-identity via the user-id cookie, issuing one on first contact.
func (app *application) VisitorIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var visitorID string
		if c, err := r.Cookie(userIDCookie); err == nil && c.Value != "" {
			visitorID = c.Value
		} else {
			visitorID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     userIDCookie,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), identityCtx, identity{UserID: visitorID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthTokenMiddleware upgrades the identity when a bearer token is
// present. A present-but-invalid token is rejected rather than silently
// downgraded to the visitor identity.
func (app *application) OptionalAuthTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Basic" {
			// Basic credentials are checked where admin access matters.
			next.ServeHTTP(w, r)
			return
		}
		if len(parts) != 2 || parts[0] != "Bearer" {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
			return
		}

		jwtToken, err := app.authenticator.ValidateAccessToken(parts[1])
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		claims, _ := jwtToken.Claims.(jwt.MapClaims)
		userID, _ := claims["sub"].(string)

		user, err := app.store.Users.GetByID(r.Context(), userID)
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtx, identity{
			UserID:     user.ID,
			Registered: true,
			User:       user,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) RequireRegisteredUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !getIdentity(r).Registered {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !app.isAdmin(r) {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isAdmin checks the request's basic-auth header against the configured
// admin credentials. Used both as middleware and inline, e.g. to decide
// whether a listing may include reported reviews.
func (app *application) isAdmin(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Basic" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	creds := strings.SplitN(string(decoded), ":", 2)
	if len(creds) != 2 {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(creds[0]), []byte(app.config.auth.basic.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(creds[1]), []byte(app.config.auth.basic.pass)) == 1
	return userOK && passOK && app.config.auth.basic.user != ""
}

func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if allow, retryAfter := app.rateLimiter.Allow(host); !allow {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				app.rateLimitExceededResponse(w, r, fmt.Sprintf("%d", seconds))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		// Label by the chi route pattern, not the raw path, so IDs in the
		// URL do not mint unbounded series.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		observability.ObserveHTTP(route, r.Method, ww.Status(), time.Since(start))
	})
}
