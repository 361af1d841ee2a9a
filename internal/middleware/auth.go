package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/unigate-dev/unigate/internal/authz"
	"github.com/unigate-dev/unigate/internal/domain"
	internal_errors "github.com/unigate-dev/unigate/internal/errors"
	jwt_internal "github.com/unigate-dev/unigate/internal/jwt"
	"github.com/unigate-dev/unigate/internal/logger"
	"github.com/unigate-dev/unigate/internal/utils"
)

// RevocationCache is the read surface the middleware needs to reject
// tokens of accounts revoked after issue.
type RevocationCache interface {
	IsRevoked(userId domain.UserId) bool
}

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

type Auth struct {
	jwtService      jwt_internal.JwtService
	revocationCache RevocationCache
	secureCookies   bool
}

func NewAuth(jwtService jwt_internal.JwtService, revocationCache RevocationCache, secureCookies bool) *Auth {
	return &Auth{
		jwtService:      jwtService,
		revocationCache: revocationCache,
		secureCookies:   secureCookies,
	}
}

// NeedAuth requires a valid, unrevoked token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(nil)
}

// Require additionally checks the capability table for (role, resource,
// action). Target-role-dependent authority is re-checked in the service,
// through the same table.
func (a *Auth) Require(resource authz.Resource, action authz.Action) func(http.Handler) http.Handler {
	check := func(u *domain.User) bool { return authz.Can(u.Role, resource, action) }
	return a.auth(check)
}

// extractUser extracts and validates the user from the JWT in the request.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	// Cookie first (browser clients), then Authorization header.
	var tokenString string
	accessCookie, err := r.Cookie("accessToken")
	if err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	token, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	uidFloat, ok := claims["uid"].(float64)
	if !ok {
		return nil, errInvalidClaims
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, errInvalidClaims
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, errInvalidClaims
	}
	role := domain.Role(roleStr)
	if !role.Valid() {
		return nil, errInvalidClaims
	}

	user := &domain.User{
		Id:     int64(uidFloat),
		Email:  email,
		Role:   role,
		Status: domain.StatusApproved, // only approved accounts are issued tokens
	}

	if a.revocationCache != nil && a.revocationCache.IsRevoked(user.Id) {
		return nil, errRevoked
	}

	return user, nil
}

var (
	errNoToken       = errorString("no token")
	errInvalidClaims = errorString("invalid claims")
	errRevoked       = errorString("revoked")
)

type errorString string

func (e errorString) Error() string { return string(e) }

func (a *Auth) auth(check func(*domain.User) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				switch err {
				case errNoToken:
					utils.WriteError(w, internal_errors.Unauthorized("Please sign in"))
				case errRevoked:
					// Clear the cookie to force re-login
					http.SetCookie(w, &http.Cookie{
						Path:     "/",
						Name:     "accessToken",
						Value:    "",
						MaxAge:   -1,
						HttpOnly: true,
						Secure:   a.secureCookies,
						SameSite: http.SameSiteLaxMode,
					})
					utils.WriteError(w, internal_errors.Forbidden("Account access revoked"))
				case errInvalidClaims:
					logger.Log.Error("invalid jwt claims")
					utils.WriteError(w, internal_errors.Unauthorized("Invalid token"))
				default:
					utils.WriteError(w, err)
				}
				return
			}

			if check != nil && !check(user) {
				utils.WriteError(w, internal_errors.Forbidden("Access denied"))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the authenticated user, nil when absent.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
