package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	internal_errors "github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/middleware/ratelimiter"
	"github.com/unigate-dev/unigate/internal/utils"
)

// RateLimit limits requests per identity extracted by getIdentity.
// Administrative accounts bypass limits: approvals happen in bursts.
func RateLimit(rl *ratelimiter.Limiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := GetUserFromContext(r); user != nil &&
				(user.Role == "admin" || user.Role == "superadmin") {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			if !rl.Allow(identity) {
				utils.WriteError(w, &internal_errors.Error{
					Message:    "Rate limit exceeded, try again later",
					StatusCode: http.StatusTooManyRequests,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimit caps the combined request rate of an endpoint group.
func GlobalRateLimit(rl *ratelimiter.Limiter) func(http.Handler) http.Handler {
	return RateLimit(rl, func(r *http.Request) (string, error) { return "global", nil })
}

// GetIP delegates to utils.GetIP for limiter keying.
func GetIP(r *http.Request) (string, error) {
	return utils.GetIP(r)
}

// GetUserIDFromContext keys the limiter by authenticated user id.
func GetUserIDFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", errors.New("can't get user id")
	}
	return fmt.Sprintf("user_%d", user.Id), nil
}

// GetEmailFromBody extracts the email field from a JSON body for limiter
// keying, restoring the body so the handler can read it again.
func GetEmailFromBody(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.New("failed to read request body")
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	var data struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", internal_errors.Validation("Body is invalid json")
	}
	if data.Email == "" {
		return "", internal_errors.Validation("Email is required")
	}
	return data.Email, nil
}
