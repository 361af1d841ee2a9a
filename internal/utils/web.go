package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/unigate-dev/unigate/internal/api"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValidate decodes a JSON body into dst and runs struct-tag validation.
func DecodeValidate(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return errors.Validation("Body is invalid json")
	}
	if err := validate.Struct(dst); err != nil {
		return errors.Validation("Required fields missing or malformed")
	}
	return nil
}

// WriteError writes err into the response envelope. Untyped errors are
// logged and surfaced as a generic 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		if _, ok := err.(*errors.Error); !ok {
			logger.Log.Error("internal error", "error", err)
			message = "Internal server error"
		}
	}
	writeEnvelope(w, status, api.Response{Success: false, Message: message})
}

// WriteData writes a success envelope with the given payload.
func WriteData(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, api.Response{Success: true, Data: data})
}

// WriteMessage writes a success envelope with a message and no payload.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, api.Response{Success: true, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, resp api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// GetIP extracts the client IP from RemoteAddr. Forwarding headers are not
// trusted; there is no reverse proxy in front of the service.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}
