package handler

import (
	"net/http"

	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/logger"
	"github.com/unigate-dev/unigate/internal/utils"
)

type Pinger interface {
	Ping() error
}

// Health reports liveness plus storage reachability.
func Health(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(); err != nil {
			logger.Log.Error("health check failed", "error", err)
			utils.WriteError(w, &errors.Error{
				Kind:       errors.KindUnavailable,
				Message:    "Storage unreachable",
				StatusCode: http.StatusServiceUnavailable,
			})
			return
		}
		utils.WriteMessage(w, http.StatusOK, "OK")
	}
}
