package health

import (
	"net/http"

	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/sirupsen/logrus"
)

const (
	ServiceName = "Password Complexity Checker"
	Version     = "2.0"
)

type status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HandleHealthCheck reports liveness for deployment probes.
func HandleHealthCheck(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		apierr.WriteJSON(logger, w, http.StatusOK, status{
			Status:  "healthy",
			Service: ServiceName,
			Version: Version,
		})
	}
}
