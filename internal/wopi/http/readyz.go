package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, artifact catalogue reachability, token signer and session usage
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	wopisdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	wopisdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	artifacts store.Artifacts,
	sessions store.Sessions,
	dispatcher *service.Dispatcher,
	maxSessions int,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &wopisdk.HealthChecks{
			Artifacts: "ok",
			Signer:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := artifacts.Ping(r.Context()); err != nil {
			checks.Artifacts = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if dispatcher == nil || dispatcher.Tokens == nil {
			checks.Signer = "error: no token service"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// A full store still serves open sessions, so it does not fail readiness.
		if maxSessions > 0 {
			checks.Sessions = fmt.Sprintf("%d/%d", sessions.Len(), maxSessions)
		} else {
			checks.Sessions = fmt.Sprintf("%d", sessions.Len())
		}

		response := wopisdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
