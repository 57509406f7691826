// Copyright (c) 2026 theNeighbourhood. All rights reserved.

package api

import (
	"net/http"

	"github.com/hybridworkplace/theneighbourhood/internal/platform/constants"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/postgres"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/redis"
	"github.com/hybridworkplace/theneighbourhood/internal/platform/respond"
)

// # Health Probes

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"
)

/*
Liveness reports that the process is up.

GET /healthz

Response:
  - 200: {status: "ok"} — always, as long as the process can serve HTTP
*/
func (server *Server) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus: healthStatusOK,
	})
}

/*
Readiness reports whether the server's backing stores are reachable.

GET /readyz

Response:
  - 200: {status: "ok", checks: {...}} — all dependencies healthy
  - 503: {status: "degraded", checks: {...}} — at least one dependency down
*/
func (server *Server) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := postgres.Ping(request.Context(), server.pool); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	} else {
		checks["postgres"] = healthStatusOK
	}

	if err := redis.Ping(request.Context(), server.redis); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	} else {
		checks["redis"] = healthStatusOK
	}

	status := healthStatusOK
	httpStatus := http.StatusOK
	if !healthy {
		status = healthStatusDegraded
		httpStatus = http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: checks,
	})
}
