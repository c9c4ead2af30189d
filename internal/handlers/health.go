package handlers

import (
	"time"

	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/http_wrappers"
	"github.com/xlml/bench-metrics/pkg/api"
)

const storagePingTimeout = 2 * time.Second

func (h *Handlers) HandleHealth(ctx *executioncontext.ExecutionContext, w http_wrappers.ResponseWrapper) {
	now := time.Now().UTC()
	response := api.HealthResponse{
		Status:     "healthy",
		Timestamp:  &now,
		Components: map[string]map[string]any{},
		Uptime:     time.Since(h.startedAt),
	}
	if h.serviceConfig != nil && h.serviceConfig.Service != nil {
		response.Version = h.serviceConfig.Service.Version
	}

	code := constants.HTTPCodeOK
	if h.storage != nil {
		component := map[string]any{"datasource": h.storage.GetDatasourceName(), "status": "healthy"}
		if err := h.storage.Ping(storagePingTimeout); err != nil {
			ctx.Logger.Error("Storage ping failed", constants.LOG_ERROR, err)
			component["status"] = "unhealthy"
			component["error"] = err.Error()
			response.Status = "unhealthy"
			code = constants.HTTPCodeServiceUnavailable
		}
		response.Components["storage"] = component
	}
	if h.runtime != nil {
		response.Components["runtime"] = map[string]any{"name": h.runtime.Name()}
	}

	w.WriteJSON(response, code)
}
