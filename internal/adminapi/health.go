package adminapi

import (
	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
)

// health serves GET /api/health, the one route exempt from bearer-token
// auth so load balancers and orchestrators can probe it unauthenticated.
func (h *handlers) health(ctx *router.Context) handler.Response {
	if h.deps.Healthcheck == nil {
		return response.JSON(map[string]any{"status": "ok"})
	}

	if err := h.deps.Healthcheck(ctx); err != nil {
		return response.JSONWithStatus(map[string]any{
			"status": "error",
			"error":  err.Error(),
		}, 503)
	}

	return response.JSON(map[string]any{"status": "ok"})
}
