package adminapi

import (
	"strconv"

	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
)

const defaultLogListSize = 100

// listLogs serves GET /api/logs, returning the shared in-memory log ring
// newest-first.
func (h *handlers) listLogs(ctx *router.Context) handler.Response {
	n := defaultLogListSize
	if raw := ctx.Request().URL.Query().Get("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}

	entries := h.deps.Logs.Recent(n)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return response.JSON(map[string]any{"logs": entries})
}
