package adminapi

import (
	"fmt"
	"strconv"

	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
	"github.com/google/uuid"
)

const defaultMessageListLimit = 100

// listMessages serves GET /api/messages. A channel_id query parameter
// scopes the listing to one channel's history; without it, only errored
// messages across every channel are returned.
func (h *handlers) listMessages(ctx *router.Context) handler.Response {
	q := ctx.Request().URL.Query()

	if channelIDParam := q.Get("channel_id"); channelIDParam != "" {
		channelID, err := uuid.Parse(channelIDParam)
		if err != nil {
			return response.Error(badRequest("invalid channel_id"))
		}

		limit := defaultMessageListLimit
		if raw := q.Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		msgs, err := h.deps.Messages.ListByChannel(ctx, channelID, limit)
		if err != nil {
			return response.Error(fail(500, fmt.Errorf("list messages: %w", err)))
		}
		return response.JSON(map[string]any{"messages": msgs})
	}

	msgs, err := h.deps.Messages.ListErrored(ctx)
	if err != nil {
		return response.Error(fail(500, fmt.Errorf("list errored messages: %w", err)))
	}
	return response.JSON(map[string]any{"messages": msgs})
}

func (h *handlers) retryMessage(ctx *router.Context) handler.Response {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(badRequest("invalid message id"))
	}

	if err := h.deps.Manager.RetryMessage(ctx, id); err != nil {
		return response.Error(fail(500, fmt.Errorf("retry message: %w", err)))
	}
	return response.JSON(map[string]any{"status": "ok"})
}
