package adminapi

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
	"github.com/google/uuid"
)

const maxTestPayloadSize = 1 << 20

// testPayloadTypes whitelists the payload kinds the manual test-injection
// endpoint accepts.
var testPayloadTypes = map[string]bool{
	"hl7":  true,
	"fhir": true,
	"json": true,
	"xml":  true,
	"text": true,
	"raw":  true,
}

// createChannelRequest is the body of POST /api/channels.
type createChannelRequest struct {
	Channel        message.Channel `json:"channel"`
	FrontendSchema json.RawMessage `json:"frontend_schema,omitempty"`
}

func (h *handlers) createChannel(ctx *router.Context) handler.Response {
	var req createChannelRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		return response.Error(badRequest("invalid request body: " + err.Error()))
	}

	cfg := req.Channel
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if req.FrontendSchema != nil {
		cfg.FrontendSchema = req.FrontendSchema
	}

	if h.deps.Channels != nil {
		if err := h.deps.Channels.Save(ctx, &cfg); err != nil {
			return response.Error(fail(500, fmt.Errorf("save channel: %w", err)))
		}
	}

	if err := h.deps.Manager.StartChannel(ctx, cfg); err != nil {
		return response.Error(fail(500, fmt.Errorf("start channel: %w", err)))
	}

	return response.JSON(map[string]any{
		"status": "ok",
		"id":     cfg.ID,
	})
}

func (h *handlers) listChannels(ctx *router.Context) handler.Response {
	channels, err := h.deps.Channels.List(ctx)
	if err != nil {
		return response.Error(fail(500, fmt.Errorf("list channels: %w", err)))
	}
	return response.JSON(map[string]any{"channels": channels})
}

// channelStatus is the JSON-safe projection of channel.Stats: error values
// don't marshal meaningfully, so they're flattened to strings.
type channelStatus struct {
	ID           uuid.UUID `json:"id"`
	State        string    `json:"state"`
	StartedAt    string    `json:"started_at,omitempty"`
	ListenerErr  string    `json:"listener_error,omitempty"`
	ProcessorErr string    `json:"processor_error,omitempty"`
}

func (h *handlers) channelsStatus(ctx *router.Context) handler.Response {
	ids := h.deps.Manager.Channels()
	out := make([]channelStatus, 0, len(ids))
	for _, id := range ids {
		stats, err := h.deps.Manager.Stats(id)
		if err != nil {
			continue
		}
		cs := channelStatus{ID: id, State: stats.State.String()}
		if !stats.StartedAt.IsZero() {
			cs.StartedAt = stats.StartedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		if stats.ListenerErr != nil {
			cs.ListenerErr = stats.ListenerErr.Error()
		}
		if stats.ProcessorErr != nil {
			cs.ProcessorErr = stats.ProcessorErr.Error()
		}
		out = append(out, cs)
	}
	return response.JSON(map[string]any{"channels": out})
}

func (h *handlers) startChannel(ctx *router.Context) handler.Response {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(badRequest("invalid channel id"))
	}

	cfg, err := h.deps.Channels.Get(ctx, id)
	if err != nil {
		return response.Error(notFound("channel not found"))
	}

	if err := h.deps.Manager.StartChannel(ctx, *cfg); err != nil {
		return response.Error(fail(500, fmt.Errorf("start channel: %w", err)))
	}
	return response.JSON(map[string]any{"status": "ok"})
}

func (h *handlers) stopChannel(ctx *router.Context) handler.Response {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(badRequest("invalid channel id"))
	}

	if err := h.deps.Manager.StopChannel(ctx, id); err != nil {
		return response.Error(fail(500, fmt.Errorf("stop channel: %w", err)))
	}
	return response.JSON(map[string]any{"status": "ok"})
}

func (h *handlers) deleteChannel(ctx *router.Context) handler.Response {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(badRequest("invalid channel id"))
	}

	if err := h.deps.Manager.DeleteChannel(ctx, id); err != nil {
		return response.Error(fail(500, fmt.Errorf("delete channel: %w", err)))
	}
	return response.JSON(map[string]any{"status": "ok"})
}

type testChannelRequest struct {
	PayloadType string `json:"payload_type"`
	Payload     string `json:"payload"`
}

func (h *handlers) testChannel(ctx *router.Context) handler.Response {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return response.Error(badRequest("invalid channel id"))
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxTestPayloadSize+1))
	if err != nil {
		return response.Error(badRequest("failed to read request body"))
	}
	if len(body) > maxTestPayloadSize {
		return response.Error(response.ErrRequestEntityTooLarge.WithMessage("test payload exceeds 1 MB"))
	}

	var req testChannelRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return response.Error(badRequest("invalid request body: " + err.Error()))
	}
	if !testPayloadTypes[req.PayloadType] {
		return response.Error(badRequest("unsupported payload_type: " + req.PayloadType))
	}
	if req.Payload == "" {
		return response.Error(badRequest("payload must not be empty"))
	}

	status, err := h.deps.Manager.InjectMessage(ctx, id, req.Payload)
	if err != nil {
		return response.Error(fail(500, fmt.Errorf("inject message: %w", err)))
	}

	return response.JSON(map[string]any{
		"status":         "ok",
		"message_status": status,
	})
}
