package adminapi

import (
	"crypto/subtle"
	"strings"

	"github.com/conduithq/conduit/core/handler"
	"github.com/conduithq/conduit/core/response"
	"github.com/conduithq/conduit/core/router"
)

// handlers closes over Deps so every route method has access to the
// collaborators it needs without a package-level global.
type handlers struct {
	deps Deps
}

// authenticate enforces the bearer token configured as APIKey. Constant
// time comparison avoids leaking the key through response timing.
func (h *handlers) authenticate(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
	return func(ctx *router.Context) handler.Response {
		token := bearerToken(ctx.Request().Header.Get("Authorization"))
		if !validToken(h.deps.APIKey, token) {
			return response.Error(response.ErrUnauthorized.WithMessage("missing or invalid bearer token"))
		}
		return next(ctx)
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

func validToken(apiKey, token string) bool {
	if apiKey == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(token)) == 1
}
