package router

import (
	"net/http"
	"time"
)

// Context is the default handler.Context implementation. It delegates all
// context.Context methods to the request's own context and carries route
// parameters plus a small per-request value bag for middleware to stash
// things like the authenticated principal or a correlation id.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	values map[any]any
}

// newContext builds the default Context for a request, used by mux when no
// WithContextFactory option overrides it.
func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{w: w, r: r, params: params}
}

func (c *Context) Deadline() (deadline time.Time, ok bool) { return c.r.Context().Deadline() }

func (c *Context) Done() <-chan struct{} { return c.r.Context().Done() }

func (c *Context) Err() error { return c.r.Context().Err() }

// Value checks the per-request value bag first, then falls back to the
// underlying request context.
func (c *Context) Value(key any) any {
	if c.values != nil {
		if v, ok := c.values[key]; ok {
			return v
		}
	}
	return c.r.Context().Value(key)
}

// SetValue stashes a request-scoped value, typically from a middleware.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Request returns the *http.Request associated with the context.
func (c *Context) Request() *http.Request { return c.r }

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns the value of a named URL parameter, or "" if absent.
func (c *Context) Param(key string) string {
	if c.params == nil {
		return ""
	}
	return c.params[key]
}

// NewContext creates a new Context instance directly, for callers wiring a
// custom context factory around the default one (e.g. to add fields).
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return newContext(w, r, make(map[string]string))
}
