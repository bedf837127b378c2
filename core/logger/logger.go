package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls a loggable attribute out of a context.Context,
// returning ok=false when nothing relevant is present.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type config struct {
	level         slog.Level
	json          bool
	output        io.Writer
	attrs         []slog.Attr
	contextValues map[string]string
	extractors    []ContextExtractor
	handlerOpts   *slog.HandlerOptions
}

// Option configures a logger built with New.
type Option func(*config)

// WithLevel sets the minimum level records are emitted at.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithJSONFormatter switches the handler to JSON output.
func WithJSONFormatter() Option {
	return func(c *config) { c.json = true }
}

// WithOutput overrides the handler's destination writer (default stdout).
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithAttr attaches static attributes to every record the logger emits.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithContextValue logs the value found at ctx.Value(ctxKey) (if any)
// under attrKey, stringified with fmt's default formatting.
func WithContextValue(ctxKey, attrKey string) Option {
	return func(c *config) {
		if c.contextValues == nil {
			c.contextValues = make(map[string]string)
		}
		c.contextValues[ctxKey] = attrKey
	}
}

// WithContextExtractors adds custom logic for pulling request-scoped
// attributes out of a context.Context at log time.
func WithContextExtractors(fns ...ContextExtractor) Option {
	return func(c *config) { c.extractors = append(c.extractors, fns...) }
}

// WithHandlerOptions overrides the underlying slog.HandlerOptions passed
// to the text or JSON handler.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) { c.handlerOpts = opts }
}

// WithDevelopment configures a human-readable text logger at debug level,
// writing to stdout, tagged with appName.
func WithDevelopment(appName string) Option {
	return func(c *config) {
		c.json = false
		c.level = slog.LevelDebug
		c.attrs = append(c.attrs, slog.String("app", appName), slog.String("env", "development"))
	}
}

// WithProduction configures a JSON logger at info level, writing to
// stdout, tagged with appName.
func WithProduction(appName string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("app", appName), slog.String("env", "production"))
	}
}

// WithStaging configures a JSON logger at info level, writing to stdout,
// tagged with appName.
func WithStaging(appName string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("app", appName), slog.String("env", "staging"))
	}
}

// New builds a *slog.Logger from the given options. Context extractors
// registered via WithContextValue/WithContextExtractors run on every
// *Context log call (InfoContext, ErrorContext, ...), injecting
// request-scoped attributes without the caller repeating them at every
// call site.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := c.handlerOpts
	if handlerOpts == nil {
		handlerOpts = &slog.HandlerOptions{Level: c.level}
	}

	var base slog.Handler
	if c.json {
		base = slog.NewJSONHandler(c.output, handlerOpts)
	} else {
		base = slog.NewTextHandler(c.output, handlerOpts)
	}

	var handler slog.Handler = base
	if len(c.contextValues) > 0 || len(c.extractors) > 0 {
		handler = &contextHandler{Handler: base, contextValues: c.contextValues, extractors: c.extractors}
	}

	l := slog.New(handler)
	if len(c.attrs) > 0 {
		args := make([]any, len(c.attrs))
		for i, a := range c.attrs {
			args[i] = a
		}
		l = l.With(args...)
	}
	return l
}

// SetAsDefault installs l as the process-wide default logger, also
// redirecting the standard library's log package output.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// contextHandler decorates every record with attributes pulled from the
// call's context.Context before delegating to the wrapped handler.
type contextHandler struct {
	slog.Handler
	contextValues map[string]string
	extractors    []ContextExtractor
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for ctxKey, attrKey := range h.contextValues {
		if v := ctx.Value(ctxKey); v != nil {
			r.AddAttrs(slog.Any(attrKey, v))
		}
	}
	for _, extract := range h.extractors {
		if attr, ok := extract(ctx); ok {
			r.AddAttrs(attr)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), contextValues: h.contextValues, extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), contextValues: h.contextValues, extractors: h.extractors}
}
