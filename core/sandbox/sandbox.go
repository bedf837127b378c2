// Package sandbox wraps github.com/yuin/gopher-lua to run channel-defined
// scripts (transform, filter, and script-destination code) under the
// constraints the original implementation enforced on its mlua-based
// engine: a code-size ceiling, a deny-list of dangerous constructs, a
// memory/step ceiling, and a restricted standard library with a small set
// of ambient globals (log/hl7/json) bound in.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conduithq/conduit/core/hl7"
	lua "github.com/yuin/gopher-lua"
)

const (
	// MaxCodeSize matches the original implementation's MAX_CODE_SIZE.
	MaxCodeSize = 64 * 1024
	// MaxMemoryBytes matches the original implementation's
	// MAX_MEMORY_BYTES. gopher-lua has no native heap accounting
	// comparable to mlua's allocator hook, so this ceiling is enforced
	// indirectly via a registry-size cap (see newState) plus a context
	// deadline that aborts runaway loops regardless of memory growth.
	MaxMemoryBytes = 10 * 1024 * 1024

	defaultTimeout = 2 * time.Second
)

var dangerousPatterns = []struct {
	pattern string
	reason  string
}{
	{"loadstring", "Dynamic code loading is not allowed"},
	{"loadfile", "Loading files is not allowed"},
	{"dofile", "Executing files is not allowed"},
	{"load(", "Dynamic code loading is not allowed"},
	{"_G[", "Direct global table access is not allowed"},
	{"debug.", "Debug library is not allowed"},
	{"io.", "IO library is not allowed"},
	{"os.execute", "OS execution is not allowed"},
	{"os.remove", "File deletion is not allowed"},
	{"os.rename", "File renaming is not allowed"},
	{"os.exit", "Process termination is not allowed"},
}

// ValidateCode checks a script against the code-size ceiling and the
// deny-list before it is ever compiled.
func ValidateCode(code string) error {
	if len(code) > MaxCodeSize {
		return fmt.Errorf("script exceeds maximum size of %d bytes", MaxCodeSize)
	}
	for _, p := range dangerousPatterns {
		if strings.Contains(code, p.pattern) {
			return errors.New(p.reason)
		}
	}
	return nil
}

// Logger receives sanitized log output produced by a script's `log.*`
// calls.
type Logger interface {
	Log(level, message string)
}

// ScriptMessage is the subset of a message a script can read or rewrite.
type ScriptMessage struct {
	ID      string
	Content string
	Origin  string
}

// Engine runs validated Lua scripts against a ScriptMessage.
type Engine struct {
	timeout time.Duration
	logger  Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides the default per-invocation execution deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger directs `log.*` calls made by scripts to logger instead of
// being discarded.
func WithLogger(logger Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunTransform executes code wrapped as `local function run(msg) ... end
// return run(msg)`, matching the original processor's and script
// destination's invocation convention, and returns the (possibly
// rewritten) message content.
func (e *Engine) RunTransform(ctx context.Context, code string, msg ScriptMessage) (string, error) {
	if err := ValidateCode(code); err != nil {
		return "", err
	}

	L, cancel, err := e.newState(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	defer L.Close()

	msgTable := e.buildMsgTable(L, msg)
	L.SetGlobal("msg", msgTable)

	script := fmt.Sprintf("local function run(msg)\n%s\nend\nreturn run(msg)", code)
	if err := L.DoString(script); err != nil {
		return "", err
	}

	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case lua.LString:
		return string(v), nil
	case *lua.LNilType:
		return msg.Content, nil
	default:
		return ret.String(), nil
	}
}

// RunFilter evaluates condition as a bare Lua chunk (no wrapping
// function, matching the original filter processor) and interprets its
// return value as a boolean: nil is treated as false, and any non-boolean
// value is treated as true with a warning logged, matching the original's
// documented tradeoff.
func (e *Engine) RunFilter(ctx context.Context, condition string, msg ScriptMessage) (bool, error) {
	if err := ValidateCode(condition); err != nil {
		return false, err
	}

	L, cancel, err := e.newState(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()
	defer L.Close()

	msgTable := e.buildMsgTable(L, msg)
	L.SetGlobal("msg", msgTable)

	if err := L.DoString(condition); err != nil {
		return false, err
	}

	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case lua.LBool:
		return bool(v), nil
	case *lua.LNilType:
		return false, nil
	default:
		e.log("warn", "Filter returned non-boolean value. Treating as true (Pass).")
		return true, nil
	}
}

// newState builds a restricted *lua.LState: only base/string/table/math
// libraries are opened (no io, os, debug, package, or channel libs), the
// registry is capped to approximate the memory ceiling, dynamic-load
// globals left over from the base library are stripped, and a context
// deadline is wired in so gopher-lua aborts a runaway script.
func (e *Engine) newState(ctx context.Context) (*lua.LState, context.CancelFunc, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		RegistrySize:        1024,
		RegistryMaxSize:     MaxMemoryBytes / 1024, // coarse proxy for a heap ceiling
		IncludeGoStackTrace: false,
	})

	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(pair.fn), NRet: 0, Protect: true}, lua.LString(pair.name)); err != nil {
			L.Close()
			return nil, func() {}, err
		}
	}

	// strip the dynamic-load surface the base library otherwise exposes
	for _, name := range []string{"load", "loadstring", "loadfile", "dofile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	e.registerLog(L)
	e.registerHL7(L)
	e.registerJSON(L)
	e.registerClock(L)

	deadline := e.timeout
	if deadline <= 0 {
		deadline = defaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	L.SetContext(runCtx)

	return L, cancel, nil
}

func (e *Engine) buildMsgTable(L *lua.LState, msg ScriptMessage) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(msg.ID))
	t.RawSetString("content", lua.LString(msg.Content))
	t.RawSetString("origin", lua.LString(msg.Origin))
	t.RawSetString("set_content", L.NewFunction(func(l *lua.LState) int {
		newContent := l.CheckString(1)
		t.RawSetString("content", lua.LString(newContent))
		l.Push(lua.LString(newContent))
		return 1
	}))
	return t
}

func (e *Engine) log(level, message string) {
	if e.logger == nil {
		return
	}
	e.logger.Log(level, sanitizeLogMessage(message))
}
