package sandbox

import (
	"strings"
	"unicode"

	"github.com/conduithq/conduit/core/hl7"
	lua "github.com/yuin/gopher-lua"
)

// maxLogMessageLength matches the original lua_helpers::logging
// MAX_LOG_MESSAGE_LENGTH, bounding how much a script can inject into the
// channel's log buffer per call.
const maxLogMessageLength = 2048

// sanitizeLogMessage strips control characters (keeping tab), truncates
// to maxLogMessageLength, and escapes newlines/carriage returns so a
// script cannot forge additional log lines.
func sanitizeLogMessage(msg string) string {
	var b strings.Builder
	for _, r := range msg {
		if r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > maxLogMessageLength {
		safe = safe[:maxLogMessageLength]
	}
	safe = strings.ReplaceAll(safe, "\n", "\\n")
	safe = strings.ReplaceAll(safe, "\r", "\\r")
	return safe
}

// registerLog binds a `log` table with info/warn/error/debug functions
// that sanitize their argument before forwarding it to the Engine's
// configured Logger.
func (e *Engine) registerLog(L *lua.LState) {
	logTable := L.NewTable()
	for _, level := range []string{"info", "warn", "error", "debug"} {
		level := level
		logTable.RawSetString(level, L.NewFunction(func(l *lua.LState) int {
			msg := l.CheckString(1)
			e.log(level, msg)
			return 0
		}))
	}
	L.SetGlobal("log", logTable)
}

// registerHL7 binds an `hl7` table exposing `parse(content) -> table` and
// `to_json(content) -> string`, delegating to the shared core/hl7
// flattener so scripts and the HL7 pipeline processor agree on semantics
// (including last-segment-wins for repeats).
func (e *Engine) registerHL7(L *lua.LState) {
	hl7Table := L.NewTable()

	hl7Table.RawSetString("parse", L.NewFunction(func(l *lua.LState) int {
		content := l.CheckString(1)
		parsed := hl7.Parse(content)

		result := l.NewTable()
		for segment, fields := range parsed {
			fieldsTable := l.NewTable()
			for i, f := range fields {
				fieldsTable.RawSetInt(i+1, lua.LString(f))
			}
			result.RawSetString(segment, fieldsTable)
		}
		l.Push(result)
		return 1
	}))

	hl7Table.RawSetString("to_json", L.NewFunction(func(l *lua.LState) int {
		content := l.CheckString(1)
		out, err := hl7.ToJSON(content)
		if err != nil {
			l.RaiseError("hl7.to_json: %s", err)
			return 0
		}
		l.Push(lua.LString(out))
		return 1
	}))

	L.SetGlobal("hl7", hl7Table)
}

// registerJSON binds a `json` table exposing `encode(value) -> string`
// and `decode(json_string) -> value`.
func (e *Engine) registerJSON(L *lua.LState) {
	jsonTable := L.NewTable()

	jsonTable.RawSetString("encode", L.NewFunction(func(l *lua.LState) int {
		v := l.CheckAny(1)
		s, err := luaValueToJSON(v)
		if err != nil {
			l.RaiseError("json.encode: %s", err)
			return 0
		}
		l.Push(lua.LString(s))
		return 1
	}))

	jsonTable.RawSetString("decode", L.NewFunction(func(l *lua.LState) int {
		s := l.CheckString(1)
		v, err := jsonToLuaValue(l, s)
		if err != nil {
			l.RaiseError("json.decode: %s", err)
			return 0
		}
		l.Push(v)
		return 1
	}))

	L.SetGlobal("json", jsonTable)
}

// registerClock binds a frozen-at-invocation-start `date`/`clock` table
// so a script can read the current time without being able to busy-loop
// on wall-clock skew (each call returns the same instant).
func (e *Engine) registerClock(L *lua.LState) {
	frozen := nowFunc()

	clockTable := L.NewTable()
	clockTable.RawSetString("now", L.NewFunction(func(l *lua.LState) int {
		l.Push(lua.LNumber(frozen.Unix()))
		return 1
	}))
	clockTable.RawSetString("iso8601", L.NewFunction(func(l *lua.LState) int {
		l.Push(lua.LString(frozen.UTC().Format("2006-01-02T15:04:05Z")))
		return 1
	}))
	L.SetGlobal("clock", clockTable)
}
