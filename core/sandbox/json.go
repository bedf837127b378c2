package sandbox

import (
	"encoding/json"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// nowFunc is a seam so tests can freeze time; production code always
// calls time.Now.
var nowFunc = time.Now

func luaValueToJSON(v lua.LValue) (string, error) {
	goVal := toGoValue(v)
	b, err := json.Marshal(goVal)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LNilType:
		return nil
	case *lua.LTable:
		if isArray(val) {
			var arr []any
			val.ForEach(func(_, v lua.LValue) {
				arr = append(arr, toGoValue(v))
			})
			return arr
		}
		obj := make(map[string]any)
		val.ForEach(func(k, v lua.LValue) {
			obj[k.String()] = toGoValue(v)
		})
		return obj
	default:
		return v.String()
	}
}

func isArray(t *lua.LTable) bool {
	maxN := t.Len()
	count := 0
	isSeq := true
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if _, ok := k.(lua.LNumber); !ok {
			isSeq = false
		}
	})
	return isSeq && count == maxN && count > 0
}

func jsonToLuaValue(L *lua.LState, s string) (lua.LValue, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return goValueToLua(L, v), nil
}

func goValueToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for i, item := range val {
			t.RawSetInt(i+1, goValueToLua(L, item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, item := range val {
			t.RawSetString(k, goValueToLua(L, item))
		}
		return t
	default:
		return lua.LNil
	}
}
