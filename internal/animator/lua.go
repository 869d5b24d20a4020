package animator

import (
	"fmt"
	"regexp"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/stlalpha/textmode/internal/types"
)

const luaBufferTypeName = "buffer"

// hexColorPattern matches the #rrggbb shorthand spec §4.8 requires scripts
// be able to write inline (e.g. set_fg(#ff8800)). gopher-lua has no
// such literal, so it is rewritten to a plain "r, g, b" triple in the
// script's source text before it ever reaches the Lua parser.
var hexColorPattern = regexp.MustCompile(`#([0-9a-fA-F]{6})`)

func expandHexColors(script string) string {
	return hexColorPattern.ReplaceAllStringFunc(script, func(m string) string {
		v, err := strconv.ParseUint(m[1:], 16, 32)
		if err != nil {
			return m
		}
		return fmt.Sprintf("%d, %d, %d", (v>>16)&0xff, (v>>8)&0xff, v&0xff)
	})
}

func registerBufferType(L *lua.LState) {
	mt := L.NewTypeMetatable(luaBufferTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), bufferMethods))
}

func pushBuffer(L *lua.LState, sb *scriptBuffer) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = sb
	L.SetMetatable(ud, L.GetTypeMetatable(luaBufferTypeName))
	return ud
}

// pushColor returns a color to Lua as ("palette", index) or ("rgb", r, g,
// b), letting a script branch on the first return value rather than
// guessing which fields are meaningful.
func pushColor(L *lua.LState, c types.AttributeColor) int {
	switch c.Kind {
	case types.ColorRGB:
		L.Push(lua.LString("rgb"))
		L.Push(lua.LNumber(c.R))
		L.Push(lua.LNumber(c.G))
		L.Push(lua.LNumber(c.B))
		return 4
	default:
		L.Push(lua.LString("palette"))
		L.Push(lua.LNumber(c.Index))
		return 2
	}
}

func checkBuffer(L *lua.LState, n int) *scriptBuffer {
	ud, ok := L.CheckUserData(n).Value.(*scriptBuffer)
	if !ok {
		L.ArgError(n, "buffer expected")
		return nil
	}
	return ud
}

var bufferMethods = map[string]lua.LGFunction{
	"width": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		L.Push(lua.LNumber(sb.dimensions().Width))
		return 1
	},
	"height": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		L.Push(lua.LNumber(sb.dimensions().Height))
		return 1
	},
	"gotoxy": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		sb.gotoxy(L.CheckInt(2), L.CheckInt(3))
		return 0
	},
	"caret_x": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		L.Push(lua.LNumber(sb.caret.X))
		return 1
	},
	"caret_y": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		L.Push(lua.LNumber(sb.caret.Y))
		return 1
	},
	"set_fg": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		if L.GetTop() >= 4 {
			sb.setFgRGB(uint8(L.CheckInt(2)), uint8(L.CheckInt(3)), uint8(L.CheckInt(4)))
		} else {
			sb.setFgPalette(uint8(L.CheckInt(2)))
		}
		return 0
	},
	"set_bg": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		if L.GetTop() >= 4 {
			sb.setBgRGB(uint8(L.CheckInt(2)), uint8(L.CheckInt(3)), uint8(L.CheckInt(4)))
		} else {
			sb.setBgPalette(uint8(L.CheckInt(2)))
		}
		return 0
	},
	"get_fg": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		return pushColor(L, sb.fg())
	},
	"get_bg": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		return pushColor(L, sb.bg())
	},
	"set_char": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		x, y := L.CheckInt(2), L.CheckInt(3)
		ch := []rune(L.CheckString(4))
		if len(ch) == 0 {
			return 0
		}
		sb.setChar(x, y, ch[0])
		return 0
	},
	"get_char": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		c := sb.getChar(L.CheckInt(2), L.CheckInt(3))
		L.Push(lua.LString(string(c.Ch)))
		return 1
	},
	"print": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		sb.print(L.CheckString(2))
		return 0
	},
	"clear": func(L *lua.LState) int {
		checkBuffer(L, 1).clear()
		return 0
	},
	"add_layer": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		sb.addLayer(L.CheckString(2), L.CheckInt(3), L.CheckInt(4))
		return 0
	},
	"layer_count": func(L *lua.LState) int {
		sb := checkBuffer(L, 1)
		L.Push(lua.LNumber(sb.layerCount()))
		return 1
	},
}
