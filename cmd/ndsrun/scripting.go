// scripting.go - Lua automation console for input macros and frame stepping

package main

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/coldsilicon/ndscore/core"
)

var keyByName = map[string]core.Key{
	"A": core.KeyA, "B": core.KeyB, "X": core.KeyX, "Y": core.KeyY,
	"L": core.KeyL, "R": core.KeyR,
	"UP": core.KeyUp, "DOWN": core.KeyDown, "LEFT": core.KeyLeft, "RIGHT": core.KeyRight,
	"START": core.KeyStart, "SELECT": core.KeySelect,
}

// runScript executes a Lua file against a booted console, exposing an
// `nds` table of input and frame-stepping primitives — enough to drive a
// ROM past its boot screen or replay a fixed input macro before the
// interactive window opens.
func runScript(c *core.Console, path string) error {
	L := lua.NewState()
	defer L.Close()

	ndsTable := L.NewTable()
	L.SetField(ndsTable, "press", L.NewFunction(luaSetKey(c, true)))
	L.SetField(ndsTable, "release", L.NewFunction(luaSetKey(c, false)))
	L.SetField(ndsTable, "touch", L.NewFunction(luaTouch(c)))
	L.SetField(ndsTable, "release_touch", L.NewFunction(func(L *lua.LState) int {
		c.ReleaseScreen()
		return 0
	}))
	L.SetField(ndsTable, "frame", L.NewFunction(func(L *lua.LState) int {
		n := 1
		if L.GetTop() >= 1 {
			n = L.CheckInt(1)
		}
		for i := 0; i < n; i++ {
			if err := c.RunFrame(); err != nil {
				L.RaiseError("%v", err)
				return 0
			}
		}
		return 0
	}))
	L.SetGlobal("nds", ndsTable)

	return L.DoFile(path)
}

func luaSetKey(c *core.Console, held bool) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		key, ok := keyByName[name]
		if !ok {
			L.RaiseError("unknown key %q", name)
			return 0
		}
		c.SetKey(key, held)
		return 0
	}
}

func luaTouch(c *core.Console) lua.LGFunction {
	return func(L *lua.LState) int {
		x := L.CheckInt(1)
		y := L.CheckInt(2)
		c.PressScreen(x, y)
		return 0
	}
}
