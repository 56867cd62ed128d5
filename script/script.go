// Package script drives the cabinet controls from a Lua program. The
// program defines a global function frame(n) that is called once per
// display tick and returns a table of the buttons to hold, for example
//
//	function frame(n)
//	  if n == 120 then return {coin_left = true} end
//	  return {}
//	end
package script

import (
	"errors"
	"fmt"
	"os"

	"github.com/Andretti1967/asteroidino/emu"
	lua "github.com/yuin/gopher-lua"
)

// ErrNoFrameFunc is returned when a script does not define frame.
var ErrNoFrameFunc = errors.New("script does not define frame(n)")

// Script is a loaded input script. It is not safe for concurrent use.
type Script struct {
	name string
	L    *lua.LState
	fn   lua.LValue
}

// Load compiles and runs src once, then looks up frame.
func Load(name, src string) (*Script, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	fn := L.GetGlobal("frame")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoFrameFunc)
	}
	return &Script{name: name, L: L, fn: fn}, nil
}

// LoadFile loads a script from disk.
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Load(path, string(src))
}

// Frame calls frame(n) and returns the buttons it asked for. Unknown
// button names are an error.
func (s *Script) Frame(n uint64) (emu.Button, error) {
	err := s.L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(n))
	if err != nil {
		return 0, fmt.Errorf("%s: frame(%d): %w", s.name, n, err)
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return 0, nil
	case *lua.LTable:
		var buttons emu.Button
		var bad error
		v.ForEach(func(k, val lua.LValue) {
			if bad != nil || !lua.LVAsBool(val) {
				return
			}
			b, ok := emu.ParseButton(k.String())
			if !ok {
				bad = fmt.Errorf("%s: frame(%d): unknown button %q", s.name, n, k.String())
				return
			}
			buttons |= b
		})
		return buttons, bad
	default:
		return 0, fmt.Errorf("%s: frame(%d): expected a table, got %s", s.name, n, ret.Type())
	}
}

// Close releases the interpreter.
func (s *Script) Close() {
	s.L.Close()
}

// Autoplay returns a script that drops a coin at coinAt and presses start
// at startAt, both in display ticks. Each press is held for six ticks.
func Autoplay(coinAt, startAt uint64) string {
	return fmt.Sprintf(`local coin, start, hold = %d, %d, 6

function frame(n)
  local b = {}
  if n >= coin and n < coin + hold then b.coin_left = true end
  if n >= start and n < start + hold then b.start1 = true end
  return b
end
`, coinAt, startAt)
}
