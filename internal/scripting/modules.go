package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.log and engine.geom tables into L.
// Log lines carry the script name.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState, script string) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L, script))
	L.SetField(engine, "geom", geomModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState, script string) *lua.LTable {
	logger := m.logger.With(zap.String("script", script))
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
	}
	for name, logFn := range levels {
		logFn := logFn
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1))
			return 0
		}))
	}
	return mod
}

func geomModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	// angle_to(x1, y1, x2, y2) returns the heading from the first point to the second.
	L.SetField(mod, "angle_to", L.NewFunction(func(L *lua.LState) int {
		x1, y1 := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		x2, y2 := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		L.Push(lua.LNumber(math.Atan2(y2-y1, x2-x1)))
		return 1
	}))
	L.SetField(mod, "distance", L.NewFunction(func(L *lua.LState) int {
		x1, y1 := float64(L.CheckNumber(1)), float64(L.CheckNumber(2))
		x2, y2 := float64(L.CheckNumber(3)), float64(L.CheckNumber(4))
		L.Push(lua.LNumber(math.Hypot(x2-x1, y2-y1)))
		return 1
	}))
	// wrap(a) maps an angle into (-pi, pi].
	L.SetField(mod, "wrap", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(wrapAngle(float64(L.CheckNumber(1)))))
		return 1
	}))
	return mod
}

// wrapAngle maps a into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	switch {
	case a <= -math.Pi:
		a += 2 * math.Pi
	case a > math.Pi:
		a -= 2 * math.Pi
	}
	return a
}
