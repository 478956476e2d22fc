package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/combat"
	"github.com/cory-johannsen/mazestrike/internal/scripting"
)

// DecideHook is the Lua global a behavior script defines:
//
//	function decide(self, view) return { forward = true, turn = 1, fire = false } end
//
// self carries id, x, y, angle, status and speed. view carries now (seconds),
// visible, distance, bearing and a player table with x, y, angle and status.
// The returned table may set forward, back, left, right, turn_left,
// turn_right and fire as booleans, and turn as a number whose sign picks the
// turn direction.
const DecideHook = "decide"

// Scripted is a combat.Controller backed by a Lua behavior script.
// A script error or a missing decide hook leaves the enemy idle for that frame.
type Scripted struct {
	mgr    *scripting.Manager
	script string
	logger *zap.Logger
}

// NewScripted returns a controller that calls DecideHook in script.
//
// Precondition: mgr and logger must be non-nil.
func NewScripted(mgr *scripting.Manager, script string, logger *zap.Logger) *Scripted {
	return &Scripted{mgr: mgr, script: script, logger: logger}
}

// Script returns the behavior script name.
func (s *Scripted) Script() string { return s.script }

// Decide implements combat.Controller.
func (s *Scripted) Decide(self *actor.Actor, v combat.View) combat.Decision {
	ret, err := s.mgr.CallHookFunc(s.script, DecideHook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{selfTable(L, self), viewTable(L, self, v)}
	})
	if err != nil {
		s.logger.Debug("behavior idled after script error",
			zap.String("script", s.script),
			zap.String("actor", self.ID),
		)
		return combat.Decision{}
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return combat.Decision{}
	}
	return decisionFrom(tbl)
}

func selfTable(L *lua.LState, a *actor.Actor) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(a.ID))
	L.SetField(t, "x", lua.LNumber(a.X))
	L.SetField(t, "y", lua.LNumber(a.Y))
	L.SetField(t, "angle", lua.LNumber(a.Angle))
	L.SetField(t, "status", lua.LString(a.Status.Kind().String()))
	L.SetField(t, "speed", lua.LNumber(a.EffectiveSpeed()))
	return t
}

func viewTable(L *lua.LState, self *actor.Actor, v combat.View) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "now", lua.LNumber(v.Now.Seconds()))
	L.SetField(t, "visible", lua.LBool(v.PlayerVisible))
	if v.Player != nil {
		p := L.NewTable()
		L.SetField(p, "x", lua.LNumber(v.Player.X))
		L.SetField(p, "y", lua.LNumber(v.Player.Y))
		L.SetField(p, "angle", lua.LNumber(v.Player.Angle))
		L.SetField(p, "status", lua.LString(v.Player.Status.Kind().String()))
		L.SetField(t, "player", p)
		L.SetField(t, "distance", lua.LNumber(self.DistanceTo(v.Player.X, v.Player.Y)))
		L.SetField(t, "bearing", lua.LNumber(self.BearingTo(v.Player.X, v.Player.Y)))
	}
	return t
}

func decisionFrom(t *lua.LTable) combat.Decision {
	var d combat.Decision
	d.Move.Forward = lua.LVAsBool(t.RawGetString("forward"))
	d.Move.Back = lua.LVAsBool(t.RawGetString("back"))
	d.Move.Left = lua.LVAsBool(t.RawGetString("left"))
	d.Move.Right = lua.LVAsBool(t.RawGetString("right"))
	d.Move.TurnLeft = lua.LVAsBool(t.RawGetString("turn_left"))
	d.Move.TurnRight = lua.LVAsBool(t.RawGetString("turn_right"))
	if turn, ok := t.RawGetString("turn").(lua.LNumber); ok {
		switch {
		case turn > 0:
			d.Move.TurnRight = true
		case turn < 0:
			d.Move.TurnLeft = true
		}
	}
	d.Fire = lua.LVAsBool(t.RawGetString("fire"))
	return d
}
