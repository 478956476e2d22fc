package movement_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/condition"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
	"github.com/cory-johannsen/mazestrike/internal/game/movement"
)

var spec = actor.Spec{BaseSpeed: 2, TurnSpeed: 3, CollisionRadius: 0.2, Sensitivity: 1.5}

// openRoom is a 5x5 room with a 3x3 open interior.
var openRoom = grid.MustParseMaze(
	"#####",
	"#...#",
	"#...#",
	"#...#",
	"#####",
)

func TestResolve_ForwardAlongX(t *testing.T) {
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 1.5, 2.5, 0)
	res := r.Resolve(a, movement.Intent{Forward: true}, 0.5, openRoom)
	assert.InDelta(t, 2.5, res.X, 1e-9)
	assert.InDelta(t, 2.5, res.Y, 1e-9)
	assert.Equal(t, res.X, a.X)
}

func TestResolve_StrafeRight(t *testing.T) {
	r := movement.NewResolver(0)
	// Facing +x; right is +y in screen coordinates.
	a := actor.New(actor.KindPlayer, spec, 2.5, 1.5, 0)
	r.Resolve(a, movement.Intent{Right: true}, 0.5, openRoom)
	assert.InDelta(t, 2.5, a.X, 1e-9)
	assert.InDelta(t, 2.5, a.Y, 1e-9)
}

func TestResolve_BackCancelsForward(t *testing.T) {
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 2.5, 2.5, 0.3)
	res := r.Resolve(a, movement.Intent{Forward: true, Back: true}, 1, openRoom)
	assert.Equal(t, 2.5, res.X)
	assert.Equal(t, 2.5, res.Y)
}

func TestResolve_SlidesAlongWall(t *testing.T) {
	// Corridor open in x, walls above and below.
	corridor := grid.MustParseMaze(
		"######",
		"#....#",
		"######",
	)
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 1.5, 1.5, math.Pi/4)
	res := r.Resolve(a, movement.Intent{Forward: true}, 0.5, corridor)
	assert.Greater(t, res.X, 1.5)
	assert.Equal(t, 1.5, res.Y)
	assert.False(t, res.BlockedX)
	assert.True(t, res.BlockedY)
}

func TestResolve_BothAxesBlocked_NoOp(t *testing.T) {
	cell := grid.MustParseMaze(
		"###",
		"#.#",
		"###",
	)
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 1.5, 1.5, math.Pi/4)
	res := r.Resolve(a, movement.Intent{Forward: true}, 1, cell)
	assert.Equal(t, 1.5, res.X)
	assert.Equal(t, 1.5, res.Y)
	assert.True(t, res.BlockedX)
	assert.True(t, res.BlockedY)
}

func TestResolve_ImmobilizedDoesNotTranslate(t *testing.T) {
	r := movement.NewResolver(0)
	for _, e := range []condition.Effect{condition.Stun(time.Second), condition.Immobilize(time.Second)} {
		a := actor.New(actor.KindEnemy, spec, 2.5, 2.5, 0)
		a.ApplyEffect(e, 0)
		r.Resolve(a, movement.Intent{Forward: true, Right: true}, 1, openRoom)
		assert.Equal(t, 2.5, a.X, e.Kind.String())
		assert.Equal(t, 2.5, a.Y, e.Kind.String())
	}
}

func TestResolve_SlowedScalesDisplacement(t *testing.T) {
	r := movement.NewResolver(0)
	a := actor.New(actor.KindEnemy, spec, 1.5, 2.5, 0)
	a.ApplyEffect(condition.Slow(0.35, time.Second), 0)
	r.Resolve(a, movement.Intent{Forward: true}, 1, openRoom)
	assert.InDelta(t, 1.5+0.7, a.X, 1e-9)
}

func TestTurn_KeyboardScalesWithDt(t *testing.T) {
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 2.5, 2.5, 0)
	r.Turn(a, movement.Intent{TurnRight: true}, 0.1)
	assert.InDelta(t, 0.3, a.Angle, 1e-9)
	r.Turn(a, movement.Intent{TurnLeft: true}, 0.2)
	assert.InDelta(t, -0.3, a.Angle, 1e-9)
}

func TestTurn_PointerIgnoresDt(t *testing.T) {
	r := movement.NewResolver(0.01)
	a := actor.New(actor.KindPlayer, spec, 2.5, 2.5, 0)
	r.Turn(a, movement.Intent{PointerDX: 10}, 0)
	assert.InDelta(t, 10*0.01*1.5, a.Angle, 1e-9)
	b := actor.New(actor.KindPlayer, spec, 2.5, 2.5, 0)
	r.Turn(b, movement.Intent{PointerDX: 10}, 5)
	assert.InDelta(t, a.Angle, b.Angle, 1e-12)
}

func TestTurn_StunnedActorStillTurns(t *testing.T) {
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 2.5, 2.5, 0)
	a.ApplyEffect(condition.Stun(time.Second), 0)
	r.Resolve(a, movement.Intent{TurnRight: true}, 0.1, openRoom)
	assert.InDelta(t, 0.3, a.Angle, 1e-9)
}

func TestIntent_IsIdle(t *testing.T) {
	assert.True(t, movement.Intent{}.IsIdle())
	assert.False(t, movement.Intent{PointerDX: 1}.IsIdle())
	assert.False(t, movement.Intent{Back: true}.IsIdle())
}

func TestResolve_AxesCheckedAgainstStartPosition(t *testing.T) {
	// (2,1) and (1,2) are open; the diagonal cell (2,2) is a wall.
	maze := grid.MustParseMaze(
		"####",
		"#..#",
		"#.##",
		"####",
	)
	r := movement.NewResolver(0)
	a := actor.New(actor.KindPlayer, spec, 1.9, 1.9, math.Pi/4)
	// Speed 2 along 45 degrees gives dx == dy == 0.2.
	dt := 0.1 * math.Sqrt2
	res := r.Resolve(a, movement.Intent{Forward: true}, dt, maze)
	assert.False(t, res.BlockedX)
	assert.False(t, res.BlockedY)
	assert.InDelta(t, 2.1, res.X, 1e-9)
	assert.InDelta(t, 2.1, res.Y, 1e-9)
}

func TestPropertyResolve_AcceptedAxesAreOpen(t *testing.T) {
	maze := grid.MustParseMaze(
		"########",
		"#..#...#",
		"#.##.#.#",
		"#......#",
		"########",
	)
	r := movement.NewResolver(0)
	rapid.Check(t, func(t *rapid.T) {
		a := actor.New(actor.KindPlayer, spec, 1.5, 1.5, 0)
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			a.Angle = rapid.Float64Range(-10, 10).Draw(t, "angle")
			in := movement.Intent{
				Forward: rapid.Bool().Draw(t, "fwd"),
				Back:    rapid.Bool().Draw(t, "back"),
				Left:    rapid.Bool().Draw(t, "left"),
				Right:   rapid.Bool().Draw(t, "right"),
			}
			dt := rapid.Float64Range(0, 0.25).Draw(t, "dt")
			x0, y0 := a.X, a.Y
			res := r.Resolve(a, in, dt, maze)
			if a.X != x0 && !grid.IsOpen(maze, a.X, y0) {
				t.Fatalf("x step into wall at (%.3f, %.3f)", a.X, y0)
			}
			if a.Y != y0 && !grid.IsOpen(maze, x0, a.Y) {
				t.Fatalf("y step into wall at (%.3f, %.3f)", x0, a.Y)
			}
			if res.BlockedX && a.X != x0 {
				t.Fatalf("blocked x axis moved from %.3f to %.3f", x0, a.X)
			}
			if res.BlockedY && a.Y != y0 {
				t.Fatalf("blocked y axis moved from %.3f to %.3f", y0, a.Y)
			}
		}
	})
}
