package combat

import (
	"math"

	"github.com/cory-johannsen/mazestrike/internal/game/actor"
	"github.com/cory-johannsen/mazestrike/internal/game/grid"
)

// WallDistance walks the grid cells crossed by the ray from (ox, oy) along
// angle and returns the distance to the first wall boundary, capped at maxDist.
// A ray starting inside a wall returns 0.
func WallDistance(g grid.Grid, ox, oy, angle, maxDist float64) float64 {
	if !grid.IsOpen(g, ox, oy) {
		return 0
	}
	dx, dy := math.Cos(angle), math.Sin(angle)
	cx, cy := math.Floor(ox), math.Floor(oy)

	stepX, tDeltaX, tMaxX := 0.0, math.Inf(1), math.Inf(1)
	switch {
	case dx > 0:
		stepX, tDeltaX = 1, 1/dx
		tMaxX = (cx + 1 - ox) * tDeltaX
	case dx < 0:
		stepX, tDeltaX = -1, -1/dx
		tMaxX = (ox - cx) * tDeltaX
	}
	stepY, tDeltaY, tMaxY := 0.0, math.Inf(1), math.Inf(1)
	switch {
	case dy > 0:
		stepY, tDeltaY = 1, 1/dy
		tMaxY = (cy + 1 - oy) * tDeltaY
	case dy < 0:
		stepY, tDeltaY = -1, -1/dy
		tMaxY = (oy - cy) * tDeltaY
	}

	for {
		var t float64
		if tMaxX < tMaxY {
			cx += stepX
			t = tMaxX
			tMaxX += tDeltaX
		} else {
			cy += stepY
			t = tMaxY
			tMaxY += tDeltaY
		}
		if t >= maxDist {
			return maxDist
		}
		if g.CellAt(cx+0.5, cy+0.5) == grid.Wall {
			return t
		}
	}
}

// LineOfSight reports whether no wall lies on the straight segment from a to b.
func LineOfSight(g grid.Grid, a, b *actor.Actor) bool {
	dist := a.DistanceTo(b.X, b.Y)
	if dist == 0 {
		return true
	}
	angle := math.Atan2(b.Y-a.Y, b.X-a.X)
	return WallDistance(g, a.X, a.Y, angle, dist) >= dist
}

// rayEntry returns the distance along the unit ray (dx, dy) from (ox, oy) at
// which it enters a's collision circle, and whether it does at all.
func rayEntry(a *actor.Actor, ox, oy, dx, dy float64) (float64, bool) {
	vx, vy := a.X-ox, a.Y-oy
	along := vx*dx + vy*dy
	perp := math.Abs(vx*dy - vy*dx)
	r := a.Radius()
	if perp > r {
		return 0, false
	}
	if along < 0 && math.Hypot(vx, vy) > r {
		return 0, false
	}
	entry := along - math.Sqrt(r*r-perp*perp)
	if entry < 0 {
		entry = 0
	}
	return entry, true
}

// Raycast returns the nearest actor hostile to shooter whose collision circle
// the ray from (originX, originY) along angle enters within maxRange and before
// any wall. Equal distances go to the earliest candidate in world order.
func (l *Loop) Raycast(shooter *actor.Actor, originX, originY, angle, maxRange float64) *actor.Actor {
	limit := WallDistance(l.grid, originX, originY, angle, maxRange)
	dx, dy := math.Cos(angle), math.Sin(angle)

	var best *actor.Actor
	bestEntry := 0.0
	for _, a := range l.actors() {
		if a == shooter || !shooter.Hostile(a) {
			continue
		}
		entry, ok := rayEntry(a, originX, originY, dx, dy)
		if !ok || entry > limit {
			continue
		}
		if best == nil || entry < bestEntry {
			best, bestEntry = a, entry
		}
	}
	return best
}
