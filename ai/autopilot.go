// Package ai steers the snake without a player. It reads snapshots only and
// answers with a direction, the same way a key press would.
package ai

import (
	"math"

	"gridsnake/game"
	"gridsnake/game/types"
)

// Autopilot picks among going straight, turning left and turning right.
type Autopilot struct {
	grid types.Grid
}

func NewAutopilot(grid types.Grid) *Autopilot {
	return &Autopilot{grid: grid}
}

// candidate is one possible move and how it scored.
type candidate struct {
	dir   types.Direction
	score float64
}

// Decide returns the best move for the next tick. It returns false when
// every move is fatal, leaving the current direction in place.
func (a *Autopilot) Decide(s game.Snapshot) (types.Direction, bool) {
	if len(s.Snake) == 0 || s.Phase != types.Running {
		return s.Direction, false
	}

	blocked := a.occupancy(s.Snake)
	head := s.Head()
	best := candidate{score: math.Inf(-1)}
	for _, dir := range []types.Direction{s.Direction, s.Direction.TurnLeft(), s.Direction.TurnRight()} {
		c := candidate{dir: dir, score: a.evaluate(head, dir, s, blocked)}
		if c.score > best.score {
			best = c
		}
	}

	if math.IsInf(best.score, -1) {
		return s.Direction, false
	}
	return best.dir, true
}

// evaluate scores moving one cell from head along dir.
func (a *Autopilot) evaluate(head types.Point, dir types.Direction, s game.Snapshot, blocked []bool) float64 {
	next := head.Add(dir.ToPoint())
	if a.isDanger(next, blocked) {
		return math.Inf(-1)
	}

	// Room to keep moving matters more than food: a pocket smaller than the
	// snake is a trap.
	area := a.reachable(next, blocked, len(s.Snake)+1)
	score := 0.0
	if area <= len(s.Snake) {
		score -= 100 + float64(len(s.Snake)-area)
	}

	if s.Food != nil {
		if next == *s.Food {
			score += 10
		} else {
			score += float64(manhattanDistance(head, *s.Food)-manhattanDistance(next, *s.Food)) * 2
		}
	}

	for _, d := range []types.Direction{types.Up, types.Down, types.Left, types.Right} {
		if !a.isDanger(next.Add(d.ToPoint()), blocked) {
			score += 0.25
		}
	}

	// Prefer keeping course on ties.
	if dir == s.Direction {
		score += 0.01
	}
	return score
}

func (a *Autopilot) isDanger(p types.Point, blocked []bool) bool {
	if !a.grid.Contains(p) {
		return true
	}
	return blocked[a.index(p)]
}

// reachable counts free cells connected to start, stopping at limit.
func (a *Autopilot) reachable(start types.Point, blocked []bool, limit int) int {
	seen := make([]bool, len(blocked))
	seen[a.index(start)] = true
	queue := []types.Point{start}
	count := 0
	for len(queue) > 0 && count < limit {
		p := queue[0]
		queue = queue[1:]
		count++
		for _, d := range []types.Direction{types.Up, types.Down, types.Left, types.Right} {
			n := p.Add(d.ToPoint())
			if a.isDanger(n, blocked) || seen[a.index(n)] {
				continue
			}
			seen[a.index(n)] = true
			queue = append(queue, n)
		}
	}
	return count
}

func (a *Autopilot) occupancy(body []types.Point) []bool {
	blocked := make([]bool, a.grid.Cells())
	for _, p := range body {
		if a.grid.Contains(p) {
			blocked[a.index(p)] = true
		}
	}
	return blocked
}

func (a *Autopilot) index(p types.Point) int {
	return p.Y*a.grid.Width + p.X
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// manhattanDistance is the number of moves between two cells on a walled grid.
func manhattanDistance(p1, p2 types.Point) int {
	return abs(p2.X-p1.X) + abs(p2.Y-p1.Y)
}
