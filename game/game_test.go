package game

import (
	"io"
	"reflect"
	"testing"

	"gridsnake/game/entity"
	"gridsnake/game/types"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
)

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithSeed(42), WithLogger(charmlog.New(io.Discard))}, opts...)
	return NewEngine(opts...)
}

// place overwrites the round state so a scenario can start mid-game.
func place(e *Engine, body []types.Point, dir types.Direction, food *types.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snake = &entity.Snake{Body: append([]types.Point(nil), body...), Direction: dir}
	e.pending = dir
	e.food = food
}

func pt(x, y int) types.Point {
	return types.Point{X: x, Y: y}
}

func TestNewEngineInitialState(t *testing.T) {
	e := newTestEngine()
	s := e.Snapshot()

	if !reflect.DeepEqual(s.Snake, []types.Point{pt(15, 15)}) {
		t.Fatalf("expected snake [(15,15)], got %v", s.Snake)
	}
	if s.Food != nil {
		t.Errorf("expected no food, got %v", *s.Food)
	}
	if s.Score != 0 {
		t.Errorf("expected score 0, got %d", s.Score)
	}
	if s.Phase != types.Running {
		t.Errorf("expected phase running, got %v", s.Phase)
	}
	if s.Direction != types.Up {
		t.Errorf("expected direction up, got %v", s.Direction)
	}
	if s.Difficulty != types.Easy {
		t.Errorf("expected easy difficulty, got %v", s.Difficulty)
	}
	if e.GameID() == "" {
		t.Error("expected a game id")
	}
}

func TestFirstTickMovesUpAndPlacesFood(t *testing.T) {
	e := newTestEngine()
	s := e.Tick()

	if !reflect.DeepEqual(s.Snake, []types.Point{pt(15, 14)}) {
		t.Fatalf("expected snake [(15,14)], got %v", s.Snake)
	}
	if s.Food == nil {
		t.Fatal("expected food to be placed")
	}
	if *s.Food == pt(15, 14) {
		t.Errorf("food placed on the snake at %v", *s.Food)
	}
	if !types.DefaultGrid().Contains(*s.Food) {
		t.Errorf("food out of bounds: %v", *s.Food)
	}
	if s.Score != 0 {
		t.Errorf("expected score 0, got %d", s.Score)
	}
	if s.Steps != 1 {
		t.Errorf("expected 1 step, got %d", s.Steps)
	}
}

func TestWallCollisionLeavesSnakeUntouched(t *testing.T) {
	e := newTestEngine()
	place(e, []types.Point{pt(0, 0)}, types.Up, nil)
	if !e.SetDirection(types.Left) {
		t.Fatal("expected left to be accepted")
	}

	s := e.Tick()

	if s.Phase != types.GameOver {
		t.Fatalf("expected game over, got %v", s.Phase)
	}
	if s.Collision != types.WallCollision {
		t.Errorf("expected wall collision, got %v", s.Collision)
	}
	if !reflect.DeepEqual(s.Snake, []types.Point{pt(0, 0)}) {
		t.Errorf("expected snake [(0,0)], got %v", s.Snake)
	}
	if s.Food != nil {
		t.Errorf("expected no food placed on collision, got %v", *s.Food)
	}
	if s.Direction != types.Up {
		t.Errorf("committed direction must not change on collision, got %v", s.Direction)
	}
}

func TestSelfCollisionIncludesTail(t *testing.T) {
	e := newTestEngine()
	// Head at (5,5) moving left; turning down lands on the tail at (5,6).
	place(e, []types.Point{pt(5, 5), pt(6, 5), pt(6, 6), pt(5, 6)}, types.Left, nil)
	e.SetDirection(types.Down)

	s := e.Tick()

	if s.Phase != types.GameOver {
		t.Fatalf("expected game over, got %v", s.Phase)
	}
	if s.Collision != types.SelfCollision {
		t.Errorf("expected self collision, got %v", s.Collision)
	}
	if len(s.Snake) != 4 {
		t.Errorf("expected snake unchanged with 4 segments, got %v", s.Snake)
	}
}

func TestEatingGrowsAndScores(t *testing.T) {
	e := newTestEngine()
	food := pt(6, 5)
	place(e, []types.Point{pt(5, 5)}, types.Right, &food)

	s := e.Tick()

	if s.Score != 2 {
		t.Errorf("expected score 2, got %d", s.Score)
	}
	if !reflect.DeepEqual(s.Snake, []types.Point{pt(6, 5), pt(5, 5)}) {
		t.Fatalf("expected snake [(6,5),(5,5)], got %v", s.Snake)
	}
	if s.Food == nil {
		t.Fatal("expected new food")
	}
	if *s.Food == pt(6, 5) || *s.Food == pt(5, 5) {
		t.Errorf("new food overlaps the snake: %v", *s.Food)
	}
}

func TestDifficultyChangeAffectsOnlyFutureMeals(t *testing.T) {
	e := newTestEngine()
	food := pt(6, 5)
	place(e, []types.Point{pt(5, 5)}, types.Right, &food)
	e.Tick()

	e.SetDifficulty(types.Hard)
	if got := e.Snapshot().Score; got != 2 {
		t.Fatalf("difficulty change altered score: %d", got)
	}
	if got := e.TickInterval(); got != types.Hard.Interval() {
		t.Errorf("expected interval %v, got %v", types.Hard.Interval(), got)
	}

	next := pt(7, 5)
	e.mu.Lock()
	e.food = &next
	e.mu.Unlock()
	s := e.Tick()

	if s.Score != 8 {
		t.Errorf("expected score 2+6=8, got %d", s.Score)
	}
}

func TestReverseGuard(t *testing.T) {
	e := newTestEngine()
	place(e, []types.Point{pt(5, 5)}, types.Right, nil)

	if e.SetDirection(types.Left) {
		t.Error("expected reversing to be rejected")
	}
	if e.pending != types.Right {
		t.Errorf("pending direction changed to %v", e.pending)
	}
	if !e.SetDirection(types.Down) {
		t.Error("expected down to be accepted")
	}
	if e.pending != types.Down {
		t.Errorf("expected pending down, got %v", e.pending)
	}
}

func TestReverseGuardUsesCommittedDirection(t *testing.T) {
	e := newTestEngine()
	place(e, []types.Point{pt(5, 5), pt(5, 6)}, types.Up, nil)

	if !e.SetDirection(types.Left) {
		t.Fatal("expected left to be accepted")
	}
	// Down reverses the committed direction even though pending is now left.
	if e.SetDirection(types.Down) {
		t.Error("expected down to be rejected while committed direction is up")
	}
	// Right reverses pending but not committed: accepted, last write wins.
	if !e.SetDirection(types.Right) {
		t.Error("expected right to be accepted")
	}

	s := e.Tick()
	if s.Head() != pt(6, 5) {
		t.Errorf("expected head (6,5), got %v", s.Head())
	}
	if s.Direction != types.Right {
		t.Errorf("expected committed right, got %v", s.Direction)
	}
	if e.SetDirection(types.Left) {
		t.Error("expected left to be rejected after committing right")
	}
}

func TestPauseBlocksTicksAndTurns(t *testing.T) {
	e := newTestEngine()
	before := e.Snapshot()

	if got := e.TogglePause(); got != types.Paused {
		t.Fatalf("expected paused, got %v", got)
	}
	if e.SetDirection(types.Left) {
		t.Error("expected direction change to be ignored while paused")
	}
	s := e.Tick()
	if !reflect.DeepEqual(s.Snake, before.Snake) || s.Steps != 0 {
		t.Errorf("tick advanced while paused: %+v", s)
	}
	if s.Phase != types.Paused {
		t.Errorf("expected paused, got %v", s.Phase)
	}
}

func TestTogglePauseTwiceIsIdentity(t *testing.T) {
	e := newTestEngine()
	e.Tick()
	e.Tick()
	before := e.Snapshot()

	e.TogglePause()
	e.TogglePause()

	if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("expected identical snapshots, before %+v after %+v", before, after)
	}
}

func TestTogglePauseIgnoredOnGameOver(t *testing.T) {
	e := newTestEngine()
	place(e, []types.Point{pt(15, 0)}, types.Up, nil)
	e.Tick()

	if got := e.TogglePause(); got != types.GameOver {
		t.Errorf("expected game over to persist, got %v", got)
	}
	if e.SetDirection(types.Left) {
		t.Error("expected direction change to be ignored after game over")
	}
}

func TestRestartResetsExceptDifficulty(t *testing.T) {
	fresh := newTestEngine().Snapshot()

	for _, setup := range []struct {
		name string
		run  func(e *Engine)
	}{
		{"running", func(e *Engine) { e.Tick(); e.Tick() }},
		{"paused", func(e *Engine) { e.Tick(); e.TogglePause() }},
		{"game over", func(e *Engine) {
			place(e, []types.Point{pt(15, 0)}, types.Up, nil)
			e.Tick()
		}},
	} {
		t.Run(setup.name, func(t *testing.T) {
			e := newTestEngine()
			food := pt(15, 14)
			place(e, []types.Point{pt(15, 15)}, types.Up, &food)
			e.Tick()
			e.SetDifficulty(types.Medium)
			setup.run(e)
			oldID := e.GameID()

			e.Restart()
			got := e.Snapshot()

			want := fresh
			want.Difficulty = types.Medium
			if !reflect.DeepEqual(got, want) {
				t.Errorf("expected %+v, got %+v", want, got)
			}
			if e.GameID() == oldID {
				t.Error("expected a new game id after restart")
			}
			if e.pending != types.Up {
				t.Errorf("expected pending direction up, got %v", e.pending)
			}
		})
	}
}

func TestSameSeedSameFood(t *testing.T) {
	a := newTestEngine(WithSeed(7))
	b := newTestEngine(WithSeed(7))

	for i := 0; i < 10; i++ {
		sa, sb := a.Tick(), b.Tick()
		if !reflect.DeepEqual(sa, sb) {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, sa, sb)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine()
	s := e.Tick()
	s.Snake[0] = pt(-1, -1)
	*s.Food = pt(-1, -1)

	again := e.Snapshot()
	if again.Snake[0] == pt(-1, -1) || *again.Food == pt(-1, -1) {
		t.Error("snapshot shares memory with the engine")
	}
}

// TestInvariantsUnderRandomPlay drives the engine with random turns and checks
// the state invariants after every tick.
func TestInvariantsUnderRandomPlay(t *testing.T) {
	e := newTestEngine(WithSeed(99))
	rng := rand.New(rand.NewSource(1234))
	grid := types.DefaultGrid()
	rounds := 0

	for i := 0; i < 20000; i++ {
		before := e.Snapshot()
		if before.Phase == types.GameOver {
			rounds++
			e.Restart()
			continue
		}
		if rng.Intn(3) == 0 {
			e.SetDirection(types.Direction(rng.Intn(4)))
		}
		if rng.Intn(5) == 0 {
			e.SetDifficulty(types.Difficulties[rng.Intn(len(types.Difficulties))])
		}

		pending := e.pending
		after := e.Tick()

		if after.Phase == types.GameOver {
			if !reflect.DeepEqual(after.Snake, before.Snake) || after.Score != before.Score {
				t.Fatalf("collision mutated state: before %+v after %+v", before, after)
			}
			continue
		}

		seen := make(map[types.Point]bool, len(after.Snake))
		for _, p := range after.Snake {
			if !grid.Contains(p) {
				t.Fatalf("segment out of bounds: %v", p)
			}
			if seen[p] {
				t.Fatalf("duplicate segment %v in %v", p, after.Snake)
			}
			seen[p] = true
		}
		if after.Food != nil {
			if !grid.Contains(*after.Food) {
				t.Fatalf("food out of bounds: %v", *after.Food)
			}
			if seen[*after.Food] {
				t.Fatalf("food %v overlaps snake", *after.Food)
			}
		}

		wantHead := before.Head().Add(pending.ToPoint())
		if after.Head() != wantHead {
			t.Fatalf("expected head %v, got %v", wantHead, after.Head())
		}
		ate := before.Food != nil && *before.Food == wantHead
		switch {
		case ate && (len(after.Snake) != len(before.Snake)+1 || after.Score != before.Score+after.Difficulty.Points()):
			t.Fatalf("growth law violated: before %+v after %+v", before, after)
		case !ate && (len(after.Snake) != len(before.Snake) || after.Score != before.Score):
			t.Fatalf("plain move changed length or score: before %+v after %+v", before, after)
		}
	}

	if rounds == 0 {
		t.Error("expected random play to end at least one round")
	}
}

// serpentine lists every cell of g row by row, alternating direction, so
// consecutive cells are adjacent.
func serpentine(g types.Grid) []types.Point {
	cells := make([]types.Point, 0, g.Cells())
	for y := 0; y < g.Height; y++ {
		for i := 0; i < g.Width; i++ {
			x := i
			if y%2 == 1 {
				x = g.Width - 1 - i
			}
			cells = append(cells, pt(x, y))
		}
	}
	return cells
}

func TestEatingLastFreeCellLeavesFoodAbsent(t *testing.T) {
	e := newTestEngine()
	cells := serpentine(e.Grid())
	food := cells[0]
	// Head at (1,0) heading left into the only free cell.
	place(e, cells[1:], types.Left, &food)

	s := e.Tick()
	if s.Phase != types.Running {
		t.Fatalf("expected game to continue, got %v (%v)", s.Phase, s.Collision)
	}
	if len(s.Snake) != e.Grid().Cells() {
		t.Errorf("expected snake to fill the grid (%d), got %d", e.Grid().Cells(), len(s.Snake))
	}
	if s.Head() != food {
		t.Errorf("expected head on the eaten cell %v, got %v", food, s.Head())
	}
	if s.Food != nil {
		t.Errorf("expected food absent on a full grid, got %v", *s.Food)
	}
	if s.Score != types.Easy.Points() {
		t.Errorf("expected score %d, got %d", types.Easy.Points(), s.Score)
	}
}
