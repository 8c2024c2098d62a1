package game

import (
	"sync"
	"time"

	"gridsnake/game/entity"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/log"

	charmlog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Snapshot is a read-only, point-in-time view of the engine state.
// Snake and Food are copies; the renderer may keep them.
type Snapshot struct {
	Snake      []types.Point       `json:"snake"`
	Food       *types.Point        `json:"food"`
	Score      int                 `json:"score"`
	Phase      types.Phase         `json:"phase"`
	Difficulty types.Difficulty    `json:"difficulty"`
	Direction  types.Direction     `json:"direction"`
	Steps      int                 `json:"steps"`
	Collision  types.CollisionType `json:"collision"`
}

// Head returns the first segment of the snake.
func (s Snapshot) Head() types.Point {
	return s.Snake[0]
}

// Engine owns the authoritative game state. Every method is synchronous and
// safe to call from several goroutines; callers that need tick/intent ordering
// still have to serialize through a single owner (see package driver).
type Engine struct {
	mu sync.RWMutex

	grid         types.Grid
	snake        *entity.Snake
	pending      types.Direction
	food         *types.Point
	score        int
	phase        types.Phase
	difficulty   types.Difficulty
	steps        int
	collision    types.CollisionType
	gameID       string
	startTime    time.Time
	collisionMgr *manager.CollisionManager
	foodMgr      *manager.FoodManager
	logger       *charmlog.Logger
}

type options struct {
	seed       uint64
	difficulty types.Difficulty
	logger     *charmlog.Logger
}

// Option configures a new Engine
type Option func(*options)

// WithSeed fixes the food placement sequence. Zero means time-based.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

func WithDifficulty(d types.Difficulty) Option {
	return func(o *options) {
		o.difficulty = d
	}
}

func WithLogger(l *charmlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewEngine creates an engine in the Running phase with a single centered segment.
func NewEngine(opts ...Option) *Engine {
	o := options{difficulty: types.Easy}
	for _, opt := range opts {
		opt(&o)
	}
	if o.seed == 0 {
		o.seed = uint64(time.Now().UnixNano())
	}
	if o.logger == nil {
		o.logger = log.Logger()
	}

	grid := types.DefaultGrid()
	collisionMgr := manager.NewCollisionManager(grid)
	e := &Engine{
		grid:         grid,
		difficulty:   o.difficulty,
		collisionMgr: collisionMgr,
		foodMgr:      manager.NewFoodManager(grid, rand.New(rand.NewSource(o.seed)), collisionMgr),
		logger:       o.logger.With("component", "engine"),
	}
	e.reset()
	return e
}

// reset re-creates the initial round state, keeping difficulty. Caller holds mu.
func (e *Engine) reset() {
	e.snake = entity.NewSnake(e.grid.Center(), types.Up)
	e.pending = types.Up
	e.food = nil
	e.score = 0
	e.phase = types.Running
	e.steps = 0
	e.collision = types.NoCollision
	e.gameID = uuid.New().String()
	e.startTime = time.Now()
}

// SetDirection stages the direction for the next tick. It is ignored unless
// the game is running, and when d reverses the committed direction.
func (e *Engine) SetDirection(d types.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != types.Running || !d.Valid() {
		return false
	}
	if d == e.snake.Direction.Opposite() {
		return false
	}
	e.pending = d
	return true
}

// Tick advances the simulation by one step and returns the resulting state.
// Outside the Running phase it changes nothing.
func (e *Engine) Tick() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != types.Running {
		return e.snapshotLocked()
	}

	newHead := e.snake.GetHead().Add(e.pending.ToPoint())

	if collision := e.collisionMgr.CheckCollision(newHead, e.snake); collision != types.NoCollision {
		e.phase = types.GameOver
		e.collision = collision
		e.logger.Info("game over", "game", e.gameID, "collision", collision, "score", e.score, "length", e.snake.Len(), "steps", e.steps)
		return e.snapshotLocked()
	}

	e.steps++
	e.snake.Move(newHead)

	if e.collisionMgr.IsFoodCollision(newHead, e.food) {
		e.score += e.difficulty.Points()
		e.food = nil
		e.logger.Debug("food eaten", "game", e.gameID, "at", newHead, "score", e.score, "length", e.snake.Len())
	} else {
		e.snake.RemoveTail()
	}

	if e.food == nil {
		if food, ok := e.foodMgr.GenerateFood(e.snake); ok {
			e.food = &food
		} else {
			e.logger.Warn("no free cell for food", "game", e.gameID, "length", e.snake.Len())
		}
	}

	e.snake.Direction = e.pending
	return e.snapshotLocked()
}

// TogglePause switches between Running and Paused. GameOver is left alone.
func (e *Engine) TogglePause() types.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case types.Running:
		e.phase = types.Paused
	case types.Paused:
		e.phase = types.Running
	}
	return e.phase
}

// Restart starts a new round from any phase. Difficulty is kept.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	previous := e.gameID
	e.reset()
	e.logger.Debug("restart", "previous", previous, "game", e.gameID)
}

// SetDifficulty changes interval and reward for the ticks and meals that follow.
func (e *Engine) SetDifficulty(d types.Difficulty) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.difficulty = d
}

func (e *Engine) Difficulty() types.Difficulty {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.difficulty
}

// TickInterval is the period the scheduler must wait before the next tick.
func (e *Engine) TickInterval() time.Duration {
	return e.Difficulty().Interval()
}

func (e *Engine) Phase() types.Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// GameID identifies the current round.
func (e *Engine) GameID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gameID
}

// StartTime is when the current round began.
func (e *Engine) StartTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.startTime
}

func (e *Engine) Grid() types.Grid {
	return e.grid
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		Snake:      e.snake.Segments(),
		Score:      e.score,
		Phase:      e.phase,
		Difficulty: e.difficulty,
		Direction:  e.snake.Direction,
		Steps:      e.steps,
		Collision:  e.collision,
	}
	if e.food != nil {
		food := *e.food
		s.Food = &food
	}
	return s
}
