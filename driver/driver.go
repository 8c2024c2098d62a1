// Package driver schedules engine ticks and serializes every engine call
// onto one goroutine.
package driver

import (
	"context"
	"errors"
	"sync"
	"time"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/input"
	"gridsnake/log"

	charmlog "github.com/charmbracelet/log"
)

// intentBuffer is how many intents may queue up between two loop iterations.
const intentBuffer = 16

var ErrAlreadyRunning = errors.New("driver: already running")

// Frame is a published snapshot tagged with the round it belongs to. The ID
// is taken when the frame is produced, so a round's last frame keeps its ID
// even when the next round has already started.
type Frame struct {
	GameID   string
	Snapshot game.Snapshot
}

// Pilot steers the snake in place of a player.
type Pilot interface {
	Decide(s game.Snapshot) (types.Direction, bool)
}

// Driver owns the tick timer and is the only writer of the engine while Run
// is active. Frontends submit intents and read snapshots.
type Driver struct {
	engine      *game.Engine
	clock       Clock
	pilot       Pilot
	autoRestart bool
	stats       *manager.StatsManager
	logger      *charmlog.Logger

	intents chan input.Intent

	mutex       sync.RWMutex
	isRunning   bool
	subscribers map[int]chan Frame
	nextSubID   int

	timer Timer
	armed bool
}

type Option func(*Driver)

func WithClock(c Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithPilot lets p choose the direction before every tick.
func WithPilot(p Pilot) Option {
	return func(d *Driver) {
		d.pilot = p
	}
}

// WithAutoRestart starts a new round as soon as one ends.
func WithAutoRestart(enabled bool) Option {
	return func(d *Driver) {
		d.autoRestart = enabled
	}
}

func WithStats(sm *manager.StatsManager) Option {
	return func(d *Driver) {
		d.stats = sm
	}
}

func WithLogger(l *charmlog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

func New(engine *game.Engine, opts ...Option) *Driver {
	d := &Driver{
		engine:      engine,
		clock:       RealClock(),
		stats:       manager.NewStatsManager(),
		logger:      log.Logger(),
		intents:     make(chan input.Intent, intentBuffer),
		subscribers: make(map[int]chan Frame),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "driver")
	return d
}

// Submit queues an intent for the loop. It never blocks; when the queue is
// full the intent is dropped and false is returned.
func (d *Driver) Submit(in input.Intent) bool {
	select {
	case d.intents <- in:
		return true
	default:
		d.logger.Warn("intent dropped, queue full", "intent", in)
		return false
	}
}

// Snapshot returns the current engine state.
func (d *Driver) Snapshot() game.Snapshot {
	return d.engine.Snapshot()
}

// Stats returns the session results recorded so far.
func (d *Driver) Stats() *manager.StatsManager {
	return d.stats
}

// GameID identifies the round currently being played.
func (d *Driver) GameID() string {
	return d.engine.GameID()
}

// Subscribe returns a channel that receives a frame after every tick and
// every intent that changed something. A slow reader only sees the latest one.
func (d *Driver) Subscribe() (<-chan Frame, func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	id := d.nextSubID
	d.nextSubID++
	ch := make(chan Frame, 1)
	d.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mutex.Lock()
			defer d.mutex.Unlock()
			delete(d.subscribers, id)
			close(ch)
		})
	}
}

// Run drives the engine until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	d.mutex.Lock()
	if d.isRunning {
		d.mutex.Unlock()
		return ErrAlreadyRunning
	}
	d.isRunning = true
	d.mutex.Unlock()

	defer func() {
		d.mutex.Lock()
		d.isRunning = false
		d.mutex.Unlock()
	}()

	d.timer = d.clock.NewTimer(d.engine.TickInterval())
	d.armed = true
	defer d.timer.Stop()
	d.syncTimer()

	d.logger.Info("loop started", "game", d.engine.GameID(), "difficulty", d.engine.Difficulty())
	d.publishCurrent()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("loop stopped", "game", d.engine.GameID())
			return nil
		case in := <-d.intents:
			if d.apply(in) {
				d.syncTimer()
				d.publishCurrent()
			}
		case <-d.timer.C():
			d.armed = false
			// Intents that arrived before this tick began must shape it.
			d.drainIntents()
			d.step()
		}
	}
}

func (d *Driver) drainIntents() {
	for {
		select {
		case in := <-d.intents:
			d.apply(in)
		default:
			return
		}
	}
}

// apply performs one intent. The caller resyncs the timer and publishes.
func (d *Driver) apply(in input.Intent) bool {
	if !input.Apply(d.engine, in) {
		d.logger.Debug("intent ignored", "intent", in)
		return false
	}
	d.logger.Debug("intent applied", "intent", in)
	return true
}

// step runs one tick, handles the end of a round and re-arms the timer with
// the interval of the current difficulty.
func (d *Driver) step() {
	if d.pilot != nil && d.engine.Phase() == types.Running {
		if dir, ok := d.pilot.Decide(d.engine.Snapshot()); ok {
			d.engine.SetDirection(dir)
		}
	}

	before := d.engine.Phase()
	gameID, startTime := d.engine.GameID(), d.engine.StartTime()
	s := d.engine.Tick()

	if before == types.Running && s.Phase == types.GameOver {
		d.stats.AddGame(manager.GameRecord{
			GameID:     gameID,
			StartTime:  startTime,
			EndTime:    time.Now(),
			Score:      s.Score,
			Length:     len(s.Snake),
			Steps:      s.Steps,
			Difficulty: s.Difficulty,
			Collision:  s.Collision,
		})
		summary := d.stats.Summary()
		d.logger.Info("round finished", "game", gameID, "score", s.Score, "games", summary.GamesPlayed, "best", summary.MaxScore)
		if d.autoRestart {
			d.publish(Frame{GameID: gameID, Snapshot: s})
			d.engine.Restart()
			gameID, s = d.engine.GameID(), d.engine.Snapshot()
		}
	}
	d.syncTimer()
	d.publish(Frame{GameID: gameID, Snapshot: s})
}

// syncTimer arms the timer while the game runs and disarms it otherwise.
// An armed timer is left alone, so a difficulty change never reschedules a
// pending tick.
func (d *Driver) syncTimer() {
	running := d.engine.Phase() == types.Running
	switch {
	case running && !d.armed:
		d.timer.Reset(d.engine.TickInterval())
		d.armed = true
	case !running && d.armed:
		d.timer.Stop()
		d.armed = false
	}
}

func (d *Driver) publishCurrent() {
	d.publish(Frame{GameID: d.engine.GameID(), Snapshot: d.engine.Snapshot()})
}

func (d *Driver) publish(f Frame) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- f:
		default:
			// Replace the stale frame with the latest one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- f:
			default:
			}
		}
	}
}
