// Package input turns player intents into engine calls.
// Key bindings live in the frontends; this package holds the policy they share.
package input

import (
	"gridsnake/game/types"
)

// Intent is what a key press means to the game.
type Intent int

const (
	None Intent = iota
	TurnUp
	TurnDown
	TurnLeft
	TurnRight
	TogglePause
	Restart
	CycleDifficulty
)

func (i Intent) String() string {
	switch i {
	case TurnUp:
		return "turn_up"
	case TurnDown:
		return "turn_down"
	case TurnLeft:
		return "turn_left"
	case TurnRight:
		return "turn_right"
	case TogglePause:
		return "toggle_pause"
	case Restart:
		return "restart"
	case CycleDifficulty:
		return "cycle_difficulty"
	default:
		return "none"
	}
}

// Turn returns the intent that steers toward d.
func Turn(d types.Direction) Intent {
	switch d {
	case types.Up:
		return TurnUp
	case types.Down:
		return TurnDown
	case types.Left:
		return TurnLeft
	default:
		return TurnRight
	}
}

// Controller is the part of the engine that intents act on.
type Controller interface {
	SetDirection(types.Direction) bool
	TogglePause() types.Phase
	Restart()
	SetDifficulty(types.Difficulty)
	Difficulty() types.Difficulty
	Phase() types.Phase
}

// Apply performs the intent and reports whether it changed anything.
// Restart only acts once the game is over.
func Apply(c Controller, in Intent) bool {
	switch in {
	case TurnUp:
		return c.SetDirection(types.Up)
	case TurnDown:
		return c.SetDirection(types.Down)
	case TurnLeft:
		return c.SetDirection(types.Left)
	case TurnRight:
		return c.SetDirection(types.Right)
	case TogglePause:
		before := c.Phase()
		return c.TogglePause() != before
	case Restart:
		if c.Phase() != types.GameOver {
			return false
		}
		c.Restart()
		return true
	case CycleDifficulty:
		c.SetDifficulty(c.Difficulty().Next())
		return true
	}
	return false
}
