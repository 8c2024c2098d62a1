package types

import (
	"fmt"
	"strings"
	"time"
)

// GridSize is the side of the square playing field.
const GridSize = 30

// Point is a cell coordinate on the grid
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by the vector d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid represents the game grid dimensions
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultGrid returns the fixed 30x30 playing field.
func DefaultGrid() Grid {
	return Grid{Width: GridSize, Height: GridSize}
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Center returns the middle cell of the grid.
func (g Grid) Center() Point {
	return Point{X: g.Width / 2, Y: g.Height / 2}
}

// Cells returns the number of cells on the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Direction is one of the four cardinal unit moves
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// ToPoint converts a Direction into its movement vector
func (d Direction) ToPoint() Point {
	switch d {
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	case Left:
		return Point{X: -1, Y: 0}
	case Right:
		return Point{X: 1, Y: 0}
	default:
		return Point{}
	}
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// TurnLeft rotates the direction counter-clockwise.
func (d Direction) TurnLeft() Direction {
	switch d {
	case Up:
		return Left
	case Left:
		return Down
	case Down:
		return Right
	default:
		return Up
	}
}

// TurnRight rotates the direction clockwise.
func (d Direction) TurnRight() Direction {
	switch d {
	case Up:
		return Right
	case Right:
		return Down
	case Down:
		return Left
	default:
		return Up
	}
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// MarshalText lets directions appear by name in JSON snapshots.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Difficulty selects the tick interval and the reward for each food.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists the presets in selector order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Interval is the time between two ticks at this difficulty.
func (d Difficulty) Interval() time.Duration {
	switch d {
	case Medium:
		return 150 * time.Millisecond
	case Hard:
		return 100 * time.Millisecond
	default:
		return 200 * time.Millisecond
	}
}

// Points is the score awarded for eating one food.
func (d Difficulty) Points() int {
	switch d {
	case Medium:
		return 4
	case Hard:
		return 6
	default:
		return 2
	}
}

// Next returns the following preset, wrapping from Hard back to Easy.
func (d Difficulty) Next() Difficulty {
	return Difficulties[(int(d)+1)%len(Difficulties)]
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ParseDifficulty maps a case-insensitive preset name to its Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

// Phase is the engine's top-level mode
type Phase int

const (
	Running Phase = iota
	Paused
	GameOver
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	WallCollision
	SelfCollision
)

func (c CollisionType) String() string {
	switch c {
	case WallCollision:
		return "wall"
	case SelfCollision:
		return "self"
	default:
		return "none"
	}
}

func (c CollisionType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
