package hud

import (
	"time"

	"gridsnake/game"

	"golang.org/x/exp/rand"
)

// Color is an RGB triple that each frontend converts to its own type.
type Color struct {
	R, G, B uint8
}

var (
	DefaultSnakeColor = Color{R: 255, G: 255, B: 255}
	DefaultFoodColor  = Color{R: 255, G: 0, B: 0}
)

// Palette tracks the snake and food colours. Each meal hands the food's
// colour to the snake and gives the next food a random one; a new round
// starts from the defaults again.
type Palette struct {
	rng   *rand.Rand
	snake Color
	food  Color
	score int
	steps int
}

// NewPalette seeds the food colours. Zero means time-based.
func NewPalette(seed uint64) *Palette {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Palette{
		rng:   rand.New(rand.NewSource(seed)),
		snake: DefaultSnakeColor,
		food:  DefaultFoodColor,
	}
}

// Observe updates the colours from the latest frame.
func (p *Palette) Observe(s game.Snapshot) {
	switch {
	case s.Steps < p.steps || s.Score < p.score:
		p.snake, p.food = DefaultSnakeColor, DefaultFoodColor
	case s.Score > p.score:
		p.snake = p.food
		p.food = p.randomColor()
	}
	p.score, p.steps = s.Score, s.Steps
}

func (p *Palette) Snake() Color {
	return p.snake
}

func (p *Palette) Food() Color {
	return p.food
}

func (p *Palette) randomColor() Color {
	return Color{R: uint8(p.rng.Intn(256)), G: uint8(p.rng.Intn(256)), B: uint8(p.rng.Intn(256))}
}
