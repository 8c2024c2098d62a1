// Package ui is the raylib desktop frontend. It must run on the main thread.
package ui

import (
	"context"

	"gridsnake/config"
	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/input"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const title = "Grid Snake"

// Game is what the window needs from the running loop.
type Game interface {
	Submit(input.Intent) bool
	Snapshot() game.Snapshot
	Stats() *manager.StatsManager
}

type binding struct {
	key    int32
	intent input.Intent
}

var bindings = []binding{
	{rl.KeyUp, input.TurnUp},
	{rl.KeyDown, input.TurnDown},
	{rl.KeyLeft, input.TurnLeft},
	{rl.KeyRight, input.TurnRight},
	{rl.KeySpace, input.TogglePause},
	{rl.KeyEnter, input.Restart},
	{rl.KeyKpEnter, input.Restart},
	{rl.KeyTab, input.CycleDifficulty},
}

// Run opens the window and renders until it is closed, Q or Esc is pressed,
// or ctx is done.
func Run(ctx context.Context, g Game, grid types.Grid, cfg config.WindowConf) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.FPS))

	renderer := NewRenderer()
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		if rl.IsKeyPressed(rl.KeyQ) {
			return nil
		}

		for _, b := range bindings {
			if rl.IsKeyPressed(b.key) {
				g.Submit(b.intent)
			}
		}

		if rl.IsWindowResized() {
			renderer.UpdateDimensions()
		}

		stats := g.Stats()
		renderer.Draw(grid, g.Snapshot(), stats.GetGames(), stats.Summary())
	}
	return nil
}
