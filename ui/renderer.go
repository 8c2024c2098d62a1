package ui

import (
	"fmt"
	"time"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/ui/hud"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	maxScores     = 50 // Maximum number of scores to show in graph
	borderPadding = 10
)

var graphColor = rl.Color{R: 46, G: 204, B: 113, A: 255}

type Renderer struct {
	cellSize        int32
	screenWidth     int32
	screenHeight    int32
	graphHeight     int32
	graphWidth      int32
	gameWidth       int32
	gameHeight      int32
	statsPanel      int32
	totalGridWidth  int32
	totalGridHeight int32
	offsetX         int32
	offsetY         int32
	sessionStart    time.Time
	palette         *hud.Palette
}

func NewRenderer() *Renderer {
	r := &Renderer{sessionStart: time.Now(), palette: hud.NewPalette(0)}
	r.UpdateDimensions()
	return r
}

func (r *Renderer) UpdateDimensions() {
	r.screenWidth = int32(rl.GetScreenWidth())
	r.screenHeight = int32(rl.GetScreenHeight())

	// The stats panel takes a quarter of the window, the board the rest.
	r.statsPanel = r.screenWidth / 4
	r.gameWidth = r.screenWidth - r.statsPanel
	r.gameHeight = r.screenHeight

	r.graphWidth = r.statsPanel - 20
	r.graphHeight = r.screenHeight / 5
}

// Draw renders one frame of the board plus the session panel.
func (r *Renderer) Draw(grid types.Grid, s game.Snapshot, games []manager.GameRecord, sum manager.StatsSummary) {
	r.UpdateDimensions()
	r.palette.Observe(s)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	fontSize := min(r.screenHeight/45, r.statsPanel/12)
	lineHeight := min(r.screenHeight/35, r.statsPanel/9)

	availableWidth := r.gameWidth - (borderPadding * 2)
	availableHeight := r.gameHeight - (borderPadding * 2) - lineHeight
	r.cellSize = max(1, min(availableWidth/int32(grid.Width), availableHeight/int32(grid.Height)))

	r.totalGridWidth = r.cellSize * int32(grid.Width)
	r.totalGridHeight = r.cellSize * int32(grid.Height)
	r.offsetX = borderPadding
	r.offsetY = lineHeight + (r.screenHeight-lineHeight-r.totalGridHeight)/2

	rl.DrawRectangle(r.offsetX-1, r.offsetY-1, r.totalGridWidth+2, r.totalGridHeight+2, rl.DarkGray)
	rl.DrawRectangle(r.offsetX, r.offsetY, r.totalGridWidth, r.totalGridHeight, rl.Black)
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			rl.DrawRectangleLines(r.cellX(x), r.cellY(y), r.cellSize, r.cellSize, rl.Color{R: 30, G: 30, B: 30, A: 255})
		}
	}

	if s.Food != nil {
		rl.DrawRectangle(r.cellX(s.Food.X), r.cellY(s.Food.Y), r.cellSize, r.cellSize, toRaylib(r.palette.Food()))
	}

	bodyColor := toRaylib(r.palette.Snake())
	for _, p := range s.Snake {
		rl.DrawRectangle(r.cellX(p.X), r.cellY(p.Y), r.cellSize, r.cellSize, bodyColor)
	}
	if len(s.Snake) > 0 {
		r.drawHeading(s.Snake[0], s.Direction)
	}

	rl.DrawText(hud.Status(s), r.offsetX, r.offsetY-lineHeight, fontSize, rl.White)

	if banner := hud.Banner(s); banner != "" {
		textWidth := rl.MeasureText(banner, fontSize)
		x := r.offsetX + (r.totalGridWidth-textWidth)/2
		y := r.offsetY + r.totalGridHeight/2 - fontSize/2
		rl.DrawRectangle(x-8, y-6, textWidth+16, fontSize+12, rl.Fade(rl.Black, 0.8))
		color := rl.Yellow
		if s.Phase == types.GameOver {
			color = rl.Red
		}
		rl.DrawText(banner, x, y, fontSize, color)
	}

	r.drawStatsPanel(games, sum, fontSize, lineHeight)
	rl.EndDrawing()
}

func toRaylib(c hud.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: 255}
}

func (r *Renderer) cellX(x int) int32 {
	return r.offsetX + int32(x)*r.cellSize
}

func (r *Renderer) cellY(y int) int32 {
	return r.offsetY + int32(y)*r.cellSize
}

// drawHeading marks the head with a triangle pointing where it is going.
func (r *Renderer) drawHeading(head types.Point, direction types.Direction) {
	headX := float32(r.cellX(head.X))
	headY := float32(r.cellY(head.Y))
	cell := float32(r.cellSize)
	half := cell / 2

	switch direction {
	case types.Right:
		rl.DrawTriangle(
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Black)
	case types.Left:
		rl.DrawTriangle(
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Black)
	case types.Down:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Black)
	default:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Black)
	}
}

func (r *Renderer) drawStatsPanel(games []manager.GameRecord, sum manager.StatsSummary, fontSize, lineHeight int32) {
	statsX := r.gameWidth + 5
	statsY := int32(10)

	rl.DrawRectangle(statsX-5, 0, r.statsPanel+5, r.screenHeight, rl.DarkGray)

	rl.DrawText("Session:", statsX, statsY, fontSize, rl.White)
	statsY += lineHeight
	for _, line := range hud.Summary(sum) {
		rl.DrawText(line, statsX+10, statsY, fontSize, rl.White)
		statsY += lineHeight
	}

	statsY += lineHeight / 2
	rl.DrawText("Keys:", statsX, statsY, fontSize, rl.White)
	statsY += lineHeight
	for _, line := range []string{"Arrows: turn", "Space: pause", "Enter: restart", "Tab: difficulty", "Esc/Q: quit"} {
		rl.DrawText(line, statsX+10, statsY, fontSize, rl.LightGray)
		statsY += lineHeight
	}

	r.drawScoreGraph(games, sum, statsX, fontSize)
}

func (r *Renderer) drawScoreGraph(games []manager.GameRecord, sum manager.StatsSummary, statsX, fontSize int32) {
	graphX := statsX
	graphHeight := r.graphHeight
	graphY := r.screenHeight - graphHeight - fontSize*2

	rl.DrawRectangleLines(graphX, graphY, r.graphWidth, graphHeight, rl.White)
	rl.DrawText("Scores", graphX, graphY-fontSize-5, fontSize, rl.White)

	timeText := fmt.Sprintf("%s - Games: %d", hud.Clock(time.Since(r.sessionStart)), sum.GamesPlayed)
	rl.DrawText(timeText, graphX, r.screenHeight-fontSize-5, fontSize, rl.White)

	if len(games) > maxScores {
		games = games[len(games)-maxScores:]
	}
	if len(games) < 2 {
		return
	}

	maxScore := max(1, sum.MaxScore)
	for j := 1; j < len(games); j++ {
		x1 := graphX + int32(float32(r.graphWidth)*float32(j-1)/float32(maxScores))
		y1 := graphY + graphHeight - int32(float32(graphHeight)*float32(games[j-1].Score)/float32(maxScore))
		x2 := graphX + int32(float32(r.graphWidth)*float32(j)/float32(maxScores))
		y2 := graphY + graphHeight - int32(float32(graphHeight)*float32(games[j].Score)/float32(maxScore))
		rl.DrawLine(x1, y1, x2, y2, graphColor)
	}

	// Dashed average line
	avgY := graphY + graphHeight - int32(float32(graphHeight)*float32(sum.AverageScore)/float32(maxScore))
	for x := graphX; x < graphX+r.graphWidth; x += 5 {
		rl.DrawLine(x, avgY, x+2, avgY, rl.Yellow)
	}
}
