// Package term is the tcell terminal frontend.
package term

import (
	"context"
	"fmt"
	"time"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
	"gridsnake/input"
	"gridsnake/ui/hud"

	"github.com/gdamore/tcell/v2"
)

const frameInterval = 16 * time.Millisecond // ~60 FPS

// Board layout: one status row, then the bordered board with two columns
// per cell, then the banner row.
const (
	boardTop  = 1
	cellWidth = 2
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBanner = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Game is what the terminal needs from the running loop.
type Game interface {
	Submit(input.Intent) bool
	Snapshot() game.Snapshot
	Stats() *manager.StatsManager
}

type Terminal struct {
	screen  tcell.Screen
	game    Game
	grid    types.Grid
	palette *hud.Palette
}

// New takes over the terminal. Run restores it.
func New(g Game, grid types.Grid) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return NewWithScreen(screen, g, grid), nil
}

// NewWithScreen uses an already initialised screen.
func NewWithScreen(screen tcell.Screen, g Game, grid types.Grid) *Terminal {
	screen.HideCursor()
	screen.Clear()
	return &Terminal{screen: screen, game: g, grid: grid, palette: hud.NewPalette(0)}
}

// Run draws frames and forwards keys until the player quits or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	defer t.screen.Fini()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-done:
				return
			}
		}
	}()

	t.draw(t.game.Snapshot(), t.game.Stats().Summary())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-eventChan:
			if !t.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.draw(t.game.Snapshot(), t.game.Stats().Summary())
		}
	}
}

// handleEvent returns false when the player asked to quit.
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		in, quit := KeyIntent(ev)
		if quit {
			return false
		}
		if in != input.None {
			t.game.Submit(in)
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

// KeyIntent maps a key press to an intent. quit is true for Esc, Ctrl-C and Q.
func KeyIntent(ev *tcell.EventKey) (in input.Intent, quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.None, true
	case tcell.KeyUp:
		return input.TurnUp, false
	case tcell.KeyDown:
		return input.TurnDown, false
	case tcell.KeyLeft:
		return input.TurnLeft, false
	case tcell.KeyRight:
		return input.TurnRight, false
	case tcell.KeyEnter:
		return input.Restart, false
	case tcell.KeyTab:
		return input.CycleDifficulty, false
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return input.TogglePause, false
		case 'q', 'Q':
			return input.None, true
		}
	}
	return input.None, false
}

func (t *Terminal) draw(s game.Snapshot, sum manager.StatsSummary) {
	t.screen.Clear()

	width, height := t.screen.Size()
	boardWidth := t.grid.Width*cellWidth + 2
	boardHeight := t.grid.Height + 2
	if width < boardWidth || height < boardTop+boardHeight+1 {
		t.drawText(0, 0, fmt.Sprintf("terminal too small: need %dx%d", boardWidth, boardTop+boardHeight+1), styleBanner)
		t.screen.Show()
		return
	}

	t.palette.Observe(s)
	t.drawText(0, 0, hud.Status(s), styleText)
	t.drawBorder(boardWidth, boardHeight)

	if s.Food != nil {
		t.setCell(*s.Food, '●', ' ', colorStyle(t.palette.Food()))
	}
	snakeStyle := colorStyle(t.palette.Snake())
	for i := len(s.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			t.setCell(s.Snake[i], '█', '█', snakeStyle)
		} else {
			t.setCell(s.Snake[i], '▓', '▓', snakeStyle)
		}
	}

	bottom := boardTop + boardHeight
	if banner := hud.Banner(s); banner != "" {
		t.drawText(max(0, (boardWidth-len(banner))/2), boardTop+boardHeight/2, banner, styleBanner)
	}
	t.drawText(0, bottom, hud.Help, styleBorder)

	// Session results to the right of the board when there is room.
	if width >= boardWidth+20 {
		for i, line := range hud.Summary(sum) {
			t.drawText(boardWidth+2, boardTop+1+i, line, styleText)
		}
	}

	t.screen.Show()
}

func (t *Terminal) drawBorder(w, h int) {
	top, bottom := boardTop, boardTop+h-1
	for x := 1; x < w-1; x++ {
		t.screen.SetContent(x, top, '─', nil, styleBorder)
		t.screen.SetContent(x, bottom, '─', nil, styleBorder)
	}
	for y := top + 1; y < bottom; y++ {
		t.screen.SetContent(0, y, '│', nil, styleBorder)
		t.screen.SetContent(w-1, y, '│', nil, styleBorder)
	}
	t.screen.SetContent(0, top, '┌', nil, styleBorder)
	t.screen.SetContent(w-1, top, '┐', nil, styleBorder)
	t.screen.SetContent(0, bottom, '└', nil, styleBorder)
	t.screen.SetContent(w-1, bottom, '┘', nil, styleBorder)
}

func colorStyle(c hud.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

// setCell paints one board cell, which is two terminal columns wide.
func (t *Terminal) setCell(p types.Point, left, right rune, style tcell.Style) {
	x, y := ScreenPos(p)
	t.screen.SetContent(x, y, left, nil, style)
	t.screen.SetContent(x+1, y, right, nil, style)
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// ScreenPos is the terminal column and row of the left half of cell p.
func ScreenPos(p types.Point) (int, int) {
	return 1 + p.X*cellWidth, boardTop + 1 + p.Y
}
