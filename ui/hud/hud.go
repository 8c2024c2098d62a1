// Package hud formats the text both frontends show around the board.
package hud

import (
	"fmt"
	"time"

	"gridsnake/game"
	"gridsnake/game/manager"
	"gridsnake/game/types"
)

const Help = "Arrows: turn  Space: pause  Enter: restart  Tab: difficulty  Esc/Q: quit"

// Status is the one-line score readout.
func Status(s game.Snapshot) string {
	return fmt.Sprintf("Score: %d  Length: %d  Difficulty: %s", s.Score, len(s.Snake), s.Difficulty)
}

// Banner is the message shown over the board, or "" while running.
func Banner(s game.Snapshot) string {
	switch s.Phase {
	case types.Paused:
		return "PAUSED - press Space to resume"
	case types.GameOver:
		return fmt.Sprintf("GAME OVER (%s) - press Enter to restart", s.Collision)
	default:
		return ""
	}
}

// Summary lists the session results, one entry per line.
func Summary(sum manager.StatsSummary) []string {
	return []string{
		fmt.Sprintf("Games: %d", sum.GamesPlayed),
		fmt.Sprintf("Best: %d", sum.MaxScore),
		fmt.Sprintf("Last: %d", sum.LastScore),
		fmt.Sprintf("Avg: %.2f", sum.AverageScore),
		fmt.Sprintf("Median: %.1f", sum.MedianScore),
		fmt.Sprintf("Avg time: %s", Clock(sum.AverageDuration)),
	}
}

// Clock renders d as hh:mm:ss.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
