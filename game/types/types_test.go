package types

import (
	"testing"
	"time"
)

func TestDirectionVectors(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Point
	}{
		{Up, Point{X: 0, Y: -1}},
		{Down, Point{X: 0, Y: 1}},
		{Left, Point{X: -1, Y: 0}},
		{Right, Point{X: 1, Y: 0}},
	}
	for _, tt := range tests {
		if got := tt.dir.ToPoint(); got != tt.want {
			t.Errorf("%v.ToPoint() = %v, want %v", tt.dir, got, tt.want)
		}
		opp := tt.dir.Opposite().ToPoint()
		if opp.X != -tt.want.X || opp.Y != -tt.want.Y {
			t.Errorf("%v.Opposite() = %v", tt.dir, tt.dir.Opposite())
		}
		if tt.dir.TurnLeft().TurnRight() != tt.dir {
			t.Errorf("%v: left then right is not the identity", tt.dir)
		}
	}
}

func TestDifficultyPresets(t *testing.T) {
	tests := []struct {
		d        Difficulty
		interval time.Duration
		points   int
	}{
		{Easy, 200 * time.Millisecond, 2},
		{Medium, 150 * time.Millisecond, 4},
		{Hard, 100 * time.Millisecond, 6},
	}
	for _, tt := range tests {
		if got := tt.d.Interval(); got != tt.interval {
			t.Errorf("%v interval = %v, want %v", tt.d, got, tt.interval)
		}
		if got := tt.d.Points(); got != tt.points {
			t.Errorf("%v points = %d, want %d", tt.d, got, tt.points)
		}
		parsed, err := ParseDifficulty(tt.d.String())
		if err != nil || parsed != tt.d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", tt.d.String(), parsed, err)
		}
	}
	if Hard.Next() != Easy {
		t.Errorf("expected hard to wrap to easy, got %v", Hard.Next())
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("expected unknown difficulty to fail")
	}
}

func TestGridContains(t *testing.T) {
	g := DefaultGrid()
	if g.Center() != (Point{X: 15, Y: 15}) {
		t.Errorf("unexpected center %v", g.Center())
	}
	for _, p := range []Point{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 30, Y: 0}, {X: 0, Y: 30}} {
		if g.Contains(p) {
			t.Errorf("expected %v outside the grid", p)
		}
	}
	if !g.Contains(Point{X: 29, Y: 29}) {
		t.Error("expected (29,29) inside the grid")
	}
}
