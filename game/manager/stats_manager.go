package manager

import (
	"sort"
	"sync"
	"time"

	"gridsnake/game/types"
)

// maxRecords caps how many finished games are kept for the session.
const maxRecords = 200

// GameRecord describes one finished game.
type GameRecord struct {
	GameID     string              `json:"gameId"`
	StartTime  time.Time           `json:"startTime"`
	EndTime    time.Time           `json:"endTime"`
	Score      int                 `json:"score"`
	Length     int                 `json:"length"`
	Steps      int                 `json:"steps"`
	Difficulty types.Difficulty    `json:"difficulty"`
	Collision  types.CollisionType `json:"collision"`
}

// Duration returns how long the game lasted.
func (r GameRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// StatsSummary is a point-in-time view of the session results.
type StatsSummary struct {
	GamesPlayed     int
	LastScore       int
	MaxScore        int
	AverageScore    float64
	MedianScore     float64
	AverageDuration time.Duration
}

// StatsManager keeps the results of the games played in this session.
// Nothing is written to disk.
type StatsManager struct {
	mutex       sync.RWMutex
	games       []GameRecord
	gamesPlayed int
	maxScore    int
}

func NewStatsManager() *StatsManager {
	return &StatsManager{
		games: make([]GameRecord, 0),
	}
}

// AddGame records a finished game.
func (sm *StatsManager) AddGame(record GameRecord) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if len(sm.games) >= maxRecords {
		sm.games = sm.games[1:]
	}
	sm.games = append(sm.games, record)
	sm.gamesPlayed++
	if record.Score > sm.maxScore {
		sm.maxScore = record.Score
	}
}

// GetGames returns a copy of the retained records, oldest first.
func (sm *StatsManager) GetGames() []GameRecord {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	games := make([]GameRecord, len(sm.games))
	copy(games, sm.games)
	return games
}

// Summary aggregates the retained records. GamesPlayed and MaxScore cover
// the whole session, averages only the retained window.
func (sm *StatsManager) Summary() StatsSummary {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	summary := StatsSummary{
		GamesPlayed: sm.gamesPlayed,
		MaxScore:    sm.maxScore,
	}
	if len(sm.games) == 0 {
		return summary
	}

	summary.LastScore = sm.games[len(sm.games)-1].Score

	scores := make([]float64, 0, len(sm.games))
	var totalScore float64
	var totalDuration time.Duration
	for _, g := range sm.games {
		scores = append(scores, float64(g.Score))
		totalScore += float64(g.Score)
		totalDuration += g.Duration()
	}
	summary.AverageScore = totalScore / float64(len(sm.games))
	summary.AverageDuration = totalDuration / time.Duration(len(sm.games))

	sort.Float64s(scores)
	if len(scores)%2 == 0 {
		summary.MedianScore = (scores[len(scores)/2-1] + scores[len(scores)/2]) / 2
	} else {
		summary.MedianScore = scores[len(scores)/2]
	}

	return summary
}
