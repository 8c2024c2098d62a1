package manager

import (
	"gridsnake/game/entity"
	"gridsnake/game/types"

	"golang.org/x/exp/rand"
)

// maxSpawnAttempts bounds rejection sampling before falling back to the free-cell scan.
const maxSpawnAttempts = 32

type FoodManager struct {
	grid         types.Grid
	rng          *rand.Rand
	collisionMgr *CollisionManager
}

func NewFoodManager(grid types.Grid, rng *rand.Rand, collisionMgr *CollisionManager) *FoodManager {
	return &FoodManager{
		grid:         grid,
		rng:          rng,
		collisionMgr: collisionMgr,
	}
}

// GenerateFood picks a cell uniformly among those not occupied by the snake.
// It returns false when the snake covers the whole grid.
func (fm *FoodManager) GenerateFood(snake *entity.Snake) (types.Point, bool) {
	if snake.Len() >= fm.grid.Cells() {
		return types.Point{}, false
	}

	// Cheap while the board is mostly empty; every accepted sample is uniform over free cells.
	for i := 0; i < maxSpawnAttempts; i++ {
		food := types.Point{
			X: fm.rng.Intn(fm.grid.Width),
			Y: fm.rng.Intn(fm.grid.Height),
		}
		if fm.collisionMgr.ValidateSpawnPosition(food, snake) {
			return food, true
		}
	}

	free := fm.FreeCells(snake)
	if len(free) == 0 {
		return types.Point{}, false
	}
	return free[fm.rng.Intn(len(free))], true
}

// FreeCells lists every grid cell not covered by the snake, row by row.
func (fm *FoodManager) FreeCells(snake *entity.Snake) []types.Point {
	occupied := make([]bool, fm.grid.Cells())
	for _, p := range snake.Body {
		if fm.grid.Contains(p) {
			occupied[p.Y*fm.grid.Width+p.X] = true
		}
	}

	free := make([]types.Point, 0, max(0, len(occupied)-snake.Len()))
	for y := 0; y < fm.grid.Height; y++ {
		for x := 0; x < fm.grid.Width; x++ {
			if !occupied[y*fm.grid.Width+x] {
				free = append(free, types.Point{X: x, Y: y})
			}
		}
	}
	return free
}
