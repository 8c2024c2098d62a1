package manager

import (
	"gridsnake/game/entity"
	"gridsnake/game/types"
)

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// CheckCollision checks all types of collisions for a given position against
// the snake as it is before moving. The tail counts, even though it would be
// popped on a plain move.
func (cm *CollisionManager) CheckCollision(pos types.Point, snake *entity.Snake) types.CollisionType {
	if cm.isWallCollision(pos) {
		return types.WallCollision
	}
	if snake != nil && snake.Contains(pos) {
		return types.SelfCollision
	}
	return types.NoCollision
}

// isWallCollision checks if a position is outside the grid
func (cm *CollisionManager) isWallCollision(pos types.Point) bool {
	return !cm.grid.Contains(pos)
}

// ValidateSpawnPosition checks if a position is valid for placing food
func (cm *CollisionManager) ValidateSpawnPosition(pos types.Point, snake *entity.Snake) bool {
	return cm.CheckCollision(pos, snake) == types.NoCollision
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Point, food *types.Point) bool {
	return food != nil && pos == *food
}
