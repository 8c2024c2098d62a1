package entity

import "gridsnake/game/types"

// Snake is an ordered chain of cells, head first.
// Direction is the committed direction: the one the last applied tick moved along.
type Snake struct {
	Body      []types.Point
	Direction types.Direction
}

func NewSnake(startPos types.Point, dir types.Direction) *Snake {
	return &Snake{
		Body:      []types.Point{startPos},
		Direction: dir,
	}
}

// Move prepends the new head.
func (s *Snake) Move(newHead types.Point) {
	s.Body = append(s.Body, types.Point{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 1 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

func (s *Snake) GetHead() types.Point {
	return s.Body[0]
}

func (s *Snake) GetTail() types.Point {
	return s.Body[len(s.Body)-1]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Contains reports whether any segment occupies p
func (s *Snake) Contains(p types.Point) bool {
	for _, part := range s.Body {
		if part == p {
			return true
		}
	}
	return false
}

// Segments returns a copy of the body that callers may keep.
func (s *Snake) Segments() []types.Point {
	body := make([]types.Point, len(s.Body))
	copy(body, s.Body)
	return body
}
