package model

// BoardSize is the side length of the square board
const BoardSize = 15

// WinLength is the number of contiguous stones needed to win
const WinLength = 5

// Color identifies a stone colour, or the absence of one
type Color uint8

const (
	Empty Color = iota
	Black
	White
)

// String returns the name used on the wire for next-to-move
func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "Empty"
	}
}

// Symbol returns the single-character cell rendering used in snapshots
func (c Color) Symbol() byte {
	switch c {
	case Black:
		return 'B'
	case White:
		return 'W'
	default:
		return '.'
	}
}

// Opponent returns the other stone colour
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Board is the fixed-size grid of stones
type Board [BoardSize][BoardSize]Color

// InBounds returns true if the position is on the board
func InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < BoardSize && pos.Col >= 0 && pos.Col < BoardSize
}

// Get returns the colour at the given position, or Empty when out of bounds
func (b *Board) Get(pos Position) Color {
	if !InBounds(pos) {
		return Empty
	}
	return b[pos.Row][pos.Col]
}

// Rows renders the board as one string per row
func (b *Board) Rows() []string {
	rows := make([]string, BoardSize)
	for r := 0; r < BoardSize; r++ {
		line := make([]byte, BoardSize)
		for c := 0; c < BoardSize; c++ {
			line[c] = b[r][c].Symbol()
		}
		rows[r] = string(line)
	}
	return rows
}

// RunLength counts contiguous stones of the placed colour through pos along (dr, dc),
// including the stone at pos itself
func (b *Board) RunLength(pos Position, dr, dc int) int {
	color := b.Get(pos)
	if color == Empty {
		return 0
	}
	count := 1
	for _, sign := range [2]int{1, -1} {
		p := Position{Row: pos.Row + sign*dr, Col: pos.Col + sign*dc}
		for InBounds(p) && b.Get(p) == color {
			count++
			p = Position{Row: p.Row + sign*dr, Col: p.Col + sign*dc}
		}
	}
	return count
}
